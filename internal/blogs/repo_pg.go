package blogs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements BlogsRepo using Postgres. Keyword lists are stored as
// JSONB columns; reference links live in the blog_documents join table.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new blog.
func (r *PGRepo) Create(ctx context.Context, blog Blog) error {
	const query = `
INSERT INTO blogs (
    id,
    user_id,
    topic,
    tone,
    target_keywords,
    additional_keywords,
    blog_title,
    blog_outline,
    blog_draft,
    status,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	if !blog.Status.Valid() {
		return ErrInvalidState
	}

	target, err := marshalKeywords(blog.TargetKeywords)
	if err != nil {
		return err
	}
	additional, err := marshalKeywords(blog.AdditionalKeywords)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		blog.ID,
		blog.UserID,
		blog.Topic,
		string(blog.Tone),
		target,
		additional,
		blog.BlogTitle,
		blog.BlogOutline,
		blog.BlogDraft,
		string(blog.Status),
		blog.CreatedAt,
		blog.UpdatedAt,
	)
	return err
}

const blogColumns = `id, user_id, topic, tone, target_keywords, additional_keywords, blog_title, blog_outline, blog_draft, status, created_at, updated_at`

func scanBlog(scan func(dest ...any) error) (Blog, error) {
	var blog Blog
	var tone, status string
	var target, additional []byte
	err := scan(
		&blog.ID,
		&blog.UserID,
		&blog.Topic,
		&tone,
		&target,
		&additional,
		&blog.BlogTitle,
		&blog.BlogOutline,
		&blog.BlogDraft,
		&status,
		&blog.CreatedAt,
		&blog.UpdatedAt,
	)
	if err != nil {
		return Blog{}, err
	}
	blog.Tone = Tone(tone)
	blog.Status = Status(status)
	if blog.TargetKeywords, err = unmarshalKeywords(target); err != nil {
		return Blog{}, fmt.Errorf("target_keywords: %w", err)
	}
	if blog.AdditionalKeywords, err = unmarshalKeywords(additional); err != nil {
		return Blog{}, fmt.Errorf("additional_keywords: %w", err)
	}
	return blog, nil
}

// GetByID fetches a blog with its reference document links.
func (r *PGRepo) GetByID(ctx context.Context, userId, blogID string) (Blog, error) {
	const query = `
SELECT ` + blogColumns + `
FROM blogs
WHERE user_id = $1 AND id = $2
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, userId, blogID)
	blog, err := scanBlog(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Blog{}, ErrNotFound
		}
		return Blog{}, err
	}

	blog.ReferenceDocumentIDs, err = r.documentIDs(ctx, blog.ID)
	if err != nil {
		return Blog{}, err
	}
	return blog, nil
}

// ListByUser lists blogs ordered newest-first. Reference links are not
// hydrated for list views.
func (r *PGRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Blog, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + blogColumns + `
FROM blogs
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Blog
	for rows.Next() {
		blog, err := scanBlog(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, blog)
	}
	return out, rows.Err()
}

// Update persists the editable fields of a blog.
func (r *PGRepo) Update(ctx context.Context, blog Blog) error {
	if !blog.Status.Valid() {
		return ErrInvalidState
	}
	const query = `
UPDATE blogs
SET topic = $1,
    tone = $2,
    target_keywords = $3,
    additional_keywords = $4,
    blog_title = $5,
    blog_outline = $6,
    blog_draft = $7,
    status = $8,
    updated_at = $9
WHERE user_id = $10 AND id = $11`

	target, err := marshalKeywords(blog.TargetKeywords)
	if err != nil {
		return err
	}
	additional, err := marshalKeywords(blog.AdditionalKeywords)
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(
		ctx,
		query,
		blog.Topic,
		string(blog.Tone),
		target,
		additional,
		blog.BlogTitle,
		blog.BlogOutline,
		blog.BlogDraft,
		string(blog.Status),
		blog.UpdatedAt,
		blog.UserID,
		blog.ID,
	)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a blog; join rows cascade.
func (r *PGRepo) Delete(ctx context.Context, userId, blogID string) error {
	const query = `DELETE FROM blogs WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, userId, blogID)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceDocuments swaps the blog's reference links for the given set.
func (r *PGRepo) ReplaceDocuments(ctx context.Context, blogID string, documentIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM blog_documents WHERE blog_id = $1`, blogID); err != nil {
		return err
	}
	for _, docID := range documentIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO blog_documents (blog_id, document_id) VALUES ($1, $2)`,
			blogID, docID,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *PGRepo) documentIDs(ctx context.Context, blogID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT document_id FROM blog_documents WHERE blog_id = $1 ORDER BY document_id`, blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func marshalKeywords(keywords []string) ([]byte, error) {
	if keywords == nil {
		keywords = []string{}
	}
	return json.Marshal(keywords)
}

func unmarshalKeywords(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

var _ BlogsRepo = (*PGRepo)(nil)
