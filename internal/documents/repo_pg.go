package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    user_id,
    title,
    file_name,
    original_filename,
    file_type,
    mime_type,
    size_bytes,
    storage_key,
    processed_content,
    word_count,
    status,
    uploaded_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	if !doc.Status.Valid() {
		return ErrInvalidState
	}

	originalName := doc.OriginalFilename
	if originalName == "" {
		originalName = doc.FileName
	}

	var content sql.NullString
	if doc.ProcessedContent != "" {
		content = sql.NullString{String: doc.ProcessedContent, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.Title,
		doc.FileName,
		originalName,
		doc.FileType,
		doc.MimeType,
		doc.SizeBytes,
		doc.StorageKey,
		content,
		doc.WordCount,
		string(doc.Status),
		doc.UploadedAt,
	)
	return err
}

const documentColumns = `id, user_id, title, file_name, original_filename, file_type, mime_type, size_bytes, storage_key, processed_content, word_count, status, uploaded_at`

func scanDocument(scan func(dest ...any) error) (Document, error) {
	var doc Document
	var title sql.NullString
	var originalName sql.NullString
	var content sql.NullString
	var status string
	err := scan(
		&doc.ID,
		&doc.UserID,
		&title,
		&doc.FileName,
		&originalName,
		&doc.FileType,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.StorageKey,
		&content,
		&doc.WordCount,
		&status,
		&doc.UploadedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if title.Valid {
		doc.Title = title.String
	}
	if originalName.Valid {
		doc.OriginalFilename = originalName.String
	}
	if content.Valid {
		doc.ProcessedContent = content.String
	}
	doc.Status = Status(status)
	return doc, nil
}

// GetByID fetches a document by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userId, documentID string) (Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE user_id = $1 AND id = $2
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, userId, documentID)
	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByUser lists documents ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
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
SELECT ` + documentColumns + `
FROM documents
WHERE user_id = $1
ORDER BY uploaded_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// UpdateProcessing stores the extraction outcome for a document.
func (r *PGRepo) UpdateProcessing(ctx context.Context, userId, documentID string, content string, wordCount int, status Status) error {
	if !status.Valid() {
		return ErrInvalidState
	}
	const query = `
UPDATE documents
SET processed_content = $1, word_count = $2, status = $3
WHERE user_id = $4 AND id = $5`
	var nullable sql.NullString
	if content != "" {
		nullable = sql.NullString{String: content, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx, query, nullable, wordCount, string(status), userId, documentID)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document record.
func (r *PGRepo) Delete(ctx context.Context, userId, documentID string) error {
	const query = `DELETE FROM documents WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, userId, documentID)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ DocumentsRepo = (*PGRepo)(nil)
