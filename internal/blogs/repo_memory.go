package blogs

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of BlogsRepo.
type MemoryRepo struct {
	mu    sync.RWMutex
	data  map[string][]Blog   // userId -> blogs
	links map[string][]string // blogId -> document ids
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data:  make(map[string][]Blog),
		links: make(map[string][]string),
	}
}

// Create stores a blog for a user.
func (r *MemoryRepo) Create(ctx context.Context, blog Blog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !blog.Status.Valid() {
		return ErrInvalidState
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[blog.UserID] = append(r.data[blog.UserID], blog)
	return nil
}

// GetByID returns a blog with its reference links.
func (r *MemoryRepo) GetByID(ctx context.Context, userId, blogID string) (Blog, error) {
	if err := ctx.Err(); err != nil {
		return Blog{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, blog := range r.data[userId] {
		if blog.ID == blogID {
			blog.ReferenceDocumentIDs = append([]string(nil), r.links[blogID]...)
			return blog, nil
		}
	}
	return Blog{}, ErrNotFound
}

// ListByUser returns blogs newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Blog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	userBlogs := r.data[userId]
	r.mu.RUnlock()

	if len(userBlogs) == 0 || offset >= len(userBlogs) {
		return []Blog{}, nil
	}

	out := make([]Blog, len(userBlogs))
	copy(out, userBlogs)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return out[offset:end], nil
}

// Update replaces a stored blog in place.
func (r *MemoryRepo) Update(ctx context.Context, blog Blog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !blog.Status.Valid() {
		return ErrInvalidState
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	userBlogs := r.data[blog.UserID]
	for i := range userBlogs {
		if userBlogs[i].ID == blog.ID {
			blog.ReferenceDocumentIDs = nil
			userBlogs[i] = blog
			r.data[blog.UserID] = userBlogs
			return nil
		}
	}
	return ErrNotFound
}

// Delete removes a blog and its reference links.
func (r *MemoryRepo) Delete(ctx context.Context, userId, blogID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	userBlogs := r.data[userId]
	for i := range userBlogs {
		if userBlogs[i].ID == blogID {
			r.data[userId] = append(userBlogs[:i], userBlogs[i+1:]...)
			delete(r.links, blogID)
			return nil
		}
	}
	return ErrNotFound
}

// ReplaceDocuments swaps the blog's reference links for the given set.
func (r *MemoryRepo) ReplaceDocuments(ctx context.Context, blogID string, documentIDs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[blogID] = append([]string(nil), documentIDs...)
	return nil
}

var _ BlogsRepo = (*MemoryRepo)(nil)
