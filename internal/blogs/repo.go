package blogs

import "context"

// BlogsRepo defines persistence operations for blogs and their reference
// document links.
type BlogsRepo interface {
	Create(ctx context.Context, blog Blog) error
	GetByID(ctx context.Context, userId, blogID string) (Blog, error)
	ListByUser(ctx context.Context, userId string, limit, offset int) ([]Blog, error)
	Update(ctx context.Context, blog Blog) error
	Delete(ctx context.Context, userId, blogID string) error
	ReplaceDocuments(ctx context.Context, blogID string, documentIDs []string) error
}
