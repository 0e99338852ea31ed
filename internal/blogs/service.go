package blogs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"seoblog-backend/internal/documents"
	"seoblog-backend/internal/generate"
	"seoblog-backend/internal/shared/telemetry"
)

// Service contains business logic for blogs.
type Service struct {
	Repo     BlogsRepo
	Docs     documents.DocumentsRepo
	Pipeline *generate.Pipeline

	mu       sync.Mutex
	inflight map[string]struct{} // blog ids with a generation in progress
}

// NewService constructs a Service.
func NewService(repo BlogsRepo, docs documents.DocumentsRepo, pipeline *generate.Pipeline) *Service {
	return &Service{
		Repo:     repo,
		Docs:     docs,
		Pipeline: pipeline,
		inflight: make(map[string]struct{}),
	}
}

// CreateParams carries the generation request for a new blog.
type CreateParams struct {
	Topic       string
	Tone        string
	Keywords    string // comma-separated
	DocumentIDs []string
}

// Create generates and persists a new blog draft from owned reference
// documents.
func (s *Service) Create(ctx context.Context, userId string, params CreateParams) (Blog, error) {
	topic := strings.TrimSpace(params.Topic)
	if topic == "" {
		return Blog{}, fmt.Errorf("%w: topic is required", ErrInvalidInput)
	}
	tone, err := ParseTone(params.Tone)
	if err != nil {
		return Blog{}, fmt.Errorf("%w: unknown tone %q", ErrInvalidInput, params.Tone)
	}
	keywords := splitKeywords(params.Keywords)

	ownedIDs, texts := s.referenceTexts(ctx, userId, params.DocumentIDs)
	if len(texts) == 0 {
		return Blog{}, ErrNoReferenceText
	}

	result, err := s.Pipeline.Run(ctx, generate.Input{
		Topic:          topic,
		Tone:           string(tone),
		Keywords:       keywords,
		ReferenceTexts: texts,
	})
	if err != nil {
		return Blog{}, err
	}

	now := time.Now().UTC()
	blog := Blog{
		ID:                 uuid.NewString(),
		UserID:             userId,
		Topic:              topic,
		Tone:               tone,
		TargetKeywords:     result.UserKeywords,
		AdditionalKeywords: result.AdditionalKeywords,
		BlogTitle:          result.BlogTitle,
		BlogOutline:        result.BlogOutline,
		BlogDraft:          result.BlogDraft,
		Status:             StatusDraft,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.Repo.Create(ctx, blog); err != nil {
		return Blog{}, err
	}
	if err := s.Repo.ReplaceDocuments(ctx, blog.ID, ownedIDs); err != nil {
		return Blog{}, err
	}
	blog.ReferenceDocumentIDs = ownedIDs
	return blog, nil
}

// Regenerate reruns generation for an existing blog. A non-empty documentIDs
// list replaces the blog's reference set (filtered to owned documents);
// otherwise the existing links are reused. Only one regeneration per blog may
// run at a time.
func (s *Service) Regenerate(ctx context.Context, userId, blogID string, documentIDs []string) (Blog, error) {
	if !s.acquire(blogID) {
		return Blog{}, ErrAlreadyInProgress
	}
	defer s.release(blogID)

	blog, err := s.Repo.GetByID(ctx, userId, blogID)
	if err != nil {
		return Blog{}, err
	}

	relink := len(documentIDs) > 0
	refIDs := blog.ReferenceDocumentIDs
	if relink {
		refIDs = documentIDs
	}

	ownedIDs, texts := s.referenceTexts(ctx, userId, refIDs)
	if len(texts) == 0 {
		return Blog{}, ErrNoReferenceText
	}

	result, err := s.Pipeline.Run(ctx, generate.Input{
		Topic:          blog.Topic,
		Tone:           string(blog.Tone),
		Keywords:       blog.TargetKeywords,
		ReferenceTexts: texts,
	})
	if err != nil {
		return Blog{}, err
	}

	blog.BlogTitle = result.BlogTitle
	blog.BlogOutline = result.BlogOutline
	blog.BlogDraft = result.BlogDraft
	blog.TargetKeywords = result.UserKeywords
	blog.AdditionalKeywords = result.AdditionalKeywords
	blog.UpdatedAt = time.Now().UTC()

	if err := s.Repo.Update(ctx, blog); err != nil {
		return Blog{}, err
	}
	if relink {
		if err := s.Repo.ReplaceDocuments(ctx, blog.ID, ownedIDs); err != nil {
			return Blog{}, err
		}
		blog.ReferenceDocumentIDs = ownedIDs
	}
	return blog, nil
}

// UpdateParams carries the editable fields; nil means leave unchanged.
type UpdateParams struct {
	Topic          *string
	Tone           *string
	BlogTitle      *string
	BlogOutline    *string
	BlogDraft      *string
	TargetKeywords *[]string
}

// Update applies a partial edit to a blog and refreshes its timestamp.
func (s *Service) Update(ctx context.Context, userId, blogID string, params UpdateParams) (Blog, error) {
	blog, err := s.Repo.GetByID(ctx, userId, blogID)
	if err != nil {
		return Blog{}, err
	}

	if params.Topic != nil {
		topic := strings.TrimSpace(*params.Topic)
		if topic == "" {
			return Blog{}, fmt.Errorf("%w: topic is required", ErrInvalidInput)
		}
		blog.Topic = topic
	}
	if params.Tone != nil {
		tone, err := ParseTone(*params.Tone)
		if err != nil {
			return Blog{}, fmt.Errorf("%w: unknown tone %q", ErrInvalidInput, *params.Tone)
		}
		blog.Tone = tone
	}
	if params.BlogTitle != nil {
		blog.BlogTitle = *params.BlogTitle
	}
	if params.BlogOutline != nil {
		blog.BlogOutline = *params.BlogOutline
	}
	if params.BlogDraft != nil {
		blog.BlogDraft = *params.BlogDraft
	}
	if params.TargetKeywords != nil {
		blog.TargetKeywords = *params.TargetKeywords
	}
	blog.UpdatedAt = time.Now().UTC()

	if err := s.Repo.Update(ctx, blog); err != nil {
		return Blog{}, err
	}
	return blog, nil
}

// Publish moves a draft to published.
func (s *Service) Publish(ctx context.Context, userId, blogID string) (Blog, error) {
	blog, err := s.Repo.GetByID(ctx, userId, blogID)
	if err != nil {
		return Blog{}, err
	}
	if blog.Status != StatusDraft {
		return Blog{}, fmt.Errorf("%w: only drafts can be published", ErrInvalidState)
	}
	blog.Status = StatusPublished
	blog.UpdatedAt = time.Now().UTC()

	if err := s.Repo.Update(ctx, blog); err != nil {
		return Blog{}, err
	}
	return blog, nil
}

// Get returns a blog owned by the user.
func (s *Service) Get(ctx context.Context, userId, blogID string) (Blog, error) {
	if userId == "" || blogID == "" {
		return Blog{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userId, blogID)
}

// List returns the user's blogs, newest first.
func (s *Service) List(ctx context.Context, userId string, limit, offset int) ([]Blog, error) {
	if userId == "" {
		return nil, errors.New("user id required")
	}
	return s.Repo.ListByUser(ctx, userId, limit, offset)
}

// Delete removes a blog.
func (s *Service) Delete(ctx context.Context, userId, blogID string) error {
	return s.Repo.Delete(ctx, userId, blogID)
}

// referenceTexts resolves document ids to owned documents and their cached
// extracted text. Unowned ids and failed extractions are skipped.
func (s *Service) referenceTexts(ctx context.Context, userId string, documentIDs []string) (ownedIDs []string, texts []string) {
	for _, docID := range documentIDs {
		doc, err := s.Docs.GetByID(ctx, userId, docID)
		if err != nil {
			if !errors.Is(err, documents.ErrNotFound) {
				telemetry.Error("reference document lookup failed", map[string]any{
					"document_id": docID,
					"error":       err.Error(),
				})
			}
			continue
		}
		ownedIDs = append(ownedIDs, doc.ID)
		if doc.Status == documents.StatusCompleted && doc.ProcessedContent != "" {
			texts = append(texts, doc.ProcessedContent)
		}
	}
	return ownedIDs, texts
}

func (s *Service) acquire(blogID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[blogID]; busy {
		return false
	}
	s.inflight[blogID] = struct{}{}
	return true
}

func (s *Service) release(blogID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, blogID)
}

func splitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
