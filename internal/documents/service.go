package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"seoblog-backend/internal/extract"
	"seoblog-backend/internal/shared/storage/object"
	"seoblog-backend/internal/shared/telemetry"
	"seoblog-backend/internal/shared/util"
)

// allowedMimeTypes mirrors what the upload form accepts: PDF, legacy Word,
// and OOXML Word documents. Plain text is accepted for API clients.
var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain": true,
}

// Service contains business logic for documents.
type Service struct {
	Store          object.ObjectStore
	Repo           DocumentsRepo
	MaxUploadBytes int64
}

// Upload validates and stores the file, records the document, and
// synchronously extracts its text so later generation runs read from cache.
func (s *Service) Upload(ctx context.Context, userId, title, originalFilename, declaredMime string, r io.Reader) (Document, error) {
	if strings.TrimSpace(originalFilename) == "" {
		return Document{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}

	mime := strings.ToLower(strings.TrimSpace(declaredMime))
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	if !allowedMimeTypes[mime] {
		return Document{}, fmt.Errorf("%w: unsupported file type %q", ErrInvalidInput, declaredMime)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, err
	}
	if len(data) == 0 {
		return Document{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if s.MaxUploadBytes > 0 && int64(len(data)) > s.MaxUploadBytes {
		return Document{}, fmt.Errorf("%w: file size exceeds limit of %d bytes", ErrInvalidInput, s.MaxUploadBytes)
	}

	fileName, err := util.StorageFileName(title, originalFilename)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	storageKey, size, sniffedMime, err := s.Store.Save(ctx, userId, fileName, bytes.NewReader(data))
	if err != nil {
		return Document{}, err
	}
	if sniffedMime == "" || sniffedMime == "application/octet-stream" {
		sniffedMime = mime
	}

	doc := Document{
		ID:               uuid.NewString(),
		UserID:           userId,
		Title:            strings.TrimSpace(title),
		FileName:         fileName,
		OriginalFilename: originalFilename,
		FileType:         fileExtension(fileName),
		MimeType:         sniffedMime,
		SizeBytes:        size,
		StorageKey:       storageKey,
		Status:           StatusPending,
		UploadedAt:       time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	return s.process(ctx, doc, data)
}

// process runs extraction and caches the result on the record. Extraction
// failure marks the document failed but is not an upload error.
func (s *Service) process(ctx context.Context, doc Document, data []byte) (Document, error) {
	doc.Status = StatusProcessing

	text, err := extract.Extract(data, "."+doc.FileType)
	if err != nil {
		telemetry.Error("document extraction failed", map[string]any{
			"document_id": doc.ID,
			"file_type":   doc.FileType,
			"error":       err.Error(),
		})
		doc.Status = StatusFailed
		doc.ProcessedContent = ""
		doc.WordCount = 0
	} else {
		doc.Status = StatusCompleted
		doc.ProcessedContent = text
		doc.WordCount = len(strings.Fields(text))
	}

	if err := s.Repo.UpdateProcessing(ctx, doc.UserID, doc.ID, doc.ProcessedContent, doc.WordCount, doc.Status); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Get returns a document owned by the user.
func (s *Service) Get(ctx context.Context, userId, documentID string) (Document, error) {
	if userId == "" || documentID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userId, documentID)
}

// List returns the user's documents, newest first.
func (s *Service) List(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	if userId == "" {
		return nil, errors.New("user id required")
	}
	return s.Repo.ListByUser(ctx, userId, limit, offset)
}

// Delete releases the stored object, then removes the record. A storage
// release failure aborts the delete so the record still points at the object.
func (s *Service) Delete(ctx context.Context, userId, documentID string) error {
	doc, err := s.Repo.GetByID(ctx, userId, documentID)
	if err != nil {
		return err
	}
	if doc.StorageKey != "" {
		if err := s.Store.Delete(ctx, doc.StorageKey); err != nil {
			return fmt.Errorf("release stored object: %w", err)
		}
	}
	return s.Repo.Delete(ctx, userId, documentID)
}

func fileExtension(fileName string) string {
	if idx := strings.LastIndex(fileName, "."); idx >= 0 && idx < len(fileName)-1 {
		return strings.ToLower(fileName[idx+1:])
	}
	return ""
}
