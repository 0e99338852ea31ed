package documents

import "time"

// Status tracks a document through its extraction lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Valid reports whether the status is one of the known lifecycle values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Document represents an uploaded reference document owned by a user.
type Document struct {
	ID               string
	UserID           string
	Title            string
	FileName         string
	OriginalFilename string
	FileType         string
	MimeType         string
	SizeBytes        int64
	StorageKey       string
	ProcessedContent string
	WordCount        int
	Status           Status
	UploadedAt       time.Time
}
