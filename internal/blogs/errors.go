package blogs

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidState      = errors.New("invalid status")
	ErrAlreadyInProgress = errors.New("generation already in progress")
	ErrNoReferenceText   = errors.New("no reference content could be extracted")
)
