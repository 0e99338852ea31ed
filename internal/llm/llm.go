package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts LLM providers for blog generation.
type Client interface {
	GenerateBlog(ctx context.Context, input GenerateInput) (json.RawMessage, error)
}

// GenerateInput captures the inputs needed for a blog generation request.
type GenerateInput struct {
	Topic         string
	Tone          string
	Keywords      []string
	ReferenceText string
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// GenerateBlog returns ErrNotImplemented.
func (PlaceholderClient) GenerateBlog(ctx context.Context, input GenerateInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotImplemented
}
