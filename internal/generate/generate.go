// Package generate orchestrates blog content generation: it condenses
// reference material, calls the configured LLM, and normalizes the model's
// JSON into a structured result.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"seoblog-backend/internal/llm"
	"seoblog-backend/internal/shared/metrics"
	"seoblog-backend/internal/summarize"
)

// GenerationError wraps transport or provider failures from the LLM call.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("blog generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// MalformedResponseError reports a parseable JSON response that is missing
// required keys.
type MalformedResponseError struct {
	Missing []string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("missing required keys in response: %s", strings.Join(e.Missing, ", "))
}

// Fallback text used when the model returns unparseable output.
const (
	fallbackOutline = "Error generating outline"
	fallbackDraft   = "Error generating draft"
)

// Input carries everything needed for one generation run.
type Input struct {
	Topic          string
	Tone           string
	Keywords       []string
	ReferenceTexts []string
}

// Result is the normalized generation output.
type Result struct {
	BlogTitle          string
	BlogOutline        string
	BlogDraft          string
	UserKeywords       []string
	AdditionalKeywords []string
}

// Pipeline runs blog generation against an injected LLM client.
type Pipeline struct {
	LLM           llm.Client
	SummaryBudget int
	Timeout       time.Duration
}

// Run executes one generation. Unparseable model output degrades to a
// fallback result; a structurally incomplete response or a failed LLM call
// comes back as an error.
func (p *Pipeline) Run(ctx context.Context, input Input) (Result, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	reference := strings.Join(input.ReferenceTexts, "\n\n")
	if p.SummaryBudget > 0 {
		reference = summarize.Summarize(reference, p.SummaryBudget)
	}

	metrics.IncGenerationStarted()
	started := time.Now()

	raw, err := p.LLM.GenerateBlog(ctx, llm.GenerateInput{
		Topic:         input.Topic,
		Tone:          input.Tone,
		Keywords:      input.Keywords,
		ReferenceText: reference,
	})
	metrics.ObserveGenerationDurationMs(float64(time.Since(started)) / float64(time.Millisecond))
	if err != nil {
		metrics.IncGenerationFailed()
		return Result{}, &GenerationError{Err: err}
	}

	result, err := parseResponse(raw, input)
	if err != nil {
		metrics.IncGenerationFailed()
		return Result{}, err
	}
	metrics.IncGenerationCompleted()
	return result, nil
}

type rawKeywords struct {
	UserKeywords       *[]string `json:"user_keywords"`
	AdditionalKeywords *[]string `json:"additional_keywords"`
}

type rawResult struct {
	BlogTitle   *string         `json:"blog_title"`
	Keywords    *rawKeywords    `json:"keywords"`
	BlogOutline json.RawMessage `json:"blog_outline"`
	BlogDraft   json.RawMessage `json:"blog_draft"`
}

func parseResponse(raw json.RawMessage, input Input) (Result, error) {
	var parsed rawResult
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fallbackResult(input), nil
	}

	var missing []string
	if parsed.BlogTitle == nil {
		missing = append(missing, "blog_title")
	}
	if len(parsed.BlogOutline) == 0 {
		missing = append(missing, "blog_outline")
	}
	if len(parsed.BlogDraft) == 0 {
		missing = append(missing, "blog_draft")
	}
	if len(missing) > 0 {
		return Result{}, &MalformedResponseError{Missing: missing}
	}

	result := Result{
		BlogTitle:          *parsed.BlogTitle,
		BlogOutline:        coerceText(parsed.BlogOutline),
		BlogDraft:          coerceText(parsed.BlogDraft),
		UserKeywords:       input.Keywords,
		AdditionalKeywords: []string{},
	}

	// A missing or damaged keywords block is repaired from the request
	// rather than rejected.
	if parsed.Keywords != nil {
		if parsed.Keywords.UserKeywords != nil {
			result.UserKeywords = *parsed.Keywords.UserKeywords
		}
		if parsed.Keywords.AdditionalKeywords != nil {
			result.AdditionalKeywords = *parsed.Keywords.AdditionalKeywords
		}
	}
	if result.UserKeywords == nil {
		result.UserKeywords = []string{}
	}
	return result, nil
}

func fallbackResult(input Input) Result {
	keywords := input.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return Result{
		BlogTitle:          input.Topic,
		BlogOutline:        fallbackOutline,
		BlogDraft:          fallbackDraft,
		UserKeywords:       keywords,
		AdditionalKeywords: []string{},
	}
}

// coerceText renders a JSON value as display text: strings are unquoted,
// anything else (the model occasionally returns outlines as objects or
// arrays) is kept as its raw JSON encoding.
func coerceText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
