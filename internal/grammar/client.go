// Package grammar checks text against a LanguageTool-compatible API and
// maps matches to editor-friendly suggestions.
package grammar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultLanguage = "en-US"

// Suggestion describes one grammar issue found in the text.
type Suggestion struct {
	Offset        int      `json:"offset"`
	Length        int      `json:"length"`
	Message       string   `json:"message"`
	Replacements  []string `json:"replacements"`
	Context       string   `json:"context"`
	ContextOffset int      `json:"contextOffset"`
}

// Client talks to a LanguageTool-compatible /v2/check endpoint.
type Client struct {
	baseURL    string
	language   string
	httpClient *http.Client
}

// NewClient constructs a grammar client.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("GRAMMAR_API_URL is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: defaultLanguage,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type checkResponse struct {
	Matches []struct {
		Offset       int    `json:"offset"`
		Length       int    `json:"length"`
		Message      string `json:"message"`
		Replacements []struct {
			Value string `json:"value"`
		} `json:"replacements"`
		Context struct {
			Text   string `json:"text"`
			Offset int    `json:"offset"`
		} `json:"context"`
	} `json:"matches"`
}

// Check submits text for checking and returns suggestions ordered as the
// API reports them.
func (c *Client) Check(ctx context.Context, text string) ([]Suggestion, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("grammar check request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("grammar check status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed checkResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("grammar check parse: %w", err)
	}

	suggestions := make([]Suggestion, 0, len(parsed.Matches))
	for _, match := range parsed.Matches {
		replacements := make([]string, 0, len(match.Replacements))
		for _, r := range match.Replacements {
			replacements = append(replacements, r.Value)
		}
		suggestions = append(suggestions, Suggestion{
			Offset:        match.Offset,
			Length:        match.Length,
			Message:       match.Message,
			Replacements:  replacements,
			Context:       match.Context.Text,
			ContextOffset: match.Context.Offset,
		})
	}
	return suggestions, nil
}
