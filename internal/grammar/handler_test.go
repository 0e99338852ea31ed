package grammar_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"seoblog-backend/internal/bootstrap"
	"seoblog-backend/internal/grammar"
	"seoblog-backend/internal/shared/config"
)

type stubChecker struct {
	suggestions []grammar.Suggestion
	err         error
}

func (s *stubChecker) Check(ctx context.Context, text string) ([]grammar.Suggestion, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.suggestions, nil
}

func buildApp(t *testing.T, checker grammar.Checker) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LocalStoreDir:   t.TempDir(),
		Env:             "dev",
		ObjectStoreType: "local",
	}

	app, err := bootstrap.Build(cfg, bootstrap.Options{GrammarChecker: checker})
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app
}

func postCheck(t *testing.T, router http.Handler, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/grammar/check", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestGrammarCheckReturnsSuggestions(t *testing.T) {
	app := buildApp(t, &stubChecker{
		suggestions: []grammar.Suggestion{
			{Offset: 5, Length: 3, Message: "Possible agreement error", Replacements: []string{"is"}, Context: "This are a test.", ContextOffset: 5},
		},
	})

	resp := postCheck(t, app.Router, `{"text":"This are a test."}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var parsed struct {
		Suggestions []grammar.Suggestion `json:"suggestions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(parsed.Suggestions) != 1 || parsed.Suggestions[0].Message != "Possible agreement error" {
		t.Fatalf("unexpected suggestions: %+v", parsed.Suggestions)
	}
}

func TestGrammarCheckRequiresText(t *testing.T) {
	app := buildApp(t, &stubChecker{})

	for _, payload := range []string{`{}`, `{"text":"   "}`, `not json`} {
		resp := postCheck(t, app.Router, payload)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("payload %q: expected 400, got %d", payload, resp.Code)
		}
	}
}

func TestGrammarCheckUnconfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LocalStoreDir:   t.TempDir(),
		Env:             "dev",
		ObjectStoreType: "local",
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}

	resp := postCheck(t, app.Router, `{"text":"Some text."}`)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 without grammar API, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("grammar_check_failed")) {
		t.Fatalf("unexpected error body: %s", resp.Body.String())
	}
}

func TestGrammarCheckServiceFailure(t *testing.T) {
	app := buildApp(t, &stubChecker{err: errors.New("languagetool down")})

	resp := postCheck(t, app.Router, `{"text":"Some text."}`)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
}
