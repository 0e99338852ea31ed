package blogs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"seoblog-backend/internal/documents"
	"seoblog-backend/internal/generate"
	"seoblog-backend/internal/llm"
)

type scriptedClient struct {
	mu       sync.Mutex
	response json.RawMessage
	err      error
	block    chan struct{} // when set, GenerateBlog waits until closed
	calls    int
	lastIn   llm.GenerateInput
}

func (f *scriptedClient) GenerateBlog(ctx context.Context, input llm.GenerateInput) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls++
	f.lastIn = input
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func goodResponse() json.RawMessage {
	return json.RawMessage(`{
		"blog_title": "Generated Title",
		"keywords": {"user_keywords": ["seo"], "additional_keywords": ["search"]},
		"blog_outline": "## Outline",
		"blog_draft": "Draft body."
	}`)
}

func seedDocument(t *testing.T, repo documents.DocumentsRepo, userId, id, content string, status documents.Status) {
	t.Helper()
	err := repo.Create(context.Background(), documents.Document{
		ID:               id,
		UserID:           userId,
		FileName:         id + ".txt",
		FileType:         "txt",
		MimeType:         "text/plain",
		ProcessedContent: content,
		WordCount:        len(content),
		Status:           status,
		UploadedAt:       time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed document: %v", err)
	}
}

func newTestService(client llm.Client) (*Service, *documents.MemoryRepo) {
	docs := documents.NewMemoryRepo()
	svc := NewService(NewMemoryRepo(), docs, &generate.Pipeline{LLM: client, SummaryBudget: 8000})
	return svc, docs
}

func TestCreateGeneratesAndLinksDocuments(t *testing.T) {
	svc, docs := newTestService(&scriptedClient{response: goodResponse()})
	seedDocument(t, docs, "u1", "doc-1", "reference text", documents.StatusCompleted)
	seedDocument(t, docs, "u1", "doc-2", "", documents.StatusFailed)

	blog, err := svc.Create(context.Background(), "u1", CreateParams{
		Topic:       "Remote work",
		Tone:        "professional",
		Keywords:    "seo, remote work",
		DocumentIDs: []string{"doc-1", "doc-2", "not-owned"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if blog.BlogTitle != "Generated Title" || blog.Status != StatusDraft {
		t.Fatalf("unexpected blog: %+v", blog)
	}
	// Owned documents stay linked even when extraction failed; unowned ids
	// are dropped.
	if len(blog.ReferenceDocumentIDs) != 2 {
		t.Fatalf("unexpected linked documents: %v", blog.ReferenceDocumentIDs)
	}

	stored, err := svc.Get(context.Background(), "u1", blog.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.BlogDraft != "Draft body." {
		t.Fatalf("draft not persisted: %q", stored.BlogDraft)
	}
}

func TestCreateRequiresTopic(t *testing.T) {
	svc, _ := newTestService(&scriptedClient{response: goodResponse()})

	_, err := svc.Create(context.Background(), "u1", CreateParams{Tone: "casual"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateRejectsUnknownTone(t *testing.T) {
	svc, _ := newTestService(&scriptedClient{response: goodResponse()})

	_, err := svc.Create(context.Background(), "u1", CreateParams{Topic: "T", Tone: "sarcastic"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateFailsWithoutUsableReferences(t *testing.T) {
	svc, docs := newTestService(&scriptedClient{response: goodResponse()})
	seedDocument(t, docs, "u1", "doc-1", "", documents.StatusFailed)

	_, err := svc.Create(context.Background(), "u1", CreateParams{
		Topic:       "T",
		Tone:        "casual",
		DocumentIDs: []string{"doc-1"},
	})
	if !errors.Is(err, ErrNoReferenceText) {
		t.Fatalf("expected ErrNoReferenceText, got %v", err)
	}
}

func TestCreateSurfacesGenerationFailure(t *testing.T) {
	svc, docs := newTestService(&scriptedClient{err: errors.New("provider down")})
	seedDocument(t, docs, "u1", "doc-1", "reference", documents.StatusCompleted)

	_, err := svc.Create(context.Background(), "u1", CreateParams{
		Topic:       "T",
		Tone:        "casual",
		DocumentIDs: []string{"doc-1"},
	})
	var genErr *generate.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestRegenerateUpdatesContent(t *testing.T) {
	client := &scriptedClient{response: goodResponse()}
	svc, docs := newTestService(client)
	seedDocument(t, docs, "u1", "doc-1", "reference", documents.StatusCompleted)

	blog, err := svc.Create(context.Background(), "u1", CreateParams{
		Topic:       "T",
		Tone:        "casual",
		DocumentIDs: []string{"doc-1"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	firstUpdated := blog.UpdatedAt

	client.mu.Lock()
	client.response = json.RawMessage(`{"blog_title":"Second Title","blog_outline":"O2","blog_draft":"D2"}`)
	client.mu.Unlock()

	regenerated, err := svc.Regenerate(context.Background(), "u1", blog.ID, nil)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if regenerated.BlogTitle != "Second Title" || regenerated.BlogDraft != "D2" {
		t.Fatalf("unexpected regenerated blog: %+v", regenerated)
	}
	if regenerated.UpdatedAt.Before(firstUpdated) {
		t.Fatal("expected UpdatedAt refreshed")
	}
}

func TestRegenerateReplacesReferenceDocuments(t *testing.T) {
	client := &scriptedClient{response: goodResponse()}
	svc, docs := newTestService(client)
	seedDocument(t, docs, "u1", "doc-a", "alpha reference", documents.StatusCompleted)
	seedDocument(t, docs, "u1", "doc-b", "beta reference", documents.StatusCompleted)

	blog, err := svc.Create(context.Background(), "u1", CreateParams{
		Topic:       "T",
		Tone:        "casual",
		DocumentIDs: []string{"doc-a"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	regenerated, err := svc.Regenerate(context.Background(), "u1", blog.ID, []string{"doc-b"})
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}

	client.mu.Lock()
	reference := client.lastIn.ReferenceText
	client.mu.Unlock()
	if reference != "beta reference" {
		t.Fatalf("expected replacement document content, got %q", reference)
	}
	if len(regenerated.ReferenceDocumentIDs) != 1 || regenerated.ReferenceDocumentIDs[0] != "doc-b" {
		t.Fatalf("expected links replaced with doc-b, got %v", regenerated.ReferenceDocumentIDs)
	}

	stored, err := svc.Get(context.Background(), "u1", blog.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.ReferenceDocumentIDs) != 1 || stored.ReferenceDocumentIDs[0] != "doc-b" {
		t.Fatalf("replacement links not persisted: %v", stored.ReferenceDocumentIDs)
	}
}

func TestRegenerateIgnoresUnownedReplacementDocuments(t *testing.T) {
	client := &scriptedClient{response: goodResponse()}
	svc, docs := newTestService(client)
	seedDocument(t, docs, "u1", "doc-a", "alpha reference", documents.StatusCompleted)
	seedDocument(t, docs, "intruder", "doc-x", "foreign reference", documents.StatusCompleted)

	blog, err := svc.Create(context.Background(), "u1", CreateParams{
		Topic:       "T",
		Tone:        "casual",
		DocumentIDs: []string{"doc-a"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Regenerate(context.Background(), "u1", blog.ID, []string{"doc-x"}); !errors.Is(err, ErrNoReferenceText) {
		t.Fatalf("expected ErrNoReferenceText for unowned replacement, got %v", err)
	}

	stored, err := svc.Get(context.Background(), "u1", blog.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.ReferenceDocumentIDs) != 1 || stored.ReferenceDocumentIDs[0] != "doc-a" {
		t.Fatalf("links should be untouched on failure, got %v", stored.ReferenceDocumentIDs)
	}
}

func TestRegenerateConflictsWhileRunning(t *testing.T) {
	block := make(chan struct{})
	client := &scriptedClient{response: goodResponse(), block: block}
	svc, docs := newTestService(client)
	seedDocument(t, docs, "u1", "doc-1", "reference", documents.StatusCompleted)

	client.mu.Lock()
	client.block = nil
	client.mu.Unlock()
	blog, err := svc.Create(context.Background(), "u1", CreateParams{
		Topic:       "T",
		Tone:        "casual",
		DocumentIDs: []string{"doc-1"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	client.mu.Lock()
	client.block = block
	client.mu.Unlock()

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := svc.Regenerate(context.Background(), "u1", blog.ID, nil)
		done <- err
	}()
	<-started
	// Wait for the first regeneration to hold the slot.
	for i := 0; i < 100; i++ {
		svc.mu.Lock()
		_, busy := svc.inflight[blog.ID]
		svc.mu.Unlock()
		if busy {
			break
		}
		time.Sleep(time.Millisecond)
	}

	_, err = svc.Regenerate(context.Background(), "u1", blog.ID, nil)
	if !errors.Is(err, ErrAlreadyInProgress) {
		t.Fatalf("expected ErrAlreadyInProgress, got %v", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first regeneration failed: %v", err)
	}

	// Slot is released; a later regeneration succeeds.
	if _, err := svc.Regenerate(context.Background(), "u1", blog.ID, nil); err != nil {
		t.Fatalf("regenerate after release: %v", err)
	}
}

func TestUpdateAppliesPartialEdit(t *testing.T) {
	svc, docs := newTestService(&scriptedClient{response: goodResponse()})
	seedDocument(t, docs, "u1", "doc-1", "reference", documents.StatusCompleted)

	blog, err := svc.Create(context.Background(), "u1", CreateParams{
		Topic:       "T",
		Tone:        "casual",
		DocumentIDs: []string{"doc-1"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	draft := "Edited draft"
	updated, err := svc.Update(context.Background(), "u1", blog.ID, UpdateParams{BlogDraft: &draft})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.BlogDraft != "Edited draft" {
		t.Fatalf("draft not updated: %q", updated.BlogDraft)
	}
	if updated.BlogTitle != blog.BlogTitle {
		t.Fatalf("unrelated field changed: %q", updated.BlogTitle)
	}
}

func TestPublishLifecycle(t *testing.T) {
	svc, docs := newTestService(&scriptedClient{response: goodResponse()})
	seedDocument(t, docs, "u1", "doc-1", "reference", documents.StatusCompleted)

	blog, err := svc.Create(context.Background(), "u1", CreateParams{
		Topic:       "T",
		Tone:        "casual",
		DocumentIDs: []string{"doc-1"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	published, err := svc.Publish(context.Background(), "u1", blog.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.Status != StatusPublished {
		t.Fatalf("expected published status, got %s", published.Status)
	}

	if _, err := svc.Publish(context.Background(), "u1", blog.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on double publish, got %v", err)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	svc, docs := newTestService(&scriptedClient{response: goodResponse()})
	seedDocument(t, docs, "owner", "doc-1", "reference", documents.StatusCompleted)

	blog, err := svc.Create(context.Background(), "owner", CreateParams{
		Topic:       "T",
		Tone:        "casual",
		DocumentIDs: []string{"doc-1"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(context.Background(), "intruder", blog.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
	if err := svc.Delete(context.Background(), "intruder", blog.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user delete, got %v", err)
	}
}

func TestSplitKeywords(t *testing.T) {
	got := splitKeywords(" a, b ,, c,")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected split: %v", got)
	}
	if got := splitKeywords(""); len(got) != 0 {
		t.Fatalf("expected empty split, got %v", got)
	}
}
