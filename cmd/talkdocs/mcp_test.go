package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"talkdocs/internal/domain"
)

type fakeRAG struct {
	ingested []string
	askTopK  int
	cleared  bool
	askErr   error
}

func (f *fakeRAG) IngestFile(ctx context.Context, path string) (domain.IngestionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.IngestionResult{}, err
	}
	fileName := filepath.Base(path)
	if len(data) == 0 {
		return domain.IngestionResult{}, fmt.Errorf("%w: No text chunks generated for %s", domain.ErrEmptyDocument, fileName)
	}
	f.ingested = append(f.ingested, path)
	return domain.IngestionResult{FileName: fileName, ChunksIndexed: 2}, nil
}

func (f *fakeRAG) Ask(ctx context.Context, question string, topK int) (domain.Answer, error) {
	f.askTopK = topK
	if f.askErr != nil {
		return domain.Answer{}, f.askErr
	}
	return domain.Answer{
		Text:      "Paris [1]",
		Citations: []domain.Citation{{Rank: 1, Source: "france.txt", Score: 0.8123}},
	}, nil
}

func (f *fakeRAG) Search(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	return []domain.RetrievedChunk{{Text: "Paris is the capital.", SourceFile: "france.txt", Score: 0.81}}, nil
}

func (f *fakeRAG) Clear() error {
	f.cleared = true
	return nil
}

func (f *fakeRAG) Status() domain.IndexStatus {
	return domain.IndexStatus{Name: "default_index", Chunks: 7, Dimension: 384}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatalf("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return tc.Text
}

func TestAskHandler(t *testing.T) {
	f := &fakeRAG{}
	res, err := makeAskHandler(f)(context.Background(), callRequest(map[string]any{"question": "capital?", "top_k": float64(3)}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	text := resultText(t, res)
	if !strings.HasPrefix(text, "Paris [1]") || !strings.Contains(text, "[1] france.txt (similarity=0.8123)") {
		t.Fatalf("unexpected answer text:\n%s", text)
	}
	if f.askTopK != 3 {
		t.Fatalf("top_k not passed through: %d", f.askTopK)
	}
}

func TestAskHandler_MissingQuestion(t *testing.T) {
	res, err := makeAskHandler(&fakeRAG{})(context.Background(), callRequest(map[string]any{"question": "  "}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected error result")
	}
}

func TestAskHandler_GenerationFailureIsFriendly(t *testing.T) {
	f := &fakeRAG{askErr: fmt.Errorf("%w: openai chat: boom", domain.ErrGeneration)}
	res, _ := makeAskHandler(f)(context.Background(), callRequest(map[string]any{"question": "q"}))
	if !res.IsError {
		t.Fatalf("expected error result")
	}
	if strings.Contains(resultText(t, res), "boom") {
		t.Fatalf("internal detail leaked: %s", resultText(t, res))
	}
}

func TestIngestHandler(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("some text"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := &fakeRAG{}
	res, err := makeIngestHandler(f)(context.Background(), callRequest(map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if got := resultText(t, res); got != "Indexed 'notes.txt' into 2 chunks." {
		t.Fatalf("unexpected text: %q", got)
	}
	if len(f.ingested) != 1 || f.ingested[0] != path {
		t.Fatalf("expected %s to be ingested, got %v", path, f.ingested)
	}
}

func TestIngestHandler_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.txt")
	res, _ := makeIngestHandler(&fakeRAG{})(context.Background(), callRequest(map[string]any{"path": path}))
	if !res.IsError {
		t.Fatalf("expected error result")
	}
	if got := resultText(t, res); !strings.HasPrefix(got, "Cannot read "+path) {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestIngestHandler_EmptyDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	res, _ := makeIngestHandler(&fakeRAG{})(context.Background(), callRequest(map[string]any{"path": path}))
	if !res.IsError {
		t.Fatalf("expected error result")
	}
	if got := resultText(t, res); got != "No text chunks generated for empty.txt" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestClearAndStatusHandlers(t *testing.T) {
	f := &fakeRAG{}
	if _, err := makeClearHandler(f)(context.Background(), callRequest(nil)); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !f.cleared {
		t.Fatalf("clear not forwarded")
	}
	res, err := makeStatusHandler(f)(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if text := resultText(t, res); !strings.Contains(text, "Indexed chunks: 7") {
		t.Fatalf("unexpected status: %s", text)
	}
}

func TestFormatSearchResults(t *testing.T) {
	if got := formatSearchResults("x", nil); !strings.Contains(got, "No chunks matched") {
		t.Fatalf("unexpected empty output: %q", got)
	}
	got := formatSearchResults("capital", []domain.RetrievedChunk{{Text: "Paris.", SourceFile: "a.txt", Score: 0.5}})
	if !strings.Contains(got, "### 1. a.txt (score=0.500)") {
		t.Fatalf("unexpected output:\n%s", got)
	}
}
