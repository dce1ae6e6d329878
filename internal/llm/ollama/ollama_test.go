package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"talkdocs/internal/domain"
	"talkdocs/internal/llm"
	"talkdocs/internal/logging"
	"talkdocs/internal/retry"
)

func newTestChat(t *testing.T, h http.HandlerFunc) *Chat {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewChat(Config{
		BaseURL: srv.URL,
		Model:   "llama3.2",
		Retry:   retry.Policy{Attempts: 3, MinDelay: time.Millisecond, MaxDelay: time.Millisecond},
	}, logging.Discard())
}

func TestGenerate(t *testing.T) {
	c := newTestChat(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Stream || len(req.Messages) != 2 || req.Messages[0].Content != llm.SystemPrompt {
			t.Errorf("unexpected request: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(chatResponse{Message: Message{Role: "assistant", Content: "answer"}})
	})
	got, err := c.Generate(context.Background(), "prompt")
	if err != nil || got != "answer" {
		t.Fatalf("Generate = %q, %v", got, err)
	}
}

func TestGenerate_BadRequestNotRetried(t *testing.T) {
	var calls int32
	c := newTestChat(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "model not found", http.StatusNotFound)
	})
	_, err := c.Generate(context.Background(), "prompt")
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}
