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
	"talkdocs/internal/logging"
	"talkdocs/internal/retry"
)

func newTestEmbedder(t *testing.T, h http.HandlerFunc) *Embedder {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewEmbedder(Config{
		BaseURL:   srv.URL,
		Model:     "nomic-embed-text",
		BatchSize: 2,
		Retry:     retry.Policy{Attempts: 2, MinDelay: time.Millisecond, MaxDelay: time.Millisecond},
	}, logging.Discard())
}

func TestEmbed_Batches(t *testing.T) {
	var calls int32
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		atomic.AddInt32(&calls, 1)
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != "nomic-embed-text" {
			t.Errorf("model = %q", req.Model)
		}
		resp := embedResponse{}
		for range req.Input {
			resp.Embeddings = append(resp.Embeddings, []float32{0, 2})
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	vecs, err := e.Embed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vecs) != 3 || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("got %d vectors over %d calls, want 3 over 2", len(vecs), calls)
	}
	if vecs[2][1] != 1 {
		t.Fatalf("vector not normalised: %v", vecs[2])
	}
	if e.Dimension() != 2 {
		t.Fatalf("Dimension = %d, want 2", e.Dimension())
	}
}

func TestEmbed_CountMismatch(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{1}}})
	})
	_, err := e.Embed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestEmbed_RetriesServerError(t *testing.T) {
	var calls int32
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "loading model", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{1, 0}}})
	})
	if _, err := e.Embed(context.Background(), []string{"a"}); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}
