package openai

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"talkdocs/internal/logging"
	"talkdocs/internal/retry"
)

type embedReq struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

func newTestClient(t *testing.T, h http.HandlerFunc, batch int) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL + "/v1"
	return NewClient(openai.NewClientWithConfig(cfg), Config{
		BatchSize: batch,
		Retry:     retry.Policy{Attempts: 3, MinDelay: time.Millisecond, MaxDelay: time.Millisecond},
	}, logging.Discard())
}

// respond returns vectors whose first component encodes the input text length,
// listed in reverse order to exercise index sorting.
func respond(w http.ResponseWriter, inputs []string) {
	type item struct {
		Object    string    `json:"object"`
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	}
	data := make([]item, 0, len(inputs))
	for i := len(inputs) - 1; i >= 0; i-- {
		data = append(data, item{Object: "embedding", Index: i, Embedding: []float32{float32(len(inputs[i])), 0, 0}})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data, "model": "text-embedding-3-small"})
}

func TestEmbed_BatchesAndOrders(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var req embedReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Input) > 2 {
			t.Errorf("batch too large: %d", len(req.Input))
		}
		respond(w, req.Input)
	}, 2)

	if c.Dimension() != 0 {
		t.Fatalf("Dimension before first call = %d, want 0", c.Dimension())
	}
	vecs, err := c.Embed(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vecs) != 5 {
		t.Fatalf("expected 5 vectors, got %d", len(vecs))
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected 3 requests, got %d", calls)
	}
	for i, v := range vecs {
		if math.Abs(float64(v[0])-1) > 1e-6 {
			t.Fatalf("vector %d not normalised: %v", i, v)
		}
	}
	if c.Dimension() != 3 {
		t.Fatalf("Dimension = %d, want 3", c.Dimension())
	}
}

func TestEmbed_RetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, `{"error":{"message":"overloaded","type":"server_error"}}`, http.StatusServiceUnavailable)
			return
		}
		var req embedReq
		_ = json.NewDecoder(r.Body).Decode(&req)
		respond(w, req.Input)
	}, 0)

	if _, err := c.Embed(context.Background(), []string{"hello"}); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 requests, got %d", calls)
	}
}

func TestEmbed_DoesNotRetryBadRequest(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad input","type":"invalid_request_error"}}`))
	}, 0)

	if _, err := c.Embed(context.Background(), []string{"hello"}); err == nil {
		t.Fatal("expected error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected 1 request, got %d", calls)
	}
}
