package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"talkdocs/internal/domain"
	"talkdocs/internal/embedding"
	"talkdocs/internal/retry"
)

const defaultBatchSize = 32

// Embedder calls the Ollama /api/embed endpoint.
type Embedder struct {
	baseURL   string
	model     string
	batchSize int
	client    *http.Client
	retry     retry.Policy
	logger    *slog.Logger

	mu        sync.Mutex
	dimension int
}

// Config configures the Ollama embedder.
type Config struct {
	BaseURL   string
	Model     string
	BatchSize int
	Timeout   time.Duration
	Retry     retry.Policy
}

// NewEmbedder creates an embedder targeting the given Ollama instance.
func NewEmbedder(cfg Config, logger *slog.Logger) *Embedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "nomic-embed-text"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = retry.Default
	}
	return &Embedder{
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
		client:    &http.Client{Timeout: cfg.Timeout},
		retry:     cfg.Retry,
		logger:    logger,
	}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "ollama" }

// Dimension returns the width observed on the first successful call, or 0
// before any call.
func (e *Embedder) Dimension() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dimension
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed sends texts to Ollama in batches and returns L2-normalised vectors in
// input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, batch := range embedding.Batches(texts, e.batchSize) {
		var vecs [][]float32
		err := retry.Do(ctx, e.retry, e.logger, "ollama embed", func(ctx context.Context) error {
			var err error
			vecs, err = e.embedBatch(ctx, batch)
			return err
		})
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *Embedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("marshal embed request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("build embed request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("ollama embed returned %d: %s", resp.StatusCode, string(respBody))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, retry.Permanent(fmt.Errorf("%w: expected %d embeddings, got %d", domain.ErrShapeMismatch, len(texts), len(result.Embeddings)))
	}
	for _, v := range result.Embeddings {
		embedding.Normalize(v)
	}

	e.mu.Lock()
	if e.dimension == 0 && len(result.Embeddings) > 0 {
		e.dimension = len(result.Embeddings[0])
	}
	e.mu.Unlock()
	return result.Embeddings, nil
}
