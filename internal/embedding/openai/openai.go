package openai

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"talkdocs/internal/domain"
	"talkdocs/internal/embedding"
	"talkdocs/internal/openaiclient"
	"talkdocs/internal/retry"
)

const defaultBatchSize = 64

// Client embeds texts through the OpenAI embeddings endpoint.
type Client struct {
	api       *openai.Client
	model     string
	batchSize int
	retry     retry.Policy
	logger    *slog.Logger

	mu        sync.Mutex
	dimension int
}

// Config configures the OpenAI embeddings client.
type Config struct {
	Model     string
	BatchSize int
	Retry     retry.Policy
}

// NewClient wraps an existing go-openai client.
func NewClient(api *openai.Client, cfg Config, logger *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = retry.Default
	}
	return &Client{
		api:       api,
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
		retry:     cfg.Retry,
		logger:    logger,
	}
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Dimension returns the width observed on the first successful call, or 0
// before any call.
func (c *Client) Dimension() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dimension
}

// Embed sends texts in batches and returns L2-normalised vectors in input
// order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, batch := range embedding.Batches(texts, c.batchSize) {
		vecs, err := c.embedBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (c *Client) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	var resp openai.EmbeddingResponse
	err := retry.Do(ctx, c.retry, c.logger, "openai embeddings", func(ctx context.Context) error {
		var err error
		resp, err = c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(c.model),
			Input: batch,
		})
		return openaiclient.Classify(err)
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(batch) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", domain.ErrShapeMismatch, len(batch), len(resp.Data))
	}

	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	vecs := make([][]float32, len(data))
	for i, d := range data {
		v := make([]float32, len(d.Embedding))
		for j := range d.Embedding {
			v[j] = float32(d.Embedding[j])
		}
		embedding.Normalize(v)
		vecs[i] = v
	}

	c.mu.Lock()
	if c.dimension == 0 && len(vecs) > 0 {
		c.dimension = len(vecs[0])
	}
	c.mu.Unlock()
	return vecs, nil
}
