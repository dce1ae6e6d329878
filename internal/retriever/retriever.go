package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"talkdocs/internal/domain"
	"talkdocs/internal/embedding"
)

// Searcher is the read side of the vector index.
type Searcher interface {
	Search(query []float32, topK int) ([]domain.SearchHit, error)
}

// Retriever embeds a query and keeps the hits whose similarity clears a
// fixed threshold.
type Retriever struct {
	embedder  embedding.Embedder
	index     Searcher
	topK      int
	threshold float32
	logger    *slog.Logger
}

func New(embedder embedding.Embedder, index Searcher, topK int, threshold float32, logger *slog.Logger) *Retriever {
	return &Retriever{embedder: embedder, index: index, topK: topK, threshold: threshold, logger: logger}
}

// Retrieve returns at most topK chunks with score >= threshold, best first.
// A non-positive topK falls back to the configured default.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	if topK <= 0 {
		topK = r.topK
	}
	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("%w: expected 1 query vector, got %d", domain.ErrShapeMismatch, len(vecs))
	}
	hits, err := r.index.Search(vecs[0], topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	out := make([]domain.RetrievedChunk, 0, len(hits))
	for _, h := range hits {
		if h.Score < r.threshold {
			continue
		}
		out = append(out, domain.RetrievedChunk{Text: h.Chunk.Text, SourceFile: h.Chunk.SourceFile, Score: h.Score})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	r.logger.Debug("retrieved chunks", "candidates", len(hits), "kept", len(out), "threshold", r.threshold)
	return out, nil
}
