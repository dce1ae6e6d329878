package hashing

import (
	"context"
	"errors"
	"hash/fnv"
	"math"

	"talkdocs/internal/embedding"
	"talkdocs/internal/tokenize"
)

// DefaultDimension is the width of all-MiniLM style sentence embeddings.
const DefaultDimension = 384

// Embedder is an offline feature-hashing vectorizer. Each non-stopword token
// and each adjacent token pair is hashed into one of dimension buckets with a
// hash-derived sign, weighted by sublinear term frequency and L2 normalised.
// No corpus preparation is needed.
type Embedder struct {
	dimension int
}

// NewEmbedder creates a hashing embedder producing vectors of the given width.
func NewEmbedder(dimension int) (*Embedder, error) {
	if dimension <= 0 {
		return nil, errors.New("invalid dimension")
	}
	return &Embedder{dimension: dimension}, nil
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "hashing" }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed hashes every text. Texts without tokens map to the zero vector.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embedOne(text)
	}
	return out, nil
}

func (e *Embedder) embedOne(text string) []float32 {
	tokens := tokenize.Words(text)
	tf := make(map[string]int, len(tokens)*2)
	for i, tok := range tokens {
		tf[tok]++
		if i > 0 {
			tf[tokens[i-1]+" "+tok]++
		}
	}

	acc := make([]float64, e.dimension)
	for feature, count := range tf {
		h := fnv.New64a()
		_, _ = h.Write([]byte(feature))
		sum := h.Sum64()
		idx := int(sum % uint64(e.dimension))
		weight := 1 + math.Log(float64(count))
		if sum>>63 == 1 {
			weight = -weight
		}
		acc[idx] += weight
	}

	vec := make([]float32, e.dimension)
	for i, v := range acc {
		vec[i] = float32(v)
	}
	embedding.Normalize(vec)
	return vec
}
