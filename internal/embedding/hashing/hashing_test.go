package hashing

import (
	"context"
	"math"
	"testing"
)

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestEmbed_ShapeAndNorm(t *testing.T) {
	e, err := NewEmbedder(DefaultDimension)
	if err != nil {
		t.Fatalf("NewEmbedder failed: %v", err)
	}
	vecs, err := e.Embed(context.Background(), []string{"Vector indexes store embeddings.", "Another sentence about retrieval."})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vecs))
	}
	for i, v := range vecs {
		if len(v) != DefaultDimension {
			t.Fatalf("vector %d has width %d", i, len(v))
		}
		if n := math.Sqrt(dot(v, v)); math.Abs(n-1) > 1e-5 {
			t.Fatalf("vector %d norm = %f, want 1", i, n)
		}
	}
}

func TestEmbed_IdenticalTextScoresOne(t *testing.T) {
	e, _ := NewEmbedder(128)
	text := "The retriever drops results below the similarity threshold."
	vecs, err := e.Embed(context.Background(), []string{text, text})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if s := dot(vecs[0], vecs[1]); math.Abs(s-1) > 1e-5 {
		t.Fatalf("self similarity = %f, want 1", s)
	}
}

func TestEmbed_RelatedBeatsUnrelated(t *testing.T) {
	e, _ := NewEmbedder(DefaultDimension)
	vecs, _ := e.Embed(context.Background(), []string{
		"persist the vector index to disk",
		"the vector index is persisted to disk after every ingestion",
		"bananas grow in tropical climates",
	})
	related := dot(vecs[0], vecs[1])
	unrelated := dot(vecs[0], vecs[2])
	if related <= unrelated {
		t.Fatalf("related %f should beat unrelated %f", related, unrelated)
	}
}

func TestEmbed_StopwordsOnlyIsZero(t *testing.T) {
	e, _ := NewEmbedder(16)
	vecs, _ := e.Embed(context.Background(), []string{"the and of", ""})
	for i, v := range vecs {
		for _, x := range v {
			if x != 0 {
				t.Fatalf("vector %d should be zero: %v", i, v)
			}
		}
	}
}

func TestNewEmbedder_InvalidDimension(t *testing.T) {
	if _, err := NewEmbedder(0); err == nil {
		t.Fatal("expected error for zero dimension")
	}
}
