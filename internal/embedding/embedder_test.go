package embedding

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Fatalf("Normalize = %v, want [0.6 0.8]", v)
	}
	zero := []float32{0, 0, 0}
	Normalize(zero)
	for _, x := range zero {
		if x != 0 {
			t.Fatalf("zero vector changed: %v", zero)
		}
	}
}

func TestBatches(t *testing.T) {
	texts := []string{"a", "b", "c", "d", "e"}
	got := Batches(texts, 2)
	if len(got) != 3 || len(got[0]) != 2 || len(got[2]) != 1 || got[2][0] != "e" {
		t.Fatalf("Batches = %v", got)
	}
	if got := Batches(nil, 64); len(got) != 0 {
		t.Fatalf("Batches(nil) = %v", got)
	}
}
