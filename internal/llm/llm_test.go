package llm

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("How big is the index?", []string{"[1] Source: a.txt | Relevance: 0.900\nFirst.", "[2] Source: b.txt | Relevance: 0.500\nSecond."})
	for _, want := range []string{
		"Only state information that appears in the context.",
		"Question: How big is the index?",
		"Context:\n[1] Source: a.txt | Relevance: 0.900\nFirst.\n\n[2] Source: b.txt",
		"include references in [n] format.",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestSplitPrompt(t *testing.T) {
	p := BuildPrompt("q?", []string{"[1] Source: a | Relevance: 1.000\nbody"})
	q, ctx, ok := SplitPrompt(p)
	if !ok {
		t.Fatal("SplitPrompt failed on a built prompt")
	}
	if q != "q?" || ctx != "[1] Source: a | Relevance: 1.000\nbody" {
		t.Fatalf("SplitPrompt = %q, %q", q, ctx)
	}
	if _, _, ok := SplitPrompt("free form"); ok {
		t.Fatal("SplitPrompt accepted a free-form prompt")
	}
}
