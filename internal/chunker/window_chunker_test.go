package chunker

import (
	"errors"
	"strings"
	"testing"

	"talkdocs/internal/domain"
)

func TestNewWindowChunker_RejectsOverlapNotSmallerThanSize(t *testing.T) {
	cases := []struct{ size, overlap int }{
		{100, 100},
		{100, 150},
		{0, 0},
		{10, -1},
	}
	for _, tc := range cases {
		if _, err := NewWindowChunker(tc.size, tc.overlap); !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("NewWindowChunker(%d, %d) error = %v, want ErrConfiguration", tc.size, tc.overlap, err)
		}
	}
	if _, err := NewWindowChunker(100, 99); err != nil {
		t.Fatalf("NewWindowChunker(100, 99) failed: %v", err)
	}
}

func TestChunk_TwoThousandCharacters(t *testing.T) {
	c, err := NewWindowChunker(700, 120)
	if err != nil {
		t.Fatalf("NewWindowChunker failed: %v", err)
	}
	text := strings.Repeat("abcdefghij", 200)

	chunks := c.Chunk(text, "doc")
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	wantStarts := []int{0, 580, 1160, 1740}
	wantEnds := []int{700, 1280, 1860, 2000}
	for i, ch := range chunks {
		if ch.StartChar != wantStarts[i] || ch.EndChar != wantEnds[i] {
			t.Errorf("chunk %d span = [%d,%d), want [%d,%d)", i, ch.StartChar, ch.EndChar, wantStarts[i], wantEnds[i])
		}
		if want := "doc-" + string(rune('0'+i)); ch.ChunkID != want {
			t.Errorf("chunk %d id = %q, want %q", i, ch.ChunkID, want)
		}
		if ch.SourceFile != "doc" {
			t.Errorf("chunk %d source = %q, want doc", i, ch.SourceFile)
		}
	}
	if got := len([]rune(chunks[3].Text)); got != 260 {
		t.Errorf("last chunk length = %d, want 260", got)
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	c, _ := NewWindowChunker(50, 10)
	if chunks := c.Chunk("", "empty"); len(chunks) != 0 {
		t.Fatalf("expected 0 chunks for empty input, got %d", len(chunks))
	}
	if chunks := c.Chunk("   \n\t  ", "blank"); len(chunks) != 0 {
		t.Fatalf("expected 0 chunks for blank input, got %d", len(chunks))
	}
}

func TestChunk_SkippedWindowsDoNotConsumeOrdinals(t *testing.T) {
	c, _ := NewWindowChunker(4, 0)
	text := "abcd" + "    " + "efgh"

	chunks := c.Chunk(text, "f")
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].ChunkID != "f-0" || chunks[1].ChunkID != "f-1" {
		t.Fatalf("ids = %q, %q; want f-0, f-1", chunks[0].ChunkID, chunks[1].ChunkID)
	}
	if chunks[1].StartChar != 8 || chunks[1].Text != "efgh" {
		t.Fatalf("second chunk = %+v, want start 8 text efgh", chunks[1])
	}
}

func TestChunk_CoversTextWithoutGaps(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 37)
	n := len([]rune(text))
	geometries := []struct{ size, overlap int }{{50, 0}, {50, 10}, {64, 63}, {700, 120}, {7, 3}}
	for _, g := range geometries {
		c, err := NewWindowChunker(g.size, g.overlap)
		if err != nil {
			t.Fatalf("NewWindowChunker(%d,%d) failed: %v", g.size, g.overlap, err)
		}
		chunks := c.Chunk(text, "cov")
		if len(chunks) == 0 {
			t.Fatalf("(%d,%d): no chunks", g.size, g.overlap)
		}
		if chunks[0].StartChar != 0 {
			t.Errorf("(%d,%d): first chunk starts at %d", g.size, g.overlap, chunks[0].StartChar)
		}
		for i := 1; i < len(chunks); i++ {
			if chunks[i].StartChar > chunks[i-1].EndChar {
				t.Errorf("(%d,%d): gap between chunk %d end %d and chunk %d start %d",
					g.size, g.overlap, i-1, chunks[i-1].EndChar, i, chunks[i].StartChar)
			}
			if chunks[i].StartChar <= chunks[i-1].StartChar {
				t.Errorf("(%d,%d): starts not ascending at %d", g.size, g.overlap, i)
			}
		}
		if last := chunks[len(chunks)-1]; last.EndChar != n {
			t.Errorf("(%d,%d): last chunk ends at %d, want %d", g.size, g.overlap, last.EndChar, n)
		}
	}
}

func TestChunk_RuneOffsets(t *testing.T) {
	c, _ := NewWindowChunker(3, 1)
	chunks := c.Chunk("héllo wörld", "u")
	for _, ch := range chunks {
		if !strings.Contains("héllo wörld", ch.Text) {
			t.Fatalf("chunk text %q is not a substring of the input", ch.Text)
		}
		if ch.StartChar < 0 || ch.StartChar >= ch.EndChar || ch.EndChar > 11 {
			t.Fatalf("invalid span [%d,%d)", ch.StartChar, ch.EndChar)
		}
	}
}

func TestChunk_Deterministic(t *testing.T) {
	c, _ := NewWindowChunker(30, 5)
	text := strings.Repeat("lorem ipsum dolor sit amet ", 10)
	a := c.Chunk(text, "d")
	b := c.Chunk(text, "d")
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("chunk %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
