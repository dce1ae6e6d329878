package chunker

import (
	"fmt"
	"strconv"
	"strings"

	"talkdocs/internal/domain"
)

// WindowChunker splits text into fixed-size character windows that overlap
// by a constant number of characters.
type WindowChunker struct {
	chunkSize int
	overlap   int
}

// NewWindowChunker validates the window geometry. overlap must be
// non-negative and strictly smaller than chunkSize.
func NewWindowChunker(chunkSize, overlap int) (*WindowChunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfiguration, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must not be negative, got %d", domain.ErrConfiguration, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap (%d) must be smaller than chunk size (%d)", domain.ErrConfiguration, overlap, chunkSize)
	}
	return &WindowChunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// ChunkSize returns the maximum number of characters per window.
func (c *WindowChunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the number of characters shared by consecutive windows.
func (c *WindowChunker) Overlap() int { return c.overlap }

// Chunk splits text into windows. Windows that are blank after trimming are
// dropped without consuming an ordinal, and iteration stops at the first
// window that reaches the end of the text.
func (c *WindowChunker) Chunk(text, sourceFile string) []domain.Chunk {
	runes := []rune(text)
	n := len(runes)
	step := c.chunkSize - c.overlap

	var chunks []domain.Chunk
	idx := 0
	for start := 0; start < n; start += step {
		end := start + c.chunkSize
		if end > n {
			end = n
		}
		window := strings.TrimSpace(string(runes[start:end]))
		if window == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ChunkID:    sourceFile + "-" + strconv.Itoa(idx),
			Text:       window,
			SourceFile: sourceFile,
			StartChar:  start,
			EndChar:    end,
		})
		idx++
		if end == n {
			break
		}
	}
	return chunks
}
