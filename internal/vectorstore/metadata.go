package vectorstore

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"talkdocs/internal/domain"
)

// MetadataStore persists the ordered chunk records that sit beside the
// vector file. Position i in the document describes vector row i.
type MetadataStore interface {
	Path() string
	Write(chunks []domain.Chunk) error
	Read() ([]domain.Chunk, error)
}

// JSONMetadata stores chunks as a JSON array.
type JSONMetadata struct {
	path string
}

func NewJSONMetadata(path string) *JSONMetadata { return &JSONMetadata{path: path} }

func (m *JSONMetadata) Path() string { return m.path }

func (m *JSONMetadata) Write(chunks []domain.Chunk) error {
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	return writeAtomic(m.path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(chunks)
	})
}

func (m *JSONMetadata) Read() ([]domain.Chunk, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, err
	}
	var chunks []domain.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return chunks, nil
}
