package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"talkdocs/internal/cleaner"
	"talkdocs/internal/domain"
	"talkdocs/internal/embedding"
)

// DocumentLoader validates, stores and extracts uploaded documents.
type DocumentLoader interface {
	Validate(fileName string, size int64) error
	SaveUpload(fileName string, data []byte) (string, error)
	Load(path string) (string, error)
}

// Chunker splits cleaned text into chunks.
type Chunker interface {
	Chunk(text, sourceFile string) []domain.Chunk
}

// VectorIndex is the write side of the vector index.
type VectorIndex interface {
	Add(vectors [][]float32, chunks []domain.Chunk) error
	Save() error
}

// IngestionService runs validate, store, extract, clean, chunk, embed, add
// and save for one document.
type IngestionService struct {
	loader   DocumentLoader
	chunker  Chunker
	embedder embedding.Embedder
	index    VectorIndex
	logger   *slog.Logger
}

func NewIngestionService(loader DocumentLoader, chunker Chunker, embedder embedding.Embedder, index VectorIndex, logger *slog.Logger) *IngestionService {
	return &IngestionService{loader: loader, chunker: chunker, embedder: embedder, index: index, logger: logger}
}

// Ingest validates an upload before reading its content, stores the raw bytes
// in the upload directory and indexes the stored copy.
func (s *IngestionService) Ingest(ctx context.Context, fileName string, data []byte) (domain.IngestionResult, error) {
	if err := s.loader.Validate(fileName, int64(len(data))); err != nil {
		return domain.IngestionResult{}, err
	}
	path, err := s.loader.SaveUpload(fileName, data)
	if err != nil {
		return domain.IngestionResult{}, err
	}
	return s.indexStored(ctx, path)
}

// IngestFile ingests a document from the local filesystem under its base
// name. Type and size are checked before the file is read.
func (s *IngestionService) IngestFile(ctx context.Context, path string) (domain.IngestionResult, error) {
	name := filepath.Base(path)
	info, err := os.Stat(path)
	if err != nil {
		return domain.IngestionResult{}, err
	}
	if info.IsDir() {
		return domain.IngestionResult{}, fmt.Errorf("%w: '%s' is a directory", domain.ErrValidation, name)
	}
	if err := s.loader.Validate(name, info.Size()); err != nil {
		return domain.IngestionResult{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.IngestionResult{}, err
	}
	return s.Ingest(ctx, name, data)
}

// indexStored indexes an upload already copied into the upload directory.
// The index is untouched unless every stage up to the add succeeds.
func (s *IngestionService) indexStored(ctx context.Context, path string) (domain.IngestionResult, error) {
	name := filepath.Base(path)
	raw, err := s.loader.Load(path)
	if err != nil {
		return domain.IngestionResult{}, err
	}

	chunks := s.chunker.Chunk(cleaner.Clean(raw), name)
	if len(chunks) == 0 {
		return domain.IngestionResult{}, fmt.Errorf("%w: No text chunks generated for %s", domain.ErrEmptyDocument, name)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return domain.IngestionResult{}, fmt.Errorf("embed %s: %w", name, err)
	}
	if err := s.index.Add(vectors, chunks); err != nil {
		return domain.IngestionResult{}, fmt.Errorf("index %s: %w", name, err)
	}
	if err := s.index.Save(); err != nil {
		return domain.IngestionResult{}, err
	}

	s.logger.Info("ingestion complete", "file", name, "chunks", len(chunks))
	return domain.IngestionResult{FileName: name, ChunksIndexed: len(chunks)}, nil
}
