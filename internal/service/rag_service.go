package service

import (
	"context"
	"log/slog"
	"sync"

	"talkdocs/internal/domain"
)

// Index is the maintenance side of the vector index.
type Index interface {
	Clear() error
	Status() domain.IndexStatus
}

// RAGService bundles ingestion, retrieval and answering over one index for
// the interactive surfaces. Ingestion and clearing are serialised; questions
// and searches run concurrently with them.
type RAGService struct {
	writeMu sync.Mutex

	ingestion *IngestionService
	retriever Retriever
	composer  *Composer
	index     Index
	logger    *slog.Logger
}

func NewRAGService(ingestion *IngestionService, retriever Retriever, composer *Composer, index Index, logger *slog.Logger) *RAGService {
	return &RAGService{ingestion: ingestion, retriever: retriever, composer: composer, index: index, logger: logger}
}

func (s *RAGService) Ingest(ctx context.Context, fileName string, data []byte) (domain.IngestionResult, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	res, err := s.ingestion.Ingest(ctx, fileName, data)
	if err != nil {
		s.logger.Error("ingestion failed", "file", fileName, "err", err)
	}
	return res, err
}

func (s *RAGService) IngestFile(ctx context.Context, path string) (domain.IngestionResult, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	res, err := s.ingestion.IngestFile(ctx, path)
	if err != nil {
		s.logger.Error("ingestion failed", "path", path, "err", err)
	}
	return res, err
}

func (s *RAGService) Ask(ctx context.Context, question string, topK int) (domain.Answer, error) {
	ans, err := s.composer.Answer(ctx, question, topK)
	if err != nil {
		s.logger.Error("question failed", "err", err)
	}
	return ans, err
}

func (s *RAGService) Search(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	res, err := s.retriever.Retrieve(ctx, query, topK)
	if err != nil {
		s.logger.Error("search failed", "err", err)
	}
	return res, err
}

func (s *RAGService) Clear() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.index.Clear(); err != nil {
		s.logger.Error("clear failed", "err", err)
		return err
	}
	return nil
}

func (s *RAGService) Status() domain.IndexStatus { return s.index.Status() }
