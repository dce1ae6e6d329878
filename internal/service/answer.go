package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"talkdocs/internal/domain"
	"talkdocs/internal/llm"
)

// InsufficientContext is the answer given when retrieval finds nothing
// relevant enough.
const InsufficientContext = "I could not find sufficiently relevant information in the indexed documents."

// Retriever finds the chunks relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error)
}

// Composer turns retrieved chunks into a grounded answer with citations.
type Composer struct {
	retriever Retriever
	generator llm.Generator
	logger    *slog.Logger
}

func NewComposer(retriever Retriever, generator llm.Generator, logger *slog.Logger) *Composer {
	return &Composer{retriever: retriever, generator: generator, logger: logger}
}

// Answer retrieves up to topK chunks for question and composes the answer.
func (c *Composer) Answer(ctx context.Context, question string, topK int) (domain.Answer, error) {
	chunks, err := c.retriever.Retrieve(ctx, question, topK)
	if err != nil {
		return domain.Answer{}, err
	}
	return c.Compose(ctx, question, chunks)
}

// Compose builds the numbered context and prompt and returns the generator's
// output verbatim. With no chunks the generator is not called.
func (c *Composer) Compose(ctx context.Context, question string, chunks []domain.RetrievedChunk) (domain.Answer, error) {
	if len(chunks) == 0 {
		return domain.Answer{Text: InsufficientContext, Citations: []domain.Citation{}}, nil
	}

	blocks := make([]string, len(chunks))
	citations := make([]domain.Citation, len(chunks))
	for i, ch := range chunks {
		rank := i + 1
		blocks[i] = fmt.Sprintf("[%d] Source: %s | Relevance: %.3f\n%s", rank, ch.SourceFile, ch.Score, ch.Text)
		citations[i] = domain.Citation{Rank: rank, Source: ch.SourceFile, Score: roundScore(ch.Score)}
	}

	text, err := c.generator.Generate(ctx, llm.BuildPrompt(question, blocks))
	if err != nil {
		return domain.Answer{}, err
	}
	c.logger.Debug("composed answer", "citations", len(citations))
	return domain.Answer{Text: text, Citations: citations}, nil
}

func roundScore(s float32) float64 {
	return math.Round(float64(s)*1e4) / 1e4
}
