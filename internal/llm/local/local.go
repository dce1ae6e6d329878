package local

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"talkdocs/internal/domain"
	"talkdocs/internal/llm"
	"talkdocs/internal/summarizer"
)

// Notice prefixes every locally generated answer.
const Notice = "Local fallback mode is active. Please configure OPENAI_API_KEY and " +
	"LLM_PROVIDER=openai for production-quality responses."

const previewLimit = 1000

var sourceLine = regexp.MustCompile(`(?m)^\[(\d+)\] Source: .*$`)

// Generator answers offline by extracting the context sentences most related
// to the question.
type Generator struct {
	summarizer   *summarizer.FrequencySummarizer
	maxSentences int
}

func NewGenerator(s *summarizer.FrequencySummarizer, maxSentences int) *Generator {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	return &Generator{summarizer: s, maxSentences: maxSentences}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: local: %w", domain.ErrGeneration, err)
	}
	question, contextText, ok := llm.SplitPrompt(prompt)
	if !ok {
		return Notice + "\n\nPrompt preview:\n" + preview(prompt), nil
	}

	var refs []string
	for _, m := range sourceLine.FindAllStringSubmatch(contextText, -1) {
		refs = append(refs, "["+m[1]+"]")
	}
	body := sourceLine.ReplaceAllString(contextText, "")
	summary := g.summarizer.SummarizeFor(question, body, g.maxSentences)
	if summary == "" {
		return Notice, nil
	}

	var b strings.Builder
	b.WriteString(Notice)
	b.WriteString("\n\n")
	b.WriteString(summary)
	if len(refs) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(refs, ""))
	}
	return b.String(), nil
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > previewLimit {
		r = r[:previewLimit]
	}
	return string(r)
}
