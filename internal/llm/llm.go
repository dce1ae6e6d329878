package llm

import (
	"context"
	"strings"
)

// Generator produces free text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SystemPrompt instructs hosted and local chat models to stay grounded.
const SystemPrompt = "You are a careful retrieval assistant. Answer using provided context only. " +
	"If information is missing, explicitly say you could not find it in the documents."

// EmptyResponse is returned when a model answers with no content.
const EmptyResponse = "No response generated."

const (
	contextHeader = "\n\nContext:\n"
	answerTrailer = "\n\nAnswer with a concise explanation and include references in [n] format."
)

// BuildPrompt renders the grounded question-answering prompt. Each context
// block is already numbered by the caller.
func BuildPrompt(question string, contextBlocks []string) string {
	var b strings.Builder
	b.WriteString("Use the context below to answer the question. ")
	b.WriteString("Only state information that appears in the context. ")
	b.WriteString("If the context is insufficient, say so explicitly.\n\n")
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString(contextHeader)
	b.WriteString(strings.Join(contextBlocks, "\n\n"))
	b.WriteString(answerTrailer)
	return b.String()
}

// SplitPrompt recovers the question and context section of a prompt built by
// BuildPrompt. ok is false for any other prompt.
func SplitPrompt(prompt string) (question, contextText string, ok bool) {
	qStart := strings.Index(prompt, "Question: ")
	cStart := strings.Index(prompt, contextHeader)
	end := strings.LastIndex(prompt, answerTrailer)
	if qStart < 0 || cStart < qStart || end < cStart {
		return "", "", false
	}
	question = prompt[qStart+len("Question: ") : cStart]
	contextText = prompt[cStart+len(contextHeader) : end]
	return question, contextText, true
}
