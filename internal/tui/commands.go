package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"talkdocs/internal/domain"
)

type answerMsg struct {
	question string
	answer   domain.Answer
	err      error
}

type ingestMsg struct {
	path   string
	result domain.IngestionResult
	err    error
}

type searchMsg struct {
	query   string
	results []domain.RetrievedChunk
	err     error
}

func askCmd(ctx context.Context, svc RAGPort, question string, topK int) tea.Cmd {
	return func() tea.Msg {
		ans, err := svc.Ask(ctx, question, topK)
		return answerMsg{question: question, answer: ans, err: err}
	}
}

func ingestCmd(ctx context.Context, svc RAGPort, path string) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.IngestFile(ctx, path)
		return ingestMsg{path: path, result: res, err: err}
	}
}

func searchCmd(ctx context.Context, svc RAGPort, query string, topK int) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.Search(ctx, query, topK)
		return searchMsg{query: query, results: res, err: err}
	}
}

type command struct {
	name string
	arg  string
}

// parseCommand splits ":name arg" input. ok is false for plain questions.
func parseCommand(input string) (command, bool) {
	if !strings.HasPrefix(input, ":") {
		return command{}, false
	}
	name, arg, _ := strings.Cut(strings.TrimPrefix(input, ":"), " ")
	return command{name: strings.ToLower(name), arg: strings.TrimSpace(arg)}, true
}

const helpText = `Commands:
  :ingest <path>   index a PDF, TXT or DOCX file
  :search <query>  show matching chunks (up/down to browse)
  :status          show index status
  :clear           clear the index and the conversation
  :help            show this help
  :quit            exit
Anything else is asked as a question.`
