package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"talkdocs/internal/domain"
	"talkdocs/internal/service"
)

// RAGPort is the TUI-facing subset of the RAG service.
type RAGPort interface {
	IngestFile(ctx context.Context, path string) (domain.IngestionResult, error)
	Ask(ctx context.Context, question string, topK int) (domain.Answer, error)
	Search(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error)
	Clear() error
	Status() domain.IndexStatus
}

type entry struct {
	role      string
	content   string
	citations []domain.Citation
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctx      context.Context
	service  RAGPort
	topK     int
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	entries   []entry
	results   []domain.RetrievedChunk
	cursor    int
	browsing  bool
	lastQuery string
	status    string
	busy      bool
	ready     bool
}

// New creates a new TUI model instance.
func New(ctx context.Context, svc RAGPort, topK int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your documents, or :help"
	ti.Focus()
	ti.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	st := svc.Status()
	return Model{
		ctx:      ctx,
		service:  svc,
		topK:     topK,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		status:   fmt.Sprintf("Index %q: %d chunks. Type a question or :help.", st.Name, st.Chunks),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and completion events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, query box, spacer
		vh := msg.Height - reserved - rh
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, vh)
		m.input.Width = max(10, msg.Width-6)
		if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(max(20, msg.Width-6))); err == nil {
			m.renderer = r
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.entries = append(m.entries, entry{role: "error", content: service.UserMessage(msg.err, "answer the question")})
			m.status = "Question failed."
		} else {
			m.entries = append(m.entries, entry{role: "assistant", content: msg.answer.Text, citations: msg.answer.Citations})
			m.status = fmt.Sprintf("Answered with %d sources.", len(msg.answer.Citations))
		}
		m.refresh()
		return m, nil

	case ingestMsg:
		m.busy = false
		if msg.err != nil {
			m.entries = append(m.entries, entry{role: "error", content: service.UserMessage(msg.err, "ingest document")})
			m.status = "Ingestion failed."
		} else {
			text := fmt.Sprintf("Indexed '%s' into %d chunks.", msg.result.FileName, msg.result.ChunksIndexed)
			m.entries = append(m.entries, entry{role: "success", content: text})
			m.status = text
		}
		m.refresh()
		return m, nil

	case searchMsg:
		m.busy = false
		if msg.err != nil {
			m.entries = append(m.entries, entry{role: "error", content: service.UserMessage(msg.err, "search")})
			m.status = "Search failed."
			m.refresh()
			return m, nil
		}
		m.results = msg.results
		m.cursor = 0
		m.lastQuery = msg.query
		m.browsing = true
		m.status = fmt.Sprintf("%d results for %q (up/down to browse, esc to return)", len(msg.results), msg.query)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if m.busy {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			return m.submit(text)
		case "esc":
			if m.browsing {
				m.browsing = false
				m.refresh()
				return m, nil
			}
		case "down":
			if m.browsing && len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.refresh()
				return m, nil
			}
		case "up":
			if m.browsing && len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.refresh()
				return m, nil
			}
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	cmd, isCommand := parseCommand(text)
	if !isCommand {
		m.browsing = false
		m.entries = append(m.entries, entry{role: "user", content: text})
		return m.start("Thinking...", askCmd(m.ctx, m.service, text, m.topK))
	}

	switch cmd.name {
	case "quit", "exit", "q":
		return m, tea.Quit
	case "help":
		m.entries = append(m.entries, entry{role: "system", content: helpText})
	case "status":
		st := m.service.Status()
		m.entries = append(m.entries, entry{role: "system", content: fmt.Sprintf(
			"Indexed chunks: %d\nDimension: %d\nIndex name: %s\nVectors: %s\nMetadata: %s",
			st.Chunks, st.Dimension, st.Name, st.VectorPath, st.MetadataPath)})
	case "clear":
		if err := m.service.Clear(); err != nil {
			m.entries = append(m.entries, entry{role: "error", content: service.UserMessage(err, "clear the index")})
			break
		}
		m.entries = nil
		m.results = nil
		m.browsing = false
		m.status = "Cleared index and conversation history."
	case "ingest":
		if cmd.arg == "" {
			m.entries = append(m.entries, entry{role: "error", content: "usage: :ingest <path>"})
			break
		}
		return m.start("Ingesting "+cmd.arg+"...", ingestCmd(m.ctx, m.service, cmd.arg))
	case "search":
		if cmd.arg == "" {
			m.entries = append(m.entries, entry{role: "error", content: "usage: :search <query>"})
			break
		}
		return m.start("Searching...", searchCmd(m.ctx, m.service, cmd.arg, m.topK))
	default:
		m.entries = append(m.entries, entry{role: "error", content: "unknown command :" + cmd.name + " (try :help)"})
	}
	m.refresh()
	return m, nil
}

func (m Model) start(status string, work tea.Cmd) (tea.Model, tea.Cmd) {
	m.busy = true
	m.status = status
	m.refresh()
	return m, tea.Batch(m.spinner.Tick, work)
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("Talk to Docs")
	status := statusStyle.Render(m.status)
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" + resultBoxStyle.Render(m.viewport.View()) + "\n" + queryBoxStyle.Render(m.input.View()) + "\n" + status
}

func (m *Model) refresh() {
	if m.browsing {
		m.viewport.SetContent(m.renderCurrentResult())
		m.viewport.GotoTop()
		return
	}
	m.viewport.SetContent(m.renderEntries())
	m.viewport.GotoBottom()
}

func (m Model) renderEntries() string {
	if len(m.entries) == 0 {
		return dimStyle.Render("Ask a question about your indexed documents, or :help for commands.")
	}
	var sb strings.Builder
	for _, e := range m.entries {
		switch e.role {
		case "user":
			sb.WriteString(userMsgStyle.Render("You: ") + e.content + "\n\n")
		case "assistant":
			sb.WriteString(m.renderMarkdown(e.content) + "\n")
			if len(e.citations) > 0 {
				sb.WriteString(dimStyle.Render("Sources") + "\n")
				for _, c := range e.citations {
					sb.WriteString(citationStyle.Render(formatCitation(c)) + "\n")
				}
			}
			sb.WriteString("\n")
		case "success":
			sb.WriteString(successStyle.Render(e.content) + "\n\n")
		case "error":
			sb.WriteString(errorStyle.Render(e.content) + "\n\n")
		default:
			sb.WriteString(dimStyle.Render(e.content) + "\n\n")
		}
	}
	return sb.String()
}

func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return assistantMsgStyle.Render(content)
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return assistantMsgStyle.Render(content)
	}
	return strings.TrimRight(rendered, "\n")
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		return "No chunks cleared the relevance threshold."
	}
	r := m.results[m.cursor]
	title := fmt.Sprintf("Result %d/%d  %s  score=%.3f", m.cursor+1, len(m.results), r.SourceFile, r.Score)
	body := highlightBestSentence(r.Text, m.lastQuery)
	return title + "\n\n" + body
}

func formatCitation(c domain.Citation) string {
	return fmt.Sprintf("[%d] %s (similarity=%s)", c.Rank, c.Source, formatScore(c.Score))
}

// formatScore prints a rounded score without trailing zeros.
func formatScore(s float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", s), "0"), ".")
}
