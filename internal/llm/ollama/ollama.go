package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"talkdocs/internal/domain"
	"talkdocs/internal/llm"
	"talkdocs/internal/retry"
)

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat calls the Ollama /api/chat endpoint for generative responses.
type Chat struct {
	baseURL string
	model   string
	client  *http.Client
	retry   retry.Policy
	logger  *slog.Logger
}

// Config configures the Ollama chat generator.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	Retry   retry.Policy
}

// NewChat creates a chat client targeting the given Ollama instance and model.
func NewChat(cfg Config, logger *slog.Logger) *Chat {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.2"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = retry.Default
	}
	return &Chat{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
		retry:   cfg.Retry,
		logger:  logger,
	}
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  options   `json:"options"`
}

type options struct {
	Temperature float32 `json:"temperature"`
}

type chatResponse struct {
	Message Message `json:"message"`
}

// Generate sends the system prompt and prompt to Ollama and returns the
// assistant's response.
func (c *Chat) Generate(ctx context.Context, prompt string) (string, error) {
	var out string
	err := retry.Do(ctx, c.retry, c.logger, "ollama chat", func(ctx context.Context) error {
		var err error
		out, err = c.chat(ctx, []Message{
			{Role: "system", Content: llm.SystemPrompt},
			{Role: "user", Content: prompt},
		})
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	if out == "" {
		return llm.EmptyResponse, nil
	}
	return out, nil
}

func (c *Chat) chat(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
		Options:  options{Temperature: 0.1},
	})
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("marshal chat request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("build chat request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("ollama chat returned %d: %s", resp.StatusCode, string(respBody))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", retry.Permanent(err)
		}
		return "", err
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	return result.Message.Content, nil
}
