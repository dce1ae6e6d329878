package openai

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"talkdocs/internal/domain"
	"talkdocs/internal/llm"
	"talkdocs/internal/openaiclient"
	"talkdocs/internal/retry"
)

// Generator answers prompts with an OpenAI chat completion.
type Generator struct {
	api         *openai.Client
	model       string
	temperature float32
	retry       retry.Policy
	logger      *slog.Logger
}

// Config configures the chat generator.
type Config struct {
	Model       string
	Temperature float32
	Retry       retry.Policy
}

func NewGenerator(api *openai.Client, cfg Config, logger *slog.Logger) *Generator {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.1
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = retry.Default
	}
	return &Generator{api: api, model: cfg.Model, temperature: cfg.Temperature, retry: cfg.Retry, logger: logger}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	var resp openai.ChatCompletionResponse
	err := retry.Do(ctx, g.retry, g.logger, "openai chat", func(ctx context.Context) error {
		var err error
		resp, err = g.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       g.model,
			Temperature: g.temperature,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: llm.SystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		return openaiclient.Classify(err)
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai chat: %w", domain.ErrGeneration, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return llm.EmptyResponse, nil
	}
	return resp.Choices[0].Message.Content, nil
}
