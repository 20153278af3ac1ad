package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL = "http://localhost:11434/v1"
	DefaultModel   = "mistral"

	defaultRequestTimeout = 90 * time.Second
)

// Adapter talks to any OpenAI-compatible chat endpoint. The default target
// is a local Ollama server.
type Adapter struct {
	cli     *openai.Client
	model   string
	timeout time.Duration
}

func New(apiKey, model, baseURL string, timeout time.Duration) *Adapter {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if apiKey == "" {
		// Ollama ignores the key but the SDK always sends one.
		apiKey = "ollama"
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	return &Adapter{cli: openai.NewClientWithConfig(cfg), model: model, timeout: timeout}
}

func (a *Adapter) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("openai: prompt is empty")
	}
	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.cli.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0,
	})
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("openai timeout after %s (model=%s)", a.timeout, a.model)
		}
		return "", fmt.Errorf("openai chat completion (model=%s): %w", a.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
