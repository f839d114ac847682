package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"FormatConverter/internal/ports"
)

const (
	defaultMaxTokens   = 4000
	defaultTemperature = 0.3
	defaultHTTPTimeout = 60 * time.Second
)

// ErrUnexpectedResponse is returned when the completion carries no choices.
var ErrUnexpectedResponse = errors.New("unexpected API response")

// Config holds the OpenAI-compatible endpoint settings.
type Config struct {
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// OpenAIClient implements ports.TextGenerator with a single-turn chat completion.
type OpenAIClient struct {
	client      *openai.Client
	maxTokens   int
	temperature float32
}

var _ ports.TextGenerator = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client from configuration.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientConfig),
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Generate sends prompt as the only user message and returns the trimmed completion.
func (c *OpenAIClient) Generate(ctx context.Context, prompt, model string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("openai client is nil")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openai error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrUnexpectedResponse
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
