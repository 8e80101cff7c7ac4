package ai

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider uses the go-openai SDK. It serves both OpenAI itself and
// Gemini through Google's OpenAI-compatible endpoint.
type OpenAIProvider struct {
	name         string
	defaultModel string
	client       *openai.Client
	logger       *slog.Logger
}

// NewOpenAIProvider creates an SDK provider for the named flavor
// (ProviderOpenAI or ProviderGemini). An empty baseURL selects the flavor's
// public endpoint.
func NewOpenAIProvider(name, apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" && name == ProviderGemini {
		baseURL = DefaultGeminiBaseURL
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIProvider{
		name:         name,
		defaultModel: DefaultModel(name),
		client:       openai.NewClientWithConfig(cfg),
		logger:       logger,
	}
}

// Name implements CompletionProvider
func (p *OpenAIProvider) Name() string { return p.name }

// Complete implements CompletionProvider
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := req.Config.Model
	if model == "" {
		model = p.defaultModel
	}

	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       model,
			MaxTokens:   req.Config.MaxTokens,
			Temperature: sdkTemperature(req.Config.Temperature),
			TopP:        float32(req.Config.TopP),
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: req.SystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: req.Question,
				},
			},
		},
	)

	if err != nil {
		p.logger.ErrorContext(ctx, "chat completion failed", "provider", p.name, "error", err)
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", NewAPIError(p.name, apiErr.HTTPStatusCode, apiErr.Message, nil)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", NewAPIError(p.name, reqErr.HTTPStatusCode, "request failed", reqErr.Err)
		}
		return "", NewAPIError(p.name, 0, "request failed", err)
	}

	if len(resp.Choices) == 0 {
		p.logger.ErrorContext(ctx, "no choices in completion", "provider", p.name)
		return "", NewAPIError(p.name, http.StatusOK, "no response from "+p.name, nil)
	}

	p.logger.InfoContext(ctx, "received chat completion",
		"provider", p.name,
		"response_length", len(resp.Choices[0].Message.Content),
		"finish_reason", resp.Choices[0].FinishReason)

	return resp.Choices[0].Message.Content, nil
}

// sdkTemperature maps 0 to the smallest float32, since go-openai omits a
// zero temperature and the endpoint would fall back to its own default.
func sdkTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}
