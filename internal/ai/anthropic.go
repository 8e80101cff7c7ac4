package ai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider uses the Anthropic Messages API through the official SDK.
type AnthropicProvider struct {
	client anthropic.Client
	logger *slog.Logger
}

// NewAnthropicProvider creates the SDK provider. The SDK's own retries are
// disabled; every question is a single attempt.
func NewAnthropicProvider(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *AnthropicProvider {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		logger: logger,
	}
}

// Name implements CompletionProvider
func (p *AnthropicProvider) Name() string { return ProviderAnthropic }

// Complete implements CompletionProvider
func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := req.Config.Model
	if model == "" {
		model = DefaultAnthropicModel
	}

	maxTokens := req.Config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Question)),
		},
		Temperature: anthropic.Float(req.Config.Temperature),
	}
	if req.Config.TopP > 0 {
		params.TopP = anthropic.Float(req.Config.TopP)
	}
	if req.Config.TopK > 0 {
		params.TopK = anthropic.Int(int64(req.Config.TopK))
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		p.logger.ErrorContext(ctx, "Anthropic API error", "error", err)
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", NewAPIError("Anthropic", apiErr.StatusCode, "request rejected", err)
		}
		return "", NewAPIError("Anthropic", 0, "request failed", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	if sb.Len() == 0 {
		return "", NewAPIError("Anthropic", http.StatusOK, "no text in response", nil)
	}

	p.logger.InfoContext(ctx, "received Anthropic response",
		"response_length", sb.Len(),
		"stop_reason", msg.StopReason)

	return sb.String(), nil
}
