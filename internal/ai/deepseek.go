package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DeepSeekProvider talks to an OpenAI-style chat completions endpoint over
// plain HTTP.
type DeepSeekProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewDeepSeekProvider creates the HTTP provider. An empty baseURL selects
// the public DeepSeek API.
func NewDeepSeekProvider(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *DeepSeekProvider {
	if baseURL == "" {
		baseURL = DefaultDeepSeekBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &DeepSeekProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Name implements CompletionProvider
func (p *DeepSeekProvider) Name() string { return ProviderDeepSeek }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	TopP        *float64      `json:"top_p,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Complete implements CompletionProvider
func (p *DeepSeekProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if p.apiKey == "" {
		return "", NewValidationError("DEEPSEEK_API_KEY", "environment variable not set")
	}

	model := req.Config.Model
	if model == "" {
		model = DefaultDeepSeekModel
	}

	body := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.Question},
		},
		MaxTokens:   req.Config.MaxTokens,
		Temperature: req.Config.Temperature,
	}
	if req.Config.TopP > 0 {
		topP := req.Config.TopP
		body.TopP = &topP
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		p.logger.ErrorContext(ctx, "DeepSeek API request failed", "error", err)
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		p.logger.ErrorContext(ctx, "DeepSeek API error",
			"status_code", resp.StatusCode,
			"response_body", string(respBody))
		return "", NewAPIError("DeepSeek", resp.StatusCode, strings.TrimSpace(string(respBody)), nil)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", NewAPIError("DeepSeek", resp.StatusCode, "failed to decode response", err)
	}

	if len(result.Choices) == 0 {
		return "", NewAPIError("DeepSeek", resp.StatusCode, "no response from DeepSeek", nil)
	}

	content := result.Choices[0].Message.Content
	if content == nil {
		return "", NewAPIError("DeepSeek", resp.StatusCode, "invalid response format from DeepSeek", nil)
	}

	p.logger.InfoContext(ctx, "received DeepSeek response",
		"response_length", len(*content),
		"finish_reason", result.Choices[0].FinishReason)

	return *content, nil
}
