package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pmik-id/pmikbot/internal/metrics"
)

// ErrorAnswerPrefix starts every answer that reports a provider failure.
const ErrorAnswerPrefix = "❌ Error AI: "

// Asker answers a single question with text. It never fails: provider
// errors come back as an answer starting with ErrorAnswerPrefix.
type Asker interface {
	Ask(ctx context.Context, question string) string
}

// PersonaService pairs every question with a fixed persona and bounded
// generation parameters, then relays the provider's answer unmodified.
type PersonaService struct {
	provider CompletionProvider
	persona  Persona
	gen      GenerationConfig
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewPersonaService creates the service. m may be nil.
func NewPersonaService(provider CompletionProvider, persona Persona, gen GenerationConfig, logger *slog.Logger, m *metrics.Metrics) *PersonaService {
	if gen.MaxTokens <= 0 {
		gen.MaxTokens = DefaultMaxTokens
	}
	return &PersonaService{
		provider: provider,
		persona:  persona,
		gen:      gen,
		logger:   logger,
		metrics:  m,
	}
}

// Ask sends the question to the provider and returns its completion text,
// or an error-flavored answer when the call fails.
func (s *PersonaService) Ask(ctx context.Context, question string) string {
	name := s.provider.Name()

	s.logger.InfoContext(ctx, "sending AI request",
		"provider", name,
		"model", s.gen.Model,
		"max_tokens", s.gen.MaxTokens,
		"question_length", len(question))

	start := time.Now()
	answer, err := s.provider.Complete(ctx, CompletionRequest{
		SystemPrompt: s.persona.SystemPrompt,
		Question:     question,
		Config:       s.gen,
	})
	// A blank completion cannot be delivered: chat platforms reject empty
	// messages, so it is reported like any other provider failure.
	if err == nil && strings.TrimSpace(answer) == "" {
		err = NewAPIError(name, 0, "no response from "+name, ErrEmptyCompletion)
	}
	elapsed := time.Since(start)
	s.metrics.ProviderRequest(name, elapsed, err)

	if err != nil {
		s.logger.ErrorContext(ctx, "AI request failed",
			"provider", name,
			"latency_ms", elapsed.Milliseconds(),
			"temporary", IsTemporary(err),
			"error", err)
		return ErrorAnswer(err)
	}

	s.logger.InfoContext(ctx, "AI request answered",
		"provider", name,
		"latency_ms", elapsed.Milliseconds(),
		"answer_length", len(answer))

	return answer
}

// ErrorAnswer formats a provider failure as answer text.
func ErrorAnswer(err error) string {
	return fmt.Sprintf("%s%v", ErrorAnswerPrefix, err)
}

// IsErrorAnswer reports whether an answer carries a provider failure.
func IsErrorAnswer(answer string) bool {
	return strings.HasPrefix(answer, ErrorAnswerPrefix)
}
