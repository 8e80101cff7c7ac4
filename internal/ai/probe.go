package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ProbeQuestion is the question sent to each candidate model.
const ProbeQuestion = "Hello, test medical question: apa ICD-10 untuk diabetes?"

// ErrNoWorkingModel is returned when every candidate fails.
var ErrNoWorkingModel = errors.New("no working model found")

// ProbeModels tries the candidate models in order and returns the first one
// that answers. One line per attempt is written to out.
func ProbeModels(ctx context.Context, provider CompletionProvider, persona Persona, gen GenerationConfig, models []string, out io.Writer) (string, error) {
	for _, model := range models {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		fmt.Fprintf(out, "🧪 Testing %s...\n", model)

		cfg := gen
		cfg.Model = model
		answer, err := provider.Complete(ctx, CompletionRequest{
			SystemPrompt: persona.SystemPrompt,
			Question:     ProbeQuestion,
			Config:       cfg,
		})
		if err == nil && strings.TrimSpace(answer) == "" {
			err = ErrEmptyCompletion
		}
		if err != nil {
			fmt.Fprintf(out, "❌ %s - %s\n", model, truncate(err.Error(), 100))
			continue
		}

		fmt.Fprintf(out, "✅ %s - OK\n", model)
		fmt.Fprintf(out, "   Response: %s...\n", truncate(answer, 100))
		return model, nil
	}

	return "", ErrNoWorkingModel
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
