package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrGenerationUnavailable is returned when the language model fails, times out
// or returns nothing.
var ErrGenerationUnavailable = errors.New("language model unavailable")

// Generator issues single-turn completions with a fixed timeout and temperature.
type Generator struct {
	provider    Provider
	model       string
	timeout     time.Duration
	temperature float64
}

// NewGenerator wraps provider. A zero timeout means no deadline beyond ctx.
func NewGenerator(provider Provider, model string, timeout time.Duration, temperature float64) *Generator {
	return &Generator{
		provider:    provider,
		model:       model,
		timeout:     timeout,
		temperature: temperature,
	}
}

// Name reports the underlying provider.
func (g *Generator) Name() string {
	return g.provider.Name()
}

// Generate sends instruction as the system message and prompt as the user
// message, returning the trimmed completion text.
func (g *Generator) Generate(ctx context.Context, instruction, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.provider.Complete(ctx, CompletionRequest{
		Model: g.model,
		Messages: []Message{
			{Role: RoleSystem, Content: instruction},
			{Role: RoleUser, Content: prompt},
		},
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrGenerationUnavailable, g.provider.Name(), err)
	}

	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		return "", fmt.Errorf("%w: %s returned an empty completion", ErrGenerationUnavailable, g.provider.Name())
	}
	return answer, nil
}
