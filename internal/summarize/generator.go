// Package summarize produces short natural-language descriptions of files and
// procedures with a text-generation model, memoized per (file, procedure).
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Generator turns a prompt into text. Implementations are stateless wrappers
// around a provider API.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Provider names accepted by New.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// ErrNoAPIKey is returned when the selected provider has no key configured.
var ErrNoAPIKey = errors.New("no API key configured")

// ErrUnavailable is returned by a Summarizer without a generator.
var ErrUnavailable = errors.New("AI summaries unavailable")

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// New builds the generator for provider. An empty model selects the
// provider default. ProviderNone returns (nil, nil).
func New(ctx context.Context, provider, model, apiKey string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderGemini, "":
		if apiKey == "" {
			return nil, fmt.Errorf("gemini: %w", ErrNoAPIKey)
		}
		g, err := NewGemini(ctx, apiKey, model)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		return g, nil
	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("anthropic: %w", ErrNoAPIKey)
		}
		return NewAnthropic(apiKey, model), nil
	case ProviderNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", provider)
	}
}
