// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate wraps the generative-text service used by the summarizer,
// critic, and verifier. A Generator is constructed once at startup with its
// credential and injected into each caller.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/pdiddy/research-digest/pkg/types"
)

// Default settings for the generative-text service.
const (
	DefaultProvider = types.ProviderOpenAI
	DefaultTimeout  = 60 * time.Second
)

// defaultModels is the model used for each provider when none is configured.
var defaultModels = map[types.AIProvider]string{
	types.ProviderOpenAI:    "gpt-3.5-turbo",
	types.ProviderAnthropic: "claude-3-5-haiku-latest",
}

// DefaultModel returns the model used for provider when none is configured.
// An empty provider means DefaultProvider; an unknown one yields "".
func DefaultModel(provider types.AIProvider) string {
	if provider == "" {
		provider = DefaultProvider
	}
	return defaultModels[provider]
}

// Generator completes a single-turn prompt.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyResponse is returned when the service answers with no text.
var ErrEmptyResponse = errors.New("empty response")

// GenerationError reports that a completion call failed, timed out, or
// produced no usable text.
type GenerationError struct {
	Timeout bool
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("generation timed out: %v", e.Err)
	}
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// LLMGenerator is a Generator backed by a langchaingo model.
type LLMGenerator struct {
	Model   llms.Model
	Timeout time.Duration
}

var _ Generator = (*LLMGenerator)(nil)

// New builds an LLMGenerator for cfg.Provider. cfg.APIKey must already be
// resolved; the credential is bound to the returned generator and never
// read from the environment again.
func New(cfg types.AIConfig) (*LLMGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("generate: API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel(cfg.Provider)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var (
		m   llms.Model
		err error
	)
	switch cfg.Provider {
	case "", types.ProviderOpenAI:
		opts := []openai.Option{openai.WithToken(cfg.APIKey), openai.WithModel(model)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		m, err = openai.New(opts...)
	case types.ProviderAnthropic:
		opts := []anthropic.Option{anthropic.WithToken(cfg.APIKey), anthropic.WithModel(model)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		m, err = anthropic.New(opts...)
	default:
		return nil, fmt.Errorf("generate: unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("generate: creating %s client: %w", cfg.Provider, err)
	}

	return &LLMGenerator{Model: m, Timeout: timeout}, nil
}

// Complete sends prompt as a single user message and returns the response
// text verbatim. Every failure, including a deadline and a blank answer, is
// returned as a *GenerationError. Complete does not retry.
func (g *LLMGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, g.Model, prompt)
	if err != nil {
		return "", &GenerationError{
			Timeout: errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded),
			Err:     err,
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", &GenerationError{Err: ErrEmptyResponse}
	}
	return text, nil
}
