// Package aiclient wraps the external text-generation backends: the
// Claude and Gemini headless CLIs plus an HTTP chat-completions API.
// All backends implement the same Provider contract so callers can try
// them in fallback order.
package aiclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bookforge/bookforge/internal/config"
)

// Options bounds a single generation call
type Options struct {
	MaxTokens int
	Timeout   time.Duration
}

// DefaultOptions returns the generation bounds used when the caller does
// not override them
func DefaultOptions() Options {
	return Options{
		MaxTokens: 4000,
		Timeout:   120 * time.Second,
	}
}

// Provider is a text-generation backend
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// ErrUnavailable marks a backend that cannot run at all (binary not
// installed, no credentials). Callers treat it like any other generation
// failure, but it is useful for preflight diagnostics.
var ErrUnavailable = errors.New("provider unavailable")

// Chain tries each provider in order and returns the first successful
// generation. All failures are aggregated into a single recoverable error.
type Chain struct {
	providers []Provider
}

// NewChain creates a provider chain. At least one provider is required.
func NewChain(providers ...Provider) (*Chain, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("provider chain requires at least one provider")
	}
	return &Chain{providers: providers}, nil
}

// Name returns the names of the chained providers
func (c *Chain) Name() string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return strings.Join(names, ",")
}

// Generate tries each provider in order until one succeeds
func (c *Chain) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	var errs []string

	for _, p := range c.providers {
		text, err := p.Generate(ctx, prompt, opts)
		if err == nil {
			if strings.TrimSpace(text) == "" {
				errs = append(errs, fmt.Sprintf("%s: empty response", p.Name()))
				continue
			}
			return text, nil
		}
		errs = append(errs, fmt.Sprintf("%s: %v", p.Name(), err))

		// Context cancellation is not a provider fault; stop trying.
		if ctx.Err() != nil {
			break
		}
	}

	return "", fmt.Errorf("all generation providers failed: %s", strings.Join(errs, "; "))
}

// FromConfig builds the provider fallback chain described by the
// generation config. An explicit selector (e.g. "-provider gemini")
// overrides the configured order with a single provider.
func FromConfig(cfg *config.GenerationConfig, selector string) (*Chain, error) {
	names := cfg.Providers
	if selector != "" {
		names = strings.Split(selector, ",")
	}

	providers := make([]Provider, 0, len(names))
	for _, name := range names {
		switch strings.TrimSpace(name) {
		case "claude":
			providers = append(providers, NewClaudeCLI(cfg.ClaudeBin))
		case "gemini":
			providers = append(providers, NewGeminiCLI(cfg.GeminiBin))
		case "ark":
			p, err := NewArkChat(&cfg.Ark)
			if err != nil {
				return nil, err
			}
			providers = append(providers, p)
		case "":
			continue
		default:
			return nil, fmt.Errorf("unknown generation provider: %s", name)
		}
	}

	return NewChain(providers...)
}
