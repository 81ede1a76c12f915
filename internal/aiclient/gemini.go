package aiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// GeminiCLI generates text through the headless Gemini CLI, which takes
// the prompt as its single argument.
type GeminiCLI struct {
	bin string
}

// NewGeminiCLI creates a Gemini CLI provider. bin defaults to "gemini".
func NewGeminiCLI(bin string) *GeminiCLI {
	if bin == "" {
		bin = "gemini"
	}
	return &GeminiCLI{bin: bin}
}

// Name returns the provider name
func (g *GeminiCLI) Name() string { return "gemini" }

// Generate runs the CLI and returns its stdout
func (g *GeminiCLI) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, g.bin, prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("gemini CLI timed out: %w", ctx.Err())
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: gemini CLI not found", ErrUnavailable)
		}
		return "", fmt.Errorf("gemini CLI failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(stdout.String()), nil
}
