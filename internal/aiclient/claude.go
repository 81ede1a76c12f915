package aiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ClaudeCLI generates text through the headless Claude CLI:
// the prompt goes to stdin of `claude --print`, the reply comes back
// on stdout.
type ClaudeCLI struct {
	bin string
}

// NewClaudeCLI creates a Claude CLI provider. bin defaults to "claude".
func NewClaudeCLI(bin string) *ClaudeCLI {
	if bin == "" {
		bin = "claude"
	}
	return &ClaudeCLI{bin: bin}
}

// Name returns the provider name
func (c *ClaudeCLI) Name() string { return "claude" }

// Generate runs the CLI with the prompt on stdin and returns its stdout
func (c *ClaudeCLI) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.bin, "--print")
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("claude CLI timed out: %w", ctx.Err())
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: claude CLI not found (install with: npm install -g @anthropic-ai/claude-cli)", ErrUnavailable)
		}
		return "", fmt.Errorf("claude CLI failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(stdout.String()), nil
}
