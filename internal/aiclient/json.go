package aiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const jsonInstruction = "\n\nIMPORTANT: Respond with valid JSON only. No markdown, no explanations, just pure JSON.\n"

// GenerateJSON asks the provider for a JSON response and unmarshals it
// into out. Markdown code fences around the JSON are tolerated.
func GenerateJSON(ctx context.Context, p Provider, prompt string, opts Options, out interface{}) error {
	response, err := p.Generate(ctx, prompt+jsonInstruction, opts)
	if err != nil {
		return err
	}

	cleaned := StripCodeFence(response)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return nil
}

// StripCodeFence extracts the body of a ```json ... ``` (or plain ```)
// fenced block. Text without a fence is returned trimmed.
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)

	if idx := strings.Index(trimmed, "```json"); idx >= 0 {
		rest := trimmed[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}

	if idx := strings.Index(trimmed, "```"); idx >= 0 {
		rest := trimmed[idx+3:]
		// Skip an optional language tag on the fence line
		if nl := strings.Index(rest, "\n"); nl >= 0 && !strings.ContainsAny(rest[:nl], "{[") {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}

	return trimmed
}
