package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bookforge/bookforge/internal/config"
)

// ArkChat generates text through an OpenAI-compatible chat-completions
// endpoint. It is the API-based alternative to the CLI providers.
type ArkChat struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
}

// NewArkChat creates the HTTP chat provider
func NewArkChat(cfg *config.ArkConfig) (*ArkChat, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: ark api_key is required", ErrUnavailable)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://ark.cn-beijing.volces.com/api/v3/chat/completions"
	}

	model := cfg.Model
	if model == "" {
		model = "doubao-1-5-pro-32k-250115"
	}

	return &ArkChat{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		model:    model,
		client: &http.Client{
			Timeout: 180 * time.Second,
		},
	}, nil
}

// Name returns the provider name
func (a *ArkChat) Name() string { return "ark" }

type arkChatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Generate sends a single-turn chat completion request
func (a *ArkChat) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4000
	}

	reqBody := map[string]interface{}{
		"model": a.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.7,
		"max_tokens":  maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp arkChatResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return apiResp.Choices[0].Message.Content, nil
}
