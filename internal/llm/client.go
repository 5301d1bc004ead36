// Package llm provides the opaque LLM boundary consumed by the pipeline:
// document-to-task generation, low-confidence classification fallback, and
// merge arbitration all go through the Client interface. Two providers ship:
// an OpenAI-compatible chat-completions client and a Gemini client on the
// official genai SDK.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"taskforge/internal/logging"
)

// Client is the interface every provider implements.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ChatConfig holds configuration for the OpenAI-compatible chat client.
type ChatConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// DefaultChatConfig returns sensible defaults for an Anthropic-compatible
// endpoint behind an OpenAI-style chat surface.
func DefaultChatConfig(apiKey string) ChatConfig {
	return ChatConfig{
		APIKey:      apiKey,
		BaseURL:     "https://api.anthropic.com/v1",
		Model:       "claude-sonnet-4-20250514",
		Timeout:     120 * time.Second,
		MaxTokens:   8192,
		Temperature: 0.2,
	}
}

// ChatClient implements Client against any /chat/completions endpoint.
type ChatClient struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

// NewChatClient creates a chat-completions client.
func NewChatClient(cfg ChatConfig) *ChatClient {
	if cfg.Model == "" {
		cfg = DefaultChatConfig(cfg.APIKey)
	}
	return &ChatClient{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends a single-message prompt.
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.send(ctx, []chatMessage{{Role: "user", Content: prompt}})
}

// CompleteWithSystem sends a system prompt plus user prompt.
func (c *ChatClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.send(ctx, []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	})
}

func (c *ChatClient) send(ctx context.Context, messages []chatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API returned %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("chat API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat API returned no choices")
	}

	logging.API("chat completion: model=%s prompt_tokens=%d completion_tokens=%d elapsed=%s",
		c.model, parsed.Usage.PromptTokens, parsed.Usage.CompletionTokens, time.Since(start).Round(time.Millisecond))

	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// CleanJSONResponse strips markdown code fences an LLM may wrap around JSON.
func CleanJSONResponse(resp string) string {
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	return strings.TrimSpace(resp)
}
