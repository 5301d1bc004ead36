package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiClient implements Client over the official Google genai SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClient{client: client, model: cfg.Model}, nil
}

// Complete sends a single prompt.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, nil)
}

// CompleteWithSystem sends a prompt with a system instruction.
func (c *GeminiClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	return c.generate(ctx, userPrompt, cfg)
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty response")
	}
	return text, nil
}
