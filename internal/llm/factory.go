package llm

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Provider names a supported LLM backend.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// ProviderConfig is the resolved provider selection.
type ProviderConfig struct {
	Provider Provider
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// APIKeyEnvVar is consulted when configuration carries no key.
const APIKeyEnvVar = "TASKFORGE_API_KEY"

// New builds a client for the configured provider. The API key falls back to
// the TASKFORGE_API_KEY environment variable.
func New(ctx context.Context, cfg ProviderConfig) (Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnvVar)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no API key configured (set %s)", APIKeyEnvVar)
	}

	switch cfg.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, GeminiConfig{APIKey: apiKey, Model: cfg.Model})
	case ProviderAnthropic, ProviderOpenAI, "":
		chat := DefaultChatConfig(apiKey)
		if cfg.Model != "" {
			chat.Model = cfg.Model
		}
		if cfg.BaseURL != "" {
			chat.BaseURL = cfg.BaseURL
		}
		if cfg.Timeout > 0 {
			chat.Timeout = cfg.Timeout
		}
		return NewChatClient(chat), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
