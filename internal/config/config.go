// Package config loads the run configuration: the document sources to
// process plus classifier, merge, escalation, store and LLM settings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"taskforge/internal/task"
)

// Config holds one run's full configuration.
type Config struct {
	// Sources are the input documents, forest-ordered by parentId links.
	Sources []task.DocumentSource `yaml:"sources"`

	// Tag is the default workspace partition to write to.
	Tag string `yaml:"tag"`

	Store      StoreConfig      `yaml:"store"`
	LLM        LLMConfig        `yaml:"llm"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Merge      MergeConfig      `yaml:"merge"`
	Run        RunConfig        `yaml:"run"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// StoreConfig selects and locates the task store backend.
type StoreConfig struct {
	Backend string `yaml:"backend"` // json, sqlite
	Path    string `yaml:"path"`
}

// LLMConfig configures the provider used for generation, classification
// fallback and merge arbitration.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini, anthropic, openai
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
}

// ClassifierConfig configures auto-type detection.
type ClassifierConfig struct {
	Threshold        float64 `yaml:"threshold"`
	AllowLLMFallback bool    `yaml:"allow_llm_fallback"`
}

// MergeConfig configures the duplicate-detection pipeline.
type MergeConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	UseLLM              bool    `yaml:"use_llm"`
	Escalate            bool    `yaml:"escalate"`
}

// RunConfig holds orchestrator run flags. CLI flags override these.
type RunConfig struct {
	FailFast bool `yaml:"fail_fast"`
	Escalate bool `yaml:"escalate"`
	Research bool `yaml:"research"`
}

// LoggingConfig selects log verbosity and enabled categories.
type LoggingConfig struct {
	Debug      bool     `yaml:"debug"`
	Categories []string `yaml:"categories"` // empty enables all
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Tag: "main",
		Store: StoreConfig{
			Backend: "json",
			Path:    "tasks.json",
		},
		LLM: LLMConfig{
			Provider: "gemini",
		},
		Classifier: ClassifierConfig{
			Threshold:        0.65,
			AllowLLMFallback: true,
		},
		Merge: MergeConfig{
			SimilarityThreshold: 0.85,
		},
		Run: RunConfig{
			FailFast: true,
		},
	}
}

// Load reads the yaml file at path over the defaults. A missing file yields
// the defaults. Environment variables override the file for secrets.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("TASKFORGE_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if c.LLM.APIKey == "" {
		if key := os.Getenv("GEMINI_API_KEY"); key != "" && c.LLM.Provider == "gemini" {
			c.LLM.APIKey = key
		}
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && c.LLM.Provider == "anthropic" {
			c.LLM.APIKey = key
		}
	}
}

func (c *Config) validate() error {
	seen := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		if s.ID == "" {
			return fmt.Errorf("config: source with empty id (path %q)", s.Path)
		}
		if seen[s.ID] {
			return fmt.Errorf("config: duplicate source id %q", s.ID)
		}
		seen[s.ID] = true
	}
	switch c.Store.Backend {
	case "", "json", "sqlite":
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	if c.Merge.SimilarityThreshold < 0 || c.Merge.SimilarityThreshold > 1 {
		return fmt.Errorf("config: similarity_threshold %v out of range [0,1]", c.Merge.SimilarityThreshold)
	}
	return nil
}
