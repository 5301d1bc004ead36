package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskforge/internal/classify"
	"taskforge/internal/llm"
)

var classifyUseLLM bool

var classifyCmd = &cobra.Command{
	Use:   "classify <file>",
	Short: "Detect the document type of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		var fallback classify.LLMClassifier
		if classifyUseLLM {
			client, err := llm.New(cmd.Context(), llm.ProviderConfig{
				Provider: llm.Provider(cfg.LLM.Provider),
				APIKey:   cfg.LLM.APIKey,
				Model:    cfg.LLM.Model,
				BaseURL:  cfg.LLM.BaseURL,
			})
			if err != nil {
				return err
			}
			fallback = classify.NewLLMFallback(client)
		}

		result := classify.New(fallback).Classify(cmd.Context(), string(content), classify.Options{
			UseLLMFallback: classifyUseLLM,
			Threshold:      cfg.Classifier.Threshold,
		})

		fmt.Printf("%s (confidence %.2f, via %s)\n", result.Type, result.Confidence, result.Source)
		if result.Reasoning != "" {
			fmt.Printf("  %s\n", result.Reasoning)
		}
		return nil
	},
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyUseLLM, "llm", false, "escalate to the LLM when pattern confidence is low")
}
