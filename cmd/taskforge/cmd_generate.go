package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskforge/internal/classify"
	"taskforge/internal/generate"
	"taskforge/internal/hierarchy"
	"taskforge/internal/llm"
	"taskforge/internal/priority"
)

var (
	generateTag      string
	generateForce    bool
	generateAppend   bool
	generateResearch bool
	generateEscalate bool
	generateNoFail   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Process all configured document sources into a task backlog",
	Long: `Sorts the configured document sources parent-before-child, generates
tasks for each through the LLM, and persists the aggregate list under the
target tag.

A tag that already holds tasks requires --force (restart numbering at 1,
discarding the tag's tasks) or --append (continue numbering after the
current maximum id).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if generateForce && generateAppend {
			return fmt.Errorf("--force and --append are mutually exclusive")
		}

		ctx := cmd.Context()
		client, err := llm.New(ctx, llm.ProviderConfig{
			Provider: llm.Provider(cfg.LLM.Provider),
			APIKey:   cfg.LLM.APIKey,
			Model:    cfg.LLM.Model,
			BaseURL:  cfg.LLM.BaseURL,
		})
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}

		tag := generateTag
		if tag == "" {
			tag = cfg.Tag
		}

		orch := hierarchy.New(st,
			generate.NewLLMGenerator(client),
			classify.New(classify.NewLLMFallback(client)),
			priority.NewEngine())

		result, err := orch.Run(ctx, cfg.Sources, hierarchy.RunOptions{
			Tag:      tag,
			Force:    generateForce,
			Append:   generateAppend,
			Research: generateResearch || cfg.Run.Research,
			Escalate: generateEscalate || cfg.Run.Escalate,
			FailFast: cfg.Run.FailFast && !generateNoFail,

			AllowLLMClassify:    cfg.Classifier.AllowLLMFallback,
			ClassifierThreshold: cfg.Classifier.Threshold,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Run %s: %d tasks under tag %q (%d sources processed, %d skipped",
			result.RunID, len(result.Tasks), result.Tag, len(result.Processed), len(result.Skipped))
		if result.Escalated > 0 {
			fmt.Printf(", %d priorities escalated", result.Escalated)
		}
		fmt.Println(")")
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateTag, "tag", "t", "", "target tag (defaults to the configured tag)")
	generateCmd.Flags().BoolVar(&generateForce, "force", false, "clear the tag's existing tasks and restart ids at 1")
	generateCmd.Flags().BoolVar(&generateAppend, "append", false, "keep existing tasks and continue id numbering")
	generateCmd.Flags().BoolVar(&generateResearch, "research", false, "let the generator draw on best practice beyond the document")
	generateCmd.Flags().BoolVar(&generateEscalate, "escalate", false, "run priority escalation over the aggregate result")
	generateCmd.Flags().BoolVar(&generateNoFail, "no-fail-fast", false, "continue past per-source failures")
}
