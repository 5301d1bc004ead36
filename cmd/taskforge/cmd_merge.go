package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskforge/internal/llm"
	"taskforge/internal/merge"
	"taskforge/internal/priority"
)

var (
	mergeTag       string
	mergeThreshold float64
	mergeUseLLM    bool
	mergeEscalate  bool
	mergeDryRun    bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Collapse near-duplicate tasks under a tag",
	Long: `Loads the tag's tasks, detects duplicates in tiers (content hash,
token similarity, optional LLM arbitration for borderline pairs) and
consolidates each duplicate group into the task with the lowest id.
Dependencies pointing at merged-away tasks are rewritten to the survivor.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		tag := mergeTag
		if tag == "" {
			tag = cfg.Tag
		}

		tasks, err := st.Load(tag)
		if err != nil {
			return fmt.Errorf("load tag %q: %w", tag, err)
		}

		var arbiter merge.Arbiter
		useLLM := mergeUseLLM || cfg.Merge.UseLLM
		if useLLM {
			client, err := llm.New(cmd.Context(), llm.ProviderConfig{
				Provider: llm.Provider(cfg.LLM.Provider),
				APIKey:   cfg.LLM.APIKey,
				Model:    cfg.LLM.Model,
				BaseURL:  cfg.LLM.BaseURL,
			})
			if err != nil {
				return err
			}
			arbiter = merge.NewLLMArbiter(client)
		}

		threshold := mergeThreshold
		if threshold == 0 {
			threshold = cfg.Merge.SimilarityThreshold
		}

		engine := merge.New(priority.NewEngine(), arbiter)
		merged, report, err := engine.Merge(cmd.Context(), tasks, merge.Options{
			SimilarityThreshold: threshold,
			UseLLM:              useLLM,
			Escalate:            mergeEscalate || cfg.Merge.Escalate,
		})
		if err != nil {
			return err
		}

		if !mergeDryRun {
			if err := st.Save(tag, merged); err != nil {
				return err
			}
		}

		fmt.Printf("Merge %s: %d -> %d tasks under tag %q\n",
			report.Telemetry.RunID, report.OriginalCount, report.FinalCount, tag)
		for _, evt := range report.Events {
			fmt.Printf("  kept %d, absorbed %v (%s)\n", evt.KeptID, evt.MergedFrom, evt.Strategy)
		}
		for _, warning := range report.CycleWarnings {
			fmt.Printf("  warning: dependency cycle %s\n", warning)
		}
		if mergeDryRun {
			fmt.Println("  (dry run, nothing written)")
		}
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeTag, "tag", "t", "", "tag to merge (defaults to the configured tag)")
	mergeCmd.Flags().Float64Var(&mergeThreshold, "threshold", 0, "similarity threshold (defaults to the configured value)")
	mergeCmd.Flags().BoolVar(&mergeUseLLM, "llm", false, "arbitrate borderline pairs through the LLM")
	mergeCmd.Flags().BoolVar(&mergeEscalate, "escalate", false, "re-run priority escalation on consolidated tasks")
	mergeCmd.Flags().BoolVar(&mergeDryRun, "dry-run", false, "report merges without writing the result")
}
