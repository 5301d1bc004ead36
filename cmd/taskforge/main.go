// taskforge derives a structured task backlog from free-text project
// documents and consolidates the task lists from related documents into one
// de-duplicated, priority-ranked set.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"taskforge/internal/config"
	"taskforge/internal/logging"
	"taskforge/internal/store"
)

var (
	// Global flags
	verbose    bool
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "taskforge",
	Short: "taskforge - document-to-backlog task pipeline",
	Long: `taskforge reads project documents (PRDs, design specs, UX specs),
derives a dependency-aware task list per document through an LLM, and
consolidates the lists into one de-duplicated, priority-ranked backlog.

Sources are processed parent-before-child so that child documents can
reference the tasks their parent document produced.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		categories := make([]logging.Category, 0, len(cfg.Logging.Categories))
		for _, c := range cfg.Logging.Categories {
			categories = append(categories, logging.Category(c))
		}
		logging.Init(logger, categories)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// openStore builds the configured store backend.
func openStore() (store.Store, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		return store.NewSQLiteStore(cfg.Store.Path)
	default:
		return store.NewJSONFileStore(cfg.Store.Path), nil
	}
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "taskforge.yaml", "path to the run configuration")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(escalateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
