package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskforge/internal/priority"
)

var escalateTag string

var escalateCmd = &cobra.Command{
	Use:   "escalate",
	Short: "Recompute task priorities under a tag",
	Long: `Runs the priority rule engine over every task under the tag and
persists the result. Each changed task records the rules that fired in its
escalationReason field.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		tag := escalateTag
		if tag == "" {
			tag = cfg.Tag
		}

		tasks, err := st.Load(tag)
		if err != nil {
			return fmt.Errorf("load tag %q: %w", tag, err)
		}

		escalated, changed := priority.NewEngine().EscalateAll(tasks)
		if err := st.Save(tag, escalated); err != nil {
			return err
		}

		fmt.Printf("Escalation: %d of %d tasks changed under tag %q\n", changed, len(escalated), tag)
		return nil
	},
}

func init() {
	escalateCmd.Flags().StringVarP(&escalateTag, "tag", "t", "", "tag to escalate (defaults to the configured tag)")
}
