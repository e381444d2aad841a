package main

import (
	"encoding/json"
	"os"

	"github.com/rahul/pathwise/internal/goal"
	"github.com/rahul/pathwise/internal/observability"
	"github.com/rahul/pathwise/internal/planner"
	"github.com/rahul/pathwise/pkg/config"
	"github.com/spf13/cobra"
)

func planCmd(configPath *string) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "plan [goal]",
		Short: "Print the plan generated for a goal without storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			gen, err := newGenerator(cmd.Context(), cfg, observability.NewWriterLogger(os.Stderr))
			if err != nil {
				return err
			}

			var (
				drafts []goal.StepDraft
				source = planner.SourceAI
			)
			if strict {
				if drafts, err = gen.GenerateStrict(cmd.Context(), args[0]); err != nil {
					return err
				}
			} else {
				drafts, source = gen.Generate(cmd.Context(), args[0])
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"goal":     args[0],
				"source":   source,
				"subtasks": drafts,
			})
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail instead of falling back to the generic plan")
	return cmd
}
