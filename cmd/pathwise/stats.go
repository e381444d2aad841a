package main

import (
	"encoding/json"
	"fmt"

	"github.com/rahul/pathwise/internal/tracker"
	"github.com/spf13/cobra"
)

func statsCmd(configPath *string) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print goal statistics for one owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				return fmt.Errorf("--owner is required")
			}
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.tracker.Stats(cmd.Context(), tracker.Session{OwnerID: owner})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner id, e.g. tg:12345 or the owner mapped to an API token")
	return cmd
}
