package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "pathwise",
		Short:   "Pathwise - turn learning goals into step-by-step plans",
		Version: Version,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "Config file (.json, .yaml or .yml)")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(planCmd(&configPath))
	rootCmd.AddCommand(statsCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
