package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "orgmeta",
	Short: "Generate metadata for open sustainable technology organisations",
	Long: `orgmeta enriches the organisations listed in the OpenSustain.tech
spreadsheet with Type, Location and Confidence metadata inferred by the
Mistral API from each organisation's website.

Calls are cached on disk, so re-running only pays for URLs that have not
been classified yet. Configuration comes from the environment (or a .env
file): MISTRAL_API_KEY is required, everything else has defaults.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
