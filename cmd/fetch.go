package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"ost-labs/orgmeta/internal/config"
	"ost-labs/orgmeta/internal/fetch"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the organisations spreadsheet only",
	Long: `Fetches the input spreadsheet into the input folder if it is not
already there. Delete the local file first to force a fresh download.`,
	Run: func(cmd *cobra.Command, args []string) {
		runFetch()
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch() {
	settings, err := config.LoadOffline()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if err := settings.EnsureFolders(); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	source, err := config.LoadSourceConfig(settings.SourceConfigPath)
	if err != nil {
		log.Fatalf("Failed to load source config: %v", err)
	}

	downloaded, err := fetch.DownloadIfMissing(context.Background(), source.OrganisationsURL, settings.InputFile())
	if err != nil {
		log.Fatalf("Download failed: %v", err)
	}
	if downloaded {
		log.Printf("Downloaded organisations file to %s", settings.InputFile())
	} else {
		log.Printf("Organisations file already present at %s", settings.InputFile())
	}
}
