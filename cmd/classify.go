package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"ost-labs/orgmeta/internal/ai"
	"ost-labs/orgmeta/internal/cache"
	"ost-labs/orgmeta/internal/config"
	"ost-labs/orgmeta/internal/enrich"
	"ost-labs/orgmeta/internal/fetch"
	"ost-labs/orgmeta/internal/models"
	"ost-labs/orgmeta/internal/report"
	"ost-labs/orgmeta/internal/sheet"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Run the full metadata generation pipeline",
	Long: `Downloads the organisations spreadsheet (unless already present),
classifies every https:// website through the Mistral API with disk-cached
results, and writes orgs_classified.json plus the merged, sorted
orgs_classified.csv report.`,
	Run: func(cmd *cobra.Command, args []string) {
		runClassify()
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify() {
	ctx := context.Background()

	// 1. Configuration (fails fast without an API key)
	settings, err := config.Load()
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

	// 2. Disk cache
	c, err := cache.Open(settings.CachePath())
	if err != nil {
		log.Fatalf("Cache error: %v", err)
	}
	defer c.Close()

	// 3. Input spreadsheet
	downloaded, err := fetch.DownloadIfMissing(ctx, source.OrganisationsURL, settings.InputFile())
	if err != nil {
		log.Fatalf("Failed to download organisations file: %v", err)
	}
	if downloaded {
		log.Printf("Downloaded organisations file to %s", settings.InputFile())
	} else {
		log.Printf("Reusing existing organisations file at %s", settings.InputFile())
	}

	rows, err := sheet.ReadRows(settings.InputFile(), source.Columns)
	if err != nil {
		log.Fatalf("Failed to read organisations file: %v", err)
	}
	log.Printf("Found %d organisations to process", len(rows))

	// 4. Enrichment loop, one URL at a time in file order
	client, err := ai.NewClient(nil, settings.MistralAPIKey, settings.MistralModel, "")
	if err != nil {
		log.Fatalf("Failed to initialize Mistral client: %v", err)
	}
	enricher := enrich.New(c, client)

	targets := sheet.Filter(rows)
	results := make([]models.Result, 0, len(targets))
	for i, row := range targets {
		log.Printf("[%d/%d] %s", i+1, len(targets), row.Website)
		results = append(results, enricher.Classify(ctx, row.Website))
	}

	// 5. Report: JSON dump, round-trip, merged CSV
	if err := report.WriteJSON(settings.OutputJSON(), results); err != nil {
		log.Fatalf("Failed to write JSON output: %v", err)
	}
	loaded, err := report.ReadJSON(settings.OutputJSON())
	if err != nil {
		log.Fatalf("Failed to re-read JSON output: %v", err)
	}
	if err := report.WriteCSV(settings.OutputCSV(), loaded, rows); err != nil {
		log.Fatalf("Failed to write CSV report: %v", err)
	}

	log.Printf("Metadata generation completed (see output in %s)", settings.OutputCSV())
}
