package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"ost-labs/orgmeta/internal/cache"
	"ost-labs/orgmeta/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache [stats|list|clear]",
	Short: "Inspect or invalidate the classification cache",
	Long: `Manages the disk cache of classification results.

Commands:
  orgmeta cache stats
  orgmeta cache list
  orgmeta cache clear "https://example.org"
  orgmeta cache clear all`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleCache(args)
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
}

func handleCache(args []string) {
	settings, err := config.LoadOffline()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	c, err := cache.Open(settings.CachePath())
	if err != nil {
		log.Fatalf("Cache error: %v", err)
	}
	defer c.Close()

	switch strings.ToLower(args[0]) {
	case "stats":
		entries, err := c.Entries()
		if err != nil {
			log.Fatalf("Failed to read cache: %v", err)
		}
		failed := 0
		for _, e := range entries {
			if e.HasException {
				failed++
			}
		}
		fmt.Printf("Cached results: %d (%d failed, retried on next run)\n", len(entries), failed)

	case "list":
		entries, err := c.Entries()
		if err != nil {
			log.Fatalf("Failed to read cache: %v", err)
		}
		if len(entries) == 0 {
			fmt.Println("Cache is empty.")
			return
		}
		for _, e := range entries {
			marker := ""
			if e.HasException {
				marker = "  [FAILED]"
			}
			fmt.Printf("[%s] %s%s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.URL, marker)
		}

	case "clear":
		if len(args) < 2 {
			log.Fatal(`Usage: orgmeta cache clear "https://..." (or 'all')`)
		}
		target := strings.TrimSpace(strings.Join(args[1:], " "))
		var affected int64
		if strings.EqualFold(target, "all") {
			affected, err = c.ClearAll()
		} else {
			affected, err = c.Clear(target)
		}
		if err != nil {
			log.Fatalf("Failed to clear cache: %v", err)
		}
		fmt.Printf("Done. Removed %d entry(s) from cache.\n", affected)

	default:
		log.Fatalf("Unknown cache command %q (expected stats, list or clear)", args[0])
	}
}
