// Command scraper collects casting contact addresses from crew-united job
// listings and saves the ones not seen in the previous run.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scraper",
	Short: "Scrape crew-united listings for new casting contacts",
	Long: "scraper opens the crew-united job board, keeps the listings of the target categories, " +
		"extracts their contact emails and writes the addresses not seen in the previous run to a timestamped file.",
	RunE:          runScrape,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
