package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-finder/internal/config"
	"github.com/kozaktomas/face-finder/internal/extract"
	"github.com/kozaktomas/face-finder/internal/match"
	"github.com/kozaktomas/face-finder/internal/store"
)

var searchCmd = &cobra.Command{
	Use:   "search <reference-image> <album-dir>",
	Short: "Search an album folder for a reference face",
	Long: `Load the reference face from an image and scan every image in the album
directory, printing matches as they are found.`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Float64("tolerance", 0, "Maximum embedding distance accepted as a match (0 = config default)")
	searchCmd.Flags().Float64("min-confidence", 0, "Minimum confidence percentage accepted as a match (0 = config default)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if v := mustGetFloat64(cmd, "tolerance"); v > 0 {
		cfg.Search.Tolerance = v
	}
	if v := mustGetFloat64(cmd, "min-confidence"); v > 0 {
		cfg.Search.MinConfidence = v
	}

	referencePath, albumDir := args[0], args[1]

	data, err := os.ReadFile(referencePath) //nolint:gosec // user-supplied CLI argument
	if err != nil {
		return fmt.Errorf("reading reference image: %w", err)
	}

	ctx := cmd.Context()
	extractor := extract.NewClient(cfg.Extractor.URL)

	fmt.Printf("Loading reference face from %s...\n", referencePath)
	ref, err := match.LoadReference(ctx, extractor, data, filepath.Base(referencePath))
	if err != nil {
		return fmt.Errorf("loading reference face: %w", err)
	}

	fmt.Printf("Search configured: tolerance %.2f, min confidence %.1f%%\n",
		cfg.Search.Tolerance, cfg.Search.MinConfidence)

	scanner := &match.Scanner{
		Extractor:     extractor,
		Tolerance:     cfg.Search.Tolerance,
		MinConfidence: cfg.Search.MinConfidence,
	}

	sawSummary := false
	for event := range scanner.Scan(ctx, ref, store.Open(albumDir)) {
		fmt.Println(event.Message)
		if event.Kind == match.EventSummary {
			sawSummary = true
		}
		if event.Kind == match.EventError && event.Item == "" {
			return fmt.Errorf("search failed: %s", event.Message)
		}
	}
	if !sawSummary {
		return fmt.Errorf("search interrupted")
	}
	return nil
}
