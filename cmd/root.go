package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-finder",
	Short: "Reference-based face search over photo albums",
	Long: `Face Finder scans directory-backed photo albums for a reference face
and streams matches in real time. It normalizes uploads to a byte budget
and talks to an external face embedding service for detection.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
