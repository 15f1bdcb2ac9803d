// Package main provides the dealer_agent command line interface.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dealer_agent",
	Short: "Car dealer locator scraper",
	Long:  "dealer_agent scrapes dealership listings from manufacturer locator pages, learning per-site selectors with optional LLM analysis and falling back to heuristic defaults.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
