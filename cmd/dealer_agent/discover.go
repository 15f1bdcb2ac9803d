package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cliandouble08/car-dealer-scraper/internal/analysis"
	"github.com/cliandouble08/car-dealer-scraper/internal/driver"
	"github.com/cliandouble08/car-dealer-scraper/internal/llm"
	"github.com/spf13/cobra"
)

var discoverCommand = &cobra.Command{
	Use:   "discover",
	Short: "Find a site's dealer locator page without scraping it",
	Long:  "Renders the given URL, mines and scores its links, and reports the most likely dealer locator page. With an API key the LLM confirms or overrides the heuristic choice.",
	RunE:  runDiscoverCmd,
}

var (
	discoverURL        string
	discoverAPIKey     string
	discoverDisableAI  bool
	discoverNoHeadless bool
	discoverVerbose    bool
)

func init() {
	discoverCommand.Flags().StringVarP(&discoverURL, "url", "u", "", "Site URL to inspect (required)")
	discoverCommand.Flags().StringVar(&discoverAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	discoverCommand.Flags().BoolVar(&discoverDisableAI, "disable-ai", false, "Heuristics only, no LLM calls")
	discoverCommand.Flags().BoolVar(&discoverNoHeadless, "no-headless", false, "Run the browser with a visible window")
	discoverCommand.Flags().BoolVarP(&discoverVerbose, "verbose", "v", false, "Print detailed debug information")
	_ = discoverCommand.MarkFlagRequired("url")

	rootCmd.AddCommand(discoverCommand)
}

func runDiscoverCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	apiKey := discoverAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	var client llm.Client
	if !discoverDisableAI && apiKey != "" {
		var err error
		client, err = llm.NewClient(ctx, nil, apiKey)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer client.Close()
	}

	drv := driver.NewChromeDriver(!discoverNoHeadless, 90*time.Second)
	drv.SetVerbose(discoverVerbose)

	fmt.Printf("Rendering %s...\n", discoverURL)
	html, err := drv.RenderPage(ctx, discoverURL)
	if err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}

	analyzer := analysis.NewAnalyzer(client)
	analyzer.SetVerbose(discoverVerbose)

	result, err := analyzer.FindLocatorURL(ctx, discoverURL, html)
	if err != nil {
		return err
	}

	switch {
	case result.IsLocator:
		fmt.Println("This page is itself a dealer locator.")
	case result.LocatorURL != "":
		fmt.Printf("Locator page: %s\n", result.LocatorURL)
	default:
		fmt.Println("No locator page found.")
	}
	fmt.Printf("Confidence: %.2f\n", result.Confidence)
	if len(result.Candidates) > 0 {
		fmt.Println("Candidates considered:")
		for _, c := range result.Candidates {
			fmt.Printf("  - %s\n", c)
		}
	}
	return nil
}
