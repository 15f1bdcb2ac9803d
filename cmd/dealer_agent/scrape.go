package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cliandouble08/car-dealer-scraper/internal/geo"
	"github.com/cliandouble08/car-dealer-scraper/internal/pipeline"
	"github.com/cliandouble08/car-dealer-scraper/internal/sitekey"
	"github.com/spf13/cobra"
)

var scrapeCommand = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape dealership listings across zip codes",
	Long: `Runs the full scraping pipeline for each site: locator discovery -> structure analysis -> zip search -> validation -> extraction -> CSV/JSON output.

Sites come from --url (one site) or --websites (a text file with one URL per line, # comments allowed). Zip codes come from --zip-codes or --zip-file.`,
	RunE: runScrapeCmd,
}

var (
	scrapeURL         string
	scrapeBrand       string
	scrapeWebsites    string
	scrapeZipCodes    string
	scrapeZipFile     string
	scrapeConfigDir   string
	scrapeCacheDir    string
	scrapeOutputDir   string
	scrapeAPIKey      string
	scrapeDisableAI   bool
	scrapeNoHeadless  bool
	scrapeWorkers     int
	scrapeVerbose     bool
	scrapeSiteTimeout time.Duration
	scrapeListSites   bool
)

func init() {
	scrapeCommand.Flags().StringVarP(&scrapeURL, "url", "u", "", "Single site URL to scrape (mutually exclusive with --websites)")
	scrapeCommand.Flags().StringVar(&scrapeBrand, "brand", "", "Brand name for --url (defaults to the domain's first label)")
	scrapeCommand.Flags().StringVar(&scrapeWebsites, "websites", "", "Text file with site URLs, one per line")
	scrapeCommand.Flags().StringVar(&scrapeZipCodes, "zip-codes", "", "Comma-separated zip codes")
	scrapeCommand.Flags().StringVar(&scrapeZipFile, "zip-file", "", "File with zip codes, one per line")
	scrapeCommand.Flags().StringVar(&scrapeConfigDir, "config-dir", "configs", "Directory with base and site config YAML files")
	scrapeCommand.Flags().StringVar(&scrapeCacheDir, "cache-dir", "cache", "Directory for generated configs and discovery cache")
	scrapeCommand.Flags().StringVarP(&scrapeOutputDir, "output-dir", "o", "output", "Output directory for CSV/JSON results")
	scrapeCommand.Flags().BoolVar(&scrapeDisableAI, "disable-ai", false, "Disable LLM analysis, use default selectors")
	scrapeCommand.Flags().BoolVar(&scrapeNoHeadless, "no-headless", false, "Run the browser with a visible window")
	scrapeCommand.Flags().IntVarP(&scrapeWorkers, "workers", "w", 1, "Number of sites scraped in parallel")
	scrapeCommand.Flags().BoolVarP(&scrapeVerbose, "verbose", "v", false, "Print detailed debug information")
	scrapeCommand.Flags().DurationVar(&scrapeSiteTimeout, "site-timeout", 0, "Per-site time limit (0 means no limit)")
	scrapeCommand.Flags().BoolVar(&scrapeListSites, "list-websites", false, "List the sites that would be scraped and exit")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	scrapeCommand.Flags().StringVar(&scrapeAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	rootCmd.AddCommand(scrapeCommand)
}

func runScrapeCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	targets, err := loadTargets()
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no sites to scrape; provide --url or --websites")
	}

	if scrapeListSites {
		fmt.Println("Websites to scrape:")
		for _, t := range targets {
			fmt.Printf("  - %s (%s)\n", t.URL, t.Brand)
		}
		return nil
	}

	zips, err := loadZips()
	if err != nil {
		return err
	}
	if len(zips) == 0 {
		return fmt.Errorf("no zip codes; provide --zip-codes or --zip-file")
	}

	apiKey := scrapeAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	enableAI := !scrapeDisableAI && apiKey != ""
	if enableAI {
		fmt.Println("AI features enabled - using LLM structure analysis")
	} else {
		fmt.Println("AI features disabled - using default selectors")
	}

	fmt.Printf("Loaded %d zip codes\n", len(zips))
	fmt.Printf("Loaded %d websites to scrape\n", len(targets))

	p, err := pipeline.New(ctx, pipeline.Options{
		ConfigDir:   scrapeConfigDir,
		CacheDir:    scrapeCacheDir,
		OutputDir:   scrapeOutputDir,
		APIKey:      apiKey,
		EnableAI:    enableAI,
		Headless:    !scrapeNoHeadless,
		Verbose:     scrapeVerbose,
		Concurrency: scrapeWorkers,
		SiteTimeout: scrapeSiteTimeout,
	})
	if err != nil {
		return err
	}
	defer p.Close()

	results, err := p.Run(ctx, targets, zips)
	if err != nil {
		return err
	}

	total := 0
	for _, r := range results {
		total += len(r.Dealers)
	}
	fmt.Printf("\nCOMPLETE: Found %d dealers across %d sites\n", total, len(results))
	return nil
}

func loadTargets() ([]pipeline.Target, error) {
	if scrapeURL != "" && scrapeWebsites != "" {
		return nil, fmt.Errorf("--url and --websites are mutually exclusive; provide only one")
	}

	if scrapeURL != "" {
		brand := scrapeBrand
		if brand == "" {
			brand = brandFromURL(scrapeURL)
		}
		return []pipeline.Target{{Brand: brand, URL: scrapeURL}}, nil
	}
	if scrapeWebsites == "" {
		return nil, nil
	}

	f, err := os.Open(scrapeWebsites)
	if err != nil {
		return nil, fmt.Errorf("failed to open websites file: %w", err)
	}
	defer f.Close()

	var targets []pipeline.Target
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if !strings.HasPrefix(line, "http://") && !strings.HasPrefix(line, "https://") {
			continue
		}
		targets = append(targets, pipeline.Target{Brand: brandFromURL(line), URL: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read websites file: %w", err)
	}
	return targets, nil
}

func loadZips() ([]string, error) {
	var zips []string
	for _, z := range strings.Split(scrapeZipCodes, ",") {
		if z = strings.TrimSpace(z); z != "" {
			zips = append(zips, z)
		}
	}
	if scrapeZipFile != "" {
		fromFile, err := geo.ReadZipFile(scrapeZipFile)
		if err != nil {
			return nil, err
		}
		zips = append(zips, fromFile...)
	}
	return zips, nil
}

// brandFromURL guesses a brand name from a URL's domain, e.g.
// "https://www.ford.com/x" -> "ford".
func brandFromURL(rawURL string) string {
	domain := sitekey.ExtractDomain(rawURL)
	if i := strings.Index(domain, "."); i > 0 {
		return domain[:i]
	}
	return domain
}
