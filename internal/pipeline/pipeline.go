// Package pipeline orchestrates a scrape run end to end: locator
// discovery, structure analysis, config resolution, zip searches with
// post-search validation, extraction, and output.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliandouble08/car-dealer-scraper/internal/analysis"
	"github.com/cliandouble08/car-dealer-scraper/internal/config"
	"github.com/cliandouble08/car-dealer-scraper/internal/discovery"
	"github.com/cliandouble08/car-dealer-scraper/internal/driver"
	"github.com/cliandouble08/car-dealer-scraper/internal/extraction"
	"github.com/cliandouble08/car-dealer-scraper/internal/llm"
	"github.com/cliandouble08/car-dealer-scraper/internal/output"
	"github.com/cliandouble08/car-dealer-scraper/internal/sitekey"
	"github.com/cliandouble08/car-dealer-scraper/internal/types"
	"github.com/cliandouble08/car-dealer-scraper/internal/validation"
)

const (
	// maxConsecutiveErrors is the circuit-breaker threshold: after this
	// many zip searches fail back to back, the site takes a cooldown.
	maxConsecutiveErrors = 5
	// errorCooldown is how long the circuit breaker pauses a site.
	errorCooldown = 30 * time.Second
	// minSearchDelay is the floor on the delay between zip searches.
	minSearchDelay = 2 * time.Second
)

// Options configures a Pipeline.
type Options struct {
	ConfigDir   string
	CacheDir    string
	OutputDir   string
	APIKey      string
	EnableAI    bool
	Headless    bool
	Verbose     bool
	Concurrency int
	// SiteTimeout bounds one site's full scrape. Zero means no bound
	// beyond the caller's context.
	SiteTimeout time.Duration
}

// Target names one site to scrape.
type Target struct {
	Brand string
	URL   string
}

// SiteResult is the outcome of scraping one site.
type SiteResult struct {
	Brand    string
	Domain   string
	Dealers  []types.Dealer
	CSVPath  string
	JSONPath string
}

// Pipeline wires the scraping stages together. Create one per run.
type Pipeline struct {
	opts      Options
	store     *config.Store
	cache     *discovery.Cache
	client    llm.Client
	analyzer  *analysis.Analyzer
	validator *validation.Validator
	drv       driver.Driver
	writer    *output.Writer

	// sleep is swappable in tests so the circuit breaker does not
	// actually wait.
	sleep func(context.Context, time.Duration)
}

// New builds a Pipeline. When AI is enabled and an API key is present,
// discovery and analysis use the model; otherwise they degrade to
// heuristics and base-config defaults.
func New(ctx context.Context, opts Options) (*Pipeline, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	var client llm.Client
	if opts.EnableAI && opts.APIKey != "" {
		var err error
		client, err = llm.NewClient(ctx, nil, opts.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
	}

	analyzer := analysis.NewAnalyzer(client)
	analyzer.SetVerbose(opts.Verbose)
	validator := validation.NewValidator()
	validator.SetVerbose(opts.Verbose)

	drv := driver.NewChromeDriver(opts.Headless, 0)
	drv.SetVerbose(opts.Verbose)

	writer := output.NewWriter(opts.OutputDir)
	writer.SetVerbose(opts.Verbose)

	return &Pipeline{
		opts:      opts,
		store:     config.NewStore(opts.ConfigDir, opts.CacheDir),
		cache:     discovery.NewCache(opts.CacheDir, discovery.DefaultCacheTTL),
		client:    client,
		analyzer:  analyzer,
		validator: validator,
		drv:       drv,
		writer:    writer,
		sleep:     sleepCtx,
	}, nil
}

// Close releases the model client.
func (p *Pipeline) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// RunSite scrapes one site across all zips and writes its output files.
func (p *Pipeline) RunSite(ctx context.Context, target Target, zips []string) (*SiteResult, error) {
	if p.opts.SiteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.SiteTimeout)
		defer cancel()
	}

	locatorURL, domain := p.resolveLocator(ctx, target)
	cfg := p.resolveConfig(ctx, target, locatorURL, domain)

	dealers := p.scrapeZips(ctx, locatorURL, domain, cfg, zips)

	result := &SiteResult{Brand: target.Brand, Domain: domain, Dealers: dealers}
	if len(dealers) > 0 {
		var err error
		if result.CSVPath, err = p.writer.WriteCSV(domain, dealers); err != nil {
			return result, err
		}
		if result.JSONPath, err = p.writer.WriteJSON(domain, dealers); err != nil {
			return result, err
		}
	}

	fmt.Printf("%s: %d dealers\n", domain, len(dealers))
	return result, nil
}

// resolveLocator finds the dealer-locator URL for the target, consulting
// the discovery cache before rendering and analyzing the landing page.
// On any failure the target URL itself is used.
func (p *Pipeline) resolveLocator(ctx context.Context, target Target) (string, string) {
	domain := sitekey.ExtractDomain(target.URL)

	if result := p.cache.Get(domain); result != nil {
		if p.opts.Verbose {
			log.Printf("[PIPELINE] %s: discovery cache hit", domain)
		}
		return p.applyDiscovery(target.URL, result)
	}

	// A cached generated config already points at the locator.
	if p.store.HasGeneratedConfig(domain) {
		if base := p.store.GetConfig(domain).BaseURL; base != "" && moreSpecificPath(base, target.URL) {
			if p.opts.Verbose {
				log.Printf("[PIPELINE] %s: using locator URL from cached config: %s", domain, base)
			}
			return base, domain
		}
		return target.URL, domain
	}

	html, err := p.drv.RenderPage(ctx, target.URL)
	if err != nil {
		log.Printf("[PIPELINE] %s: could not render landing page, scraping it directly: %v", domain, err)
		return target.URL, domain
	}

	result, err := p.analyzer.FindLocatorURL(ctx, target.URL, html)
	if err != nil || result == nil {
		return target.URL, domain
	}
	if err := p.cache.Put(domain, result); err != nil {
		log.Printf("[PIPELINE] %s: failed to cache discovery result: %v", domain, err)
	}
	return p.applyDiscovery(target.URL, result)
}

func (p *Pipeline) applyDiscovery(targetURL string, result *types.DiscoveryResult) (string, string) {
	if result.IsLocator || result.LocatorURL == "" {
		return targetURL, sitekey.ExtractDomain(targetURL)
	}
	return result.LocatorURL, sitekey.ExtractDomain(result.LocatorURL)
}

// resolveConfig returns the merged config for the domain, generating and
// persisting an analysis-derived layer first when none exists yet.
func (p *Pipeline) resolveConfig(ctx context.Context, target Target, locatorURL, domain string) *config.SiteConfig {
	if p.store.HasGeneratedConfig(domain) {
		if p.opts.Verbose {
			log.Printf("[PIPELINE] %s: using cached generated config", domain)
		}
		return p.store.GetConfig(domain)
	}

	html, err := p.drv.RenderPage(ctx, locatorURL)
	if err != nil {
		log.Printf("[PIPELINE] %s: could not render locator page, using default selectors: %v", domain, err)
		return p.store.GetConfig(domain)
	}

	analysisResult, err := p.analyzer.AnalyzePageStructure(ctx, locatorURL, html)
	if err != nil {
		log.Printf("[PIPELINE] %s: structure analysis unavailable, using default selectors: %v", domain, err)
		return p.store.GetConfig(domain)
	}

	layer := config.FromAnalysis(analysisResult, target.Brand, locatorURL)
	if err := p.store.CacheGeneratedConfig(layer, domain); err != nil {
		log.Printf("[PIPELINE] %s: failed to persist generated config: %v", domain, err)
	}
	return p.store.GetConfig(domain)
}

// scrapeZips runs the zip searches with the circuit breaker, validating
// once per domain and refining the config when validation asks for it.
func (p *Pipeline) scrapeZips(ctx context.Context, locatorURL, domain string, cfg *config.SiteConfig, zips []string) []types.Dealer {
	extractor := extraction.NewExtractor()
	extractor.SetVerbose(p.opts.Verbose)

	sessionID := uuid.NewString()
	scrapeDate := time.Now().Format("2006-01-02 15:04:05")

	var all []types.Dealer
	consecutiveErrors := 0

	for i, zip := range zips {
		if ctx.Err() != nil {
			log.Printf("[PIPELINE] %s: stopping, %v", domain, ctx.Err())
			break
		}
		fmt.Printf("[%d/%d] Scraping %s for %s...\n", i+1, len(zips), domain, zip)

		html, err := p.drv.SearchZip(ctx, locatorURL, zip, cfg)
		if err != nil {
			log.Printf("[PIPELINE] %s: search for %s failed: %v", domain, zip, err)
			consecutiveErrors++
			if consecutiveErrors >= maxConsecutiveErrors {
				log.Printf("[PIPELINE] %s: %d consecutive errors, cooling down for %s", domain, consecutiveErrors, errorCooldown)
				p.sleep(ctx, errorCooldown)
				consecutiveErrors = 0
			}
			continue
		}
		consecutiveErrors = 0

		cfg = p.validateOnce(ctx, html, locatorURL, domain, cfg)

		dealers, err := extractor.ExtractDealers(html, cfg, extraction.PageMeta{
			SourceURL:  locatorURL,
			SearchZip:  zip,
			ScrapeDate: scrapeDate,
			SessionID:  sessionID,
		})
		if err != nil {
			log.Printf("[PIPELINE] %s: extraction for %s failed: %v", domain, zip, err)
			continue
		}
		fmt.Printf("  Found %d dealers\n", len(dealers))
		all = append(all, dealers...)

		delay := seconds(cfg.Interactions.WaitAfterSearch)
		if delay < minSearchDelay {
			delay = minSearchDelay
		}
		if i < len(zips)-1 {
			p.sleep(ctx, delay)
		}
	}
	return all
}

// validateOnce runs post-search validation the first time a domain's
// search results come back, refining the config when the configured
// selectors missed. Low-confidence heuristic findings escalate to model
// refinement.
func (p *Pipeline) validateOnce(ctx context.Context, html, locatorURL, domain string, cfg *config.SiteConfig) *config.SiteConfig {
	if _, done := p.validator.Validated(domain); done {
		return cfg
	}

	result, err := p.validator.ValidateSearchResults(html, locatorURL, cfg)
	if err != nil {
		log.Printf("[PIPELINE] %s: validation failed: %v", domain, err)
		return cfg
	}
	if !result.NeedsRefinement {
		return cfg
	}

	if result.Confidence < validation.ModelRefinementThreshold {
		refined := p.validator.RefineWithModel(ctx, p.client, html, locatorURL, cfg)
		if refined != cfg {
			log.Printf("[PIPELINE] %s: selectors refined by model: %v", domain, refined.CardSelectors())
		}
		return refined
	}

	refined := validation.RefineSelectors(result, cfg)
	if refined != cfg {
		log.Printf("[PIPELINE] %s: selectors refined heuristically: %v", domain, refined.CardSelectors())
	}
	return refined
}

// moreSpecificPath reports whether a's path is longer than b's on the
// same domain, i.e. a cached base URL that points deeper into the site.
func moreSpecificPath(a, b string) bool {
	pa, errA := url.Parse(a)
	pb, errB := url.Parse(b)
	if errA != nil || errB != nil {
		return false
	}
	if sitekey.Normalize(pa.Host) != sitekey.Normalize(pb.Host) {
		return false
	}
	return len(strings.TrimRight(pa.Path, "/")) > len(strings.TrimRight(pb.Path, "/"))
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
