// Package driver renders dealer-locator pages in a headless browser and
// executes the configured search interaction: fill the zip input, submit,
// wait, and expand paginated results. Requires Chrome/Chromium on the
// system.
package driver

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/cliandouble08/car-dealer-scraper/internal/config"
)

// maxExpandClicks bounds how many times a View More button is clicked
// before results are considered fully expanded.
const maxExpandClicks = 20

// maxScrolls bounds scroll-based result expansion.
const maxScrolls = 10

// clickTimeout bounds a single optional click. chromedp element queries
// poll until the context is done, so an absent selector must not consume
// the whole tab deadline.
const clickTimeout = 2 * time.Second

// Driver renders pages. Implementations must be safe for sequential use;
// concurrent calls get independent browser contexts.
type Driver interface {
	// RenderPage loads a URL and returns the rendered HTML after scripts
	// have had a chance to run.
	RenderPage(ctx context.Context, url string) (string, error)
	// SearchZip performs the configured zip-code search on a locator page
	// and returns the post-search HTML with results expanded.
	SearchZip(ctx context.Context, url, zip string, cfg *config.SiteConfig) (string, error)
}

// ChromeDriver implements Driver with chromedp.
type ChromeDriver struct {
	headless bool
	timeout  time.Duration
	verbose  bool
}

func NewChromeDriver(headless bool, timeout time.Duration) *ChromeDriver {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &ChromeDriver{headless: headless, timeout: timeout}
}

// SetVerbose enables progress logging.
func (d *ChromeDriver) SetVerbose(v bool) { d.verbose = v }

// RenderPage loads url and returns the rendered HTML.
func (d *ChromeDriver) RenderPage(ctx context.Context, url string) (string, error) {
	if d.verbose {
		log.Printf("[BROWSER] Rendering: %s", url)
	}

	var html string
	err := d.run(ctx, url,
		chromedp.WaitReady("body"),
		chromedp.Sleep(3*time.Second),
		dismissCookieBanner(),
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &RenderError{URL: url, Cause: err}
	}

	if d.verbose {
		log.Printf("[BROWSER] Rendered HTML: %d bytes", len(html))
	}
	return html, nil
}

// SearchZip fills the zip input, runs the configured search sequence,
// waits out the configured delays, expands results per pagination type,
// and returns the final HTML.
func (d *ChromeDriver) SearchZip(ctx context.Context, url, zip string, cfg *config.SiteConfig) (string, error) {
	it := cfg.Interactions
	inputSel := selectorChain(cfg.Selectors["search_input"])
	if inputSel == "" {
		return "", &InteractionError{URL: url, Message: "no search_input selectors configured"}
	}

	if d.verbose {
		log.Printf("[BROWSER] Searching %s for zip %s", url, zip)
	}

	actions := []chromedp.Action{
		chromedp.WaitReady("body"),
		chromedp.Sleep(seconds(it.WaitAfterPageLoad)),
		dismissCookieBanner(),
	}

	for _, step := range it.SearchSequence {
		switch step {
		case "fill_input":
			actions = append(actions,
				chromedp.WaitVisible(inputSel, chromedp.ByQuery),
				chromedp.Click(inputSel, chromedp.ByQuery),
				chromedp.SendKeys(inputSel, zip, chromedp.ByQuery),
			)
		case "press_enter":
			actions = append(actions,
				chromedp.SendKeys(inputSel, kb.Enter, chromedp.ByQuery),
			)
		case "click_search":
			actions = append(actions, optionalClick(selectorChain(cfg.Selectors["search_button"]), seconds(it.ClickDelay)))
		case "click_apply":
			actions = append(actions, optionalClick(selectorChain(cfg.Selectors["apply_button"]), seconds(it.ClickDelay)))
		default:
			if d.verbose {
				log.Printf("[BROWSER] Unknown search step %q, skipping", step)
			}
		}
	}

	actions = append(actions, chromedp.Sleep(seconds(it.WaitAfterSearch)))
	actions = append(actions, d.expandResults(cfg)...)

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html))

	if err := d.run(ctx, url, actions...); err != nil {
		return "", &InteractionError{URL: url, Message: "zip search failed", Cause: err}
	}
	return html, nil
}

// expandResults returns the pagination actions for the configured type:
// repeated View More clicks, repeated scrolling, or nothing.
func (d *ChromeDriver) expandResults(cfg *config.SiteConfig) []chromedp.Action {
	it := cfg.Interactions
	switch it.PaginationType {
	case "view_more":
		buttonSel := selectorChain(cfg.Selectors["view_more_button"])
		if buttonSel == "" {
			return nil
		}
		return []chromedp.Action{chromedp.ActionFunc(func(ctx context.Context) error {
			for i := 0; i < maxExpandClicks; i++ {
				if err := clickVisible(ctx, buttonSel); err != nil {
					// Button gone: all results are loaded.
					return nil
				}
				if err := chromedp.Sleep(seconds(it.ViewMoreDelay)).Do(ctx); err != nil {
					return err
				}
			}
			return nil
		})}
	case "scroll", "virtual_scroll":
		return []chromedp.Action{chromedp.ActionFunc(func(ctx context.Context) error {
			for i := 0; i < maxScrolls; i++ {
				if err := chromedp.Evaluate(`window.scrollBy(0, window.innerHeight)`, nil).Do(ctx); err != nil {
					return err
				}
				if err := chromedp.Sleep(seconds(it.ScrollDelay)).Do(ctx); err != nil {
					return err
				}
			}
			return nil
		})}
	default:
		return nil
	}
}

// run executes actions against url in a fresh browser context bounded by
// the driver timeout.
func (d *ChromeDriver) run(ctx context.Context, url string, actions ...chromedp.Action) error {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", d.headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, d.timeout)
	defer cancel()

	return chromedp.Run(browserCtx, append([]chromedp.Action{chromedp.Navigate(url)}, actions...)...)
}

// dismissCookieBanner clicks common consent buttons, ignoring failure
// when no banner is present.
func dismissCookieBanner() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_ = clickVisible(ctx, `button[id*="accept"], button[class*="accept"], button[id*="consent"], button[class*="consent"]`)
		return nil
	})
}

// clickVisible clicks the first visible match for selector, giving up
// after clickTimeout when nothing matches.
func clickVisible(ctx context.Context, selector string) error {
	clickCtx, cancel := clickContext(ctx)
	defer cancel()
	return chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible).Do(clickCtx)
}

func clickContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, clickTimeout)
}

// selectorChain joins a selector list into one CSS group so the first
// matching alternative wins.
func selectorChain(selectors []string) string {
	var nonEmpty []string
	for _, s := range selectors {
		if strings.TrimSpace(s) != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

// optionalClick clicks a selector if present, ignoring absence.
func optionalClick(selector string, delay time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if selector == "" {
			return nil
		}
		if err := clickVisible(ctx, selector); err != nil {
			return nil
		}
		return chromedp.Sleep(delay).Do(ctx)
	})
}

// seconds converts a fractional-seconds config value to a Duration.
func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
