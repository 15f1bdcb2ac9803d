// Package validation checks that dealer cards actually appeared in the
// HTML rendered after a search, and refines selectors when the configured
// ones miss. Validation runs once per domain per run.
package validation

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/cliandouble08/car-dealer-scraper/internal/config"
	"github.com/cliandouble08/car-dealer-scraper/internal/sitekey"
	"github.com/cliandouble08/car-dealer-scraper/internal/types"
)

// substantialTextLen is the minimum stripped-text length for an element
// to count as a dealer card rather than UI chrome.
const substantialTextLen = 50

// heuristicPatterns are tried in order when the configured selectors find
// nothing. The pattern matching the most substantial elements wins.
var heuristicPatterns = []string{
	`[class*="dealer"]`,
	`[class*="location"]`,
	`[class*="store"]`,
	`[class*="result"]`,
	`[class*="card"]`,
	`[class*="listing"]`,
	`li[class*="item"]`,
	`div[class*="item"]`,
}

// stateMarkers are state abbreviations whose presence in card text marks
// it as address-bearing.
var stateMarkers = []string{"CA", "NY", "TX", "FL", "IL"}

// Validator validates post-search HTML. It remembers which domains it
// already validated so the check runs once per domain.
type Validator struct {
	mu      sync.Mutex
	seen    map[string]*types.ValidationResult
	verbose bool
}

func NewValidator() *Validator {
	return &Validator{seen: make(map[string]*types.ValidationResult)}
}

// SetVerbose enables progress logging.
func (v *Validator) SetVerbose(verbose bool) { v.verbose = verbose }

// Validated reports whether the domain already passed through validation
// this run, returning the recorded result if so.
func (v *Validator) Validated(domain string) (*types.ValidationResult, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	r, ok := v.seen[sitekey.Normalize(domain)]
	return r, ok
}

// ValidateSearchResults checks whether the configured dealer-card
// selectors match the post-search HTML. When they miss, a heuristic scan
// looks for repeated substantial elements and suggests a replacement
// selector. The result is recorded against the domain so later calls for
// the same domain are skipped by the caller.
func (v *Validator) ValidateSearchResults(html, pageURL string, cfg *config.SiteConfig) (*types.ValidationResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ValidationError{Message: "failed to parse post-search HTML", Cause: err}
	}

	result := v.validate(doc, cfg)

	v.mu.Lock()
	v.seen[sitekey.Normalize(sitekey.ExtractDomain(pageURL))] = result
	v.mu.Unlock()

	if v.verbose {
		log.Printf("[VALIDATE] %s: found=%v correct=%v count=%d confidence=%.2f",
			sitekey.ExtractDomain(pageURL), result.DealersFound, result.SelectorsCorrect,
			result.DealerCount, result.Confidence)
	}
	return result, nil
}

func (v *Validator) validate(doc *goquery.Document, cfg *config.SiteConfig) *types.ValidationResult {
	// Configured selectors: first one with any match wins.
	for _, selector := range cfg.CardSelectors() {
		cards := doc.Find(selector)
		if cards.Length() > 0 {
			return &types.ValidationResult{
				DealersFound:     true,
				SelectorsCorrect: true,
				Confidence:       0.9,
				DealerCount:      cards.Length(),
				Notes:            fmt.Sprintf("found %d dealers with configured selectors", cards.Length()),
			}
		}
	}

	// Configured selectors missed: scan for repeated substantial elements.
	selector, cards := bestHeuristicMatch(doc)
	if selector == "" {
		return &types.ValidationResult{
			DealersFound:    false,
			Confidence:      0.1,
			NeedsRefinement: true,
			Notes:           "no dealer cards detected in HTML",
		}
	}

	return &types.ValidationResult{
		DealersFound:     true,
		SelectorsCorrect: false,
		Confidence:       heuristicConfidence(cards),
		NeedsRefinement:  true,
		SuggestedSelectors: map[string][]string{
			"dealer_cards": {selector},
		},
		DealerCount: len(cards),
		Notes:       fmt.Sprintf("found %d cards using heuristic pattern: %s", len(cards), selector),
	}
}

// bestHeuristicMatch returns the heuristic pattern matching the most
// substantial elements, requiring more than 2 to avoid latching onto
// navigation or footer chrome.
func bestHeuristicMatch(doc *goquery.Document) (string, []string) {
	best := ""
	var bestTexts []string

	for _, pattern := range heuristicPatterns {
		var texts []string
		doc.Find(pattern).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > substantialTextLen {
				texts = append(texts, text)
			}
		})
		if len(texts) > 2 && len(texts) > len(bestTexts) {
			best = pattern
			bestTexts = texts
		}
	}
	return best, bestTexts
}

// heuristicConfidence grows with how many of the first five cards carry
// address-like content (a state abbreviation or any digit), capped at 0.9.
func heuristicConfidence(cardTexts []string) float64 {
	dealerLike := 0
	limit := len(cardTexts)
	if limit > 5 {
		limit = 5
	}
	for _, text := range cardTexts[:limit] {
		if looksAddressBearing(text) {
			dealerLike++
		}
	}

	c := float64(dealerLike)/5.0 + 0.4
	if c > 0.9 {
		return 0.9
	}
	return c
}

func looksAddressBearing(text string) bool {
	for _, state := range stateMarkers {
		if strings.Contains(text, state) {
			return true
		}
	}
	return strings.ContainsAny(text, "0123456789")
}
