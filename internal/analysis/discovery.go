package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/cliandouble08/car-dealer-scraper/internal/discovery"
	"github.com/cliandouble08/car-dealer-scraper/internal/prompts"
	"github.com/cliandouble08/car-dealer-scraper/internal/sitekey"
	"github.com/cliandouble08/car-dealer-scraper/internal/types"
)

const maxCandidatesForModel = 15

var (
	zipSignals    = []string{"zip", "postal", "enter your location", "find near"}
	dealerSignals = []string{"dealer", "dealership", "find a", "locate"}

	bareURLPattern = regexp.MustCompile(`https?://[^\s"'<>\)\]]+`)
)

// ContentHasLocatorSignals reports whether page content reads like a
// dealer locator: it must mention both a zip/location input and dealers.
func ContentHasLocatorSignals(content string) bool {
	lower := strings.ToLower(content)

	hasZip := false
	for _, s := range zipSignals {
		if strings.Contains(lower, s) {
			hasZip = true
			break
		}
	}
	if !hasZip {
		return false
	}
	for _, s := range dealerSignals {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// locatorClaim is the model's answer to the find-locator prompt.
type locatorClaim struct {
	IsLocator  bool    `json:"is_locator"`
	LocatorURL string  `json:"locator_url"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// FindLocatorURL decides whether the page at pageURL is itself the
// dealer locator, and if not, which same-site link most likely is.
// Heuristics run first; the model is consulted only when they are not
// decisive, and its claims are cross-checked: a positive "this is the
// locator" needs path or content signals to back it, and a chosen URL
// must come from the mined candidate list. Model failures never fail
// discovery, they just degrade it to the top-scored candidate.
func (a *Analyzer) FindLocatorURL(ctx context.Context, pageURL, content string) (*types.DiscoveryResult, error) {
	candidates := discovery.FilterCandidates(mineLinks(content, pageURL), pageURL)
	pathScore, _ := discovery.ScoreURL(pageURL)
	signals := ContentHasLocatorSignals(content)

	if a.verbose {
		log.Printf("[DISCOVERY] %s: path score %d, content signals %v, %d candidates",
			sitekey.ExtractDomain(pageURL), pathScore, signals, len(candidates))
	}

	// The page itself looks like a locator and the content agrees.
	if pathScore >= discovery.HighValuePatternScore && signals {
		return &types.DiscoveryResult{
			IsLocator:  true,
			Confidence: 0.9,
			Candidates: topCandidates(candidates, 5),
		}, nil
	}

	if a.client != nil {
		if result := a.askIsLocator(ctx, pageURL, content, pathHasLocatorKeyword(pageURL), signals, candidates); result != nil {
			return result, nil
		}
	}

	if len(candidates) == 0 {
		return &types.DiscoveryResult{
			IsLocator:  pathScore >= 5,
			Confidence: 0.5,
		}, nil
	}

	if a.client == nil {
		best := candidates[0]
		return &types.DiscoveryResult{
			LocatorURL: best.URL,
			Confidence: discovery.HeuristicConfidence(best.Score),
			Candidates: topCandidates(candidates, 5),
		}, nil
	}

	return a.chooseCandidate(ctx, pageURL, candidates), nil
}

// askIsLocator asks the model whether the current page is the locator.
// A positive claim is accepted only when path or content signals back it
// up; everything else (including parse and transport failures) returns
// nil so discovery falls through to candidate selection.
func (a *Analyzer) askIsLocator(ctx context.Context, pageURL, content string, pathKeyword, signals bool, candidates []types.Candidate) *types.DiscoveryResult {
	prompt := prompts.Format(prompts.MustGet("discovery.json", "find-locator"), map[string]string{
		"URL":     pageURL,
		"Content": BuildExcerpt(content, a.budget),
	})

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	raw, err := a.client.GenerateJSON(callCtx, prompt, a.tier)
	cancel()
	if err != nil {
		return nil
	}

	var claim locatorClaim
	if err := json.Unmarshal([]byte(RepairJSON(ExtractJSONObject(raw))), &claim); err != nil {
		return nil
	}

	if !claim.IsLocator || (!pathKeyword && !signals) {
		return nil
	}

	conf := claim.Confidence
	if conf <= 0 || conf > 0.9 {
		conf = 0.9
	}
	return &types.DiscoveryResult{
		IsLocator:  true,
		Confidence: conf,
		Candidates: topCandidates(candidates, 5),
	}
}

// chooseCandidate asks the model to pick the locator from the scored
// candidate list. A URL outside the list is treated as a hallucination
// and replaced by the top candidate.
func (a *Analyzer) chooseCandidate(ctx context.Context, pageURL string, candidates []types.Candidate) *types.DiscoveryResult {
	known := make(map[string]string, len(candidates))
	var lines []string
	for i, c := range candidates {
		if i >= maxCandidatesForModel {
			break
		}
		known[sitekey.Normalize(c.URL)] = c.URL
		lines = append(lines, fmt.Sprintf("- %s (score: %d)", c.URL, c.Score))
	}

	fallback := &types.DiscoveryResult{
		LocatorURL: candidates[0].URL,
		Confidence: 0.6,
		Candidates: topCandidates(candidates, 5),
	}

	prompt := prompts.Format(prompts.MustGet("discovery.json", "choose-candidate"), map[string]string{
		"BaseURL":    pageURL,
		"Candidates": strings.Join(lines, "\n"),
	})

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	raw, err := a.client.GenerateJSON(callCtx, prompt, a.tier)
	cancel()
	if err != nil {
		fallback.Confidence = 0.5
		return fallback
	}

	var claim locatorClaim
	if err := json.Unmarshal([]byte(RepairJSON(ExtractJSONObject(raw))), &claim); err != nil {
		return fallback
	}
	chosen, ok := known[sitekey.Normalize(claim.LocatorURL)]
	if !ok {
		if a.verbose && claim.LocatorURL != "" {
			log.Printf("[DISCOVERY] model chose %q which is not a known candidate, using top candidate", claim.LocatorURL)
		}
		return fallback
	}

	conf := claim.Confidence
	if conf <= 0 || conf > 1 {
		conf = 0.7
	}
	return &types.DiscoveryResult{
		LocatorURL: chosen,
		Confidence: conf,
		Candidates: topCandidates(candidates, 5),
	}
}

// pathHasLocatorKeyword reports whether the URL path itself mentions a
// locator concept. Weaker than a high path score: a single keyword is
// enough to corroborate a model claim.
func pathHasLocatorKeyword(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, keyword := range discovery.LocatorKeywords {
		if strings.Contains(path, keyword) {
			return true
		}
	}
	return false
}

// mineLinks collects same-document link targets from content that may be
// HTML or plain text: anchor hrefs when the content parses as HTML, plus
// any bare URLs appearing in the text.
func mineLinks(content, baseURL string) []string {
	links, err := discovery.ExtractLinks(content, baseURL)
	if err != nil {
		links = nil
	}

	seen := make(map[string]bool, len(links))
	for _, l := range links {
		seen[l] = true
	}
	for _, m := range bareURLPattern.FindAllString(content, -1) {
		m = strings.TrimRight(m, ".,;")
		if !seen[m] {
			seen[m] = true
			links = append(links, m)
		}
	}
	return links
}

func topCandidates(candidates []types.Candidate, n int) []string {
	if len(candidates) < n {
		n = len(candidates)
	}
	urls := make([]string, 0, n)
	for _, c := range candidates[:n] {
		urls = append(urls, c.URL)
	}
	return urls
}
