// Package discovery finds the dealer-locator page for a site: it mines
// internal links, scores them with path heuristics, and caches the result
// per domain with a TTL.
package discovery

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/cliandouble08/car-dealer-scraper/internal/types"
)

// Scoring weights. These are heuristic constants carried over from the
// tuned production values; treat them as configuration, not derivation.
const (
	HighValuePatternScore = 10
	KeywordScore          = 3
	NegativeKeywordScore  = -5
	ShallowPathScore      = 2
	DeepPathScore         = -2
	FragmentScore         = -3
	QueryScore            = -1

	// HeuristicConfidenceDivisor maps a top candidate score onto a [0,1]
	// confidence as min(MaxHeuristicConfidence, score/divisor).
	HeuristicConfidenceDivisor = 20.0
	MaxHeuristicConfidence     = 0.9
)

// LocatorKeywords indicate a dealer-locator page when found in a URL path
// or page content.
var LocatorKeywords = []string{
	"dealer", "dealers", "dealership", "dealerships",
	"locator", "locate", "location", "locations",
	"find", "finder", "search", "directory",
	"store", "stores", "retailer", "retailers",
	"showroom", "showrooms", "branch", "branches",
}

// NegativeKeywords indicate commerce/finance/support pages that are not
// locators.
var NegativeKeywords = []string{
	"incentive", "offer", "build", "price", "compare", "inventory",
	"preowned", "pre-owned", "used", "lease", "apr", "credit",
	"quote", "estimate", "payment", "test-drive", "schedule",
	"finance", "financing", "parts", "service", "accessories",
	"recall", "warranty", "owner", "manual", "brochure",
	"news", "press", "media", "blog", "career", "jobs",
	"about", "contact", "privacy", "terms", "legal", "sitemap",
	"login", "signin", "register", "account", "cart", "checkout",
}

// highValuePatterns strongly indicate a locator page when matched against
// the URL path.
var highValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`/dealer[s]?(?:/|$)`),
	regexp.MustCompile(`/find-a-dealer`),
	regexp.MustCompile(`/find-dealer`),
	regexp.MustCompile(`/dealer-locator`),
	regexp.MustCompile(`/locate-dealer`),
	regexp.MustCompile(`/dealership[s]?(?:/|$)`),
	regexp.MustCompile(`/location[s]?(?:/|$)`),
	regexp.MustCompile(`/store-locator`),
	regexp.MustCompile(`/find-a-store`),
	regexp.MustCompile(`/retailer[s]?(?:/|$)`),
}

// ScoreURL scores a URL by how likely it is to be the dealer-locator
// page. Returns the additive score and a human-readable reason trail.
// Pure and synchronous: no network, no LLM.
func ScoreURL(rawURL string) (int, string) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return 0, "unparseable URL"
	}
	path := strings.ToLower(parsed.Path)

	score := 0
	var reasons []string

	for _, pattern := range highValuePatterns {
		if pattern.MatchString(path) {
			score += HighValuePatternScore
			reasons = append(reasons, fmt.Sprintf("matches pattern: %s", pattern))
		}
	}

	for _, keyword := range LocatorKeywords {
		if strings.Contains(path, keyword) {
			score += KeywordScore
			reasons = append(reasons, fmt.Sprintf("contains keyword: %s", keyword))
		}
	}

	for _, neg := range NegativeKeywords {
		if strings.Contains(path, neg) {
			score += NegativeKeywordScore
			reasons = append(reasons, fmt.Sprintf("negative keyword: %s", neg))
		}
	}

	depth := pathDepth(path)
	if depth <= 2 {
		score += ShallowPathScore
		reasons = append(reasons, fmt.Sprintf("shallow path depth: %d", depth))
	} else if depth > 4 {
		score += DeepPathScore
		reasons = append(reasons, fmt.Sprintf("deep path: %d", depth))
	}

	if parsed.Fragment != "" {
		score += FragmentScore
		reasons = append(reasons, "contains hash fragment")
	}
	if parsed.RawQuery != "" {
		score += QueryScore
		reasons = append(reasons, "contains query params")
	}

	if len(reasons) == 0 {
		return score, "no specific indicators"
	}
	return score, strings.Join(reasons, "; ")
}

// FilterCandidates restricts urls to same-domain links, de-duplicates by
// query-stripped path, scores each, keeps only positive scores, and sorts
// descending. Ties keep their original discovery order.
func FilterCandidates(urls []string, baseURL string) []types.Candidate {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	baseDomain := strings.TrimPrefix(strings.ToLower(base.Host), "www.")

	var candidates []types.Candidate
	seen := make(map[string]bool)

	for _, raw := range urls {
		if raw == "" || strings.HasPrefix(raw, "javascript:") || strings.HasPrefix(raw, "mailto:") {
			continue
		}

		ref, err := url.Parse(raw)
		if err != nil {
			continue
		}
		full := base.ResolveReference(ref)

		domain := strings.TrimPrefix(strings.ToLower(full.Host), "www.")
		if domain != baseDomain {
			continue
		}

		normalized := *full
		normalized.RawQuery = ""
		normalized.Fragment = ""
		key := normalized.String()
		if seen[key] {
			continue
		}
		seen[key] = true

		score, reason := ScoreURL(full.String())
		if score > 0 {
			candidates = append(candidates, types.Candidate{
				URL:    full.String(),
				Score:  score,
				Reason: reason,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// HeuristicConfidence derives a [0,1] confidence from the best
// candidate's score.
func HeuristicConfidence(topScore int) float64 {
	c := float64(topScore) / HeuristicConfidenceDivisor
	if c > MaxHeuristicConfidence {
		return MaxHeuristicConfidence
	}
	return c
}

func pathDepth(path string) int {
	depth := 0
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			depth++
		}
	}
	return depth
}
