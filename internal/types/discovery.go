package types

import "time"

// Candidate is a scored internal link that might be the dealer locator
// page. Score may be negative during scoring; only positive-score
// candidates are retained.
type Candidate struct {
	URL    string `json:"url"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// DiscoveryResult is the outcome of locator-page discovery for a domain.
type DiscoveryResult struct {
	// IsLocator reports whether the analyzed page itself is the locator.
	IsLocator bool `json:"is_locator"`
	// LocatorURL is the chosen locator page, empty when IsLocator is true
	// or when nothing was found.
	LocatorURL string `json:"locator_url,omitempty"`
	// Candidates holds the top candidate URLs considered, best first.
	Candidates []string `json:"locator_candidates"`
	Confidence float64  `json:"confidence"`
	// CachedAt is set when the result is persisted to the discovery cache.
	CachedAt time.Time `json:"cached_at,omitempty"`
}

// ValidationResult reports whether configured selectors matched the HTML
// actually rendered after a search, and whether refinement is needed.
type ValidationResult struct {
	DealersFound       bool                `json:"dealers_found"`
	SelectorsCorrect   bool                `json:"selectors_correct"`
	Confidence         float64             `json:"confidence"`
	NeedsRefinement    bool                `json:"needs_refinement"`
	SuggestedSelectors map[string][]string `json:"suggested_selectors,omitempty"`
	DealerCount        int                 `json:"dealer_count"`
	Notes              string              `json:"notes,omitempty"`
}
