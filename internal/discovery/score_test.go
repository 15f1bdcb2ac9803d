package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreURL_HighValuePattern(t *testing.T) {
	score, reason := ScoreURL("https://www.ford.com/dealerships/")
	assert.Greater(t, score, 10)
	assert.Contains(t, reason, "matches pattern")
}

func TestScoreURL_NegativeKeywords(t *testing.T) {
	score, reason := ScoreURL("https://www.ford.com/finance/lease/credit-application/apply/now")
	assert.Less(t, score, 0)
	assert.Contains(t, reason, "negative keyword")
}

func TestScoreURL_MonotonicInPositiveSignals(t *testing.T) {
	without, _ := ScoreURL("https://example.com/somewhere")
	with, _ := ScoreURL("https://example.com/store-locator")
	assert.Greater(t, with, without)
}

func TestScoreURL_FragmentAndQueryPenalties(t *testing.T) {
	clean, _ := ScoreURL("https://example.com/dealers")
	withFragment, _ := ScoreURL("https://example.com/dealers#map")
	withQuery, _ := ScoreURL("https://example.com/dealers?filter=all")

	assert.Equal(t, clean+FragmentScore, withFragment)
	assert.Equal(t, clean+QueryScore, withQuery)
}

func TestScoreURL_PathDepth(t *testing.T) {
	shallow, _ := ScoreURL("https://example.com/dealers")
	deep, _ := ScoreURL("https://example.com/dealers/us/east/ny/manhattan/midtown")
	assert.Greater(t, shallow, deep)
}

func TestFilterCandidates(t *testing.T) {
	urls := []string{
		"https://www.ford.com/dealerships/",
		"https://www.ford.com/finance/lease/apply/now/today",
		"https://other.com/dealers",
		"javascript:void(0)",
		"mailto:info@ford.com",
		"/locate-dealer",
		"https://www.ford.com/dealerships/?zip=10001", // dup by path
	}

	candidates := FilterCandidates(urls, "https://www.ford.com")

	require.NotEmpty(t, candidates)
	// Positive scores only, sorted descending.
	for i, c := range candidates {
		assert.Greater(t, c.Score, 0)
		if i > 0 {
			assert.GreaterOrEqual(t, candidates[i-1].Score, c.Score)
		}
	}

	seen := make(map[string]int)
	for _, c := range candidates {
		seen[c.URL]++
		assert.NotContains(t, c.URL, "other.com")
	}
	assert.LessOrEqual(t, seen["https://www.ford.com/dealerships/"], 1)

	// Relative link resolved against the base.
	assert.Equal(t, 1, seen["https://www.ford.com/locate-dealer"])
}

func TestFilterCandidates_TiesKeepDiscoveryOrder(t *testing.T) {
	urls := []string{
		"https://example.com/dealers/alpha",
		"https://example.com/dealers/beta",
	}
	candidates := FilterCandidates(urls, "https://example.com")
	require.Len(t, candidates, 2)
	assert.Equal(t, candidates[0].Score, candidates[1].Score)
	assert.Contains(t, candidates[0].URL, "alpha")
	assert.Contains(t, candidates[1].URL, "beta")
}

func TestHeuristicConfidence(t *testing.T) {
	assert.InDelta(t, 0.5, HeuristicConfidence(10), 1e-9)
	assert.InDelta(t, 0.9, HeuristicConfidence(40), 1e-9) // capped
	assert.InDelta(t, 0.0, HeuristicConfidence(0), 1e-9)
}
