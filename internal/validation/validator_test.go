package validation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliandouble08/car-dealer-scraper/internal/config"
)

func dealerCardsHTML(n int) string {
	var b strings.Builder
	b.WriteString("<html><body><div class='results'>")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<div class="dealer-result">
			<h3>Dealer Number %d Auto Group</h3>
			<p class="address">%d00 Main Street, Springfield, IL 627%02d</p>
			<a href="tel:555-010%d">(555) 010-%04d</a>
		</div>`, i, i+1, i, i, i)
	}
	b.WriteString("</div></body></html>")
	return b.String()
}

func cfgWithCards(selectors ...string) *config.SiteConfig {
	return &config.SiteConfig{
		Selectors: map[string][]string{"dealer_cards": selectors},
	}
}

func TestValidateSearchResults_ConfiguredSelectorMatches(t *testing.T) {
	v := NewValidator()

	result, err := v.ValidateSearchResults(dealerCardsHTML(5), "https://www.ford.com/dealerships", cfgWithCards(".dealer-result"))
	require.NoError(t, err)

	assert.True(t, result.DealersFound)
	assert.True(t, result.SelectorsCorrect)
	assert.False(t, result.NeedsRefinement)
	assert.Equal(t, 5, result.DealerCount)
	assert.InDelta(t, 0.9, result.Confidence, 1e-9)
}

func TestValidateSearchResults_FirstMatchingSelectorWins(t *testing.T) {
	v := NewValidator()

	result, err := v.ValidateSearchResults(dealerCardsHTML(3), "https://example.com", cfgWithCards(".missing", ".dealer-result", ".results"))
	require.NoError(t, err)
	assert.Equal(t, 3, result.DealerCount)
	assert.True(t, result.SelectorsCorrect)
}

func TestValidateSearchResults_HeuristicFallback(t *testing.T) {
	v := NewValidator()

	// Configured selector is wrong; heuristics should still find the
	// five address-bearing cards and suggest a replacement.
	result, err := v.ValidateSearchResults(dealerCardsHTML(5), "https://example.com", cfgWithCards(".llm-was-wrong"))
	require.NoError(t, err)

	assert.True(t, result.DealersFound)
	assert.False(t, result.SelectorsCorrect)
	assert.True(t, result.NeedsRefinement)
	assert.GreaterOrEqual(t, result.Confidence, 0.7)
	require.Contains(t, result.SuggestedSelectors, "dealer_cards")
	assert.NotEmpty(t, result.SuggestedSelectors["dealer_cards"])
}

func TestValidateSearchResults_NothingFound(t *testing.T) {
	v := NewValidator()

	html := "<html><body><p>No results for your search.</p></body></html>"
	result, err := v.ValidateSearchResults(html, "https://example.com", cfgWithCards(".dealer-card"))
	require.NoError(t, err)

	assert.False(t, result.DealersFound)
	assert.True(t, result.NeedsRefinement)
	assert.InDelta(t, 0.1, result.Confidence, 1e-9)
	assert.Zero(t, result.DealerCount)
}

func TestValidateSearchResults_IgnoresUIChrome(t *testing.T) {
	v := NewValidator()

	// Elements matching a heuristic pattern but with trivial text must
	// not count as dealer cards.
	html := `<html><body>
		<button class="card-toggle">Filter</button>
		<span class="result-count">0</span>
		<div class="dealer-banner">Ad</div>
	</body></html>`
	result, err := v.ValidateSearchResults(html, "https://example.com", cfgWithCards(".dealer-card"))
	require.NoError(t, err)
	assert.False(t, result.DealersFound)
}

func TestValidator_RecordsDomainOncePerRun(t *testing.T) {
	v := NewValidator()

	_, ok := v.Validated("ford.com")
	assert.False(t, ok)

	_, err := v.ValidateSearchResults(dealerCardsHTML(2), "https://www.Ford.com/dealerships", cfgWithCards(".dealer-result"))
	require.NoError(t, err)

	recorded, ok := v.Validated("ford.com")
	require.True(t, ok)
	assert.True(t, recorded.DealersFound)
}

func TestHeuristicConfidence_ScalesWithAddressBearingCards(t *testing.T) {
	plain := []string{
		strings.Repeat("no numbers here ", 5),
		strings.Repeat("plain text only ", 5),
		strings.Repeat("still nothing ", 5),
	}
	assert.InDelta(t, 0.4, heuristicConfidence(plain), 1e-9)

	addressy := []string{
		"Springfield Motors, 100 Main St, Springfield, IL 62701",
		"Shelbyville Auto, 200 Oak Ave, Shelbyville, IL 62565",
		"Capital City Cars, 300 Elm Rd, Capital City, IL 62702",
		"Ogdenville Garage, 400 Pine Ln, Ogdenville, IL 62703",
		"North Haverbrook Auto, 500 Cedar Ct, North Haverbrook, IL 62704",
	}
	assert.InDelta(t, 0.9, heuristicConfidence(addressy), 1e-9)
}
