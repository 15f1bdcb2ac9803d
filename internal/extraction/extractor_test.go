package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliandouble08/car-dealer-scraper/internal/config"
	"github.com/cliandouble08/car-dealer-scraper/internal/types"
)

const resultsHTML = `<html><body>
<div class="dealer-result">
	<h3>Springfield Ford</h3>
	<p class="address">123 Main St, Springfield, IL 62701</p>
	<a href="tel:5551234567">Call</a>
	<a href="https://www.springfieldford.com">Dealer Website</a>
	<span class="distance">3.4 mi</span>
</div>
<div class="dealer-result">
	<h3>Shelbyville Ford</h3>
	<p class="address">456 Oak Ave, Shelbyville, IL 62565</p>
	<a href="tel:5559876543">Call</a>
</div>
<div class="dealer-result">
	<h3>View More</h3>
</div>
</body></html>`

func testConfig() *config.SiteConfig {
	return &config.SiteConfig{
		Selectors: map[string][]string{
			"dealer_cards": {".dealer-result"},
		},
		DataFields: map[string]types.FieldConfig{
			"name":    {Type: "text", FallbackPatterns: []string{"h2", "h3", "h4"}},
			"address": {Type: "text", FallbackPatterns: []string{"[class*='address']"}},
			"phone":   {Type: "href", Attribute: "href", FallbackPatterns: []string{"a[href^='tel:']"}},
			"website": {Type: "href", Attribute: "href", FallbackPatterns: []string{"a[href^='http']"}},
		},
	}
}

func testMeta() PageMeta {
	return PageMeta{
		SourceURL:  "https://www.ford.com/dealerships",
		SearchZip:  "62701",
		ScrapeDate: "2026-08-31",
		SessionID:  "test-session",
	}
}

func TestExtractDealers(t *testing.T) {
	e := NewExtractor()

	dealers, err := e.ExtractDealers(resultsHTML, testConfig(), testMeta())
	require.NoError(t, err)
	require.Len(t, dealers, 2, "UI-chrome card must be dropped")

	first := dealers[0]
	assert.Equal(t, "Springfield Ford", first.Name)
	assert.Equal(t, "123 Main St", first.Address)
	assert.Equal(t, "Springfield", first.City)
	assert.Equal(t, "IL", first.State)
	assert.Equal(t, "62701", first.ZipCode)
	assert.Equal(t, "(555) 123-4567", first.Phone)
	assert.Equal(t, "https://www.springfieldford.com", first.Website)
	assert.Equal(t, "3.4", first.DistanceMiles)
	assert.Equal(t, "62701", first.SearchZip)
	assert.Equal(t, "test-session", first.SessionID)
}

func TestExtractDealers_SessionDedup(t *testing.T) {
	e := NewExtractor()

	dealers, err := e.ExtractDealers(resultsHTML, testConfig(), testMeta())
	require.NoError(t, err)
	assert.Len(t, dealers, 2)

	// Same page again in the same session: everything is a duplicate.
	again, err := e.ExtractDealers(resultsHTML, testConfig(), testMeta())
	require.NoError(t, err)
	assert.Empty(t, again)

	// A fresh extractor starts a new session.
	fresh, err := NewExtractor().ExtractDealers(resultsHTML, testConfig(), testMeta())
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestExtractDealers_SelectorChainFallsThrough(t *testing.T) {
	cfg := testConfig()
	cfg.Selectors["dealer_cards"] = []string{".no-such-card", ".dealer-result"}

	dealers, err := NewExtractor().ExtractDealers(resultsHTML, cfg, testMeta())
	require.NoError(t, err)
	assert.Len(t, dealers, 2)
}

func TestExtractDealers_NoCards(t *testing.T) {
	dealers, err := NewExtractor().ExtractDealers("<html><body></body></html>", testConfig(), testMeta())
	require.NoError(t, err)
	assert.Empty(t, dealers)
}

func TestExtractDealers_FallbacksWhenPrimarySelectorMisses(t *testing.T) {
	html := `<div class="dealer-result">
		<h4>Ogdenville Ford</h4>
		<span>789 Pine Ln, Ogdenville, IL 62703 and our number is 555 222 3333</span>
	</div>`

	cfg := testConfig()
	cfg.DataFields["name"] = types.FieldConfig{
		Selector:         ".dealer-name",
		Type:             "text",
		FallbackPatterns: []string{"h2", "h3", "h4"},
	}
	cfg.Extraction = map[string][]string{
		"phone_patterns": {`\d{3}[\s.-]\d{3}[\s.-]\d{4}`},
	}

	dealers, err := NewExtractor().ExtractDealers(html, cfg, testMeta())
	require.NoError(t, err)
	require.Len(t, dealers, 1)
	assert.Equal(t, "Ogdenville Ford", dealers[0].Name)
	assert.Equal(t, "(555) 222-3333", dealers[0].Phone)
}

func TestExtractField_AttributeVsText(t *testing.T) {
	e := NewExtractor()
	dealers, err := e.ExtractDealers(resultsHTML, testConfig(), testMeta())
	require.NoError(t, err)

	// Website came from the href attribute, not the link text.
	assert.Equal(t, "https://www.springfieldford.com", dealers[0].Website)
	// Second dealer has no website link beyond tel:, so none is recorded.
	assert.Empty(t, dealers[1].Website)
}
