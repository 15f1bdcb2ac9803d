package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliandouble08/car-dealer-scraper/internal/llm"
)

const locatorPage = `<html><body>
<h1>Find a Dealer</h1>
<p>Enter your zip code to locate dealerships near you.</p>
<input id="zip" placeholder="ZIP code">
</body></html>`

const homePage = `<html><body>
<h1>Welcome</h1>
<a href="/vehicles">Vehicles</a>
<a href="/dealerships/">Find a Dealer</a>
<a href="/about/careers">Careers</a>
</body></html>`

func TestContentHasLocatorSignals(t *testing.T) {
	assert.True(t, ContentHasLocatorSignals("Enter your ZIP to find a dealer"))
	assert.False(t, ContentHasLocatorSignals("Enter your ZIP for shipping quotes"))
	assert.False(t, ContentHasLocatorSignals("Our dealers love this car"))
}

func TestFindLocatorURL_PageIsLocator(t *testing.T) {
	// Strong path signal plus content signals: no model call needed.
	client := llm.GenerateFunc(func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
		t.Fatal("model should not be consulted")
		return "", nil
	})

	a := NewAnalyzer(client)
	result, err := a.FindLocatorURL(context.Background(), "https://www.ford.com/dealerships/", locatorPage)
	require.NoError(t, err)
	assert.True(t, result.IsLocator)
	assert.InDelta(t, 0.9, result.Confidence, 1e-9)
}

func TestFindLocatorURL_ModelChoosesCandidate(t *testing.T) {
	client := llm.GenerateFunc(func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
		if strings.Contains(prompt, "candidate") || strings.Contains(prompt, "score:") {
			return `{"locator_url": "https://www.ford.com/dealerships", "confidence": 0.85}`, nil
		}
		return `{"is_locator": false}`, nil
	})

	a := NewAnalyzer(client)
	result, err := a.FindLocatorURL(context.Background(), "https://www.ford.com/", homePage)
	require.NoError(t, err)
	assert.False(t, result.IsLocator)
	assert.Equal(t, "https://www.ford.com/dealerships", result.LocatorURL)
	assert.InDelta(t, 0.85, result.Confidence, 1e-9)
}

func TestFindLocatorURL_RejectsHallucinatedURL(t *testing.T) {
	client := llm.GenerateFunc(func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
		if strings.Contains(prompt, "score:") {
			return `{"locator_url": "https://www.ford.com/made-up-page", "confidence": 0.95}`, nil
		}
		return `{"is_locator": false}`, nil
	})

	a := NewAnalyzer(client)
	result, err := a.FindLocatorURL(context.Background(), "https://www.ford.com/", homePage)
	require.NoError(t, err)
	// Falls back to the top-scored mined candidate.
	assert.Equal(t, "https://www.ford.com/dealerships", result.LocatorURL)
	assert.InDelta(t, 0.6, result.Confidence, 1e-9)
}

func TestFindLocatorURL_PositiveClaimNeedsSignals(t *testing.T) {
	// Model says the plain homepage is the locator; no path or content
	// signals back it up, so discovery continues to candidate selection.
	client := llm.GenerateFunc(func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
		if strings.Contains(prompt, "score:") {
			return `{"locator_url": "https://www.ford.com/dealerships", "confidence": 0.8}`, nil
		}
		return `{"is_locator": true, "confidence": 0.99}`, nil
	})

	a := NewAnalyzer(client)
	result, err := a.FindLocatorURL(context.Background(), "https://www.ford.com/", homePage)
	require.NoError(t, err)
	assert.False(t, result.IsLocator)
	assert.Equal(t, "https://www.ford.com/dealerships", result.LocatorURL)
}

func TestFindLocatorURL_KeywordPathCorroboratesClaim(t *testing.T) {
	// "/find" carries a locator keyword without matching a high-value
	// pattern. That alone backs up a positive model claim, even when the
	// page content shows no zip signals.
	client := llm.GenerateFunc(func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
		if strings.Contains(prompt, "score:") {
			t.Fatal("candidate selection should not be reached")
		}
		return `{"is_locator": true, "confidence": 0.8}`, nil
	})

	a := NewAnalyzer(client)
	result, err := a.FindLocatorURL(context.Background(), "https://www.ford.com/find", homePage)
	require.NoError(t, err)
	assert.True(t, result.IsLocator)
	assert.InDelta(t, 0.8, result.Confidence, 1e-9)
}

func TestFindLocatorURL_ModelFailureFallsBack(t *testing.T) {
	client := llm.GenerateFunc(func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
		return "", errors.New("quota exceeded")
	})

	a := NewAnalyzer(client)
	result, err := a.FindLocatorURL(context.Background(), "https://www.ford.com/", homePage)
	require.NoError(t, err)
	assert.Equal(t, "https://www.ford.com/dealerships", result.LocatorURL)
	assert.InDelta(t, 0.5, result.Confidence, 1e-9)
}

func TestFindLocatorURL_NoClientHeuristicOnly(t *testing.T) {
	a := NewAnalyzer(nil)

	result, err := a.FindLocatorURL(context.Background(), "https://www.ford.com/", homePage)
	require.NoError(t, err)
	assert.False(t, result.IsLocator)
	assert.Equal(t, "https://www.ford.com/dealerships", result.LocatorURL)
	assert.Greater(t, result.Confidence, 0.0)
}

func TestFindLocatorURL_NoCandidates(t *testing.T) {
	a := NewAnalyzer(nil)

	result, err := a.FindLocatorURL(context.Background(), "https://www.ford.com/about", "<html><body>nothing here</body></html>")
	require.NoError(t, err)
	assert.False(t, result.IsLocator)
	assert.Empty(t, result.LocatorURL)
	assert.InDelta(t, 0.5, result.Confidence, 1e-9)
}
