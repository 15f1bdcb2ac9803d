package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinks_SameDomainOnly(t *testing.T) {
	html := `
		<html>
			<body>
				<nav>
					<a href="/dealerships">Find a Dealer</a>
					<a href="/vehicles">Vehicles</a>
				</nav>
				<main>
					<a href="https://www.ford.com/locate-dealer/">Locate</a>
					<a href="https://other.com/external">External</a>
				</main>
			</body>
		</html>
	`

	links, err := ExtractLinks(html, "https://www.ford.com")
	require.NoError(t, err)
	require.Len(t, links, 3)
	assert.Contains(t, links, "https://www.ford.com/dealerships")
	assert.Contains(t, links, "https://www.ford.com/locate-dealer")
	assert.NotContains(t, links, "https://other.com/external")
}

func TestExtractLinks_WWWIsSameSite(t *testing.T) {
	html := `<a href="https://ford.com/dealers">Dealers</a>`
	links, err := ExtractLinks(html, "https://www.ford.com")
	require.NoError(t, err)
	assert.Contains(t, links, "https://ford.com/dealers")
}

func TestExtractLinks_Deduplicates(t *testing.T) {
	html := `
		<a href="/dealers">One</a>
		<a href="/dealers#results">Two</a>
		<a href="/dealers/">Three</a>
	`
	links, err := ExtractLinks(html, "https://ford.com")
	require.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestExtractLinks_InvalidBaseURL(t *testing.T) {
	_, err := ExtractLinks("<a href='/x'>x</a>", "not-a-url")
	require.Error(t, err)
	var extractErr *LinkExtractionError
	assert.ErrorAs(t, err, &extractErr)
}
