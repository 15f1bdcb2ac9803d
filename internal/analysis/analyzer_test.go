package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliandouble08/car-dealer-scraper/internal/llm"
	"github.com/cliandouble08/car-dealer-scraper/internal/types"
)

const goodReply = `{
  "selectors": {
    "search_input": ["input#zip"],
    "dealer_cards": [".dealer-card", "li.result"]
  },
  "data_fields": {
    "name": {"selector": "h3", "type": "text"}
  },
  "interactions": {"pagination_type": "scroll"},
  "confidence": 0.85,
  "notes": "zip search form at top"
}`

func scripted(replies ...string) llm.Client {
	i := 0
	return llm.GenerateFunc(func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
		if i >= len(replies) {
			return "", errors.New("no more scripted replies")
		}
		r := replies[i]
		i++
		return r, nil
	})
}

func TestAnalyzePageStructure_GoodReply(t *testing.T) {
	a := NewAnalyzer(scripted(goodReply))

	result, err := a.AnalyzePageStructure(context.Background(), "https://www.ford.com/dealerships/", "<html></html>")
	require.NoError(t, err)

	assert.Equal(t, []string{".dealer-card", "li.result"}, result.Selectors["dealer_cards"])
	assert.InDelta(t, 0.85, result.Confidence, 1e-9)
	assert.Equal(t, "scroll", result.Interactions.PaginationType)
}

func TestAnalyzePageStructure_BackfillsDefaults(t *testing.T) {
	a := NewAnalyzer(scripted(`{"selectors": {"dealer_cards": [".card"]}}`))

	result, err := a.AnalyzePageStructure(context.Background(), "https://www.ford.com/dealerships/", "")
	require.NoError(t, err)

	// Every selector group exists even when omitted.
	for _, group := range types.SelectorGroups {
		_, ok := result.Selectors[group]
		assert.True(t, ok, "missing selector group %s", group)
	}

	// Default field rules for the four standard fields.
	phone := result.DataFields["phone"]
	assert.Equal(t, "href", phone.Type)
	assert.Contains(t, phone.FallbackPatterns, "a[href^='tel:']")

	// Default interaction timing and confidence.
	assert.Equal(t, []string{"fill_input", "press_enter"}, result.Interactions.SearchSequence)
	assert.InDelta(t, 4, result.Interactions.WaitAfterSearch, 1e-9)
	assert.InDelta(t, 0.5, result.Confidence, 1e-9)
}

func TestAnalyzePageStructure_RepairsMalformedReply(t *testing.T) {
	// Fenced, trailing comma, wrong closing bracket kind.
	malformed := "```json\n" + `{
  "selectors": {"dealer_cards": [".card", ".result")},
  "confidence": 0.7,
}` + "\n```"
	a := NewAnalyzer(scripted(malformed))

	result, err := a.AnalyzePageStructure(context.Background(), "https://example.com", "")
	require.NoError(t, err)
	assert.Equal(t, []string{".card", ".result"}, result.Selectors["dealer_cards"])
	assert.InDelta(t, 0.7, result.Confidence, 1e-9)
}

func TestAnalyzePageStructure_RetriesOnceWithConcisePrompt(t *testing.T) {
	var prompts []string
	i := 0
	client := llm.GenerateFunc(func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
		prompts = append(prompts, prompt)
		i++
		if i == 1 {
			return "I could not find any structured data on this page.", nil
		}
		return goodReply, nil
	})

	// A marker placed past the halved content budget: visible to the first
	// attempt's excerpt, cut from the concise retry's.
	content := strings.Repeat("x", 3000) + "deep-page-marker" + strings.Repeat("y", 5000)

	a := NewAnalyzer(client)
	result, err := a.AnalyzePageStructure(context.Background(), "https://example.com/dealers", content)
	require.NoError(t, err)
	require.Len(t, prompts, 2)
	assert.NotEqual(t, prompts[0], prompts[1])
	assert.Contains(t, prompts[0], "deep-page-marker")
	assert.NotContains(t, prompts[1], "deep-page-marker")
	assert.Less(t, len(prompts[1]), len(prompts[0]))
	assert.InDelta(t, 0.85, result.Confidence, 1e-9)
}

func TestAnalyzePageStructure_TwoUnparseableRepliesFail(t *testing.T) {
	a := NewAnalyzer(scripted("not json", "still not json"))

	result, err := a.AnalyzePageStructure(context.Background(), "https://example.com/dealers", "")
	assert.Nil(t, result)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestAnalyzePageStructure_ModelErrorNoRetry(t *testing.T) {
	calls := 0
	client := llm.GenerateFunc(func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
		calls++
		return "", errors.New("connection refused")
	})

	a := NewAnalyzer(client)
	result, err := a.AnalyzePageStructure(context.Background(), "https://example.com", "")
	assert.Nil(t, result)
	assert.Equal(t, 1, calls)

	var modelErr *ModelError
	require.ErrorAs(t, err, &modelErr)
}

func TestAnalyzePageStructure_NilClient(t *testing.T) {
	a := NewAnalyzer(nil)

	_, err := a.AnalyzePageStructure(context.Background(), "https://example.com", "")
	var modelErr *ModelError
	require.ErrorAs(t, err, &modelErr)
}

func TestAnalyzePageStructure_ClampsConfidence(t *testing.T) {
	a := NewAnalyzer(scripted(`{"selectors": {"dealer_cards": [".card"]}, "confidence": 1.4}`))

	result, err := a.AnalyzePageStructure(context.Background(), "https://example.com", "")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Confidence, 1e-9)
}

func TestAnalyzePageStructure_SchemaRejectsWrongTypes(t *testing.T) {
	// selectors as a flat string instead of a group map fails schema on
	// both attempts.
	a := NewAnalyzer(scripted(`{"selectors": ".card"}`, `{"selectors": ".card"}`))

	_, err := a.AnalyzePageStructure(context.Background(), "https://example.com", "")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, strings.ToLower(parseErr.Error()), "schema")
}
