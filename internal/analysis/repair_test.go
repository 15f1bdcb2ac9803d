package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject_BalancedSpan(t *testing.T) {
	text := `Here is the config:
{"selectors": {"dealer_cards": [".card"]}}
Let me know if you need anything else.`

	got := ExtractJSONObject(text)
	assert.Equal(t, `{"selectors": {"dealer_cards": [".card"]}}`, got)
}

func TestExtractJSONObject_IgnoresBracesInStrings(t *testing.T) {
	text := `{"notes": "uses {mustache} templates"} trailing`

	got := ExtractJSONObject(text)
	assert.Equal(t, `{"notes": "uses {mustache} templates"}`, got)
}

func TestExtractJSONObject_NoObject(t *testing.T) {
	assert.Equal(t, "just prose", ExtractJSONObject("  just prose  "))
}

func TestExtractJSONObject_Unbalanced(t *testing.T) {
	// Missing one closer: fall back to the first-{ last-} slice.
	text := `{"a": {"b": 1}`
	got := ExtractJSONObject(text)
	assert.Equal(t, `{"a": {"b": 1}`, got)
}

func TestRepairJSON_WrongClosingBracketKind(t *testing.T) {
	repaired := RepairJSON(`{"fallback_patterns": ["h2", "h3")}`)

	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(repaired), &v))
	assert.Equal(t, []any{"h2", "h3"}, v["fallback_patterns"])
}

func TestRepairJSON_SwappedClosers(t *testing.T) {
	repaired := RepairJSON(`{"a": [1, 2}, "b": 3]`)

	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(repaired), &v))
	assert.Equal(t, []any{float64(1), float64(2)}, v["a"])
	assert.Equal(t, float64(3), v["b"])
}

func TestRepairJSON_TrailingCommas(t *testing.T) {
	repaired := RepairJSON(`{"selectors": {"dealer_cards": [".card",],},}`)

	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(repaired), &v))
}

func TestRepairJSON_LeavesStringsAlone(t *testing.T) {
	in := `{"notes": "pattern [a-z)+ and a comma, ok"}`

	repaired := RepairJSON(in)
	assert.Equal(t, in, repaired)

	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(repaired), &v))
	assert.Equal(t, "pattern [a-z)+ and a comma, ok", v["notes"])
}

func TestRepairJSON_ValidInputUnchanged(t *testing.T) {
	in := `{"selectors": {"dealer_cards": [".card", ".result"]}, "confidence": 0.8}`
	assert.Equal(t, in, RepairJSON(in))
}

func TestRepairJSON_EscapedQuotesInStrings(t *testing.T) {
	in := `{"notes": "he said \"dealers)\" loudly"}`

	repaired := RepairJSON(in)
	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(repaired), &v))
	assert.Equal(t, `he said "dealers)" loudly`, v["notes"])
}
