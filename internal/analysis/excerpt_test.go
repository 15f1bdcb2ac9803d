package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildExcerpt_ShortContentUnchanged(t *testing.T) {
	content := "find a dealer near you"
	assert.Equal(t, content, BuildExcerpt(content, 4000))
}

func TestBuildExcerpt_RespectsBudget(t *testing.T) {
	content := strings.Repeat("x", 10000)
	got := BuildExcerpt(content, 1000)
	assert.LessOrEqual(t, len(got), 1000)
	assert.Equal(t, content[:500], got[:500])
}

func TestBuildExcerpt_IncludesKeywordWindows(t *testing.T) {
	head := strings.Repeat("a", 3000)
	tail := strings.Repeat("b", 3000) + " find a dealer near you " + strings.Repeat("c", 3000)
	content := head + tail

	got := BuildExcerpt(content, 2000)
	assert.Contains(t, got, "find a dealer")
	// Separator marks the gap between head and window.
	assert.Contains(t, got, "\n...\n")
	assert.LessOrEqual(t, len(got), 2000+len("\n...\n")*4)
}

func TestBuildExcerpt_MergesOverlappingWindows(t *testing.T) {
	content := strings.Repeat("a", 3000) + "dealer locator dealerships" + strings.Repeat("b", 3000)

	got := BuildExcerpt(content, 2000)
	// Overlapping keyword hits produce a single window, so the phrase
	// appears exactly once.
	assert.Equal(t, 1, strings.Count(got, "dealer locator dealerships"))
}
