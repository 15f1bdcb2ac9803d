package analysis

import (
	"sort"
	"strings"

	"github.com/cliandouble08/car-dealer-scraper/internal/discovery"
)

const (
	// DefaultContentBudget bounds how many characters of page content are
	// sent to the model per analysis call.
	DefaultContentBudget = 4000

	keywordWindowRadius = 200
)

// BuildExcerpt produces a model-sized slice of page content: the head of
// the page, plus windows around locator-keyword occurrences further down,
// with overlapping windows merged. Windows are appended in document order
// until the character budget runs out.
func BuildExcerpt(content string, budget int) string {
	if budget <= 0 {
		budget = DefaultContentBudget
	}
	if len(content) <= budget {
		return content
	}

	headLen := budget / 2
	head := content[:headLen]

	windows := keywordWindows(content, headLen)
	if len(windows) == 0 {
		return content[:budget]
	}

	var b strings.Builder
	b.WriteString(head)
	remaining := budget - headLen
	for _, w := range windows {
		if remaining <= 0 {
			break
		}
		chunk := content[w.start:w.end]
		if len(chunk) > remaining {
			chunk = chunk[:remaining]
		}
		b.WriteString("\n...\n")
		b.WriteString(chunk)
		remaining -= len(chunk)
	}
	return b.String()
}

type span struct {
	start, end int
}

// keywordWindows finds locator-keyword occurrences past the head and
// returns merged windows around them, in document order.
func keywordWindows(content string, after int) []span {
	lower := strings.ToLower(content)

	var windows []span
	for _, kw := range discovery.LocatorKeywords {
		from := after
		for {
			idx := strings.Index(lower[from:], kw)
			if idx < 0 {
				break
			}
			pos := from + idx
			start := pos - keywordWindowRadius
			if start < after {
				start = after
			}
			end := pos + len(kw) + keywordWindowRadius
			if end > len(content) {
				end = len(content)
			}
			windows = append(windows, span{start, end})
			from = pos + len(kw)
		}
	}
	if len(windows) == 0 {
		return nil
	}

	sort.Slice(windows, func(i, j int) bool { return windows[i].start < windows[j].start })

	merged := windows[:1]
	for _, w := range windows[1:] {
		last := &merged[len(merged)-1]
		if w.start <= last.end {
			if w.end > last.end {
				last.end = w.end
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}
