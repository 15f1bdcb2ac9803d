package config

import (
	"strings"
	"time"

	"github.com/cliandouble08/car-dealer-scraper/internal/types"
)

// FromAnalysis converts an LLM analysis result into a generated-layer
// config ready to persist through CacheGeneratedConfig. Selectors that
// fail basic validation are dropped; interaction values must be
// non-negative.
func FromAnalysis(analysis *types.AnalysisResult, brand, url string) map[string]any {
	layer := map[string]any{
		"manufacturer":   capitalize(brand),
		"base_url":       url,
		"generated_by":   "llm_analyzer",
		"generated_date": time.Now().Format(time.RFC3339),
		"confidence":     analysis.Confidence,
		"notes":          analysis.Notes,
	}

	selectors := map[string]any{}
	for group, list := range analysis.Selectors {
		validated := validSelectors(list)
		if len(validated) > 0 {
			selectors[group] = validated
		}
	}
	if len(selectors) > 0 {
		layer["selectors"] = selectors
	}

	if len(analysis.DataFields) > 0 {
		fields := map[string]any{}
		for name, fc := range analysis.DataFields {
			field := map[string]any{}
			if fc.Selector != "" {
				field["selector"] = fc.Selector
			}
			if fc.Type != "" {
				field["type"] = fc.Type
			}
			if fc.Attribute != "" {
				field["attribute"] = fc.Attribute
			}
			if patterns := validSelectors(fc.FallbackPatterns); len(patterns) > 0 {
				field["fallback_patterns"] = patterns
			}
			fields[name] = field
		}
		layer["data_fields"] = fields
	}

	interactions := map[string]any{}
	if len(analysis.Interactions.SearchSequence) > 0 {
		interactions["search_sequence"] = analysis.Interactions.SearchSequence
	}
	if analysis.Interactions.PaginationType != "" {
		interactions["pagination_type"] = analysis.Interactions.PaginationType
	}
	addNonNegative(interactions, "wait_after_search", analysis.Interactions.WaitAfterSearch)
	addNonNegative(interactions, "wait_after_page_load", analysis.Interactions.WaitAfterPageLoad)
	addNonNegative(interactions, "scroll_delay", analysis.Interactions.ScrollDelay)
	addNonNegative(interactions, "view_more_delay", analysis.Interactions.ViewMoreDelay)
	addNonNegative(interactions, "click_delay", analysis.Interactions.ClickDelay)
	if len(interactions) > 0 {
		layer["interactions"] = interactions
	}

	if len(analysis.Extraction) > 0 {
		extraction := map[string]any{}
		for name, patterns := range analysis.Extraction {
			if len(patterns) > 0 {
				extraction[name] = patterns
			}
		}
		if len(extraction) > 0 {
			layer["extraction"] = extraction
		}
	}

	return layer
}

// validSelectors filters a selector list down to entries that pass basic
// sanity checks. The checks are intentionally loose: some generated
// selectors use extensions like :contains() that are still usable.
func validSelectors(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		s = strings.TrimSpace(s)
		if len(s) >= 2 {
			out = append(out, s)
		}
	}
	return out
}

func addNonNegative(m map[string]any, key string, v float64) {
	if v > 0 {
		m[key] = v
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
