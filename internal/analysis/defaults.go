package analysis

import "github.com/cliandouble08/car-dealer-scraper/internal/types"

// DefaultDataFields are the extraction rules assumed for any data field
// the model did not describe.
var DefaultDataFields = map[string]types.FieldConfig{
	"name": {
		Type:             "text",
		FallbackPatterns: []string{"h2", "h3", "h4", "[class*='name']"},
	},
	"address": {
		Type:             "text",
		FallbackPatterns: []string{"[class*='address']", "[class*='location']"},
	},
	"phone": {
		Type:             "href",
		Attribute:        "href",
		FallbackPatterns: []string{"a[href^='tel:']", "[class*='phone']"},
	},
	"website": {
		Type:             "href",
		Attribute:        "href",
		FallbackPatterns: []string{"a[href^='http']", "[class*='website']"},
	},
}

// DefaultInteractions are the page-interaction parameters assumed when
// the model leaves them out.
var DefaultInteractions = types.Interactions{
	SearchSequence:    []string{"fill_input", "press_enter"},
	PaginationType:    "view_more",
	WaitAfterSearch:   4,
	WaitAfterPageLoad: 3,
	ScrollDelay:       0.5,
	ViewMoreDelay:     2,
	ClickDelay:        0.3,
}

// ApplyDefaults backfills every recognized key the model omitted, so
// callers never see a partial result. Model-provided values win; only
// missing keys are filled.
func ApplyDefaults(result *types.AnalysisResult) {
	if result.Selectors == nil {
		result.Selectors = make(map[string][]string, len(types.SelectorGroups))
	}
	for _, group := range types.SelectorGroups {
		if _, ok := result.Selectors[group]; !ok {
			result.Selectors[group] = []string{}
		}
	}

	if result.DataFields == nil {
		result.DataFields = make(map[string]types.FieldConfig, len(DefaultDataFields))
	}
	for field, def := range DefaultDataFields {
		fc, ok := result.DataFields[field]
		if !ok {
			result.DataFields[field] = def
			continue
		}
		if fc.Type == "" {
			fc.Type = def.Type
		}
		if fc.Attribute == "" {
			fc.Attribute = def.Attribute
		}
		if len(fc.FallbackPatterns) == 0 {
			fc.FallbackPatterns = def.FallbackPatterns
		}
		result.DataFields[field] = fc
	}

	it := &result.Interactions
	if len(it.SearchSequence) == 0 {
		it.SearchSequence = DefaultInteractions.SearchSequence
	}
	if it.PaginationType == "" {
		it.PaginationType = DefaultInteractions.PaginationType
	}
	if it.WaitAfterSearch <= 0 {
		it.WaitAfterSearch = DefaultInteractions.WaitAfterSearch
	}
	if it.WaitAfterPageLoad <= 0 {
		it.WaitAfterPageLoad = DefaultInteractions.WaitAfterPageLoad
	}
	if it.ScrollDelay <= 0 {
		it.ScrollDelay = DefaultInteractions.ScrollDelay
	}
	if it.ViewMoreDelay <= 0 {
		it.ViewMoreDelay = DefaultInteractions.ViewMoreDelay
	}
	if it.ClickDelay <= 0 {
		it.ClickDelay = DefaultInteractions.ClickDelay
	}

	if result.InputFields == nil {
		result.InputFields = map[string]types.InputField{}
	}
	if result.Extraction == nil {
		result.Extraction = map[string][]string{}
	}

	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}
}
