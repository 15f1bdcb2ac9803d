package types

// AnalysisResult is the canonical schema produced by LLM page analysis.
// Every recognized key has a documented default; parsing backfills any key
// the model omitted so downstream code never sees a partial result.
type AnalysisResult struct {
	// Selectors maps a selector group name (search_input, search_button,
	// apply_button, view_more_button, dealer_cards, scroll_container) to an
	// ordered list of CSS selectors to try.
	Selectors map[string][]string `json:"selectors" yaml:"selectors"`

	// DataFields maps a field name (name, address, phone, website) to its
	// extraction rule within a dealer card.
	DataFields map[string]FieldConfig `json:"data_fields" yaml:"data_fields"`

	// Interactions holds timing and sequencing parameters for driving the
	// page after load.
	Interactions Interactions `json:"interactions" yaml:"interactions"`

	// InputFields describes form inputs the search requires (zip_code,
	// radius).
	InputFields map[string]InputField `json:"input_fields" yaml:"input_fields"`

	// Extraction maps a field name to regex fallback patterns applied to
	// card text when selectors come up empty.
	Extraction map[string][]string `json:"extraction" yaml:"extraction"`

	Confidence float64 `json:"confidence" yaml:"confidence" validate:"gte=0,lte=1"`
	Notes      string  `json:"notes" yaml:"notes"`
}

// FieldConfig describes how to pull one data field out of a dealer card.
type FieldConfig struct {
	Selector         string   `json:"selector,omitempty" yaml:"selector,omitempty"`
	Type             string   `json:"type,omitempty" yaml:"type,omitempty"` // "text" or "href"
	Attribute        string   `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	FallbackPatterns []string `json:"fallback_patterns,omitempty" yaml:"fallback_patterns,omitempty"`
}

// InputField describes a form input needed to run a search.
type InputField struct {
	Selector     string `json:"selector,omitempty" yaml:"selector,omitempty"`
	Type         string `json:"type,omitempty" yaml:"type,omitempty"` // "text" or "select"
	Required     bool   `json:"required,omitempty" yaml:"required,omitempty"`
	DefaultValue string `json:"default_value,omitempty" yaml:"default_value,omitempty"`
}

// Interactions holds page-interaction parameters. Durations are seconds;
// zero means unset and is backfilled with the documented default.
type Interactions struct {
	SearchSequence    []string `json:"search_sequence,omitempty" yaml:"search_sequence,omitempty"`
	PaginationType    string   `json:"pagination_type,omitempty" yaml:"pagination_type,omitempty"` // view_more, scroll, pagination, none
	WaitAfterSearch   float64  `json:"wait_after_search,omitempty" yaml:"wait_after_search,omitempty"`
	WaitAfterPageLoad float64  `json:"wait_after_page_load,omitempty" yaml:"wait_after_page_load,omitempty"`
	ScrollDelay       float64  `json:"scroll_delay,omitempty" yaml:"scroll_delay,omitempty"`
	ViewMoreDelay     float64  `json:"view_more_delay,omitempty" yaml:"view_more_delay,omitempty"`
	ClickDelay        float64  `json:"click_delay,omitempty" yaml:"click_delay,omitempty"`
}

// SelectorGroups lists every recognized selector group name.
var SelectorGroups = []string{
	"search_input",
	"search_button",
	"apply_button",
	"view_more_button",
	"dealer_cards",
	"scroll_container",
}
