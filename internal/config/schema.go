// Package config loads, merges, and caches layered site configurations.
// Three layers feed every merged config: built-in base defaults, an
// LLM-generated layer persisted per site, and manually authored overrides.
// Precedence is manual > generated > base.
package config

import (
	"github.com/cliandouble08/car-dealer-scraper/internal/types"
)

// SiteConfig is the merged, typed configuration for one site. It is never
// mutated after being returned from the store; refinement clones it.
type SiteConfig struct {
	Manufacturer  string                       `yaml:"manufacturer,omitempty"`
	BaseURL       string                       `yaml:"base_url,omitempty"`
	GeneratedBy   string                       `yaml:"generated_by,omitempty"`
	GeneratedDate string                       `yaml:"generated_date,omitempty"`
	Confidence    float64                      `yaml:"confidence,omitempty"`
	Notes         string                       `yaml:"notes,omitempty"`
	Selectors     map[string][]string          `yaml:"selectors,omitempty"`
	DataFields    map[string]types.FieldConfig `yaml:"data_fields,omitempty"`
	Interactions  types.Interactions           `yaml:"interactions,omitempty"`
	InputFields   map[string]types.InputField  `yaml:"input_fields,omitempty"`
	Extraction    map[string][]string          `yaml:"extraction,omitempty"`
	Metadata      Metadata                     `yaml:"metadata,omitempty"`
}

// Metadata carries provenance stamped onto a config by post-search
// validation and refinement.
type Metadata struct {
	PostSearchValidated  bool    `yaml:"post_search_validated,omitempty"`
	LLMRefined           bool    `yaml:"llm_refined,omitempty"`
	ValidationConfidence float64 `yaml:"validation_confidence,omitempty"`
	DealerCount          int     `yaml:"dealer_count,omitempty"`
	ValidationNotes      string  `yaml:"validation_notes,omitempty"`
}

// Clone returns a deep copy of the config. Refinement operates on clones
// so callers holding the original never observe mutation.
func (c *SiteConfig) Clone() *SiteConfig {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Selectors = cloneStringListMap(c.Selectors)
	clone.Extraction = cloneStringListMap(c.Extraction)

	if c.DataFields != nil {
		clone.DataFields = make(map[string]types.FieldConfig, len(c.DataFields))
		for k, v := range c.DataFields {
			v.FallbackPatterns = append([]string(nil), v.FallbackPatterns...)
			clone.DataFields[k] = v
		}
	}
	if c.InputFields != nil {
		clone.InputFields = make(map[string]types.InputField, len(c.InputFields))
		for k, v := range c.InputFields {
			clone.InputFields[k] = v
		}
	}
	clone.Interactions.SearchSequence = append([]string(nil), c.Interactions.SearchSequence...)
	return &clone
}

// CardSelectors returns the configured dealer-card selector chain.
func (c *SiteConfig) CardSelectors() []string {
	if c == nil || c.Selectors == nil {
		return nil
	}
	return c.Selectors["dealer_cards"]
}

// Field returns the extraction rule for a named data field, or a zero
// FieldConfig when none is configured.
func (c *SiteConfig) Field(name string) types.FieldConfig {
	if c == nil || c.DataFields == nil {
		return types.FieldConfig{}
	}
	return c.DataFields[name]
}

func cloneStringListMap(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = append([]string(nil), v...)
	}
	return out
}
