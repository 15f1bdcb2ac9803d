package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cliandouble08/car-dealer-scraper/internal/analysis"
	"github.com/cliandouble08/car-dealer-scraper/internal/config"
	"github.com/cliandouble08/car-dealer-scraper/internal/llm"
	"github.com/cliandouble08/car-dealer-scraper/internal/prompts"
	"github.com/cliandouble08/car-dealer-scraper/internal/types"
)

// ModelRefinementThreshold is the validation confidence below which model
// refinement is worth its cost.
const ModelRefinementThreshold = 0.7

const (
	snippetMaxLen  = 500
	maxSnippets    = 5
	pageTextMaxLen = 8000
)

// RefineSelectors folds heuristic suggestions from a validation result
// into a clone of the config, stamping provenance metadata. The original
// config is never mutated. When the result needs no refinement or carries
// no suggestions, the original is returned as is.
func RefineSelectors(result *types.ValidationResult, cfg *config.SiteConfig) *config.SiteConfig {
	if result == nil || !result.NeedsRefinement || len(result.SuggestedSelectors) == 0 {
		return cfg
	}

	refined := cfg.Clone()
	if cards := result.SuggestedSelectors["dealer_cards"]; len(cards) > 0 {
		if refined.Selectors == nil {
			refined.Selectors = make(map[string][]string)
		}
		refined.Selectors["dealer_cards"] = append([]string(nil), cards...)
	}

	refined.Metadata.PostSearchValidated = true
	refined.Metadata.ValidationConfidence = result.Confidence
	refined.Metadata.DealerCount = result.DealerCount
	refined.Metadata.ValidationNotes = result.Notes
	return refined
}

// modelRefinement is the model's answer to the refine-selectors prompt.
type modelRefinement struct {
	DealersFound       bool                         `json:"dealers_found"`
	DealerCardSelector string                       `json:"dealer_cards_selector"`
	DataFields         map[string]types.FieldConfig `json:"data_fields"`
	Confidence         float64                      `json:"confidence"`
	Notes              string                       `json:"notes"`
}

// RefineWithModel asks the model to re-derive selectors from the actual
// post-search HTML. It is slower than heuristics and only worth calling
// when validation confidence fell below ModelRefinementThreshold. Any
// model failure, or a reply that found no dealers, leaves the config
// unchanged.
func (v *Validator) RefineWithModel(ctx context.Context, client llm.Client, html, pageURL string, cfg *config.SiteConfig) *config.SiteConfig {
	if client == nil {
		return cfg
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return cfg
	}

	prompt := prompts.Format(prompts.MustGet("validation.json", "refine-selectors"), map[string]string{
		"URL":               pageURL,
		"ExpectedSelectors": strings.Join(cfg.CardSelectors(), ", "),
		"Snippets":          sampleSnippets(doc),
		"Text":              pageText(doc),
	})

	raw, err := client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		if v.verbose {
			log.Printf("[VALIDATE] model refinement failed: %v", err)
		}
		return cfg
	}

	var refinement modelRefinement
	if err := json.Unmarshal([]byte(analysis.RepairJSON(analysis.ExtractJSONObject(raw))), &refinement); err != nil {
		if v.verbose {
			log.Printf("[VALIDATE] model refinement unparseable: %v", err)
		}
		return cfg
	}
	if !refinement.DealersFound || refinement.DealerCardSelector == "" {
		return cfg
	}

	refined := cfg.Clone()
	if refined.Selectors == nil {
		refined.Selectors = make(map[string][]string)
	}
	refined.Selectors["dealer_cards"] = []string{refinement.DealerCardSelector}
	if len(refinement.DataFields) > 0 {
		refined.DataFields = refinement.DataFields
	}
	refined.Metadata.PostSearchValidated = true
	refined.Metadata.LLMRefined = true
	refined.Metadata.ValidationConfidence = refinement.Confidence
	refined.Metadata.ValidationNotes = refinement.Notes
	return refined
}

// sampleSnippets extracts up to maxSnippets raw HTML fragments matching
// dealer-ish class patterns, each truncated, to show the model what the
// page actually contains.
func sampleSnippets(doc *goquery.Document) string {
	var snippets []string
	for _, pattern := range []string{`[class*="dealer"]`, `[class*="location"]`, `[class*="result"]`} {
		doc.Find(pattern).EachWithBreak(func(i int, s *goquery.Selection) bool {
			if i >= 2 || len(snippets) >= maxSnippets {
				return false
			}
			if html, err := goquery.OuterHtml(s); err == nil {
				if len(html) > snippetMaxLen {
					html = html[:snippetMaxLen]
				}
				snippets = append(snippets, html)
			}
			return true
		})
		if len(snippets) >= maxSnippets {
			break
		}
	}

	var b strings.Builder
	for _, s := range snippets {
		fmt.Fprintf(&b, "---\n%s\n", s)
	}
	return b.String()
}

func pageText(doc *goquery.Document) string {
	text := strings.TrimSpace(doc.Text())
	if len(text) > pageTextMaxLen {
		text = text[:pageTextMaxLen]
	}
	return text
}
