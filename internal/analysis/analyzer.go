package analysis

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cliandouble08/car-dealer-scraper/internal/llm"
	"github.com/cliandouble08/car-dealer-scraper/internal/prompts"
	"github.com/cliandouble08/car-dealer-scraper/internal/sitekey"
	"github.com/cliandouble08/car-dealer-scraper/internal/types"
)

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 120 * time.Second

// Analyzer asks a model to describe the structure of a dealer-locator
// page and turns the reply into a validated AnalysisResult.
type Analyzer struct {
	client   llm.Client
	tier     llm.ModelTier
	budget   int
	timeout  time.Duration
	verbose  bool
	validate *validator.Validate
}

// NewAnalyzer creates an Analyzer backed by the given client. A nil
// client disables model analysis; every call then returns a ModelError
// and callers rely on heuristics.
func NewAnalyzer(client llm.Client) *Analyzer {
	return &Analyzer{
		client:   client,
		tier:     llm.TierStandard,
		budget:   DefaultContentBudget,
		timeout:  DefaultTimeout,
		validate: validator.New(),
	}
}

// SetVerbose enables progress logging.
func (a *Analyzer) SetVerbose(v bool) { a.verbose = v }

// SetTier overrides the model tier used for analysis calls.
func (a *Analyzer) SetTier(tier llm.ModelTier) { a.tier = tier }

// SetContentBudget overrides the per-call content character budget.
func (a *Analyzer) SetContentBudget(budget int) {
	if budget > 0 {
		a.budget = budget
	}
}

// AnalyzePageStructure asks the model how to scrape the page at pageURL
// given its rendered content. A malformed reply that survives neither
// repair nor schema validation triggers exactly one retry with a concise
// prompt variant; a second failure is returned as a ParseError. Model
// transport failures are returned immediately as a ModelError with no
// retry.
func (a *Analyzer) AnalyzePageStructure(ctx context.Context, pageURL, content string) (*types.AnalysisResult, error) {
	if a.client == nil {
		return nil, &ModelError{Message: "no model client configured"}
	}

	domain := sitekey.ExtractDomain(pageURL)

	promptKeys := []string{"analyze-structure", "analyze-structure-concise"}
	var lastErr error
	for attempt, key := range promptKeys {
		// The concise retry halves the content window along with the
		// shorter template.
		budget := a.budget
		if attempt > 0 {
			budget = a.budget / 2
		}
		excerpt := BuildExcerpt(content, budget)

		prompt := prompts.Format(prompts.MustGet("analysis.json", key), map[string]string{
			"URL":     pageURL,
			"Domain":  domain,
			"Content": excerpt,
		})

		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		raw, err := a.client.GenerateJSON(callCtx, prompt, a.tier)
		cancel()
		if err != nil {
			return nil, &ModelError{Message: "structure analysis call failed", Cause: err}
		}

		result, err := a.parseReply(raw)
		if err == nil {
			if a.verbose {
				log.Printf("[ANALYSIS] %s: confidence %.2f, %d dealer card selectors",
					domain, result.Confidence, len(result.Selectors["dealer_cards"]))
			}
			return result, nil
		}

		lastErr = err
		if a.verbose {
			log.Printf("[ANALYSIS] %s: attempt %d unparseable, %v", domain, attempt+1, err)
		}
	}

	return nil, lastErr
}

// parseReply turns a raw model reply into a validated AnalysisResult:
// strip fences, isolate the first balanced object, repair bracket and
// comma defects, type-check against the schema, decode, backfill
// defaults.
func (a *Analyzer) parseReply(raw string) (*types.AnalysisResult, error) {
	if raw == "" {
		return nil, &ParseError{Message: "empty reply"}
	}

	document := RepairJSON(ExtractJSONObject(llm.CleanJSONBlock(raw)))
	if document == "" {
		return nil, &ParseError{Message: "no JSON object in reply"}
	}

	if err := checkResultSchema(document); err != nil {
		return nil, err
	}

	var result types.AnalysisResult
	if err := json.Unmarshal([]byte(document), &result); err != nil {
		return nil, &ParseError{Message: "reply is not valid JSON", Cause: err}
	}

	if result.Confidence == 0 {
		result.Confidence = 0.5
	}
	ApplyDefaults(&result)

	if err := a.validate.Struct(&result); err != nil {
		return nil, &ParseError{Message: "result failed validation", Cause: err}
	}

	return &result, nil
}
