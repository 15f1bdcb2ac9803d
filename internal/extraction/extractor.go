package extraction

import (
	"log"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/cliandouble08/car-dealer-scraper/internal/config"
	"github.com/cliandouble08/car-dealer-scraper/internal/types"
)

// PageMeta carries per-page provenance stamped onto every extracted
// dealer.
type PageMeta struct {
	SourceURL  string
	SearchZip  string
	ScrapeDate string
	SessionID  string
}

// Extractor turns rendered dealer-card HTML into Dealer records. It
// de-duplicates across its lifetime, so one Extractor per scrape session
// gives session-wide dedup across zip searches and pages.
type Extractor struct {
	mu      sync.Mutex
	seen    map[string]bool
	verbose bool
}

func NewExtractor() *Extractor {
	return &Extractor{seen: make(map[string]bool)}
}

// SetVerbose enables progress logging.
func (e *Extractor) SetVerbose(v bool) { e.verbose = v }

// ExtractDealers parses html, locates dealer cards with the configured
// selector chain, and extracts one Dealer per card. Cards without a
// usable name are dropped, as are dealers already seen this session.
func (e *Extractor) ExtractDealers(html string, cfg *config.SiteConfig, meta PageMeta) ([]types.Dealer, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ExtractionError{Message: "failed to parse results HTML", Cause: err}
	}

	cards := findCards(doc, cfg.CardSelectors())
	if cards == nil {
		return nil, nil
	}

	var dealers []types.Dealer
	dropped := 0
	cards.Each(func(_ int, card *goquery.Selection) {
		dealer, ok := e.extractCard(card, cfg, meta)
		if !ok {
			dropped++
			return
		}

		e.mu.Lock()
		dup := e.seen[dealer.DedupKey()]
		if !dup {
			e.seen[dealer.DedupKey()] = true
		}
		e.mu.Unlock()
		if dup {
			return
		}
		dealers = append(dealers, dealer)
	})

	if e.verbose {
		log.Printf("[EXTRACT] %s: %d dealers, %d cards dropped", meta.SourceURL, len(dealers), dropped)
	}
	return dealers, nil
}

// findCards tries each configured selector in order; the first with any
// match wins.
func findCards(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, selector := range selectors {
		if cards := doc.Find(selector); cards.Length() > 0 {
			return cards
		}
	}
	return nil
}

func (e *Extractor) extractCard(card *goquery.Selection, cfg *config.SiteConfig, meta PageMeta) (types.Dealer, bool) {
	cardText := strings.TrimSpace(card.Text())

	name := CleanName(ExtractField(card, cfg.Field("name")))
	if name == "" {
		return types.Dealer{}, false
	}

	dealer := types.Dealer{
		SourceURL:  meta.SourceURL,
		Name:       name,
		SearchZip:  meta.SearchZip,
		ScrapeDate: meta.ScrapeDate,
		SessionID:  meta.SessionID,
	}

	if addr := ExtractField(card, cfg.Field("address")); addr != "" {
		dealer.Address, dealer.City, dealer.State, dealer.ZipCode = ParseAddress(addr)
	}

	dealer.Phone = extractCardPhone(card, cfg, cardText)

	if site := ExtractField(card, cfg.Field("website")); site != "" && !skippedDomain(site) {
		dealer.Website = site
	} else {
		dealer.Website = ExtractWebsiteURL(cardText, cardHrefs(card))
	}

	dealer.DistanceMiles = ExtractDistance(cardText)
	return dealer, true
}

// ExtractField applies a field rule to a card: the primary selector
// first, then each fallback pattern in order. Attribute-typed fields
// read the attribute off the first match; text fields read stripped
// text.
func ExtractField(card *goquery.Selection, field types.FieldConfig) string {
	selectors := field.FallbackPatterns
	if field.Selector != "" {
		selectors = append([]string{field.Selector}, selectors...)
	}

	for _, selector := range selectors {
		match := card.Find(selector).First()
		if match.Length() == 0 {
			continue
		}

		var value string
		if field.Attribute != "" {
			value, _ = match.Attr(field.Attribute)
		} else {
			value = match.Text()
		}
		value = strings.TrimSpace(value)
		if value != "" {
			return value
		}
	}
	return ""
}

// extractCardPhone prefers a tel: href when the field rule asks for one,
// then falls back to regex over the card text using configured patterns.
func extractCardPhone(card *goquery.Selection, cfg *config.SiteConfig, cardText string) string {
	raw := ExtractField(card, cfg.Field("phone"))
	if strings.HasPrefix(raw, "tel:") {
		raw = strings.TrimPrefix(raw, "tel:")
	}
	if raw != "" {
		if phone := ExtractPhone(raw, nil); phone != "" {
			return phone
		}
	}

	var patterns []string
	if cfg.Extraction != nil {
		patterns = cfg.Extraction["phone_patterns"]
	}
	return ExtractPhone(cardText, patterns)
}

func cardHrefs(card *goquery.Selection) []string {
	var hrefs []string
	card.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}
