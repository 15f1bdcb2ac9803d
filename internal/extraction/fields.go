// Package extraction pulls structured dealer records out of rendered
// dealer-card HTML, using configured selectors first and regex fallbacks
// on card text when selectors come up empty.
package extraction

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// SkipNames are UI-chrome strings that masquerade as dealer names when a
// selector over-matches. A candidate name containing any of them is
// rejected.
var SkipNames = []string{
	"search by", "location", "name", "clear", "advanced search",
	"view map", "make my dealer", "chat with dealer", "dealer website",
	"find more", "view more", "load more", "show more", "see more",
}

// SkipWebsiteDomains are link targets that are never the dealer's own
// website.
var SkipWebsiteDomains = []string{"maps.google.com", "google.com", "tel:", "mailto:"}

var defaultPhonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\+?1[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
}

var addressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(.+?),\s*([A-Za-z\s]+),\s*([A-Z]{2})\s+(\d{5}(?:-\d{4})?)`),
	regexp.MustCompile(`(.+?)\s+([A-Za-z\s]+),\s*([A-Z]{2})\s+(\d{5}(?:-\d{4})?)`),
	regexp.MustCompile(`(.+?)\s+([A-Z]{2})\s+(\d{5}(?:-\d{4})?)`),
}

var (
	zipPattern      = regexp.MustCompile(`\b(\d{5}(?:-\d{4})?)\b`)
	statePattern    = regexp.MustCompile(`\b([A-Z]{2})\b`)
	numberedPrefix  = regexp.MustCompile(`^\d+\.\s*`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
	nonDigitPattern = regexp.MustCompile(`[^\d]`)

	urlPatterns = []*regexp.Regexp{
		regexp.MustCompile(`https?://[^\s<>"')]+`),
		regexp.MustCompile(`www\.[^\s<>"')]+`),
	}

	distancePatterns = []*regexp.Regexp{
		regexp.MustCompile(`([\d.]+)\s*mi\b`),
		regexp.MustCompile(`([\d.]+)\s*miles?\b`),
		regexp.MustCompile(`([\d.]+)\s*mi\.`),
	}
)

// ExtractPhone finds the first phone number in text and normalizes
// 10-digit (and 1-prefixed 11-digit) matches to (XXX) XXX-XXXX. Custom
// patterns override the built-in US formats; an unparseable custom
// pattern is skipped. Returns "" when nothing matches.
func ExtractPhone(text string, patterns []string) string {
	res := defaultPhonePatterns
	if len(patterns) > 0 {
		res = compilePatterns(patterns)
	}

	for _, re := range res {
		match := re.FindString(text)
		if match == "" {
			continue
		}
		digits := nonDigitPattern.ReplaceAllString(match, "")
		switch {
		case len(digits) == 10:
			return formatPhone(digits)
		case len(digits) == 11 && digits[0] == '1':
			return formatPhone(digits[1:])
		default:
			return strings.TrimSpace(match)
		}
	}
	return ""
}

func formatPhone(digits string) string {
	return fmt.Sprintf("(%s) %s-%s", digits[0:3], digits[3:6], digits[6:10])
}

// ParseAddress splits a US address into street, city, state, and zip.
// When no full pattern matches, it falls back to scavenging the state
// and zip and returns the whole text as the street component.
func ParseAddress(text string) (street, city, state, zip string) {
	for _, re := range addressPatterns {
		groups := re.FindStringSubmatch(text)
		switch len(groups) {
		case 5:
			return strings.TrimSpace(groups[1]), strings.TrimSpace(groups[2]),
				strings.TrimSpace(groups[3]), strings.TrimSpace(groups[4])
		case 4:
			return strings.TrimSpace(groups[1]), "",
				strings.TrimSpace(groups[2]), strings.TrimSpace(groups[3])
		}
	}

	if m := zipPattern.FindStringSubmatch(text); m != nil {
		zip = m[1]
	}
	if m := statePattern.FindStringSubmatch(text); m != nil {
		state = m[1]
	}
	return strings.TrimSpace(text), "", state, zip
}

// ExtractWebsiteURL picks the dealer's own website out of card hrefs,
// falling back to URLs embedded in the card text. Map, search-engine,
// tel:, and mailto: targets are skipped; bare www hosts get an https
// scheme.
func ExtractWebsiteURL(text string, hrefs []string) string {
	for _, href := range hrefs {
		if href == "" || skippedDomain(href) {
			continue
		}
		if strings.HasPrefix(href, "http") && hasRealHost(href) {
			return href
		}
	}

	for _, re := range urlPatterns {
		for _, match := range re.FindAllString(text, -1) {
			candidate := match
			if !strings.HasPrefix(candidate, "http") {
				candidate = "https://" + candidate
			}
			if !skippedDomain(candidate) && hasRealHost(candidate) {
				return candidate
			}
		}
	}
	return ""
}

func skippedDomain(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, skip := range SkipWebsiteDomains {
		if strings.Contains(lower, skip) {
			return true
		}
	}
	return false
}

func hasRealHost(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return parsed.Host != "" && strings.Contains(parsed.Host, ".")
}

// CleanName validates and normalizes a dealer name: UI-chrome strings
// and names shorter than 3 characters are rejected, a leading "1. "
// style index is stripped, and whitespace runs collapse. Returns ""
// when the name is unusable.
func CleanName(name string) string {
	if len(name) < 3 {
		return ""
	}

	lower := strings.ToLower(strings.TrimSpace(name))
	for _, skip := range SkipNames {
		if strings.Contains(lower, skip) {
			return ""
		}
	}

	name = numberedPrefix.ReplaceAllString(name, "")
	name = whitespaceRuns.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	if len(name) < 3 {
		return ""
	}
	return name
}

// ExtractDistance pulls a "N mi" style distance out of card text,
// returning just the number, or "" when absent.
func ExtractDistance(text string) string {
	lower := strings.ToLower(text)
	for _, re := range distancePatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			return m[1]
		}
	}
	return ""
}

func compilePatterns(patterns []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		res = append(res, re)
	}
	if len(res) == 0 {
		return defaultPhonePatterns
	}
	return res
}
