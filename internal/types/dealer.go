// Package types provides type definitions for structured data used throughout the dealer-scraper system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Dealer represents one extracted dealership listing. Name is the only
// required field; everything else is best-effort and may be empty.
type Dealer struct {
	SourceURL     string `json:"source_url" csv:"source_url"`
	Name          string `json:"name" csv:"name"`
	Address       string `json:"address,omitempty" csv:"address"`
	City          string `json:"city,omitempty" csv:"city"`
	State         string `json:"state,omitempty" csv:"state"`
	ZipCode       string `json:"zip_code,omitempty" csv:"zip_code"`
	Phone         string `json:"phone,omitempty" csv:"phone"`
	Website       string `json:"website,omitempty" csv:"website"`
	DealerType    string `json:"dealer_type,omitempty" csv:"dealer_type"`
	DistanceMiles string `json:"distance_miles,omitempty" csv:"distance_miles"`
	SearchZip     string `json:"search_zip,omitempty" csv:"search_zip"`
	ScrapeDate    string `json:"scrape_date,omitempty" csv:"scrape_date"`
	SessionID     string `json:"session_id,omitempty" csv:"session_id"`
}

// DedupKey returns the session-level de-duplication key for a dealer:
// the lowercased name|address pair.
func (d *Dealer) DedupKey() string {
	return strings.ToLower(d.Name) + "|" + strings.ToLower(d.Address)
}
