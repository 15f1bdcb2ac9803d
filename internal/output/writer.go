// Package output persists extracted dealers as timestamped per-domain
// CSV and JSON files.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cliandouble08/car-dealer-scraper/internal/sitekey"
	"github.com/cliandouble08/car-dealer-scraper/internal/types"
)

// Writer writes scrape results under a base directory, one file per
// domain per run.
type Writer struct {
	dir     string
	verbose bool
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// SetVerbose enables progress logging.
func (w *Writer) SetVerbose(v bool) { w.verbose = v }

var csvHeader = []string{
	"source_url", "name", "address", "city", "state", "zip_code",
	"phone", "website", "dealer_type", "distance_miles",
	"search_zip", "scrape_date", "session_id",
}

// WriteCSV writes dealers to <dir>/<domain>_dealers_<timestamp>.csv and
// returns the file path.
func (w *Writer) WriteCSV(domain string, dealers []types.Dealer) (string, error) {
	path := w.filePath(domain, "csv")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, d := range dealers {
		row := []string{
			d.SourceURL, d.Name, d.Address, d.City, d.State, d.ZipCode,
			d.Phone, d.Website, d.DealerType, d.DistanceMiles,
			d.SearchZip, d.ScrapeDate, d.SessionID,
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("failed to write CSV row for %q: %w", d.Name, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}

	if w.verbose {
		log.Printf("[OUTPUT] Wrote %d dealers to %s", len(dealers), path)
	}
	return path, nil
}

// WriteJSON writes dealers to <dir>/<domain>_dealers_<timestamp>.json
// and returns the file path.
func (w *Writer) WriteJSON(domain string, dealers []types.Dealer) (string, error) {
	path := w.filePath(domain, "json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(dealers, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal dealers: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	if w.verbose {
		log.Printf("[OUTPUT] Wrote %d dealers to %s", len(dealers), path)
	}
	return path, nil
}

func (w *Writer) filePath(domain, ext string) string {
	slug := strings.NewReplacer(".", "_", "/", "_").Replace(sitekey.Normalize(domain))
	name := fmt.Sprintf("%s_dealers_%s.%s", slug, time.Now().Format("20060102_150405"), ext)
	return filepath.Join(w.dir, name)
}
