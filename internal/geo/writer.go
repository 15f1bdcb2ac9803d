package geo

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// WriteZipFile writes centroids as a zip-list file consumable by the
// scraper: one zip per line, grouped under a comment header per state,
// with the city as a trailing comment when includeMetadata is set.
func WriteZipFile(path string, centroids []ZipInfo, radiusMiles float64, includeMetadata bool) error {
	sorted := make([]ZipInfo, len(centroids))
	copy(sorted, centroids)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].State != sorted[j].State {
			return sorted[i].State < sorted[j].State
		}
		return sorted[i].City < sorted[j].City
	})

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create zip file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "# Centroid zip codes for nationwide coverage\n")
	fmt.Fprintf(w, "# Total: %d zip codes\n", len(sorted))
	fmt.Fprintf(w, "# Each zip code covers approximately %.0fmi radius\n", radiusMiles)
	fmt.Fprintf(w, "#\n")

	currentState := "\x00"
	for _, z := range sorted {
		if z.State != currentState {
			currentState = z.State
			fmt.Fprintf(w, "\n# %s\n", currentState)
		}
		if includeMetadata && z.City != "" {
			fmt.Fprintf(w, "%s  # %s\n", z.ZipCode, z.City)
		} else {
			fmt.Fprintf(w, "%s\n", z.ZipCode)
		}
	}
	return w.Flush()
}

// ReadZipFile parses a zip-list file: blank lines and # comments are
// skipped, and trailing comments after a zip are stripped.
func ReadZipFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip file: %w", err)
	}
	defer file.Close()

	var zips []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line != "" {
			zips = append(zips, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read zip file: %w", err)
	}
	return zips, nil
}
