// Package geo selects centroid zip codes for nationwide search coverage:
// a set of zips spaced roughly one search radius apart, so every scrape
// over them touches each region once without overlap.
package geo

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
)

// earthRadiusMiles is Earth's radius used by the Haversine formula.
const earthRadiusMiles = 3959

// ZipInfo is one zip code with its coordinates.
type ZipInfo struct {
	ZipCode string
	Lat     float64
	Lng     float64
	City    string
	State   string
}

// ValidStates are the 50 states plus DC and territories. Zip codes
// outside this set (military APO/FPO and overseas) are excluded from
// coverage by default.
var ValidStates = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true,
	"CO": true, "CT": true, "DE": true, "FL": true, "GA": true,
	"HI": true, "ID": true, "IL": true, "IN": true, "IA": true,
	"KS": true, "KY": true, "LA": true, "ME": true, "MD": true,
	"MA": true, "MI": true, "MN": true, "MS": true, "MO": true,
	"MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true,
	"OK": true, "OR": true, "PA": true, "RI": true, "SC": true,
	"SD": true, "TN": true, "TX": true, "UT": true, "VT": true,
	"VA": true, "WA": true, "WV": true, "WI": true, "WY": true,
	"DC": true, "PR": true, "VI": true, "GU": true, "AS": true, "MP": true,
}

// HaversineMiles returns the great-circle distance in miles between two
// coordinates.
func HaversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMiles * 2 * math.Asin(math.Sqrt(a))
}

// FilterDomestic drops zips whose state is not a US state, DC, or a
// territory.
func FilterDomestic(zips []ZipInfo) []ZipInfo {
	out := make([]ZipInfo, 0, len(zips))
	for _, z := range zips {
		if ValidStates[z.State] {
			out = append(out, z)
		}
	}
	return out
}

// SelectCentroids greedily picks zips so that no two selected centroids
// are within radiusMiles of each other. Input order is normalized (state,
// then latitude, then longitude) so selection is deterministic. A coarse
// lat/lng grid keeps the coverage check near-linear.
func SelectCentroids(zips []ZipInfo, radiusMiles float64) []ZipInfo {
	sorted := make([]ZipInfo, len(zips))
	copy(sorted, zips)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].State != sorted[j].State {
			return sorted[i].State < sorted[j].State
		}
		if sorted[i].Lat != sorted[j].Lat {
			return sorted[i].Lat < sorted[j].Lat
		}
		return sorted[i].Lng < sorted[j].Lng
	})

	gridSize := radiusMiles / 50 // approximate degrees per cell

	type cell struct{ lat, lng int }
	grid := make(map[cell][]ZipInfo)
	key := func(lat, lng float64) cell {
		return cell{int(lat / gridSize), int(lng / gridSize)}
	}

	var centroids []ZipInfo
	for _, z := range sorted {
		base := key(z.Lat, z.Lng)
		covered := false
	neighbors:
		for dLat := -1; dLat <= 1; dLat++ {
			for dLng := -1; dLng <= 1; dLng++ {
				for _, c := range grid[cell{base.lat + dLat, base.lng + dLng}] {
					if HaversineMiles(z.Lat, z.Lng, c.Lat, c.Lng) <= radiusMiles {
						covered = true
						break neighbors
					}
				}
			}
		}
		if covered {
			continue
		}
		centroids = append(centroids, z)
		grid[base] = append(grid[base], z)
	}
	return centroids
}

// LoadZipDatabase reads a zip database CSV with columns
// zip,lat,lng,city,state (header optional). Rows with unparseable
// coordinates are skipped.
func LoadZipDatabase(path string) ([]ZipInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip database: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var zips []ZipInfo
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read zip database: %w", err)
		}
		if len(record) < 3 {
			continue
		}

		lat, latErr := strconv.ParseFloat(record[1], 64)
		lng, lngErr := strconv.ParseFloat(record[2], 64)
		if latErr != nil || lngErr != nil {
			// Header row or missing coordinates.
			continue
		}

		z := ZipInfo{ZipCode: record[0], Lat: lat, Lng: lng}
		if len(record) > 3 {
			z.City = record[3]
		}
		if len(record) > 4 {
			z.State = record[4]
		}
		zips = append(zips, z)
	}
	return zips, nil
}
