package discovery

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/cliandouble08/car-dealer-scraper/internal/sitekey"
	"github.com/cliandouble08/car-dealer-scraper/internal/types"
)

// DefaultCacheTTL is how long a cached discovery result stays valid.
// Locator URLs move rarely; a month keeps rediscovery traffic low.
const DefaultCacheTTL = 30 * 24 * time.Hour

// Cache persists discovery results per domain as JSON files with a
// cached_at timestamp. Entries older than the TTL are treated as absent.
type Cache struct {
	dir string
	ttl time.Duration
}

// NewCache creates a discovery cache rooted at dir. A non-positive ttl
// falls back to DefaultCacheTTL.
func NewCache(dir string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{dir: dir, ttl: ttl}
}

// Get returns the cached discovery result for a domain, or nil on a miss.
// Expired and unreadable entries are misses, not errors.
func (c *Cache) Get(domain string) *types.DiscoveryResult {
	path := c.path(domain)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var result types.DiscoveryResult
	if err := json.Unmarshal(data, &result); err != nil {
		log.Printf("[DISCOVERY] Warning: unreadable cache entry %s: %v", path, err)
		return nil
	}

	if result.CachedAt.IsZero() || time.Since(result.CachedAt) > c.ttl {
		return nil
	}
	return &result
}

// Put persists a discovery result for a domain, stamping cached_at. The
// write is atomic (temp file + rename); concurrent writers race and the
// later write wins, which is acceptable because results are derived from
// the same heuristics.
func (c *Cache) Put(domain string, result *types.DiscoveryResult) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return &CacheError{Message: "failed to create cache dir", Cause: err}
	}

	stamped := *result
	stamped.CachedAt = time.Now()

	data, err := json.MarshalIndent(&stamped, "", "  ")
	if err != nil {
		return &CacheError{Message: "failed to marshal discovery result", Cause: err}
	}

	tmp, err := os.CreateTemp(c.dir, "discovery-*.tmp")
	if err != nil {
		return &CacheError{Message: "failed to create temp file", Cause: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &CacheError{Message: "failed to write cache entry", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &CacheError{Message: "failed to close temp file", Cause: err}
	}
	if err := os.Rename(tmpName, c.path(domain)); err != nil {
		_ = os.Remove(tmpName)
		return &CacheError{Message: "failed to rename cache entry into place", Cause: err}
	}
	return nil
}

func (c *Cache) path(domain string) string {
	return filepath.Join(c.dir, sitekey.Normalize(domain)+"_discovery.json")
}
