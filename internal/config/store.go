package config

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cliandouble08/car-dealer-scraper/internal/sitekey"
)

//go:embed base_config.yaml
var baseConfigYAML []byte

// GeneratedSuffix is appended to the site key to form the generated-layer
// cache filename.
const GeneratedSuffix = "_llm.yaml"

// Store loads and memoizes merged site configurations. Construct one per
// session and pass it explicitly; there is no global instance.
type Store struct {
	configDir string // manually authored layer
	cacheDir  string // LLM-generated layer

	mu        sync.Mutex
	baseOnce  sync.Once
	base      map[string]any
	merged    map[string]*SiteConfig
	generated map[string]map[string]any
}

// NewStore creates a config store reading manual configs from configDir
// and generated configs from cacheDir.
func NewStore(configDir, cacheDir string) *Store {
	return &Store{
		configDir: configDir,
		cacheDir:  cacheDir,
		merged:    make(map[string]*SiteConfig),
		generated: make(map[string]map[string]any),
	}
}

// GetConfig returns the merged configuration for a site key, building and
// memoizing it on first use. Malformed or missing layer files degrade to
// an empty layer with a logged warning; the call itself never fails.
func (s *Store) GetConfig(key string) *SiteConfig {
	key = sitekey.Normalize(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg, ok := s.merged[key]; ok {
		return cfg
	}

	merged := DeepMerge(s.baseLayer(), s.generatedLayerLocked(key))
	merged = DeepMerge(merged, s.manualLayer(key))

	cfg := decodeConfig(merged)
	s.merged[key] = cfg
	return cfg
}

// CacheGeneratedConfig persists an LLM-generated layer for a site key to
// both the in-memory cache and durable storage. The write is atomic
// (temp file + rename) so concurrent readers never observe a partial
// file. The memoized merged config for the key is invalidated so the next
// GetConfig reflects the new layer.
func (s *Store) CacheGeneratedConfig(layer map[string]any, key string) error {
	key = sitekey.Normalize(key)
	if key == "" {
		return fmt.Errorf("empty site key")
	}

	data, err := yaml.Marshal(layer)
	if err != nil {
		return fmt.Errorf("failed to marshal generated config for %s: %w", key, err)
	}

	if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	final := s.generatedPath(key)
	tmp, err := os.CreateTemp(s.cacheDir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write generated config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to rename generated config into place: %w", err)
	}

	s.mu.Lock()
	s.generated[key] = layer
	delete(s.merged, key)
	s.mu.Unlock()

	return nil
}

// HasGeneratedConfig reports whether a generated-layer config exists for
// the key, checking memory first and then file existence without
// deserializing.
func (s *Store) HasGeneratedConfig(key string) bool {
	key = sitekey.Normalize(key)

	s.mu.Lock()
	_, inMemory := s.generated[key]
	s.mu.Unlock()
	if inMemory {
		return true
	}

	info, err := os.Stat(s.generatedPath(key))
	return err == nil && !info.IsDir()
}

func (s *Store) generatedPath(key string) string {
	return filepath.Join(s.cacheDir, key+GeneratedSuffix)
}

func (s *Store) baseLayer() map[string]any {
	s.baseOnce.Do(func() {
		var base map[string]any
		if err := yaml.Unmarshal(baseConfigYAML, &base); err != nil {
			log.Printf("[CONFIG] Warning: failed to parse embedded base config: %v", err)
			base = map[string]any{}
		}
		s.base = base
	})
	return s.base
}

// generatedLayerLocked loads the generated layer for a key, consulting the
// in-memory cache before the durable file. Caller holds s.mu.
func (s *Store) generatedLayerLocked(key string) map[string]any {
	if layer, ok := s.generated[key]; ok {
		return layer
	}
	layer := loadYAMLLayer(s.generatedPath(key))
	s.generated[key] = layer
	return layer
}

// manualLayer loads the manually-authored layer for a key, trying the
// exact name, a punctuation-normalized name, and (for dotted keys) the
// leading label before the first dot. The first existing file wins.
func (s *Store) manualLayer(key string) map[string]any {
	if key == "" {
		return map[string]any{}
	}

	candidates := []string{key}
	if normalized := punctuationNormalize(key); normalized != key {
		candidates = append(candidates, normalized)
	}
	if idx := strings.Index(key, "."); idx > 0 {
		candidates = append(candidates, key[:idx])
	}

	for _, name := range candidates {
		path := filepath.Join(s.configDir, name+".yaml")
		if _, err := os.Stat(path); err == nil {
			return loadYAMLLayer(path)
		}
	}
	return map[string]any{}
}

// punctuationNormalize replaces every non-alphanumeric rune with an
// underscore, for filesystems where dotted config names are awkward.
func punctuationNormalize(key string) string {
	var b strings.Builder
	for _, r := range key {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// loadYAMLLayer reads one layer file. A missing or malformed file
// degrades to an empty layer; malformed files also log a warning.
func loadYAMLLayer(path string) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		return map[string]any{}
	}

	var layer map[string]any
	if err := yaml.Unmarshal(data, &layer); err != nil {
		log.Printf("[CONFIG] Warning: error loading config %s: %v", path, err)
		return map[string]any{}
	}
	if layer == nil {
		return map[string]any{}
	}
	return layer
}

// decodeConfig converts a merged untyped layer into the typed schema via
// a YAML round-trip. Keys the schema does not recognize are dropped.
func decodeConfig(merged map[string]any) *SiteConfig {
	data, err := yaml.Marshal(merged)
	if err != nil {
		log.Printf("[CONFIG] Warning: failed to re-marshal merged config: %v", err)
		return &SiteConfig{}
	}
	var cfg SiteConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Printf("[CONFIG] Warning: merged config does not fit schema: %v", err)
		return &SiteConfig{}
	}
	return &cfg
}
