// Package sitekey canonicalizes site identifiers into the cache key used
// across every configuration and discovery layer. A key may arrive as a
// brand name ("Ford"), a bare domain ("www.ford.com"), or a full URL.
package sitekey

import (
	"net/url"
	"strings"
)

// Normalize lowercases a site identifier, strips a leading "www." and a
// trailing slash. It is idempotent: normalizing an already-normalized key
// returns it unchanged. Empty input yields an empty string.
func Normalize(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	for strings.HasPrefix(key, "www.") {
		key = strings.TrimPrefix(key, "www.")
	}
	key = strings.TrimSuffix(key, "/")
	return key
}

// ExtractDomain parses scheme+host out of a URL and normalizes the host.
// Inputs without a scheme are treated as bare domains: the leading path
// segment is taken as the host.
func ExtractDomain(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}

	if strings.Contains(rawURL, "://") {
		if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
			return Normalize(u.Host)
		}
	}

	// No scheme: treat everything up to the first slash as the domain.
	host := rawURL
	if idx := strings.IndexAny(host, "/?#"); idx >= 0 {
		host = host[:idx]
	}
	return Normalize(host)
}
