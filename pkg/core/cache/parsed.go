package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// ParsedCache memoizes parse results keyed by script source. The profile
// string separates results of differently configured parsers.
type ParsedCache struct {
	cache   *Cache
	profile string
}

// NewParsedCache creates a parse result cache
func NewParsedCache(cfg Config, profile string) *ParsedCache {
	return &ParsedCache{
		cache:   New(cfg),
		profile: profile,
	}
}

// SourceKey generates a cache key for a script source
func SourceKey(profile, source string) string {
	hash := sha256.Sum256([]byte(profile + "|" + source))
	return "parsed:" + hex.EncodeToString(hash[:16]) // Use first 16 bytes
}

// Get retrieves a cached parse result
func (c *ParsedCache) Get(source string) (interface{}, bool) {
	return c.cache.Get(SourceKey(c.profile, source))
}

// Set caches a parse result
func (c *ParsedCache) Set(source string, parsed interface{}) {
	c.cache.Set(SourceKey(c.profile, source), parsed)
}

// Invalidate drops the cached result for source
func (c *ParsedCache) Invalidate(source string) {
	c.cache.Delete(SourceKey(c.profile, source))
}

// Stats returns cache statistics
func (c *ParsedCache) Stats() map[string]interface{} {
	hits, misses, rate := c.cache.Stats()

	return map[string]interface{}{
		"parsed_cache_size": c.cache.Size(),
		"parsed_hits":       hits,
		"parsed_misses":     misses,
		"parsed_hit_rate":   rate,
	}
}

// Clear clears the cache
func (c *ParsedCache) Clear() {
	c.cache.Clear()
}

// Close stops the expiry sweep
func (c *ParsedCache) Close() {
	c.cache.Close()
}
