// Package cache provides caches for transliteration model output.
package cache

// TransliterationCache is the interface for model output caching.
type TransliterationCache interface {
	// Get retrieves a cached output. Returns empty string and false if not found or expired.
	Get(key string) (string, bool)

	// Set stores an output in the cache.
	Set(key string, value string) error
}

// Enumerable is implemented by caches whose live entries can be listed.
// Export requires it.
type Enumerable interface {
	TransliterationCache

	// Entries returns all live entries as key-value pairs.
	Entries() (map[string]string, error)
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits   int64
	Misses int64
}

// HitRate returns hits as a fraction of lookups, or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
