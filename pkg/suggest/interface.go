// Package suggest is the core: a character trie over the vocabulary, an
// iterative subtree walk that enumerates completions, and an optional bounded,
// time-expiring cache of finished results.
package suggest

// Suggester is the query surface shared by the CLI, the IPC server and the
// HTTP API.
type Suggester interface {
	// FindSuggestions returns up to maxResults terms extending prefix,
	// sorted lexicographically when sorted is set.
	FindSuggestions(prefix string, maxResults int, sorted bool) ([]string, error)

	// HasCache reports whether results are cached.
	HasCache() bool

	// CacheSize returns the live entry count, -1 without a cache.
	CacheSize() int

	// CacheSnapshot copies the cache contents.
	CacheSnapshot() map[string][]string

	// ClearCache drops every cached result.
	ClearCache()

	// Stats returns counters about the loaded vocabulary.
	Stats() map[string]int

	// Options returns the configuration the engine was built with.
	Options() Options
}

var _ Suggester = (*Engine)(nil)
