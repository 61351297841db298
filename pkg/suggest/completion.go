package suggest

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

// Builder collects the vocabulary of an Engine. It is the "building" state:
// terms go in, no queries come out. Build moves it to the queryable state.
type Builder struct {
	opts  Options
	index *Index
	added int
	err   error
	built bool
}

// NewBuilder starts an empty vocabulary with the given options.
func NewBuilder(opts Options) *Builder {
	return &Builder{
		opts:  opts,
		index: NewIndex(opts.PrebuiltTerms),
	}
}

// Add inserts terms in order. The first absent term stops the build; later
// calls and Build report the same error.
func (b *Builder) Add(terms ...string) *Builder {
	for _, term := range terms {
		if !b.add(term) {
			break
		}
	}
	return b
}

// AddSeq inserts every term produced by seq. A nil seq is an absent
// vocabulary and fails the build.
func (b *Builder) AddSeq(seq iter.Seq[string]) *Builder {
	if b.err != nil {
		return b
	}
	if seq == nil {
		b.err = fmt.Errorf("nil term sequence: %w", ErrInvalidInput)
		return b
	}
	for term := range seq {
		if !b.add(term) {
			break
		}
	}
	return b
}

func (b *Builder) add(term string) bool {
	if b.err != nil {
		return false
	}
	if b.built {
		b.err = ErrIndexSealed
		return false
	}
	if b.opts.IgnoreCase {
		term = foldCase(term)
	}
	if err := b.index.Insert(term); err != nil {
		b.err = fmt.Errorf("term %d: %w", b.added, err)
		return false
	}
	b.added++
	return true
}

// Build seals the vocabulary and returns the queryable engine.
func (b *Builder) Build() (*Engine, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.built {
		return nil, ErrIndexSealed
	}

	cache, err := NewResultCache(b.opts.Cache)
	if err != nil {
		return nil, err
	}

	b.built = true
	b.index.Seal()
	log.Debugf("Built index: terms=[%d], nodes=[%d], cache=[%t]",
		b.index.Len(), b.index.Nodes(), b.opts.Cache != nil)

	return &Engine{
		opts:  b.opts,
		index: b.index,
		cache: cache,
	}, nil
}

// From builds an engine from a fixed list of terms.
func From(opts Options, terms ...string) (*Engine, error) {
	return NewBuilder(opts).Add(terms...).Build()
}

// FromSeq builds an engine from any sequence of terms.
func FromSeq(opts Options, seq iter.Seq[string]) (*Engine, error) {
	return NewBuilder(opts).AddSeq(seq).Build()
}

// Engine answers prefix queries over a sealed index. Queries never touch the
// trie, so they are safe to run concurrently; the cache serializes itself.
type Engine struct {
	opts  Options
	index *Index
	cache ResultCache
	group singleflight.Group
}

// Suggest returns every completion of prefix, sorted.
func (e *Engine) Suggest(prefix string) ([]string, error) {
	return e.FindSuggestions(prefix, Unbounded, true)
}

// SuggestN returns at most maxResults completions of prefix, sorted.
func (e *Engine) SuggestN(prefix string, maxResults int) ([]string, error) {
	return e.FindSuggestions(prefix, maxResults, true)
}

// SuggestOrdered returns every completion of prefix, sorted only if asked.
func (e *Engine) SuggestOrdered(prefix string, sorted bool) ([]string, error) {
	return e.FindSuggestions(prefix, Unbounded, sorted)
}

// FindSuggestions returns the terms that extend prefix, never prefix itself.
// Sorting happens before truncation, so a capped sorted result is the head of
// the full sorted one.
//
// The cache is keyed by the normalized prefix alone: a hit returns whatever
// shape the first query for that prefix produced, regardless of maxResults
// and sorted.
func (e *Engine) FindSuggestions(prefix string, maxResults int, sorted bool) ([]string, error) {
	if !utf8.ValidString(prefix) {
		return nil, fmt.Errorf("prefix %q: %w", prefix, ErrInvalidInput)
	}
	if maxResults < 0 {
		return nil, fmt.Errorf("max results %d: %w", maxResults, ErrInvalidInput)
	}
	if e.opts.IgnoreCase {
		prefix = foldCase(prefix)
	}

	if !e.HasCache() {
		return e.lookup(prefix, maxResults, sorted), nil
	}
	if cached, ok := e.cache.Get(prefix); ok {
		return cached, nil
	}

	// Concurrent misses on one prefix share a single walk and a single write.
	v, _, _ := e.group.Do(prefix, func() (any, error) {
		results := e.lookup(prefix, maxResults, sorted)
		e.cache.Put(prefix, results)
		return results, nil
	})
	return slices.Clone(v.([]string)), nil
}

// lookup walks the trie for prefix. The walk yields terms in lexicographic
// order, so it can stop at maxResults whether or not the caller sorts.
func (e *Engine) lookup(prefix string, maxResults int, sorted bool) []string {
	n, ok := e.index.Locate(prefix)
	if !ok {
		return []string{}
	}

	limit := maxResults
	if limit == Unbounded {
		limit = -1
	}
	results := e.index.enumerate(n, prefix, limit)

	if sorted {
		slices.Sort(results)
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

// HasCache reports whether a result cache is configured.
func (e *Engine) HasCache() bool {
	return e.opts.Cache != nil
}

// CacheSize returns the number of live cache entries, or -1 without a cache.
func (e *Engine) CacheSize() int {
	if !e.HasCache() {
		return -1
	}
	return e.cache.Len()
}

// CacheSnapshot copies the live cache entries; nil without a cache.
func (e *Engine) CacheSnapshot() map[string][]string {
	if !e.HasCache() {
		return nil
	}
	return e.cache.Snapshot()
}

// ClearCache drops every cached result.
func (e *Engine) ClearCache() {
	e.cache.Purge()
}

// Options returns the configuration the engine was built with.
func (e *Engine) Options() Options {
	return e.opts
}

// Stats returns counters about the index and the cache.
func (e *Engine) Stats() map[string]int {
	return map[string]int{
		"terms":     e.index.Len(),
		"nodes":     e.index.Nodes(),
		"cacheSize": e.CacheSize(),
	}
}

// foldCase is the canonical case used when IgnoreCase is set.
func foldCase(s string) string {
	return strings.ToLower(s)
}
