package suggest

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenarioTerms = []string{"us", "usa", "use", "useful", "useless", "user", "usurper", "ux", "util", "utility"}

// loadWords reads the fixture vocabulary, one term per line.
func loadWords(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile("testdata/english_words.txt")
	require.NoError(t, err)

	var words []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			words = append(words, line)
		}
	}
	return words
}

func withCache() *CacheConfig {
	cfg := DefaultCacheConfig()
	return &cfg
}

func allOptions() []Options {
	return []Options{
		{},
		{PrebuiltTerms: true},
		{Cache: withCache()},
		{PrebuiltTerms: true, Cache: withCache()},
		{IgnoreCase: true, PrebuiltTerms: true},
		{IgnoreCase: true, PrebuiltTerms: true, Cache: withCache()},
	}
}

func TestScenario(t *testing.T) {
	for _, opts := range allOptions() {
		t.Run(fmt.Sprintf("ignorecase=%v/prebuilt=%v/cache=%v", opts.IgnoreCase, opts.PrebuiltTerms, opts.Cache != nil), func(t *testing.T) {
			e, err := From(opts, scenarioTerms...)
			require.NoError(t, err)

			got, err := e.Suggest("use")
			require.NoError(t, err)
			assert.Equal(t, []string{"useful", "useless", "user"}, got)

			got, err = e.SuggestN("ut", 1)
			require.NoError(t, err)
			assert.Equal(t, []string{"util"}, got)

			got, err = e.Suggest("zz")
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestEmptyVocabulary(t *testing.T) {
	e, err := From(Options{})
	require.NoError(t, err)

	for _, q := range []func() ([]string, error){
		func() ([]string, error) { return e.Suggest("") },
		func() ([]string, error) { return e.SuggestOrdered("", false) },
		func() ([]string, error) { return e.SuggestN("", 100) },
	} {
		got, err := q()
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestSuggestionsStartWithPrefix(t *testing.T) {
	words := loadWords(t)
	e, err := From(Options{}, words...)
	require.NoError(t, err)

	for _, prefix := range []string{"a", "ab", "b", "co", "cr", "us"} {
		got, err := e.Suggest(prefix)
		require.NoError(t, err)
		require.NotEmpty(t, got, prefix)
		assert.True(t, slices.IsSorted(got), prefix)
		for _, s := range got {
			assert.True(t, strings.HasPrefix(s, prefix), "%q does not start with %q", s, prefix)
			assert.NotEqual(t, prefix, s)
		}
	}
}

func TestEveryProperPrefixFindsTerm(t *testing.T) {
	words := loadWords(t)
	e, err := From(Options{PrebuiltTerms: true}, words...)
	require.NoError(t, err)

	for _, w := range words[:60] {
		for i := 0; i < len(w); i++ {
			got, err := e.Suggest(w[:i])
			require.NoError(t, err)
			assert.Contains(t, got, w, "prefix %q", w[:i])
		}
		got, err := e.Suggest(w)
		require.NoError(t, err)
		assert.NotContains(t, got, w)
	}
}

func TestMaxResultsIsSortedHead(t *testing.T) {
	words := loadWords(t)
	e, err := From(Options{}, words...)
	require.NoError(t, err)

	full, err := e.Suggest("ab")
	require.NoError(t, err)
	require.Greater(t, len(full), 10)

	for _, k := range []int{0, 1, 10, len(full), len(full) + 5} {
		got, err := e.SuggestN("ab", k)
		require.NoError(t, err)
		assert.Len(t, got, min(k, len(full)))
		assert.Equal(t, full[:min(k, len(full))], got)
	}
}

func TestUnsortedResultsMatchPrefix(t *testing.T) {
	words := loadWords(t)
	e, err := From(Options{}, words...)
	require.NoError(t, err)

	sorted, err := e.Suggest("ab")
	require.NoError(t, err)
	unsorted, err := e.SuggestOrdered("ab", false)
	require.NoError(t, err)

	assert.ElementsMatch(t, sorted, unsorted)

	again, err := e.SuggestOrdered("ab", false)
	require.NoError(t, err)
	assert.Equal(t, unsorted, again)
}

func TestIgnoreCase(t *testing.T) {
	e, err := From(Options{IgnoreCase: true}, "ABC", "AB")
	require.NoError(t, err)

	lower, err := e.Suggest("ab")
	require.NoError(t, err)
	mixed, err := e.Suggest("aB")
	require.NoError(t, err)

	assert.Equal(t, []string{"abc"}, lower)
	assert.Equal(t, lower, mixed)

	sensitive, err := From(Options{}, "ABC", "AB")
	require.NoError(t, err)
	got, err := sensitive.Suggest("ab")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIgnoreCaseWithPrebuiltTerms(t *testing.T) {
	for _, cache := range []*CacheConfig{nil, withCache()} {
		e, err := From(Options{IgnoreCase: true, PrebuiltTerms: true, Cache: cache}, "ABC", "AB", "Abd", "aBE", "xyz")
		require.NoError(t, err)

		got, err := e.Suggest("aB")
		require.NoError(t, err)
		assert.Equal(t, []string{"abc", "abd", "abe"}, got)

		got, err = e.Suggest("A")
		require.NoError(t, err)
		assert.Equal(t, []string{"ab", "abc", "abd", "abe"}, got)

		got, err = e.SuggestN("", 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"ab", "abc"}, got)
	}
}

func TestIgnoreCaseCacheKeyIsFolded(t *testing.T) {
	e, err := From(Options{IgnoreCase: true, Cache: withCache()}, "ABC", "AB", "ABD")
	require.NoError(t, err)

	_, err = e.Suggest("AB")
	require.NoError(t, err)
	_, err = e.Suggest("aB")
	require.NoError(t, err)

	assert.Equal(t, 1, e.CacheSize())
	assert.Equal(t, map[string][]string{"ab": {"abc", "abd"}}, e.CacheSnapshot())
}

func TestInvalidInput(t *testing.T) {
	e, err := From(Options{}, scenarioTerms...)
	require.NoError(t, err)

	_, err = e.Suggest("us\xff")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.SuggestN("us", -1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = From(Options{}, "ok", "bad\xfe", "never")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = FromSeq(Options{}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFromSeq(t *testing.T) {
	e, err := FromSeq(Options{}, slices.Values(scenarioTerms))
	require.NoError(t, err)

	got, err := e.Suggest("usu")
	require.NoError(t, err)
	assert.Equal(t, []string{"usurper"}, got)
}

func TestBuilderSealsOnce(t *testing.T) {
	b := NewBuilder(Options{}).Add("a", "ab")
	_, err := b.Build()
	require.NoError(t, err)

	_, err = b.Build()
	assert.ErrorIs(t, err, ErrIndexSealed)

	_, err = b.Add("abc").Build()
	assert.ErrorIs(t, err, ErrIndexSealed)
}

func TestResultsAreFreshCopies(t *testing.T) {
	for _, opts := range allOptions() {
		e, err := From(opts, scenarioTerms...)
		require.NoError(t, err)

		first, err := e.Suggest("use")
		require.NoError(t, err)
		first[0] = "mutated"

		second, err := e.Suggest("use")
		require.NoError(t, err)
		assert.Equal(t, []string{"useful", "useless", "user"}, second)
	}
}

func TestCacheTransparency(t *testing.T) {
	words := loadWords(t)
	cfg := CacheConfig{MaxSize: 8, Policy: ExpireAfterCreate, Expiration: 1, ExpirationUnit: time.Hour}
	e, err := From(Options{Cache: &cfg}, words...)
	require.NoError(t, err)
	require.True(t, e.HasCache())
	assert.Zero(t, e.CacheSize())

	prefixes := []string{"a", "ab", "ac", "b", "bo", "c", "co", "cr", "cu", "u", "zz"}
	for i, p := range prefixes {
		before := e.CacheSize()
		first, err := e.SuggestN(p, 5)
		require.NoError(t, err)
		second, err := e.SuggestN(p, 5)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.LessOrEqual(t, e.CacheSize()-before, 1)
		assert.LessOrEqual(t, e.CacheSize(), cfg.MaxSize)
		assert.Equal(t, min(i+1, cfg.MaxSize), e.CacheSize())
	}
}

func TestCacheHitKeepsFirstShape(t *testing.T) {
	e, err := From(Options{Cache: withCache()}, scenarioTerms...)
	require.NoError(t, err)

	capped, err := e.SuggestN("us", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"usa", "use"}, capped)

	// a different cap on the same prefix reuses the stored result
	again, err := e.SuggestN("us", 100)
	require.NoError(t, err)
	assert.Equal(t, capped, again)

	e.ClearCache()
	full, err := e.SuggestN("us", 100)
	require.NoError(t, err)
	assert.Len(t, full, 6)
}

func TestMissesAreCached(t *testing.T) {
	e, err := From(Options{Cache: withCache()}, scenarioTerms...)
	require.NoError(t, err)

	_, err = e.Suggest("zz")
	require.NoError(t, err)
	snap := e.CacheSnapshot()
	require.Contains(t, snap, "zz")
	assert.Empty(t, snap["zz"])
}

func TestNoCacheIntrospection(t *testing.T) {
	e, err := From(Options{}, scenarioTerms...)
	require.NoError(t, err)

	_, err = e.Suggest("us")
	require.NoError(t, err)
	assert.False(t, e.HasCache())
	assert.Equal(t, -1, e.CacheSize())
	assert.Nil(t, e.CacheSnapshot())

	stats := e.Stats()
	assert.Equal(t, len(scenarioTerms), stats["terms"])
	assert.Equal(t, -1, stats["cacheSize"])
}

func TestConcurrentQueries(t *testing.T) {
	words := loadWords(t)
	cfg := CacheConfig{MaxSize: 4, Policy: ExpireAfterAccess, Expiration: 1, ExpirationUnit: time.Hour}
	e, err := From(Options{Cache: &cfg}, words...)
	require.NoError(t, err)

	reference, err := From(Options{}, words...)
	require.NoError(t, err)

	prefixes := []string{"a", "ab", "b", "c", "co", "cr", "u", "us"}
	want := make(map[string][]string, len(prefixes))
	for _, p := range prefixes {
		want[p], err = reference.SuggestN(p, 10)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				p := prefixes[(i+w)%len(prefixes)]
				got, err := e.SuggestN(p, 10)
				assert.NoError(t, err)
				assert.Equal(t, want[p], got)
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, e.CacheSize(), cfg.MaxSize)
}

func BenchmarkSuggest(b *testing.B) {
	data, err := os.ReadFile("testdata/english_words.txt")
	if err != nil {
		b.Fatal(err)
	}
	e, err := From(Options{}, strings.Fields(string(data))...)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Suggest("c")
	}
}
