package utils

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixRules(t *testing.T) {
	rules := PrefixRules{MinLen: 2, MaxLen: 4}
	tests := []struct {
		prefix string
		want   error
	}{
		{"a", ErrPrefixTooShort},
		{"ab", nil},
		{"äöüß", nil},
		{"abcde", ErrPrefixTooLong},
	}
	for _, tt := range tests {
		err := rules.Check(tt.prefix)
		if tt.want == nil {
			assert.NoError(t, err, tt.prefix)
			continue
		}
		assert.True(t, errors.Is(err, tt.want), "%q: %v", tt.prefix, err)
	}

	assert.NoError(t, PrefixRules{}.Check(""))
	assert.ErrorIs(t, PrefixRules{Filter: true}.Check("!!"), ErrPrefixFiltered)
}

func TestIsValidInput(t *testing.T) {
	assert.True(t, IsValidInput("hello"))
	assert.True(t, IsValidInput("co-op"))
	assert.True(t, IsValidInput("r2d2"))
	assert.False(t, IsValidInput(""))
	assert.False(t, IsValidInput("1234"))
	assert.False(t, IsValidInput("a$b"))
	assert.False(t, IsValidInput("www"))
	assert.False(t, IsRepetitive("ww"))
}

func TestRankList(t *testing.T) {
	assert.Empty(t, RankList(0))
	assert.Equal(t, []uint16{1, 2, 3}, RankList(3))

	ranks := RankList(math.MaxUint16 + 5)
	assert.Equal(t, uint16(math.MaxUint16), ranks[len(ranks)-1])
}

func TestSaveAndLoadTOML(t *testing.T) {
	type section struct {
		Name string `toml:"name"`
		Size int    `toml:"size"`
	}
	path := filepath.Join(t.TempDir(), "c.toml")
	require.NoError(t, SaveTOMLFile(map[string]section{"s": {Name: "x", Size: 3}}, path))

	var out map[string]section
	require.NoError(t, LoadTOMLFile(path, &out))
	assert.Equal(t, section{Name: "x", Size: 3}, out["s"])

	raw, err := ParseTOMLWithRecovery(path)
	require.NoError(t, err)
	s, ok := ExtractSection(raw, "s")
	require.True(t, ok)
	size, ok := ExtractInt64(s, "size")
	assert.True(t, ok)
	assert.Equal(t, 3, size)
	_, ok = ExtractBool(s, "name")
	assert.False(t, ok)
}

func TestResolveFile(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(abs, []byte("a\n"), 0o644))

	assert.Equal(t, abs, ResolveFile(abs))
	assert.Equal(t, "", ResolveFile(""))
	assert.Equal(t, GetAbsolutePath("missing.txt"), ResolveFile("missing.txt"))
	assert.True(t, CheckDirStatus(filepath.Join(dir, "sub")).Writable)
}
