package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_PrefixedFormat(t *testing.T) {
	got, err := Generate(PrefixCategory)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "cat-"))
	assert.Greater(t, len(got), len("cat-"))
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		got, err := Generate(PrefixBookmark)
		require.NoError(t, err)
		assert.False(t, seen[got], "duplicate id %s", got)
		seen[got] = true
	}
}

func TestMustGenerate(t *testing.T) {
	got := MustGenerate(PrefixTag)
	assert.True(t, strings.HasPrefix(got, "tag-"))
}
