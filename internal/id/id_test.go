package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		got, err := Generate("test")
		require.NoError(t, err)
		assert.False(t, ids[got], "ID should be unique: %s", got)
		ids[got] = true
	}

	assert.Len(t, ids, count)
}

func TestHighlight_Format(t *testing.T) {
	got, err := Highlight()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "hl-"))
	// NanoID default is 21 characters.
	assert.Len(t, strings.TrimPrefix(got, "hl-"), 21)
}
