package tokens

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	c, err := NewCounter()
	require.NoError(t, err)
	n, err := c.Count("")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = c.Count("hello world")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestTruncate(t *testing.T) {
	c, err := NewCounter()
	require.NoError(t, err)
	text := strings.Repeat("hello world ", 100)

	out, n, err := c.Truncate(text, 0)
	require.NoError(t, err)
	assert.Equal(t, text, out)
	assert.Greater(t, n, 100)

	out, n, err = c.Truncate(text, 10)
	require.NoError(t, err)
	assert.Greater(t, n, 10)
	assert.True(t, strings.HasPrefix(text, out))
	m, err := c.Count(out)
	require.NoError(t, err)
	assert.Equal(t, 10, m)

	doc := strings.Repeat("日本語の文書を要約する。", 40)
	for _, max := range []int{1, 2, 3, 7} {
		out, _, err = c.Truncate(doc, max)
		require.NoError(t, err)
		assert.True(t, utf8.ValidString(out), "max=%d produced %q", max, out)
		assert.True(t, strings.HasPrefix(doc, out), "max=%d", max)
	}

	short := "just a few words"
	out, _, err = c.Truncate(short, 1000)
	require.NoError(t, err)
	assert.Equal(t, short, out)
}
