package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCacheKey(t *testing.T) {
	a := GenerateCacheKey("A **cat**", 80, "dark")
	assert.Len(t, a, 64)
	assert.Equal(t, a, GenerateCacheKey("A **cat**", 80, "dark"))
	assert.NotEqual(t, a, GenerateCacheKey("A **cat**", 81, "dark"))
	assert.NotEqual(t, a, GenerateCacheKey("A **cat**", 80, "light"))
	assert.NotEqual(t, a, GenerateCacheKey("A **dog**", 80, "dark"))
}

func TestGetOrRender(t *testing.T) {
	var c RenderCache
	calls := 0
	render := func() (string, error) {
		calls++
		return "rendered", nil
	}

	out, err := c.GetOrRender("k", render)
	require.NoError(t, err)
	assert.Equal(t, "rendered", out)

	out, err = c.GetOrRender("k", render)
	require.NoError(t, err)
	assert.Equal(t, "rendered", out)
	assert.Equal(t, 1, calls)
	assert.EqualValues(t, 1, c.Hits())
}

func TestGetOrRenderDoesNotCacheErrors(t *testing.T) {
	var c RenderCache
	_, err := c.GetOrRender("k", func() (string, error) { return "", errors.New("boom") })
	assert.Error(t, err)

	_, ok := c.Load("k")
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	var c RenderCache
	c.Store("a", "1")
	c.Store("b", "2")
	c.Clear()
	_, ok := c.Load("a")
	assert.False(t, ok)
}
