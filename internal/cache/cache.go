package cache

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// CachedRender is one rendered piece of text
type CachedRender struct {
	Output    string
	Timestamp time.Time
}

// GenerateCacheKey derives a key from the source text and render parameters
func GenerateCacheKey(content string, width int, style string) string {
	h := sha256.New()
	h.Write([]byte(style))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(width)))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// RenderCache memoizes expensive renders such as markdown to ANSI.
type RenderCache struct {
	entries sync.Map
	hits    atomic.Int64
}

// Load returns the cached output for key.
func (c *RenderCache) Load(key string) (string, bool) {
	val, ok := c.entries.Load(key)
	if !ok {
		return "", false
	}
	c.hits.Add(1)
	return val.(CachedRender).Output, true
}

// Store saves output under key.
func (c *RenderCache) Store(key, output string) {
	c.entries.Store(key, CachedRender{Output: output, Timestamp: time.Now()})
}

// GetOrRender returns the cached output or calls render and caches a successful result.
func (c *RenderCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if out, ok := c.Load(key); ok {
		return out, nil
	}
	out, err := render()
	if err != nil {
		return "", err
	}
	c.Store(key, out)
	return out, nil
}

// Hits reports how many lookups were served from the cache.
func (c *RenderCache) Hits() int64 {
	return c.hits.Load()
}

// Clear drops every entry, e.g. after the terminal is resized.
func (c *RenderCache) Clear() {
	c.entries.Range(func(k, _ any) bool {
		c.entries.Delete(k)
		return true
	})
}
