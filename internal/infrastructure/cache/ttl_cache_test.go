package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheReturnsFreshValue(t *testing.T) {
	c := New(time.Minute)

	c.Set("u1:a1", true)

	v, ok := c.Get("u1:a1")
	assert.True(t, ok)
	assert.Equal(t, true, v)
}

func TestCacheMissesAfterTTL(t *testing.T) {
	c := New(30 * time.Millisecond)

	c.Set("u1", "value")
	time.Sleep(40 * time.Millisecond)

	_, ok := c.Get("u1")
	assert.False(t, ok)
}

func TestCacheSetOverwrites(t *testing.T) {
	c := New(time.Minute)

	c.Set("u1", "old")
	c.Set("u1", "new")

	v, _ := c.Get("u1")
	assert.Equal(t, "new", v)
}

func TestCacheInvalidate(t *testing.T) {
	c := New(time.Minute)

	c.Set("u1:a1", true)
	c.Invalidate("u1:a1")

	_, ok := c.Get("u1:a1")
	assert.False(t, ok)
}

func TestCacheInvalidatePrefixPurgesOneUserOnly(t *testing.T) {
	c := New(time.Minute)

	c.Set("u1", "list")
	c.Set("u1:a1", true)
	c.Set("u1:a2", false)
	c.Set("u2:a1", true)

	c.InvalidatePrefix("u1")

	_, ok := c.Get("u1")
	assert.False(t, ok)
	_, ok = c.Get("u1:a1")
	assert.False(t, ok)
	_, ok = c.Get("u1:a2")
	assert.False(t, ok)

	v, ok := c.Get("u2:a1")
	assert.True(t, ok)
	assert.Equal(t, true, v)
}

func TestCacheClear(t *testing.T) {
	c := New(time.Minute)

	c.Set("u1", 1)
	c.Set("u2", 2)
	c.Clear()

	assert.Equal(t, 0, c.Len())
}
