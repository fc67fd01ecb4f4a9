package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewCache_PutAndGet(t *testing.T) {
	c := NewViewCache()
	key := ThreadListKey("u1")

	_, ok := c.Get(key)
	assert.False(t, ok)

	version := c.Version(key)
	assert.True(t, c.Put(key, "view", version))

	value, ok := c.Get(key)
	assert.True(t, ok)
	assert.Equal(t, "view", value)
}

func TestViewCache_StaleFillRejected(t *testing.T) {
	c := NewViewCache()
	key := PreferencesKey("u1")

	// A slow reader snapshots the version, then the data changes underneath.
	version := c.Version(key)
	c.Invalidate(key)

	assert.False(t, c.Put(key, "stale view", version))
	_, ok := c.Get(key)
	assert.False(t, ok)

	// A fill computed after the invalidation lands.
	fresh := c.Version(key)
	assert.True(t, c.Put(key, "fresh view", fresh))
	value, _ := c.Get(key)
	assert.Equal(t, "fresh view", value)
}

func TestViewCache_InvalidateDropsEntry(t *testing.T) {
	c := NewViewCache()
	key := AlertListKey()

	assert.True(t, c.Put(key, "alerts", c.Version(key)))
	c.Invalidate(key)

	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestViewCache_InvalidateMultipleKeys(t *testing.T) {
	c := NewViewCache()
	a := ThreadListKey("u1")
	b := ThreadListKey("u2")

	assert.True(t, c.Put(a, 1, c.Version(a)))
	assert.True(t, c.Put(b, 2, c.Version(b)))

	c.Invalidate(a, b)

	_, ok := c.Get(a)
	assert.False(t, ok)
	_, ok = c.Get(b)
	assert.False(t, ok)
}

func TestViewCache_KeysAreIndependent(t *testing.T) {
	c := NewViewCache()
	a := ThreadListKey("u1")
	b := ThreadListKey("u2")

	assert.True(t, c.Put(a, 1, c.Version(a)))
	assert.True(t, c.Put(b, 2, c.Version(b)))

	c.Invalidate(a)

	value, ok := c.Get(b)
	assert.True(t, ok)
	assert.Equal(t, 2, value)
}
