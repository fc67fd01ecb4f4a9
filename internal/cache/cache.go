package cache

import "sync"

// Key identifies one cached view.
type Key string

func ThreadListKey(userID string) Key {
	return Key("threads:" + userID)
}

func PreferencesKey(userID string) Key {
	return Key("prefs:" + userID)
}

func AlertListKey() Key {
	return Key("alerts")
}

type entry struct {
	value   any
	version uint64
}

// ViewCache holds read-mostly derived views (thread lists, unread counts,
// preferences). Entries are versioned: a fill computed before an
// invalidation is rejected, so a slow fetch never overwrites newer state.
// Only services write to it.
type ViewCache struct {
	mu       sync.RWMutex
	entries  map[Key]entry
	versions map[Key]uint64
}

func NewViewCache() *ViewCache {
	return &ViewCache{
		entries:  make(map[Key]entry),
		versions: make(map[Key]uint64),
	}
}

func (c *ViewCache) Get(key Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Version snapshots the key's current version. Callers take it before
// fetching and hand it back to Put.
func (c *ViewCache) Version(key Key) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.versions[key]
}

// Put stores a value computed at the given version. It reports false without
// storing when the key was invalidated in the meantime.
func (c *ViewCache) Put(key Key, value any, version uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[key] != version {
		return false
	}
	c.entries[key] = entry{value: value, version: version}
	return true
}

// Invalidate drops the entries and bumps their versions in one critical
// section, so a multi-key invalidation is atomic with respect to readers.
func (c *ViewCache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
		c.versions[key]++
	}
}
