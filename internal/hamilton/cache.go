package hamilton

import "sync"

type size struct {
	w, h int
}

type entry struct {
	cycle *Cycle
	err   error
}

// Cache keeps one cycle per board size. The host owns it and hands it to
// every AI engine that should share cycles; it is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[size]entry
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[size]entry)}
}

// Get returns the cycle for width x height, building it on first use.
// Construction errors are remembered so bad sizes fail fast afterwards.
func (c *Cache) Get(width, height int) (*Cycle, error) {
	key := size{w: width, h: height}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return e.cycle, e.err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.cycle, e.err
	}

	cycle, err := New(width, height)
	c.entries[key] = entry{cycle: cycle, err: err}
	return cycle, err
}

// Len returns the number of cached sizes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
