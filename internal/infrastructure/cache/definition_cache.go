// Package cache provides in-process caching for counter configuration data.
package cache

import (
	"context"
	"sync"

	"numera/internal/domain/counters"
	"numera/pkg/logger"
)

// DefinitionCache is a read-through decorator over a counters.DefinitionSource.
// Definition rows are configuration data that changes rarely while hot
// counters resolve them on every allocation, so hits skip the database.
//
// Negative results are not cached: a missing definition is an operator
// error that should be observable immediately after fixing the data.
type DefinitionCache struct {
	src counters.DefinitionSource

	mu     sync.RWMutex
	byCode map[string]*counters.Definition
}

// Ensure compile-time interface compliance.
var _ counters.DefinitionSource = (*DefinitionCache)(nil)

// NewDefinitionCache wraps src with an in-process cache.
func NewDefinitionCache(src counters.DefinitionSource) *DefinitionCache {
	return &DefinitionCache{
		src:    src,
		byCode: make(map[string]*counters.Definition),
	}
}

// Get returns the cached definition, loading it through the source on miss.
func (c *DefinitionCache) Get(ctx context.Context, code string) (*counters.Definition, error) {
	c.mu.RLock()
	def, ok := c.byCode[code]
	c.mu.RUnlock()
	if ok {
		return def, nil
	}

	def, err := c.src.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.byCode[code] = def
	c.mu.Unlock()

	logger.Debug(ctx, "counter definition cached", "counter", code)
	return def, nil
}

// Invalidate drops one definition from the cache, e.g. after an edit.
func (c *DefinitionCache) Invalidate(code string) {
	c.mu.Lock()
	delete(c.byCode, code)
	c.mu.Unlock()
}

// InvalidateAll drops every cached definition.
func (c *DefinitionCache) InvalidateAll() {
	c.mu.Lock()
	c.byCode = make(map[string]*counters.Definition)
	c.mu.Unlock()
}

// Len returns the number of cached definitions.
func (c *DefinitionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byCode)
}
