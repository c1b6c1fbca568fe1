// Package jd provides job description distillation and term extraction with
// content-hash caching of the expensive LLM calls.
package jd

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Cache memoizes derived JD artifacts by content hash. Implementations must
// be safe for concurrent use: multiple bullets in one session typically
// share the same JD text and may be processed in parallel.
type Cache interface {
	// Get returns the cached value for key and whether it was present.
	Get(key string) (string, bool)
	// Put stores value under key. Entries never expire within a process
	// lifetime; a JD hash always maps to the same derived artifact.
	Put(key, value string)
}

// MemoryCache is a mutex-guarded in-memory Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

// Get returns the cached value for key.
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[key]
	return value, ok
}

// Put stores value under key.
func (c *MemoryCache) Put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Hash returns the stable content hash used as the cache key for a JD text.
func Hash(jdText string) string {
	sum := sha256.Sum256([]byte(jdText))
	return hex.EncodeToString(sum[:])
}
