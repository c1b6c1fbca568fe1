package jd

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache_GetPut(t *testing.T) {
	cache := NewMemoryCache()

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	cache.Put("key", "value")
	value, ok := cache.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "value", value)
}

func TestMemoryCache_Overwrite(t *testing.T) {
	cache := NewMemoryCache()
	cache.Put("key", "first")
	cache.Put("key", "second")

	value, _ := cache.Get("key")
	assert.Equal(t, "second", value)
	assert.Equal(t, 1, cache.Len())
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := NewMemoryCache()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			cache.Put(fmt.Sprintf("key-%d", n%10), "value")
		}(i)
		go func(n int) {
			defer wg.Done()
			cache.Get(fmt.Sprintf("key-%d", n%10))
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Len(), 10)
}

func TestHash_StableAndDistinct(t *testing.T) {
	assert.Equal(t, Hash("same text"), Hash("same text"))
	assert.NotEqual(t, Hash("text a"), Hash("text b"))
	assert.Len(t, Hash("anything"), 64)
}
