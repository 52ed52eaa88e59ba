package db

import (
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache is a ristretto cache that also remembers which keys it has stored, so a
// whole namespace can be cleared without flushing unrelated entries. Keys that
// ristretto has dropped are forgotten on the next miss or sweep.
type Cache[V any] struct {
	store    *ristretto.Cache[string, V]
	ttl      time.Duration
	maxItems int64

	mu   sync.Mutex
	keys map[string]struct{}
}

func NewCache[V any](maxItems int64, ttl time.Duration) (*Cache[V], error) {
	store, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: maxItems * 10, // number of keys to track frequency of
		MaxCost:     maxItems,
		BufferItems: 64, // number of keys per Get buffer
		// Cost counts entries, not bytes.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	return &Cache[V]{store: store, ttl: ttl, maxItems: maxItems, keys: make(map[string]struct{})}, nil
}

func (c *Cache[V]) Get(key string) (V, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		c.mu.Lock()
		delete(c.keys, key)
		c.mu.Unlock()
	}
	return v, ok
}

// Set stores value with cost 1. Ristretto applies writes asynchronously; Wait
// makes the value visible to the next Get. Writes ristretto drops or refuses
// to admit are not tracked.
func (c *Cache[V]) Set(key string, value V) {
	var accepted bool
	if c.ttl > 0 {
		accepted = c.store.SetWithTTL(key, value, 1, c.ttl)
	} else {
		accepted = c.store.Set(key, value, 1)
	}
	if !accepted {
		return
	}
	c.store.Wait()
	if _, ok := c.store.Get(key); !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[key] = struct{}{}
	if int64(len(c.keys)) > 2*c.maxItems {
		c.sweepLocked()
	}
}

func (c *Cache[V]) Del(key string) {
	c.mu.Lock()
	delete(c.keys, key)
	c.mu.Unlock()
	c.store.Del(key)
}

// Clear removes every key this cache has stored and returns how many live
// entries there were.
func (c *Cache[V]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key := range c.keys {
		if _, ok := c.store.Get(key); ok {
			n++
		}
		c.store.Del(key)
	}
	c.keys = make(map[string]struct{})
	return n
}

func (c *Cache[V]) Close() {
	c.store.Close()
}

// sweepLocked forgets keys that have expired or been evicted. c.mu must be held.
func (c *Cache[V]) sweepLocked() {
	for key := range c.keys {
		if _, ok := c.store.Get(key); !ok {
			delete(c.keys, key)
		}
	}
}

func (c *Cache[V]) tracked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys)
}
