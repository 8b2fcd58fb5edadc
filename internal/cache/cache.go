package cache

import (
	"context"
	"creditcounter/internal/components/chrono"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is a cache whose entries expire a fixed duration after they were stored.
// Concurrent loads of the same key are coalesced into one.
type TTL[V any] struct {
	ttl   time.Duration
	clock chrono.API

	mu      sync.Mutex
	entries map[string]entry[V]
	group   singleflight.Group
}

func NewTTL[V any](ttl time.Duration, clock chrono.API) *TTL[V] {
	return &TTL[V]{
		ttl:     ttl,
		clock:   clock,
		entries: map[string]entry[V]{},
	}
}

// Get returns the value stored under key if it hasn't expired yet.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.clock.Now().Add(c.ttl)}
}

func (c *TTL[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *TTL[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]entry[V]{}
}

// Len counts entries that haven't expired yet.
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	n := 0
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

// GetOrLoad returns the cached value, or calls load and caches its result. cached reports
// whether the value came from the cache. Errors are not cached.
//
// Concurrent callers for the same key share one load. The load does not see the callers'
// cancellation, each caller stops waiting when its own ctx is done and the load still
// fills the cache for the others.
func (c *TTL[V]) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (V, error)) (value V, cached bool, err error) {
	value, ok := c.Get(key)
	if ok {
		return value, true, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// another load may have finished between Get and DoChan
		value, ok := c.Get(key)
		if ok {
			return value, nil
		}
		value, err := load(loadCtx)
		if err != nil {
			return value, err
		}
		c.Set(key, value)
		return value, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, false, res.Err
		}
		return res.Val.(V), false, nil
	}
}
