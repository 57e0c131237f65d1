// SPDX-License-Identifier: MIT

// Package cache provides a TTL cache used in front of contact reads.
package cache

import (
	"sync"
	"time"
)

// Cache is a thread-safe key/value cache with per-entry expiration.
type Cache interface {
	// Get retrieves raw bytes from the cache.
	Get(key string) ([]byte, bool)
	// Set stores raw bytes in the cache with the specified TTL.
	Set(key string, value []byte, ttl time.Duration)
	// Delete removes a single key.
	Delete(key string)
	// Clear removes all values from the cache.
	Clear()
	// Stats returns cache statistics.
	Stats() Stats
}

// Stats holds cache performance counters.
type Stats struct {
	Hits   int64
	Misses int64
	Sets   int64
	Size   int
}

type entry struct {
	value   []byte
	expires time.Time
}

func (e entry) expired() bool { return time.Now().After(e.expires) }

// Memory is an in-process implementation of Cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	stats   Stats
	stop    chan struct{}
}

// NewMemory creates an in-memory cache. If cleanupInterval is positive, a
// janitor goroutine evicts expired entries until Stop is called.
func NewMemory(cleanupInterval time.Duration) *Memory {
	c := &Memory{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.janitor(cleanupInterval)
	}
	return c
}

// Get retrieves a value from the cache.
func (c *Memory) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.expired() {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return e.value, true
}

// Set stores a value in the cache.
func (c *Memory) Set(key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expires: time.Now().Add(ttl)}
	c.stats.Sets++
}

// Delete removes a value from the cache.
func (c *Memory) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all values from the cache.
func (c *Memory) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Stats returns cache statistics.
func (c *Memory) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Size = len(c.entries)
	return s
}

// Stop terminates the janitor goroutine.
func (c *Memory) Stop() {
	close(c.stop)
}

func (c *Memory) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			for k, e := range c.entries {
				if e.expired() {
					delete(c.entries, k)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

// Disabled is a cache that stores nothing.
type Disabled struct{}

func (Disabled) Get(string) ([]byte, bool) { return nil, false }

func (Disabled) Set(string, []byte, time.Duration) {}

func (Disabled) Delete(string) {}

func (Disabled) Clear() {}

func (Disabled) Stats() Stats { return Stats{} }
