package llm

import (
	"sync"
	"time"
)

// cacheEntry represents a cached policy verification verdict.
type cacheEntry struct {
	expiry  time.Time
	verdict VerificationResponse
}

// verificationCache provides thread-safe caching of verification verdicts.
// The same course checked against the same policy always yields the same
// key, so repeated evaluations skip the API entirely.
type verificationCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
}

// newVerificationCache creates a new cache with the specified TTL.
func newVerificationCache(ttl time.Duration) *verificationCache {
	if ttl == 0 {
		ttl = 15 * time.Minute // Default TTL
	}

	cache := &verificationCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// get retrieves a verdict from the cache if it exists and hasn't expired.
func (c *verificationCache) get(key string) (VerificationResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return VerificationResponse{}, false
	}

	if time.Now().After(entry.expiry) {
		return VerificationResponse{}, false
	}

	return entry.verdict, true
}

// set stores a verdict in the cache.
func (c *verificationCache) set(key string, verdict VerificationResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		verdict: verdict,
		expiry:  time.Now().Add(c.ttl),
	}
}

// cleanup periodically removes expired entries.
func (c *verificationCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// size returns the number of entries in the cache.
func (c *verificationCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *verificationCache) Close() {
	close(c.stopCh)
}
