// Package cache holds the two pieces of mutable shared state in the voice
// pipeline: the integration status cache and the response cache. Both are
// safe for concurrent use from multiple in-flight requests; neither needs
// cross-key atomicity.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// IntegrationStatus records which external integrations a user has connected.
type IntegrationStatus struct {
	MailConnected     bool
	CalendarConnected bool
}

type statusEntry struct {
	status    IntegrationStatus
	fetchedAt time.Time
}

// StatusCache is a short-TTL cache of per-user integration status. Expiry is
// two-phase: reads treat stale entries as absent without deleting them, and a
// periodic sweep evicts everything stale to bound memory between reads.
type StatusCache struct {
	mu      sync.RWMutex
	entries map[string]statusEntry
	ttl     time.Duration
	now     func() time.Time
}

// StatusCacheOption configures a StatusCache.
type StatusCacheOption func(*StatusCache)

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) StatusCacheOption {
	return func(c *StatusCache) { c.now = now }
}

// NewStatusCache creates a status cache with the given entry TTL.
func NewStatusCache(ttl time.Duration, opts ...StatusCacheOption) *StatusCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := &StatusCache{
		entries: make(map[string]statusEntry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached status for userID. An entry older than the TTL is
// reported as absent; it is left in place for the next sweep.
func (c *StatusCache) Get(userID string) (IntegrationStatus, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[userID]
	if !ok {
		return IntegrationStatus{}, false
	}
	if c.now().Sub(e.fetchedAt) >= c.ttl {
		return IntegrationStatus{}, false
	}
	return e.status, true
}

// Set stores the status for userID, replacing any previous entry wholesale.
func (c *StatusCache) Set(userID string, status IntegrationStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = statusEntry{status: status, fetchedAt: c.now()}
}

// Invalidate drops the entry for userID, forcing a refetch on the next read.
func (c *StatusCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// Cleanup evicts every expired entry and returns how many were removed.
func (c *StatusCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	evicted := 0
	for userID, e := range c.entries {
		if now.Sub(e.fetchedAt) >= c.ttl {
			delete(c.entries, userID)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of entries, expired ones included.
func (c *StatusCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Run sweeps expired entries every interval until ctx is done.
func (c *StatusCache) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := c.Cleanup(); n > 0 {
				slog.Debug("status cache sweep", "evicted", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
