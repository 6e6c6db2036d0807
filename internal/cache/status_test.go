package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(ttl time.Duration) (*StatusCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)}
	return NewStatusCache(ttl, WithClock(clock.Now)), clock
}

func TestStatusCache_GetSet(t *testing.T) {
	c, _ := newTestCache(5 * time.Minute)

	_, ok := c.Get("user1")
	assert.False(t, ok)

	c.Set("user1", IntegrationStatus{MailConnected: true})
	status, ok := c.Get("user1")
	require.True(t, ok)
	assert.True(t, status.MailConnected)
	assert.False(t, status.CalendarConnected)
}

func TestStatusCache_LazyExpiry(t *testing.T) {
	ttl := 5 * time.Minute
	c, clock := newTestCache(ttl)

	c.Set("user1", IntegrationStatus{CalendarConnected: true})

	clock.Advance(ttl - time.Millisecond)
	_, ok := c.Get("user1")
	assert.True(t, ok, "entry just under TTL must be present")

	clock.Advance(2 * time.Millisecond)
	_, ok = c.Get("user1")
	assert.False(t, ok, "entry past TTL must be treated as absent")

	// Lazy expiry leaves the entry in place for the sweep.
	assert.Equal(t, 1, c.Len())
}

func TestStatusCache_CleanupEvictsExpired(t *testing.T) {
	c, clock := newTestCache(5 * time.Minute)

	c.Set("stale", IntegrationStatus{})
	clock.Advance(6 * time.Minute)
	c.Set("fresh", IntegrationStatus{MailConnected: true})

	evicted := c.Cleanup()
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("fresh")
	assert.True(t, ok)
}

func TestStatusCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(5 * time.Minute)

	c.Set("user1", IntegrationStatus{MailConnected: true})
	c.Invalidate("user1")

	_, ok := c.Get("user1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestStatusCache_SetReplacesWholesale(t *testing.T) {
	c, _ := newTestCache(5 * time.Minute)

	c.Set("user1", IntegrationStatus{MailConnected: true, CalendarConnected: true})
	c.Set("user1", IntegrationStatus{MailConnected: false, CalendarConnected: true})

	status, ok := c.Get("user1")
	require.True(t, ok)
	assert.False(t, status.MailConnected)
	assert.True(t, status.CalendarConnected)
}
