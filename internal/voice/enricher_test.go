package voice

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxa-platform/voxa/internal/cache"
	"github.com/voxa-platform/voxa/internal/intent"
)

type fakeStatusProvider struct {
	mail        bool
	calendar    bool
	mailErr     error
	calendarErr error
	calls       atomic.Int32
}

func (f *fakeStatusProvider) MailStatus(_ context.Context, _ string) (bool, error) {
	f.calls.Add(1)
	return f.mail, f.mailErr
}

func (f *fakeStatusProvider) CalendarStatus(_ context.Context, _ string) (bool, error) {
	f.calls.Add(1)
	return f.calendar, f.calendarErr
}

type fakeContextProvider struct {
	mailSummary     string
	calendarSummary string
	mailErr         error
	calendarErr     error
	calls           atomic.Int32
}

func (f *fakeContextProvider) MailSummary(_ context.Context, _ string, _ int) (string, error) {
	f.calls.Add(1)
	return f.mailSummary, f.mailErr
}

func (f *fakeContextProvider) CalendarSummary(_ context.Context, _ string, _ int) (string, error) {
	f.calls.Add(1)
	return f.calendarSummary, f.calendarErr
}

func newTestEnricher(status *fakeStatusProvider, summaries *fakeContextProvider) (*Enricher, *cache.StatusCache) {
	sc := cache.NewStatusCache(5 * time.Minute)
	return NewEnricher(sc, status, summaries, 5, time.Second), sc
}

func TestEnricher_ZeroCostPathWithoutNeeds(t *testing.T) {
	status := &fakeStatusProvider{}
	summaries := &fakeContextProvider{}
	e, _ := newTestEnricher(status, summaries)

	enr := e.Enrich(context.Background(), "user1", intent.Classification{
		NeedsWebSearch: true,
		Confidence:     intent.ConfidenceMedium,
	})

	assert.Empty(t, enr.Context)
	assert.Zero(t, status.calls.Load(), "no status calls on the zero-cost path")
	assert.Zero(t, summaries.calls.Load(), "no summary calls on the zero-cost path")
}

func TestEnricher_FetchesBothWhenConnected(t *testing.T) {
	status := &fakeStatusProvider{mail: true, calendar: true}
	summaries := &fakeContextProvider{
		mailSummary:     "3 nieprzeczytane wiadomości",
		calendarSummary: "Jutro: spotkanie o 15:00",
	}
	e, _ := newTestEnricher(status, summaries)

	enr := e.Enrich(context.Background(), "user1", intent.Classification{
		NeedsEmailIntent:    true,
		NeedsCalendarIntent: true,
		Confidence:          intent.ConfidenceHigh,
	})

	assert.True(t, enr.MailConnected)
	assert.True(t, enr.CalendarConnected)
	assert.Contains(t, enr.Context, "3 nieprzeczytane wiadomości")
	assert.Contains(t, enr.Context, "Jutro: spotkanie o 15:00")
	assert.NotContains(t, enr.Context, calendarNotConnectedAdvisory)
}

func TestEnricher_PartialFailureIsolated(t *testing.T) {
	status := &fakeStatusProvider{mail: true, calendar: true}
	summaries := &fakeContextProvider{
		mailErr:         errors.New("mailbox unavailable"),
		calendarSummary: "Jutro: spotkanie o 15:00",
	}
	e, _ := newTestEnricher(status, summaries)

	enr := e.Enrich(context.Background(), "user1", intent.Classification{
		NeedsEmailIntent:    true,
		NeedsCalendarIntent: true,
		Confidence:          intent.ConfidenceHigh,
	})

	assert.Contains(t, enr.Context, "Jutro: spotkanie o 15:00")
	assert.NotContains(t, enr.Context, mailSummaryHeader,
		"failed mailbox fetch must leave no mailbox section")
}

func TestEnricher_CalendarAdvisoryWhenNotConnected(t *testing.T) {
	status := &fakeStatusProvider{mail: false, calendar: false}
	summaries := &fakeContextProvider{}
	e, _ := newTestEnricher(status, summaries)

	enr := e.Enrich(context.Background(), "user1", intent.Classification{
		NeedsCalendarIntent: true,
		Confidence:          intent.ConfidenceHigh,
	})

	assert.Contains(t, enr.Context, calendarNotConnectedAdvisory)
	assert.Zero(t, summaries.calls.Load(), "no summary fetch for a disconnected integration")
}

func TestEnricher_NoAdvisoryWhenCalendarNotNeeded(t *testing.T) {
	status := &fakeStatusProvider{mail: true, calendar: false}
	summaries := &fakeContextProvider{mailSummary: "pusta skrzynka"}
	e, _ := newTestEnricher(status, summaries)

	enr := e.Enrich(context.Background(), "user1", intent.Classification{
		NeedsEmailIntent: true,
		Confidence:       intent.ConfidenceHigh,
	})

	assert.NotContains(t, enr.Context, calendarNotConnectedAdvisory)
}

func TestEnricher_StatusCachedAfterFetch(t *testing.T) {
	status := &fakeStatusProvider{mail: true, calendar: true}
	summaries := &fakeContextProvider{mailSummary: "ok", calendarSummary: "ok"}
	e, sc := newTestEnricher(status, summaries)

	cls := intent.Classification{NeedsEmailIntent: true, Confidence: intent.ConfidenceHigh}

	e.Enrich(context.Background(), "user1", cls)
	require.EqualValues(t, 2, status.calls.Load())

	cached, ok := sc.Get("user1")
	require.True(t, ok)
	assert.True(t, cached.MailConnected)

	// Second call answers status from the cache.
	e.Enrich(context.Background(), "user1", cls)
	assert.EqualValues(t, 2, status.calls.Load())
}

func TestEnricher_FailedStatusFetchNotCached(t *testing.T) {
	status := &fakeStatusProvider{calendar: true, mailErr: errors.New("status api down")}
	summaries := &fakeContextProvider{}
	e, sc := newTestEnricher(status, summaries)

	enr := e.Enrich(context.Background(), "user1", intent.Classification{
		NeedsEmailIntent: true,
		Confidence:       intent.ConfidenceHigh,
	})

	assert.False(t, enr.MailConnected, "failed fetch reads as not connected")
	_, ok := sc.Get("user1")
	assert.False(t, ok, "failures must not be cached")
}
