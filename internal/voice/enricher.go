package voice

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/voxa-platform/voxa/internal/cache"
	"github.com/voxa-platform/voxa/internal/intent"
	"github.com/voxa-platform/voxa/internal/metrics"
)

const (
	mailSummaryHeader     = "Podsumowanie skrzynki odbiorczej użytkownika:"
	calendarSummaryHeader = "Nadchodzące wydarzenia z kalendarza użytkownika:"

	// Emitted only when the calendar is classified as needed but not
	// connected, so the model tells the user to connect it instead of
	// pretending it can schedule anything.
	calendarNotConnectedAdvisory = "Użytkownik nie ma podłączonego kalendarza. " +
		"Jeśli prosi o zaplanowanie lub sprawdzenie czegoś w kalendarzu, poinformuj go, " +
		"że najpierw musi połączyć kalendarz w ustawieniach aplikacji."
)

// Enrichment is the outcome of context gathering for one utterance.
type Enrichment struct {
	Context           string
	MailConnected     bool
	CalendarConnected bool
}

// Enricher conditionally fetches mailbox and calendar summaries and folds
// them into a system-prompt suffix. Every failure inside it degrades to
// "integration unavailable"; Enrich never fails the request.
type Enricher struct {
	statusCache  *cache.StatusCache
	status       IntegrationStatusProvider
	summaries    IntegrationContextProvider
	summaryLimit int
	timeout      time.Duration
}

// NewEnricher creates a context enricher. timeout bounds each individual
// network call, not the whole enrichment.
func NewEnricher(
	statusCache *cache.StatusCache,
	status IntegrationStatusProvider,
	summaries IntegrationContextProvider,
	summaryLimit int,
	timeout time.Duration,
) *Enricher {
	if summaryLimit <= 0 {
		summaryLimit = 5
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Enricher{
		statusCache:  statusCache,
		status:       status,
		summaries:    summaries,
		summaryLimit: summaryLimit,
		timeout:      timeout,
	}
}

// Enrich returns the system-prompt suffix for the utterance. When the
// classification needs neither email nor calendar context it returns the
// zero value without any network or cache traffic.
func (e *Enricher) Enrich(ctx context.Context, userID string, cls intent.Classification) Enrichment {
	if !cls.NeedsIntegrationContext() {
		return Enrichment{}
	}

	status := e.resolveStatus(ctx, userID)
	enr := Enrichment{
		MailConnected:     status.MailConnected,
		CalendarConnected: status.CalendarConnected,
	}

	fetchMail := cls.NeedsEmailIntent && status.MailConnected
	fetchCalendar := cls.NeedsCalendarIntent && status.CalendarConnected

	var mailSummary, calendarSummary string
	if fetchMail || fetchCalendar {
		var wg sync.WaitGroup
		if fetchMail {
			wg.Add(1)
			go func() {
				defer wg.Done()
				mailSummary = e.fetchMailSummary(ctx, userID)
			}()
		}
		if fetchCalendar {
			wg.Add(1)
			go func() {
				defer wg.Done()
				calendarSummary = e.fetchCalendarSummary(ctx, userID)
			}()
		}
		wg.Wait()
	}

	var parts []string
	if mailSummary != "" {
		parts = append(parts, mailSummaryHeader+"\n"+mailSummary)
	}
	if calendarSummary != "" {
		parts = append(parts, calendarSummaryHeader+"\n"+calendarSummary)
	}
	if cls.NeedsCalendarIntent && !status.CalendarConnected {
		parts = append(parts, calendarNotConnectedAdvisory)
	}

	enr.Context = strings.Join(parts, "\n\n")
	return enr
}

// resolveStatus answers from the cache when it can; on a miss it refreshes
// both statuses concurrently and writes the pair back. A failed fetch is
// treated as "not connected" for this turn and is not cached.
func (e *Enricher) resolveStatus(ctx context.Context, userID string) cache.IntegrationStatus {
	if status, ok := e.statusCache.Get(userID); ok {
		metrics.StatusCacheEvents.WithLabelValues("hit").Inc()
		return status
	}
	metrics.StatusCacheEvents.WithLabelValues("miss").Inc()

	var (
		wg          sync.WaitGroup
		status      cache.IntegrationStatus
		mailErr     error
		calendarErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		cctx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()
		status.MailConnected, mailErr = e.status.MailStatus(cctx, userID)
	}()
	go func() {
		defer wg.Done()
		cctx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()
		status.CalendarConnected, calendarErr = e.status.CalendarStatus(cctx, userID)
	}()
	wg.Wait()

	if mailErr != nil {
		slog.Warn("fetching mail integration status", "error", mailErr, "user_id", userID)
		status.MailConnected = false
	}
	if calendarErr != nil {
		slog.Warn("fetching calendar integration status", "error", calendarErr, "user_id", userID)
		status.CalendarConnected = false
	}
	if mailErr == nil && calendarErr == nil {
		e.statusCache.Set(userID, status)
	}
	return status
}

func (e *Enricher) fetchMailSummary(ctx context.Context, userID string) string {
	cctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	summary, err := e.summaries.MailSummary(cctx, userID, e.summaryLimit)
	if err != nil {
		slog.Warn("fetching mail summary", "error", err, "user_id", userID)
		return ""
	}
	return strings.TrimSpace(summary)
}

func (e *Enricher) fetchCalendarSummary(ctx context.Context, userID string) string {
	cctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	summary, err := e.summaries.CalendarSummary(cctx, userID, e.summaryLimit)
	if err != nil {
		slog.Warn("fetching calendar summary", "error", err, "user_id", userID)
		return ""
	}
	return strings.TrimSpace(summary)
}
