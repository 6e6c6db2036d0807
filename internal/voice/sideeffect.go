package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/voxa-platform/voxa/internal/metrics"
)

// Per-type keyword gates. Each detector re-checks a narrower gate than the
// classifier before paying for an extraction call.
var (
	emailGatePhrases = []string{
		"wyślij mail", "wyślij e-mail", "wyślij email", "napisz mail",
		"napisz e-mail", "napisz do", "wyślij wiadomość",
	}
	calendarGatePhrases = []string{
		"dodaj do kalendarza", "zaplanuj", "umów", "przypomnij",
		"spotkanie", "wydarzenie", "kalendarz",
	}
	smsGatePhrases = []string{
		"sms", "esemes",
	}
)

const emailExtractionTemplate = `Z wypowiedzi użytkownika wyodrębnij intencję wysłania e-maila.
Zwróć WYŁĄCZNIE obiekt JSON, bez markdown:

{
  "shouldSend": <bool>,
  "to": "<adresat lub null>",
  "subject": "<temat lub null>",
  "body": "<treść lub null>"
}

Jeśli użytkownik nie prosi o wysłanie e-maila, zwróć {"shouldSend": false}.
Nie zgaduj brakujących wartości — użyj null.

Wypowiedź użytkownika: %q`

const calendarExtractionTemplate = `Z wypowiedzi użytkownika wyodrębnij intencję utworzenia wydarzenia w kalendarzu.
Dzisiejsza data: %s. "Jutro" oznacza %s. Daty zapisuj w formacie RFC 3339
w strefie Europe/Warsaw, np. "2026-08-29T15:00:00+02:00".
Zwróć WYŁĄCZNIE obiekt JSON, bez markdown:

{
  "shouldCreate": <bool>,
  "summary": "<tytuł lub null>",
  "description": "<opis lub null>",
  "location": "<miejsce lub null>",
  "startDateTime": "<data RFC 3339 lub null>",
  "endDateTime": "<data RFC 3339 lub null>",
  "isAllDay": <bool>,
  "attendees": ["<email>", ...] lub null
}

Jeśli użytkownik nie prosi o utworzenie wydarzenia, zwróć {"shouldCreate": false}.
Nie zgaduj brakujących wartości — użyj null.

Wypowiedź użytkownika: %q`

const smsExtractionTemplate = `Z wypowiedzi użytkownika wyodrębnij intencję wysłania SMS-a.
Zwróć WYŁĄCZNIE obiekt JSON, bez markdown:

{
  "shouldSend": <bool>,
  "to": "<odbiorca lub null>",
  "body": "<treść lub null>"
}

Jeśli użytkownik nie prosi o wysłanie SMS-a, zwróć {"shouldSend": false}.
Nie zgaduj brakujących wartości — użyj null.

Wypowiedź użytkownika: %q`

// Detector extracts typed side-effect intents from an utterance. Each
// Detect method degrades to "no intent" on any failure; the three detectors
// are independent and individually fallible.
type Detector struct {
	extractor StructuredExtractionProvider
	timeout   time.Duration
	now       func() time.Time
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithDetectorClock injects the time source used for "today"/"tomorrow"
// resolution, for tests.
func WithDetectorClock(now func() time.Time) DetectorOption {
	return func(d *Detector) { d.now = now }
}

// NewDetector creates a side-effect detector with the given extraction
// backend and per-call timeout.
func NewDetector(extractor StructuredExtractionProvider, timeout time.Duration, opts ...DetectorOption) *Detector {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	d := &Detector{extractor: extractor, timeout: timeout, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectEmail returns the email intent found in the transcript, or nil.
func (d *Detector) DetectEmail(ctx context.Context, transcript string) *EmailIntent {
	if !gateMatches(transcript, emailGatePhrases) {
		return nil
	}

	raw, ok := d.extract(ctx, fmt.Sprintf(emailExtractionTemplate, transcript), "email")
	if !ok {
		return nil
	}

	var fields struct {
		ShouldSend bool    `json:"shouldSend"`
		To         *string `json:"to"`
		Subject    *string `json:"subject"`
		Body       *string `json:"body"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		slog.Warn("decoding email intent", "error", err)
		return nil
	}
	if !fields.ShouldSend {
		return nil
	}

	metrics.SideEffectIntentsTotal.WithLabelValues("email").Inc()
	return &EmailIntent{
		ShouldSend: true,
		To:         optionalString(fields.To),
		Subject:    optionalString(fields.Subject),
		Body:       optionalString(fields.Body),
	}
}

// DetectCalendar returns the calendar intent found in the transcript, or nil.
func (d *Detector) DetectCalendar(ctx context.Context, transcript string) *CalendarIntent {
	if !gateMatches(transcript, calendarGatePhrases) {
		return nil
	}

	today := d.now()
	prompt := fmt.Sprintf(calendarExtractionTemplate,
		today.Format("2006-01-02"),
		today.AddDate(0, 0, 1).Format("2006-01-02"),
		transcript,
	)

	raw, ok := d.extract(ctx, prompt, "calendar")
	if !ok {
		return nil
	}

	var fields struct {
		ShouldCreate  bool      `json:"shouldCreate"`
		Summary       *string   `json:"summary"`
		Description   *string   `json:"description"`
		Location      *string   `json:"location"`
		StartDateTime *string   `json:"startDateTime"`
		EndDateTime   *string   `json:"endDateTime"`
		IsAllDay      *bool     `json:"isAllDay"`
		Attendees     []*string `json:"attendees"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		slog.Warn("decoding calendar intent", "error", err)
		return nil
	}
	if !fields.ShouldCreate {
		return nil
	}

	var attendees []string
	for _, a := range fields.Attendees {
		if v := optionalString(a); v != "" {
			attendees = append(attendees, v)
		}
	}

	metrics.SideEffectIntentsTotal.WithLabelValues("calendar").Inc()
	return &CalendarIntent{
		ShouldCreate:  true,
		Summary:       optionalString(fields.Summary),
		Description:   optionalString(fields.Description),
		Location:      optionalString(fields.Location),
		StartDateTime: optionalString(fields.StartDateTime),
		EndDateTime:   optionalString(fields.EndDateTime),
		IsAllDay:      fields.IsAllDay != nil && *fields.IsAllDay,
		Attendees:     attendees,
	}
}

// DetectSMS returns the SMS intent found in the transcript, or nil.
func (d *Detector) DetectSMS(ctx context.Context, transcript string) *SMSIntent {
	if !gateMatches(transcript, smsGatePhrases) {
		return nil
	}

	raw, ok := d.extract(ctx, fmt.Sprintf(smsExtractionTemplate, transcript), "sms")
	if !ok {
		return nil
	}

	var fields struct {
		ShouldSend bool    `json:"shouldSend"`
		To         *string `json:"to"`
		Body       *string `json:"body"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		slog.Warn("decoding sms intent", "error", err)
		return nil
	}
	if !fields.ShouldSend {
		return nil
	}

	metrics.SideEffectIntentsTotal.WithLabelValues("sms").Inc()
	return &SMSIntent{
		ShouldSend: true,
		To:         optionalString(fields.To),
		Body:       optionalString(fields.Body),
	}
}

func (d *Detector) extract(ctx context.Context, prompt, kind string) ([]byte, bool) {
	if d.extractor == nil {
		return nil, false
	}

	cctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	raw, err := d.extractor.Extract(cctx, prompt)
	if err != nil {
		slog.Warn("side-effect extraction failed", "type", kind, "error", err)
		return nil, false
	}
	return sanitizeRawJSON(raw), true
}

func gateMatches(transcript string, phrases []string) bool {
	text := strings.ToLower(transcript)
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// optionalString collapses JSON null and the literal sentinel "null" to
// absent. Already-clean values pass through unchanged.
func optionalString(p *string) string {
	if p == nil {
		return ""
	}
	v := strings.TrimSpace(*p)
	if strings.EqualFold(v, "null") {
		return ""
	}
	return v
}

// sanitizeRawJSON strips the markdown code fence chat backends like to wrap
// JSON in.
func sanitizeRawJSON(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return []byte(s)
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(strings.TrimSpace(s))
}
