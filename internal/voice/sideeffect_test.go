package voice

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedExtractor struct {
	respond func(prompt string) ([]byte, error)
	calls   int
}

func (s *scriptedExtractor) Extract(_ context.Context, prompt string) ([]byte, error) {
	s.calls++
	if s.respond == nil {
		return nil, errors.New("no script")
	}
	return s.respond(prompt)
}

func fixedExtractor(payload string) *scriptedExtractor {
	return &scriptedExtractor{respond: func(string) ([]byte, error) {
		return []byte(payload), nil
	}}
}

func testClock() time.Time {
	return time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
}

func newTestDetector(e *scriptedExtractor) *Detector {
	return NewDetector(e, time.Second, WithDetectorClock(testClock))
}

func TestDetector_EmailGateMissSkipsExtraction(t *testing.T) {
	e := fixedExtractor(`{"shouldSend": true}`)
	d := newTestDetector(e)

	got := d.DetectEmail(context.Background(), "Jaka jest stolica Francji?")
	assert.Nil(t, got)
	assert.Zero(t, e.calls, "gate miss must not call the backend")
}

func TestDetector_EmailExtraction(t *testing.T) {
	e := fixedExtractor(`{"shouldSend": true, "to": "jan@x.com", "subject": "Spotkanie", "body": "Do zobaczenia jutro"}`)
	d := newTestDetector(e)

	got := d.DetectEmail(context.Background(), "Wyślij mail do Jana o spotkaniu")
	require.NotNil(t, got)
	assert.True(t, got.ShouldSend)
	assert.Equal(t, "jan@x.com", got.To)
	assert.Equal(t, "Spotkanie", got.Subject)
	assert.Equal(t, "Do zobaczenia jutro", got.Body)
}

func TestDetector_SentinelNormalization(t *testing.T) {
	payloads := []string{
		`{"shouldSend": true, "to": "null"}`,
		`{"shouldSend": true, "to": null}`,
		`{"shouldSend": true}`,
	}
	for _, payload := range payloads {
		d := newTestDetector(fixedExtractor(payload))
		got := d.DetectEmail(context.Background(), "Wyślij mail do mamy")
		require.NotNil(t, got, "payload: %s", payload)
		assert.Empty(t, got.To, "payload: %s", payload)
	}

	// Idempotent on already-clean input.
	d := newTestDetector(fixedExtractor(`{"shouldSend": true, "to": "jan@x.com"}`))
	got := d.DetectEmail(context.Background(), "Wyślij mail do Jana")
	require.NotNil(t, got)
	assert.Equal(t, "jan@x.com", got.To)
}

func TestDetector_NegativeExtractionYieldsNoIntent(t *testing.T) {
	d := newTestDetector(fixedExtractor(`{"shouldSend": false}`))
	got := d.DetectEmail(context.Background(), "Napisz do mnie wiersz o jesieni")
	assert.Nil(t, got)
}

func TestDetector_MalformedJSONYieldsNoIntent(t *testing.T) {
	d := newTestDetector(fixedExtractor(`oops not json`))
	got := d.DetectEmail(context.Background(), "Wyślij mail do Jana")
	assert.Nil(t, got)
}

func TestDetector_BackendErrorYieldsNoIntent(t *testing.T) {
	e := &scriptedExtractor{respond: func(string) ([]byte, error) {
		return nil, errors.New("backend down")
	}}
	d := newTestDetector(e)
	got := d.DetectEmail(context.Background(), "Wyślij mail do Jana")
	assert.Nil(t, got)
}

func TestDetector_CalendarScenario(t *testing.T) {
	e := &scriptedExtractor{respond: func(prompt string) ([]byte, error) {
		// The prompt carries today's date and the resolved "tomorrow".
		assert.Contains(t, prompt, "2026-08-28")
		assert.Contains(t, prompt, "2026-08-29")
		return []byte(`{
			"shouldCreate": true,
			"summary": "spotkanie",
			"description": null,
			"location": null,
			"startDateTime": "2026-08-29T15:00:00+02:00",
			"endDateTime": "2026-08-29T16:00:00+02:00",
			"isAllDay": false,
			"attendees": null
		}`), nil
	}}
	d := newTestDetector(e)

	got := d.DetectCalendar(context.Background(), "Dodaj do kalendarza jutro spotkanie na 15:00")
	require.NotNil(t, got)
	assert.True(t, got.ShouldCreate)
	assert.Equal(t, "spotkanie", got.Summary)
	assert.False(t, got.IsAllDay)
	assert.Equal(t, "2026-08-29T15:00:00+02:00", got.StartDateTime)
	assert.Empty(t, got.Description)
	assert.Empty(t, got.Attendees)
}

func TestDetector_CalendarAttendeesNormalized(t *testing.T) {
	d := newTestDetector(fixedExtractor(`{
		"shouldCreate": true,
		"summary": "standup",
		"isAllDay": false,
		"attendees": ["anna@x.com", "null", null]
	}`))

	got := d.DetectCalendar(context.Background(), "Zaplanuj standup jutro rano")
	require.NotNil(t, got)
	assert.Equal(t, []string{"anna@x.com"}, got.Attendees)
}

func TestDetector_SMSExtraction(t *testing.T) {
	d := newTestDetector(fixedExtractor(`{"shouldSend": true, "to": "mama", "body": "Będę później"}`))

	got := d.DetectSMS(context.Background(), "Wyślij sms do mamy że będę później")
	require.NotNil(t, got)
	assert.True(t, got.ShouldSend)
	assert.Equal(t, "mama", got.To)
	assert.Equal(t, "Będę później", got.Body)
}

func TestDetector_FencedPayloadAccepted(t *testing.T) {
	d := newTestDetector(fixedExtractor("```json\n{\"shouldSend\": true, \"to\": \"mama\"}\n```"))
	got := d.DetectSMS(context.Background(), "Wyślij sms do mamy")
	require.NotNil(t, got)
	assert.Equal(t, "mama", got.To)
}

func TestDetector_GatesAreNarrow(t *testing.T) {
	e := fixedExtractor(`{"shouldSend": true}`)
	d := newTestDetector(e)

	// The classifier may flag SMS on a transcript the narrow gate rejects.
	got := d.DetectSMS(context.Background(), "Opowiedz mi o historii telefonii")
	assert.Nil(t, got)
	assert.Zero(t, e.calls)
}

func TestSanitizeRawJSON(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                  `{"a":1}`,
		"```json\n{\"a\":1}\n```":    `{"a":1}`,
		"```\n{\"a\":1}\n```":        `{"a":1}`,
		"  {\"a\":1}  ":              `{"a":1}`,
		"```json\n{\"a\":1}\n```\n ": `{"a":1}`,
	}
	for in, want := range cases {
		got := string(sanitizeRawJSON([]byte(in)))
		assert.Equal(t, want, strings.TrimSpace(got), "input: %q", in)
	}
}
