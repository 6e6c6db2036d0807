package nats

import "time"

// StreamEvents is the JetStream stream holding pipeline events.
const StreamEvents = "VOXA_EVENTS"

// SubjectUtteranceEvent carries one event per processed utterance.
const SubjectUtteranceEvent = "voxa.events.utterance"

// UtteranceEvent is published after each utterance finishes the pipeline.
// Consumers use it for auditing and usage analytics.
type UtteranceEvent struct {
	RequestID      string    `json:"request_id"`
	UserID         string    `json:"user_id"`
	ChatID         string    `json:"chat_id"`
	Strategy       string    `json:"strategy"`
	Confidence     string    `json:"confidence"`
	EmailIntent    bool      `json:"email_intent"`
	CalendarIntent bool      `json:"calendar_intent"`
	SMSIntent      bool      `json:"sms_intent"`
	DurationMS     int64     `json:"duration_ms"`
	Timestamp      time.Time `json:"timestamp"`
}
