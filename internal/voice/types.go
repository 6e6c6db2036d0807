// Package voice implements the intent-classification and
// response-orchestration pipeline: classify the transcript, gather external
// context, pick a generation strategy, produce a reply and extract any
// side-effect intents.
package voice

import "errors"

// ApologyReply replaces an empty generation result. The user always gets a
// reply when generation itself succeeded.
const ApologyReply = "Przepraszam, nie udało mi się teraz przygotować odpowiedzi. Spróbuj ponownie za chwilę."

// SMSHandoffReply replaces the generated reply when an SMS send was
// detected. The system never sends SMS on its own.
const SMSHandoffReply = "Przygotowałem treść SMS-a. Otwórz aplikację wiadomości i zatwierdź wysyłkę samodzielnie."

// ErrEmptyTranscript is returned when there is nothing to process.
var ErrEmptyTranscript = errors.New("empty transcript")

// ErrEmptyTranscription is returned when the transcription backend produced
// no text for the given audio.
var ErrEmptyTranscription = errors.New("transcription produced no text")

// ProcessRequest is one utterance to run through the pipeline.
type ProcessRequest struct {
	UserID     string
	ChatID     string
	Transcript string
	Location   string
}

// ProcessResult is the outcome of one utterance. Side-effect intents are
// attached alongside the reply; the caller decides how to surface them.
type ProcessResult struct {
	Transcript     string          `json:"transcript"`
	Reply          string          `json:"reply"`
	EmailIntent    *EmailIntent    `json:"email_intent,omitempty"`
	CalendarIntent *CalendarIntent `json:"calendar_intent,omitempty"`
	SMSIntent      *SMSIntent      `json:"sms_intent,omitempty"`
}

// EmailIntent is a structured request to send an email, extracted from the
// utterance. Empty optional fields mean the extraction found no value.
type EmailIntent struct {
	ShouldSend bool   `json:"should_send"`
	To         string `json:"to,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Body       string `json:"body,omitempty"`
}

// CalendarIntent is a structured request to create a calendar event.
type CalendarIntent struct {
	ShouldCreate  bool     `json:"should_create"`
	Summary       string   `json:"summary,omitempty"`
	Description   string   `json:"description,omitempty"`
	Location      string   `json:"location,omitempty"`
	StartDateTime string   `json:"start_date_time,omitempty"`
	EndDateTime   string   `json:"end_date_time,omitempty"`
	IsAllDay      bool     `json:"is_all_day"`
	Attendees     []string `json:"attendees,omitempty"`
}

// SMSIntent is a structured request to send an SMS.
type SMSIntent struct {
	ShouldSend bool   `json:"should_send"`
	To         string `json:"to,omitempty"`
	Body       string `json:"body,omitempty"`
}
