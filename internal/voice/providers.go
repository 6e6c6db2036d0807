package voice

import (
	"context"

	"github.com/voxa-platform/voxa/internal/history"
)

// GenerateRequest carries everything a generation backend needs for one
// reply.
type GenerateRequest struct {
	Transcript   string
	History      []history.Entry
	Context      string // system-prompt suffix built by the enricher
	Location     string // set only on the places path
	UseWebSearch bool
}

// GenerationProvider produces the conversational reply.
type GenerationProvider interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// StructuredExtractionProvider answers a prompt with raw JSON. Used for
// AI classification and for side-effect intent extraction.
type StructuredExtractionProvider interface {
	Extract(ctx context.Context, prompt string) ([]byte, error)
}

// TranscriptionProvider turns recorded audio into text.
type TranscriptionProvider interface {
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}

// IntegrationStatusProvider reports whether a user has connected the
// mailbox and calendar integrations.
type IntegrationStatusProvider interface {
	MailStatus(ctx context.Context, userID string) (bool, error)
	CalendarStatus(ctx context.Context, userID string) (bool, error)
}

// IntegrationContextProvider fetches human-readable mailbox and calendar
// summaries for prompt enrichment.
type IntegrationContextProvider interface {
	MailSummary(ctx context.Context, userID string, limit int) (string, error)
	CalendarSummary(ctx context.Context, userID string, limit int) (string, error)
}

// ChatHistoryProvider reads recent conversation turns. The pipeline never
// writes history; persisting the new turn happens after it returns.
type ChatHistoryProvider interface {
	RecentMessages(ctx context.Context, chatID, userID string, limit int) ([]history.Entry, error)
}
