package intent

import "context"

// Confidence grades how certain a classification is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid reports whether c is one of the three known confidence levels.
func (c Confidence) Valid() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// Classification is the structured judgment of what kind of help an
// utterance needs. It is produced once per utterance and is immutable.
//
// Invariant: IsSimpleGreeting implies every other flag is false and
// Confidence is high; a greeting must be unambiguous and side-effect-free.
type Classification struct {
	NeedsEmailIntent    bool       `json:"needsEmailIntent"`
	NeedsCalendarIntent bool       `json:"needsCalendarIntent"`
	NeedsSMSIntent      bool       `json:"needsSmsIntent"`
	IsSimpleGreeting    bool       `json:"isSimpleGreeting"`
	NeedsWebSearch      bool       `json:"needsWebSearch"`
	NeedsPlacesSearch   bool       `json:"needsPlacesSearch"`
	Confidence          Confidence `json:"confidence"`
}

// NeedsIntegrationContext reports whether the utterance asks for anything
// that requires mailbox or calendar data.
func (c Classification) NeedsIntegrationContext() bool {
	return c.NeedsEmailIntent || c.NeedsCalendarIntent
}

// Classifier maps a transcript to a Classification. Implementations must
// never fail: on any internal problem they degrade to a heuristic result,
// because classification failure must never block reply generation.
type Classifier interface {
	Classify(ctx context.Context, transcript string) Classification
}
