package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Extractor is the structured-extraction backend used by the AI classifier.
type Extractor interface {
	Extract(ctx context.Context, prompt string) ([]byte, error)
}

const classifyPromptTemplate = `Jesteś klasyfikatorem intencji asystenta głosowego.
Przeanalizuj wypowiedź użytkownika i zwróć WYŁĄCZNIE obiekt JSON, bez
markdown i bez komentarzy, dokładnie w tym kształcie:

{
  "needsEmailIntent": <bool>,
  "needsCalendarIntent": <bool>,
  "needsSmsIntent": <bool>,
  "isSimpleGreeting": <bool>,
  "needsWebSearch": <bool>,
  "needsPlacesSearch": <bool>,
  "confidence": "high" | "medium" | "low"
}

Zasady:
- needsWebSearch i needsPlacesSearch nigdy nie są oba true.
- isSimpleGreeting tylko dla krótkich, jednoznacznych powitań bez innych próśb.

Wypowiedź użytkownika: %q`

// AIClassifier sends the transcript to a structured-extraction backend and
// validates the returned JSON field by field. Any backend or validation
// failure degrades to the keyword classifier instead of propagating.
type AIClassifier struct {
	extractor Extractor
	fallback  *KeywordClassifier
	timeout   time.Duration
}

// NewAIClassifier creates an AI-backed classifier with the given extraction
// backend and per-call timeout.
func NewAIClassifier(extractor Extractor, timeout time.Duration) *AIClassifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AIClassifier{
		extractor: extractor,
		fallback:  NewKeywordClassifier(),
		timeout:   timeout,
	}
}

// Classify never fails; on any backend or validation problem it returns the
// keyword classifier's result for the same transcript.
func (a *AIClassifier) Classify(ctx context.Context, transcript string) Classification {
	if a.extractor == nil {
		return a.fallback.Classify(ctx, transcript)
	}

	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.extractor.Extract(cctx, fmt.Sprintf(classifyPromptTemplate, transcript))
	if err != nil {
		slog.Warn("ai classification failed, using keyword classifier", "error", err)
		return a.fallback.Classify(ctx, transcript)
	}

	cls, err := decodeClassification(raw)
	if err != nil {
		slog.Warn("ai classification returned invalid payload, using keyword classifier", "error", err)
		return a.fallback.Classify(ctx, transcript)
	}

	return normalize(cls)
}

func decodeClassification(raw []byte) (Classification, error) {
	var fields struct {
		NeedsEmailIntent    *bool   `json:"needsEmailIntent"`
		NeedsCalendarIntent *bool   `json:"needsCalendarIntent"`
		NeedsSMSIntent      *bool   `json:"needsSmsIntent"`
		IsSimpleGreeting    *bool   `json:"isSimpleGreeting"`
		NeedsWebSearch      *bool   `json:"needsWebSearch"`
		NeedsPlacesSearch   *bool   `json:"needsPlacesSearch"`
		Confidence          *string `json:"confidence"`
	}

	if err := json.Unmarshal(stripJSONFence(raw), &fields); err != nil {
		return Classification{}, fmt.Errorf("unmarshaling classification: %w", err)
	}

	for name, p := range map[string]*bool{
		"needsEmailIntent":    fields.NeedsEmailIntent,
		"needsCalendarIntent": fields.NeedsCalendarIntent,
		"needsSmsIntent":      fields.NeedsSMSIntent,
		"isSimpleGreeting":    fields.IsSimpleGreeting,
		"needsWebSearch":      fields.NeedsWebSearch,
		"needsPlacesSearch":   fields.NeedsPlacesSearch,
	} {
		if p == nil {
			return Classification{}, fmt.Errorf("missing field %s", name)
		}
	}
	if fields.Confidence == nil {
		return Classification{}, fmt.Errorf("missing field confidence")
	}

	conf := Confidence(*fields.Confidence)
	if !conf.Valid() {
		return Classification{}, fmt.Errorf("invalid confidence value %q", *fields.Confidence)
	}

	return Classification{
		NeedsEmailIntent:    *fields.NeedsEmailIntent,
		NeedsCalendarIntent: *fields.NeedsCalendarIntent,
		NeedsSMSIntent:      *fields.NeedsSMSIntent,
		IsSimpleGreeting:    *fields.IsSimpleGreeting,
		NeedsWebSearch:      *fields.NeedsWebSearch,
		NeedsPlacesSearch:   *fields.NeedsPlacesSearch,
		Confidence:          conf,
	}, nil
}

// normalize enforces the greeting invariant on backend output: a greeting
// that carries any other need is not a simple greeting, and a greeting that
// survives must be high-confidence and flag-free.
func normalize(cls Classification) Classification {
	if !cls.IsSimpleGreeting {
		return cls
	}
	if cls.NeedsEmailIntent || cls.NeedsCalendarIntent || cls.NeedsSMSIntent ||
		cls.NeedsWebSearch || cls.NeedsPlacesSearch {
		cls.IsSimpleGreeting = false
		return cls
	}
	return Classification{IsSimpleGreeting: true, Confidence: ConfidenceHigh}
}

// stripJSONFence removes a surrounding markdown code fence, which chat
// backends add despite instructions to the contrary.
func stripJSONFence(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return raw
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(strings.TrimSpace(s))
}
