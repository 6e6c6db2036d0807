package intent

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Length thresholds in runes. Greetings longer than greetingMaxLen carry
// enough extra content that they are no longer "simple"; transcripts under
// shortMaxLen are almost always unambiguous.
const (
	greetingMaxLen = 50
	shortMaxLen    = 20
)

var (
	placesPhrases = []string{
		"w pobliżu", "w okolicy", "niedaleko", "najbliższy", "najbliższa",
		"najbliższe", "gdzie jest", "gdzie znajdę", "gdzie mogę zjeść",
		"restauracja w", "apteka w", "stacja benzynowa",
	}

	webSearchKeywords = []string{
		"wyszukaj", "poszukaj w internecie", "sprawdź w internecie",
		"znajdź informacje", "jaka jest pogoda", "jaka będzie pogoda",
		"aktualne wiadomości", "najnowsze", "kurs dolara", "kurs euro",
		"wyniki meczu", "co się dzieje",
	}

	greetingPhrases = []string{
		"cześć", "czesc", "hej", "siema", "witaj", "dzień dobry",
		"dobry wieczór", "halo", "elo", "co tam", "jak się masz",
	}

	emailKeywords = []string{
		"mail", "maila", "e-mail", "email", "wyślij wiadomość do",
		"napisz do", "skrzynk", "odbiorc", "wiadomość email",
	}

	smsKeywords = []string{
		"sms", "sms-a", "smsa", "esemes", "wyślij sms",
	}

	// Calendar action words alone are ambiguous ("przypomnij mi o
	// rachunkach" is not a scheduling request); they only count together
	// with a temporal cue. The word "kalendarz" itself is always enough.
	calendarActionKeywords = []string{
		"spotkanie", "przypomnij", "przypomnienie", "zaplanuj", "umów",
		"wydarzenie", "wizyt",
	}

	temporalWords = []string{
		"jutro", "pojutrze", "dzisiaj", "dziś", "dzis", "rano",
		"wieczorem", "po południu", "w południe", "w nocy",
	}

	clockPattern = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)
	hourPattern  = regexp.MustCompile(`\bo (godzinie )?\d{1,2}\b`)
)

// KeywordClassifier is the deterministic, offline classification variant.
// It is also the fallback for the AI-backed variant.
type KeywordClassifier struct{}

// NewKeywordClassifier creates a keyword-based classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Classify maps a transcript to a Classification using keyword and phrase
// lists. It never fails.
func (k *KeywordClassifier) Classify(_ context.Context, transcript string) Classification {
	text := strings.ToLower(strings.TrimSpace(transcript))
	length := utf8.RuneCountInString(text)

	var cls Classification

	// Places search takes priority and short-circuits web search, so the
	// two flags are mutually exclusive.
	if containsAny(text, placesPhrases) {
		cls.NeedsPlacesSearch = true
	} else if containsAny(text, webSearchKeywords) {
		cls.NeedsWebSearch = true
	}

	if containsAny(text, greetingPhrases) && length < greetingMaxLen &&
		!cls.NeedsWebSearch && !cls.NeedsPlacesSearch {
		return Classification{IsSimpleGreeting: true, Confidence: ConfidenceHigh}
	}

	cls.NeedsEmailIntent = containsAny(text, emailKeywords)
	cls.NeedsSMSIntent = containsAny(text, smsKeywords)
	cls.NeedsCalendarIntent = strings.Contains(text, "kalendarz") ||
		(containsAny(text, calendarActionKeywords) && hasTemporalCue(text))

	switch {
	case cls.NeedsEmailIntent || cls.NeedsSMSIntent || cls.NeedsCalendarIntent || cls.NeedsPlacesSearch:
		cls.Confidence = ConfidenceHigh
	case cls.NeedsWebSearch:
		cls.Confidence = ConfidenceMedium
	case length < shortMaxLen:
		cls.Confidence = ConfidenceHigh
	default:
		cls.Confidence = ConfidenceMedium
	}

	return cls
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func hasTemporalCue(text string) bool {
	if containsAny(text, temporalWords) {
		return true
	}
	return clockPattern.MatchString(text) || hourPattern.MatchString(text)
}
