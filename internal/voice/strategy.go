package voice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/voxa-platform/voxa/internal/cache"
	"github.com/voxa-platform/voxa/internal/intent"
	"github.com/voxa-platform/voxa/internal/metrics"
)

// Strategy names one of the response-generation paths.
type Strategy string

const (
	// StrategyFast is the minimal-latency path for unambiguous greetings.
	StrategyFast Strategy = "fast"
	// StrategyPlaces augments generation with the caller's location.
	StrategyPlaces Strategy = "places"
	// StrategyWebSearch enables the web-retrieval tool.
	StrategyWebSearch Strategy = "web_search"
	// StrategyStandard is plain conversational generation.
	StrategyStandard Strategy = "standard"
)

// SelectStrategy picks the generation path for a classification. The order
// is fixed: greeting, places, web search, standard. Places sits ahead of
// web search; the classifier guarantees the two flags never co-occur.
func SelectStrategy(cls intent.Classification) Strategy {
	switch {
	case cls.IsSimpleGreeting && cls.Confidence == intent.ConfidenceHigh:
		return StrategyFast
	case cls.NeedsPlacesSearch:
		return StrategyPlaces
	case cls.NeedsWebSearch:
		return StrategyWebSearch
	default:
		return StrategyStandard
	}
}

// Generator produces the reply for one utterance, consulting the response
// cache first. Generation failure is the pipeline's only terminal error.
type Generator struct {
	provider GenerationProvider
	cache    *cache.ResponseCache
	timeout  time.Duration
}

// NewGenerator creates a generator with the given backend and per-call
// timeout.
func NewGenerator(provider GenerationProvider, responseCache *cache.ResponseCache, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Generator{provider: provider, cache: responseCache, timeout: timeout}
}

// Generate returns the reply for req, from cache when the conversational
// state was seen before. An empty backend reply normalizes to the fixed
// apology; it is never propagated as empty.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	key := cache.ResponseKey(systemState(req), req.History, req.Transcript, req.UseWebSearch)
	if reply, ok := g.cache.Get(key); ok {
		metrics.ResponseCacheEvents.WithLabelValues("hit").Inc()
		return reply, nil
	}
	metrics.ResponseCacheEvents.WithLabelValues("miss").Inc()

	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	reply, err := g.provider.Generate(cctx, req)
	if err != nil {
		return "", fmt.Errorf("generating reply: %w", err)
	}
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = ApologyReply
	}

	g.cache.Set(key, reply)
	return reply, nil
}

// systemState is the prompt-shaping state for the cache key. Location feeds
// the system prompt on the places path, so it must key the cache too.
func systemState(req GenerateRequest) string {
	if req.Location == "" {
		return req.Context
	}
	return req.Context + "\x1f" + req.Location
}
