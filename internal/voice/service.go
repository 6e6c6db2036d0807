package voice

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voxa-platform/voxa/internal/history"
	"github.com/voxa-platform/voxa/internal/intent"
	"github.com/voxa-platform/voxa/internal/metrics"
	inats "github.com/voxa-platform/voxa/internal/nats"
)

// Service composes the classifier, enricher, generator and side-effect
// detector into one request/response cycle per utterance.
type Service struct {
	classifier   intent.Classifier
	enricher     *Enricher
	generator    *Generator
	detector     *Detector
	chatHistory  ChatHistoryProvider
	events       *inats.Publisher
	historyLimit int
}

// NewService creates the orchestrator. chatHistory and events may be nil;
// history reads and event publishing are then skipped.
func NewService(
	classifier intent.Classifier,
	enricher *Enricher,
	generator *Generator,
	detector *Detector,
	chatHistory ChatHistoryProvider,
	events *inats.Publisher,
	historyLimit int,
) *Service {
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &Service{
		classifier:   classifier,
		enricher:     enricher,
		generator:    generator,
		detector:     detector,
		chatHistory:  chatHistory,
		events:       events,
		historyLimit: historyLimit,
	}
}

// Process runs one utterance through the pipeline. Classification always
// completes before any downstream step, every concurrently dispatched
// sub-operation settles before Process returns, and generation failure is
// the only error that surfaces.
func (s *Service) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	transcript := strings.TrimSpace(req.Transcript)
	if transcript == "" {
		return nil, ErrEmptyTranscript
	}
	start := time.Now()

	cls := s.classifier.Classify(ctx, transcript)
	strategy := SelectStrategy(cls)
	slog.Debug("utterance classified",
		"user_id", req.UserID,
		"strategy", strategy,
		"confidence", cls.Confidence,
	)

	entries := s.recentHistory(ctx, req)

	var enr Enrichment
	if strategy != StrategyFast {
		enr = s.enricher.Enrich(ctx, req.UserID, cls)
	}

	genReq := GenerateRequest{
		Transcript:   transcript,
		History:      entries,
		Context:      enr.Context,
		UseWebSearch: strategy == StrategyWebSearch,
	}
	if strategy == StrategyPlaces {
		genReq.Location = req.Location
	}

	reply, err := s.generator.Generate(ctx, genReq)
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{Transcript: transcript, Reply: reply}
	if strategy != StrategyFast {
		s.detectSideEffects(ctx, transcript, cls, enr, result)
	}

	// The system never auto-sends SMS; hand the draft back to the user.
	if result.SMSIntent != nil && result.SMSIntent.ShouldSend {
		result.Reply = SMSHandoffReply
	}

	metrics.UtterancesTotal.WithLabelValues(string(strategy)).Inc()
	s.publishEvent(ctx, req, cls, strategy, result, time.Since(start))

	return result, nil
}

func (s *Service) recentHistory(ctx context.Context, req ProcessRequest) []history.Entry {
	if s.chatHistory == nil {
		return nil
	}
	entries, err := s.chatHistory.RecentMessages(ctx, req.ChatID, req.UserID, s.historyLimit)
	if err != nil {
		slog.Warn("fetching chat history", "error", err, "user_id", req.UserID, "chat_id", req.ChatID)
		return nil
	}
	return history.FilterReplayable(entries)
}

// detectSideEffects runs the triggered detectors concurrently. Email and
// calendar additionally require the matching integration to be connected;
// SMS has no account to check. Each goroutine writes a distinct field, so
// no lock is needed, and the wait guarantees nothing leaks past the
// response boundary.
func (s *Service) detectSideEffects(
	ctx context.Context,
	transcript string,
	cls intent.Classification,
	enr Enrichment,
	result *ProcessResult,
) {
	var wg sync.WaitGroup

	if cls.NeedsEmailIntent && enr.MailConnected {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result.EmailIntent = s.detector.DetectEmail(ctx, transcript)
		}()
	}
	if cls.NeedsCalendarIntent && enr.CalendarConnected {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result.CalendarIntent = s.detector.DetectCalendar(ctx, transcript)
		}()
	}
	if cls.NeedsSMSIntent {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result.SMSIntent = s.detector.DetectSMS(ctx, transcript)
		}()
	}

	wg.Wait()
}

func (s *Service) publishEvent(
	ctx context.Context,
	req ProcessRequest,
	cls intent.Classification,
	strategy Strategy,
	result *ProcessResult,
	elapsed time.Duration,
) {
	if s.events == nil {
		return
	}

	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	event := inats.UtteranceEvent{
		RequestID:      uuid.New().String(),
		UserID:         req.UserID,
		ChatID:         req.ChatID,
		Strategy:       string(strategy),
		Confidence:     string(cls.Confidence),
		EmailIntent:    result.EmailIntent != nil,
		CalendarIntent: result.CalendarIntent != nil,
		SMSIntent:      result.SMSIntent != nil,
		DurationMS:     elapsed.Milliseconds(),
		Timestamp:      time.Now().UTC(),
	}
	if err := s.events.PublishUtteranceEvent(cctx, event); err != nil {
		slog.Warn("publishing utterance event", "error", err, "user_id", req.UserID)
	}
}
