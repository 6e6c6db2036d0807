package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/voxa-platform/voxa/internal/api"
	"github.com/voxa-platform/voxa/internal/cache"
	"github.com/voxa-platform/voxa/internal/config"
	"github.com/voxa-platform/voxa/internal/history"
	"github.com/voxa-platform/voxa/internal/integrations"
	"github.com/voxa-platform/voxa/internal/intent"
	"github.com/voxa-platform/voxa/internal/middleware"
	inats "github.com/voxa-platform/voxa/internal/nats"
	openaiprovider "github.com/voxa-platform/voxa/internal/provider/openai"
	iredis "github.com/voxa-platform/voxa/internal/redis"
	"github.com/voxa-platform/voxa/internal/server"
	"github.com/voxa-platform/voxa/internal/voice"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("validating config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS (optional)
	var natsClient *inats.Client
	var publisher *inats.Publisher
	if cfg.NATS.Enabled {
		natsClient, err = inats.NewClient(ctx, cfg.NATS.URL)
		if err != nil {
			slog.Error("connecting to nats", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
		publisher = inats.NewPublisher(natsClient.JetStream())
	}

	// Providers
	provider := openaiprovider.NewProvider(openaiprovider.Config{
		APIKey:             cfg.OpenAI.APIKey,
		Model:              cfg.OpenAI.Model,
		SearchModel:        cfg.OpenAI.SearchModel,
		ExtractionModel:    cfg.OpenAI.ExtractionModel,
		TranscriptionModel: cfg.OpenAI.TranscriptionModel,
	})
	integrationsClient := integrations.NewClient(integrations.Config{
		BaseURL: cfg.Integrations.BaseURL,
		APIKey:  cfg.Integrations.APIKey,
		Timeout: cfg.Integrations.Timeout,
	})

	// Caches
	statusCache := cache.NewStatusCache(cfg.Voice.StatusTTL)
	go statusCache.Run(ctx, cfg.Voice.SweepInterval)

	responseCache, err := cache.NewResponseCache(cfg.Voice.ResponseCacheSize)
	if err != nil {
		slog.Error("creating response cache", "error", err)
		os.Exit(1)
	}

	// Classification
	var classifier intent.Classifier = intent.NewKeywordClassifier()
	if cfg.Voice.UseAIClassifier {
		classifier = intent.NewAIClassifier(provider, 10*time.Second)
	}

	// Voice pipeline
	historyStore := history.NewStore(redisClient, cfg.Voice.HistoryMax, cfg.Voice.HistoryTTL)
	enricher := voice.NewEnricher(statusCache, integrationsClient, integrationsClient,
		cfg.Voice.SummaryLimit, cfg.Integrations.Timeout)
	generator := voice.NewGenerator(provider, responseCache, 30*time.Second)
	detector := voice.NewDetector(provider, 10*time.Second)
	svc := voice.NewService(classifier, enricher, generator, detector,
		historyStore, publisher, cfg.Voice.HistoryLimit)
	voiceHandler := voice.NewHandler(svc, provider, historyStore)

	// Router
	rateLimiter := middleware.NewRateLimiter(redisClient, "voice",
		cfg.Voice.RateLimit, int(cfg.Voice.RateWindow.Seconds()))
	router := api.NewRouter(redisClient, natsClient, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		VoiceRateLimiter:   rateLimiter.Middleware,
	}, api.HandlerSet{
		ProcessVoice: voiceHandler.Process,
	})

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
