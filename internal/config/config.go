package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server       ServerConfig
	Redis        RedisConfig
	OpenAI       OpenAIConfig
	Integrations IntegrationsConfig
	NATS         NATSConfig
	Voice        VoiceConfig
	Log          LogConfig
	CORS         CORSConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type OpenAIConfig struct {
	APIKey             string
	Model              string
	SearchModel        string
	ExtractionModel    string
	TranscriptionModel string
}

type IntegrationsConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type NATSConfig struct {
	URL     string
	Enabled bool
}

type VoiceConfig struct {
	HistoryLimit      int
	HistoryMax        int
	HistoryTTL        time.Duration
	StatusTTL         time.Duration
	SweepInterval     time.Duration
	ResponseCacheSize int
	SummaryLimit      int
	UseAIClassifier   bool
	RateLimit         int
	RateWindow        time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		OpenAI: OpenAIConfig{
			APIKey:             k.String("openai.api.key"),
			Model:              k.String("openai.model"),
			SearchModel:        k.String("openai.search.model"),
			ExtractionModel:    k.String("openai.extraction.model"),
			TranscriptionModel: k.String("openai.transcription.model"),
		},
		Integrations: IntegrationsConfig{
			BaseURL: k.String("integrations.base.url"),
			APIKey:  k.String("integrations.api.key"),
		},
		NATS: NATSConfig{
			URL:     k.String("nats.url"),
			Enabled: k.Bool("nats.enabled"),
		},
		Voice: VoiceConfig{
			HistoryLimit:      k.Int("voice.history.limit"),
			HistoryMax:        k.Int("voice.history.max"),
			ResponseCacheSize: k.Int("voice.response.cache.size"),
			SummaryLimit:      k.Int("voice.summary.limit"),
			UseAIClassifier:   k.Bool("voice.use.ai.classifier"),
			RateLimit:         k.Int("voice.rate.limit"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	if origins := k.String("cors.allowed.origins"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, o)
			}
		}
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://localhost:4222"
	}
	if cfg.Voice.HistoryLimit == 0 {
		cfg.Voice.HistoryLimit = 10
	}
	if cfg.Voice.HistoryMax == 0 {
		cfg.Voice.HistoryMax = 50
	}
	if cfg.Voice.ResponseCacheSize == 0 {
		cfg.Voice.ResponseCacheSize = 1024
	}
	if cfg.Voice.SummaryLimit == 0 {
		cfg.Voice.SummaryLimit = 5
	}
	if cfg.Voice.RateLimit == 0 {
		cfg.Voice.RateLimit = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "debug"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}

	// Parse durations
	cfg.Integrations.Timeout, err = parseDuration(k, "integrations.timeout", "10s")
	if err != nil {
		return nil, err
	}
	cfg.Voice.HistoryTTL, err = parseDuration(k, "voice.history.ttl", "720h")
	if err != nil {
		return nil, err
	}
	cfg.Voice.StatusTTL, err = parseDuration(k, "voice.status.ttl", "5m")
	if err != nil {
		return nil, err
	}
	cfg.Voice.SweepInterval, err = parseDuration(k, "voice.sweep.interval", "1m")
	if err != nil {
		return nil, err
	}
	cfg.Voice.RateWindow, err = parseDuration(k, "voice.rate.window", "1m")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseDuration(k *koanf.Koanf, key, fallback string) (time.Duration, error) {
	raw := k.String(key)
	if raw == "" {
		raw = fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}
