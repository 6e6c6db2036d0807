// Package openai backs the voice pipeline's generation, extraction and
// transcription providers with the OpenAI API.
package openai

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/voxa-platform/voxa/internal/history"
	"github.com/voxa-platform/voxa/internal/voice"
)

const systemPromptBase = `Jesteś Voxa, polskim asystentem głosowym. Odpowiadasz
krótko i naturalnie, tak jak brzmi mowa, bez list punktowanych i bez
formatowania markdown. Zawsze odpowiadasz po polsku.`

// Config holds model selection for the three provider roles. The search
// model is a search-preview variant with built-in web access.
type Config struct {
	APIKey             string
	Model              string
	SearchModel        string
	ExtractionModel    string
	TranscriptionModel string
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.SearchModel == "" {
		c.SearchModel = "gpt-4o-mini-search-preview"
	}
	if c.ExtractionModel == "" {
		c.ExtractionModel = c.Model
	}
	if c.TranscriptionModel == "" {
		c.TranscriptionModel = "whisper-1"
	}
}

// Provider implements voice.GenerationProvider,
// voice.StructuredExtractionProvider and voice.TranscriptionProvider.
type Provider struct {
	client openai.Client
	cfg    Config
}

// NewProvider creates an OpenAI-backed provider.
func NewProvider(cfg Config) *Provider {
	cfg.applyDefaults()
	return &Provider{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		cfg:    cfg,
	}
}

// Generate produces the conversational reply. History replays as
// alternating user/assistant turns; enrichment context and location extend
// the system prompt.
func (p *Provider) Generate(ctx context.Context, req voice.GenerateRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	messages = append(messages, openai.SystemMessage(p.systemPrompt(req)))
	for _, entry := range req.History {
		switch entry.Role {
		case history.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(entry.Content))
		default:
			messages = append(messages, openai.UserMessage(entry.Content))
		}
	}
	messages = append(messages, openai.UserMessage(req.Transcript))

	model := p.cfg.Model
	if req.UseWebSearch {
		model = p.cfg.SearchModel
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    model,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) systemPrompt(req voice.GenerateRequest) string {
	parts := []string{systemPromptBase}
	if req.Context != "" {
		parts = append(parts, req.Context)
	}
	if req.Location != "" {
		parts = append(parts, "Lokalizacja użytkownika: "+req.Location)
	}
	return strings.Join(parts, "\n\n")
}

// Extract answers a self-contained prompt with raw JSON text. The prompt
// carries its own format instructions, so no system message is needed.
func (p *Provider) Extract(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: p.cfg.ExtractionModel,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}
	return []byte(resp.Choices[0].Message.Content), nil
}

// Transcribe converts recorded audio to text with Whisper.
func (p *Provider) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	resp, err := p.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:     openai.File(bytes.NewReader(audio), "audio.wav", "audio/wav"),
		Model:    openai.AudioModel(p.cfg.TranscriptionModel),
		Language: openai.String(language),
	})
	if err != nil {
		return "", fmt.Errorf("transcribing audio: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", voice.ErrEmptyTranscription
	}
	return text, nil
}
