package voice

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/voxa-platform/voxa/internal/api"
	"github.com/voxa-platform/voxa/internal/history"
)

// ProcessVoiceRequest is the payload of POST /api/v1/voice/process. The
// caller supplies either a transcript or base64-encoded audio to
// transcribe. Authentication happens upstream; user_id arrives trusted.
type ProcessVoiceRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	ChatID     string `json:"chat_id" validate:"required"`
	Transcript string `json:"transcript" validate:"required_without=Audio"`
	Audio      string `json:"audio,omitempty"`
	Language   string `json:"language,omitempty"`
	Location   string `json:"location,omitempty"`
}

// Handler exposes the voice pipeline over HTTP.
type Handler struct {
	svc         *Service
	transcriber TranscriptionProvider
	store       *history.Store
	validate    *validator.Validate
}

// NewHandler creates the voice HTTP handler. transcriber and store may be
// nil; audio input is then rejected and turns are not persisted.
func NewHandler(svc *Service, transcriber TranscriptionProvider, store *history.Store) *Handler {
	return &Handler{
		svc:         svc,
		transcriber: transcriber,
		store:       store,
		validate:    validator.New(),
	}
}

// Process handles one utterance end to end: optional transcription, the
// pipeline, then best-effort persistence of the new turn.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	var req ProcessVoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	transcript := req.Transcript
	if transcript == "" {
		var ok bool
		transcript, ok = h.transcribe(w, r, req)
		if !ok {
			return
		}
	}

	result, err := h.svc.Process(r.Context(), ProcessRequest{
		UserID:     req.UserID,
		ChatID:     req.ChatID,
		Transcript: transcript,
		Location:   req.Location,
	})
	if err != nil {
		if errors.Is(err, ErrEmptyTranscript) {
			api.HandleError(w, api.ErrEmptyTranscript)
			return
		}
		slog.Error("processing utterance", "error", err, "user_id", req.UserID)
		api.HandleError(w, api.ErrGenerationFailed)
		return
	}

	h.persistTurn(r, req, result)
	api.JSON(w, http.StatusOK, result)
}

func (h *Handler) transcribe(w http.ResponseWriter, r *http.Request, req ProcessVoiceRequest) (string, bool) {
	if h.transcriber == nil {
		api.HandleError(w, api.NewBadRequestError("audio input not supported"))
		return "", false
	}

	audio, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil || len(audio) == 0 {
		api.HandleError(w, api.NewBadRequestError("invalid audio payload"))
		return "", false
	}

	language := req.Language
	if language == "" {
		language = "pl"
	}

	transcript, err := h.transcriber.Transcribe(r.Context(), audio, language)
	if err != nil {
		slog.Error("transcribing audio", "error", err, "user_id", req.UserID)
		api.HandleError(w, api.ErrTranscriptionFailed)
		return "", false
	}
	return transcript, true
}

// persistTurn appends the user and assistant turns after the pipeline
// returned. Persistence failure never affects the response.
func (h *Handler) persistTurn(r *http.Request, req ProcessVoiceRequest, result *ProcessResult) {
	if h.store == nil {
		return
	}

	now := time.Now().UTC()
	turns := []history.Entry{
		{Role: history.RoleUser, Content: result.Transcript, Timestamp: now},
		{Role: history.RoleAssistant, Content: result.Reply, Timestamp: now},
	}
	for _, e := range turns {
		if err := h.store.Append(r.Context(), req.ChatID, req.UserID, e); err != nil {
			slog.Warn("persisting chat turn", "error", err, "user_id", req.UserID, "chat_id", req.ChatID)
			return
		}
	}
}
