package voice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranscriber struct {
	transcript string
	err        error
	lastLang   string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, language string) (string, error) {
	f.lastLang = language
	return f.transcript, f.err
}

func postProcess(t *testing.T, h *Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/voice/process", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Process(rec, req)
	return rec
}

func TestHandler_ProcessTranscript(t *testing.T) {
	f := newServiceFixture(t)
	h := NewHandler(f.svc, nil, nil)

	rec := postProcess(t, h, ProcessVoiceRequest{
		UserID: "u1", ChatID: "c1", Transcript: "Cześć",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeProcessResponse(t, rec)
	assert.Equal(t, "Cześć", result.Transcript)
	assert.NotEmpty(t, result.Reply)
}

func decodeProcessResponse(t *testing.T, rec *httptest.ResponseRecorder) ProcessResult {
	t.Helper()
	var envelope struct {
		Data ProcessResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestHandler_MissingFieldsRejected(t *testing.T) {
	f := newServiceFixture(t)
	h := NewHandler(f.svc, nil, nil)

	rec := postProcess(t, h, ProcessVoiceRequest{UserID: "u1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, f.provider.calls)
}

func TestHandler_MalformedBodyRejected(t *testing.T) {
	f := newServiceFixture(t)
	h := NewHandler(f.svc, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/voice/process", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	h.Process(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_AudioTranscribed(t *testing.T) {
	f := newServiceFixture(t)
	transcriber := &fakeTranscriber{transcript: "Cześć"}
	h := NewHandler(f.svc, transcriber, nil)

	rec := postProcess(t, h, ProcessVoiceRequest{
		UserID: "u1", ChatID: "c1",
		Audio: base64.StdEncoding.EncodeToString([]byte("pcm-bytes")),
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pl", transcriber.lastLang, "language defaults to Polish")
	result := decodeProcessResponse(t, rec)
	assert.Equal(t, "Cześć", result.Transcript)
}

func TestHandler_AudioWithoutTranscriberRejected(t *testing.T) {
	f := newServiceFixture(t)
	h := NewHandler(f.svc, nil, nil)

	rec := postProcess(t, h, ProcessVoiceRequest{
		UserID: "u1", ChatID: "c1",
		Audio: base64.StdEncoding.EncodeToString([]byte("pcm-bytes")),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_TranscriptionFailureIsBadGateway(t *testing.T) {
	f := newServiceFixture(t)
	transcriber := &fakeTranscriber{err: errors.New("whisper down")}
	h := NewHandler(f.svc, transcriber, nil)

	rec := postProcess(t, h, ProcessVoiceRequest{
		UserID: "u1", ChatID: "c1",
		Audio: base64.StdEncoding.EncodeToString([]byte("pcm-bytes")),
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Zero(t, f.provider.calls)
}

func TestHandler_GenerationFailureIsBadGateway(t *testing.T) {
	f := newServiceFixture(t)
	f.provider.err = errors.New("model overloaded")
	h := NewHandler(f.svc, nil, nil)

	rec := postProcess(t, h, ProcessVoiceRequest{
		UserID: "u1", ChatID: "c1", Transcript: "Opowiedz mi o Krakowie",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
