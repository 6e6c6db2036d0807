package integrations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, APIKey: "test-key", Timeout: time.Second})
}

func TestClient_MailStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/integrations/mail/status", r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"connected": true}`))
	})

	connected, err := c.MailStatus(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, connected)
}

func TestClient_CalendarStatusNotConnected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"connected": false}`))
	})

	connected, err := c.CalendarStatus(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, connected)
}

func TestClient_CalendarSummary(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/integrations/calendar/summary", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"summary": "Jutro: spotkanie o 15:00"}`))
	})

	summary, err := c.CalendarSummary(context.Background(), "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, "Jutro: spotkanie o 15:00", summary)
}

func TestClient_NonOKStatusIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream auth expired", http.StatusBadGateway)
	})

	_, err := c.MailSummary(context.Background(), "u1", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestClient_MalformedResponseIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := c.MailStatus(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestClient_ContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"connected": true}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.MailStatus(ctx, "u1")
	require.Error(t, err)
}
