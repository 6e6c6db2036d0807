// Package integrations talks to the internal integrations service that owns
// the users' mailbox and calendar connections. The assistant only reads
// status and summaries; sending mail and creating events stays on the
// integrations side.
package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Config holds the integrations service connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client implements the voice pipeline's status and context providers over
// the integrations HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates an integrations API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

type statusResponse struct {
	Connected bool `json:"connected"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

// MailStatus reports whether the user has a connected mailbox.
func (c *Client) MailStatus(ctx context.Context, userID string) (bool, error) {
	return c.status(ctx, "mail", userID)
}

// CalendarStatus reports whether the user has a connected calendar.
func (c *Client) CalendarStatus(ctx context.Context, userID string) (bool, error) {
	return c.status(ctx, "calendar", userID)
}

// MailSummary returns a short textual summary of the user's recent mail.
func (c *Client) MailSummary(ctx context.Context, userID string, limit int) (string, error) {
	return c.summary(ctx, "mail", userID, limit)
}

// CalendarSummary returns a short textual summary of upcoming events.
func (c *Client) CalendarSummary(ctx context.Context, userID string, limit int) (string, error) {
	return c.summary(ctx, "calendar", userID, limit)
}

func (c *Client) status(ctx context.Context, integration, userID string) (bool, error) {
	var resp statusResponse
	query := url.Values{"user_id": {userID}}
	if err := c.get(ctx, fmt.Sprintf("/v1/integrations/%s/status", integration), query, &resp); err != nil {
		return false, fmt.Errorf("fetching %s status: %w", integration, err)
	}
	return resp.Connected, nil
}

func (c *Client) summary(ctx context.Context, integration, userID string, limit int) (string, error) {
	var resp summaryResponse
	query := url.Values{
		"user_id": {userID},
		"limit":   {strconv.Itoa(limit)},
	}
	if err := c.get(ctx, fmt.Sprintf("/v1/integrations/%s/summary", integration), query, &resp); err != nil {
		return "", fmt.Errorf("fetching %s summary: %w", integration, err)
	}
	return resp.Summary, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
