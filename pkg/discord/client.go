package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/mywio/release-notifier/pkg/core"
)

// TransportError reports a webhook delivery that failed either in the
// HTTP client or with a non-success status.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client posts message bodies to Discord webhooks.
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

// NewClient returns a Client using httpClient, or http.DefaultClient when nil.
func NewClient(httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{http: httpClient, logger: logger}
}

// Send performs a single POST of body to webhookURL. Failures are logged
// once and returned as *TransportError; there is no retry.
func (c *Client) Send(ctx context.Context, webhookURL string, body []byte) error {
	if err := c.post(ctx, webhookURL, body); err != nil {
		c.logger.ErrorContext(ctx, "Failed to send Discord notification:", "error", err)
		return err
	}
	c.logger.InfoContext(ctx, "Discord notification sent successfully")
	return nil
}

func (c *Client) post(ctx context.Context, webhookURL string, body []byte) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			uerr.URL = core.NewSecret(webhookURL).Redacted()
		}
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{StatusCode: resp.StatusCode}
	}
	return nil
}
