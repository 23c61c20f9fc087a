package twitch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"streamwatch/internal/config"
	"streamwatch/internal/logging"
	"streamwatch/internal/streams"
)

const (
	userAgent    = "streamwatch/0.1"
	acceptHeader = "application/vnd.twitchtv.v5+json"
	maxBodyBytes = 1 << 20
)

// HTTPDoer describes the HTTP client used by the status client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError reports a non-2xx response from the streams endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("streams endpoint returned %d", e.Code)
	}
	return fmt.Sprintf("streams endpoint returned %d: %s", e.Code, e.Body)
}

// Client queries the streams endpoint for one channel at a time.
type Client struct {
	baseURL    string
	clientID   string
	oauthToken string
	timeout    time.Duration
	doer       HTTPDoer
	logger     *slog.Logger
}

// NewClient builds a client from the [api] config section.
func NewClient(cfg config.API, logger *slog.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		clientID:   strings.TrimSpace(cfg.ClientID),
		oauthToken: strings.TrimSpace(cfg.OAuthToken),
		timeout:    timeout,
		doer:       &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "twitch"),
	}
}

// WithHTTPClient replaces the transport, mainly for tests.
func (c *Client) WithHTTPClient(doer HTTPDoer) *Client {
	if doer != nil {
		c.doer = doer
	}
	return c
}

// Fetch queries one channel and returns its live status or a classified
// error: ErrOffline, ErrNotLive, ErrMalformed, *StatusError, or a transport
// failure.
func (c *Client) Fetch(ctx context.Context, channel string) (streams.Status, error) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return streams.Status{}, errors.New("channel name is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/streams/" + url.PathEscape(channel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return streams.Status{}, fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	if c.clientID != "" {
		req.Header.Set("Client-ID", c.clientID)
	}
	if c.oauthToken != "" {
		req.Header.Set("Authorization", "OAuth "+c.oauthToken)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return streams.Status{}, fmt.Errorf("query stream status: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return streams.Status{}, fmt.Errorf("read stream status: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return streams.Status{}, &StatusError{Code: resp.StatusCode, Body: snippet}
	}
	return ParseStatus(channel, body)
}

// Status reports whether channel is live. Every failure collapses to
// "not live" after being logged; the next poll is the retry.
func (c *Client) Status(ctx context.Context, channel string) (streams.Status, bool) {
	status, err := c.Fetch(ctx, channel)
	if err == nil {
		c.logger.Info("channel is live",
			logging.String(logging.FieldChannel, channel),
			logging.String("activity", status.Activity),
		)
		return status, true
	}

	switch {
	case errors.Is(err, ErrOffline):
		c.logger.Info("channel is not live", logging.String(logging.FieldChannel, channel))
	case errors.Is(err, ErrNotLive):
		c.logger.Info("ignoring non-live stream", logging.String(logging.FieldChannel, channel), logging.Error(err))
	case errors.Is(err, ErrMalformed):
		logging.WarnWithContext(c.logger, "unusable stream payload", "status_malformed",
			logging.String(logging.FieldChannel, channel),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check api.base_url points at a Kraken-compatible endpoint"),
			logging.String(logging.FieldImpact, "channel treated as offline this tick"),
		)
	case errors.Is(err, context.Canceled):
	default:
		logging.ErrorWithContext(c.logger, "stream status query failed", "status_failed",
			logging.String(logging.FieldChannel, channel),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check network access and api.client_id"),
		)
	}
	return streams.Status{}, false
}
