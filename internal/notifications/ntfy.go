package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPDoer describes the HTTP client used by the ntfy service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ntfyService struct {
	endpoint string
	client   HTTPDoer
}

// NewNtfyService publishes notifications to the ntfy topic URL endpoint.
func NewNtfyService(endpoint string, client HTTPDoer) Service {
	if client == nil {
		client = http.DefaultClient
	}
	return &ntfyService{endpoint: strings.TrimSpace(endpoint), client: client}
}

func (n *ntfyService) Notify(ctx context.Context, data Notification) error {
	if n == nil || n.client == nil || n.endpoint == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.Message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.Title != "" {
		req.Header.Set("Title", data.Title)
	}
	if len(data.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.Tags, ","))
	}
	if data.Priority != "" && data.Priority != "default" {
		req.Header.Set("Priority", data.Priority)
	}
	if strings.HasPrefix(data.IconURL, "https://") || strings.HasPrefix(data.IconURL, "http://") {
		req.Header.Set("Icon", data.IconURL)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
