package notifications

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"streamwatch/internal/config"
)

const userAgent = "streamwatch/0.1"

// Notification is one message to present.
type Notification struct {
	Title    string
	Message  string
	IconPath string
	IconURL  string
	Duration time.Duration
	Tags     []string
	Priority string
}

// Service presents notifications. Implementations block until the
// notification has been delivered or shown for its duration.
type Service interface {
	Notify(ctx context.Context, n Notification) error
}

// NewService builds the configured notifier: desktop toasts when enabled,
// mirrored to ntfy when a topic is set. With neither, a noop is returned.
func NewService(cfg config.Notifications, logger *slog.Logger) Service {
	var sinks []Service
	// ntfy goes first; the desktop sink blocks for the display duration.
	if topic := strings.TrimSpace(cfg.NtfyTopic); topic != "" {
		timeout := time.Duration(cfg.RequestTimeout) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		sinks = append(sinks, NewNtfyService(topic, &http.Client{Timeout: timeout}))
	}
	if cfg.Desktop {
		sinks = append(sinks, NewDesktopService(cfg.AppName, cfg.Sound, logger))
	}
	return Multi(sinks...)
}

// Multi delivers each notification to every service in order and joins
// their errors.
func Multi(services ...Service) Service {
	filtered := make([]Service, 0, len(services))
	for _, svc := range services {
		if svc != nil {
			filtered = append(filtered, svc)
		}
	}
	switch len(filtered) {
	case 0:
		return noopService{}
	case 1:
		return filtered[0]
	default:
		return multiService(filtered)
	}
}

type multiService []Service

func (m multiService) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, svc := range m {
		if err := svc.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	return errors.Join(errs...)
}

type noopService struct{}

func (noopService) Notify(context.Context, Notification) error { return nil }
