package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/beeep"

	"streamwatch/internal/logging"
)

// Presenter shows a desktop notification and returns once it has been
// handed to the OS.
type Presenter func(title, message, iconPath string) error

// presentationSlot serializes desktop notifications across the process.
var presentationSlot = make(chan struct{}, 1)

var appNameOnce sync.Once

type desktopService struct {
	present Presenter
	slot    chan struct{}
	logger  *slog.Logger
}

// NewDesktopService shows notifications with beeep. With sound set the
// notification is raised as an alert.
func NewDesktopService(appName string, sound bool, logger *slog.Logger) Service {
	if name := strings.TrimSpace(appName); name != "" {
		appNameOnce.Do(func() { beeep.AppName = name })
	}
	present := func(title, message, icon string) error {
		return beeep.Notify(title, message, icon)
	}
	if sound {
		present = func(title, message, icon string) error {
			return beeep.Alert(title, message, icon)
		}
	}
	return NewDesktopServiceWith(present, logger)
}

// NewDesktopServiceWith builds a desktop service around a custom presenter.
// It shares the process-wide presentation slot.
func NewDesktopServiceWith(present Presenter, logger *slog.Logger) Service {
	return newDesktopService(present, presentationSlot, logger)
}

func newDesktopService(present Presenter, slot chan struct{}, logger *slog.Logger) *desktopService {
	return &desktopService{
		present: present,
		slot:    slot,
		logger:  logging.NewComponentLogger(logger, "desktop"),
	}
}

// Notify waits for the presentation slot, shows the notification, and keeps
// the slot for n.Duration so the next notification never overlaps it.
// Cancelling ctx releases the slot early.
func (d *desktopService) Notify(ctx context.Context, n Notification) error {
	select {
	case d.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-d.slot }()

	if err := d.present(n.Title, n.Message, n.IconPath); err != nil {
		return fmt.Errorf("show desktop notification: %w", err)
	}
	d.logger.Debug("notification shown",
		logging.String("title", n.Title),
		logging.Duration("duration", n.Duration),
	)

	if n.Duration <= 0 {
		return nil
	}
	timer := time.NewTimer(n.Duration)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
