package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"streamwatch/internal/channels"
	"streamwatch/internal/config"
	"streamwatch/internal/logging"
	"streamwatch/internal/notifications"
	"streamwatch/internal/streams"
)

// ErrTickPanic wraps a panic recovered from a tick. It is fatal to Run.
var ErrTickPanic = errors.New("tick panicked")

// ConfigSource supplies configuration snapshots.
type ConfigSource interface {
	Current() config.Config
	Reload() (bool, error)
}

// ChannelSource supplies the tracked channel list.
type ChannelSource interface {
	Read() ([]string, error)
}

// StatusSource reports whether a channel is live.
type StatusSource interface {
	Status(ctx context.Context, channel string) (streams.Status, bool)
}

// IconStore resolves and prunes per-channel icons.
type IconStore interface {
	Resolve(ctx context.Context, channel, iconURL string) string
	Prune(exceptions []string) (int, error)
}

// Deps are the collaborators of a Monitor. Logger and OnReload are optional.
type Deps struct {
	Config   ConfigSource
	Channels ChannelSource
	Status   StatusSource
	Icons    IconStore
	Notifier notifications.Service
	Logger   *slog.Logger
	// OnReload is called with the new snapshot after a reload changed it.
	OnReload func(config.Config)
}

// TickResult summarizes one tick.
type TickResult struct {
	Tick     uint64
	Channels int
	Live     int
	Pruned   int
	Events   []streams.Event
	// ListErr is the channel list read failure, if any. The tick still ran
	// against the previously read list.
	ListErr error
}

// Monitor owns the known-state table and runs the poll loop. It is not
// safe for concurrent use; ticks never overlap.
type Monitor struct {
	deps   Deps
	logger *slog.Logger
	cfg    config.Config
	known  streams.KnownState
	tick   uint64
}

// New validates deps and returns a monitor with an empty known state.
func New(deps Deps) (*Monitor, error) {
	switch {
	case deps.Config == nil:
		return nil, errors.New("monitor: config source required")
	case deps.Channels == nil:
		return nil, errors.New("monitor: channel source required")
	case deps.Status == nil:
		return nil, errors.New("monitor: status source required")
	case deps.Icons == nil:
		return nil, errors.New("monitor: icon store required")
	case deps.Notifier == nil:
		return nil, errors.New("monitor: notifier required")
	}
	return &Monitor{
		deps:   deps,
		logger: logging.NewComponentLogger(deps.Logger, "monitor"),
		cfg:    deps.Config.Current(),
		known:  streams.KnownState{},
	}, nil
}

// Known returns a copy of the known-state table.
func (m *Monitor) Known() streams.KnownState {
	return m.known.Clone()
}

// Run ticks until ctx is cancelled, sleeping check_interval between ticks
// and reloading configuration every reload_every_ticks ticks. It returns nil
// on cancellation and an error wrapping ErrTickPanic when a tick panics.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("watcher started",
		logging.Duration("interval", m.cfg.Interval()),
		logging.Int("reload_every_ticks", m.cfg.ReloadEveryTicks),
		logging.String(logging.FieldEventType, "watcher_started"),
	)
	for {
		if ctx.Err() != nil {
			return m.stopped()
		}
		if m.tick > 0 && m.cfg.ReloadEveryTicks > 0 && m.tick%uint64(m.cfg.ReloadEveryTicks) == 0 {
			m.reload()
		}

		if _, err := m.safeTick(ctx); err != nil {
			if ctx.Err() != nil {
				return m.stopped()
			}
			return err
		}

		timer := time.NewTimer(m.cfg.Interval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return m.stopped()
		case <-timer.C:
		}
	}
}

func (m *Monitor) stopped() error {
	m.logger.Info("watcher stopping",
		logging.Int("live_channels", len(m.known)),
		logging.String(logging.FieldEventType, "watcher_stopped"),
	)
	return nil
}

func (m *Monitor) reload() {
	changed, err := m.deps.Config.Reload()
	if err != nil {
		logging.WarnWithContext(m.logger, "config reload failed; keeping previous settings", "config_reload_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the config file; it is re-read every few ticks"),
			logging.String(logging.FieldImpact, "previous settings stay active"),
		)
		return
	}
	if !changed {
		return
	}
	m.cfg = m.deps.Config.Current()
	if m.deps.OnReload != nil {
		m.deps.OnReload(m.cfg)
	}
	m.logger.Info("config reloaded",
		logging.Duration("interval", m.cfg.Interval()),
		logging.Duration("notification_duration", m.cfg.NotificationTimeout()),
		logging.Bool("enable_logging", m.cfg.EnableLogging),
		logging.String(logging.FieldEventType, "config_reloaded"),
	)
}

func (m *Monitor) safeTick(ctx context.Context) (result TickResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTickPanic, r)
			logging.ErrorWithContext(m.logger, "tick panicked; stopping watcher", "tick_panic",
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
				logging.String(logging.FieldErrorHint, "restart streamwatch; report the stack trace"),
			)
		}
	}()
	return m.Tick(ctx)
}

// Tick runs one poll cycle: prune icons of channels not live at the end of
// the previous tick, read the channel list, query each channel, reconcile,
// resolve icons for new events, and present them in list order. The known
// state is committed only when the tick completes; a cancelled tick returns
// ctx.Err() and leaves it untouched.
func (m *Monitor) Tick(ctx context.Context) (TickResult, error) {
	m.tick++
	result := TickResult{Tick: m.tick}
	ctx = logging.WithTick(ctx, m.tick)
	logger := logging.WithContext(ctx, m.logger)

	if err := ctx.Err(); err != nil {
		return result, err
	}

	pruned, err := m.deps.Icons.Prune(m.known.Keys())
	if err != nil {
		logging.WarnWithContext(logger, "icon prune incomplete", "icon_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on paths.icons_dir"),
			logging.String(logging.FieldImpact, "stale icons stay on disk until the next tick"),
		)
	}
	result.Pruned = pruned

	// Read has already logged a failure and handed back the last good list.
	names, listErr := m.deps.Channels.Read()
	result.ListErr = listErr
	result.Channels = len(names)
	logger.Debug("checking channels", logging.Int("count", len(names)))

	observations := make([]streams.Observation, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		key := channels.Key(name)
		status, live := m.deps.Status.Status(logging.WithChannel(ctx, name), name)
		if live {
			observations = append(observations, streams.Live(key, status))
		} else {
			observations = append(observations, streams.Offline(key))
		}
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	events, next := streams.Reconcile(m.known, observations)
	for i := range events {
		ev := &events[i]
		ev.Status.IconPath = m.deps.Icons.Resolve(ctx, ev.Status.Channel, ev.Status.IconURL)
		next.SetIconPath(ev.Key, ev.Status.IconPath)
	}

	duration := m.cfg.NotificationTimeout()
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		logger.Info("stream transition",
			logging.String(logging.FieldChannel, ev.Status.Channel),
			logging.String(logging.FieldEventType, string(ev.Kind)),
			logging.String("activity", ev.Status.Activity),
			logging.String("title", ev.Status.Title),
		)
		if err := m.deps.Notifier.Notify(ctx, notifications.FromEvent(ev, duration)); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			logging.WarnWithContext(logger, "notification not delivered", "notify_failed",
				logging.String(logging.FieldChannel, ev.Status.Channel),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the desktop notification service or ntfy topic"),
				logging.String(logging.FieldImpact, "this transition is not shown again"),
			)
		}
	}

	m.known = next
	result.Events = events
	result.Live = len(next)
	logger.Debug("tick complete",
		logging.Int("events", len(events)),
		logging.Int("live", len(next)),
		logging.Int("pruned", pruned),
	)
	return result, nil
}
