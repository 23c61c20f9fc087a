package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Switch turns a logger on or off and holds its minimum level. Both can be
// changed while the logger is in use.
type Switch struct {
	enabled atomic.Bool
	level   slog.LevelVar
}

// NewSwitch returns a switch with the given initial state and level name.
func NewSwitch(enabled bool, level string) *Switch {
	s := &Switch{}
	s.enabled.Store(enabled)
	s.level.Set(parseLevel(level))
	return s
}

// SetEnabled turns output on or off and reports whether the state changed.
func (s *Switch) SetEnabled(enabled bool) bool {
	return s.enabled.Swap(enabled) != enabled
}

// Enabled reports whether output is currently on.
func (s *Switch) Enabled() bool {
	return s.enabled.Load()
}

// SetLevel changes the minimum level using its config name.
func (s *Switch) SetLevel(level string) {
	s.level.Set(parseLevel(level))
}

// Level implements slog.Leveler.
func (s *Switch) Level() slog.Level {
	return s.level.Level()
}

type switchHandler struct {
	next slog.Handler
	sw   *Switch
}

func newSwitchHandler(next slog.Handler, sw *Switch) slog.Handler {
	if next == nil {
		return NoopHandler{}
	}
	if sw == nil {
		return next
	}
	return &switchHandler{next: next, sw: sw}
}

func (h *switchHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if !h.sw.Enabled() {
		return false
	}
	return h.next.Enabled(ctx, level)
}

func (h *switchHandler) Handle(ctx context.Context, record slog.Record) error {
	if !h.sw.Enabled() {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h *switchHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &switchHandler{next: h.next.WithAttrs(attrs), sw: h.sw}
}

func (h *switchHandler) WithGroup(name string) slog.Handler {
	return &switchHandler{next: h.next.WithGroup(name), sw: h.sw}
}
