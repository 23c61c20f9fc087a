package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// FieldRunID is the standardized structured logging key for the process run identifier.
const FieldRunID = "run_id"

// NewRunID returns a fresh identifier for one watcher process.
func NewRunID() string {
	return uuid.NewString()
}

// ShortRunID returns the first eight characters of a run ID for file names.
func ShortRunID(runID string) string {
	if parsed, err := uuid.Parse(runID); err == nil {
		return parsed.String()[:8]
	}
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}

// runIDHandler wraps another handler to inject a run_id attribute into all records.
type runIDHandler struct {
	base  slog.Handler
	runID string
}

func newRunIDHandler(base slog.Handler, runID string) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	if runID == "" {
		return base
	}
	return &runIDHandler{base: base, runID: runID}
}

func (h *runIDHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *runIDHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(slog.String(FieldRunID, h.runID))
	return h.base.Handle(ctx, record)
}

func (h *runIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &runIDHandler{base: h.base.WithAttrs(attrs), runID: h.runID}
}

func (h *runIDHandler) WithGroup(name string) slog.Handler {
	return &runIDHandler{base: h.base.WithGroup(name), runID: h.runID}
}
