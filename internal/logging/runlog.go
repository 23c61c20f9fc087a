package logging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	runLogPrefix  = "streamwatch-"
	runLogSuffix  = ".log"
	currentLogRef = "streamwatch.log"
)

// RunLogOptions describes the logger for one watcher process.
type RunLogOptions struct {
	Dir           string
	Format        string
	Level         string
	Enabled       bool
	RunID         string
	RetentionDays int
	// Console receives a human-readable copy of every record. Nil means stdout.
	Console io.Writer
}

// RunLog is the logger of a running watcher together with the file backing it.
type RunLog struct {
	Logger *slog.Logger
	Switch *Switch
	RunID  string
	Path   string

	file *os.File
}

// RunLogPath returns the per-run log file path under dir. Names start with
// the UTC start time so a directory listing is in run order.
func RunLogPath(dir string, started time.Time, runID string) string {
	stem := started.UTC().Format("20060102T150405Z") + "-" + ShortRunID(runID)
	return filepath.Join(dir, runLogPrefix+stem+runLogSuffix)
}

// CurrentLogPath returns the path of the symlink that points at the active run log.
func CurrentLogPath(dir string) string {
	return filepath.Join(dir, currentLogRef)
}

// OpenRunLog creates the per-run log file, points the current symlink at it,
// prunes old run logs, and returns a logger writing to both the file and the
// console. Output is gated by the returned Switch.
func OpenRunLog(opts RunLogOptions) (*RunLog, error) {
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, errors.New("run log: directory is required")
	}
	runID := opts.RunID
	if runID == "" {
		runID = NewRunID()
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}

	path := RunLogPath(opts.Dir, time.Now(), runID)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}

	sw := NewSwitch(opts.Enabled, opts.Level)
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	var fileHandler slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		fileHandler = newJSONHandler(file, sw, false)
	} else {
		fileHandler = newPrettyHandler(file, sw, false)
	}
	handler := newFanoutHandler(fileHandler, newPrettyHandler(console, sw, false))
	handler = newSwitchHandler(newRunIDHandler(handler, runID), sw)
	logger := slog.New(handler)

	if err := linkCurrent(opts.Dir, path); err != nil {
		WarnWithContext(logger, "current log link not updated", "log_link_failed",
			String("path", CurrentLogPath(opts.Dir)),
			Error(err),
			String(FieldErrorHint, "symlinks may be unsupported on this filesystem"),
			String(FieldImpact, "open the per-run log file directly"),
		)
	}
	CleanupOldLogs(logger, opts.RetentionDays, RetentionTarget{
		Dir:     opts.Dir,
		Pattern: runLogPrefix + "*" + runLogSuffix,
		Exclude: []string{path},
	})

	return &RunLog{Logger: logger, Switch: sw, RunID: runID, Path: path, file: file}, nil
}

// Close flushes and closes the run log file.
func (r *RunLog) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func linkCurrent(dir, target string) error {
	link := CurrentLogPath(dir)
	if err := os.Remove(link); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.Symlink(filepath.Base(target), link); err == nil {
		return nil
	}
	if err := os.Link(target, link); err != nil {
		return fmt.Errorf("link current log: %w", err)
	}
	return nil
}
