package runlock

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"streamwatch/internal/fileutil"
	"streamwatch/internal/logging"
)

// ErrAlreadyRunning reports that another live process owns the run lock.
var ErrAlreadyRunning = errors.New("another streamwatch instance is already running")

// AliveFunc reports whether a process with the given pid is running.
type AliveFunc func(pid int) bool

// Guard is the single-instance run lock. The pid record lives at the lock
// path; an advisory flock on a sibling file closes the race between two
// processes starting at the same moment.
type Guard struct {
	path   string
	lock   *flock.Flock
	alive  AliveFunc
	pid    int
	logger *slog.Logger
	held   bool
}

// Option customizes a Guard.
type Option func(*Guard)

// WithAliveFunc replaces the OS liveness probe.
func WithAliveFunc(fn AliveFunc) Option {
	return func(g *Guard) {
		if fn != nil {
			g.alive = fn
		}
	}
}

// WithPID overrides the pid written to the record.
func WithPID(pid int) Option {
	return func(g *Guard) {
		if pid > 0 {
			g.pid = pid
		}
	}
}

// WithLogger sets the logger used for reclaim and release messages.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logging.NewComponentLogger(logger, "runlock")
	}
}

// New returns a guard for the lock file at path.
func New(path string, opts ...Option) *Guard {
	g := &Guard{
		path:   path,
		lock:   flock.New(path + ".flock"),
		alive:  ProcessAlive,
		pid:    os.Getpid(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Path returns the pid record location.
func (g *Guard) Path() string {
	return g.path
}

// Acquire claims the run lock. It returns ErrAlreadyRunning when another
// live instance owns it and reclaims a record left behind by a dead process.
func (g *Guard) Acquire() error {
	if g.held {
		return nil
	}
	if dir := filepath.Dir(g.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure lock directory: %w", err)
		}
	}

	ok, err := g.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}

	pid, err := ReadPID(g.path)
	switch {
	case err == nil && pid != g.pid && g.alive(pid):
		_ = g.lock.Unlock()
		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	case err == nil && pid != g.pid:
		g.logger.Info("reclaiming stale run lock",
			logging.Int("stale_pid", pid),
			logging.String("path", g.path),
			logging.String(logging.FieldEventType, "lock_reclaimed"),
		)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		logging.WarnWithContext(g.logger, "unreadable run lock record replaced", "lock_record_invalid",
			logging.String("path", g.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the previous run likely crashed while writing the lock"),
			logging.String(logging.FieldImpact, "none; the record is overwritten"),
		)
	}

	if err := writePID(g.path, g.pid); err != nil {
		_ = g.lock.Unlock()
		return fmt.Errorf("write lock record: %w", err)
	}
	g.held = true
	return nil
}

// Release removes the pid record and drops the advisory lock. The .flock
// file stays on disk so every instance locks the same inode. It is safe to
// call when the lock is not held.
func (g *Guard) Release() error {
	if !g.held {
		return nil
	}
	g.held = false

	var errs []error
	if err := os.Remove(g.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = append(errs, fmt.Errorf("remove lock record: %w", err))
	}
	if err := g.lock.Unlock(); err != nil {
		errs = append(errs, fmt.Errorf("release lock: %w", err))
	}
	return errors.Join(errs...)
}

// Status describes the lock record as seen from outside the owning process.
type Status struct {
	Path    string
	Present bool
	PID     int
	Alive   bool
}

// Status reads the lock record and probes the recorded pid.
func (g *Guard) Status() (Status, error) {
	status := Status{Path: g.path}
	pid, err := ReadPID(g.path)
	if errors.Is(err, fs.ErrNotExist) {
		return status, nil
	}
	if err != nil {
		status.Present = true
		return status, err
	}
	status.Present = true
	status.PID = pid
	status.Alive = g.alive(pid)
	return status, nil
}

// ReadPID parses the pid stored at path.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	value := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(value)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid record %q", value)
	}
	return pid, nil
}

func writePID(path string, pid int) error {
	return fileutil.WriteFileAtomic(path, []byte(strconv.Itoa(pid)+"\n"), 0o644)
}
