package monitor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"streamwatch/internal/channels"
	"streamwatch/internal/config"
	"streamwatch/internal/logging"
	"streamwatch/internal/monitor"
	"streamwatch/internal/notifications"
	"streamwatch/internal/streams"
)

type scriptedStatus struct {
	mu      sync.Mutex
	live    map[string]streams.Status
	queries []string
	panicOn string
}

func (s *scriptedStatus) set(channel string, status *streams.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live == nil {
		s.live = map[string]streams.Status{}
	}
	if status == nil {
		delete(s.live, channel)
		return
	}
	s.live[channel] = *status
}

func (s *scriptedStatus) Status(_ context.Context, channel string) (streams.Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if channel == s.panicOn {
		panic("boom")
	}
	s.queries = append(s.queries, channel)
	status, ok := s.live[channel]
	return status, ok
}

type fakeIcons struct {
	resolved []string
	prunes   [][]string
}

func (f *fakeIcons) Resolve(_ context.Context, channel, _ string) string {
	f.resolved = append(f.resolved, channel)
	return "/icons/" + channels.Key(channel) + ".ico"
}

func (f *fakeIcons) Prune(exceptions []string) (int, error) {
	f.prunes = append(f.prunes, append([]string(nil), exceptions...))
	return 0, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notifications.Notification
	err   error
}

func (r *recordingNotifier) Notify(_ context.Context, n notifications.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, n)
	return r.err
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type fixture struct {
	monitor  *monitor.Monitor
	status   *scriptedStatus
	icons    *fakeIcons
	notifier *recordingNotifier
	listPath string
}

func newFixture(t *testing.T, list string, cfg config.Config) *fixture {
	t.Helper()
	listPath := filepath.Join(t.TempDir(), "channels.txt")
	if err := os.WriteFile(listPath, []byte(list), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	f := &fixture{
		status:   &scriptedStatus{},
		icons:    &fakeIcons{},
		notifier: &recordingNotifier{},
		listPath: listPath,
	}
	m, err := monitor.New(monitor.Deps{
		Config:   config.NewStaticStore(cfg, ""),
		Channels: channels.NewSource(listPath, logging.NewNop()),
		Status:   f.status,
		Icons:    f.icons,
		Notifier: f.notifier,
		Logger:   logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("monitor.New: %v", err)
	}
	f.monitor = m
	return f
}

func tick(t *testing.T, m *monitor.Monitor) monitor.TickResult {
	t.Helper()
	result, err := m.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick returned error: %v", err)
	}
	return result
}

func TestTickLifecycle(t *testing.T) {
	f := newFixture(t, "alice\n#bob\n\n", config.Default())

	f.status.set("alice", &streams.Status{Channel: "alice", DisplayName: "Alice", Activity: "Chess", Title: "Blitz"})
	result := tick(t, f.monitor)
	if len(result.Events) != 1 || result.Events[0].Kind != streams.WentLive {
		t.Fatalf("expected one went-live event, got %+v", result.Events)
	}
	if f.notifier.count() != 1 || f.notifier.calls[0].Title != "Alice is live!" {
		t.Fatalf("unexpected notifications %+v", f.notifier.calls)
	}
	if got := f.monitor.Known()["alice"].IconPath; got != "/icons/alice.ico" {
		t.Fatalf("expected icon path stored in known state, got %q", got)
	}
	if len(f.status.queries) != 1 || f.status.queries[0] != "alice" {
		t.Fatalf("expected only alice queried, got %v", f.status.queries)
	}

	result = tick(t, f.monitor)
	if len(result.Events) != 0 || f.notifier.count() != 1 {
		t.Fatalf("expected no event for a steady stream, got %+v", result.Events)
	}

	f.status.set("alice", &streams.Status{Channel: "alice", DisplayName: "Alice", Activity: "Poker", Title: "All in"})
	result = tick(t, f.monitor)
	if len(result.Events) != 1 || result.Events[0].Kind != streams.ActivityChanged {
		t.Fatalf("expected activity change, got %+v", result.Events)
	}
	if f.notifier.calls[1].Message != "Alice playing Poker\nAll in" {
		t.Fatalf("unexpected message %q", f.notifier.calls[1].Message)
	}

	f.status.set("alice", nil)
	result = tick(t, f.monitor)
	if len(result.Events) != 0 || result.Live != 0 {
		t.Fatalf("expected alice removed silently, got %+v", result)
	}
	if len(f.monitor.Known()) != 0 {
		t.Fatalf("expected empty known state, got %v", f.monitor.Known())
	}

	tick(t, f.monitor)
	last := f.icons.prunes[len(f.icons.prunes)-1]
	if len(last) != 0 {
		t.Fatalf("expected prune with no exceptions once alice is offline, got %v", last)
	}
	if f.icons.prunes[1][0] != "alice" {
		t.Fatalf("expected alice kept while live, got %v", f.icons.prunes[1])
	}
}

func TestTickEventsFollowListOrder(t *testing.T) {
	f := newFixture(t, "carol\nAlice\nbob\n", config.Default())
	for _, name := range []string{"carol", "Alice", "bob"} {
		f.status.set(name, &streams.Status{Channel: name, Activity: "Chess"})
	}
	result := tick(t, f.monitor)
	if len(result.Events) != 3 {
		t.Fatalf("expected three events, got %d", len(result.Events))
	}
	for i, want := range []string{"carol", "alice", "bob"} {
		if result.Events[i].Key != want {
			t.Fatalf("event %d: expected key %q, got %q", i, want, result.Events[i].Key)
		}
	}
}

func TestTickNotifyFailureStillCommits(t *testing.T) {
	f := newFixture(t, "alice\n", config.Default())
	f.notifier.err = errors.New("dbus unavailable")
	f.status.set("alice", &streams.Status{Channel: "alice", Activity: "Chess"})

	tick(t, f.monitor)
	if _, ok := f.monitor.Known()["alice"]; !ok {
		t.Fatal("expected alice committed despite notify failure")
	}
	tick(t, f.monitor)
	if f.notifier.count() != 1 {
		t.Fatalf("expected no retry of a failed notification, got %d calls", f.notifier.count())
	}
}

func TestTickCancelledLeavesStateUntouched(t *testing.T) {
	f := newFixture(t, "alice\n", config.Default())
	f.status.set("alice", &streams.Status{Channel: "alice", Activity: "Chess"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.monitor.Tick(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(f.monitor.Known()) != 0 || f.notifier.count() != 0 {
		t.Fatal("expected nothing committed for a cancelled tick")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.CheckInterval = 3600
	f := newFixture(t, "alice\n", cfg)
	f.status.set("alice", &streams.Status{Channel: "alice", Activity: "Chess"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.monitor.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for f.notifier.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil on cancellation, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	if f.notifier.count() != 1 {
		t.Fatalf("expected one notification before shutdown, got %d", f.notifier.count())
	}
}

func TestRunReturnsErrorWhenTickPanics(t *testing.T) {
	f := newFixture(t, "alice\n", config.Default())
	f.status.panicOn = "alice"

	err := f.monitor.Run(context.Background())
	if !errors.Is(err, monitor.ErrTickPanic) {
		t.Fatalf("expected ErrTickPanic, got %v", err)
	}
}

func TestRunReloadsConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	listPath := filepath.Join(dir, "channels.txt")
	if err := os.WriteFile(listPath, []byte("alice\n"), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	write := func(enable bool) {
		body := "check_interval = 1\nreload_every_ticks = 1\nenable_logging = false\n"
		if enable {
			body = "check_interval = 1\nreload_every_ticks = 1\nenable_logging = true\n"
		}
		if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	write(false)
	store, err := config.OpenStore(cfgPath)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	write(true)

	reloaded := make(chan config.Config, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m, err := monitor.New(monitor.Deps{
		Config:   store,
		Channels: channels.NewSource(listPath, logging.NewNop()),
		Status:   &scriptedStatus{},
		Icons:    &fakeIcons{},
		Notifier: &recordingNotifier{},
		OnReload: func(cfg config.Config) {
			reloaded <- cfg
			cancel()
		},
	})
	if err != nil {
		t.Fatalf("monitor.New: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case cfg := <-reloaded:
		if !cfg.EnableLogging {
			t.Fatal("expected reloaded snapshot to enable logging")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
	if err := <-done; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := monitor.New(monitor.Deps{}); err == nil {
		t.Fatal("expected error for missing collaborators")
	}
}

func TestTickKeepsPreviousListWhenReadFails(t *testing.T) {
	f := newFixture(t, "alice\n", config.Default())
	f.status.set("alice", &streams.Status{Channel: "alice", Activity: "Chess"})

	if result := tick(t, f.monitor); result.ListErr != nil || len(result.Events) != 1 {
		t.Fatalf("expected one event from a readable list, got %+v", result)
	}

	if err := os.Remove(f.listPath); err != nil {
		t.Fatalf("remove list: %v", err)
	}
	result := tick(t, f.monitor)
	if result.ListErr == nil {
		t.Fatal("expected the read failure to be recorded")
	}
	if result.Channels != 1 || len(result.Events) != 0 {
		t.Fatalf("expected the previous list to be polled without new events, got %+v", result)
	}
	if _, ok := f.monitor.Known()["alice"]; !ok {
		t.Fatalf("expected alice to stay known, got %v", f.monitor.Known())
	}
	if f.notifier.count() != 1 {
		t.Fatalf("expected a single notification, got %d", f.notifier.count())
	}
}
