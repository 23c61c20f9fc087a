package daemonrun_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"streamwatch/internal/daemonrun"
	"streamwatch/internal/logging"
	"streamwatch/internal/runlock"
)

type layout struct {
	configPath string
	lockFile   string
	logDir     string
	iconPath   string
}

func writeConfig(t *testing.T) layout {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", base)
	l := layout{
		configPath: filepath.Join(base, "config.toml"),
		lockFile:   filepath.Join(base, "state", "streamwatch.lock"),
		logDir:     filepath.Join(base, "logs"),
		iconPath:   filepath.Join(base, "share", "twitch.ico"),
	}
	list := filepath.Join(base, "streamlist.txt")
	if err := os.WriteFile(list, []byte("alice\n"), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	body := fmt.Sprintf(`check_interval = 3600

[api]
client_id = "test-client"
base_url = "http://127.0.0.1:1"

[paths]
channels_file = %q
icons_dir = %q
default_icon = %q
log_dir = %q
lock_file = %q

[notifications]
desktop = false
`, list, filepath.Join(base, "icons"), l.iconPath, l.logDir, l.lockFile)
	if err := os.WriteFile(l.configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return l
}

func TestRunExitsQuietlyWhenAnotherInstanceHoldsTheLock(t *testing.T) {
	l := writeConfig(t)
	holder := runlock.New(l.lockFile)
	if err := holder.Acquire(); err != nil {
		t.Fatalf("pre-acquire: %v", err)
	}
	defer holder.Release()

	var out bytes.Buffer
	err := daemonrun.Run(context.Background(), daemonrun.Options{ConfigPath: l.configPath, Stdout: &out})
	if err != nil {
		t.Fatalf("expected nil for a second instance, got %v", err)
	}
	if !strings.Contains(out.String(), "already running") {
		t.Fatalf("expected already-running message, got %q", out.String())
	}
	if _, err := os.Stat(l.lockFile); err != nil {
		t.Fatalf("expected holder's lock record untouched: %v", err)
	}
}

func TestRunReleasesLockOnShutdown(t *testing.T) {
	l := writeConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	if err := daemonrun.Run(ctx, daemonrun.Options{ConfigPath: l.configPath, Stdout: &out}); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
	if _, err := os.Stat(l.lockFile); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected lock record removed, got %v", err)
	}
	if _, err := os.Stat(l.iconPath); err != nil {
		t.Fatalf("expected default icon created: %v", err)
	}
	if _, err := os.Stat(logging.CurrentLogPath(l.logDir)); err != nil {
		t.Fatalf("expected current log link: %v", err)
	}
	if !strings.Contains(out.String(), "startup snapshot") {
		t.Fatalf("expected startup snapshot on the console, got %q", out.String())
	}
}
