package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"streamwatch/internal/channels"
	"streamwatch/internal/config"
	"streamwatch/internal/iconcache"
	"streamwatch/internal/logging"
	"streamwatch/internal/monitor"
	"streamwatch/internal/notifications"
	"streamwatch/internal/runlock"
	"streamwatch/internal/twitch"
)

// Options configures the watcher process.
type Options struct {
	// ConfigPath is the --config flag value; empty searches the default locations.
	ConfigPath string
	// LogLevel overrides logging.level for the whole run when set.
	LogLevel string
	// Stdout receives console log output and user-facing messages. Nil means os.Stdout.
	Stdout io.Writer
}

// Run starts the watcher and blocks until SIGINT, SIGTERM, or cancellation
// of cmdCtx. A second instance exits quietly with a nil error. A tick panic
// is returned after the run lock has been released.
func Run(cmdCtx context.Context, opts Options) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	store, loadErr := config.OpenStore(opts.ConfigPath)
	if store == nil {
		return fmt.Errorf("load config: %w", loadErr)
	}
	cfg := store.Current()
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	level := cfg.Logging.Level
	levelPinned := strings.TrimSpace(opts.LogLevel) != ""
	if levelPinned {
		level = opts.LogLevel
	}
	runLog, err := logging.OpenRunLog(logging.RunLogOptions{
		Dir:           cfg.Paths.LogDir,
		Format:        cfg.Logging.Format,
		Level:         level,
		Enabled:       cfg.EnableLogging,
		RetentionDays: cfg.Logging.RetentionDays,
		Console:       stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer runLog.Close()
	logger := runLog.Logger

	if loadErr != nil {
		logging.WarnWithContext(logger, "config not loaded; running with defaults", "config_load_failed",
			logging.Error(loadErr),
			logging.String(logging.FieldErrorHint, "run `streamwatch config validate` to see what is wrong"),
			logging.String(logging.FieldImpact, "defaults stay active until the file loads on a later reload"),
		)
	}

	guard := runlock.New(cfg.Paths.LockFile, runlock.WithLogger(logger))
	if err := guard.Acquire(); err != nil {
		if errors.Is(err, runlock.ErrAlreadyRunning) {
			fmt.Fprintf(stdout, "streamwatch is already running (%v); nothing to do\n", err)
			logger.Info("another instance owns the run lock; exiting",
				logging.String("lock_file", cfg.Paths.LockFile),
				logging.String(logging.FieldEventType, "already_running"),
			)
			return nil
		}
		return fmt.Errorf("acquire run lock: %w", err)
	}
	defer func() {
		if err := guard.Release(); err != nil {
			logging.WarnWithContext(logger, "run lock not released cleanly", "lock_release_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove "+cfg.Paths.LockFile+" if the next start refuses to run"),
			)
		}
	}()

	logStartupSnapshot(logger, store, &cfg, runLog)

	if created, err := iconcache.EnsureDefaultIcon(cfg.Paths.DefaultIcon); err != nil {
		logging.WarnWithContext(logger, "default icon unavailable", "default_icon_failed",
			logging.String("path", cfg.Paths.DefaultIcon),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the default_icon directory"),
			logging.String(logging.FieldImpact, "notifications without a channel logo show no icon"),
		)
	} else if created {
		logger.Info("default icon created", logging.String("path", cfg.Paths.DefaultIcon))
	}

	mon, err := monitor.New(monitor.Deps{
		Config:   store,
		Channels: channels.NewSource(cfg.Paths.ChannelsFile, logger),
		Status:   twitch.NewClient(cfg.API, logger),
		Icons:    iconcache.New(cfg.Paths.IconsDir, cfg.Paths.DefaultIcon, cfg.APITimeout(), logger),
		Notifier: notifications.NewService(cfg.Notifications, logger),
		Logger:   logger,
		OnReload: func(next config.Config) {
			if !levelPinned {
				runLog.Switch.SetLevel(next.Logging.Level)
			}
			if runLog.Switch.SetEnabled(next.EnableLogging) && next.EnableLogging {
				logger.Info("logging re-enabled by config reload")
			}
		},
	})
	if err != nil {
		return fmt.Errorf("create monitor: %w", err)
	}

	if err := mon.Run(signalCtx); err != nil {
		logger.Error("watcher stopped on error",
			logging.Error(err),
			logging.String(logging.FieldEventType, "watcher_failed"),
		)
		return err
	}
	logger.Info("streamwatch shut down")
	return nil
}

func logStartupSnapshot(logger *slog.Logger, store *config.Store, cfg *config.Config, runLog *logging.RunLog) {
	configPath, configExists := store.Path()
	logger.Info("startup snapshot",
		logging.String(logging.FieldEventType, "startup_snapshot"),
		logging.String("config_path", configPath),
		logging.Bool("config_present", configExists),
		logging.String("log_path", runLog.Path),
		logging.String("channels_file", cfg.Paths.ChannelsFile),
		logging.String("icons_dir", cfg.Paths.IconsDir),
		logging.String("api_base_url", cfg.API.BaseURL),
		logging.Bool("client_id_present", strings.TrimSpace(cfg.API.ClientID) != ""),
		logging.Bool("oauth_token_present", strings.TrimSpace(cfg.API.OAuthToken) != ""),
		logging.Bool("desktop_notifications", cfg.Notifications.Desktop),
		logging.Bool("ntfy_enabled", strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""),
		logging.Duration("interval", cfg.Interval()),
	)
	if strings.TrimSpace(cfg.API.ClientID) == "" {
		logging.WarnWithContext(logger, "no API client id configured", "client_id_missing",
			logging.String(logging.FieldErrorHint, "set api.client_id or TWITCH_CLIENT_ID"),
			logging.String(logging.FieldImpact, "status queries will likely be rejected"),
		)
	}
}
