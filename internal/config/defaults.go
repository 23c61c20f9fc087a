package config

const (
	defaultConfigPath           = "~/.config/streamwatch/config.toml"
	defaultNotificationDuration = 10
	defaultCheckInterval        = 60
	defaultReloadEveryTicks     = 5
	defaultAPIBaseURL           = "https://api.twitch.tv/kraken"
	defaultAPITimeoutSeconds    = 15
	defaultChannelsFile         = "~/.config/streamwatch/streamlist.txt"
	defaultIconsDir             = "~/.cache/streamwatch/icons"
	defaultIcon                 = "~/.local/share/streamwatch/twitch.ico"
	defaultLogDir               = "~/.local/share/streamwatch/logs"
	defaultLockFile             = "~/.local/share/streamwatch/streamwatch.lock"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 14
	defaultAppName              = "streamwatch"
	defaultNotifyTimeout        = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		NotificationDuration: defaultNotificationDuration,
		CheckInterval:        defaultCheckInterval,
		EnableLogging:        true,
		ReloadEveryTicks:     defaultReloadEveryTicks,
		API: API{
			BaseURL:        defaultAPIBaseURL,
			TimeoutSeconds: defaultAPITimeoutSeconds,
		},
		Paths: Paths{
			ChannelsFile: defaultChannelsFile,
			IconsDir:     defaultIconsDir,
			DefaultIcon:  defaultIcon,
			LogDir:       defaultLogDir,
			LockFile:     defaultLockFile,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Notifications: Notifications{
			Desktop:        true,
			AppName:        defaultAppName,
			RequestTimeout: defaultNotifyTimeout,
		},
	}
}
