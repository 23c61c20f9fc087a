package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeTunables()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAPI()
	c.normalizeLogging()
	c.normalizeNotifications()
	return nil
}

func (c *Config) normalizeTunables() {
	if c.NotificationDuration <= 0 {
		c.NotificationDuration = defaultNotificationDuration
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = defaultCheckInterval
	}
	if c.ReloadEveryTicks <= 0 {
		c.ReloadEveryTicks = defaultReloadEveryTicks
	}
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.channels_file", &c.Paths.ChannelsFile, defaultChannelsFile},
		{"paths.icons_dir", &c.Paths.IconsDir, defaultIconsDir},
		{"paths.default_icon", &c.Paths.DefaultIcon, defaultIcon},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
		{"paths.lock_file", &c.Paths.LockFile, defaultLockFile},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultAPIBaseURL
	}
	c.API.ClientID = strings.TrimSpace(c.API.ClientID)
	if c.API.ClientID == "" {
		if value, ok := os.LookupEnv("TWITCH_CLIENT_ID"); ok {
			c.API.ClientID = strings.TrimSpace(value)
		}
	}
	c.API.OAuthToken = strings.TrimSpace(c.API.OAuthToken)
	if c.API.OAuthToken == "" {
		if value, ok := os.LookupEnv("TWITCH_OAUTH_TOKEN"); ok {
			c.API.OAuthToken = strings.TrimSpace(value)
		}
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = defaultAPITimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	switch c.Logging.Level {
	case "":
		c.Logging.Level = defaultLogLevel
	case "warning":
		c.Logging.Level = "warn"
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.AppName = strings.TrimSpace(c.Notifications.AppName)
	if c.Notifications.AppName == "" {
		c.Notifications.AppName = defaultAppName
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}
