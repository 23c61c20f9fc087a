package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return describeValidation(err)
	}
	if c.Paths.IconsDir == c.Paths.LogDir {
		return errors.New("paths.icons_dir must differ from paths.log_dir; icon pruning would delete logs")
	}
	if filepath.Dir(c.Paths.DefaultIcon) == c.Paths.IconsDir {
		return errors.New("paths.default_icon must live outside paths.icons_dir; icon pruning would delete it")
	}
	if filepath.Dir(c.Paths.LockFile) == c.Paths.IconsDir {
		return errors.New("paths.lock_file must live outside paths.icons_dir")
	}
	if filepath.Dir(c.Paths.ChannelsFile) == c.Paths.IconsDir {
		return errors.New("paths.channels_file must live outside paths.icons_dir")
	}
	return nil
}

// describeValidation rewrites validator errors using toml key names.
func describeValidation(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate config: %w", err)
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fmt.Sprintf("%s failed %q (value %v)", tomlKey(fe.Namespace()), ruleLabel(fe), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(messages, "; "))
}

func ruleLabel(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

var tomlKeys = map[string]string{
	"NotificationDuration": "notification_duration",
	"CheckInterval":        "check_interval",
	"ReloadEveryTicks":     "reload_every_ticks",
	"API":                  "api",
	"BaseURL":              "base_url",
	"TimeoutSeconds":       "timeout_seconds",
	"Paths":                "paths",
	"ChannelsFile":         "channels_file",
	"IconsDir":             "icons_dir",
	"DefaultIcon":          "default_icon",
	"LogDir":               "log_dir",
	"LockFile":             "lock_file",
	"Logging":              "logging",
	"Format":               "format",
	"Level":                "level",
	"RetentionDays":        "retention_days",
	"Notifications":        "notifications",
	"NtfyTopic":            "ntfy_topic",
	"RequestTimeout":       "request_timeout",
}

// tomlKey maps a validator namespace such as "Config.API.TimeoutSeconds" to "api.timeout_seconds".
func tomlKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 && parts[0] == "Config" {
		parts = parts[1:]
	}
	for i, part := range parts {
		if key, ok := tomlKeys[part]; ok {
			parts[i] = key
		}
	}
	return strings.Join(parts, ".")
}
