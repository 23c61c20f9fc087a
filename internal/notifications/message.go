package notifications

import (
	"fmt"
	"strings"
	"time"

	"streamwatch/internal/streams"
)

// FromEvent renders a stream transition as a notification.
func FromEvent(ev streams.Event, duration time.Duration) Notification {
	name := ev.Status.Name()
	title := name + " is live!"
	tags := []string{"streamwatch", "live"}
	priority := "high"
	if ev.Kind == streams.ActivityChanged {
		title = name + " switched activity"
		tags = []string{"streamwatch", "activity"}
		priority = "default"
	}
	return Notification{
		Title:    title,
		Message:  Message(ev.Status),
		IconPath: ev.Status.IconPath,
		IconURL:  ev.Status.IconURL,
		Duration: duration,
		Tags:     tags,
		Priority: priority,
	}
}

// Message formats the body shared by every notification about status.
func Message(status streams.Status) string {
	activity := strings.TrimSpace(status.Activity)
	if activity == "" {
		activity = "something"
	}
	return fmt.Sprintf("%s playing %s\n%s", status.Name(), activity, strings.TrimSpace(status.Title))
}

// Test builds the notification shown by the test-notify command.
func Test(iconPath string, duration time.Duration) Notification {
	return Notification{
		Title:    "streamwatch test",
		Message:  "Notifications are working.",
		IconPath: iconPath,
		Duration: duration,
		Tags:     []string{"streamwatch", "test"},
	}
}
