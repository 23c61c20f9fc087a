package channels

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/cases"

	"streamwatch/internal/logging"
)

// Key returns the identity used to compare channel names. Twitch logins are
// case-insensitive, so "Alice" and "alice" share a key.
func Key(channel string) string {
	return cases.Fold().String(strings.TrimSpace(channel))
}

// Parse reads channel names one per line. Blank lines and lines whose first
// non-space character is '#' are skipped. Repeated names (by Key) keep their
// first occurrence; the repeats are returned separately.
func Parse(r io.Reader) (names []string, duplicates []string, err error) {
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key := Key(line)
		if _, ok := seen[key]; ok {
			duplicates = append(duplicates, line)
			continue
		}
		seen[key] = struct{}{}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan channel list: %w", err)
	}
	return names, duplicates, nil
}

// Source re-reads the channel list file on every call to Read and falls back
// to the last good list when the file cannot be read.
type Source struct {
	path   string
	logger *slog.Logger

	last   []string
	loaded bool
}

// NewSource returns a source for the list file at path.
func NewSource(path string, logger *slog.Logger) *Source {
	return &Source{path: path, logger: logging.NewComponentLogger(logger, "channels")}
}

// Read returns the current channel list. A read failure is logged and the
// previous list (empty before the first success) is returned with the error.
func (s *Source) Read() ([]string, error) {
	names, duplicates, err := readFile(s.path)
	if err != nil {
		logging.WarnWithContext(s.logger, "channel list unreadable; keeping previous list", "channel_list_failed",
			logging.String("path", s.path),
			logging.Error(err),
			logging.Int("previous_count", len(s.last)),
			logging.String(logging.FieldErrorHint, "create the file with one channel name per line"),
			logging.String(logging.FieldImpact, "the channel set is unchanged this tick"),
		)
		return append([]string(nil), s.last...), err
	}
	if len(duplicates) > 0 {
		logging.WarnWithContext(s.logger, "duplicate channels ignored", "channel_list_duplicates",
			logging.String("duplicates", strings.Join(duplicates, ",")),
			logging.String(logging.FieldErrorHint, "remove repeated names from the channel list"),
			logging.String(logging.FieldImpact, "each channel is polled and notified once"),
		)
	}
	if !s.loaded || !equal(s.last, names) {
		s.logger.Info("channel list loaded",
			logging.String("path", s.path),
			logging.Int("count", len(names)),
			logging.String(logging.FieldEventType, "channel_list_loaded"),
		)
	}
	s.last = names
	s.loaded = true
	return append([]string(nil), names...), nil
}

func readFile(path string) ([]string, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open channel list: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
