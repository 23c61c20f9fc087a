package iconcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"streamwatch/internal/channels"
	"streamwatch/internal/fileutil"
	"streamwatch/internal/logging"
)

const (
	iconExt          = ".ico"
	maxDownloadBytes = 8 << 20
)

// HTTPDoer describes the HTTP client used for icon downloads.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Cache stores one converted icon per channel under a directory.
type Cache struct {
	dir         string
	defaultIcon string
	timeout     time.Duration
	doer        HTTPDoer
	logger      *slog.Logger
}

// New returns a cache rooted at dir. defaultIcon is returned whenever a
// channel icon cannot be produced.
func New(dir, defaultIcon string, timeout time.Duration, logger *slog.Logger) *Cache {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Cache{
		dir:         dir,
		defaultIcon: defaultIcon,
		timeout:     timeout,
		doer:        &http.Client{Timeout: timeout},
		logger:      logging.NewComponentLogger(logger, "iconcache"),
	}
}

// WithHTTPClient replaces the download transport.
func (c *Cache) WithHTTPClient(doer HTTPDoer) *Cache {
	if doer != nil {
		c.doer = doer
	}
	return c
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Path returns the artifact location for channel, whether or not it exists.
func (c *Cache) Path(channel string) string {
	return filepath.Join(c.dir, fileName(channels.Key(channel)))
}

// Resolve returns a local icon for channel. An existing artifact is reused
// as is; otherwise iconURL is downloaded and converted. Every failure falls
// back to the default icon.
func (c *Cache) Resolve(ctx context.Context, channel, iconURL string) string {
	path := c.Path(channel)
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() && info.Size() > 0 {
		return path
	}

	iconURL = strings.TrimSpace(iconURL)
	if iconURL == "" {
		c.logger.Info("no logo for channel; using default icon",
			logging.String(logging.FieldChannel, channel),
			logging.String(logging.FieldEventType, "icon_missing"),
		)
		return c.defaultIcon
	}

	if err := c.fetch(ctx, iconURL, path); err != nil {
		logging.WarnWithContext(c.logger, "icon download failed; using default icon", "icon_failed",
			logging.String(logging.FieldChannel, channel),
			logging.String("url", iconURL),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the logo URL may be stale or not an image"),
			logging.String(logging.FieldImpact, "notification shows the default icon"),
		)
		return c.defaultIcon
	}
	c.logger.Info("icon cached",
		logging.String(logging.FieldChannel, channel),
		logging.String("path", path),
		logging.String(logging.FieldEventType, "icon_cached"),
	)
	return path
}

func (c *Cache) fetch(ctx context.Context, iconURL, dest string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, iconURL, nil)
	if err != nil {
		return fmt.Errorf("build icon request: %w", err)
	}
	resp, err := c.doer.Do(req)
	if err != nil {
		return fmt.Errorf("download icon: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("icon download returned %d", resp.StatusCode)
	}

	img, err := decode(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("ensure icon directory: %w", err)
	}
	return writeICO(dest, img)
}

// Prune removes every icon artifact and leftover temp file in the cache
// directory except the artifacts of channels in exceptions, and returns how
// many files were removed. Other files are never touched.
func (c *Cache) Prune(exceptions []string) (int, error) {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read icon directory: %w", err)
	}

	keep := make(map[string]struct{}, len(exceptions))
	for _, channel := range exceptions {
		keep[fileName(channels.Key(channel))] = struct{}{}
	}

	var errs []error
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !prunable(entry.Name()) {
			continue
		}
		if _, ok := keep[entry.Name()]; ok {
			continue
		}
		path := filepath.Join(c.dir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
		c.logger.Debug("icon pruned", logging.String("path", path), logging.String(logging.FieldEventType, "icon_pruned"))
	}
	return removed, errors.Join(errs...)
}

// Entry describes one cached artifact.
type Entry struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// List returns the cached icon artifacts sorted by name.
func (c *Cache) List() ([]Entry, error) {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read icon directory: %w", err)
	}
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), iconExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, Entry{
			Name:    entry.Name(),
			Path:    filepath.Join(c.dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func prunable(name string) bool {
	if strings.HasSuffix(name, iconExt) {
		return true
	}
	matched, _ := filepath.Match(fileutil.TempPattern, name)
	return matched
}

// fileName maps a channel key onto a safe file name.
func fileName(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		b.WriteByte('_')
	}
	b.WriteString(iconExt)
	return b.String()
}
