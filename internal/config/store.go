package config

import (
	"errors"
	"sync"
)

// Store holds the active configuration snapshot and re-reads it on demand.
// Callers receive copies, so a snapshot never changes underneath them.
type Store struct {
	path string

	mu       sync.RWMutex
	current  Config
	resolved string
	exists   bool
}

// OpenStore loads the configuration at path (or the default locations when
// path is empty). When loading fails the store still starts from defaults and
// the load error is returned alongside it so callers can log it.
func OpenStore(path string) (*Store, error) {
	s := &Store{path: path}
	cfg, resolved, exists, err := Load(path)
	s.resolved = resolved
	s.exists = exists
	if err != nil {
		fallback := Default()
		if normErr := fallback.normalize(); normErr != nil {
			return nil, errors.Join(err, normErr)
		}
		s.current = fallback
		return s, err
	}
	s.current = *cfg
	return s, nil
}

// NewStaticStore wraps an already loaded config. Reload re-reads path when
// it is non-empty and is a no-op otherwise.
func NewStaticStore(cfg Config, path string) *Store {
	return &Store{path: path, current: cfg, resolved: path, exists: path != ""}
}

// Current returns the active snapshot.
func (s *Store) Current() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Path returns the resolved configuration path and whether the file existed
// at the last load.
func (s *Store) Path() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolved, s.exists
}

// Reload re-reads the configuration. On failure the previous snapshot stays
// active and the error is returned. changed reports whether the snapshot
// differs from the previous one.
func (s *Store) Reload() (changed bool, err error) {
	if s.path == "" && s.resolved == "" {
		return false, nil
	}
	path := s.path
	if path == "" {
		path = s.resolved
	}
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	changed = *cfg != s.current
	s.current = *cfg
	s.resolved = resolved
	s.exists = exists
	return changed, nil
}
