package profile

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Store holds the active profile. Readers take a snapshot with Current;
// Watch swaps in a new profile when the backing file changes.
type Store struct {
	path    string
	current atomic.Pointer[Profile]
}

// NewStore loads the profile at path, or the embedded default when path is
// empty.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}

	p := Default()
	if path != "" {
		var err error
		p, err = Load(path)
		if err != nil {
			return nil, err
		}
	}
	s.current.Store(p)

	return s, nil
}

// Current returns the active profile.
func (s *Store) Current() *Profile {
	return s.current.Load()
}

// Path returns the profile file path, empty for the embedded default.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the profile file. On error the previous profile stays active.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}

	p, err := Load(s.path)
	if err != nil {
		return err
	}
	s.current.Store(p)

	slog.Info("profile reloaded", "path", s.path, "name", p.Name)
	return nil
}

// Watch reloads the profile whenever its file is written or replaced. It
// blocks until ctx is cancelled. With no backing file it just waits.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return ctx.Err()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Editors often replace the file instead of writing it, so watch the
	// directory and filter by name.
	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)
	slog.Info("watching profile", "path", target)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.Reload(); err != nil {
				slog.Warn("profile reload failed, keeping previous", "path", target, "error", err)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			slog.Error("profile watcher error", "error", err)
		}
	}
}
