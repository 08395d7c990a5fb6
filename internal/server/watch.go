package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/jamzrob/todoer/internal/store/daylog"
)

// watch reloads the shared log whenever its file is written by someone
// else. It watches the parent directory because saves replace the file
// by rename. It returns once the watcher is running; events are handled
// until ctx is done.
func (s *Server) watch(ctx context.Context) error {
	if s.reload == nil {
		return nil
	}
	path := s.logPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	s.logger.Info("watching for external edits", "path", path)

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				if s.ownWrite(path) {
					s.logger.Debug("ignoring our own save", "path", path)
					continue
				}
				s.reloadFromDisk()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("watch error", "err", err)
			}
		}
	}()
	return nil
}

// ownWrite reports whether the file at path holds exactly what this server
// last saved.
func (s *Server) ownWrite(path string) bool {
	b, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var own bool
	_ = s.shared.Do(func(*daylog.DayLog) error {
		own = s.lastSaved != "" && string(b) == s.lastSaved
		return nil
	})
	return own
}

func (s *Server) reloadFromDisk() {
	if err := s.shared.Reload(s.reload); err != nil {
		// A half-written or hand-mangled file is left for the next event.
		s.logger.Warn("reload failed, keeping current list", "err", err)
		return
	}
	s.logger.Debug("reloaded from disk")
	s.hub.Broadcast(s.render())
}
