package sender

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long to wait for more events after a change before
// re-sending. Editors often write a file in several steps.
const settle = 100 * time.Millisecond

// Watch re-sends an image every time its file is written, until ctx is
// done. The containing directories are watched so atomic saves (write to a
// temp file, then rename) are seen too.
func (s *Sender) Watch(ctx context.Context) (Summary, error) {
	w, watched, err := s.newWatcher()
	if err != nil {
		return Summary{}, err
	}
	defer w.Close()

	s.logger.Info("watching images for changes", "images", len(watched))
	return s.watchLoop(ctx, w, watched)
}

func (s *Sender) newWatcher() (*fsnotify.Watcher, map[string]string, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	watched := make(map[string]string, len(s.cfg.Images))
	dirs := make(map[string]bool)
	for _, path := range s.cfg.Images {
		abs, err := filepath.Abs(path)
		if err != nil {
			w.Close()
			return nil, nil, fmt.Errorf("failed to resolve %q: %w", path, err)
		}
		watched[abs] = path
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, nil, fmt.Errorf("failed to watch %q: %w", dir, err)
		}
	}

	return w, watched, nil
}

func (s *Sender) watchLoop(ctx context.Context, w *fsnotify.Watcher, watched map[string]string) (Summary, error) {
	var sum Summary
	for {
		select {
		case <-ctx.Done():
			return sum, ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return sum, nil
			}
			if _, ok := changed(event, watched); !ok {
				continue
			}

			pending := map[string]bool{event.Name: true}
			if err := s.collect(ctx, w, watched, pending); err != nil {
				return sum, err
			}

			// Re-send in configured order.
			for _, path := range s.cfg.Images {
				abs, _ := filepath.Abs(path)
				if !pending[abs] {
					continue
				}
				delete(pending, abs)
				s.logger.Info("image changed", "path", path)
				if err := s.processImage(ctx, &sum, path); err != nil {
					return sum, err
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return sum, nil
			}
			s.logger.Warn("watcher error", "error", err)
		}
	}
}

// collect gathers further changes until no event has arrived for settle.
func (s *Sender) collect(ctx context.Context, w *fsnotify.Watcher, watched map[string]string, pending map[string]bool) error {
	timer := time.NewTimer(settle)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if _, ok := changed(event, watched); ok {
				pending[event.Name] = true
				timer.Reset(settle)
			}
		}
	}
}

func changed(event fsnotify.Event, watched map[string]string) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return "", false
	}
	path, ok := watched[event.Name]
	return path, ok
}
