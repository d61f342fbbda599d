package envsync

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leapstack-labs/envset/internal/setup"
	"github.com/leapstack-labs/envset/pkg/envfile"
)

// DefaultDebounce is the quiet period Watch waits for before syncing.
const DefaultDebounce = 150 * time.Millisecond

// Watch syncs s whenever one of its env files changes, using the changed
// file as reference, until ctx is done. Each sync result is passed to notify.
func (y *Syncer) Watch(ctx context.Context, s *setup.Setup, opts Options, notify func(*Report, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dirs := s.EnvDirs()
	if len(dirs) == 0 {
		return fmt.Errorf("setup %s has no env directory to watch", s.Name())
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		y.logger.Debug("watching env directory", "dir", dir)
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	var pending <-chan time.Time
	var changed string

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !envfile.IsEnvFileName(filepath.Base(event.Name)) {
				continue
			}
			changed = event.Name
			pending = time.After(debounce)

		case <-pending:
			pending = nil
			y.logger.Debug("env file changed, syncing", "file", changed)
			run := opts
			run.Reference = changed
			notify(y.Sync(s, run))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			y.logger.Error("watcher error", "error", err)
		}
	}
}
