// Package watch reports filesystem changes that may alter a rename plan.
//
// A Watcher observes the parent directories of every source and target and
// delivers coalesced change notifications over a channel, so a preview can be
// rebuilt whenever the directories it depends on change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrNothingToWatch indicates that none of the directories could be watched.
var ErrNothingToWatch = errors.New("no watchable directories")

// placeholderMarker appears in the names of staging placeholders, whose
// churn never changes a plan.
const placeholderMarker = ".bulkren-"

// Event is a batch of changes observed within one debounce window.
type Event struct {
	Paths []string
}

// Watcher delivers coalesced change events for a set of directories.
type Watcher struct {
	dirs     []string
	debounce time.Duration
	logger   *zap.Logger

	events chan Event
	errors chan error
	ready  chan struct{}
}

// New creates a watcher for the parent directories of paths. Changes are
// coalesced over debounce before an Event is delivered.
func New(paths []string, debounce time.Duration, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	seen := make(map[string]bool)
	var dirs []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		dir := filepath.Dir(filepath.Clean(p))
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)

	return &Watcher{
		dirs:     dirs,
		debounce: debounce,
		logger:   logger,
		events:   make(chan Event, 1),
		errors:   make(chan error, 1),
		ready:    make(chan struct{}),
	}
}

// Dirs returns the directories being watched.
func (w *Watcher) Dirs() []string {
	return append([]string(nil), w.dirs...)
}

// Events delivers change batches. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors delivers watcher errors. Errors are dropped when nobody reads them.
// It is closed when Run returns.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Ready is closed once every directory has been registered.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	defer close(w.errors)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()

	watched := 0
	for _, dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			w.logger.Debug("skipping directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		watched++
	}
	if watched == 0 {
		return ErrNothingToWatch
	}
	close(w.ready)

	pending := make(map[string]struct{})
	var flush <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if strings.Contains(filepath.Base(event.Name), placeholderMarker) {
				continue
			}
			w.logger.Debug("change", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			pending[event.Name] = struct{}{}
			if flush == nil {
				flush = time.After(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
			select {
			case w.errors <- err:
			default:
			}

		case <-flush:
			flush = nil
			batch := Event{Paths: make([]string, 0, len(pending))}
			for p := range pending {
				batch.Paths = append(batch.Paths, p)
			}
			sort.Strings(batch.Paths)
			pending = make(map[string]struct{})

			select {
			case w.events <- batch:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
