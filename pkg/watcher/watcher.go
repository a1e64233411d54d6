package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/depscope/depscope/pkg/logging"
)

// ReloadEvent signals that the snapshot file changed and the graph should
// be rebuilt.
type ReloadEvent struct {
	Path      string
	Timestamp time.Time
}

// SnapshotWatcher watches a target-declaration snapshot file for changes.
// The containing directory is watched rather than the file itself so that
// editors and generators that replace the file atomically (write + rename)
// are still observed.
type SnapshotWatcher struct {
	watcher  *fsnotify.Watcher
	snapshot string // absolute path of the watched file
	events   chan ReloadEvent
	once     sync.Once
}

// NewSnapshotWatcher creates a watcher for the given snapshot file.
func NewSnapshotWatcher(snapshot string) (*SnapshotWatcher, error) {
	abs, err := filepath.Abs(snapshot)
	if err != nil {
		return nil, fmt.Errorf("resolve snapshot path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &SnapshotWatcher{
		watcher:  fsw,
		snapshot: abs,
		events:   make(chan ReloadEvent, 16),
	}, nil
}

// Start begins watching. Events are delivered on Events() until the context
// is cancelled.
func (sw *SnapshotWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(sw.snapshot)
	if err := sw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	logging.Info("watching snapshot", "path", sw.snapshot)
	go sw.processEvents(ctx)
	return nil
}

func (sw *SnapshotWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			sw.watcher.Close()
			sw.once.Do(func() { close(sw.events) })
			return

		case event, ok := <-sw.watcher.Events:
			if !ok {
				sw.once.Do(func() { close(sw.events) })
				return
			}

			if filepath.Clean(event.Name) != sw.snapshot {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			logging.Debug("snapshot changed", "op", event.Op.String())
			sw.events <- ReloadEvent{Path: sw.snapshot, Timestamp: time.Now()}

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of reload events.
func (sw *SnapshotWatcher) Events() <-chan ReloadEvent {
	return sw.events
}
