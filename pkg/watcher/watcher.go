package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/normlap/pkg/logging"
)

// Input is a watched edge-list file and the role it plays in a comparison
type Input struct {
	Role string // "a", "b" or "pool"
	Path string
}

// ChangeEvent represents a batch of changed input files
type ChangeEvent struct {
	Roles     []string
	Paths     []string
	Timestamp time.Time
}

// merge folds other into e, keeping roles and paths distinct and sorted
func (e ChangeEvent) merge(other ChangeEvent) ChangeEvent {
	e.Roles = mergeSorted(e.Roles, other.Roles)
	e.Paths = mergeSorted(e.Paths, other.Paths)
	if other.Timestamp.After(e.Timestamp) {
		e.Timestamp = other.Timestamp
	}
	return e
}

func mergeSorted(a, b []string) []string {
	out := append(slices.Clone(a), b...)
	slices.Sort(out)
	return slices.Compact(out)
}

// FileWatcher watches the input files of a comparison. It watches their
// directories, since editors often replace a file rather than write it.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]string // absolute path -> role
	events  chan ChangeEvent
}

// NewFileWatcher creates a watcher for the given inputs. Inputs with an
// empty path are ignored.
func NewFileWatcher(inputs []Input) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher: watcher,
		files:   make(map[string]string),
		events:  make(chan ChangeEvent, 16),
	}

	dirs := make(map[string]bool)
	for _, in := range inputs {
		if in.Path == "" {
			continue
		}
		abs, err := filepath.Abs(in.Path)
		if err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("resolving %s: %w", in.Path, err)
		}
		fw.files[abs] = in.Role
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	return fw, nil
}

// Start begins watching for file changes
func (fw *FileWatcher) Start(ctx context.Context) error {
	logging.InfoContext(ctx, "started watching inputs", "files", len(fw.files))
	go fw.processEvents(ctx)
	return nil
}

// processEvents forwards changes to watched files until ctx is done
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer func() { _ = fw.watcher.Close() }()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			role, watched := fw.files[filepath.Clean(event.Name)]
			if !watched {
				continue
			}

			logging.DebugContext(ctx, "input changed", "role", role, "path", event.Name, "op", event.Op.String())

			change := ChangeEvent{
				Roles:     []string{role},
				Paths:     []string{event.Name},
				Timestamp: time.Now(),
			}
			select {
			case fw.events <- change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.ErrorContext(ctx, "watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events. It is closed when the
// context passed to Start is done.
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}
