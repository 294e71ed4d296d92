package corpus

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"chatgrep/internal/domain"
	"chatgrep/internal/eventbus"
)

// Watcher republishes discovery events for transcript files created or
// modified while a session is running.
type Watcher struct {
	bus    eventbus.EventBus
	logger *zap.Logger
	fsw    *fsnotify.Watcher
}

// NewWatcher creates a watcher over the logs root. The root and its project
// subdirectories are watched; fsnotify does not recurse on its own.
func NewWatcher(bus eventbus.EventBus, logger *zap.Logger, root string) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{bus: bus, logger: logger, fsw: fsw}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run consumes filesystem events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.fsw.Add(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory",
					zap.String("path", event.Name), zap.Error(err))
			}
			return
		}
	}

	if !strings.EqualFold(filepath.Ext(event.Name), ".jsonl") {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		w.bus.Publish(eventbus.TranscriptDiscoveredEvent{
			Transcript: domain.Transcript{
				Path:           event.Name,
				ConversationID: ConversationID(event.Name),
				Project:        filepath.Base(filepath.Dir(event.Name)),
				Modified:       info.ModTime(),
				SizeBytes:      info.Size(),
			},
		})

	case event.Op.Has(fsnotify.Write):
		w.bus.Publish(eventbus.TranscriptChangedEvent{Path: event.Name})
	}
}

// addTree watches root and every directory below it.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree, keep going
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}
