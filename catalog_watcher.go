package kernel

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// CatalogWatcher watches manifest catalog files and emits catalog:changed
// when one is modified on disk. The kernel never reloads modules in
// response — module sets are fixed for the life of the process — but the
// presentation layer can use the event to prompt for a restart.
type CatalogWatcher struct {
	watcher *fsnotify.Watcher
	bus     *EventBus
	logger  Logger

	closeOnce sync.Once
	closeErr  error
}

// WatchCatalogs starts watching the given catalog files. The returned
// watcher runs until Close is called.
func WatchCatalogs(bus *EventBus, logger Logger, paths ...string) (*CatalogWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog watcher: %w", err)
	}

	for _, path := range paths {
		if err := fsw.Add(path); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to watch catalog %s: %w", path, err)
		}
	}

	cw := &CatalogWatcher{watcher: fsw, bus: bus, logger: logger}
	go cw.run()
	return cw, nil
}

func (w *CatalogWatcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.logger.Debug("Catalog changed on disk", "path", event.Name, "op", event.Op.String())
			if err := w.bus.Emit(EventCatalogChanged, CatalogChangedPayload{
				Path: event.Name,
				Op:   event.Op.String(),
			}); err != nil {
				w.logger.Error("Failed to emit catalog change", "path", event.Name, "error", err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Catalog watcher error", "error", err)
		}
	}
}

// Close stops watching. Close is idempotent.
func (w *CatalogWatcher) Close() error {
	w.closeOnce.Do(func() {
		w.closeErr = w.watcher.Close()
	})
	return w.closeErr
}
