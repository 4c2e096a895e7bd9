package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/packerci/logging"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is how long the watcher waits after the last change event
// before reloading.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads an installations file into a Store whenever it changes on
// disk. A file that fails to load leaves the store untouched.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	store    *Store
	debounce time.Duration
	logger   *logrus.Entry
	onReload func(installations []Installation)

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	// pending counts scheduled and running reloads.
	pending sync.WaitGroup
}

// NewWatcher watches the directory holding path. Watching the directory rather
// than the file survives editors and Store.Save replacing it by rename.
func NewWatcher(path string, store *Store, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		watcher:  watcher,
		path:     abs,
		store:    store,
		debounce: debounce,
		logger:   logging.NewLogger("config-watcher"),
	}, nil
}

// OnReload registers a callback invoked after each successful reload.
func (w *Watcher) OnReload(fn func(installations []Installation)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = fn
}

// Start processes events until ctx is cancelled. Before returning it waits
// for any reload already running and closes the watcher; no OnReload
// callback runs after Start returns.
func (w *Watcher) Start(ctx context.Context) {
	defer w.Close()
	defer w.stop()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil && w.timer.Stop() {
		w.pending.Done()
	}
	w.pending.Add(1)
	w.timer = time.AfterFunc(w.debounce, func() {
		defer w.pending.Done()
		w.reload()
	})
}

// stop cancels a scheduled reload and waits for one in flight.
func (w *Watcher) stop() {
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil && w.timer.Stop() {
		w.pending.Done()
	}
	w.mu.Unlock()
	w.pending.Wait()
}

func (w *Watcher) reload() {
	file, err := LoadInstallations(w.path)
	if err != nil {
		w.logger.WithError(err).Warnf("Keeping previous installations; reload of %s failed", filepath.Base(w.path))
		return
	}
	w.store.Replace(file.Installations...)
	w.logger.WithField("count", len(file.Installations)).Infof("Reloaded installations from %s", filepath.Base(w.path))

	w.mu.Lock()
	fn := w.onReload
	w.mu.Unlock()
	if fn != nil {
		fn(w.store.All())
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Watch reloads path into store until ctx is cancelled.
func Watch(ctx context.Context, path string, store *Store) error {
	w, err := NewWatcher(path, store, DefaultDebounce)
	if err != nil {
		return err
	}
	w.Start(ctx)
	return nil
}
