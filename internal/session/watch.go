package session

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/metcalfc/pardiff/internal/logging"
)

// ReloadFunc is called after every reload attempt triggered by a change.
type ReloadFunc func(changed bool, err error)

// Watcher reloads a Store when one of its source files changes.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	files    map[string]bool
	onReload ReloadFunc
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher watches the directories of the store's sources. Directories are
// watched rather than files so editors that replace files on save are seen.
func NewWatcher(store *Store, onReload ReloadFunc) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range store.Sources().Paths() {
		abs, err := filepath.Abs(p)
		if err != nil {
			w.Close()
			return nil, err
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			w.Close()
			return nil, err
		}
	}

	return &Watcher{
		store:    store,
		watcher:  w,
		files:    files,
		onReload: onReload,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	go w.run()
}

// Stop ends watching and waits for the goroutine to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
	})
	<-w.doneCh
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			logging.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("source changed")
			changed, err := w.store.Reload()
			if err != nil {
				logging.Warn().Err(err).Msg("reload failed")
			}
			if w.onReload != nil {
				w.onReload(changed, err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}
