package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadHandler receives the freshly loaded configuration, or the load
// error when the file became unreadable.
type ReloadHandler func(cfg *Config, err error)

// Watcher reloads the config file when it changes on disk. Rapid change
// bursts (editors writing via rename and truncate) are debounced into one
// reload.
type Watcher struct {
	path     string
	debounce time.Duration

	mu      sync.Mutex
	handler ReloadHandler
	timer   *time.Timer

	fsw     *fsnotify.Watcher
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Watch starts watching the config file's directory. Watching the directory
// rather than the file survives rename-based saves.
func Watch(path string, handler ReloadHandler) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		debounce: 100 * time.Millisecond,
		handler:  handler,
		fsw:      fsw,
		closeCh:  make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	close(w.closeCh)
	err := w.fsw.Close()
	w.wg.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename) {
				w.scheduleReload()
			}

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// scheduleReload resets the debounce timer so only the last write of a
// burst triggers a reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	select {
	case <-w.closeCh:
		return
	default:
	}

	cfg, err := Load(w.path)
	w.mu.Lock()
	handler := w.handler
	w.mu.Unlock()
	if handler != nil {
		handler(cfg, err)
	}
}
