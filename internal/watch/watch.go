// Package watch wires a filesystem watch to the config store so an edited
// gamemode.ini is picked up without restarting the daemon.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gamemode/gamemoded/internal/log"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 100 * time.Millisecond

// Reloader is the slice of the config store the watcher needs.
type Reloader interface {
	Reload()
}

// Watcher triggers a config reload when any of the candidate config files
// changes on disk.
type Watcher struct {
	reloader Reloader
	watcher  *fsnotify.Watcher
	names    map[string]struct{} // absolute paths of the watched files
	debounce time.Duration
	onReload func() // optional, fires after each triggered reload

	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	running bool
	timer   *time.Timer
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithOnReload registers a callback invoked after every triggered reload.
func WithOnReload(fn func()) Option {
	return func(w *Watcher) { w.onReload = fn }
}

// New creates a Watcher over the given candidate config file paths. The
// parent directories are watched rather than the files themselves, because
// editors often replace a file by delete-and-create which drops a watch on
// the file itself.
func New(r Reloader, paths []string, opts ...Option) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("watch: no paths given")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: creating watcher: %w", err)
	}

	w := &Watcher{
		reloader: r,
		watcher:  fsWatcher,
		names:    make(map[string]struct{}, len(paths)),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsWatcher.Close()
			return nil, fmt.Errorf("watch: resolving %s: %w", p, err)
		}
		w.names[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	watched := 0
	for dir := range dirs {
		if err := fsWatcher.Add(dir); err != nil {
			// A missing candidate directory is not fatal; the other
			// location may still exist.
			log.Infof("watch: cannot watch %s: %v", dir, err)
			continue
		}
		watched++
	}
	if watched == 0 {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch: no watchable directories among %v", paths)
	}

	w.ctx, w.cancel = context.WithCancel(context.Background())
	return w, nil
}

// Start begins delivering reloads. It returns immediately; the event loop
// runs in the background until Stop.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop()
	log.Info("watch: started")
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.cancel()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	w.watcher.Close()
	w.wg.Wait()
	log.Info("watch: stopped")
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("watch: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	if _, watched := w.names[abs]; !watched {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.ctx.Done():
			return
		default:
		}
		log.Infof("watch: %s changed, reloading config", abs)
		w.reloader.Reload()
		if w.onReload != nil {
			w.onReload()
		}
	})
}
