package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces bursts of writes from editors and atomic renames.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a config file whenever it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	onReload func(Config, error)
	log      zerolog.Logger

	mu      sync.RWMutex
	current Config
	reloads atomic.Uint32

	fsw  *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup
}

// WatcherOption customizes a Watcher.
type WatcherOption func(*Watcher)

func WithDebounce(d time.Duration) WatcherOption { return func(w *Watcher) { w.debounce = d } }

func WithWatchLogger(l zerolog.Logger) WatcherOption { return func(w *Watcher) { w.log = l } }

// NewWatcher loads path once and starts watching it. onReload receives every
// later reload attempt; on error the previous snapshot is kept.
func NewWatcher(path string, onReload func(Config, error), opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		path:     path,
		debounce: DefaultDebounce,
		onReload: onReload,
		log:      zerolog.Nop(),
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	if w.onReload == nil {
		w.onReload = func(Config, error) {}
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("load initial config: %w", err)
	}
	w.current = cfg

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors often replace the file rather than write it.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	w.fsw = fsw
	w.wg.Add(1)
	go w.watch()
	return w, nil
}

func (w *Watcher) watch() {
	defer w.wg.Done()
	target := filepath.Clean(w.path)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("config watcher error")
		}
	}
}

func (w *Watcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}
	count := w.reloads.Add(1)
	w.log.Info().Str("path", w.path).Uint32("count", count).Msg("reloading config")
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Error().Err(err).Msg("config reload failed")
		w.onReload(Config{}, err)
		return
	}
	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()
	w.onReload(cfg, nil)
}

// Snapshot returns the last successfully loaded config.
func (w *Watcher) Snapshot() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// ReloadCount returns the number of reload attempts.
func (w *Watcher) ReloadCount() uint32 { return w.reloads.Load() }

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
