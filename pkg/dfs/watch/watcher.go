// Package watch reloads a spec file when it changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/randalmurphal/dfs/pkg/dfs"
	"github.com/randalmurphal/dfs/pkg/dfs/observability"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 100 * time.Millisecond

// ErrRunning is returned when Watch is called on a watcher that is
// already watching.
var ErrRunning = errors.New("watcher already running")

// ReloadFunc receives the freshly loaded spec, or the error that kept it
// from loading. A broken file does not stop the watcher.
type ReloadFunc func(s *dfs.Spec, err error)

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithDebounce sets the quiet period between the last write and the reload.
func WithDebounce(d time.Duration) Option {
	return func(w *FileWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(w *FileWatcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// FileWatcher watches one spec file.
//
// The parent directory is watched rather than the file, so editors that
// save by writing a temporary file and renaming it over the original are
// still seen.
type FileWatcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	running bool
}

// New creates a watcher for the spec file at path.
func New(path string, opts ...Option) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fw := &FileWatcher{
		path:     abs,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(fw)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	fw.watcher = w
	return fw, nil
}

// Path returns the absolute path being watched.
func (fw *FileWatcher) Path() string { return fw.path }

// Watch loads the spec once, then again after every change, passing each
// result to onReload. It blocks until ctx is cancelled or the watcher is
// closed, and returns nil in both cases.
func (fw *FileWatcher) Watch(ctx context.Context, onReload ReloadFunc) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return ErrRunning
	}
	fw.running = true
	fw.mu.Unlock()

	debouncer := NewDebouncer(fw.debounce)
	defer func() {
		debouncer.Stop()
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
	}()

	// Reloads run on the debouncer's goroutine; serialize them so
	// onReload never runs concurrently with itself.
	var reloadMu sync.Mutex
	reload := func() {
		reloadMu.Lock()
		defer reloadMu.Unlock()
		if ctx.Err() != nil {
			return
		}
		onReload(fw.load())
	}

	fw.logger.Info("spec watcher started",
		slog.String("path", fw.path),
		slog.Int64("debounce_ms", fw.debounce.Milliseconds()),
	)
	reload()

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("spec watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if !fw.relevant(event) {
				continue
			}
			fw.logger.Debug("spec file event",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()),
			)
			debouncer.Trigger(reload)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			fw.logger.Error("spec watcher error", slog.String("error", err.Error()))
		}
	}
}

// Close stops the watcher. A running Watch returns.
func (fw *FileWatcher) Close() error {
	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}
	return nil
}

func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != fw.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (fw *FileWatcher) load() (*dfs.Spec, error) {
	s, err := dfs.LoadFile(fw.path)
	if err != nil {
		fw.logger.Warn("spec reload failed",
			slog.String("path", fw.path),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	observability.LogSpecLoaded(fw.logger, fw.path, len(s.Dialogs))
	return s, nil
}
