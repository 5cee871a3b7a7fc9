// Package watch re-runs a handler whenever a file changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 250 * time.Millisecond

// Handler is called with the watched path after each settled change.
type Handler func(ctx context.Context, path string) error

// Watcher watches a single file. Editors often replace files instead of
// writing them in place, so the parent directory is watched and events are
// filtered by name.
type Watcher struct {
	path       string
	handler    Handler
	debounce   time.Duration
	runOnStart bool
	logger     hclog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the settle delay.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithRunOnStart controls whether the handler runs once before any change.
func WithRunOnStart(run bool) Option {
	return func(w *Watcher) {
		w.runOnStart = run
	}
}

// WithLogger sets the logger. The watcher logs under the "watch" name.
func WithLogger(logger hclog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger.Named("watch")
		}
	}
}

// New creates a Watcher for path.
func New(path string, handler Handler, opts ...Option) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("watch path cannot be empty")
	}
	if handler == nil {
		return nil, errors.New("watch handler cannot be nil")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	w := &Watcher{
		path:       abs,
		handler:    handler,
		debounce:   DefaultDebounce,
		runOnStart: true,
		logger:     hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute watched path.
func (w *Watcher) Path() string {
	return w.path
}

// Run watches until ctx is cancelled. Handler calls are serialised and their
// errors are logged, not returned.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Debug("watching", "path", w.path)

	if w.runOnStart {
		w.invoke(ctx)
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("stopped watching", "path", w.path)
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Trace("file event", "op", event.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)

		case <-timer.C:
			w.invoke(ctx)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (w *Watcher) invoke(ctx context.Context) {
	if err := w.handler(ctx, w.path); err != nil {
		w.logger.Error("handler failed", "path", w.path, "error", err)
	}
}
