// Package watch re-runs a callback whenever a registrant file changes on
// disk. The file's directory is watched rather than the file itself so
// editors that save by writing a new file and renaming it over the old one
// keep triggering.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/teamforge/internal/event"
	"github.com/Iron-Ham/teamforge/internal/logging"
)

// DefaultDebounce is used when New is given a non-positive debounce.
const DefaultDebounce = 500 * time.Millisecond

// relevantOps are the operations that can change the watched file's content.
const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// Watcher watches one file.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	bus      *event.Bus
	logger   *logging.Logger

	closeOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithBus publishes an InputChangedEvent before each callback.
func WithBus(b *event.Bus) Option {
	return func(w *Watcher) { w.bus = b }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New starts watching path. The file must exist.
func New(path string, debounce time.Duration, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("watch %s: is a directory", path)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		path:     abs,
		debounce: debounce,
		watcher:  fw,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logging.NopLogger()
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Run calls fn once for every burst of changes to the file, after the
// burst has been quiet for the debounce interval. Errors from fn are
// logged and watching continues. Run blocks until ctx is done or the
// watcher fails, and closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	defer w.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var pending fsnotify.Op
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&relevantOps == 0 {
				continue
			}
			w.logger.Debug("input event", "path", ev.Name, "op", ev.Op.String())
			pending |= ev.Op
			timer.Reset(w.debounce)

		case <-timer.C:
			if pending == 0 {
				continue
			}
			op := pending
			pending = 0
			if _, err := os.Stat(w.path); err != nil {
				// Renamed away and not yet replaced.
				w.logger.Debug("input missing after change", "path", w.path, "error", err)
				continue
			}
			if w.bus != nil {
				w.bus.Publish(event.NewInputChangedEvent(w.path, op.String()))
			}
			w.logger.Info("input changed", "path", w.path, "op", op.String())
			if err := fn(ctx); err != nil {
				w.logger.Error("re-run failed", "path", w.path, "error", err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", w.path, err)
		}
	}
}

// Close stops the underlying watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.watcher.Close()
	})
	return err
}
