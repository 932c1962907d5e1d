// Package watch re-runs trace verification when trace files change.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/wippyai/memtrace/errors"
	"github.com/wippyai/memtrace/trace"
)

// DefaultDebounce is how long a path must stay quiet before it is reported.
const DefaultDebounce = 200 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a changed path is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger. The package logger is used by default.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// Watcher reports created or written trace files. Files passed to New are
// matched exactly; directories match every file inside them except repaired
// copies.
type Watcher struct {
	w        *fsnotify.Watcher
	log      *zap.Logger
	files    map[string]string // absolute path -> path as given
	dirs     map[string]string
	debounce time.Duration
}

// New creates a Watcher for the given trace files and directories.
func New(paths []string, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseWatch, errors.KindIO, err, "create watcher")
	}
	w := &Watcher{
		w:        fw,
		files:    make(map[string]string),
		dirs:     make(map[string]string),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = Logger()
	}

	added := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, errors.Wrap(errors.PhaseWatch, errors.KindInvalidInput, err, "resolve "+p)
		}
		dir := filepath.Dir(abs)
		if fi, err := os.Stat(abs); err == nil && fi.IsDir() {
			w.dirs[abs] = p
			dir = abs
		} else {
			w.files[abs] = p
		}
		if added[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrap(errors.PhaseWatch, errors.KindIO, err, "watch "+dir)
		}
		added[dir] = true
	}
	return w, nil
}

// match returns the path to report for an event name.
func (w *Watcher) match(name string) (string, bool) {
	if strings.HasSuffix(name, trace.RepairSuffix) {
		return "", false
	}
	if p, ok := w.files[name]; ok {
		return p, true
	}
	if p, ok := w.dirs[filepath.Dir(name)]; ok {
		return filepath.Join(p, filepath.Base(name)), true
	}
	return "", false
}

// Run calls fn for every watched trace that is created or written, after
// the debounce period. Calls are serialized. Run returns when ctx is done.
func (w *Watcher) Run(ctx context.Context, fn func(path string)) error {
	fire := make(chan string)
	done := make(chan struct{})
	defer close(done)

	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			p, ok := w.match(ev.Name)
			if !ok {
				continue
			}
			w.log.Debug("trace changed", zap.String("path", p), zap.Stringer("op", ev.Op))
			if t, ok := pending[p]; ok {
				t.Reset(w.debounce)
				continue
			}
			pending[p] = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- p:
				case <-done:
				}
			})
		case p := <-fire:
			delete(pending, p)
			fn(p)
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.w.Close()
}
