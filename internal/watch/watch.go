// Package watch regenerates admin documents when model files change.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/untillpro/goutils/logger"

	"github.com/matthewbaird/admingen/internal/eventbus"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 300 * time.Millisecond

// RunFunc performs one regeneration and describes the outcome.
type RunFunc func(ctx context.Context) eventbus.Regenerated

// Publisher receives the outcome of every regeneration.
type Publisher interface {
	Publish(evt eventbus.Regenerated)
}

// Watcher re-runs a RunFunc whenever one of its paths changes.
type Watcher struct {
	paths    []string
	run      RunFunc
	pub      Publisher
	debounce time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// New creates a watcher over paths, which may be files or directories.
func New(paths []string, run RunFunc, pub Publisher, opts ...Option) *Watcher {
	w := &Watcher{
		paths:    paths,
		run:      run,
		pub:      pub,
		debounce: DefaultDebounce,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Run watches until ctx is done. Files are watched through their parent
// directory so editors that replace the file on save are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()

	files := make(map[string]bool)   // watched files
	watched := make(map[string]bool) // directories whose every file counts
	dirs := make(map[string]bool)
	for _, p := range w.paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		dir := abs
		if info.IsDir() {
			watched[abs] = true
		} else {
			files[abs] = true
			dir = filepath.Dir(abs)
		}
		if !dirs[dir] {
			if err := fw.Add(dir); err != nil {
				return fmt.Errorf("watch: adding %s: %w", dir, err)
			}
			dirs[dir] = true
		}
	}

	relevant := func(ev fsnotify.Event) bool {
		if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
			return false
		}
		name, err := filepath.Abs(ev.Name)
		if err != nil {
			return false
		}
		return files[name] || watched[filepath.Dir(name)]
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	logger.Info("watching", w.paths)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if relevant(ev) {
				logger.Verbose("watch:", ev)
				timer.Reset(w.debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch:", err)
		case <-timer.C:
			w.pub.Publish(w.run(ctx))
		}
	}
}
