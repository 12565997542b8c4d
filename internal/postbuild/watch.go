package postbuild

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	pberrors "git.home.luguber.info/inful/docpostbuild/internal/errors"
	"git.home.luguber.info/inful/docpostbuild/internal/logfields"
)

// DefaultDebounce is the quiet period after the last artifact change before
// a run starts.
const DefaultDebounce = 2 * time.Second

// Watcher re-runs a Runner whenever the artifact file is written.
type Watcher struct {
	runner   Runner
	path     string
	debounce time.Duration
	initial  bool
	logger   *slog.Logger
}

// WatchOption customizes a Watcher.
type WatchOption func(*Watcher)

func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithInitialRun runs once as soon as the watcher starts.
func WithInitialRun(initial bool) WatchOption {
	return func(w *Watcher) { w.initial = initial }
}

func WithWatchLogger(l *slog.Logger) WatchOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

func NewWatcher(runner Runner, artifactPath string, opts ...WatchOption) *Watcher {
	w := &Watcher{
		runner:   runner,
		path:     artifactPath,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is done. The artifact's directory is watched rather
// than the file itself, since builds usually replace the file. Failed runs are
// logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolve artifact path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	dir := filepath.Dir(abs)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", dir, err)
	}
	w.logger.Info("Watching search index artifact", logfields.Path(abs), slog.Duration("debounce", w.debounce))

	if w.initial {
		w.runOnce(ctx)
	}

	name := filepath.Base(abs)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping artifact watcher")
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.logger.Debug("Artifact change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
				timer.Reset(w.debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Artifact watcher error", logfields.Error(err))
		case <-timer.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	err := w.runner.Run(ctx)
	switch {
	case err == nil:
	case pberrors.IsCategory(err, pberrors.CategoryArtifactRead):
		// the site build may not have written it yet
		w.logger.Warn("Search index artifact not readable, waiting for the next change",
			logfields.Path(w.path), logfields.Error(err))
	default:
		w.logger.Error("Post-build run failed", logfields.Error(err))
	}
}
