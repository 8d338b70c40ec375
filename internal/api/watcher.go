package api

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/owif/web-portal/internal/logging"
)

// SourceWatcher calls onChange once a burst of changes in a source tree has
// settled for the debounce interval. Calls never overlap: changes arriving
// while onChange runs are folded into one more call.
type SourceWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func()
	ignore   []string
	logger   *logrus.Entry

	pending chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// NewSourceWatcher watches dir and every directory below it, except the
// ignored directories and everything under them.
func NewSourceWatcher(dir string, debounceMs int, onChange func(), ignore ...string) (*SourceWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounceMs <= 0 {
		debounceMs = 100
	}

	w := &SourceWatcher{
		watcher:  watcher,
		debounce: time.Duration(debounceMs) * time.Millisecond,
		onChange: onChange,
		logger:   logging.NewLogger("watcher"),
		pending:  make(chan struct{}, 1),
	}
	for _, p := range ignore {
		if abs, err := filepath.Abs(p); err == nil {
			w.ignore = append(w.ignore, abs)
		}
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			w.logger.Debugf("Ignoring %s", path)
			return fs.SkipDir
		}
		w.logger.Debugf("Watching %s", path)
		return watcher.Add(path)
	})
	if err != nil {
		watcher.Close()
		return nil, err
	}
	return w, nil
}

// Start processes events until ctx is cancelled.
func (w *SourceWatcher) Start(ctx context.Context) {
	defer w.Close()
	go w.run(ctx)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)
			if event.Op == fsnotify.Chmod || w.ignored(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				w.watchIfDir(event.Name)
			}
			w.schedule(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			return
		}
	}
}

// run is the only caller of onChange
func (w *SourceWatcher) run(ctx context.Context) {
	for {
		select {
		case <-w.pending:
			w.onChange()
		case <-ctx.Done():
			return
		}
	}
}

func (w *SourceWatcher) watchIfDir(path string) {
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if w.ignored(p) {
			return fs.SkipDir
		}
		return w.watcher.Add(p)
	})
	if err != nil {
		w.logger.WithError(err).Warnf("Failed to watch %s", path)
	}
}

// ignored reports whether path is an ignored directory or lies below one
func (w *SourceWatcher) ignored(path string) bool {
	if len(w.ignore) == 0 {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range w.ignore {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// schedule restarts the debounce timer
func (w *SourceWatcher) schedule(file string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.logger.Infof("Source changed: %s", filepath.Base(file))
		select {
		case w.pending <- struct{}{}:
		default:
			// A call is already queued and will see this change.
		}
	})
}

// Close stops the watcher and any pending callback.
func (w *SourceWatcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
