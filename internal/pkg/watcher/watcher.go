// Package watcher signals when one of the configuration files changes on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/anicoll/nspanel-gateway/internal/pkg/config"
)

const defaultDebounce = 500 * time.Millisecond

type Watcher struct {
	dir      string
	names    map[string]struct{}
	debounce time.Duration
	onChange func()
	logger   *zap.Logger
}

func WithDebounce(d time.Duration) func(*Watcher) {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// New watches the folder of paths. Editors often replace files instead of writing them in
// place, so the folder is watched rather than the files.
func New(paths config.Paths, onChange func(), opts ...func(*Watcher)) *Watcher {
	names := map[string]struct{}{}
	for _, n := range paths.FileNames() {
		names[n] = struct{}{}
	}
	w := &Watcher{
		dir:      paths.Dir,
		names:    names,
		debounce: defaultDebounce,
		onChange: onChange,
		logger:   zap.L(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	_, ok := w.names[filepath.Base(ev.Name)]
	return ok
}

// Run calls onChange once per burst of relevant events until ctx ends.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching configuration", zap.String("dir", w.dir))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("configuration changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			w.onChange()
		}
	}
}
