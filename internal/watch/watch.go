// Package watch re-indexes project resource roots when their files change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/mcassets/internal/index"
	"github.com/Faultbox/mcassets/internal/logger"
)

// DefaultDebounce is the quiet period used when none is given.
const DefaultDebounce = 250 * time.Millisecond

// Watcher coalesces bursts of file events under the project roots into a
// single change notification.
type Watcher struct {
	fsw      *fsnotify.Watcher
	roots    []string
	debounce time.Duration
	onChange func()
	log      *zap.Logger
}

// New watches every directory below roots. onChange runs on the Run
// goroutine once events stop arriving for the debounce period.
func New(roots []string, debounce time.Duration, onChange func()) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		roots:    roots,
		debounce: debounce,
		onChange: onChange,
		log:      logger.Named("watch"),
	}
	for _, root := range roots {
		if err := w.addTree(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// addTree adds root and every directory below it.
func (w *Watcher) addTree(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watching %s: not a directory", root)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// Run delivers debounced change notifications until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("change", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.log.Warn("cannot watch new directory", zap.Error(err))
					}
				}
			}
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			pending = false
			w.log.Info("project resources changed")
			w.onChange()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// relevant drops events that cannot affect an index: chmod-only events and
// files the classifier ignores. Paths without an extension are treated as
// directories and always count.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if filepath.Ext(event.Name) == "" {
		return true
	}
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, event.Name)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		if _, ok := index.Classify(filepath.ToSlash(rel)); ok {
			return true
		}
	}
	return false
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
