package core

// watcher.go detects changes to file-backed sources so cached datasets can be
// invalidated without waiting for the TTL.

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// SourceWatcher calls a handler whenever a watched file is written, created,
// renamed or removed.
type SourceWatcher struct {
	watcher *fsnotify.Watcher

	mu       sync.RWMutex
	watching map[string]func() // absolute file path -> change handler
	dirs     map[string]int    // watched directory -> number of files in it
}

// NewSourceWatcher starts a watcher. Call Close to stop it.
func NewSourceWatcher() (*SourceWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &SourceWatcher{
		watcher:  watcher,
		watching: make(map[string]func()),
		dirs:     make(map[string]int),
	}

	go w.watchLoop()

	return w, nil
}

// Watch registers onChange for a file. The parent directory is watched so
// that editors replacing the file (write to temp, rename) are noticed.
func (w *SourceWatcher) Watch(path string, onChange func()) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(absPath)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.watching[absPath]; !ok {
		if w.dirs[dir] == 0 {
			if err := w.watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
		}
		w.dirs[dir]++
	}
	w.watching[absPath] = onChange
	return nil
}

// Unwatch stops watching a file.
func (w *SourceWatcher) Unwatch(path string) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return
	}
	dir := filepath.Dir(absPath)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.watching[absPath]; !ok {
		return
	}
	delete(w.watching, absPath)

	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.watcher.Remove(dir)
	}
}

// Close stops the watcher.
func (w *SourceWatcher) Close() error {
	return w.watcher.Close()
}

func (w *SourceWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}

			absPath, _ := filepath.Abs(event.Name)
			w.mu.RLock()
			onChange, watched := w.watching[absPath]
			w.mu.RUnlock()

			if watched && onChange != nil {
				slog.Debug("source file changed", "path", absPath, "op", event.Op.String())
				onChange()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("source watcher error", "error", err)
		}
	}
}
