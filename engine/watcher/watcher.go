// Package watcher reloads a shader file when it changes on disk and hands the new source to a
// callback after a quiet period.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Carmen-Shannon/oxy-sdf/common"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 150 * time.Millisecond

// Watcher watches one file. The parent directory is watched rather than the file itself so that
// editors which save by writing a temporary file and renaming it over the original keep working.
type Watcher interface {
	// Path returns the absolute path being watched.
	Path() string

	// Start begins delivering change notifications. Calling Start twice is a no-op.
	//
	// Returns:
	//   - error: an error if the directory could not be watched
	Start() error

	// Close stops the watcher and cancels any pending notification.
	//
	// Returns:
	//   - error: an error from the underlying fsnotify watcher
	Close() error
}

// watcher is the implementation of the Watcher interface.
type watcher struct {
	path     string
	debounce time.Duration
	onChange func(src string)
	onError  func(err error)

	mu      *sync.Mutex
	fs      *fsnotify.Watcher
	done    chan struct{}
	timer   *time.Timer
	running bool
}

var _ Watcher = &watcher{}

// NewWatcher creates a watcher for path. onChange receives the full file contents each time the
// file settles after a change.
//
// Parameters:
//   - path: the file to watch, "~" is not expanded here
//   - onChange: callback receiving the new file contents, called from a background goroutine
//   - options: optional WatcherBuilderOption values
//
// Returns:
//   - Watcher: the watcher, not yet started
//   - error: an error if path cannot be resolved
func NewWatcher(path string, onChange func(src string), options ...WatcherBuilderOption) (Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	w := &watcher{
		path:     abs,
		debounce: DefaultDebounce,
		onChange: onChange,
		mu:       &sync.Mutex{},
	}
	for _, option := range options {
		option(w)
	}
	return w, nil
}

func (w *watcher) Path() string {
	return w.path
}

func (w *watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.fs = fsw
	w.done = make(chan struct{})
	w.running = true
	go w.loop(fsw, w.done)

	common.Logger().Debug("watching file", "path", w.path, "debounce", w.debounce)
	return nil
}

func (w *watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return nil
	}
	w.running = false
	close(w.done)
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	err := w.fs.Close()
	w.fs = nil
	return err
}

// loop forwards relevant fsnotify events until done is closed.
func (w *watcher) loop(fsw *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.schedule()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			common.Logger().Warn("file watcher error", "path", w.path, "error", err)
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

// schedule restarts the quiet-period timer.
func (w *watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.fire)
		return
	}
	w.timer.Reset(w.debounce)
}

// fire reads the settled file and delivers it.
func (w *watcher) fire() {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if !running {
		return
	}

	data, err := os.ReadFile(w.path)
	if err != nil {
		// a rename-based save can leave the path missing for a moment; the Create that follows
		// schedules another read
		common.Logger().Warn("failed to reload file", "path", w.path, "error", err)
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	common.Logger().Info("file changed", "path", w.path, "bytes", len(data))
	if w.onChange != nil {
		w.onChange(string(data))
	}
}
