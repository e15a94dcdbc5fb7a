package watcher

import "time"

// WatcherBuilderOption is a functional option applied to a watcher during construction via NewWatcher.
type WatcherBuilderOption func(*watcher)

// WithDebounce sets how long the file must stay unchanged before onChange runs. Values <= 0 keep
// the default.
//
// Parameters:
//   - d: the quiet period
//
// Returns:
//   - WatcherBuilderOption: option function to apply
func WithDebounce(d time.Duration) WatcherBuilderOption {
	return func(w *watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler receives watcher and reload errors in addition to the warning log.
//
// Parameters:
//   - handler: the callback
//
// Returns:
//   - WatcherBuilderOption: option function to apply
func WithErrorHandler(handler func(err error)) WatcherBuilderOption {
	return func(w *watcher) {
		w.onError = handler
	}
}
