package program

import "log/slog"

// BuilderOption is a functional option used to configure a Builder during construction.
type BuilderOption func(*builder)

// WithTransitionHook registers a function called on every state change of every build.
//
// Parameters:
//   - hook: receives the state left and the state entered
//
// Returns:
//   - BuilderOption: a function that sets the transition hook
func WithTransitionHook(hook func(from, to State)) BuilderOption {
	return func(b *builder) {
		b.onTransition = hook
	}
}

// WithLogger sets the logger used for debug transition records. Defaults to the package logger.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - BuilderOption: a function that sets the logger
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *builder) {
		b.logger = logger
	}
}
