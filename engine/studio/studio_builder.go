package studio

import (
	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sdf/engine/scene"
)

// StudioBuilderOption is a functional option applied to a studio during construction via NewStudio.
type StudioBuilderOption func(*studio)

// WithCompiledHandler registers a callback run after every compile with its diagnostics, empty on
// success. It runs on the thread that compiled.
//
// Parameters:
//   - handler: the callback
//
// Returns:
//   - StudioBuilderOption: a function that sets the handler
func WithCompiledHandler(handler func(s scene.Scene, diagnostics []shader.Diagnostic)) StudioBuilderOption {
	return func(st *studio) {
		st.onCompiled = handler
	}
}
