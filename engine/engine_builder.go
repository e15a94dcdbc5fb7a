package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-sdf/engine/camera"
	"github.com/Carmen-Shannon/oxy-sdf/engine/profiler"
	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sdf/engine/scene"
	"github.com/Carmen-Shannon/oxy-sdf/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler, for example to change its interval or output.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		if p != nil {
			e.profiler = p
		}
	}
}

// WithWindow sets the window the engine renders into. Run fails without one.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets an uninitialized renderer, for example one built with a different template.
//
// Parameters:
//   - r: the renderer; Run initializes and disposes it
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithCameraController sets the orbit camera.
//
// Parameters:
//   - c: the camera controller
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCameraController(c camera.CameraController) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithWatchDebounce sets the quiet period the file watcher waits for before recompiling.
//
// Parameters:
//   - d: the debounce duration; values <= 0 keep the default
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWatchDebounce(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		if d > 0 {
			e.debounce = d
		}
	}
}

// WithDiagnosticsHandler registers a callback run on the window thread after every compile.
//
// Parameters:
//   - handler: receives the compiled scene and its diagnostics, empty on success
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDiagnosticsHandler(handler func(s scene.Scene, diagnostics []shader.Diagnostic)) EngineBuilderOption {
	return func(e *engine) {
		e.onDiagnostics = handler
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.SetRenderFrameLimit(fps)
	}
}
