// Package studio is the editor-facing use case: it sequences validate, compile, and render over a
// Renderer and hands diagnostics back to whoever asked for the compile.
package studio

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-sdf/common"
	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sdf/engine/scene"
)

// studio is the implementation of the Studio interface.
type studio struct {
	renderer renderer.Renderer

	mu      *sync.Mutex
	pending *scene.Scene
	last    []shader.Diagnostic

	onCompiled func(s scene.Scene, diagnostics []shader.Diagnostic)
}

// Studio drives one Renderer on behalf of an editor. CompileScene, CompileCode, and Flush must run
// on the renderer's thread; RequestCompile may be called from any goroutine.
type Studio interface {
	// CompileScene compiles the scene and, when it succeeds, renders one frame from the scene's
	// camera. A scene with non-finite camera vectors is rejected without touching the GPU.
	//
	// Parameters:
	//   - s: the scene to compile
	//
	// Returns:
	//   - []shader.Diagnostic: empty on success
	CompileScene(s scene.Scene) []shader.Diagnostic

	// CompileCode compiles raw editor text as a scene named "scene" with the default module id and
	// the default camera.
	//
	// Parameters:
	//   - code: the raw user source
	//
	// Returns:
	//   - []shader.Diagnostic: empty on success
	CompileCode(code string) []shader.Diagnostic

	// RequestCompile records s as the pending compile, replacing any earlier pending request.
	//
	// Parameters:
	//   - s: the scene to compile at the next Flush
	RequestCompile(s scene.Scene)

	// Flush compiles the pending request, if any.
	//
	// Returns:
	//   - []shader.Diagnostic: the diagnostics of the compile that ran
	//   - bool: false if nothing was pending
	Flush() ([]shader.Diagnostic, bool)

	// LastDiagnostics returns the diagnostics of the most recent compile.
	LastDiagnostics() []shader.Diagnostic
}

var _ Studio = &studio{}

// NewStudio creates a Studio over an initialized renderer.
//
// Parameters:
//   - r: the renderer to drive
//   - options: optional StudioBuilderOption values
//
// Returns:
//   - Studio: the studio
func NewStudio(r renderer.Renderer, options ...StudioBuilderOption) Studio {
	s := &studio{
		renderer: r,
		mu:       &sync.Mutex{},
		last:     []shader.Diagnostic{},
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (st *studio) CompileScene(s scene.Scene) []shader.Diagnostic {
	var diagnostics []shader.Diagnostic
	if err := s.Validate(); err != nil {
		diagnostics = []shader.Diagnostic{shader.Internal(err)}
	} else {
		diagnostics = st.renderer.Compile(s)
	}

	if len(diagnostics) == 0 {
		pos, dir := s.Camera()
		if err := st.renderer.Render(renderer.WithCamera(pos, dir)); err != nil {
			common.Logger().Warn("render after compile failed", "scene", s.Name, "error", err)
		}
	}

	st.mu.Lock()
	st.last = diagnostics
	st.mu.Unlock()

	if st.onCompiled != nil {
		st.onCompiled(s, diagnostics)
	}
	return diagnostics
}

func (st *studio) CompileCode(code string) []shader.Diagnostic {
	return st.CompileScene(scene.NewScene("scene", code))
}

func (st *studio) RequestCompile(s scene.Scene) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.pending = &s
}

func (st *studio) Flush() ([]shader.Diagnostic, bool) {
	st.mu.Lock()
	pending := st.pending
	st.pending = nil
	st.mu.Unlock()

	if pending == nil {
		return nil, false
	}
	return st.CompileScene(*pending), true
}

func (st *studio) LastDiagnostics() []shader.Diagnostic {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.last
}
