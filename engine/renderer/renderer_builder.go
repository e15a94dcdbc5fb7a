package renderer

import (
	"github.com/Carmen-Shannon/oxy-sdf/common"
	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer/shader"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithTemplate sets the fragment template user sources are composed into.
//
// Parameters:
//   - t: the template
//
// Returns:
//   - RendererBuilderOption: a function that applies the template option to a renderer
func WithTemplate(t shader.Template) RendererBuilderOption {
	return func(r *renderer) {
		r.template = t
	}
}

// WithClearColor sets the RGBA colour the target is cleared to before each draw.
//
// Parameters:
//   - color: the clear colour, components in [0, 1]
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear colour option to a renderer
func WithClearColor(color [4]float32) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = color
	}
}

// WithHints toggles identifier suggestions on fragment diagnostics. Enabled by default.
//
// Parameters:
//   - enabled: true to attach hints
//
// Returns:
//   - RendererBuilderOption: a function that applies the hints option to a renderer
func WithHints(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.hints = enabled
	}
}

// renderParams collects the per-frame uniforms supplied to Render.
type renderParams struct {
	cameraPosition  *common.Vec3
	cameraDirection *common.Vec3
}

// RenderOption supplies a per-frame uniform to Render. Camera uniforms are only written when given.
type RenderOption func(*renderParams)

// WithCameraPosition uploads cameraPosition for this frame.
//
// Parameters:
//   - pos: the camera position in world space
//
// Returns:
//   - RenderOption: a function that sets the camera position
func WithCameraPosition(pos common.Vec3) RenderOption {
	return func(p *renderParams) {
		p.cameraPosition = &pos
	}
}

// WithCameraDirection uploads cameraDirection for this frame.
//
// Parameters:
//   - dir: the viewing direction; the template normalizes it
//
// Returns:
//   - RenderOption: a function that sets the camera direction
func WithCameraDirection(dir common.Vec3) RenderOption {
	return func(p *renderParams) {
		p.cameraDirection = &dir
	}
}

// WithCamera uploads both camera uniforms.
func WithCamera(pos, dir common.Vec3) RenderOption {
	return func(p *renderParams) {
		WithCameraPosition(pos)(p)
		WithCameraDirection(dir)(p)
	}
}
