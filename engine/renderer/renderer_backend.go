package renderer

import "github.com/Carmen-Shannon/oxy-sdf/engine/gpu"

// Surface is whatever the renderer draws onto. It hands out the GPU device bound to its context
// and reports the framebuffer size used for the initial viewport.
type Surface interface {
	// AcquireDevice returns the device for this surface's GPU context.
	//
	// Returns:
	//   - gpu.Device: the device
	//   - error: an error if the context is unavailable
	AcquireDevice() (gpu.Device, error)

	// Size returns the framebuffer size in pixels.
	//
	// Returns:
	//   - int: width
	//   - int: height
	Size() (int, int)
}

// compiledProgram is the one live program and its resolved uniform locations. It never leaves the
// renderer.
type compiledProgram struct {
	handle   gpu.Handle
	uniforms map[string]int32
}

// location returns the resolved location of name, -1 when inactive.
func (p *compiledProgram) location(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	return -1
}
