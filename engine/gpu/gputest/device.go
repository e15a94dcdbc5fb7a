// Package gputest provides a scripted gpu.Device for tests. It performs no GPU work: compile and
// link outcomes are configured up front and every call is recorded so tests can assert which
// objects were created, which were released, and what was drawn.
package gputest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-sdf/engine/gpu"
)

// Outcome scripts the result of one compile or link call.
type Outcome struct {
	// Fail makes the call report failure.
	Fail bool

	// Log is returned as the info log regardless of Fail.
	Log string
}

// UniformWrite records one Uniform2f/Uniform3f call.
type UniformWrite struct {
	Program  gpu.Handle
	Location int32
	Values   []float32
}

// Viewport records one Viewport call.
type Viewport struct {
	X, Y, Width, Height int
}

// Device is the scripted gpu.Device. The zero value is not usable; call NewDevice.
type Device struct {
	mu sync.Mutex

	// Vertex, Fragment, and Link script the next outcomes of CompileShader and LinkProgram.
	Vertex   Outcome
	Fragment Outcome
	Link     Outcome

	// FragmentFunc, when set, overrides Fragment and is given the fragment source.
	FragmentFunc func(source string) Outcome

	// QuadErr makes CreateQuad fail.
	QuadErr error

	// Uniforms maps uniform names to the location every linked program reports. Missing names
	// resolve to -1.
	Uniforms map[string]int32

	next     gpu.Handle
	shaders  map[gpu.Handle]gpu.Stage
	programs map[gpu.Handle]struct{}
	quads    map[gpu.Handle]struct{}
	current  gpu.Handle

	calls      []string
	sources    map[gpu.Stage][]string
	writes     []UniformWrite
	viewports  []Viewport
	clears     int
	draws      []gpu.Handle
	deletedPgm []gpu.Handle
}

var _ gpu.Device = &Device{}

// NewDevice creates a Device where every compile and link succeeds and the renderer's uniforms
// resolve to locations 0, 1, and 2.
func NewDevice() *Device {
	return &Device{
		Uniforms: map[string]int32{
			"resolution":      0,
			"cameraPosition":  1,
			"cameraDirection": 2,
		},
		shaders:  make(map[gpu.Handle]gpu.Stage),
		programs: make(map[gpu.Handle]struct{}),
		quads:    make(map[gpu.Handle]struct{}),
		sources:  make(map[gpu.Stage][]string),
	}
}

func (d *Device) record(format string, args ...any) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *Device) CompileShader(stage gpu.Stage, source string) (gpu.Handle, string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.record("CompileShader(%s)", stage)
	d.sources[stage] = append(d.sources[stage], source)

	var out Outcome
	switch stage {
	case gpu.StageVertex:
		out = d.Vertex
	case gpu.StageFragment:
		out = d.Fragment
		if d.FragmentFunc != nil {
			out = d.FragmentFunc(source)
		}
	default:
		return 0, "unsupported stage", false
	}
	if out.Fail {
		return 0, out.Log, false
	}

	d.next++
	d.shaders[d.next] = stage
	return d.next, out.Log, true
}

func (d *Device) DeleteShader(shader gpu.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.record("DeleteShader(%d)", shader)
	delete(d.shaders, shader)
}

func (d *Device) LinkProgram(vertex, fragment gpu.Handle) (gpu.Handle, string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.record("LinkProgram(%d,%d)", vertex, fragment)
	vs, vok := d.shaders[vertex]
	fs, fok := d.shaders[fragment]
	if !vok || !fok || vs != gpu.StageVertex || fs != gpu.StageFragment {
		return 0, "link of unknown shader objects", false
	}
	if d.Link.Fail {
		return 0, d.Link.Log, false
	}

	d.next++
	d.programs[d.next] = struct{}{}
	return d.next, d.Link.Log, true
}

func (d *Device) DeleteProgram(program gpu.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.record("DeleteProgram(%d)", program)
	if _, ok := d.programs[program]; ok {
		d.deletedPgm = append(d.deletedPgm, program)
	}
	delete(d.programs, program)
}

func (d *Device) UniformLocation(program gpu.Handle, name string) int32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.record("UniformLocation(%d,%s)", program, name)
	if _, ok := d.programs[program]; !ok {
		return -1
	}
	if loc, ok := d.Uniforms[name]; ok {
		return loc
	}
	return -1
}

func (d *Device) CreateQuad(vertices []float32) (gpu.Quad, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.record("CreateQuad(%d)", len(vertices))
	if d.QuadErr != nil {
		return gpu.Quad{}, d.QuadErr
	}
	if len(vertices) == 0 || len(vertices)%3 != 0 {
		return gpu.Quad{}, errors.New("quad vertices must be xyz triplets")
	}

	d.next++
	vao := d.next
	d.next++
	vbo := d.next
	d.quads[vao] = struct{}{}
	d.quads[vbo] = struct{}{}
	return gpu.Quad{VertexArray: vao, Buffer: vbo, Count: int32(len(vertices) / 3)}, nil
}

func (d *Device) DeleteQuad(quad gpu.Quad) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.record("DeleteQuad")
	delete(d.quads, quad.VertexArray)
	delete(d.quads, quad.Buffer)
}

func (d *Device) Viewport(x, y, width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.record("Viewport(%d,%d,%d,%d)", x, y, width, height)
	d.viewports = append(d.viewports, Viewport{X: x, Y: y, Width: width, Height: height})
}

func (d *Device) Clear(color [4]float32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.record("Clear")
	d.clears++
}

func (d *Device) UseProgram(program gpu.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.record("UseProgram(%d)", program)
	d.current = program
}

func (d *Device) Uniform2f(location int32, x, y float32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.record("Uniform2f(%d)", location)
	d.writes = append(d.writes, UniformWrite{Program: d.current, Location: location, Values: []float32{x, y}})
}

func (d *Device) Uniform3f(location int32, x, y, z float32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.record("Uniform3f(%d)", location)
	d.writes = append(d.writes, UniformWrite{Program: d.current, Location: location, Values: []float32{x, y, z}})
}

func (d *Device) DrawQuad(quad gpu.Quad) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.record("DrawQuad")
	d.draws = append(d.draws, d.current)
}

// Calls returns every recorded call in order.
func (d *Device) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// ResetCalls clears the call log, keeping live objects.
func (d *Device) ResetCalls() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = nil
	d.writes = nil
	d.viewports = nil
	d.draws = nil
	d.clears = 0
}

// Sources returns every source compiled for stage, oldest first.
func (d *Device) Sources(stage gpu.Stage) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.sources[stage]...)
}

// LiveShaders is the number of shader objects not yet deleted.
func (d *Device) LiveShaders() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.shaders)
}

// LivePrograms is the number of program objects not yet deleted.
func (d *Device) LivePrograms() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.programs)
}

// LiveQuadObjects is the number of vertex array and buffer objects not yet deleted.
func (d *Device) LiveQuadObjects() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.quads)
}

// IsLiveProgram reports whether program has been linked and not deleted.
func (d *Device) IsLiveProgram(program gpu.Handle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.programs[program]
	return ok
}

// DeletedPrograms returns the live programs that were deleted, in order.
func (d *Device) DeletedPrograms() []gpu.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]gpu.Handle(nil), d.deletedPgm...)
}

// UniformWrites returns every uniform write since the last ResetCalls.
func (d *Device) UniformWrites() []UniformWrite {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]UniformWrite(nil), d.writes...)
}

// Viewports returns every viewport set since the last ResetCalls.
func (d *Device) Viewports() []Viewport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Viewport(nil), d.viewports...)
}

// Draws returns the program current at each DrawQuad since the last ResetCalls.
func (d *Device) Draws() []gpu.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]gpu.Handle(nil), d.draws...)
}

// Clears is the number of Clear calls since the last ResetCalls.
func (d *Device) Clears() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clears
}

// Surface is a scripted renderer surface handing out a Device.
type Surface struct {
	Device *Device
	Err    error
	Width  int
	Height int
}

// AcquireDevice returns the scripted device or error.
func (s *Surface) AcquireDevice() (gpu.Device, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Device, nil
}

// Size returns the scripted framebuffer size.
func (s *Surface) Size() (int, int) {
	return s.Width, s.Height
}
