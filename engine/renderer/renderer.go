package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-sdf/common"
	"github.com/Carmen-Shannon/oxy-sdf/engine/gpu"
	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sdf/engine/scene"
)

var (
	// ErrContextUnavailable is returned by Initialize when the surface cannot provide a GPU device.
	// The renderer must not be used afterwards.
	ErrContextUnavailable = errors.New("gpu context unavailable")

	// ErrNotInitialized is reported by calls made before a successful Initialize.
	ErrNotInitialized = errors.New("renderer not initialized")

	// ErrDisposed is reported by calls made after Dispose.
	ErrDisposed = errors.New("renderer disposed")
)

// Uniform names every fragment template declares.
const (
	UniformResolution      = "resolution"
	UniformCameraPosition  = "cameraPosition"
	UniformCameraDirection = "cameraDirection"
)

var uniformNames = []string{UniformResolution, UniformCameraPosition, UniformCameraDirection}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	device   gpu.Device
	builder  program.Builder
	template shader.Template
	quad     gpu.Quad
	live     *compiledProgram

	width, height int
	clearColor    [4]float32
	hints         bool

	initialized bool
	disposed    bool
}

// Renderer owns the GPU side of the live preview: the full-screen quad and at most one compiled
// program. A failed Compile never touches the live program, so the last good frame keeps rendering.
//
// Calls are synchronous and must come from the thread that owns the surface's GPU context.
type Renderer interface {
	// Initialize acquires the device from surface and allocates the full-screen quad.
	//
	// Parameters:
	//   - surface: the drawable surface
	//
	// Returns:
	//   - error: ErrContextUnavailable when no device can be acquired, or an error if the quad cannot
	//     be allocated or the renderer was already initialized or disposed
	Initialize(surface Surface) error

	// Compile validates, composes, builds, and on success swaps in the new program, releasing the
	// previous one. Failures are returned as diagnostics in user-source lines.
	//
	// Parameters:
	//   - s: the scene whose shader source is compiled
	//
	// Returns:
	//   - []shader.Diagnostic: empty on success, never nil
	Compile(s scene.Scene) []shader.Diagnostic

	// Render clears the target, uploads the resolution and any supplied camera uniforms, and draws
	// the quad. Without a live program it does nothing.
	//
	// Parameters:
	//   - options: camera uniforms to upload for this frame
	//
	// Returns:
	//   - error: ErrNotInitialized or ErrDisposed
	Render(options ...RenderOption) error

	// Resize sets the viewport and the resolution uploaded by later renders. It neither recompiles
	// nor renders.
	//
	// Parameters:
	//   - width: the framebuffer width in pixels
	//   - height: the framebuffer height in pixels
	Resize(width, height int)

	// Dispose releases the live program and the quad. Later calls report ErrDisposed.
	Dispose()

	// HasProgram reports whether a compiled program is live.
	HasProgram() bool

	// Template returns the fragment template sources are composed into.
	Template() shader.Template
}

var _ Renderer = &renderer{}

// NewRenderer creates an uninitialized Renderer. Without WithTemplate the embedded GL template is
// used.
//
// Parameters:
//   - options: optional RendererBuilderOption values
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:         &sync.Mutex{},
		clearColor: [4]float32{0, 0, 0, 1},
		hints:      true,
	}
	for _, option := range options {
		option(r)
	}
	if r.template == nil {
		r.template = shader.MustTemplate(shader.TemplateGL)
	}
	return r
}

func (r *renderer) Initialize(surface Surface) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disposed {
		return ErrDisposed
	}
	if r.initialized {
		return errors.New("renderer already initialized")
	}
	if surface == nil {
		return fmt.Errorf("%w: no surface", ErrContextUnavailable)
	}

	device, err := surface.AcquireDevice()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrContextUnavailable, err)
	}
	if device == nil {
		return fmt.Errorf("%w: surface returned no device", ErrContextUnavailable)
	}

	quad, err := device.CreateQuad(gpu.FullScreenQuad)
	if err != nil {
		return fmt.Errorf("failed to create full-screen quad: %w", err)
	}

	r.device = device
	r.quad = quad
	r.builder = program.NewBuilder(device)
	r.width, r.height = surface.Size()
	r.device.Viewport(0, 0, r.width, r.height)
	r.initialized = true

	common.Logger().Info("renderer initialized", "template", r.template.Name(), "width", r.width, "height", r.height)
	return nil
}

func (r *renderer) Compile(s scene.Scene) []shader.Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.usable(); err != nil {
		return []shader.Diagnostic{shader.Internal(err)}
	}

	src := s.Shader.Src
	if diagnostics := shader.Validate(src); len(diagnostics) > 0 {
		return diagnostics
	}

	composition := r.template.Compose(src)
	res := r.builder.Build(r.template.Vertex(), composition.FragmentSource)
	if !res.OK() {
		return r.diagnose(res, composition, src)
	}

	next := &compiledProgram{
		handle:   res.Program,
		uniforms: make(map[string]int32, len(uniformNames)),
	}
	for _, name := range uniformNames {
		loc := r.device.UniformLocation(res.Program, name)
		if loc < 0 {
			common.Logger().Warn("uniform not active in program", "uniform", name, "module", s.Shader.ID)
		}
		next.uniforms[name] = loc
	}

	prev := r.live
	r.live = next
	if prev != nil {
		r.device.DeleteProgram(prev.handle)
	}

	common.Logger().Info("shader compiled", "scene", s.Name, "module", s.Shader.ID, "program", res.Program)
	return []shader.Diagnostic{}
}

func (r *renderer) diagnose(res program.Result, composition shader.Composition, src string) []shader.Diagnostic {
	return Diagnose(res, composition, src, r.hintSymbols())
}

func (r *renderer) hintSymbols() []string {
	if !r.hints {
		return nil
	}
	return r.template.Symbols()
}

func (r *renderer) Render(options ...RenderOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.usable(); err != nil {
		return err
	}
	if r.live == nil {
		return nil
	}

	params := &renderParams{}
	for _, option := range options {
		option(params)
	}

	r.device.Clear(r.clearColor)
	r.device.UseProgram(r.live.handle)
	r.device.Uniform2f(r.live.location(UniformResolution), float32(r.width), float32(r.height))
	if params.cameraPosition != nil {
		p := *params.cameraPosition
		r.device.Uniform3f(r.live.location(UniformCameraPosition), p[0], p[1], p[2])
	}
	if params.cameraDirection != nil {
		d := *params.cameraDirection
		r.device.Uniform3f(r.live.location(UniformCameraDirection), d[0], d[1], d[2])
	}
	r.device.DrawQuad(r.quad)
	return nil
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.usable() != nil {
		return
	}
	r.width, r.height = width, height
	r.device.Viewport(0, 0, width, height)
}

func (r *renderer) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disposed {
		return
	}
	r.disposed = true
	if !r.initialized {
		return
	}
	if r.live != nil {
		r.device.DeleteProgram(r.live.handle)
		r.live = nil
	}
	r.device.DeleteQuad(r.quad)
	r.quad = gpu.Quad{}
	r.device = nil
	common.Logger().Info("renderer disposed")
}

func (r *renderer) HasProgram() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live != nil
}

func (r *renderer) Template() shader.Template {
	return r.template
}

// usable must be called with mu held.
func (r *renderer) usable() error {
	if r.disposed {
		return ErrDisposed
	}
	if !r.initialized {
		return ErrNotInitialized
	}
	return nil
}

// Diagnose maps a failed build into user-facing diagnostics: vertex and link logs become one
// prefixed line-0 diagnostic, fragment logs are translated into user lines. When symbols is
// non-empty, unknown-identifier diagnostics get a hint naming the closest one.
//
// Parameters:
//   - res: the failed build result
//   - composition: the composition the fragment stage was built from
//   - src: the raw user source
//   - symbols: helper names to suggest, or nil
//
// Returns:
//   - []shader.Diagnostic: at least one diagnostic for a failed res, empty for a linked one
func Diagnose(res program.Result, composition shader.Composition, src string, symbols []string) []shader.Diagnostic {
	switch res.State {
	case program.StateLinked:
		return []shader.Diagnostic{}
	case program.StateVertexFailed:
		return []shader.Diagnostic{shader.VertexFailure(res.Log)}
	case program.StateFragmentFailed:
		diagnostics := shader.FragmentFailure(composition.Offset, shader.UserLineCount(src), res.Log)
		if len(symbols) > 0 {
			shader.AttachHints(diagnostics, symbols)
		}
		return diagnostics
	case program.StateLinkFailed:
		return []shader.Diagnostic{shader.LinkFailure(res.Log)}
	default:
		return []shader.Diagnostic{shader.Internal(fmt.Errorf("program build ended in non-terminal state %s", res.State))}
	}
}

// Check runs the full compile pipeline against compiler without any renderer state: validate,
// compose, build, and translate. A program linked along the way is released before returning.
//
// Parameters:
//   - compiler: the shader compiler/linker
//   - tmpl: the template to compose into
//   - src: the raw user source
//
// Returns:
//   - []shader.Diagnostic: empty when the source compiles and links
func Check(compiler gpu.Compiler, tmpl shader.Template, src string) []shader.Diagnostic {
	if diagnostics := shader.Validate(src); len(diagnostics) > 0 {
		return diagnostics
	}
	return CheckComposition(compiler, tmpl, tmpl.Compose(src), src)
}

// CheckComposition builds an already validated and composed source. It is the GPU half of Check.
//
// Parameters:
//   - compiler: the shader compiler/linker
//   - tmpl: the template composition was produced by
//   - composition: the composed fragment source and its offset
//   - src: the raw user source, for line clamping
//
// Returns:
//   - []shader.Diagnostic: empty when the source compiles and links
func CheckComposition(compiler gpu.Compiler, tmpl shader.Template, composition shader.Composition, src string) []shader.Diagnostic {
	res := program.NewBuilder(compiler).Build(tmpl.Vertex(), composition.FragmentSource)
	if res.OK() {
		compiler.DeleteProgram(res.Program)
	}
	return Diagnose(res, composition, src, tmpl.Symbols())
}
