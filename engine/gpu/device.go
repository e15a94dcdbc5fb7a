// Package gpu defines the graphics capability the shader pipeline depends on. The renderer owns
// exactly one Device and never reaches for ambient GPU state, which lets tests substitute the
// scripted device in gputest.
package gpu

// Stage identifies one programmable shader stage.
type Stage int

const (
	// StageVertex is the fixed full-screen-quad vertex stage.
	StageVertex Stage = iota

	// StageFragment is the raymarching fragment stage that carries user code.
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// Handle is an opaque GPU object name. The zero Handle never refers to a live object.
type Handle uint32

// Compiler is the shader compiler/linker half of the capability. Every call is a direct, blocking
// call into the driver. Logs are returned byte-for-byte as the driver reports them.
type Compiler interface {
	// CompileShader compiles one stage.
	//
	// Parameters:
	//   - stage: the stage the source is compiled for
	//   - source: complete stage source text
	//
	// Returns:
	//   - Handle: the compiled shader object, zero on failure
	//   - string: the raw info log (may be non-empty on success)
	//   - bool: true if the stage compiled
	CompileShader(stage Stage, source string) (Handle, string, bool)

	// DeleteShader releases a shader object. Deleting the zero Handle is a no-op.
	//
	// Parameters:
	//   - shader: the shader object to release
	DeleteShader(shader Handle)

	// LinkProgram links a vertex and a fragment shader object into a program.
	// On failure no program object survives.
	//
	// Parameters:
	//   - vertex: the compiled vertex shader
	//   - fragment: the compiled fragment shader
	//
	// Returns:
	//   - Handle: the linked program, zero on failure
	//   - string: the raw link log
	//   - bool: true if the program linked
	LinkProgram(vertex, fragment Handle) (Handle, string, bool)

	// DeleteProgram releases a program object. Deleting the zero Handle is a no-op.
	//
	// Parameters:
	//   - program: the program to release
	DeleteProgram(program Handle)
}

// Device is the full capability a Renderer needs: compile/link plus the handful of calls used to
// draw a single full-screen quad with a few uniforms.
type Device interface {
	Compiler

	// UniformLocation resolves a uniform name in a linked program.
	//
	// Parameters:
	//   - program: the linked program
	//   - name: the uniform name
	//
	// Returns:
	//   - int32: the location, or -1 if the program has no active uniform of that name
	UniformLocation(program Handle, name string) int32

	// CreateQuad uploads the vertex positions (xyz triplets) into a new vertex buffer and a
	// vertex array whose attribute PositionAttribute reads them.
	//
	// Parameters:
	//   - vertices: tightly packed xyz positions
	//
	// Returns:
	//   - Quad: the vertex array / buffer pair
	//   - error: an error if either object could not be created
	CreateQuad(vertices []float32) (Quad, error)

	// DeleteQuad releases the quad's vertex array and buffer.
	//
	// Parameters:
	//   - quad: the quad to release
	DeleteQuad(quad Quad)

	// Viewport sets the viewport transform in pixels.
	Viewport(x, y, width, height int)

	// Clear clears the color and depth of the current target.
	Clear(color [4]float32)

	// UseProgram makes program current for subsequent uniform writes and draws.
	UseProgram(program Handle)

	// Uniform2f writes a vec2 uniform of the current program. Location -1 is ignored.
	Uniform2f(location int32, x, y float32)

	// Uniform3f writes a vec3 uniform of the current program. Location -1 is ignored.
	Uniform3f(location int32, x, y, z float32)

	// DrawQuad draws the quad as a four vertex triangle strip.
	DrawQuad(quad Quad)
}

// Quad is the persistent full-screen quad geometry.
type Quad struct {
	// VertexArray is the vertex array object.
	VertexArray Handle

	// Buffer is the vertex buffer holding the positions.
	Buffer Handle

	// Count is the number of vertices in the buffer.
	Count int32
}

// PositionAttribute is the vertex attribute location the quad positions are bound to. Vertex
// templates declare their position input with layout(location = 0).
const PositionAttribute = 0

// FullScreenQuad holds the four clip-space corners drawn as a triangle strip.
var FullScreenQuad = []float32{
	-1, -1, 0,
	1, -1, 0,
	-1, 1, 0,
	1, 1, 0,
}
