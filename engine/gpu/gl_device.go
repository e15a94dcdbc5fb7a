package gpu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// glDevice is the OpenGL 4.1 core implementation of Device.
// All calls must be made on the thread that owns the current GL context.
type glDevice struct{}

var _ Device = &glDevice{}

var glStages = map[Stage]uint32{
	StageVertex:   gl.VERTEX_SHADER,
	StageFragment: gl.FRAGMENT_SHADER,
}

// NewGLDevice loads the OpenGL function pointers for the context current on the calling thread
// and returns a Device bound to it.
//
// Returns:
//   - Device: the OpenGL device
//   - error: an error if the GL functions could not be loaded (no current context)
func NewGLDevice() (Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	return &glDevice{}, nil
}

// GLVersion reports the version string of the current context. Only valid after NewGLDevice.
func GLVersion() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (d *glDevice) CompileShader(stage Stage, source string) (Handle, string, bool) {
	typ, ok := glStages[stage]
	if !ok {
		return 0, fmt.Sprintf("unsupported shader stage %s", stage), false
	}
	handle := gl.CreateShader(typ)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(handle, 1, csources, nil)
	free()
	gl.CompileShader(handle)

	infoLog := shaderInfoLog(handle)

	var status int32
	gl.GetShaderiv(handle, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		gl.DeleteShader(handle)
		return 0, infoLog, false
	}
	return Handle(handle), infoLog, true
}

func (d *glDevice) DeleteShader(shader Handle) {
	if shader == 0 {
		return
	}
	gl.DeleteShader(uint32(shader))
}

func (d *glDevice) LinkProgram(vertex, fragment Handle) (Handle, string, bool) {
	handle := gl.CreateProgram()
	gl.AttachShader(handle, uint32(vertex))
	gl.AttachShader(handle, uint32(fragment))
	gl.LinkProgram(handle)
	gl.DetachShader(handle, uint32(vertex))
	gl.DetachShader(handle, uint32(fragment))

	infoLog := programInfoLog(handle)

	var status int32
	gl.GetProgramiv(handle, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		gl.DeleteProgram(handle)
		return 0, infoLog, false
	}
	return Handle(handle), infoLog, true
}

func (d *glDevice) DeleteProgram(program Handle) {
	if program == 0 {
		return
	}
	gl.DeleteProgram(uint32(program))
}

func (d *glDevice) UniformLocation(program Handle, name string) int32 {
	return gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00"))
}

func (d *glDevice) CreateQuad(vertices []float32) (Quad, error) {
	if len(vertices) == 0 || len(vertices)%3 != 0 {
		return Quad{}, errors.New("quad vertices must be a non-empty list of xyz triplets")
	}

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	if vao == 0 || vbo == 0 {
		return Quad{}, errors.New("failed to allocate quad vertex array or buffer")
	}

	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(PositionAttribute)
	gl.VertexAttribPointer(PositionAttribute, 3, gl.FLOAT, false, 0, gl.PtrOffset(0))
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	return Quad{
		VertexArray: Handle(vao),
		Buffer:      Handle(vbo),
		Count:       int32(len(vertices) / 3),
	}, nil
}

func (d *glDevice) DeleteQuad(quad Quad) {
	if quad.VertexArray != 0 {
		vao := uint32(quad.VertexArray)
		gl.DeleteVertexArrays(1, &vao)
	}
	if quad.Buffer != 0 {
		vbo := uint32(quad.Buffer)
		gl.DeleteBuffers(1, &vbo)
	}
}

func (d *glDevice) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (d *glDevice) Clear(color [4]float32) {
	gl.ClearColor(color[0], color[1], color[2], color[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *glDevice) UseProgram(program Handle) {
	gl.UseProgram(uint32(program))
}

func (d *glDevice) Uniform2f(location int32, x, y float32) {
	if location < 0 {
		return
	}
	gl.Uniform2f(location, x, y)
}

func (d *glDevice) Uniform3f(location int32, x, y, z float32) {
	if location < 0 {
		return
	}
	gl.Uniform3f(location, x, y, z)
}

func (d *glDevice) DrawQuad(quad Quad) {
	gl.BindVertexArray(uint32(quad.VertexArray))
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, quad.Count)
	gl.BindVertexArray(0)
}

// shaderInfoLog reads the full info log of a shader object.
func shaderInfoLog(handle uint32) string {
	var logLength int32
	gl.GetShaderiv(handle, gl.INFO_LOG_LENGTH, &logLength)
	if logLength <= 0 {
		return ""
	}
	msg := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(handle, logLength, nil, gl.Str(msg))
	return strings.TrimRight(msg, "\x00")
}

// programInfoLog reads the full info log of a program object.
func programInfoLog(handle uint32) string {
	var logLength int32
	gl.GetProgramiv(handle, gl.INFO_LOG_LENGTH, &logLength)
	if logLength <= 0 {
		return ""
	}
	msg := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(handle, logLength, nil, gl.Str(msg))
	return strings.TrimRight(msg, "\x00")
}
