package gpu

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// WGPUCompiler is a headless Compiler backed by a WebGPU device. Stages are compiled from
// Vulkan-flavoured GLSL through the device's GLSL front end and "linking" creates a render
// pipeline for an offscreen RGBA8 target. No surface or window is required.
type WGPUCompiler interface {
	Compiler

	// Release destroys every outstanding shader module and pipeline, then the device, adapter,
	// and instance. The compiler is unusable afterwards.
	Release()
}

// wgpuShader pairs a compiled module with the stage it was compiled for.
type wgpuShader struct {
	module *wgpu.ShaderModule
	stage  Stage
}

// wgpuCompiler is the implementation of the WGPUCompiler interface.
type wgpuCompiler struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device

	next      Handle
	shaders   map[Handle]wgpuShader
	pipelines map[Handle]*wgpu.RenderPipeline
}

var _ WGPUCompiler = &wgpuCompiler{}

var wgpuStages = map[Stage]wgpu.ShaderStage{
	StageVertex:   wgpu.ShaderStageVertex,
	StageFragment: wgpu.ShaderStageFragment,
}

// NewWGPUCompiler requests an adapter and device without a compatible surface.
//
// Parameters:
//   - forceFallbackAdapter: true to request a CPU/software adapter (SwiftShader, lavapipe)
//
// Returns:
//   - WGPUCompiler: the headless compiler
//   - error: an error if no adapter or device could be acquired
func NewWGPUCompiler(forceFallbackAdapter bool) (WGPUCompiler, error) {
	c := &wgpuCompiler{
		mu:        &sync.Mutex{},
		instance:  wgpu.CreateInstance(nil),
		shaders:   make(map[Handle]wgpuShader),
		pipelines: make(map[Handle]*wgpu.RenderPipeline),
	}

	a, err := c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	})
	if err != nil {
		c.instance.Release()
		return nil, fmt.Errorf("failed to request WebGPU adapter: %w", err)
	}
	c.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "oxy-sdf compiler device",
	})
	if err != nil {
		c.adapter.Release()
		c.instance.Release()
		return nil, fmt.Errorf("failed to request WebGPU device: %w", err)
	}
	c.device = d

	return c, nil
}

func (c *wgpuCompiler) CompileShader(stage Stage, source string) (Handle, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	wgpuStage, ok := wgpuStages[stage]
	if !ok {
		return 0, fmt.Sprintf("unsupported shader stage %s", stage), false
	}

	module, err := c.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "oxy-sdf " + stage.String(),
		GLSLDescriptor: &wgpu.ShaderModuleGLSLDescriptor{
			Code:        source,
			ShaderStage: wgpuStage,
		},
	})
	if err != nil {
		return 0, NormalizeLog(err.Error()), false
	}

	c.next++
	c.shaders[c.next] = wgpuShader{module: module, stage: stage}
	return c.next, "", true
}

func (c *wgpuCompiler) DeleteShader(shader Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.shaders[shader]
	if !ok {
		return
	}
	s.module.Release()
	delete(c.shaders, shader)
}

func (c *wgpuCompiler) LinkProgram(vertex, fragment Handle) (Handle, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	vs, ok := c.shaders[vertex]
	if !ok || vs.stage != StageVertex {
		return 0, "link: vertex handle does not name a compiled vertex shader", false
	}
	fs, ok := c.shaders[fragment]
	if !ok || fs.stage != StageFragment {
		return 0, "link: fragment handle does not name a compiled fragment shader", false
	}

	// A nil Layout lets the device derive the bind group layout from the shaders.
	created, err := c.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "oxy-sdf raymarch pipeline",
		Vertex: wgpu.VertexState{
			Module:     vs.module,
			EntryPoint: "main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: 12,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{
							Format:         wgpu.VertexFormatFloat32x3,
							Offset:         0,
							ShaderLocation: PositionAttribute,
						},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs.module,
			EntryPoint: "main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    wgpu.TextureFormatRGBA8Unorm,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleStrip,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return 0, err.Error(), false
	}

	c.next++
	c.pipelines[c.next] = created
	return c.next, "", true
}

func (c *wgpuCompiler) DeleteProgram(program Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.pipelines[program]
	if !ok {
		return
	}
	p.Release()
	delete(c.pipelines, program)
}

func (c *wgpuCompiler) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for h, p := range c.pipelines {
		p.Release()
		delete(c.pipelines, h)
	}
	for h, s := range c.shaders {
		s.module.Release()
		delete(c.shaders, h)
	}
	if c.device != nil {
		c.device.Release()
		c.device = nil
	}
	if c.adapter != nil {
		c.adapter.Release()
		c.adapter = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
}

var (
	codespanErrorRegex    = regexp.MustCompile(`^\s*error:\s*(.+?)\s*$`)
	codespanLocationRegex = regexp.MustCompile(`┌─\s*[^:\s]+:(\d+):(\d+)`)
)

// NormalizeLog rewrites codespan-style diagnostics, as produced by the WebGPU shader front end,
// into the "ERROR: 0:<line>: <message>" convention of OpenGL info logs. Each "error: <message>"
// line is paired with the first "┌─ <file>:<line>:<col>" location that follows it. When nothing
// can be paired the log is returned unchanged.
//
// Parameters:
//   - raw: the raw error text
//
// Returns:
//   - string: the normalized log, or raw if no location could be paired
func NormalizeLog(raw string) string {
	var out []string
	pending := ""
	for _, line := range strings.Split(raw, "\n") {
		if m := codespanErrorRegex.FindStringSubmatch(line); m != nil {
			pending = m[1]
			continue
		}
		if pending == "" {
			continue
		}
		if m := codespanLocationRegex.FindStringSubmatch(line); m != nil {
			out = append(out, fmt.Sprintf("ERROR: 0:%s: %s", m[1], pending))
			pending = ""
		}
	}
	if len(out) == 0 {
		return raw
	}
	return strings.Join(out, "\n")
}
