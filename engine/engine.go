// Package engine runs the live editor loop: one window, one renderer, and one watched shader file
// recompiled whenever it changes.
package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-sdf/common"
	"github.com/Carmen-Shannon/oxy-sdf/engine/camera"
	"github.com/Carmen-Shannon/oxy-sdf/engine/profiler"
	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sdf/engine/scene"
	"github.com/Carmen-Shannon/oxy-sdf/engine/studio"
	"github.com/Carmen-Shannon/oxy-sdf/engine/watcher"
	"github.com/Carmen-Shannon/oxy-sdf/engine/window"
)

// ErrNoWindow is returned by Run when the engine was built without a window.
var ErrNoWindow = errors.New("engine has no window")

// engine implements the Engine interface.
// Everything touching the GPU runs on the window thread inside the update callback; other
// goroutines only post compile requests to the studio.
type engine struct {
	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window   window.Window
	renderer renderer.Renderer
	studio   studio.Studio
	camera   camera.CameraController

	profiler         *profiler.Profiler
	profilingEnabled bool

	path     string
	debounce time.Duration
	watcher  watcher.Watcher

	heldKeys map[uint32]bool

	onDiagnostics func(s scene.Scene, diagnostics []shader.Diagnostic)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the live editor.
// It wires the window, renderer, studio, file watcher, orbit camera, and profiler together.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Studio returns the studio that owns compile sequencing.
	Studio() studio.Studio

	// Camera returns the orbit camera the scene is viewed through.
	Camera() camera.CameraController

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Open sets the shader file shown by the editor. The file is read and compiled on the next
	// frame, and watched for changes once Run starts.
	//
	// Parameters:
	//   - path: the shader file
	//
	// Returns:
	//   - error: an error if the file cannot be read
	Open(path string) error

	// Reload re-reads the open file and queues a compile. Bound to F5.
	//
	// Returns:
	//   - error: an error if no file is open or it cannot be read
	Reload() error

	// Run initializes the renderer on the window and runs the loop until the window closes or
	// Quit is called. The renderer is disposed while the context is still current, then the
	// window is closed.
	//
	// Returns:
	//   - error: ErrNoWindow, or a wrapped renderer.ErrContextUnavailable
	Run() error

	// Quit asks the loop to stop at the next frame.
	// Safe to call multiple times and from any goroutine; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern. A renderer
// with default options and an orbit camera with default options are created when none are given.
//
// Parameters:
//   - options: functional options for engine configuration (window, renderer, profiling, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel: make(chan struct{}),
		profiler:    profiler.NewProfiler(),
		debounce:    watcher.DefaultDebounce,
		heldKeys:    make(map[uint32]bool),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.renderer == nil {
		e.renderer = renderer.NewRenderer()
	}
	if e.camera == nil {
		e.camera = camera.NewCameraController()
	}
	e.studio = studio.NewStudio(e.renderer, studio.WithCompiledHandler(e.compiled))
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Studio() studio.Studio {
	return e.studio
}

func (e *engine) Camera() camera.CameraController {
	return e.camera
}

func (e *engine) Open(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	e.path = abs
	return e.Reload()
}

func (e *engine) Reload() error {
	if e.path == "" {
		return errors.New("no shader file open")
	}
	data, err := os.ReadFile(e.path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", e.path, err)
	}
	e.request(string(data))
	return nil
}

// request queues src as the next compile, viewed from the current camera.
func (e *engine) request(src string) {
	pos, target := e.camera.Position(), e.camera.Target()
	e.studio.RequestCompile(scene.NewScene(e.path, src,
		scene.WithModuleID(filepath.Base(e.path)),
		scene.WithCameraLookAt(pos, target),
	))
}

func (e *engine) Run() error {
	if e.window == nil {
		return ErrNoWindow
	}
	defer e.window.Close()

	if err := e.renderer.Initialize(e.window); err != nil {
		return fmt.Errorf("failed to start renderer: %w", err)
	}
	defer e.renderer.Dispose()

	if e.path != "" {
		w, err := watcher.NewWatcher(e.path, e.request,
			watcher.WithDebounce(e.debounce),
		)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			common.Logger().Warn("live reload disabled", "path", e.path, "error", err)
		} else {
			e.watcher = w
			defer w.Close()
		}
	}

	e.bindInput()
	e.window.ProcessMessages()
	e.signalQuit()
	return nil
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal the loop to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// bindInput registers the window callbacks. They run on the window thread during event polling.
func (e *engine) bindInput() {
	e.window.SetUpdateCallback(e.frame)
	e.window.SetResizeCallback(func(width, height int) {
		e.renderer.Resize(width, height)
		e.render()
	})
	e.window.SetScrollCallback(func(delta float32) {
		e.camera.Zoom(delta)
	})
	e.window.SetDragCallback(func(dx, dy float32) {
		e.camera.Drag(dx, dy)
	})
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		if keyCode == common.KeyF5 {
			if err := e.Reload(); err != nil {
				common.Logger().Warn("reload failed", "error", err)
			}
			return
		}
		e.heldKeys[keyCode] = true
	})
	e.window.SetKeyUpCallback(func(keyCode uint32) {
		delete(e.heldKeys, keyCode)
	})
}

// frame runs once per loop iteration on the window thread.
func (e *engine) frame() {
	select {
	case <-e.quitChannel:
		e.window.RequestClose()
		return
	default:
	}
	started := time.Now()

	e.applyHeldKeys()

	compileStart := time.Now()
	if diagnostics, ran := e.studio.Flush(); ran {
		e.profiler.RecordCompile(time.Since(compileStart), len(diagnostics) == 0)
	}

	e.render()

	if e.profilingEnabled {
		e.profiler.Tick()
	}

	// Frame rate limiting
	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(started); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// render draws the live program from the orbit camera. A no-op until a compile has succeeded.
func (e *engine) render() {
	pos, dir := e.camera.Ray()
	if err := e.renderer.Render(renderer.WithCamera(pos, dir)); err != nil {
		common.Logger().Warn("render failed", "error", err)
	}
}

// applyHeldKeys turns held arrow/WASD keys into camera movement.
func (e *engine) applyHeldKeys() {
	for key := range e.heldKeys {
		switch key {
		case common.KeyLeft, common.KeyA:
			e.camera.OrbitLeft()
		case common.KeyRight, common.KeyD:
			e.camera.OrbitRight()
		case common.KeyUp, common.KeyW:
			e.camera.OrbitUp()
		case common.KeyDown, common.KeyS:
			e.camera.OrbitDown()
		}
	}
}

// compiled runs after every compile on the window thread.
func (e *engine) compiled(s scene.Scene, diagnostics []shader.Diagnostic) {
	status := "ok"
	if len(diagnostics) > 0 {
		status = fmt.Sprintf("%d error(s)", len(diagnostics))
	}
	if e.window != nil {
		e.window.SetTitle(fmt.Sprintf("oxy-sdf - %s [%s]", filepath.Base(s.Name), status))
	}
	if e.onDiagnostics != nil {
		e.onDiagnostics(s, diagnostics)
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
