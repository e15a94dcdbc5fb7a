package engine

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-sdf/common"
	"github.com/Carmen-Shannon/oxy-sdf/engine/gpu"
	"github.com/Carmen-Shannon/oxy-sdf/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sdf/engine/scene"
	"github.com/Carmen-Shannon/oxy-sdf/engine/window"
)

const sphereSrc = "float map(vec3 p){ return length(p)-1.0; }"

// fakeWindow drives the update callback from a script instead of a GLFW event loop.
type fakeWindow struct {
	*gputest.Surface

	// step runs before each frame with the frame index; returning false ends the loop.
	step func(frame int) bool

	title   string
	stopped bool
	closed  bool

	onUpdate  func()
	onResize  func(width, height int)
	onScroll  func(delta float32)
	onKeyDown func(keyCode uint32)
	onKeyUp   func(keyCode uint32)
	onDrag    func(dx, dy float32)
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetUpdateCallback(callback func()) { w.onUpdate = callback }
func (w *fakeWindow) SetResizeCallback(callback func(width, height int)) { w.onResize = callback }
func (w *fakeWindow) SetScrollCallback(callback func(delta float32)) { w.onScroll = callback }
func (w *fakeWindow) SetKeyDownCallback(callback func(keyCode uint32)) { w.onKeyDown = callback }
func (w *fakeWindow) SetKeyUpCallback(callback func(keyCode uint32)) { w.onKeyUp = callback }
func (w *fakeWindow) SetDragCallback(callback func(dx, dy float32)) { w.onDrag = callback }
func (w *fakeWindow) SetTitle(title string) { w.title = title }
func (w *fakeWindow) IsRunning() bool { return !w.stopped && !w.closed }
func (w *fakeWindow) RequestClose() { w.stopped = true }
func (w *fakeWindow) Width() int { return w.Surface.Width }
func (w *fakeWindow) Height() int { return w.Surface.Height }

func (w *fakeWindow) Close() error {
	w.closed = true
	return nil
}

func (w *fakeWindow) ProcessMessages() {
	for frame := 0; w.IsRunning(); frame++ {
		if w.step != nil && !w.step(frame) {
			return
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

func newFakeWindow(dev *gputest.Device, step func(frame int) bool) *fakeWindow {
	return &fakeWindow{
		Surface: &gputest.Surface{Device: dev, Width: 800, Height: 600},
		step:    step,
	}
}

func frames(n int) func(int) bool {
	return func(frame int) bool { return frame < n }
}

func writeShader(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.glsl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRunWithoutWindow(t *testing.T) {
	assert.ErrorIs(t, NewEngine().Run(), ErrNoWindow)
}

func TestRunContextUnavailable(t *testing.T) {
	w := newFakeWindow(nil, frames(1))
	w.Surface.Err = errors.New("no GL")

	err := NewEngine(WithWindow(w)).Run()

	assert.ErrorIs(t, err, renderer.ErrContextUnavailable)
	assert.True(t, w.closed)
}

func TestRunCompilesOpenFileAndRendersEveryFrame(t *testing.T) {
	dev := gputest.NewDevice()
	w := newFakeWindow(dev, frames(3))
	var compiled []string
	e := NewEngine(WithWindow(w), WithDiagnosticsHandler(func(s scene.Scene, d []shader.Diagnostic) {
		assert.Empty(t, d)
		compiled = append(compiled, s.Shader.Src)
	}))
	require.NoError(t, e.Open(writeShader(t, sphereSrc)))

	require.NoError(t, e.Run())

	assert.Equal(t, []string{sphereSrc}, compiled)
	// one render after the compile plus one per frame
	assert.Len(t, dev.Draws(), 4)
	assert.Equal(t, "oxy-sdf - scene.glsl [ok]", w.title)
	assert.Empty(t, dev.LivePrograms())
	assert.Empty(t, dev.LiveQuadObjects())
	assert.True(t, w.closed)
}

func TestRunUploadsOrbitCamera(t *testing.T) {
	dev := gputest.NewDevice()
	w := newFakeWindow(dev, frames(1))
	e := NewEngine(WithWindow(w))
	require.NoError(t, e.Open(writeShader(t, sphereSrc)))

	require.NoError(t, e.Run())

	pos, dir := e.Camera().Ray()
	writes := dev.UniformWrites()
	require.GreaterOrEqual(t, len(writes), 3)
	last := writes[len(writes)-3:]
	assert.Equal(t, []float32{pos[0], pos[1], pos[2]}, last[1].Values)
	assert.Equal(t, []float32{dir[0], dir[1], dir[2]}, last[2].Values)
}

func TestCompileFailureReportsDiagnosticsAndSkipsRendering(t *testing.T) {
	dev := gputest.NewDevice()
	dev.Fragment = gputest.Outcome{Fail: true, Log: "ERROR: 0:1: 'p' : syntax error\n"}
	w := newFakeWindow(dev, frames(2))
	var got []shader.Diagnostic
	e := NewEngine(WithWindow(w), WithDiagnosticsHandler(func(s scene.Scene, d []shader.Diagnostic) {
		got = d
	}))
	require.NoError(t, e.Open(writeShader(t, sphereSrc)))

	require.NoError(t, e.Run())

	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Line)
	assert.Empty(t, dev.Draws())
	assert.Equal(t, "oxy-sdf - scene.glsl [1 error(s)]", w.title)
}

func TestF5Recompiles(t *testing.T) {
	dev := gputest.NewDevice()
	path := writeShader(t, sphereSrc)
	var w *fakeWindow
	w = newFakeWindow(dev, func(frame int) bool {
		if frame == 1 {
			require.NoError(t, os.WriteFile(path, []byte("float map(vec3 p){ return p.y; }"), 0o644))
			w.onKeyDown(common.KeyF5)
		}
		return frame < 3
	})
	e := NewEngine(WithWindow(w), WithWatchDebounce(time.Hour))
	require.NoError(t, e.Open(path))

	require.NoError(t, e.Run())

	sources := dev.Sources(gpu.StageFragment)
	require.Len(t, sources, 2)
	assert.Contains(t, sources[1], "return p.y;")
	assert.Len(t, dev.DeletedPrograms(), 2)
}

func TestWatcherTriggersRecompile(t *testing.T) {
	dev := gputest.NewDevice()
	path := writeShader(t, sphereSrc)
	var mu sync.Mutex
	var compiled []string
	w := newFakeWindow(dev, nil)
	w.step = func(frame int) bool {
		if frame == 1 {
			require.NoError(t, os.WriteFile(path, []byte("float map(vec3 p){ return p.x; }"), 0o644))
		}
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		defer mu.Unlock()
		return len(compiled) < 2 && frame < 1000
	}
	e := NewEngine(WithWindow(w), WithWatchDebounce(10*time.Millisecond), WithDiagnosticsHandler(func(s scene.Scene, d []shader.Diagnostic) {
		mu.Lock()
		defer mu.Unlock()
		compiled = append(compiled, s.Shader.Src)
	}))
	require.NoError(t, e.Open(path))

	require.NoError(t, e.Run())

	require.Len(t, compiled, 2)
	assert.Equal(t, "float map(vec3 p){ return p.x; }", compiled[1])
}

func TestResizeUpdatesViewportAndRerenders(t *testing.T) {
	dev := gputest.NewDevice()
	var w *fakeWindow
	w = newFakeWindow(dev, func(frame int) bool {
		if frame == 1 {
			dev.ResetCalls()
			w.onResize(1024, 768)
		}
		return frame < 1
	})
	e := NewEngine(WithWindow(w))
	require.NoError(t, e.Open(writeShader(t, sphereSrc)))

	require.NoError(t, e.Run())

	assert.Equal(t, []gputest.Viewport{{X: 0, Y: 0, Width: 1024, Height: 768}}, dev.Viewports())
	assert.Len(t, dev.Draws(), 1)
	require.NotEmpty(t, dev.UniformWrites())
	assert.Equal(t, []float32{1024, 768}, dev.UniformWrites()[0].Values)
}

func TestInputMovesCamera(t *testing.T) {
	dev := gputest.NewDevice()
	var w *fakeWindow
	var e Engine
	var startRadius, startAzimuth float32
	w = newFakeWindow(dev, func(frame int) bool {
		switch frame {
		case 0:
			startRadius, startAzimuth = e.Camera().Radius(), e.Camera().Azimuth()
			w.onScroll(1)
			w.onKeyDown(common.KeyLeft)
		case 2:
			w.onKeyUp(common.KeyLeft)
		}
		return frame < 4
	})
	e = NewEngine(WithWindow(w))

	require.NoError(t, e.Run())

	assert.Less(t, e.Camera().Radius(), startRadius)
	assert.NotEqual(t, startAzimuth, e.Camera().Azimuth())
	azimuth := e.Camera().Azimuth()
	w.onDrag(10, 0)
	assert.NotEqual(t, azimuth, e.Camera().Azimuth())
}

func TestQuitStopsLoop(t *testing.T) {
	dev := gputest.NewDevice()
	var e Engine
	count := 0
	w := newFakeWindow(dev, func(frame int) bool {
		count++
		if frame == 2 {
			e.Quit()
			e.Quit()
		}
		return frame < 100
	})
	e = NewEngine(WithWindow(w))

	require.NoError(t, e.Run())

	assert.Equal(t, 3, count)
	assert.True(t, w.stopped)
	assert.True(t, w.closed)
}

func TestReloadWithoutFile(t *testing.T) {
	assert.Error(t, NewEngine().Reload())
	assert.Error(t, NewEngine().Open(filepath.Join(t.TempDir(), "missing.glsl")))
}

func TestSetRenderFrameLimit(t *testing.T) {
	e := NewEngine(WithRenderFrameLimit(50)).(*engine)
	assert.Equal(t, 20*time.Millisecond, e.renderFrameLimit)
	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
}
