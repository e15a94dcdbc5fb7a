package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	w := newEngineWindow()

	assert.Equal(t, "oxy-sdf", w.title)
	assert.Equal(t, 1280, w.Width())
	assert.Equal(t, 720, w.Height())
	assert.True(t, w.vsync)
	assert.False(t, w.hidden)
	assert.Nil(t, w.internalWindow)
}

func TestBuilderOptions(t *testing.T) {
	w := newEngineWindow(
		WithTitle("shader"),
		WithWidth(800),
		WithHeight(600),
		WithMinWidth(200),
		WithMinHeight(100),
		WithMaxWidth(1600),
		WithMaxHeight(1200),
		WithHidden(true),
		WithVSync(false),
	)

	assert.Equal(t, "shader", w.title)
	assert.Equal(t, 800, w.width)
	assert.Equal(t, 600, w.height)
	assert.Equal(t, 200, w.minWidth)
	assert.Equal(t, 100, w.minHeight)
	assert.Equal(t, 1600, w.maxWidth)
	assert.Equal(t, 1200, w.maxHeight)
	assert.True(t, w.hidden)
	assert.False(t, w.vsync)
}
