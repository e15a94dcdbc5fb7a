package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "gl", cfg.Renderer.Template)
	assert.Equal(t, 150*time.Millisecond, cfg.Debounce())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
editor = "code -g {file}:{line}"

[window]
width = 800
vsync = false
max_width = 1920

[renderer]
template = "vulkan"

[log]
level = "debug"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, "oxy-sdf", cfg.Window.Title)
	assert.False(t, cfg.Window.VSync)
	assert.Equal(t, 1920, cfg.Window.MaxWidth)
	assert.Equal(t, 320, cfg.Window.MinWidth)
	assert.Equal(t, "vulkan", cfg.Renderer.Template)
	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{"unknown key", "[window]\ndepth = 3\n", "depth"},
		{"bad template", "[renderer]\ntemplate = \"metal\"\n", "renderer.template"},
		{"zero width", "[window]\nwidth = 0\n", "window size"},
		{"zero minimum", "[window]\nmin_height = 0\n", "minimum size"},
		{"maximum below minimum", "[window]\nmin_width = 800\nmax_width = 640\n", "maximum size"},
		{"colour out of range", "[renderer]\nclear_color = [0.0, 0.0, 2.0, 1.0]\n", "clear_color"},
		{"camera collapse", "[camera]\nposition = [0.0, 0.0, 0.0]\n", "must differ"},
		{"log level", "[log]\nlevel = \"loud\"\n", "log.level"},
		{"gpu backend", "[check]\ngpu = \"metal\"\n", "check.gpu"},
		{"workers", "[check]\nworkers = -1\n", "check.workers"},
		{"editor quoting", "editor = \"vim '\"\n", "editor"},
		{"syntax", "[window\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := Decode(strings.NewReader(tt.toml), &cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadInvalidFileNamesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window]\nheight = -5\n"), 0o644))

	cfg, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), path)
	assert.Equal(t, Default(), cfg)
}

func TestMergeIgnoresEmptyOverrides(t *testing.T) {
	cfg := Default()
	err := Merge(&cfg, Config{
		Window: WindowConfig{Width: 640},
		Check:  CheckConfig{GPU: GPUWGPU},
	})
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, "oxy-sdf", cfg.Window.Title)
	assert.Equal(t, GPUWGPU, cfg.Check.GPU)
	assert.Equal(t, 4, cfg.Check.Workers)
	assert.Equal(t, Default().Renderer, cfg.Renderer)
}

func TestMergeValidatesResult(t *testing.T) {
	cfg := Default()
	err := Merge(&cfg, Config{Renderer: RendererConfig{Template: "dx12"}})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEncodeRoundTripsThroughDecode(t *testing.T) {
	want := Default()
	want.Window.Title = "round trip"
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, want))
	assert.Contains(t, buf.String(), "[window]")

	got := Default()
	require.NoError(t, Decode(&buf, &got))
	assert.Equal(t, want, got)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/x.toml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x.toml"), got)

	got, err = ExpandPath("/abs/x.toml")
	require.NoError(t, err)
	assert.Equal(t, "/abs/x.toml", got)
}

func TestEditorCommand(t *testing.T) {
	tests := []struct {
		editor string
		want   []string
	}{
		{"code -g {file}:{line}", []string{"code", "-g", "scene.glsl:12"}},
		{"vim +{line} {file}", []string{"vim", "+12", "scene.glsl"}},
		{`"/opt/my editor/bin/ed"`, []string{"/opt/my editor/bin/ed", "scene.glsl:12"}},
	}
	for _, tt := range tests {
		t.Run(tt.editor, func(t *testing.T) {
			cfg := Default()
			cfg.Editor = tt.editor
			got, err := cfg.EditorCommand("scene.glsl", 12)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEditorCommandFallsBackToEnvironment(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "nano")
	got, err := Default().EditorCommand("a.glsl", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"nano", "a.glsl:3"}, got)

	t.Setenv("EDITOR", "")
	_, err = Default().EditorCommand("a.glsl", 3)
	assert.Error(t, err)
}
