// Package config loads oxy-sdf settings from a TOML file and merges command-line overrides on top.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chewxy/math32"
	"github.com/jinzhu/copier"
	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/Carmen-Shannon/oxy-sdf/common"
	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer/shader"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "~/.config/oxy-sdf/config.toml"

// GPU backends accepted by the check command.
const (
	GPUNone = "none"
	GPUWGPU = "wgpu"
	GPUGL   = "gl"
)

// ErrInvalidConfig wraps every validation and decode failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full settings tree. The zero value is not useful; start from Default.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Camera   CameraConfig   `toml:"camera"`
	Watch    WatchConfig    `toml:"watch"`
	Log      LogConfig      `toml:"log"`
	Check    CheckConfig    `toml:"check"`

	// Editor is the command used by `check -open`. {file} and {line} are substituted; without
	// either placeholder "file:line" is appended.
	Editor string `toml:"editor"`
}

// WindowConfig sizes the live window. The min/max limits bound interactive resizing.
type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	MinWidth  int    `toml:"min_width"`
	MinHeight int    `toml:"min_height"`
	MaxWidth  int    `toml:"max_width"`
	MaxHeight int    `toml:"max_height"`
	VSync     bool   `toml:"vsync"`
}

// RendererConfig selects the template and the background colour.
type RendererConfig struct {
	Template   string     `toml:"template"`
	ClearColor [4]float32 `toml:"clear_color"`
}

// CameraConfig places the orbit camera at startup.
type CameraConfig struct {
	Position [3]float32 `toml:"position"`
	Target   [3]float32 `toml:"target"`
}

// WatchConfig tunes the file watcher.
type WatchConfig struct {
	DebounceMS int `toml:"debounce_ms"`
}

// LogConfig sets the slog level: debug, info, warn, or error.
type LogConfig struct {
	Level string `toml:"level"`
}

// CheckConfig tunes the batch checker.
type CheckConfig struct {
	Workers int    `toml:"workers"`
	GPU     string `toml:"gpu"`
}

// Default returns the built-in settings.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:     "oxy-sdf",
			Width:     1280,
			Height:    720,
			MinWidth:  320,
			MinHeight: 240,
			MaxWidth:  3840,
			MaxHeight: 2160,
			VSync:     true,
		},
		Renderer: RendererConfig{
			Template:   shader.TemplateGL,
			ClearColor: [4]float32{0.05, 0.05, 0.08, 1},
		},
		Camera: CameraConfig{
			Position: [3]float32{0, 1, 5},
			Target:   [3]float32{0, 0, 0},
		},
		Watch: WatchConfig{DebounceMS: 150},
		Log:   LogConfig{Level: "info"},
		Check: CheckConfig{Workers: 4, GPU: GPUNone},
	}
}

// ExpandPath resolves a leading "~" to the user's home directory.
//
// Parameters:
//   - path: the path to expand
//
// Returns:
//   - string: the expanded path
//   - error: an error if the home directory cannot be determined
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", path, err)
	}
	return expanded, nil
}

// Load reads the TOML file at path over the defaults. An empty path means DefaultPath. A missing
// file is not an error: the defaults are returned.
//
// Parameters:
//   - path: the config file
//
// Returns:
//   - Config: the loaded and validated configuration
//   - error: an error wrapping ErrInvalidConfig on bad content, or an I/O error
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}
	expanded, err := ExpandPath(path)
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(expanded)
	if errors.Is(err, os.ErrNotExist) {
		common.Logger().Debug("no config file, using defaults", "path", expanded)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", expanded, err)
	}

	if err := Decode(bytes.NewReader(data), &cfg); err != nil {
		return Default(), fmt.Errorf("%s: %w", expanded, err)
	}
	return cfg, nil
}

// Decode reads TOML from r into cfg, leaving keys absent from r untouched, then validates the
// result. Unknown keys are rejected.
//
// Parameters:
//   - r: the TOML source
//   - cfg: the configuration to fill
//
// Returns:
//   - error: an error wrapping ErrInvalidConfig
func Decode(r io.Reader, cfg *Config) error {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.TrimSpace(strict.String()))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg.Validate()
}

// Encode writes cfg as TOML.
//
// Parameters:
//   - w: the destination
//   - cfg: the configuration to write
//
// Returns:
//   - error: an encoding or write error
func Encode(w io.Writer, cfg Config) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Merge copies every non-zero field of overrides into dst. Zero values in overrides never clear a
// setting.
//
// Parameters:
//   - dst: the configuration to update
//   - overrides: the partial configuration to apply
//
// Returns:
//   - error: an error wrapping ErrInvalidConfig if the merged result is invalid
func Merge(dst *Config, overrides Config) error {
	if err := copier.CopyWithOption(dst, &overrides, copier.Option{IgnoreEmpty: true, DeepCopy: true}); err != nil {
		return fmt.Errorf("failed to merge config overrides: %w", err)
	}
	return dst.Validate()
}

// Validate checks sizes, names, and vectors.
//
// Returns:
//   - error: nil, or an error wrapping ErrInvalidConfig naming the first bad field
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size must be positive, got %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if c.Window.MinWidth <= 0 || c.Window.MinHeight <= 0 {
		return fmt.Errorf("%w: window minimum size must be positive, got %dx%d", ErrInvalidConfig, c.Window.MinWidth, c.Window.MinHeight)
	}
	if c.Window.MaxWidth < c.Window.MinWidth || c.Window.MaxHeight < c.Window.MinHeight {
		return fmt.Errorf("%w: window maximum size %dx%d is below the minimum %dx%d", ErrInvalidConfig,
			c.Window.MaxWidth, c.Window.MaxHeight, c.Window.MinWidth, c.Window.MinHeight)
	}
	if _, err := shader.LookupTemplate(c.Renderer.Template); err != nil {
		return fmt.Errorf("%w: renderer.template: %v", ErrInvalidConfig, err)
	}
	for _, v := range c.Renderer.ClearColor {
		if math32.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: renderer.clear_color components must be within [0, 1]", ErrInvalidConfig)
		}
	}
	if !common.IsFinite(c.Camera.Position) || !common.IsFinite(c.Camera.Target) {
		return fmt.Errorf("%w: camera vectors must be finite", ErrInvalidConfig)
	}
	if c.Camera.Position == c.Camera.Target {
		return fmt.Errorf("%w: camera.position and camera.target must differ", ErrInvalidConfig)
	}
	if c.Watch.DebounceMS < 0 {
		return fmt.Errorf("%w: watch.debounce_ms must not be negative", ErrInvalidConfig)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.Check.Workers <= 0 {
		return fmt.Errorf("%w: check.workers must be positive", ErrInvalidConfig)
	}
	switch c.Check.GPU {
	case GPUNone, GPUWGPU, GPUGL:
	default:
		return fmt.Errorf("%w: check.gpu must be one of %s, %s, %s", ErrInvalidConfig, GPUNone, GPUWGPU, GPUGL)
	}
	if c.Editor != "" {
		if _, err := shellwords.Parse(c.Editor); err != nil {
			return fmt.Errorf("%w: editor: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// SlogLevel converts Log.Level.
//
// Returns:
//   - slog.Level: the level
//   - error: an error wrapping ErrInvalidConfig for unknown names
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	return level, nil
}

// Debounce returns the watcher quiet period.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// EditorCommand builds the argv that opens file at a one-based line. An empty Editor falls back
// to $VISUAL, then $EDITOR.
//
// Parameters:
//   - file: the file to open
//   - line: one-based line number
//
// Returns:
//   - []string: the command and its arguments
//   - error: an error if no editor is configured or the command cannot be parsed
func (c Config) EditorCommand(file string, line int) ([]string, error) {
	command := common.Coalesce(c.Editor, os.Getenv("VISUAL"), os.Getenv("EDITOR"))
	if command == "" {
		return nil, fmt.Errorf("no editor configured: set editor in the config file or $EDITOR")
	}
	args, err := shellwords.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("failed to parse editor command %q: %w", command, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("editor command %q is empty", command)
	}

	lineText := strconv.Itoa(line)
	substituted := false
	for i, arg := range args {
		if strings.Contains(arg, "{file}") || strings.Contains(arg, "{line}") {
			substituted = true
			arg = strings.ReplaceAll(arg, "{file}", file)
			args[i] = strings.ReplaceAll(arg, "{line}", lineText)
		}
	}
	if !substituted {
		args = append(args, file+":"+lineText)
	}
	return args, nil
}
