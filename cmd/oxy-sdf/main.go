// Command oxy-sdf is a live SDF raymarching studio.
//
//	oxy-sdf run [flags] <file>          open a window and live-render file, recompiling on save
//	oxy-sdf check [flags] <files...>    compile-check files and report diagnostics
//	oxy-sdf config [flags]              print the effective configuration
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"

	"github.com/Carmen-Shannon/oxy-sdf/common"
	"github.com/Carmen-Shannon/oxy-sdf/engine"
	"github.com/Carmen-Shannon/oxy-sdf/engine/camera"
	"github.com/Carmen-Shannon/oxy-sdf/engine/config"
	"github.com/Carmen-Shannon/oxy-sdf/engine/gpu"
	"github.com/Carmen-Shannon/oxy-sdf/engine/lint"
	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sdf/engine/report"
	"github.com/Carmen-Shannon/oxy-sdf/engine/scene"
	"github.com/Carmen-Shannon/oxy-sdf/engine/window"
)

// Exit codes.
const (
	exitOK          = 0
	exitDiagnostics = 1
	exitError       = 2
)

// GLFW and OpenGL calls must come from the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

const usage = `usage:
  oxy-sdf run [flags] <file>
  oxy-sdf check [flags] <files...>
  oxy-sdf config [flags]

run "oxy-sdf <command> -h" for the flags of a command
`

// run dispatches a subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitError
	}
	var err error
	code := exitOK
	switch args[0] {
	case "run":
		err = runLive(args[1:], stdout, stderr)
	case "check":
		code, err = runCheck(args[1:], stdout, stderr)
	case "config":
		err = runConfig(args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return exitError
	}
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "oxy-sdf %s: %v\n", args[0], err)
		return exitError
	}
	return code
}

// commonFlags are accepted by every subcommand.
type commonFlags struct {
	configPath string
	logLevel   string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath+")")
	fs.StringVar(&c.logLevel, "log", "", "log level: debug, info, warn, error")
}

// load reads the config file, merges overrides, and installs the logger.
func (c *commonFlags) load(overrides config.Config, stderr io.Writer) (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	overrides.Log.Level = c.logLevel
	if err := config.Merge(&cfg, overrides); err != nil {
		return cfg, err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return cfg, err
	}
	common.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
	return cfg, nil
}

func runLive(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var cf commonFlags
	cf.register(fs)
	width := fs.Int("width", 0, "window width")
	height := fs.Int("height", 0, "window height")
	profile := fs.Bool("profile", false, "log frame statistics every second")
	fps := fs.Float64("fps", 0, "frame rate cap, 0 for vsync only")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected exactly one shader file")
	}

	cfg, err := cf.load(config.Config{Window: config.WindowConfig{Width: *width, Height: *height}}, stderr)
	if err != nil {
		return err
	}
	if cfg.Renderer.Template != shader.TemplateGL {
		return fmt.Errorf("the live window renders with OpenGL and needs the %q template, config selects %q", shader.TemplateGL, cfg.Renderer.Template)
	}
	path, err := config.ExpandPath(fs.Arg(0))
	if err != nil {
		return err
	}

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
		window.WithMinWidth(cfg.Window.MinWidth),
		window.WithMinHeight(cfg.Window.MinHeight),
		window.WithMaxWidth(cfg.Window.MaxWidth),
		window.WithMaxHeight(cfg.Window.MaxHeight),
		window.WithVSync(cfg.Window.VSync),
	)
	if err != nil {
		return err
	}

	printer := report.NewPrinter(stderr)
	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(renderer.NewRenderer(
			renderer.WithTemplate(shader.MustTemplate(cfg.Renderer.Template)),
			renderer.WithClearColor(cfg.Renderer.ClearColor),
		)),
		engine.WithCameraController(camera.NewCameraController(
			camera.WithLookFrom(cfg.Camera.Position, cfg.Camera.Target),
		)),
		engine.WithWatchDebounce(cfg.Debounce()),
		engine.WithProfiling(*profile),
		engine.WithRenderFrameLimit(*fps),
		engine.WithDiagnosticsHandler(func(s scene.Scene, diagnostics []shader.Diagnostic) {
			if len(diagnostics) == 0 {
				fmt.Fprintf(stdout, "compiled %s\n", s.Name)
				return
			}
			if err := printer.Print(s.Name, s.Shader.Src, diagnostics); err != nil {
				common.Logger().Warn("failed to print diagnostics", "error", err)
			}
		}),
	)
	if err := eng.Open(path); err != nil {
		_ = win.Close()
		return err
	}
	return eng.Run()
}

func runCheck(args []string, stdout, stderr io.Writer) (int, error) {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var cf commonFlags
	cf.register(fs)
	asJSON := fs.Bool("json", false, "write results as JSON")
	backend := fs.String("gpu", "", "GPU compile stage: none, wgpu, gl (default from config)")
	open := fs.Bool("open", false, "open the editor at the first diagnostic")
	workers := fs.Int("workers", 0, "validation workers (default from config)")
	tmplName := fs.String("template", "", "template for -gpu=none: gl, vulkan (default from config)")
	color := fs.Bool("color", true, "colour output when writing to a terminal")
	if err := fs.Parse(args); err != nil {
		return exitError, err
	}
	if fs.NArg() == 0 {
		return exitError, errors.New("expected at least one shader file")
	}

	cfg, err := cf.load(config.Config{
		Renderer: config.RendererConfig{Template: *tmplName},
		Check:    config.CheckConfig{Workers: *workers, GPU: *backend},
	}, stderr)
	if err != nil {
		return exitError, err
	}

	files := make([]string, fs.NArg())
	for i, f := range fs.Args() {
		if files[i], err = config.ExpandPath(f); err != nil {
			return exitError, err
		}
	}

	compiler, tmpl, release, err := openBackend(cfg)
	if err != nil {
		return exitError, err
	}
	defer release()

	options := []lint.CheckerBuilderOption{lint.WithWorkers(cfg.Check.Workers), lint.WithTemplate(tmpl)}
	if compiler != nil {
		options = append(options, lint.WithCompiler(compiler))
	}
	results := lint.NewChecker(options...).CheckFiles(files)

	if *asJSON {
		if err := report.WriteJSON(stdout, results); err != nil {
			return exitError, err
		}
	} else {
		printerOptions := []report.PrinterBuilderOption{}
		if !*color {
			printerOptions = append(printerOptions, report.WithColor(false))
		}
		printer := report.NewPrinter(stdout, printerOptions...)
		for _, r := range results {
			if !r.Failed() {
				continue
			}
			src, _ := os.ReadFile(r.File)
			if err := printer.Print(r.File, string(src), r.Diagnostics); err != nil {
				return exitError, err
			}
		}
		if err := printer.Summary(results); err != nil {
			return exitError, err
		}
	}

	failed := firstFailure(results)
	if failed == nil {
		return exitOK, nil
	}
	if *open {
		if err := openEditor(cfg, *failed); err != nil {
			return exitError, err
		}
	}
	return exitDiagnostics, nil
}

// openBackend creates the compiler for cfg.Check.GPU and picks the template it understands: the
// WebGPU compiler only accepts Vulkan-flavoured GLSL and the GL device only the gl template.
func openBackend(cfg config.Config) (gpu.Compiler, shader.Template, func(), error) {
	switch cfg.Check.GPU {
	case config.GPUWGPU:
		compiler, err := gpu.NewWGPUCompiler(false)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to start WebGPU: %w", err)
		}
		return compiler, shader.MustTemplate(shader.TemplateVulkan), compiler.Release, nil
	case config.GPUGL:
		win, err := window.NewWindow(window.WithHidden(true), window.WithWidth(64), window.WithHeight(64))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create OpenGL context: %w", err)
		}
		device, err := win.AcquireDevice()
		if err != nil {
			_ = win.Close()
			return nil, nil, nil, fmt.Errorf("failed to load OpenGL: %w", err)
		}
		return device, shader.MustTemplate(shader.TemplateGL), func() { _ = win.Close() }, nil
	default:
		return nil, shader.MustTemplate(cfg.Renderer.Template), func() {}, nil
	}
}

// failure locates a diagnostic for the editor.
type failure struct {
	file string
	line int
}

func firstFailure(results []report.FileResult) *failure {
	for _, r := range results {
		if r.Failed() {
			return &failure{file: r.File, line: r.Diagnostics[0].Line}
		}
	}
	return nil
}

// openEditor starts the configured editor without waiting for it.
func openEditor(cfg config.Config, f failure) error {
	argv, err := cfg.EditorCommand(f.file, f.line+1)
	if err != nil {
		return err
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start editor %s: %w", argv[0], err)
	}
	return cmd.Process.Release()
}

func runConfig(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var cf commonFlags
	cf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := cf.load(config.Config{}, stderr)
	if err != nil {
		return err
	}
	return config.Encode(stdout, cfg)
}
