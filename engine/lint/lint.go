// Package lint checks many shader files at once. Reading, validation, and composition run on a
// worker pool; GPU compilation, when a compiler is configured, runs serially afterwards on the
// calling goroutine because GPU contexts are bound to one thread.
package lint

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/oxy-sdf/common"
	"github.com/Carmen-Shannon/oxy-sdf/engine/gpu"
	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sdf/engine/report"
)

// queueSize bounds both the pool queue and the number of tasks in flight.
const queueSize = 256

// Checker checks shader files without opening a window.
type Checker interface {
	// CheckFiles checks every path and returns one result per path, in the order given.
	// Unreadable files yield a single internal diagnostic.
	//
	// Parameters:
	//   - paths: the files to check
	//
	// Returns:
	//   - []report.FileResult: the results, aligned with paths
	CheckFiles(paths []string) []report.FileResult

	// CheckSource checks one in-memory source.
	//
	// Parameters:
	//   - name: the name reported in the result
	//   - src: the raw user source
	//
	// Returns:
	//   - report.FileResult: the result
	CheckSource(name, src string) report.FileResult
}

// checker is the implementation of the Checker interface.
type checker struct {
	workers  int
	template shader.Template
	compiler gpu.Compiler
	readFile func(path string) ([]byte, error)
}

var _ Checker = &checker{}

// prepared is the CPU-side outcome for one file.
type prepared struct {
	src         string
	composition shader.Composition
	diagnostics []shader.Diagnostic
}

// NewChecker creates a Checker. Without WithCompiler only validation runs.
//
// Parameters:
//   - options: optional CheckerBuilderOption values
//
// Returns:
//   - Checker: the checker
func NewChecker(options ...CheckerBuilderOption) Checker {
	c := &checker{
		workers:  max(runtime.NumCPU()-1, 1),
		template: shader.MustTemplate(shader.TemplateGL),
		readFile: os.ReadFile,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *checker) CheckFiles(paths []string) []report.FileResult {
	started := time.Now()
	prep := make([]prepared, len(paths))

	// Workers idle-exit after a second, so a pool per call leaves nothing running.
	pool := worker.NewDynamicWorkerPool(min(c.workers, max(len(paths), 1)), queueSize, 1*time.Second)
	for start := 0; start < len(paths); start += queueSize {
		end := min(start+queueSize, len(paths))
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			i, path := i, paths[i]
			pool.SubmitTask(worker.Task{
				ID: i,
				Do: func() (any, error) {
					defer wg.Done()
					prep[i] = c.prepareFile(path)
					return nil, nil
				},
			})
		}
		wg.Wait()
	}

	results := make([]report.FileResult, len(paths))
	for i, path := range paths {
		results[i] = report.FileResult{File: path, Diagnostics: c.finish(prep[i])}
	}

	common.Logger().Info("checked files", "files", len(paths), "template", c.template.Name(),
		"gpu", c.compiler != nil, "elapsed", time.Since(started))
	return results
}

func (c *checker) CheckSource(name, src string) report.FileResult {
	return report.FileResult{File: name, Diagnostics: c.finish(c.prepare(src))}
}

// prepareFile reads and prepares one file. Safe for concurrent use.
func (c *checker) prepareFile(path string) prepared {
	data, err := c.readFile(path)
	if err != nil {
		return prepared{diagnostics: []shader.Diagnostic{shader.Internal(fmt.Errorf("failed to read %s: %w", path, err))}}
	}
	return c.prepare(string(data))
}

// prepare validates and composes src. Safe for concurrent use.
func (c *checker) prepare(src string) prepared {
	if diagnostics := shader.Validate(src); len(diagnostics) > 0 {
		return prepared{src: src, diagnostics: diagnostics}
	}
	return prepared{src: src, composition: c.template.Compose(src), diagnostics: []shader.Diagnostic{}}
}

// finish runs the GPU stage for a file that passed preparation. Must run on the compiler's thread.
func (c *checker) finish(p prepared) []shader.Diagnostic {
	if len(p.diagnostics) > 0 || c.compiler == nil {
		return p.diagnostics
	}
	return renderer.CheckComposition(c.compiler, c.template, p.composition, p.src)
}
