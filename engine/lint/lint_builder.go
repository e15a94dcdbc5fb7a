package lint

import (
	"github.com/Carmen-Shannon/oxy-sdf/engine/gpu"
	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer/shader"
)

// CheckerBuilderOption is a functional option applied to a checker during construction via NewChecker.
type CheckerBuilderOption func(*checker)

// WithWorkers sets the number of pool workers used for reading and validation.
// Values < 1 are ignored.
//
// Parameters:
//   - n: number of workers
//
// Returns:
//   - CheckerBuilderOption: option function to apply
func WithWorkers(n int) CheckerBuilderOption {
	return func(c *checker) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithTemplate selects the template sources are composed into. Defaults to the gl template.
//
// Parameters:
//   - t: the template
//
// Returns:
//   - CheckerBuilderOption: option function to apply
func WithTemplate(t shader.Template) CheckerBuilderOption {
	return func(c *checker) {
		if t != nil {
			c.template = t
		}
	}
}

// WithCompiler enables the GPU stage.
//
// Parameters:
//   - compiler: the compiler to build with, owned by the caller
//
// Returns:
//   - CheckerBuilderOption: option function to apply
func WithCompiler(compiler gpu.Compiler) CheckerBuilderOption {
	return func(c *checker) {
		c.compiler = compiler
	}
}

// WithReadFile replaces os.ReadFile. It is called concurrently.
//
// Parameters:
//   - read: the file reader
//
// Returns:
//   - CheckerBuilderOption: option function to apply
func WithReadFile(read func(path string) ([]byte, error)) CheckerBuilderOption {
	return func(c *checker) {
		c.readFile = read
	}
}
