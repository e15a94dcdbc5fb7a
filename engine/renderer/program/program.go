// Package program turns a vertex and a fragment source into a linked GPU program. A build is a
// small state machine whose terminal state tags the Result; logs are passed through untouched.
package program

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-sdf/common"
	"github.com/Carmen-Shannon/oxy-sdf/engine/gpu"
)

// State is a step of a single build attempt.
type State int

const (
	// StateIdle is the state every attempt starts in.
	StateIdle State = iota

	// StateCompilingVertex is entered before the vertex stage is submitted.
	StateCompilingVertex

	// StateVertexFailed is terminal: the vertex stage did not compile.
	StateVertexFailed

	// StateCompilingFragment is entered before the fragment stage is submitted.
	StateCompilingFragment

	// StateFragmentFailed is terminal: the fragment stage did not compile.
	StateFragmentFailed

	// StateLinking is entered before the two stages are linked.
	StateLinking

	// StateLinkFailed is terminal: the stages compiled but did not link.
	StateLinkFailed

	// StateLinked is terminal: the program is ready.
	StateLinked
)

var stateNames = [...]string{
	StateIdle:              "Idle",
	StateCompilingVertex:   "CompilingVertex",
	StateVertexFailed:      "VertexFailed",
	StateCompilingFragment: "CompilingFragment",
	StateFragmentFailed:    "FragmentFailed",
	StateLinking:           "Linking",
	StateLinkFailed:        "LinkFailed",
	StateLinked:            "Linked",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Terminal reports whether an attempt ends in s.
func (s State) Terminal() bool {
	switch s {
	case StateVertexFailed, StateFragmentFailed, StateLinkFailed, StateLinked:
		return true
	default:
		return false
	}
}

// Result is the tagged outcome of one build. Program is non-zero only when State is StateLinked;
// Log holds the raw log of the last stage that ran.
type Result struct {
	State   State
	Program gpu.Handle
	Log     string
}

// OK reports whether the build produced a program.
func (r Result) OK() bool {
	return r.State == StateLinked
}

// builder is the implementation of the Builder interface.
type builder struct {
	compiler     gpu.Compiler
	onTransition func(from, to State)
	logger       *slog.Logger
}

// Builder compiles and links vertex/fragment pairs. Every Build call is a fresh attempt from
// StateIdle; nothing is retried.
type Builder interface {
	// Build compiles the vertex stage, then the fragment stage, then links them. The first failure
	// ends the attempt. Intermediate shader objects are always released, so on success the program
	// handle is the only GPU object left behind and on failure nothing is.
	//
	// Parameters:
	//   - vertexSrc: the complete vertex stage source
	//   - fragmentSrc: the complete fragment stage source
	//
	// Returns:
	//   - Result: the terminal state, the program when linked, and the raw log of the last stage
	Build(vertexSrc, fragmentSrc string) Result
}

var _ Builder = &builder{}

// NewBuilder creates a Builder over compiler.
//
// Parameters:
//   - compiler: the shader compiler/linker capability
//   - options: optional BuilderOption values
//
// Returns:
//   - Builder: the builder
func NewBuilder(compiler gpu.Compiler, options ...BuilderOption) Builder {
	b := &builder{
		compiler: compiler,
	}
	for _, option := range options {
		option(b)
	}
	if b.logger == nil {
		b.logger = common.Logger()
	}
	return b
}

func (b *builder) Build(vertexSrc, fragmentSrc string) Result {
	state := StateIdle
	move := func(to State) {
		b.logger.Debug("program build transition", "from", state, "to", to)
		if b.onTransition != nil {
			b.onTransition(state, to)
		}
		state = to
	}

	move(StateCompilingVertex)
	vs, vsLog, ok := b.compiler.CompileShader(gpu.StageVertex, vertexSrc)
	if !ok {
		move(StateVertexFailed)
		return Result{State: state, Log: vsLog}
	}

	move(StateCompilingFragment)
	fs, fsLog, ok := b.compiler.CompileShader(gpu.StageFragment, fragmentSrc)
	if !ok {
		b.compiler.DeleteShader(vs)
		move(StateFragmentFailed)
		return Result{State: state, Log: fsLog}
	}

	move(StateLinking)
	prog, linkLog, ok := b.compiler.LinkProgram(vs, fs)
	b.compiler.DeleteShader(vs)
	b.compiler.DeleteShader(fs)
	if !ok {
		move(StateLinkFailed)
		return Result{State: state, Log: linkLog}
	}

	move(StateLinked)
	return Result{State: state, Program: prog, Log: linkLog}
}
