package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-sdf/engine/gpu"
	"github.com/Carmen-Shannon/oxy-sdf/engine/gpu/gputest"
)

func recordStates() (*[]State, BuilderOption) {
	var states []State
	return &states, WithTransitionHook(func(from, to State) {
		states = append(states, to)
	})
}

func TestBuildLinked(t *testing.T) {
	dev := gputest.NewDevice()
	dev.Link = gputest.Outcome{Log: "link warning"}
	states, hook := recordStates()

	res := NewBuilder(dev, hook).Build("vs", "fs")

	require.True(t, res.OK())
	assert.Equal(t, StateLinked, res.State)
	assert.NotZero(t, res.Program)
	assert.Equal(t, "link warning", res.Log)
	assert.Equal(t, []State{StateCompilingVertex, StateCompilingFragment, StateLinking, StateLinked}, *states)
	assert.Equal(t, 0, dev.LiveShaders())
	assert.Equal(t, 1, dev.LivePrograms())
	assert.True(t, dev.IsLiveProgram(res.Program))
	assert.Equal(t, []string{"vs"}, dev.Sources(gpu.StageVertex))
	assert.Equal(t, []string{"fs"}, dev.Sources(gpu.StageFragment))
}

func TestBuildVertexFailedStopsAttempt(t *testing.T) {
	dev := gputest.NewDevice()
	dev.Vertex = gputest.Outcome{Fail: true, Log: "ERROR: 0:2: vertex broke\n"}
	states, hook := recordStates()

	res := NewBuilder(dev, hook).Build("vs", "fs")

	assert.False(t, res.OK())
	assert.Equal(t, StateVertexFailed, res.State)
	assert.Zero(t, res.Program)
	assert.Equal(t, "ERROR: 0:2: vertex broke\n", res.Log)
	assert.Equal(t, []State{StateCompilingVertex, StateVertexFailed}, *states)
	assert.Empty(t, dev.Sources(gpu.StageFragment))
	assert.Equal(t, 0, dev.LiveShaders())
}

func TestBuildFragmentFailedReleasesVertex(t *testing.T) {
	dev := gputest.NewDevice()
	dev.Fragment = gputest.Outcome{Fail: true, Log: "ERROR: 0:37: 'p' : syntax error"}
	states, hook := recordStates()

	res := NewBuilder(dev, hook).Build("vs", "fs")

	assert.Equal(t, StateFragmentFailed, res.State)
	assert.Equal(t, "ERROR: 0:37: 'p' : syntax error", res.Log)
	assert.Equal(t, []State{StateCompilingVertex, StateCompilingFragment, StateFragmentFailed}, *states)
	assert.Equal(t, 0, dev.LiveShaders())
	assert.Equal(t, 0, dev.LivePrograms())
}

func TestBuildLinkFailedLeavesNothing(t *testing.T) {
	dev := gputest.NewDevice()
	dev.Link = gputest.Outcome{Fail: true, Log: "interface mismatch"}

	res := NewBuilder(dev).Build("vs", "fs")

	assert.Equal(t, StateLinkFailed, res.State)
	assert.Zero(t, res.Program)
	assert.Equal(t, "interface mismatch", res.Log)
	assert.Equal(t, 0, dev.LiveShaders())
	assert.Equal(t, 0, dev.LivePrograms())
}

func TestBuildIsFreshEveryCall(t *testing.T) {
	dev := gputest.NewDevice()
	b := NewBuilder(dev)

	first := b.Build("vs", "fs")
	second := b.Build("vs", "fs")

	assert.NotEqual(t, first.Program, second.Program)
	assert.Equal(t, 2, dev.LivePrograms())
}

func TestState(t *testing.T) {
	assert.Equal(t, "FragmentFailed", StateFragmentFailed.String())
	assert.Equal(t, "Unknown", State(99).String())

	for _, s := range []State{StateVertexFailed, StateFragmentFailed, StateLinkFailed, StateLinked} {
		assert.True(t, s.Terminal(), s.String())
	}
	for _, s := range []State{StateIdle, StateCompilingVertex, StateCompilingFragment, StateLinking} {
		assert.False(t, s.Terminal(), s.String())
	}
}
