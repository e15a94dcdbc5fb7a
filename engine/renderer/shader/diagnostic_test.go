package shader

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateSyntaxErrorScenario(t *testing.T) {
	got := Translate(10, 30, "ERROR: 0:37: 'p' : syntax error\n")

	require.Len(t, got, 1)
	assert.Equal(t, 26, got[0].Line)
	assert.Equal(t, "'p' : syntax error", got[0].Message)
	assert.Equal(t, KindFragment, got[0].Kind)
}

func TestTranslateOffsetInvariant(t *testing.T) {
	for _, k := range []int{0, 1, 10, 56} {
		for _, userLines := range []int{1, 5, 40} {
			for L := 1; L <= k+userLines+5; L++ {
				log := fmt.Sprintf("ERROR: 0:%d: boom", L)

				got := Translate(k, userLines, log)

				want := min(max(L-1-k, 0), userLines-1)
				require.Len(t, got, 1)
				assert.Equal(t, want, got[0].Line, "k=%d userLines=%d L=%d", k, userLines, L)
			}
		}
	}
}

func TestTranslateClampsNeverDrops(t *testing.T) {
	log := "ERROR: 0:3: inside the template\nERROR: 0:500: past the end\n"

	got := Translate(10, 4, log)

	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Line)
	assert.Equal(t, 3, got[1].Line)
}

func TestTranslateClampsOverflowingLine(t *testing.T) {
	log := "ERROR: 0:99999999999999999999: huge\nERROR: 0:12: small\n"

	got := Translate(10, 5, log)

	assert.Equal(t, []Diagnostic{
		{Line: 4, Message: "huge", Kind: KindFragment},
		{Line: 1, Message: "small", Kind: KindFragment},
	}, got)
}

func TestTranslatePreservesOrder(t *testing.T) {
	log := strings.Join([]string{
		"ERROR: 0:20: 'b' : undeclared identifier",
		"WARNING: 0:12: something benign",
		"ERROR: 0:15: 'a' : undeclared identifier",
		"ERROR: 0:20: '' : compilation terminated",
		"ERROR: 3 compilation errors.  No code generated.",
	}, "\r\n")

	got := Translate(10, 20, log)

	assert.Equal(t, []Diagnostic{
		{Line: 9, Message: "'b' : undeclared identifier", Kind: KindFragment},
		{Line: 4, Message: "'a' : undeclared identifier", Kind: KindFragment},
		{Line: 9, Message: "'' : compilation terminated", Kind: KindFragment},
	}, got)
}

func TestTranslateUnparseableLog(t *testing.T) {
	got := Translate(10, 3, "Fragment shader failed to compile with the following errors:\n")

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFragmentFailureFallsBackToGeneric(t *testing.T) {
	got := FragmentFailure(10, 3, "  driver exploded\n")

	assert.Equal(t, []Diagnostic{{Line: 0, Message: "fragment shader error: driver exploded", Kind: KindFragment}}, got)
}

func TestFragmentFailureTranslates(t *testing.T) {
	got := FragmentFailure(10, 3, "ERROR: 0:12: x")

	assert.Equal(t, []Diagnostic{{Line: 1, Message: "x", Kind: KindFragment}}, got)
}

func TestStageFailures(t *testing.T) {
	assert.Equal(t, Diagnostic{Line: 0, Message: "vertex shader error: ERROR: 0:3: bad", Kind: KindVertex}, VertexFailure("ERROR: 0:3: bad\n"))
	assert.Equal(t, Diagnostic{Line: 0, Message: "program link error: mismatch", Kind: KindLink}, LinkFailure("mismatch"))
}

func TestUserLineCount(t *testing.T) {
	assert.Equal(t, 1, UserLineCount(""))
	assert.Equal(t, 1, UserLineCount("float a;"))
	assert.Equal(t, 2, UserLineCount("a\n"))
	assert.Equal(t, 3, UserLineCount("a\nb\nc"))
}

func TestDiagnosticJSON(t *testing.T) {
	b, err := json.Marshal(Diagnostic{Line: 3, Message: "m", Kind: KindLink})
	require.NoError(t, err)
	assert.JSONEq(t, `{"line":3,"message":"m","kind":"link"}`, string(b))

	var d Diagnostic
	require.NoError(t, json.Unmarshal([]byte(`{"line":1,"message":"x","kind":"vertex","hint":"h"}`), &d))
	assert.Equal(t, Diagnostic{Line: 1, Message: "x", Kind: KindVertex, Hint: "h"}, d)

	assert.Error(t, json.Unmarshal([]byte(`{"kind":"nope"}`), &d))
}
