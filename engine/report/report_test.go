package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer/shader"
)

const src = "float map(vec3 p){\n  return lenght(p) - 1.0;\n}"

func TestPrintPlain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, WithColor(false))

	err := p.Print("scene.glsl", src, []shader.Diagnostic{
		{Line: 1, Message: "'lenght' : no matching overloaded function found", Kind: shader.KindFragment, Hint: "did you mean `length`?"},
		{Line: 0, Message: "program link error: boom", Kind: shader.KindLink},
	})
	require.NoError(t, err)

	want := "scene.glsl:2: error[fragment]: 'lenght' : no matching overloaded function found\n" +
		"    2 |   return lenght(p) - 1.0;\n" +
		"      = hint: did you mean `length`?\n" +
		"scene.glsl: error[link]: program link error: boom\n"
	assert.Equal(t, want, buf.String())
}

func TestPrintSkipsSourceOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, WithColor(false))

	require.NoError(t, p.Print("a.glsl", "", []shader.Diagnostic{{Line: 4, Message: "x", Kind: shader.KindFragment}}))
	assert.Equal(t, "a.glsl:5: error[fragment]: x\n", buf.String())
}

func TestPrintColour(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, WithColor(true))

	require.NoError(t, p.Print("scene.glsl", src, []shader.Diagnostic{{Line: 1, Message: "bad", Kind: shader.KindFragment}}))
	out := buf.String()
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "error[fragment]:")
	assert.Contains(t, out, "lenght")
}

func TestPrintColourWithoutHighlight(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, WithColor(true), WithHighlight(false))

	require.NoError(t, p.Print("scene.glsl", src, []shader.Diagnostic{{Line: 1, Message: "bad", Kind: shader.KindFragment}}))
	assert.Contains(t, buf.String(), "  return lenght(p) - 1.0;\n")
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, WithColor(false))

	require.NoError(t, p.Summary([]FileResult{{File: "a"}, {File: "b"}}))
	require.NoError(t, p.Summary([]FileResult{{File: "a"}, {File: "b", Diagnostics: []shader.Diagnostic{{Message: "x"}}}}))
	assert.Equal(t, "ok: 2 file(s) checked\n1 of 2 file(s) failed\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSON(&buf, []FileResult{
		{File: "good.glsl"},
		{File: "bad.glsl", Diagnostics: []shader.Diagnostic{{Line: 26, Message: "'p' : syntax error", Kind: shader.KindFragment}}},
	})
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, []any{}, decoded[0]["diagnostics"])

	diags := decoded[1]["diagnostics"].([]any)
	require.Len(t, diags, 1)
	first := diags[0].(map[string]any)
	assert.Equal(t, float64(26), first["line"])
	assert.Equal(t, "fragment", first["kind"])
	assert.NotContains(t, first, "hint")
}
