package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnknownIdentifier(t *testing.T) {
	tests := []struct {
		message string
		want    string
		ok      bool
	}{
		{"'sdfSpher' : undeclared identifier", "sdfSpher", true},
		{"'opSmoothUnoin' : no matching overloaded function found", "opSmoothUnoin", true},
		{"Unknown function 'sdBx'", "sdBx", true},
		{"Unknown variable: q", "q", true},
		{"'p' : syntax error", "", false},
	}

	for _, tt := range tests {
		got, ok := UnknownIdentifier(tt.message)
		assert.Equal(t, tt.ok, ok, tt.message)
		assert.Equal(t, tt.want, got, tt.message)
	}
}

func TestSuggest(t *testing.T) {
	symbols := []string{"sdSphere", "sdBox", "sdfSphere", "sdfBox", "opSmoothUnion"}

	assert.Equal(t, "sdfSphere", Suggest("sdfSpher", symbols))
	assert.Equal(t, "opSmoothUnion", Suggest("opSmoothUnoin", symbols))
	assert.Equal(t, "", Suggest("completelyDifferent", symbols))
	assert.Equal(t, "", Suggest("sdBox", symbols))
	assert.Equal(t, "", Suggest("x", nil))
}

func TestAttachHints(t *testing.T) {
	diagnostics := []Diagnostic{
		{Line: 2, Message: "'sdfSpher' : undeclared identifier", Kind: KindFragment},
		{Line: 3, Message: "'p' : syntax error", Kind: KindFragment},
	}

	AttachHints(diagnostics, MustTemplate(TemplateGL).Symbols())

	assert.Equal(t, "did you mean `sdfSphere`?", diagnostics[0].Hint)
	assert.Equal(t, 2, diagnostics[0].Line)
	assert.Equal(t, "'sdfSpher' : undeclared identifier", diagnostics[0].Message)
	assert.Empty(t, diagnostics[1].Hint)
}
