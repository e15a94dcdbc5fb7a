package shader

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind classifies where a Diagnostic came from.
type Kind int

const (
	// KindValidation marks a diagnostic raised by Validate before any GPU work.
	KindValidation Kind = iota

	// KindVertex marks a failure of the fixed vertex stage. Never remapped.
	KindVertex

	// KindFragment marks a fragment stage failure remapped into user-source lines.
	KindFragment

	// KindLink marks a program link failure.
	KindLink

	// KindInternal marks failures unrelated to the user's code, such as an unusable renderer.
	KindInternal
)

var kindNames = map[Kind]string{
	KindValidation: "validation",
	KindVertex:     "vertex",
	KindFragment:   "fragment",
	KindLink:       "link",
	KindInternal:   "internal",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unknown diagnostic kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind from its name.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown diagnostic kind %q", string(text))
}

// Diagnostic is one user-facing compile problem. Line is zero-based and always in the coordinate
// space of the user's unwrapped source.
type Diagnostic struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
	Kind    Kind   `json:"kind"`
	Hint    string `json:"hint,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d: %s", d.Line, d.Message)
}

const (
	// VertexErrorPrefix prefixes vertex stage logs, which are reported as-is.
	VertexErrorPrefix = "vertex shader error: "

	// FragmentErrorPrefix prefixes fragment logs that carry no parseable line.
	FragmentErrorPrefix = "fragment shader error: "

	// LinkErrorPrefix prefixes program link logs.
	LinkErrorPrefix = "program link error: "
)

// logLineRegex captures the line number and message of "ERROR: <unit>:<line>: <message>" entries
var logLineRegex = regexp.MustCompile(`ERROR:\s*\d+:(\d+):\s*([^\r\n]*)`)

// UserLineCount is the number of lines in src as an editor counts them. An empty source has one.
func UserLineCount(src string) int {
	return strings.Count(src, "\n") + 1
}

// Translate parses a compiler log and rebases every reported line into user-source space:
// userLine = line - 1 - offset, clamped into [0, userLines-1]. Out-of-range lines are clamped,
// never dropped, and entries keep the order of the log. A log without any parseable entry yields
// an empty slice.
//
// Parameters:
//   - offset: the number of template lines before the user source
//   - userLines: the number of lines in the user source
//   - rawLog: the compiler log, byte-for-byte
//
// Returns:
//   - []Diagnostic: one KindFragment diagnostic per matched log entry
func Translate(offset, userLines int, rawLog string) []Diagnostic {
	if userLines < 1 {
		userLines = 1
	}
	diagnostics := []Diagnostic{}
	for _, m := range logLineRegex.FindAllStringSubmatch(rawLog, -1) {
		line, err := strconv.Atoi(m[1])
		if err != nil {
			// the capture is all digits, so the only failure is overflow
			line = math.MaxInt
		}
		diagnostics = append(diagnostics, Diagnostic{
			Line:    clampLine(line-1-offset, userLines),
			Message: strings.TrimSpace(m[2]),
			Kind:    KindFragment,
		})
	}
	return diagnostics
}

func clampLine(line, userLines int) int {
	if line < 0 {
		return 0
	}
	if line > userLines-1 {
		return userLines - 1
	}
	return line
}

// FragmentFailure turns a declared fragment failure into diagnostics. When the log has no
// parseable entry a single line-0 diagnostic carries the whole trimmed log, so a failure is never
// reported as an empty result.
//
// Parameters:
//   - offset: the number of template lines before the user source
//   - userLines: the number of lines in the user source
//   - rawLog: the fragment compiler log
//
// Returns:
//   - []Diagnostic: at least one diagnostic
func FragmentFailure(offset, userLines int, rawLog string) []Diagnostic {
	diagnostics := Translate(offset, userLines, rawLog)
	if len(diagnostics) > 0 {
		return diagnostics
	}
	return []Diagnostic{{Line: 0, Message: FragmentErrorPrefix + strings.TrimSpace(rawLog), Kind: KindFragment}}
}

// VertexFailure reports a vertex stage log without remapping.
func VertexFailure(rawLog string) Diagnostic {
	return Diagnostic{Line: 0, Message: VertexErrorPrefix + strings.TrimSpace(rawLog), Kind: KindVertex}
}

// LinkFailure reports a link log as a single non-line-specific diagnostic.
func LinkFailure(rawLog string) Diagnostic {
	return Diagnostic{Line: 0, Message: LinkErrorPrefix + strings.TrimSpace(rawLog), Kind: KindLink}
}

// Internal reports an operational error as a diagnostic.
func Internal(err error) Diagnostic {
	return Diagnostic{Line: 0, Message: err.Error(), Kind: KindInternal}
}
