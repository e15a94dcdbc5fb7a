package shader

import (
	"regexp"
	"strings"
)

const (
	// MessageForbiddenMain is reported when user source defines its own main function.
	MessageForbiddenMain = "entry point must be `mainImage`, not `main`"

	// MessageForbiddenVersion is reported when user source carries a #version directive.
	MessageForbiddenVersion = "version directive is reserved to the template"

	// MessageForbiddenUniform is reported when user source declares a uniform at file scope.
	MessageForbiddenUniform = "uniform declarations are reserved to the template"
)

var (
	// mainDefinitionRegex captures the return type of any "<type> main(...) {" definition
	mainDefinitionRegex = regexp.MustCompile(`\b([A-Za-z_]\w*)\s+main\s*\([^)]*\)\s*\{`)

	// versionDirectiveRegex matches a #version directive at the start of a line
	versionDirectiveRegex = regexp.MustCompile(`(?m)^[ \t]*#[ \t]*version\b`)

	// uniformDeclRegex matches a uniform qualifier at statement start, optionally after a layout(...)
	uniformDeclRegex = regexp.MustCompile(`(?m)(?:^|[;{}])\s*(?:layout\s*\([^)]*\)\s*)?uniform\b`)
)

// notTypes are keywords that can precede "main(" without it being a definition.
var notTypes = map[string]struct{}{
	"return": {},
	"else":   {},
}

// Validate runs the syntactic pre-checks over raw user source. It never touches the GPU and each
// failing check contributes one line-0 diagnostic, in the order main, version, uniform. Comments
// are ignored. The scan is textual: malformed code that slips past it is left to the compiler.
//
// Parameters:
//   - src: the raw, unwrapped user source
//
// Returns:
//   - []Diagnostic: the validation diagnostics, empty when the source passes
func Validate(src string) []Diagnostic {
	cleaned := stripGLSLComments(src)
	top := topLevel(cleaned)

	diagnostics := []Diagnostic{}
	if definesMain(top) {
		diagnostics = append(diagnostics, validation(MessageForbiddenMain))
	}
	if versionDirectiveRegex.MatchString(cleaned) {
		diagnostics = append(diagnostics, validation(MessageForbiddenVersion))
	}
	if uniformDeclRegex.MatchString(top) {
		diagnostics = append(diagnostics, validation(MessageForbiddenUniform))
	}
	return diagnostics
}

func validation(message string) Diagnostic {
	return Diagnostic{Line: 0, Message: message, Kind: KindValidation}
}

func definesMain(top string) bool {
	for _, m := range mainDefinitionRegex.FindAllStringSubmatch(top, -1) {
		if _, skip := notTypes[m[1]]; !skip {
			return true
		}
	}
	return false
}

// topLevel blanks out everything enclosed in braces, keeping the braces and newlines, so that only
// file-scope text remains visible to the regular expressions.
//
// Parameters:
//   - source: comment-free GLSL source
//
// Returns:
//   - string: the source with block bodies replaced by spaces
func topLevel(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		c := source[i]
		switch {
		case c == '{':
			depth++
			if depth == 1 {
				sb.WriteByte(c)
				continue
			}
		case c == '}':
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				sb.WriteByte(c)
				continue
			}
		}
		if depth > 0 && c != '\n' {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// stripGLSLComments removes // and /* */ comments from GLSL source. Newlines inside block comments are
// kept so line structure survives. GLSL block comments do not nest.
//
// Parameters:
//   - source: raw GLSL source
//
// Returns:
//   - string: source with comments removed
func stripGLSLComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	inBlock := false
	inLine := false
	for i := 0; i < len(source); i++ {
		c := source[i]
		switch {
		case inLine:
			if c == '\n' {
				inLine = false
				sb.WriteByte(c)
			}
		case inBlock:
			if c == '*' && i+1 < len(source) && source[i+1] == '/' {
				inBlock = false
				i++
				sb.WriteByte(' ')
			} else if c == '\n' {
				sb.WriteByte(c)
			}
		case c == '/' && i+1 < len(source) && source[i+1] == '/':
			inLine = true
			i++
		case c == '/' && i+1 < len(source) && source[i+1] == '*':
			inBlock = true
			i++
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
