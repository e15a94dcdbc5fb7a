package shader

import (
	"fmt"
	"regexp"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// HintThreshold is the minimum Levenshtein similarity for a helper to be suggested.
const HintThreshold = 0.6

var (
	// unknownQuotedRegex captures the name in GLSL-style "'name' : undeclared identifier" messages
	unknownQuotedRegex = regexp.MustCompile(`'(\w+)'\s*:\s*(?:undeclared identifier|no matching overloaded function)`)

	// unknownNamedRegex captures the name in "unknown function 'name'" / "Unknown variable: name" messages
	unknownNamedRegex = regexp.MustCompile(`(?i)unknown (?:function|variable|identifier|type)\s*:?\s*'?(\w+)'?`)
)

// UnknownIdentifier extracts the offending name from an unknown-symbol compiler message.
//
// Parameters:
//   - message: a translated diagnostic message
//
// Returns:
//   - string: the identifier
//   - bool: false if the message is not about an unknown symbol
func UnknownIdentifier(message string) (string, bool) {
	if m := unknownQuotedRegex.FindStringSubmatch(message); m != nil {
		return m[1], true
	}
	if m := unknownNamedRegex.FindStringSubmatch(message); m != nil {
		return m[1], true
	}
	return "", false
}

// Suggest finds the symbol most similar to identifier.
//
// Parameters:
//   - identifier: the unknown name
//   - symbols: candidate names
//
// Returns:
//   - string: the closest symbol, or "" when none reaches HintThreshold or identifier is itself a symbol
func Suggest(identifier string, symbols []string) string {
	lev := metrics.NewLevenshtein()
	best, bestScore := "", 0.0
	for _, s := range symbols {
		if s == identifier {
			return ""
		}
		score := strutil.Similarity(identifier, s, lev)
		if score > bestScore {
			best, bestScore = s, score
		}
	}
	if bestScore < HintThreshold {
		return ""
	}
	return best
}

// AttachHints sets Hint on every diagnostic that names an unknown identifier close to one of the
// template's helper symbols. Line and Message are untouched.
//
// Parameters:
//   - diagnostics: diagnostics to annotate in place
//   - symbols: the template's helper symbols
func AttachHints(diagnostics []Diagnostic, symbols []string) {
	for i := range diagnostics {
		id, ok := UnknownIdentifier(diagnostics[i].Message)
		if !ok {
			continue
		}
		if s := Suggest(id, symbols); s != "" {
			diagnostics[i].Hint = fmt.Sprintf("did you mean `%s`?", s)
		}
	}
}
