// Package report prints shader diagnostics for humans (coloured, with the offending source line
// highlighted) and for tools (JSON).
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/muesli/termenv"

	"github.com/Carmen-Shannon/oxy-sdf/engine/renderer/shader"
)

// FileResult is the diagnostics of one checked file.
type FileResult struct {
	File        string              `json:"file"`
	Diagnostics []shader.Diagnostic `json:"diagnostics"`
}

// Failed reports whether the file has any diagnostic.
func (r FileResult) Failed() bool {
	return len(r.Diagnostics) > 0
}

// Printer writes diagnostics in a compiler-like layout:
//
//	scene.glsl:27: error[fragment]: 'p' : syntax error
//	   27 | float map(vec3 p){ return lenght(p) - 1.0; }
//	      = hint: did you mean `length`?
//
// Line numbers are printed one-based.
type Printer interface {
	// Print writes every diagnostic of one file. src is used to quote the offending line of
	// fragment diagnostics and may be empty.
	//
	// Parameters:
	//   - file: the name shown in front of each diagnostic
	//   - src: the user source the diagnostics refer to
	//   - diagnostics: the diagnostics to print
	//
	// Returns:
	//   - error: a write error
	Print(file, src string, diagnostics []shader.Diagnostic) error

	// Summary writes the closing "N of M files failed" line.
	//
	// Parameters:
	//   - results: every checked file
	//
	// Returns:
	//   - error: a write error
	Summary(results []FileResult) error
}

// printer is the implementation of the Printer interface.
type printer struct {
	out       *termenv.Output
	profile   *termenv.Profile
	highlight bool
	style     string
}

var _ Printer = &printer{}

// NewPrinter creates a Printer. The colour profile is detected from w unless WithColor overrides it.
//
// Parameters:
//   - w: the destination
//   - options: optional PrinterBuilderOption values
//
// Returns:
//   - Printer: the printer
func NewPrinter(w io.Writer, options ...PrinterBuilderOption) Printer {
	p := &printer{
		highlight: true,
		style:     "monokai",
	}
	for _, option := range options {
		option(p)
	}
	if p.profile != nil {
		p.out = termenv.NewOutput(w, termenv.WithProfile(*p.profile))
	} else {
		p.out = termenv.NewOutput(w)
	}
	return p
}

func (p *printer) Print(file, src string, diagnostics []shader.Diagnostic) error {
	lines := strings.Split(src, "\n")
	var b strings.Builder
	for _, d := range diagnostics {
		b.WriteString(p.header(file, d))
		b.WriteByte('\n')

		if d.Kind == shader.KindFragment && src != "" && d.Line >= 0 && d.Line < len(lines) {
			gutter := fmt.Sprintf("%5d | ", d.Line+1)
			b.WriteString(p.out.String(gutter).Faint().String())
			b.WriteString(p.sourceLine(lines[d.Line]))
			b.WriteByte('\n')
		}
		if d.Hint != "" {
			b.WriteString(p.out.String("      = hint: ").Foreground(p.out.Color("6")).String())
			b.WriteString(d.Hint)
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(p.out, b.String())
	return err
}

func (p *printer) Summary(results []FileResult) error {
	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	var line string
	if failed == 0 {
		line = p.out.String(fmt.Sprintf("ok: %d file(s) checked", len(results))).Foreground(p.out.Color("2")).String()
	} else {
		line = p.out.String(fmt.Sprintf("%d of %d file(s) failed", failed, len(results))).Foreground(p.out.Color("1")).Bold().String()
	}
	_, err := fmt.Fprintln(p.out, line)
	return err
}

// header renders "file:line: error[kind]: message".
func (p *printer) header(file string, d shader.Diagnostic) string {
	location := fmt.Sprintf("%s:%d:", file, d.Line+1)
	if d.Kind != shader.KindFragment {
		location = file + ":"
	}
	label := p.out.String(fmt.Sprintf("error[%s]:", d.Kind)).Foreground(p.out.Color("1")).Bold().String()
	return p.out.String(location).Bold().String() + " " + label + " " + d.Message
}

// sourceLine highlights one GLSL line for the terminal's profile. Plain text is returned when
// colour is off or highlighting fails.
func (p *printer) sourceLine(line string) string {
	if !p.highlight {
		return line
	}
	formatter := formatterFor(p.out.Profile)
	if formatter == "" {
		return line
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, line, "glsl", formatter, p.style); err != nil {
		return line
	}
	return strings.TrimRight(buf.String(), "\n")
}

// formatterFor maps a termenv profile to the chroma terminal formatter of the same depth.
func formatterFor(profile termenv.Profile) string {
	switch profile {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal"
	default:
		return ""
	}
}

// WriteJSON writes results as an indented JSON array. Files without diagnostics are included with
// an empty list.
//
// Parameters:
//   - w: the destination
//   - results: the results to encode
//
// Returns:
//   - error: an encoding or write error
func WriteJSON(w io.Writer, results []FileResult) error {
	out := make([]FileResult, len(results))
	for i, r := range results {
		out[i] = r
		if out[i].Diagnostics == nil {
			out[i].Diagnostics = []shader.Diagnostic{}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}
