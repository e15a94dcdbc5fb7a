package report

import "github.com/muesli/termenv"

// PrinterBuilderOption is a functional option applied to a printer during construction via NewPrinter.
type PrinterBuilderOption func(*printer)

// WithColor forces colour on (true colour) or off, overriding terminal detection.
//
// Parameters:
//   - enabled: whether to emit ANSI sequences
//
// Returns:
//   - PrinterBuilderOption: option function to apply
func WithColor(enabled bool) PrinterBuilderOption {
	return func(p *printer) {
		profile := termenv.Ascii
		if enabled {
			profile = termenv.TrueColor
		}
		p.profile = &profile
	}
}

// WithHighlight toggles syntax highlighting of quoted source lines. On by default.
//
// Parameters:
//   - enabled: whether to highlight
//
// Returns:
//   - PrinterBuilderOption: option function to apply
func WithHighlight(enabled bool) PrinterBuilderOption {
	return func(p *printer) {
		p.highlight = enabled
	}
}

// WithStyle selects the chroma style used for highlighting.
//
// Parameters:
//   - style: a chroma style name such as "monokai" or "github"
//
// Returns:
//   - PrinterBuilderOption: option function to apply
func WithStyle(style string) PrinterBuilderOption {
	return func(p *printer) {
		p.style = style
	}
}
