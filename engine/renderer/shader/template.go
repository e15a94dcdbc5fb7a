package shader

import (
	"embed"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
)

// Placeholder is the token in a fragment template replaced by the user source.
const Placeholder = "{{USER_MAP}}"

const (
	// TemplateGL is the GLSL 410 core template compiled by the OpenGL device.
	TemplateGL = "gl"

	// TemplateVulkan is the GLSL 450 template, with its uniforms in a std140 block, compiled by the
	// WebGPU compiler.
	TemplateVulkan = "vulkan"
)

var (
	// ErrPlaceholderMissing is returned when a fragment template lacks Placeholder.
	ErrPlaceholderMissing = errors.New("fragment template has no " + Placeholder + " placeholder")

	// ErrPlaceholderDuplicated is returned when a fragment template holds Placeholder more than once.
	ErrPlaceholderDuplicated = errors.New("fragment template has more than one " + Placeholder + " placeholder")
)

//go:embed templates/*.vert templates/*.frag
var templateFS embed.FS

// template is the implementation of the Template interface.
type template struct {
	name     string
	vertex   string
	fragment string
	symbols  []string
}

// Composition is the result of splicing user source into a fragment template.
type Composition struct {
	// FragmentSource is the complete fragment stage source.
	FragmentSource string

	// Offset is the number of template lines before the first user line.
	Offset int
}

// Template is one version of the fixed raymarching program: a vertex stage and a fragment shell
// with a single placeholder for the user's SDF code.
type Template interface {
	// Name returns the template version name.
	Name() string

	// Vertex returns the complete vertex stage source.
	Vertex() string

	// Fragment returns the fragment shell, placeholder included.
	Fragment() string

	// Offset counts the template lines strictly before the placeholder. It is computed from the
	// template text on every call.
	//
	// Returns:
	//   - int: the line offset of user source inside the composed fragment
	Offset() int

	// Compose inserts the user source verbatim at the placeholder.
	//
	// Parameters:
	//   - userSrc: the raw user source
	//
	// Returns:
	//   - Composition: the fragment source and the offset used to produce it
	Compose(userSrc string) Composition

	// Symbols returns the helper functions and types the template defines ahead of the user code,
	// in source order. The slice is a copy.
	Symbols() []string
}

var _ Template = &template{}

// helperDefRegex captures struct names and function names defined at the start of a line
var helperDefRegex = regexp.MustCompile(`(?m)^(?:struct\s+(\w+)|[A-Za-z_]\w*\s+([A-Za-z_]\w*)\s*\()`)

// NewTemplate creates a Template from a vertex source and a fragment shell.
//
// Parameters:
//   - name: the template version name
//   - vertex: the complete vertex stage source
//   - fragment: the fragment shell containing exactly one Placeholder
//
// Returns:
//   - Template: the template
//   - error: ErrPlaceholderMissing or ErrPlaceholderDuplicated
func NewTemplate(name, vertex, fragment string) (Template, error) {
	switch strings.Count(fragment, Placeholder) {
	case 0:
		return nil, fmt.Errorf("template %s: %w", name, ErrPlaceholderMissing)
	case 1:
	default:
		return nil, fmt.Errorf("template %s: %w", name, ErrPlaceholderDuplicated)
	}

	t := &template{
		name:     name,
		vertex:   vertex,
		fragment: fragment,
	}
	t.symbols = parseHelperSymbols(stripGLSLComments(fragment[:strings.Index(fragment, Placeholder)]))
	return t, nil
}

func (t *template) Name() string {
	return t.name
}

func (t *template) Vertex() string {
	return t.vertex
}

func (t *template) Fragment() string {
	return t.fragment
}

func (t *template) Offset() int {
	return strings.Count(t.fragment[:strings.Index(t.fragment, Placeholder)], "\n")
}

func (t *template) Compose(userSrc string) Composition {
	idx := strings.Index(t.fragment, Placeholder)

	var sb strings.Builder
	sb.Grow(len(t.fragment) - len(Placeholder) + len(userSrc))
	sb.WriteString(t.fragment[:idx])
	sb.WriteString(userSrc)
	sb.WriteString(t.fragment[idx+len(Placeholder):])

	return Composition{
		FragmentSource: sb.String(),
		Offset:         strings.Count(t.fragment[:idx], "\n"),
	}
}

func (t *template) Symbols() []string {
	return slices.Clone(t.symbols)
}

// parseHelperSymbols lists the unique struct and function names defined in source, skipping main.
//
// Parameters:
//   - source: comment-free GLSL source
//
// Returns:
//   - []string: symbol names in first-definition order
func parseHelperSymbols(source string) []string {
	var symbols []string
	for _, m := range helperDefRegex.FindAllStringSubmatch(source, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if name == "main" || slices.Contains(symbols, name) {
			continue
		}
		symbols = append(symbols, name)
	}
	return symbols
}

var (
	builtinOnce      sync.Once
	builtinTemplates map[string]Template
)

// loadBuiltinTemplates builds the embedded templates. A broken embedded asset is a build defect,
// so it panics.
func loadBuiltinTemplates() {
	builtinTemplates = make(map[string]Template)
	for _, name := range []string{TemplateGL, TemplateVulkan} {
		vertex, err := templateFS.ReadFile("templates/" + name + ".vert")
		if err != nil {
			panic(fmt.Sprintf("shader: failed to read embedded vertex template %s: %v", name, err))
		}
		fragment, err := templateFS.ReadFile("templates/" + name + ".frag")
		if err != nil {
			panic(fmt.Sprintf("shader: failed to read embedded fragment template %s: %v", name, err))
		}
		t, err := NewTemplate(name, string(vertex), string(fragment))
		if err != nil {
			panic(fmt.Sprintf("shader: embedded template is invalid: %v", err))
		}
		builtinTemplates[name] = t
	}
}

// LookupTemplate returns an embedded template by name.
//
// Parameters:
//   - name: TemplateGL or TemplateVulkan
//
// Returns:
//   - Template: the embedded template
//   - error: an error if no template has that name
func LookupTemplate(name string) (Template, error) {
	builtinOnce.Do(loadBuiltinTemplates)
	t, ok := builtinTemplates[name]
	if !ok {
		return nil, fmt.Errorf("unknown shader template %q (known: %s)", name, strings.Join(TemplateNames(), ", "))
	}
	return t, nil
}

// MustTemplate is LookupTemplate that panics on unknown names.
func MustTemplate(name string) Template {
	t, err := LookupTemplate(name)
	if err != nil {
		panic(err)
	}
	return t
}

// TemplateNames lists the embedded template names in sorted order.
func TemplateNames() []string {
	return []string{TemplateGL, TemplateVulkan}
}
