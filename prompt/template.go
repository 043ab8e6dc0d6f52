package prompt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/prompts"
)

// placeholderPattern matches {{name}} placeholders with optional inner spaces.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// Template is an immutable prompt template with {{name}} placeholders.
type Template struct {
	text      string
	source    string
	variables []string
}

// New creates a template from an inline string.
func New(text string) (*Template, error) {
	return newTemplate(text, "inline")
}

// FromFS creates a template from a named resource in fsys.
func FromFS(fsys fs.FS, name string) (*Template, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrResourceNotFound, name)
	}
	return newTemplate(string(data), name)
}

// FromFile creates a template from a file on disk.
func FromFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrResourceNotFound, path)
	}
	return newTemplate(string(data), path)
}

func newTemplate(text, source string) (*Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w (source %q)", ErrEmptyTemplate, source)
	}

	// Collect placeholder names in order of first appearance.
	seen := make(map[string]bool)
	var variables []string
	for _, match := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		name := match[1]
		if !seen[name] {
			seen[name] = true
			variables = append(variables, name)
		}
	}

	return &Template{text: text, source: source, variables: variables}, nil
}

// Text returns the raw template string.
func (t *Template) Text() string {
	return t.text
}

// Source returns where the template came from, for diagnostics.
func (t *Template) Source() string {
	return t.source
}

// Variables returns the placeholder names in order of first appearance.
func (t *Template) Variables() []string {
	out := make([]string, len(t.variables))
	copy(out, t.variables)
	return out
}

// Render substitutes every placeholder with its bound value.
// Every placeholder must have a value; extra values are ignored.
func (t *Template) Render(values map[string]any) (string, error) {
	prepared := make(map[string]any, len(values))
	for name, value := range values {
		prepared[name] = formatValue(value)
	}
	for _, name := range t.variables {
		if _, ok := prepared[name]; !ok {
			return "", fmt.Errorf("%w: %q (source %q)", ErrMissingVariable, name, t.source)
		}
	}

	// Rewrite {{name}} to go-template field syntax and delegate rendering.
	rewritten := placeholderPattern.ReplaceAllString(t.text, "{{.$1}}")
	rendered, err := prompts.RenderTemplate(rewritten, prompts.TemplateFormatGoTemplate, prepared)
	if err != nil {
		return "", errors.Join(ErrMissingVariable, err)
	}
	return rendered, nil
}

// formatValue converts a variable value to its textual form.
// String slices render as "[a, b, c]"; everything else uses the
// default formatting.
func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []string:
		return "[" + strings.Join(v, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
