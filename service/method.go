package service

import (
	"github.com/poiesic/servitor/prompt"
	"github.com/poiesic/servitor/schema"
)

// Method describes one callable operation: how to render its messages,
// what output shape the model must produce, and whether the rendered
// input is moderated. Methods are built once and never mutated.
type Method struct {
	name      string
	user      *prompt.Template
	system    *prompt.Template
	output    *schema.Type
	moderated bool
}

// MethodOption configures a Method.
type MethodOption func(*Method)

// WithSystemTemplate sets the system message template.
func WithSystemTemplate(t *prompt.Template) MethodOption {
	return func(m *Method) {
		m.system = t
	}
}

// WithOutput declares the output schema the model reply is parsed into.
// Without it, the method returns the raw reply text.
func WithOutput(t *schema.Type) MethodOption {
	return func(m *Method) {
		m.output = t
	}
}

// WithModeration enables a moderation check on the rendered user message.
func WithModeration() MethodOption {
	return func(m *Method) {
		m.moderated = true
	}
}

// NewMethod creates a method with the given name and user template.
func NewMethod(name string, user *prompt.Template, opts ...MethodOption) (*Method, error) {
	if user == nil {
		return nil, ErrNoUserTemplate
	}
	m := &Method{name: name, user: user}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Name returns the method name.
func (m *Method) Name() string {
	return m.name
}

// Output returns the declared output schema, or nil for raw text.
func (m *Method) Output() *schema.Type {
	return m.output
}

// Moderated reports whether the rendered user message is moderated.
func (m *Method) Moderated() bool {
	return m.moderated
}
