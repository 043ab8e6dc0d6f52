package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poiesic/servitor/core"
	"github.com/poiesic/servitor/schema"
)

// Handler executes a tool with already-coerced arguments and returns the
// text to feed back to the model.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Parameter is one named, typed argument of a tool.
type Parameter struct {
	Name        string
	Type        *schema.Type
	Description string
	Required    bool
}

// Descriptor binds a tool name to its parameter contract and handler.
// Descriptors are registered once and never mutated afterwards.
type Descriptor struct {
	Name        string
	Description string
	Parameters  []Parameter
	Handler     Handler
}

// Validate checks the descriptor is complete enough to register.
func (d *Descriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDescriptor)
	}
	if d.Handler == nil {
		return fmt.Errorf("%w: tool %q has no handler", ErrInvalidDescriptor, d.Name)
	}
	for _, p := range d.Parameters {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: tool %q has an unnamed parameter", ErrInvalidDescriptor, d.Name)
		}
		if p.Type == nil {
			return fmt.Errorf("%w: tool %q parameter %q has no type", ErrInvalidDescriptor, d.Name, p.Name)
		}
	}
	return nil
}

// Spec renders the descriptor as the tool specification sent to the model,
// with parameters expressed as a JSON schema object.
func (d *Descriptor) Spec() core.ToolSpec {
	properties := make(map[string]any, len(d.Parameters))
	required := make([]string, 0, len(d.Parameters))
	for _, p := range d.Parameters {
		prop := jsonSchema(p.Type)
		if p.Description != "" {
			prop["description"] = p.Description
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return core.ToolSpec{
		Name:        d.Name,
		Description: d.Description,
		Parameters: map[string]any{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}

// jsonSchema maps a schema type onto its JSON schema fragment.
func jsonSchema(t *schema.Type) map[string]any {
	switch t.Kind() {
	case schema.KindBool:
		return map[string]any{"type": "boolean"}
	case schema.KindInt:
		return map[string]any{"type": "integer"}
	case schema.KindFloat:
		return map[string]any{"type": "number"}
	case schema.KindDate:
		return map[string]any{"type": "string", "format": "date"}
	case schema.KindTime:
		return map[string]any{"type": "string", "format": "time"}
	case schema.KindDateTime:
		return map[string]any{"type": "string", "format": "date-time"}
	case schema.KindEnum:
		names := make([]string, 0, len(t.Constants()))
		for _, c := range t.Constants() {
			names = append(names, c.Name)
		}
		return map[string]any{"type": "string", "enum": names}
	case schema.KindList:
		return map[string]any{"type": "array", "items": jsonSchema(t.Elem())}
	case schema.KindObject:
		properties := make(map[string]any, len(t.Fields()))
		for _, f := range t.Fields() {
			prop := jsonSchema(f.Type)
			if f.Description != "" {
				prop["description"] = f.Description
			}
			properties[f.Name] = prop
		}
		return map[string]any{"type": "object", "properties": properties}
	default:
		return map[string]any{"type": "string"}
	}
}

// coerceArgs decodes the model-supplied JSON argument payload and coerces
// each declared parameter to its type. Unknown arguments are ignored;
// missing required arguments fail.
func (d *Descriptor) coerceArgs(payload string) (map[string]any, error) {
	raw := map[string]any{}
	if strings.TrimSpace(payload) != "" {
		dec := json.NewDecoder(strings.NewReader(payload))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: tool %q: %v", ErrBadArguments, d.Name, err)
		}
	}

	args := make(map[string]any, len(d.Parameters))
	for _, p := range d.Parameters {
		v, ok := raw[p.Name]
		if !ok || v == nil {
			if p.Required {
				return nil, fmt.Errorf("%w: tool %q: missing required argument %q", ErrBadArguments, d.Name, p.Name)
			}
			continue
		}
		coerced, err := p.Type.Coerce(v)
		if err != nil {
			return nil, fmt.Errorf("%w: tool %q argument %q: %v", ErrBadArguments, d.Name, p.Name, err)
		}
		args[p.Name] = coerced
	}
	return args, nil
}
