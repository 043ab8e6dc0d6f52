package tool

import (
	"fmt"
	"sort"

	"github.com/poiesic/servitor/core"
)

// Registry is an immutable name-to-descriptor mapping, fixed at
// construction. Lookups after construction never observe mutation.
type Registry struct {
	descriptors map[string]*Descriptor
	specs       []core.ToolSpec
}

// NewRegistry validates and indexes the given descriptors.
// Duplicate names and incomplete descriptors are configuration errors.
func NewRegistry(descriptors ...*Descriptor) (*Registry, error) {
	index := make(map[string]*Descriptor, len(descriptors))
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, exists := index[d.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTool, d.Name)
		}
		index[d.Name] = d
	}

	// Specs are precomputed in name order so the tool list sent to the
	// model is stable across calls.
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make([]core.ToolSpec, 0, len(names))
	for _, name := range names {
		specs = append(specs, index[name].Spec())
	}

	return &Registry{descriptors: index, specs: specs}, nil
}

// Get returns the descriptor registered under name.
func (r *Registry) Get(name string) (*Descriptor, error) {
	d, ok := r.descriptors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return d, nil
}

// Specs returns the tool specifications for the model request,
// in stable name order.
func (r *Registry) Specs() []core.ToolSpec {
	out := make([]core.ToolSpec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.descriptors)
}
