package schema

import (
	"fmt"
	"sync"
)

// Kind discriminates the Type variants.
type Kind int

const (
	// KindString is free-form text.
	KindString Kind = iota + 1
	// KindBool is a boolean answer.
	KindBool
	// KindInt is an integer answer.
	KindInt
	// KindFloat is a floating point answer.
	KindFloat
	// KindDate is a calendar date.
	KindDate
	// KindTime is a time of day.
	KindTime
	// KindDateTime is a combined date and time.
	KindDateTime
	// KindEnum is one of a declared set of constants.
	KindEnum
	// KindList is a sequence of a single element type.
	KindList
	// KindObject is a named structure with typed fields.
	KindObject
)

// Go reference layouts used both in instructions and in parsing.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02T15:04:05"
)

// Constant is one enum value with an optional human-readable description.
type Constant struct {
	Name        string
	Description string
}

// Field is one object field. Fields render and decode in declaration order.
type Field struct {
	Name        string
	Type        *Type
	Description string
}

// Type is an immutable description of an expected reply shape.
// Construct via the package-level constructors; a Type is safe for
// concurrent use and its instruction text is derived once.
type Type struct {
	kind      Kind
	constants []Constant // enum
	elem      *Type      // list
	name      string     // object
	fields    []Field    // object

	once        sync.Once
	instruction string
}

// Kind returns the variant tag.
func (t *Type) Kind() Kind { return t.kind }

// Constants returns the declared enum constants in declaration order.
func (t *Type) Constants() []Constant {
	out := make([]Constant, len(t.constants))
	copy(out, t.constants)
	return out
}

// Elem returns the list element type, or nil for non-lists.
func (t *Type) Elem() *Type { return t.elem }

// Name returns the declared object name, or "" for non-objects.
func (t *Type) Name() string { return t.name }

// Fields returns the declared object fields in declaration order.
func (t *Type) Fields() []Field {
	out := make([]Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// String declares free-form text output. It produces no format instruction.
func String() *Type { return &Type{kind: KindString} }

// Bool declares a true/false output.
func Bool() *Type { return &Type{kind: KindBool} }

// Int declares an integer output.
func Int() *Type { return &Type{kind: KindInt} }

// Float declares a floating point output.
func Float() *Type { return &Type{kind: KindFloat} }

// Date declares a calendar date output using DateLayout.
func Date() *Type { return &Type{kind: KindDate} }

// Time declares a time-of-day output using TimeLayout.
func Time() *Type { return &Type{kind: KindTime} }

// DateTime declares a combined output using DateTimeLayout.
func DateTime() *Type { return &Type{kind: KindDateTime} }

// Enum declares an output restricted to the given constants.
// Instruction order follows declaration order.
func Enum(constants ...Constant) (*Type, error) {
	if len(constants) == 0 {
		return nil, ErrNoConstants
	}
	seen := make(map[string]bool, len(constants))
	for _, c := range constants {
		if seen[c.Name] {
			return nil, fmt.Errorf("%w: constant %q", ErrDuplicateField, c.Name)
		}
		seen[c.Name] = true
	}
	owned := make([]Constant, len(constants))
	copy(owned, constants)
	return &Type{kind: KindEnum, constants: owned}, nil
}

// List declares a sequence of elem values.
func List(elem *Type) *Type {
	return &Type{kind: KindList, elem: elem}
}

// Object declares a named structure. Field order is preserved in both the
// generated instruction and decoding.
func Object(name string, fields ...Field) (*Type, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: object %q", ErrNoFields, name)
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			return nil, fmt.Errorf("%w: %q in object %q", ErrDuplicateField, f.Name, name)
		}
		seen[f.Name] = true
	}
	owned := make([]Field, len(fields))
	copy(owned, fields)
	return &Type{kind: KindObject, name: name, fields: owned}, nil
}

// MustEnum is Enum that panics on error, for static declarations.
func MustEnum(constants ...Constant) *Type {
	t, err := Enum(constants...)
	if err != nil {
		panic(err)
	}
	return t
}

// MustObject is Object that panics on error, for static declarations.
func MustObject(name string, fields ...Field) *Type {
	t, err := Object(name, fields...)
	if err != nil {
		panic(err)
	}
	return t
}
