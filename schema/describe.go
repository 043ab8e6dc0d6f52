package schema

import (
	"strings"
)

const (
	formatPreamble   = "You must answer strictly in the following format: "
	jsonPreamble     = "You must answer strictly in the following JSON format: "
	enumPreamble     = "You must answer strictly with one of these enums:"
	linePerItemNote  = "You must put every item on a separate line."
	dateFieldTag     = "date string (2023-12-31)"
	timeFieldTag     = "time string (23:59:59)"
	dateTimeFieldTag = "date-time string (2023-12-31T23:59:59)"
)

// Instruction returns the format instruction appended to the rendered
// user message. The text is deterministic for a given Type and derived
// once. Free-form string output yields an empty instruction.
func (t *Type) Instruction() string {
	t.once.Do(func() {
		t.instruction = describe(t)
	})
	return t.instruction
}

func describe(t *Type) string {
	switch t.kind {
	case KindString:
		return ""
	case KindBool:
		return formatPreamble + "true or false"
	case KindInt:
		return formatPreamble + "integer"
	case KindFloat:
		return formatPreamble + "floating point number"
	case KindDate:
		return formatPreamble + DateLayout
	case KindTime:
		return formatPreamble + TimeLayout
	case KindDateTime:
		return formatPreamble + DateTimeLayout
	case KindEnum:
		return describeEnum(t)
	case KindList:
		return describeList(t)
	case KindObject:
		return jsonPreamble + skeleton(t)
	default:
		return ""
	}
}

func describeEnum(t *Type) string {
	var b strings.Builder
	b.WriteString(enumPreamble)
	for _, c := range t.constants {
		b.WriteByte('\n')
		b.WriteString(c.Name)
		if c.Description != "" {
			b.WriteString(" - ")
			b.WriteString(c.Description)
		}
	}
	return b.String()
}

func describeList(t *Type) string {
	switch t.elem.kind {
	case KindObject:
		return jsonPreamble + "[" + skeleton(t.elem) + "]"
	case KindEnum:
		return describeEnum(t.elem) + "\n" + linePerItemNote
	default:
		return linePerItemNote
	}
}

// skeleton renders the JSON shape of an object, one field per line,
// in declaration order.
func skeleton(t *Type) string {
	var b strings.Builder
	b.WriteString("{\n")
	for i, f := range t.fields {
		b.WriteByte('"')
		b.WriteString(f.Name)
		b.WriteString(`": (`)
		if f.Description != "" {
			b.WriteString(f.Description)
			b.WriteString("; ")
		}
		b.WriteString("type: ")
		b.WriteString(fieldTag(f.Type))
		b.WriteByte(')')
		if i < len(t.fields)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteByte('}')
	return b.String()
}

func fieldTag(t *Type) string {
	switch t.kind {
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "number"
	case KindDate:
		return dateFieldTag
	case KindTime:
		return timeFieldTag
	case KindDateTime:
		return dateTimeFieldTag
	case KindEnum:
		names := make([]string, len(t.constants))
		for i, c := range t.constants {
			names[i] = c.Name
		}
		return "enum, one of [" + strings.Join(names, ", ") + "]"
	case KindList:
		return "array of " + fieldTag(t.elem)
	case KindObject:
		return t.name + ": " + skeleton(t)
	default:
		return "string"
	}
}
