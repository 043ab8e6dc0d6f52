package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse decodes a raw model reply into the value this Type declares.
//
// Scalars return string, bool, int64, float64 or time.Time; enums return
// the matched constant name; lists return []any; objects return
// map[string]any with values coerced field by field. A reply that does
// not conform yields a core.ErrParse-class error, never a default value.
func (t *Type) Parse(text string) (any, error) {
	switch t.kind {
	case KindString:
		return text, nil
	case KindBool:
		return parseBool(text)
	case KindInt:
		return parseInt(text)
	case KindFloat:
		return parseFloat(text)
	case KindDate:
		return parseTemporal(text, DateLayout)
	case KindTime:
		return parseTemporal(text, TimeLayout)
	case KindDateTime:
		return parseTemporal(text, DateTimeLayout)
	case KindEnum:
		return t.parseEnum(text)
	case KindList:
		return t.parseList(text)
	case KindObject:
		return t.parseObject(text)
	default:
		return nil, fmt.Errorf("%w: unsupported kind %d", ErrBadValue, t.kind)
	}
}

func parseBool(text string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return nil, fmt.Errorf("%w: %q is not a boolean", ErrBadValue, text)
}

func parseInt(text string) (any, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not an integer", ErrBadValue, text)
	}
	return v, nil
}

func parseFloat(text string) (any, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", ErrBadValue, text)
	}
	return v, nil
}

func parseTemporal(text, layout string) (any, error) {
	v, err := time.Parse(layout, strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %q does not match layout %s", ErrBadValue, text, layout)
	}
	return v, nil
}

// parseEnum matches the reply against declared constant names.
// The match is exact and case-sensitive.
func (t *Type) parseEnum(text string) (any, error) {
	trimmed := strings.TrimSpace(text)
	for _, c := range t.constants {
		if c.Name == trimmed {
			return c.Name, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownConstant, trimmed)
}

func (t *Type) parseList(text string) (any, error) {
	if t.elem.kind == KindObject {
		return t.parseObjectList(text)
	}

	// Line-oriented replies: one element per line, blank lines skipped.
	var out []any
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := t.elem.Parse(line)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (t *Type) parseObjectList(text string) (any, error) {
	payload, err := extractJSON(text, '[', ']')
	if err != nil {
		return nil, err
	}

	var raw []any
	if err := decodeJSON(payload, &raw); err != nil {
		return nil, err
	}

	out := make([]any, 0, len(raw))
	for _, item := range raw {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: array element is not an object", ErrFieldType)
		}
		decoded, err := t.elem.coerceObject(fields)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded)
	}
	return out, nil
}

func (t *Type) parseObject(text string) (any, error) {
	payload, err := extractJSON(text, '{', '}')
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := decodeJSON(payload, &raw); err != nil {
		return nil, err
	}
	return t.coerceObject(raw)
}

// decodeJSON unmarshals with number preservation, falling back to a
// repaired payload when the model produced slightly broken JSON.
func decodeJSON(payload string, target any) error {
	if err := unmarshalNumbers(payload, target); err != nil {
		repaired := repairJSON(payload)
		if err := unmarshalNumbers(repaired, target); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}
	}
	return nil
}

func unmarshalNumbers(payload string, target any) error {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	return dec.Decode(target)
}

// extractJSON returns the substring between the first opening and the
// last closing delimiter, which also discards markdown code fences
// around the payload.
func extractJSON(text string, opening, closing byte) (string, error) {
	start := strings.IndexByte(text, opening)
	end := strings.LastIndexByte(text, closing)
	if start < 0 || end < start {
		return "", fmt.Errorf("%w: no %c...%c payload found", ErrMalformedJSON, opening, closing)
	}
	return text[start : end+1], nil
}

// coerceObject maps raw JSON fields onto the declared fields, in
// declaration order. Unknown fields are ignored; absent or null
// declared fields are skipped.
func (t *Type) coerceObject(raw map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(t.fields))
	for _, f := range t.fields {
		v, ok := raw[f.Name]
		if !ok || v == nil {
			continue
		}
		coerced, err := f.Type.coerceValue(v)
		if err != nil {
			return nil, fmt.Errorf("%w (field %q)", err, f.Name)
		}
		out[f.Name] = coerced
	}
	return out, nil
}

// Coerce converts a decoded JSON value (string, bool, json.Number, []any,
// map[string]any) into the value this Type declares. Callers decoding JSON
// themselves must decode with json.Number preservation for numeric kinds.
func (t *Type) Coerce(v any) (any, error) {
	return t.coerceValue(v)
}

func (t *Type) coerceValue(v any) (any, error) {
	switch t.kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected string", ErrFieldType)
		}
		return s, nil
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: expected boolean", ErrFieldType)
		}
		return b, nil
	case KindInt:
		num, ok := v.(json.Number)
		if !ok {
			return nil, fmt.Errorf("%w: expected integer", ErrFieldType)
		}
		i, err := num.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: expected integer, got %s", ErrFieldType, num)
		}
		return i, nil
	case KindFloat:
		num, ok := v.(json.Number)
		if !ok {
			return nil, fmt.Errorf("%w: expected number", ErrFieldType)
		}
		f, err := num.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: expected number, got %s", ErrFieldType, num)
		}
		return f, nil
	case KindDate, KindTime, KindDateTime:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected date/time string", ErrFieldType)
		}
		return t.Parse(s)
	case KindEnum:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected enum name", ErrFieldType)
		}
		return t.parseEnum(s)
	case KindList:
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected array", ErrFieldType)
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			coerced, err := t.elem.coerceValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, coerced)
		}
		return out, nil
	case KindObject:
		fields, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected object", ErrFieldType)
		}
		return t.coerceObject(fields)
	default:
		return nil, fmt.Errorf("%w: unsupported kind %d", ErrFieldType, t.kind)
	}
}

// ToStruct re-encodes a parsed object value into a caller-declared struct.
// Time values round-trip through RFC 3339 strings.
func ToStruct(value, target any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}
