package schema

import (
	"fmt"
	"strings"
)

// ParseType parses a type string such as "int", "[string]" or
// "{name: string, age?: int}".
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	switch {
	case len(s) > 2 && s[0] == '[' && s[len(s)-1] == ']':
		elem, err := ParseType(s[1 : len(s)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elem), nil
	case len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}':
		fields, err := splitFields(s[1 : len(s)-1])
		if err != nil {
			return nil, err
		}
		nested, err := ParseTypeMap(fields)
		if err != nil {
			return nil, err
		}
		return Object(nested), nil
	}

	switch s {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "any":
		return Any(), nil
	}
	return nil, fmt.Errorf("unsupported type: %q", s)
}

// ParseTypeMap converts field names to type strings into a Schema.
func ParseTypeMap(types map[string]string) (Schema, error) {
	out := make(Schema, len(types))
	for key, typ := range types {
		t, err := ParseType(typ)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		out[key] = t
	}
	return out, nil
}

// splitFields splits "a: T, b: {c: U}" at top-level commas.
func splitFields(body string) (map[string]string, error) {
	fields := make(map[string]string)
	depth, start := 0, 0
	flush := func(part string) error {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil
		}
		key, typ, ok := strings.Cut(part, ":")
		if !ok {
			return fmt.Errorf("invalid object field %q", part)
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(typ)
		return nil
	}
	for i, r := range body {
		switch r {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		case ',':
			if depth == 0 {
				if err := flush(body[start:i]); err != nil {
					return nil, err
				}
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets in %q", body)
	}
	return fields, flush(body[start:])
}
