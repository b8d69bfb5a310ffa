package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Type validates one value.
type Type interface {
	// Name is the type as written in a type string.
	Name() string
	Validate(value any) error
}

type scalar struct {
	name  string
	check func(any) bool
}

func (s scalar) Name() string { return s.name }

func (s scalar) Validate(v any) error {
	if !s.check(v) {
		return fmt.Errorf("expected %s, got %T", s.name, v)
	}
	return nil
}

// String accepts strings.
func String() Type {
	return scalar{"string", func(v any) bool { _, ok := v.(string); return ok }}
}

// Int accepts integers, including whole float64 values decoded from JSON.
func Int() Type {
	return scalar{"int", func(v any) bool {
		switch x := v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64:
			return x == float64(int64(x))
		}
		return false
	}}
}

// Float accepts any number.
func Float() Type {
	return scalar{"float", func(v any) bool {
		switch v.(type) {
		case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		}
		return false
	}}
}

// Bool accepts booleans.
func Bool() Type {
	return scalar{"bool", func(v any) bool { _, ok := v.(bool); return ok }}
}

// Any accepts every value, including nil.
func Any() Type {
	return scalar{"any", func(any) bool { return true }}
}

type sliceType struct{ elem Type }

// Slice accepts slices and arrays whose elements all match elem.
func Slice(elem Type) Type { return sliceType{elem} }

func (t sliceType) Name() string { return "[" + t.elem.Name() + "]" }

func (t sliceType) Validate(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected %s, got %T", t.Name(), v)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

type objectType struct{ fields Schema }

// Object accepts maps matching a nested schema.
func Object(fields Schema) Type { return objectType{fields} }

func (t objectType) Name() string {
	keys := make([]string, 0, len(t.fields))
	for k := range t.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + t.fields[k].Name()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (t objectType) Validate(v any) error {
	return t.fields.Validate(v)
}

type customType struct {
	name string
	fn   func(any) error
}

// Custom wraps a validation function as a named type.
func Custom(name string, fn func(any) error) Type { return customType{name, fn} }

func (t customType) Name() string { return t.name }
func (t customType) Validate(v any) error { return t.fn(v) }
