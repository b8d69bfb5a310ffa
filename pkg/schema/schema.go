package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Schema maps data keys to types. A key ending in "?" is optional.
type Schema map[string]Type

// Validate checks that data is an object matching s. An empty schema
// accepts anything.
func (s Schema) Validate(data any) error {
	if len(s) == 0 {
		return nil
	}
	fields, ok := asMap(data)
	if !ok {
		return &AggregateError{Errors: []error{
			&ValidationError{Key: ".", Reason: fmt.Sprintf("expected object, got %T", data)},
		}}
	}

	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		name, optional := strings.CutSuffix(key, "?")
		value, present := fields[name]
		if !present {
			if !optional {
				errs = append(errs, &ValidationError{Key: name, Reason: "required"})
			}
			continue
		}
		if err := s[key].Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: name, Reason: err.Error()})
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// asMap accepts any map keyed by strings.
func asMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// MarshalJSON writes the schema as field names to type strings.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	raw := make(map[string]string, len(s))
	for key, typ := range s {
		if typ == nil {
			return nil, fmt.Errorf("field %s: type is nil", key)
		}
		raw[key] = typ.Name()
	}
	return json.Marshal(raw)
}

// UnmarshalJSON reads the form MarshalJSON writes.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = nil
		return nil
	}
	parsed, err := ParseTypeMap(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// UnmarshalYAML reads the same form from YAML.
func (s *Schema) UnmarshalYAML(unmarshal func(any) error) error {
	var raw map[string]string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseTypeMap(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
