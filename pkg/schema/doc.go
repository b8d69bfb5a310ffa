// Package schema validates layout data contexts.
//
// A Schema maps top-level data keys to types. Keys ending in "?" are
// optional:
//
//	s, err := schema.ParseTypeMap(map[string]string{
//		"title":  "string",
//		"tags?":  "[string]",
//		"author": "{name: string}",
//	})
//	err = s.Validate(map[string]any{"title": "Home"})
//
// Types are written as string, int, float, bool, any, [T] for lists and
// {key: T, other?: T} for nested objects. Manifests declare a schema under
// their "schema" key; the manager checks every data context against it.
package schema
