package view

import (
	"fmt"
	"maps"
	"text/template"

	"github.com/aretw0/arbor/pkg/domain"
)

// stubFuncs lets templates parse before a frame binds the real functions.
var stubFuncs = template.FuncMap{
	"yield":      func(...string) (string, error) { return "", nil },
	"contentFor": func(string, ...string) (string, error) { return "", nil },
	"include":    func(string) (string, error) { return "", nil },
	"helper":     func(string, ...any) (any, error) { return nil, nil },
	"data":       func() any { return nil },
}

// Template is a text/template component type. Rendering it creates a
// helper-host scope carrying the template's helpers; the template body is
// executed with the visible data context as dot.
type Template struct {
	name    string
	tmpl    *template.Template
	helpers map[string]any
}

// Parse compiles source into a template called name.
func Parse(name, source string) (*Template, error) {
	t, err := template.New(name).Funcs(stubFuncs).Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return &Template{name: name, tmpl: t}, nil
}

// MustParse is Parse that panics on error.
func MustParse(name, source string) *Template {
	t, err := Parse(name, source)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Template) Name() string { return t.name }

// Helpers returns a copy of the template's own helpers.
func (t *Template) Helpers() map[string]any { return maps.Clone(t.helpers) }

// WithHelpers returns a copy of t carrying the given helpers in addition
// to its own.
func (t *Template) WithHelpers(helpers map[string]any) *Template {
	out := &Template{name: t.name, tmpl: t.tmpl, helpers: maps.Clone(t.helpers)}
	if out.helpers == nil {
		out.helpers = make(map[string]any, len(helpers))
	}
	maps.Copy(out.helpers, helpers)
	return out
}

// Block returns an associated template defined with {{define}}.
func (t *Template) Block(name string) (*Template, bool) {
	sub := t.tmpl.Lookup(name)
	if sub == nil {
		return nil, false
	}
	return &Template{name: name, tmpl: sub, helpers: t.helpers}, true
}

// Same reports whether t and other execute the same parsed tree.
func (t *Template) Same(other *Template) bool {
	return other != nil && t.tmpl == other.tmpl
}

// Instantiate creates the template's helper-host scope.
func (t *Template) Instantiate(parent *Scope) *Scope {
	s := NewScope(parent, KindTemplate, t.name).SetHelperHost(true)
	for k, v := range t.helpers {
		s.Set(k, v)
	}
	return s
}

// Render executes the template into the frame.
func (t *Template) Render(f *Frame) error {
	clone, err := t.tmpl.Clone()
	if err != nil {
		return fmt.Errorf("clone template %s: %w", t.name, err)
	}
	clone.Funcs(t.funcs(f))
	if err := clone.Execute(f, f.Data()); err != nil {
		return fmt.Errorf("render %s: %w", t.name, err)
	}
	return nil
}

func (t *Template) funcs(f *Frame) template.FuncMap {
	return template.FuncMap{
		"yield": func(region ...string) (string, error) {
			name := domain.MainRegion
			if len(region) > 0 && region[0] != "" {
				name = region[0]
			}
			return "", f.Yield(name)
		},
		"contentFor": func(region string, block ...string) (string, error) {
			if region == "" {
				return "", &domain.ArgumentError{Op: "contentFor", Arg: "region"}
			}
			blockName := region
			if len(block) > 0 && block[0] != "" {
				blockName = block[0]
			}
			b, ok := t.Block(blockName)
			if !ok {
				return "", fmt.Errorf("contentFor %s: %s defines no block named %q", region, t.name, blockName)
			}
			return "", f.ContentFor(region, b)
		},
		"include": func(name string) (string, error) {
			return "", f.Include(name)
		},
		"helper": func(name string, args ...any) (any, error) {
			return f.Helper(name, args...)
		},
		"data": func() any {
			return f.Data()
		},
	}
}
