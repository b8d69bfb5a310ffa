package dsl

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/view"
)

// Builder collects template declarations.
type Builder struct {
	templates map[string]*TemplateBuilder
}

// New creates a new builder.
func New() *Builder {
	return &Builder{
		templates: make(map[string]*TemplateBuilder),
	}
}

// Template declares a template. Declaring an existing name returns the
// existing builder.
func (b *Builder) Template(name string) *TemplateBuilder {
	if tb, ok := b.templates[name]; ok {
		return tb
	}
	tb := &TemplateBuilder{doc: ports.TemplateDocument{Name: name}}
	b.templates[name] = tb
	return tb
}

// Documents returns the declared documents sorted by name.
func (b *Builder) Documents() []ports.TemplateDocument {
	names := make([]string, 0, len(b.templates))
	for name := range b.templates {
		names = append(names, name)
	}
	sort.Strings(names)

	docs := make([]ports.TemplateDocument, len(names))
	for i, name := range names {
		docs[i] = b.templates[name].Build()
	}
	return docs
}

// Build parses every template and compiles the set into a memory loader.
// Layout templates must be declared in the same set.
func (b *Builder) Build() (*memory.Loader, error) {
	docs := b.Documents()
	var errs []error
	for _, doc := range docs {
		if _, err := view.Parse(doc.Name, doc.Source); err != nil {
			errs = append(errs, err)
		}
		if tmpl, ok := doc.Layout["template"].(string); ok && tmpl != "" {
			if _, declared := b.templates[tmpl]; !declared {
				errs = append(errs, fmt.Errorf("template %s: layout %q is not declared", doc.Name, tmpl))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	loader, err := memory.NewFromDocuments(docs...)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
