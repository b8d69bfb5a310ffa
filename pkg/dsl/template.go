package dsl

import (
	"maps"

	"github.com/aretw0/arbor/pkg/ports"
)

// TemplateBuilder configures one template.
type TemplateBuilder struct {
	doc ports.TemplateDocument
}

// Source sets the template body.
func (t *TemplateBuilder) Source(src string) *TemplateBuilder {
	t.doc.Source = src
	return t
}

// Layout renders the template as the content of a nested layout whose
// top-level template is tmpl.
func (t *TemplateBuilder) Layout(tmpl string) *TemplateBuilder {
	t.props()["template"] = tmpl
	return t
}

// Region assigns a region of the nested layout. It implies a layout even
// without an explicit Layout call.
func (t *TemplateBuilder) Region(region, tmpl string) *TemplateBuilder {
	props := t.props()
	regions, _ := props["regions"].(map[string]string)
	if regions == nil {
		regions = make(map[string]string)
		props["regions"] = regions
	}
	regions[region] = tmpl
	return t
}

// Data sets the nested layout's explicit data context.
func (t *TemplateBuilder) Data(v any) *TemplateBuilder {
	t.props()["data"] = v
	return t
}

func (t *TemplateBuilder) props() map[string]any {
	if t.doc.Layout == nil {
		t.doc.Layout = make(map[string]any)
	}
	return t.doc.Layout
}

// Build returns a copy of the underlying document.
func (t *TemplateBuilder) Build() ports.TemplateDocument {
	doc := t.doc
	if t.doc.Layout != nil {
		doc.Layout = maps.Clone(t.doc.Layout)
		if regions, ok := doc.Layout["regions"].(map[string]string); ok {
			doc.Layout["regions"] = maps.Clone(regions)
		}
	}
	return doc
}
