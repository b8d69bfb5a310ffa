package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Loader implements ports.TemplateLoader using an in-memory map.
type Loader struct {
	docs map[string]*ports.TemplateDocument
}

// NewLoader creates a new Loader from template sources keyed by name.
func NewLoader(sources map[string]string) *Loader {
	docs := make(map[string]*ports.TemplateDocument, len(sources))
	for name, src := range sources {
		docs[name] = &ports.TemplateDocument{Name: name, Source: src}
	}
	return &Loader{docs: docs}
}

// NewFromDocuments creates a Loader from full documents, including layout
// front matter.
func NewFromDocuments(docs ...ports.TemplateDocument) (*Loader, error) {
	l := &Loader{docs: make(map[string]*ports.TemplateDocument, len(docs))}
	for _, d := range docs {
		if d.Name == "" {
			return nil, fmt.Errorf("template document missing name")
		}
		doc := d
		l.docs[d.Name] = &doc
	}
	return l, nil
}

// LoadTemplate returns a copy of the named document.
func (l *Loader) LoadTemplate(_ context.Context, name string) (*ports.TemplateDocument, error) {
	doc, ok := l.docs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, name)
	}
	out := *doc
	return &out, nil
}

// ListTemplates returns all available template names.
func (l *Loader) ListTemplates(_ context.Context) ([]string, error) {
	keys := make([]string, 0, len(l.docs))
	for k := range l.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
