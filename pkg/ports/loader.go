package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/view"
)

// TemplateSource resolves global template names.
type TemplateSource = view.TemplateSource

// HelperSource resolves global helper names.
type HelperSource = view.HelperSource

// TemplateDocument is the raw form of a template as stored by a loader.
type TemplateDocument struct {
	Name   string `json:"name" yaml:"name"`
	Source string `json:"source" yaml:"source"`

	// Layout holds layout props from front matter. When present the
	// document defines a nested layout rather than a plain template.
	Layout map[string]any `json:"layout,omitempty" yaml:"layout,omitempty"`
}

// TemplateLoader supplies template documents by name.
// This allows the storage layer (Loam, FS, Memory) to be decoupled.
type TemplateLoader interface {
	// LoadTemplate returns the document for name, or an error wrapping
	// domain.ErrDocumentNotFound.
	LoadTemplate(ctx context.Context, name string) (*TemplateDocument, error)

	// ListTemplates returns every name the loader can supply.
	ListTemplates(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying documents change.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
