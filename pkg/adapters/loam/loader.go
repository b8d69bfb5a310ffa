package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/loam"
)

// Loader adapts a Loam vault to ports.TemplateLoader. Each Markdown
// document is a template: the body is the template source, the front
// matter is TemplateMetadata.
type Loader struct {
	Repo *loam.TypedRepository[TemplateMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[TemplateMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// LoadTemplate implements ports.TemplateLoader. Names are resolved to
// document IDs through the listing, so a front matter name works as well
// as the file name.
func (l *Loader) LoadTemplate(ctx context.Context, name string) (*ports.TemplateDocument, error) {
	index, err := l.index(ctx)
	if err != nil {
		return nil, err
	}
	docID, ok := index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, name)
	}

	doc, err := l.Repo.Get(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", name, err)
	}
	return &ports.TemplateDocument{
		Name:   name,
		Source: doc.Content,
		Layout: doc.Data.Layout,
	}, nil
}

// ListTemplates implements ports.TemplateLoader.
func (l *Loader) ListTemplates(ctx context.Context) ([]string, error) {
	index, err := l.index(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	return names, nil
}

// index maps template names to document IDs, rejecting two documents
// that claim the same name.
func (l *Loader) index(ctx context.Context) (map[string]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	out := make(map[string]string, len(docs))
	for _, doc := range docs {
		name := templateName(doc.ID, doc.Data)
		if existing, ok := out[name]; ok {
			return nil, fmt.Errorf("collision detected: template '%s' is defined in both '%s' and '%s'", name, existing, doc.ID)
		}
		out[name] = doc.ID
	}
	return out, nil
}

func templateName(docID string, meta TemplateMetadata) string {
	switch {
	case meta.Name != "":
		return meta.Name
	case meta.ID != "":
		return trimExtension(meta.ID)
	}
	return trimExtension(docID)
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}

// Watch implements ports.Watchable. It signals once per batch of changes
// to template documents.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- struct{}{}:
				default:
					// A reload is already pending.
				}
			}
		}
	}()
	return ch, nil
}
