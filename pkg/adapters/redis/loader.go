package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Loader implements ports.TemplateLoader over a Redis hash mapping
// template names to sources, so several replicas share one template set.
type Loader struct {
	client *backend.Client
	key    string
}

// NewLoader reads templates from the hash at key.
func NewLoader(client *backend.Client, key string) *Loader {
	if key == "" {
		key = "arbor:templates"
	}
	return &Loader{client: client, key: key}
}

// PutTemplate stores a template source.
func (l *Loader) PutTemplate(ctx context.Context, name, source string) error {
	if err := l.client.HSet(ctx, l.key, name, source).Err(); err != nil {
		return fmt.Errorf("failed to store template %s: %w", name, err)
	}
	return nil
}

// LoadTemplate implements ports.TemplateLoader.
func (l *Loader) LoadTemplate(ctx context.Context, name string) (*ports.TemplateDocument, error) {
	src, err := l.client.HGet(ctx, l.key, name).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, name)
		}
		return nil, fmt.Errorf("failed to get template %s: %w", name, err)
	}
	return &ports.TemplateDocument{Name: name, Source: src}, nil
}

// ListTemplates implements ports.TemplateLoader.
func (l *Loader) ListTemplates(ctx context.Context) ([]string, error) {
	names, err := l.client.HKeys(ctx, l.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	sort.Strings(names)
	return names, nil
}
