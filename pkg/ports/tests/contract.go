package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// TemplateLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.TemplateLoader.
func TemplateLoaderContractTest(t *testing.T, loader ports.TemplateLoader, expected map[string]string) {
	t.Helper()
	ctx := context.Background()

	t.Run("LoadTemplate_Success", func(t *testing.T) {
		for name, source := range expected {
			doc, err := loader.LoadTemplate(ctx, name)
			if err != nil {
				t.Fatalf("unexpected error loading %s: %v", name, err)
			}
			if doc.Name != name {
				t.Errorf("name mismatch: got %q, want %q", doc.Name, name)
			}
			if doc.Source != source {
				t.Errorf("source mismatch for %s. got %q, want %q", name, doc.Source, source)
			}
		}
	})

	t.Run("LoadTemplate_NotFound", func(t *testing.T) {
		_, err := loader.LoadTemplate(ctx, "non-existent-template")
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			t.Errorf("expected ErrDocumentNotFound, got %v", err)
		}
	})

	t.Run("ListTemplates", func(t *testing.T) {
		names, err := loader.ListTemplates(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing templates: %v", err)
		}
		if len(names) != len(expected) {
			t.Errorf("expected %d templates, got %d (%v)", len(expected), len(names), names)
		}
		lookup := make(map[string]bool)
		for _, n := range names {
			lookup[n] = true
		}
		for name := range expected {
			if !lookup[name] {
				t.Errorf("template %s missing from list", name)
			}
		}
	})
}
