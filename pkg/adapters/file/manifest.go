package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/layout"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/schema"
	"gopkg.in/yaml.v3"
)

// TemplateEntry is one template in a manifest. Source is inline; File is
// read relative to the manifest.
type TemplateEntry struct {
	Name   string         `yaml:"name" json:"name"`
	Source string         `yaml:"source" json:"source"`
	File   string         `yaml:"file" json:"file"`
	Layout map[string]any `yaml:"layout" json:"layout"`
}

// Manifest describes a site: its templates, constant helpers and the
// initial props of the root layout.
type Manifest struct {
	Layout    map[string]any  `yaml:"layout" json:"layout"`
	Helpers   map[string]any  `yaml:"helpers" json:"helpers"`
	Schema    schema.Schema   `yaml:"schema" json:"schema"`
	Templates []TemplateEntry `yaml:"templates" json:"templates"`

	docs map[string]*ports.TemplateDocument
}

// LoadManifest reads a manifest file (YAML or JSON, chosen by extension).
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := m.index(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) index(dir string) error {
	m.docs = make(map[string]*ports.TemplateDocument, len(m.Templates))
	for _, t := range m.Templates {
		if t.Name == "" {
			continue
		}
		src := t.Source
		if t.File != "" {
			p := t.File
			if !filepath.IsAbs(p) {
				p = filepath.Join(dir, p)
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return fmt.Errorf("template %s: %w", t.Name, err)
			}
			src = string(data)
		}
		m.docs[t.Name] = &ports.TemplateDocument{Name: t.Name, Source: src, Layout: t.Layout}
	}
	return nil
}

// Props decodes the root layout props.
func (m *Manifest) Props() (layout.Props, error) {
	return layout.DecodeProps(m.Layout)
}

// LoadTemplate implements ports.TemplateLoader.
func (m *Manifest) LoadTemplate(_ context.Context, name string) (*ports.TemplateDocument, error) {
	doc, ok := m.docs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, name)
	}
	out := *doc
	return &out, nil
}

// ListTemplates implements ports.TemplateLoader.
func (m *Manifest) ListTemplates(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(m.docs))
	for name := range m.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
