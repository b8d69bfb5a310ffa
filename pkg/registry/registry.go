package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/view"
)

// Compiler turns a loaded document into a renderable.
type Compiler func(doc *ports.TemplateDocument) (view.Renderable, error)

// CompileTemplate is the default Compiler: the document source is parsed
// as a text template.
func CompileTemplate(doc *ports.TemplateDocument) (view.Renderable, error) {
	return view.Parse(doc.Name, doc.Source)
}

// Registry manages the globally available templates and helpers.
// Templates missing from the registry are requested from the loader, if
// one is configured, and cached.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]view.Renderable
	loaded    map[string]bool
	failed    map[string]error
	helpers   map[string]any
	loader    ports.TemplateLoader
	compile   Compiler
	logger    *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLoader sets the fallback source for unknown template names.
func WithLoader(loader ports.TemplateLoader) Option {
	return func(r *Registry) {
		r.loader = loader
	}
}

// WithCompiler replaces CompileTemplate.
func WithCompiler(c Compiler) Option {
	return func(r *Registry) {
		if c != nil {
			r.compile = c
		}
	}
}

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates a new empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		templates: make(map[string]view.Renderable),
		loaded:    make(map[string]bool),
		failed:    make(map[string]error),
		helpers:   make(map[string]any),
		compile:   CompileTemplate,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetCompiler replaces the compiler after construction. Cached documents
// keep their previous compilation until Invalidate is called.
func (r *Registry) SetCompiler(c Compiler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c == nil {
		c = CompileTemplate
	}
	r.compile = c
}

// Register adds a template to the registry.
// If a template with the same name exists, it is overwritten.
func (r *Registry) Register(name string, t view.Renderable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[name] = t
	delete(r.loaded, name)
	delete(r.failed, name)
}

// RegisterSource parses source and registers it under name.
func (r *Registry) RegisterSource(name, source string) error {
	t, err := view.Parse(name, source)
	if err != nil {
		return err
	}
	r.Register(name, t)
	return nil
}

// RegisterHelper adds a helper. Helpers are usually view.Helper values;
// anything else is treated as a constant.
func (r *Registry) RegisterHelper(name string, h any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.helpers[name] = h
}

// Unregister removes a template.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.templates, name)
	delete(r.loaded, name)
	delete(r.failed, name)
}

// Lookup implements view.TemplateSource.
func (r *Registry) Lookup(name string) (view.Renderable, bool) {
	t, err := r.Find(name)
	if err != nil {
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			r.logger.Warn("Template load failed", "name", name, "err", err)
		}
		return nil, false
	}
	return t, true
}

// Find implements view.CheckedSource. A document that fails to compile
// yields a *domain.TemplateCompileError, remembered until Invalidate.
func (r *Registry) Find(name string) (view.Renderable, error) {
	r.mu.RLock()
	t, ok := r.templates[name]
	failed := r.failed[name]
	loader := r.loader
	r.mu.RUnlock()
	switch {
	case ok:
		return t, nil
	case failed != nil:
		return nil, failed
	case loader == nil:
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, name)
	}
	return r.load(context.Background(), name)
}

// Helper implements view.HelperSource.
func (r *Registry) Helper(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.helpers[name]
	return h, ok
}

func (r *Registry) load(ctx context.Context, name string) (view.Renderable, error) {
	doc, err := r.loader.LoadTemplate(ctx, name)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	compile := r.compile
	r.mu.RUnlock()

	t, err := compile(doc)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		cerr := &domain.TemplateCompileError{Name: name, Err: err}
		r.failed[name] = cerr
		return nil, cerr
	}
	if existing, ok := r.templates[name]; ok {
		return existing, nil
	}
	r.templates[name] = t
	r.loaded[name] = true
	r.logger.Debug("Template loaded", "name", name)
	return t, nil
}

// Preload loads every template the loader lists, failing on the first
// document that does not compile.
func (r *Registry) Preload(ctx context.Context) error {
	if r.loader == nil {
		return nil
	}
	names, err := r.loader.ListTemplates(ctx)
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	for _, name := range names {
		r.mu.RLock()
		_, ok := r.templates[name]
		r.mu.RUnlock()
		if ok {
			continue
		}
		if _, err := r.load(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// Invalidate drops every template that came from the loader, so the next
// lookup reloads it.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name := range r.loaded {
		delete(r.templates, name)
	}
	clear(r.loaded)
	clear(r.failed)
}

// Names returns every registered and loadable template name, sorted.
func (r *Registry) Names(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	out := make([]string, 0, len(r.templates))
	for name := range r.templates {
		out = append(out, name)
	}
	loader := r.loader
	r.mu.RUnlock()

	if loader != nil {
		listed, err := loader.ListTemplates(ctx)
		if err != nil {
			return nil, fmt.Errorf("list templates: %w", err)
		}
		out = append(out, listed...)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// HelperNames returns the registered helper names, sorted.
func (r *Registry) HelperNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.helpers))
	for name := range r.helpers {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
