package view

import (
	"log/slog"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/reactive"
)

// Renderer mounts renderables as reactive views on a runtime.
type Renderer struct {
	rt        *reactive.Runtime
	templates TemplateSource
	helpers   HelperSource
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	nextID    int
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithTemplates sets the global template registry.
func WithTemplates(src TemplateSource) RendererOption {
	return func(r *Renderer) {
		r.templates = src
	}
}

// WithHelpers sets the global helper registry.
func WithHelpers(src HelperSource) RendererOption {
	return func(r *Renderer) {
		r.helpers = src
	}
}

// WithLogger sets the renderer logger.
func WithLogger(logger *slog.Logger) RendererOption {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLifecycleHooks registers view lifecycle callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) RendererOption {
	return func(r *Renderer) {
		r.hooks = r.hooks.Merge(hooks)
	}
}

// NewRenderer creates a renderer on rt.
func NewRenderer(rt *reactive.Runtime, opts ...RendererOption) *Renderer {
	r := &Renderer{
		rt:     rt,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) Runtime() *reactive.Runtime { return r.rt }
func (r *Renderer) Templates() TemplateSource  { return r.templates }
func (r *Renderer) Helpers() HelperSource      { return r.helpers }
func (r *Renderer) Logger() *slog.Logger       { return r.logger }

// Mount renders rend as a root view in scope. If the first render fails
// the partially built view is stopped and the error returned.
func (r *Renderer) Mount(scope *Scope, rend Renderable) (*View, error) {
	if scope == nil {
		scope = NewScope(nil, KindRoot, "root")
	}
	return r.mount(nil, "root", scope, rend)
}

func (r *Renderer) mountChild(f *Frame, key string, scope *Scope, rend Renderable) (*View, error) {
	child, err := r.mount(f.view, key, scope, rend)
	if err != nil {
		return nil, err
	}
	f.adopt(key, child)
	return child, nil
}

func (r *Renderer) mount(parent *View, key string, scope *Scope, rend Renderable) (*View, error) {
	r.nextID++
	v := &View{
		id:       r.nextID,
		name:     nameOf(rend),
		key:      key,
		parent:   parent,
		scope:    scope,
		renderer: r,
	}
	comp, err := r.rt.Autorun(func(c *reactive.Computation) error {
		return v.run(c, rend)
	})
	v.comp = comp
	if err != nil {
		v.Stop()
		return nil, err
	}
	return v, nil
}

func (r *Renderer) emitCreated(v *View, err error) {
	r.logger.Debug("View created", "view", v.name, "id", v.id)
	if r.hooks.OnViewCreated != nil {
		r.hooks.OnViewCreated(r.viewEvent(domain.EventViewCreated, v, err))
	}
}

func (r *Renderer) emitRefreshed(v *View, err error) {
	r.logger.Debug("View refreshed", "view", v.name, "id", v.id, "runs", v.runs)
	if r.hooks.OnViewRefreshed != nil {
		r.hooks.OnViewRefreshed(r.viewEvent(domain.EventViewRefreshed, v, err))
	}
}

func (r *Renderer) emitStopped(v *View) {
	if r.hooks.OnViewStopped != nil {
		r.hooks.OnViewStopped(r.viewEvent(domain.EventViewStopped, v, nil))
	}
}

func (r *Renderer) emitLookupFailed(name string) {
	r.logger.Debug("Template lookup failed", "name", name)
	if r.hooks.OnLookupFailed != nil {
		r.hooks.OnLookupFailed(&domain.LookupEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventLookupFailed},
			Name:      name,
		})
	}
}

// LookupFailed reports a failed lookup made on behalf of the renderer.
func (r *Renderer) LookupFailed(name string) { r.emitLookupFailed(name) }

func (r *Renderer) viewEvent(t domain.EventType, v *View, err error) *domain.ViewEvent {
	return &domain.ViewEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: t},
		ViewID:    v.id,
		Name:      v.name,
		Err:       err,
	}
}
