package layout

import (
	"log/slog"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/reactive"
	"github.com/aretw0/arbor/pkg/view"
)

type lifecycle int

const (
	unrendered lifecycle = iota
	rendered
	destroyed
)

// Controller is one layout instance.
type Controller struct {
	rt       *reactive.Runtime
	renderer *view.Renderer
	logger   *slog.Logger

	template *reactive.Signal[string]
	data     *dataCell
	regions  *RegionStore
	blocks   *ContentBlocks
	resolver *Resolver
	content  view.Renderable

	scope *view.Scope
	view  *view.View
	state lifecycle
}

// Option configures a Controller.
type Option func(*Controller)

// WithContent sets the block the layout was invoked with. It is what the
// main region renders by default.
func WithContent(r view.Renderable) Option {
	return func(c *Controller) {
		c.content = r
	}
}

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a controller that renders through renderer.
func New(renderer *view.Renderer, props Props, opts ...Option) *Controller {
	rt := renderer.Runtime()
	c := &Controller{
		rt:       rt,
		renderer: renderer,
		logger:   renderer.Logger(),
		template: reactive.NewSignal(rt, domain.DefaultLayout),
		data:     newDataCell(rt),
		regions:  NewRegionStore(rt),
		blocks:   NewContentBlocks(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.resolver = NewResolver(c, c.logger,
		ContentBlockScope(c.blocks),
		AncestorScope(),
		TemplateScope(renderer.Templates()),
		HelperScope(renderer.Helpers()),
	)
	c.resolver.onFail = renderer.LookupFailed

	c.regions.Set(domain.MainRegion, domain.DefaultMainRegion)
	c.SetTemplate(props.Template)
	if props.Data != nil {
		c.data.write(props.Data)
	}
	for region, tmpl := range props.Regions {
		c.SetRegion(region, tmpl)
	}
	return c
}

// SetTemplate changes the top-level template. Empty selects the default
// layout.
func (c *Controller) SetTemplate(name string) {
	if name == "" {
		name = domain.DefaultLayout
	}
	c.template.Write(name)
}

// GetTemplate returns the top-level template name.
func (c *Controller) GetTemplate() string {
	return c.template.Read()
}

// SetData sets the explicit data context. Structurally equal values are
// ignored.
func (c *Controller) SetData(v any) bool {
	return c.data.write(v)
}

// GetData returns the explicit data context, or the inherited one if data
// was never set.
func (c *Controller) GetData() any {
	return c.data.read()
}

// SetRegion points a region at a template. An empty region means main.
func (c *Controller) SetRegion(region, tmpl string) {
	if region == "" {
		region = domain.MainRegion
	}
	c.regions.Set(region, tmpl)
}

// GetRegion returns the template assigned to a region.
func (c *Controller) GetRegion(region string) string {
	if region == "" {
		region = domain.MainRegion
	}
	return c.regions.Get(region)
}

// ClearRegion empties a region.
func (c *Controller) ClearRegion(region string) {
	if region == "" {
		region = domain.MainRegion
	}
	c.regions.Clear(region)
}

// RegionKeys lists every region that was ever set.
func (c *Controller) RegionKeys() []string {
	return c.regions.Keys()
}

// Regions copies the region table.
func (c *Controller) Regions() map[string]string {
	return c.regions.Snapshot()
}

// Resolve looks name up as seen from a scope inside this layout.
func (c *Controller) Resolve(name string, from *view.Scope) (view.Renderable, error) {
	if from == nil {
		from = c.scope
	}
	return c.resolver.Resolve(name, from)
}

// ContentFor registers block for region and points the region at it.
func (c *Controller) ContentFor(_ *view.Frame, region string, block view.Renderable) error {
	if region == "" {
		return &domain.ArgumentError{Op: "contentFor", Arg: "region"}
	}
	replaced := c.blocks.Put(region, block)
	if !c.regions.Set(region, region) && replaced {
		c.regions.Touch(region)
	}
	return nil
}

// Render mounts the layout under parent (nil for a root layout).
func (c *Controller) Render(parent *view.Scope) (*view.View, error) {
	if err := c.checkRenderable(); err != nil {
		return nil, err
	}
	c.attach(parent)
	v, err := c.renderer.Mount(c.scope, rootView{c: c})
	if err != nil {
		c.detach()
		return nil, err
	}
	c.view = v
	c.state = rendered
	return v, nil
}

// renderInto mounts the layout as a child of the frame's view.
func (c *Controller) renderInto(f *view.Frame, key string) error {
	if err := c.checkRenderable(); err != nil {
		return err
	}
	c.attach(f.Scope())
	v, err := f.MountScope(key, c.scope, rootView{c: c})
	if err != nil {
		c.detach()
		return err
	}
	c.view = v
	c.state = rendered
	v.OnStop(c.Destroy)
	return nil
}

func (c *Controller) checkRenderable() error {
	switch c.state {
	case rendered:
		return domain.ErrAlreadyRendered
	case destroyed:
		return domain.ErrDestroyed
	}
	return nil
}

func (c *Controller) attach(parent *view.Scope) {
	c.scope = view.NewScope(parent, view.KindLayout, domain.LayoutTemplate).
		SetHost(c).
		SetData(c.GetData).
		Set(domain.DefaultLayout, view.Helper(defaultLayout)).
		Set(domain.DefaultMainRegion, view.Helper(defaultMainRegion)).
		Set(domain.YieldTemplate, yieldMain)
	c.data.attach(c.rt, parent)
}

func (c *Controller) detach() {
	c.data.stop()
	c.scope = nil
}

// Destroy stops the layout's views. A destroyed controller cannot be
// rendered again.
func (c *Controller) Destroy() {
	if c.state == destroyed {
		return
	}
	c.state = destroyed
	if c.view != nil {
		c.view.Stop()
	}
	c.data.stop()
}

// Rendered reports whether the layout is mounted.
func (c *Controller) Rendered() bool { return c.state == rendered }

// View returns the layout's root view, nil before Render.
func (c *Controller) View() *view.View { return c.view }

// Scope returns the layout scope, nil before Render.
func (c *Controller) Scope() *view.Scope { return c.scope }

// Output returns the current rendered text.
func (c *Controller) Output() string {
	if c.view == nil || c.state != rendered {
		return ""
	}
	return c.view.String()
}

// Snapshot captures the layout inputs.
func (c *Controller) Snapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Template: c.template.Peek(),
		Data:     c.data.value,
		DataSet:  c.data.set,
		Regions:  c.regions.Snapshot(),
		SavedAt:  time.Now(),
	}
}

// Restore re-applies a snapshot. Regions missing from it are cleared.
func (c *Controller) Restore(s *domain.Snapshot) {
	if s == nil {
		return
	}
	c.SetTemplate(s.Template)
	if s.DataSet {
		c.data.write(s.Data)
	} else {
		c.data.reset()
	}
	for region := range c.regions.Snapshot() {
		if _, ok := s.Regions[region]; !ok {
			c.regions.Clear(region)
		}
	}
	for region, tmpl := range s.Regions {
		c.regions.Set(region, tmpl)
	}
}

// rootView renders whichever template the layout currently selects.
type rootView struct {
	c *Controller
}

func (r rootView) Name() string { return domain.LayoutTemplate }

func (r rootView) Render(f *view.Frame) error {
	name := r.c.template.Read()
	tmpl, err := r.c.resolver.Resolve(name, f.Scope())
	if err != nil {
		return err
	}
	return f.Mount("template:"+name, view.AsPassthrough(tmpl))
}

var yieldMain = view.WithName(domain.YieldTemplate, view.RenderFunc(func(f *view.Frame) error {
	return f.Yield(domain.MainRegion)
}))

func defaultLayout(any, ...any) (any, error) {
	return yieldMain, nil
}

func defaultMainRegion(receiver any, _ ...any) (any, error) {
	c, ok := receiver.(*Controller)
	if !ok || c.content == nil {
		return nil, nil
	}
	return c.content, nil
}
