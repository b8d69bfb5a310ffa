package layout

import (
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/view"
)

// Type is the layout as a renderable component, so a template can render a
// nested layout with include. Each render creates a fresh controller that
// lives as long as the view mounting it.
type Type struct {
	renderer *view.Renderer
	props    Props
	opts     []Option
	onCreate func(*Controller)
}

// NewType creates a layout component type.
func NewType(renderer *view.Renderer, props Props, opts ...Option) *Type {
	return &Type{renderer: renderer, props: props, opts: opts}
}

func (t *Type) Name() string { return domain.LayoutTemplate }

// Extend returns a copy with extra props and options applied.
func (t *Type) Extend(props Props, opts ...Option) *Type {
	return &Type{
		renderer: t.renderer,
		props:    t.props.Merge(props),
		opts:     append(append([]Option(nil), t.opts...), opts...),
		onCreate: t.onCreate,
	}
}

// OnCreate registers fn to receive each controller the type creates.
func (t *Type) OnCreate(fn func(*Controller)) *Type {
	out := *t
	out.onCreate = fn
	return &out
}

// Render creates a controller under the frame and mounts it.
func (t *Type) Render(f *view.Frame) error {
	c := New(t.renderer, t.props, t.opts...)
	if t.onCreate != nil {
		t.onCreate(c)
	}
	return c.renderInto(f, "layout")
}
