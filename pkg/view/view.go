package view

import (
	"io"
	"strings"

	"github.com/aretw0/arbor/pkg/reactive"
)

// View is a materialized renderable. Its output is a sequence of text
// parts and child views.
type View struct {
	id       int
	name     string
	key      string
	parent   *View
	scope    *Scope
	renderer *Renderer
	comp     *reactive.Computation
	parts    []part
	children map[string]*View
	runs     int
	stopped  bool
	onStop   []func()
}

type part struct {
	text  string
	child *View
}

func (v *View) ID() int        { return v.id }
func (v *View) Name() string   { return v.name }
func (v *View) Key() string    { return v.key }
func (v *View) Parent() *View  { return v.parent }
func (v *View) Scope() *Scope  { return v.scope }
func (v *View) Runs() int      { return v.runs }
func (v *View) Stopped() bool  { return v.stopped }

// Children returns the live child views in output order.
func (v *View) Children() []*View {
	var out []*View
	for _, p := range v.parts {
		if p.child != nil {
			out = append(out, p.child)
		}
	}
	return out
}

// String returns the current output of the view and its descendants.
func (v *View) String() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

// WriteTo implements io.WriterTo.
func (v *View) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, v.String())
	return int64(n), err
}

func (v *View) write(sb *strings.Builder) {
	if v.stopped {
		return
	}
	for _, p := range v.parts {
		if p.child != nil {
			p.child.write(sb)
			continue
		}
		sb.WriteString(p.text)
	}
}

// OnStop registers fn to run when the view is torn down.
func (v *View) OnStop(fn func()) {
	if v.stopped {
		fn()
		return
	}
	v.onStop = append(v.onStop, fn)
}

// Stop tears down the view and all of its descendants.
func (v *View) Stop() {
	if v.stopped {
		return
	}
	v.stopped = true
	if v.comp != nil {
		v.comp.Stop()
	}
	for _, child := range v.children {
		child.Stop()
	}
	for _, fn := range v.onStop {
		fn()
	}
	v.onStop = nil
	v.renderer.emitStopped(v)
}

func (v *View) run(c *reactive.Computation, r Renderable) error {
	prev := v.children
	v.children = make(map[string]*View)
	v.parts = nil

	f := &Frame{view: v, scope: v.scope, prev: prev}
	err := r.Render(f)
	for _, orphan := range f.prev {
		orphan.Stop()
	}
	v.runs++
	if c.FirstRun() {
		v.renderer.emitCreated(v, err)
	} else {
		v.renderer.emitRefreshed(v, err)
	}
	return err
}
