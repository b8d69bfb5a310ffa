package view

import (
	"fmt"
	"strconv"

	"github.com/aretw0/arbor/pkg/domain"
)

// Frame is the write target of a single view run.
type Frame struct {
	view  *View
	scope *Scope
	prev  map[string]*View
	seen  map[string]int
}

// Scope returns the scope the frame renders in.
func (f *Frame) Scope() *Scope { return f.scope }

// View returns the view being rendered.
func (f *Frame) View() *View { return f.view }

// Renderer returns the renderer that owns the view.
func (f *Frame) Renderer() *Renderer { return f.view.renderer }

// Data returns the data context visible from the frame.
func (f *Frame) Data() any { return f.scope.Data() }

// Write appends text to the view output.
func (f *Frame) Write(p []byte) (int, error) {
	f.WriteString(string(p))
	return len(p), nil
}

// WriteString appends text to the view output.
func (f *Frame) WriteString(s string) {
	if s == "" {
		return
	}
	parts := f.view.parts
	if n := len(parts); n > 0 && parts[n-1].child == nil {
		parts[n-1].text += s
		return
	}
	f.view.parts = append(parts, part{text: s})
}

// Mount renders r as a child view. A component type gets a scope of its
// own; anything else renders in the frame's scope. A child mounted under
// the same key on the previous run is kept instead of rerendered.
func (f *Frame) Mount(key string, r Renderable) error {
	key = f.uniqueKey(key)
	if _, ok := f.reuse(key); ok {
		return nil
	}
	_, err := f.mount(key, f.scope, r)
	return err
}

// MountScope renders r as a child view in an explicit scope.
func (f *Frame) MountScope(key string, scope *Scope, r Renderable) (*View, error) {
	key = f.uniqueKey(key)
	if child, ok := f.reuse(key); ok {
		return child, nil
	}
	return f.view.renderer.mountChild(f, key, scope, r)
}

// With renders r under a scope whose data context is data.
func (f *Frame) With(key string, data func() any, r Renderable) error {
	key = f.uniqueKey("with:" + key)
	if _, ok := f.reuse(key); ok {
		return nil
	}
	scope := NewScope(f.scope, KindWith, key).SetData(data)
	_, err := f.mount(key, scope, r)
	return err
}

func (f *Frame) mount(key string, parent *Scope, r Renderable) (*View, error) {
	scope := parent
	if inst, ok := r.(Instantiator); ok {
		scope = inst.Instantiate(parent)
	}
	return f.view.renderer.mountChild(f, key, scope, r)
}

// Yield renders a region of the enclosing layout.
func (f *Frame) Yield(region string) error {
	host, err := f.regionHost()
	if err != nil {
		return err
	}
	if region == "" {
		region = domain.MainRegion
	}
	return host.Yield(f, region)
}

// ContentFor assigns block to region on the enclosing layout.
func (f *Frame) ContentFor(region string, block Renderable) error {
	if region == "" {
		return &domain.ArgumentError{Op: "contentFor", Arg: "region"}
	}
	host, err := f.regionHost()
	if err != nil {
		return err
	}
	return host.ContentFor(f, region, block)
}

func (f *Frame) regionHost() (RegionHost, error) {
	ls := f.scope.FindKind(KindLayout)
	if ls == nil {
		return nil, domain.ErrLayoutNotFound
	}
	host, ok := ls.Host().(RegionHost)
	if !ok {
		return nil, domain.ErrLayoutNotFound
	}
	return host, nil
}

// Resolve finds a renderable by name. Inside a layout the layout's
// resolver decides; elsewhere own properties, then global templates, then
// global helpers are consulted.
func (f *Frame) Resolve(name string) (Renderable, error) {
	if name == "" {
		return nil, &domain.ArgumentError{Op: "include", Arg: "name"}
	}
	if ls := f.scope.FindKind(KindLayout); ls != nil {
		if res, ok := ls.Host().(Resolver); ok {
			return res.Resolve(name, f.scope)
		}
	}
	r := f.view.renderer
	if v, _, ok := f.scope.Lookup(name); ok {
		if out, ok := f.renderable(v); ok {
			return out, nil
		}
	}
	if t, ok, err := FindTemplate(r.templates, name); err != nil {
		return nil, err
	} else if ok {
		return t, nil
	}
	if r.helpers != nil {
		if h, ok := r.helpers.Helper(name); ok {
			if out, ok := f.renderable(h); ok {
				return out, nil
			}
		}
	}
	r.emitLookupFailed(name)
	return nil, &domain.TemplateNotFoundError{Name: name}
}

func (f *Frame) renderable(v any) (Renderable, bool) {
	switch x := v.(type) {
	case Constant:
		return x, true
	case Helper:
		return Bind(x, f.Data()), true
	case func(any, ...any) (any, error):
		return Bind(x, f.Data()), true
	case Renderable:
		return x, true
	}
	return nil, false
}

// Include resolves name and mounts the result.
func (f *Frame) Include(name string) error {
	r, err := f.Resolve(name)
	if err != nil {
		return err
	}
	return f.Mount("include:"+name, r)
}

// Helper looks up a helper through the helper-host chain, falling back to
// the global helpers, and invokes it with the frame data as receiver.
func (f *Frame) Helper(name string, args ...any) (any, error) {
	v, ok := f.scope.LookupHelper(name)
	if !ok && f.view.renderer.helpers != nil {
		v, ok = f.view.renderer.helpers.Helper(name)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrHelperNotFound, name)
	}
	return call(v, f.Data(), args...)
}

// Emit writes v: renderables are mounted, other values are printed.
func (f *Frame) Emit(v any) error {
	switch x := v.(type) {
	case nil:
		return nil
	case Renderable:
		return f.Mount("emit:"+nameOf(x), x)
	case string:
		f.WriteString(x)
	case fmt.Stringer:
		f.WriteString(x.String())
	default:
		fmt.Fprint(f, x)
	}
	return nil
}

// uniqueKey disambiguates repeated keys within one run by position.
func (f *Frame) uniqueKey(key string) string {
	if f.seen == nil {
		f.seen = make(map[string]int)
	}
	n := f.seen[key]
	f.seen[key]++
	if n == 0 {
		return key
	}
	return key + "#" + strconv.Itoa(n)
}

func (f *Frame) reuse(key string) (*View, bool) {
	child, ok := f.prev[key]
	if !ok || child.stopped {
		return nil, false
	}
	delete(f.prev, key)
	f.adopt(key, child)
	return child, true
}

func (f *Frame) adopt(key string, child *View) {
	f.view.children[key] = child
	f.view.parts = append(f.view.parts, part{child: child})
}
