package view

import (
	"errors"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
)

// Renderable is a unit the renderer can materialize.
type Renderable interface {
	Render(f *Frame) error
}

// RenderFunc adapts a function to Renderable.
type RenderFunc func(f *Frame) error

func (fn RenderFunc) Render(f *Frame) error { return fn(f) }

// Named renderables report the name used in events and child keys.
type Named interface {
	Name() string
}

// Instantiator is implemented by component types: rendering them creates
// a scope of their own under the mounting scope.
type Instantiator interface {
	Instantiate(parent *Scope) *Scope
}

// RegionHost is implemented by the owner of a KindLayout scope.
type RegionHost interface {
	Yield(f *Frame, region string) error
	ContentFor(f *Frame, region string, block Renderable) error
}

// Resolver is implemented by hosts that resolve names for Include.
type Resolver interface {
	Resolve(name string, from *Scope) (Renderable, error)
}

// TemplateSource is the global template registry.
type TemplateSource interface {
	Lookup(name string) (Renderable, bool)
}

// CheckedSource is a TemplateSource that can explain why a name it knows
// could not be produced.
type CheckedSource interface {
	TemplateSource
	// Find returns an error wrapping domain.ErrDocumentNotFound for
	// unknown names.
	Find(name string) (Renderable, error)
}

// FindTemplate looks name up in src. Unknown names report ok false and a
// nil error; a known name that fails to load reports the failure.
func FindTemplate(src TemplateSource, name string) (r Renderable, ok bool, err error) {
	if src == nil {
		return nil, false, nil
	}
	cs, checked := src.(CheckedSource)
	if !checked {
		r, ok = src.Lookup(name)
		return r, ok, nil
	}
	r, err = cs.Find(name)
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return r, r != nil, nil
}

// HelperSource is the global helper registry.
type HelperSource interface {
	Helper(name string) (any, bool)
}

// Text renders a constant string.
type Text string

func (t Text) Render(f *Frame) error {
	f.WriteString(string(t))
	return nil
}

// Named wraps r so that its views carry name.
func WithName(name string, r Renderable) Renderable {
	return &named{Renderable: r, name: name}
}

type named struct {
	Renderable
	name string
}

func (n *named) Name() string { return n.name }

// AsPassthrough marks the scope created by a component type as
// passthrough, so helpers of the enclosing templates stay reachable from
// inside it. Non-component renderables are returned unchanged.
func AsPassthrough(r Renderable) Renderable {
	inst, ok := r.(Instantiator)
	if !ok {
		return r
	}
	return &passthrough{Renderable: r, inst: inst}
}

type passthrough struct {
	Renderable
	inst Instantiator
}

func (p *passthrough) Instantiate(parent *Scope) *Scope {
	return p.inst.Instantiate(parent).SetPassthrough(true)
}

func (p *passthrough) Name() string { return nameOf(p.Renderable) }

func nameOf(r Renderable) string {
	switch x := r.(type) {
	case Named:
		return x.Name()
	case *Bound:
		return "helper"
	case Text:
		return "text"
	}
	return fmt.Sprintf("%T", r)
}
