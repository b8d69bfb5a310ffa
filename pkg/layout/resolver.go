package layout

import (
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/view"
)

// Strategy is one lookup scope consulted by the Resolver. A non-nil
// error stops the lookup: the scope knows the name but cannot produce it.
type Strategy interface {
	Name() string
	Find(name string, from *view.Scope) (any, bool, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc struct {
	Label string
	Fn    func(name string, from *view.Scope) (any, bool)
}

func (s StrategyFunc) Name() string { return s.Label }

func (s StrategyFunc) Find(name string, from *view.Scope) (any, bool, error) {
	v, ok := s.Fn(name, from)
	return v, ok, nil
}

type templateScope struct {
	src view.TemplateSource
}

func (templateScope) Name() string { return "templates" }

func (s templateScope) Find(name string, _ *view.Scope) (any, bool, error) {
	return view.FindTemplate(s.src, name)
}

// ContentBlockScope finds blocks registered with contentFor.
func ContentBlockScope(blocks *ContentBlocks) Strategy {
	return StrategyFunc{Label: "content", Fn: func(name string, _ *view.Scope) (any, bool) {
		return blocks.Get(name)
	}}
}

// AncestorScope finds own properties of the scope chain.
func AncestorScope() Strategy {
	return StrategyFunc{Label: "ancestor", Fn: func(name string, from *view.Scope) (any, bool) {
		if from == nil {
			return nil, false
		}
		v, _, ok := from.Lookup(name)
		return v, ok
	}}
}

// TemplateScope finds globally registered templates. Sources that can
// report load failures surface them instead of a not-found error.
func TemplateScope(src view.TemplateSource) Strategy {
	return templateScope{src: src}
}

// HelperScope finds globally registered helpers.
func HelperScope(src view.HelperSource) Strategy {
	return StrategyFunc{Label: "helpers", Fn: func(name string, _ *view.Scope) (any, bool) {
		if src == nil {
			return nil, false
		}
		return src.Helper(name)
	}}
}

// Resolver turns a name into something renderable by trying each strategy
// in order. Helpers found along the way are bound to the receiver.
type Resolver struct {
	strategies []Strategy
	receiver   any
	logger     *slog.Logger
	onFail     func(name string)
}

// NewResolver creates a resolver that binds helpers to receiver.
func NewResolver(receiver any, logger *slog.Logger, strategies ...Strategy) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{strategies: strategies, receiver: receiver, logger: logger}
}

// Resolve looks name up from the given scope.
func (r *Resolver) Resolve(name string, from *view.Scope) (view.Renderable, error) {
	if name == "" {
		return nil, &domain.ArgumentError{Op: "lookupTemplate", Arg: "name"}
	}
	for _, s := range r.strategies {
		v, ok, err := s.Find(name, from)
		if err != nil {
			r.logger.Debug("Template lookup failed", "name", name, "scope", s.Name(), "err", err)
			return nil, err
		}
		if !ok || v == nil {
			continue
		}
		if out, ok := r.bind(v); ok {
			r.logger.Debug("Template resolved", "name", name, "scope", s.Name())
			return out, nil
		}
	}
	if r.onFail != nil {
		r.onFail(name)
	}
	return nil, &domain.TemplateNotFoundError{Name: name}
}

func (r *Resolver) bind(v any) (view.Renderable, bool) {
	switch x := v.(type) {
	case view.Constant:
		return x, true
	case view.Helper:
		return view.Bind(x, r.receiver), true
	case func(any, ...any) (any, error):
		return view.Bind(x, r.receiver), true
	case view.Renderable:
		return x, true
	}
	return nil, false
}
