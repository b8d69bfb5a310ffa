package view

// Kind tags the structural class of a scope.
type Kind string

const (
	KindRoot     Kind = "root"
	KindLayout   Kind = "layout"
	KindTemplate Kind = "template"
	KindYield    Kind = "yield"
	KindWith     Kind = "with"
	KindBlock    Kind = "block"
)

// MaxDepth bounds every walk up the scope chain.
const MaxDepth = 512

// Scope is one node of the component hierarchy. The parent pointer is a
// back-reference only; scopes never own their ancestors.
type Scope struct {
	parent      *Scope
	kind        Kind
	name        string
	props       map[string]any
	host        any
	data        func() any
	helperHost  bool
	passthrough bool
}

// NewScope creates a scope under parent (nil for a root).
func NewScope(parent *Scope, kind Kind, name string) *Scope {
	return &Scope{parent: parent, kind: kind, name: name}
}

func (s *Scope) Parent() *Scope { return s.parent }
func (s *Scope) Kind() Kind     { return s.kind }
func (s *Scope) Name() string   { return s.name }
func (s *Scope) Host() any      { return s.host }

// Set defines an own property.
func (s *Scope) Set(name string, value any) *Scope {
	if s.props == nil {
		s.props = make(map[string]any)
	}
	s.props[name] = value
	return s
}

// Prop returns an own property.
func (s *Scope) Prop(name string) (any, bool) {
	v, ok := s.props[name]
	return v, ok
}

// SetHost attaches the object that owns this scope (a layout controller).
func (s *Scope) SetHost(host any) *Scope {
	s.host = host
	return s
}

// SetData gives the scope its own data context.
func (s *Scope) SetData(fn func() any) *Scope {
	s.data = fn
	return s
}

// HasData reports whether the scope defines its own data context.
func (s *Scope) HasData() bool { return s.data != nil }

// SetHelperHost marks the scope as a helper boundary for LookupHelper.
func (s *Scope) SetHelperHost(v bool) *Scope {
	s.helperHost = v
	return s
}

// SetPassthrough lets helper lookups continue past this helper host.
func (s *Scope) SetPassthrough(v bool) *Scope {
	s.passthrough = v
	return s
}

func (s *Scope) HelperHost() bool  { return s.helperHost }
func (s *Scope) Passthrough() bool { return s.passthrough }

// Walk visits s and its ancestors until fn returns false or MaxDepth is hit.
func (s *Scope) Walk(fn func(*Scope) bool) {
	cur := s
	for depth := 0; cur != nil && depth < MaxDepth; depth++ {
		if !fn(cur) {
			return
		}
		cur = cur.parent
	}
}

// Lookup returns the nearest own property called name and the scope that
// defines it.
func (s *Scope) Lookup(name string) (any, *Scope, bool) {
	var (
		value any
		owner *Scope
	)
	s.Walk(func(cur *Scope) bool {
		if v, ok := cur.props[name]; ok {
			value, owner = v, cur
			return false
		}
		return true
	})
	return value, owner, owner != nil
}

// LookupHelper searches helper hosts only. The first helper host without
// the name ends the search unless it is marked passthrough.
func (s *Scope) LookupHelper(name string) (any, bool) {
	var (
		value any
		found bool
	)
	s.Walk(func(cur *Scope) bool {
		if !cur.helperHost {
			return true
		}
		if v, ok := cur.props[name]; ok {
			value, found = v, true
			return false
		}
		return cur.passthrough
	})
	return value, found
}

// FindKind returns the nearest scope (s included) of the given kind.
func (s *Scope) FindKind(kind Kind) *Scope {
	var out *Scope
	s.Walk(func(cur *Scope) bool {
		if cur.kind == kind {
			out = cur
			return false
		}
		return true
	})
	return out
}

// Data returns the data context of the nearest scope that defines one,
// or nil at the root.
func (s *Scope) Data() any {
	var fn func() any
	s.Walk(func(cur *Scope) bool {
		if cur.data != nil {
			fn = cur.data
			return false
		}
		return true
	})
	if fn == nil {
		return nil
	}
	return fn()
}
