package layout

import (
	"slices"

	"github.com/aretw0/arbor/pkg/reactive"
)

// RegionStore maps region names to template names with one dependency per
// key, so readers of one region are not invalidated by writes to another.
type RegionStore struct {
	rt      *reactive.Runtime
	cells   map[string]*regionCell
	keysDep *reactive.Dependency
}

type regionCell struct {
	value string
	set   bool
	dep   *reactive.Dependency
}

// NewRegionStore creates an empty store.
func NewRegionStore(rt *reactive.Runtime) *RegionStore {
	return &RegionStore{
		rt:      rt,
		cells:   make(map[string]*regionCell),
		keysDep: rt.NewDependency(),
	}
}

func (s *RegionStore) cell(name string) *regionCell {
	c, ok := s.cells[name]
	if !ok {
		c = &regionCell{dep: s.rt.NewDependency()}
		s.cells[name] = c
	}
	return c
}

// Set stores value under name. Only readers of name are invalidated, and
// only when the value differs.
func (s *RegionStore) Set(name, value string) bool {
	c := s.cell(name)
	if c.set && c.value == value {
		return false
	}
	if !c.set {
		c.set = true
		s.keysDep.Changed()
	}
	c.value = value
	c.dep.Changed()
	return true
}

// Get returns the template name for name and registers a dependency on
// that key alone. Unset regions read as "".
func (s *RegionStore) Get(name string) string {
	c := s.cell(name)
	c.dep.Depend()
	return c.value
}

// Peek is Get without a dependency.
func (s *RegionStore) Peek(name string) (string, bool) {
	c, ok := s.cells[name]
	if !ok || !c.set {
		return "", false
	}
	return c.value, true
}

// Clear empties a region. A region that was never set is registered
// with an empty value.
func (s *RegionStore) Clear(name string) bool {
	return s.Set(name, "")
}

// Touch invalidates readers of name without changing its value.
func (s *RegionStore) Touch(name string) {
	if c, ok := s.cells[name]; ok {
		c.dep.Changed()
	}
}

// Keys returns the names of every region that was ever set, sorted.
func (s *RegionStore) Keys() []string {
	s.keysDep.Depend()
	out := make([]string, 0, len(s.cells))
	for k, c := range s.cells {
		if c.set {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// Snapshot copies every set region without registering dependencies.
func (s *RegionStore) Snapshot() map[string]string {
	out := make(map[string]string, len(s.cells))
	for k, c := range s.cells {
		if c.set {
			out[k] = c.value
		}
	}
	return out
}
