package reactive

import "reflect"

// Equal is the structural equality used by signals and region stores.
func Equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// Signal is a reactive value cell.
type Signal[T any] struct {
	dep   *Dependency
	value T
	equal func(a, b T) bool
}

// NewSignal creates a Signal compared with Equal.
func NewSignal[T any](rt *Runtime, initial T) *Signal[T] {
	return NewSignalFunc(rt, initial, func(a, b T) bool { return Equal(a, b) })
}

// NewSignalFunc creates a Signal with a custom equality function.
func NewSignalFunc[T any](rt *Runtime, initial T, equal func(a, b T) bool) *Signal[T] {
	return &Signal[T]{dep: rt.NewDependency(), value: initial, equal: equal}
}

// Read subscribes the current computation and returns the value.
func (s *Signal[T]) Read() T {
	s.dep.Depend()
	return s.value
}

// Peek returns the value without subscribing.
func (s *Signal[T]) Peek() T {
	return s.value
}

// Write stores v and notifies subscribers when it differs from the current
// value. It reports whether the value changed.
func (s *Signal[T]) Write(v T) bool {
	if s.equal(s.value, v) {
		return false
	}
	s.value = v
	s.dep.Changed()
	return true
}
