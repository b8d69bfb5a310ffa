package reactive

// Memo caches a derived value. It recomputes on the first Get after one of
// the dependencies read by fn changed, and notifies its own readers when
// that happens.
type Memo[T any] struct {
	rt    *Runtime
	fn    func() T
	dep   *Dependency
	comp  *Computation
	value T
	valid bool
	runs  int
}

// NewMemo creates a Memo. fn is not called until the first Get.
func NewMemo[T any](rt *Runtime, fn func() T) *Memo[T] {
	return &Memo[T]{rt: rt, fn: fn, dep: rt.NewDependency()}
}

// Get subscribes the current computation and returns the cached value,
// recomputing it first if it is stale.
func (m *Memo[T]) Get() T {
	m.dep.Depend()
	if !m.valid {
		m.recompute()
	}
	return m.value
}

// Runs reports how many times fn was evaluated.
func (m *Memo[T]) Runs() int {
	return m.runs
}

// Stop releases the memo's dependencies. A later Get recomputes.
func (m *Memo[T]) Stop() {
	if m.comp != nil {
		c := m.comp
		m.comp = nil
		c.Stop()
	}
	m.valid = false
}

func (m *Memo[T]) recompute() {
	if old := m.comp; old != nil {
		m.comp = nil
		old.Stop()
	}

	c := m.rt.newComputation(nil)
	c.lazy = true
	c.OnInvalidate(func() {
		if m.comp != c {
			return
		}
		m.valid = false
		m.dep.Changed()
	})
	m.comp = c

	prev := m.rt.current
	m.rt.current = c
	defer func() { m.rt.current = prev }()

	m.value = m.fn()
	m.valid = true
	m.runs++
}
