package reactive

// Dependency is a source of change that computations subscribe to by
// calling Depend while they run.
type Dependency struct {
	rt         *Runtime
	dependents []*Computation
}

// NewDependency creates a Dependency bound to the runtime.
func (rt *Runtime) NewDependency() *Dependency {
	return &Dependency{rt: rt}
}

// Depend subscribes the current computation, if any. It reports whether a
// new subscription was added.
func (d *Dependency) Depend() bool {
	c := d.rt.current
	if c == nil || c.stopped {
		return false
	}
	for _, existing := range d.dependents {
		if existing == c {
			return false
		}
	}
	d.dependents = append(d.dependents, c)
	c.OnInvalidate(func() { d.remove(c) })
	return true
}

// Changed invalidates every subscribed computation, in subscription order.
func (d *Dependency) Changed() {
	subs := make([]*Computation, len(d.dependents))
	copy(subs, d.dependents)
	for _, c := range subs {
		c.Invalidate()
	}
}

// HasDependents reports whether any computation is subscribed.
func (d *Dependency) HasDependents() bool {
	return len(d.dependents) > 0
}

func (d *Dependency) remove(c *Computation) {
	for i, existing := range d.dependents {
		if existing == c {
			d.dependents = append(d.dependents[:i], d.dependents[i+1:]...)
			return
		}
	}
}
