package reactive

// Computation is a function rerun whenever a dependency it read changes.
type Computation struct {
	rt  *Runtime
	id  int
	fn  func(*Computation) error
	// lazy computations are never queued; invalidation only fires callbacks.
	lazy bool

	invalidated bool
	stopped     bool
	firstRun    bool

	onInvalidate []func()
	onStop       []func()
}

// ID returns the runtime-unique id of the computation.
func (c *Computation) ID() int { return c.id }

// FirstRun reports whether the computation is inside its initial run.
func (c *Computation) FirstRun() bool { return c.firstRun }

// Stopped reports whether Stop was called.
func (c *Computation) Stopped() bool { return c.stopped }

// OnInvalidate registers fn to run the next time the computation is
// invalidated. If it already is, fn runs immediately.
func (c *Computation) OnInvalidate(fn func()) {
	if c.invalidated {
		c.rt.Nonreactive(fn)
		return
	}
	c.onInvalidate = append(c.onInvalidate, fn)
}

// OnStop registers fn to run when the computation is stopped.
func (c *Computation) OnStop(fn func()) {
	if c.stopped {
		c.rt.Nonreactive(fn)
		return
	}
	c.onStop = append(c.onStop, fn)
}

// Invalidate marks the computation for rerun on the next flush.
func (c *Computation) Invalidate() {
	if c.invalidated {
		return
	}
	c.invalidated = true
	if !c.stopped && !c.lazy {
		c.rt.schedule(c)
	}

	callbacks := c.onInvalidate
	c.onInvalidate = nil
	c.rt.Nonreactive(func() {
		for _, fn := range callbacks {
			fn()
		}
	})
}

// Stop prevents any further reruns and releases all dependencies.
func (c *Computation) Stop() {
	if c.stopped {
		return
	}
	c.stopped = true
	c.Invalidate()

	callbacks := c.onStop
	c.onStop = nil
	c.rt.Nonreactive(func() {
		for _, fn := range callbacks {
			fn()
		}
	})
}

func (c *Computation) run() error {
	prev := c.rt.current
	c.rt.current = c
	c.invalidated = false
	defer func() { c.rt.current = prev }()
	return c.fn(c)
}
