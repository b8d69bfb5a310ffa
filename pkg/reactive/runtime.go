package reactive

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
)

// DefaultMaxFlushCycles bounds the number of reruns a single Flush performs.
const DefaultMaxFlushCycles = 10000

// Runtime owns the current-computation stack and the pending queue.
type Runtime struct {
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	maxCycles int

	current  *Computation
	pending  []*Computation
	flushing bool
	nextID   int
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for errors swallowed by lenient flushes.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithLifecycleHooks registers the OnFlush hook.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(rt *Runtime) {
		rt.hooks = hooks
	}
}

// WithMaxFlushCycles overrides DefaultMaxFlushCycles.
func WithMaxFlushCycles(n int) Option {
	return func(rt *Runtime) {
		if n > 0 {
			rt.maxCycles = n
		}
	}
}

// New creates a Runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		logger:    slog.New(slog.DiscardHandler),
		maxCycles: DefaultMaxFlushCycles,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Pending reports how many computations wait for the next flush.
func (rt *Runtime) Pending() int {
	n := 0
	for _, c := range rt.pending {
		if !c.stopped && c.invalidated {
			n++
		}
	}
	return n
}

// Autorun creates a computation and runs it immediately. If the first run
// fails the computation is stopped and the error returned.
func (rt *Runtime) Autorun(fn func(*Computation) error) (*Computation, error) {
	c := rt.newComputation(fn)
	c.firstRun = true
	err := c.run()
	c.firstRun = false
	if err != nil {
		c.Stop()
		return c, err
	}
	return c, nil
}

// Nonreactive runs fn without a current computation, so reads inside it
// create no dependencies.
func (rt *Runtime) Nonreactive(fn func()) {
	prev := rt.current
	rt.current = nil
	defer func() { rt.current = prev }()
	fn()
}

// NonreactiveValue is Nonreactive for functions returning a value.
func NonreactiveValue[T any](rt *Runtime, fn func() T) T {
	var out T
	rt.Nonreactive(func() { out = fn() })
	return out
}

type flushConfig struct {
	throwFirstError bool
}

// FlushOption configures a single Flush call.
type FlushOption func(*flushConfig)

// ThrowFirstError makes Flush stop at the first failing computation and
// return its error. Computations still queued stay queued.
func ThrowFirstError() FlushOption {
	return func(c *flushConfig) {
		c.throwFirstError = true
	}
}

// Flush reruns every invalidated computation until the queue is empty.
// Without ThrowFirstError, failing computations are logged and skipped.
func (rt *Runtime) Flush(opts ...FlushOption) error {
	if rt.flushing || rt.current != nil {
		return domain.ErrFlushInProgress
	}

	cfg := flushConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	rt.flushing = true
	defer func() { rt.flushing = false }()

	start := time.Now()
	reruns, failures := 0, 0
	report := func() {
		if rt.hooks.OnFlush != nil {
			rt.hooks.OnFlush(&domain.FlushEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventFlush},
				Reruns:    reruns,
				Errors:    failures,
				Duration:  time.Since(start),
			})
		}
	}

	for len(rt.pending) > 0 {
		c := rt.pending[0]
		rt.pending = rt.pending[1:]
		if c.stopped || !c.invalidated {
			continue
		}

		reruns++
		if reruns > rt.maxCycles {
			rt.pending = nil
			report()
			return fmt.Errorf("%w (%d)", domain.ErrFlushLimit, rt.maxCycles)
		}

		if err := c.run(); err != nil {
			failures++
			if cfg.throwFirstError {
				report()
				return err
			}
			rt.logger.Error("Computation failed during flush", "computation", c.id, "error", err)
		}
	}

	report()
	return nil
}

func (rt *Runtime) newComputation(fn func(*Computation) error) *Computation {
	rt.nextID++
	return &Computation{rt: rt, id: rt.nextID, fn: fn}
}

func (rt *Runtime) schedule(c *Computation) {
	rt.pending = append(rt.pending, c)
}
