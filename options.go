package arbor

import (
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/schema"
)

// Option defines a functional option for configuring the Manager.
type Option func(*Manager)

// WithLifecycleHooks registers observability hooks. Repeated calls merge.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = m.hooks.Merge(hooks)
	}
}

// WithLoader injects a TemplateLoader, bypassing the default Loam vault.
func WithLoader(l ports.TemplateLoader) Option {
	return func(m *Manager) {
		m.loader = l
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithSnapshotStore enables Save and Restore.
func WithSnapshotStore(s ports.SnapshotStore) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// WithLocker serializes snapshot writes across processes.
func WithLocker(l ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = l
	}
}

// WithStrictFlush makes every flush fail on the first render error instead
// of logging it.
func WithStrictFlush(strict bool) Option {
	return func(m *Manager) {
		m.strict = strict
	}
}

// WithMaxFlushCycles bounds the reruns of a single flush.
func WithMaxFlushCycles(n int) Option {
	return func(m *Manager) {
		m.maxFlush = n
	}
}

// WithTemplates registers template sources by name.
func WithTemplates(sources map[string]string) Option {
	return func(m *Manager) {
		for name, src := range sources {
			m.sources[name] = src
		}
	}
}

// WithHelpers registers global helpers. Values that are not view.Helper
// functions are registered as constants.
func WithHelpers(helpers map[string]any) Option {
	return func(m *Manager) {
		for name, h := range helpers {
			m.helpers[name] = h
		}
	}
}

// WithDataSchema rejects data contexts that do not match s.
func WithDataSchema(s schema.Schema) Option {
	return func(m *Manager) {
		m.schema = s
	}
}
