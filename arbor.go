package arbor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/aretw0/arbor/pkg/adapters/loam"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/layout"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/reactive"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/schema"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/aretw0/arbor/pkg/view"
	loamlib "github.com/aretw0/loam"
)

// Manager is the high-level entry point: it proxies calls to the active
// layout controller. Calls are serialized; the layout core itself is not
// safe for concurrent use.
type Manager struct {
	mu sync.Mutex

	rt       *reactive.Runtime
	renderer *view.Renderer
	registry *registry.Registry
	sessions *session.Manager
	loader   ports.TemplateLoader
	store    ports.SnapshotStore
	locker   ports.DistributedLocker
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	strict   bool
	maxFlush int
	schema   schema.Schema

	sources map[string]string
	helpers map[string]any

	current *layout.Controller
	props   layout.Props
	opts    []layout.Option

	Name string
}

// New initializes a Manager.
// If repoPath is set and no loader is injected, templates are read from the
// Loam vault at repoPath. With neither, only templates registered through
// options or the registry are available.
func New(repoPath string, opts ...Option) (*Manager, error) {
	m := &Manager{
		sources: make(map[string]string),
		helpers: make(map[string]any),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.loader == nil && repoPath != "" {
		absPath, err := filepath.Abs(repoPath)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		m.Name = filepath.Base(absPath)

		// Strict mode keeps numbers in front matter as json.Number; the
		// manager never writes to the vault.
		repo, err := loamlib.Init(absPath,
			loamlib.WithStrict(true),
			loamlib.WithReadOnly(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize loam: %w", err)
		}
		m.loader = loam.New(loamlib.NewTypedRepository[loam.TemplateMetadata](repo))
	} else if repoPath != "" {
		m.Name = filepath.Base(repoPath)
	}

	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	if m.Name != "" {
		m.logger = m.logger.With("site", m.Name)
	}

	rtOpts := []reactive.Option{
		reactive.WithLogger(m.logger),
		reactive.WithLifecycleHooks(m.hooks),
	}
	if m.maxFlush > 0 {
		rtOpts = append(rtOpts, reactive.WithMaxFlushCycles(m.maxFlush))
	}
	m.rt = reactive.New(rtOpts...)

	regOpts := []registry.Option{registry.WithLogger(m.logger)}
	if m.loader != nil {
		regOpts = append(regOpts, registry.WithLoader(m.loader))
	}
	m.registry = registry.NewRegistry(regOpts...)
	m.renderer = view.NewRenderer(m.rt,
		view.WithTemplates(m.registry),
		view.WithHelpers(m.registry),
		view.WithLogger(m.logger),
		view.WithLifecycleHooks(m.hooks),
	)
	m.registry.SetCompiler(m.compile)

	if m.store != nil {
		sessOpts := []session.Option{session.WithLogger(m.logger)}
		if m.locker != nil {
			sessOpts = append(sessOpts, session.WithLocker(m.locker))
		}
		m.sessions = session.NewManager(m.store, sessOpts...)
	}

	for name, src := range m.sources {
		if err := m.registry.RegisterSource(name, src); err != nil {
			return nil, err
		}
	}
	for name, h := range m.helpers {
		m.registry.RegisterHelper(name, asHelper(h))
	}
	return m, nil
}

// compile builds a nested layout for documents with layout front matter
// and a plain template otherwise.
func (m *Manager) compile(doc *ports.TemplateDocument) (view.Renderable, error) {
	t, err := view.Parse(doc.Name, doc.Source)
	if err != nil {
		return nil, err
	}
	if len(doc.Layout) == 0 {
		return t, nil
	}
	props, err := layout.DecodeProps(doc.Layout)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", doc.Name, err)
	}
	return layout.NewType(m.renderer, props, layout.WithContent(t), layout.WithLogger(m.logger)), nil
}

func asHelper(h any) any {
	switch h.(type) {
	case view.Helper, *view.Bound, view.Constant, func(any, ...any) (any, error):
		return h
	case view.Renderable:
		return h
	}
	return view.Constant{Value: h}
}

// Registry returns the global template and helper registry.
func (m *Manager) Registry() *registry.Registry { return m.registry }

// Renderer returns the renderer, for building layout.Type values.
func (m *Manager) Renderer() *view.Renderer { return m.renderer }

// Loader returns the configured TemplateLoader, if any.
func (m *Manager) Loader() ports.TemplateLoader { return m.loader }

// Render creates a layout from props and makes it the active one. A
// previously active layout is destroyed once the new one has rendered; if
// rendering fails it stays active.
func (m *Manager) Render(props layout.Props, opts ...layout.Option) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.render(props, opts...)
}

func (m *Manager) render(props layout.Props, opts ...layout.Option) error {
	if props.Data != nil {
		if err := m.schema.Validate(props.Data); err != nil {
			return fmt.Errorf("layout data: %w", err)
		}
	}
	opts = append([]layout.Option{layout.WithLogger(m.logger)}, opts...)
	c := layout.New(m.renderer, props, opts...)
	if _, err := c.Render(nil); err != nil {
		c.Destroy()
		return err
	}
	if m.current != nil {
		m.current.Destroy()
	}
	m.current, m.props, m.opts = c, props, opts
	m.logger.Debug("Layout rendered", "template", c.GetTemplate())
	return m.flush()
}

// Rendered reports whether a layout is active.
func (m *Manager) Rendered() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

func (m *Manager) active(method string) (*layout.Controller, error) {
	if m.current == nil {
		return nil, &domain.UnrenderedStateError{Method: method}
	}
	return m.current, nil
}

// SetLayout changes the top-level template of the active layout.
func (m *Manager) SetLayout(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.active("SetLayout")
	if err != nil {
		return err
	}
	c.SetTemplate(name)
	return nil
}

// Layout returns the top-level template name.
func (m *Manager) Layout() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.active("Layout")
	if err != nil {
		return "", err
	}
	return c.GetTemplate(), nil
}

// SetData sets the layout data context.
func (m *Manager) SetData(v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.active("SetData")
	if err != nil {
		return err
	}
	if err := m.schema.Validate(v); err != nil {
		return fmt.Errorf("layout data: %w", err)
	}
	c.SetData(v)
	return nil
}

// Data returns the layout data context.
func (m *Manager) Data() (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.active("Data")
	if err != nil {
		return nil, err
	}
	return c.GetData(), nil
}

// SetRegion assigns a template to a region ("" means main).
func (m *Manager) SetRegion(region, tmpl string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.active("SetRegion")
	if err != nil {
		return err
	}
	c.SetRegion(region, tmpl)
	return nil
}

// Region returns the template assigned to a region.
func (m *Manager) Region(region string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.active("Region")
	if err != nil {
		return "", err
	}
	return c.GetRegion(region), nil
}

// ClearRegion empties a region.
func (m *Manager) ClearRegion(region string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.active("ClearRegion")
	if err != nil {
		return err
	}
	c.ClearRegion(region)
	return nil
}

// RegionKeys lists every region that was ever set.
func (m *Manager) RegionKeys() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.active("RegionKeys")
	if err != nil {
		return nil, err
	}
	return c.RegionKeys(), nil
}

// Regions copies the region table.
func (m *Manager) Regions() (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.active("Regions")
	if err != nil {
		return nil, err
	}
	return c.Regions(), nil
}

// Flush processes pending changes.
func (m *Manager) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flush()
}

func (m *Manager) flush() error {
	if m.strict {
		return m.rt.Flush(reactive.ThrowFirstError())
	}
	return m.rt.Flush()
}

// Output flushes and returns the rendered text.
func (m *Manager) Output() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.active("Output")
	if err != nil {
		return "", err
	}
	if err := m.flush(); err != nil {
		return "", err
	}
	return c.Output(), nil
}

// Insert writes the rendered output to w.
func (m *Manager) Insert(w io.Writer) error {
	out, err := m.Output()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// Snapshot captures the active layout.
func (m *Manager) Snapshot() (*domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.active("Snapshot")
	if err != nil {
		return nil, err
	}
	return c.Snapshot(), nil
}

var errNoStore = errors.New("arbor: no snapshot store configured")

// Save persists the active layout under id.
func (m *Manager) Save(ctx context.Context, id string) error {
	if m.sessions == nil {
		return errNoStore
	}
	snap, err := m.Snapshot()
	if err != nil {
		return err
	}
	return m.sessions.Save(ctx, id, snap)
}

// Restore loads a snapshot and applies it to the active layout.
func (m *Manager) Restore(ctx context.Context, id string) error {
	if m.sessions == nil {
		return errNoStore
	}
	snap, err := m.sessions.Load(ctx, id)
	if err != nil {
		return err
	}
	return m.Apply(snap)
}

// Resume restores id when it exists and saves the active layout under id
// otherwise. It reports whether a stored snapshot was applied.
func (m *Manager) Resume(ctx context.Context, id string) (bool, error) {
	if m.sessions == nil {
		return false, errNoStore
	}
	current, err := m.Snapshot()
	if err != nil {
		return false, err
	}
	snap, created, err := m.sessions.LoadOrInit(ctx, id, func() *domain.Snapshot {
		return current
	})
	if err != nil {
		return false, err
	}
	if created {
		return false, nil
	}
	return true, m.Apply(snap)
}

// Apply re-applies layout inputs captured by Snapshot and flushes.
func (m *Manager) Apply(snap *domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.active("Restore")
	if err != nil {
		return err
	}
	c.Restore(snap)
	return m.flush()
}

// Snapshots lists the stored snapshot ids.
func (m *Manager) Snapshots(ctx context.Context) ([]string, error) {
	if m.sessions == nil {
		return nil, errNoStore
	}
	return m.sessions.List(ctx)
}

// DeleteSnapshot removes a stored snapshot.
func (m *Manager) DeleteSnapshot(ctx context.Context, id string) error {
	if m.sessions == nil {
		return errNoStore
	}
	return m.sessions.Delete(ctx, id)
}

// Templates lists every template the registry can resolve.
func (m *Manager) Templates(ctx context.Context) ([]string, error) {
	return m.registry.Names(ctx)
}

// Reload drops templates cached from the loader and rebuilds the active
// layout with its current inputs.
func (m *Manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry.Invalidate()
	if m.current == nil {
		return nil
	}
	snap := m.current.Snapshot()
	if err := m.render(m.props, m.opts...); err != nil {
		return err
	}
	m.current.Restore(snap)
	return m.flush()
}

// Watch reloads whenever the loader reports a change, until ctx ends.
// Returns an error if the loader does not support watching.
func (m *Manager) Watch(ctx context.Context) (<-chan struct{}, error) {
	w, ok := m.loader.(ports.Watchable)
	if !ok {
		return nil, fmt.Errorf("current loader does not support watching")
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for range changes {
			if err := m.Reload(); err != nil {
				m.logger.Error("Reload failed", "err", err)
				continue
			}
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out, nil
}

// Close destroys the active layout.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.Destroy()
		m.current = nil
	}
}
