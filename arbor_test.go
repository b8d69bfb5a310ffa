package arbor_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/layout"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/schema"
	"github.com/aretw0/arbor/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pages = map[string]string{
	"Page":   `<main>{{yield}}</main><aside>{{yield "aside"}}</aside>`,
	"Home":   `<h1>{{with .}}{{.title}}{{end}}</h1>`,
	"About":  `about`,
	"Banner": `banner`,
}

func newManager(t *testing.T, opts ...arbor.Option) *arbor.Manager {
	t.Helper()
	opts = append([]arbor.Option{arbor.WithTemplates(pages), arbor.WithStrictFlush(true)}, opts...)
	m, err := arbor.New("", opts...)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func TestManager_UnrenderedCalls(t *testing.T) {
	m := newManager(t)

	var unrendered *domain.UnrenderedStateError
	err := m.SetRegion("main", "Home")
	require.ErrorAs(t, err, &unrendered)
	assert.Equal(t, "SetRegion", unrendered.Method)

	_, err = m.Output()
	assert.ErrorAs(t, err, &unrendered)
	_, err = m.RegionKeys()
	assert.ErrorAs(t, err, &unrendered)
	assert.False(t, m.Rendered())
}

func TestManager_RenderAndUpdate(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.Render(layout.Props{Template: "Page"}))

	out, err := m.Output()
	require.NoError(t, err)
	assert.Equal(t, "<main></main><aside></aside>", out)

	require.NoError(t, m.SetRegion("main", "Home"))
	require.NoError(t, m.SetRegion("aside", "Banner"))
	require.NoError(t, m.SetData(map[string]any{"title": "Welcome"}))

	out, err = m.Output()
	require.NoError(t, err)
	assert.Equal(t, "<main><h1>Welcome</h1></main><aside>banner</aside>", out)

	keys, err := m.RegionKeys()
	require.NoError(t, err)
	assert.Contains(t, keys, "aside")

	require.NoError(t, m.ClearRegion("aside"))
	var buf bytes.Buffer
	require.NoError(t, m.Insert(&buf))
	assert.Equal(t, "<main><h1>Welcome</h1></main><aside></aside>", buf.String())

	name, err := m.Layout()
	require.NoError(t, err)
	assert.Equal(t, "Page", name)
}

func TestManager_RenderReplacesLayout(t *testing.T) {
	var stopped int
	m := newManager(t, arbor.WithLifecycleHooks(domain.LifecycleHooks{
		OnViewStopped: func(*domain.ViewEvent) { stopped++ },
	}))
	require.NoError(t, m.Render(layout.Props{Template: "Page", Regions: map[string]string{"main": "About"}}))
	require.NoError(t, m.Render(layout.Props{Template: "About"}))
	assert.Positive(t, stopped)

	out, err := m.Output()
	require.NoError(t, err)
	assert.Equal(t, "about", out)
}

func TestManager_FailedRenderKeepsLayout(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.Render(layout.Props{Template: "Page", Regions: map[string]string{"main": "About"}}))

	err := m.Render(layout.Props{Template: "Bogus"})
	require.True(t, domain.IsTemplateNotFound(err), "got %v", err)
	assert.True(t, m.Rendered())

	out, err := m.Output()
	require.NoError(t, err)
	assert.Equal(t, "<main>about</main><aside></aside>", out)
}

func TestManager_CompileErrorIsNotMissingTemplate(t *testing.T) {
	m := newManager(t, arbor.WithLoader(memory.NewLoader(map[string]string{"Broken": "{{if}}"})))

	err := m.Render(layout.Props{Template: "Broken"})
	var compileErr *domain.TemplateCompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "Broken", compileErr.Name)
	assert.False(t, domain.IsTemplateNotFound(err))

	require.NoError(t, m.Render(layout.Props{Template: "Page"}))
	require.NoError(t, m.SetRegion("main", "Broken"))
	_, err = m.Output()
	require.ErrorAs(t, err, &compileErr)
	assert.Contains(t, err.Error(), "failed to compile")
}

func TestManager_StrictFlushReportsMissingTemplate(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.Render(layout.Props{Template: "Page"}))
	require.NoError(t, m.SetRegion("main", "Nope"))

	_, err := m.Output()
	require.Error(t, err)
	assert.True(t, domain.IsTemplateNotFound(err))
}

func TestManager_Helpers(t *testing.T) {
	m := newManager(t, arbor.WithHelpers(map[string]any{
		"greeting": view.Helper(func(receiver any, args ...any) (any, error) {
			return "hi " + args[0].(string), nil
		}),
		"version": "1.0",
	}))
	require.NoError(t, m.Registry().RegisterSource("Greet", `{{helper "greeting" "bob"}} v{{helper "version"}}`))
	require.NoError(t, m.Render(layout.Props{Template: "Greet"}))

	out, err := m.Output()
	require.NoError(t, err)
	assert.Equal(t, "hi bob v1.0", out)
}

func TestManager_LoaderNestedLayout(t *testing.T) {
	loader, err := memory.NewFromDocuments(
		ports.TemplateDocument{Name: "Shell", Source: `[{{yield}}]`},
		ports.TemplateDocument{Name: "Card", Source: `card`, Layout: map[string]any{"template": "Shell"}},
	)
	require.NoError(t, err)

	m := newManager(t, arbor.WithLoader(loader))
	require.NoError(t, m.Render(layout.Props{Template: "Page", Regions: map[string]string{"main": "Card"}}))

	out, err := m.Output()
	require.NoError(t, err)
	assert.Equal(t, "<main>[card]</main><aside></aside>", out)

	names, err := m.Templates(context.Background())
	require.NoError(t, err)
	assert.Contains(t, names, "Card")
	assert.Contains(t, names, "Home")
}

func TestManager_SaveRestore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	m := newManager(t, arbor.WithSnapshotStore(store))
	require.NoError(t, m.Render(layout.Props{Template: "Page"}))
	require.NoError(t, m.SetRegion("main", "About"))
	require.NoError(t, m.Save(ctx, "s1"))

	require.NoError(t, m.SetRegion("main", "Home"))
	require.NoError(t, m.SetRegion("aside", "Banner"))
	require.NoError(t, m.Restore(ctx, "s1"))

	out, err := m.Output()
	require.NoError(t, err)
	assert.Equal(t, "<main>about</main><aside></aside>", out)

	err = m.Restore(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrSnapshotNotFound))
}

func TestManager_SaveWithoutStore(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.Render(layout.Props{Template: "Page"}))
	assert.Error(t, m.Save(context.Background(), "x"))
}

func TestManager_ReloadKeepsInputs(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.Render(layout.Props{Template: "Page"}))
	require.NoError(t, m.SetRegion("main", "About"))
	require.NoError(t, m.Reload())

	region, err := m.Region("main")
	require.NoError(t, err)
	assert.Equal(t, "About", region)

	out, err := m.Output()
	require.NoError(t, err)
	assert.Equal(t, "<main>about</main><aside></aside>", out)
}

func TestManager_WatchUnsupported(t *testing.T) {
	m := newManager(t, arbor.WithLoader(memory.NewLoader(nil)))
	_, err := m.Watch(context.Background())
	assert.Error(t, err)
}

type liveLoader struct {
	mu      sync.Mutex
	src     string
	changes chan struct{}
}

func (l *liveLoader) set(src string) {
	l.mu.Lock()
	l.src = src
	l.mu.Unlock()
	l.changes <- struct{}{}
}

func (l *liveLoader) LoadTemplate(_ context.Context, name string) (*ports.TemplateDocument, error) {
	if name != "Live" {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, name)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return &ports.TemplateDocument{Name: name, Source: l.src}, nil
}

func (l *liveLoader) ListTemplates(context.Context) ([]string, error) {
	return []string{"Live"}, nil
}

func (l *liveLoader) Watch(context.Context) (<-chan struct{}, error) {
	return l.changes, nil
}

func TestManager_WatchReloads(t *testing.T) {
	loader := &liveLoader{src: "v1", changes: make(chan struct{})}
	m := newManager(t, arbor.WithLoader(loader))
	require.NoError(t, m.Render(layout.Props{Template: "Page", Regions: map[string]string{"main": "Live"}}))

	out, err := m.Output()
	require.NoError(t, err)
	assert.Equal(t, "<main>v1</main><aside></aside>", out)

	reloaded, err := m.Watch(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { close(loader.changes) })

	loader.set("v2")
	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("no reload signal")
	}

	out, err = m.Output()
	require.NoError(t, err)
	assert.Equal(t, "<main>v2</main><aside></aside>", out)
}

func TestManager_ResumeAndSnapshots(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, arbor.WithSnapshotStore(memory.NewStore()))
	require.NoError(t, m.Render(layout.Props{Template: "Page"}))
	require.NoError(t, m.SetRegion("main", "About"))

	restored, err := m.Resume(ctx, "visitor")
	require.NoError(t, err)
	assert.False(t, restored)

	require.NoError(t, m.SetRegion("main", "Home"))
	restored, err = m.Resume(ctx, "visitor")
	require.NoError(t, err)
	assert.True(t, restored)

	region, err := m.Region("main")
	require.NoError(t, err)
	assert.Equal(t, "About", region)

	ids, err := m.Snapshots(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"visitor"}, ids)

	require.NoError(t, m.DeleteSnapshot(ctx, "visitor"))
	ids, err = m.Snapshots(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestManager_DataSchema(t *testing.T) {
	s, err := schema.ParseTypeMap(map[string]string{"title": "string"})
	require.NoError(t, err)
	m := newManager(t, arbor.WithDataSchema(s))

	err = m.Render(layout.Props{Template: "Page", Data: map[string]any{"title": 1}})
	assert.NotEmpty(t, schema.ValidationErrors(err))
	assert.False(t, m.Rendered())

	require.NoError(t, m.Render(layout.Props{Template: "Page", Data: map[string]any{"title": "ok"}}))
	err = m.SetData(map[string]any{})
	assert.ErrorContains(t, err, `field "title": required`)

	data, err := m.Data()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "ok"}, data)
}
