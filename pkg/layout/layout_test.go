package layout_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/layout"
	"github.com/aretw0/arbor/pkg/reactive"
	"github.com/aretw0/arbor/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type source struct {
	templates map[string]view.Renderable
	helpers   map[string]any
}

func (s *source) Lookup(name string) (view.Renderable, bool) {
	r, ok := s.templates[name]
	return r, ok
}

func (s *source) Helper(name string) (any, bool) {
	h, ok := s.helpers[name]
	return h, ok
}

type fixture struct {
	rt        *reactive.Runtime
	src       *source
	renderer  *view.Renderer
	created   map[string]int
	refreshed map[string]int
}

func newFixture(t *testing.T, tmpls map[string]string) *fixture {
	t.Helper()
	f := &fixture{
		rt:        reactive.New(),
		src:       &source{templates: map[string]view.Renderable{}, helpers: map[string]any{}},
		created:   map[string]int{},
		refreshed: map[string]int{},
	}
	for name, text := range tmpls {
		f.src.templates[name] = view.MustParse(name, text)
	}
	f.renderer = view.NewRenderer(f.rt,
		view.WithTemplates(f.src),
		view.WithHelpers(f.src),
		view.WithLifecycleHooks(domain.LifecycleHooks{
			OnViewCreated:   func(e *domain.ViewEvent) { f.created[e.Name]++ },
			OnViewRefreshed: func(e *domain.ViewEvent) { f.refreshed[e.Name]++ },
		}),
	)
	return f
}

func (f *fixture) render(t *testing.T, props layout.Props, opts ...layout.Option) *layout.Controller {
	t.Helper()
	c := layout.New(f.renderer, props, opts...)
	_, err := c.Render(nil)
	require.NoError(t, err)
	return c
}

func (f *fixture) flush(t *testing.T) {
	t.Helper()
	require.NoError(t, f.rt.Flush(reactive.ThrowFirstError()))
}

func TestLayout_SetTemplate(t *testing.T) {
	f := newFixture(t, map[string]string{
		"LayoutOne": "one",
		"LayoutTwo": "two",
	})
	c := f.render(t, layout.Props{Template: "LayoutOne"})
	assert.Equal(t, "one", c.Output())

	c.SetTemplate("LayoutTwo")
	f.flush(t)
	assert.Equal(t, "two", c.Output())
	assert.Equal(t, 1, f.created["LayoutOne"])
	assert.Equal(t, 1, f.created["LayoutTwo"])
}

func TestLayout_DefaultTemplate(t *testing.T) {
	f := newFixture(t, map[string]string{"LayoutOne": "one"})
	c := f.render(t, layout.Props{Template: "LayoutOne"})

	c.SetTemplate("")
	f.flush(t)
	assert.Equal(t, domain.DefaultLayout, c.GetTemplate())
	assert.Equal(t, "", c.Output())
}

func TestLayout_DefaultMainRegionRendersContent(t *testing.T) {
	f := newFixture(t, map[string]string{"Frame": "[{{yield}}]"})
	content := view.MustParse("Content", "{{with .}}{{.name}}{{end}}")
	c := f.render(t, layout.Props{Data: map[string]any{"name": "body"}}, layout.WithContent(content))
	assert.Equal(t, "body", c.Output())

	c.SetTemplate("Frame")
	f.flush(t)
	assert.Equal(t, "[body]", c.Output())

	c.ClearRegion("")
	f.flush(t)
	assert.Equal(t, "[body]", c.Output(), "a cleared main region falls back to the content")
}

func TestLayout_RegionRenderedOnce(t *testing.T) {
	f := newFixture(t, map[string]string{
		"LayoutWithOneYield": "<div>{{yield}}</div>",
		"One":                "one",
	})
	c := f.render(t, layout.Props{Template: "LayoutWithOneYield"})
	assert.Equal(t, "<div></div>", c.Output())

	c.SetRegion("", "One")
	f.flush(t)
	assert.Equal(t, "<div>one</div>", c.Output())
	assert.Equal(t, 1, f.created["One"])

	c.SetRegion(domain.MainRegion, "One")
	f.flush(t)
	assert.Equal(t, 1, f.created["One"])
	assert.Zero(t, f.refreshed["One"])
}

func TestLayout_RegionsAreIsolated(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Page":   "{{yield}}|{{yield \"footer\"}}",
		"One":    "one",
		"Footer": "foot",
	})
	c := f.render(t, layout.Props{Template: "Page", Regions: map[string]string{"main": "One"}})
	assert.Equal(t, "one|", c.Output())

	c.SetRegion("footer", "Footer")
	f.flush(t)
	assert.Equal(t, "one|foot", c.Output())
	assert.Zero(t, f.refreshed["yield:main"])
	assert.Equal(t, 1, f.refreshed["yield:footer"])
	assert.Zero(t, f.refreshed[domain.LayoutTemplate])
}

func TestLayout_DataRefreshKeepsViews(t *testing.T) {
	f := newFixture(t, map[string]string{
		"LayoutWithDataAndYields": `layout{{with .}}{{.title}}{{end}}{{yield}}{{yield "footer"}}`,
		"ChildWithData":           `child{{with .}}{{.title}}{{end}}`,
		"FooterWithData":          `footer{{with .}}{{.title}}{{end}}`,
	})
	c := f.render(t, layout.Props{Template: "LayoutWithDataAndYields"})
	c.SetRegion("", "ChildWithData")
	c.SetRegion("footer", "FooterWithData")
	f.flush(t)
	assert.Equal(t, "layoutchildfooter", c.Output())

	c.SetData(map[string]any{"title": 1})
	f.flush(t)
	assert.Equal(t, "layout1child1footer1", c.Output())
	assert.Equal(t, 1, f.created["ChildWithData"])
	assert.Equal(t, 1, f.created["FooterWithData"])
	assert.Zero(t, f.refreshed[domain.LayoutTemplate])

	assert.False(t, c.SetData(map[string]any{"title": 1}), "equal data is ignored")
}

func TestLayout_ContentFor(t *testing.T) {
	f := newFixture(t, map[string]string{
		"LayoutWithTwoYields": `{{yield}}{{yield "footer"}}`,
		"ContentForTests":     `{{contentFor "footer"}}main{{define "footer"}}footer{{end}}`,
		"footer":              "global",
	})
	c := f.render(t, layout.Props{Template: "LayoutWithTwoYields"})

	c.SetRegion("", "ContentForTests")
	f.flush(t)
	assert.Equal(t, "mainfooter", c.Output())
	assert.Equal(t, "footer", c.GetRegion("footer"))
}

func TestLayout_ContentForReplacesBlock(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Shell": `{{yield}}|{{yield "footer"}}`,
		"A":     `a{{contentFor "footer"}}{{define "footer"}}FA{{end}}`,
		"B":     `b{{contentFor "footer"}}{{define "footer"}}FB{{end}}`,
	})
	c := f.render(t, layout.Props{Template: "Shell", Regions: map[string]string{"main": "A"}})
	assert.Equal(t, "a|FA", c.Output())

	c.SetRegion("", "B")
	f.flush(t)
	assert.Equal(t, "b|FB", c.Output())
	created := f.created["footer"]

	c.SetData(map[string]any{"x": 1})
	f.flush(t)
	assert.Equal(t, "b|FB", c.Output())
	assert.Equal(t, created, f.created["footer"], "re-declaring the same block keeps the view")
}

func TestLayout_ClearUnsetRegionRegistersKey(t *testing.T) {
	f := newFixture(t, map[string]string{"Shell": `{{yield}}`})
	c := f.render(t, layout.Props{Template: "Shell"})
	c.ClearRegion("aside")
	assert.Contains(t, c.RegionKeys(), "aside")
	assert.Equal(t, "", c.GetRegion("aside"))
}

func TestLayout_ContentForNamedBlock(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Page": `{{contentFor "aside" "sidebar"}}{{yield "aside"}}{{define "sidebar"}}side{{end}}`,
	})
	c := f.render(t, layout.Props{Template: "Page"})
	assert.Equal(t, "side", c.Output())
}

func TestLayout_BogusRegionFailsStrictFlush(t *testing.T) {
	f := newFixture(t, map[string]string{"LayoutWithOneYield": "<div>{{yield}}</div>"})
	c := f.render(t, layout.Props{Template: "LayoutWithOneYield"})

	c.SetRegion("", "SomeBogusTemplate")
	err := f.rt.Flush(reactive.ThrowFirstError())
	var notFound *domain.TemplateNotFoundError
	require.True(t, errors.As(err, &notFound), "got %v", err)
	assert.Equal(t, "SomeBogusTemplate", notFound.Name)
	assert.Contains(t, err.Error(), "couldn't find a template named SomeBogusTemplate")
}

func TestLayout_BogusTemplateFailsRender(t *testing.T) {
	f := newFixture(t, nil)
	c := layout.New(f.renderer, layout.Props{Template: "SomeBogusTemplate"})
	_, err := c.Render(nil)
	assert.True(t, domain.IsTemplateNotFound(err))
	assert.False(t, c.Rendered())
}

func TestLayout_ReentrantYieldRendersNothing(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Page":      "<{{yield}}>",
		"Recursive": "r{{yield}}",
	})
	c := f.render(t, layout.Props{Template: "Page", Regions: map[string]string{"main": "Recursive"}})
	assert.Equal(t, "<r>", c.Output())
}

func TestLayout_HelperBoundToController(t *testing.T) {
	f := newFixture(t, map[string]string{"Page": "{{yield}}"})
	f.src.helpers["whoami"] = view.Helper(func(receiver any, _ ...any) (any, error) {
		c, ok := receiver.(*layout.Controller)
		if !ok {
			return nil, fmt.Errorf("unexpected receiver %T", receiver)
		}
		return "layout:" + c.GetTemplate(), nil
	})
	c := f.render(t, layout.Props{Template: "Page", Regions: map[string]string{"main": "whoami"}})
	assert.Equal(t, "layout:Page", c.Output())
}

func TestLayout_ResolvePrecedence(t *testing.T) {
	f := newFixture(t, map[string]string{"Page": "x"})
	f.src.helpers["Page"] = view.Helper(func(any, ...any) (any, error) { return "helper", nil })
	c := f.render(t, layout.Props{Template: "Page"})

	r, err := c.Resolve("Page", nil)
	require.NoError(t, err)
	assert.IsType(t, &view.Template{}, r, "templates win over helpers")

	r, err = c.Resolve(domain.DefaultMainRegion, nil)
	require.NoError(t, err)
	assert.IsType(t, &view.Bound{}, r)

	_, err = c.Resolve("", nil)
	var argErr *domain.ArgumentError
	assert.True(t, errors.As(err, &argErr))
}

func TestLayout_NestedLayoutHelperPassthrough(t *testing.T) {
	f := newFixture(t, map[string]string{"Inner": `<{{helper "greeting"}}>`})
	f.src.templates["Outer"] = view.MustParse("Outer", `{{include "Nested"}}`).WithHelpers(map[string]any{
		"greeting": view.Constant{Value: "hello"},
	})
	f.src.templates["Nested"] = layout.NewType(f.renderer, layout.Props{Template: "Inner"})

	c := f.render(t, layout.Props{Template: "Outer"})
	assert.Equal(t, "<hello>", c.Output())
}

func TestLayout_NestedLayoutInheritsData(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Outer": `{{include "Nested"}}`,
		"Inner": `{{with .}}{{.title}}{{end}}`,
	})
	var inner *layout.Controller
	f.src.templates["Nested"] = layout.NewType(f.renderer, layout.Props{Template: "Inner"}).
		OnCreate(func(c *layout.Controller) { inner = c })

	c := f.render(t, layout.Props{Template: "Outer", Data: map[string]any{"title": "t1"}})
	assert.Equal(t, "t1", c.Output())

	c.SetData(map[string]any{"title": "t2"})
	f.flush(t)
	assert.Equal(t, "t2", c.Output())

	require.NotNil(t, inner)
	inner.SetData(map[string]any{"title": "own"})
	f.flush(t)
	assert.Equal(t, "own", c.Output())
}

func TestLayout_Lifecycle(t *testing.T) {
	f := newFixture(t, map[string]string{"One": "one"})
	c := f.render(t, layout.Props{Template: "One"})

	_, err := c.Render(nil)
	assert.ErrorIs(t, err, domain.ErrAlreadyRendered)

	c.Destroy()
	assert.Equal(t, "", c.Output())
	_, err = c.Render(nil)
	assert.ErrorIs(t, err, domain.ErrDestroyed)

	c.SetTemplate("Other")
	require.NoError(t, f.rt.Flush(reactive.ThrowFirstError()), "a destroyed layout does not rerun")
}

func TestLayout_SnapshotRestore(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Page": `{{yield}}/{{yield "aside"}}`,
		"One":  "one",
		"Two":  "two",
	})
	c := f.render(t, layout.Props{Template: "Page", Regions: map[string]string{"main": "One"}})
	snap := c.Snapshot()
	assert.Equal(t, "Page", snap.Template)
	assert.False(t, snap.DataSet)
	assert.Equal(t, map[string]string{"main": "One"}, snap.Regions)

	c.SetRegion("", "Two")
	c.SetRegion("aside", "One")
	c.SetData("x")
	f.flush(t)
	assert.Equal(t, "two/one", c.Output())

	c.Restore(snap)
	f.flush(t)
	assert.Equal(t, "one/", c.Output())
	assert.Nil(t, c.GetData())
	assert.Equal(t, "", c.GetRegion("aside"))
}

func TestDecodeProps(t *testing.T) {
	p, err := layout.DecodeProps(map[string]any{
		"template": "Page",
		"data":     map[string]any{"a": 1},
		"regions":  map[string]any{"footer": "Footer"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Page", p.Template)
	assert.Equal(t, map[string]string{"footer": "Footer"}, p.Regions)

	_, err = layout.DecodeProps(map[string]any{"template": []int{1}})
	assert.Error(t, err)

	merged := p.Merge(layout.Props{Regions: map[string]string{"main": "One"}})
	assert.Equal(t, map[string]string{"footer": "Footer", "main": "One"}, merged.Regions)
}
