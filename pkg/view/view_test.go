package view_test

import (
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/reactive"
	"github.com/aretw0/arbor/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type templates map[string]view.Renderable

func (t templates) Lookup(name string) (view.Renderable, bool) {
	r, ok := t[name]
	return r, ok
}

type helpers map[string]any

func (h helpers) Helper(name string) (any, bool) {
	v, ok := h[name]
	return v, ok
}

func counting() (domain.LifecycleHooks, map[string]int, map[string]int) {
	created := map[string]int{}
	refreshed := map[string]int{}
	return domain.LifecycleHooks{
		OnViewCreated:   func(e *domain.ViewEvent) { created[e.Name]++ },
		OnViewRefreshed: func(e *domain.ViewEvent) { refreshed[e.Name]++ },
	}, created, refreshed
}

func TestScope_Lookup(t *testing.T) {
	root := view.NewScope(nil, view.KindRoot, "root").Set("a", 1)
	mid := view.NewScope(root, view.KindTemplate, "mid").Set("b", 2)
	leaf := view.NewScope(mid, view.KindWith, "leaf")

	v, owner, ok := leaf.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Same(t, root, owner)

	_, _, ok = leaf.Lookup("missing")
	assert.False(t, ok)

	assert.Same(t, mid, leaf.FindKind(view.KindTemplate))
	assert.Nil(t, leaf.FindKind(view.KindLayout))
}

func TestScope_LookupHelperStopsAtHelperHost(t *testing.T) {
	outer := view.NewScope(nil, view.KindTemplate, "outer").SetHelperHost(true).Set("greet", "hi")
	inner := view.NewScope(outer, view.KindTemplate, "inner").SetHelperHost(true)

	_, ok := inner.LookupHelper("greet")
	assert.False(t, ok, "a helper host without the name ends the search")

	inner.SetPassthrough(true)
	v, ok := inner.LookupHelper("greet")
	require.True(t, ok)
	assert.Equal(t, "hi", v)
}

func TestScope_WalkIsBounded(t *testing.T) {
	s := view.NewScope(nil, view.KindRoot, "root")
	for i := 0; i < view.MaxDepth*2; i++ {
		s = view.NewScope(s, view.KindWith, "w")
	}
	steps := 0
	s.Walk(func(*view.Scope) bool {
		steps++
		return true
	})
	assert.Equal(t, view.MaxDepth, steps)
}

func TestScope_DataFromNearestDefiner(t *testing.T) {
	root := view.NewScope(nil, view.KindRoot, "root").SetData(func() any { return "outer" })
	child := view.NewScope(root, view.KindTemplate, "t")
	assert.Equal(t, "outer", child.Data())

	with := view.NewScope(child, view.KindWith, "w").SetData(func() any { return "inner" })
	assert.Equal(t, "inner", with.Data())
	assert.Nil(t, view.NewScope(nil, view.KindRoot, "bare").Data())
}

func TestRenderer_TemplateWithData(t *testing.T) {
	rt := reactive.New()
	title := reactive.NewSignal[any](rt, map[string]any{"title": "a"})
	r := view.NewRenderer(rt)

	scope := view.NewScope(nil, view.KindRoot, "root").SetData(func() any { return title.Read() })
	v, err := r.Mount(scope, view.MustParse("Page", "<h1>{{with .}}{{.title}}{{end}}</h1>"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>a</h1>", v.String())

	title.Write(map[string]any{"title": "b"})
	require.NoError(t, rt.Flush())
	assert.Equal(t, "<h1>b</h1>", v.String())
}

func TestRenderer_ReusesChildrenOnRerun(t *testing.T) {
	rt := reactive.New()
	hooks, created, refreshed := counting()
	counter := reactive.NewSignal(rt, 0)
	child := view.WithName("child", view.RenderFunc(func(f *view.Frame) error {
		f.WriteString("child")
		return nil
	}))
	r := view.NewRenderer(rt, view.WithLifecycleHooks(hooks))

	v, err := r.Mount(nil, view.WithName("parent", view.RenderFunc(func(f *view.Frame) error {
		f.WriteString("n=")
		f.WriteString(string(rune('0' + counter.Read())))
		f.WriteString(" ")
		return f.Mount("child", child)
	})))
	require.NoError(t, err)
	assert.Equal(t, "n=0 child", v.String())

	counter.Write(1)
	require.NoError(t, rt.Flush())
	assert.Equal(t, "n=1 child", v.String())
	assert.Equal(t, 1, created["child"])
	assert.Equal(t, 1, refreshed["parent"])
	assert.Zero(t, refreshed["child"])
}

func TestRenderer_DropsChildrenNotRemounted(t *testing.T) {
	rt := reactive.New()
	show := reactive.NewSignal(rt, true)
	var stopped []string
	r := view.NewRenderer(rt, view.WithLifecycleHooks(domain.LifecycleHooks{
		OnViewStopped: func(e *domain.ViewEvent) { stopped = append(stopped, e.Name) },
	}))

	v, err := r.Mount(nil, view.RenderFunc(func(f *view.Frame) error {
		if show.Read() {
			return f.Mount("x", view.WithName("x", view.Text("x")))
		}
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, "x", v.String())

	show.Write(false)
	require.NoError(t, rt.Flush())
	assert.Equal(t, "", v.String())
	assert.Equal(t, []string{"x"}, stopped)
}

func TestFrame_IncludeAndHelpers(t *testing.T) {
	rt := reactive.New()
	r := view.NewRenderer(rt,
		view.WithTemplates(templates{
			"Footer": view.MustParse("Footer", "(footer)"),
		}),
		view.WithHelpers(helpers{
			"shout": view.Helper(func(_ any, args ...any) (any, error) {
				return args[0].(string) + "!", nil
			}),
		}),
	)

	v, err := r.Mount(nil, view.MustParse("Page", `{{helper "shout" "hey"}} {{include "Footer"}}`))
	require.NoError(t, err)
	assert.Equal(t, "hey! (footer)", v.String())
}

func TestFrame_HelperReceivesData(t *testing.T) {
	rt := reactive.New()
	tmpl := view.MustParse("Page", `{{helper "name"}}`).WithHelpers(map[string]any{
		"name": view.Helper(func(receiver any, _ ...any) (any, error) {
			return receiver.(map[string]any)["name"], nil
		}),
	})
	scope := view.NewScope(nil, view.KindRoot, "root").SetData(func() any {
		return map[string]any{"name": "ana"}
	})

	v, err := view.NewRenderer(rt).Mount(scope, tmpl)
	require.NoError(t, err)
	assert.Equal(t, "ana", v.String())
}

func TestFrame_ConstantIsNotInvoked(t *testing.T) {
	rt := reactive.New()
	called := false
	fn := view.Helper(func(any, ...any) (any, error) {
		called = true
		return nil, nil
	})
	scope := view.NewScope(nil, view.KindRoot, "root").Set("c", view.Constant{Value: fn})

	_, err := view.NewRenderer(rt).Mount(scope, view.RenderFunc(func(f *view.Frame) error {
		r, err := f.Resolve("c")
		require.NoError(t, err)
		_, isConst := r.(view.Constant)
		assert.True(t, isConst)
		return nil
	}))
	require.NoError(t, err)
	assert.False(t, called)
}

func TestFrame_Errors(t *testing.T) {
	rt := reactive.New()
	r := view.NewRenderer(rt)

	_, err := r.Mount(nil, view.MustParse("Page", `{{include "Nope"}}`))
	var notFound *domain.TemplateNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Nope", notFound.Name)

	_, err = r.Mount(nil, view.MustParse("Page", `{{helper "nope"}}`))
	assert.ErrorIs(t, err, domain.ErrHelperNotFound)

	_, err = r.Mount(nil, view.MustParse("Page", `{{yield}}`))
	assert.ErrorIs(t, err, domain.ErrLayoutNotFound)

	_, err = r.Mount(nil, view.MustParse("Page", `{{contentFor ""}}`))
	var argErr *domain.ArgumentError
	assert.True(t, errors.As(err, &argErr))
}

func TestParse_Error(t *testing.T) {
	_, err := view.Parse("Broken", "{{if}}")
	assert.Error(t, err)
}

func TestTemplate_References(t *testing.T) {
	tmpl := view.MustParse("Page", `{{define "side"}}{{include "Ad"}}{{end}}`+
		`{{include "Nav"}}{{if .}}{{include "Nav"}}{{contentFor "footer"}}{{end}}`+
		`{{with .}}{{contentFor "aside" "side"}}{{include .name}}{{end}}{{range .}}{{(include "Item")}}{{end}}`)

	includes, blocks := tmpl.References()
	assert.Equal(t, []string{"Ad", "Item", "Nav"}, includes)
	assert.Equal(t, []string{"footer", "side"}, blocks)
	assert.True(t, tmpl.Defines("side"))
	assert.False(t, tmpl.Defines("footer"))
}
