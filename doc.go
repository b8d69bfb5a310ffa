/*
Package arbor is a reactive layout manager for server-side templates.

A layout owns a top-level template, a data context and a set of named
regions. Templates yield regions and fill them with contentFor blocks; every
input is reactive, so changing a region rerenders only the yields reading
it and changing data refreshes only the template bodies that read it.

# Concept

The core (pkg/layout) is a single-threaded reactive state machine built on
pkg/reactive. The Manager in this package is the facade around it: it owns
the runtime, the global template and helper registry, and the active layout,
and it serializes calls so adapters such as the HTTP router can share it.

# Usage

	mgr, err := arbor.New("", arbor.WithTemplates(map[string]string{
		"Page": `<main>{{yield}}</main><footer>{{yield "footer"}}</footer>`,
		"Home": `<h1>{{with .}}{{.title}}{{end}}</h1>`,
	}))
	if err != nil {
		log.Fatal(err)
	}
	if err := mgr.Render(layout.Props{Template: "Page"}); err != nil {
		log.Fatal(err)
	}
	_ = mgr.SetRegion("main", "Home")
	_ = mgr.SetData(map[string]any{"title": "Welcome"})
	out, _ := mgr.Output() // <main><h1>Welcome</h1></main><footer></footer>

Templates can also come from a Loam vault (pass its path to New), a YAML or
JSON manifest (pkg/adapters/file) or Redis (pkg/adapters/redis).
*/
package arbor
