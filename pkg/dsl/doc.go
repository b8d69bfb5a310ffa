/*
Package dsl provides a fluent Go API for declaring template sets.

It is the programmatic counterpart of a manifest: templates, nested layouts
and their regions are declared in code and compiled into a TemplateLoader,
which is handy for tests and for sites generated at runtime.

Example usage:

	site := dsl.New()

	site.Template("Shell").
		Source(`<div class="card">{{yield}}</div>`)

	site.Template("Profile").
		Source(`{{with .}}{{.name}}{{end}}`).
		Layout("Shell").
		Region("footer", "ProfileFooter")

	loader, err := site.Build()
	// ... pass loader to arbor.New("", arbor.WithLoader(loader))
*/
package dsl
