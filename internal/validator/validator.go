package validator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/layout"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/view"
)

// Issue is one problem found in a site.
type Issue struct {
	Template string
	Problem  string
}

func (i Issue) String() string {
	if i.Template == "" {
		return i.Problem
	}
	return fmt.Sprintf("%s: %s", i.Template, i.Problem)
}

// Report collects the issues of a validation run.
type Report struct {
	Issues  []Issue
	Checked []string
}

// Err summarizes the issues, or returns nil when there are none.
func (r *Report) Err() error {
	if len(r.Issues) == 0 {
		return nil
	}
	lines := make([]string, len(r.Issues))
	for i, is := range r.Issues {
		lines[i] = is.String()
	}
	return fmt.Errorf("found %d errors:\n- %s", len(r.Issues), strings.Join(lines, "\n- "))
}

// Validator crawls a site from its layout props, checking that every
// template parses and that every statically named reference resolves.
type Validator struct {
	loader ports.TemplateLoader
	known  func(string) bool
}

// New creates a Validator. known reports names resolvable outside the
// loader, such as registered helpers.
func New(loader ports.TemplateLoader, known func(string) bool) *Validator {
	if known == nil {
		known = func(string) bool { return false }
	}
	return &Validator{loader: loader, known: known}
}

// regionRef is a region assignment found in layout props.
type regionRef struct {
	from, region, tmpl string
}

// Validate checks everything reachable from props, then every other
// template the loader lists.
func (v *Validator) Validate(ctx context.Context, props layout.Props) (*Report, error) {
	listed, err := v.loader.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	c := &crawl{
		v:       v,
		report:  &Report{},
		visited: make(map[string]bool),
		missing: make(map[string]bool),
		blocks:  make(map[string]bool),
	}
	c.props("", props)
	c.run(ctx)
	sort.Strings(listed)
	c.enqueue(listed...)
	c.run(ctx)

	return c.finish(), nil
}

type crawl struct {
	v       *Validator
	report  *Report
	queue   []string
	visited map[string]bool
	missing map[string]bool
	blocks  map[string]bool // contentFor blocks; regions may name them
	regions []regionRef
}

func (c *crawl) issue(tmpl, format string, args ...any) {
	c.report.Issues = append(c.report.Issues, Issue{Template: tmpl, Problem: fmt.Sprintf(format, args...)})
}

func (c *crawl) enqueue(names ...string) {
	for _, n := range names {
		if n == "" || strings.HasPrefix(n, "_") || c.visited[n] {
			continue
		}
		c.queue = append(c.queue, n)
	}
}

func (c *crawl) props(from string, p layout.Props) {
	c.enqueue(p.Template)
	for region, tmpl := range p.Regions {
		if tmpl == "" || strings.HasPrefix(tmpl, "_") {
			continue
		}
		c.regions = append(c.regions, regionRef{from: from, region: region, tmpl: tmpl})
		c.enqueue(tmpl)
	}
}

func (c *crawl) run(ctx context.Context) {
	for len(c.queue) > 0 {
		name := c.queue[0]
		c.queue = c.queue[1:]
		if c.visited[name] {
			continue
		}
		c.visited[name] = true
		c.check(ctx, name)
	}
}

func (c *crawl) check(ctx context.Context, name string) {
	doc, err := c.v.loader.LoadTemplate(ctx, name)
	if err != nil {
		switch {
		case !errors.Is(err, domain.ErrDocumentNotFound):
			c.issue(name, "%v", err)
		case !c.v.known(name):
			c.missing[name] = true
		}
		return
	}
	c.report.Checked = append(c.report.Checked, name)

	t, err := view.Parse(doc.Name, doc.Source)
	if err != nil {
		c.issue(name, "%v", err)
		return
	}
	includes, blocks := t.References()
	for _, b := range blocks {
		c.blocks[b] = true
		if !t.Defines(b) {
			c.issue(name, "contentFor names undefined block %q", b)
		}
	}
	for _, inc := range includes {
		if !c.v.known(inc) && !t.Defines(inc) {
			c.enqueue(inc)
		}
	}
	if len(doc.Layout) > 0 {
		p, err := layout.DecodeProps(doc.Layout)
		if err != nil {
			c.issue(name, "%v", err)
			return
		}
		c.props(name, p)
	}
}

func (c *crawl) finish() *Report {
	sort.Slice(c.regions, func(i, j int) bool {
		if c.regions[i].from != c.regions[j].from {
			return c.regions[i].from < c.regions[j].from
		}
		return c.regions[i].region < c.regions[j].region
	})
	for _, r := range c.regions {
		if c.missing[r.tmpl] && !c.blocks[r.tmpl] {
			c.issue(r.from, "region %s: template %q not found", r.region, r.tmpl)
			delete(c.missing, r.tmpl)
		}
	}

	names := make([]string, 0, len(c.missing))
	for n := range c.missing {
		if !c.blocks[n] {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	for _, n := range names {
		c.issue("", "template %q not found", n)
	}
	sort.Strings(c.report.Checked)
	return c.report
}
