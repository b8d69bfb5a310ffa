package layout

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/view"
)

// Yield renders region. A yield nested inside a yield of the same region
// of the same layout renders nothing.
func (c *Controller) Yield(f *view.Frame, region string) error {
	if region == "" {
		region = domain.MainRegion
	}
	if c.yielding(f.Scope(), region) {
		c.logger.Debug("Skipping re-entrant yield", "region", region)
		return nil
	}
	return f.Mount("yield:"+region, &regionView{c: c, region: region})
}

func (c *Controller) yielding(from *view.Scope, region string) bool {
	found := false
	from.Walk(func(s *view.Scope) bool {
		if s.Kind() == view.KindYield && s.Host() == c && s.Name() == region {
			found = true
			return false
		}
		return true
	})
	return found
}

// regionView is the component rendered by yield. It reads only its own
// region, so assigning another region does not rerun it.
type regionView struct {
	c      *Controller
	region string
}

func (y *regionView) Name() string { return "yield:" + y.region }

func (y *regionView) Instantiate(parent *view.Scope) *view.Scope {
	return view.NewScope(parent, view.KindYield, y.region).
		SetHost(y.c).
		Set("region", view.Constant{Value: y.region})
}

func (y *regionView) Render(f *view.Frame) error {
	name := y.c.regions.Get(y.region)
	if name == "" {
		if y.region == domain.MainRegion && y.c.content != nil {
			return f.With("content", y.c.GetData, y.c.content)
		}
		return nil
	}
	r, err := y.c.resolver.Resolve(name, f.Scope())
	if err != nil {
		return fmt.Errorf("yield %s: %w", y.region, err)
	}
	key := "region:" + name
	if g := y.c.blocks.Generation(name); g > 0 {
		// a replaced block must not reuse the previous block's view
		key = fmt.Sprintf("%s#%d", key, g)
	}
	return f.With(key, y.c.GetData, r)
}
