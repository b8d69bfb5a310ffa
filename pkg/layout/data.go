package layout

import (
	"github.com/aretw0/arbor/pkg/reactive"
	"github.com/aretw0/arbor/pkg/view"
)

// dataCell is the layout's data context: an explicit value once set,
// otherwise whatever the nearest ancestor exposes.
type dataCell struct {
	dep       *reactive.Dependency
	value     any
	set       bool
	inherited *reactive.Memo[any]
}

func newDataCell(rt *reactive.Runtime) *dataCell {
	return &dataCell{dep: rt.NewDependency()}
}

// attach binds the inherited value to the scope the layout renders under.
// A With scope directly above the layout is skipped: it carries the
// layout's own data back down, not its parent's.
func (d *dataCell) attach(rt *reactive.Runtime, parent *view.Scope) {
	if d.inherited != nil {
		d.inherited.Stop()
	}
	d.inherited = reactive.NewMemo(rt, func() any {
		from := parent
		if from != nil && from.Kind() == view.KindWith {
			from = from.Parent()
		}
		if from == nil {
			return nil
		}
		return from.Data()
	})
}

func (d *dataCell) write(v any) bool {
	if reactive.Equal(d.value, v) {
		return false
	}
	d.value = v
	d.set = true
	d.dep.Changed()
	return true
}

func (d *dataCell) read() any {
	d.dep.Depend()
	if d.set {
		return d.value
	}
	if d.inherited == nil {
		return nil
	}
	return d.inherited.Get()
}

func (d *dataCell) stop() {
	if d.inherited != nil {
		d.inherited.Stop()
	}
}

// reset drops the explicit value so the inherited one shows again.
func (d *dataCell) reset() {
	if !d.set {
		return
	}
	d.value = nil
	d.set = false
	d.dep.Changed()
}
