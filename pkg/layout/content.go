package layout

import "github.com/aretw0/arbor/pkg/view"

// ContentBlocks holds blocks registered by contentFor, keyed by region.
// The map is not reactive: a block becomes visible because contentFor
// points the region at the block's name, or touches the region when only
// the block changed.
type ContentBlocks struct {
	blocks map[string]view.Renderable
	gen    map[string]int
}

func NewContentBlocks() *ContentBlocks {
	return &ContentBlocks{
		blocks: make(map[string]view.Renderable),
		gen:    make(map[string]int),
	}
}

// Put replaces the block for region and reports whether it differs from
// the previous one.
func (b *ContentBlocks) Put(region string, block view.Renderable) bool {
	prev, ok := b.blocks[region]
	b.blocks[region] = block
	if ok && sameBlock(prev, block) {
		return false
	}
	b.gen[region]++
	return true
}

// Generation counts how many distinct blocks region has held.
func (b *ContentBlocks) Generation(region string) int {
	return b.gen[region]
}

// sameBlock compares templates by parse tree; other renderables are never
// considered equal since they may not be comparable.
func sameBlock(a, b view.Renderable) bool {
	ta, ok := a.(*view.Template)
	if !ok {
		return false
	}
	tb, ok := b.(*view.Template)
	return ok && ta.Same(tb)
}

func (b *ContentBlocks) Get(region string) (view.Renderable, bool) {
	r, ok := b.blocks[region]
	return r, ok
}
