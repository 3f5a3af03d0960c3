// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tile

import (
	"math/bits"
	"sync/atomic"

	"github.com/gogpu/sdfilter/block"
)

// Dirty tracks which tiles of a Grid were updated, one bit per tile packed
// into uint64 words (bit index = ty*tilesX + tx).
//
// Hosts mark rectangles as they are notified about them and read the set back
// when they need to refresh or persist the changed parts of an image. All
// methods are safe for concurrent use.
type Dirty struct {
	grid  *Grid
	words []atomic.Uint64
}

// NewDirty creates a tracker for g with every tile clean.
func NewDirty(g *Grid) *Dirty {
	total := g.tilesX * g.tilesY
	return &Dirty{
		grid:  g,
		words: make([]atomic.Uint64, (total+63)/64),
	}
}

// Mark marks tile (tx, ty). Out of range coordinates are ignored.
func (d *Dirty) Mark(tx, ty int) {
	if tx < 0 || tx >= d.grid.tilesX || ty < 0 || ty >= d.grid.tilesY {
		return
	}
	idx := ty*d.grid.tilesX + tx
	d.words[idx/64].Or(1 << (idx & 63))
}

// MarkRect marks every tile overlapping r.
func (d *Dirty) MarkRect(r block.Rect) {
	tx1, ty1, tx2, ty2, ok := d.grid.Span(r)
	if !ok {
		return
	}
	for ty := ty1; ty <= ty2; ty++ {
		for tx := tx1; tx <= tx2; tx++ {
			d.Mark(tx, ty)
		}
	}
}

// IsDirty reports whether tile (tx, ty) is marked.
func (d *Dirty) IsDirty(tx, ty int) bool {
	if tx < 0 || tx >= d.grid.tilesX || ty < 0 || ty >= d.grid.tilesY {
		return false
	}
	idx := ty*d.grid.tilesX + tx
	return d.words[idx/64].Load()&(1<<(idx&63)) != 0
}

// Count returns the number of marked tiles.
func (d *Dirty) Count() int {
	n := 0
	for i := range d.words {
		n += bits.OnesCount64(d.words[i].Load())
	}
	return n
}

// IsEmpty reports whether no tile is marked.
func (d *Dirty) IsEmpty() bool {
	for i := range d.words {
		if d.words[i].Load() != 0 {
			return false
		}
	}
	return true
}

// Clear unmarks all tiles.
func (d *Dirty) Clear() {
	for i := range d.words {
		d.words[i].Store(0)
	}
}

// Rects returns the bounds of the marked tiles in row-major order.
func (d *Dirty) Rects() []block.Rect {
	var rects []block.Rect
	for wordIdx := range d.words {
		word := d.words[wordIdx].Load()
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			idx := wordIdx*64 + bit
			rects = append(rects, d.grid.Bounds(idx%d.grid.tilesX, idx/d.grid.tilesX))
			word &^= 1 << bit
		}
	}
	return rects
}

// Bounds returns the smallest rectangle covering all marked tiles.
func (d *Dirty) Bounds() block.Rect {
	var r block.Rect
	for _, t := range d.Rects() {
		r = r.Union(t)
	}
	return r
}
