// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package tile splits an image extent into a fixed grid of rectangular tiles.
//
// The grid is anchored at the extent origin. Edge tiles are narrower or
// shorter when the extent is not a multiple of the tile size, and every query
// result is clipped to both the query and the extent, so the tiles returned
// for a query never overlap and cover exactly query ∩ extent.
package tile

import "github.com/gogpu/sdfilter/block"

// Default tile dimensions. Hosts commonly hand out tiles of this size.
const (
	DefaultWidth  = 256
	DefaultHeight = 256
)

// Grid divides an extent into tiles of a fixed size.
//
// Grid is immutable after construction and safe for concurrent use.
type Grid struct {
	extent block.Rect

	// tileW and tileH are the full tile dimensions in pixels.
	tileW int
	tileH int

	// tilesX and tilesY are the number of tile columns and rows.
	tilesX int
	tilesY int
}

// NewGrid creates a grid over extent. Non-positive tile sizes fall back to
// the defaults. An empty extent yields a grid without tiles.
func NewGrid(extent block.Rect, tileW, tileH int) *Grid {
	if tileW <= 0 {
		tileW = DefaultWidth
	}
	if tileH <= 0 {
		tileH = DefaultHeight
	}
	if extent.Empty() {
		return &Grid{tileW: tileW, tileH: tileH}
	}

	return &Grid{
		extent: extent,
		tileW:  tileW,
		tileH:  tileH,
		tilesX: (extent.Dx() + tileW - 1) / tileW,
		tilesY: (extent.Dy() + tileH - 1) / tileH,
	}
}

// Extent returns the rectangle covered by the grid.
func (g *Grid) Extent() block.Rect { return g.extent }

// TilesX returns the number of tile columns.
func (g *Grid) TilesX() int { return g.tilesX }

// TilesY returns the number of tile rows.
func (g *Grid) TilesY() int { return g.tilesY }

// TileSize returns the full tile dimensions.
func (g *Grid) TileSize() (w, h int) { return g.tileW, g.tileH }

// Bounds returns the rectangle of tile (tx, ty), clipped to the extent.
// Out of range coordinates return an empty rectangle.
func (g *Grid) Bounds(tx, ty int) block.Rect {
	if tx < 0 || tx >= g.tilesX || ty < 0 || ty >= g.tilesY {
		return block.Rect{}
	}
	left := g.extent.Left + tx*g.tileW
	top := g.extent.Top + ty*g.tileH
	return block.Rt(left, top, left+g.tileW, top+g.tileH).Intersect(g.extent)
}

// Index returns the column and row of the tile containing pixel (x, y).
// ok is false when the pixel lies outside the extent.
func (g *Grid) Index(x, y int) (tx, ty int, ok bool) {
	if !g.extent.Contains(x, y) {
		return 0, 0, false
	}
	return (x - g.extent.Left) / g.tileW, (y - g.extent.Top) / g.tileH, true
}

// Span returns the inclusive tile index range touched by r, or ok=false if r
// does not overlap the extent.
func (g *Grid) Span(r block.Rect) (tx1, ty1, tx2, ty2 int, ok bool) {
	r = r.Intersect(g.extent)
	if r.Empty() {
		return 0, 0, 0, 0, false
	}
	tx1, ty1, _ = g.Index(r.Left, r.Top)
	tx2, ty2, _ = g.Index(r.Right-1, r.Bottom-1)
	return tx1, ty1, tx2, ty2, true
}

// Tiles returns the tiles overlapping query in row-major order, each clipped
// to query ∩ extent. The result is empty when nothing overlaps.
func (g *Grid) Tiles(query block.Rect) []block.Rect {
	tx1, ty1, tx2, ty2, ok := g.Span(query)
	if !ok {
		return nil
	}
	clip := query.Intersect(g.extent)

	rects := make([]block.Rect, 0, (tx2-tx1+1)*(ty2-ty1+1))
	for ty := ty1; ty <= ty2; ty++ {
		for tx := tx1; tx <= tx2; tx++ {
			if r := g.Bounds(tx, ty).Intersect(clip); !r.Empty() {
				rects = append(rects, r)
			}
		}
	}
	return rects
}
