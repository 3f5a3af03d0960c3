// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"

	"github.com/gogpu/sdfilter/block"
	intImage "github.com/gogpu/sdfilter/internal/image"
	"github.com/gogpu/sdfilter/internal/tile"
)

// MemorySurface is an in-memory layer: 4-byte color pixels in the chosen
// Layout plus a separate 8-bit alpha plane. The fourth color byte is not
// used; alpha lives only in the plane.
//
// MemorySurface has no selection plane. Pair it with a MaskSurface for
// selection weights.
//
// Example:
//
//	s := surface.NewMemorySurface(800, 600, surface.WithLayout(surface.LayoutRGBA))
//	s.Fill(color.NRGBA{255, 255, 255, 255})
//	img := s.Image()
//
// Blocks returned by a MemorySurface may be written concurrently as long as
// their rects do not overlap.
type MemorySurface struct {
	pix     *intImage.ImageBuf
	alpha   *intImage.ImageBuf
	layout  Layout
	grid    *tile.Grid
	updated *tile.Dirty
}

var (
	_ Surface = (*MemorySurface)(nil)
	_ Surface = (*MaskSurface)(nil)
)

// NewMemorySurface creates a transparent black surface. Dimensions below 1
// are clamped to 1.
func NewMemorySurface(width, height int, opts ...Option) *MemorySurface {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	o := applyOptions(opts)

	pix, _ := intImage.NewImageBuf(width, height, o.layout.format())
	alpha, _ := intImage.NewImageBuf(width, height, intImage.FormatGray8)
	return newMemorySurface(pix, alpha, o)
}

// NewMemorySurfaceFromImage copies img into a new surface. The color
// channels are stored unpremultiplied and img's alpha fills the alpha
// plane. The surface is placed at the WithOrigin position, (0,0) by
// default, whatever img.Bounds().Min is.
func NewMemorySurfaceFromImage(img image.Image, opts ...Option) (*MemorySurface, error) {
	o := applyOptions(opts)

	pix, err := intImage.FromStdImage(img, o.layout.format())
	if err != nil {
		return nil, err
	}
	alpha, err := intImage.NewImageBuf(pix.Width(), pix.Height(), intImage.FormatGray8)
	if err != nil {
		return nil, err
	}

	a := pix.Format().AlphaOffset()
	for y := range pix.Height() {
		src, dst := pix.RowBytes(y), alpha.RowBytes(y)
		for x := range dst {
			dst[x] = src[x*4+a]
		}
	}
	return newMemorySurface(pix, alpha, o), nil
}

// LoadMemorySurface loads an image file into a new surface.
func LoadMemorySurface(path string, opts ...Option) (*MemorySurface, error) {
	buf, err := intImage.LoadImage(path, intImage.FormatRGBA8)
	if err != nil {
		return nil, err
	}
	return NewMemorySurfaceFromImage(buf.ToStdImage(), opts...)
}

func newMemorySurface(pix, alpha *intImage.ImageBuf, o options) *MemorySurface {
	pix.SetOrigin(o.originX, o.originY)
	alpha.SetOrigin(o.originX, o.originY)
	grid := tile.NewGrid(pix.Rect(), o.tileW, o.tileH)
	return &MemorySurface{
		pix:     pix,
		alpha:   alpha,
		layout:  o.layout,
		grid:    grid,
		updated: tile.NewDirty(grid),
	}
}

func (l Layout) format() intImage.Format {
	if l == LayoutRGBA {
		return intImage.FormatRGBA8
	}
	return intImage.FormatBGRA8
}

// Bounds returns the layer-space rectangle the surface covers.
func (s *MemorySurface) Bounds() block.Rect { return s.pix.Rect() }

// Width returns the surface width.
func (s *MemorySurface) Width() int { return s.pix.Width() }

// Height returns the surface height.
func (s *MemorySurface) Height() int { return s.pix.Height() }

// Layout returns the color byte order.
func (s *MemorySurface) Layout() Layout { return s.layout }

// Tiles implements Surface.
func (s *MemorySurface) Tiles(query block.Rect) []block.Rect {
	return s.grid.Tiles(query)
}

// ImageBlock implements Surface. The block starts at the clipped rect's
// origin, so NeedsOffset is false.
func (s *MemorySurface) ImageBlock(r block.Rect) block.Block {
	return s.pix.Block(r)
}

// AlphaBlock implements Surface.
func (s *MemorySurface) AlphaBlock(r block.Rect) block.Block {
	return s.alpha.Block(r)
}

// SelectBlock implements Surface. A MemorySurface has no selection plane.
func (s *MemorySurface) SelectBlock(block.Rect) block.Block {
	return block.Block{}
}

// NRGBAAt returns the pixel at layer position (x, y).
func (s *MemorySurface) NRGBAAt(x, y int) color.NRGBA {
	ox, oy := s.pix.Origin()
	r, g, b, _ := s.pix.GetRGBA(x-ox, y-oy)
	a, _, _, _ := s.alpha.GetRGBA(x-ox, y-oy)
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// SetNRGBA sets the pixel at layer position (x, y). Positions outside the
// surface are ignored.
func (s *MemorySurface) SetNRGBA(x, y int, c color.NRGBA) {
	ox, oy := s.pix.Origin()
	if s.pix.SetRGBA(x-ox, y-oy, c.R, c.G, c.B, 0) != nil {
		return
	}
	if p := s.alpha.PixelBytes(x-ox, y-oy); p != nil {
		p[0] = c.A
	}
}

// Fill sets every pixel to c.
func (s *MemorySurface) Fill(c color.NRGBA) {
	s.pix.Fill(c.R, c.G, c.B, 0)
	for y := range s.alpha.Height() {
		row := s.alpha.RowBytes(y)
		for x := range row {
			row[x] = c.A
		}
	}
}

// Image returns a copy of the surface as an *image.NRGBA placed at the
// surface origin.
func (s *MemorySurface) Image() *image.NRGBA {
	r := s.Bounds()
	img := image.NewNRGBA(r.Image())
	for y := r.Top; y < r.Bottom; y++ {
		for x := r.Left; x < r.Right; x++ {
			img.SetNRGBA(x, y, s.NRGBAAt(x, y))
		}
	}
	return img
}

// SavePNG writes the surface to a PNG file.
func (s *MemorySurface) SavePNG(path string) error {
	buf, err := intImage.FromStdImage(s.Image(), intImage.FormatRGBA8)
	if err != nil {
		return err
	}
	return buf.SavePNG(path)
}

// Clone returns a deep copy with no recorded updates.
func (s *MemorySurface) Clone() *MemorySurface {
	return &MemorySurface{
		pix:     s.pix.Clone(),
		alpha:   s.alpha.Clone(),
		layout:  s.layout,
		grid:    s.grid,
		updated: tile.NewDirty(s.grid),
	}
}

// MarkUpdated records that the host was told to redraw r.
// Safe for concurrent use.
func (s *MemorySurface) MarkUpdated(r block.Rect) {
	s.updated.MarkRect(r)
}

// Updated returns the bounds of every tile touched by MarkUpdated, in
// row-major order.
func (s *MemorySurface) Updated() []block.Rect {
	return s.updated.Rects()
}

// UpdatedBounds returns the smallest rect covering all updated tiles.
func (s *MemorySurface) UpdatedBounds() block.Rect {
	return s.updated.Bounds()
}

// ResetUpdated forgets recorded updates.
func (s *MemorySurface) ResetUpdated() {
	s.updated.Clear()
}
