// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"

	"github.com/gogpu/sdfilter/block"
	intImage "github.com/gogpu/sdfilter/internal/image"
	"github.com/gogpu/sdfilter/internal/tile"
)

// MaskSurface is a single 8-bit plane of selection weights. 0 leaves a
// pixel untouched, 255 replaces it fully.
//
// The plane serves both SelectBlock and AlphaBlock; ImageBlock is empty.
type MaskSurface struct {
	plane *intImage.ImageBuf
	grid  *tile.Grid
}

// NewMaskSurface creates an empty (all zero) mask. Dimensions below 1 are
// clamped to 1.
func NewMaskSurface(width, height int, opts ...Option) *MaskSurface {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	plane, _ := intImage.NewImageBuf(width, height, intImage.FormatGray8)
	return newMaskSurface(plane, applyOptions(opts))
}

// NewMaskSurfaceFromImage builds a mask from img. *image.Alpha sources
// contribute their alpha; anything else contributes its luminance.
func NewMaskSurfaceFromImage(img image.Image, opts ...Option) (*MaskSurface, error) {
	plane, err := intImage.FromStdImage(img, intImage.FormatGray8)
	if err != nil {
		return nil, err
	}
	return newMaskSurface(plane, applyOptions(opts)), nil
}

// LoadMaskSurface loads a grayscale mask from an image file.
func LoadMaskSurface(path string, opts ...Option) (*MaskSurface, error) {
	plane, err := intImage.LoadImage(path, intImage.FormatGray8)
	if err != nil {
		return nil, err
	}
	return newMaskSurface(plane, applyOptions(opts)), nil
}

func newMaskSurface(plane *intImage.ImageBuf, o options) *MaskSurface {
	plane.SetOrigin(o.originX, o.originY)
	return &MaskSurface{
		plane: plane,
		grid:  tile.NewGrid(plane.Rect(), o.tileW, o.tileH),
	}
}

// Bounds returns the layer-space rectangle the mask covers.
func (m *MaskSurface) Bounds() block.Rect { return m.plane.Rect() }

// Tiles implements Surface.
func (m *MaskSurface) Tiles(query block.Rect) []block.Rect {
	return m.grid.Tiles(query)
}

// ImageBlock implements Surface. A mask has no color.
func (m *MaskSurface) ImageBlock(block.Rect) block.Block {
	return block.Block{}
}

// AlphaBlock implements Surface.
func (m *MaskSurface) AlphaBlock(r block.Rect) block.Block {
	return m.plane.Block(r)
}

// SelectBlock implements Surface.
func (m *MaskSurface) SelectBlock(r block.Rect) block.Block {
	return m.plane.Block(r)
}

// At returns the weight at layer position (x, y), or 0 outside the mask.
func (m *MaskSurface) At(x, y int) byte {
	ox, oy := m.plane.Origin()
	if p := m.plane.PixelBytes(x-ox, y-oy); p != nil {
		return p[0]
	}
	return 0
}

// Set sets the weight at layer position (x, y).
func (m *MaskSurface) Set(x, y int, v byte) {
	ox, oy := m.plane.Origin()
	if p := m.plane.PixelBytes(x-ox, y-oy); p != nil {
		p[0] = v
	}
}

// FillRect sets the weight of every pixel in r ∩ Bounds().
func (m *MaskSurface) FillRect(r block.Rect, v byte) {
	b := m.plane.Block(r)
	for y := range b.Rect.Dy() {
		row := b.Pix[y*b.RowStride:]
		for x := range b.Rect.Dx() {
			row[x] = v
		}
	}
}
