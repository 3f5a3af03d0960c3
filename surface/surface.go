// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"github.com/gogpu/sdfilter/block"
	"github.com/gogpu/sdfilter/internal/tile"
)

// Surface is a tiled pixel source or destination owned by the host.
//
// Tiles returns the host tiles intersecting query, clipped to query and to
// the surface extent. Tiles never overlap and together cover exactly
// query ∩ extent; the slice may be empty.
//
// The block accessors return borrowed views for the part of r inside the
// surface. The returned block's Rect may be smaller than r and callers must
// use it. A block is only valid until the surface is next modified by
// anything other than writes through that block. Surfaces that lack a plane
// return an empty block.
type Surface interface {
	// Tiles returns the tiles covering query.
	Tiles(query block.Rect) []block.Rect

	// ImageBlock returns the color channels over r.
	ImageBlock(r block.Rect) block.Block

	// AlphaBlock returns the alpha channel over r.
	AlphaBlock(r block.Rect) block.Block

	// SelectBlock returns the selection weights over r.
	SelectBlock(r block.Rect) block.Block
}

// Layout is the byte order of color pixels in a MemorySurface.
type Layout uint8

const (
	// LayoutBGRA stores B, G, R then one unused byte per pixel.
	LayoutBGRA Layout = iota

	// LayoutRGBA stores R, G, B then one unused byte per pixel.
	LayoutRGBA
)

// String returns the layout name.
func (l Layout) String() string {
	switch l {
	case LayoutBGRA:
		return "BGRA"
	case LayoutRGBA:
		return "RGBA"
	}
	return "Unknown"
}

// Option configures a surface during creation.
type Option func(*options)

type options struct {
	tileW, tileH int
	layout       Layout
	originX      int
	originY      int
}

func defaultOptions() options {
	return options{
		tileW:  tile.DefaultWidth,
		tileH:  tile.DefaultHeight,
		layout: LayoutBGRA,
	}
}

// WithTileSize sets the tile size Tiles hands out. Non-positive values keep
// the default of 256.
func WithTileSize(w, h int) Option {
	return func(o *options) {
		if w > 0 {
			o.tileW = w
		}
		if h > 0 {
			o.tileH = h
		}
	}
}

// WithLayout sets the color byte order of a MemorySurface.
func WithLayout(l Layout) Option {
	return func(o *options) {
		o.layout = l
	}
}

// WithOrigin places the surface's top-left pixel at (x, y) in layer space.
func WithOrigin(x, y int) Option {
	return func(o *options) {
		o.originX, o.originY = x, y
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
