// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"github.com/gogpu/sdfilter/block"
	"github.com/gogpu/sdfilter/internal/image"
)

// Image is a tightly packed 8-bit image exchanged with a generator.
// Channels is 3 (RGB) or 4 (RGBA).
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// NewImage allocates a zeroed image.
func NewImage(width, height, channels int) *Image {
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]byte, width*height*channels),
	}
}

// Valid reports whether img describes a usable image.
func (img *Image) Valid() bool {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return false
	}
	if img.Channels != 3 && img.Channels != 4 {
		return false
	}
	return len(img.Pix) >= img.Width*img.Height*img.Channels
}

// Block returns a view of img placed with its top-left pixel at (x, y).
func (img *Image) Block(x, y int) block.Block {
	if !img.Valid() {
		return block.Block{}
	}
	return block.Block{
		Rect:        block.Rt(x, y, x+img.Width, y+img.Height),
		Pix:         img.Pix,
		RowStride:   img.Width * img.Channels,
		PixelStride: img.Channels,
		R:           0,
		G:           1,
		B:           2,
		NeedsOffset: true,
	}
}

// buf wraps the image pixels without copying.
func (img *Image) buf() (*image.ImageBuf, error) {
	f, ok := image.ForChannels(img.Channels)
	if !ok || !img.Valid() {
		return nil, ErrInvalidImage
	}
	return image.FromRaw(img.Pix, img.Width, img.Height, f, img.Width*img.Channels)
}

// fromBuf copies a buffer into a new RGB image.
func fromBuf(b *image.ImageBuf) *Image {
	out := NewImage(b.Width(), b.Height(), 3)
	for y := range b.Height() {
		row := out.Pix[y*out.Width*3:]
		for x := range b.Width() {
			r, g, bl, _ := b.GetRGBA(x, y)
			row[x*3], row[x*3+1], row[x*3+2] = r, g, bl
		}
	}
	return out
}
