// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package image

import (
	"errors"

	"github.com/gogpu/sdfilter/block"
)

// Common errors for image operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrInvalidFormat is returned when the format is not recognized.
	ErrInvalidFormat = errors.New("image: invalid format")

	// ErrInvalidStride is returned when stride is less than minimum required.
	ErrInvalidStride = errors.New("image: stride too small for width")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("image: data buffer too small")

	// ErrOutOfBounds is returned when pixel coordinates are outside image bounds.
	ErrOutOfBounds = errors.New("image: coordinates out of bounds")
)

// ImageBuf is a strided pixel buffer placed at an origin in image space.
//
// Pixel coordinates passed to the accessor methods are buffer-relative
// (0,0 is the first pixel). Rect, View and Block work in image space, where
// the buffer covers Rect() = (ox, oy)-(ox+width, oy+height).
//
// ImageBuf is not safe for concurrent mutation.
type ImageBuf struct {
	data   []byte
	width  int
	height int
	stride int
	format Format

	// ox and oy place the buffer in image space.
	ox, oy int
}

// NewImageBuf creates a zeroed buffer with tightly packed rows at origin (0,0).
func NewImageBuf(width, height int, format Format) (*ImageBuf, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}

	stride := format.RowBytes(width)
	return &ImageBuf{
		data:   make([]byte, stride*height),
		width:  width,
		height: height,
		stride: stride,
		format: format,
	}, nil
}

// FromRaw wraps existing data without copying.
// The caller must keep data valid for the lifetime of the ImageBuf.
// Stride must be at least format.RowBytes(width).
func FromRaw(data []byte, width, height int, format Format, stride int) (*ImageBuf, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}
	if stride < format.RowBytes(width) {
		return nil, ErrInvalidStride
	}

	required := stride*(height-1) + format.RowBytes(width)
	if len(data) < required {
		return nil, ErrDataTooSmall
	}

	return &ImageBuf{
		data:   data,
		width:  width,
		height: height,
		stride: stride,
		format: format,
	}, nil
}

// Clone creates a deep copy of the buffer, including its origin.
func (b *ImageBuf) Clone() *ImageBuf {
	c := *b
	c.data = make([]byte, len(b.data))
	copy(c.data, b.data)
	return &c
}

// Width returns the image width in pixels.
func (b *ImageBuf) Width() int { return b.width }

// Height returns the image height in pixels.
func (b *ImageBuf) Height() int { return b.height }

// Stride returns the number of bytes per row (including padding).
func (b *ImageBuf) Stride() int { return b.stride }

// Format returns the pixel format.
func (b *ImageBuf) Format() Format { return b.format }

// Data returns the raw pixel data slice.
func (b *ImageBuf) Data() []byte { return b.data }

// Origin returns the image-space position of pixel (0,0).
func (b *ImageBuf) Origin() (x, y int) { return b.ox, b.oy }

// SetOrigin moves the buffer in image space. Pixel data is unchanged.
func (b *ImageBuf) SetOrigin(x, y int) {
	b.ox, b.oy = x, y
}

// Rect returns the image-space rectangle covered by the buffer.
func (b *ImageBuf) Rect() block.Rect {
	return block.Rt(b.ox, b.oy, b.ox+b.width, b.oy+b.height)
}

// RowBytes returns the pixel bytes of row y, without padding.
// Returns nil if y is out of bounds.
func (b *ImageBuf) RowBytes(y int) []byte {
	if y < 0 || y >= b.height {
		return nil
	}
	start := y * b.stride
	return b.data[start : start+b.format.RowBytes(b.width)]
}

// PixelOffset returns the byte offset of pixel (x, y) in the data slice.
// Returns -1 if coordinates are out of bounds.
func (b *ImageBuf) PixelOffset(x, y int) int {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return -1
	}
	return y*b.stride + x*b.format.BytesPerPixel()
}

// PixelBytes returns the raw bytes of pixel (x, y), or nil if out of bounds.
func (b *ImageBuf) PixelBytes(x, y int) []byte {
	offset := b.PixelOffset(x, y)
	if offset < 0 {
		return nil
	}
	return b.data[offset : offset+b.format.BytesPerPixel()]
}

// GetRGBA returns the color at (x, y). Gray formats report r=g=b=v, a=255;
// formats without alpha report a=255. Out of bounds returns all zeros.
func (b *ImageBuf) GetRGBA(x, y int) (r, g, bl, a uint8) {
	pixel := b.PixelBytes(x, y)
	if pixel == nil {
		return 0, 0, 0, 0
	}

	info := b.format.Info()
	if info.Channels == 1 {
		return pixel[0], pixel[0], pixel[0], 255
	}
	a = 255
	if info.A >= 0 {
		a = pixel[info.A]
	}
	return pixel[info.R], pixel[info.G], pixel[info.B], a
}

// SetRGBA sets the color at (x, y). Gray formats store standard luminance.
// Returns ErrOutOfBounds if coordinates are outside the buffer.
func (b *ImageBuf) SetRGBA(x, y int, r, g, bl, a uint8) error {
	pixel := b.PixelBytes(x, y)
	if pixel == nil {
		return ErrOutOfBounds
	}

	info := b.format.Info()
	if info.Channels == 1 {
		// 0.299*R + 0.587*G + 0.114*B
		pixel[0] = byte((int(r)*299 + int(g)*587 + int(bl)*114) / 1000)
		return nil
	}
	pixel[info.R], pixel[info.G], pixel[info.B] = r, g, bl
	if info.A >= 0 {
		pixel[info.A] = a
	}
	return nil
}

// Clear sets all bytes to zero.
func (b *ImageBuf) Clear() {
	clear(b.data)
}

// Fill sets every pixel to the given color.
func (b *ImageBuf) Fill(r, g, bl, a uint8) {
	for y := range b.height {
		for x := range b.width {
			_ = b.SetRGBA(x, y, r, g, bl, a)
		}
	}
}

// View returns a block covering the whole buffer. The block is addressed
// from the buffer origin, so it sets NeedsOffset.
func (b *ImageBuf) View() block.Block {
	r, g, bl := b.format.ChannelOffsets()
	return block.Block{
		Rect:        b.Rect(),
		Pix:         b.data,
		RowStride:   b.stride,
		PixelStride: b.format.BytesPerPixel(),
		R:           r,
		G:           g,
		B:           bl,
		NeedsOffset: true,
	}
}

// Block returns a block for the part of r inside the buffer, with Pix
// positioned at the clipped rectangle's origin. The returned rect may be
// smaller than r; callers must use it rather than r.
func (b *ImageBuf) Block(r block.Rect) block.Block {
	return b.channelBlock(r, 0)
}

// AlphaBlock returns a single-channel block over the alpha byte of each pixel
// in r. Gray buffers expose their only channel. Formats without alpha return
// an empty block.
func (b *ImageBuf) AlphaBlock(r block.Rect) block.Block {
	if b.format.Channels() == 1 {
		return b.channelBlock(r, 0)
	}
	a := b.format.AlphaOffset()
	if a < 0 {
		return block.Block{}
	}
	return b.channelBlock(r, a)
}

// channelBlock builds a block over r, shifting Pix by ch bytes so that
// single-channel readers find their sample at byte 0.
func (b *ImageBuf) channelBlock(r block.Rect, ch int) block.Block {
	r = r.Intersect(b.Rect())
	if r.Empty() {
		return block.Block{}
	}
	off := b.PixelOffset(r.Left-b.ox, r.Top-b.oy) + ch
	blk := block.Block{
		Rect:        r,
		Pix:         b.data[off:],
		RowStride:   b.stride,
		PixelStride: b.format.BytesPerPixel(),
	}
	if ch == 0 {
		blk.R, blk.G, blk.B = b.format.ChannelOffsets()
	}
	return blk
}

// ByteSize returns the size of the pixel data in bytes.
func (b *ImageBuf) ByteSize() int {
	return len(b.data)
}

// IsEmpty reports whether the buffer holds no pixels.
func (b *ImageBuf) IsEmpty() bool {
	return b.width == 0 || b.height == 0
}
