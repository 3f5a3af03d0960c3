// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package image provides the pixel buffers behind surfaces and scratch
// images: strided 8-bit buffers in a handful of channel layouts, a reuse
// pool, and conversion to and from the standard library image types.
package image

// Format represents a pixel storage format.
type Format uint8

const (
	// FormatGray8 is a single 8-bit channel. Used for alpha and selection planes.
	FormatGray8 Format = iota

	// FormatRGB8 is 24-bit RGB with no alpha. Generation input and output
	// images use this layout.
	FormatRGB8

	// FormatRGBA8 is 32-bit non-premultiplied RGBA.
	FormatRGBA8

	// FormatBGRA8 is 32-bit non-premultiplied BGRA, the layout most desktop
	// hosts use for layer tiles.
	FormatBGRA8

	// formatCount is the number of formats (for internal use).
	formatCount
)

// FormatInfo contains metadata about a pixel format.
type FormatInfo struct {
	// BytesPerPixel is the number of bytes per pixel.
	BytesPerPixel int

	// Channels is the number of channels stored per pixel.
	Channels int

	// HasAlpha indicates the format stores an alpha byte.
	HasAlpha bool

	// R, G and B are the byte offsets of the color channels within a pixel.
	// Gray formats report 0 for all three.
	R, G, B int

	// A is the byte offset of the alpha channel, or -1.
	A int

	name string
}

var formatInfoTable = [formatCount]FormatInfo{
	FormatGray8: {BytesPerPixel: 1, Channels: 1, A: -1, name: "Gray8"},
	FormatRGB8:  {BytesPerPixel: 3, Channels: 3, R: 0, G: 1, B: 2, A: -1, name: "RGB8"},
	FormatRGBA8: {BytesPerPixel: 4, Channels: 4, HasAlpha: true, R: 0, G: 1, B: 2, A: 3, name: "RGBA8"},
	FormatBGRA8: {BytesPerPixel: 4, Channels: 4, HasAlpha: true, R: 2, G: 1, B: 0, A: 3, name: "BGRA8"},
}

// Info returns the metadata for f. Invalid formats return the zero FormatInfo.
func (f Format) Info() FormatInfo {
	if !f.IsValid() {
		return FormatInfo{}
	}
	return formatInfoTable[f]
}

// BytesPerPixel returns the number of bytes per pixel.
func (f Format) BytesPerPixel() int { return f.Info().BytesPerPixel }

// Channels returns the number of channels.
func (f Format) Channels() int { return f.Info().Channels }

// HasAlpha reports whether the format stores alpha.
func (f Format) HasAlpha() bool { return f.Info().HasAlpha }

// ChannelOffsets returns the byte offsets of R, G and B within a pixel.
func (f Format) ChannelOffsets() (r, g, b int) {
	info := f.Info()
	return info.R, info.G, info.B
}

// AlphaOffset returns the byte offset of alpha within a pixel, or -1.
func (f Format) AlphaOffset() int {
	if !f.IsValid() {
		return -1
	}
	return formatInfoTable[f].A
}

// String returns a human-readable format name.
func (f Format) String() string {
	if !f.IsValid() {
		return "Unknown"
	}
	return formatInfoTable[f].name
}

// IsValid reports whether f is a known format.
func (f Format) IsValid() bool {
	return f < formatCount
}

// RowBytes returns the minimum number of bytes for a row of width pixels.
func (f Format) RowBytes(width int) int {
	return width * f.BytesPerPixel()
}

// ImageBytes returns the number of bytes for a tightly packed image.
func (f Format) ImageBytes(width, height int) int {
	return f.RowBytes(width) * height
}

// ForChannels returns the packed format with the given channel count:
// 1 → Gray8, 3 → RGB8, 4 → RGBA8. ok is false for any other count.
func ForChannels(n int) (f Format, ok bool) {
	switch n {
	case 1:
		return FormatGray8, true
	case 3:
		return FormatRGB8, true
	case 4:
		return FormatRGBA8, true
	}
	return 0, false
}
