// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package block moves pixels between rectangular, strided views of image
// memory.
//
// A Block describes a window into a pixel buffer it does not own: the
// rectangle it covers in image space, the byte distance between rows and
// between pixels, and the byte offset of each color channel inside a pixel.
// Source and destination blocks may disagree on every one of these, so tiles
// handed out by a host can be exchanged with flat scratch images without any
// intermediate conversion.
//
// The transfer functions only ever touch the intersection of the blocks'
// rectangles:
//
//	Transfer(dst, src)                     // plain RGB copy
//	TransferAlpha(dst, src, alpha)         // copy where alpha > 0
//	TransferSelect(dst, src, alpha, sel)   // blend by sel where alpha > 0
//
// Blocks are short-lived values. A Block obtained from a tile provider is only
// valid until the call that produced it returns control to the provider.
package block

// Block is a borrowed view of pixel memory.
//
// Pix[0] is the first byte of the pixel at (Rect.Left, Rect.Top). Pixel
// (x, y) of Rect starts at (x-Rect.Left)*PixelStride + (y-Rect.Top)*RowStride.
//
// NeedsOffset tells the transfer functions whether they must advance into Pix
// to reach the origin of the region being processed. Hosts that hand out one
// block per tile already position Pix at the tile being processed and leave
// NeedsOffset false; scratch images covering a larger area set it to true.
//
// R, G and B are byte offsets within a pixel. Single channel blocks (alpha,
// selection) read their sample at byte 0 and ignore R, G and B.
type Block struct {
	Rect        Rect
	Pix         []byte
	RowStride   int
	PixelStride int
	R, G, B     int
	NeedsOffset bool
}

// Offset returns the byte offset of target's origin inside b.Pix.
// It is zero when b.NeedsOffset is false.
func (b Block) Offset(target Rect) int {
	if !b.NeedsOffset {
		return 0
	}
	dx := target.Left - b.Rect.Left
	dy := target.Top - b.Rect.Top
	return dy*b.RowStride + dx*b.PixelStride
}

// Empty reports whether b covers no pixels.
func (b Block) Empty() bool {
	return b.Rect.Empty() || len(b.Pix) == 0
}
