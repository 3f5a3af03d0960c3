// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package block

import (
	"bytes"
	"testing"
)

// newTestBlock allocates a block covering r with the given pixel layout and
// row padding. Pix starts at r's origin and NeedsOffset is set.
func newTestBlock(r Rect, pixelStride, pad int, ch [3]int) Block {
	rowStride := r.Dx()*pixelStride + pad
	return Block{
		Rect:        r,
		Pix:         make([]byte, rowStride*r.Dy()),
		RowStride:   rowStride,
		PixelStride: pixelStride,
		R:           ch[0],
		G:           ch[1],
		B:           ch[2],
		NeedsOffset: true,
	}
}

// newPlane allocates a single channel block.
func newPlane(r Rect, fill byte) Block {
	b := newTestBlock(r, 1, 0, [3]int{})
	for i := range b.Pix {
		b.Pix[i] = fill
	}
	return b
}

func (b Block) index(x, y int) int {
	return (y-b.Rect.Top)*b.RowStride + (x-b.Rect.Left)*b.PixelStride
}

func (b Block) rgb(x, y int) [3]byte {
	i := b.index(x, y)
	return [3]byte{b.Pix[i+b.R], b.Pix[i+b.G], b.Pix[i+b.B]}
}

func (b Block) setRGB(x, y int, c [3]byte) {
	i := b.index(x, y)
	b.Pix[i+b.R], b.Pix[i+b.G], b.Pix[i+b.B] = c[0], c[1], c[2]
}

func (b Block) set(x, y int, v byte) {
	b.Pix[b.index(x, y)] = v
}

// fillPattern gives every pixel of b a distinct color.
func fillPattern(b Block) {
	for y := b.Rect.Top; y < b.Rect.Bottom; y++ {
		for x := b.Rect.Left; x < b.Rect.Right; x++ {
			b.setRGB(x, y, [3]byte{byte(x*16 + 1), byte(y*16 + 2), byte(x + y + 3)})
		}
	}
}

var (
	rgbOrder = [3]int{0, 1, 2}
	bgrOrder = [3]int{2, 1, 0}
)

func TestTransferCopiesIntersection(t *testing.T) {
	dst := newTestBlock(Rt(0, 0, 8, 8), 4, 8, bgrOrder)
	for i := range dst.Pix {
		dst.Pix[i] = 0xEE
	}
	before := bytes.Clone(dst.Pix)

	src := newTestBlock(Rt(4, 2, 12, 6), 3, 0, rgbOrder)
	fillPattern(src)

	Transfer(dst, src)

	inter := dst.Rect.Intersect(src.Rect)
	for y := dst.Rect.Top; y < dst.Rect.Bottom; y++ {
		for x := dst.Rect.Left; x < dst.Rect.Right; x++ {
			if inter.Contains(x, y) {
				if got, want := dst.rgb(x, y), src.rgb(x, y); got != want {
					t.Errorf("pixel (%d,%d): expected %v, got %v", x, y, want, got)
				}
				continue
			}
			i := dst.index(x, y)
			if !bytes.Equal(dst.Pix[i:i+4], before[i:i+4]) {
				t.Errorf("pixel (%d,%d) outside intersection was modified", x, y)
			}
		}
	}

	// The fourth byte of each destination pixel is not a color channel.
	for y := inter.Top; y < inter.Bottom; y++ {
		for x := inter.Left; x < inter.Right; x++ {
			if dst.Pix[dst.index(x, y)+3] != 0xEE {
				t.Fatalf("pixel (%d,%d): padding byte was written", x, y)
			}
		}
	}

	// Row padding is never touched.
	for y := 0; y < dst.Rect.Dy(); y++ {
		pad := dst.Pix[y*dst.RowStride+32 : (y+1)*dst.RowStride]
		if !bytes.Equal(pad, before[y*dst.RowStride+32:(y+1)*dst.RowStride]) {
			t.Fatalf("row %d padding was modified", y)
		}
	}
}

func TestTransferDisjointIsNoop(t *testing.T) {
	dst := newTestBlock(Rt(0, 0, 4, 4), 3, 0, rgbOrder)
	src := newTestBlock(Rt(4, 0, 8, 4), 3, 0, rgbOrder)
	fillPattern(src)
	before := bytes.Clone(dst.Pix)

	Transfer(dst, src)
	TransferAlpha(dst, src, newPlane(src.Rect, 255))
	TransferSelect(dst, src, newPlane(src.Rect, 255), newPlane(src.Rect, 255))

	if !bytes.Equal(dst.Pix, before) {
		t.Error("disjoint transfer modified destination")
	}
}

func TestTransferEmptyBlocks(t *testing.T) {
	// Inverted rectangles must not be turned into negative loop bounds.
	dst := Block{Rect: Rt(4, 4, 0, 0)}
	src := Block{Rect: Rt(0, 0, 4, 4)}
	Transfer(dst, src)
	TransferAlpha(dst, src, Block{})
	TransferSelect(dst, src, Block{}, Block{})
}

func TestTransferPrePositionedBlocks(t *testing.T) {
	// A host tile whose slice already starts at the processed origin.
	full := newTestBlock(Rt(0, 0, 8, 8), 4, 0, rgbOrder)
	tileRect := Rt(4, 4, 8, 8)
	tile := Block{
		Rect:        tileRect,
		Pix:         full.Pix[full.index(4, 4):],
		RowStride:   full.RowStride,
		PixelStride: full.PixelStride,
		R:           0, G: 1, B: 2,
	}

	src := newTestBlock(Rt(0, 0, 8, 8), 3, 0, bgrOrder)
	fillPattern(src)

	Transfer(tile, src)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			got := full.rgb(x, y)
			if tileRect.Contains(x, y) {
				if want := src.rgb(x, y); got != want {
					t.Errorf("pixel (%d,%d): expected %v, got %v", x, y, want, got)
				}
			} else if got != [3]byte{} {
				t.Errorf("pixel (%d,%d) outside tile was modified: %v", x, y, got)
			}
		}
	}
}

func TestTransferAlphaGate(t *testing.T) {
	r := Rt(0, 0, 4, 3)
	dst := newTestBlock(r, 4, 0, bgrOrder)
	for i := range dst.Pix {
		dst.Pix[i] = 7
	}
	before := bytes.Clone(dst.Pix)

	src := newTestBlock(r, 3, 2, rgbOrder)
	fillPattern(src)

	alpha := newPlane(r, 0)
	alpha.set(0, 0, 1)
	alpha.set(2, 1, 128)
	alpha.set(3, 2, 255)

	TransferAlpha(dst, src, alpha)

	for y := r.Top; y < r.Bottom; y++ {
		for x := r.Left; x < r.Right; x++ {
			i := dst.index(x, y)
			if alpha.Pix[alpha.index(x, y)] == 0 {
				if !bytes.Equal(dst.Pix[i:i+4], before[i:i+4]) {
					t.Errorf("pixel (%d,%d) with zero alpha was modified", x, y)
				}
				continue
			}
			if got, want := dst.rgb(x, y), src.rgb(x, y); got != want {
				t.Errorf("pixel (%d,%d): expected %v, got %v", x, y, want, got)
			}
		}
	}
}

func TestTransferAlphaStrided(t *testing.T) {
	// Alpha interleaved in an RGBA buffer with its own origin.
	r := Rt(2, 2, 5, 4)
	dst := newTestBlock(r, 3, 0, rgbOrder)
	src := newTestBlock(Rt(0, 0, 8, 8), 3, 0, rgbOrder)
	fillPattern(src)

	rgba := newTestBlock(Rt(0, 0, 8, 8), 4, 0, rgbOrder)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if (x+y)%2 == 0 {
				rgba.Pix[rgba.index(x, y)+3] = 255
			}
		}
	}
	alpha := rgba
	alpha.Pix = rgba.Pix[3:]

	TransferAlpha(dst, src, alpha)

	for y := r.Top; y < r.Bottom; y++ {
		for x := r.Left; x < r.Right; x++ {
			got := dst.rgb(x, y)
			if (x+y)%2 == 0 {
				if want := src.rgb(x, y); got != want {
					t.Errorf("pixel (%d,%d): expected %v, got %v", x, y, want, got)
				}
			} else if got != [3]byte{} {
				t.Errorf("pixel (%d,%d): expected untouched, got %v", x, y, got)
			}
		}
	}
}

func TestBlend(t *testing.T) {
	tests := []struct {
		d, s   byte
		weight int
		want   byte
	}{
		{10, 200, 0, 10},
		{10, 200, 255, 200},
		{10, 200, 128, 105},  // 10 + 190*128/255 = 10 + 95
		{200, 10, 128, 105},  // 200 + (-190*128)/255 = 200 - 95
		{0, 255, 1, 1},       // 255/255
		{0, 254, 1, 0},       // truncated
		{255, 0, 1, 254},     // 255 + (-255)/255
		{0, 200, 85, 66},     // 17000/255 = 66.67
		{0, 200, 170, 133},   // 34000/255 = 133.33
		{100, 100, 200, 100}, // equal channels never move
		{255, 255, 255, 255}, // saturated
		{0, 0, 255, 0},       // black stays black
		{1, 0, 254, 1},       // -254/255 truncates to 0
		{128, 255, 255, 255}, // full weight lands on source
		{128, 0, 255, 0},     // full weight lands on source, downward
		{37, 211, 100, 105},  // 37 + 17400/255 = 37 + 68
		{211, 37, 100, 143},  // 211 - 68
		{50, 60, 254, 59},    // 50 + 2540/255 = 50 + 9
		{60, 50, 254, 51},    // 60 - 9
		{0, 255, 128, 128},   // 32640/255 = 128
		{255, 0, 128, 127},   // 255 - 128
	}
	for _, tt := range tests {
		if got := blend(tt.d, tt.s, tt.weight); got != tt.want {
			t.Errorf("blend(%d, %d, %d) = %d, want %d", tt.d, tt.s, tt.weight, got, tt.want)
		}
	}
}

func TestTransferSelectWeights(t *testing.T) {
	r := Rt(0, 0, 3, 1)
	dst := newTestBlock(r, 3, 0, rgbOrder)
	src := newTestBlock(r, 4, 0, bgrOrder)
	for x := 0; x < 3; x++ {
		dst.setRGB(x, 0, [3]byte{10, 10, 10})
		src.setRGB(x, 0, [3]byte{200, 200, 200})
	}

	sel := newPlane(r, 0)
	sel.set(0, 0, 0)
	sel.set(1, 0, 255)
	sel.set(2, 0, 128)

	TransferSelect(dst, src, newPlane(r, 255), sel)

	want := [][3]byte{{10, 10, 10}, {200, 200, 200}, {105, 105, 105}}
	for x, w := range want {
		if got := dst.rgb(x, 0); got != w {
			t.Errorf("column %d: expected %v, got %v", x, w, got)
		}
	}
}

func TestTransferSelectZeroAlpha(t *testing.T) {
	r := Rt(0, 0, 2, 2)
	dst := newTestBlock(r, 4, 0, rgbOrder)
	for i := range dst.Pix {
		dst.Pix[i] = 3
	}
	before := bytes.Clone(dst.Pix)
	src := newTestBlock(r, 3, 0, rgbOrder)
	fillPattern(src)

	TransferSelect(dst, src, newPlane(r, 0), newPlane(r, 255))

	if !bytes.Equal(dst.Pix, before) {
		t.Error("zero alpha must leave destination unchanged regardless of selection")
	}
}

// TestTransferSelectEndToEnd composites a 4x4 source onto a cleared 4x4
// destination through a selection ramp of 0, 85, 170 and 255.
func TestTransferSelectEndToEnd(t *testing.T) {
	r := Rt(0, 0, 4, 4)
	dst := newTestBlock(r, 4, 0, bgrOrder)
	src := newTestBlock(r, 3, 0, rgbOrder)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.setRGB(x, y, [3]byte{byte(60 + 40*x + y), byte(200 - 10*y), byte(17 * (x + 4*y))})
		}
	}
	alpha := newPlane(r, 255)
	sel := newPlane(r, 0)
	ramp := []byte{0, 85, 170, 255}
	for y := 0; y < 4; y++ {
		for x, w := range ramp {
			sel.set(x, y, w)
		}
	}

	TransferSelect(dst, src, alpha, sel)

	for y := 0; y < 4; y++ {
		for x, w := range ramp {
			s := src.rgb(x, y)
			var want [3]byte
			for c := range want {
				want[c] = byte(int(s[c]) * int(w) / 255)
			}
			if got := dst.rgb(x, y); got != want {
				t.Errorf("pixel (%d,%d) weight %d: expected %v, got %v", x, y, w, want, got)
			}
		}
	}

	// Spot-check exact values of the first row.
	// Source row 0: (60,200,0) (100,200,17) (140,200,34) (180,200,51).
	exact := [][3]byte{{0, 0, 0}, {33, 66, 5}, {93, 133, 22}, {180, 200, 51}}
	for x, want := range exact {
		if got := dst.rgb(x, 0); got != want {
			t.Errorf("row 0 column %d: expected %v, got %v", x, want, got)
		}
	}
}
