// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/gogpu/sdfilter/block"
)

// TestNewMemorySurface tests surface creation.
func TestNewMemorySurface(t *testing.T) {
	s := NewMemorySurface(100, 80)

	if s.Width() != 100 || s.Height() != 80 {
		t.Errorf("size = %dx%d, want 100x80", s.Width(), s.Height())
	}
	if s.Layout() != LayoutBGRA {
		t.Errorf("Layout() = %v, want BGRA", s.Layout())
	}
	if got := s.NRGBAAt(5, 5); got != (color.NRGBA{}) {
		t.Errorf("new surface pixel = %v, want transparent black", got)
	}
}

// TestNewMemorySurfaceInvalidSize tests handling of invalid dimensions.
func TestNewMemorySurfaceInvalidSize(t *testing.T) {
	s := NewMemorySurface(0, -3)
	if s.Width() != 1 || s.Height() != 1 {
		t.Errorf("expected 1x1, got %dx%d", s.Width(), s.Height())
	}
}

func TestMemorySurfaceTilesCoverQuery(t *testing.T) {
	s := NewMemorySurface(300, 200, WithTileSize(128, 128), WithOrigin(10, 20))

	if got, want := s.Bounds(), block.Rt(10, 20, 310, 220); got != want {
		t.Fatalf("Bounds() = %v, want %v", got, want)
	}

	tests := []struct {
		name  string
		query block.Rect
	}{
		{"whole", s.Bounds()},
		{"inner", block.Rt(50, 60, 250, 210)},
		{"overhang", block.Rt(-100, -100, 1000, 1000)},
		{"outside", block.Rt(400, 400, 500, 500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := tt.query.Intersect(s.Bounds())
			area := 0
			tiles := s.Tiles(tt.query)
			for i, a := range tiles {
				if a.Empty() {
					t.Errorf("tile %d is empty", i)
				}
				if a.Intersect(want) != a {
					t.Errorf("tile %v outside %v", a, want)
				}
				for _, b := range tiles[i+1:] {
					if a.Overlaps(b) {
						t.Errorf("tiles %v and %v overlap", a, b)
					}
				}
				area += a.Area()
			}
			if area != want.Area() {
				t.Errorf("covered area = %d, want %d", area, want.Area())
			}
		})
	}
}

func TestMemorySurfaceBlocks(t *testing.T) {
	for _, layout := range []Layout{LayoutBGRA, LayoutRGBA} {
		t.Run(layout.String(), func(t *testing.T) {
			s := NewMemorySurface(16, 16, WithLayout(layout), WithOrigin(100, 100))
			s.SetNRGBA(105, 107, color.NRGBA{R: 10, G: 20, B: 30, A: 40})

			b := s.ImageBlock(block.Rt(104, 106, 200, 200))
			if want := block.Rt(104, 106, 116, 116); b.Rect != want {
				t.Fatalf("clamped rect = %v, want %v", b.Rect, want)
			}
			if b.NeedsOffset {
				t.Error("surface blocks are positioned at the tile origin")
			}
			i := 1*b.RowStride + 1*b.PixelStride
			if b.Pix[i+b.R] != 10 || b.Pix[i+b.G] != 20 || b.Pix[i+b.B] != 30 {
				t.Errorf("rgb = %d,%d,%d, want 10,20,30", b.Pix[i+b.R], b.Pix[i+b.G], b.Pix[i+b.B])
			}

			a := s.AlphaBlock(block.Rt(104, 106, 200, 200))
			if a.Pix[1*a.RowStride+1*a.PixelStride] != 40 {
				t.Errorf("alpha = %d, want 40", a.Pix[1*a.RowStride+1*a.PixelStride])
			}

			if !s.SelectBlock(s.Bounds()).Empty() {
				t.Error("memory surface has no selection plane")
			}
			if !s.ImageBlock(block.Rt(0, 0, 10, 10)).Empty() {
				t.Error("block outside the surface should be empty")
			}
		})
	}
}

func TestMemorySurfaceFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(5, 5, 9, 8))
	img.SetNRGBA(6, 6, color.NRGBA{R: 200, G: 100, B: 50, A: 128})

	s, err := NewMemorySurfaceFromImage(img)
	if err != nil {
		t.Fatalf("NewMemorySurfaceFromImage: %v", err)
	}
	if s.Bounds() != block.Rt(0, 0, 4, 3) {
		t.Errorf("Bounds() = %v, want origin (0,0)", s.Bounds())
	}
	if got := s.NRGBAAt(1, 1); got != (color.NRGBA{R: 200, G: 100, B: 50, A: 128}) {
		t.Errorf("pixel = %v", got)
	}

	out := s.Image()
	if got := out.NRGBAAt(1, 1); got.A != 128 || got.R != 200 {
		t.Errorf("Image() pixel = %v", got)
	}
}

func TestMemorySurfacePNGRoundTrip(t *testing.T) {
	s := NewMemorySurface(8, 8, WithLayout(LayoutRGBA))
	s.Fill(color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	s.SetNRGBA(2, 3, color.NRGBA{R: 90, G: 80, B: 70, A: 0})

	path := filepath.Join(t.TempDir(), "s.png")
	if err := s.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	l, err := LoadMemorySurface(path)
	if err != nil {
		t.Fatalf("LoadMemorySurface: %v", err)
	}
	if got := l.NRGBAAt(0, 0); got != (color.NRGBA{R: 1, G: 2, B: 3, A: 255}) {
		t.Errorf("pixel (0,0) = %v", got)
	}
	if got := l.NRGBAAt(2, 3); got.A != 0 {
		t.Errorf("pixel (2,3) alpha = %d, want 0", got.A)
	}
}

func TestMemorySurfaceClone(t *testing.T) {
	s := NewMemorySurface(4, 4)
	s.Fill(color.NRGBA{R: 9, A: 255})
	s.MarkUpdated(s.Bounds())

	c := s.Clone()
	c.SetNRGBA(0, 0, color.NRGBA{R: 1, A: 1})

	if s.NRGBAAt(0, 0).R != 9 {
		t.Error("clone shares pixels with the original")
	}
	if len(c.Updated()) != 0 {
		t.Error("clone should start with no updates")
	}
}

func TestMemorySurfaceUpdates(t *testing.T) {
	s := NewMemorySurface(256, 256, WithTileSize(64, 64))

	s.MarkUpdated(block.Rt(10, 10, 20, 20))
	s.MarkUpdated(block.Rt(130, 70, 140, 80))

	got := s.Updated()
	want := []block.Rect{block.Rt(0, 0, 64, 64), block.Rt(128, 64, 192, 128)}
	if len(got) != len(want) {
		t.Fatalf("Updated() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Updated()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if b := s.UpdatedBounds(); b != block.Rt(0, 0, 192, 128) {
		t.Errorf("UpdatedBounds() = %v", b)
	}

	s.ResetUpdated()
	if len(s.Updated()) != 0 {
		t.Error("ResetUpdated left updates")
	}
}

func TestMaskSurface(t *testing.T) {
	m := NewMaskSurface(10, 10, WithOrigin(5, 5))
	m.FillRect(block.Rt(0, 0, 8, 8), 200)
	m.Set(14, 14, 7)

	if m.At(5, 5) != 200 || m.At(7, 7) != 200 || m.At(8, 8) != 0 {
		t.Errorf("FillRect weights wrong: %d %d %d", m.At(5, 5), m.At(7, 7), m.At(8, 8))
	}
	if m.At(14, 14) != 7 || m.At(100, 100) != 0 {
		t.Errorf("At = %d/%d", m.At(14, 14), m.At(100, 100))
	}

	sel := m.SelectBlock(block.Rt(6, 6, 9, 9))
	if sel.Rect != block.Rt(6, 6, 9, 9) || sel.Pix[0] != 200 {
		t.Errorf("SelectBlock = %v first %d", sel.Rect, sel.Pix[0])
	}
	if !m.ImageBlock(m.Bounds()).Empty() {
		t.Error("mask has no color")
	}
	if len(m.Tiles(block.Rt(0, 0, 100, 100))) != 1 {
		t.Error("10x10 mask should be one tile")
	}
}

func TestMaskSurfaceFromAlpha(t *testing.T) {
	img := image.NewAlpha(image.Rect(0, 0, 3, 1))
	img.SetAlpha(1, 0, color.Alpha{A: 77})

	m, err := NewMaskSurfaceFromImage(img)
	if err != nil {
		t.Fatal(err)
	}
	if m.At(1, 0) != 77 || m.At(0, 0) != 0 {
		t.Errorf("weights = %d,%d", m.At(0, 0), m.At(1, 0))
	}
}
