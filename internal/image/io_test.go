// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package image

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

func TestFromStdImageFormats(t *testing.T) {
	src := image.NewRGBA(image.Rect(2, 3, 6, 7))
	src.Set(3, 4, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	for _, f := range []Format{FormatRGB8, FormatRGBA8, FormatBGRA8} {
		buf, err := FromStdImage(src, f)
		if err != nil {
			t.Fatalf("%v: %v", f, err)
		}
		if x, y := buf.Origin(); x != 2 || y != 3 {
			t.Errorf("%v: origin = (%d,%d), want (2,3)", f, x, y)
		}
		r, g, b, _ := buf.GetRGBA(1, 1)
		if r != 200 || g != 100 || b != 50 {
			t.Errorf("%v: pixel = (%d,%d,%d)", f, r, g, b)
		}
	}
}

func TestFromStdImageGray(t *testing.T) {
	alpha := image.NewAlpha(image.Rect(0, 0, 2, 2))
	alpha.SetAlpha(1, 1, color.Alpha{A: 170})
	buf, err := FromStdImage(alpha, FormatGray8)
	if err != nil {
		t.Fatal(err)
	}
	if got := buf.PixelBytes(1, 1)[0]; got != 170 {
		t.Errorf("alpha sample = %d, want 170", got)
	}

	rgba := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	rgba.Set(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	gray, _ := FromStdImage(rgba, FormatGray8)
	if got := gray.PixelBytes(0, 0)[0]; got != 255 {
		t.Errorf("white luminance = %d", got)
	}
}

func TestPNGRoundTrip(t *testing.T) {
	buf, _ := NewImageBuf(3, 2, FormatBGRA8)
	_ = buf.SetRGBA(2, 1, 11, 22, 33, 44)

	path := filepath.Join(t.TempDir(), "out.png")
	if err := buf.SavePNG(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadImage(path, FormatRGBA8)
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, a := loaded.GetRGBA(2, 1)
	if r != 11 || g != 22 || b != 33 || a != 44 {
		t.Errorf("pixel = (%d,%d,%d,%d)", r, g, b, a)
	}
}

func TestDecodeBMP(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(1, 0, color.NRGBA{R: 9, G: 99, B: 199, A: 255})
	var data bytes.Buffer
	if err := bmp.Encode(&data, src); err != nil {
		t.Fatal(err)
	}

	buf, err := LoadImageFromBytes(data.Bytes(), FormatRGB8)
	if err != nil {
		t.Fatal(err)
	}
	if r, g, b, _ := buf.GetRGBA(1, 0); r != 9 || g != 99 || b != 199 {
		t.Errorf("pixel = (%d,%d,%d)", r, g, b)
	}
}

func TestLoadImageFromBytesEmpty(t *testing.T) {
	if _, err := LoadImageFromBytes(nil, FormatRGB8); !errors.Is(err, ErrEmptyData) {
		t.Errorf("expected ErrEmptyData, got %v", err)
	}
	if _, err := LoadImageFromBytes([]byte("not an image"), FormatRGB8); err == nil {
		t.Error("expected decode error")
	}
}

func TestScale(t *testing.T) {
	buf, _ := NewImageBuf(2, 2, FormatRGB8)
	buf.Fill(80, 90, 100, 255)
	buf.SetOrigin(4, 4)

	big, err := buf.Scale(8, 6)
	if err != nil {
		t.Fatal(err)
	}
	if big.Width() != 8 || big.Height() != 6 || big.Format() != FormatRGB8 {
		t.Fatalf("scaled to %dx%d %v", big.Width(), big.Height(), big.Format())
	}
	if x, y := big.Origin(); x != 4 || y != 4 {
		t.Errorf("scaled origin = (%d,%d)", x, y)
	}
	if r, g, b, _ := big.GetRGBA(5, 3); r != 80 || g != 90 || b != 100 {
		t.Errorf("uniform image changed color: (%d,%d,%d)", r, g, b)
	}
	if _, err := buf.Scale(0, 1); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("expected ErrInvalidDimensions, got %v", err)
	}
}
