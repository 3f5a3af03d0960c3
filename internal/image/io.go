// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when an image cannot be converted
	// into the requested pixel format.
	ErrUnsupportedFormat = errors.New("image: unsupported format")

	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("image: empty data")
)

// LoadImage loads an image file in any registered format (PNG, JPEG, BMP,
// TIFF, WebP) and converts it to format.
func LoadImage(path string, format Format) (*ImageBuf, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("image: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f, format)
}

// LoadImageFromBytes decodes data in any registered format.
func LoadImageFromBytes(data []byte, format Format) (*ImageBuf, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	return Decode(bytes.NewReader(data), format)
}

// Decode decodes an image, auto-detecting the encoding, and converts it to
// format. The buffer origin is the decoded image's bounds minimum.
func Decode(r io.Reader, format Format) (*ImageBuf, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("image: decode: %w", err)
	}
	return FromStdImage(img, format)
}

// SavePNG saves the buffer as a PNG file.
func (b *ImageBuf) SavePNG(path string) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("image: create file: %w", err)
	}

	if err := b.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// EncodePNG encodes the buffer as PNG.
func (b *ImageBuf) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, b.ToStdImage()); err != nil {
		return fmt.Errorf("image: encode PNG: %w", err)
	}
	return nil
}

// FromStdImage converts img into a new buffer of the given format, placed at
// img.Bounds().Min. Gray8 targets store luminance, or alpha when img is an
// *image.Alpha.
func FromStdImage(img image.Image, format Format) (*ImageBuf, error) {
	bounds := img.Bounds()
	buf, err := NewImageBuf(bounds.Dx(), bounds.Dy(), format)
	if err != nil {
		return nil, err
	}
	buf.SetOrigin(bounds.Min.X, bounds.Min.Y)

	if format == FormatGray8 {
		fillGray(buf, img)
		return buf, nil
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(bounds)
		xdraw.Draw(nrgba, bounds, img, bounds.Min, xdraw.Src)
	}

	info := format.Info()
	bpp := info.BytesPerPixel
	for y := range buf.height {
		src := nrgba.Pix[y*nrgba.Stride:]
		dst := buf.RowBytes(y)
		for x := range buf.width {
			s, d := src[x*4:x*4+4], dst[x*bpp:x*bpp+bpp]
			d[info.R], d[info.G], d[info.B] = s[0], s[1], s[2]
			if info.A >= 0 {
				d[info.A] = s[3]
			}
		}
	}
	return buf, nil
}

func fillGray(buf *ImageBuf, img image.Image) {
	switch src := img.(type) {
	case *image.Gray:
		for y := range buf.height {
			copy(buf.RowBytes(y), src.Pix[y*src.Stride:])
		}
	case *image.Alpha:
		for y := range buf.height {
			copy(buf.RowBytes(y), src.Pix[y*src.Stride:])
		}
	default:
		bounds := img.Bounds()
		for y := range buf.height {
			row := buf.RowBytes(y)
			for x := range buf.width {
				g := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
				row[x] = g.Y
			}
		}
	}
}

// ToStdImage converts the buffer to a standard library image placed at the
// buffer origin: *image.Gray for Gray8, *image.NRGBA otherwise (opaque for RGB8).
func (b *ImageBuf) ToStdImage() image.Image {
	rect := image.Rect(b.ox, b.oy, b.ox+b.width, b.oy+b.height)

	if b.format == FormatGray8 {
		gray := image.NewGray(rect)
		for y := range b.height {
			copy(gray.Pix[y*gray.Stride:], b.RowBytes(y))
		}
		return gray
	}

	info := b.format.Info()
	bpp := info.BytesPerPixel
	nrgba := image.NewNRGBA(rect)
	for y := range b.height {
		src := b.RowBytes(y)
		dst := nrgba.Pix[y*nrgba.Stride:]
		for x := range b.width {
			s, d := src[x*bpp:x*bpp+bpp], dst[x*4:x*4+4]
			d[0], d[1], d[2], d[3] = s[info.R], s[info.G], s[info.B], 255
			if info.A >= 0 {
				d[3] = s[info.A]
			}
		}
	}
	return nrgba
}

// Scale returns a copy of b resized to width×height with Catmull-Rom
// resampling, in the same format and at the same origin.
func (b *ImageBuf) Scale(width, height int) (*ImageBuf, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if width == b.width && height == b.height {
		return b.Clone(), nil
	}

	src := b.ToStdImage()
	sb := src.Bounds()
	dstRect := image.Rect(sb.Min.X, sb.Min.Y, sb.Min.X+width, sb.Min.Y+height)

	var dst image.Image
	if b.format == FormatGray8 {
		g := image.NewGray(dstRect)
		xdraw.CatmullRom.Scale(g, dstRect, src, sb, xdraw.Src, nil)
		dst = g
	} else {
		n := image.NewNRGBA(dstRect)
		xdraw.CatmullRom.Scale(n, dstRect, src, sb, xdraw.Src, nil)
		dst = n
	}
	return FromStdImage(dst, b.format)
}
