// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package block

import "image"

// Rect is a half-open integer rectangle: it contains the pixels (x, y) with
// Left <= x < Right and Top <= y < Bottom.
//
// The zero value is the canonical empty rectangle. Operations that would
// produce an inverted or degenerate result return Rect{} instead.
type Rect struct {
	Left, Top, Right, Bottom int
}

// Rt is shorthand for Rect{Left: left, Top: top, Right: right, Bottom: bottom}.
func Rt(left, top, right, bottom int) Rect {
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// FromImage converts an image.Rectangle.
func FromImage(r image.Rectangle) Rect {
	return Rect{Left: r.Min.X, Top: r.Min.Y, Right: r.Max.X, Bottom: r.Max.Y}
}

// Image converts r to an image.Rectangle. Empty rectangles map to image.Rectangle{}.
func (r Rect) Image() image.Rectangle {
	if r.Empty() {
		return image.Rectangle{}
	}
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

// Empty reports whether r contains no pixels.
func (r Rect) Empty() bool {
	return r.Left >= r.Right || r.Top >= r.Bottom
}

// Dx returns the width of r, or 0 if r is empty.
func (r Rect) Dx() int {
	if r.Empty() {
		return 0
	}
	return r.Right - r.Left
}

// Dy returns the height of r, or 0 if r is empty.
func (r Rect) Dy() int {
	if r.Empty() {
		return 0
	}
	return r.Bottom - r.Top
}

// Intersect returns the largest rectangle contained by both r and o.
// If they do not overlap, the canonical empty Rect{} is returned.
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		Left:   max(r.Left, o.Left),
		Top:    max(r.Top, o.Top),
		Right:  min(r.Right, o.Right),
		Bottom: min(r.Bottom, o.Bottom),
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// Union returns the smallest rectangle containing both r and o.
// Empty operands are ignored.
func (r Rect) Union(o Rect) Rect {
	switch {
	case r.Empty() && o.Empty():
		return Rect{}
	case r.Empty():
		return o
	case o.Empty():
		return r
	}
	return Rect{
		Left:   min(r.Left, o.Left),
		Top:    min(r.Top, o.Top),
		Right:  max(r.Right, o.Right),
		Bottom: max(r.Bottom, o.Bottom),
	}
}

// Overlaps reports whether r and o share at least one pixel.
func (r Rect) Overlaps(o Rect) bool {
	return !r.Intersect(o).Empty()
}

// Contains reports whether the pixel (x, y) lies in r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

// Area returns the number of pixels in r.
func (r Rect) Area() int {
	return r.Dx() * r.Dy()
}
