// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package block

// Transfer copies the RGB channels of src into dst over the intersection of
// their rectangles. Each block is read and written through its own channel
// offsets and strides. Pixels of dst outside the intersection are untouched.
func Transfer(dst, src Block) {
	rect := dst.Rect.Intersect(src.Rect)
	if rect.Empty() {
		return
	}

	dR, dG, dB := dst.R, dst.G, dst.B
	sR, sG, sB := src.R, src.G, src.B

	cols, rows := rect.Dx(), rect.Dy()
	dRow := dst.Offset(rect)
	sRow := src.Offset(rect)
	for y := 0; y < rows; y++ {
		d, s := dRow, sRow
		for x := 0; x < cols; x++ {
			dst.Pix[d+dR] = src.Pix[s+sR]
			dst.Pix[d+dG] = src.Pix[s+sG]
			dst.Pix[d+dB] = src.Pix[s+sB]
			d += dst.PixelStride
			s += src.PixelStride
		}
		dRow += dst.RowStride
		sRow += src.RowStride
	}
}

// TransferAlpha copies the RGB channels of src into dst like Transfer, but
// only for pixels whose alpha sample is non-zero. Pixels with zero alpha keep
// their previous contents, which preserves transparent areas of a layer.
//
// The gate is binary; alpha values between 1 and 255 all copy in full.
func TransferAlpha(dst, src, alpha Block) {
	rect := dst.Rect.Intersect(src.Rect)
	if rect.Empty() {
		return
	}

	dR, dG, dB := dst.R, dst.G, dst.B
	sR, sG, sB := src.R, src.G, src.B

	cols, rows := rect.Dx(), rect.Dy()
	dRow := dst.Offset(rect)
	sRow := src.Offset(rect)
	aRow := alpha.Offset(rect)
	for y := 0; y < rows; y++ {
		d, s, a := dRow, sRow, aRow
		for x := 0; x < cols; x++ {
			if alpha.Pix[a] > 0 {
				dst.Pix[d+dR] = src.Pix[s+sR]
				dst.Pix[d+dG] = src.Pix[s+sG]
				dst.Pix[d+dB] = src.Pix[s+sB]
			}
			d += dst.PixelStride
			s += src.PixelStride
			a += alpha.PixelStride
		}
		dRow += dst.RowStride
		sRow += src.RowStride
		aRow += alpha.RowStride
	}
}

// TransferSelect blends src into dst weighted by the selection mask sel,
// for pixels whose alpha sample is non-zero. Each channel becomes
//
//	d + (s-d)*w/255
//
// where w is the selection sample and the division truncates toward zero.
// w == 0 leaves the pixel unchanged and w == 255 reproduces src exactly.
// The truncation is deliberate and must not be replaced by rounding: output
// has to match existing renders bit for bit.
func TransferSelect(dst, src, alpha, sel Block) {
	rect := dst.Rect.Intersect(src.Rect)
	if rect.Empty() {
		return
	}

	dR, dG, dB := dst.R, dst.G, dst.B
	sR, sG, sB := src.R, src.G, src.B

	cols, rows := rect.Dx(), rect.Dy()
	dRow := dst.Offset(rect)
	sRow := src.Offset(rect)
	aRow := alpha.Offset(rect)
	wRow := sel.Offset(rect)
	for y := 0; y < rows; y++ {
		d, s, a, w := dRow, sRow, aRow, wRow
		for x := 0; x < cols; x++ {
			if alpha.Pix[a] > 0 {
				weight := int(sel.Pix[w])
				dst.Pix[d+dR] = blend(dst.Pix[d+dR], src.Pix[s+sR], weight)
				dst.Pix[d+dG] = blend(dst.Pix[d+dG], src.Pix[s+sG], weight)
				dst.Pix[d+dB] = blend(dst.Pix[d+dB], src.Pix[s+sB], weight)
			}
			d += dst.PixelStride
			s += src.PixelStride
			a += alpha.PixelStride
			w += sel.PixelStride
		}
		dRow += dst.RowStride
		sRow += src.RowStride
		aRow += alpha.RowStride
		wRow += sel.RowStride
	}
}

// blend interpolates from d toward s by weight/255.
// The result always lies between d and s, so the narrowing is safe.
func blend(d, s byte, weight int) byte {
	dv := int(d)
	return byte(dv + (int(s)-dv)*weight/255) //nolint:gosec // G115: result is within [min(d,s), max(d,s)]
}
