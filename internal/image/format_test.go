// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package image

import "testing"

func TestFormatInfo(t *testing.T) {
	tests := []struct {
		format  Format
		bpp     int
		r, g, b int
		a       int
		name    string
	}{
		{FormatGray8, 1, 0, 0, 0, -1, "Gray8"},
		{FormatRGB8, 3, 0, 1, 2, -1, "RGB8"},
		{FormatRGBA8, 4, 0, 1, 2, 3, "RGBA8"},
		{FormatBGRA8, 4, 2, 1, 0, 3, "BGRA8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.format.BytesPerPixel() != tt.bpp {
				t.Errorf("BytesPerPixel = %d, want %d", tt.format.BytesPerPixel(), tt.bpp)
			}
			r, g, b := tt.format.ChannelOffsets()
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("ChannelOffsets = %d,%d,%d", r, g, b)
			}
			if tt.format.AlphaOffset() != tt.a {
				t.Errorf("AlphaOffset = %d, want %d", tt.format.AlphaOffset(), tt.a)
			}
			if tt.format.String() != tt.name {
				t.Errorf("String = %q", tt.format.String())
			}
		})
	}

	if Format(200).IsValid() || Format(200).String() != "Unknown" || Format(200).AlphaOffset() != -1 {
		t.Error("invalid format should be reported as such")
	}
}

func TestForChannels(t *testing.T) {
	for n, want := range map[int]Format{1: FormatGray8, 3: FormatRGB8, 4: FormatRGBA8} {
		if f, ok := ForChannels(n); !ok || f != want {
			t.Errorf("ForChannels(%d) = %v, %v", n, f, ok)
		}
	}
	if _, ok := ForChannels(2); ok {
		t.Error("two channel images are not supported")
	}
}
