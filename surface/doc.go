// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface defines how the filter sees host layers.
//
// A host layer is stored as tiles. The filter never assumes anything about
// tile storage: it asks a Surface for the tiles covering an area and then
// for strided block views over each tile. Blocks are borrowed and are
// addressed as described in package block.
//
// # Surface Types
//
//   - MemorySurface: color pixels with a separate alpha plane, for hosts
//     that keep layers in memory and for tests
//   - MaskSurface: a single 8-bit plane serving selection weights
//
// # Usage
//
//	src, err := surface.NewMemorySurfaceFromImage(img, surface.WithTileSize(128, 128))
//	if err != nil {
//	    return err
//	}
//	for _, t := range src.Tiles(area) {
//	    b := src.ImageBlock(t)
//	    // b.Rect may be smaller than t near the layer edge
//	}
//
// # Update tracking
//
// Hosts redraw the rectangles the filter reports as updated. MemorySurface
// records them per tile so a host can read back what changed with Updated.
package surface
