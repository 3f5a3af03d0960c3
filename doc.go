// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package sdfilter generates image content for a host painting application
// with a Stable Diffusion backend.
//
// # Overview
//
// The host owns the layer pixels and hands them out as tiles. A filter run
// gathers the tiles of the target area into one RGB image, generates a new
// image from it, and writes the result back tile by tile. Writes honor the
// layer's alpha and, when present, a selection mask that blends the result
// in proportionally.
//
// # Quick Start
//
//	m := sdfilter.NewModule(dir)
//	defer m.Close()
//
//	store := property.NewMapStore()
//	if err := m.InitializeFilter(store); err != nil {
//	    return err
//	}
//
//	layer, _ := surface.LoadMemorySurface("in.png")
//	err := m.Run(ctx, host, run.Job{
//	    Area:        layer.Bounds(),
//	    Source:      layer.Clone(),
//	    Destination: layer,
//	})
//
// # Architecture
//
// The module is organized into:
//   - block: rectangles, strided pixel views and the transfer kernels
//   - surface: tiled layers and selection masks
//   - run: the host protocol and the gather, generate, scatter loop
//   - backend: generators, selected through a registry
//   - settings: named parameter sets loaded from TOML or YAML
//   - property: the host UI items bound to parameters
//
// # Settings
//
// Settings are read from sdfilter.toml in the module base path unless
// WithSettingsPath says otherwise. Every run re-reads the file, so edits
// apply to the next run without restarting the host.
package sdfilter

// Version information
const (
	// Version is the current version of the module
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
