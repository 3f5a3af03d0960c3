// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package backend runs image generation for the filter.
//
// A Generator turns parameters and an optional input image into an output
// image, reporting sampling progress as it goes. Implementations register
// themselves by name and priority; the run controller picks one through the
// registry and never depends on a concrete backend.
package backend

import (
	"context"
	"errors"
)

// Common backend errors.
var (
	// ErrNotInitialized is returned when Generate is called on a backend
	// that failed to initialize.
	ErrNotInitialized = errors.New("backend: not initialized")

	// ErrInvalidImage is returned for images with bad dimensions or channels.
	ErrInvalidImage = errors.New("backend: invalid image")

	// ErrNoOutput is returned when a backend finishes without an image.
	ErrNoOutput = errors.New("backend: no output image")
)

// ProgressFunc receives sampling progress. step counts from 1 to steps.
type ProgressFunc func(step, steps int)

// Generator produces images.
//
// Init may be called before every run and must be idempotent. Close
// releases whatever Init acquired.
type Generator interface {
	// Name returns the registered backend name.
	Name() string

	// Init prepares the backend.
	Init() error

	// Close releases backend resources.
	Close() error

	// Generate runs one generation. input is nil for text-to-image.
	// progress may be nil.
	Generate(ctx context.Context, p Params, input *Image, progress ProgressFunc) (*Image, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, p Params, input *Image, progress ProgressFunc) (*Image, error)

// Name implements Generator.
func (GeneratorFunc) Name() string { return "func" }

// Init implements Generator.
func (GeneratorFunc) Init() error { return nil }

// Close implements Generator.
func (GeneratorFunc) Close() error { return nil }

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, p Params, input *Image, progress ProgressFunc) (*Image, error) {
	return f(ctx, p, input, progress)
}

// roundUp64 rounds n up to the next multiple of 64.
func roundUp64(n int) int {
	return (n + 63) / 64 * 64
}
