// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sdfilter

import (
	"log/slog"

	"github.com/gogpu/sdfilter/backend"
	intImage "github.com/gogpu/sdfilter/internal/image"
)

// Option configures a Module during creation.
//
// Example:
//
//	// Settings next to the module, best available backend
//	m := sdfilter.NewModule(dir)
//
//	// Explicit settings file and backend program
//	m := sdfilter.NewModule(dir,
//	    sdfilter.WithSettingsPath("/etc/sdfilter.yaml"),
//	    sdfilter.WithProgram("sd-cuda"))
type Option func(*moduleOptions)

// moduleOptions holds optional configuration for Module creation.
type moduleOptions struct {
	settingsPath string
	backendName  string
	program      string
	generator    backend.Generator
	logger       *slog.Logger
	pool         *intImage.Pool
}

// defaultOptions returns the default module options.
func defaultOptions() moduleOptions {
	return moduleOptions{
		settingsPath: "", // <base>/sdfilter.toml
		backendName:  "", // best available
	}
}

// WithSettingsPath sets the settings file. Relative paths are resolved
// against the module base path.
func WithSettingsPath(path string) Option {
	return func(o *moduleOptions) {
		o.settingsPath = path
	}
}

// WithBackend selects a registered backend by name instead of the best
// available one.
func WithBackend(name string) Option {
	return func(o *moduleOptions) {
		o.backendName = name
	}
}

// WithProgram sets the program run by the exec backend.
func WithProgram(program string) Option {
	return func(o *moduleOptions) {
		o.program = program
	}
}

// WithGenerator sets the generator directly, bypassing the backend
// registry. Use this for dependency injection in tests or embedders.
//
// Example:
//
//	gen := backend.GeneratorFunc(myGenerate)
//	m := sdfilter.NewModule(dir, sdfilter.WithGenerator(gen))
func WithGenerator(g backend.Generator) Option {
	return func(o *moduleOptions) {
		o.generator = g
	}
}

// WithLogger sets the module logger. The default is Logger() at the time
// NewModule is called.
func WithLogger(l *slog.Logger) Option {
	return func(o *moduleOptions) {
		o.logger = l
	}
}

// WithPool sets the pool run input images are drawn from. Modules share
// nothing by default.
func WithPool(p *intImage.Pool) Option {
	return func(o *moduleOptions) {
		o.pool = p
	}
}
