// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command sdfilter runs the generation filter over a PNG file.
//
// The input image is the layer: its alpha protects transparent pixels and an
// optional grayscale mask blends the result in proportionally. Parameters
// come from the settings file next to the module (or -settings), with
// -setting and -prompt applied on top like edits in a host UI.
//
//	sdfilter -in photo.png -out result.png -setting Portrait
//	sdfilter -in photo.png -mask sky.png -prompt "stormy sky" -tui
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/gogpu/sdfilter"
	"github.com/gogpu/sdfilter/backend"
	"github.com/gogpu/sdfilter/internal/tile"
	"github.com/gogpu/sdfilter/property"
	"github.com/gogpu/sdfilter/run"
	"github.com/gogpu/sdfilter/settings"
	"github.com/gogpu/sdfilter/surface"
)

type config struct {
	in, out, mask string
	base          string
	settingsPath  string
	setting       string
	prompt        string
	backend       string
	program       string
	tileSize      int
	tui           bool
	verbose       bool
	logFile       string
}

func main() {
	var c config
	flag.StringVar(&c.in, "in", "", "input PNG (required)")
	flag.StringVar(&c.out, "out", "out.png", "output PNG")
	flag.StringVar(&c.mask, "mask", "", "grayscale selection mask PNG")
	flag.StringVar(&c.base, "base", ".", "module base directory")
	flag.StringVar(&c.settingsPath, "settings", "", "settings file (default <base>/"+settings.DefaultFile+")")
	flag.StringVar(&c.setting, "setting", "", "setting name (default first)")
	flag.StringVar(&c.prompt, "prompt", "", "prompt override")
	flag.StringVar(&c.backend, "backend", "", "backend name, one of "+strings.Join(backend.Names(), ", ")+" (default best available)")
	flag.StringVar(&c.program, "program", "", "program run by the exec backend")
	flag.IntVar(&c.tileSize, "tile", tile.DefaultWidth, "tile size in pixels")
	flag.BoolVar(&c.tui, "tui", false, "interactive terminal UI")
	flag.BoolVar(&c.verbose, "v", false, "verbose logging")
	flag.StringVar(&c.logFile, "log", "", "log file (default stderr, discarded with -tui)")
	flag.Parse()

	if c.in == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := runFilter(ctx, c); err != nil {
		log.Fatalf("sdfilter: %v", err)
	}
}

func runFilter(ctx context.Context, c config) error {
	logger, closeLog, err := newLogger(c)
	if err != nil {
		return err
	}
	defer closeLog()
	sdfilter.SetLogger(logger)

	opts := []sdfilter.Option{sdfilter.WithBackend(c.backend), sdfilter.WithProgram(c.program)}
	if c.settingsPath != "" {
		opts = append(opts, sdfilter.WithSettingsPath(c.settingsPath))
	}
	m := sdfilter.NewModule(c.base, opts...)
	defer func() { _ = m.Close() }()

	store := property.NewMapStore()
	if err := m.InitializeFilter(store); err != nil {
		return err
	}
	apply := func() error { return applyOverrides(m, store, c) }
	if err := apply(); err != nil {
		return err
	}

	job, dst, err := loadJob(c)
	if err != nil {
		return err
	}

	reload := func() {
		if err := m.Reload(); err != nil {
			logger.Warn("reload settings", "err", err)
			return
		}
		if err := apply(); err != nil {
			logger.Warn("apply overrides", "err", err)
		}
	}

	var host interface {
		run.Host
		requestRestart()
	}
	if c.tui {
		h, err := newTUIHost(nil, dst, reload)
		if err != nil {
			return err
		}
		defer h.Close()
		host = h
	} else {
		host = newConsoleHost(logger, dst, reload)
	}

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	if w, err := settings.Watch(watchCtx, m.SettingsPath(), settings.WithLogger(logger)); err != nil {
		logger.Warn("watch settings", "path", m.SettingsPath(), "err", err)
	} else {
		defer func() { _ = w.Close() }()
		go func() {
			for {
				select {
				case <-watchCtx.Done():
					return
				case <-w.Changed():
					logger.Info("settings changed", "path", m.SettingsPath())
					host.requestRestart()
				}
			}
		}()
	}

	if err := m.Run(ctx, host, job); err != nil {
		return err
	}
	if len(dst.Updated()) == 0 {
		logger.Warn("nothing generated", "area", job.Area)
		return nil
	}
	if err := dst.SavePNG(c.out); err != nil {
		return err
	}
	logger.Info("saved", "path", c.out, "area", job.Area, "tiles", len(dst.Updated()))
	return nil
}

// applyOverrides selects -setting and sets -prompt through the property
// store, the way a host UI would.
func applyOverrides(m *sdfilter.Module, store property.Store, c config) error {
	if c.setting != "" {
		idx := slices.Index(m.Settings(), c.setting)
		if idx < 0 {
			return fmt.Errorf("unknown setting %q (have %v)", c.setting, m.Settings())
		}
		store.SetEnumeration(property.KeySetting, idx)
		m.SyncProperty(property.KeySetting, store)
	}
	if c.prompt != "" {
		store.SetString(property.KeyPrompt, c.prompt)
		m.SyncProperty(property.KeyPrompt, store)
	}
	return nil
}

// loadJob builds the layer surfaces. The source is a snapshot of the input
// so the destination can be written while tiles are still being read.
func loadJob(c config) (run.Job, *surface.MemorySurface, error) {
	sopts := []surface.Option{surface.WithTileSize(c.tileSize, c.tileSize)}

	dst, err := surface.LoadMemorySurface(c.in, sopts...)
	if err != nil {
		return run.Job{}, nil, err
	}
	job := run.Job{
		Area:        dst.Bounds(),
		Source:      dst.Clone(),
		Destination: dst,
	}

	if c.mask != "" {
		mask, err := surface.LoadMaskSurface(c.mask, sopts...)
		if err != nil {
			return run.Job{}, nil, err
		}
		job.Area = job.Area.Intersect(mask.Bounds())
		job.Select = mask
	}
	return job, dst, nil
}

func newLogger(c config) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case c.logFile != "":
		f, err := os.Create(c.logFile)
		if err != nil {
			return nil, nil, err
		}
		w, closeFn = f, func() { _ = f.Close() }
	case c.tui:
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn, nil
}
