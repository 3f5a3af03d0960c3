// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package run drives one filter invocation against a host.
//
// A run is a loop of cycles. Each cycle announces Start, reads fresh
// parameters, gathers the source tiles of the target area into one RGB
// image, generates a new image from it, scatters the result into the
// destination tiles, and announces End. The host may answer Restart or
// Exit at every tile and at End; the reply is interpreted in one place.
//
// All host calls happen on the goroutine that called Run, in order, with no
// overlap between phases.
package run

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gogpu/sdfilter/backend"
	"github.com/gogpu/sdfilter/block"
	intImage "github.com/gogpu/sdfilter/internal/image"
	"github.com/gogpu/sdfilter/surface"
)

// Errors.
var (
	// ErrEmptyPrompt is returned when the parameters carry no prompt.
	ErrEmptyPrompt = errors.New("run: empty prompt")

	// ErrEmptyModelPath is returned when the parameters carry no model path.
	ErrEmptyModelPath = errors.New("run: empty model path")

	// ErrGenerateFailed wraps backend failures.
	ErrGenerateFailed = errors.New("run: generate failed")

	// ErrInvalidJob is returned for jobs without a source or destination.
	ErrInvalidJob = errors.New("run: invalid job")
)

// Host is the calling application.
type Host interface {
	// Signal announces s and returns the host's reply.
	Signal(s State) Result

	// SetTotal sets the number of progress steps of the current cycle.
	SetTotal(n int)

	// SetProgress reports the current step.
	SetProgress(step int)

	// UpdateRect tells the host r of the destination changed.
	UpdateRect(r block.Rect)
}

// ParamsFunc returns the parameters for a cycle. It is called once at the
// start of every cycle.
type ParamsFunc func() (backend.Params, error)

// Job is the work of one run.
type Job struct {
	// Area is the target rectangle in layer space.
	Area block.Rect

	// Source provides the input pixels.
	Source surface.Surface

	// Destination receives the output; its alpha gates writes.
	Destination surface.Surface

	// Select provides selection weights. Nil means no selection mask.
	Select surface.Surface
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithPool sets the pool input images are drawn from.
func WithPool(p *intImage.Pool) Option {
	return func(c *Controller) {
		if p != nil {
			c.pool = p
		}
	}
}

// Controller runs jobs for one host.
type Controller struct {
	host   Host
	gen    backend.Generator
	params ParamsFunc
	log    *slog.Logger
	pool   *intImage.Pool
}

// New creates a controller.
func New(host Host, gen backend.Generator, params ParamsFunc, opts ...Option) *Controller {
	c := &Controller{
		host:   host,
		gen:    gen,
		params: params,
		log:    slog.New(slog.DiscardHandler),
		pool:   intImage.NewPool(2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes job until the host exits, a cycle fails or ctx is done.
//
// A host Exit ends the run with a nil error. Invalid parameters and backend
// failures are reported to the host with StateAbort and returned. When ctx
// is done the run stops at the next host call and returns ctx.Err().
// An empty area has nothing to generate: Run returns nil without calling
// the host or the backend.
func (c *Controller) Run(ctx context.Context, job Job) error {
	if job.Source == nil || job.Destination == nil {
		return ErrInvalidJob
	}
	if job.Area.Empty() {
		c.log.Debug("run: empty area")
		return nil
	}

	for cycle := 1; ; cycle++ {
		a, err := c.signal(ctx, StateStart)
		if err != nil {
			return err
		}
		if a == actionExit {
			c.log.Info("run: exit at start", "cycle", cycle)
			return nil
		}

		p, err := c.readParams()
		if err != nil {
			c.host.Signal(StateAbort)
			c.log.Warn("run: aborted", "err", err)
			return err
		}
		c.host.SetTotal(p.SampleSteps)
		c.log.Info("run: cycle", "cycle", cycle, "area", job.Area, "steps", p.SampleSteps)

		a, err = c.cycle(ctx, job, p)
		if err != nil {
			return err
		}
		switch a {
		case actionRestart:
			continue
		case actionExit:
			return nil
		}

		a, err = c.signal(ctx, StateEnd)
		if err != nil {
			return err
		}
		if a != actionRestart {
			return nil
		}
	}
}

// signal sends s and interprets the reply. A done ctx wins over the reply.
func (c *Controller) signal(ctx context.Context, s State) (action, error) {
	if err := ctx.Err(); err != nil {
		return actionExit, err
	}
	r := c.host.Signal(s)
	a := next(s, r)
	if a != actionProceed {
		c.log.Debug("run: host reply", "state", s, "result", r, "action", a)
	}
	return a, nil
}

func (c *Controller) readParams() (backend.Params, error) {
	p, err := c.params()
	if err != nil {
		return p, err
	}
	if strings.TrimSpace(p.Prompt) == "" {
		return p, ErrEmptyPrompt
	}
	if strings.TrimSpace(p.ModelPath) == "" {
		return p, ErrEmptyModelPath
	}
	return p, nil
}

// cycle runs gather, generate and scatter once. It returns actionProceed
// when every tile was written.
func (c *Controller) cycle(ctx context.Context, job Job, p backend.Params) (action, error) {
	area := job.Area

	input, err := c.pool.Get(area.Dx(), area.Dy(), intImage.FormatRGB8)
	if err != nil {
		return actionExit, err
	}
	defer c.pool.Put(input)
	input.SetOrigin(area.Left, area.Top)

	// Gather.
	in := input.View()
	for _, t := range job.Source.Tiles(area) {
		a, err := c.signal(ctx, StateContinue)
		if err != nil || a != actionProceed {
			return a, err
		}
		block.Transfer(in, job.Source.ImageBlock(t))
	}

	// Generate.
	p.Width, p.Height = area.Dx(), area.Dy()
	img := &backend.Image{
		Width:    area.Dx(),
		Height:   area.Dy(),
		Channels: 3,
		Pix:      input.Data(),
	}
	out, err := c.gen.Generate(ctx, p, img, func(step, steps int) {
		c.host.SetProgress(step)
		c.log.Debug("run: progress", "step", step, "steps", steps)
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return actionExit, ctxErr
	}
	if err == nil && !out.Valid() {
		err = backend.ErrInvalidImage
	}
	if err != nil {
		c.host.Signal(StateAbort)
		c.log.Warn("run: aborted", "err", err)
		return actionExit, fmt.Errorf("%w: %w", ErrGenerateFailed, err)
	}
	c.log.Debug("run: generated", "width", out.Width, "height", out.Height)

	// Scatter.
	src := out.Block(area.Left, area.Top)
	for _, t := range job.Destination.Tiles(area) {
		a, err := c.signal(ctx, StateContinue)
		if err != nil || a != actionProceed {
			return a, err
		}
		if scatter(job, src, t) {
			c.host.UpdateRect(t)
		}
	}
	return actionProceed, nil
}

// scatter writes src into the destination over tile t and reports whether
// anything was written. With a selection surface only the part of t the
// selection covers is written; pixels outside it have zero weight.
func scatter(job Job, src block.Block, t block.Rect) bool {
	if job.Select == nil {
		dst := job.Destination.ImageBlock(t)
		alpha := job.Destination.AlphaBlock(t)
		if dst.Empty() || alpha.Rect != dst.Rect {
			return false
		}
		block.TransferAlpha(dst, src, alpha)
		return true
	}

	sel := job.Select.SelectBlock(t)
	if sel.Empty() {
		return false
	}
	dst := job.Destination.ImageBlock(sel.Rect)
	alpha := job.Destination.AlphaBlock(sel.Rect)
	if dst.Empty() || alpha.Rect != dst.Rect || sel.Rect != dst.Rect {
		return false
	}
	block.TransferSelect(dst, src, alpha, sel)
	return true
}
