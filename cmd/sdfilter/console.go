// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/sdfilter/block"
	"github.com/gogpu/sdfilter/run"
	"github.com/gogpu/sdfilter/surface"
)

// consoleHost continues through every tile, logs progress and exits at
// End. A restart request is answered with Restart at the next yield point.
type consoleHost struct {
	log    *slog.Logger
	dst    *surface.MemorySurface
	reload func()

	restart atomic.Bool
	total   int
	last    int
}

func newConsoleHost(l *slog.Logger, dst *surface.MemorySurface, reload func()) *consoleHost {
	return &consoleHost{log: l, dst: dst, reload: reload}
}

func (h *consoleHost) requestRestart() { h.restart.Store(true) }

func (h *consoleHost) Signal(s run.State) run.Result {
	switch s {
	case run.StateStart:
		h.log.Info("generating")
		return run.ResultContinue
	case run.StateContinue, run.StateEnd:
		if h.restart.CompareAndSwap(true, false) {
			h.log.Info("restarting")
			if h.reload != nil {
				h.reload()
			}
			return run.ResultRestart
		}
		if s == run.StateEnd {
			h.log.Info("done")
			return run.ResultExit
		}
		return run.ResultContinue
	case run.StateAbort:
		h.log.Warn("aborted")
	}
	return run.ResultExit
}

func (h *consoleHost) SetTotal(n int) {
	h.total, h.last = n, 0
}

// SetProgress logs every tenth of the run and the last step.
func (h *consoleHost) SetProgress(step int) {
	if h.total <= 0 {
		return
	}
	pct := step * 100 / h.total
	if pct/10 == h.last/10 && step != h.total {
		return
	}
	h.last = pct
	h.log.Info("progress", "step", step, "steps", h.total, "percent", pct)
}

func (h *consoleHost) UpdateRect(r block.Rect) {
	h.dst.MarkUpdated(r)
	h.log.Debug("tile updated", "rect", r)
}
