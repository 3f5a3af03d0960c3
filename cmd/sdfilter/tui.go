// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/sdfilter/block"
	"github.com/gogpu/sdfilter/run"
	"github.com/gogpu/sdfilter/surface"
)

const barWidth = 40

var (
	styleTitle  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleText   = tcell.StyleDefault
	styleBar    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleHelp   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleFailed = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// reply is the host answer a key asks for.
type reply uint8

const (
	replyNone reply = iota
	replyRestart
	replyExit
)

// tuiHost shows run progress in the terminal. Esc or q exits and r
// restarts at the next tile; at End it waits for r or Enter to generate
// again, or q to quit.
type tuiHost struct {
	screen tcell.Screen
	dst    *surface.MemorySurface
	reload func()

	events chan tcell.Event
	quit   chan struct{}

	restart atomic.Bool

	status  string
	failed  bool
	total   int
	step    int
	updates int
	cycles  int
}

// newTUIHost takes over screen, or the terminal when screen is nil.
func newTUIHost(screen tcell.Screen, dst *surface.MemorySurface, reload func()) (*tuiHost, error) {
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, err
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	h := &tuiHost{
		screen: screen,
		dst:    dst,
		reload: reload,
		events: make(chan tcell.Event, 16),
		quit:   make(chan struct{}),
		status: "starting",
	}
	go screen.ChannelEvents(h.events, h.quit)
	h.draw()
	return h, nil
}

// Close restores the terminal.
func (h *tuiHost) Close() {
	close(h.quit)
	h.screen.Fini()
}

// requestRestart is safe to call from any goroutine.
func (h *tuiHost) requestRestart() {
	h.restart.Store(true)
	_ = h.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

func (h *tuiHost) Signal(s run.State) run.Result {
	switch s {
	case run.StateStart:
		h.cycles++
		h.failed = false
		h.status = fmt.Sprintf("generating (run %d)", h.cycles)
		h.draw()
		if h.poll() == replyExit {
			return run.ResultExit
		}
		return run.ResultContinue

	case run.StateContinue:
		switch h.poll() {
		case replyExit:
			return run.ResultExit
		case replyRestart:
			return h.restartNow()
		}
		return run.ResultContinue

	case run.StateEnd:
		h.status = "done: r/Enter generate again, q quit"
		h.draw()
		if h.wait() == replyRestart {
			return h.restartNow()
		}
		return run.ResultExit

	case run.StateAbort:
		h.failed = true
		h.status = "aborted"
		h.draw()
	}
	return run.ResultExit
}

func (h *tuiHost) SetTotal(n int) {
	h.total, h.step = n, 0
	h.draw()
}

func (h *tuiHost) SetProgress(step int) {
	h.step = step
	h.draw()
}

func (h *tuiHost) UpdateRect(r block.Rect) {
	h.dst.MarkUpdated(r)
	h.updates++
	h.draw()
}

func (h *tuiHost) restartNow() run.Result {
	h.restart.Store(false)
	h.status = "restarting"
	h.draw()
	if h.reload != nil {
		h.reload()
	}
	return run.ResultRestart
}

// poll drains pending events without blocking.
func (h *tuiHost) poll() reply {
	r := replyNone
	for {
		select {
		case ev := <-h.events:
			if k := h.handle(ev); k > r {
				r = k
			}
		default:
			if r == replyNone && h.restart.Load() {
				return replyRestart
			}
			return r
		}
	}
}

// wait blocks until the user or a restart request decides.
func (h *tuiHost) wait() reply {
	for {
		if h.restart.Load() {
			return replyRestart
		}
		select {
		case ev := <-h.events:
			if r := h.handle(ev); r != replyNone {
				return r
			}
		case <-h.quit:
			return replyExit
		}
	}
}

func (h *tuiHost) handle(ev tcell.Event) reply {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return replyExit
		case ev.Key() == tcell.KeyEnter:
			return replyRestart
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
			return replyExit
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'r' || ev.Rune() == 'R'):
			return replyRestart
		}
	case *tcell.EventResize:
		h.screen.Sync()
		h.draw()
	}
	return replyNone
}

func (h *tuiHost) draw() {
	h.screen.Clear()

	b := h.dst.Bounds()
	h.text(1, 0, "sdfilter", styleTitle)
	h.text(1, 1, fmt.Sprintf("layer %dx%d", b.Dx(), b.Dy()), styleText)

	style := styleText
	if h.failed {
		style = styleFailed
	}
	h.text(1, 3, h.status, style)

	filled := 0
	if h.total > 0 {
		filled = min(h.step, h.total) * barWidth / h.total
	}
	bar := "[" + strings.Repeat("#", filled) + strings.Repeat(" ", barWidth-filled) + "]"
	h.text(1, 4, bar, styleBar)
	h.text(barWidth+4, 4, fmt.Sprintf("%d/%d", h.step, h.total), styleText)
	h.text(1, 5, fmt.Sprintf("tiles written: %d", h.updates), styleText)

	h.text(1, 7, "q/Esc quit   r restart", styleHelp)
	h.screen.Show()
}

func (h *tuiHost) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		h.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
