// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package settings

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// WatchOption configures a Watcher.
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
	logger   *slog.Logger
}

// WithDebounce sets the settle delay. Zero reports every event at once.
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) { o.debounce = d }
}

// WithLogger sets the logger for watcher errors.
func WithLogger(l *slog.Logger) WatchOption {
	return func(o *watchOptions) { o.logger = l }
}

// Watcher reports changes to a settings file.
//
// The file's directory is watched rather than the file, so editors that
// save by renaming a temporary file are still seen.
type Watcher struct {
	w         *fsnotify.Watcher
	name      string
	changed   chan struct{}
	opts      watchOptions
	done      chan struct{}
	closeOnce sync.Once
	timerMu   sync.Mutex
	timer     *time.Timer
	wg        sync.WaitGroup
}

// Watch starts watching path until ctx is done or Close is called.
func Watch(ctx context.Context, path string, opts ...WatchOption) (*Watcher, error) {
	o := watchOptions{debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("settings: watch: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("settings: watch: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("settings: watch: %w", err)
	}

	w := &Watcher{
		w:       fw,
		name:    abs,
		changed: make(chan struct{}, 1),
		opts:    o,
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop(ctx)
	return w, nil
}

// Changed receives a value after the file changes. Changes that arrive
// before the previous one is consumed are merged.
func (w *Watcher) Changed() <-chan struct{} { return w.changed }

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.w.Close()
		w.wg.Wait()

		w.timerMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.timerMu.Unlock()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			w.opts.logger.Warn("settings: watch error", "err", err)
		}
	}
}

func (w *Watcher) schedule() {
	if w.opts.debounce <= 0 {
		w.notify()
		return
	}
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.debounce, w.notify)
}

func (w *Watcher) notify() {
	select {
	case w.changed <- struct{}{}:
	default:
	}
}
