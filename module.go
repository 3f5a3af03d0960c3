// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sdfilter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/gogpu/sdfilter/backend"
	intImage "github.com/gogpu/sdfilter/internal/image"
	"github.com/gogpu/sdfilter/property"
	"github.com/gogpu/sdfilter/run"
	"github.com/gogpu/sdfilter/settings"
)

// ErrNotInitialized is returned by Run before InitializeFilter succeeded.
var ErrNotInitialized = errors.New("sdfilter: filter not initialized")

// Module is the process-scoped filter context: the settings file, the
// selected setting, the current parameters and the generator.
//
// A Module is safe for concurrent use. Host property callbacks may arrive
// on any goroutine, including while Run is in progress; parameter changes
// take effect at the next cycle.
type Module struct {
	basePath     string
	settingsPath string
	log          *slog.Logger
	pool         *intImage.Pool

	backendName string
	program     string

	mu       sync.Mutex
	gen      backend.Generator
	settings *settings.Store
	setting  int
	params   backend.Params
	props    property.Store
}

// NewModule creates a module rooted at basePath. The generator is created
// on the first Run.
func NewModule(basePath string, opts ...Option) *Module {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	path := o.settingsPath
	if path == "" {
		path = settings.DefaultFile
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(basePath, path)
	}
	l := o.logger
	if l == nil {
		l = Logger()
	}
	pool := o.pool
	if pool == nil {
		pool = intImage.NewPool(2)
	}

	return &Module{
		basePath:     basePath,
		settingsPath: path,
		log:          l,
		pool:         pool,
		backendName:  o.backendName,
		program:      o.program,
		gen:          o.generator,
		params:       backend.DefaultParams(),
	}
}

// BasePath returns the directory the module resolves relative paths in.
func (m *Module) BasePath() string { return m.basePath }

// SettingsPath returns the settings file.
func (m *Module) SettingsPath() string { return m.settingsPath }

// Settings returns the setting names in file order.
func (m *Module) Settings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return nil
	}
	return m.settings.Sections()
}

// Setting returns the index of the selected setting.
func (m *Module) Setting() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setting
}

// Params returns a copy of the current parameters.
func (m *Module) Params() backend.Params {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params.Clone()
}

// InitializeFilter loads the settings file, defines the property items in
// store and switches to the first setting. A missing settings file leaves
// the module with no settings and default parameters.
func (m *Module) InitializeFilter(store property.Store) error {
	s, err := m.loadSettings()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings = s
	m.props = store
	store.Define(property.Items(s.Sections()))
	m.log.Info("sdfilter: filter initialized", "settings", s.Len(), "path", m.settingsPath)

	m.setting = 0
	m.params = backend.DefaultParams()
	return m.switchTo(0)
}

// SyncProperty pulls the host value of key into the module and reports
// whether anything changed. Selecting another setting reloads its
// parameters and pushes them into store.
func (m *Module) SyncProperty(key property.Key, store property.Store) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if key != property.KeySetting {
		return property.Sync(key, store, &m.params)
	}

	idx := store.Enumeration(property.KeySetting)
	if idx == m.setting {
		return false
	}
	m.props = store
	if err := m.switchTo(idx); err != nil {
		m.log.Warn("sdfilter: switch setting", "index", idx, "err", err)
		return false
	}
	return true
}

// Reload re-reads the settings file and re-applies the selected setting,
// pushing its values into the property store. Values edited in the host
// are replaced.
func (m *Module) Reload() error {
	s, err := m.loadSettings()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings = s
	return m.switchTo(m.setting)
}

// Run runs job against host. It re-opens the selected setting from the
// settings file and overlays the values the host holds for the property
// items, then drives the run controller until the host exits.
func (m *Module) Run(ctx context.Context, host run.Host, job run.Job) error {
	if err := m.reopen(); err != nil {
		return err
	}

	gen, err := m.generator()
	if err != nil {
		return err
	}
	if err := gen.Init(); err != nil {
		// Generation fails and the run aborts through the host protocol.
		m.log.Warn("sdfilter: backend init", "backend", gen.Name(), "err", err)
	}

	c := run.New(host, gen, m.cycleParams, run.WithLogger(m.log), run.WithPool(m.pool))
	return c.Run(ctx, job)
}

// Close releases the generator.
func (m *Module) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gen == nil {
		return nil
	}
	err := m.gen.Close()
	m.gen = nil
	return err
}

func (m *Module) reopen() error {
	s, err := m.loadSettings()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.props == nil {
		return ErrNotInitialized
	}
	m.settings = s

	p, err := m.settingParams(m.setting)
	if err != nil {
		return err
	}
	property.SyncAll(m.props, &p)
	m.params = p
	return nil
}

// cycleParams is the run controller's parameter source.
func (m *Module) cycleParams() (backend.Params, error) {
	return m.Params(), nil
}

// switchTo selects setting idx and pushes its parameters into the
// property store. Out of range indexes are ignored. Must be called with
// m.mu held.
func (m *Module) switchTo(idx int) error {
	if m.settings == nil || idx < 0 || idx >= m.settings.Len() {
		return nil
	}
	p, err := m.settingParams(idx)
	if err != nil {
		return err
	}

	m.setting = idx
	m.params = p
	if m.props != nil {
		m.props.SetEnumeration(property.KeySetting, idx)
		property.Push(m.props, &p)
	}
	m.log.Info("sdfilter: setting selected", "index", idx, "name", m.settings.Sections()[idx])
	return nil
}

// settingParams returns the file parameters of setting idx, or the
// defaults when there is no such setting. Must be called with m.mu held.
func (m *Module) settingParams(idx int) (backend.Params, error) {
	names := m.settings.Sections()
	if idx < 0 || idx >= len(names) {
		return backend.DefaultParams(), nil
	}
	return m.settings.Params(names[idx])
}

func (m *Module) loadSettings() (*settings.Store, error) {
	s, err := settings.Load(m.settingsPath)
	if errors.Is(err, fs.ErrNotExist) {
		m.log.Warn("sdfilter: no settings file", "path", m.settingsPath)
		return settings.Parse(nil, settings.FormatTOML)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// generator returns the module generator, creating it on first use.
func (m *Module) generator() (backend.Generator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gen != nil {
		return m.gen, nil
	}

	opts := backend.Options{
		BasePath: m.basePath,
		Program:  m.program,
		Logger:   m.log,
	}
	var (
		g   backend.Generator
		err error
	)
	if m.backendName != "" {
		g, err = backend.NewByName(m.backendName, opts)
	} else {
		g, err = backend.New(opts)
	}
	if err != nil {
		return nil, fmt.Errorf("sdfilter: backend: %w", err)
	}
	m.log.Info("sdfilter: backend selected", "backend", g.Name())
	m.gen = g
	return g, nil
}
