// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package settings loads named generation settings from a file.
//
// A settings file is a set of sections, one per named setting, plus an
// optional COMMON section whose keys apply to every setting. Keys use the
// names of the backend.Params tags:
//
//	[COMMON]
//	model_path = "models/sd_xl_base_1.0.safetensors"
//	vae_path = "models/sdxl_vae.safetensors"
//
//	[Portrait]
//	prompt = "portrait photo, soft light"
//	sample_steps = 30
//
//	[Landscape]
//	prompt = "wide landscape, golden hour"
//	sample_method = "dpm++2m"
//
// Both TOML and YAML files are accepted. Files that are not valid UTF-8 are
// read as Shift-JIS, the encoding older Japanese settings files use.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
	"golang.org/x/text/encoding/japanese"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/sdfilter/backend"
)

// CommonSection is the section whose keys every setting inherits.
const CommonSection = "COMMON"

// DefaultFile is the settings file name looked up in the module base path.
const DefaultFile = "sdfilter.toml"

// Errors.
var (
	// ErrNoSection is returned when a named setting does not exist.
	ErrNoSection = errors.New("settings: no such section")

	// ErrUnsupportedFormat is returned for file extensions other than
	// .toml, .yaml and .yml.
	ErrUnsupportedFormat = errors.New("settings: unsupported file format")
)

// Format is a settings file syntax.
type Format uint8

const (
	// FormatTOML selects TOML.
	FormatTOML Format = iota

	// FormatYAML selects YAML.
	FormatYAML
)

// FormatFor returns the format for a file name by its extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
}

// layer applies one section's keys over p.
type layer func(p *backend.Params) error

// Store holds the sections of a settings file.
//
// A Store is immutable after Load and safe for concurrent reads.
type Store struct {
	path     string
	order    []string
	root     layer // top-level keys outside any section
	common   layer
	sections map[string]layer
}

// Load reads a settings file. The format is chosen by extension.
func Load(path string) (*Store, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, filepath.Base(path))
	}
	s.path = path
	return s, nil
}

// Parse decodes settings data.
func Parse(data []byte, format Format) (*Store, error) {
	data, err := toUTF8(data)
	if err != nil {
		return nil, err
	}

	s := &Store{sections: make(map[string]layer)}
	switch format {
	case FormatTOML:
		err = s.parseTOML(data)
	case FormatYAML:
		err = s.parseYAML(data)
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// toUTF8 returns data unchanged when it is valid UTF-8 and decodes it as
// Shift-JIS otherwise. A UTF-8 byte order mark is dropped.
func toUTF8(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return data, nil
	}
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("settings: decode Shift-JIS: %w", err)
	}
	return out, nil
}

// Path returns the file the store was loaded from, or "" for parsed data.
func (s *Store) Path() string { return s.path }

// Sections returns the setting names in file order, without COMMON.
func (s *Store) Sections() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of settings.
func (s *Store) Len() int { return len(s.order) }

// Has reports whether name is a setting.
func (s *Store) Has(name string) bool {
	_, ok := s.sections[name]
	return ok && name != CommonSection
}

// Params returns the parameters of a setting: backend defaults, overlaid
// with COMMON, overlaid with the named section.
func (s *Store) Params(name string) (backend.Params, error) {
	if !s.Has(name) {
		return backend.Params{}, fmt.Errorf("%w: %q", ErrNoSection, name)
	}

	p := backend.DefaultParams()
	for _, l := range []layer{s.root, s.common, s.sections[name]} {
		if l == nil {
			continue
		}
		if err := l(&p); err != nil {
			return backend.Params{}, fmt.Errorf("settings: section %q: %w", name, err)
		}
	}
	return p, nil
}

func (s *Store) add(name string, l layer) {
	if name == CommonSection {
		s.common = l
		return
	}
	if _, dup := s.sections[name]; !dup {
		s.order = append(s.order, name)
	}
	s.sections[name] = l
}

func (s *Store) parseTOML(data []byte) error {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	order, err := tomlTableOrder(data)
	if err != nil {
		return err
	}

	root := make(map[string]any)
	for k, v := range doc {
		if _, isTable := v.(map[string]any); !isTable {
			root[k] = v
		}
	}
	if len(root) > 0 {
		s.root = tomlLayer(root)
	}

	for _, name := range order {
		table, ok := doc[name].(map[string]any)
		if !ok {
			continue
		}
		s.add(name, tomlLayer(table))
	}
	return nil
}

// tomlLayer overlays a decoded table by encoding it back and decoding into
// the existing params; keys absent from the table keep their values.
func tomlLayer(table map[string]any) layer {
	return func(p *backend.Params) error {
		b, err := toml.Marshal(table)
		if err != nil {
			return err
		}
		return toml.Unmarshal(b, p)
	}
}

// tomlTableOrder returns the top-level table names in document order.
func tomlTableOrder(data []byte) ([]string, error) {
	var (
		p     unstable.Parser
		names []string
		seen  = make(map[string]bool)
	)
	p.Reset(data)
	for p.NextExpression() {
		e := p.Expression()
		if e.Kind != unstable.Table {
			continue
		}
		it := e.Key()
		if !it.Next() {
			continue
		}
		name := string(it.Node().Data)
		if it.Next() || seen[name] {
			continue // dotted sub-table
		}
		seen[name] = true
		names = append(names, name)
	}
	if err := p.Error(); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return names, nil
}

func (s *Store) parseYAML(data []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if doc.Kind == 0 {
		return nil // empty file
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("settings: top level must be a mapping")
	}

	top := doc.Content[0]
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, val := top.Content[i], top.Content[i+1]
		if val.Kind != yaml.MappingNode {
			root.Content = append(root.Content, key, val)
			continue
		}
		s.add(key.Value, yamlLayer(val))
	}
	if len(root.Content) > 0 {
		s.root = yamlLayer(root)
	}
	return nil
}

func yamlLayer(n *yaml.Node) layer {
	return func(p *backend.Params) error {
		return n.Decode(p)
	}
}
