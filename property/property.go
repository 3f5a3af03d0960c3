// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package property binds host UI items to generation parameters.
//
// The host owns a property object holding one value per item. Items are
// identified by Key; each key maps to an accessor that moves its value
// between the host store and a backend.Params. The accessor table is
// indexed by key and checked for holes when the package loads.
package property

import (
	"fmt"

	"github.com/gogpu/sdfilter/backend"
)

// Key identifies a property item. Values are part of the host protocol.
type Key int

// Property keys.
const (
	KeySetting Key = iota + 1
	KeySteps
	KeyStrength
	KeyControlStrength
	KeyPrompt
	KeyNegativePrompt

	keyEnd
)

// Keys returns every key in item order.
func Keys() []Key {
	keys := make([]Key, 0, keyEnd-KeySetting)
	for k := KeySetting; k < keyEnd; k++ {
		keys = append(keys, k)
	}
	return keys
}

// Valid reports whether k names an item.
func (k Key) Valid() bool { return k >= KeySetting && k < keyEnd }

func (k Key) String() string {
	if k.Valid() {
		return accessors[k].caption
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

// Kind is the value type of an item.
type Kind uint8

// Item kinds.
const (
	KindEnumeration Kind = iota + 1
	KindInteger
	KindDecimal
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindEnumeration:
		return "enumeration"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Item describes one UI item.
type Item struct {
	Key     Key
	Kind    Kind
	Caption string

	// Integer and decimal items.
	Default float64
	Min     float64
	Max     float64

	// MaxLength limits string items, in characters.
	MaxLength int

	// Values labels enumeration items, indexed by value.
	Values []string
}

// maxTextLength is the longest prompt the host accepts.
const maxTextLength = 800

// accessor moves one item between a Store and Params.
type accessor struct {
	item    Item
	caption string
	sync    func(s Store, k Key, p *backend.Params) bool
	push    func(s Store, k Key, p *backend.Params)
}

var accessors = [keyEnd]accessor{
	KeySetting: {
		item:    Item{Kind: KindEnumeration},
		caption: "Setting",
	},
	KeySteps: intItem("Steps", 20, 1, 60,
		func(p *backend.Params) *int { return &p.SampleSteps }),
	KeyStrength: decimalItem("Strength", 0.5, 0, 1,
		func(p *backend.Params) *float64 { return &p.Strength }),
	KeyControlStrength: decimalItem("Control Strength", 8, 1, 20,
		func(p *backend.Params) *float64 { return &p.ControlStrength }),
	KeyPrompt: stringItem("Prompt",
		func(p *backend.Params) *string { return &p.Prompt }),
	KeyNegativePrompt: stringItem("Negative Prompt",
		func(p *backend.Params) *string { return &p.NegativePrompt }),
}

func init() {
	if err := checkAccessors(); err != nil {
		panic(err)
	}
}

// checkAccessors reports the first key without a complete accessor.
func checkAccessors() error {
	for k := KeySetting; k < keyEnd; k++ {
		a := accessors[k]
		if a.item.Kind == 0 || a.caption == "" {
			return fmt.Errorf("property: no accessor for key %d", int(k))
		}
		if k != KeySetting && (a.sync == nil || a.push == nil) {
			return fmt.Errorf("property: incomplete accessor for %s", a.caption)
		}
	}
	return nil
}

func intItem(caption string, def, lo, hi int, field func(*backend.Params) *int) accessor {
	return accessor{
		item:    Item{Kind: KindInteger, Default: float64(def), Min: float64(lo), Max: float64(hi)},
		caption: caption,
		sync: func(s Store, k Key, p *backend.Params) bool {
			return assign(field(p), s.Integer(k))
		},
		push: func(s Store, k Key, p *backend.Params) {
			s.SetInteger(k, *field(p))
		},
	}
}

func decimalItem(caption string, def, lo, hi float64, field func(*backend.Params) *float64) accessor {
	return accessor{
		item:    Item{Kind: KindDecimal, Default: def, Min: lo, Max: hi},
		caption: caption,
		sync: func(s Store, k Key, p *backend.Params) bool {
			return assign(field(p), s.Decimal(k))
		},
		push: func(s Store, k Key, p *backend.Params) {
			s.SetDecimal(k, *field(p))
		},
	}
}

func stringItem(caption string, field func(*backend.Params) *string) accessor {
	return accessor{
		item:    Item{Kind: KindString, MaxLength: maxTextLength},
		caption: caption,
		sync: func(s Store, k Key, p *backend.Params) bool {
			return assign(field(p), s.String(k))
		},
		push: func(s Store, k Key, p *backend.Params) {
			s.SetString(k, *field(p))
		},
	}
}

// assign stores v in dst and reports whether dst changed.
func assign[T comparable](dst *T, v T) bool {
	if *dst == v {
		return false
	}
	*dst = v
	return true
}

// Items returns the item definitions. settings labels the Setting
// enumeration.
func Items(settings []string) []Item {
	items := make([]Item, 0, keyEnd-KeySetting)
	for _, k := range Keys() {
		it := accessors[k].item
		it.Key = k
		it.Caption = accessors[k].caption
		if k == KeySetting {
			it.Values = append([]string(nil), settings...)
		}
		items = append(items, it)
	}
	return items
}

// Sync pulls the host value of k into p and reports whether p changed.
// KeySetting is not a parameter and always reports false; the caller
// switches settings itself.
func Sync(k Key, s Store, p *backend.Params) bool {
	if !k.Valid() || accessors[k].sync == nil {
		return false
	}
	return accessors[k].sync(s, k, p)
}

// SyncAll pulls every parameter item into p and reports whether any changed.
func SyncAll(s Store, p *backend.Params) bool {
	changed := false
	for _, k := range Keys() {
		if Sync(k, s, p) {
			changed = true
		}
	}
	return changed
}

// Push writes every parameter item of p into the host store.
func Push(s Store, p *backend.Params) {
	for _, k := range Keys() {
		if push := accessors[k].push; push != nil {
			push(s, k, p)
		}
	}
}
