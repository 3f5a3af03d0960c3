// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package property

import (
	"sync"
	"unicode/utf8"
)

// Store is the host property object.
//
// Getters return the zero value for keys the store does not hold.
type Store interface {
	Define(items []Item)

	Integer(k Key) int
	SetInteger(k Key, v int)

	Decimal(k Key) float64
	SetDecimal(k Key, v float64)

	String(k Key) string
	SetString(k Key, v string)

	Enumeration(k Key) int
	SetEnumeration(k Key, v int)
}

// MapStore is an in-memory Store. Setters clamp values to the defined
// item ranges, the way a host UI would.
//
// MapStore is safe for concurrent use.
type MapStore struct {
	mu    sync.RWMutex
	items map[Key]Item
	ints  map[Key]int
	decs  map[Key]float64
	strs  map[Key]string
}

// NewMapStore creates an empty store.
func NewMapStore() *MapStore {
	return &MapStore{
		items: make(map[Key]Item),
		ints:  make(map[Key]int),
		decs:  make(map[Key]float64),
		strs:  make(map[Key]string),
	}
}

// Define registers items and sets their defaults.
func (m *MapStore) Define(items []Item) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, it := range items {
		m.items[it.Key] = it
		switch it.Kind {
		case KindInteger:
			m.ints[it.Key] = int(it.Default)
		case KindDecimal:
			m.decs[it.Key] = it.Default
		case KindEnumeration:
			m.ints[it.Key] = 0
		case KindString:
			m.strs[it.Key] = ""
		}
	}
}

// Item returns the definition of k.
func (m *MapStore) Item(k Key) (Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[k]
	return it, ok
}

// Integer implements Store.
func (m *MapStore) Integer(k Key) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ints[k]
}

// SetInteger implements Store.
func (m *MapStore) SetInteger(k Key, v int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it, ok := m.items[k]; ok && it.Max > it.Min {
		v = max(int(it.Min), min(int(it.Max), v))
	}
	m.ints[k] = v
}

// Decimal implements Store.
func (m *MapStore) Decimal(k Key) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.decs[k]
}

// SetDecimal implements Store.
func (m *MapStore) SetDecimal(k Key, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it, ok := m.items[k]; ok && it.Max > it.Min {
		v = max(it.Min, min(it.Max, v))
	}
	m.decs[k] = v
}

// String implements Store.
func (m *MapStore) String(k Key) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.strs[k]
}

// SetString implements Store. Text beyond the item's MaxLength is cut.
func (m *MapStore) SetString(k Key, v string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it, ok := m.items[k]; ok && it.MaxLength > 0 && utf8.RuneCountInString(v) > it.MaxLength {
		v = string([]rune(v)[:it.MaxLength])
	}
	m.strs[k] = v
}

// Enumeration implements Store.
func (m *MapStore) Enumeration(k Key) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ints[k]
}

// SetEnumeration implements Store. Values outside the defined labels are
// ignored.
func (m *MapStore) SetEnumeration(k Key, v int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it, ok := m.items[k]; ok && (v < 0 || v >= len(it.Values)) {
		return
	}
	m.ints[k] = v
}
