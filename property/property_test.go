// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package property

import (
	"strings"
	"testing"

	"github.com/gogpu/sdfilter/backend"
)

func TestAccessorTableComplete(t *testing.T) {
	if err := checkAccessors(); err != nil {
		t.Fatal(err)
	}

	saved := accessors[KeyPrompt]
	accessors[KeyPrompt].sync = nil
	defer func() { accessors[KeyPrompt] = saved }()

	if err := checkAccessors(); err == nil {
		t.Error("expected an error for a missing accessor")
	}
}

func TestItems(t *testing.T) {
	items := Items([]string{"Portrait", "Landscape"})
	if len(items) != 6 {
		t.Fatalf("len(Items) = %d, want 6", len(items))
	}

	tests := []struct {
		key     Key
		kind    Kind
		caption string
		def     float64
		lo, hi  float64
		maxLen  int
	}{
		{KeySetting, KindEnumeration, "Setting", 0, 0, 0, 0},
		{KeySteps, KindInteger, "Steps", 20, 1, 60, 0},
		{KeyStrength, KindDecimal, "Strength", 0.5, 0, 1, 0},
		{KeyControlStrength, KindDecimal, "Control Strength", 8, 1, 20, 0},
		{KeyPrompt, KindString, "Prompt", 0, 0, 0, 800},
		{KeyNegativePrompt, KindString, "Negative Prompt", 0, 0, 0, 800},
	}

	for i, tt := range tests {
		it := items[i]
		if it.Key != tt.key || it.Kind != tt.kind || it.Caption != tt.caption {
			t.Errorf("item %d = %v/%v/%q, want %v/%v/%q", i, it.Key, it.Kind, it.Caption, tt.key, tt.kind, tt.caption)
		}
		if it.Default != tt.def || it.Min != tt.lo || it.Max != tt.hi || it.MaxLength != tt.maxLen {
			t.Errorf("%s: range = %v [%v,%v] len %d", tt.caption, it.Default, it.Min, it.Max, it.MaxLength)
		}
	}

	if v := items[0].Values; len(v) != 2 || v[1] != "Landscape" {
		t.Errorf("setting values = %v", v)
	}
}

func newStore() *MapStore {
	s := NewMapStore()
	s.Define(Items([]string{"A", "B"}))
	return s
}

func TestSyncReportsChange(t *testing.T) {
	s := newStore()
	p := backend.DefaultParams()

	s.SetInteger(KeySteps, 20)
	if Sync(KeySteps, s, &p) {
		t.Error("same value should not report a change")
	}

	s.SetInteger(KeySteps, 35)
	if !Sync(KeySteps, s, &p) {
		t.Error("new value should report a change")
	}
	if p.SampleSteps != 35 {
		t.Errorf("SampleSteps = %d, want 35", p.SampleSteps)
	}

	s.SetDecimal(KeyStrength, 0.25)
	s.SetDecimal(KeyControlStrength, 3)
	s.SetString(KeyPrompt, "a fox")
	s.SetString(KeyNegativePrompt, "lowres")
	for _, k := range []Key{KeyStrength, KeyControlStrength, KeyPrompt, KeyNegativePrompt} {
		if !Sync(k, s, &p) {
			t.Errorf("Sync(%s) should report a change", k)
		}
	}
	if p.Strength != 0.25 || p.ControlStrength != 3 || p.Prompt != "a fox" || p.NegativePrompt != "lowres" {
		t.Errorf("params not synced: %+v", p)
	}
}

func TestSyncSettingAndInvalidKeys(t *testing.T) {
	s := newStore()
	p := backend.DefaultParams()
	s.SetEnumeration(KeySetting, 1)

	if Sync(KeySetting, s, &p) {
		t.Error("setting key never changes params")
	}
	if Sync(Key(0), s, &p) || Sync(Key(99), s, &p) {
		t.Error("invalid keys never change params")
	}
}

func TestPushThenSyncAll(t *testing.T) {
	s := newStore()
	p := backend.DefaultParams()
	p.SampleSteps = 42
	p.Strength = 0.3
	p.ControlStrength = 8
	p.Prompt = "harbor"

	Push(s, &p)
	if got := s.Integer(KeySteps); got != 42 {
		t.Errorf("store steps = %d, want 42", got)
	}
	if got := s.String(KeyPrompt); got != "harbor" {
		t.Errorf("store prompt = %q, want harbor", got)
	}

	q := p
	if SyncAll(s, &q) {
		t.Error("SyncAll after Push should report no change")
	}

	s.SetString(KeyNegativePrompt, "text")
	if !SyncAll(s, &q) || q.NegativePrompt != "text" {
		t.Errorf("SyncAll missed change: %q", q.NegativePrompt)
	}
}

func TestMapStoreClamps(t *testing.T) {
	s := newStore()

	s.SetInteger(KeySteps, 500)
	if got := s.Integer(KeySteps); got != 60 {
		t.Errorf("steps = %d, want clamped 60", got)
	}
	s.SetDecimal(KeyStrength, -1)
	if got := s.Decimal(KeyStrength); got != 0 {
		t.Errorf("strength = %v, want clamped 0", got)
	}
	s.SetString(KeyPrompt, strings.Repeat("あ", 900))
	if got := []rune(s.String(KeyPrompt)); len(got) != 800 {
		t.Errorf("prompt length = %d, want 800", len(got))
	}
	s.SetEnumeration(KeySetting, 5)
	if got := s.Enumeration(KeySetting); got != 0 {
		t.Errorf("setting = %d, want unchanged 0", got)
	}
}

func TestMapStoreDefaults(t *testing.T) {
	s := newStore()
	if got := s.Integer(KeySteps); got != 20 {
		t.Errorf("steps default = %d, want 20", got)
	}
	if got := s.Decimal(KeyControlStrength); got != 8 {
		t.Errorf("control strength default = %v, want 8", got)
	}
}

func TestKeyString(t *testing.T) {
	if KeyControlStrength.String() != "Control Strength" {
		t.Errorf("String() = %q", KeyControlStrength.String())
	}
	if Key(42).String() != "Key(42)" {
		t.Errorf("String() = %q", Key(42).String())
	}
}
