package meta

import (
	"math"
	"testing"
)

func TestSetGetCaseInsensitive(t *testing.T) {
	m := New()
	e := NewEntry()
	e.Units = "hours"
	e.LongName = "Magnetic Local Time"
	m.Set("MLT", e)

	got, ok := m.Get("mlt")
	if !ok {
		t.Fatal("case-insensitive lookup failed")
	}
	if got.Units != "hours" || got.LongName != "Magnetic Local Time" {
		t.Fatalf("unexpected entry %+v", got)
	}
	if !m.Has("Mlt") {
		t.Fatal("Has should match case-insensitively")
	}
}

func TestNewEntryNumericUnset(t *testing.T) {
	e := NewEntry()
	if !math.IsNaN(e.ValueMin) || !math.IsNaN(e.ValueMax) || !math.IsNaN(e.FillVal) {
		t.Fatalf("numeric labels should default to NaN, got %+v", e)
	}
}

func TestSetMergesExisting(t *testing.T) {
	m := New()
	first := NewEntry()
	first.Units = "degrees"
	first.ValueMin = 0
	first.ValueMax = 360
	m.Set("longitude", first)

	// Update only the long name; everything else keeps its stored value.
	update := NewEntry()
	update.LongName = "Geographic Longitude"
	m.Set("Longitude", update)

	got, _ := m.Get("longitude")
	if got.Units != "degrees" {
		t.Fatalf("merge lost units: %+v", got)
	}
	if got.LongName != "Geographic Longitude" {
		t.Fatalf("merge dropped new long name: %+v", got)
	}
	if got.ValueMin != 0 || got.ValueMax != 360 {
		t.Fatalf("merge lost value range: %+v", got)
	}
}

func TestChildMetadata(t *testing.T) {
	m := New()
	child := New()
	e := NewEntry()
	e.Units = "km"
	child.Set("altitude", e)

	m.SetChild("profiles", child)
	if !m.Has("profiles") {
		t.Fatal("SetChild should create the parent variable")
	}
	got, ok := m.Child("PROFILES")
	if !ok {
		t.Fatal("Child lookup failed")
	}
	if !got.Has("altitude") {
		t.Fatal("child metadata lost its entries")
	}
}

func TestVarsSortedOriginalCase(t *testing.T) {
	m := New()
	m.Set("Zebra", NewEntry())
	m.Set("alpha", NewEntry())

	vars := m.Vars()
	if len(vars) != 2 || vars[0] != "Zebra" || vars[1] != "alpha" {
		t.Fatalf("Vars = %v", vars)
	}
}

func TestDropAndKeep(t *testing.T) {
	m := New()
	m.Set("a", NewEntry())
	m.Set("b", NewEntry())
	m.Set("c", NewEntry())

	if err := m.Drop("B"); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	if m.Has("b") {
		t.Fatal("dropped variable still present")
	}
	if err := m.Drop("missing"); err == nil {
		t.Fatal("dropping an unknown variable should error")
	}

	m.Keep([]string{"A"})
	if m.Len() != 1 || !m.Has("a") {
		t.Fatalf("Keep left %d entries, vars %v", m.Len(), m.Vars())
	}
}
