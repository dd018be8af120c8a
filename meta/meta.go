// Package meta tracks per-variable metadata for instrument data: units,
// descriptive names, expected value ranges and fill values, plus nested
// child metadata for profile-style variables.
package meta

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Entry holds the metadata labels for one variable. ValueMin, ValueMax,
// and FillValue default to NaN, meaning unset.
type Entry struct {
	Units    string
	LongName string
	Desc     string
	Notes    string
	ValueMin float64
	ValueMax float64
	FillVal  float64
}

// NewEntry returns an Entry with the numeric labels unset.
func NewEntry() Entry {
	return Entry{
		ValueMin: math.NaN(),
		ValueMax: math.NaN(),
		FillVal:  math.NaN(),
	}
}

// Meta is a collection of variable metadata. Variable lookup is
// case-insensitive while the stored case is preserved.
type Meta struct {
	entries  map[string]Entry // keyed by lowercase name
	names    map[string]string
	children map[string]*Meta
}

// New constructs an empty Meta.
func New() *Meta {
	return &Meta{
		entries:  make(map[string]Entry),
		names:    make(map[string]string),
		children: make(map[string]*Meta),
	}
}

// Set stores metadata for a variable. Setting an existing variable merges:
// empty string labels and NaN numeric labels in e keep their stored values.
func (m *Meta) Set(name string, e Entry) {
	key := strings.ToLower(name)
	if prev, ok := m.entries[key]; ok {
		if e.Units == "" {
			e.Units = prev.Units
		}
		if e.LongName == "" {
			e.LongName = prev.LongName
		}
		if e.Desc == "" {
			e.Desc = prev.Desc
		}
		if e.Notes == "" {
			e.Notes = prev.Notes
		}
		if math.IsNaN(e.ValueMin) {
			e.ValueMin = prev.ValueMin
		}
		if math.IsNaN(e.ValueMax) {
			e.ValueMax = prev.ValueMax
		}
		if math.IsNaN(e.FillVal) {
			e.FillVal = prev.FillVal
		}
	}
	m.entries[key] = e
	m.names[key] = name
}

// Get returns the metadata for a variable, matching case-insensitively.
func (m *Meta) Get(name string) (Entry, bool) {
	e, ok := m.entries[strings.ToLower(name)]
	return e, ok
}

// Has reports whether the variable has metadata.
func (m *Meta) Has(name string) bool {
	_, ok := m.entries[strings.ToLower(name)]
	return ok
}

// SetChild attaches nested metadata to a variable, for profile or image
// style data whose elements carry their own labels.
func (m *Meta) SetChild(name string, child *Meta) {
	key := strings.ToLower(name)
	if _, ok := m.entries[key]; !ok {
		m.entries[key] = NewEntry()
		m.names[key] = name
	}
	m.children[key] = child
}

// Child returns the nested metadata for a variable, if any.
func (m *Meta) Child(name string) (*Meta, bool) {
	c, ok := m.children[strings.ToLower(name)]
	return c, ok
}

// Vars returns the stored variable names, sorted, in their original case.
func (m *Meta) Vars() []string {
	out := make([]string, 0, len(m.names))
	for _, name := range m.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of variables with metadata.
func (m *Meta) Len() int { return len(m.entries) }

// Drop removes a variable's metadata and any attached child.
func (m *Meta) Drop(name string) error {
	key := strings.ToLower(name)
	if _, ok := m.entries[key]; !ok {
		return fmt.Errorf("cannot drop unknown variable %q", name)
	}
	delete(m.entries, key)
	delete(m.names, key)
	delete(m.children, key)
	return nil
}

// Keep drops every variable not listed in names.
func (m *Meta) Keep(names []string) {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[strings.ToLower(n)] = struct{}{}
	}
	for key := range m.entries {
		if _, ok := want[key]; !ok {
			delete(m.entries, key)
			delete(m.names, key)
			delete(m.children, key)
		}
	}
}
