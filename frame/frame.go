// Package frame holds the time-indexed containers that instrument data is
// loaded into: a single Series of values, and a Frame of named columns that
// share one time index.
package frame

import (
	"fmt"
	"math"
	"time"
)

// Series is a sequence of float64 values indexed by time. Times and Values
// always have the same length.
type Series struct {
	Times  []time.Time
	Values []float64
}

// NewSeries constructs a Series, validating that the index and values have
// the same length.
func NewSeries(times []time.Time, values []float64) (*Series, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("series index length %d != value length %d",
			len(times), len(values))
	}
	return &Series{Times: times, Values: values}, nil
}

// Len returns the number of samples.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Times)
}

// SliceRange returns the samples with start <= t < stop.
func (s *Series) SliceRange(start, stop time.Time) *Series {
	lo, hi := rangeBounds(s.Times, start, stop)
	return &Series{Times: s.Times[lo:hi], Values: s.Values[lo:hi]}
}

// Frame is an ordered set of named float64 columns over a shared time index.
type Frame struct {
	index []time.Time
	order []string
	cols  map[string][]float64
}

// New constructs an empty Frame over the given time index.
func New(index []time.Time) *Frame {
	return &Frame{
		index: index,
		cols:  make(map[string][]float64),
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.index)
}

// Index returns the shared time index. Callers must not modify it.
func (f *Frame) Index() []time.Time { return f.index }

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// SetColumn adds or replaces a column. The values must match the index
// length.
func (f *Frame) SetColumn(name string, values []float64) error {
	if len(values) != len(f.index) {
		return fmt.Errorf("column %q length %d != index length %d",
			name, len(values), len(f.index))
	}
	if _, exists := f.cols[name]; !exists {
		f.order = append(f.order, name)
	}
	f.cols[name] = values
	return nil
}

// Column returns the named column's values, or false if it does not exist.
// Callers must not modify the returned slice.
func (f *Frame) Column(name string) ([]float64, bool) {
	vals, ok := f.cols[name]
	return vals, ok
}

// Series returns the named column paired with the time index.
func (f *Frame) Series(name string) (*Series, error) {
	vals, ok := f.cols[name]
	if !ok {
		return nil, fmt.Errorf("unknown variable %q", name)
	}
	return &Series{Times: f.index, Values: vals}, nil
}

// Slice returns the rows in [i, j) as a new Frame. Column slices share the
// underlying arrays.
func (f *Frame) Slice(i, j int) *Frame {
	out := New(f.index[i:j])
	for _, name := range f.order {
		out.order = append(out.order, name)
		out.cols[name] = f.cols[name][i:j]
	}
	return out
}

// SliceRange returns the rows with start <= t < stop as a new Frame.
func (f *Frame) SliceRange(start, stop time.Time) *Frame {
	lo, hi := rangeBounds(f.index, start, stop)
	return f.Slice(lo, hi)
}

// Append concatenates other below f. Both frames must carry the same
// column set.
func (f *Frame) Append(other *Frame) (*Frame, error) {
	if other == nil || other.Len() == 0 {
		return f, nil
	}
	if f == nil || f.Len() == 0 {
		return other, nil
	}
	if len(f.order) != len(other.order) {
		return nil, fmt.Errorf("cannot append frames with %d vs %d columns",
			len(f.order), len(other.order))
	}

	index := make([]time.Time, 0, f.Len()+other.Len())
	index = append(index, f.index...)
	index = append(index, other.index...)
	out := New(index)
	for _, name := range f.order {
		ovals, ok := other.cols[name]
		if !ok {
			return nil, fmt.Errorf("cannot append frames: missing column %q", name)
		}
		vals := make([]float64, 0, len(index))
		vals = append(vals, f.cols[name]...)
		vals = append(vals, ovals...)
		out.order = append(out.order, name)
		out.cols[name] = vals
	}
	return out, nil
}

// Fill writes v into every cell of the named column.
func (f *Frame) Fill(name string, v float64) error {
	vals, ok := f.cols[name]
	if !ok {
		return fmt.Errorf("unknown variable %q", name)
	}
	for i := range vals {
		vals[i] = v
	}
	return nil
}

// NaNColumn returns a fresh column of NaNs sized to the frame.
func (f *Frame) NaNColumn() []float64 {
	vals := make([]float64, f.Len())
	for i := range vals {
		vals[i] = math.NaN()
	}
	return vals
}

// MonotonicIndex reports whether index is non-decreasing in time.
func MonotonicIndex(index []time.Time) bool {
	for i := 1; i < len(index); i++ {
		if index[i].Before(index[i-1]) {
			return false
		}
	}
	return true
}

// UniqueIndex reports whether every index entry is distinct.
func UniqueIndex(index []time.Time) bool {
	seen := make(map[int64]struct{}, len(index))
	for _, t := range index {
		key := t.UnixNano()
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
	}
	return true
}

// rangeBounds locates the half-open window [start, stop) in a sorted time
// index by linear scan from both ends. File and data indexes are sorted, so
// this stays simple.
func rangeBounds(index []time.Time, start, stop time.Time) (int, int) {
	lo := 0
	for lo < len(index) && index[lo].Before(start) {
		lo++
	}
	hi := len(index)
	for hi > lo && !index[hi-1].Before(stop) {
		hi--
	}
	return lo, hi
}
