// Package custom implements the ordered queue of user functions an
// instrument applies to its data after every load. Functions may modify
// existing variables or add new ones; metadata travels alongside.
package custom

import (
	"fmt"

	"github.com/JonathonMSmith/pysat/frame"
	"github.com/JonathonMSmith/pysat/meta"
)

// Func mutates freshly loaded instrument data in place.
type Func func(data *frame.Frame, m *meta.Meta) error

type item struct {
	name string
	fn   Func
}

// Queue is an ordered list of custom functions. The zero value is usable.
type Queue struct {
	items []item
}

// Attach appends a named function to the queue.
func (q *Queue) Attach(name string, fn Func) error {
	if fn == nil {
		return fmt.Errorf("custom: nil function %q", name)
	}
	q.items = append(q.items, item{name: name, fn: fn})
	return nil
}

// Apply runs the queued functions in order against the data. The first
// failure aborts the run; the caller is expected to discard the load.
func (q *Queue) Apply(data *frame.Frame, m *meta.Meta) error {
	for _, it := range q.items {
		if err := it.fn(data, m); err != nil {
			return fmt.Errorf("custom function %q: %w", it.name, err)
		}
	}
	return nil
}

// Len returns the number of queued functions.
func (q *Queue) Len() int { return len(q.items) }

// Names returns the queued function names in order.
func (q *Queue) Names() []string {
	out := make([]string, len(q.items))
	for i, it := range q.items {
		out[i] = it.name
	}
	return out
}

// Clear empties the queue.
func (q *Queue) Clear() { q.items = nil }
