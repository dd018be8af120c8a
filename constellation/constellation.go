// Package constellation groups instruments so they can be loaded,
// transformed, and combined together.
package constellation

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonathonMSmith/pysat/custom"
	"github.com/JonathonMSmith/pysat/frame"
	"github.com/JonathonMSmith/pysat/instrument"
)

// Constellation is an ordered collection of instruments.
type Constellation struct {
	Instruments []*instrument.Instrument
}

// New constructs a constellation from the given instruments.
func New(insts ...*instrument.Instrument) *Constellation {
	return &Constellation{Instruments: insts}
}

// Len returns the number of member instruments.
func (c *Constellation) Len() int { return len(c.Instruments) }

// LoadAll loads the same day on every member concurrently.
func (c *Constellation) LoadAll(ctx context.Context, date time.Time) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, inst := range c.Instruments {
		inst := inst
		g.Go(func() error {
			return inst.Load(ctx, date)
		})
	}
	return g.Wait()
}

// AttachAll appends a custom function to every member's queue.
func (c *Constellation) AttachAll(name string, fn custom.Func) error {
	for _, inst := range c.Instruments {
		if err := inst.Custom.Attach(name, fn); err != nil {
			return err
		}
	}
	return nil
}

// Bounds returns the union of the members' file date bounds.
func (c *Constellation) Bounds() (start, stop time.Time) {
	for _, inst := range c.Instruments {
		s, e := inst.Files.StartDate(), inst.Files.StopDate()
		if s.IsZero() {
			continue
		}
		if start.IsZero() || s.Before(start) {
			start = s
		}
		if stop.IsZero() || e.After(stop) {
			stop = e
		}
	}
	return start, stop
}

// AddSignal sums the named variable across all loaded members onto the
// union of their time indexes. Samples missing from a member contribute
// nothing; times covered by no member are NaN.
func (c *Constellation) AddSignal(name string) (*frame.Series, error) {
	if len(c.Instruments) == 0 {
		return nil, fmt.Errorf("constellation is empty")
	}

	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	seen := make(map[int64]struct{})
	var order []int64
	for _, inst := range c.Instruments {
		vals, ok := inst.Data.Column(name)
		if !ok {
			return nil, fmt.Errorf("variable %q not loaded on %s %s",
				name, inst.Platform, inst.Name)
		}
		for i, t := range inst.Data.Index() {
			key := t.UnixNano()
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				order = append(order, key)
			}
			if math.IsNaN(vals[i]) {
				continue
			}
			sums[key] += vals[i]
			counts[key]++
		}
	}

	times := make([]time.Time, 0, len(order))
	values := make([]float64, 0, len(order))
	for _, key := range order {
		times = append(times, time.Unix(0, key).UTC())
		if counts[key] == 0 {
			values = append(values, math.NaN())
		} else {
			values = append(values, sums[key])
		}
	}
	return frame.NewSeries(times, values)
}
