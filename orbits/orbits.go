// Package orbits segments loaded instrument data into orbits and iterates
// over them, loading adjacent days as needed and carrying partial orbits
// across day boundaries.
package orbits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonathonMSmith/pysat/frame"
	"github.com/JonathonMSmith/pysat/instrument"
)

// Kind selects how orbit breaks are detected.
type Kind string

const (
	// KindLocalTime breaks where a 0-24 hour signal wraps.
	KindLocalTime Kind = "lt"
	// KindLongitude breaks where a 0-360 degree signal wraps.
	KindLongitude Kind = "longitude"
	// KindPolar breaks where the signal changes sign.
	KindPolar Kind = "polar"
	// KindOrbitNumber breaks where the orbit number changes.
	KindOrbitNumber Kind = "orbit"
)

// ErrNoOrbits signals that iteration ran out of data.
var ErrNoOrbits = errors.New("no further orbits within instrument bounds")

// DefaultPeriod is the assumed orbital period when none is configured.
const DefaultPeriod = 5820 * time.Second

// Config describes how to find orbits in the data.
type Config struct {
	Kind Kind
	// Index names the variable used for break detection.
	Index string
	// Period is the nominal orbit period, used to flag data gaps.
	Period time.Duration
}

// Orbits iterates an instrument orbit by orbit.
type Orbits struct {
	inst *instrument.Instrument
	cfg  Config

	breaks  []int
	orbit   int // position within breaks for the current day
	num     int // orbits consumed since iteration start
	started bool

	// tail of the previous day, prepended when an orbit spans midnight
	tail    *frame.Frame
	current *frame.Frame
}

// New constructs an orbit iterator over the instrument.
func New(inst *instrument.Instrument, cfg Config) (*Orbits, error) {
	if inst == nil {
		return nil, fmt.Errorf("orbits: instrument is required")
	}
	if cfg.Index == "" {
		return nil, fmt.Errorf("orbits: an index variable is required")
	}
	switch cfg.Kind {
	case KindLocalTime, KindLongitude, KindPolar, KindOrbitNumber:
	case "":
		cfg.Kind = KindLocalTime
	default:
		return nil, fmt.Errorf("orbits: unknown kind %q", cfg.Kind)
	}
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}
	return &Orbits{inst: inst, cfg: cfg}, nil
}

// Current returns the active orbit's data, or nil before the first Next.
func (o *Orbits) Current() *frame.Frame { return o.current }

// Num returns the number of orbits consumed since iteration started.
func (o *Orbits) Num() int { return o.num }

// Next advances to the following orbit, loading the next day when the
// current one is exhausted. The final partial orbit of a day is joined
// with the continuation at the start of the next day.
func (o *Orbits) Next(ctx context.Context) error {
	if !o.started {
		if err := o.inst.Next(ctx); err != nil {
			if errors.Is(err, instrument.ErrOutOfBounds) {
				return ErrNoOrbits
			}
			return err
		}
		if err := o.segment(); err != nil {
			return err
		}
		o.started = true
		o.orbit = 0
		return o.take()
	}

	o.orbit++
	// The last segment of a day may continue past midnight; hold it back
	// and stitch it onto the next day's first segment.
	for o.orbit >= len(o.breaks) || o.orbit == len(o.breaks)-1 {
		if o.orbit == len(o.breaks)-1 {
			start := o.breaks[o.orbit]
			o.tail = o.inst.Data.Slice(start, o.inst.Data.Len())
		}
		if err := o.inst.Next(ctx); err != nil {
			if errors.Is(err, instrument.ErrOutOfBounds) {
				// End of data: emit the held-back tail if there is one.
				if o.tail != nil && o.tail.Len() > 0 {
					o.current = o.tail
					o.tail = nil
					o.num++
					return nil
				}
				return ErrNoOrbits
			}
			return err
		}
		if o.inst.Data.Len() == 0 {
			o.orbit = 0
			o.breaks = nil
			continue
		}
		if err := o.segment(); err != nil {
			return err
		}
		o.orbit = 0
		break
	}
	return o.take()
}

// Prev steps to the preceding orbit within the loaded data, loading the
// previous day when the current one is exhausted. Partial orbits are not
// stitched in reverse.
func (o *Orbits) Prev(ctx context.Context) error {
	if !o.started {
		if err := o.inst.Prev(ctx); err != nil {
			if errors.Is(err, instrument.ErrOutOfBounds) {
				return ErrNoOrbits
			}
			return err
		}
		if err := o.segment(); err != nil {
			return err
		}
		o.started = true
		o.orbit = len(o.breaks) - 1
		return o.take()
	}

	o.orbit--
	for o.orbit < 0 {
		if err := o.inst.Prev(ctx); err != nil {
			if errors.Is(err, instrument.ErrOutOfBounds) {
				return ErrNoOrbits
			}
			return err
		}
		if o.inst.Data.Len() == 0 {
			continue
		}
		if err := o.segment(); err != nil {
			return err
		}
		o.orbit = len(o.breaks) - 1
	}
	return o.take()
}

// take slices the current orbit out of the loaded day, joining any held
// tail from the previous day.
func (o *Orbits) take() error {
	if len(o.breaks) == 0 {
		o.current = frame.New(nil)
		return nil
	}
	start := o.breaks[o.orbit]
	stop := o.inst.Data.Len()
	if o.orbit+1 < len(o.breaks) {
		stop = o.breaks[o.orbit+1]
	}
	cur := o.inst.Data.Slice(start, stop)

	if o.tail != nil && o.orbit == 0 {
		joined, err := o.tail.Append(cur)
		if err != nil {
			return fmt.Errorf("join orbit across day boundary: %w", err)
		}
		cur = joined
		o.tail = nil
	}
	o.current = cur
	o.num++
	return nil
}

// segment locates the orbit start rows of the loaded day.
func (o *Orbits) segment() error {
	vals, ok := o.inst.Data.Column(o.cfg.Index)
	if !ok {
		return fmt.Errorf("orbit index variable %q not in loaded data", o.cfg.Index)
	}
	o.breaks = DetectBreaks(vals, o.inst.Data.Index(), o.cfg.Kind, o.cfg.Period)
	return nil
}

// DetectBreaks returns the row indices where a new orbit begins, always
// including row zero. Time gaps longer than the orbit period also break
// an orbit, whatever the index variable does.
func DetectBreaks(vals []float64, index []time.Time, kind Kind, period time.Duration) []int {
	if len(vals) == 0 {
		return nil
	}
	breaks := []int{0}
	for i := 1; i < len(vals); i++ {
		if index[i].Sub(index[i-1]) > period {
			breaks = append(breaks, i)
			continue
		}
		switch kind {
		case KindLocalTime, KindLongitude:
			if vals[i] < vals[i-1] {
				breaks = append(breaks, i)
			}
		case KindPolar:
			if (vals[i] >= 0) != (vals[i-1] >= 0) && vals[i-1] < 0 {
				breaks = append(breaks, i)
			}
		case KindOrbitNumber:
			if vals[i] != vals[i-1] {
				breaks = append(breaks, i)
			}
		}
	}
	return breaks
}
