package instrument

import (
	"context"
	"fmt"
	"time"

	"github.com/JonathonMSmith/pysat/timeutils"
)

// SetBounds restricts iteration to whole days between start and stop,
// inclusive. Zero times fall back to the file index bounds.
func (inst *Instrument) SetBounds(start, stop time.Time) error {
	if start.IsZero() {
		start = inst.Files.StartDate()
	}
	if stop.IsZero() {
		stop = inst.Files.StopDate()
	}
	start = timeutils.FilterDatetime(start)
	stop = timeutils.FilterDatetime(stop)
	if stop.Before(start) {
		return fmt.Errorf("bounds stop %s precedes start %s",
			stop.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	inst.kind = boundByDate
	inst.boundsStart = start
	inst.boundsStop = stop
	inst.ResetIteration()
	return nil
}

// SetBoundsByFile restricts iteration to the inclusive range between two
// filenames in the index.
func (inst *Instrument) SetBoundsByFile(start, stop string) error {
	i, err := inst.Files.GetIndex(start)
	if err != nil {
		return err
	}
	j, err := inst.Files.GetIndex(stop)
	if err != nil {
		return err
	}
	if j < i {
		return fmt.Errorf("bounds stop file %q precedes start file %q", stop, start)
	}
	inst.kind = boundByFile
	inst.fileStart = i
	inst.fileStop = j
	inst.ResetIteration()
	return nil
}

// Bounds returns the current date bounds.
func (inst *Instrument) Bounds() (start, stop time.Time) {
	return inst.boundsStart, inst.boundsStop
}

// ResetIteration rewinds Next/Prev to the start of the bounds.
func (inst *Instrument) ResetIteration() {
	inst.iterating = false
}

// Next loads the following day (or file) within the bounds. The first
// call after SetBounds or ResetIteration loads the first day. Stepping
// past the end returns ErrOutOfBounds.
func (inst *Instrument) Next(ctx context.Context) error {
	switch inst.kind {
	case boundByFile:
		if !inst.iterating {
			inst.cursorFile = inst.fileStart
		} else {
			inst.cursorFile++
		}
		if inst.cursorFile > inst.fileStop {
			return ErrOutOfBounds
		}
		inst.iterating = true
		return inst.LoadFile(ctx, inst.Files.At(inst.cursorFile))
	default:
		if !inst.iterating {
			inst.cursorDate = inst.boundsStart
		} else {
			inst.cursorDate = inst.cursorDate.AddDate(0, 0, 1)
		}
		if inst.cursorDate.After(inst.boundsStop) {
			return ErrOutOfBounds
		}
		inst.iterating = true
		return inst.Load(ctx, inst.cursorDate)
	}
}

// Prev loads the preceding day (or file) within the bounds. The first
// call loads the last day. Stepping before the start returns
// ErrOutOfBounds.
func (inst *Instrument) Prev(ctx context.Context) error {
	switch inst.kind {
	case boundByFile:
		if !inst.iterating {
			inst.cursorFile = inst.fileStop
		} else {
			inst.cursorFile--
		}
		if inst.cursorFile < inst.fileStart {
			return ErrOutOfBounds
		}
		inst.iterating = true
		return inst.LoadFile(ctx, inst.Files.At(inst.cursorFile))
	default:
		if !inst.iterating {
			inst.cursorDate = inst.boundsStop
		} else {
			inst.cursorDate = inst.cursorDate.AddDate(0, 0, -1)
		}
		if inst.cursorDate.Before(inst.boundsStart) {
			return ErrOutOfBounds
		}
		inst.iterating = true
		return inst.Load(ctx, inst.cursorDate)
	}
}
