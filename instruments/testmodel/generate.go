package testmodel

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"
)

// GenerateFakeData produces a deterministic signal over the sample steps.
// t0 is the start time in seconds since the simulation epoch and steps are
// second offsets from t0. Cyclic signals sweep dataRange once per period
// and wrap; non-cyclic signals count whole periods elapsed.
func GenerateFakeData(t0 float64, steps []float64, period float64, dataRange [2]float64, cyclic bool) []float64 {
	out := make([]float64, len(steps))
	if cyclic {
		span := dataRange[1] - dataRange[0]
		root := math.Mod(t0, period)
		for i, s := range steps {
			out[i] = math.Mod(root+s, period)*(span/period) + dataRange[0]
		}
		return out
	}
	for i, s := range steps {
		out[i] = math.Floor((t0 + s) / period)
	}
	return out
}

// GenerateTimes reconstructs the date from a fake filename
// ("YYYY-MM-DD.nofile") and produces up to num sample times at the given
// cadence, never crossing into the next day. It returns the seconds of
// day for each sample, the sample times, and the file date.
func GenerateTimes(fname string, num int, freq time.Duration, startTime time.Duration) (uts []float64, index []time.Time, date time.Time, err error) {
	if freq <= 0 {
		freq = time.Second
	}
	if startTime < 0 {
		return nil, nil, time.Time{}, fmt.Errorf("start time offset must be non-negative")
	}

	base := filepath.Base(fname)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	date, err = time.ParseInLocation("2006-01-02", base, time.UTC)
	if err != nil {
		return nil, nil, time.Time{}, fmt.Errorf("bad fake filename %q: %w", fname, err)
	}

	dayEnd := date.Add(24*time.Hour - time.Second)
	t := date.Add(startTime)
	for len(index) < num && !t.After(dayEnd) {
		index = append(index, t)
		sod := t.Sub(date).Seconds()
		uts = append(uts, sod)
		t = t.Add(freq)
	}
	return uts, index, date, nil
}

// Default signal periods, in seconds. Local time and longitude run
// slightly out of sync to simulate the motion of the Earth.
const (
	PeriodLT    = 5820.0 // 97 minutes
	PeriodLon   = 6240.0 // 104 minutes
	PeriodAngle = 5820.0
)
