// Package timeutils contains the date and time helpers shared by the
// instrument, file, and orbit layers. All times are UTC.
package timeutils

import (
	"fmt"
	"time"
)

// GetYrDoy returns the year and day of year for t.
func GetYrDoy(t time.Time) (year, doy int) {
	t = t.UTC()
	return t.Year(), t.YearDay()
}

// YrDoyToDate converts a year and day of year into a date at midnight UTC.
// Day of year is 1-based.
func YrDoyToDate(year, doy int) (time.Time, error) {
	if doy < 1 || doy > 366 {
		return time.Time{}, fmt.Errorf("day of year %d out of range [1, 366]", doy)
	}
	date := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, doy-1)
	if date.Year() != year {
		return time.Time{}, fmt.Errorf("day of year %d does not exist in %d", doy, year)
	}
	return date, nil
}

// FilterDatetime truncates t to midnight UTC. Instrument loads and file
// bounds operate on whole days.
func FilterDatetime(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CreateDatetimeIndex builds a time index from per-sample year, month, and
// day values plus seconds of day. The slices must share a length; month and
// day may be nil when uts carries whole-day offsets from January 1st.
func CreateDatetimeIndex(years []int, months, days []int, uts []float64) ([]time.Time, error) {
	n := len(years)
	if n == 0 {
		return nil, fmt.Errorf("create datetime index: empty year input")
	}
	if len(uts) != n {
		return nil, fmt.Errorf("create datetime index: uts length %d != year length %d", len(uts), n)
	}
	if months != nil && len(months) != n {
		return nil, fmt.Errorf("create datetime index: month length %d != year length %d", len(months), n)
	}
	if days != nil && len(days) != n {
		return nil, fmt.Errorf("create datetime index: day length %d != year length %d", len(days), n)
	}

	index := make([]time.Time, n)
	for i := 0; i < n; i++ {
		month := time.January
		day := 1
		if months != nil {
			month = time.Month(months[i])
		}
		if days != nil {
			day = days[i]
		}
		base := time.Date(years[i], month, day, 0, 0, 0, 0, time.UTC)
		index[i] = base.Add(time.Duration(uts[i] * float64(time.Second)))
	}
	return index, nil
}

// CreateDateRange returns the daily sequence from start through stop,
// inclusive on both ends. Inputs are truncated to midnight first.
func CreateDateRange(start, stop time.Time) []time.Time {
	start = FilterDatetime(start)
	stop = FilterDatetime(stop)
	if stop.Before(start) {
		return nil
	}

	var out []time.Time
	for d := start; !d.After(stop); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// SecondsOfDay returns the number of seconds since midnight UTC for t,
// including the fractional part.
func SecondsOfDay(t time.Time) float64 {
	t = t.UTC()
	return float64(t.Hour())*3600 + float64(t.Minute())*60 +
		float64(t.Second()) + float64(t.Nanosecond())*1e-9
}
