// Package stats provides the small set of NaN-aware statistics used by the
// seasonal analysis routines. Circular variants operate over an arbitrary
// [low, high) range so they work for hours, degrees, or radians.
package stats

import (
	"math"
	"sort"
)

// dropNaN returns the finite values of samples.
func dropNaN(samples []float64) []float64 {
	out := make([]float64, 0, len(samples))
	for _, v := range samples {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Mean returns the arithmetic mean of the finite samples, or NaN if there
// are none.
func Mean(samples []float64) float64 {
	vals := dropNaN(samples)
	if len(vals) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// Median returns the median of the finite samples, or NaN if there are none.
func Median(samples []float64) float64 {
	vals := dropNaN(samples)
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}

// Std returns the population standard deviation of the finite samples, or
// NaN if there are none.
func Std(samples []float64) float64 {
	vals := dropNaN(samples)
	if len(vals) == 0 {
		return math.NaN()
	}
	mean := Mean(vals)
	sum := 0.0
	for _, v := range vals {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)))
}

// CircMean returns the circular mean of samples defined on [low, high),
// mapped back into that range.
func CircMean(samples []float64, low, high float64) float64 {
	vals := dropNaN(samples)
	if len(vals) == 0 || high <= low {
		return math.NaN()
	}
	span := high - low

	var sinSum, cosSum float64
	for _, v := range vals {
		ang := (v - low) / span * 2 * math.Pi
		sinSum += math.Sin(ang)
		cosSum += math.Cos(ang)
	}
	ang := math.Atan2(sinSum, cosSum)
	if ang < 0 {
		ang += 2 * math.Pi
	}
	return ang/(2*math.Pi)*span + low
}

// CircStd returns the circular standard deviation of samples defined on
// [low, high), expressed in the same units as the input.
func CircStd(samples []float64, low, high float64) float64 {
	vals := dropNaN(samples)
	if len(vals) == 0 || high <= low {
		return math.NaN()
	}
	span := high - low

	var sinSum, cosSum float64
	for _, v := range vals {
		ang := (v - low) / span * 2 * math.Pi
		sinSum += math.Sin(ang)
		cosSum += math.Cos(ang)
	}
	n := float64(len(vals))
	r := math.Hypot(sinSum/n, cosSum/n)
	if r <= 0 {
		return math.NaN()
	}
	if r > 1 {
		r = 1
	}
	return math.Sqrt(-2*math.Log(r)) / (2 * math.Pi) * span
}
