// Package coords provides coordinate transformations: re-ranging cyclic
// quantities such as longitude, deriving solar local time, and converting
// between ECEF vectors and geodetic latitude/longitude/altitude.
package coords

import (
	"fmt"
	"math"

	"github.com/JonathonMSmith/pysat/frame"
	"github.com/JonathonMSmith/pysat/meta"
	"github.com/JonathonMSmith/pysat/timeutils"
)

// EarthRadiusKm is the mean Earth radius used for the spherical
// ECEF/geodetic conversions (kilometres).
const EarthRadiusKm = 6371.0

// Vec3 is an ECEF-style vector in kilometres.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// ECEFToGeodetic converts an ECEF position in kilometres to latitude and
// longitude in degrees and altitude above the mean Earth radius in
// kilometres. A spherical Earth is assumed.
func ECEFToGeodetic(v Vec3) (latDeg, lonDeg, altKm float64) {
	r := v.Norm()
	if r == 0 {
		return 0, 0, -EarthRadiusKm
	}
	latDeg = math.Asin(v.Z/r) * 180 / math.Pi
	lonDeg = math.Atan2(v.Y, v.X) * 180 / math.Pi
	altKm = r - EarthRadiusKm
	return latDeg, lonDeg, altKm
}

// GeodeticToECEF converts latitude/longitude in degrees and altitude in
// kilometres to an ECEF vector in kilometres, assuming a spherical Earth.
func GeodeticToECEF(latDeg, lonDeg, altKm float64) Vec3 {
	lat := latDeg * math.Pi / 180
	lon := lonDeg * math.Pi / 180
	r := EarthRadiusKm + altKm
	return Vec3{
		X: r * math.Cos(lat) * math.Cos(lon),
		Y: r * math.Cos(lat) * math.Sin(lon),
		Z: r * math.Sin(lat),
	}
}

// AdjustCyclic shifts cyclic values into the range [low, high) by adding or
// subtracting the range span. The samples are modified in place and
// returned. Values more than one span outside the range are wrapped fully.
func AdjustCyclic(samples []float64, high, low float64) []float64 {
	span := high - low
	if span <= 0 {
		return samples
	}
	for i, v := range samples {
		if math.IsNaN(v) {
			continue
		}
		v = math.Mod(v-low, span)
		if v < 0 {
			v += span
		}
		samples[i] = v + low
	}
	return samples
}

// UpdateLongitude re-ranges the named longitude variable on the frame,
// in place. Unknown variable names are an error.
func UpdateLongitude(data *frame.Frame, name string, high, low float64) error {
	vals, ok := data.Column(name)
	if !ok {
		return fmt.Errorf("unknown longitude variable name %q", name)
	}
	AdjustCyclic(vals, high, low)
	return nil
}

// CalcSolarLocalTime appends solar local time in hours, derived from the
// universal time of each sample and the named longitude variable (degrees),
// as a new variable sltName. Metadata for the new variable is added to m
// when m is non-nil.
func CalcSolarLocalTime(data *frame.Frame, m *meta.Meta, lonName, sltName string) error {
	lon, ok := data.Column(lonName)
	if !ok {
		return fmt.Errorf("unknown longitude variable name %q", lonName)
	}

	slt := make([]float64, data.Len())
	for i, t := range data.Index() {
		utHr := timeutils.SecondsOfDay(t) / 3600.0
		slt[i] = math.Mod(utHr+lon[i]/15.0, 24.0)
		if slt[i] < 0 {
			slt[i] += 24.0
		}
	}
	if err := data.SetColumn(sltName, slt); err != nil {
		return err
	}

	if m != nil {
		e := meta.NewEntry()
		e.Units = "h"
		e.LongName = "Solar Local Time"
		e.Desc = "Solar local time in hours"
		e.ValueMin = 0.0
		e.ValueMax = 24.0
		m.Set(sltName, e)
	}
	return nil
}
