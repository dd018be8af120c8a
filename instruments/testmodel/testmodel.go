// Package testmodel implements the simulated test instrument: three years
// of daily fake files around a reference date, with deterministic cyclic
// signals and SGP4-derived position channels. It exists so every layer
// above the file index can be exercised without real mission data.
package testmodel

import (
	"context"
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/JonathonMSmith/pysat/coords"
	"github.com/JonathonMSmith/pysat/files"
	"github.com/JonathonMSmith/pysat/frame"
	"github.com/JonathonMSmith/pysat/instrument"
	"github.com/JonathonMSmith/pysat/internal/logging"
	"github.com/JonathonMSmith/pysat/meta"
)

// Acknowledgements for the simulated data.
const AckStr = "Test instruments provided through the pysat project. " +
	"https://www.github.com/pysat/pysat"

// ISS sample TLE, used when the config supplies none.
const (
	defaultTLE1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	defaultTLE2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
)

// orbitEpoch anchors the simulated orbit number: number of 5820 second
// periods elapsed since the start of the simulated mission.
var orbitEpoch = time.Date(2008, time.January, 1, 0, 0, 0, 0, time.UTC)

// Config tunes the simulated instrument.
type Config struct {
	// NumSamples caps the samples generated per day (default 864).
	NumSamples int
	// Freq is the sample cadence (default 1s).
	Freq time.Duration
	// StartTime offsets the first sample of each day from midnight.
	StartTime time.Duration
	// RefDate anchors the three-year fake file range (default 2009-01-01).
	RefDate time.Time
	// FileStart/FileStop override the generated file range when both set.
	FileStart time.Time
	FileStop  time.Time
	// MangleFileDates shifts file times by five minutes, for tests that
	// need file times off the day boundary.
	MangleFileDates bool
	// TLE lines for the position channels.
	TLE1 string
	TLE2 string

	Logger logging.Logger
}

// Module is the simulated instrument module.
type Module struct {
	cfg Config
	log logging.Logger
}

// New constructs the module, filling config defaults.
func New(cfg Config) *Module {
	if cfg.NumSamples <= 0 {
		cfg.NumSamples = 864
	}
	if cfg.Freq <= 0 {
		cfg.Freq = time.Second
	}
	if cfg.RefDate.IsZero() {
		cfg.RefDate = time.Date(2009, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	if cfg.TLE1 == "" || cfg.TLE2 == "" {
		cfg.TLE1 = defaultTLE1
		cfg.TLE2 = defaultTLE2
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Noop()
	}
	return &Module{cfg: cfg, log: log}
}

// Init records acknowledgements and references on the instrument.
func (m *Module) Init(ctx context.Context, inst *instrument.Instrument) error {
	m.log.Info(ctx, AckStr)
	inst.Acknowledgements = AckStr
	inst.References = "Stoneback et al (2018), JGR Space Physics, 123, 3. doi:10.1002/2017JA025297"
	return nil
}

// ListFiles produces the fake daily file listing: one year back and two
// years forward from the reference date, named YYYY-MM-DD.nofile.
func (m *Module) ListFiles(tag, instID, dataPath, formatStr string) (*files.List, error) {
	start := m.cfg.FileStart
	stop := m.cfg.FileStop
	if start.IsZero() || stop.IsZero() {
		start = m.cfg.RefDate.AddDate(-1, 0, 0)
		stop = m.cfg.RefDate.AddDate(2, 0, -1)
	}

	list := &files.List{}
	for d := start; !d.After(stop); d = d.AddDate(0, 0, 1) {
		when := d
		if m.cfg.MangleFileDates {
			when = when.Add(5 * time.Minute)
		}
		list.Times = append(list.Times, when)
		list.Names = append(list.Names, dataPath+d.Format("2006-01-02")+".nofile")
	}
	return list, nil
}

// Load generates one day of simulated data for the first named file.
func (m *Module) Load(ctx context.Context, fnames []string, tag, instID string) (*frame.Frame, *meta.Meta, error) {
	if len(fnames) == 0 {
		return nil, nil, fmt.Errorf("no files to load")
	}

	uts, index, date, err := GenerateTimes(fnames[0], m.cfg.NumSamples, m.cfg.Freq, m.cfg.StartTime)
	if err != nil {
		return nil, nil, err
	}

	t0 := date.Sub(orbitEpoch).Seconds()
	mlt := GenerateFakeData(t0, uts, PeriodLT, [2]float64{0, 24}, true)
	slt := GenerateFakeData(t0, uts, PeriodLT, [2]float64{0, 24}, true)
	lon := GenerateFakeData(t0, uts, PeriodLon, [2]float64{0, 360}, true)
	orbitNum := GenerateFakeData(t0, uts, PeriodLT, [2]float64{0, 24}, false)

	// dummy1 is the constellation-addition signal. The "B" tag carries the
	// sign-flipped copy so adding across a two-member constellation
	// cancels to zero.
	dummy1 := make([]float64, len(mlt))
	sign := 1.0
	if tag == "B" {
		sign = -1.0
	}
	for i, v := range mlt {
		dummy1[i] = sign * (v - 12.0)
	}

	lat, alt := m.positionChannels(index)

	data := frame.New(index)
	for _, col := range []struct {
		name string
		vals []float64
	}{
		{"uts", uts},
		{"mlt", mlt},
		{"slt", slt},
		{"longitude", lon},
		{"latitude", lat},
		{"altitude", alt},
		{"orbit_num", orbitNum},
		{"dummy1", dummy1},
	} {
		if err := data.SetColumn(col.name, col.vals); err != nil {
			return nil, nil, err
		}
	}

	return data, initTestMeta(data.Columns()), nil
}

// positionChannels propagates the module TLE with SGP4 at each sample time
// and converts the ECEF position to geodetic latitude and altitude.
func (m *Module) positionChannels(index []time.Time) (lat, alt []float64) {
	sat := satellite.TLEToSat(m.cfg.TLE1, m.cfg.TLE2, satellite.GravityWGS72)

	lat = make([]float64, len(index))
	alt = make([]float64, len(index))
	for i, t := range index {
		year, month, day := t.Date()
		hour, min, sec := t.Clock()

		posECI, _ := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
		jd := satellite.JDay(year, int(month), day, hour, min, sec)
		gmst := satellite.ThetaG_JD(jd)
		posECEF := satellite.ECIToECEF(posECI, gmst)

		la, _, al := coords.ECEFToGeodetic(coords.Vec3{
			X: posECEF.X, Y: posECEF.Y, Z: posECEF.Z,
		})
		lat[i] = la
		alt[i] = al
	}
	return lat, alt
}

// Clean is a pass-through: the simulated data has nothing to remove.
func (m *Module) Clean(ctx context.Context, inst *instrument.Instrument) error {
	return nil
}

// Download is a pass-through. The "no_download" tag warns that no download
// support exists, and the "user_password" tag requires credentials.
func (m *Module) Download(ctx context.Context, dates []time.Time, tag, instID, dataPath string, opts instrument.DownloadOptions) error {
	switch tag {
	case "no_download":
		m.log.Warn(ctx, "this simulates an instrument without download support")
	case "user_password":
		if opts.User == "" && opts.Password == "" {
			return fmt.Errorf("user and password required for download")
		}
	}
	m.log.Info(ctx, "simulated download complete",
		logging.Int("days", len(dates)))
	return nil
}

// initTestMeta builds the standard metadata for the simulated channels and
// drops entries for channels the load did not produce.
func initTestMeta(dataKeys []string) *meta.Meta {
	mm := meta.New()

	set := func(name, units, long, desc string, lo, hi float64) {
		e := meta.NewEntry()
		e.Units = units
		e.LongName = long
		e.Desc = desc
		e.ValueMin = lo
		e.ValueMax = hi
		mm.Set(name, e)
	}

	set("uts", "s", "Universal Time", "Number of seconds since midnight UT", 0, 86400)
	set("mlt", "hours", "Magnetic Local Time", "", 0, 24)
	set("slt", "hours", "Solar Local Time", "", 0, 24)
	set("longitude", "degrees", "Longitude", "", 0, 360)
	set("latitude", "degrees", "Latitude", "", -90, 90)
	set("altitude", "km", "Altitude", "", math.NaN(), math.NaN())
	{
		e := meta.NewEntry()
		e.LongName = "Orbit Number"
		e.Desc = "Orbit Number"
		e.ValueMin = 0
		e.ValueMax = 25000
		e.Notes = "Number of orbits since the start of the mission. For this " +
			"simulation we use the number of 5820 second periods since the " +
			"start, 2008-01-01."
		mm.Set("orbit_num", e)
	}
	{
		e := meta.NewEntry()
		e.Units = "none"
		e.LongName = "dummy1"
		e.Notes = "Dummy variable"
		mm.Set("dummy1", e)
	}

	mm.Keep(dataKeys)
	return mm
}
