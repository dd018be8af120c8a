package orbits

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JonathonMSmith/pysat/files"
	"github.com/JonathonMSmith/pysat/frame"
	"github.com/JonathonMSmith/pysat/instrument"
	"github.com/JonathonMSmith/pysat/meta"
)

func hourly(base time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = base.Add(time.Duration(i) * time.Hour)
	}
	return out
}

// orbitModule serves days whose "mlt" signal wraps twice per day, so each
// day holds two whole segments plus a partial one at the end.
type orbitModule struct {
	start time.Time
	days  int
}

func (s *orbitModule) Init(ctx context.Context, inst *instrument.Instrument) error {
	return nil
}

func (s *orbitModule) ListFiles(tag, instID, dataPath, formatStr string) (*files.List, error) {
	list := &files.List{}
	for i := 0; i < s.days; i++ {
		d := s.start.AddDate(0, 0, i)
		list.Times = append(list.Times, d)
		list.Names = append(list.Names, d.Format("2006-01-02")+".nofile")
	}
	return list, nil
}

func (s *orbitModule) Load(ctx context.Context, fnames []string, tag, instID string) (*frame.Frame, *meta.Meta, error) {
	base := strings.TrimSuffix(filepath.Base(fnames[0]), ".nofile")
	date, err := time.ParseInLocation("2006-01-02", base, time.UTC)
	if err != nil {
		return nil, nil, err
	}
	f := frame.New(hourly(date, 6))
	if err := f.SetColumn("mlt", []float64{0, 8, 16, 0, 8, 16}); err != nil {
		return nil, nil, err
	}
	return f, meta.New(), nil
}

func (s *orbitModule) Clean(ctx context.Context, inst *instrument.Instrument) error {
	return nil
}

func (s *orbitModule) Download(ctx context.Context, dates []time.Time, tag, instID, dataPath string, opts instrument.DownloadOptions) error {
	return nil
}

func newOrbitInstrument(t *testing.T, days int) *instrument.Instrument {
	t.Helper()
	inst, err := instrument.New(context.Background(), instrument.Config{
		Platform: "orbit",
		Name:     "testing",
		Module: &orbitModule{
			start: time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC),
			days:  days,
		},
		DataDir: t.TempDir(),
		HomeDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("instrument.New failed: %v", err)
	}
	return inst
}

func TestNewValidation(t *testing.T) {
	inst := newOrbitInstrument(t, 1)

	if _, err := New(nil, Config{Index: "mlt"}); err == nil {
		t.Fatal("nil instrument should be rejected")
	}
	if _, err := New(inst, Config{}); err == nil {
		t.Fatal("missing index variable should be rejected")
	}
	if _, err := New(inst, Config{Index: "mlt", Kind: "bogus"}); err == nil {
		t.Fatal("unknown kind should be rejected")
	}

	o, err := New(inst, Config{Index: "mlt"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if o.cfg.Kind != KindLocalTime {
		t.Fatalf("default kind = %q", o.cfg.Kind)
	}
	if o.cfg.Period != DefaultPeriod {
		t.Fatalf("default period = %v", o.cfg.Period)
	}
}

func TestNextStitchesAcrossDays(t *testing.T) {
	inst := newOrbitInstrument(t, 2)
	o, err := New(inst, Config{Index: "mlt", Period: 24 * time.Hour})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	var sizes []int
	for {
		err := o.Next(ctx)
		if errors.Is(err, ErrNoOrbits) {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		sizes = append(sizes, o.Current().Len())
	}

	// Two days of [3 +partial 3] segments: the partial joins the next
	// day's first segment, and the final partial is emitted on its own.
	want := []int{3, 6, 3}
	if len(sizes) != len(want) {
		t.Fatalf("orbit sizes = %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Fatalf("orbit sizes = %v, want %v", sizes, want)
		}
	}
	if o.Num() != 3 {
		t.Fatalf("Num = %d, want 3", o.Num())
	}
}

func TestStitchedOrbitSpansMidnight(t *testing.T) {
	inst := newOrbitInstrument(t, 2)
	o, err := New(inst, Config{Index: "mlt", Period: 24 * time.Hour})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	if err := o.Next(ctx); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if err := o.Next(ctx); err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	idx := o.Current().Index()
	first := idx[0]
	last := idx[len(idx)-1]
	if first.Day() == last.Day() {
		t.Fatalf("second orbit should cross midnight: %v .. %v", first, last)
	}
}

func TestPrevWalksBackwards(t *testing.T) {
	inst := newOrbitInstrument(t, 2)
	o, err := New(inst, Config{Index: "mlt", Period: 24 * time.Hour})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	count := 0
	var firstLen int
	for {
		err := o.Prev(ctx)
		if errors.Is(err, ErrNoOrbits) {
			break
		}
		if err != nil {
			t.Fatalf("Prev failed: %v", err)
		}
		if count == 0 {
			firstLen = o.Current().Len()
		}
		count++
	}
	// No stitching in reverse: two segments per day, two days.
	if count != 4 {
		t.Fatalf("walked %d orbits backwards, want 4", count)
	}
	if firstLen != 3 {
		t.Fatalf("first reverse orbit has %d samples, want 3", firstLen)
	}
}

func TestDetectBreaksLocalTime(t *testing.T) {
	base := time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC)
	vals := []float64{2, 10, 18, 1, 9, 17}
	got := DetectBreaks(vals, hourly(base, len(vals)), KindLocalTime, 24*time.Hour)
	want := []int{0, 3}
	if len(got) != len(want) || got[0] != 0 || got[1] != 3 {
		t.Fatalf("breaks = %v, want %v", got, want)
	}
}

func TestDetectBreaksTimeGap(t *testing.T) {
	base := time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC)
	index := []time.Time{base, base.Add(time.Hour), base.Add(10 * time.Hour)}
	vals := []float64{1, 2, 3}

	got := DetectBreaks(vals, index, KindLocalTime, 2*time.Hour)
	if len(got) != 2 || got[1] != 2 {
		t.Fatalf("breaks = %v, want [0 2]", got)
	}
}

func TestDetectBreaksPolar(t *testing.T) {
	base := time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC)
	vals := []float64{-10, -5, 5, 10, -5, 5}
	got := DetectBreaks(vals, hourly(base, len(vals)), KindPolar, 24*time.Hour)
	// Breaks only on the upward sign change.
	if len(got) != 3 || got[1] != 2 || got[2] != 5 {
		t.Fatalf("breaks = %v, want [0 2 5]", got)
	}
}

func TestDetectBreaksOrbitNumber(t *testing.T) {
	base := time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC)
	vals := []float64{7, 7, 8, 8, 9}
	got := DetectBreaks(vals, hourly(base, len(vals)), KindOrbitNumber, 24*time.Hour)
	if len(got) != 3 || got[1] != 2 || got[2] != 4 {
		t.Fatalf("breaks = %v, want [0 2 4]", got)
	}
}

func TestDetectBreaksEmpty(t *testing.T) {
	if got := DetectBreaks(nil, nil, KindLocalTime, time.Hour); got != nil {
		t.Fatalf("breaks of empty input = %v", got)
	}
}
