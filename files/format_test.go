package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConstructSearchStringFixedWidth(t *testing.T) {
	info, err := ConstructSearchString(
		"inst_{year:04d}{month:02d}{day:02d}_v{version:02d}.cdf", false)
	if err != nil {
		t.Fatalf("ConstructSearchString failed: %v", err)
	}
	if info.SearchString != "inst_????????_v??.cdf" {
		t.Fatalf("search string = %q", info.SearchString)
	}
	wantKeys := []string{"year", "month", "day", "version"}
	if len(info.Keys) != len(wantKeys) {
		t.Fatalf("keys = %v, want %v", info.Keys, wantKeys)
	}
	for i, k := range wantKeys {
		if info.Keys[i] != k {
			t.Fatalf("keys = %v, want %v", info.Keys, wantKeys)
		}
	}
	if info.Lengths[0] != 4 || info.Lengths[3] != 2 {
		t.Fatalf("lengths = %v", info.Lengths)
	}
}

func TestConstructSearchStringWildcard(t *testing.T) {
	info, err := ConstructSearchString("inst_{year:04d}_{day:03d}.txt", true)
	if err != nil {
		t.Fatalf("ConstructSearchString failed: %v", err)
	}
	if info.SearchString != "inst_*_*.txt" {
		t.Fatalf("search string = %q", info.SearchString)
	}
}

func TestConstructSearchStringEmpty(t *testing.T) {
	if _, err := ConstructSearchString("", false); err == nil {
		t.Fatal("empty format should be rejected")
	}
}

func TestParseFixedWidth(t *testing.T) {
	fnames := []string{
		"inst_20090101_v01.cdf",
		"inst_20090102_v02.cdf",
		"not_a_match.cdf",
	}
	p, err := ParseFixedWidth(fnames,
		"inst_{year:04d}{month:02d}{day:02d}_v{version:02d}.cdf")
	if err != nil {
		t.Fatalf("ParseFixedWidth failed: %v", err)
	}
	if len(p.Files) != 2 {
		t.Fatalf("matched %d files, want 2", len(p.Files))
	}
	if p.Years[0] != 2009 || p.Months[0] != 1 || p.Days[1] != 2 {
		t.Fatalf("parsed fields: years=%v months=%v days=%v", p.Years, p.Months, p.Days)
	}
	if p.Versions[1] != 2 {
		t.Fatalf("versions = %v", p.Versions)
	}
	if p.Hours != nil {
		t.Fatal("absent fields should stay nil")
	}
}

func TestParseFixedWidthRequiresWidths(t *testing.T) {
	if _, err := ParseFixedWidth([]string{"a_2009.txt"}, "a_{year}.txt"); err == nil {
		t.Fatal("width-less field should be rejected for fixed-width parsing")
	}
}

func TestParseDelimited(t *testing.T) {
	fnames := []string{"inst_2009_4.txt", "inst_2009_17.txt"}
	p, err := ParseDelimited(fnames, "inst_{year:04d}_{day}.txt", "_")
	if err != nil {
		t.Fatalf("ParseDelimited failed: %v", err)
	}
	if len(p.Files) != 2 || p.Days[0] != 4 || p.Days[1] != 17 {
		t.Fatalf("parsed days = %v", p.Days)
	}
}

func TestProcessParsedVersionPreference(t *testing.T) {
	fnames := []string{
		"inst_20090101_v01_r02.cdf",
		"inst_20090101_v02_r00.cdf",
		"inst_20090101_v02_r01.cdf",
		"inst_20090102_v01_r00.cdf",
	}
	p, err := ParseFixedWidth(fnames,
		"inst_{year:04d}{month:02d}{day:02d}_v{version:02d}_r{revision:02d}.cdf")
	if err != nil {
		t.Fatalf("ParseFixedWidth failed: %v", err)
	}

	list, err := ProcessParsed(p, -1)
	if err != nil {
		t.Fatalf("ProcessParsed failed: %v", err)
	}
	if list.Len() != 2 {
		t.Fatalf("deduplicated to %d files, want 2", list.Len())
	}
	// Highest version wins, then revision.
	if list.Names[0] != "inst_20090101_v02_r01.cdf" {
		t.Fatalf("kept %q for the duplicated day", list.Names[0])
	}
	if !list.Times[0].Equal(time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("time[0] = %v", list.Times[0])
	}
}

func TestProcessParsedTwoDigitYears(t *testing.T) {
	fnames := []string{"inst_98001.txt", "inst_09001.txt"}
	p, err := ParseFixedWidth(fnames, "inst_{year:02d}{day:03d}.txt")
	if err != nil {
		t.Fatalf("ParseFixedWidth failed: %v", err)
	}

	list, err := ProcessParsed(p, 50)
	if err != nil {
		t.Fatalf("ProcessParsed failed: %v", err)
	}
	if list.Len() != 2 {
		t.Fatalf("got %d files, want 2", list.Len())
	}
	// Years at or above the break land in the 1900s, below it in the 2000s.
	if y := list.Times[0].Year(); y != 1998 {
		t.Fatalf("first year = %d, want 1998", y)
	}
	if y := list.Times[1].Year(); y != 2009 {
		t.Fatalf("second year = %d, want 2009", y)
	}
}

func TestProcessParsedRequiresYear(t *testing.T) {
	p := &Parsed{Files: []string{"x"}, Days: []int{1}}
	if _, err := ProcessParsed(p, -1); err == nil {
		t.Fatal("missing year field should be rejected")
	}
}

func TestProcessParsedEmpty(t *testing.T) {
	list, err := ProcessParsed(&Parsed{}, -1)
	if err != nil {
		t.Fatalf("ProcessParsed failed: %v", err)
	}
	if !list.Empty() {
		t.Fatal("empty input should yield an empty list")
	}
}

func TestFromOS(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"inst_20090101.txt",
		"inst_20090103.txt",
		"inst_20090102.txt",
		"unrelated.dat",
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatalf("writing %s: %v", n, err)
		}
	}

	list, err := FromOS(dir, "inst_{year:04d}{month:02d}{day:02d}.txt", -1, "")
	if err != nil {
		t.Fatalf("FromOS failed: %v", err)
	}
	if list.Len() != 3 {
		t.Fatalf("found %d files, want 3", list.Len())
	}
	// Ordered by file start time regardless of directory order.
	for i := 1; i < list.Len(); i++ {
		if list.Times[i].Before(list.Times[i-1]) {
			t.Fatalf("listing out of order: %v", list.Times)
		}
	}
	if list.Names[1] != "inst_20090102.txt" {
		t.Fatalf("names = %v", list.Names)
	}
}
