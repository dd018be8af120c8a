package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JonathonMSmith/pysat/internal/logging"
)

// fakeLister serves a mutable file listing, standing in for a module's
// list routine.
type fakeLister struct {
	list *List
}

func (fl *fakeLister) list3Days() {
	base := time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC)
	fl.list = &List{}
	for i := 0; i < 3; i++ {
		d := base.AddDate(0, 0, i)
		fl.list.Times = append(fl.list.Times, d)
		fl.list.Names = append(fl.list.Names, d.Format("2006-01-02")+".nofile")
	}
}

func (fl *fakeLister) add(day time.Time) {
	fl.list.Times = append(fl.list.Times, day)
	fl.list.Names = append(fl.list.Names, day.Format("2006-01-02")+".nofile")
}

func (fl *fakeLister) fn(tag, instID, dataPath, formatStr string) (*List, error) {
	out := &List{
		Times: append([]time.Time(nil), fl.list.Times...),
		Names: append([]string(nil), fl.list.Names...),
	}
	return out, nil
}

func newTestFiles(t *testing.T, fl *fakeLister) *Files {
	t.Helper()
	f, err := New(Config{
		Platform:  "pysat",
		Name:      "testing",
		DataDir:   t.TempDir(),
		HomeDir:   t.TempDir(),
		ListFiles: fl.fn,
	}, logging.Noop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return f
}

func TestNewScansAndStores(t *testing.T) {
	fl := &fakeLister{}
	fl.list3Days()
	f := newTestFiles(t, fl)

	if f.Len() != 3 {
		t.Fatalf("indexed %d files, want 3", f.Len())
	}
	want := time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC)
	if !f.StartDate().Equal(want) {
		t.Fatalf("StartDate = %v, want %v", f.StartDate(), want)
	}
	if !f.StopDate().Equal(want.AddDate(0, 0, 2)) {
		t.Fatalf("StopDate = %v", f.StopDate())
	}
	if !strings.HasSuffix(f.DataPath, string(os.PathSeparator)) {
		t.Fatalf("DataPath %q should end with a separator", f.DataPath)
	}

	// A snapshot lands in the home directory.
	snap := filepath.Join(f.cfg.HomeDir, f.storedName)
	if _, err := os.Stat(snap); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
}

func TestNewLoadsStoredSnapshot(t *testing.T) {
	fl := &fakeLister{}
	fl.list3Days()
	first := newTestFiles(t, fl)

	// A second index with the same home dir starts from the snapshot and,
	// without UpdateFiles, never calls the lister.
	called := false
	second, err := New(Config{
		Platform: "pysat",
		Name:     "testing",
		DataDir:  first.cfg.DataDir,
		HomeDir:  first.cfg.HomeDir,
		ListFiles: func(tag, instID, dataPath, formatStr string) (*List, error) {
			called = true
			return &List{}, nil
		},
	}, logging.Noop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if called {
		t.Fatal("stored snapshot should satisfy construction")
	}
	if second.Len() != 3 {
		t.Fatalf("snapshot restored %d files, want 3", second.Len())
	}
	if !second.All().Equal(first.All()) {
		t.Fatal("restored listing differs from the original")
	}
}

func TestByDateAndDateRange(t *testing.T) {
	fl := &fakeLister{}
	fl.list3Days()
	f := newTestFiles(t, fl)

	day := time.Date(2009, 1, 2, 0, 0, 0, 0, time.UTC)
	got := f.ByDate(day)
	if len(got) != 1 || got[0] != "2009-01-02.nofile" {
		t.Fatalf("ByDate = %v", got)
	}

	// The stop date is exclusive.
	names := f.DateRange(
		time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2009, 1, 3, 0, 0, 0, 0, time.UTC))
	if len(names) != 2 {
		t.Fatalf("DateRange = %v, want 2 entries", names)
	}
	if names[1] != "2009-01-02.nofile" {
		t.Fatalf("DateRange = %v", names)
	}
}

func TestGetIndexAndFileArray(t *testing.T) {
	fl := &fakeLister{}
	fl.list3Days()
	f := newTestFiles(t, fl)

	i, err := f.GetIndex("2009-01-02.nofile")
	if err != nil {
		t.Fatalf("GetIndex failed: %v", err)
	}
	if i != 1 {
		t.Fatalf("GetIndex = %d, want 1", i)
	}
	if _, err := f.GetIndex("2010-01-01.nofile"); err == nil {
		t.Fatal("unknown file should error after a refresh retry")
	}

	arr, err := f.GetFileArray("2009-01-01.nofile", "2009-01-03.nofile")
	if err != nil {
		t.Fatalf("GetFileArray failed: %v", err)
	}
	if len(arr) != 3 {
		t.Fatalf("GetFileArray = %v", arr)
	}
	if _, err := f.GetFileArray("2009-01-03.nofile", "2009-01-01.nofile"); err == nil {
		t.Fatal("reversed file bounds should error")
	}
}

func TestGetNew(t *testing.T) {
	fl := &fakeLister{}
	fl.list3Days()
	f := newTestFiles(t, fl)

	// The previous snapshot is empty right after construction, so the
	// whole listing reports as new.
	newFiles, err := f.GetNew()
	if err != nil {
		t.Fatalf("GetNew failed: %v", err)
	}
	if newFiles.Len() != 3 {
		t.Fatalf("first GetNew = %v, want all 3 files", newFiles.Names)
	}

	fl.add(time.Date(2009, 1, 4, 0, 0, 0, 0, time.UTC))
	newFiles, err = f.GetNew()
	if err != nil {
		t.Fatalf("GetNew failed: %v", err)
	}
	if newFiles.Len() != 1 || newFiles.Names[0] != "2009-01-04.nofile" {
		t.Fatalf("GetNew = %v", newFiles.Names)
	}
	if f.Len() != 4 {
		t.Fatalf("GetNew should refresh the index, len = %d", f.Len())
	}
}

func TestDuplicateTimesKeepFirst(t *testing.T) {
	fl := &fakeLister{}
	fl.list3Days()
	// Reuse day two's start time under a second name.
	fl.list.Times = append(fl.list.Times, fl.list.Times[1])
	fl.list.Names = append(fl.list.Names, "duplicate.nofile")

	f := newTestFiles(t, fl)
	if f.Len() != 3 {
		t.Fatalf("duplicates not dropped, len = %d", f.Len())
	}
	for i := 0; i < f.Len(); i++ {
		if f.At(i) == "duplicate.nofile" {
			t.Fatal("the first file of a duplicated time should win")
		}
	}
}

func TestMultiFileDayKeepsDuplicates(t *testing.T) {
	fl := &fakeLister{}
	fl.list3Days()
	fl.list.Times = append(fl.list.Times, fl.list.Times[1])
	fl.list.Names = append(fl.list.Names, "duplicate.nofile")

	f, err := New(Config{
		Platform:     "pysat",
		Name:         "testing",
		DataDir:      t.TempDir(),
		HomeDir:      t.TempDir(),
		ListFiles:    fl.fn,
		MultiFileDay: true,
	}, logging.Noop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if f.Len() != 4 {
		t.Fatalf("multi-file day dropped files, len = %d", f.Len())
	}
}

func TestInMemorySnapshots(t *testing.T) {
	fl := &fakeLister{}
	fl.list3Days()

	home := t.TempDir()
	f, err := New(Config{
		Platform:  "pysat",
		Name:      "testing",
		DataDir:   t.TempDir(),
		HomeDir:   home,
		ListFiles: fl.fn,
		InMemory:  true,
	}, logging.Noop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	fl.add(time.Date(2009, 1, 4, 0, 0, 0, 0, time.UTC))
	newFiles, err := f.GetNew()
	if err != nil {
		t.Fatalf("GetNew failed: %v", err)
	}
	if newFiles.Len() != 1 {
		t.Fatalf("GetNew = %v", newFiles.Names)
	}

	// No snapshot files on disk in memory mode.
	entries, err := os.ReadDir(home)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("in-memory mode wrote %d files to home", len(entries))
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.txt")
	list := &List{
		Times: []time.Time{
			time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2009, 1, 2, 12, 30, 0, 500000000, time.UTC),
		},
		Names: []string{"a.nofile", "b.nofile"},
	}
	if err := writeSnapshot(path, list); err != nil {
		t.Fatalf("writeSnapshot failed: %v", err)
	}
	got, err := readSnapshot(path)
	if err != nil {
		t.Fatalf("readSnapshot failed: %v", err)
	}
	if !got.Equal(list) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestReadSnapshotMissing(t *testing.T) {
	got, err := readSnapshot(filepath.Join(t.TempDir(), "absent.txt"))
	if err != nil {
		t.Fatalf("missing snapshot should not error: %v", err)
	}
	if !got.Empty() {
		t.Fatal("missing snapshot should read as empty")
	}
}

func TestRequiredConfig(t *testing.T) {
	if _, err := New(Config{ListFiles: (&fakeLister{list: &List{}}).fn}, nil); err == nil {
		t.Fatal("missing data dir should be rejected")
	}
	if _, err := New(Config{DataDir: t.TempDir()}, nil); err == nil {
		t.Fatal("missing list routine should be rejected")
	}
}
