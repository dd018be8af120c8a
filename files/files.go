// Package files maintains the ordered collection of data files for an
// instrument: scanning the instrument's data directory via templates,
// persisting snapshots of the listing, and reporting new files.
package files

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonathonMSmith/pysat/internal/logging"
	"github.com/JonathonMSmith/pysat/timeutils"
)

const snapshotTimeLayout = "2006-01-02 15:04:05.000000"

// List is an ordered collection of filenames indexed by file start time.
// Times and Names always share a length.
type List struct {
	Times []time.Time
	Names []string
}

// Len returns the number of files.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Names)
}

// Empty reports whether the list has no files.
func (l *List) Empty() bool { return l.Len() == 0 }

// Equal reports whether two lists hold the same files at the same times.
func (l *List) Equal(other *List) bool {
	if l.Len() != other.Len() {
		return false
	}
	for i := range l.Names {
		if l.Names[i] != other.Names[i] || !l.Times[i].Equal(other.Times[i]) {
			return false
		}
	}
	return true
}

// ListFunc produces the file listing for an instrument. Implementations
// are supplied by instrument modules; dataPath is the directory to search
// and formatStr the filename template (may be empty for a module default).
type ListFunc func(tag, instID, dataPath, formatStr string) (*List, error)

// Config carries the knobs for a Files index.
type Config struct {
	Platform string
	Name     string
	Tag      string
	InstID   string

	// DataDir is the root pysat data directory. The instrument's files
	// live under DataDir joined with DirectoryFormat.
	DataDir string
	// HomeDir holds the snapshot files; defaults to <user home>/.pysat.
	HomeDir string
	// DirectoryFormat defaults to "{platform}/{name}/{tag}".
	DirectoryFormat string
	// FileFormat is passed through to the module's list routine.
	FileFormat string

	ListFiles ListFunc

	// UpdateFiles triggers a filesystem refresh at construction even when
	// a stored snapshot exists.
	UpdateFiles bool
	// InMemory keeps snapshots in memory instead of on disk, for runs
	// where several processes share a home directory.
	InMemory bool
	// IgnoreEmptyFiles drops zero-size files from the listing.
	IgnoreEmptyFiles bool
	// MultiFileDay permits several files to share one start time.
	MultiFileDay bool
}

// Files maintains the collection of files for one instrument.
type Files struct {
	cfg  Config
	log  logging.Logger
	list *List

	// DataPath is the fully resolved instrument data directory, always
	// ending in a path separator.
	DataPath string

	startDate time.Time
	stopDate  time.Time

	storedName string
	prevMem    *List
	curMem     *List
}

// New constructs a Files index. When the platform is set, any stored
// snapshot is loaded; with no snapshot (or with UpdateFiles) the
// filesystem is scanned immediately.
func New(cfg Config, log logging.Logger) (*Files, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("pysat data directory is unset; configure one via params")
	}
	if cfg.ListFiles == nil {
		return nil, fmt.Errorf("files: a list routine is required")
	}
	if log == nil {
		log = logging.Noop()
	}
	if cfg.HomeDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.HomeDir = filepath.Join(home, ".pysat")
	}
	if cfg.DirectoryFormat == "" {
		cfg.DirectoryFormat = filepath.Join("{platform}", "{name}", "{tag}")
	}

	subDir := strings.NewReplacer(
		"{platform}", cfg.Platform,
		"{name}", cfg.Name,
		"{tag}", cfg.Tag,
		"{inst_id}", cfg.InstID,
	).Replace(cfg.DirectoryFormat)

	f := &Files{
		cfg:  cfg,
		log:  log,
		list: &List{},
		// Trailing separator so prefix stripping is unambiguous.
		DataPath: filepath.Join(cfg.DataDir, subDir) + string(os.PathSeparator),
		storedName: strings.Join([]string{
			cfg.Platform, cfg.Name, cfg.Tag, cfg.InstID,
			"stored_file_info.txt"}, "_"),
	}
	if cfg.InMemory {
		f.prevMem = &List{}
		f.curMem = &List{}
	}

	if cfg.Platform != "" {
		stored, err := f.loadStored(false)
		if err != nil {
			return nil, err
		}
		if !stored.Empty() {
			f.attach(stored)
			if cfg.UpdateFiles {
				if err := f.Refresh(); err != nil {
					return nil, err
				}
			}
		} else if err := f.Refresh(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Len returns the number of indexed files.
func (f *Files) Len() int { return f.list.Len() }

// At returns the filename at position i.
func (f *Files) At(i int) string { return f.list.Names[i] }

// All returns a copy of the current listing.
func (f *Files) All() *List {
	out := &List{
		Times: make([]time.Time, f.list.Len()),
		Names: make([]string, f.list.Len()),
	}
	copy(out.Times, f.list.Times)
	copy(out.Names, f.list.Names)
	return out
}

// StartDate returns the date of the first file, or a zero time when the
// index is empty.
func (f *Files) StartDate() time.Time { return f.startDate }

// StopDate returns the date of the last file, or a zero time when the
// index is empty.
func (f *Files) StopDate() time.Time { return f.stopDate }

// ByDate returns the filenames whose start time falls on the given day.
func (f *Files) ByDate(date time.Time) []string {
	date = timeutils.FilterDatetime(date)
	next := date.AddDate(0, 0, 1)
	var out []string
	for i, t := range f.list.Times {
		if !t.Before(date) && t.Before(next) {
			out = append(out, f.list.Names[i])
		}
	}
	return out
}

// DateRange returns the filenames with start <= time < stop. The stop date
// is exclusive, matching date slicing on the original file series.
func (f *Files) DateRange(start, stop time.Time) []string {
	var out []string
	for i, t := range f.list.Times {
		if !t.Before(start) && t.Before(stop) {
			out = append(out, f.list.Names[i])
		}
	}
	return out
}

// GetIndex returns the position of fname in the index. A miss triggers one
// refresh before giving up.
func (f *Files) GetIndex(fname string) (int, error) {
	for i, n := range f.list.Names {
		if n == fname {
			return i, nil
		}
	}
	if err := f.Refresh(); err != nil {
		return 0, err
	}
	for i, n := range f.list.Names {
		if n == fname {
			return i, nil
		}
	}
	example := ""
	if f.list.Len() > 0 {
		example = f.list.Names[0]
	}
	return 0, fmt.Errorf("could not find %q in available file list, valid example: %q",
		fname, example)
}

// GetFileArray returns the filenames between and including the start and
// stop filenames.
func (f *Files) GetFileArray(start, stop string) ([]string, error) {
	i, err := f.GetIndex(start)
	if err != nil {
		return nil, err
	}
	j, err := f.GetIndex(stop)
	if err != nil {
		return nil, err
	}
	if j < i {
		return nil, fmt.Errorf("stop file %q precedes start file %q", stop, start)
	}
	out := make([]string, j-i+1)
	copy(out, f.list.Names[i:j+1])
	return out, nil
}

// Refresh re-lists the instrument files and stores a snapshot when the
// listing changed.
func (f *Files) Refresh() error {
	f.log.Info(context.Background(), "searching for instrument files",
		logging.String("platform", f.cfg.Platform),
		logging.String("name", f.cfg.Name),
		logging.String("tag", f.cfg.Tag),
		logging.String("inst_id", f.cfg.InstID),
		logging.String("data_path", f.DataPath))

	list, err := f.cfg.ListFiles(f.cfg.Tag, f.cfg.InstID, f.DataPath, f.cfg.FileFormat)
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}
	f.stripDataPath(list)

	if list.Empty() {
		f.log.Warn(context.Background(),
			"no files match the supplied template; check pysat settings and file locations")
	} else {
		f.log.Info(context.Background(), "found local files",
			logging.Int("count", list.Len()))
	}

	f.attach(list)
	return f.store()
}

// GetNew refreshes the index and returns the files present now that were
// absent from the previous snapshot.
func (f *Files) GetNew() (*List, error) {
	if err := f.Refresh(); err != nil {
		return nil, err
	}
	cur, err := f.loadStored(false)
	if err != nil {
		return nil, err
	}
	prev, err := f.loadStored(true)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, prev.Len())
	for _, n := range prev.Names {
		known[n] = struct{}{}
	}
	out := &List{}
	for i, n := range cur.Names {
		if _, ok := known[n]; !ok {
			out.Times = append(out.Times, cur.Times[i])
			out.Names = append(out.Names, n)
		}
	}
	return out, nil
}

// String summarizes the index the way the original file statistics read.
func (f *Files) String() string {
	var b strings.Builder
	b.WriteString("Local File Statistics\n")
	b.WriteString("---------------------\n")
	fmt.Fprintf(&b, "Number of files: %d\n", f.list.Len())
	if f.list.Len() > 0 {
		fmt.Fprintf(&b, "Date Range: %s --- %s",
			f.list.Times[0].Format("02 January 2006"),
			f.list.Times[f.list.Len()-1].Format("02 January 2006"))
	}
	return b.String()
}

// attach installs a listing, enforcing unique start times and recording
// the date bounds. Duplicate times keep the first file and warn, unless
// the instrument declares multi-file days.
func (f *Files) attach(list *List) {
	if !f.cfg.MultiFileDay && list.Len() > 1 {
		seen := make(map[int64]struct{}, list.Len())
		dedup := &List{}
		dropped := 0
		for i, t := range list.Times {
			key := t.UnixNano()
			if _, dup := seen[key]; dup {
				dropped++
				continue
			}
			seen[key] = struct{}{}
			dedup.Times = append(dedup.Times, t)
			dedup.Names = append(dedup.Names, list.Names[i])
		}
		if dropped > 0 {
			f.log.Warn(context.Background(),
				"duplicate datetimes in file information; keeping one of each",
				logging.Int("dropped", dropped))
			list = dedup
		}
	}

	if f.cfg.IgnoreEmptyFiles {
		list = f.filterEmpty(list)
	}

	f.list = list
	if list.Empty() {
		f.startDate = time.Time{}
		f.stopDate = time.Time{}
		return
	}
	f.startDate = timeutils.FilterDatetime(list.Times[0])
	f.stopDate = timeutils.FilterDatetime(list.Times[list.Len()-1])
}

// filterEmpty drops entries whose files are missing or zero length.
func (f *Files) filterEmpty(list *List) *List {
	out := &List{}
	for i, name := range list.Names {
		info, err := os.Stat(filepath.Join(f.DataPath, name))
		if err != nil || info.Size() == 0 {
			continue
		}
		out.Times = append(out.Times, list.Times[i])
		out.Names = append(out.Names, name)
	}
	if dropped := list.Len() - out.Len(); dropped > 0 {
		f.log.Info(context.Background(), "removed empty files from instrument list",
			logging.Int("dropped", dropped))
	}
	return out
}

func (f *Files) stripDataPath(list *List) {
	for i, n := range list.Names {
		if idx := strings.LastIndex(n, f.DataPath); idx >= 0 {
			list.Names[i] = n[idx+len(f.DataPath):]
		}
	}
}

// store writes the current listing as a snapshot when it differs from the
// stored one, rotating the stored copy to the previous slot.
func (f *Files) store() error {
	stored, err := f.loadStored(false)
	if err != nil {
		return err
	}
	if stored.Equal(f.list) {
		return nil
	}

	if f.cfg.InMemory {
		f.prevMem = stored
		f.curMem = f.list
		return nil
	}

	if err := os.MkdirAll(f.cfg.HomeDir, 0o755); err != nil {
		return fmt.Errorf("create pysat home: %w", err)
	}
	if err := writeSnapshot(filepath.Join(f.cfg.HomeDir, "previous_"+f.storedName), stored); err != nil {
		return err
	}
	return writeSnapshot(filepath.Join(f.cfg.HomeDir, f.storedName), f.list)
}

func (f *Files) loadStored(prev bool) (*List, error) {
	if f.cfg.InMemory {
		if prev {
			return f.prevMem, nil
		}
		return f.curMem, nil
	}

	name := f.storedName
	if prev {
		name = "previous_" + name
	}
	return readSnapshot(filepath.Join(f.cfg.HomeDir, name))
}

func writeSnapshot(path string, list *List) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	for i, n := range list.Names {
		if err := w.Write([]string{list.Times[i].UTC().Format(snapshotTimeLayout), n}); err != nil {
			return fmt.Errorf("write snapshot %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

func readSnapshot(path string) (*List, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &List{}, nil
		}
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 2
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	list := &List{}
	for _, rec := range records {
		t, err := time.ParseInLocation(snapshotTimeLayout, rec[0], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("read snapshot %s: bad time %q: %w", path, rec[0], err)
		}
		list.Times = append(list.Times, t)
		list.Names = append(list.Names, rec[1])
	}
	return list, nil
}
