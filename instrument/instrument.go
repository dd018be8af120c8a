// Package instrument provides the Instrument object: one satellite or
// ground-based data product, identified by platform, name, tag, and
// instrument ID, with its file index, metadata, loaded data frame, and
// custom function queue.
package instrument

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/JonathonMSmith/pysat/custom"
	"github.com/JonathonMSmith/pysat/files"
	"github.com/JonathonMSmith/pysat/frame"
	"github.com/JonathonMSmith/pysat/internal/logging"
	"github.com/JonathonMSmith/pysat/internal/observability"
	"github.com/JonathonMSmith/pysat/meta"
	"github.com/JonathonMSmith/pysat/timeutils"
)

// CleanLevel selects how aggressively a module removes questionable data.
type CleanLevel string

const (
	CleanNone  CleanLevel = "none"
	CleanDirty CleanLevel = "dirty"
	CleanDusty CleanLevel = "dusty"
	CleanClean CleanLevel = "clean"
)

// ErrOutOfBounds signals that iteration stepped past the configured
// bounds.
var ErrOutOfBounds = errors.New("requested date outside iteration bounds")

// DownloadOptions carries optional credentials for module downloads.
type DownloadOptions struct {
	User     string
	Password string
}

// Module supplies the instrument-specific routines. Implementations live
// in the instruments subpackages or in external instrument libraries.
type Module interface {
	// Init runs once when the Instrument is constructed.
	Init(ctx context.Context, inst *Instrument) error
	// ListFiles produces the local file listing for the data path.
	ListFiles(tag, instID, dataPath, formatStr string) (*files.List, error)
	// Load reads the named files (full paths) into a frame and metadata.
	Load(ctx context.Context, fnames []string, tag, instID string) (*frame.Frame, *meta.Meta, error)
	// Clean removes questionable data at the instrument's clean level.
	Clean(ctx context.Context, inst *Instrument) error
	// Download fetches data for the given dates into dataPath.
	Download(ctx context.Context, dates []time.Time, tag, instID, dataPath string, opts DownloadOptions) error
}

// Preprocessor is implemented by modules with a standard preprocessing
// step, applied on every load before cleaning.
type Preprocessor interface {
	Preprocess(ctx context.Context, inst *Instrument) error
}

// boundKind records whether iteration steps by date or by file.
type boundKind int

const (
	boundByDate boundKind = iota
	boundByFile
)

// Config assembles an Instrument.
type Config struct {
	Platform string
	Name     string
	Tag      string
	InstID   string

	Module     Module
	CleanLevel CleanLevel

	// File index knobs, passed through to the files package.
	DataDir          string
	HomeDir          string
	DirectoryFormat  string
	FileFormat       string
	UpdateFiles      bool
	InMemory         bool
	IgnoreEmptyFiles bool
	MultiFileDay     bool

	// StrictTime rejects loads whose time index is non-monotonic or
	// non-unique.
	StrictTime bool

	Logger  logging.Logger
	Metrics *observability.Collector
}

// Instrument is one data product and its management state.
type Instrument struct {
	Platform string
	Name     string
	Tag      string
	InstID   string

	CleanLevel CleanLevel
	StrictTime bool

	Files  *files.Files
	Meta   *meta.Meta
	Data   *frame.Frame
	Custom *custom.Queue

	// Date is the day of the currently loaded data, zero when nothing is
	// loaded.
	Date time.Time

	// Acknowledgements and References are set by the module's Init.
	Acknowledgements string
	References       string

	module  Module
	log     logging.Logger
	metrics *observability.Collector

	kind        boundKind
	boundsStart time.Time
	boundsStop  time.Time
	fileStart   int
	fileStop    int
	cursorDate  time.Time
	cursorFile  int
	iterating   bool
}

// New constructs an Instrument, builds its file index, and runs the
// module's Init hook.
func New(ctx context.Context, cfg Config) (*Instrument, error) {
	if cfg.Module == nil {
		return nil, fmt.Errorf("instrument: a module is required")
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Noop()
	}
	log = log.With(
		logging.String("platform", cfg.Platform),
		logging.String("name", cfg.Name))

	if cfg.CleanLevel == "" {
		cfg.CleanLevel = CleanNone
	}
	switch cfg.CleanLevel {
	case CleanNone, CleanDirty, CleanDusty, CleanClean:
	default:
		return nil, fmt.Errorf("unknown clean level %q", cfg.CleanLevel)
	}

	inst := &Instrument{
		Platform:   cfg.Platform,
		Name:       cfg.Name,
		Tag:        cfg.Tag,
		InstID:     cfg.InstID,
		CleanLevel: cfg.CleanLevel,
		StrictTime: cfg.StrictTime,
		Meta:       meta.New(),
		Data:       frame.New(nil),
		Custom:     &custom.Queue{},
		module:     cfg.Module,
		log:        log,
		metrics:    cfg.Metrics,
	}

	fidx, err := files.New(files.Config{
		Platform:         cfg.Platform,
		Name:             cfg.Name,
		Tag:              cfg.Tag,
		InstID:           cfg.InstID,
		DataDir:          cfg.DataDir,
		HomeDir:          cfg.HomeDir,
		DirectoryFormat:  cfg.DirectoryFormat,
		FileFormat:       cfg.FileFormat,
		ListFiles:        cfg.Module.ListFiles,
		UpdateFiles:      cfg.UpdateFiles,
		InMemory:         cfg.InMemory,
		IgnoreEmptyFiles: cfg.IgnoreEmptyFiles,
		MultiFileDay:     cfg.MultiFileDay,
	}, log)
	if err != nil {
		return nil, err
	}
	inst.Files = fidx
	inst.metrics.SetFilesIndexed(inst.Platform, inst.Name, fidx.Len())

	// Default bounds follow the file index.
	inst.boundsStart = fidx.StartDate()
	inst.boundsStop = fidx.StopDate()

	if err := cfg.Module.Init(ctx, inst); err != nil {
		return nil, fmt.Errorf("instrument init: %w", err)
	}
	return inst, nil
}

// Empty reports whether no data is currently loaded.
func (inst *Instrument) Empty() bool { return inst.Data.Len() == 0 }

// Index returns the time index of the loaded data.
func (inst *Instrument) Index() []time.Time { return inst.Data.Index() }

// Load reads the data for one day: files for the date are located,
// loaded through the module, validated, cleaned, and run through the
// custom queue.
func (inst *Instrument) Load(ctx context.Context, date time.Time) error {
	date = timeutils.FilterDatetime(date)
	return inst.loadFiles(ctx, date, inst.Files.ByDate(date))
}

// LoadYrDoy loads the day given by year and day of year.
func (inst *Instrument) LoadYrDoy(ctx context.Context, year, doy int) error {
	date, err := timeutils.YrDoyToDate(year, doy)
	if err != nil {
		return err
	}
	return inst.Load(ctx, date)
}

// LoadFile loads a single named file from the index.
func (inst *Instrument) LoadFile(ctx context.Context, fname string) error {
	i, err := inst.Files.GetIndex(fname)
	if err != nil {
		return err
	}
	date := timeutils.FilterDatetime(inst.Files.All().Times[i])
	return inst.loadFiles(ctx, date, []string{fname})
}

func (inst *Instrument) loadFiles(ctx context.Context, date time.Time, names []string) (err error) {
	start := time.Now()
	var span trace.Span
	ctx, span = observability.Tracer().Start(ctx, "instrument.Load",
		trace.WithAttributes(
			attribute.String("platform", inst.Platform),
			attribute.String("name", inst.Name),
			attribute.String("date", date.Format("2006-01-02")),
			attribute.Int("files", len(names))))
	defer func() {
		status := "ok"
		if err != nil {
			span.RecordError(err)
			status = "error"
		}
		inst.metrics.ObserveLoad(inst.Platform, inst.Name, status,
			time.Since(start).Seconds())
		span.End()
	}()

	if len(names) == 0 {
		inst.log.Info(ctx, "no files for date; loading empty frame",
			logging.String("date", date.Format("2006-01-02")))
		inst.Data = frame.New(nil)
		inst.Date = date
		return nil
	}

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(inst.Files.DataPath, n)
	}

	data, m, err := inst.module.Load(ctx, paths, inst.Tag, inst.InstID)
	if err != nil {
		return fmt.Errorf("load %s %s for %s: %w",
			inst.Platform, inst.Name, date.Format("2006-01-02"), err)
	}
	if data == nil {
		data = frame.New(nil)
	}
	if m == nil {
		m = meta.New()
	}

	if inst.StrictTime {
		if !frame.MonotonicIndex(data.Index()) {
			return fmt.Errorf("loaded data is not monotonic")
		}
		if !frame.UniqueIndex(data.Index()) {
			return fmt.Errorf("loaded data is not unique")
		}
	}

	inst.Data = data
	inst.Meta = m
	inst.Date = date

	if pp, ok := inst.module.(Preprocessor); ok {
		if err = pp.Preprocess(ctx, inst); err != nil {
			return fmt.Errorf("preprocess: %w", err)
		}
	}
	if inst.CleanLevel != CleanNone {
		if err = inst.module.Clean(ctx, inst); err != nil {
			return fmt.Errorf("clean: %w", err)
		}
	}
	if err = inst.Custom.Apply(inst.Data, inst.Meta); err != nil {
		return err
	}

	inst.log.Info(ctx, "loaded data",
		logging.String("date", date.Format("2006-01-02")),
		logging.Int("samples", inst.Data.Len()))
	return nil
}

// Download fetches data for every day from start through stop via the
// module, then refreshes the file index.
func (inst *Instrument) Download(ctx context.Context, start, stop time.Time, opts DownloadOptions) error {
	dates := timeutils.CreateDateRange(start, stop)
	if len(dates) == 0 {
		return fmt.Errorf("download: stop date precedes start date")
	}
	err := inst.module.Download(ctx, dates, inst.Tag, inst.InstID, inst.Files.DataPath, opts)
	status := "ok"
	if err != nil {
		status = "error"
	}
	inst.metrics.ObserveDownload(inst.Platform, inst.Name, status)
	if err != nil {
		return fmt.Errorf("download %s %s: %w", inst.Platform, inst.Name, err)
	}
	if err := inst.Files.Refresh(); err != nil {
		return err
	}
	inst.metrics.SetFilesIndexed(inst.Platform, inst.Name, inst.Files.Len())
	return nil
}
