package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/JonathonMSmith/pysat/instrument"
	"github.com/JonathonMSmith/pysat/instruments"
	"github.com/JonathonMSmith/pysat/internal/logging"
	"github.com/JonathonMSmith/pysat/internal/observability"
	"github.com/JonathonMSmith/pysat/params"
)

// app carries the state shared by all subcommands.
type app struct {
	logLevel    string
	logFormat   string
	dataDir     string
	metricsAddr string

	log     logging.Logger
	prm     *params.Params
	metrics *observability.Collector

	shutdownTracing func(context.Context) error
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "pysat",
		Short:         "Manage, load, and analyze satellite data products",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&a.logFormat, "log-format", "text", "log format (text or json)")
	pf.StringVar(&a.dataDir, "data-dir", "", "data directory (overrides stored settings)")
	pf.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")

	root.AddCommand(
		newIndexCommand(a),
		newStatusCommand(a),
		newLoadCommand(a),
		newOrbitsCommand(a),
		newSeasonCommand(a),
		newDataDirCommand(a),
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	a.log = logging.New(logging.Config{Level: a.logLevel, Format: a.logFormat})

	prm, err := params.Load("")
	if err != nil {
		return err
	}
	a.prm = prm

	a.metrics, err = observability.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	if a.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.metrics.Handler())
		go func() {
			if err := http.ListenAndServe(a.metricsAddr, mux); err != nil {
				a.log.Error(ctx, "metrics listener failed", logging.Any("error", err))
			}
		}()
		a.log.Info(ctx, "serving metrics", logging.String("addr", a.metricsAddr))
	}

	a.shutdownTracing, err = observability.InitTracing(ctx, observability.TracingConfigFromEnv(), a.log)
	return err
}

func (a *app) teardown(ctx context.Context) error {
	if a.shutdownTracing == nil {
		return nil
	}
	return a.shutdownTracing(ctx)
}

// newInstrument resolves "platform/name[/tag[/instID]]" against the
// registry and builds the instrument.
func (a *app) newInstrument(ctx context.Context, spec string, clean string, strict bool) (*instrument.Instrument, error) {
	parts := strings.Split(spec, "/")
	if len(parts) < 2 || len(parts) > 4 {
		return nil, fmt.Errorf("instrument spec %q: want platform/name[/tag[/instID]]", spec)
	}
	platform, name := parts[0], parts[1]
	var tag, instID string
	if len(parts) > 2 {
		tag = parts[2]
	}
	if len(parts) > 3 {
		instID = parts[3]
	}

	ctor, err := instruments.Default.Lookup(platform, name)
	if err != nil {
		return nil, err
	}
	dataDir, err := a.prm.ResolveDataDir(a.dataDir)
	if err != nil {
		return nil, err
	}

	return instrument.New(ctx, instrument.Config{
		Platform:    platform,
		Name:        name,
		Tag:         tag,
		InstID:      instID,
		Module:      ctor(),
		CleanLevel:  instrument.CleanLevel(clean),
		DataDir:     dataDir,
		UpdateFiles: a.prm.UpdateFiles,
		StrictTime:  strict,
		Logger:      a.log,
		Metrics:     a.metrics,
	})
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t.UTC(), nil
}
