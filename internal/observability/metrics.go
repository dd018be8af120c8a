package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus metrics for instrument data management
// and provides a ready-to-serve /metrics handler.
type Collector struct {
	gatherer prometheus.Gatherer

	LoadsTotal   *prometheus.CounterVec
	LoadDuration *prometheus.HistogramVec
	FilesIndexed *prometheus.GaugeVec
	Downloads    *prometheus.CounterVec
}

// NewCollector registers the instrument metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	loads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pysat_loads_total",
		Help: "Total number of instrument data loads, labeled by platform, name, and outcome.",
	}, []string{"platform", "name", "status"})
	loads, err := registerCounterVec(reg, loads, "pysat_loads_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pysat_load_duration_seconds",
		Help:    "Instrument load latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"platform", "name"})
	durations, err = registerHistogramVec(reg, durations, "pysat_load_duration_seconds")
	if err != nil {
		return nil, err
	}

	indexed := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pysat_files_indexed",
		Help: "Current number of files in an instrument's file index.",
	}, []string{"platform", "name"})
	indexed, err = registerGaugeVec(reg, indexed, "pysat_files_indexed")
	if err != nil {
		return nil, err
	}

	downloads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pysat_downloads_total",
		Help: "Total number of download requests, labeled by platform, name, and outcome.",
	}, []string{"platform", "name", "status"})
	downloads, err = registerCounterVec(reg, downloads, "pysat_downloads_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:     gatherer,
		LoadsTotal:   loads,
		LoadDuration: durations,
		FilesIndexed: indexed,
		Downloads:    downloads,
	}, nil
}

// ObserveLoad records one load attempt and its duration.
func (c *Collector) ObserveLoad(platform, name, status string, seconds float64) {
	if c == nil {
		return
	}
	if c.LoadsTotal != nil {
		c.LoadsTotal.WithLabelValues(platform, name, status).Inc()
	}
	if c.LoadDuration != nil {
		c.LoadDuration.WithLabelValues(platform, name).Observe(seconds)
	}
}

// SetFilesIndexed publishes the current file index size for an instrument.
func (c *Collector) SetFilesIndexed(platform, name string, count int) {
	if c == nil || c.FilesIndexed == nil {
		return
	}
	c.FilesIndexed.WithLabelValues(platform, name).Set(float64(count))
}

// ObserveDownload records one download attempt.
func (c *Collector) ObserveDownload(platform, name, status string) {
	if c == nil || c.Downloads == nil {
		return
	}
	c.Downloads.WithLabelValues(platform, name, status).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
