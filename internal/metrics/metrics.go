// Package metrics records per-run pipeline counters on a private Prometheus
// registry and writes them in the node-exporter textfile format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dawgbowl"

// Recorder holds the run metrics.
type Recorder struct {
	registry *prometheus.Registry

	batchesLoaded   prometheus.Counter
	batchesSkipped  prometheus.Counter
	entriesEnriched prometheus.Counter
	unknownPicks    prometheus.Counter
	eliteEntries    *prometheus.CounterVec
	weeks           prometheus.Gauge
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)
	return &Recorder{
		registry: reg,
		batchesLoaded: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_loaded_total",
			Help:      "Weekly contest files parsed successfully.",
		}),
		batchesSkipped: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_skipped_total",
			Help:      "Weekly contest files skipped because they failed to parse.",
		}),
		entriesEnriched: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_enriched_total",
			Help:      "Entries that went through position, role and tier enrichment.",
		}),
		unknownPicks: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_picks_total",
			Help:      "Picks whose player had no position mapping.",
		}),
		eliteEntries: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "elite_entries_total",
			Help:      "Entries tagged per elite tier.",
		}, []string{"tier"}),
		weeks: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "weeks",
			Help:      "Distinct contest weeks loaded.",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) BatchesLoaded(n int)   { r.batchesLoaded.Add(float64(n)) }
func (r *Recorder) BatchesSkipped(n int)  { r.batchesSkipped.Add(float64(n)) }
func (r *Recorder) EntriesEnriched(n int) { r.entriesEnriched.Add(float64(n)) }
func (r *Recorder) UnknownPicks(n int)    { r.unknownPicks.Add(float64(n)) }
func (r *Recorder) Weeks(n int)           { r.weeks.Set(float64(n)) }

// EliteEntries adds n to the counter for the tier label.
func (r *Recorder) EliteEntries(tier string, n int) {
	r.eliteEntries.WithLabelValues(tier).Add(float64(n))
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
