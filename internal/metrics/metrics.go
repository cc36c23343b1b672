// Package metrics records pipeline activity as Prometheus metrics.
//
// A Recorder owns a private registry and is fed by the event bus; nothing
// in the engine or pipeline calls it directly. Since teamforge is a
// short-lived CLI the metrics are exported in the node_exporter textfile
// format rather than served over HTTP.
package metrics

import (
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/Iron-Ham/teamforge/internal/event"
)

const namespace = "teamforge"

// Recorder collects metrics from pipeline events.
type Recorder struct {
	reg  *prometheus.Registry
	mu   sync.Mutex
	subs []string
	bus  *event.Bus

	runs          prometheus.Counter
	iterations    *prometheus.CounterVec
	moves         *prometheus.CounterVec
	swaps         *prometheus.CounterVec
	converged     *prometheus.GaugeVec
	stageDuration *prometheus.HistogramVec
	pinFailures   prometheus.Counter
	spread        prometheus.Gauge
	leaderless    prometheus.Gauge
	missing       prometheus.Gauge
	runDuration   prometheus.Gauge
	inputChanges  prometheus.Counter
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{reg: prometheus.NewRegistry()}

	r.runs = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Completed pipeline runs.",
	})
	r.iterations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stage",
		Name:      "iterations_total",
		Help:      "Balancing iterations by stage.",
	}, []string{"stage"})
	r.moves = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stage",
		Name:      "moves_total",
		Help:      "Clusters moved between teams by stage.",
	}, []string{"stage"})
	r.swaps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stage",
		Name:      "swaps_total",
		Help:      "Cluster swaps by stage.",
	}, []string{"stage"})
	r.converged = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "stage",
		Name:      "converged",
		Help:      "1 if the stage reached its goal in the last run, else 0.",
	}, []string{"stage"})
	r.stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "stage",
		Name:      "duration_seconds",
		Help:      "Stage wall time in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs .. ~1.6s
	}, []string{"stage"})
	r.pinFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pin_failures_total",
		Help:      "Configured pins that could not be applied.",
	})
	r.spread = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "partition",
		Name:      "size_spread",
		Help:      "Largest minus smallest team size after the last run.",
	})
	r.leaderless = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "partition",
		Name:      "leaderless_teams",
		Help:      "Teams without a potential leader after the last run.",
	})
	r.missing = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "partition",
		Name:      "teams_missing_languages",
		Help:      "Teams with a language nobody in the team can translate.",
	})
	r.runDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_duration_seconds",
		Help:      "Wall time of the last run in seconds.",
	})
	r.inputChanges = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "watch",
		Name:      "input_changes_total",
		Help:      "Input file changes that triggered a re-run.",
	})

	r.reg.MustRegister(
		r.runs, r.iterations, r.moves, r.swaps, r.converged, r.stageDuration,
		r.pinFailures, r.spread, r.leaderless, r.missing, r.runDuration, r.inputChanges,
	)
	return r
}

// Registry exposes the private registry, for tests and custom exporters.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// Attach subscribes the recorder to every event on bus. Call Detach to
// unsubscribe.
func (r *Recorder) Attach(bus *event.Bus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bus = bus
	r.subs = append(r.subs, bus.SubscribeAll(r.Observe))
}

// Detach removes the recorder's subscriptions.
func (r *Recorder) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bus == nil {
		return
	}
	for _, id := range r.subs {
		r.bus.Unsubscribe(id)
	}
	r.subs = nil
	r.bus = nil
}

// Observe records one event. Unknown event types are ignored.
func (r *Recorder) Observe(e event.Event) {
	switch ev := e.(type) {
	case event.StageCompletedEvent:
		r.iterations.WithLabelValues(ev.Stage).Add(float64(ev.Iterations))
		r.moves.WithLabelValues(ev.Stage).Add(float64(ev.Moves))
		r.swaps.WithLabelValues(ev.Stage).Add(float64(ev.Swaps))
		r.converged.WithLabelValues(ev.Stage).Set(boolGauge(ev.Converged))
		r.stageDuration.WithLabelValues(ev.Stage).Observe(ev.Duration.Seconds())
	case event.PinFailedEvent:
		r.pinFailures.Inc()
	case event.RunCompletedEvent:
		r.runs.Inc()
		r.spread.Set(float64(ev.Spread))
		r.leaderless.Set(float64(ev.LeaderlessTeams))
		r.missing.Set(float64(ev.TeamsMissingLanguages))
		r.runDuration.Set(ev.Duration.Seconds())
	case event.InputChangedEvent:
		r.inputChanges.Inc()
	}
}

// WriteTextfile atomically writes every metric to path in the textfile
// collector format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// WriteText writes every metric to w in the Prometheus text format.
func (r *Recorder) WriteText(w io.Writer) error {
	families, err := r.reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
