// Package metrics collects per-run metrics and writes them in the Prometheus
// text format for the node_exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vk/exportmap/internal/job"
)

// Run outcomes.
const (
	OutcomeSuccess      = "success"
	OutcomeExportFailed = "export_failed"
	OutcomeError        = "error"
	OutcomePanic        = "panic"
)

// Recorder holds the metrics of one process on its own registry.
type Recorder struct {
	reg *prometheus.Registry

	runsTotal        *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec
	labelsNormalized prometheus.Gauge
	mapFrameUpdated  prometheus.Gauge
	lastRunSuccess   prometheus.Gauge
	lastRunTimestamp prometheus.Gauge
}

// New returns a recorder with all metrics registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		reg: reg,
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "export_map",
			Name:      "runs_total",
			Help:      "Export runs by format and outcome",
		}, []string{"format", "outcome"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "export_map",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		labelsNormalized: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "export_map",
			Name:      "labels_normalized",
			Help:      "Labels whose font was normalized in the last run",
		}),
		mapFrameUpdated: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "export_map",
			Name:      "map_frame_updated",
			Help:      "1 if the last run moved a map frame to the requested extent",
		}),
		lastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "export_map",
			Name:      "last_run_success",
			Help:      "1 if the last run exported successfully",
		}),
		lastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "export_map",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// Observe records a finished run. report may be nil when the pipeline never
// started.
func (r *Recorder) Observe(format job.Format, outcome string, report *job.Report, finished time.Time) {
	r.runsTotal.WithLabelValues(string(format), outcome).Inc()
	r.lastRunTimestamp.Set(float64(finished.Unix()))
	if outcome == OutcomeSuccess {
		r.lastRunSuccess.Set(1)
	} else {
		r.lastRunSuccess.Set(0)
	}
	if report == nil {
		return
	}

	for stage, d := range report.Durations {
		r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
	r.labelsNormalized.Set(float64(report.LabelsNormalized))
	if report.MapFrameUpdated {
		r.mapFrameUpdated.Set(1)
	} else {
		r.mapFrameUpdated.Set(0)
	}
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
