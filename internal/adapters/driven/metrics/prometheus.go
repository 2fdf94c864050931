// Package metrics records engine activity with Prometheus collectors.
//
// Each Recorder owns its registry, so runs never share counters. A batch
// run exports the registry once it finishes, either as a node-exporter
// textfile or by pushing it to a Pushgateway.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.Metrics = (*Recorder)(nil)

// Recorder is a Prometheus implementation of driven.Metrics.
type Recorder struct {
	reg *prometheus.Registry

	scans       *prometheus.CounterVec
	batches     *prometheus.CounterVec
	rawRows     *prometheus.CounterVec
	rowsWritten *prometheus.CounterVec
	writes      *prometheus.CounterVec
	lastRows    prometheus.Gauge
	lastSuccess prometheus.Gauge

	now func() time.Time
}

// NewRecorder creates a recorder with a fresh registry.
func NewRecorder() (*Recorder, error) {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skycat_scans_total",
			Help: "Group scans started, by source and table.",
		}, []string{"source", "table"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skycat_batches_total",
			Help: "Raw row batches read, by source and table.",
		}, []string{"source", "table"}),
		rawRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skycat_raw_rows_total",
			Help: "Raw rows read inside the spatial bound, by source and table.",
		}, []string{"source", "table"}),
		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skycat_rows_written_total",
			Help: "Output rows written, by catalog.",
		}, []string{"catalog"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skycat_writes_total",
			Help: "Compound writes finished, by status.",
		}, []string{"status"}),
		lastRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skycat_last_write_rows",
			Help: "Rows written by the most recent write.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skycat_last_success_timestamp_seconds",
			Help: "Unix time of the most recent successful write.",
		}),
		now: time.Now,
	}

	for _, c := range []prometheus.Collector{r.scans, r.batches, r.rawRows, r.rowsWritten, r.writes, r.lastRows, r.lastSuccess} {
		if err := r.reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register collector: %w", err)
		}
	}
	return r, nil
}

// Registry returns the recorder's registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// ScanStarted implements driven.Metrics.
func (r *Recorder) ScanStarted(group domain.GroupSignature) {
	r.scans.WithLabelValues(group.Source, group.Table).Inc()
}

// BatchScanned implements driven.Metrics.
func (r *Recorder) BatchScanned(group domain.GroupSignature, rows int) {
	r.batches.WithLabelValues(group.Source, group.Table).Inc()
	r.rawRows.WithLabelValues(group.Source, group.Table).Add(float64(rows))
}

// RowsWritten implements driven.Metrics.
func (r *Recorder) RowsWritten(catalog string, rows int) {
	r.rowsWritten.WithLabelValues(catalog).Add(float64(rows))
}

// WriteFinished implements driven.Metrics.
func (r *Recorder) WriteFinished(rows int, err error) {
	r.lastRows.Set(float64(rows))
	if err != nil {
		r.writes.WithLabelValues("error").Inc()
		return
	}
	r.writes.WithLabelValues("ok").Inc()
	r.lastSuccess.Set(float64(r.now().Unix()))
}

// WriteTextfile writes the registry to path in the text exposition format,
// for the node exporter's textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("metrics: write textfile: %w", err)
	}
	return nil
}

// Push sends the registry to a Pushgateway under job.
func (r *Recorder) Push(ctx context.Context, gatewayURL, job string) error {
	if gatewayURL == "" {
		return fmt.Errorf("%w: pushgateway url is required", domain.ErrInvalidInput)
	}
	if job == "" {
		job = "skycat"
	}
	if err := push.New(gatewayURL, job).Gatherer(r.reg).PushContext(ctx); err != nil {
		return fmt.Errorf("metrics: push: %w", err)
	}
	return nil
}
