package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/leapstack-labs/leapprice/internal/features"
)

// Namespace prefixes every metric name.
const Namespace = "leapprice"

var _ features.StageObserver = (*Collector)(nil)

// Collector holds the command metrics.
type Collector struct {
	registry *prometheus.Registry

	stageRowsIn      *prometheus.CounterVec
	stageRowsOut     *prometheus.CounterVec
	stageRowsDropped *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec

	runsTotal   *prometheus.CounterVec
	predictions prometheus.Counter
	alignFilled prometheus.Counter

	cvMAE          prometheus.Gauge
	testMAE        prometheus.Gauge
	gridCandidates prometheus.Gauge
}

// NewCollector creates a collector registered on registry. If registry is
// nil a fresh one is created.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		stageRowsIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "stage_rows_in_total",
			Help:      "Rows entering each pipeline stage",
		}, []string{"stage"}),
		stageRowsOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "stage_rows_out_total",
			Help:      "Rows leaving each pipeline stage",
		}, []string{"stage"}),
		stageRowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "stage_rows_dropped_total",
			Help:      "Rows removed by each pipeline stage",
		}, []string{"stage"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to ~26s
		}, []string{"stage"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_total",
			Help:      "Command runs by kind and final status",
		}, []string{"kind", "status"}),
		predictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "predictions_total",
			Help:      "Predictions written by infer",
		}),
		alignFilled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "align_filled_columns_total",
			Help:      "Reference columns missing from inference data and filled with zero",
		}),
		cvMAE: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "model_cv_mae",
			Help:      "Mean cross-validated MAE of the selected model (log space)",
		}),
		testMAE: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "model_test_mae",
			Help:      "Hold-out MAE of the trained model in sale price units",
		}),
		gridCandidates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "grid_candidates",
			Help:      "Hyperparameter candidates evaluated by the last grid search",
		}),
	}

	registry.MustRegister(
		c.stageRowsIn,
		c.stageRowsOut,
		c.stageRowsDropped,
		c.stageDuration,
		c.runsTotal,
		c.predictions,
		c.alignFilled,
		c.cvMAE,
		c.testMAE,
		c.gridCandidates,
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveStage records the row counts and duration of a pipeline stage.
func (c *Collector) ObserveStage(stage string, rowsIn, rowsOut int, elapsed time.Duration) {
	c.stageRowsIn.WithLabelValues(stage).Add(float64(rowsIn))
	c.stageRowsOut.WithLabelValues(stage).Add(float64(rowsOut))
	if rowsIn > rowsOut {
		c.stageRowsDropped.WithLabelValues(stage).Add(float64(rowsIn - rowsOut))
	}
	c.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// RecordRun counts a finished command run.
func (c *Collector) RecordRun(kind, status string) {
	c.runsTotal.WithLabelValues(kind, status).Inc()
}

// RecordTraining records the scores of a trained model.
func (c *Collector) RecordTraining(candidates int, cvMAE, testMAE float64) {
	c.gridCandidates.Set(float64(candidates))
	c.cvMAE.Set(cvMAE)
	c.testMAE.Set(testMAE)
}

// RecordInference records the outcome of an infer run.
func (c *Collector) RecordInference(predictions, filledColumns int) {
	c.predictions.Add(float64(predictions))
	c.alignFilled.Add(float64(filledColumns))
}

// WriteTextfile writes all metrics in the Prometheus text format for the
// node_exporter textfile collector. The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
