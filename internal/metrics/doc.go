// Package metrics records Prometheus metrics for leapprice commands.
//
// A Collector owns its own registry. It is attached to the feature pipeline
// as a StageObserver and is flushed to a node_exporter textfile at the end
// of a command when a metrics path is configured:
//
//	leapprice_stage_rows_in_total{stage="nulls_pre"} 1460
//	leapprice_stage_rows_dropped_total{stage="nulls_pre"} 8
//	leapprice_runs_total{kind="train",status="completed"} 1
package metrics
