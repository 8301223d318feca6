package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_runs_total",
		Help: "Pipeline runs by terminal status.",
	}, []string{"status"})

	stageOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_stage_outcomes_total",
		Help: "Stage executions by stage and outcome.",
	}, []string{"stage", "outcome"})

	stageRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_stage_rows_total",
		Help: "Rows reported by each stage.",
	}, []string{"stage"})

	lastRunUnix = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "etl_last_run_timestamp_seconds",
		Help: "Unix time the most recent run finished.",
	})
)
