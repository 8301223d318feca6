package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"go-product-etl/internal/model"
	"go-product-etl/internal/store"
	"go-product-etl/pkg/logger"
)

// StageOutcome is the tri-state result of one stage execution.
type StageOutcome string

const (
	StageSuccess        StageOutcome = "success"
	StageSkippedNoInput StageOutcome = "skipped_no_input"
	StageFailed         StageOutcome = "failed"
)

// Stage names, carried as task ids in the run history.
const (
	StageArchive   = "archive_raw_file"
	StageExtract   = "extract_products"
	StageTransform = "transform_products"
	StageLoad      = "load_products"
)

// StageResult reports one stage execution.
type StageResult struct {
	Stage      string       `json:"stage"`
	Outcome    StageOutcome `json:"outcome"`
	Rows       int          `json:"rows"`
	Attempts   int          `json:"attempts"`
	Err        error        `json:"-"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
}

func newStageResult(stage string) StageResult {
	return StageResult{Stage: stage, StartedAt: time.Now()}
}

func (r StageResult) ok(rows int) StageResult {
	r.Outcome = StageSuccess
	r.Rows = rows
	r.FinishedAt = time.Now()
	return r
}

func (r StageResult) skip(err error) StageResult {
	r.Outcome = StageSkippedNoInput
	r.Err = err
	r.FinishedAt = time.Now()
	return r
}

func (r StageResult) fail(err error) StageResult {
	r.Outcome = StageFailed
	r.Err = err
	r.FinishedAt = time.Now()
	return r
}

// Task is one named node of the pipeline, executed in list order.
type Task struct {
	Name string
	Run  func(ctx context.Context) StageResult
}

// RunReport is the outcome of one end-to-end pipeline run.
type RunReport struct {
	RunID      string        `json:"runId"`
	Trigger    string        `json:"trigger"`
	Status     string        `json:"status"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Stages     []StageResult `json:"stages"`
}

// Run terminal statuses.
const (
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Pipeline owns the four stages wired to one configuration.
type Pipeline struct {
	Archiver    *Archiver
	Extractor   *Extractor
	Transformer *Transformer
	Loader      *Loader
}

// New builds the pipeline stages from cfg, all logging to log.
func New(cfg model.Config, log *logger.Logger) *Pipeline {
	snapshots := NewSnapshotStore(cfg.ArchiveDir, cfg.ArchivePrefix)
	return &Pipeline{
		Archiver:    NewArchiver(cfg.RawPath, snapshots, log),
		Extractor:   NewExtractor(cfg.RawPath, cfg.MissingInput, log),
		Transformer: NewTransformer(cfg.RawPath, cfg.CleanedPath, cfg.MissingInput, log),
		Loader:      NewLoader(cfg.CleanedPath, cfg.MissingInput, log),
	}
}

// Tasks returns the stages in dependency order: archive, extract,
// transform, load.
func (p *Pipeline) Tasks() []Task {
	return []Task{
		{Name: StageArchive, Run: p.Archiver.Run},
		{Name: StageExtract, Run: p.Extractor.Run},
		{Name: StageTransform, Run: p.Transformer.Run},
		{Name: StageLoad, Run: p.Loader.Run},
	}
}

// ------------------- Pipeline Runner -------------------

// Runner executes a task list sequentially with a per-stage retry budget.
type Runner struct {
	Tasks []Task
	Retry model.RetryConfig
	Log   *logger.Logger
}

// NewRunner wires a runner over p's tasks with cfg's retry budget.
func NewRunner(p *Pipeline, cfg model.Config, log *logger.Logger) *Runner {
	return &Runner{Tasks: p.Tasks(), Retry: cfg.Retry, Log: log}
}

// Run executes all tasks for one pipeline run. A skipped stage never
// consumes retries. A stage still failing after its budget marks the run
// failed and the remaining stages do not execute.
func (r *Runner) Run(ctx context.Context, runID, trigger string) RunReport {
	report := RunReport{RunID: runID, Trigger: trigger, StartedAt: time.Now()}
	r.Log.Infof("🚀 Starting pipeline run %s (%s)", runID, trigger)
	store.SaveRun(runID, trigger)

	failed := false
	for _, task := range r.Tasks {
		if failed {
			break
		}
		res := r.runTask(ctx, runID, task)
		report.Stages = append(report.Stages, res)
		if res.Outcome == StageFailed {
			failed = true
		}
	}

	report.FinishedAt = time.Now()
	elapsed := report.FinishedAt.Sub(report.StartedAt)
	if failed {
		report.Status = RunFailed
		r.Log.Errorf("❌ Pipeline run %s failed after %v", runID, elapsed)
	} else {
		report.Status = RunCompleted
		r.Log.Infof("🏁 Pipeline run %s completed in %v", runID, elapsed)
	}

	store.FinishRun(runID, report.Status)
	runsTotal.WithLabelValues(report.Status).Inc()
	lastRunUnix.Set(float64(report.FinishedAt.Unix()))
	return report
}

// runTask applies the retry budget around one task.
func (r *Runner) runTask(ctx context.Context, runID string, task Task) StageResult {
	store.SaveRunLog(runID, task.Name, "info", "stage started")

	attempts := r.Retry.MaxRetries + 1
	var res StageResult
	for attempt := 1; attempt <= attempts; attempt++ {
		res = task.Run(ctx)
		res.Attempts = attempt
		if res.Outcome != StageFailed || attempt == attempts {
			break
		}

		delay := r.backoff(attempt)
		r.Log.Warnf("🔄 Stage %s failed (attempt %d/%d), retrying in %v: %v",
			task.Name, attempt, attempts, delay, res.Err)
		select {
		case <-ctx.Done():
			attempt = attempts // run context gone, stop retrying
		case <-time.After(delay):
		}
	}

	r.record(runID, res)
	return res
}

// record persists one stage result and updates the stage metrics.
func (r *Runner) record(runID string, res StageResult) {
	store.SaveStageResult(runID, res.Stage, string(res.Outcome), res.Rows, res.Attempts, res.Err, res.StartedAt, res.FinishedAt)

	stageOutcomes.WithLabelValues(res.Stage, string(res.Outcome)).Inc()
	stageRows.WithLabelValues(res.Stage).Add(float64(res.Rows))

	switch res.Outcome {
	case StageSuccess:
		store.SaveRunLog(runID, res.Stage, "info", fmt.Sprintf("stage succeeded: %d rows", res.Rows))
	case StageSkippedNoInput:
		store.SaveRunLog(runID, res.Stage, "warning", "stage skipped: no input")
	case StageFailed:
		msg := "stage failed"
		if res.Err != nil {
			msg = "stage failed: " + res.Err.Error()
		}
		store.SaveRunLog(runID, res.Stage, "error", msg)
	}
}

// backoff computes the delay before the next attempt.
func (r *Runner) backoff(attempt int) time.Duration {
	cfg := r.Retry
	if cfg.InitialDelay <= 0 {
		return 0
	}
	factor := cfg.BackoffFactor
	if factor < 1 {
		factor = 1
	}
	delay := time.Duration(float64(cfg.InitialDelay) * math.Pow(factor, float64(attempt-1)))
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}
