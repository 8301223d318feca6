package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-product-etl/internal/model"
	"go-product-etl/internal/pipeline"
	"go-product-etl/internal/store"
	"go-product-etl/pkg/logger"
	"go-product-etl/pkg/utils"

	"github.com/google/uuid"
)

var (
	cfg model.Config
	lg  *logger.Logger
)

// Init wires the handlers to one pipeline configuration and log sink.
// Call it once before registering routes.
func Init(c model.Config, l *logger.Logger) {
	cfg = c
	lg = l
}

// CreateRun triggers a pipeline run
// @Summary Trigger a pipeline run
// @Description Starts a manual run over the configured product feed and returns immediately
// @Tags runs
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Run accepted"
// @Router /runs [post]
func CreateRun(w http.ResponseWriter, r *http.Request) {
	runID := uuid.New().String()

	p := pipeline.New(cfg, lg)
	runner := pipeline.NewRunner(p, cfg, lg)

	// Run asynchronously so the request returns right away
	ctx, cancel := context.WithTimeout(context.Background(), utils.ParseDuration(cfg.RunTimeout))
	go func() {
		defer cancel()
		runner.Run(ctx, runID, "manual")
	}()

	response := map[string]interface{}{
		"message":   "Pipeline run started",
		"runID":     runID,
		"status":    "running",
		"createdAt": time.Now().UTC(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ListRuns returns the run history
// @Summary List pipeline runs
// @Description Returns all recorded runs, newest first
// @Tags runs
// @Produce json
// @Success 200 {array} map[string]interface{} "Run history"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [get]
func ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := store.ListRuns()
	if err != nil {
		lg.Errorf("Failed to list runs: %v", err)
		http.Error(w, "Failed to fetch runs", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []map[string]interface{}{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// GetRun returns one run with its stage results
// @Summary Get a pipeline run
// @Description Returns a run by id, including its stage results
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run details"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /runs/{id} [get]
func GetRun(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	prefix := "/api/v1/runs/"
	if !strings.HasPrefix(path, prefix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	runID := path[len(prefix):]
	if runID == "" {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	run, err := store.GetRun(runID)
	if err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	if stages, err := store.GetStageResults(runID); err == nil {
		run["stages"] = stages
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

// GetRunStages returns the stage results for a run
// GET /api/v1/runs/{id}/stages
func GetRunStages(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	prefix := "/api/v1/runs/"
	suffix := "/stages"
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	runID := path[len(prefix) : len(path)-len(suffix)]
	if runID == "" {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	stages, err := store.GetStageResults(runID)
	if err != nil {
		lg.Errorf("Failed to fetch stage results: %v", err)
		http.Error(w, "Failed to fetch stage results", http.StatusInternalServerError)
		return
	}
	if stages == nil {
		stages = []map[string]interface{}{}
	}

	response := map[string]interface{}{
		"runID":  runID,
		"stages": stages,
		"count":  len(stages),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetRunLogs returns the runner log entries for a run
// @Summary Get run logs
// @Description Returns up to limit log entries for a run, oldest first
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Param limit query int false "Max entries to return (default 100)"
// @Success 200 {object} map[string]interface{} "Run logs"
// @Router /runs/{id}/logs [get]
func GetRunLogs(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	prefix := "/api/v1/runs/"
	suffix := "/logs"
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	runID := path[len(prefix) : len(path)-len(suffix)]
	if runID == "" {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	logs, err := store.GetRunLogs(runID, limit)
	if err != nil {
		lg.Errorf("Failed to fetch run logs: %v", err)
		http.Error(w, "Failed to fetch run logs", http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []map[string]interface{}{}
	}

	response := map[string]interface{}{
		"runID": runID,
		"logs":  logs,
		"count": len(logs),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ListSnapshots returns the archived raw files
// @Summary List raw snapshots
// @Description Returns every archived raw file, oldest first
// @Tags snapshots
// @Produce json
// @Success 200 {object} map[string]interface{} "Snapshot list"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /snapshots [get]
func ListSnapshots(w http.ResponseWriter, r *http.Request) {
	snapshots, err := pipeline.NewSnapshotStore(cfg.ArchiveDir, cfg.ArchivePrefix).List()
	if err != nil {
		lg.Errorf("Failed to list snapshots: %v", err)
		http.Error(w, "Failed to list snapshots", http.StatusInternalServerError)
		return
	}
	if snapshots == nil {
		snapshots = []pipeline.Snapshot{}
	}

	response := map[string]interface{}{
		"snapshots": snapshots,
		"count":     len(snapshots),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
