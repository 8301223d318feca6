package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"go-product-etl/internal/model"
	"go-product-etl/internal/pipeline"
	"go-product-etl/internal/store"
	"go-product-etl/pkg/logger"
	"go-product-etl/pkg/utils"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config file")
	once := flag.Bool("once", false, "run the pipeline once and exit")
	flag.Parse()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logSink := os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		logSink = f
	}
	lg := logger.New(logSink)

	if err := store.InitDB(cfg.DBPath); err != nil {
		lg.Errorf("Failed to open run history store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	runner := pipeline.NewRunner(pipeline.New(cfg, lg), cfg, lg)
	timeout := utils.ParseDuration(cfg.RunTimeout)

	if *once {
		report := runOnce(runner, timeout, "manual")
		if report.Status != pipeline.RunCompleted {
			os.Exit(1)
		}
		return
	}

	sched, err := pipeline.NewSchedule(cfg.Schedule)
	if err != nil {
		lg.Errorf("Invalid schedule: %v", err)
		os.Exit(1)
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, lg)
	}

	lg.Infof("📅 Scheduler started: interval %v, start date %s, catchup %v",
		sched.Interval, sched.StartDate.Format("2006-01-02"), sched.Catchup)

	last, err := store.LastRunAt()
	if err != nil {
		lg.Warnf("Could not read last run time: %v", err)
	}
	for _, due := range sched.DueRuns(last, time.Now()) {
		lg.Infof("⏰ Firing run for missed interval %s", due.Format(time.RFC3339))
		runOnce(runner, timeout, "scheduled")
	}

	for {
		next := sched.NextRun(time.Now())
		lg.Infof("⏰ Next run at %s", next.Format(time.RFC3339))
		time.Sleep(time.Until(next))
		runOnce(runner, timeout, "scheduled")
	}
}

func runOnce(runner *pipeline.Runner, timeout time.Duration, trigger string) pipeline.RunReport {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return runner.Run(ctx, uuid.New().String(), trigger)
}

func serveMetrics(addr string, lg *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	lg.Infof("📊 Metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		lg.Errorf("Metrics server stopped: %v", err)
	}
}
