package model

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// MissingInputPolicy decides what a stage reports when its input file is
// absent: absorb it as a skipped outcome, or fail the stage.
type MissingInputPolicy string

const (
	MissingInputSkip MissingInputPolicy = "skip"
	MissingInputFail MissingInputPolicy = "fail"
)

// ScheduleConfig defines when pipeline runs fire.
type ScheduleConfig struct {
	Interval  string `json:"interval"`  // "@daily", "@hourly", or a Go duration
	StartDate string `json:"startDate"` // "2006-01-02", floor below which no run fires
	Catchup   bool   `json:"catchup"`   // replay missed intervals on startup
}

// RetryConfig defines the per-stage retry budget and backoff curve.
type RetryConfig struct {
	MaxRetries    int           `json:"maxRetries"`
	InitialDelay  time.Duration `json:"initialDelay"`
	MaxDelay      time.Duration `json:"maxDelay"`
	BackoffFactor float64       `json:"backoffFactor"`
}

// Config carries every path, policy and knob the pipeline needs. Stages
// receive it at construction, never through globals.
type Config struct {
	RawPath       string             `json:"rawPath"`
	CleanedPath   string             `json:"cleanedPath"`
	ArchiveDir    string             `json:"archiveDir"`
	ArchivePrefix string             `json:"archivePrefix"`
	MissingInput  MissingInputPolicy `json:"missingInput"`
	Schedule      ScheduleConfig     `json:"schedule"`
	Retry         RetryConfig        `json:"retry"`
	RunTimeout    string             `json:"runTimeout"`
	DBPath        string             `json:"dbPath"`
	LogFile       string             `json:"logFile,omitempty"`     // empty means stdout
	ListenAddr    string             `json:"listenAddr,omitempty"`  // API server
	MetricsAddr   string             `json:"metricsAddr,omitempty"` // scheduler-side /metrics, empty disables
}

// DefaultConfig returns the stock product-feed configuration.
func DefaultConfig() Config {
	return Config{
		RawPath:       "data/products.csv",
		CleanedPath:   "data/transformed_products.csv",
		ArchiveDir:    "data/archive",
		ArchivePrefix: "products",
		MissingInput:  MissingInputSkip,
		Schedule: ScheduleConfig{
			Interval:  "@daily",
			StartDate: "2025-12-19",
			Catchup:   false,
		},
		Retry: RetryConfig{
			MaxRetries:    1,
			InitialDelay:  1 * time.Second,
			MaxDelay:      30 * time.Second,
			BackoffFactor: 2.0,
		},
		RunTimeout: "5m",
		DBPath:     "etl.db",
		ListenAddr: ":8080",
	}
}

// LoadConfig reads a JSON config file over the defaults. Fields the file
// omits keep their default values. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
