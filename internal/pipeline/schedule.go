package pipeline

import (
	"fmt"
	"time"

	"go-product-etl/internal/model"
)

// Schedule decides when pipeline runs fire: a fixed interval aligned to a
// start-date floor, with optional catchup for missed boundaries.
type Schedule struct {
	Interval  time.Duration
	StartDate time.Time
	Catchup   bool
}

// ParseInterval resolves "@daily", "@hourly" or a Go duration string. An
// empty string means daily.
func ParseInterval(s string) (time.Duration, error) {
	switch s {
	case "@daily", "":
		return 24 * time.Hour, nil
	case "@hourly":
		return time.Hour, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid schedule interval %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("schedule interval must be positive, got %v", d)
	}
	return d, nil
}

// NewSchedule builds a Schedule from configuration. An empty start date
// anchors the schedule at the Unix epoch.
func NewSchedule(cfg model.ScheduleConfig) (Schedule, error) {
	interval, err := ParseInterval(cfg.Interval)
	if err != nil {
		return Schedule{}, err
	}

	start := time.Unix(0, 0)
	if cfg.StartDate != "" {
		start, err = time.ParseInLocation("2006-01-02", cfg.StartDate, time.Local)
		if err != nil {
			return Schedule{}, fmt.Errorf("invalid schedule start date %q: %w", cfg.StartDate, err)
		}
	}
	return Schedule{Interval: interval, StartDate: start, Catchup: cfg.Catchup}, nil
}

// origin is the boundary anchor. A zero StartDate falls back to the Unix
// epoch; subtracting the zero time would saturate the duration and wreck
// the interval arithmetic.
func (s Schedule) origin() time.Time {
	if s.StartDate.IsZero() {
		return time.Unix(0, 0)
	}
	return s.StartDate
}

// NextRun returns the first boundary strictly after t. Boundaries sit at
// the start date plus whole intervals; nothing fires before the start date.
func (s Schedule) NextRun(t time.Time) time.Time {
	start := s.origin()
	if t.Before(start) {
		return start
	}
	n := t.Sub(start) / s.Interval
	return start.Add((n + 1) * s.Interval)
}

// DueRuns returns the boundaries that should fire given the last recorded
// run time and now. With catchup off only the latest elapsed boundary is
// due; with catchup on every missed boundary fires, oldest first.
func (s Schedule) DueRuns(last, now time.Time) []time.Time {
	start := s.origin()
	if now.Before(start) {
		return nil
	}

	if !s.Catchup {
		latest := start.Add((now.Sub(start) / s.Interval) * s.Interval)
		if latest.After(last) {
			return []time.Time{latest}
		}
		return nil
	}

	var due []time.Time
	for t := s.NextRun(last); !t.After(now); t = t.Add(s.Interval) {
		due = append(due, t)
	}
	return due
}
