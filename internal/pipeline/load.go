package pipeline

import (
	"context"
	"fmt"

	"go-product-etl/internal/model"
	"go-product-etl/pkg/logger"
)

// Sink is the substitution point for a future persistence target such as a
// warehouse table. The stock pipeline ships without one.
type Sink interface {
	Load(ctx context.Context, rs *RecordSet) error
}

// Loader reads the cleaned artifact back and reports it ready for
// consumption. With a Sink attached it hands the record set over as well.
type Loader struct {
	CleanedPath string
	Policy      model.MissingInputPolicy
	Sink        Sink
	Log         *logger.Logger
}

// NewLoader builds a loader over the cleaned path. Attach a Sink on the
// returned struct to persist somewhere real.
func NewLoader(cleanedPath string, policy model.MissingInputPolicy, log *logger.Logger) *Loader {
	return &Loader{CleanedPath: cleanedPath, Policy: policy, Log: log}
}

// Run reads the cleaned artifact and reports its row count.
func (l *Loader) Run(ctx context.Context) StageResult {
	res := newStageResult(StageLoad)

	if err := ctx.Err(); err != nil {
		return res.fail(err)
	}

	rs, err := ReadRecordSet(l.CleanedPath)
	if err != nil {
		if IsMissingInput(err) {
			l.Log.Errorf("Transformed file not found at %s. Cannot load.", l.CleanedPath)
			if l.Policy == model.MissingInputFail {
				return res.fail(err)
			}
			return res.skip(err)
		}
		l.Log.Errorf("Failed to read transformed data: %v", err)
		return res.fail(err)
	}

	if l.Sink != nil {
		if err := l.Sink.Load(ctx, rs); err != nil {
			l.Log.Errorf("Sink load failed: %v", err)
			return res.fail(fmt.Errorf("sink load failed: %w", err))
		}
	}

	l.Log.Infof("Loaded %d rows from transformed CSV (ready for DB or analytics)", rs.Len())
	return res.ok(rs.Len())
}
