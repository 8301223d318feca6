package pipeline

import (
	"context"

	"go-product-etl/internal/model"
	"go-product-etl/pkg/logger"
)

// Extractor reads the raw input and reports its row count. The record set
// it returns is informational; downstream stages re-read from disk.
type Extractor struct {
	RawPath string
	Policy  model.MissingInputPolicy
	Log     *logger.Logger
}

// NewExtractor builds an extractor over the raw path.
func NewExtractor(rawPath string, policy model.MissingInputPolicy, log *logger.Logger) *Extractor {
	return &Extractor{RawPath: rawPath, Policy: policy, Log: log}
}

// Extract reads the raw record set. A missing raw file yields an empty,
// non-nil record set with a skipped outcome, or a failed outcome under the
// fail policy. Malformed input always fails.
func (e *Extractor) Extract(ctx context.Context) (*RecordSet, StageResult) {
	res := newStageResult(StageExtract)
	empty := &RecordSet{}

	if err := ctx.Err(); err != nil {
		return empty, res.fail(err)
	}

	rs, err := ReadRecordSet(e.RawPath)
	if err != nil {
		if IsMissingInput(err) {
			e.Log.Errorf("Raw file not found at %s", e.RawPath)
			if e.Policy == model.MissingInputFail {
				return empty, res.fail(err)
			}
			return empty, res.skip(err)
		}
		e.Log.Errorf("Failed to extract raw products: %v", err)
		return empty, res.fail(err)
	}

	e.Log.Infof("Extracted %d rows from %s", rs.Len(), e.RawPath)
	return rs, res.ok(rs.Len())
}

// Run adapts Extract to the runner's task contract.
func (e *Extractor) Run(ctx context.Context) StageResult {
	_, res := e.Extract(ctx)
	return res
}
