package pipeline

import (
	"context"

	"go-product-etl/internal/model"
	"go-product-etl/pkg/logger"
)

// Transformer applies the cleaning policy to the raw input and writes the
// cleaned artifact, clobbering the previous run's output.
type Transformer struct {
	RawPath     string
	CleanedPath string
	Policy      model.MissingInputPolicy
	Log         *logger.Logger
}

// NewTransformer builds a transformer from the raw path to the cleaned path.
func NewTransformer(rawPath, cleanedPath string, policy model.MissingInputPolicy, log *logger.Logger) *Transformer {
	return &Transformer{RawPath: rawPath, CleanedPath: cleanedPath, Policy: policy, Log: log}
}

// Run cleans the raw record set and persists it. The cleaning order is
// fixed: drop duplicate rows, fill numeric blanks with 0, fill text blanks
// with "Unknown", normalize column names.
func (t *Transformer) Run(ctx context.Context) StageResult {
	res := newStageResult(StageTransform)

	if err := ctx.Err(); err != nil {
		return res.fail(err)
	}

	rs, err := ReadRecordSet(t.RawPath)
	if err != nil {
		if IsMissingInput(err) {
			t.Log.Errorf("Raw file not found at %s. Cannot transform.", t.RawPath)
			if t.Policy == model.MissingInputFail {
				return res.fail(err)
			}
			return res.skip(err)
		}
		t.Log.Errorf("Failed to read raw products: %v", err)
		return res.fail(err)
	}

	originalCount := rs.Len()
	rs.DropDuplicates()
	rs.FillMissing()
	rs.NormalizeColumnNames()
	t.Log.Infof("Transformed data: %d -> %d rows after cleaning", originalCount, rs.Len())

	if err := rs.WriteFile(t.CleanedPath); err != nil {
		t.Log.Errorf("Failed to write transformed data: %v", err)
		return res.fail(err)
	}

	t.Log.Infof("Transformed data saved to %s", t.CleanedPath)
	return res.ok(rs.Len())
}
