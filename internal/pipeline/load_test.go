package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"go-product-etl/internal/model"
	"go-product-etl/pkg/logger"

	"github.com/stretchr/testify/require"
)

type captureSink struct {
	rows int
	err  error
}

func (s *captureSink) Load(ctx context.Context, rs *RecordSet) error {
	if s.err != nil {
		return s.err
	}
	s.rows = rs.Len()
	return nil
}

func TestLoaderReportsRows(t *testing.T) {
	cleaned := filepath.Join(t.TempDir(), "transformed_products.csv")
	writeCSV(t, cleaned, "name,price\nWidget,9.5\nGadget,0\n")

	var buf bytes.Buffer
	res := NewLoader(cleaned, model.MissingInputSkip, logger.New(&buf)).Run(context.Background())
	require.Equal(t, StageSuccess, res.Outcome)
	require.Equal(t, 2, res.Rows)
	require.Contains(t, buf.String(), "Loaded 2 rows from transformed CSV (ready for DB or analytics)")
}

func TestLoaderMissingCleanedSkips(t *testing.T) {
	cleaned := filepath.Join(t.TempDir(), "transformed_products.csv")

	var buf bytes.Buffer
	res := NewLoader(cleaned, model.MissingInputSkip, logger.New(&buf)).Run(context.Background())
	require.Equal(t, StageSkippedNoInput, res.Outcome)
	require.True(t, IsMissingInput(res.Err))
	require.Contains(t, buf.String(), "- ERROR - Transformed file not found")
}

func TestLoaderMissingCleanedFailPolicy(t *testing.T) {
	cleaned := filepath.Join(t.TempDir(), "transformed_products.csv")

	res := NewLoader(cleaned, model.MissingInputFail, logger.New(io.Discard)).Run(context.Background())
	require.Equal(t, StageFailed, res.Outcome)
	require.True(t, IsMissingInput(res.Err))
}

func TestLoaderHandsRecordsToSink(t *testing.T) {
	cleaned := filepath.Join(t.TempDir(), "transformed_products.csv")
	writeCSV(t, cleaned, "name,price\nWidget,9.5\nGadget,0\n")

	sink := &captureSink{}
	ld := NewLoader(cleaned, model.MissingInputSkip, logger.New(io.Discard))
	ld.Sink = sink

	res := ld.Run(context.Background())
	require.Equal(t, StageSuccess, res.Outcome)
	require.Equal(t, 2, sink.rows)
}

func TestLoaderSinkErrorFailsStage(t *testing.T) {
	cleaned := filepath.Join(t.TempDir(), "transformed_products.csv")
	writeCSV(t, cleaned, "name,price\nWidget,9.5\n")

	ld := NewLoader(cleaned, model.MissingInputSkip, logger.New(io.Discard))
	ld.Sink = &captureSink{err: errors.New("warehouse down")}

	res := ld.Run(context.Background())
	require.Equal(t, StageFailed, res.Outcome)
	require.ErrorContains(t, res.Err, "warehouse down")
}
