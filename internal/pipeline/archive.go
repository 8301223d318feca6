package pipeline

import (
	"context"
	"os"

	"go-product-etl/pkg/logger"
)

// Archiver copies the raw input into the snapshot store before the run
// touches anything else.
type Archiver struct {
	RawPath string
	Store   *SnapshotStore
	Log     *logger.Logger
}

// NewArchiver builds an archiver over the raw path and snapshot store.
func NewArchiver(rawPath string, store *SnapshotStore, log *logger.Logger) *Archiver {
	return &Archiver{RawPath: rawPath, Store: store, Log: log}
}

// Run archives the raw file. A missing raw file is a warning and a skipped
// outcome regardless of policy; a failed copy is a hard failure.
func (a *Archiver) Run(ctx context.Context) StageResult {
	res := newStageResult(StageArchive)

	if err := ctx.Err(); err != nil {
		return res.fail(err)
	}

	if _, err := os.Stat(a.RawPath); os.IsNotExist(err) {
		a.Log.Warnf("No raw file to archive at %s", a.RawPath)
		return res.skip(&MissingInputError{Path: a.RawPath})
	}

	path, err := a.Store.Save(a.RawPath)
	if err != nil {
		a.Log.Errorf("Failed to archive raw file: %v", err)
		return res.fail(err)
	}

	a.Log.Infof("Raw file archived at %s", path)
	return res.ok(0)
}
