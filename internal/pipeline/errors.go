package pipeline

import (
	"errors"
	"fmt"
)

// MissingInputError reports an input artifact that does not exist yet. It is
// the soft member of the taxonomy: under the skip policy the stage absorbs
// it as a skipped outcome instead of failing the run.
type MissingInputError struct {
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing input file %s", e.Path)
}

// DataShapeError reports malformed tabular input: a missing header, ragged
// rows, or an empty file. Always a hard stage failure.
type DataShapeError struct {
	Path string
	Err  error
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("malformed tabular input %s: %v", e.Path, e.Err)
}

func (e *DataShapeError) Unwrap() error {
	return e.Err
}

// IsMissingInput reports whether err is a MissingInputError.
func IsMissingInput(err error) bool {
	var m *MissingInputError
	return errors.As(err, &m)
}

// IsDataShape reports whether err is a DataShapeError.
func IsDataShape(err error) bool {
	var d *DataShapeError
	return errors.As(err, &d)
}
