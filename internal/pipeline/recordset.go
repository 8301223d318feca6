package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go-product-etl/pkg/utils"
)

// Record is a single row keyed by column name. Cells are typed (int,
// float64 or string); an absent cell is a missing key.
type Record map[string]interface{}

// RecordSet is an in-memory tabular batch. Columns preserves header order,
// Rows preserves file order.
type RecordSet struct {
	Columns []string
	Rows    []Record
}

// Len returns the number of rows.
func (rs *RecordSet) Len() int {
	return len(rs.Rows)
}

// ------------------- Reading -------------------

// ReadRecordSet loads a CSV artifact. Cell values are whitespace-trimmed
// and typed via utils.ParseValue; empty cells become absent keys. A file
// that does not exist returns a MissingInputError; a file without a header
// or with ragged rows returns a DataShapeError.
func ReadRecordSet(path string) (*RecordSet, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingInputError{Path: path}
		}
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	csvReader := csv.NewReader(file)
	csvReader.LazyQuotes = true

	headers, err := csvReader.Read()
	if err != nil {
		return nil, &DataShapeError{Path: path, Err: fmt.Errorf("failed to read CSV header: %w", err)}
	}

	rs := &RecordSet{Columns: make([]string, len(headers))}
	for i, header := range headers {
		// Clean headers: trim whitespace and remove stray quotes
		cleanHeader := strings.TrimSpace(header)
		cleanHeader = strings.ReplaceAll(cleanHeader, `"`, "")
		rs.Columns[i] = cleanHeader
	}

	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DataShapeError{Path: path, Err: err}
		}

		row := make(Record, len(rs.Columns))
		for i, col := range rs.Columns {
			cell := strings.TrimSpace(record[i])
			if cell == "" {
				continue
			}
			row[col] = utils.ParseValue(cell)
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, nil
}

// ------------------- Cleaning -------------------

// DropDuplicates removes fully identical rows, keeping the first occurrence
// and preserving order. Two rows are duplicates exactly when they would be
// written identically. Returns the number of rows removed.
func (rs *RecordSet) DropDuplicates() int {
	seen := make(map[string]bool, len(rs.Rows))
	kept := rs.Rows[:0]
	removed := 0

	for _, row := range rs.Rows {
		key := rs.rowKey(row)
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		kept = append(kept, row)
	}
	rs.Rows = kept
	return removed
}

// rowKey builds the identity of a row from the canonical write form of each
// cell. Cells are length-prefixed so no cell content can shift a boundary
// or impersonate the absent marker.
func (rs *RecordSet) rowKey(row Record) string {
	var b strings.Builder
	for _, col := range rs.Columns {
		v, ok := row[col]
		if !ok {
			b.WriteString("-:")
			continue
		}
		cell := formatCell(v)
		b.WriteString(strconv.Itoa(len(cell)))
		b.WriteByte(':')
		b.WriteString(cell)
	}
	return b.String()
}

// NumericColumns returns the columns whose present cells are all numeric.
// A column with no present cells at all counts as numeric.
func (rs *RecordSet) NumericColumns() []string {
	var numeric []string
	for _, col := range rs.Columns {
		if rs.columnNumeric(col) {
			numeric = append(numeric, col)
		}
	}
	return numeric
}

func (rs *RecordSet) columnNumeric(col string) bool {
	for _, row := range rs.Rows {
		v, ok := row[col]
		if !ok {
			continue
		}
		switch v.(type) {
		case int, float64:
		default:
			return false
		}
	}
	return true
}

// FillMissing fills absent cells: numeric columns with 0, every other
// column with "Unknown". Afterwards no row has a missing key.
func (rs *RecordSet) FillMissing() {
	numeric := make(map[string]bool)
	for _, col := range rs.NumericColumns() {
		numeric[col] = true
	}

	for _, row := range rs.Rows {
		for _, col := range rs.Columns {
			if _, ok := row[col]; ok {
				continue
			}
			if numeric[col] {
				row[col] = 0
			} else {
				row[col] = "Unknown"
			}
		}
	}
}

// NormalizeColumnName trims, lowercases and replaces internal spaces with
// underscores. Idempotent.
func NormalizeColumnName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// NormalizeColumnNames normalizes every column name and re-keys the rows.
// Names that collide after normalization merge into one column, last
// original column wins per row.
func (rs *RecordSet) NormalizeColumnNames() {
	normalized := make([]string, len(rs.Columns))
	for i, col := range rs.Columns {
		normalized[i] = NormalizeColumnName(col)
	}

	for ri, row := range rs.Rows {
		next := make(Record, len(row))
		for i, col := range rs.Columns {
			if v, ok := row[col]; ok {
				next[normalized[i]] = v
			}
		}
		rs.Rows[ri] = next
	}

	// Collapse collided names so the header matches the row keys
	seen := make(map[string]bool, len(normalized))
	cols := normalized[:0]
	for _, col := range normalized {
		if seen[col] {
			continue
		}
		seen[col] = true
		cols = append(cols, col)
	}
	rs.Columns = cols
}

// ------------------- Writing -------------------

// WriteFile writes the set as CSV to path, creating the parent directory
// and clobbering any previous artifact.
func (rs *RecordSet) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(rs.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	line := make([]string, len(rs.Columns))
	for _, row := range rs.Rows {
		for i, col := range rs.Columns {
			if v, ok := row[col]; ok {
				line[i] = formatCell(v)
			} else {
				line[i] = ""
			}
		}
		if err := writer.Write(line); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}
	return nil
}

// formatCell renders a typed cell exactly as the CSV writer persists it.
func formatCell(v interface{}) string {
	switch val := v.(type) {
	case int:
		return strconv.Itoa(val)
	case float64:
		// negative zero would render "-0" yet read back as int 0
		if val == 0 {
			val = 0
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
