package pipeline

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestReadRecordSetTypesCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	writeCSV(t, path, "Name,Price,Stock\nWidget,9.5,3\n Gadget , ,\n")

	rs, err := ReadRecordSet(path)
	require.NoError(t, err)
	require.Equal(t, []string{"Name", "Price", "Stock"}, rs.Columns)
	require.Equal(t, 2, rs.Len())

	require.Equal(t, "Widget", rs.Rows[0]["Name"])
	require.Equal(t, 9.5, rs.Rows[0]["Price"])
	require.Equal(t, 3, rs.Rows[0]["Stock"])

	// Cells are trimmed, blank cells stay absent
	require.Equal(t, "Gadget", rs.Rows[1]["Name"])
	_, ok := rs.Rows[1]["Price"]
	require.False(t, ok)
	_, ok = rs.Rows[1]["Stock"]
	require.False(t, ok)
}

func TestReadRecordSetCleansHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	writeCSV(t, path, " Name , Unit Price \nWidget,1\n")

	rs, err := ReadRecordSet(path)
	require.NoError(t, err)
	require.Equal(t, []string{"Name", "Unit Price"}, rs.Columns)
}

func TestReadRecordSetMissingFile(t *testing.T) {
	_, err := ReadRecordSet(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	require.True(t, IsMissingInput(err))
	require.False(t, IsDataShape(err))
}

func TestReadRecordSetMalformed(t *testing.T) {
	dir := t.TempDir()

	ragged := filepath.Join(dir, "ragged.csv")
	writeCSV(t, ragged, "Name,Price\nWidget,1,extra\n")
	_, err := ReadRecordSet(ragged)
	require.Error(t, err)
	require.True(t, IsDataShape(err))

	empty := filepath.Join(dir, "empty.csv")
	writeCSV(t, empty, "")
	_, err = ReadRecordSet(empty)
	require.Error(t, err)
	require.True(t, IsDataShape(err))
}

func TestDropDuplicatesKeepsFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	writeCSV(t, path, "Name,Price\nWidget,1\nGadget,2\nWidget,1\nWidget,3\n")

	rs, err := ReadRecordSet(path)
	require.NoError(t, err)

	removed := rs.DropDuplicates()
	require.Equal(t, 1, removed)
	require.Equal(t, 3, rs.Len())
	require.Equal(t, "Widget", rs.Rows[0]["Name"])
	require.Equal(t, "Gadget", rs.Rows[1]["Name"])
	// Near-duplicate with a different price survives
	require.Equal(t, 3, rs.Rows[2]["Price"])
}

func TestDropDuplicatesControlBytesInCells(t *testing.T) {
	// Cell content must never shift the boundary between two cells
	rs := &RecordSet{
		Columns: []string{"a", "b"},
		Rows: []Record{
			{"a": "x\x1fy", "b": "z"},
			{"a": "x", "b": "y\x1fz"},
		},
	}
	require.Equal(t, 0, rs.DropDuplicates())
	require.Equal(t, 2, rs.Len())

	// A literal NUL cell is not the same row as an absent cell
	rs = &RecordSet{
		Columns: []string{"a"},
		Rows:    []Record{{"a": "\x00"}, {}},
	}
	require.Equal(t, 0, rs.DropDuplicates())
	require.Equal(t, 2, rs.Len())
}

func TestFormatCellNegativeZero(t *testing.T) {
	require.Equal(t, "0", formatCell(math.Copysign(0, -1)))
	require.Equal(t, "0", formatCell(0.0))
	require.Equal(t, "-1.5", formatCell(-1.5))
}

func TestNumericColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	writeCSV(t, path, "Name,Price,Code\nWidget,9.5,A1\nGadget,3,B2\n")

	rs, err := ReadRecordSet(path)
	require.NoError(t, err)
	require.Equal(t, []string{"Price"}, rs.NumericColumns())
}

func TestFillMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	writeCSV(t, path, "Name,Price,Note\nWidget,9.5,good\n,,\n")

	rs, err := ReadRecordSet(path)
	require.NoError(t, err)

	rs.FillMissing()
	require.Equal(t, "Unknown", rs.Rows[1]["Name"])
	require.Equal(t, 0, rs.Rows[1]["Price"])
	require.Equal(t, "Unknown", rs.Rows[1]["Note"])
	// Present cells are untouched
	require.Equal(t, "Widget", rs.Rows[0]["Name"])
	require.Equal(t, 9.5, rs.Rows[0]["Price"])
}

func TestFillMissingAllAbsentColumnCountsNumeric(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	writeCSV(t, path, "Name,Stock\nWidget,\nGadget,\n")

	rs, err := ReadRecordSet(path)
	require.NoError(t, err)

	rs.FillMissing()
	require.Equal(t, 0, rs.Rows[0]["Stock"])
	require.Equal(t, 0, rs.Rows[1]["Stock"])
}

func TestNormalizeColumnName(t *testing.T) {
	cases := map[string]string{
		"  Product Name ": "product_name",
		"PRICE":           "price",
		"unit cost usd":   "unit_cost_usd",
		"sku":             "sku",
	}
	for in, want := range cases {
		require.Equal(t, want, NormalizeColumnName(in))
		// Applying it again changes nothing
		require.Equal(t, want, NormalizeColumnName(want))
	}
}

func TestNormalizeColumnNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	writeCSV(t, path, "Product Name,Unit Price\nWidget,9.5\n")

	rs, err := ReadRecordSet(path)
	require.NoError(t, err)

	rs.NormalizeColumnNames()
	require.Equal(t, []string{"product_name", "unit_price"}, rs.Columns)
	require.Equal(t, "Widget", rs.Rows[0]["product_name"])
	require.Equal(t, 9.5, rs.Rows[0]["unit_price"])
}

func TestNormalizeColumnNamesCollision(t *testing.T) {
	rs := &RecordSet{
		Columns: []string{"Name", " name "},
		Rows:    []Record{{"Name": "a", " name ": "b"}},
	}

	rs.NormalizeColumnNames()
	require.Equal(t, []string{"name"}, rs.Columns)
	require.Equal(t, "b", rs.Rows[0]["name"])
}

func TestWriteFileClobbersPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cleaned.csv")

	rs := &RecordSet{Columns: []string{"name"}, Rows: []Record{{"name": "first"}}}
	require.NoError(t, rs.WriteFile(path))

	rs = &RecordSet{Columns: []string{"name"}, Rows: []Record{{"name": "second"}}}
	require.NoError(t, rs.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "name\nsecond\n", string(data))
}

func TestWriteReadRoundTripStable(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.csv")
	second := filepath.Join(dir, "second.csv")

	rs := &RecordSet{
		Columns: []string{"name", "price", "stock"},
		Rows: []Record{
			{"name": "Widget", "price": 9.5, "stock": 3},
			{"name": "Gadget", "price": 0, "stock": 12},
		},
	}
	require.NoError(t, rs.WriteFile(first))

	again, err := ReadRecordSet(first)
	require.NoError(t, err)
	require.NoError(t, again.WriteFile(second))

	b1, err := os.ReadFile(first)
	require.NoError(t, err)
	b2, err := os.ReadFile(second)
	require.NoError(t, err)
	require.Equal(t, string(b1), string(b2))
}
