package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	lg := New(&buf)

	lg.Infof("Extracted %d rows", 3)
	lg.Warnf("No raw file to archive at %s", "data/products.csv")
	lg.Errorf("boom")

	out := buf.String()
	require.Contains(t, out, "- INFO - Extracted 3 rows")
	require.Contains(t, out, "- WARNING - No raw file to archive at data/products.csv")
	require.Contains(t, out, "- ERROR - boom")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		// Stdlib timestamp, then level, then message
		require.Regexp(t, `^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2} - (INFO|WARNING|ERROR) - `, line)
	}
}
