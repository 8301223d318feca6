package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	require.Equal(t, 42, ParseValue("42"))
	require.Equal(t, -3, ParseValue("-3"))
	require.Equal(t, 9.5, ParseValue("9.5"))
	require.Equal(t, "Widget", ParseValue(" Widget "))
	require.Equal(t, "", ParseValue("   "))
	require.Equal(t, "A1", ParseValue("A1"))
}

func TestParseDuration(t *testing.T) {
	require.Equal(t, 30*time.Second, ParseDuration("30s"))
	require.Equal(t, 2*time.Hour, ParseDuration("2h"))
	require.Equal(t, 5*time.Minute, ParseDuration(""))
	require.Equal(t, 5*time.Minute, ParseDuration("whenever"))
}
