package sqlite

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, s string) float64 {
	t.Helper()
	f, err := strconv.ParseFloat(s, 64)
	require.NoError(t, err)
	return f
}
