package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rfrancav/vendalytics/internal/schema"
)

func TestGenerate_ShapeAndValidity(t *testing.T) {
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	table := Generate(200, 42, end)

	require.Equal(t, 200, table.Len())
	for _, col := range schema.RequiredColumns {
		require.Contains(t, table, col)
	}

	lines, report, err := schema.Validate(table, schema.ValidateOptions{})
	require.NoError(t, err)
	require.Equal(t, 200, report.Accepted)
	require.Len(t, lines, 200)
	for _, l := range lines {
		require.False(t, l.OrderDate.After(end))
		require.True(t, l.OrderDate.After(end.AddDate(-1, 0, -1)))
	}
}

func TestGenerate_SeedDeterminism(t *testing.T) {
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	require.Equal(t, Generate(50, 7, end), Generate(50, 7, end))

	other := Generate(50, 8, end)
	require.NotEqual(t, Generate(50, 7, end), other)
}

func TestWeighted_CoversAllIndexes(t *testing.T) {
	table := Generate(2000, 1, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))

	seen := map[string]bool{}
	for _, s := range table[schema.ColState] {
		seen[s] = true
	}
	require.GreaterOrEqual(t, len(seen), len(states)-1, "weighted sampling should reach nearly every state")
}
