package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rfrancav/vendalytics/internal/metrics"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBucketEnd(t *testing.T) {
	cases := []struct {
		label string
		b     metrics.Bucket
		want  time.Time
	}{
		{"2024-03-15", metrics.BucketDay, day(2024, 3, 15)},
		{"2024-02", metrics.BucketMonth, day(2024, 2, 29)},
		{"2024-Q1", metrics.BucketQuarter, day(2024, 3, 31)},
		{"2024-Q4", metrics.BucketQuarter, day(2024, 12, 31)},
		{"2024-W01", metrics.BucketWeek, day(2024, 1, 7)},
	}
	for _, tc := range cases {
		got, err := bucketEnd(tc.label, tc.b)
		require.NoError(t, err, tc.label)
		require.Equal(t, tc.want, got, tc.label)
	}

	_, err := bucketEnd("garbage", metrics.BucketMonth)
	require.Error(t, err)
}

func TestIsoWeekStart(t *testing.T) {
	// 2024-01-01 is a Monday and opens ISO week 1.
	require.Equal(t, day(2024, 1, 1), isoWeekStart(2024, 1))
	// 2021 starts on a Friday; ISO week 1 begins on 2021-01-04.
	require.Equal(t, day(2021, 1, 4), isoWeekStart(2021, 1))
	require.Equal(t, day(2021, 1, 11), isoWeekStart(2021, 2))
}

func TestLastCompletePair(t *testing.T) {
	series := []metrics.Group{
		{Label: "2024-01"},
		{Label: "2024-02"},
		{Label: "2024-03"},
	}

	cur, prev, err := lastCompletePair(series, metrics.BucketMonth, day(2024, 3, 31))
	require.NoError(t, err)
	require.Equal(t, "2024-03", cur.Label)
	require.Equal(t, "2024-02", prev.Label)

	// A partially observed March drops out of the comparison.
	cur, prev, err = lastCompletePair(series, metrics.BucketMonth, day(2024, 3, 10))
	require.NoError(t, err)
	require.Equal(t, "2024-02", cur.Label)
	require.Equal(t, "2024-01", prev.Label)

	_, _, err = lastCompletePair(series[:1], metrics.BucketMonth, day(2024, 1, 31))
	require.ErrorIs(t, err, ErrInsufficientData)

	// Two buckets with the newer one partial leaves nothing to compare.
	_, _, err = lastCompletePair(series[:2], metrics.BucketMonth, day(2024, 2, 10))
	require.ErrorIs(t, err, ErrInsufficientData)
}
