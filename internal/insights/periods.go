package insights

import (
	"fmt"
	"time"

	"github.com/rfrancav/vendalytics/internal/metrics"
)

// lastCompletePair returns the most recent complete bucket and its
// predecessor from a chronological series. A bucket is complete when its
// calendar end does not exceed the dataset's last order date; a trailing
// partial bucket is excluded from the comparison.
func lastCompletePair(series []metrics.Group, b metrics.Bucket, dateEnd time.Time) (current, previous metrics.Group, err error) {
	n := len(series)
	if n < 2 {
		return metrics.Group{}, metrics.Group{}, ErrInsufficientData
	}
	last := n - 1
	end, perr := bucketEnd(series[last].Label, b)
	if perr != nil {
		return metrics.Group{}, metrics.Group{}, perr
	}
	if end.After(dateEnd) {
		last--
	}
	if last < 1 {
		return metrics.Group{}, metrics.Group{}, ErrInsufficientData
	}
	return series[last], series[last-1], nil
}

// bucketEnd computes the final calendar day of a period bucket label.
func bucketEnd(label string, b metrics.Bucket) (time.Time, error) {
	switch b {
	case metrics.BucketDay:
		return time.Parse("2006-01-02", label)
	case metrics.BucketWeek:
		var year, week int
		if _, err := fmt.Sscanf(label, "%04d-W%02d", &year, &week); err != nil {
			return time.Time{}, fmt.Errorf("insights: bad week label %q: %w", label, err)
		}
		return isoWeekStart(year, week).AddDate(0, 0, 6), nil
	case metrics.BucketQuarter:
		var year, q int
		if _, err := fmt.Sscanf(label, "%04d-Q%d", &year, &q); err != nil {
			return time.Time{}, fmt.Errorf("insights: bad quarter label %q: %w", label, err)
		}
		return time.Date(year, time.Month(q*3+1), 0, 0, 0, 0, 0, time.UTC), nil
	default: // month
		t, err := time.Parse("2006-01", label)
		if err != nil {
			return time.Time{}, fmt.Errorf("insights: bad month label %q: %w", label, err)
		}
		return t.AddDate(0, 1, -1), nil
	}
}

// isoWeekStart returns the Monday of the given ISO week. January 4th is
// always inside ISO week 1.
func isoWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	wd := int(jan4.Weekday())
	if wd == 0 {
		wd = 7
	}
	week1Monday := jan4.AddDate(0, 0, 1-wd)
	return week1Monday.AddDate(0, 0, (week-1)*7)
}
