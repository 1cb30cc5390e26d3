package stats

import (
	"fmt"
	"time"

	"github.com/DanyWerfy/CloudBedReports/internal/core"
)

// TrackedWindow holds the ordered month buckets for one aggregation run.
// It covers lookAheadMonths+2 consecutive months: one padding month
// before the anchor's month and one after the look-ahead span, to catch
// stays crossing the window boundary.
type TrackedWindow struct {
	anchor    time.Time
	lookAhead int
	keys      []string
	buckets   map[string]*MonthBucket
}

// BuildWindow constructs the tracked window anchored at anchor's month.
// All buckets start zeroed.
func BuildWindow(anchor time.Time, lookAheadMonths int) (*TrackedWindow, error) {
	if lookAheadMonths < 0 {
		return nil, fmt.Errorf("%w: look-ahead months must not be negative, got %d", ErrInvalidConfiguration, lookAheadMonths)
	}

	w := &TrackedWindow{
		anchor:    anchor,
		lookAhead: lookAheadMonths,
		buckets:   make(map[string]*MonthBucket, lookAheadMonths+2),
	}

	first := core.MonthStart(anchor).AddDate(0, -1, 0)
	for i := 0; i < lookAheadMonths+2; i++ {
		key := core.MonthKey(first.AddDate(0, i, 0))
		w.keys = append(w.keys, key)
		w.buckets[key] = &MonthBucket{}
	}
	return w, nil
}

// Bucket returns the bucket for a "2006-01" key, if tracked.
func (w *TrackedWindow) Bucket(key string) (*MonthBucket, bool) {
	b, ok := w.buckets[key]
	return b, ok
}

// Keys returns the tracked month keys in calendar order.
func (w *TrackedWindow) Keys() []string {
	return w.keys
}

// Months exposes the underlying key to bucket mapping.
func (w *TrackedWindow) Months() map[string]*MonthBucket {
	return w.buckets
}
