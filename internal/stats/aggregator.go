// Package stats implements the monthly statistics engine: it walks
// per-room reservation detail night by night, attributes nights and
// revenue to calendar month buckets over a configurable look-ahead
// window, and derives the published occupancy and revenue metrics.
package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanyWerfy/CloudBedReports/internal/core"
)

// Aggregator runs aggregation passes over materialized reservation
// lists. It holds only configuration; every run owns its own window,
// so repeated or concurrent runs never share state.
type Aggregator struct {
	units  int
	active map[core.RoomStatus]struct{}
}

// Result is the outcome of one aggregation run. Months holds the
// pruned "2006-01" key to bucket mapping. Errs collects the
// per-reservation data errors encountered along the way; a batch with
// a few bad records still produces results for the rest.
type Result struct {
	Anchor               time.Time
	LookAheadMonths      int
	Months               map[string]*MonthBucket
	SkippedNights        int
	SkippedCancellations int
	Errs                 []error
}

// Err joins the collected per-reservation errors, or returns nil if
// the run was clean.
func (r *Result) Err() error {
	return errors.Join(r.Errs...)
}

// NewAggregator creates an aggregator for a property with the given
// unit count. Stays whose status is not in activeStatuses count as
// cancellations.
func NewAggregator(units int, activeStatuses []core.RoomStatus) (*Aggregator, error) {
	if units <= 0 {
		return nil, fmt.Errorf("%w: unit count must be positive, got %d", ErrInvalidConfiguration, units)
	}
	active := make(map[core.RoomStatus]struct{}, len(activeStatuses))
	for _, s := range activeStatuses {
		active[s] = struct{}{}
	}
	return &Aggregator{units: units, active: active}, nil
}

func (a *Aggregator) isActive(status core.RoomStatus) bool {
	_, ok := a.active[status]
	return ok
}

// Run aggregates the reservation list into monthly buckets over a
// window anchored at anchor, spanning lookAheadMonths months plus one
// padding month on each side. The returned result contains only months
// with real occupancy; padding and empty months are pruned.
func (a *Aggregator) Run(ctx context.Context, anchor time.Time, lookAheadMonths int, reservations []core.Reservation) (*Result, error) {
	window, err := BuildWindow(anchor, lookAheadMonths)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Anchor:          anchor,
		LookAheadMonths: lookAheadMonths,
	}

	for _, res := range reservations {
		for _, room := range res.Rooms {
			if !withinWindow(room.CheckIn, room.CheckOut, anchor, lookAheadMonths) {
				continue
			}
			if !a.isActive(room.Status) {
				a.countCancellation(ctx, window, res, room, result)
				continue
			}
			if err := a.walkStay(ctx, window, res, room, result); err != nil {
				result.Errs = append(result.Errs, err)
			}
		}
	}

	a.derive(ctx, window, anchor, lookAheadMonths)

	result.Months = Prune(window.Months())
	return result, nil
}

// derive computes metrics for the months of the look-ahead span. The
// padding months are never derived: they exist only to catch nights of
// boundary-crossing stays and are always discarded by pruning.
func (a *Aggregator) derive(ctx context.Context, w *TrackedWindow, anchor time.Time, lookAheadMonths int) {
	first := core.MonthStart(anchor)
	for i := 0; i < lookAheadMonths; i++ {
		month := first.AddDate(0, i, 0)
		key := core.MonthKey(month)
		bucket, ok := w.Bucket(key)
		if !ok {
			continue
		}
		capacity := a.units * core.DaysInMonth(month)
		if err := DeriveMetrics(bucket, capacity); err != nil {
			// A month with no activity; pruning removes it.
			slog.DebugContext(ctx, "Skipping metrics for empty month",
				"month", key, "reason", err)
		}
	}
}
