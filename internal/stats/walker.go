package stats

import (
	"context"
	"log/slog"

	"github.com/DanyWerfy/CloudBedReports/internal/core"
)

// walkStay attributes an active room-stay night by night. Every night
// from check-in (inclusive) to check-out (exclusive) adds one rented
// night and that night's rate to the owning month bucket. The stay is
// then credited once as a reservation, with its booking lead time, to
// the bucket of its check-in month.
//
// Rates are verified up front so a stay with a gap in its rate map
// leaves no partial nights behind in the accumulators.
func (a *Aggregator) walkStay(ctx context.Context, w *TrackedWindow, res core.Reservation, room core.RoomStay, result *Result) error {
	for night := room.CheckIn; night.Before(room.CheckOut); night = night.AddDate(0, 0, 1) {
		if _, ok := room.NightlyRates[core.DateKey(night)]; !ok {
			return &MissingRateError{ReservationID: res.ID, Night: night}
		}
	}

	for night := room.CheckIn; night.Before(room.CheckOut); night = night.AddDate(0, 0, 1) {
		bucket, ok := w.Bucket(core.MonthKey(night))
		if !ok {
			// The classifier already confirmed the stay overlaps the
			// window, so an untracked month points at a window/classifier
			// mismatch. Count it and move on instead of aborting the batch.
			result.SkippedNights++
			slog.WarnContext(ctx, "Night outside tracked window, skipping",
				"reservation_id", res.ID,
				"night", core.DateKey(night))
			continue
		}
		bucket.NightsRented++
		bucket.TotalRevenue += room.NightlyRates[core.DateKey(night)]
	}

	// The reservation itself belongs to the check-in month, even when
	// its nights span several months.
	if bucket, ok := w.Bucket(core.MonthKey(room.CheckIn)); ok {
		bucket.NumReservations++
		bucket.TotalBookingLeadTime += core.DaysBetween(res.DateCreated, room.CheckIn)
	}
	return nil
}

// countCancellation credits a cancelled room-stay to its check-in
// month. Cancelled stays contribute no nights and no revenue.
func (a *Aggregator) countCancellation(ctx context.Context, w *TrackedWindow, res core.Reservation, room core.RoomStay, result *Result) {
	bucket, ok := w.Bucket(core.MonthKey(room.CheckIn))
	if !ok {
		result.SkippedCancellations++
		slog.WarnContext(ctx, "Cancellation outside tracked window, skipping",
			"reservation_id", res.ID,
			"check_in", core.DateKey(room.CheckIn))
		return
	}
	bucket.CancelledReservations++
}
