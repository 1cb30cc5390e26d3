package stats

import (
	"fmt"
	"math"
)

// round2 rounds to two decimal places, matching the precision the
// published reports use everywhere.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DeriveMetrics computes the derived ratios for one bucket from its
// accumulators, given the month's capacity in unit-nights. It must run
// exactly once per bucket, after accumulation has finished.
//
// A zero denominator means the month had no countable activity; the
// caller is expected to leave such a month at zero occupancy so pruning
// removes it, rather than publish zeros or infinities.
func DeriveMetrics(b *MonthBucket, capacity int) error {
	if capacity <= 0 {
		return fmt.Errorf("%w: capacity %d", ErrDivisionByZero, capacity)
	}
	if b.NumReservations == 0 {
		return fmt.Errorf("%w: no reservations", ErrDivisionByZero)
	}
	if b.NightsRented == 0 {
		return fmt.Errorf("%w: no nights rented", ErrDivisionByZero)
	}

	b.OccupancyPercent = round2(float64(b.NightsRented) / float64(capacity) * 100)
	b.PossibleNights = capacity
	b.AvgLengthOfStay = round2(float64(b.NightsRented) / float64(b.NumReservations))
	b.TotalRevenue = round2(b.TotalRevenue)
	b.AvgRevenue = round2(b.TotalRevenue / float64(b.NumReservations))
	b.BookingLeadTime = round2(float64(b.TotalBookingLeadTime) / float64(b.NumReservations))
	b.AvgDailyRate = round2(b.TotalRevenue / float64(b.NightsRented))
	b.RevPAR = round2(b.TotalRevenue / float64(capacity))
	b.PossibleRevenue = round2(float64(capacity) * b.AvgDailyRate)
	b.CancelationRate = round2(float64(b.CancelledReservations) / float64(b.CancelledReservations+b.NumReservations) * 100)
	return nil
}
