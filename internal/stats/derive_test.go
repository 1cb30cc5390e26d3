package stats

import (
	"errors"
	"testing"
)

func TestDeriveMetrics(t *testing.T) {
	t.Run("half occupancy over 310 unit-nights", func(t *testing.T) {
		b := &MonthBucket{
			NightsRented:          155,
			NumReservations:       31,
			CancelledReservations: 9,
			TotalRevenue:          15500,
			TotalBookingLeadTime:  93,
		}

		if err := DeriveMetrics(b, 310); err != nil {
			t.Fatalf("DeriveMetrics() error = %v", err)
		}

		if b.OccupancyPercent != 50.00 {
			t.Errorf("OccupancyPercent = %v, want 50.00", b.OccupancyPercent)
		}
		if b.PossibleNights != 310 {
			t.Errorf("PossibleNights = %v, want 310", b.PossibleNights)
		}
		if b.AvgLengthOfStay != 5.00 {
			t.Errorf("AvgLengthOfStay = %v, want 5.00", b.AvgLengthOfStay)
		}
		if b.AvgRevenue != 500.00 {
			t.Errorf("AvgRevenue = %v, want 500.00", b.AvgRevenue)
		}
		if b.BookingLeadTime != 3.00 {
			t.Errorf("BookingLeadTime = %v, want 3.00", b.BookingLeadTime)
		}
		if b.AvgDailyRate != 100.00 {
			t.Errorf("AvgDailyRate = %v, want 100.00", b.AvgDailyRate)
		}
		if b.RevPAR != 50.00 {
			t.Errorf("RevPAR = %v, want 50.00", b.RevPAR)
		}
		if b.PossibleRevenue != 31000.00 {
			t.Errorf("PossibleRevenue = %v, want 31000.00", b.PossibleRevenue)
		}
		if b.CancelationRate != 22.50 {
			t.Errorf("CancelationRate = %v, want 22.50", b.CancelationRate)
		}
	})

	t.Run("ratios round to two decimals", func(t *testing.T) {
		b := &MonthBucket{
			NightsRented:    7,
			NumReservations: 3,
			TotalRevenue:    1000,
		}

		if err := DeriveMetrics(b, 930); err != nil {
			t.Fatalf("DeriveMetrics() error = %v", err)
		}

		if b.AvgLengthOfStay != 2.33 {
			t.Errorf("AvgLengthOfStay = %v, want 2.33", b.AvgLengthOfStay)
		}
		if b.AvgRevenue != 333.33 {
			t.Errorf("AvgRevenue = %v, want 333.33", b.AvgRevenue)
		}
		if b.AvgDailyRate != 142.86 {
			t.Errorf("AvgDailyRate = %v, want 142.86", b.AvgDailyRate)
		}
		if b.OccupancyPercent != 0.75 {
			t.Errorf("OccupancyPercent = %v, want 0.75", b.OccupancyPercent)
		}
	})

	t.Run("zero denominators fail explicitly", func(t *testing.T) {
		tests := []struct {
			name     string
			bucket   MonthBucket
			capacity int
		}{
			{"no reservations", MonthBucket{NightsRented: 5}, 310},
			{"no nights", MonthBucket{NumReservations: 2}, 310},
			{"zero capacity", MonthBucket{NightsRented: 5, NumReservations: 2}, 0},
			{"empty month", MonthBucket{}, 310},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				b := tt.bucket
				err := DeriveMetrics(&b, tt.capacity)
				if !errors.Is(err, ErrDivisionByZero) {
					t.Errorf("DeriveMetrics() error = %v, want ErrDivisionByZero", err)
				}
				if b.OccupancyPercent != 0 {
					t.Errorf("OccupancyPercent mutated to %v on failed derivation", b.OccupancyPercent)
				}
			})
		}
	})
}

func TestPrune(t *testing.T) {
	months := map[string]*MonthBucket{
		"2024-12": {},
		"2025-01": {OccupancyPercent: 50.00, NightsRented: 155},
		"2025-02": {OccupancyPercent: 12.5, NightsRented: 35},
		// Cancellations alone do not keep a month alive.
		"2025-03": {CancelledReservations: 4},
	}

	Prune(months)

	if _, ok := months["2024-12"]; ok {
		t.Error("Prune() kept empty padding month 2024-12")
	}
	if _, ok := months["2025-03"]; ok {
		t.Error("Prune() kept cancellation-only month 2025-03")
	}
	if len(months) != 2 {
		t.Fatalf("Prune() left %d months, want 2", len(months))
	}

	// Idempotence: a second pass changes nothing.
	Prune(months)
	if len(months) != 2 {
		t.Fatalf("Prune() not idempotent, left %d months, want 2", len(months))
	}
	if months["2025-01"].OccupancyPercent != 50.00 {
		t.Error("Prune() mutated a surviving bucket")
	}
}
