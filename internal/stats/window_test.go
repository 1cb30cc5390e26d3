package stats

import (
	"errors"
	"testing"
	"time"

	"github.com/DanyWerfy/CloudBedReports/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildWindow(t *testing.T) {
	tests := []struct {
		name      string
		anchor    time.Time
		lookAhead int
		wantKeys  []string
		wantErr   error
	}{
		{
			name:      "two month look-ahead pads both sides",
			anchor:    date(2025, time.January, 1),
			lookAhead: 2,
			wantKeys:  []string{"2024-12", "2025-01", "2025-02", "2025-03"},
		},
		{
			name:      "mid-month anchor snaps to month start",
			anchor:    date(2025, time.September, 16),
			lookAhead: 1,
			wantKeys:  []string{"2025-08", "2025-09", "2025-10"},
		},
		{
			name:      "window crossing year boundary",
			anchor:    date(2024, time.November, 3),
			lookAhead: 4,
			wantKeys:  []string{"2024-10", "2024-11", "2024-12", "2025-01", "2025-02", "2025-03"},
		},
		{
			name:      "zero look-ahead keeps only padding",
			anchor:    date(2025, time.June, 1),
			lookAhead: 0,
			wantKeys:  []string{"2025-05", "2025-06"},
		},
		{
			name:      "negative look-ahead is rejected",
			anchor:    date(2025, time.June, 1),
			lookAhead: -1,
			wantErr:   ErrInvalidConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := BuildWindow(tt.anchor, tt.lookAhead)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("BuildWindow() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildWindow() error = %v", err)
			}

			got := w.Keys()
			if len(got) != len(tt.wantKeys) {
				t.Fatalf("BuildWindow() keys = %v, want %v", got, tt.wantKeys)
			}
			for i, key := range tt.wantKeys {
				if got[i] != key {
					t.Errorf("BuildWindow() keys[%d] = %s, want %s", i, got[i], key)
				}
				bucket, ok := w.Bucket(key)
				if !ok {
					t.Fatalf("BuildWindow() missing bucket for %s", key)
				}
				if *bucket != (MonthBucket{}) {
					t.Errorf("BuildWindow() bucket %s not zeroed: %+v", key, bucket)
				}
			}
		})
	}
}

func TestWithinWindow(t *testing.T) {
	anchor := date(2025, time.January, 1)
	lookAhead := 2 // tracked range 2025-01-01 through 2025-02-28

	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     bool
	}{
		{
			name:     "fully inside",
			checkIn:  date(2025, time.January, 10),
			checkOut: date(2025, time.January, 12),
			want:     true,
		},
		{
			name:     "spans into window from before",
			checkIn:  date(2024, time.December, 28),
			checkOut: date(2025, time.January, 3),
			want:     true,
		},
		{
			name:     "spans out of window past the end",
			checkIn:  date(2025, time.February, 27),
			checkOut: date(2025, time.March, 5),
			want:     true,
		},
		{
			name:     "check-in on the range's last day is excluded",
			checkIn:  date(2025, time.February, 28),
			checkOut: date(2025, time.March, 2),
			want:     false,
		},
		{
			name:     "check-in the day before the last day is included",
			checkIn:  date(2025, time.February, 27),
			checkOut: date(2025, time.March, 2),
			want:     true,
		},
		{
			name:     "check-out on the range's first day is excluded",
			checkIn:  date(2024, time.December, 29),
			checkOut: date(2025, time.January, 1),
			want:     false,
		},
		{
			name:     "check-out the day after the first day is included",
			checkIn:  date(2024, time.December, 29),
			checkOut: date(2025, time.January, 2),
			want:     true,
		},
		{
			name:     "entirely before the window",
			checkIn:  date(2024, time.November, 1),
			checkOut: date(2024, time.November, 5),
			want:     false,
		},
		{
			name:     "entirely after the window",
			checkIn:  date(2025, time.April, 1),
			checkOut: date(2025, time.April, 5),
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := withinWindow(tt.checkIn, tt.checkOut, anchor, lookAhead)
			if got != tt.want {
				t.Errorf("withinWindow(%s, %s) = %v, want %v",
					core.DateKey(tt.checkIn), core.DateKey(tt.checkOut), got, tt.want)
			}
		})
	}
}
