package stats

import (
	"time"

	"github.com/DanyWerfy/CloudBedReports/internal/core"
)

// withinWindow reports whether a stay overlaps the tracked range. The
// range runs from the first day of anchor's month to the last day of
// the month lookAheadMonths after it.
//
// The boundary inequalities are deliberate and must not be loosened:
// a check-in on the range's last day is excluded, and a check-out on
// the range's first day is excluded. Changing either would double- or
// single-count boundary-month stays.
func withinWindow(checkIn, checkOut, anchor time.Time, lookAheadMonths int) bool {
	start := core.MonthStart(anchor)
	last := start.AddDate(0, lookAheadMonths, -1)

	if !checkIn.Before(last) {
		return false
	}
	if !checkOut.After(start) {
		return false
	}
	return true
}
