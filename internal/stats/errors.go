package stats

import (
	"errors"
	"fmt"
	"time"

	"github.com/DanyWerfy/CloudBedReports/internal/core"
)

var (
	// ErrInvalidConfiguration marks window parameters that make no sense,
	// such as a negative look-ahead. Fatal before any accumulation.
	ErrInvalidConfiguration = errors.New("invalid window configuration")

	// ErrDivisionByZero marks a month whose derived metrics cannot be
	// computed because it has no reservations or nights.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrMissingRate marks an occupied night with no rate entry.
	ErrMissingRate = errors.New("missing nightly rate")
)

// MissingRateError reports an occupied night that has no entry in the
// room-stay's rate map. Treating it as zero revenue would understate
// ADR and RevPAR, so the walker refuses the whole room-stay instead.
type MissingRateError struct {
	ReservationID string
	Night         time.Time
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("reservation %s: no rate for night %s", e.ReservationID, core.DateKey(e.Night))
}

func (e *MissingRateError) Unwrap() error {
	return ErrMissingRate
}
