package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusInHouse      RoomStatus = "in_house"
	StatusNotCheckedIn RoomStatus = "not_checked_in"
	StatusCheckedOut   RoomStatus = "checked_out"
	StatusCancelled    RoomStatus = "canceled"
	StatusNoShow       RoomStatus = "no_show"
)

type (
	RoomStatus string

	// RoomStay is one room's occupancy record within a reservation.
	// CheckOut is exclusive: the last occupied night is CheckOut minus one day.
	RoomStay struct {
		RoomID   string
		Status   RoomStatus
		CheckIn  time.Time
		CheckOut time.Time
		// NightlyRates maps a "2006-01-02" date key to the rate charged
		// for that night.
		NightlyRates map[string]float64
	}

	// Reservation groups the room-stays booked together. DateCreated is
	// shared across all rooms of the reservation.
	Reservation struct {
		ID          string
		DateCreated time.Time
		Rooms       []RoomStay
	}
)

// ActiveStatuses are the room statuses counted as occupancy. Anything
// else is treated as a cancellation.
var ActiveStatuses = []RoomStatus{StatusInHouse, StatusNotCheckedIn, StatusCheckedOut}

var (
	ErrEmptyReservationID = errors.New("empty reservation id")
	ErrInvalidStayDates   = errors.New("check-out must be after check-in")
	ErrEmptyStatus        = errors.New("empty room status")
)

func (s RoomStay) Validate() error {
	if strings.TrimSpace(string(s.Status)) == "" {
		return ErrEmptyStatus
	}
	if s.CheckIn.IsZero() || s.CheckOut.IsZero() {
		return errors.New("stay dates cannot be zero")
	}
	if !s.CheckOut.After(s.CheckIn) {
		return ErrInvalidStayDates
	}
	return nil
}

// Nights returns the number of occupied nights in the stay.
func (s RoomStay) Nights() int {
	return DaysBetween(s.CheckIn, s.CheckOut)
}

func (r Reservation) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyReservationID
	}
	for _, room := range r.Rooms {
		if err := room.Validate(); err != nil {
			return err
		}
	}
	return nil
}
