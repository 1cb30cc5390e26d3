package cloudbeds

import (
	"fmt"

	"github.com/DanyWerfy/CloudBedReports/internal/core"
)

// envelope is the common Cloudbeds API response wrapper.
type envelope struct {
	Success bool                `json:"success"`
	Total   int                 `json:"total"`
	Count   int                 `json:"count"`
	Message string              `json:"message"`
	Data    []reservationRecord `json:"data"`
}

// reservationRecord mirrors one entry of the
// getReservationsWithRateDetails payload.
type reservationRecord struct {
	ReservationID string       `json:"reservationID"`
	DateCreated   string       `json:"dateCreated"`
	Rooms         []roomRecord `json:"rooms"`
}

type roomRecord struct {
	RoomID            string             `json:"roomID"`
	RoomStatus        string             `json:"roomStatus"`
	RoomCheckIn       string             `json:"roomCheckIn"`
	RoomCheckOut      string             `json:"roomCheckOut"`
	DetailedRoomRates map[string]float64 `json:"detailedRoomRates"`
}

// toDomain converts an API record into the domain reservation,
// validating its date fields along the way.
func (r reservationRecord) toDomain() (core.Reservation, error) {
	created, err := core.ParseDateTime(r.DateCreated)
	if err != nil {
		return core.Reservation{}, fmt.Errorf("reservation %s: parse dateCreated: %w", r.ReservationID, err)
	}

	res := core.Reservation{
		ID:          r.ReservationID,
		DateCreated: created,
		Rooms:       make([]core.RoomStay, 0, len(r.Rooms)),
	}
	for _, room := range r.Rooms {
		checkIn, err := core.ParseDate(room.RoomCheckIn)
		if err != nil {
			return core.Reservation{}, fmt.Errorf("reservation %s: parse roomCheckIn: %w", r.ReservationID, err)
		}
		checkOut, err := core.ParseDate(room.RoomCheckOut)
		if err != nil {
			return core.Reservation{}, fmt.Errorf("reservation %s: parse roomCheckOut: %w", r.ReservationID, err)
		}
		res.Rooms = append(res.Rooms, core.RoomStay{
			RoomID:       room.RoomID,
			Status:       core.RoomStatus(room.RoomStatus),
			CheckIn:      checkIn,
			CheckOut:     checkOut,
			NightlyRates: room.DetailedRoomRates,
		})
	}
	return res, nil
}
