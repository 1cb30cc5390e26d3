package cloudbeds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DanyWerfy/CloudBedReports/internal/core"
)

// fromDomain converts a domain reservation back to the API's wire
// shape, so saved files stay compatible with raw API dumps.
func fromDomain(res core.Reservation) reservationRecord {
	record := reservationRecord{
		ReservationID: res.ID,
		DateCreated:   res.DateCreated.Format(core.DateTimeLayout),
		Rooms:         make([]roomRecord, 0, len(res.Rooms)),
	}
	for _, room := range res.Rooms {
		record.Rooms = append(record.Rooms, roomRecord{
			RoomID:            room.RoomID,
			RoomStatus:        string(room.Status),
			RoomCheckIn:       core.DateKey(room.CheckIn),
			RoomCheckOut:      core.DateKey(room.CheckOut),
			DetailedRoomRates: room.NightlyRates,
		})
	}
	return record
}

// SaveReservationsFile writes reservations as a JSON array in the
// Cloudbeds payload format.
func SaveReservationsFile(path string, reservations []core.Reservation) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	records := make([]reservationRecord, 0, len(reservations))
	for _, res := range reservations {
		records = append(records, fromDomain(res))
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal reservations: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write reservations file: %w", err)
	}
	return nil
}

// LoadReservationsFile reads a saved reservations dump back into
// domain reservations.
func LoadReservationsFile(path string) ([]core.Reservation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reservations file: %w", err)
	}

	var records []reservationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode reservations file %s: %w", path, err)
	}

	reservations := make([]core.Reservation, 0, len(records))
	for _, record := range records {
		res, err := record.toDomain()
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, nil
}
