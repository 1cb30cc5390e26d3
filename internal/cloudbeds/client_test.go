package cloudbeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DanyWerfy/CloudBedReports/internal/core"
)

func testServer(t *testing.T, total, perPage int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer test-key", got)
		}
		if !strings.Contains(r.URL.Path, "getReservationsWithRateDetails") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		page := r.URL.Query().Get("pageNumber")
		env := map[string]any{
			"success": true,
			"total":   total,
			"count":   perPage,
		}
		if page != "" {
			var data []map[string]any
			for i := 0; i < perPage; i++ {
				id := fmt.Sprintf("R-%s-%d", page, i)
				data = append(data, map[string]any{
					"reservationID": id,
					"dateCreated":   "2025-01-02 10:30:00",
					"rooms": []map[string]any{
						{
							"roomID":       "101",
							"roomStatus":   "not_checked_in",
							"roomCheckIn":  "2025-02-01",
							"roomCheckOut": "2025-02-03",
							"detailedRoomRates": map[string]float64{
								"2025-02-01": 110,
								"2025-02-02": 110,
							},
						},
					},
				})
			}
			env["data"] = data
		}
		json.NewEncoder(w).Encode(env)
	}))
}

func TestFetchReservations(t *testing.T) {
	srv := testServer(t, 5, 2) // 5 records at 2 per page -> 3 pages
	defer srv.Close()

	client := NewClient(srv.URL+"/", "test-key", 2)

	var lastDone, lastTotal int
	reservations, err := client.FetchReservations(context.Background(), "214969",
		time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		func(done, total int) { lastDone, lastTotal = done, total })
	if err != nil {
		t.Fatalf("FetchReservations() error = %v", err)
	}

	if len(reservations) != 6 { // 3 pages of 2 stub records each
		t.Errorf("FetchReservations() returned %d reservations, want 6", len(reservations))
	}
	if lastDone != 3 || lastTotal != 3 {
		t.Errorf("progress = %d/%d, want 3/3", lastDone, lastTotal)
	}

	first := reservations[0]
	if first.ID != "R-1-0" {
		t.Errorf("first reservation ID = %s, want R-1-0 (page order preserved)", first.ID)
	}
	if len(first.Rooms) != 1 {
		t.Fatalf("rooms = %d, want 1", len(first.Rooms))
	}
	room := first.Rooms[0]
	if room.Status != core.StatusNotCheckedIn {
		t.Errorf("room status = %s, want not_checked_in", room.Status)
	}
	if core.DateKey(room.CheckIn) != "2025-02-01" || core.DateKey(room.CheckOut) != "2025-02-03" {
		t.Errorf("stay dates = %s..%s", core.DateKey(room.CheckIn), core.DateKey(room.CheckOut))
	}
	if room.NightlyRates["2025-02-02"] != 110 {
		t.Errorf("rate = %v, want 110", room.NightlyRates["2025-02-02"])
	}
}

func TestFetchReservationsEmpty(t *testing.T) {
	srv := testServer(t, 0, 0)
	defer srv.Close()

	client := NewClient(srv.URL+"/", "test-key", 2)
	reservations, err := client.FetchReservations(context.Background(), "214969",
		time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC), nil)
	if err != nil {
		t.Fatalf("FetchReservations() error = %v", err)
	}
	if len(reservations) != 0 {
		t.Errorf("FetchReservations() returned %d reservations, want 0", len(reservations))
	}
}

func TestFetchReservationsAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "invalid property",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "test-key", 2)
	_, err := client.FetchReservations(context.Background(), "999",
		time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC), nil)
	if err == nil {
		t.Fatal("FetchReservations() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "invalid property") {
		t.Errorf("error %v does not carry the API message", err)
	}
}
