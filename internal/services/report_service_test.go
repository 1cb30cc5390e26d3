package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DanyWerfy/CloudBedReports/internal/core"
	"github.com/DanyWerfy/CloudBedReports/internal/report"
	"github.com/DanyWerfy/CloudBedReports/internal/stats"
	"github.com/DanyWerfy/CloudBedReports/internal/storage"
)

type capturingPublisher struct {
	published map[string]*stats.MonthBucket
}

func (p *capturingPublisher) PublishMonthlyStats(_ context.Context, months map[string]*stats.MonthBucket) error {
	p.published = months
	return nil
}

func newTestService(t *testing.T, publisher *capturingPublisher) (*ReportService, string) {
	t.Helper()

	dir := t.TempDir()
	repo, err := storage.NewSQLiteRepository(filepath.Join(dir, "reports.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	renderer, err := report.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	output := filepath.Join(dir, "stats.html")
	svc := NewReportService(repo, renderer, publisher, nil, 10, output)
	return svc, output
}

func fixtureReservations() []core.Reservation {
	checkIn := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2025, time.January, 13, 0, 0, 0, 0, time.UTC)
	rates := map[string]float64{}
	for night := checkIn; night.Before(checkOut); night = night.AddDate(0, 0, 1) {
		rates[core.DateKey(night)] = 120
	}
	return []core.Reservation{
		{
			ID:          "R-1",
			DateCreated: time.Date(2025, time.January, 2, 9, 0, 0, 0, time.UTC),
			Rooms: []core.RoomStay{
				{
					RoomID:       "101",
					Status:       core.StatusNotCheckedIn,
					CheckIn:      checkIn,
					CheckOut:     checkOut,
					NightlyRates: rates,
				},
			},
		},
	}
}

func TestRefresh(t *testing.T) {
	publisher := &capturingPublisher{}
	svc, output := newTestService(t, publisher)
	ctx := context.Background()

	anchor := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	outcome, err := svc.Refresh(ctx, anchor, 2, fixtureReservations())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if outcome.RunID == "" {
		t.Error("Refresh() returned empty run id")
	}
	if outcome.Months != 1 {
		t.Errorf("Refresh() months = %d, want 1", outcome.Months)
	}
	if len(outcome.DataErrs) != 0 {
		t.Errorf("Refresh() data errors = %v, want none", outcome.DataErrs)
	}

	// Report written to disk.
	html, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(html), "2025-01") {
		t.Error("report missing aggregated month")
	}

	// Publisher saw the same months.
	if publisher.published == nil {
		t.Fatal("publisher was not called")
	}
	if _, ok := publisher.published["2025-01"]; !ok {
		t.Error("publisher missing 2025-01")
	}
}

func TestRefreshMergesLegacyMonths(t *testing.T) {
	svc, _ := newTestService(t, &capturingPublisher{})
	ctx := context.Background()

	csvPath := filepath.Join(t.TempDir(), "legacy.csv")
	extract := "Year,Month,Occupancy,NightsOccupied\n2024,1,62,921\n2025,1,99,999\n"
	if err := os.WriteFile(csvPath, []byte(extract), 0644); err != nil {
		t.Fatal(err)
	}
	imported, err := svc.ImportLegacyCSV(ctx, csvPath)
	if err != nil {
		t.Fatalf("ImportLegacyCSV() error = %v", err)
	}
	if imported != 2 {
		t.Errorf("ImportLegacyCSV() = %d, want 2", imported)
	}

	anchor := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	outcome, err := svc.Refresh(ctx, anchor, 2, fixtureReservations())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	// 2024-01 comes from the legacy extract, 2025-01 from aggregation;
	// the legacy 2025-01 row must not overwrite the fresh one.
	if outcome.Months != 2 {
		t.Errorf("Refresh() months = %d, want 2", outcome.Months)
	}

	snapshot, err := svcLatest(svc, ctx)
	if err != nil {
		t.Fatalf("LatestRun() error = %v", err)
	}
	if snapshot.Months["2024-01"] == nil || snapshot.Months["2024-01"].NightsRented != 921 {
		t.Errorf("legacy month missing from snapshot: %+v", snapshot.Months["2024-01"])
	}
	if snapshot.Months["2025-01"].OccupancyPercent == 99 {
		t.Error("legacy row overwrote freshly aggregated month")
	}
}

func svcLatest(svc *ReportService, ctx context.Context) (*storage.RunSnapshot, error) {
	return svc.storage.LatestRun(ctx)
}
