package legacy

import (
	"strings"
	"testing"

	"github.com/DanyWerfy/CloudBedReports/internal/stats"
)

const sampleExtract = `Year,Month,Occupancy,NightsOccupied
2024,1,62,921
2024,2,58.5,815
2024,11,70,1008
`

func TestReadCSV(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(sampleExtract))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("ReadCSV() returned %d records, want 3", len(records))
	}

	first := records[0]
	if first.Key() != "2024-01" {
		t.Errorf("Key() = %s, want 2024-01 (single-digit months are zero padded)", first.Key())
	}
	if first.OccupancyPercent != 62 || first.NightsOccupied != 921 {
		t.Errorf("record = %+v, want occupancy 62, nights 921", first)
	}
	if records[1].OccupancyPercent != 58.5 {
		t.Errorf("OccupancyPercent = %v, want 58.5", records[1].OccupancyPercent)
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing column", "Year,Month,Occupancy\n2024,1,62\n"},
		{"bad month", "Year,Month,Occupancy,NightsOccupied\n2024,13,62,921\n"},
		{"bad occupancy", "Year,Month,Occupancy,NightsOccupied\n2024,1,n/a,921\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.input)); err == nil {
				t.Error("ReadCSV() error = nil, want error")
			}
		})
	}
}

func TestMerge(t *testing.T) {
	months := map[string]*stats.MonthBucket{
		"2024-11": {OccupancyPercent: 81.25, NightsRented: 1170},
	}
	records, err := ReadCSV(strings.NewReader(sampleExtract))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}

	added := Merge(months, records)

	if added != 2 {
		t.Errorf("Merge() added = %d, want 2", added)
	}
	if len(months) != 3 {
		t.Fatalf("Merge() left %d months, want 3", len(months))
	}
	// Freshly aggregated months win over legacy rows.
	if months["2024-11"].OccupancyPercent != 81.25 {
		t.Errorf("Merge() overwrote existing month: %+v", months["2024-11"])
	}
	if months["2024-01"].NightsRented != 921 {
		t.Errorf("Merge() 2024-01 nights = %d, want 921", months["2024-01"].NightsRented)
	}
}
