// Package legacy imports coarse monthly occupancy extracts kept from
// the property's previous reporting tool and merges them with freshly
// aggregated statistics.
package legacy

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/DanyWerfy/CloudBedReports/internal/stats"
)

// MonthRecord is one row of the legacy extract: only occupancy and
// nights were tracked back then.
type MonthRecord struct {
	Year             int
	Month            int
	OccupancyPercent float64
	NightsOccupied   int
}

// Key returns the record's "2006-01" month key.
func (m MonthRecord) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// ReadCSV parses a legacy extract with Year, Month, Occupancy and
// NightsOccupied columns.
func ReadCSV(r io.Reader) ([]MonthRecord, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"Year", "Month", "Occupancy", "NightsOccupied"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q in legacy extract", required)
		}
	}

	var records []MonthRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		record, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func parseRow(row []string, cols map[string]int) (MonthRecord, error) {
	year, err := strconv.Atoi(row[cols["Year"]])
	if err != nil {
		return MonthRecord{}, fmt.Errorf("parse year: %w", err)
	}
	month, err := strconv.Atoi(row[cols["Month"]])
	if err != nil {
		return MonthRecord{}, fmt.Errorf("parse month: %w", err)
	}
	if month < 1 || month > 12 {
		return MonthRecord{}, fmt.Errorf("month %d out of range", month)
	}
	occupancy, err := strconv.ParseFloat(row[cols["Occupancy"]], 64)
	if err != nil {
		return MonthRecord{}, fmt.Errorf("parse occupancy: %w", err)
	}
	nights, err := strconv.Atoi(row[cols["NightsOccupied"]])
	if err != nil {
		return MonthRecord{}, fmt.Errorf("parse nights occupied: %w", err)
	}
	return MonthRecord{
		Year:             year,
		Month:            month,
		OccupancyPercent: occupancy,
		NightsOccupied:   nights,
	}, nil
}

// Merge adds legacy months to an aggregated mapping. A legacy record
// never overwrites a freshly aggregated month: keys already present are
// left untouched. Returns the number of months added.
func Merge(months map[string]*stats.MonthBucket, records []MonthRecord) int {
	added := 0
	for _, record := range records {
		key := record.Key()
		if _, ok := months[key]; ok {
			continue
		}
		months[key] = &stats.MonthBucket{
			OccupancyPercent: record.OccupancyPercent,
			NightsRented:     record.NightsOccupied,
		}
		added++
	}
	return added
}
