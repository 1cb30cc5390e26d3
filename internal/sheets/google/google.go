// Package google publishes monthly statistics to a Google Spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	ports "github.com/DanyWerfy/CloudBedReports/internal/sheets"
	"github.com/DanyWerfy/CloudBedReports/internal/stats"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.StatsPublisher = (*Client)(nil)

// New creates a Sheets client for the given spreadsheet and sheet.
// Credentials come from GOOGLE_CREDENTIALS_JSON or Application Default
// Credentials.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetName) == "" {
		return nil, errors.New("missing sheet name")
	}

	var opts []goption.ClientOption
	if credsJSON := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_JSON")); credsJSON != "" {
		opts = append(opts, goption.WithCredentialsJSON([]byte(credsJSON)))
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

var statsHeader = []any{
	"Month", "Occupancy %", "Nights Rented", "Possible Nights",
	"Reservations", "Cancelled", "Cancelation %", "Avg Length of Stay",
	"Booking Lead Time", "Total Revenue", "Possible Revenue",
	"Avg Revenue", "ADR", "RevPAR",
}

// PublishMonthlyStats replaces the sheet's contents with a header row
// and one row per month, in calendar order.
func (c *Client) PublishMonthlyStats(ctx context.Context, months map[string]*stats.MonthBucket) error {
	keys := make([]string, 0, len(months))
	for key := range months {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	values := [][]any{statsHeader}
	for _, key := range keys {
		b := months[key]
		values = append(values, []any{
			key, b.OccupancyPercent, b.NightsRented, b.PossibleNights,
			b.NumReservations, b.CancelledReservations, b.CancelationRate,
			b.AvgLengthOfStay, b.BookingLeadTime, b.TotalRevenue,
			b.PossibleRevenue, b.AvgRevenue, b.AvgDailyRate, b.RevPAR,
		})
	}

	clearRange := fmt.Sprintf("%s!A:Z", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear sheet %s: %w", c.sheetName, err)
	}

	writeRange := fmt.Sprintf("%s!A1", c.sheetName)
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write sheet %s: %w", c.sheetName, err)
	}

	slog.InfoContext(ctx, "Monthly stats published to Google Sheets",
		"spreadsheet_id", c.spreadsheetID,
		"sheet", c.sheetName,
		"months", len(keys))
	return nil
}
