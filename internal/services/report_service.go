// Package services orchestrates the reporting pipeline: aggregate,
// persist, render and publish.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/DanyWerfy/CloudBedReports/internal/amqp"
	"github.com/DanyWerfy/CloudBedReports/internal/core"
	"github.com/DanyWerfy/CloudBedReports/internal/legacy"
	"github.com/DanyWerfy/CloudBedReports/internal/report"
	"github.com/DanyWerfy/CloudBedReports/internal/sheets"
	"github.com/DanyWerfy/CloudBedReports/internal/stats"
	"github.com/DanyWerfy/CloudBedReports/internal/storage"
)

// ReportService ties the aggregation engine to its collaborators. The
// AMQP client and the sheets publisher are optional; a nil value skips
// that step.
type ReportService struct {
	storage      *storage.SQLiteRepository
	renderer     *report.Renderer
	publisher    sheets.StatsPublisher
	amqpClient   *amqp.Client
	units        int
	reportOutput string
}

// RefreshOutcome summarizes one completed refresh.
type RefreshOutcome struct {
	RunID      string
	Months     int
	ReportPath string
	DataErrs   []error
}

func NewReportService(storage *storage.SQLiteRepository, renderer *report.Renderer, publisher sheets.StatsPublisher, amqpClient *amqp.Client, units int, reportOutput string) *ReportService {
	return &ReportService{
		storage:      storage,
		renderer:     renderer,
		publisher:    publisher,
		amqpClient:   amqpClient,
		units:        units,
		reportOutput: reportOutput,
	}
}

// Refresh runs the full pipeline over an already-materialized
// reservation list: aggregate, merge legacy months, persist the
// snapshot, render the report, then publish.
//
// Per-reservation data errors (such as missing nightly rates) do not
// abort the refresh; they are logged and returned in the outcome so a
// batch with a few bad records still produces results for the rest.
func (s *ReportService) Refresh(ctx context.Context, anchor time.Time, lookAheadMonths int, reservations []core.Reservation) (*RefreshOutcome, error) {
	agg, err := stats.NewAggregator(s.units, core.ActiveStatuses)
	if err != nil {
		return nil, err
	}

	result, err := agg.Run(ctx, anchor, lookAheadMonths, reservations)
	if err != nil {
		return nil, fmt.Errorf("aggregate reservations: %w", err)
	}
	for _, dataErr := range result.Errs {
		slog.ErrorContext(ctx, "Reservation excluded from aggregation", "error", dataErr)
	}
	if result.SkippedNights > 0 || result.SkippedCancellations > 0 {
		slog.WarnContext(ctx, "Aggregation skipped out-of-window entries",
			"skipped_nights", result.SkippedNights,
			"skipped_cancellations", result.SkippedCancellations)
	}

	if err := s.mergeLegacyMonths(ctx, result.Months); err != nil {
		return nil, err
	}

	runID, err := s.storage.SaveRun(ctx, result, s.units)
	if err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}

	outcome := &RefreshOutcome{
		RunID:    runID,
		Months:   len(result.Months),
		DataErrs: result.Errs,
	}

	if s.reportOutput != "" {
		if err := s.renderer.RenderFile(s.reportOutput, result.Months, time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("render report: %w", err)
		}
		outcome.ReportPath = s.reportOutput
		slog.InfoContext(ctx, "Report rendered", "path", s.reportOutput)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishMonthlyStats(ctx, result.Months); err != nil {
			// The snapshot and report already exist; publishing can be
			// retried on the next refresh.
			slog.ErrorContext(ctx, "Failed to publish stats to sheets", "error", err)
		}
	}

	if s.amqpClient != nil {
		msg := &amqp.StatsReadyMessage{
			RunID:       runID,
			Months:      outcome.Months,
			ReportPath:  outcome.ReportPath,
			CompletedAt: time.Now().UTC(),
		}
		if err := s.amqpClient.PublishStatsReady(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish stats ready notice", "error", err)
		}
	}

	return outcome, nil
}

func (s *ReportService) mergeLegacyMonths(ctx context.Context, months map[string]*stats.MonthBucket) error {
	records, err := s.storage.LegacyMonths(ctx)
	if err != nil {
		return fmt.Errorf("load legacy months: %w", err)
	}
	if len(records) == 0 {
		return nil
	}
	added := legacy.Merge(months, records)
	if added > 0 {
		slog.InfoContext(ctx, "Merged legacy months", "added", added)
	}
	return nil
}

// ImportLegacyCSV loads a legacy occupancy extract into the store so
// future refreshes include its months.
func (s *ReportService) ImportLegacyCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open legacy extract: %w", err)
	}
	defer f.Close()

	records, err := legacy.ReadCSV(f)
	if err != nil {
		return 0, fmt.Errorf("parse legacy extract %s: %w", path, err)
	}
	if err := s.storage.SaveLegacyMonths(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Close releases the service's connections.
func (s *ReportService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close report service: %v", errs)
	}
	return nil
}
