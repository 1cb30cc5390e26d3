package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/DanyWerfy/CloudBedReports/internal/amqp"
	"github.com/DanyWerfy/CloudBedReports/internal/cli"
	"github.com/DanyWerfy/CloudBedReports/internal/cloudbeds"
	"github.com/DanyWerfy/CloudBedReports/internal/config"
	"github.com/DanyWerfy/CloudBedReports/internal/core"
	"github.com/DanyWerfy/CloudBedReports/internal/report"
	"github.com/DanyWerfy/CloudBedReports/internal/services"
	"github.com/DanyWerfy/CloudBedReports/internal/sheets"
	"github.com/DanyWerfy/CloudBedReports/internal/sheets/google"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	fetch := flag.Bool("fetch", false, "fetch reservations from the Cloudbeds API instead of a local dump")
	reservationsPath := flag.String("reservations", "", "path to a reservations JSON dump (default: DATA_DIR/reservations.json)")
	legacyCSV := flag.String("legacy-csv", "", "import a legacy occupancy extract before aggregating")
	enqueue := flag.Bool("enqueue", false, "queue a refresh request for the report worker instead of running locally")
	flag.Parse()

	cfg := cli.LoadAndValidateConfig(logger)
	ctx := context.Background()

	anchor, err := cfg.Anchor()
	if err != nil {
		logger.Error("Invalid anchor date", "error", err)
		os.Exit(1)
	}

	if *enqueue {
		enqueueRefresh(ctx, logger, cfg)
		return
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	renderer, err := report.NewRenderer()
	if err != nil {
		logger.Error("Failed to initialize report renderer", "error", err)
		os.Exit(1)
	}

	var publisher sheets.StatsPublisher
	if cfg.GoogleSpreadsheetID != "" {
		gclient, err := google.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets publisher", "error", err)
			os.Exit(1)
		}
		publisher = gclient
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Stats-ready notices are best effort; the refresh itself
			// does not depend on the broker.
			logger.Warn("AMQP unavailable, continuing without notifications", "error", err)
			amqpClient = nil
		}
	}

	svc := services.NewReportService(repo, renderer, publisher, amqpClient, cfg.NumUnits, cfg.ReportOutput)
	defer svc.Close()

	csvPath := *legacyCSV
	if csvPath == "" {
		csvPath = cfg.LegacyCSVPath
	}
	if csvPath != "" {
		imported, err := svc.ImportLegacyCSV(ctx, csvPath)
		if err != nil {
			logger.Error("Failed to import legacy extract", "error", err, "path", csvPath)
			os.Exit(1)
		}
		logger.Info("Legacy extract imported", "path", csvPath, "months", imported)
	}

	reservations, err := loadReservations(ctx, cfg, *fetch, *reservationsPath)
	if err != nil {
		logger.Error("Failed to load reservations", "error", err)
		os.Exit(1)
	}
	logger.Info("Reservations loaded", "count", len(reservations))

	start := time.Now()
	outcome, err := svc.Refresh(ctx, anchor, cfg.LookAheadMonths, reservations)
	if err != nil {
		logger.Error("Refresh failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Refresh complete",
		"run_id", outcome.RunID,
		"months", outcome.Months,
		"report", outcome.ReportPath,
		"data_errors", len(outcome.DataErrs),
		"elapsed", time.Since(start).Round(time.Millisecond))
	if len(outcome.DataErrs) > 0 {
		os.Exit(2)
	}
}

func enqueueRefresh(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required to enqueue a refresh")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	msg := amqp.NewRefreshRequestMessage(cfg.AnchorDate, cfg.LookAheadMonths)
	if err := client.PublishRefreshRequest(ctx, msg); err != nil {
		logger.Error("Failed to enqueue refresh request", "error", err)
		os.Exit(1)
	}
}

func loadReservations(ctx context.Context, cfg *config.Config, fetch bool, path string) ([]core.Reservation, error) {
	if path == "" {
		path = filepath.Join(cfg.DataDir, "reservations.json")
	}
	if !fetch {
		return cloudbeds.LoadReservationsFile(path)
	}

	client := cloudbeds.NewClient(cfg.CloudbedsBaseURL, cfg.CloudbedsAPIKey, cfg.FetchConcurrency)
	resultsFrom, err := core.ParseDate(cfg.ResultsFrom)
	if err != nil {
		return nil, err
	}

	var all []core.Reservation
	for _, propertyID := range cfg.CloudbedsPropertyIDs {
		reservations, err := client.FetchReservations(ctx, propertyID, resultsFrom, nil)
		if err != nil {
			return nil, err
		}
		all = append(all, reservations...)
	}

	// Keep a local dump so later runs can skip the fetch.
	if err := cloudbeds.SaveReservationsFile(path, all); err != nil {
		return nil, err
	}
	return all, nil
}
