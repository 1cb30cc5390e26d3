package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	appamqp "github.com/DanyWerfy/CloudBedReports/internal/amqp"
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
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the report worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	renderer, err := report.NewRenderer()
	if err != nil {
		logger.Error("Failed to initialize report renderer", "error", err)
		os.Exit(1)
	}

	var publisher sheets.StatsPublisher
	if cfg.GoogleSpreadsheetID != "" {
		gclient, err := google.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets publisher", "error", err)
			os.Exit(1)
		}
		publisher = gclient
	}

	amqpClient, err := appamqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", "error", err)
		os.Exit(1)
	}

	svc := services.NewReportService(repo, renderer, publisher, amqpClient, cfg.NumUnits, cfg.ReportOutput)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if err := svc.Close(); err != nil {
			logger.Error("Cleanup error", "error", err)
		}
	})

	logger.Info("Report worker started", "queue", cfg.AMQPQueue)

	err = amqpClient.ConsumeRefreshRequests(ctx, func(msg *appamqp.RefreshRequestMessage) error {
		return handleRefresh(ctx, cfg, svc, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	<-done
	logger.Info("Report worker stopped gracefully")
}

func handleRefresh(ctx context.Context, cfg *config.Config, svc *services.ReportService, msg *appamqp.RefreshRequestMessage) error {
	anchor, err := cfg.Anchor()
	if err != nil {
		return err
	}
	if msg.Anchor != "" {
		anchor, err = core.ParseDate(msg.Anchor)
		if err != nil {
			return err
		}
	}

	lookAhead := msg.LookAheadMonths
	if lookAhead <= 0 {
		lookAhead = cfg.LookAheadMonths
	}

	reservations, err := loadReservations(ctx, cfg)
	if err != nil {
		return err
	}

	_, err = svc.Refresh(ctx, anchor, lookAhead, reservations)
	return err
}

// loadReservations prefers a fresh API fetch when credentials are
// configured, falling back to the local dump.
func loadReservations(ctx context.Context, cfg *config.Config) ([]core.Reservation, error) {
	path := filepath.Join(cfg.DataDir, "reservations.json")
	if cfg.CloudbedsAPIKey == "" {
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

	if err := cloudbeds.SaveReservationsFile(path, all); err != nil {
		return nil, err
	}
	return all, nil
}
