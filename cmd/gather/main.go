package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/DanyWerfy/CloudBedReports/internal/cli"
	"github.com/DanyWerfy/CloudBedReports/internal/cloudbeds"
	"github.com/DanyWerfy/CloudBedReports/internal/core"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	output := flag.String("output", "", "output path for the reservations dump (default: DATA_DIR/reservations.json)")
	flag.Parse()

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.CloudbedsAPIKey == "" {
		logger.Error("CLOUDBEDS_API_KEY is required to gather reservations")
		os.Exit(1)
	}

	path := *output
	if path == "" {
		path = filepath.Join(cfg.DataDir, "reservations.json")
	}

	resultsFrom, err := core.ParseDate(cfg.ResultsFrom)
	if err != nil {
		logger.Error("Invalid results-from date", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	client := cloudbeds.NewClient(cfg.CloudbedsBaseURL, cfg.CloudbedsAPIKey, cfg.FetchConcurrency)

	var all []core.Reservation
	for _, propertyID := range cfg.CloudbedsPropertyIDs {
		logger.Info("Gathering reservations", "property_id", propertyID)

		var bar *progressbar.ProgressBar
		progress := func(done, total int) {
			if bar == nil {
				bar = progressbar.Default(int64(total), "pages")
			}
			bar.Set(done)
		}

		reservations, err := client.FetchReservations(ctx, propertyID, resultsFrom, progress)
		if err != nil {
			logger.Error("Fetch failed", "error", err, "property_id", propertyID)
			os.Exit(1)
		}
		if bar != nil {
			bar.Finish()
		}
		all = append(all, reservations...)
	}

	if err := cloudbeds.SaveReservationsFile(path, all); err != nil {
		logger.Error("Failed to write reservations dump", "error", err, "path", path)
		os.Exit(1)
	}

	logger.Info("Reservations gathered", "count", len(all), "path", path)
}
