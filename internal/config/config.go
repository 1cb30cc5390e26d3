package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/DanyWerfy/CloudBedReports/internal/core"
)

type Config struct {
	// Cloudbeds API
	CloudbedsAPIKey      string
	CloudbedsBaseURL     string
	CloudbedsPropertyIDs []string
	ResultsFrom          string
	FetchConcurrency     int

	// Aggregation
	NumUnits        int
	LookAheadMonths int
	AnchorDate      string

	// Storage and outputs
	SQLiteDBPath  string
	DataDir       string
	ReportOutput  string
	LegacyCSVPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets publishing (optional)
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

func Load() *Config {
	cfg := &Config{
		CloudbedsAPIKey:      getEnv("CLOUDBEDS_API_KEY", ""),
		CloudbedsBaseURL:     getEnv("CLOUDBEDS_BASE_URL", "https://api.cloudbeds.com/api/v1.3/"),
		CloudbedsPropertyIDs: splitList(getEnv("CLOUDBEDS_PROPERTY_IDS", "")),
		ResultsFrom:          getEnv("CLOUDBEDS_RESULTS_FROM", "2020-01-01"),
		FetchConcurrency:     getEnvInt("FETCH_CONCURRENCY", 4),

		NumUnits:        getEnvInt("NUM_UNITS", 48),
		LookAheadMonths: getEnvInt("LOOK_AHEAD_MONTHS", 6),
		AnchorDate:      getEnv("ANCHOR_DATE", ""),

		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/reports.db"),
		DataDir:       getEnv("DATA_DIR", "./data"),
		ReportOutput:  getEnv("REPORT_OUTPUT", "./data/stats.html"),
		LegacyCSVPath: getEnv("LEGACY_CSV_PATH", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "cloudbedreports"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "stats_refresh"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Monthly Stats"),
	}

	return cfg
}

// Anchor returns the configured aggregation anchor date, defaulting to
// today when ANCHOR_DATE is unset.
func (c *Config) Anchor() (time.Time, error) {
	if c.AnchorDate == "" {
		return core.DayFloor(time.Now().UTC()), nil
	}
	anchor, err := core.ParseDate(c.AnchorDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse anchor date %q: %w", c.AnchorDate, err)
	}
	return anchor, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.NumUnits < 1 {
		errors = append(errors, fmt.Sprintf("invalid unit count %d: must be at least 1", c.NumUnits))
	}
	if c.LookAheadMonths < 0 {
		errors = append(errors, fmt.Sprintf("invalid look-ahead months %d: must not be negative", c.LookAheadMonths))
	} else if c.LookAheadMonths > 36 {
		errors = append(errors, fmt.Sprintf("invalid look-ahead months %d: must be at most 36", c.LookAheadMonths))
	}

	if c.AnchorDate != "" {
		if _, err := core.ParseDate(c.AnchorDate); err != nil {
			errors = append(errors, fmt.Sprintf("invalid anchor date '%s': must be YYYY-MM-DD", c.AnchorDate))
		}
	}

	if _, err := core.ParseDate(c.ResultsFrom); err != nil {
		errors = append(errors, fmt.Sprintf("invalid results-from date '%s': must be YYYY-MM-DD", c.ResultsFrom))
	}

	if c.FetchConcurrency < 1 || c.FetchConcurrency > 32 {
		errors = append(errors, fmt.Sprintf("invalid fetch concurrency %d: must be between 1 and 32", c.FetchConcurrency))
	}

	if c.CloudbedsBaseURL != "" {
		if parsed, err := url.Parse(c.CloudbedsBaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid Cloudbeds base URL '%s': %v", c.CloudbedsBaseURL, err))
		} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid Cloudbeds base URL scheme '%s': must be 'http' or 'https'", parsed.Scheme))
		}
	}

	// Fetching needs credentials and at least one property.
	if c.CloudbedsAPIKey != "" && len(c.CloudbedsPropertyIDs) == 0 {
		errors = append(errors, "at least one Cloudbeds property ID is required when an API key is provided")
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" && c.GoogleSheetName == "" {
		errors = append(errors, "Google sheet name cannot be empty when a spreadsheet ID is provided")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
