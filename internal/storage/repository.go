// Package storage persists aggregation snapshots so each refresh keeps
// a durable record of what was published and when.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/DanyWerfy/CloudBedReports/internal/core"
	"github.com/DanyWerfy/CloudBedReports/internal/legacy"
	"github.com/DanyWerfy/CloudBedReports/internal/stats"
)

var ErrNoRuns = errors.New("no aggregation runs stored")

type SQLiteRepository struct {
	db *sql.DB
}

// RunSnapshot is one stored aggregation run with its monthly stats.
type RunSnapshot struct {
	ID              string
	Anchor          time.Time
	LookAheadMonths int
	NumUnits        int
	CreatedAt       time.Time
	Months          map[string]*stats.MonthBucket
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveRun stores an aggregation result as a new snapshot and returns
// its run id.
func (r *SQLiteRepository) SaveRun(ctx context.Context, result *stats.Result, numUnits int) (string, error) {
	runID := ulid.Make().String()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, anchor, look_ahead_months, num_units) VALUES (?, ?, ?, ?)`,
		runID, core.DateKey(result.Anchor), result.LookAheadMonths, numUnits)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for month, b := range result.Months {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO monthly_stats (
				run_id, month, occupancy_percent, nights_rented, num_reservations,
				cancelled_reservations, cancelation_rate, possible_nights,
				avg_length_of_stay, total_revenue, possible_revenue, avg_revenue,
				booking_lead_time, total_booking_lead_time, avg_daily_rate, rev_par
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, month, b.OccupancyPercent, b.NightsRented, b.NumReservations,
			b.CancelledReservations, b.CancelationRate, b.PossibleNights,
			b.AvgLengthOfStay, b.TotalRevenue, b.PossibleRevenue, b.AvgRevenue,
			b.BookingLeadTime, b.TotalBookingLeadTime, b.AvgDailyRate, b.RevPAR)
		if err != nil {
			return "", fmt.Errorf("insert monthly stats for %s: %w", month, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}

	slog.InfoContext(ctx, "Aggregation run saved",
		"run_id", runID,
		"anchor", core.DateKey(result.Anchor),
		"months", len(result.Months))

	return runID, nil
}

// LatestRun returns the most recently stored snapshot.
func (r *SQLiteRepository) LatestRun(ctx context.Context) (*RunSnapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, anchor, look_ahead_months, num_units, created_at
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`)

	snapshot, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRuns
		}
		return nil, fmt.Errorf("query latest run: %w", err)
	}
	if err := r.loadMonths(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// GetRun returns one stored snapshot by id.
func (r *SQLiteRepository) GetRun(ctx context.Context, runID string) (*RunSnapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, anchor, look_ahead_months, num_units, created_at
		 FROM runs WHERE id = ?`, runID)

	snapshot, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", runID, ErrNoRuns)
		}
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}
	if err := r.loadMonths(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func scanRun(row *sql.Row) (*RunSnapshot, error) {
	var (
		snapshot RunSnapshot
		anchor   string
	)
	err := row.Scan(&snapshot.ID, &anchor, &snapshot.LookAheadMonths, &snapshot.NumUnits, &snapshot.CreatedAt)
	if err != nil {
		return nil, err
	}
	snapshot.Anchor, err = core.ParseDate(anchor)
	if err != nil {
		return nil, fmt.Errorf("parse stored anchor %q: %w", anchor, err)
	}
	return &snapshot, nil
}

func (r *SQLiteRepository) loadMonths(ctx context.Context, snapshot *RunSnapshot) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT month, occupancy_percent, nights_rented, num_reservations,
			cancelled_reservations, cancelation_rate, possible_nights,
			avg_length_of_stay, total_revenue, possible_revenue, avg_revenue,
			booking_lead_time, total_booking_lead_time, avg_daily_rate, rev_par
		 FROM monthly_stats WHERE run_id = ? ORDER BY month`, snapshot.ID)
	if err != nil {
		return fmt.Errorf("query monthly stats: %w", err)
	}
	defer rows.Close()

	snapshot.Months = make(map[string]*stats.MonthBucket)
	for rows.Next() {
		var (
			month  string
			bucket stats.MonthBucket
		)
		err := rows.Scan(&month, &bucket.OccupancyPercent, &bucket.NightsRented,
			&bucket.NumReservations, &bucket.CancelledReservations,
			&bucket.CancelationRate, &bucket.PossibleNights,
			&bucket.AvgLengthOfStay, &bucket.TotalRevenue,
			&bucket.PossibleRevenue, &bucket.AvgRevenue,
			&bucket.BookingLeadTime, &bucket.TotalBookingLeadTime,
			&bucket.AvgDailyRate, &bucket.RevPAR)
		if err != nil {
			return fmt.Errorf("scan monthly stats: %w", err)
		}
		snapshot.Months[month] = &bucket
	}
	return rows.Err()
}

// SaveLegacyMonths upserts imported legacy records. Re-importing the
// same extract is harmless.
func (r *SQLiteRepository) SaveLegacyMonths(ctx context.Context, records []legacy.MonthRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, record := range records {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO legacy_months (month, occupancy_percent, nights_occupied)
			 VALUES (?, ?, ?)
			 ON CONFLICT(month) DO UPDATE SET
				occupancy_percent = excluded.occupancy_percent,
				nights_occupied = excluded.nights_occupied`,
			record.Key(), record.OccupancyPercent, record.NightsOccupied)
		if err != nil {
			return fmt.Errorf("upsert legacy month %s: %w", record.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit legacy months: %w", err)
	}

	slog.InfoContext(ctx, "Legacy months saved", "count", len(records))
	return nil
}

// LegacyMonths returns all imported legacy records, oldest first.
func (r *SQLiteRepository) LegacyMonths(ctx context.Context) ([]legacy.MonthRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT month, occupancy_percent, nights_occupied FROM legacy_months ORDER BY month`)
	if err != nil {
		return nil, fmt.Errorf("query legacy months: %w", err)
	}
	defer rows.Close()

	var records []legacy.MonthRecord
	for rows.Next() {
		var (
			month     string
			occupancy float64
			nights    int
		)
		if err := rows.Scan(&month, &occupancy, &nights); err != nil {
			return nil, fmt.Errorf("scan legacy month: %w", err)
		}
		parsed, err := time.Parse(core.MonthLayout, month)
		if err != nil {
			return nil, fmt.Errorf("parse stored month %q: %w", month, err)
		}
		records = append(records, legacy.MonthRecord{
			Year:             parsed.Year(),
			Month:            int(parsed.Month()),
			OccupancyPercent: occupancy,
			NightsOccupied:   nights,
		})
	}
	return records, rows.Err()
}
