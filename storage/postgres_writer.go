package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"sales-pipeline/models"
)

// PostgresWriter persists the monthly aggregate to PostgreSQL. It is an
// optional sink: the pipeline's core outputs are the chart and the CSV.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS monthly_average (
			month          SMALLINT PRIMARY KEY CHECK (month BETWEEN 1 AND 12),
			avg_units_sold DOUBLE PRECISION NOT NULL,
			computed_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

// Write upserts every month bucket, replacing the previous run's value.
func (pw *PostgresWriter) Write(agg []models.MonthlyAverage) error {
	if len(agg) == 0 {
		return nil
	}

	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}

	for _, bucket := range agg {
		_, err := tx.Exec(`
			INSERT INTO monthly_average (month, avg_units_sold, computed_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (month) DO UPDATE
			SET avg_units_sold = EXCLUDED.avg_units_sold,
			    computed_at    = EXCLUDED.computed_at
		`, bucket.Month, bucket.AvgUnitsSold)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("postgres: upsert month %d: %w", bucket.Month, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// FetchAll retrieves the stored aggregate ordered by month.
func (pw *PostgresWriter) FetchAll() ([]models.MonthlyAverage, error) {
	rows, err := pw.db.Query(`
		SELECT month, avg_units_sold
		FROM monthly_average
		ORDER BY month
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var agg []models.MonthlyAverage
	for rows.Next() {
		var bucket models.MonthlyAverage
		if err := rows.Scan(&bucket.Month, &bucket.AvgUnitsSold); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		agg = append(agg, bucket)
	}
	return agg, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
