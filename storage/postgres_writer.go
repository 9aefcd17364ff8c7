package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"upwork-job-scorer/models"
)

// PostgresWriter persists scored jobs to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
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
		CREATE TABLE IF NOT EXISTS scored_jobs (
			id                 SERIAL PRIMARY KEY,
			title              TEXT          NOT NULL,
			url                TEXT          NOT NULL DEFAULT '',
			country            TEXT          NOT NULL DEFAULT '',
			description        TEXT          NOT NULL DEFAULT '',
			time_posted        TEXT          NOT NULL DEFAULT '',
			skill_level        TEXT          NOT NULL DEFAULT '',
			client_total_spent NUMERIC(14,2) NOT NULL DEFAULT 0,
			spend_known        BOOLEAN       NOT NULL DEFAULT FALSE,
			hourly_rate_low    NUMERIC(10,2) NOT NULL DEFAULT 0,
			hourly_rate_high   NUMERIC(10,2) NOT NULL DEFAULT 0,
			estimated_budget   NUMERIC(14,2) NOT NULL DEFAULT 0,
			budget_known       BOOLEAN       NOT NULL DEFAULT FALSE,
			client_rating      NUMERIC(4,2),
			payment_verified   BOOLEAN       NOT NULL DEFAULT FALSE,
			hours_per_week     NUMERIC(6,2),
			duration           VARCHAR(20)   NOT NULL DEFAULT '',
			skill_tags         TEXT          NOT NULL DEFAULT '',
			golden_score       NUMERIC(6,2)  NOT NULL DEFAULT 0,
			score_breakdown    JSONB         NOT NULL DEFAULT '{}',
			recommendations    TEXT          NOT NULL DEFAULT '',
			created_at         TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_scored_jobs_score    ON scored_jobs(golden_score);
		CREATE INDEX IF NOT EXISTS idx_scored_jobs_country  ON scored_jobs(country);
		CREATE INDEX IF NOT EXISTS idx_scored_jobs_verified ON scored_jobs(payment_verified);
	`)
	return err
}

// Clear deletes all existing scored jobs from the table.
func (pw *PostgresWriter) Clear() error {
	_, err := pw.db.Exec("DELETE FROM scored_jobs")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write batch-inserts ALL scored jobs, clearing old data first. Score
// history is not kept across runs.
func (pw *PostgresWriter) Write(jobs []*models.ScoredJob) error {
	if len(jobs) == 0 {
		return nil
	}

	if err := pw.Clear(); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(jobs); i += batchSize {
		end := i + batchSize
		if end > len(jobs) {
			end = len(jobs)
		}
		if err := pw.insertBatch(jobs[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.ScoredJob) error {
	const cols = 21
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, j := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for p := 0; p < cols; p++ {
			placeholders[p] = fmt.Sprintf("$%d", base+p+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		breakdown, err := json.Marshal(j.ScoreBreakdown)
		if err != nil {
			return fmt.Errorf("postgres: marshal breakdown: %w", err)
		}

		valueArgs = append(valueArgs,
			j.Title, j.URL, j.Country, j.Description, j.TimePosted, j.SkillLevel,
			j.ClientTotalSpent, j.SpendKnown,
			j.HourlyRateLow, j.HourlyRateHigh,
			j.EstimatedBudget, j.BudgetKnown,
			nullableFloat(j.ClientRating), j.PaymentVerified,
			nullableFloat(j.HoursPerWeek), j.Duration,
			strings.Join(j.SkillTags, ", "),
			j.GoldenScore, breakdown,
			strings.Join(j.Recommendations, "; "),
			time.Now(),
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO scored_jobs (
			title, url, country, description, time_posted, skill_level,
			client_total_spent, spend_known,
			hourly_rate_low, hourly_rate_high,
			estimated_budget, budget_known,
			client_rating, payment_verified,
			hours_per_week, duration, skill_tags,
			golden_score, score_breakdown, recommendations, created_at
		)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored scored jobs in insertion order.
func (pw *PostgresWriter) FetchAll() ([]*models.ScoredJob, error) {
	rows, err := pw.db.Query(`
		SELECT title, url, country, description, time_posted, skill_level,
		       client_total_spent, spend_known,
		       hourly_rate_low, hourly_rate_high,
		       estimated_budget, budget_known,
		       client_rating, payment_verified,
		       hours_per_week, duration, skill_tags,
		       golden_score, score_breakdown, recommendations
		FROM scored_jobs
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var jobs []*models.ScoredJob
	for rows.Next() {
		j := &models.ScoredJob{}
		var (
			rating    sql.NullFloat64
			hours     sql.NullFloat64
			tags      string
			breakdown []byte
			recs      string
		)
		if err := rows.Scan(
			&j.Title, &j.URL, &j.Country, &j.Description, &j.TimePosted, &j.SkillLevel,
			&j.ClientTotalSpent, &j.SpendKnown,
			&j.HourlyRateLow, &j.HourlyRateHigh,
			&j.EstimatedBudget, &j.BudgetKnown,
			&rating, &j.PaymentVerified,
			&hours, &j.Duration, &tags,
			&j.GoldenScore, &breakdown, &recs,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}

		if rating.Valid {
			v := rating.Float64
			j.ClientRating = &v
		}
		if hours.Valid {
			v := hours.Float64
			j.HoursPerWeek = &v
		}
		if tags != "" {
			j.SkillTags = strings.Split(tags, ", ")
		}
		if recs != "" {
			j.Recommendations = strings.Split(recs, "; ")
		}
		if err := json.Unmarshal(breakdown, &j.ScoreBreakdown); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal breakdown: %w", err)
		}

		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func nullableFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
