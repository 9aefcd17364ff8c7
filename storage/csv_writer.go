package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"upwork-job-scorer/models"
)

// csvHeader is the canonical scored-record schema, in output column order.
var csvHeader = []string{
	"title", "url", "country", "description", "time_posted", "skill_level",
	"client_total_spent", "spend_known",
	"hourly_rate_low", "hourly_rate_high",
	"estimated_budget", "budget_known",
	"client_rating", "payment_verified",
	"hours_per_week", "duration", "skill_tags",
	"golden_score",
	"score_spending", "score_budget", "score_reputation",
	"score_skill_alignment", "score_commitment",
	"recommendations",
}

// CSVWriter writes scored jobs to an RFC 4180 CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends one row per scored job.
func (c *CSVWriter) Write(jobs []*models.ScoredJob) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, j := range jobs {
		row := []string{
			j.Title,
			j.URL,
			j.Country,
			j.Description,
			j.TimePosted,
			j.SkillLevel,
			formatFloat(j.ClientTotalSpent),
			strconv.FormatBool(j.SpendKnown),
			formatFloat(j.HourlyRateLow),
			formatFloat(j.HourlyRateHigh),
			formatFloat(j.EstimatedBudget),
			strconv.FormatBool(j.BudgetKnown),
			formatOptional(j.ClientRating),
			strconv.FormatBool(j.PaymentVerified),
			formatOptional(j.HoursPerWeek),
			j.Duration,
			strings.Join(j.SkillTags, ", "),
			formatFloat(j.GoldenScore),
			formatFloat(j.ScoreBreakdown[models.ComponentSpending]),
			formatFloat(j.ScoreBreakdown[models.ComponentBudget]),
			formatFloat(j.ScoreBreakdown[models.ComponentReputation]),
			formatFloat(j.ScoreBreakdown[models.ComponentSkillAlignment]),
			formatFloat(j.ScoreBreakdown[models.ComponentCommitment]),
			strings.Join(j.Recommendations, "; "),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func formatOptional(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}
