package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upwork-job-scorer/models"
)

func scoredJob(title string, score float64) *models.ScoredJob {
	return &models.ScoredJob{
		NormalizedJob: models.NormalizedJob{Title: title},
		GoldenScore:   score,
	}
}

func TestGenerateReportAccounting(t *testing.T) {
	res := &Result{
		Total: 6,
		Jobs: []*models.ScoredJob{
			scoredJob("a", 95),
			scoredJob("b", 80),
			scoredJob("c", 55),
			scoredJob("d", 20),
		},
		Rejected: []models.RejectedRecord{
			{Reason: models.DropEmptyTitle},
			{Reason: models.DropDuplicateURL},
		},
		ParseFailures: map[string]int{"rating": 3},
	}

	report := NewInsightService(newTestLogger()).Generate(res)

	assert.Equal(t, 6, report.TotalRecords)
	assert.Equal(t, 4, report.OutputRecords)
	assert.Equal(t, 1, report.DroppedByReason[models.DropEmptyTitle])
	assert.Equal(t, 1, report.DroppedByReason[models.DropDuplicateURL])
	assert.Equal(t, 3, report.ParseFailures["rating"])

	// Every input record is accounted for exactly once.
	dropped := 0
	for _, n := range report.DroppedByReason {
		dropped += n
	}
	assert.Equal(t, report.TotalRecords, report.OutputRecords+dropped)

	assert.InDelta(t, 62.5, report.MeanScore, 0.001)
	assert.Equal(t, 1, report.ScoreBands["90+"])
	assert.Equal(t, 1, report.ScoreBands["75-89"])
	assert.Equal(t, 1, report.ScoreBands["50-74"])
	assert.Equal(t, 1, report.ScoreBands["<25"])
	assert.Zero(t, report.ScoreBands["25-49"])
}

func TestGenerateReportTopJobs(t *testing.T) {
	res := &Result{Total: 8}
	for i := 0; i < 8; i++ {
		res.Jobs = append(res.Jobs, scoredJob(fmt.Sprintf("job-%d", i), float64(10*i)))
	}

	report := NewInsightService(newTestLogger()).Generate(res)

	require.Len(t, report.TopJobs, 5)
	assert.Equal(t, "job-7", report.TopJobs[0].Title)
	assert.Equal(t, 70.0, report.TopJobs[0].GoldenScore)
	for i := 1; i < len(report.TopJobs); i++ {
		assert.GreaterOrEqual(t, report.TopJobs[i-1].GoldenScore, report.TopJobs[i].GoldenScore)
	}

	// Ranking for the report must not reorder the pipeline result itself.
	assert.Equal(t, "job-0", res.Jobs[0].Title)
}

func TestGenerateReportEmptyResult(t *testing.T) {
	report := NewInsightService(newTestLogger()).Generate(&Result{})

	assert.Zero(t, report.TotalRecords)
	assert.Zero(t, report.MeanScore)
	assert.Empty(t, report.TopJobs)
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, "90+"},
		{90, "90+"},
		{89.99, "75-89"},
		{75, "75-89"},
		{50, "50-74"},
		{25, "25-49"},
		{24.99, "<25"},
		{0, "<25"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, bandFor(tt.score), "bandFor(%v)", tt.score)
	}
}
