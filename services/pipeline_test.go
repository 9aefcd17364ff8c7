package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upwork-job-scorer/config"
	"upwork-job-scorer/models"
)

func newTestPipeline(workers int) *Pipeline {
	logger := newTestLogger()
	return NewPipeline(
		NewNormalizer(logger),
		NewScorer(config.DefaultScoringProfile(), logger),
		logger,
		workers,
	)
}

func TestPipelineFiltersAndPreservesOrder(t *testing.T) {
	var raw []models.RawRecord
	for i := 0; i < 500; i++ {
		rec := models.RawRecord{
			"title":        fmt.Sprintf("Job %03d", i),
			"url":          fmt.Sprintf("https://example.com/jobs/%d", i),
			"client_spent": "$1,000",
			"hourly_rate":  "$50/hr",
		}
		if i%10 == 3 { // 50 records with a blank title
			rec["title"] = "   "
		}
		raw = append(raw, rec)
	}

	res := newTestPipeline(8).Run(raw)

	assert.Equal(t, 500, res.Total)
	assert.Len(t, res.Jobs, 450)
	assert.Len(t, res.Rejected, 50)
	for _, rej := range res.Rejected {
		assert.Equal(t, models.DropEmptyTitle, rej.Reason)
	}

	// Concurrency must not disturb input order.
	assert.Equal(t, "Job 000", res.Jobs[0].Title)
	assert.Equal(t, "Job 001", res.Jobs[1].Title)
	last := ""
	for _, j := range res.Jobs {
		assert.Greater(t, j.Title, last)
		last = j.Title
	}
}

func TestPipelineDeduplicatesByURL(t *testing.T) {
	raw := []models.RawRecord{
		{"title": "First posting", "url": "https://example.com/jobs/1", "client_spent": "$500"},
		{"title": "Different job", "url": "https://example.com/jobs/2", "client_spent": "$500"},
		{"title": "Repost of the first", "url": "https://example.com/jobs/1", "client_spent": "$900"},
	}

	res := newTestPipeline(4).Run(raw)

	require.Len(t, res.Jobs, 2)
	assert.Equal(t, "First posting", res.Jobs[0].Title)
	assert.Equal(t, "Different job", res.Jobs[1].Title)

	require.Len(t, res.Rejected, 1)
	assert.Equal(t, models.DropDuplicateURL, res.Rejected[0].Reason)
	assert.Equal(t, "Repost of the first", res.Rejected[0].Raw["title"])
}

func TestPipelineCountsParseFailures(t *testing.T) {
	raw := []models.RawRecord{
		{"title": "A", "url": "u1", "client_spent": "mystery", "hourly_rate": "$40/hr"},
		{"title": "B", "url": "u2", "client_spent": "unknown", "hourly_rate": "$40/hr", "rating": "great"},
	}

	res := newTestPipeline(2).Run(raw)

	assert.Len(t, res.Jobs, 2)
	assert.Equal(t, 2, res.ParseFailures["client_spent"])
	assert.Equal(t, 1, res.ParseFailures["rating"])
}

func TestPipelineEmptyInput(t *testing.T) {
	res := newTestPipeline(4).Run(nil)

	assert.Equal(t, 0, res.Total)
	assert.Empty(t, res.Jobs)
	assert.Empty(t, res.Rejected)
}
