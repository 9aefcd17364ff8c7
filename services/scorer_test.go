package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upwork-job-scorer/config"
	"upwork-job-scorer/models"
)

func defaultScorer() *Scorer {
	return NewScorer(config.DefaultScoringProfile(), newTestLogger())
}

func TestSpendingScoreSaturatesLogarithmically(t *testing.T) {
	s := defaultScorer()

	zero := s.spendingScore(&models.NormalizedJob{ClientTotalSpent: 0})
	small := s.spendingScore(&models.NormalizedJob{ClientTotalSpent: 1000})
	mid := s.spendingScore(&models.NormalizedJob{ClientTotalSpent: 5000})
	atCap := s.spendingScore(&models.NormalizedJob{ClientTotalSpent: 10000})
	beyond := s.spendingScore(&models.NormalizedJob{ClientTotalSpent: 500000})

	assert.Equal(t, 0.0, zero)
	assert.Greater(t, small, 0.0)
	assert.Greater(t, mid, small)
	assert.InDelta(t, 1.0, atCap, 1e-9)
	assert.Equal(t, 1.0, beyond)
}

func TestBudgetScoreAgainstRateBand(t *testing.T) {
	s := defaultScorer() // band 25-75

	tests := []struct {
		low, high float64
		want      float64
	}{
		{10, 20, 0},    // midpoint below band
		{0, 0, 0},      // no rate at all
		{40, 60, 0.5},  // midpoint 50, halfway through band
		{75, 100, 1},   // midpoint at or above ceiling
		{200, 300, 1},  // far above ceiling still capped
	}

	for _, tt := range tests {
		got := s.budgetScore(&models.NormalizedJob{HourlyRateLow: tt.low, HourlyRateHigh: tt.high})
		assert.InDelta(t, tt.want, got, 1e-9, "budgetScore(%v-%v)", tt.low, tt.high)
	}
}

func TestReputationScoreUsesNeutralDefault(t *testing.T) {
	s := defaultScorer()

	// An unrated client is not treated as a zero-rated one.
	assert.InDelta(t, 0.7, s.reputationScore(&models.NormalizedJob{}), 1e-9)

	rating := 4.0
	assert.InDelta(t, 0.8, s.reputationScore(&models.NormalizedJob{ClientRating: &rating}), 1e-9)
}

func TestSkillAlignmentScore(t *testing.T) {
	// No configured targets means alignment does not discriminate.
	assert.Equal(t, 1.0, defaultScorer().skillAlignmentScore(&models.NormalizedJob{}))

	profile := config.DefaultScoringProfile()
	profile.TargetSkills = []string{"go", "python", "sql", "docker"}
	s := NewScorer(profile, newTestLogger())

	assert.Equal(t, 0.0, s.skillAlignmentScore(&models.NormalizedJob{}))
	assert.Equal(t, 0.75, s.skillAlignmentScore(&models.NormalizedJob{
		SkillTags: []string{"go", "python", "sql", "kubernetes"},
	}))
	assert.Equal(t, 1.0, s.skillAlignmentScore(&models.NormalizedJob{
		SkillTags: []string{"go", "python", "sql", "docker"},
	}))
}

func TestCommitmentScoreHoursTakePrecedence(t *testing.T) {
	s := defaultScorer()

	five := 5.0
	thirty := 30.0

	// Stated weekly hours win over the duration category.
	assert.Equal(t, 0.25, s.commitmentScore(&models.NormalizedJob{HoursPerWeek: &five, Duration: "ongoing"}))
	assert.Equal(t, 1.0, s.commitmentScore(&models.NormalizedJob{HoursPerWeek: &thirty}))

	assert.Equal(t, 1.0, s.commitmentScore(&models.NormalizedJob{Duration: "ongoing"}))
	assert.Equal(t, 0.75, s.commitmentScore(&models.NormalizedJob{Duration: "long"}))
	assert.Equal(t, 0.5, s.commitmentScore(&models.NormalizedJob{Duration: "medium"}))
	assert.Equal(t, 0.25, s.commitmentScore(&models.NormalizedJob{Duration: "short"}))
	assert.Equal(t, 0.5, s.commitmentScore(&models.NormalizedJob{}))
}

func TestScoreEndToEnd(t *testing.T) {
	profile := config.DefaultScoringProfile()
	profile.TargetSkills = []string{"react", "node.js", "aws", "mongodb"}
	s := NewScorer(profile, newTestLogger())

	job, issues, drop := NewNormalizer(newTestLogger()).Normalize(models.RawRecord{
		"title":            "Senior Full-Stack Developer",
		"client_spent":     "$50K+",
		"rate":             "$75-100/hour",
		"rating":           "4.9",
		"payment_verified": "Payment verified",
		"hours":            "30+",
		"skills":           "React, Node.js, AWS",
	})
	require.Nil(t, drop)
	require.Empty(t, issues)

	scored := s.Score(job)

	assert.InDelta(t, 97.2, scored.GoldenScore, 0.01)
	assert.InDelta(t, 40, scored.ScoreBreakdown[models.ComponentSpending], 0.01)
	assert.InDelta(t, 25, scored.ScoreBreakdown[models.ComponentBudget], 0.01)
	assert.InDelta(t, 14.7, scored.ScoreBreakdown[models.ComponentReputation], 0.01)
	assert.InDelta(t, 7.5, scored.ScoreBreakdown[models.ComponentSkillAlignment], 0.01)
	assert.InDelta(t, 10, scored.ScoreBreakdown[models.ComponentCommitment], 0.01)

	// Spending is the single largest contribution.
	for name, contribution := range scored.ScoreBreakdown {
		if name == models.ComponentSpending {
			continue
		}
		assert.Less(t, contribution, scored.ScoreBreakdown[models.ComponentSpending], name)
	}

	// Contributions add back up to the golden score when it is not clipped.
	var sum float64
	for _, contribution := range scored.ScoreBreakdown {
		sum += contribution
	}
	assert.InDelta(t, scored.GoldenScore, sum, 0.03)

	require.NotEmpty(t, scored.Recommendations)
	assert.Equal(t, "Respond within 1 hour, this is a top-tier opportunity", scored.Recommendations[0])
	assert.Contains(t, scored.Recommendations, "Client has a proven payment history")
	assert.Contains(t, scored.Recommendations, "Client is highly rated by past freelancers")
	assert.NotContains(t, scored.Recommendations, "Payment method is not verified, confirm before starting work")
}

func TestScoreClipsAtHundred(t *testing.T) {
	profile := config.DefaultScoringProfile()
	profile.Weights = config.ScoreWeights{
		Spending:       0.24,
		Budget:         0.24,
		Reputation:     0.24,
		SkillAlignment: 0.24,
		Commitment:     0.24,
	}
	s := NewScorer(profile, newTestLogger())

	rating := 5.0
	hours := 40.0
	job := &models.NormalizedJob{
		Title:            "Everything maxed out",
		ClientTotalSpent: 100000,
		SpendKnown:       true,
		HourlyRateLow:    100,
		HourlyRateHigh:   120,
		RateKnown:        true,
		ClientRating:     &rating,
		HoursPerWeek:     &hours,
	}

	scored := s.Score(job)

	assert.Equal(t, 100.0, scored.GoldenScore)
	for name, contribution := range scored.ScoreBreakdown {
		assert.InDelta(t, 24, contribution, 0.01, name)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	s := defaultScorer()

	rating := 3.2
	job := &models.NormalizedJob{
		Title:            "Repeatable",
		ClientTotalSpent: 2500,
		SpendKnown:       true,
		HourlyRateLow:    30,
		HourlyRateHigh:   45,
		RateKnown:        true,
		ClientRating:     &rating,
		Duration:         "medium",
	}

	first := s.Score(job)
	second := s.Score(job)

	assert.Equal(t, first.GoldenScore, second.GoldenScore)
	assert.Equal(t, first.ScoreBreakdown, second.ScoreBreakdown)
	assert.Equal(t, first.Recommendations, second.Recommendations)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 97.2, round2(97.20000000000001))
	assert.Equal(t, 14.7, round2(14.700000000000001))
	assert.Equal(t, 0.0, round2(0))
	assert.Equal(t, 1.01, round2(1.006))
}

func TestScorePanicsOnSubScoreOutOfRange(t *testing.T) {
	profile := config.DefaultScoringProfile()
	profile.NeutralRating = 6 // would pass reputationScore above 1.0

	s := NewScorer(profile, newTestLogger())
	assert.Panics(t, func() {
		s.Score(&models.NormalizedJob{Title: "bad profile", ClientTotalSpent: 100, SpendKnown: true})
	})
}
