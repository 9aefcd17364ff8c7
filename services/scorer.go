package services

import (
	"fmt"
	"math"

	"upwork-job-scorer/config"
	"upwork-job-scorer/models"
	"upwork-job-scorer/utils"
)

// Scorer computes the golden score for normalized jobs.
type Scorer struct {
	profile *config.ScoringProfile
	logger  *utils.Logger
	targets map[string]struct{}
}

// NewScorer creates a Scorer for the given (already validated) profile.
func NewScorer(profile *config.ScoringProfile, logger *utils.Logger) *Scorer {
	targets := make(map[string]struct{}, len(profile.TargetSkills))
	for _, s := range profile.TargetSkills {
		targets[s] = struct{}{}
	}
	return &Scorer{profile: profile, logger: logger, targets: targets}
}

// Score computes the weighted golden score, its per-component breakdown,
// and the recommendation list for one job. It never errors on a
// well-formed NormalizedJob; a sub-score outside [0,1] is a logic defect
// and panics.
func (s *Scorer) Score(job *models.NormalizedJob) *models.ScoredJob {
	subs := map[string]float64{
		models.ComponentSpending:       s.spendingScore(job),
		models.ComponentBudget:         s.budgetScore(job),
		models.ComponentReputation:     s.reputationScore(job),
		models.ComponentSkillAlignment: s.skillAlignmentScore(job),
		models.ComponentCommitment:     s.commitmentScore(job),
	}

	weights := map[string]float64{
		models.ComponentSpending:       s.profile.Weights.Spending,
		models.ComponentBudget:         s.profile.Weights.Budget,
		models.ComponentReputation:     s.profile.Weights.Reputation,
		models.ComponentSkillAlignment: s.profile.Weights.SkillAlignment,
		models.ComponentCommitment:     s.profile.Weights.Commitment,
	}

	breakdown := make(map[string]float64, len(subs))
	var rawScore float64
	for name, sub := range subs {
		if sub < 0 || sub > 1 {
			panic(fmt.Sprintf("scorer: %s sub-score %.4f outside [0,1] for job %q", name, sub, job.Title))
		}
		contribution := sub * weights[name] * 100
		breakdown[name] = round2(contribution)
		rawScore += contribution
	}

	// Weights with a combined sum above 1.0 saturate at the ceiling.
	golden := round2(math.Min(100, rawScore))

	return &models.ScoredJob{
		NormalizedJob:   *job,
		GoldenScore:     golden,
		ScoreBreakdown:  breakdown,
		Recommendations: s.recommendations(golden, subs, job),
	}
}

// spendingScore saturates logarithmically: full credit at the configured
// spend threshold, partial credit below it, zero only at exactly zero
// spend. Monotonic non-decreasing by construction.
func (s *Scorer) spendingScore(job *models.NormalizedJob) float64 {
	if job.ClientTotalSpent <= 0 {
		return 0
	}
	v := math.Log1p(job.ClientTotalSpent) / math.Log1p(s.profile.SpendSaturation)
	return math.Min(1, v)
}

// budgetScore rates the midpoint of the hourly range against the target
// band: zero below the minimum, linear inside, saturated above the ceiling.
func (s *Scorer) budgetScore(job *models.NormalizedJob) float64 {
	mid := (job.HourlyRateLow + job.HourlyRateHigh) / 2
	band := s.profile.RateBand
	switch {
	case mid <= 0 || mid < band.Min:
		return 0
	case mid >= band.Ceiling:
		return 1
	default:
		return (mid - band.Min) / (band.Ceiling - band.Min)
	}
}

// reputationScore uses rating/5, or the configured neutral default when
// the client has no rating yet.
func (s *Scorer) reputationScore(job *models.NormalizedJob) float64 {
	if job.ClientRating == nil {
		return s.profile.NeutralRating / 5
	}
	return *job.ClientRating / 5
}

// skillAlignmentScore is the fraction of target skills present in the
// job's tags. An empty target set means alignment is neutral, not undefined.
func (s *Scorer) skillAlignmentScore(job *models.NormalizedJob) float64 {
	if len(s.targets) == 0 {
		return 1
	}
	matched := 0
	for _, tag := range job.SkillTags {
		if _, ok := s.targets[tag]; ok {
			matched++
		}
	}
	return math.Min(1, float64(matched)/float64(len(s.targets)))
}

// commitmentScore rewards sustained engagements. Weekly hours take
// precedence; the duration category is the fallback, and a record with
// neither signal scores neutral.
func (s *Scorer) commitmentScore(job *models.NormalizedJob) float64 {
	if job.HoursPerWeek != nil {
		switch h := *job.HoursPerWeek; {
		case h >= 30:
			return 1
		case h >= 20:
			return 0.75
		case h >= 10:
			return 0.5
		case h > 0:
			return 0.25
		}
	}

	switch job.Duration {
	case "ongoing":
		return 1
	case "long":
		return 0.75
	case "medium":
		return 0.5
	case "short":
		return 0.25
	}
	return 0.5
}

// recommendations evaluates the fixed advisory rules in priority order.
// Purely a function of the scored record, so identical input always
// yields the identical list.
func (s *Scorer) recommendations(golden float64, subs map[string]float64, job *models.NormalizedJob) []string {
	recs := make([]string, 0, 4)

	switch {
	case golden >= 90:
		recs = append(recs, "Respond within 1 hour, this is a top-tier opportunity")
	case golden >= 75:
		recs = append(recs, "Strong match, apply within 24 hours")
	case golden >= 50:
		recs = append(recs, "Decent match, review the client history before applying")
	default:
		recs = append(recs, "Low priority, apply only when the pipeline is empty")
	}

	if subs[models.ComponentSpending] >= 0.9 {
		recs = append(recs, "Client has a proven payment history")
	}
	if job.ClientRating != nil && subs[models.ComponentReputation] >= 0.9 {
		recs = append(recs, "Client is highly rated by past freelancers")
	}
	if subs[models.ComponentBudget] < 0.3 {
		recs = append(recs, "Offered rate is below the target band, consider negotiating")
	}
	if !job.PaymentVerified {
		recs = append(recs, "Payment method is not verified, confirm before starting work")
	}
	return recs
}

// round2 rounds to two decimal places. Scores and report statistics are
// published at cent precision.
func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
