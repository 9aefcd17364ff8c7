package models

// RawRecord is one unvalidated row of the job export: raw header names
// mapped to raw cell values, exactly as read from the input file.
// It is never mutated after creation.
type RawRecord map[string]string

// DropReason explains why the normalizer excluded a record from the output.
type DropReason string

const (
	DropEmptyTitle       DropReason = "empty-title"
	DropNoEconomicSignal DropReason = "no-economic-signal"
	DropDuplicateURL     DropReason = "duplicate-url"
)

// NormalizedJob is the typed, validated form of a job listing.
// Optional numeric fields are nil pointers when absent: a confirmed zero
// and "unknown" must stay distinguishable because they score differently.
type NormalizedJob struct {
	Title       string
	URL         string
	Country     string
	Description string
	TimePosted  string
	SkillLevel  string

	ClientTotalSpent float64
	// SpendKnown is false when the spend column was missing, empty, or
	// unparseable; ClientTotalSpent reads as 0 in that case.
	SpendKnown bool

	HourlyRateLow  float64
	HourlyRateHigh float64
	RateKnown      bool

	// EstimatedBudget is the fixed-price budget ("Est. Budget: $X")
	// for non-hourly listings. Zero with BudgetKnown=false when absent.
	EstimatedBudget float64
	BudgetKnown     bool

	ClientRating    *float64 // 0..5, nil when absent
	PaymentVerified bool
	HoursPerWeek    *float64 // nil when absent
	Duration        string   // "", "short", "medium", "long", "ongoing"
	SkillTags       []string // lowercased, trimmed, deduplicated
}

// RejectedRecord keeps a dropped input row together with its drop reason
// so a run never silently loses records.
type RejectedRecord struct {
	Raw    RawRecord
	Reason DropReason
}

// Score-breakdown component names.
const (
	ComponentSpending       = "spending"
	ComponentBudget         = "budget"
	ComponentReputation     = "reputation"
	ComponentSkillAlignment = "skillAlignment"
	ComponentCommitment     = "commitment"
)

// ScoredJob is a NormalizedJob plus the computed opportunity score.
// Immutable once created.
type ScoredJob struct {
	NormalizedJob

	GoldenScore float64 // 0..100

	// ScoreBreakdown maps component name (spending, budget, reputation,
	// skillAlignment, commitment) to its contribution to the final score.
	// The components sum to the pre-clip raw score.
	ScoreBreakdown map[string]float64

	// Recommendations are fixed-text advisories derived deterministically
	// from score thresholds, in priority order.
	Recommendations []string
}

// RunReport holds the run-level summary computed over a scored batch.
type RunReport struct {
	TotalRecords    int
	OutputRecords   int
	DroppedByReason map[DropReason]int
	ParseFailures   map[string]int // by canonical field name
	MeanScore       float64
	ScoreBands      map[string]int // band label -> count
	TopJobs         []*ScoredJob
}
