package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ScoreWeights holds the non-negative weight of each scoring component.
// Weights do not have to sum to 1; the golden score clips at 100.
type ScoreWeights struct {
	Spending       float64 `mapstructure:"spending"`
	Budget         float64 `mapstructure:"budget"`
	Reputation     float64 `mapstructure:"reputation"`
	SkillAlignment float64 `mapstructure:"skill_alignment"`
	Commitment     float64 `mapstructure:"commitment"`
}

// RateBand is the target hourly-rate band used by the budget component.
type RateBand struct {
	Min     float64 `mapstructure:"min"`
	Ceiling float64 `mapstructure:"ceiling"`
}

// ScoringProfile is the full scoring configuration supplied to the scorer
// at pipeline start. It is never mutated during a run.
type ScoringProfile struct {
	Weights ScoreWeights `mapstructure:"weights"`

	// SpendSaturation is the client-spend level (in dollars) at which the
	// spending component reaches full credit.
	SpendSaturation float64 `mapstructure:"spend_saturation"`

	RateBand RateBand `mapstructure:"rate_band"`

	// TargetSkills is the skill set alignment is measured against.
	// Empty means alignment is neutral (full credit).
	TargetSkills []string `mapstructure:"target_skills"`

	// NeutralRating (0..5) substitutes for an absent client rating so
	// un-rated clients are not scored as zero.
	NeutralRating float64 `mapstructure:"neutral_rating"`
}

// DefaultScoringProfile returns the built-in profile.
func DefaultScoringProfile() *ScoringProfile {
	return &ScoringProfile{
		Weights: ScoreWeights{
			Spending:       0.40,
			Budget:         0.25,
			Reputation:     0.15,
			SkillAlignment: 0.10,
			Commitment:     0.10,
		},
		SpendSaturation: 10_000,
		RateBand:        RateBand{Min: 25, Ceiling: 75},
		TargetSkills:    nil,
		NeutralRating:   3.5,
	}
}

// LoadScoringProfile returns the default profile, optionally overridden
// from a YAML file. Validation failures are fatal to the run: a bad
// profile would invalidate every score it produces.
func LoadScoringProfile(path string) (*ScoringProfile, error) {
	profile := DefaultScoringProfile()

	if path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		def := DefaultScoringProfile()
		v.SetDefault("weights.spending", def.Weights.Spending)
		v.SetDefault("weights.budget", def.Weights.Budget)
		v.SetDefault("weights.reputation", def.Weights.Reputation)
		v.SetDefault("weights.skill_alignment", def.Weights.SkillAlignment)
		v.SetDefault("weights.commitment", def.Weights.Commitment)
		v.SetDefault("spend_saturation", def.SpendSaturation)
		v.SetDefault("rate_band.min", def.RateBand.Min)
		v.SetDefault("rate_band.ceiling", def.RateBand.Ceiling)
		v.SetDefault("neutral_rating", def.NeutralRating)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("scoring profile: read %s: %w", path, err)
		}
		if err := v.Unmarshal(profile); err != nil {
			return nil, fmt.Errorf("scoring profile: unmarshal: %w", err)
		}
	}

	normalizeTargetSkills(profile)

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("scoring profile: %w", err)
	}
	return profile, nil
}

// Validate reports the first configuration error found.
func (p *ScoringProfile) Validate() error {
	weights := map[string]float64{
		"spending":        p.Weights.Spending,
		"budget":          p.Weights.Budget,
		"reputation":      p.Weights.Reputation,
		"skill_alignment": p.Weights.SkillAlignment,
		"commitment":      p.Weights.Commitment,
	}
	for name, w := range weights {
		if w < 0 {
			return fmt.Errorf("weight %s must be non-negative, got %v", name, w)
		}
	}

	if p.SpendSaturation <= 0 {
		return fmt.Errorf("spend_saturation must be positive, got %v", p.SpendSaturation)
	}
	if p.RateBand.Min < 0 {
		return fmt.Errorf("rate_band.min must be non-negative, got %v", p.RateBand.Min)
	}
	if p.RateBand.Min >= p.RateBand.Ceiling {
		return fmt.Errorf("rate_band.min (%v) must be below rate_band.ceiling (%v)",
			p.RateBand.Min, p.RateBand.Ceiling)
	}
	if p.NeutralRating < 0 || p.NeutralRating > 5 {
		return fmt.Errorf("neutral_rating must be in [0, 5], got %v", p.NeutralRating)
	}
	return nil
}

func normalizeTargetSkills(p *ScoringProfile) {
	if len(p.TargetSkills) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(p.TargetSkills))
	out := make([]string, 0, len(p.TargetSkills))
	for _, s := range p.TargetSkills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	p.TargetSkills = out
}
