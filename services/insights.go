package services

import (
	"fmt"
	"sort"
	"strings"

	"upwork-job-scorer/models"
	"upwork-job-scorer/utils"
)

// scoreBands in display order, highest first.
var scoreBands = []struct {
	label string
	min   float64
}{
	{"90+", 90},
	{"75-89", 75},
	{"50-74", 50},
	{"25-49", 25},
	{"<25", 0},
}

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate computes the run-level summary over a pipeline result:
// record accounting (every input row ends up counted exactly once),
// parse failures, score statistics, and the top opportunities.
func (s *InsightService) Generate(res *Result) *models.RunReport {
	report := &models.RunReport{
		TotalRecords:    res.Total,
		OutputRecords:   len(res.Jobs),
		DroppedByReason: make(map[models.DropReason]int),
		ParseFailures:   make(map[string]int, len(res.ParseFailures)),
		ScoreBands:      make(map[string]int),
	}

	for _, rej := range res.Rejected {
		report.DroppedByReason[rej.Reason]++
	}
	for field, count := range res.ParseFailures {
		report.ParseFailures[field] = count
	}

	if len(res.Jobs) == 0 {
		return report
	}

	var total float64
	for _, j := range res.Jobs {
		total += j.GoldenScore
		report.ScoreBands[bandFor(j.GoldenScore)]++
	}
	report.MeanScore = round2(total / float64(len(res.Jobs)))

	ranked := make([]*models.ScoredJob, len(res.Jobs))
	copy(ranked, res.Jobs)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].GoldenScore > ranked[j].GoldenScore
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	report.TopJobs = ranked

	s.logger.Info("[insights] Report ready: mean score %.2f over %d records",
		report.MeanScore, report.OutputRecords)
	return report
}

func bandFor(score float64) string {
	for _, b := range scoreBands {
		if score >= b.min {
			return b.label
		}
	}
	return scoreBands[len(scoreBands)-1].label
}

// Print renders the run report to stdout.
func (s *InsightService) Print(r *models.RunReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 JOB SCORING RUN SUMMARY\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Record accounting
	fmt.Printf("\033[1;33m  Records\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Input records  : \033[1m%d\033[0m\n", r.TotalRecords)
	fmt.Printf("  Scored records : \033[1m%d\033[0m\n", r.OutputRecords)
	for _, reason := range []models.DropReason{
		models.DropEmptyTitle, models.DropNoEconomicSignal, models.DropDuplicateURL,
	} {
		if count := r.DroppedByReason[reason]; count > 0 {
			fmt.Printf("  Dropped (%s) : %d\n", reason, count)
		}
	}
	fmt.Println()

	// Parse failures
	if len(r.ParseFailures) > 0 {
		fmt.Printf("\033[1;33m  Parse Failures (field value fell back to default)\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fields := make([]string, 0, len(r.ParseFailures))
		for f := range r.ParseFailures {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Printf("  %-18s : %d\n", f, r.ParseFailures[f])
		}
		fmt.Println()
	}

	// Score stats
	fmt.Printf("\033[1;33m  Golden Score Distribution\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.OutputRecords == 0 {
		fmt.Printf("  No scored records\n")
	} else {
		fmt.Printf("  Mean score : \033[1;32m%.2f\033[0m\n", r.MeanScore)
		for _, b := range scoreBands {
			count := r.ScoreBands[b.label]
			bar := strings.Repeat("█", count)
			fmt.Printf("  %-6s %s (%d)\n", b.label, bar, count)
		}
	}
	fmt.Println()

	// Top opportunities
	fmt.Printf("\033[1;33m  Top Opportunities\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopJobs) == 0 {
		fmt.Printf("  No scored jobs\n")
	} else {
		for i, j := range r.TopJobs {
			fmt.Printf("  \033[1m%d.\033[0m %-40s \033[1;32m%.2f\033[0m\n",
				i+1, truncate(j.Title, 38), j.GoldenScore)
			if len(j.Recommendations) > 0 {
				fmt.Printf("     %s\n", j.Recommendations[0])
			}
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
