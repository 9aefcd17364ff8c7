package services

import (
	"upwork-job-scorer/metrics"
	"upwork-job-scorer/models"
	"upwork-job-scorer/utils"
)

// Result collects everything a pipeline run produced: scored jobs in
// input order, rejected records with reasons, and parse-failure counts.
type Result struct {
	Total         int
	Jobs          []*models.ScoredJob
	Rejected      []models.RejectedRecord
	ParseFailures map[string]int
}

// Pipeline drives raw records through normalization and scoring.
type Pipeline struct {
	normalizer *Normalizer
	scorer     *Scorer
	logger     *utils.Logger
	workers    int
}

// NewPipeline wires a normalizer and scorer into a batch pipeline that
// processes up to `workers` records concurrently.
func NewPipeline(normalizer *Normalizer, scorer *Scorer, logger *utils.Logger, workers int) *Pipeline {
	return &Pipeline{
		normalizer: normalizer,
		scorer:     scorer,
		logger:     logger,
		workers:    workers,
	}
}

// Run processes the batch. Records are normalized and scored in parallel
// (both are pure per-record functions), then collected sequentially in
// input order so output ordering and first-wins URL deduplication stay
// deterministic.
func (p *Pipeline) Run(raw []models.RawRecord) *Result {
	type outcome struct {
		job    *models.ScoredJob
		issues []string
		drop   *models.DropReason
	}

	outcomes := make([]outcome, len(raw))
	pool := utils.NewWorkerPool(p.workers)
	for i, rec := range raw {
		i, rec := i, rec
		pool.Submit(func() {
			job, issues, drop := p.normalizer.Normalize(rec)
			o := outcome{issues: issues, drop: drop}
			if job != nil {
				o.job = p.scorer.Score(job)
			}
			outcomes[i] = o
		})
	}
	pool.Wait()

	res := &Result{
		Total:         len(raw),
		ParseFailures: make(map[string]int),
	}
	seen := utils.NewURLSet()

	for i, o := range outcomes {
		metrics.RecordsRead.Inc()
		for _, field := range o.issues {
			res.ParseFailures[field]++
			metrics.ParseFailures.WithLabelValues(field).Inc()
		}

		if o.drop != nil {
			res.Rejected = append(res.Rejected, models.RejectedRecord{Raw: raw[i], Reason: *o.drop})
			metrics.RecordsDropped.WithLabelValues(string(*o.drop)).Inc()
			continue
		}

		if o.job.URL != "" && !seen.Add(o.job.URL) {
			p.logger.Debug("[pipeline] Duplicate URL skipped: %s", o.job.URL)
			res.Rejected = append(res.Rejected, models.RejectedRecord{Raw: raw[i], Reason: models.DropDuplicateURL})
			metrics.RecordsDropped.WithLabelValues(string(models.DropDuplicateURL)).Inc()
			continue
		}

		res.Jobs = append(res.Jobs, o.job)
		metrics.JobsScored.Inc()
		metrics.GoldenScore.Observe(o.job.GoldenScore)
	}

	p.logger.Info("[pipeline] Scored %d of %d records (dropped %d)",
		len(res.Jobs), res.Total, len(res.Rejected))
	return res
}
