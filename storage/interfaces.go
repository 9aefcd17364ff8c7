package storage

import "upwork-job-scorer/models"

// ScoredJobWriter is the interface any scored-record sink must satisfy.
type ScoredJobWriter interface {
	Write(jobs []*models.ScoredJob) error
	Close() error
}

// RawRecordReader is the interface for the tabular input boundary.
type RawRecordReader interface {
	ReadAll() ([]models.RawRecord, error)
}
