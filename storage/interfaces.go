package storage

import "sales-pipeline/models"

// AggregateWriter is the interface any aggregate sink must satisfy.
type AggregateWriter interface {
	Write(agg []models.MonthlyAverage) error
	Close() error
}

// AggregateReader is implemented by sinks that can read back what they
// hold, letting the pipeline report the persisted state after a write.
type AggregateReader interface {
	FetchAll() ([]models.MonthlyAverage, error)
}
