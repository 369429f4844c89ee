package services

import (
	"fmt"
	"sort"

	"sales-pipeline/models"
	"sales-pipeline/utils"
)

// Aggregator computes the mean Units Sold per calendar month.
type Aggregator struct {
	logger *utils.Logger
}

// NewAggregator creates an Aggregator with the given logger.
func NewAggregator(logger *utils.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate derives a month key (1–12) from each row's Date and averages
// Units Sold within each key. The result is sorted ascending by month.
// Months from different years share a bucket: 2023-01 and 2024-01 land in
// the same group.
func (a *Aggregator) Aggregate(frame *models.Frame) ([]models.MonthlyAverage, error) {
	dateCol, ok := frame.Column(columnDate)
	if !ok {
		return nil, fmt.Errorf("aggregator: %q: %w", columnDate, models.ErrMissingColumn)
	}
	unitsCol, ok := frame.Column(columnUnitsSold)
	if !ok {
		return nil, fmt.Errorf("aggregator: %q: %w", columnUnitsSold, models.ErrMissingColumn)
	}

	if frame.Kinds[dateCol] != models.KindDate {
		return nil, fmt.Errorf("aggregator: %q is %s, want date: %w",
			columnDate, frame.Kinds[dateCol], models.ErrTypeCoercion)
	}
	if frame.Kinds[unitsCol] != models.KindNumber {
		return nil, fmt.Errorf("aggregator: %q is %s, want number: %w",
			columnUnitsSold, frame.Kinds[unitsCol], models.ErrTypeCoercion)
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, row := range frame.Rows {
		if row[dateCol].Missing || row[unitsCol].Missing {
			continue
		}
		month := int(row[dateCol].Time.Month())
		sums[month] += row[unitsCol].Num
		counts[month]++
	}

	months := make([]int, 0, len(sums))
	for m := range sums {
		months = append(months, m)
	}
	sort.Ints(months)

	result := make([]models.MonthlyAverage, 0, len(months))
	for _, m := range months {
		result = append(result, models.MonthlyAverage{
			Month:        m,
			AvgUnitsSold: sums[m] / float64(counts[m]),
		})
	}

	a.logger.Info("[aggregator] Averaged %q over %d rows into %d month buckets",
		columnUnitsSold, frame.NumRows(), len(result))
	return result, nil
}
