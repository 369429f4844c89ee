package services

import (
	"errors"
	"testing"
	"time"

	"sales-pipeline/models"
)

// salesFrame builds a normalized frame with a date column and a numeric
// Units Sold column, the shape the aggregator receives.
func salesFrame(dates []string, units []float64) *models.Frame {
	frame := models.NewFrame([]string{"Date", "Units Sold"})
	frame.Kinds[0] = models.KindDate
	frame.Kinds[1] = models.KindNumber
	for i, d := range dates {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			panic(err)
		}
		frame.Append([]models.Value{models.DateValue(day), models.NumberValue(units[i])})
	}
	return frame
}

func TestAggregatorMonthlyMeans(t *testing.T) {
	a := NewAggregator(newTestLogger())

	frame := salesFrame(
		[]string{"2023-01-05", "2023-01-20", "2023-02-01"},
		[]float64{10, 20, 30},
	)

	agg, err := a.Aggregate(frame)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	want := []models.MonthlyAverage{
		{Month: 1, AvgUnitsSold: 15},
		{Month: 2, AvgUnitsSold: 30},
	}
	if len(agg) != len(want) {
		t.Fatalf("buckets: got %d, want %d", len(agg), len(want))
	}
	for i, w := range want {
		if agg[i] != w {
			t.Errorf("bucket %d: got %+v, want %+v", i, agg[i], w)
		}
	}
}

func TestAggregatorSingleRowGroup(t *testing.T) {
	a := NewAggregator(newTestLogger())

	agg, err := a.Aggregate(salesFrame([]string{"2023-07-14"}, []float64{42.5}))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(agg) != 1 || agg[0].Month != 7 || agg[0].AvgUnitsSold != 42.5 {
		t.Errorf("single-row group: got %+v, want month 7 value 42.5", agg)
	}
}

func TestAggregatorCollapsesYears(t *testing.T) {
	a := NewAggregator(newTestLogger())

	// January 2023 and January 2024 share one bucket.
	agg, err := a.Aggregate(salesFrame(
		[]string{"2023-01-10", "2024-01-10"},
		[]float64{10, 30},
	))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(agg) != 1 {
		t.Fatalf("buckets: got %d, want 1", len(agg))
	}
	if agg[0].Month != 1 || agg[0].AvgUnitsSold != 20 {
		t.Errorf("got %+v, want month 1 value 20", agg[0])
	}
}

func TestAggregatorMissingColumns(t *testing.T) {
	a := NewAggregator(newTestLogger())

	noDate := models.NewFrame([]string{"Units Sold"})
	noDate.Kinds[0] = models.KindNumber
	if _, err := a.Aggregate(noDate); !errors.Is(err, models.ErrMissingColumn) {
		t.Errorf("missing Date: want ErrMissingColumn, got %v", err)
	}

	noUnits := models.NewFrame([]string{"Date"})
	noUnits.Kinds[0] = models.KindDate
	if _, err := a.Aggregate(noUnits); !errors.Is(err, models.ErrMissingColumn) {
		t.Errorf("missing Units Sold: want ErrMissingColumn, got %v", err)
	}
}

func TestAggregatorRejectsUnparsedDateColumn(t *testing.T) {
	a := NewAggregator(newTestLogger())

	frame := models.NewFrame([]string{"Date", "Units Sold"})
	frame.Kinds[0] = models.KindString
	frame.Kinds[1] = models.KindNumber
	frame.Append([]models.Value{models.StringValue("2023-01-05"), models.NumberValue(10)})

	if _, err := a.Aggregate(frame); !errors.Is(err, models.ErrTypeCoercion) {
		t.Errorf("string Date column: want ErrTypeCoercion, got %v", err)
	}
}

func TestAggregatorUnaffectedByDuplicateAfterClean(t *testing.T) {
	c := NewCleaner(newTestLogger())
	n := NewNormalizer(newTestLogger())
	a := NewAggregator(newTestLogger())

	frame := stringFrame([]string{"Date", "Units Sold"}, [][]string{
		{"2023-01-05", "10"},
		{"2023-01-05", "10"},
		{"2023-02-01", "30"},
	})

	cleaned := c.Clean(frame)
	normalized, err := n.Normalize(cleaned, []ColumnCast{{Column: "Units Sold", To: models.KindNumber}})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	agg, err := a.Aggregate(normalized)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(agg) != 2 || agg[0].AvgUnitsSold != 10 || agg[1].AvgUnitsSold != 30 {
		t.Errorf("aggregate after dedup: got %+v, want [{1 10} {2 30}]", agg)
	}
}
