package services

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sales-pipeline/models"
	"sales-pipeline/plot"
)

const pipelineCSV = `Date,Product Category,Product Name,Units Sold
2023-01-05,Electronics,Phone,10
2023-01-05,Electronics,Phone,10
2023-01-20,Electronics,Laptop,20
2023-02-01,Clothing,Shirt,30
2023-02-14,Clothing,,
`

func TestPipelineEndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sales.csv")
	if err := os.WriteFile(input, []byte(pipelineCSV), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	pngPath := filepath.Join(dir, "average_units_sold_by_month.png")
	csvPath := filepath.Join(dir, "average_units_sold_by_month.csv")

	logger := newTestLogger()
	p := NewPipeline(logger, plot.NewRenderer(logger, pngPath), nil, "bar", csvPath)

	agg, err := p.Run(input)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The duplicate and the incomplete row must not influence the means.
	want := []models.MonthlyAverage{
		{Month: 1, AvgUnitsSold: 15},
		{Month: 2, AvgUnitsSold: 30},
	}
	if len(agg) != len(want) {
		t.Fatalf("aggregate: got %+v, want %+v", agg, want)
	}
	for i, w := range want {
		if agg[i] != w {
			t.Errorf("bucket %d: got %+v, want %+v", i, agg[i], w)
		}
	}

	info, err := os.Stat(pngPath)
	if err != nil {
		t.Fatalf("chart image: %v", err)
	}
	if info.Size() == 0 {
		t.Error("chart image is empty")
	}

	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("open aggregate csv: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read aggregate csv: %v", err)
	}
	wantRecords := [][]string{
		{"month", "avg_units_sold"},
		{"1", "15"},
		{"2", "30"},
	}
	if len(records) != len(wantRecords) {
		t.Fatalf("csv records: got %v, want %v", records, wantRecords)
	}
	for i, wr := range wantRecords {
		for j, cell := range wr {
			if records[i][j] != cell {
				t.Errorf("csv[%d][%d]: got %q, want %q", i, j, records[i][j], cell)
			}
		}
	}
}

// memorySink stands in for the PostgreSQL writer: it keeps the aggregate
// in memory and records whether the pipeline read it back.
type memorySink struct {
	written []models.MonthlyAverage
	fetched bool
}

func (m *memorySink) Write(agg []models.MonthlyAverage) error {
	m.written = append([]models.MonthlyAverage(nil), agg...)
	return nil
}

func (m *memorySink) FetchAll() ([]models.MonthlyAverage, error) {
	m.fetched = true
	return m.written, nil
}

func (m *memorySink) Close() error { return nil }

func TestPipelineFeedsAndReadsBackExtraSinks(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sales.csv")
	if err := os.WriteFile(input, []byte(pipelineCSV), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	logger := newTestLogger()
	sink := &memorySink{}
	p := NewPipeline(logger, plot.NewRenderer(logger, filepath.Join(dir, "out.png")), nil, "bar",
		filepath.Join(dir, "out.csv"), sink)

	agg, err := p.Run(input)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(sink.written) != len(agg) {
		t.Fatalf("sink holds %d buckets, want %d", len(sink.written), len(agg))
	}
	for i := range agg {
		if sink.written[i] != agg[i] {
			t.Errorf("sink bucket %d: got %+v, want %+v", i, sink.written[i], agg[i])
		}
	}
	if !sink.fetched {
		t.Error("pipeline should read the sink back after writing")
	}
}

func TestPipelineUnsupportedChartKind(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sales.csv")
	if err := os.WriteFile(input, []byte(pipelineCSV), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	csvPath := filepath.Join(dir, "out.csv")

	logger := newTestLogger()
	p := NewPipeline(logger, plot.NewRenderer(logger, filepath.Join(dir, "out.png")), nil, "scatter", csvPath)

	_, err := p.Run(input)
	if !errors.Is(err, models.ErrUnsupportedChartKind) {
		t.Fatalf("want ErrUnsupportedChartKind, got %v", err)
	}

	// The visualizer failed, so the persister must not have run.
	if _, err := os.Stat(csvPath); !errors.Is(err, os.ErrNotExist) {
		t.Error("aggregate csv should not exist after a failed visualize stage")
	}
}

func TestPipelinePropagatesLoaderError(t *testing.T) {
	dir := t.TempDir()
	logger := newTestLogger()
	p := NewPipeline(logger, plot.NewRenderer(logger, filepath.Join(dir, "out.png")), nil, "bar",
		filepath.Join(dir, "out.csv"))

	_, err := p.Run(filepath.Join(dir, "absent.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("want wrapped os.ErrNotExist, got %v", err)
	}
}
