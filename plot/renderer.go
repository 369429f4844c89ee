package plot

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"

	"sales-pipeline/models"
	"sales-pipeline/utils"
)

const (
	chartTitle  = "Average Units Sold by Month"
	chartWidth  = 1000
	chartHeight = 500
)

// Renderer draws the monthly aggregate as a PNG chart at a fixed path,
// overwriting any previous image.
type Renderer struct {
	logger     *utils.Logger
	outputPath string
}

// NewRenderer creates a Renderer writing to outputPath.
func NewRenderer(logger *utils.Logger, outputPath string) *Renderer {
	return &Renderer{logger: logger, outputPath: outputPath}
}

// Render draws the aggregate with the month as the category axis and the
// mean as the measured axis. kind selects the chart style ("bar" or
// "line"); anything else fails before the output file is touched. The
// aggregate itself is never modified, so callers can keep using it.
func (r *Renderer) Render(agg []models.MonthlyAverage, kind string) error {
	switch kind {
	case "bar", "line":
	default:
		return fmt.Errorf("plot: kind %q: %w", kind, models.ErrUnsupportedChartKind)
	}

	if len(agg) == 0 {
		return fmt.Errorf("plot: aggregate is empty, nothing to draw")
	}

	// Draw into memory first: the previous run's chart must survive a
	// failed render.
	var buf bytes.Buffer
	var err error
	if kind == "bar" {
		err = renderBar(agg, &buf)
	} else {
		err = renderLine(agg, &buf)
	}
	if err != nil {
		return fmt.Errorf("plot: render %s chart: %w", kind, err)
	}

	if err := os.MkdirAll(filepath.Dir(r.outputPath), 0755); err != nil {
		return fmt.Errorf("plot: create output dir: %w", err)
	}
	if err := os.WriteFile(r.outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("plot: write %q: %w", r.outputPath, err)
	}

	r.logger.Info("[plot] %s chart written to %s", kind, r.outputPath)
	return nil
}

func renderBar(agg []models.MonthlyAverage, w io.Writer) error {
	bars := make([]chart.Value, len(agg))
	for i, bucket := range agg {
		bars[i] = chart.Value{
			Label: strconv.Itoa(bucket.Month),
			Value: bucket.AvgUnitsSold,
		}
	}

	bc := chart.BarChart{
		Title:    chartTitle,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 48,
		Bars:     bars,
	}

	// The library rejects a zero-delta value range, which a single month
	// (or identical means) would produce.
	if minV, maxV := meanBounds(agg); minV == maxV {
		bc.YAxis.Range = &chart.ContinuousRange{Min: minV - 1, Max: maxV + 1}
	}

	return bc.Render(chart.PNG, w)
}

func renderLine(agg []models.MonthlyAverage, w io.Writer) error {
	xs := make([]float64, len(agg))
	ys := make([]float64, len(agg))
	ticks := make([]chart.Tick, len(agg))
	for i, bucket := range agg {
		xs[i] = float64(bucket.Month)
		ys[i] = bucket.AvgUnitsSold
		ticks[i] = chart.Tick{Value: xs[i], Label: strconv.Itoa(bucket.Month)}
	}

	c := chart.Chart{
		Title:  chartTitle,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis:  chart.XAxis{Ticks: ticks},
		Series: []chart.Series{
			chart.ContinuousSeries{XValues: xs, YValues: ys},
		},
	}

	// Same zero-delta restriction as the bar chart, on both axes here.
	if len(agg) == 1 {
		c.XAxis.Range = &chart.ContinuousRange{Min: xs[0] - 1, Max: xs[0] + 1}
	}
	if minV, maxV := meanBounds(agg); minV == maxV {
		c.YAxis.Range = &chart.ContinuousRange{Min: minV - 1, Max: maxV + 1}
	}

	return c.Render(chart.PNG, w)
}

func meanBounds(agg []models.MonthlyAverage) (minV, maxV float64) {
	minV, maxV = agg[0].AvgUnitsSold, agg[0].AvgUnitsSold
	for _, bucket := range agg[1:] {
		if bucket.AvgUnitsSold < minV {
			minV = bucket.AvgUnitsSold
		}
		if bucket.AvgUnitsSold > maxV {
			maxV = bucket.AvgUnitsSold
		}
	}
	return minV, maxV
}
