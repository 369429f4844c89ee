package services

import (
	"fmt"

	"sales-pipeline/models"
	"sales-pipeline/plot"
	"sales-pipeline/storage"
	"sales-pipeline/utils"
)

// defaultCasts mirrors the source schema: both product columns are kept
// as plain strings. The Date parse is applied by the normalizer on top of
// this list.
var defaultCasts = []ColumnCast{
	{Column: "Product Category", To: models.KindString},
	{Column: "Product Name", To: models.KindString},
}

// Pipeline chains the six stages: load → clean → normalize → aggregate →
// visualize → persist. A failed stage aborts the run; earlier output
// files from previous runs are left untouched.
type Pipeline struct {
	logger     *utils.Logger
	loader     *Loader
	cleaner    *Cleaner
	normalizer *Normalizer
	aggregator *Aggregator
	renderer   *plot.Renderer

	casts         []ColumnCast
	chartKind     string
	csvOutputPath string
	extraSinks    []storage.AggregateWriter
}

// NewPipeline wires the stages together. A nil casts list falls back to
// the source schema's defaults. extraSinks receive the aggregate after
// the CSV persister; their lifetime is owned by the caller.
func NewPipeline(
	logger *utils.Logger,
	renderer *plot.Renderer,
	casts []ColumnCast,
	chartKind, csvOutputPath string,
	extraSinks ...storage.AggregateWriter,
) *Pipeline {
	if casts == nil {
		casts = defaultCasts
	}
	return &Pipeline{
		logger:        logger,
		loader:        NewLoader(logger),
		cleaner:       NewCleaner(logger),
		normalizer:    NewNormalizer(logger),
		aggregator:    NewAggregator(logger),
		renderer:      renderer,
		casts:         casts,
		chartKind:     chartKind,
		csvOutputPath: csvOutputPath,
		extraSinks:    extraSinks,
	}
}

// Run executes one full pass over the file at inputPath and returns the
// monthly aggregate. Errors from any stage propagate unmodified.
func (p *Pipeline) Run(inputPath string) ([]models.MonthlyAverage, error) {
	frame, err := p.loader.Load(inputPath)
	if err != nil {
		return nil, err
	}

	frame = p.cleaner.Clean(frame)

	frame, err = p.normalizer.Normalize(frame, p.casts)
	if err != nil {
		return nil, err
	}

	agg, err := p.aggregator.Aggregate(frame)
	if err != nil {
		return nil, err
	}

	if err := p.renderer.Render(agg, p.chartKind); err != nil {
		return nil, err
	}

	if err := p.persist(agg); err != nil {
		return nil, err
	}

	return agg, nil
}

func (p *Pipeline) persist(agg []models.MonthlyAverage) error {
	writer, err := storage.NewCSVWriter(p.csvOutputPath)
	if err != nil {
		return err
	}
	if err := writer.Write(agg); err != nil {
		_ = writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("csv: close %q: %w", p.csvOutputPath, err)
	}
	p.logger.Info("[pipeline] Aggregate saved to %s", p.csvOutputPath)

	for _, sink := range p.extraSinks {
		if err := sink.Write(agg); err != nil {
			return err
		}
		if reader, ok := sink.(storage.AggregateReader); ok {
			stored, err := reader.FetchAll()
			if err != nil {
				return err
			}
			p.logger.Info("[pipeline] Sink now holds %d month buckets", len(stored))
		}
	}
	return nil
}
