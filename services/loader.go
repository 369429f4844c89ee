package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"sales-pipeline/models"
	"sales-pipeline/utils"
)

// Loader reads a delimited sales file into a Frame, inferring column kinds
// from the header and cell contents.
type Loader struct {
	logger *utils.Logger
}

// NewLoader creates a Loader with the given logger.
func NewLoader(logger *utils.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the CSV file at path into a Frame. The first row is the
// header. A column is typed numeric when every non-empty cell in it parses
// as a float; everything else stays a string. Empty cells become missing
// values.
func (l *Loader) Load(path string) (*models.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %q: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("loader: %q has no header row: %w", path, models.ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("loader: read header of %q: %v: %w", path, err, models.ErrParse)
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("loader: read %q: %v: %w", path, err, models.ErrParse)
		}
		records = append(records, record)
	}

	frame := models.NewFrame(header)
	for col := range header {
		frame.Kinds[col] = inferKind(records, col)
	}

	for _, record := range records {
		row := make([]models.Value, len(header))
		for col, cell := range record {
			row[col] = parseCell(cell, frame.Kinds[col])
		}
		frame.Append(row)
	}

	l.logger.Info("[loader] Loaded %d rows × %d columns from %s",
		frame.NumRows(), len(frame.Columns), path)
	return frame, nil
}

// inferKind types a column as numeric when it has at least one non-empty
// cell and every non-empty cell parses as a float.
func inferKind(records [][]string, col int) models.Kind {
	numeric := false
	for _, record := range records {
		cell := record[col]
		if cell == "" {
			continue
		}
		if _, err := parseNumber(cell); err != nil {
			return models.KindString
		}
		numeric = true
	}
	if numeric {
		return models.KindNumber
	}
	return models.KindString
}

func parseCell(cell string, kind models.Kind) models.Value {
	if cell == "" {
		return models.MissingValue()
	}
	if kind == models.KindNumber {
		n, err := parseNumber(cell)
		if err == nil {
			return models.NumberValue(n)
		}
	}
	return models.StringValue(cell)
}

// parseNumber accepts plain floats plus thousands separators ("1,200").
func parseNumber(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, errors.New("empty")
	}
	return strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
}
