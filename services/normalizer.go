package services

import (
	"fmt"
	"strings"
	"time"

	"sales-pipeline/models"
	"sales-pipeline/utils"
)

// Column names fixed by the source schema.
const (
	columnDate      = "Date"
	columnUnitsSold = "Units Sold"
)

// dateLayouts are tried in order when parsing the Date column.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
}

// ColumnCast declares that a named column must hold the given kind.
type ColumnCast struct {
	Column string
	To     models.Kind
}

// ParseCasts parses a comma-separated "column:type" list into an ordered
// cast set, e.g. "Product Category:string,Units Sold:number". Order is
// preserved; unknown type names are rejected here, before any data is
// touched.
func ParseCasts(spec string) ([]ColumnCast, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	var casts []ColumnCast
	for _, part := range strings.Split(spec, ",") {
		name, typeName, found := strings.Cut(part, ":")
		if !found {
			return nil, fmt.Errorf("normalizer: cast %q: want column:type", part)
		}
		kind, ok := models.KindFromName(strings.TrimSpace(typeName))
		if !ok {
			return nil, fmt.Errorf("normalizer: cast %q: unknown type %q", part, strings.TrimSpace(typeName))
		}
		casts = append(casts, ColumnCast{Column: strings.TrimSpace(name), To: kind})
	}
	return casts, nil
}

// Normalizer casts declared columns to their target kinds and parses the
// Date column into calendar dates.
type Normalizer struct {
	logger *utils.Logger
}

// NewNormalizer creates a Normalizer with the given logger.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize applies the casts in order, then parses the Date column. The
// Date parse happens whether or not the cast list mentions the column.
// The frame is reshaped in place and returned.
func (n *Normalizer) Normalize(frame *models.Frame, casts []ColumnCast) (*models.Frame, error) {
	for _, cast := range casts {
		if err := n.castColumn(frame, cast); err != nil {
			return nil, err
		}
	}

	if err := n.parseDateColumn(frame); err != nil {
		return nil, err
	}

	n.logger.Info("[normalizer] Applied %d casts and parsed %q over %d rows",
		len(casts), columnDate, frame.NumRows())
	return frame, nil
}

func (n *Normalizer) castColumn(frame *models.Frame, cast ColumnCast) error {
	col, ok := frame.Column(cast.Column)
	if !ok {
		return fmt.Errorf("normalizer: cast target %q: %w", cast.Column, models.ErrMissingColumn)
	}

	for _, row := range frame.Rows {
		v := row[col]
		if v.Missing || v.Kind == cast.To {
			continue
		}
		switch cast.To {
		case models.KindString:
			row[col] = models.StringValue(v.Text())
		case models.KindNumber:
			if v.Kind == models.KindDate {
				return fmt.Errorf("normalizer: column %q holds dates, not numbers: %w",
					cast.Column, models.ErrTypeCoercion)
			}
			num, err := parseNumber(v.Str)
			if err != nil {
				return fmt.Errorf("normalizer: column %q value %q is not numeric: %w",
					cast.Column, v.Str, models.ErrTypeCoercion)
			}
			row[col] = models.NumberValue(num)
		case models.KindDate:
			t, ok := parseDate(v.Text())
			if !ok {
				return fmt.Errorf("normalizer: column %q value %q is not a date: %w",
					cast.Column, v.Text(), models.ErrTypeCoercion)
			}
			row[col] = models.DateValue(t)
		}
	}

	frame.Kinds[col] = cast.To
	return nil
}

// parseDateColumn converts every Date cell to a calendar date. Runs
// unconditionally, independent of the caller-supplied cast list.
func (n *Normalizer) parseDateColumn(frame *models.Frame) error {
	col, ok := frame.Column(columnDate)
	if !ok {
		return fmt.Errorf("normalizer: %q: %w", columnDate, models.ErrMissingColumn)
	}

	for _, row := range frame.Rows {
		v := row[col]
		if v.Missing || v.Kind == models.KindDate {
			continue
		}
		t, parsed := parseDate(v.Text())
		if !parsed {
			return fmt.Errorf("normalizer: %q value %q: %w", columnDate, v.Text(), models.ErrDateParse)
		}
		row[col] = models.DateValue(t)
	}

	frame.Kinds[col] = models.KindDate
	return nil
}

// parseDate auto-detects the layout from the cell contents.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
