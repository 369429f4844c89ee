package services

import (
	"strings"

	"sales-pipeline/models"
	"sales-pipeline/utils"
)

// Cleaner removes exact-duplicate rows and rows with missing values, then
// reindexes the frame contiguously from zero.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean returns a new frame containing only the first occurrence of each
// row and no row with a missing cell. Row order is the source order of
// first occurrence; the index is reset to 0..n-1. Empty input yields an
// empty frame, never an error.
func (c *Cleaner) Clean(frame *models.Frame) *models.Frame {
	out := models.NewFrame(frame.Columns)
	copy(out.Kinds, frame.Kinds)

	seen := make(map[string]struct{}, frame.NumRows())
	dropped := 0

	for _, row := range frame.Rows {
		if hasMissing(row) {
			dropped++
			continue
		}

		key := rowKey(row)
		if _, dup := seen[key]; dup {
			c.logger.Debug("[cleaner] Duplicate row skipped: %s", key)
			dropped++
			continue
		}
		seen[key] = struct{}{}

		out.Append(row)
	}

	c.logger.Info("[cleaner] Cleaned %d → %d rows (dropped %d)",
		frame.NumRows(), out.NumRows(), dropped)
	return out
}

func hasMissing(row []models.Value) bool {
	for _, v := range row {
		if v.Missing {
			return true
		}
	}
	return false
}

// rowKey builds a duplicate-detection key from the canonical text of every
// cell. The unit separator keeps adjacent cells from merging.
func rowKey(row []models.Value) string {
	cells := make([]string, len(row))
	for i, v := range row {
		cells[i] = v.Text()
	}
	return strings.Join(cells, "\x1f")
}
