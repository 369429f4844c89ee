package models

import "errors"

// Pipeline error taxonomy. Stages wrap these with context via fmt.Errorf
// and callers match them with errors.Is. File-system failures are not given
// their own sentinel: the wrapped OS error (os.ErrNotExist and friends)
// already identifies them.
var (
	// ErrParse marks input that is not validly delimited tabular text.
	ErrParse = errors.New("malformed input file")

	// ErrTypeCoercion marks a column whose values cannot be losslessly
	// cast to the requested kind.
	ErrTypeCoercion = errors.New("type coercion failed")

	// ErrDateParse marks Date values not recognizable as calendar dates.
	ErrDateParse = errors.New("unparseable date value")

	// ErrMissingColumn marks a required or referenced column that is
	// absent from the frame.
	ErrMissingColumn = errors.New("required column missing")

	// ErrUnsupportedChartKind marks a chart selector outside the
	// supported set.
	ErrUnsupportedChartKind = errors.New("unsupported chart kind")
)
