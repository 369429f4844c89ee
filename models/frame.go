package models

import (
	"strconv"
	"time"
)

// Kind identifies the type a column (or cell) holds.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "string"
	}
}

// KindFromName maps a configuration type name to a Kind.
// Returns false for names outside the supported set.
func KindFromName(name string) (Kind, bool) {
	switch name {
	case "string", "str":
		return KindString, true
	case "number", "float":
		return KindNumber, true
	case "date":
		return KindDate, true
	}
	return KindString, false
}

// Value is a single typed cell. Exactly one of Str/Num/Time is meaningful,
// selected by Kind; Missing marks an empty source cell regardless of Kind.
type Value struct {
	Kind    Kind
	Str     string
	Num     float64
	Time    time.Time
	Missing bool
}

func StringValue(s string) Value  { return Value{Kind: KindString, Str: s} }
func NumberValue(f float64) Value { return Value{Kind: KindNumber, Num: f} }
func DateValue(t time.Time) Value { return Value{Kind: KindDate, Time: t} }
func MissingValue() Value         { return Value{Missing: true} }

// Text returns the canonical text form of the value, the form used for
// CSV output and for duplicate detection. Missing cells render empty.
func (v Value) Text() string {
	if v.Missing {
		return ""
	}
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindDate:
		return v.Time.Format("2006-01-02")
	default:
		return v.Str
	}
}

// Equal reports whether two cells hold the same value.
func (v Value) Equal(o Value) bool {
	if v.Missing || o.Missing {
		return v.Missing == o.Missing
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		return v.Num == o.Num
	case KindDate:
		return v.Time.Equal(o.Time)
	default:
		return v.Str == o.Str
	}
}

// Frame is an in-memory record table: named columns with a uniform kind
// per column, rows of typed cells, and an explicit row index.
type Frame struct {
	Columns []string
	Kinds   []Kind
	Rows    [][]Value
	Index   []int
}

// NewFrame creates an empty frame with the given column names, all typed
// as strings until a loader or normalizer says otherwise.
func NewFrame(columns []string) *Frame {
	return &Frame{
		Columns: columns,
		Kinds:   make([]Kind, len(columns)),
	}
}

// Column returns the position of the named column.
func (f *Frame) Column(name string) (int, bool) {
	for i, c := range f.Columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// Append adds a row and assigns it the next sequential index.
func (f *Frame) Append(row []Value) {
	f.Index = append(f.Index, len(f.Rows))
	f.Rows = append(f.Rows, row)
}

// NumRows returns the number of rows in the frame.
func (f *Frame) NumRows() int {
	return len(f.Rows)
}
