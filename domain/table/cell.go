package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultSentinel marks an instrument or record error in source data.
const DefaultSentinel = -9999.0

// CellKind defines the storage kind of a single cell
type CellKind string

const (
	KindNull  CellKind = "null"
	KindInt   CellKind = "int"
	KindFloat CellKind = "float"
	KindText  CellKind = "text"
)

// Cell represents one typed value in a column
type Cell struct {
	Kind CellKind
	Int  int64
	Num  float64
	Text string
}

// NullCell creates a missing value
func NullCell() Cell {
	return Cell{Kind: KindNull}
}

// IntCell creates an integer value
func IntCell(v int64) Cell {
	return Cell{Kind: KindInt, Int: v, Num: float64(v)}
}

// FloatCell creates a floating-point value. NaN is stored as null.
func FloatCell(v float64) Cell {
	if math.IsNaN(v) {
		return NullCell()
	}
	return Cell{Kind: KindFloat, Num: v}
}

// TextCell creates a text value. The empty string is stored as null.
func TextCell(s string) Cell {
	if s == "" {
		return NullCell()
	}
	return Cell{Kind: KindText, Text: s}
}

// IsNull returns true if the cell holds no value
func (c Cell) IsNull() bool {
	return c.Kind == KindNull || c.Kind == ""
}

// IsNumber returns true for integer and floating-point cells
func (c Cell) IsNumber() bool {
	return c.Kind == KindInt || c.Kind == KindFloat
}

// Float returns the numeric value of a number cell
func (c Cell) Float() (float64, bool) {
	switch c.Kind {
	case KindInt:
		return float64(c.Int), true
	case KindFloat:
		return c.Num, true
	}
	return 0, false
}

// Equal reports whether two cells hold the same kind and value
func (c Cell) Equal(o Cell) bool {
	if c.IsNull() || o.IsNull() {
		return c.IsNull() && o.IsNull()
	}
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case KindInt:
		return c.Int == o.Int
	case KindFloat:
		return c.Num == o.Num
	default:
		return c.Text == o.Text
	}
}

// Value returns the cell as a plain Go value (nil, int64, float64 or string)
func (c Cell) Value() interface{} {
	switch c.Kind {
	case KindInt:
		return c.Int
	case KindFloat:
		return c.Num
	case KindText:
		return c.Text
	}
	return nil
}

// String renders the cell the way CSV export writes it
func (c Cell) String() string {
	switch c.Kind {
	case KindInt:
		return strconv.FormatInt(c.Int, 10)
	case KindFloat:
		return formatFloat(c.Num)
	case KindText:
		return c.Text
	}
	return ""
}

// GoString is used by %#v in test failure output
func (c Cell) GoString() string {
	return fmt.Sprintf("table.Cell{%s:%q}", c.Kind, c.String())
}

// formatFloat keeps a trailing ".0" on whole numbers so a float column
// reloads as float rather than integer.
func formatFloat(v float64) string {
	if math.IsInf(v, 0) {
		if v > 0 {
			return "inf"
		}
		return "-inf"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
