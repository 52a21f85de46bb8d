// Package reshape converts a wide table into long form for charting.
package reshape

import (
	"gosieve/adapters/coercer"
	"gosieve/domain/table"
	"gosieve/internal/errors"
)

// MeltResult is the long-form view of one X column against several Y columns
type MeltResult struct {
	X        string              `json:"x"`
	Y        []string            `json:"y"`        // melted columns, in selection order
	Unusable []string            `json:"unusable"` // Y columns with no numeric values
	Rows     []table.LongFormRow `json:"rows"`
}

// ValidRows returns only the rows whose value coerced to a number
func (m *MeltResult) ValidRows() []table.LongFormRow {
	out := make([]table.LongFormRow, 0, len(m.Rows))
	for _, r := range m.Rows {
		if r.Valid {
			out = append(out, r)
		}
	}
	return out
}

// Block returns the rows contributed by one Y column
func (m *MeltResult) Block(variable string) []table.LongFormRow {
	var out []table.LongFormRow
	for _, r := range m.Rows {
		if r.Variable == variable {
			out = append(out, r)
		}
	}
	return out
}

// Melt unpivots ys against x. Each usable Y contributes one contiguous block
// of t.Len() rows in selection order; cells that do not coerce to a number
// stay in the block with Valid=false. Y columns with no numeric values at
// all are left out and reported in Unusable.
func Melt(t *table.Table, x string, ys []string) (*MeltResult, error) {
	if len(ys) == 0 {
		return nil, errors.NoYColumns()
	}

	xCol, ok := t.Column(x)
	if !ok {
		return nil, errors.ColumnNotFound(x)
	}
	ys = table.UniqueNames(ys)
	for _, y := range ys {
		if !t.HasColumn(y) {
			return nil, errors.ColumnNotFound(y)
		}
	}

	result := &MeltResult{
		X:        x,
		Y:        make([]string, 0, len(ys)),
		Unusable: []string{},
		Rows:     make([]table.LongFormRow, 0, len(ys)*t.Len()),
	}

	for _, y := range ys {
		yCol, _ := t.Column(y)
		values, valid := coercer.CoerceColumn(yCol)
		if countTrue(valid) == 0 {
			result.Unusable = append(result.Unusable, y)
			continue
		}

		result.Y = append(result.Y, y)
		for i := range values {
			result.Rows = append(result.Rows, table.LongFormRow{
				X:        xCol.Cells[i],
				Variable: y,
				Value:    values[i],
				Valid:    valid[i],
			})
		}
	}

	return result, nil
}

func countTrue(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
