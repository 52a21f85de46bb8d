package table

import (
	"fmt"
)

// ColumnType is the semantic type inferred from a column's cells
type ColumnType string

const (
	TypeInteger ColumnType = "integer"
	TypeFloat   ColumnType = "float"
	TypeText    ColumnType = "text"
	TypeMixed   ColumnType = "mixed"
	TypeEmpty   ColumnType = "empty"
)

// IsNumeric returns true for integer and float columns
func (t ColumnType) IsNumeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// Column is a named, typed sequence of cells
type Column struct {
	Name  string
	Type  ColumnType
	Cells []Cell
}

// Len returns the number of cells in the column
func (c *Column) Len() int {
	return len(c.Cells)
}

// InferType determines the column type from its non-null cells:
// all ints -> integer, ints and floats -> float, all text -> text,
// numbers and text together -> mixed, nothing -> empty.
func InferType(cells []Cell) ColumnType {
	var ints, floats, texts int
	for _, c := range cells {
		switch c.Kind {
		case KindInt:
			ints++
		case KindFloat:
			floats++
		case KindText:
			texts++
		}
	}

	switch {
	case ints+floats+texts == 0:
		return TypeEmpty
	case texts > 0 && ints+floats > 0:
		return TypeMixed
	case texts > 0:
		return TypeText
	case floats > 0:
		return TypeFloat
	default:
		return TypeInteger
	}
}

// Table is an ordered set of uniquely named, equal-length columns.
// A Table is never mutated after New returns it.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// New builds a table from columns, copying the cells and inferring each
// column's type. Names must be unique and all columns the same length.
func New(columns []Column) (*Table, error) {
	t := &Table{
		columns: make([]Column, len(columns)),
		index:   make(map[string]int, len(columns)),
	}

	for i, col := range columns {
		if _, dup := t.index[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		if i == 0 {
			t.rows = len(col.Cells)
		} else if len(col.Cells) != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, len(col.Cells), t.rows)
		}

		cells := make([]Cell, len(col.Cells))
		copy(cells, col.Cells)
		t.columns[i] = Column{Name: col.Name, Type: InferType(cells), Cells: cells}
		t.index[col.Name] = i
	}

	return t, nil
}

// MustNew is New for fixtures and tests; it panics on invalid input
func MustNew(columns []Column) *Table {
	t, err := New(columns)
	if err != nil {
		panic(err)
	}
	return t
}

// FromRows builds a table from a header and row-major cells
func FromRows(names []string, rows [][]Cell) (*Table, error) {
	columns := make([]Column, len(names))
	for j, name := range names {
		columns[j] = Column{Name: name, Cells: make([]Cell, len(rows))}
	}
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", i, len(row), len(names))
		}
		for j := range names {
			columns[j].Cells[i] = row[j]
		}
	}
	return New(columns)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return t.rows
}

// Width returns the number of columns
func (t *Table) Width() int {
	return len(t.columns)
}

// ColumnNames returns the column names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in order. Callers must not modify the cells.
func (t *Table) Columns() []Column {
	return t.columns
}

// Column looks up a column by name
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return &t.columns[i], true
}

// HasColumn reports whether the table has a column with the given name
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Row returns a copy of row i
func (t *Table) Row(i int) []Cell {
	row := make([]Cell, len(t.columns))
	for j := range t.columns {
		row[j] = t.columns[j].Cells[i]
	}
	return row
}

// Rows returns all rows in row-major order
func (t *Table) Rows() [][]Cell {
	rows := make([][]Cell, t.rows)
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return rows
}

// SelectRows returns a new table holding the given rows in the given order
func (t *Table) SelectRows(indices []int) *Table {
	columns := make([]Column, len(t.columns))
	for j, col := range t.columns {
		cells := make([]Cell, len(indices))
		for k, i := range indices {
			cells[k] = col.Cells[i]
		}
		columns[j] = Column{Name: col.Name, Cells: cells}
	}
	// Names are already unique and lengths equal.
	out, _ := New(columns)
	return out
}

// Head returns the first n rows, used for previews
func (t *Table) Head(n int) *Table {
	if n > t.rows {
		n = t.rows
	}
	if n < 0 {
		n = 0
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return t.SelectRows(indices)
}

// Schema returns column name -> type
func (t *Table) Schema() map[string]ColumnType {
	schema := make(map[string]ColumnType, len(t.columns))
	for _, c := range t.columns {
		schema[c.Name] = c.Type
	}
	return schema
}

// Records renders the table as string rows (header excluded)
func (t *Table) Records() [][]string {
	records := make([][]string, t.rows)
	for i := 0; i < t.rows; i++ {
		record := make([]string, len(t.columns))
		for j := range t.columns {
			record[j] = t.columns[j].Cells[i].String()
		}
		records[i] = record
	}
	return records
}

// Maps renders rows as column name -> plain value, for JSON previews
func (t *Table) Maps() []map[string]interface{} {
	out := make([]map[string]interface{}, t.rows)
	for i := 0; i < t.rows; i++ {
		row := make(map[string]interface{}, len(t.columns))
		for _, col := range t.columns {
			row[col.Name] = col.Cells[i].Value()
		}
		out[i] = row
	}
	return out
}
