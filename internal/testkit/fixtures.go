package testkit

import (
	"bytes"
	"fmt"

	"gosieve/domain/table"

	"github.com/xuri/excelize/v2"
)

// ProfileCSV is the three-row depth/temp/salinity cast with one sentinel
const ProfileCSV = `depth,temp,salinity
1,-9999.0,34
2,15.2,34.1
3,15.5,34.0
`

// ProfileTable returns ProfileCSV as a typed table
func ProfileTable() *table.Table {
	return table.MustNew([]table.Column{
		{Name: "depth", Cells: []table.Cell{table.IntCell(1), table.IntCell(2), table.IntCell(3)}},
		{Name: "temp", Cells: []table.Cell{table.FloatCell(-9999.0), table.FloatCell(15.2), table.FloatCell(15.5)}},
		{Name: "salinity", Cells: []table.Cell{table.IntCell(34), table.FloatCell(34.1), table.FloatCell(34.0)}},
	})
}

// Floats builds a float column
func Floats(name string, values ...float64) table.Column {
	cells := make([]table.Cell, len(values))
	for i, v := range values {
		cells[i] = table.FloatCell(v)
	}
	return table.Column{Name: name, Cells: cells}
}

// Texts builds a text column
func Texts(name string, values ...string) table.Column {
	cells := make([]table.Cell, len(values))
	for i, v := range values {
		cells[i] = table.TextCell(v)
	}
	return table.Column{Name: name, Cells: cells}
}

// Cells builds a column from prepared cells
func Cells(name string, cells ...table.Cell) table.Column {
	return table.Column{Name: name, Cells: cells}
}

// WorkbookBytes writes raw rows to the given sheet of a new workbook.
// Row 0 is the header. Values are written as-is so tests control cell types.
func WorkbookBytes(sheet string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return nil, err
		}
	}
	for i, row := range rows {
		values := row
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
