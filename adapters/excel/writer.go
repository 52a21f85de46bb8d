package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"gosieve/domain/table"
	"gosieve/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is the worksheet name used for cleaned exports
const DefaultSheetName = "CleanedData"

// ChartSheetName is the worksheet holding the native Excel chart
const ChartSheetName = "Chart"

// CSVOptions configures CSV export
type CSVOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes the table as comma-delimited text with a header row and
// no index column.
func WriteCSV(w io.Writer, t *table.Table, opts CSVOptions) error {
	if opts.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range t.Records() {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportCSV renders the table to CSV bytes
func ExportCSV(t *table.Table, opts CSVOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t, opts); err != nil {
		return nil, errors.Wrap(err, "CSV export failed")
	}
	log.Printf("[Exporter] CSV written (%d rows, %d bytes)", t.Len(), buf.Len())
	return buf.Bytes(), nil
}

// ChartOptions describes a native chart to embed in an XLSX export
type ChartOptions struct {
	Kind  table.ChartKind
	Title string
	X     string
	Y     []string
}

// ExportXLSX renders the table to a single-worksheet workbook
func ExportXLSX(t *table.Table, sheetName string) ([]byte, error) {
	return exportWorkbook(t, sheetName, nil)
}

// ExportXLSXWithChart renders the table plus a chart sheet plotting the
// selected Y columns against X.
func ExportXLSXWithChart(t *table.Table, sheetName string, chart ChartOptions) ([]byte, error) {
	return exportWorkbook(t, sheetName, &chart)
}

func exportWorkbook(t *table.Table, sheetName string, chart *ChartOptions) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SanitizeSheetName(sheetName)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, errors.Wrap(err, "failed to name worksheet")
	}

	header := make([]interface{}, t.Width())
	for j, name := range t.ColumnNames() {
		header[j] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, errors.Wrap(err, "failed to write header row")
	}

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		values := make([]interface{}, len(row))
		for j, cell := range row {
			values[j] = cell.Value()
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, errors.Wrap(err, "failed to address row")
		}
		if err := f.SetSheetRow(sheet, cellRef, &values); err != nil {
			return nil, errors.Wrapf(err, "failed to write row %d", i+1)
		}
	}

	if chart != nil && t.Len() > 0 {
		if err := addChart(f, t, sheet, *chart); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "XLSX export failed")
	}
	log.Printf("[Exporter] XLSX written (sheet %q, %d rows, %d bytes)", sheet, t.Len(), buf.Len())
	return buf.Bytes(), nil
}

func addChart(f *excelize.File, t *table.Table, sheet string, opts ChartOptions) error {
	xRef, err := columnRange(t, sheet, opts.X)
	if err != nil {
		return err
	}

	series := make([]excelize.ChartSeries, 0, len(opts.Y))
	for _, y := range opts.Y {
		yRef, err := columnRange(t, sheet, y)
		if err != nil {
			return err
		}
		series = append(series, excelize.ChartSeries{
			Name:       y,
			Categories: xRef,
			Values:     yRef,
		})
	}
	if len(series) == 0 {
		return nil
	}

	if _, err := f.NewSheet(ChartSheetName); err != nil {
		return errors.Wrap(err, "failed to create chart sheet")
	}

	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("%s vs %s", strings.Join(opts.Y, ", "), opts.X)
	}

	err = f.AddChart(ChartSheetName, "A1", &excelize.Chart{
		Type:   excelChartType(opts.Kind),
		Series: series,
		Title:  []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{Position: "bottom"},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: opts.X}}},
	})
	if err != nil {
		return errors.Wrap(err, "failed to add chart")
	}
	return nil
}

// columnRange returns an absolute data range such as 'Data'!$B$2:$B$10
func columnRange(t *table.Table, sheet, column string) (string, error) {
	names := t.ColumnNames()
	for j, name := range names {
		if name != column {
			continue
		}
		letter, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return "", errors.Wrap(err, "failed to address column")
		}
		quoted := strings.ReplaceAll(sheet, "'", "''")
		return fmt.Sprintf("'%s'!$%s$2:$%s$%d", quoted, letter, letter, t.Len()+1), nil
	}
	return "", errors.ColumnNotFound(column)
}

func excelChartType(kind table.ChartKind) excelize.ChartType {
	switch kind {
	case table.ChartScatter:
		return excelize.Scatter
	case table.ChartBar:
		return excelize.Col
	case table.ChartArea:
		return excelize.Area
	}
	return excelize.Line
}

// SanitizeSheetName applies Excel's worksheet naming rules: no []:*?/\
// characters and at most 31 characters.
func SanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.Trim(name, "'")
	if utf8.RuneCountInString(name) > 31 {
		name = string([]rune(name)[:31])
	}
	if name == "" {
		return DefaultSheetName
	}
	return name
}
