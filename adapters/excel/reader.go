package excel

import (
	"bytes"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"gosieve/adapters/coercer"
	"gosieve/domain/table"
	"gosieve/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Format is a supported upload format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ContentType returns the MIME type used for downloads
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// ParseFormat normalizes an extension hint such as ".CSV" or "xlsx"
func ParseFormat(ext string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", errors.UnsupportedFormat(ext)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DataReader parses uploaded CSV and XLSX content into tables
type DataReader struct {
	coercer *coercer.TypeCoercer
}

// NewDataReader creates a reader that types cells with the given coercer
func NewDataReader(c *coercer.TypeCoercer) *DataReader {
	if c == nil {
		c = coercer.Default
	}
	return &DataReader{coercer: c}
}

// Load parses raw file content using the extension hint
func (r *DataReader) Load(data []byte, ext string) (*table.Table, error) {
	format, err := ParseFormat(ext)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	var rows [][]string
	switch format {
	case FormatCSV:
		rows, err = r.readCSVRows(data)
	case FormatXLSX:
		rows, err = r.readExcelRows(data)
	}
	if err != nil {
		return nil, err
	}

	t, err := r.processRows(format, rows)
	if err != nil {
		return nil, err
	}

	log.Printf("[DataReader] %s parsed in %.2fms (%d columns, %d rows)",
		strings.ToUpper(string(format)), float64(time.Since(startTime).Nanoseconds())/1e6, t.Width(), t.Len())
	return t, nil
}

// LoadFile parses a file on disk, using its extension as the format hint
func (r *DataReader) LoadFile(path string) (*table.Table, error) {
	ext := filepath.Ext(path)
	if _, err := ParseFormat(ext); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return r.Load(data, ext)
}

// Load parses raw file content with the default reader
func Load(data []byte, ext string) (*table.Table, error) {
	return NewDataReader(nil).Load(data, ext)
}

// readCSVRows reads delimited text; rows may be shorter than the header
// but never longer.
func (r *DataReader) readCSVRows(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, errors.ParseError("CSV", stderrors.New("content is not valid UTF-8"))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.ParseError("CSV", err)
	}
	if len(rows) == 0 {
		return nil, errors.ParseError("CSV", stderrors.New("no header row"))
	}

	width := len(rows[0])
	for i, row := range rows[1:] {
		if len(row) > width {
			return nil, errors.ParseError("CSV",
				fmt.Errorf("line %d: expected %d fields, saw %d", i+2, width, len(row)))
		}
	}
	return rows, nil
}

// readExcelRows reads the first worksheet with raw (unformatted) values
func (r *DataReader) readExcelRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.ParseError("XLSX", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ParseError("XLSX", stderrors.New("workbook has no worksheets"))
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.ParseError("XLSX", fmt.Errorf("failed to read sheet %q: %w", sheets[0], err))
	}
	// The table starts at the first row holding a non-blank cell.
	for len(rows) > 0 && blankRow(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, errors.ParseError("XLSX", fmt.Errorf("sheet %q is empty", sheets[0]))
	}
	log.Printf("[DataReader] Sheet %q read (%d rows)", sheets[0], len(rows))

	// Data cells to the right of the header get unnamed columns.
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for len(rows[0]) < width {
		rows[0] = append(rows[0], "")
	}
	return rows, nil
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// processRows converts raw string rows into a typed table
func (r *DataReader) processRows(format Format, rows [][]string) (*table.Table, error) {
	headers := normalizeHeaders(rows[0])

	columns := make([]table.Column, len(headers))
	for j, name := range headers {
		columns[j] = table.Column{Name: name, Cells: make([]table.Cell, 0, len(rows)-1)}
	}

	for _, row := range rows[1:] {
		for j := range headers {
			cell := table.NullCell()
			if j < len(row) {
				cell = r.coercer.ParseCell(row[j])
			}
			columns[j].Cells = append(columns[j].Cells, cell)
		}
	}

	t, err := table.New(columns)
	if err != nil {
		return nil, errors.ParseError(strings.ToUpper(string(format)), err)
	}
	return t, nil
}

// normalizeHeaders trims names, names blank headers "Unnamed: i" and
// suffixes duplicates with ".1", ".2", ...
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for n := 1; seen[candidate]; n++ {
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		seen[candidate] = true
		headers[i] = candidate
	}
	return headers
}
