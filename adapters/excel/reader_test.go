package excel

import (
	"os"
	"path/filepath"
	"testing"

	"gosieve/domain/table"
	"gosieve/internal/errors"
	"gosieve/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		ext      string
		expected Format
		wantErr  bool
	}{
		{ext: "csv", expected: FormatCSV},
		{ext: ".CSV", expected: FormatCSV},
		{ext: "xlsx", expected: FormatXLSX},
		{ext: " .Xlsx ", expected: FormatXLSX},
		{ext: "xls", wantErr: true},
		{ext: "pdf", wantErr: true},
		{ext: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			format, err := ParseFormat(tt.ext)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.CodeUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, format)
		})
	}
}

func TestLoadCSVInfersTypes(t *testing.T) {
	data := []byte("id,depth,temp,site,notes\n1,10,15.2,A,ok\n2,20,15,B,\n3,30,NA,C,7\n")

	tbl, err := Load(data, "csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "depth", "temp", "site", "notes"}, tbl.ColumnNames())
	assert.Equal(t, 3, tbl.Len())

	schema := tbl.Schema()
	assert.Equal(t, table.TypeInteger, schema["id"])
	assert.Equal(t, table.TypeInteger, schema["depth"])
	assert.Equal(t, table.TypeFloat, schema["temp"])
	assert.Equal(t, table.TypeText, schema["site"])
	assert.Equal(t, table.TypeMixed, schema["notes"])

	temp, _ := tbl.Column("temp")
	assert.True(t, temp.Cells[2].IsNull())
}

func TestLoadCSVPreservesRowOrder(t *testing.T) {
	tbl, err := Load([]byte(testkit.ProfileCSV), ".csv")
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"1", "-9999.0", "34"},
		{"2", "15.2", "34.1"},
		{"3", "15.5", "34.0"},
	}, tbl.Records())
}

func TestLoadCSVHeaderNormalisation(t *testing.T) {
	tbl, err := Load([]byte("\ufeffa, ,a,a\n1,2,3,4\n"), "csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "Unnamed: 1", "a.1", "a.2"}, tbl.ColumnNames())
}

func TestLoadCSVPadsShortRows(t *testing.T) {
	tbl, err := Load([]byte("a,b,c\n1,2\n"), "csv")
	require.NoError(t, err)

	c, _ := tbl.Column("c")
	assert.True(t, c.Cells[0].IsNull())
}

func TestLoadCSVHeaderOnly(t *testing.T) {
	tbl, err := Load([]byte("a,b\n"), "csv")
	require.NoError(t, err)

	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, 2, tbl.Width())
}

func TestLoadCSVParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: []byte("")},
		{name: "too many fields", data: []byte("a,b\n1,2,3\n")},
		{name: "bare quote", data: []byte("a,b\n1,\"2\n3\"x,4\n")},
		{name: "invalid utf8", data: []byte("a,b\n\xff\xfe,1\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.data, "csv")
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeParseError), "got %v", err)
		})
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load([]byte("a,b\n1,2\n"), "json")
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnsupportedFormat, errors.GetCode(err))
}

func TestLoadXLSXFirstSheet(t *testing.T) {
	data, err := testkit.WorkbookBytes("Readings", [][]interface{}{
		{"depth", "temp", "site"},
		{1, -9999.0, "A"},
		{2, 15.2, "B"},
		{3, 15.5, nil},
	})
	require.NoError(t, err)

	tbl, err := Load(data, "xlsx")
	require.NoError(t, err)

	assert.Equal(t, []string{"depth", "temp", "site"}, tbl.ColumnNames())
	assert.Equal(t, 3, tbl.Len())

	temp, _ := tbl.Column("temp")
	v, ok := temp.Cells[0].Float()
	require.True(t, ok)
	assert.Equal(t, -9999.0, v)

	site, _ := tbl.Column("site")
	assert.True(t, site.Cells[2].IsNull())
	assert.Equal(t, table.TypeInteger, tbl.Schema()["depth"])
}

func TestLoadXLSXWideDataRow(t *testing.T) {
	data, err := testkit.WorkbookBytes("Sheet1", [][]interface{}{
		{"a"},
		{1, 2},
	})
	require.NoError(t, err)

	tbl, err := Load(data, "xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "Unnamed: 1"}, tbl.ColumnNames())
}

func TestLoadXLSXSkipsLeadingBlankRows(t *testing.T) {
	data, err := testkit.WorkbookBytes("Sheet1", [][]interface{}{
		{},
		{"  "},
		{"depth", "temp"},
		{1, 15.2},
		{2, 14.8},
	})
	require.NoError(t, err)

	tbl, err := Load(data, "xlsx")
	require.NoError(t, err)

	assert.Equal(t, []string{"depth", "temp"}, tbl.ColumnNames())
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, table.TypeInteger, tbl.Schema()["depth"])
	assert.Equal(t, table.TypeFloat, tbl.Schema()["temp"])
}

func TestLoadXLSXBlankSheet(t *testing.T) {
	data, err := testkit.WorkbookBytes("Sheet1", [][]interface{}{{}, {""}})
	require.NoError(t, err)

	_, err = Load(data, "xlsx")
	assert.True(t, errors.HasCode(err, errors.CodeParseError))
}

func TestLoadXLSXBooleansAndDatesAreRaw(t *testing.T) {
	data, err := testkit.WorkbookBytes("Sheet1", [][]interface{}{
		{"ok", "when"},
		{true, 45000.5},
		{false, 45001.0},
	})
	require.NoError(t, err)

	tbl, err := Load(data, "xlsx")
	require.NoError(t, err)

	ok, _ := tbl.Column("ok")
	assert.Equal(t, table.IntCell(1), ok.Cells[0])
	assert.Equal(t, table.IntCell(0), ok.Cells[1])
	assert.Equal(t, table.TypeInteger, tbl.Schema()["ok"])
	assert.Equal(t, table.TypeFloat, tbl.Schema()["when"])
}

func TestLoadXLSXGarbage(t *testing.T) {
	_, err := Load([]byte("definitely not a zip archive"), "xlsx")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeParseError))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cast.CSV")
	require.NoError(t, os.WriteFile(path, []byte(testkit.ProfileCSV), 0o644))

	tbl, err := NewDataReader(nil).LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	_, err = NewDataReader(nil).LoadFile(filepath.Join(t.TempDir(), "cast.txt"))
	assert.True(t, errors.HasCode(err, errors.CodeUnsupportedFormat))
}
