package excel

import (
	"gosieve/adapters/coercer"
)

// ExcelConfig holds configuration for reading and exporting tables
type ExcelConfig struct {
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
	SheetName      string                 `json:"sheet_name"`
	CSVBOM         bool                   `json:"csv_bom"`
}

// ExcelConfigFromExport builds the reader/exporter config for a sheet name
// and BOM setting, keeping the default coercion rules
func ExcelConfigFromExport(sheetName string, csvBOM bool) ExcelConfig {
	config := DefaultExcelConfig()
	config.SheetName = SanitizeSheetName(sheetName)
	config.CSVBOM = csvBOM
	return config
}

// NewReader creates a DataReader using the config's coercion rules
func (c ExcelConfig) NewReader() *DataReader {
	return NewDataReader(coercer.NewTypeCoercer(c.CoercionConfig))
}

// CSVOptions returns the CSV export options for the config
func (c ExcelConfig) CSVOptions() CSVOptions {
	return CSVOptions{BOMPrefix: c.CSVBOM}
}

// DefaultExcelConfig returns sensible defaults for Excel processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		CoercionConfig: coercer.DefaultCoercionConfig(),
		SheetName:      DefaultSheetName,
		CSVBOM:         false,
	}
}
