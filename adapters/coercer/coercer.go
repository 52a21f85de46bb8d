package coercer

import (
	"math"
	"strconv"
	"strings"

	"gosieve/domain/table"
)

// TypeCoercer handles deterministic cell typing and numeric coercion
type TypeCoercer struct {
	config CoercionConfig
	na     map[string]bool
}

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	NAValues  []string `json:"na_values"`  // Raw strings read as missing
	TrimSpace bool     `json:"trim_space"` // Whether to trim cells before typing
}

// DefaultNAValues are the raw strings read as missing values
var DefaultNAValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NAValues:  DefaultNAValues,
		TrimSpace: true,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	na := make(map[string]bool, len(config.NAValues))
	for _, v := range config.NAValues {
		na[v] = true
	}
	return &TypeCoercer{config: config, na: na}
}

// Default is the coercer used by the package-level helpers
var Default = NewTypeCoercer(DefaultCoercionConfig())

// ParseCell types a raw source string: NA token -> null, integer literal ->
// int, finite float literal -> float, anything else -> text.
func (c *TypeCoercer) ParseCell(raw string) table.Cell {
	s := raw
	if c.config.TrimSpace {
		s = strings.TrimSpace(s)
	}
	if c.na[s] {
		return table.NullCell()
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return table.IntCell(i)
	}
	if f, ok := c.tryParseNumeric(s); ok {
		return table.FloatCell(f)
	}
	return table.TextCell(s)
}

// ToNumber coerces a cell to float64. Numbers succeed, text succeeds when
// it reads as a finite number, null never does.
func (c *TypeCoercer) ToNumber(cell table.Cell) (float64, bool) {
	switch cell.Kind {
	case table.KindInt, table.KindFloat:
		v, _ := cell.Float()
		if math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case table.KindText:
		return c.tryParseNumeric(strings.TrimSpace(cell.Text))
	}
	return 0, false
}

// CoerceColumn coerces every cell of a column, returning values and a
// parallel validity mask. Invalid positions hold 0.
func (c *TypeCoercer) CoerceColumn(col *table.Column) ([]float64, []bool) {
	values := make([]float64, len(col.Cells))
	valid := make([]bool, len(col.Cells))
	for i, cell := range col.Cells {
		values[i], valid[i] = c.ToNumber(cell)
	}
	return values, valid
}

// AnalyzeColumn counts how the cells of a column coerce
func (c *TypeCoercer) AnalyzeColumn(col *table.Column) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(col.Cells)}
	for _, cell := range col.Cells {
		if cell.IsNull() {
			analysis.NullCount++
			continue
		}
		analysis.ValidCount++
		if _, ok := c.ToNumber(cell); ok {
			analysis.NumericCount++
		} else {
			analysis.TextCount++
		}
	}
	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
	}
	analysis.RecommendedType = table.InferType(col.Cells)
	return analysis
}

// tryParseNumeric attempts to parse a finite decimal number.
// Hex literals, Inf and NaN are rejected.
func (c *TypeCoercer) tryParseNumeric(s string) (float64, bool) {
	if s == "" || strings.ContainsAny(s, "xXpP_") {
		return 0, false
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// TypeAnalysis contains the results of column coercion analysis
type TypeAnalysis struct {
	TotalCount      int              `json:"total_count"`
	ValidCount      int              `json:"valid_count"`
	NullCount       int              `json:"null_count"`
	NumericCount    int              `json:"numeric_count"`
	TextCount       int              `json:"text_count"`
	NumericRatio    float64          `json:"numeric_ratio"`
	RecommendedType table.ColumnType `json:"recommended_type"`
}

// ParseCell types a raw string with the default coercer
func ParseCell(raw string) table.Cell {
	return Default.ParseCell(raw)
}

// ToNumber coerces a cell with the default coercer
func ToNumber(cell table.Cell) (float64, bool) {
	return Default.ToNumber(cell)
}

// CoerceColumn coerces a column with the default coercer
func CoerceColumn(col *table.Column) ([]float64, []bool) {
	return Default.CoerceColumn(col)
}
