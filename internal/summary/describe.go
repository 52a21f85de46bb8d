// Package summary computes per-column descriptive statistics.
package summary

import (
	"gosieve/adapters/coercer"
	"gosieve/domain/table"

	"github.com/montanaflynn/stats"
)

// NumericSummary holds the distribution of a column's numeric cells
type NumericSummary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std"` // sample standard deviation, 0 for a single value
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// ColumnSummary describes one column
type ColumnSummary struct {
	Name     string           `json:"name"`
	Type     table.ColumnType `json:"type"`
	Count    int              `json:"count"` // non-null cells
	Nulls    int              `json:"nulls"`
	Numeric  int              `json:"numeric"` // cells that coerce to a number
	Unique   int              `json:"unique"`
	Top      string           `json:"top,omitempty"` // most frequent text value
	Describe *NumericSummary  `json:"describe,omitempty"`
}

// Describe summarizes every column of t in column order
func Describe(t *table.Table) []ColumnSummary {
	columns := t.Columns()
	out := make([]ColumnSummary, 0, len(columns))
	for i := range columns {
		out = append(out, DescribeColumn(&columns[i]))
	}
	return out
}

// DescribeColumn summarizes a single column
func DescribeColumn(col *table.Column) ColumnSummary {
	analysis := coercer.Default.AnalyzeColumn(col)
	s := ColumnSummary{
		Name:    col.Name,
		Type:    col.Type,
		Count:   analysis.ValidCount,
		Nulls:   analysis.NullCount,
		Numeric: analysis.NumericCount,
	}

	counts := make(map[string]int)
	for _, cell := range col.Cells {
		if cell.IsNull() {
			continue
		}
		counts[cell.String()]++
	}
	s.Unique = len(counts)
	if !col.Type.IsNumeric() {
		s.Top = mostFrequent(col.Cells, counts)
	}

	values, valid := coercer.CoerceColumn(col)
	data := make(stats.Float64Data, 0, len(values))
	for i, v := range values {
		if valid[i] {
			data = append(data, v)
		}
	}
	if len(data) > 0 {
		s.Describe = describeNumbers(data)
	}
	return s
}

func describeNumbers(data stats.Float64Data) *NumericSummary {
	mean, _ := stats.Mean(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	median, _ := stats.Median(data)

	summary := &NumericSummary{
		Mean:   mean,
		Min:    min,
		Max:    max,
		Median: median,
		Q25:    percentile(data, 25),
		Q75:    percentile(data, 75),
	}
	if len(data) > 1 {
		summary.StdDev, _ = stats.StandardDeviationSample(data)
	}
	return summary
}

// percentile falls back to nearest rank for samples too small to interpolate
func percentile(data stats.Float64Data, p float64) float64 {
	if v, err := stats.Percentile(data, p); err == nil {
		return v
	}
	v, _ := stats.PercentileNearestRank(data, p)
	return v
}

// mostFrequent returns the first value reaching the highest count
func mostFrequent(cells []table.Cell, counts map[string]int) string {
	top, best := "", 0
	for _, cell := range cells {
		if cell.IsNull() {
			continue
		}
		key := cell.String()
		if counts[key] > best {
			top, best = key, counts[key]
		}
	}
	return top
}
