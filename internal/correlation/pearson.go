// Package correlation computes Pearson correlations of one column against others.
package correlation

import (
	"math"

	"gosieve/adapters/coercer"
	"gosieve/domain/table"
	"gosieve/internal/errors"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	reasonTooFew       = "fewer than 2 jointly numeric rows"
	reasonZeroVariance = "zero variance"
	reasonNonNumericX  = "x column is not numeric"
	reasonUndefined    = "correlation undefined"
)

// Correlate computes Pearson r of x against each y over the rows where both
// coerce to a number. A column that cannot be correlated yields an
// insufficient_data entry; it never aborts the others.
func Correlate(t *table.Table, x string, ys []string) ([]table.CorrelationEntry, error) {
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

	xValues, xValid := coercer.CoerceColumn(xCol)
	xNumeric := false
	for _, v := range xValid {
		if v {
			xNumeric = true
			break
		}
	}

	entries := make([]table.CorrelationEntry, 0, len(ys))
	for _, y := range ys {
		yCol, _ := t.Column(y)
		if !xNumeric {
			entries = append(entries, insufficient(y, 0, reasonNonNumericX))
			continue
		}
		yValues, yValid := coercer.CoerceColumn(yCol)
		entries = append(entries, pairwise(y, xValues, xValid, yValues, yValid))
	}
	return entries, nil
}

// Pearson computes r and its two-sided p-value for two series. Extra values
// in the longer series are ignored.
func Pearson(xs, ys []float64) table.CorrelationEntry {
	if len(ys) < len(xs) {
		xs = xs[:len(ys)]
	}
	valid := make([]bool, len(xs))
	for i := range valid {
		valid[i] = true
	}
	return pairwise("", xs, valid, ys, valid)
}

func pairwise(name string, xValues []float64, xValid []bool, yValues []float64, yValid []bool) table.CorrelationEntry {
	var xs, ys []float64
	for i := range xValues {
		if xValid[i] && yValid[i] {
			xs = append(xs, xValues[i])
			ys = append(ys, yValues[i])
		}
	}

	n := len(xs)
	if n < 2 {
		return insufficient(name, n, reasonTooFew)
	}
	if constant(xs) || constant(ys) {
		return insufficient(name, n, reasonZeroVariance)
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return insufficient(name, n, reasonUndefined)
	}
	r = math.Max(-1, math.Min(1, r))

	entry := table.CorrelationEntry{
		Column: name,
		N:      n,
		R:      &r,
		Status: table.CorrelationOK,
	}
	if p, ok := pValue(r, n); ok {
		entry.PValue = &p
	}
	return entry
}

// pValue is the two-sided p-value of r under the t-distribution with n-2
// degrees of freedom. It is undefined for n = 2.
func pValue(r float64, n int) (float64, bool) {
	df := float64(n - 2)
	if df <= 0 {
		return 0, false
	}
	if math.Abs(r) >= 1 {
		return 0, true
	}

	t := r * math.Sqrt(df/(1-r*r))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * tDist.Survival(math.Abs(t))
	return math.Max(0, math.Min(1, p)), true
}

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func insufficient(name string, n int, reason string) table.CorrelationEntry {
	return table.CorrelationEntry{
		Column: name,
		N:      n,
		Status: table.CorrelationInsufficient,
		Reason: reason,
	}
}
