package table

import (
	"strings"
)

// ChartKind is the chart type hint passed by the caller
type ChartKind string

const (
	ChartLine    ChartKind = "line"
	ChartScatter ChartKind = "scatter"
	ChartBar     ChartKind = "bar"
	ChartArea    ChartKind = "area"
)

// ParseChartKind normalizes a chart hint; empty means line
func ParseChartKind(s string) (ChartKind, bool) {
	switch ChartKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", ChartLine:
		return ChartLine, true
	case ChartScatter:
		return ChartScatter, true
	case ChartBar:
		return ChartBar, true
	case ChartArea:
		return ChartArea, true
	}
	return "", false
}

// Selection is the caller's choice of X column, Y columns and chart kind
type Selection struct {
	X    string    `json:"x" validate:"required"`
	Y    []string  `json:"y" validate:"required,min=1,dive,required"`
	Kind ChartKind `json:"kind,omitempty" validate:"omitempty,oneof=line scatter bar area"`
}

// Normalize returns a copy with duplicate Y names removed, keeping the
// first occurrence, and the chart kind defaulted to line.
func (s Selection) Normalize() Selection {
	out := Selection{X: s.X, Kind: s.Kind}
	if out.Kind == "" {
		out.Kind = ChartLine
	}
	out.Y = UniqueNames(s.Y)
	return out
}

// UniqueNames drops repeated names, keeping order
func UniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// LongFormRow is one (x, variable, value) triple of a melted table.
// Valid is false when the source cell did not coerce to a number.
type LongFormRow struct {
	X        Cell    `json:"-"`
	Variable string  `json:"variable"`
	Value    float64 `json:"value"`
	Valid    bool    `json:"valid"`
}

// CorrelationStatus tells whether r could be computed
type CorrelationStatus string

const (
	CorrelationOK           CorrelationStatus = "ok"
	CorrelationInsufficient CorrelationStatus = "insufficient_data"
)

// CorrelationEntry is the Pearson correlation of X against one Y column.
// R and PValue are nil when undefined.
type CorrelationEntry struct {
	Column string            `json:"column"`
	N      int               `json:"n_valid"`
	R      *float64          `json:"r,omitempty"`
	PValue *float64          `json:"p_value,omitempty"`
	Status CorrelationStatus `json:"status"`
	Reason string            `json:"reason,omitempty"`
}

// Computable returns true if r is defined
func (e CorrelationEntry) Computable() bool {
	return e.Status == CorrelationOK && e.R != nil
}
