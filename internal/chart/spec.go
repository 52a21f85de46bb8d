// Package chart turns a melted selection into a renderer-neutral chart spec.
package chart

import (
	"fmt"
	"strings"

	"gosieve/domain/table"
	"gosieve/internal/errors"
	"gosieve/internal/reshape"
)

// Point is one plotted (x, y) pair. X keeps the source cell's natural value.
type Point struct {
	X interface{} `json:"x"`
	Y float64     `json:"y"`
}

// Series is the plotted values of one Y column
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Spec describes a multi-series chart of Y columns against X
type Spec struct {
	Title  string          `json:"title"`
	Kind   table.ChartKind `json:"kind"`
	XField string          `json:"x_field"`
	YLabel string          `json:"y_label"`
	Series []Series        `json:"series"`
	Empty  bool            `json:"empty"`
}

// PointCount returns the number of points across all series
func (s *Spec) PointCount() int {
	n := 0
	for _, series := range s.Series {
		n += len(series.Points)
	}
	return n
}

// Build creates a chart spec from the melted rows, plotting only valid
// points. A spec with no points is returned flagged Empty.
func Build(sel table.Selection, melted *reshape.MeltResult) (*Spec, error) {
	kind, ok := table.ParseChartKind(string(sel.Kind))
	if !ok {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown chart kind %q", sel.Kind))
	}
	if melted == nil {
		return nil, errors.InvalidInput("nothing to chart")
	}

	spec := &Spec{
		Title:  Title(melted.X, melted.Y),
		Kind:   kind,
		XField: melted.X,
		YLabel: "value",
		Series: make([]Series, 0, len(melted.Y)),
	}

	for _, name := range melted.Y {
		series := Series{Name: name, Points: []Point{}}
		for _, row := range melted.Block(name) {
			if !row.Valid {
				continue
			}
			series.Points = append(series.Points, Point{X: row.X.Value(), Y: row.Value})
		}
		spec.Series = append(spec.Series, series)
	}

	spec.Empty = spec.PointCount() == 0
	return spec, nil
}

// Title names the chart after its columns
func Title(x string, ys []string) string {
	if len(ys) == 0 {
		return x
	}
	return fmt.Sprintf("%s vs %s", strings.Join(ys, ", "), x)
}
