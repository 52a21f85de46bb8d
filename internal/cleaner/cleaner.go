// Package cleaner removes rows containing sentinel or missing values.
package cleaner

import (
	"gosieve/domain/table"
)

// Outcome distinguishes a usable cleaned table from an emptied one
type Outcome string

const (
	OutcomeCleaned Outcome = "cleaned"
	OutcomeEmpty   Outcome = "empty"
)

// RemovedRow records why a source row was dropped
type RemovedRow struct {
	Index           int      `json:"index"` // 0-based position in the source table
	SentinelColumns []string `json:"sentinel_columns,omitempty"`
	NullColumns     []string `json:"null_columns,omitempty"`
}

// Result is the outcome of cleaning one table. An empty result is a valid
// terminal state, not an error: callers must not export or chart it.
type Result struct {
	Table        *table.Table `json:"-"`
	Outcome      Outcome      `json:"outcome"`
	Sentinel     float64      `json:"sentinel"`
	SourceRows   int          `json:"source_rows"`
	Removed      []RemovedRow `json:"removed"`
	SentinelHits int          `json:"sentinel_hits"`
	NullHits     int          `json:"null_hits"`
}

// Empty returns true if every row was removed
func (r *Result) Empty() bool {
	return r.Outcome == OutcomeEmpty
}

// KeptRows returns the number of surviving rows
func (r *Result) KeptRows() int {
	return r.SourceRows - len(r.Removed)
}

// Clean marks every cell exactly equal to sentinel as missing, then drops
// every row with at least one missing cell in any column. Surviving rows
// keep their source order. The input table is not modified.
func Clean(t *table.Table, sentinel float64) *Result {
	result := &Result{
		Outcome:    OutcomeCleaned,
		Sentinel:   sentinel,
		SourceRows: t.Len(),
		Removed:    []RemovedRow{},
	}

	columns := t.Columns()
	kept := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		var removed *RemovedRow
		for _, col := range columns {
			cell := col.Cells[i]
			switch {
			case cell.IsNull():
				if removed == nil {
					removed = &RemovedRow{Index: i}
				}
				removed.NullColumns = append(removed.NullColumns, col.Name)
				result.NullHits++
			case isSentinel(cell, sentinel):
				if removed == nil {
					removed = &RemovedRow{Index: i}
				}
				removed.SentinelColumns = append(removed.SentinelColumns, col.Name)
				result.SentinelHits++
			}
		}
		if removed != nil {
			result.Removed = append(result.Removed, *removed)
			continue
		}
		kept = append(kept, i)
	}

	result.Table = t.SelectRows(kept)
	if result.Table.Len() == 0 {
		result.Outcome = OutcomeEmpty
	}
	return result
}

// CleanDefault cleans with the -9999.0 sentinel
func CleanDefault(t *table.Table) *Result {
	return Clean(t, table.DefaultSentinel)
}

// isSentinel compares exactly; text cells are never sentinels
func isSentinel(cell table.Cell, sentinel float64) bool {
	v, ok := cell.Float()
	return ok && v == sentinel
}
