package testkit

import (
	"testing"

	"gosieve/domain/table"

	"github.com/stretchr/testify/assert"
)

func TestProfileGeneratorDeterministic(t *testing.T) {
	config := DefaultProfileConfig()
	a := NewProfileGenerator(config).Generate()
	b := NewProfileGenerator(config).Generate()

	assert.Equal(t, a.Records(), b.Records())
	assert.Equal(t, config.Rows, a.Len())
	assert.Equal(t, []string{"station", "depth", "temp", "salinity", "oxygen"}, a.ColumnNames())
}

func TestProfileGeneratorInjectsSentinels(t *testing.T) {
	config := DefaultProfileConfig()
	config.SentinelRate = 0.5
	tbl := NewProfileGenerator(config).Generate()

	col, _ := tbl.Column("temp")
	hits := 0
	for _, c := range col.Cells {
		if v, ok := c.Float(); ok && v == table.DefaultSentinel {
			hits++
		}
	}
	assert.Greater(t, hits, 0)
	assert.Less(t, hits, config.Rows)
}

func TestProfileTableMatchesCSV(t *testing.T) {
	tbl := ProfileTable()

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, table.TypeFloat, tbl.Schema()["salinity"])
	assert.Equal(t, table.TypeInteger, tbl.Schema()["depth"])
}
