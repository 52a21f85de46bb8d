package summary

import (
	"testing"

	"gosieve/domain/table"
	"gosieve/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeNumericColumn(t *testing.T) {
	tbl := table.MustNew([]table.Column{
		testkit.Floats("v", 1, 2, 3, 4, 5, 6, 7, 8),
	})

	summaries := Describe(tbl)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "v", s.Name)
	assert.Equal(t, table.TypeFloat, s.Type)
	assert.Equal(t, 8, s.Count)
	assert.Equal(t, 0, s.Nulls)
	assert.Equal(t, 8, s.Unique)
	assert.Empty(t, s.Top)

	require.NotNil(t, s.Describe)
	assert.Equal(t, 4.5, s.Describe.Mean)
	assert.InDelta(t, 2.449489743, s.Describe.StdDev, 1e-9)
	assert.Equal(t, 1.0, s.Describe.Min)
	assert.Equal(t, 2.0, s.Describe.Q25)
	assert.Equal(t, 4.5, s.Describe.Median)
	assert.Equal(t, 6.0, s.Describe.Q75)
	assert.Equal(t, 8.0, s.Describe.Max)
}

func TestDescribeTextColumn(t *testing.T) {
	tbl := table.MustNew([]table.Column{
		testkit.Cells("site", table.TextCell("B"), table.TextCell("A"), table.TextCell("A"), table.NullCell()),
	})

	s := Describe(tbl)[0]
	assert.Equal(t, table.TypeText, s.Type)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 1, s.Nulls)
	assert.Equal(t, 2, s.Unique)
	assert.Equal(t, "A", s.Top)
	assert.Nil(t, s.Describe)
}

func TestDescribeSmallSample(t *testing.T) {
	tbl := table.MustNew([]table.Column{
		testkit.Floats("v", 15.2),
	})

	s := Describe(tbl)[0]
	require.NotNil(t, s.Describe)
	assert.Equal(t, 0.0, s.Describe.StdDev)
	assert.Equal(t, 15.2, s.Describe.Q25)
	assert.Equal(t, 15.2, s.Describe.Q75)
}

func TestDescribeKeepsColumnOrder(t *testing.T) {
	summaries := Describe(testkit.ProfileTable())

	names := make([]string, len(summaries))
	for i, s := range summaries {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"depth", "temp", "salinity"}, names)
	assert.Equal(t, 3, summaries[1].Numeric)
}
