package testkit

import (
	"math"
	"math/rand"

	"gosieve/domain/table"
)

// ProfileGeneratorConfig configures the synthetic instrument-profile generator
type ProfileGeneratorConfig struct {
	Rows         int     `json:"rows"`
	SentinelRate float64 `json:"sentinel_rate"` // chance a measurement cell is the sentinel
	NullRate     float64 `json:"null_rate"`     // chance a measurement cell is blank
	Sentinel     float64 `json:"sentinel"`
	Seed         int64   `json:"seed"`
}

// DefaultProfileConfig returns sensible defaults for profile generation
func DefaultProfileConfig() ProfileGeneratorConfig {
	return ProfileGeneratorConfig{
		Rows:         200,
		SentinelRate: 0.05,
		NullRate:     0.02,
		Sentinel:     table.DefaultSentinel,
		Seed:         42,
	}
}

// ProfileGenerator produces depth/temperature/salinity/oxygen casts where
// temperature falls and salinity rises with depth.
type ProfileGenerator struct {
	config ProfileGeneratorConfig
	rng    *rand.Rand
}

// NewProfileGenerator creates a new seeded generator
func NewProfileGenerator(config ProfileGeneratorConfig) *ProfileGenerator {
	return &ProfileGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds the table. The station column is text and never holds
// the sentinel.
func (g *ProfileGenerator) Generate() *table.Table {
	n := g.config.Rows
	station := make([]table.Cell, n)
	depth := make([]table.Cell, n)
	temp := make([]table.Cell, n)
	salinity := make([]table.Cell, n)
	oxygen := make([]table.Cell, n)

	stations := []string{"A1", "A2", "B1"}
	for i := 0; i < n; i++ {
		d := float64(i + 1)
		station[i] = table.TextCell(stations[i%len(stations)])
		depth[i] = table.IntCell(int64(i + 1))
		temp[i] = g.measurement(round(18.0-0.05*d+g.rng.NormFloat64()*0.3, 2))
		salinity[i] = g.measurement(round(34.0+0.004*d+g.rng.NormFloat64()*0.05, 3))
		oxygen[i] = g.measurement(round(6.5-0.01*d+g.rng.NormFloat64()*0.2, 2))
	}

	return table.MustNew([]table.Column{
		{Name: "station", Cells: station},
		{Name: "depth", Cells: depth},
		{Name: "temp", Cells: temp},
		{Name: "salinity", Cells: salinity},
		{Name: "oxygen", Cells: oxygen},
	})
}

func (g *ProfileGenerator) measurement(v float64) table.Cell {
	r := g.rng.Float64()
	switch {
	case r < g.config.SentinelRate:
		return table.FloatCell(g.config.Sentinel)
	case r < g.config.SentinelRate+g.config.NullRate:
		return table.NullCell()
	}
	return table.FloatCell(v)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
