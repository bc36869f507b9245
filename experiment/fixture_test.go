package experiment

import (
	"github.com/aprosim/polyneat/neat/activation"
	"github.com/aprosim/polyneat/neat/genetics"
	"github.com/aprosim/polyneat/neat/types"
)

// newTestEnv builds a minimal single-domain (float64) registry,
// activation table, and genome schema shared by this package's tests:
// 1 bias, 2 inputs, 1 output, no initial hidden nodes, 3 initial
// connections.
func newTestEnv() (*types.Registry, *activation.Table, genetics.GenomeSchema) {
	reg := types.NewRegistry()
	fIdx := reg.Declare("float", types.KindFloat64, types.FromFloat64(0), types.FromFloat64(0))

	actFns := activation.NewTable()
	activation.RegisterDefaults(actFns, fIdx, -1)

	schema := genetics.GenomeSchema{
		BiasCounts:         []int{1},
		InputCounts:        []int{2},
		OutputCounts:       []int{1},
		HiddenCounts:       [][]int{{0}},
		NConnInit:          3,
		WeightExtremumInit: 1.0,
	}
	return reg, actFns, schema
}

func buildTestGenome(id int, fitness float64) *genetics.Genome {
	reg, actFns, schema := newTestEnv()
	innov := genetics.NewInnovationRegistry()
	g, err := genetics.NewGenomeRandom(id, reg, actFns, innov, schema)
	if err != nil {
		panic(err)
	}
	g.Fitness = fitness
	return g
}
