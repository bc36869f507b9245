package genetics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aprosim/polyneat/neat/network"
)

func conn(innov int64, in, out int, weight float32, enabled bool) *network.Connection {
	c := network.NewConnection(innov, in, out, 0, weight)
	c.Enabled = enabled
	return c
}

func TestCompareGenomes_identical(t *testing.T) {
	a := &Genome{Connections: []*network.Connection{conn(1, 0, 1, 1.0, true), conn(2, 0, 2, -1.0, true)}}
	b := &Genome{Connections: []*network.Connection{conn(1, 0, 1, 1.0, true), conn(2, 0, 2, -1.0, true)}}
	coeff := CompatibilityCoefficients{Excess: 1, Disjoint: 1, WeightDiff: 0.4}
	assert.Equal(t, 0.0, CompareGenomes(a, b, coeff))
}

func TestCompareGenomes_noSharedInnovation(t *testing.T) {
	a := &Genome{Connections: []*network.Connection{conn(1, 0, 1, 1.0, true)}}
	b := &Genome{Connections: []*network.Connection{conn(2, 0, 1, 1.0, true)}}
	coeff := CompatibilityCoefficients{Excess: 1, Disjoint: 1, WeightDiff: 0.4}
	assert.True(t, math.IsInf(CompareGenomes(a, b, coeff), 1))
}

func TestCompareGenomes_excessAndDisjoint(t *testing.T) {
	a := &Genome{Connections: []*network.Connection{
		conn(1, 0, 1, 1.0, true),
		conn(2, 0, 2, 1.0, true),
		conn(4, 0, 3, 1.0, true), // excess relative to b
	}}
	b := &Genome{Connections: []*network.Connection{
		conn(1, 0, 1, 1.0, true),
		conn(3, 0, 2, 1.0, true), // disjoint relative to a
	}}
	coeff := CompatibilityCoefficients{Excess: 1, Disjoint: 1, WeightDiff: 0.4}
	dist := CompareGenomes(a, b, coeff)
	assert.Greater(t, dist, 0.0)
}

func TestCompareGenomes_weightDifference(t *testing.T) {
	a := &Genome{Connections: []*network.Connection{conn(1, 0, 1, 1.0, true)}}
	b := &Genome{Connections: []*network.Connection{conn(1, 0, 1, 3.0, true)}}
	coeff := CompatibilityCoefficients{Excess: 1, Disjoint: 1, WeightDiff: 1.0}
	assert.Equal(t, 2.0, CompareGenomes(a, b, coeff))
}

func TestCompareGenomes_ignoresDisabledConnections(t *testing.T) {
	a := &Genome{Connections: []*network.Connection{conn(1, 0, 1, 1.0, false)}}
	b := &Genome{Connections: []*network.Connection{conn(1, 0, 1, 1.0, false)}}
	coeff := CompatibilityCoefficients{Excess: 1, Disjoint: 1, WeightDiff: 0.4}
	assert.True(t, math.IsInf(CompareGenomes(a, b, coeff), 1))
}
