package genetics

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aprosim/polyneat/neat/network"
)

func TestGenome_WriteRead_roundTrip(t *testing.T) {
	reg, fIdx := newTestRegistry()
	actFns := newTestActFns(reg, fIdx)
	innov := NewInnovationRegistry()

	g, err := NewGenomeRandom(5, reg, actFns, innov, simpleSchema())
	require.NoError(t, err)
	g.Fitness = 3.5
	g.SpeciesId = 2
	if len(g.Connections) > 0 {
		g.Connections[0].Weight = 1.25
	}

	var buf bytes.Buffer
	require.NoError(t, WriteGenome(&buf, g, actFns))

	got, err := ReadGenome(&buf, reg, actFns)
	require.NoError(t, err)

	assert.Equal(t, g.NbBias, got.NbBias)
	assert.Equal(t, g.NbInput, got.NbInput)
	assert.Equal(t, g.NbOutput, got.NbOutput)
	assert.Equal(t, g.WeightExtremumInit, got.WeightExtremumInit)
	assert.Equal(t, g.RecMax, got.RecMax)
	assert.Equal(t, g.Fitness, got.Fitness)
	assert.Equal(t, g.SpeciesId, got.SpeciesId)
	assert.Len(t, got.Nodes, len(g.Nodes))
	assert.Len(t, got.Connections, len(g.Connections))
	for i, c := range g.Connections {
		assert.Equal(t, c.InnovId, got.Connections[i].InnovId)
		assert.Equal(t, c.InNode, got.Connections[i].InNode)
		assert.Equal(t, c.OutNode, got.Connections[i].OutNode)
		assert.Equal(t, c.Weight, got.Connections[i].Weight)
		assert.Equal(t, c.Enabled, got.Connections[i].Enabled)
	}
	for i, n := range g.Nodes {
		assert.Equal(t, n.Id, got.Nodes[i].Id)
		assert.Equal(t, n.InnovId, got.Nodes[i].InnovId)
		assert.Equal(t, n.Role, got.Nodes[i].Role)
		assert.Equal(t, n.TIn, got.Nodes[i].TIn)
		assert.Equal(t, n.TOut, got.Nodes[i].TOut)
	}
	require.NoError(t, got.Verify())
}

func TestGenome_WriteRead_hiddenNodePreservesActivation(t *testing.T) {
	reg, fIdx := newTestRegistry()
	actFns := newTestActFns(reg, fIdx)
	innov := NewInnovationRegistry()

	schema := simpleSchema()
	schema.HiddenCounts = [][]int{{1}}
	g, err := NewGenomeRandom(0, reg, actFns, innov, schema)
	require.NoError(t, err)

	var hidden *network.Node
	for _, n := range g.Nodes {
		if n.Role == network.RoleHidden {
			hidden = n
			break
		}
	}
	require.NotNil(t, hidden)
	hidden.Activation.Params = []float64{9.0}

	var buf bytes.Buffer
	require.NoError(t, WriteGenome(&buf, g, actFns))
	got, err := ReadGenome(&buf, reg, actFns)
	require.NoError(t, err)

	var gotHidden *network.Node
	for _, n := range got.Nodes {
		if n.Role == network.RoleHidden {
			gotHidden = n
			break
		}
	}
	require.NotNil(t, gotHidden)
	assert.Equal(t, hidden.Activation.Spec().Name, gotHidden.Activation.Spec().Name)
	assert.Equal(t, []float64{9.0}, gotHidden.Activation.Params)
}

func TestReadGenome_truncatedStream(t *testing.T) {
	reg, fIdx := newTestRegistry()
	actFns := newTestActFns(reg, fIdx)
	innov := NewInnovationRegistry()

	g, err := NewGenomeRandom(0, reg, actFns, innov, simpleSchema())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteGenome(&buf, g, actFns))

	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-1])
	_, err = ReadGenome(truncated, reg, actFns)
	assert.ErrorIs(t, err, ErrTruncatedStream)
}

func TestPopulation_WriteRead_roundTrip(t *testing.T) {
	reg, fIdx := newTestRegistry()
	actFns := newTestActFns(reg, fIdx)
	cfg := PopulationConfig{
		PopSize:                 4,
		SpeciationThreshInit:    3.0,
		StepThresh:              0.3,
		TargetSpeciesCount:      2,
		TargetSpeciesCountTol:   1,
		Compatibility:           CompatibilityCoefficients{Excess: 1, Disjoint: 1, WeightDiff: 0.4},
		ThreshGensSinceImproved: 15,
	}
	pop, err := NewPopulation(reg, actFns, simpleSchema(), cfg)
	require.NoError(t, err)
	for i, g := range pop.Genomes {
		g.Fitness = float64(i)
	}

	var buf bytes.Buffer
	require.NoError(t, WritePopulation(&buf, pop))

	got, err := ReadPopulation(&buf, reg, actFns, simpleSchema(), cfg)
	require.NoError(t, err)
	require.Len(t, got.Genomes, len(pop.Genomes))
	for i, g := range pop.Genomes {
		assert.Equal(t, g.Fitness, got.Genomes[i].Fitness)
	}

	// The reloaded registry must continue assigning innovation ids
	// consistent with the ones already used, never colliding with them.
	nextId := pop.Innovation.ConnectionInnovationByEndpoints(999, 998, 0)
	nextId2 := got.Innovation.ConnectionInnovationByEndpoints(999, 998, 0)
	assert.Equal(t, nextId, nextId2)

	got.Speciate()
	assert.NotEmpty(t, got.Species)
}

func TestReadPopulation_versionMismatch(t *testing.T) {
	reg, fIdx := newTestRegistry()
	actFns := newTestActFns(reg, fIdx)
	cfg := PopulationConfig{PopSize: 1, SpeciationThreshInit: 3.0}
	pop, err := NewPopulation(reg, actFns, simpleSchema(), cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePopulation(&buf, pop))

	raw := buf.Bytes()
	raw[0] = raw[0] + 1 // corrupt the leading version word
	_, err = ReadPopulation(bytes.NewReader(raw), reg, actFns, simpleSchema(), cfg)
	assert.ErrorIs(t, err, ErrVersionMismatch)
}

func TestReadPopulation_truncatedStream(t *testing.T) {
	reg, fIdx := newTestRegistry()
	actFns := newTestActFns(reg, fIdx)
	cfg := PopulationConfig{PopSize: 2, SpeciationThreshInit: 3.0}
	pop, err := NewPopulation(reg, actFns, simpleSchema(), cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePopulation(&buf, pop))

	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-1])
	_, err = ReadPopulation(truncated, reg, actFns, simpleSchema(), cfg)
	assert.ErrorIs(t, err, ErrTruncatedStream)
}

func TestInnovationRegistry_WriteRead_roundTrip(t *testing.T) {
	r := NewInnovationRegistry()
	r.ConnectionInnovation(0, 1, 0)
	r.ConnectionInnovation(1, 2, 0)
	r.NodeInnovation(0, 0, -1, 0)

	var buf bytes.Buffer
	require.NoError(t, WriteInnovationRegistry(&buf, r))

	got, err := ReadInnovationRegistry(&buf)
	require.NoError(t, err)
	assert.Equal(t, r.ConnectionInnovation(0, 1, 0), got.ConnectionInnovation(0, 1, 0))
	assert.Equal(t, r.ConnectionInnovation(1, 2, 0), got.ConnectionInnovation(1, 2, 0))
	assert.Equal(t, r.NodeInnovation(0, 0, -1, 0), got.NodeInnovation(0, 0, -1, 0))
}
