package genetics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPopulation(t *testing.T, popSize int) *Population {
	t.Helper()
	reg, fIdx := newTestRegistry()
	actFns := newTestActFns(reg, fIdx)

	cfg := PopulationConfig{
		PopSize:               popSize,
		SpeciationThreshInit:  3.0,
		StepThresh:            0.3,
		TargetSpeciesCount:    2,
		TargetSpeciesCountTol: 1,
		Compatibility:         CompatibilityCoefficients{Excess: 1, Disjoint: 1, WeightDiff: 0.4},
		ThreshGensSinceImproved: 15,
	}
	pop, err := NewPopulation(reg, actFns, simpleSchema(), cfg)
	require.NoError(t, err)
	return pop
}

func TestNewSpecies(t *testing.T) {
	g := &Genome{Id: 1}
	sp := NewSpecies(7, g)
	assert.Equal(t, 7, sp.Id)
	assert.True(t, sp.Alive)
	assert.Equal(t, 1, sp.Age)
	assert.Equal(t, []*Genome{g}, sp.Members)
}

func TestPopulation_Speciate_foundsSpecies(t *testing.T) {
	pop := testPopulation(t, 10)
	for _, g := range pop.Genomes {
		g.Fitness = 1.0
	}
	pop.Speciate()
	assert.NotEmpty(t, pop.Species)

	total := 0
	for _, sp := range pop.Species {
		total += len(sp.Members)
	}
	assert.Equal(t, len(pop.Genomes), total)
	for _, g := range pop.Genomes {
		assert.NotEqual(t, noSpecies, g.SpeciesId)
	}
}

func TestPopulation_Speciate_ageIncrementsOnSurvival(t *testing.T) {
	pop := testPopulation(t, 5)
	for _, g := range pop.Genomes {
		g.Fitness = 1.0
	}
	pop.Speciate()
	ages := make(map[int]int)
	for _, sp := range pop.Species {
		ages[sp.Id] = sp.Age
	}

	pop.Speciate()
	for _, sp := range pop.Species {
		if prev, ok := ages[sp.Id]; ok && sp.Alive {
			assert.Greater(t, sp.Age, prev)
		}
	}
}

func TestPopulation_updateFitnesses_tracksStagnation(t *testing.T) {
	pop := testPopulation(t, 5)
	for _, g := range pop.Genomes {
		g.Fitness = 1.0
	}
	pop.Speciate()
	for _, sp := range pop.Species {
		require.Equal(t, 0, sp.GensSinceImproved)
	}

	// Same fitness next round: average does not improve, so every
	// surviving species should see its stagnation counter advance.
	pop.Speciate()
	for _, sp := range pop.Species {
		if sp.Alive {
			assert.Equal(t, 1, sp.GensSinceImproved)
		}
	}
}
