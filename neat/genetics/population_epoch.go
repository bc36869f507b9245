package genetics

import (
	"math/rand"

	neatmath "github.com/aprosim/polyneat/neat/math"
	"github.com/aprosim/polyneat/neat/network"
	"github.com/aprosim/polyneat/neat/threadpool"
)

// Epoch advances the population by exactly one generation (spec
// §4.9-4.11): speciate the current genomes against their retained
// species, compute offspring quotas, reproduce into a new genome list,
// mutate every non-elite genome, and increment Generation. Fitnesses
// for the current genomes must already be set via SetFitness or
// EvaluateFitness before calling Epoch.
func (p *Population) Epoch() {
	p.Speciate()
	p.buildNextGen()
	for _, g := range p.Genomes {
		if g.Id == p.eliteId {
			continue
		}
		g.Mutate(p.Innovation, p.Config.Mutation)
	}
	p.Generation++
}

// SequentialPopulationEpochExecutor evaluates fn over every genome on
// the calling goroutine, then advances one epoch.
func SequentialPopulationEpochExecutor(p *Population, fn FitnessFunc) {
	p.EvaluateFitness(fn, nil)
	p.Epoch()
}

// ParallelPopulationEpochExecutor dispatches fn across pool, then
// advances one epoch once every evaluation has returned.
func ParallelPopulationEpochExecutor(p *Population, fn FitnessFunc, pool *threadpool.Pool[struct{}]) {
	p.EvaluateFitness(fn, pool)
	p.Epoch()
}

// buildNextGen implements spec §4.11: elitism clone, per-species
// fitness-proportional reproduction, padding with fresh random genomes,
// then retained-id respeciation.
func (p *Population) buildNextGen() {
	next := make([]*Genome, 0, p.Config.PopSize)

	p.eliteId = -1
	if p.Config.Elitism && p.fittest != nil {
		elite := p.fittest.Clone(p.nextGenomeId)
		p.eliteId = elite.Id
		p.nextGenomeId++
		next = append(next, elite)
	}

	for _, sp := range p.Species {
		if !sp.Alive || sp.AllowedOffspring <= 0 || len(sp.Members) == 0 {
			continue
		}
		for i := 0; i < sp.AllowedOffspring && len(next) < p.Config.PopSize; i++ {
			parentA := selectParent(sp)
			parentB := selectParent(sp)
			child := crossover(p.nextGenomeId, parentA, parentB)
			p.nextGenomeId++
			next = append(next, child)
		}
	}

	for len(next) < p.Config.PopSize {
		g, err := NewGenomeRandom(p.nextGenomeId, p.Types, p.ActFns, p.Innovation, p.Schema)
		if err != nil {
			// Schema was already validated at NewPopulation construction
			// time; a later failure here would be a bug, not bad data.
			panic(err)
		}
		p.nextGenomeId++
		next = append(next, g)
	}
	if len(next) > p.Config.PopSize {
		next = next[:p.Config.PopSize]
	}

	p.Genomes = next
	p.reassignBySpeciesId()
}

// reassignBySpeciesId implements spec §4.11's "reset all species
// members and alive flags, then re-assign genomes to species using
// their retained speciesId" — cheap bookkeeping, not a distance
// recomputation (that is Speciate's job, run once per epoch instead).
func (p *Population) reassignBySpeciesId() {
	byId := make(map[int]*Species, len(p.Species))
	for _, sp := range p.Species {
		sp.Members = sp.Members[:0]
		sp.Alive = false
		byId[sp.Id] = sp
	}
	for _, g := range p.Genomes {
		sp, ok := byId[g.SpeciesId]
		if !ok {
			continue // fresh padding genome; Speciate founds its species next epoch
		}
		sp.Members = append(sp.Members, g)
		sp.Alive = true
	}
}

// selectParent draws a member of sp with probability proportional to
// fitness (spec §4.11 selectParent), falling back to a uniform draw
// when every member's fitness is non-positive.
func selectParent(sp *Species) *Genome {
	if len(sp.Members) == 1 {
		return sp.Members[0]
	}
	probs := make([]float64, len(sp.Members))
	var total float64
	for i, m := range sp.Members {
		if m.Fitness > 0 {
			probs[i] = m.Fitness
			total += m.Fitness
		}
	}
	if total <= 0 {
		return sp.Members[rand.Intn(len(sp.Members))]
	}
	idx := neatmath.SingleRouletteThrow(probs)
	if idx < 0 {
		return sp.Members[len(sp.Members)-1]
	}
	return sp.Members[idx]
}

// crossover implements spec §4.11: clone the fitter parent's structure,
// then for every connection shared by innovation id with the other
// parent, with probability 0.5 take that parent's weight instead.
func crossover(newId int, a, b *Genome) *Genome {
	fitter, other := a, b
	if b.Fitness > a.Fitness {
		fitter, other = b, a
	}
	child := fitter.Clone(newId)

	otherByInnov := make(map[int64]*network.Connection, len(other.Connections))
	for _, c := range other.Connections {
		otherByInnov[c.InnovId] = c
	}
	for _, c := range child.Connections {
		if oc, ok := otherByInnov[c.InnovId]; ok && rand.Float64() < 0.5 {
			c.Weight = oc.Weight
		}
	}

	child.SpeciesId = fitter.SpeciesId
	child.Fitness = 0
	return child
}
