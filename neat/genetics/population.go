package genetics

import (
	"github.com/pkg/errors"

	"github.com/aprosim/polyneat/neat/activation"
	"github.com/aprosim/polyneat/neat/threadpool"
	"github.com/aprosim/polyneat/neat/types"
)

// PopulationConfig gathers every threshold driving speciation,
// fitness accounting, and reproduction (spec §4.9-4.11), kept separate
// from neat.Options for the same reason as MutationConfig.
type PopulationConfig struct {
	PopSize int
	Elitism bool

	SpeciationThreshInit float64
	StepThresh           float64
	TargetSpeciesCount   int
	TargetSpeciesCountTol int

	ThreshGensSinceImproved int

	Compatibility CompatibilityCoefficients
	Mutation      MutationConfig
}

// Population owns every Genome, the Species partitioning them, and the
// InnovationRegistry they share (spec §5: "the population exclusively
// owns its genomes and species; the registry is shared by reference
// with the population only").
type Population struct {
	Genomes []*Genome
	Species []*Species

	Generation       int
	SpeciationThresh float64

	nextGenomeId  int
	nextSpeciesId int
	// fittest is the current generation's highest-fitness genome,
	// recorded by updateFitnesses for buildNextGen's elitism step.
	fittest *Genome
	// eliteId is the id of this generation's elitism clone, or -1 if
	// elitism is off or has not run yet; buildNextGen's caller skips
	// mutating it.
	eliteId int

	Config PopulationConfig
	Schema GenomeSchema

	Innovation *InnovationRegistry
	Types      *types.Registry
	ActFns     *activation.Table
}

// NewPopulation builds cfg.PopSize random genomes from schema, sharing
// one fresh InnovationRegistry (spec §4.3, §4.9).
func NewPopulation(reg *types.Registry, actFns *activation.Table, schema GenomeSchema, cfg PopulationConfig) (*Population, error) {
	if cfg.PopSize <= 0 {
		return nil, errors.New("genetics: population size must be positive")
	}
	innov := NewInnovationRegistry()
	p := &Population{
		Config:           cfg,
		Schema:           schema,
		SpeciationThresh: cfg.SpeciationThreshInit,
		Innovation:       innov,
		Types:            reg,
		ActFns:           actFns,
		eliteId:          -1,
	}
	for i := 0; i < cfg.PopSize; i++ {
		g, err := NewGenomeRandom(p.nextGenomeId, reg, actFns, innov, schema)
		if err != nil {
			return nil, err
		}
		p.nextGenomeId++
		p.Genomes = append(p.Genomes, g)
	}
	return p, nil
}

// genomeById is a linear lookup: population sizes in this domain are
// small enough (hundreds) that an index map buys nothing a harness
// would notice.
func (p *Population) genomeById(id int) *Genome {
	for _, g := range p.Genomes {
		if g.Id == id {
			return g
		}
	}
	return nil
}

// SetFitness records the fitness a harness computed for genomeId (spec
// §6 Population.setFitness).
func (p *Population) SetFitness(genomeId int, fitness float64) error {
	g := p.genomeById(genomeId)
	if g == nil {
		return errors.Errorf("genetics: no genome with id %d", genomeId)
	}
	g.Fitness = fitness
	return nil
}

// LoadInput drives genomeId's i-th input node.
func (p *Population) LoadInput(genomeId int, value types.Value, i int) error {
	g := p.genomeById(genomeId)
	if g == nil {
		return errors.Errorf("genetics: no genome with id %d", genomeId)
	}
	g.LoadInput(value, i)
	return nil
}

// Run drives one forward pass of genomeId.
func (p *Population) Run(genomeId int) error {
	g := p.genomeById(genomeId)
	if g == nil {
		return errors.Errorf("genetics: no genome with id %d", genomeId)
	}
	g.Run()
	return nil
}

// GetOutputs reads genomeId's output nodes.
func (p *Population) GetOutputs(genomeId int) ([]types.Value, error) {
	g := p.genomeById(genomeId)
	if g == nil {
		return nil, errors.Errorf("genetics: no genome with id %d", genomeId)
	}
	return g.GetOutputs(), nil
}

// ResetMemory clears genomeId's recurrency history.
func (p *Population) ResetMemory(genomeId int) error {
	g := p.genomeById(genomeId)
	if g == nil {
		return errors.Errorf("genetics: no genome with id %d", genomeId)
	}
	g.ResetMemory()
	return nil
}

// FitnessFunc is the harness-supplied oracle: drive g via LoadInput/Run,
// read its outputs, and return a scalar fitness (spec §6).
type FitnessFunc func(g *Genome) float64

// EvaluateFitness runs fn over every genome, in parallel on pool if
// non-nil, sequentially otherwise (spec §4.12, §5). Each genome is
// owned exclusively by the one closure evaluating it, so no two
// dispatched tasks ever touch the same PrevOutputs buffer.
func (p *Population) EvaluateFitness(fn FitnessFunc, pool *threadpool.Pool[struct{}]) {
	if pool == nil {
		for _, g := range p.Genomes {
			g.Fitness = fn(g)
		}
		return
	}
	for _, g := range p.Genomes {
		g := g
		pool.Enqueue(func() struct{} {
			g.Fitness = fn(g)
			return struct{}{}
		})
	}
	pool.WaitAllTasks()
}

// BestGenome returns the highest-fitness genome in the population.
func (p *Population) BestGenome() *Genome {
	var best *Genome
	for _, g := range p.Genomes {
		if best == nil || g.Fitness > best.Fitness {
			best = g
		}
	}
	return best
}
