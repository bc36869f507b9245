package experiment

import (
	"encoding/gob"
	"sort"
	"time"

	"github.com/aprosim/polyneat/neat/activation"
	"github.com/aprosim/polyneat/neat/genetics"
	"github.com/aprosim/polyneat/neat/types"
)

// Trial holds statistics about one experiment run.
type Trial struct {
	// Id is the trial number.
	Id int
	// Generations holds the results per generation in this trial.
	Generations Generations
	// WinnerGeneration is the generation the winner was found in, if any.
	WinnerGeneration *Generation

	// Duration is the elapsed time between trial start and finish.
	Duration time.Duration
}

// AvgEpochDuration is the average duration of evaluations among all
// generations in this trial.
func (t *Trial) AvgEpochDuration() time.Duration {
	if len(t.Generations) == 0 {
		return EmptyDuration
	}
	total := time.Duration(0)
	for _, g := range t.Generations {
		total += g.Duration
	}
	return total / time.Duration(len(t.Generations))
}

// RecentEpochEvalTime is the time of the most recently executed epoch
// within this trial.
func (t *Trial) RecentEpochEvalTime() time.Time {
	var u time.Time
	for _, g := range t.Generations {
		if u.Before(g.Executed) {
			u = g.Executed
		}
	}
	return u
}

// BestGenome finds the most fit genome among all epochs in this trial,
// optionally restricted to epochs where the harness's goal was solved.
func (t *Trial) BestGenome(onlySolvers bool) (*genetics.Genome, bool) {
	candidates := make([]*genetics.Genome, 0, len(t.Generations))
	for _, g := range t.Generations {
		if g.Best == nil {
			continue
		}
		if !onlySolvers || g.Solved {
			candidates = append(candidates, g.Best)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Fitness > candidates[j].Fitness })
	return candidates[0], true
}

// Solved reports whether any epoch in this trial solved the harness's goal.
func (t *Trial) Solved() bool {
	for _, g := range t.Generations {
		if g.Solved {
			return true
		}
	}
	return false
}

// BestFitness returns the fitness of the best genome for each epoch in this trial.
func (t *Trial) BestFitness() Floats {
	x := make(Floats, len(t.Generations))
	for i, g := range t.Generations {
		if g.Best != nil {
			x[i] = g.Best.Fitness
		}
	}
	return x
}

// BestAge returns the age of the best genome's species for each epoch in this trial.
func (t *Trial) BestAge() Floats {
	x := make(Floats, len(t.Generations))
	for i, g := range t.Generations {
		x[i] = float64(g.BestAge)
	}
	return x
}

// BestComplexity returns the complexity of the best genome for each epoch in this trial.
func (t *Trial) BestComplexity() Floats {
	x := make(Floats, len(t.Generations))
	for i, g := range t.Generations {
		x[i] = float64(genomeComplexity(g.Best))
	}
	return x
}

// Diversity returns the number of species for each epoch.
func (t *Trial) Diversity() Floats {
	x := make(Floats, len(t.Generations))
	for i, g := range t.Generations {
		x[i] = float64(g.Diversity)
	}
	return x
}

// Average returns the average fitness, age, and complexity of the
// population for each epoch in this trial.
func (t *Trial) Average() (fitness, age, complexity Floats) {
	fitness = make(Floats, len(t.Generations))
	age = make(Floats, len(t.Generations))
	complexity = make(Floats, len(t.Generations))
	for i, g := range t.Generations {
		fitness[i], age[i], complexity[i] = g.Average()
	}
	return fitness, age, complexity
}

// Winner returns the node count, gene count, evaluation count, and
// species diversity of the winner genome.
func (t *Trial) Winner() (nodes, genes, evals, diversity int) {
	if t.WinnerGeneration != nil {
		return t.WinnerGeneration.WinnerNodes, t.WinnerGeneration.WinnerGenes, t.WinnerGeneration.WinnerEvals, t.WinnerGeneration.Diversity
	}
	for i := range t.Generations {
		g := t.Generations[i]
		if g.Solved {
			t.WinnerGeneration = &t.Generations[i]
			return g.WinnerNodes, g.WinnerGenes, g.WinnerEvals, g.Diversity
		}
	}
	return 0, 0, 0, 0
}

// Encode writes this trial with the given GOB encoder; reg and actFns
// are required to serialize each generation's embedded genome.
func (t *Trial) Encode(enc *gob.Encoder, reg *types.Registry, actFns *activation.Table) error {
	if err := enc.Encode(t.Id); err != nil {
		return err
	}
	if err := enc.Encode(len(t.Generations)); err != nil {
		return err
	}
	for _, g := range t.Generations {
		if err := g.Encode(enc, reg, actFns); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads trial data with the given GOB decoder; reg and actFns
// are required to reconstruct each generation's embedded genome.
func (t *Trial) Decode(dec *gob.Decoder, reg *types.Registry, actFns *activation.Table) error {
	if err := dec.Decode(&t.Id); err != nil {
		return err
	}
	var ngen int
	if err := dec.Decode(&ngen); err != nil {
		return err
	}
	t.Generations = make([]Generation, ngen)
	for i := 0; i < ngen; i++ {
		gen := Generation{}
		if err := gen.Decode(dec, reg, actFns); err != nil {
			return err
		}
		t.Generations[i] = gen
	}
	return nil
}

// Trials is a sortable collection of experiment runs by execution time and id.
type Trials []Trial

func (ts Trials) Len() int      { return len(ts) }
func (ts Trials) Swap(i, j int) { ts[i], ts[j] = ts[j], ts[i] }
func (ts Trials) Less(i, j int) bool {
	ui := ts[i].RecentEpochEvalTime()
	uj := ts[j].RecentEpochEvalTime()
	if ui.Equal(uj) {
		return ts[i].Id < ts[j].Id
	}
	return ui.Before(uj)
}
