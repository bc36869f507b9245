package experiment

import (
	"bytes"
	"encoding/gob"
	"math"
	"reflect"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/aprosim/polyneat/neat/activation"
	"github.com/aprosim/polyneat/neat/genetics"
	"github.com/aprosim/polyneat/neat/types"
)

// Generation is the result of evaluating one generation of a population.
type Generation struct {
	// Id is this epoch's generation number.
	Id int
	// Executed is when the epoch finished evaluating.
	Executed time.Time
	// Duration is the elapsed time between generation start and finish.
	Duration time.Duration
	// Best is the highest-fitness genome found across all species.
	Best *genetics.Genome
	// BestAge is the age of Best's species at the time Best was selected.
	BestAge int
	// Solved flags whether the harness's goal was reached this epoch.
	Solved bool

	// Fitness holds, per species, the fitness of its top genome.
	Fitness Floats
	// Age holds, per species, the species' age.
	Age Floats
	// Complexity holds, per species, its top genome's complexity.
	Complexity Floats

	// Diversity is the number of species at the end of this epoch.
	Diversity int

	// WinnerEvals is the number of evaluations done before a winner was found.
	WinnerEvals int
	// WinnerNodes is the node count of the winner genome, or zero if unsolved.
	WinnerNodes int
	// WinnerGenes is the enabled-connection count of the winner genome, or zero if unsolved.
	WinnerGenes int

	// TrialId is the Trial this Generation was evaluated in.
	TrialId int
}

// FillPopulationStatistics collects per-species statistics from pop
// and, unless already solved, finds the best genome across species.
func (g *Generation) FillPopulationStatistics(pop *genetics.Population) {
	maxFitness := float64(math.MinInt64)
	g.Diversity = len(pop.Species)
	g.Age = make(Floats, g.Diversity)
	g.Complexity = make(Floats, g.Diversity)
	g.Fitness = make(Floats, g.Diversity)
	for i, sp := range pop.Species {
		if len(sp.Members) == 0 {
			continue
		}
		sort.Slice(sp.Members, func(a, b int) bool { return sp.Members[a].Fitness > sp.Members[b].Fitness })
		top := sp.Members[0]

		g.Age[i] = float64(sp.Age)
		g.Complexity[i] = float64(top.Complexity())
		g.Fitness[i] = top.Fitness

		if !g.Solved && top.Fitness > maxFitness {
			maxFitness = top.Fitness
			g.Best = top
			g.BestAge = sp.Age
		}
	}
}

// Average returns the mean fitness, age, and complexity across this
// epoch's species.
func (g *Generation) Average() (fitness, age, complexity float64) {
	return g.Fitness.Mean(), g.Age.Mean(), g.Complexity.Mean()
}

// Encode writes generation with the given GOB encoder; reg and actFns
// are required to serialize the embedded Best genome.
func (g *Generation) Encode(enc *gob.Encoder, reg *types.Registry, actFns *activation.Table) error {
	if err := enc.EncodeValue(reflect.ValueOf(g.Id)); err != nil {
		return err
	}
	if err := enc.EncodeValue(reflect.ValueOf(g.Executed)); err != nil {
		return err
	}
	if err := enc.EncodeValue(reflect.ValueOf(g.Solved)); err != nil {
		return err
	}
	if err := enc.EncodeValue(reflect.ValueOf(g.Fitness)); err != nil {
		return err
	}
	if err := enc.EncodeValue(reflect.ValueOf(g.Age)); err != nil {
		return err
	}
	if err := enc.EncodeValue(reflect.ValueOf(g.Complexity)); err != nil {
		return err
	}
	if err := enc.EncodeValue(reflect.ValueOf(g.Diversity)); err != nil {
		return err
	}
	if err := enc.EncodeValue(reflect.ValueOf(g.WinnerEvals)); err != nil {
		return err
	}
	if err := enc.EncodeValue(reflect.ValueOf(g.WinnerNodes)); err != nil {
		return err
	}
	if err := enc.EncodeValue(reflect.ValueOf(g.WinnerGenes)); err != nil {
		return err
	}
	if err := enc.EncodeValue(reflect.ValueOf(g.BestAge)); err != nil {
		return err
	}

	hasBest := g.Best != nil
	if err := enc.Encode(hasBest); err != nil {
		return err
	}
	if hasBest {
		return encodeGenome(enc, g.Best, reg, actFns)
	}
	return nil
}

func encodeGenome(enc *gob.Encoder, gen *genetics.Genome, reg *types.Registry, actFns *activation.Table) error {
	// WriteGenome's layout carries no genome id, so it travels separately.
	if err := enc.Encode(gen.Id); err != nil {
		return err
	}
	outBuf := bytes.NewBufferString("")
	if err := genetics.WriteGenome(outBuf, gen, actFns); err != nil {
		return err
	}
	return enc.Encode(outBuf.Bytes())
}

// Decode reads generation with the given GOB decoder; reg and actFns
// are required to reconstruct the embedded Best genome.
func (g *Generation) Decode(dec *gob.Decoder, reg *types.Registry, actFns *activation.Table) error {
	if err := dec.Decode(&g.Id); err != nil {
		return errors.Wrap(err, "failed to decode Id")
	}
	if err := dec.Decode(&g.Executed); err != nil {
		return errors.Wrap(err, "failed to decode Executed")
	}
	if err := dec.Decode(&g.Solved); err != nil {
		return errors.Wrap(err, "failed to decode Solved")
	}
	if err := dec.Decode(&g.Fitness); err != nil {
		return errors.Wrap(err, "failed to decode Fitness")
	}
	if err := dec.Decode(&g.Age); err != nil {
		return errors.Wrap(err, "failed to decode Age")
	}
	if err := dec.Decode(&g.Complexity); err != nil {
		return errors.Wrap(err, "failed to decode Complexity")
	}
	if err := dec.Decode(&g.Diversity); err != nil {
		return errors.Wrap(err, "failed to decode Diversity")
	}
	if err := dec.Decode(&g.WinnerEvals); err != nil {
		return errors.Wrap(err, "failed to decode WinnerEvals")
	}
	if err := dec.Decode(&g.WinnerNodes); err != nil {
		return errors.Wrap(err, "failed to decode WinnerNodes")
	}
	if err := dec.Decode(&g.WinnerGenes); err != nil {
		return errors.Wrap(err, "failed to decode WinnerGenes")
	}
	if err := dec.Decode(&g.BestAge); err != nil {
		return errors.Wrap(err, "failed to decode BestAge")
	}

	var hasBest bool
	if err := dec.Decode(&hasBest); err != nil {
		return errors.Wrap(err, "failed to decode hasBest")
	}
	if !hasBest {
		return nil
	}
	gen, err := decodeGenome(dec, reg, actFns)
	if err != nil {
		return err
	}
	g.Best = gen
	return nil
}

func decodeGenome(dec *gob.Decoder, reg *types.Registry, actFns *activation.Table) (*genetics.Genome, error) {
	var id int
	if err := dec.Decode(&id); err != nil {
		return nil, errors.Wrap(err, "failed to decode genome id")
	}
	var data []byte
	if err := dec.Decode(&data); err != nil {
		return nil, errors.Wrap(err, "failed to decode genome data")
	}
	gen, err := genetics.ReadGenome(bytes.NewBuffer(data), reg, actFns)
	if err != nil {
		return nil, err
	}
	gen.Id = id
	return gen, nil
}

// Generations is a sortable collection of generations by execution time and Id.
type Generations []Generation

func (is Generations) Len() int      { return len(is) }
func (is Generations) Swap(i, j int) { is[i], is[j] = is[j], is[i] }
func (is Generations) Less(i, j int) bool {
	if is[i].Executed.Equal(is[j].Executed) {
		return is[i].Id < is[j].Id
	}
	return is[i].Executed.Before(is[j].Executed)
}
