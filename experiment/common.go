// Package experiment collects per-generation and per-trial statistics
// around an evolutionary run and exports them (gob or NPZ).
package experiment

import (
	"context"
	"errors"
	"time"

	"github.com/aprosim/polyneat/neat"
	"github.com/aprosim/polyneat/neat/genetics"
	"github.com/aprosim/polyneat/neat/threadpool"
)

// EmptyDuration is returned when an average duration cannot be
// estimated (empty trials or generations).
const EmptyDuration = time.Duration(-1)

// GenerationEvaluator evaluates one generation of a population within
// the given execution context: drive every genome through the harness
// fitness oracle and fill epoch's statistics.
type GenerationEvaluator interface {
	GenerationEvaluate(ctx context.Context, pop *genetics.Population, epoch *Generation) error
}

// TrialRunObserver is notified about a trial's lifecycle.
type TrialRunObserver interface {
	// TrialRunStarted is invoked before any epoch evaluation in that trial run.
	TrialRunStarted(trial *Trial)
	// TrialRunFinished is invoked after all epochs evaluated or a solver was found.
	TrialRunFinished(trial *Trial)
	// EpochEvaluated is invoked once evaluation of a specific epoch completes.
	EpochEvaluated(trial *Trial, epoch *Generation)
}

// epochExecutorForContext resolves the epoch executor named by the
// Options carried on ctx, binding pool for the parallel variant.
func epochExecutorForContext(ctx context.Context, pool *threadpool.Pool[struct{}]) (func(pop *genetics.Population, fn genetics.FitnessFunc), error) {
	opts, ok := neat.FromContext(ctx)
	if !ok {
		return nil, neat.ErrNEATOptionsNotFound
	}
	switch opts.EpochExecutorType {
	case neat.EpochExecutorTypeSequential:
		return func(pop *genetics.Population, fn genetics.FitnessFunc) {
			genetics.SequentialPopulationEpochExecutor(pop, fn)
		}, nil
	case neat.EpochExecutorTypeParallel:
		return func(pop *genetics.Population, fn genetics.FitnessFunc) {
			genetics.ParallelPopulationEpochExecutor(pop, fn, pool)
		}, nil
	default:
		return nil, errors.New("experiment: unsupported epoch executor type requested")
	}
}

// genomeComplexity returns g's complexity, or 0 for a nil genome (no
// winner found yet).
func genomeComplexity(g *genetics.Genome) int {
	if g == nil {
		return 0
	}
	return g.Complexity()
}
