package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/aprosim/polyneat/neat"
	"github.com/aprosim/polyneat/neat/activation"
	"github.com/aprosim/polyneat/neat/genetics"
	"github.com/aprosim/polyneat/neat/threadpool"
	"github.com/aprosim/polyneat/neat/types"
)

// Execute runs this experiment's configured number of trials, each
// spawning a fresh Population from schema and driving it through
// opts.NumGenerations epochs via evaluator, notifying trialObserver
// as it goes. opts must already be attached to ctx via
// opts.NeatContext or neat.NewContext.
func (e *Experiment) Execute(ctx context.Context, reg *types.Registry, actFns *activation.Table, schema genetics.GenomeSchema, evaluator GenerationEvaluator, trialObserver TrialRunObserver) error {
	opts, found := neat.FromContext(ctx)
	if !found {
		return neat.ErrNEATOptionsNotFound
	}

	var pool *threadpool.Pool[struct{}]
	if opts.EpochExecutorType == neat.EpochExecutorTypeParallel {
		pool = threadpool.New[struct{}](0)
		defer pool.Stop()
	}
	advanceEpoch, err := epochExecutorForContext(ctx, pool)
	if err != nil {
		return err
	}

	if e.Trials == nil {
		e.Trials = make(Trials, opts.NumRuns)
	}

	for run := 0; run < opts.NumRuns; run++ {
		trialStartTime := time.Now()

		pop, err := genetics.NewPopulation(reg, actFns, schema, opts.PopulationConfig())
		if err != nil {
			return fmt.Errorf("failed to spawn new population: %w", err)
		}

		trial := Trial{Id: run}
		if trialObserver != nil {
			trialObserver.TrialRunStarted(&trial)
		}

		for generationId := 0; generationId < opts.NumGenerations; generationId++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			generation := Generation{Id: generationId, TrialId: run}
			genStartTime := time.Now()
			if err := evaluator.GenerationEvaluate(ctx, pop, &generation); err != nil {
				return fmt.Errorf("generation [%d] evaluation failed: %w", generationId, err)
			}
			generation.Executed = time.Now()

			if !generation.Solved {
				advanceEpoch(pop, func(g *genetics.Genome) float64 { return g.Fitness })
			}

			generation.Duration = generation.Executed.Sub(genStartTime)
			trial.Generations = append(trial.Generations, generation)

			if trialObserver != nil {
				trialObserver.EpochEvaluated(&trial, &generation)
			}

			if generation.Solved {
				break
			}
		}
		trial.Duration = time.Since(trialStartTime)
		e.Trials[run] = trial

		if trialObserver != nil {
			trialObserver.TrialRunFinished(&trial)
		}
	}

	return nil
}
