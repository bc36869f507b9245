package experiment

import (
	"encoding/gob"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"

	"github.com/aprosim/polyneat/neat/activation"
	"github.com/aprosim/polyneat/neat/genetics"
	"github.com/aprosim/polyneat/neat/types"
)

// Experiment is a collection of trials, useful for statistical
// analysis of a series of runs of the same harness.
type Experiment struct {
	Id       int
	Name     string
	RandSeed int64
	Trials
	// MaxFitnessScore normalizes the fitness score used in efficiency
	// score calculation; if zero, fitness is not normalized.
	MaxFitnessScore float64
}

// AvgTrialDuration is the average duration of this experiment's trials.
func (e *Experiment) AvgTrialDuration() time.Duration {
	if len(e.Trials) == 0 {
		return EmptyDuration
	}
	total := time.Duration(0)
	for _, t := range e.Trials {
		total += t.Duration
	}
	return total / time.Duration(len(e.Trials))
}

// AvgEpochDuration is the average duration of evaluations among all
// generations across all trials.
func (e *Experiment) AvgEpochDuration() time.Duration {
	if len(e.Trials) == 0 {
		return EmptyDuration
	}
	total := time.Duration(0)
	for _, t := range e.Trials {
		total += t.AvgEpochDuration()
	}
	return total / time.Duration(len(e.Trials))
}

// AvgGenerationsPerTrial is the average number of generations
// evaluated per trial. A trial terminates as soon as a winner is
// found, so fewer generations means faster convergence.
func (e *Experiment) AvgGenerationsPerTrial() float64 {
	total := 0.0
	for _, t := range e.Trials {
		total += float64(len(t.Generations))
	}
	return total / float64(len(e.Trials))
}

// MostRecentTrialEvalTime is the time of evaluation of the most recent trial.
func (e *Experiment) MostRecentTrialEvalTime() time.Time {
	var u time.Time
	for _, t := range e.Trials {
		if ut := t.RecentEpochEvalTime(); u.Before(ut) {
			u = ut
		}
	}
	return u
}

// genomeInTrial pairs a genome with the trial it was found in.
type genomeInTrial struct {
	genome  *genetics.Genome
	trialId int
}

// BestGenome finds the most fit genome among all trials, along with the
// id of the trial it was found in.
func (e *Experiment) BestGenome(onlySolvers bool) (*genetics.Genome, int, bool) {
	var found []genomeInTrial
	for i, t := range e.Trials {
		if g, ok := t.BestGenome(onlySolvers); ok {
			found = append(found, genomeInTrial{genome: g, trialId: i})
		}
	}
	if len(found) == 0 {
		return nil, -1, false
	}
	sort.Slice(found, func(i, j int) bool { return found[i].genome.Fitness > found[j].genome.Fitness })
	return found[0].genome, found[0].trialId, true
}

// Solved reports whether any trial found a solution.
func (e *Experiment) Solved() bool {
	for _, t := range e.Trials {
		if t.Solved() {
			return true
		}
	}
	return false
}

// BestFitness returns the fitness of the best genome for each trial.
func (e *Experiment) BestFitness() Floats {
	x := make(Floats, len(e.Trials))
	for i, t := range e.Trials {
		if g, ok := t.BestGenome(false); ok {
			x[i] = g.Fitness
		}
	}
	return x
}

// BestAge returns the mean species age of the best genome for each trial.
func (e *Experiment) BestAge() Floats {
	x := make(Floats, len(e.Trials))
	for i, t := range e.Trials {
		x[i] = t.BestAge().Mean()
	}
	return x
}

// BestComplexity returns the complexity of the best genome for each trial.
func (e *Experiment) BestComplexity() Floats {
	x := make(Floats, len(e.Trials))
	for i, t := range e.Trials {
		if g, ok := t.BestGenome(false); ok {
			x[i] = float64(genomeComplexity(g))
		}
	}
	return x
}

// Diversity returns the average number of species in each trial.
func (e *Experiment) Diversity() Floats {
	x := make(Floats, len(e.Trials))
	for i, t := range e.Trials {
		x[i] = t.Diversity().Mean()
	}
	return x
}

// EpochsPerTrial returns the number of epochs in each trial.
func (e *Experiment) EpochsPerTrial() Floats {
	x := make(Floats, len(e.Trials))
	for i, t := range e.Trials {
		x[i] = float64(len(t.Generations))
	}
	return x
}

// TrialsSolved is the number of trials that found a solution.
func (e *Experiment) TrialsSolved() int {
	count := 0
	for _, t := range e.Trials {
		if t.Solved() {
			count++
		}
	}
	return count
}

// SuccessRate is the fraction of trials that found a solution.
func (e *Experiment) SuccessRate() float64 {
	return float64(e.TrialsSolved()) / float64(len(e.Trials))
}

// AvgWinner returns the average node count, gene count, evaluation
// count, and species diversity of winner genomes among all solved trials.
func (e *Experiment) AvgWinner() (avgNodes, avgGenes, avgEvals, avgDiversity float64) {
	var totalNodes, totalGenes, totalEvals, totalDiversity, count int
	for _, t := range e.Trials {
		if !t.Solved() {
			continue
		}
		nodes, genes, evals, diversity := t.Winner()
		totalNodes += nodes
		totalGenes += genes
		totalEvals += evals
		totalDiversity += diversity
		count++
	}
	if count == 0 {
		return 0, 0, 0, 0
	}
	return float64(totalNodes) / float64(count), float64(totalGenes) / float64(count),
		float64(totalEvals) / float64(count), float64(totalDiversity) / float64(count)
}

// EfficiencyScore rewards a solver that converges in fewer epochs, less
// wall-clock time per epoch, and a less complicated winner genome,
// while rewarding higher fitness and a higher trial success rate.
func (e *Experiment) EfficiencyScore() float64 {
	meanComplexity, meanFitness := 0.0, 0.0
	if len(e.Trials) > 1 {
		count := 0.0
		for _, t := range e.Trials {
			if !t.Solved() {
				continue
			}
			if t.WinnerGeneration == nil {
				t.Winner()
			}
			meanComplexity += float64(genomeComplexity(t.WinnerGeneration.Best))
			meanFitness += t.WinnerGeneration.Best.Fitness
			count++
		}
		if count > 0 {
			meanComplexity /= count
			meanFitness /= count
		}
	}

	fitnessScore := meanFitness
	if e.MaxFitnessScore > 0 {
		fitnessScore = fitnessScore / e.MaxFitnessScore * 100
	}

	score := e.AvgEpochDuration().Seconds() * 1000.0 * e.AvgGenerationsPerTrial() * meanComplexity
	if score > 0 {
		score = e.SuccessRate() * fitnessScore / math.Log(score)
	}
	return score
}

// PrintStatistics prints a human-readable summary of this experiment.
func (e *Experiment) PrintStatistics() {
	fmt.Printf("\nSolved %d trials from %d, success rate: %f\n", e.TrialsSolved(), len(e.Trials), e.SuccessRate())
	fmt.Printf("Random seed: %d\n", e.RandSeed)
	fmt.Printf("Average\n\tTrial duration:\t\t%s\n\tEpoch duration:\t\t%s\n\tGenerations/trial:\t%.1f\n",
		e.AvgTrialDuration(), e.AvgEpochDuration(), e.AvgGenerationsPerTrial())

	if _, trid, found := e.BestGenome(true); found {
		nodes, genes, evals, divers := e.Trials[trid].Winner()
		fmt.Printf("\nChampion found in %d trial run\n\tWinner Nodes:\t\t%d\n\tWinner Genes:\t\t%d\n\tWinner Evals:\t\t%d\n\n\tDiversity:\t\t%d",
			trid, nodes, genes, evals, divers)
	} else {
		fmt.Println("\nNo winner found in the experiment!!!")
	}

	meanComplexity, meanDiversity, meanAge, meanFitness := 0.0, 0.0, 0.0, 0.0
	if len(e.Trials) > 1 {
		avgNodes, avgGenes, avgEvals, avgDivers, avgGenerations := 0.0, 0.0, 0.0, 0.0, 0.0
		count := 0.0
		for i := range e.Trials {
			t := &e.Trials[i]
			if !t.Solved() {
				continue
			}
			nodes, genes, evals, diversity := t.Winner()
			avgNodes += float64(nodes)
			avgGenes += float64(genes)
			avgEvals += float64(evals)
			avgDivers += float64(diversity)
			avgGenerations += float64(len(t.Generations))

			meanComplexity += float64(genomeComplexity(t.WinnerGeneration.Best))
			meanFitness += t.WinnerGeneration.Best.Fitness
			count++
		}
		if count > 0 {
			avgNodes /= count
			avgGenes /= count
			avgEvals /= count
			avgDivers /= count
			avgGenerations /= count
			meanComplexity /= count
			meanFitness /= count
		}
		fmt.Printf("\nAverage among winners\n\tWinner Nodes:\t\t%.1f\n\tWinner Genes:\t\t%.1f\n\tWinner Evals:\t\t%.1f\n\tGenerations/trial:\t%.1f\n\n\tDiversity:\t\t%f\n",
			avgNodes, avgGenes, avgEvals, avgGenerations, avgDivers)
		fmt.Printf("\tComplexity:\t\t%f\n\tFitness:\t\t%f\n", meanComplexity, meanFitness)
	}

	count := float64(len(e.Trials))
	for _, t := range e.Trials {
		fitness, age, complexity := t.Average()
		meanComplexity += complexity.Mean()
		meanDiversity += t.Diversity().Mean()
		meanAge += age.Mean()
		meanFitness += fitness.Mean()
	}
	if count > 0 {
		meanComplexity /= count
		meanDiversity /= count
		meanAge /= count
		meanFitness /= count
	}
	fmt.Printf("\nAverages for all genomes evaluated during experiment\n\tDiversity:\t\t%f\n\tComplexity:\t\t%f\n\tAge:\t\t\t%f\n\tFitness:\t\t%f\n",
		meanDiversity, meanComplexity, meanAge, meanFitness)

	fmt.Printf("\nEfficiency score:\t\t%f\n\n", e.EfficiencyScore())
}

// Write encodes experiment data into w.
func (e *Experiment) Write(w io.Writer, reg *types.Registry, actFns *activation.Table) error {
	enc := gob.NewEncoder(w)
	return e.Encode(enc, reg, actFns)
}

// Encode encodes this experiment with GOB encoding.
func (e *Experiment) Encode(enc *gob.Encoder, reg *types.Registry, actFns *activation.Table) error {
	if err := enc.Encode(e.Id); err != nil {
		return err
	}
	if err := enc.Encode(e.Name); err != nil {
		return err
	}
	if err := enc.Encode(len(e.Trials)); err != nil {
		return err
	}
	for _, t := range e.Trials {
		if err := t.Encode(enc, reg, actFns); err != nil {
			return err
		}
	}
	return nil
}

// Read reads experiment data from r and decodes it.
func (e *Experiment) Read(r io.Reader, reg *types.Registry, actFns *activation.Table) error {
	dec := gob.NewDecoder(r)
	return e.Decode(dec, reg, actFns)
}

// Decode decodes experiment data.
func (e *Experiment) Decode(dec *gob.Decoder, reg *types.Registry, actFns *activation.Table) error {
	if err := dec.Decode(&e.Id); err != nil {
		return err
	}
	if err := dec.Decode(&e.Name); err != nil {
		return err
	}
	var tNum int
	if err := dec.Decode(&tNum); err != nil {
		return err
	}
	e.Trials = make(Trials, tNum)
	for i := 0; i < tNum; i++ {
		trial := Trial{}
		if err := trial.Decode(dec, reg, actFns); err != nil {
			return err
		}
		e.Trials[i] = trial
	}
	return nil
}

// WriteNPZ dumps experiment results to an NPZ file with the structure:
//   - trials_fitness/trials_ages/trials_complexity: mean,variance per trial
//   - trial_<n>_epoch_{mean,best}_{fitnesses,ages,complexities}, trial_<n>_epoch_diversity: per epoch per trial
func (e *Experiment) WriteNPZ(w io.Writer) error {
	trialsFitness := mat.NewDense(len(e.Trials), 2, nil)
	trialsAges := mat.NewDense(len(e.Trials), 2, nil)
	trialsComplexity := mat.NewDense(len(e.Trials), 2, nil)
	for i, t := range e.Trials {
		fitness, age, complexity := t.Average()
		trialsFitness.SetRow(i, fitness.MeanVariance())
		trialsAges.SetRow(i, age.MeanVariance())
		trialsComplexity.SetRow(i, complexity.MeanVariance())
	}
	out := npz.NewWriter(w)
	if err := out.Write("trials_fitness", trialsFitness); err != nil {
		return err
	}
	if err := out.Write("trials_ages", trialsAges); err != nil {
		return err
	}
	if err := out.Write("trials_complexity", trialsComplexity); err != nil {
		return err
	}
	for i, t := range e.Trials {
		fitness, age, complexity := t.Average()
		if err := out.Write(fmt.Sprintf("trial_%d_epoch_mean_fitnesses", i), fitness); err != nil {
			return err
		}
		if err := out.Write(fmt.Sprintf("trial_%d_epoch_mean_ages", i), age); err != nil {
			return err
		}
		if err := out.Write(fmt.Sprintf("trial_%d_epoch_mean_complexities", i), complexity); err != nil {
			return err
		}
		if err := out.Write(fmt.Sprintf("trial_%d_epoch_best_fitnesses", i), t.BestFitness()); err != nil {
			return err
		}
		if err := out.Write(fmt.Sprintf("trial_%d_epoch_best_ages", i), t.BestAge()); err != nil {
			return err
		}
		if err := out.Write(fmt.Sprintf("trial_%d_epoch_best_complexities", i), t.BestComplexity()); err != nil {
			return err
		}
		if err := out.Write(fmt.Sprintf("trial_%d_epoch_diversity", i), t.Diversity()); err != nil {
			return err
		}
	}
	return out.Close()
}

// Experiments is a sortable list of experiments by execution time and Id.
type Experiments []Experiment

func (es Experiments) Len() int      { return len(es) }
func (es Experiments) Swap(i, j int) { es[i], es[j] = es[j], es[i] }
func (es Experiments) Less(i, j int) bool {
	ui := es[i].MostRecentTrialEvalTime()
	uj := es[j].MostRecentTrialEvalTime()
	if ui.Equal(uj) {
		return es[i].Id < es[j].Id
	}
	return ui.Before(uj)
}
