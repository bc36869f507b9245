package experiment

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExperiment_Write_Read(t *testing.T) {
	reg, actFns, _ := newTestEnv()
	ex := Experiment{Id: 1, Name: "test", Trials: make(Trials, 3)}
	for i := 0; i < len(ex.Trials); i++ {
		ex.Trials[i] = *buildTestTrial(i+1, 10)
	}

	var buff bytes.Buffer
	require.NoError(t, ex.Write(&buff, reg, actFns), "failed to write experiment")

	newEx := Experiment{}
	require.NoError(t, newEx.Read(bytes.NewReader(buff.Bytes()), reg, actFns), "failed to read experiment")

	assert.Equal(t, ex.Id, newEx.Id)
	assert.Equal(t, ex.Name, newEx.Name)
	require.Len(t, newEx.Trials, len(ex.Trials))
}

func TestExperiment_Write_writeError(t *testing.T) {
	reg, actFns, _ := newTestEnv()
	ex := Experiment{Id: 1, Name: "test", Trials: make(Trials, 1)}
	ex.Trials[0] = *buildTestTrial(1, 2)

	errWriter := ErrorWriter(1)
	err := ex.Write(&errWriter, reg, actFns)
	assert.EqualError(t, err, alwaysErrorText)
}

func TestExperiment_Read_readError(t *testing.T) {
	reg, actFns, _ := newTestEnv()
	errReader := ErrorReader(1)
	newEx := Experiment{}
	err := newEx.Read(&errReader, reg, actFns)
	assert.EqualError(t, err, alwaysErrorText)
}

func TestExperiment_WriteNPZ(t *testing.T) {
	ex := Experiment{Id: 1, Name: "test", Trials: make(Trials, 3)}
	for i := 0; i < len(ex.Trials); i++ {
		ex.Trials[i] = *buildTestTrial(i+1, 10)
	}

	var buff bytes.Buffer
	require.NoError(t, ex.WriteNPZ(&buff), "failed to write NPZ")
	assert.True(t, buff.Len() > 0)
}

func TestExperiment_AvgTrialDuration(t *testing.T) {
	trials := Trials{{Duration: 3}, {Duration: 10}, {Duration: 2}}
	ex := Experiment{Id: 1, Trials: trials}
	assert.Equal(t, time.Duration(5), ex.AvgTrialDuration())
}

func TestExperiment_AvgTrialDuration_emptyTrials(t *testing.T) {
	ex := Experiment{Id: 1}
	assert.Equal(t, EmptyDuration, ex.AvgTrialDuration())
}

func TestExperiment_AvgGenerationsPerTrial(t *testing.T) {
	numGenerations := []int{5, 8, 6, 1}
	trials := Trials{
		*buildTestTrial(0, numGenerations[0]),
		*buildTestTrial(1, numGenerations[1]),
		*buildTestTrial(2, numGenerations[2]),
		*buildTestTrial(3, numGenerations[3]),
	}
	ex := Experiment{Id: 1, Trials: trials}
	assert.Equal(t, 5.0, ex.AvgGenerationsPerTrial())
}

func TestExperiment_MostRecentTrialEvalTime(t *testing.T) {
	now := time.Now()
	trials := Trials{
		{Generations: Generations{{Executed: now}}},
		{Generations: Generations{{Executed: now.Add(-time.Second)}}},
		{Generations: Generations{{Executed: now.Add(-2 * time.Second)}}},
	}
	ex := Experiment{Id: 1, Trials: trials}
	assert.Equal(t, now, ex.MostRecentTrialEvalTime())
}

func TestExperiment_MostRecentTrialEvalTime_emptyTrials(t *testing.T) {
	ex := Experiment{Id: 1}
	assert.Equal(t, time.Time{}, ex.MostRecentTrialEvalTime())
}

func TestExperiment_BestGenome(t *testing.T) {
	fitnessMultipliers := Floats{1.0, 2.0, 3.0}
	trials := make(Trials, len(fitnessMultipliers))
	for i, fm := range fitnessMultipliers {
		trials[i] = *buildTestTrialWithFitnessMultiplier(i, i+2, fm)
	}
	ex := Experiment{Id: 1, Trials: trials}
	best, trialId, ok := ex.BestGenome(true)
	require.True(t, ok)
	assert.Equal(t, 2, trialId)
	assert.Equal(t, fitnessScore(2+2)*fitnessMultipliers[2], best.Fitness)
}

func TestExperiment_BestGenome_emptyTrials(t *testing.T) {
	ex := Experiment{Id: 1}
	best, trialId, ok := ex.BestGenome(true)
	assert.False(t, ok)
	assert.Equal(t, -1, trialId)
	assert.Nil(t, best)
}

func TestExperiment_Solved(t *testing.T) {
	trials := Trials{*buildTestTrial(1, 2), *buildTestTrial(2, 3), *buildTestTrial(3, 5)}
	ex := Experiment{Id: 1, Trials: trials}
	assert.True(t, ex.Solved())
}

func TestExperiment_TrialsSolved_and_SuccessRate(t *testing.T) {
	trials := createTrialsWithNSolved([]int{2, 3, 5}, 2)
	ex := Experiment{Id: 1, Trials: trials}
	assert.Equal(t, 2, ex.TrialsSolved())
	assert.Equal(t, 2.0/3.0, ex.SuccessRate())
}

func createTrialsWithNSolved(generations []int, solvedNumber int) Trials {
	trials := make(Trials, len(generations))
	for i := range generations {
		trials[i] = *buildTestTrial(i, generations[i])
	}
	for ti := range trials {
		solved := solvedNumber > 0
		solvedNumber--
		for j := range trials[ti].Generations {
			trials[ti].Generations[j].Solved = solved
		}
	}
	return trials
}
