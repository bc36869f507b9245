// Command snake runs the Snake-playing harness: it evolves a
// population of typed, recurrent-capable genomes against the game in
// examples/snake and reports the results (spec: CLI boilerplate here
// mirrors the teacher's experiment runner, trimmed to the one harness
// this module ships).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aprosim/polyneat/examples/snake"
	"github.com/aprosim/polyneat/experiment"
	"github.com/aprosim/polyneat/neat"
	"github.com/aprosim/polyneat/neat/activation"
	"github.com/aprosim/polyneat/neat/genetics"
	"github.com/aprosim/polyneat/neat/types"
)

func main() {
	outDirPath := flag.String("out", "./out", "The output directory to store results.")
	contextPath := flag.String("context", "./data/snake.neat.yml", "The execution context configuration file (YAML).")
	trialsCount := flag.Int("trials", 0, "The number of trials for the experiment. Overrides the one set in configuration.")
	logLevel := flag.String("log_level", "", "The logger level to be used. Overrides the one set in configuration.")
	flag.Parse()

	seed := time.Now().Unix()
	rnd := rand.New(rand.NewSource(seed))

	configFile, err := os.Open(*contextPath)
	if err != nil {
		log.Fatal("failed to open context configuration file: ", err)
	}
	opts, err := neat.LoadYAMLOptions(configFile)
	if err != nil {
		log.Fatal("failed to load NEAT options: ", err)
	}
	if *trialsCount > 0 {
		opts.NumRuns = *trialsCount
	}
	if len(*logLevel) > 0 {
		if err := neat.InitLogger(*logLevel); err != nil {
			log.Fatal("failed to apply log_level override: ", err)
		}
	}

	outDir := *outDirPath
	if _, err := os.Stat(outDir); err == nil {
		backupDir := fmt.Sprintf("%s-%s", outDir, time.Now().Format("2006-01-02T15_04_05"))
		if err := os.Rename(outDir, backupDir); err != nil {
			log.Fatal("failed to back up previous results: ", err)
		}
	}
	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		log.Fatal("failed to create output directory: ", err)
	}

	reg, actFns, schema := buildSnakeEnv()
	ctx := neat.NewContext(context.Background(), opts)

	expt := experiment.Experiment{Id: 0, MaxFitnessScore: 1200.0, RandSeed: seed}
	evaluator := snake.NewGenerationEvaluator(outDir, rnd)

	errChan := make(chan error, 1)
	runCtx, cancel := context.WithCancel(ctx)
	go func() {
		errChan <- expt.Execute(runCtx, reg, actFns, schema, evaluator, nil)
	}()

	go func() {
		fmt.Println("\nPress Ctrl+C to stop")
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
		<-signals
		cancel()
	}()

	if err := <-errChan; err != nil {
		log.Fatalf("snake experiment failed: %s", err)
	}

	expt.PrintStatistics()
	fmt.Printf(">>> Configuration file: %s\n", *contextPath)

	resPath := fmt.Sprintf("%s/snake.dat", outDir)
	resFile, err := os.Create(resPath)
	if err != nil {
		log.Fatal("failed to create results file: ", err)
	}
	if err := expt.Write(resFile, reg, actFns); err != nil {
		log.Fatal("failed to save experiment results: ", err)
	}

	npzPath := fmt.Sprintf("%s/snake.npz", outDir)
	npzFile, err := os.Create(npzPath)
	if err != nil {
		log.Fatalf("failed to create NPZ results file [%s]: %s", npzPath, err)
	}
	if err := expt.WriteNPZ(npzFile); err != nil {
		log.Fatal("failed to save experiment results as NPZ: ", err)
	}
}

// buildSnakeEnv declares the single float64 value domain the snake
// sensors and turn outputs live in, registers the default activation
// choices over it, and describes the genome's initial topology: six
// sensor inputs, three turn-decision outputs, no hidden nodes to start.
func buildSnakeEnv() (*types.Registry, *activation.Table, genetics.GenomeSchema) {
	reg := types.NewRegistry()
	fIdx := reg.Declare("float", types.KindFloat64, types.FromFloat64(0), types.FromFloat64(0))

	actFns := activation.NewTable()
	activation.RegisterDefaults(actFns, fIdx, -1)

	schema := genetics.GenomeSchema{
		BiasCounts:         []int{1},
		InputCounts:        []int{6},
		OutputCounts:       []int{3},
		HiddenCounts:       [][]int{{0}},
		NConnInit:          6,
		WeightExtremumInit: 1.0,
	}
	return reg, actFns, schema
}
