package neat

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/aprosim/polyneat/neat/genetics"
)

// LoadYAMLOptions loads Options encoded as a YAML file.
func LoadYAMLOptions(r io.Reader) (*Options, error) {
	content, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var opts Options
	if err = yaml.Unmarshal(content, &opts); err != nil {
		return nil, errors.Wrap(err, "failed to decode NEAT options from YAML")
	}
	if err = InitLogger(opts.LogLevel); err != nil {
		return nil, errors.Wrap(err, "failed to initialize logger")
	}
	if err = opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid NEAT options")
	}
	return &opts, nil
}

// LoadNeatOptions loads Options from the flat-text `.neat` format: one
// "name value" pair per line.
func LoadNeatOptions(r io.Reader) (*Options, error) {
	c := &Options{}
	var name string
	var param string
	for {
		_, err := fmt.Fscanf(r, "%s %v\n", &name, &param)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		switch name {
		case "pop_size":
			c.PopSize = cast.ToInt(param)
		case "elitism":
			c.Elitism = cast.ToBool(param)
		case "num_generations":
			c.NumGenerations = cast.ToInt(param)
		case "num_runs":
			c.NumRuns = cast.ToInt(param)
		case "epoch_executor":
			c.EpochExecutorType = param
		case "compat_excess_coeff":
			c.CompatExcessCoeff = cast.ToFloat64(param)
		case "compat_disjoint_coeff":
			c.CompatDisjointCoeff = cast.ToFloat64(param)
		case "compat_weight_diff_coeff":
			c.CompatWeightDiffCoeff = cast.ToFloat64(param)
		case "speciation_thresh_init":
			c.SpeciationThreshInit = cast.ToFloat64(param)
		case "speciation_step_thresh":
			c.SpeciationStepThresh = cast.ToFloat64(param)
		case "target_species_count":
			c.TargetSpeciesCount = cast.ToInt(param)
		case "target_species_count_tol":
			c.TargetSpeciesCountTol = cast.ToInt(param)
		case "thresh_gens_since_improved":
			c.ThreshGensSinceImproved = cast.ToInt(param)
		case "mutate_weight_thresh":
			c.MutateWeightThresh = cast.ToFloat64(param)
		case "mutate_weight_full_change_thresh":
			c.MutateWeightFullChangeThresh = cast.ToFloat64(param)
		case "mutate_weight_factor":
			c.MutateWeightFactor = cast.ToFloat64(param)
		case "add_node_thresh":
			c.AddNodeThresh = cast.ToFloat64(param)
		case "add_transtype_thresh":
			c.AddTranstypeThresh = cast.ToFloat64(param)
		case "add_connection_thresh":
			c.AddConnectionThresh = cast.ToFloat64(param)
		case "max_iterations_find_node_thresh":
			c.MaxIterationsFindNodeThresh = cast.ToInt(param)
		case "max_iterations_find_conn_thresh":
			c.MaxIterationsFindConnThresh = cast.ToInt(param)
		case "reactivate_connection_thresh":
			c.ReactivateConnectionThresh = cast.ToFloat64(param)
		case "prob_recu":
			c.ProbRecu = cast.ToFloat64(param)
		case "max_recurrency":
			c.MaxRecurrency = cast.ToInt(param)
		case "n_conn_init":
			c.NConnInit = cast.ToInt(param)
		case "prob_recu_init":
			c.ProbRecuInit = cast.ToFloat64(param)
		case "weight_extremum_init":
			c.WeightExtremumInit = cast.ToFloat64(param)
		case "max_recu_init":
			c.MaxRecuInit = cast.ToInt(param)
		case "log_level":
			c.LogLevel = param
		default:
			return nil, errors.Errorf("unknown configuration parameter found: %s = %s", name, param)
		}
	}
	if err := InitLogger(c.LogLevel); err != nil {
		return nil, errors.Wrap(err, "failed to initialize logger")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ReadNeatOptionsFromFile reads Options from configFilePath, choosing
// the YAML or flat-text reader by file extension.
func ReadNeatOptionsFromFile(configFilePath string) (*Options, error) {
	configFile, err := os.Open(configFilePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config file")
	}
	defer configFile.Close()
	fileName := configFile.Name()
	if strings.HasSuffix(fileName, "yml") || strings.HasSuffix(fileName, "yaml") {
		return LoadYAMLOptions(configFile)
	}
	return LoadNeatOptions(configFile)
}

// Validate rejects an Options that would make a Population unbuildable
// or would mutate nonsensically, failing loudly at configuration time
// rather than letting a downstream invariant panic (spec §7).
func (o *Options) Validate() error {
	if o.PopSize <= 0 {
		return errors.New("pop_size must be positive")
	}
	if o.NumGenerations <= 0 {
		return errors.New("num_generations must be positive")
	}
	if o.TargetSpeciesCount <= 0 {
		return errors.New("target_species_count must be positive")
	}
	if o.MaxRecurrency < 0 || o.MaxRecuInit < 0 {
		return errors.New("recurrency depths must be non-negative")
	}
	return nil
}

// MutationConfig projects the mutation-related fields into
// genetics.MutationConfig.
func (o *Options) MutationConfig() genetics.MutationConfig {
	return genetics.MutationConfig{
		MutateWeightThresh:           o.MutateWeightThresh,
		MutateWeightFullChangeThresh: o.MutateWeightFullChangeThresh,
		MutateWeightFactor:           float32(o.MutateWeightFactor),
		AddNodeThresh:                o.AddNodeThresh,
		AddTranstypeThresh:           o.AddTranstypeThresh,
		AddConnectionThresh:          o.AddConnectionThresh,
		MaxIterationsFindNodeThresh:  o.MaxIterationsFindNodeThresh,
		MaxIterationsFindConnThresh:  o.MaxIterationsFindConnThresh,
		ReactivateConnectionThresh:   o.ReactivateConnectionThresh,
		ProbRecu:                     o.ProbRecu,
		MaxRecurrency:                uint32(o.MaxRecurrency),
	}
}

// PopulationConfig projects the population/speciation fields into
// genetics.PopulationConfig.
func (o *Options) PopulationConfig() genetics.PopulationConfig {
	return genetics.PopulationConfig{
		PopSize:               o.PopSize,
		Elitism:               o.Elitism,
		SpeciationThreshInit:  o.SpeciationThreshInit,
		StepThresh:            o.SpeciationStepThresh,
		TargetSpeciesCount:    o.TargetSpeciesCount,
		TargetSpeciesCountTol: o.TargetSpeciesCountTol,
		ThreshGensSinceImproved: o.ThreshGensSinceImproved,
		Compatibility: genetics.CompatibilityCoefficients{
			Excess:     o.CompatExcessCoeff,
			Disjoint:   o.CompatDisjointCoeff,
			WeightDiff: o.CompatWeightDiffCoeff,
		},
		Mutation: o.MutationConfig(),
	}
}
