// Package neat holds the ambient configuration, logging, and
// context-carrying glue around the evolutionary engine in neat/genetics:
// the Options a harness loads from YAML or flat text (spec §6), and
// the per-request context key pairing them with a run.
package neat

// Epoch executor names accepted by Options.EpochExecutorType.
const (
	EpochExecutorTypeSequential = "sequential"
	EpochExecutorTypeParallel   = "parallel"
)

// Options is the full set of tunables a harness supplies to build a
// Population and drive it through generations. Field names mirror the
// spec's thresholds directly rather than the historical NEAT
// snake_case C naming.
type Options struct {
	// Population / reproduction
	PopSize              int     `yaml:"pop_size" neat:"pop_size"`
	Elitism              bool    `yaml:"elitism" neat:"elitism"`
	NumGenerations       int     `yaml:"num_generations" neat:"num_generations"`
	NumRuns              int     `yaml:"num_runs" neat:"num_runs"`
	EpochExecutorType    string  `yaml:"epoch_executor" neat:"epoch_executor"`

	// Speciation (spec §4.8-4.9)
	CompatExcessCoeff     float64 `yaml:"compat_excess_coeff" neat:"compat_excess_coeff"`
	CompatDisjointCoeff   float64 `yaml:"compat_disjoint_coeff" neat:"compat_disjoint_coeff"`
	CompatWeightDiffCoeff float64 `yaml:"compat_weight_diff_coeff" neat:"compat_weight_diff_coeff"`
	SpeciationThreshInit  float64 `yaml:"speciation_thresh_init" neat:"speciation_thresh_init"`
	SpeciationStepThresh  float64 `yaml:"speciation_step_thresh" neat:"speciation_step_thresh"`
	TargetSpeciesCount    int     `yaml:"target_species_count" neat:"target_species_count"`
	TargetSpeciesCountTol int     `yaml:"target_species_count_tol" neat:"target_species_count_tol"`
	ThreshGensSinceImproved int   `yaml:"thresh_gens_since_improved" neat:"thresh_gens_since_improved"`

	// Structural/parametric mutation (spec §4.6)
	MutateWeightThresh           float64 `yaml:"mutate_weight_thresh" neat:"mutate_weight_thresh"`
	MutateWeightFullChangeThresh float64 `yaml:"mutate_weight_full_change_thresh" neat:"mutate_weight_full_change_thresh"`
	MutateWeightFactor           float64 `yaml:"mutate_weight_factor" neat:"mutate_weight_factor"`
	AddNodeThresh                float64 `yaml:"add_node_thresh" neat:"add_node_thresh"`
	AddTranstypeThresh           float64 `yaml:"add_transtype_thresh" neat:"add_transtype_thresh"`
	AddConnectionThresh          float64 `yaml:"add_connection_thresh" neat:"add_connection_thresh"`
	MaxIterationsFindNodeThresh  int     `yaml:"max_iterations_find_node_thresh" neat:"max_iterations_find_node_thresh"`
	MaxIterationsFindConnThresh  int     `yaml:"max_iterations_find_conn_thresh" neat:"max_iterations_find_conn_thresh"`
	ReactivateConnectionThresh   float64 `yaml:"reactivate_connection_thresh" neat:"reactivate_connection_thresh"`
	ProbRecu                     float64 `yaml:"prob_recu" neat:"prob_recu"`
	MaxRecurrency                int     `yaml:"max_recurrency" neat:"max_recurrency"`

	// Initial construction (spec §4.3)
	NConnInit          int     `yaml:"n_conn_init" neat:"n_conn_init"`
	ProbRecuInit       float64 `yaml:"prob_recu_init" neat:"prob_recu_init"`
	WeightExtremumInit float64 `yaml:"weight_extremum_init" neat:"weight_extremum_init"`
	MaxRecuInit        int     `yaml:"max_recu_init" neat:"max_recu_init"`

	LogLevel string `yaml:"log_level" neat:"log_level"`
}
