// Package activation implements parameterized, mutable activation
// functions keyed by a (T_in, T_out) domain pair (spec §4.2). An
// activation function is registered once as an immutable Spec (its
// Process/Mutate callables and its default parameter constructor) and
// instantiated per-node as a Fn, which owns an independently evolving
// Params slice.
package activation

import (
	"math/rand"
	"strconv"

	"github.com/pkg/errors"

	"github.com/aprosim/polyneat/neat/types"
)

// ProcessFunc computes an output value from an input value and the
// owning Fn's current parameter block. It must not retain params.
type ProcessFunc func(in types.Value, params []float64) types.Value

// MutateFunc perturbs params in place. fitness is the owning node's
// genome fitness from the previous generation (0 if never evaluated);
// implementations commonly scale perturbation magnitude inversely with
// fitness, so weaker genomes explore parameter space more aggressively.
type MutateFunc func(params []float64, fitness float64)

// DefaultParamsFunc returns a fresh parameter block for a new Fn
// instance. May return nil for activations with no evolvable state.
type DefaultParamsFunc func() []float64

// Spec is an immutable, registered activation function definition.
type Spec struct {
	Name          string
	TIn, TOut     types.Index
	Process       ProcessFunc
	Mutate        MutateFunc
	DefaultParams DefaultParamsFunc
}

func (s *Spec) newParams() []float64 {
	if s.DefaultParams == nil {
		return nil
	}
	return s.DefaultParams()
}

// Fn is one live, stateful activation function belonging to a single
// node. Params mutate between generations (spec §4.2); Process never
// mutates Params.
type Fn struct {
	spec   *Spec
	Params []float64
}

// New instantiates spec with its default parameters.
func New(spec *Spec) *Fn {
	return &Fn{spec: spec, Params: spec.newParams()}
}

// Spec returns the registered definition backing this Fn.
func (f *Fn) Spec() *Spec {
	return f.spec
}

// Process computes the activation's output for in.
func (f *Fn) Process(in types.Value) types.Value {
	return f.spec.Process(in, f.Params)
}

// Mutate applies the registered mutation callback in place. A Spec
// with no Mutate callback (e.g. Identity) is a no-op.
func (f *Fn) Mutate(fitness float64) {
	if f.spec.Mutate == nil {
		return
	}
	f.spec.Mutate(f.Params, fitness)
}

// Clone produces an independent Fn. When preserveParams is false the
// clone's parameters are reset to the Spec's defaults rather than
// copied, per spec §4.2.
func (f *Fn) Clone(preserveParams bool) *Fn {
	if !preserveParams {
		return New(f.spec)
	}
	cp := make([]float64, len(f.Params))
	copy(cp, f.Params)
	return &Fn{spec: f.spec, Params: cp}
}

// String renders the activation's name and current parameters.
func (f *Fn) String() string {
	if len(f.Params) == 0 {
		return f.spec.Name
	}
	return f.spec.Name + paramsString(f.Params)
}

func paramsString(params []float64) string {
	s := "("
	for i, p := range params {
		if i > 0 {
			s += ", "
		}
		s += strconv.FormatFloat(p, 'g', 4, 64)
	}
	return s + ")"
}

// Table is the registered catalogue of Specs, indexed by (TIn, TOut),
// mirroring neat/math.NodeActivatorsFactory's register/lookup shape but
// keyed on the type pair instead of a flat enum.
type Table struct {
	bySignature map[signature][]*Spec
}

type signature struct {
	tin, tout types.Index
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{bySignature: make(map[signature][]*Spec)}
}

// Register adds spec to the table under its (TIn, TOut) pair. The
// position it lands in (len(Choices)-1 after Register) is the
// "choice index" used by InnovationRegistry.NodeInnovation.
func (t *Table) Register(spec *Spec) {
	sig := signature{spec.TIn, spec.TOut}
	t.bySignature[sig] = append(t.bySignature[sig], spec)
}

// Choices returns every Spec registered for (tin, tout), in registration
// order.
func (t *Table) Choices(tin, tout types.Index) []*Spec {
	return t.bySignature[signature{tin, tout}]
}

// ChoiceIndex returns the registration-order position of spec within its
// (TIn, TOut) bucket, used to build the node-innovation signature.
func (t *Table) ChoiceIndex(spec *Spec) int {
	for i, s := range t.bySignature[signature{spec.TIn, spec.TOut}] {
		if s == spec {
			return i
		}
	}
	return -1
}

// Random returns a uniformly chosen Spec for (tin, tout). Returns an
// error if no Spec is registered for that pair, a configuration error
// per spec §7.
func (t *Table) Random(tin, tout types.Index) (*Spec, error) {
	choices := t.Choices(tin, tout)
	if len(choices) == 0 {
		return nil, errors.Errorf("activation: no functions registered for (%d -> %d)", tin, tout)
	}
	return choices[rand.Intn(len(choices))], nil
}

// Identity is the fixed activation used by input/output nodes (spec
// §3: "their activation is the identity"). It is not registered in any
// Table: input/output nodes get it directly from NewIdentity.
func Identity(t types.Index) *Spec {
	return &Spec{
		Name: "Identity",
		TIn:  t,
		TOut: t,
		Process: func(in types.Value, _ []float64) types.Value {
			return in
		},
	}
}

// NewIdentity instantiates the Identity spec for domain t.
func NewIdentity(t types.Index) *Fn {
	return New(Identity(t))
}
