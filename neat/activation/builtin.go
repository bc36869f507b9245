package activation

import (
	"math"
	"math/rand"

	"github.com/aprosim/polyneat/neat/types"
)

// mutationPower scales the random-walk step applied to an evolvable
// activation parameter by a default Mutate callback. Larger values let
// params drift further per generation.
const mutationPower = 0.5

// perturb is the shared "larger step at lower fitness" idiom from spec
// §4.2: scale a normal perturbation inversely with fitness, floored so a
// genome with zero recorded fitness still gets a bounded step.
func perturb(fitness float64) float64 {
	denom := 1.0 + math.Max(fitness, 0)
	return rand.NormFloat64() * mutationPower / denom
}

func mutateSingle(idx int) MutateFunc {
	return func(params []float64, fitness float64) {
		params[idx] += perturb(fitness)
	}
}

// SigmoidGain is a float64->float64 sigmoid whose steepness (gain)
// evolves. Default gain 4.9 matches the steepened sigmoid used by the
// teacher's SigmoidSteepenedActivation and by spec scenario S1.
func SigmoidGain(t types.Index) *Spec {
	return &Spec{
		Name: "SigmoidGain",
		TIn:  t,
		TOut: t,
		Process: func(in types.Value, params []float64) types.Value {
			gain := params[0]
			return types.FromFloat64(1.0 / (1.0 + math.Exp(-gain*in.Float64())))
		},
		Mutate:        mutateSingle(0),
		DefaultParams: func() []float64 { return []float64{4.9} },
	}
}

// TanhGain is a float64->float64 hyperbolic tangent with an evolvable
// gain, defaulting to the teacher's 0.9 steepness.
func TanhGain(t types.Index) *Spec {
	return &Spec{
		Name: "TanhGain",
		TIn:  t,
		TOut: t,
		Process: func(in types.Value, params []float64) types.Value {
			return types.FromFloat64(math.Tanh(params[0] * in.Float64()))
		},
		Mutate:        mutateSingle(0),
		DefaultParams: func() []float64 { return []float64{0.9} },
	}
}

// GaussianWidth is a bipolar Gaussian, xrange [-1,1] yrange [-1,1], with
// an evolvable width parameter.
func GaussianWidth(t types.Index) *Spec {
	return &Spec{
		Name: "GaussianWidth",
		TIn:  t,
		TOut: t,
		Process: func(in types.Value, params []float64) types.Value {
			width := params[0]
			return types.FromFloat64(2.0*math.Exp(-math.Pow(in.Float64()*width, 2.0)) - 1.0)
		},
		Mutate:        mutateSingle(0),
		DefaultParams: func() []float64 { return []float64{2.5} },
	}
}

// LinearClipped clips its input to [-bound, bound] and passes it
// through otherwise; bound evolves.
func LinearClipped(t types.Index) *Spec {
	return &Spec{
		Name: "LinearClipped",
		TIn:  t,
		TOut: t,
		Process: func(in types.Value, params []float64) types.Value {
			bound := math.Abs(params[0])
			v := in.Float64()
			if v < -bound {
				v = -bound
			} else if v > bound {
				v = bound
			}
			return types.FromFloat64(v)
		},
		Mutate:        mutateSingle(0),
		DefaultParams: func() []float64 { return []float64{1.0} },
	}
}

// StepThresh is a step function with an evolvable threshold.
func StepThresh(t types.Index) *Spec {
	return &Spec{
		Name: "StepThresh",
		TIn:  t,
		TOut: t,
		Process: func(in types.Value, params []float64) types.Value {
			if in.Float64() < params[0] {
				return types.FromFloat64(0.0)
			}
			return types.FromFloat64(1.0)
		},
		Mutate:        mutateSingle(0),
		DefaultParams: func() []float64 { return []float64{0.0} },
	}
}

// IntThreshold is an int64->int64 activation that emits one of two
// evolvable integer levels depending on whether the input clears an
// evolvable threshold.
func IntThreshold(t types.Index) *Spec {
	return &Spec{
		Name: "IntThreshold",
		TIn:  t,
		TOut: t,
		Process: func(in types.Value, params []float64) types.Value {
			thresh, low, high := params[0], params[1], params[2]
			if float64(in.Int64()) < thresh {
				return types.FromInt64(int64(low))
			}
			return types.FromInt64(int64(high))
		},
		Mutate: func(params []float64, fitness float64) {
			idx := rand.Intn(len(params))
			params[idx] += perturb(fitness)
		},
		DefaultParams: func() []float64 { return []float64{0, 0, 1} },
	}
}

// IntIdentity passes an integer value through unchanged; registered
// alongside IntThreshold so integer-domain hidden nodes have more than
// one activation choice to draw from.
func IntIdentity(t types.Index) *Spec {
	return &Spec{
		Name: "IntIdentity",
		TIn:  t,
		TOut: t,
		Process: func(in types.Value, _ []float64) types.Value {
			return types.FromInt64(in.Int64())
		},
	}
}

// RoundToInt is a transtype activation (float64 -> int64) rounding its
// input to the nearest integer, then scaling by an evolvable factor.
func RoundToInt(tin, tout types.Index) *Spec {
	return &Spec{
		Name: "RoundToInt",
		TIn:  tin,
		TOut: tout,
		Process: func(in types.Value, params []float64) types.Value {
			return types.FromInt64(int64(math.Round(in.Float64() * params[0])))
		},
		Mutate:        mutateSingle(0),
		DefaultParams: func() []float64 { return []float64{1.0} },
	}
}

// WidenToFloat is a transtype activation (int64 -> float64) widening its
// input and scaling it by an evolvable factor.
func WidenToFloat(tin, tout types.Index) *Spec {
	return &Spec{
		Name: "WidenToFloat",
		TIn:  tin,
		TOut: tout,
		Process: func(in types.Value, params []float64) types.Value {
			return types.FromFloat64(float64(in.Int64()) * params[0])
		},
		Mutate:        mutateSingle(0),
		DefaultParams: func() []float64 { return []float64{1.0} },
	}
}

// RegisterDefaults registers a standard set of activation choices for
// the float and, if present, integer domains into t. fIdx is the
// float64 domain's Index; iIdx is the int64 domain's Index, or -1 if no
// integer domain was declared.
func RegisterDefaults(t *Table, fIdx types.Index, iIdx types.Index) {
	t.Register(SigmoidGain(fIdx))
	t.Register(TanhGain(fIdx))
	t.Register(GaussianWidth(fIdx))
	t.Register(LinearClipped(fIdx))
	t.Register(StepThresh(fIdx))

	if iIdx < 0 {
		return
	}
	t.Register(IntThreshold(iIdx))
	t.Register(IntIdentity(iIdx))
	t.Register(RoundToInt(fIdx, iIdx))
	t.Register(WidenToFloat(iIdx, fIdx))
}
