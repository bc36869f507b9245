package network

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aprosim/polyneat/neat/activation"
	"github.com/aprosim/polyneat/neat/types"
)

var fIdx = types.Index(0)

func TestNode_IsSensor(t *testing.T) {
	assert.True(t, NewNode(0, 0, RoleBias, fIdx, fIdx, activation.NewIdentity(fIdx), types.FromFloat64(0)).IsSensor())
	assert.True(t, NewNode(0, 0, RoleInput, fIdx, fIdx, activation.NewIdentity(fIdx), types.FromFloat64(0)).IsSensor())
	assert.False(t, NewNode(0, 0, RoleOutput, fIdx, fIdx, activation.NewIdentity(fIdx), types.FromFloat64(0)).IsSensor())
	assert.False(t, NewNode(0, 0, RoleHidden, fIdx, fIdx, activation.NewIdentity(fIdx), types.FromFloat64(0)).IsSensor())
}

func TestNode_Reset(t *testing.T) {
	n := NewNode(0, 0, RoleHidden, fIdx, fIdx, activation.NewIdentity(fIdx), types.FromFloat64(7.0))
	n.CurrentInput = types.FromFloat64(99.0)
	n.Reset()
	assert.Equal(t, 7.0, n.CurrentInput.Float64())
}

func TestNode_AddToInput_float(t *testing.T) {
	n := NewNode(0, 0, RoleHidden, fIdx, fIdx, activation.NewIdentity(fIdx), types.FromFloat64(0))
	n.Reset()
	n.AddToInput(types.FromFloat64(2.0), 3.0)
	n.AddToInput(types.FromFloat64(1.0), 1.0)
	assert.Equal(t, 7.0, n.CurrentInput.Float64())
}

func TestNode_AddToInput_int(t *testing.T) {
	iIdx := types.Index(1)
	n := NewNode(0, 0, RoleHidden, iIdx, iIdx, activation.NewIdentity(iIdx), types.FromInt64(0))
	n.Reset()
	n.AddToInput(types.FromFloat64(2.0), 3.0)
	assert.Equal(t, int64(6), n.CurrentInput.Int64())
}

func TestNode_Process(t *testing.T) {
	n := NewNode(0, 0, RoleHidden, fIdx, fIdx, activation.NewIdentity(fIdx), types.FromFloat64(0))
	n.CurrentInput = types.FromFloat64(5.0)
	n.Process()
	assert.Equal(t, 5.0, n.CurrentOutput.Float64())
}

func TestNode_LoadInput(t *testing.T) {
	n := NewNode(0, 0, RoleInput, fIdx, fIdx, activation.NewIdentity(fIdx), types.FromFloat64(0))
	n.LoadInput(types.FromFloat64(3.0))
	assert.Equal(t, 3.0, n.CurrentInput.Float64())
	assert.Equal(t, 3.0, n.CurrentOutput.Float64())
}

func TestNode_Clone_preservesParamsIndependently(t *testing.T) {
	spec := &activation.Spec{Name: "p", TIn: fIdx, TOut: fIdx, DefaultParams: func() []float64 { return []float64{1} }}
	n := NewNode(0, 0, RoleHidden, fIdx, fIdx, activation.New(spec), types.FromFloat64(0))
	n.Activation.Params[0] = 42

	cp := n.Clone(true)
	assert.Equal(t, n.Id, cp.Id)
	assert.Equal(t, []float64{42}, cp.Activation.Params)

	cp.Activation.Params[0] = 7
	assert.Equal(t, float64(42), n.Activation.Params[0], "clone must own an independent Params slice")
}

func TestNode_Clone_resetParams(t *testing.T) {
	spec := &activation.Spec{Name: "p", TIn: fIdx, TOut: fIdx, DefaultParams: func() []float64 { return []float64{1} }}
	n := NewNode(0, 0, RoleHidden, fIdx, fIdx, activation.New(spec), types.FromFloat64(0))
	n.Activation.Params[0] = 42

	cp := n.Clone(false)
	assert.Equal(t, []float64{1}, cp.Activation.Params)
}

func TestNode_String(t *testing.T) {
	n := NewNode(2, 5, RoleHidden, fIdx, fIdx, activation.NewIdentity(fIdx), types.FromFloat64(0))
	n.Layer = 1
	assert.Contains(t, n.String(), "id=2")
	assert.Contains(t, n.String(), "innov=5")
}
