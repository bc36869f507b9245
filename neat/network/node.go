// Package network holds the leaf vertex/edge/history types a Genome is
// built from: Node, Connection, and Buffer (spec §3, §4.2, §4.7). None
// of these types know how to mutate a graph; that is neat/genetics'
// responsibility. They only know how to hold state and, for Node,
// perform the single-step computation spec §4.5 drives them through.
package network

import (
	"fmt"

	"github.com/aprosim/polyneat/neat/activation"
	"github.com/aprosim/polyneat/neat/types"
)

// Role classifies a Node by its fixed position in the genome's node
// list (spec §3: "special roles by id range").
type Role byte

const (
	RoleBias Role = iota
	RoleInput
	RoleOutput
	RoleHidden
)

func (r Role) String() string {
	switch r {
	case RoleBias:
		return "bias"
	case RoleInput:
		return "input"
	case RoleOutput:
		return "output"
	default:
		return "hidden"
	}
}

// Node is a vertex in a genome's computation graph.
type Node struct {
	// Id is this node's position in the owning genome's Nodes slice.
	Id int
	// InnovId is the population-wide node-innovation number assigned by
	// InnovationRegistry.NodeInnovation.
	InnovId int64
	// Layer is the topological level; -1 means unassigned.
	Layer int32
	Role  Role

	TIn, TOut types.Index

	Activation *activation.Fn

	ResetValue types.Value

	CurrentInput  types.Value
	CurrentOutput types.Value
}

// NewNode builds a Node with no computed state yet; callers must call
// Reset or Process before reading CurrentOutput.
func NewNode(id int, innovId int64, role Role, tin, tout types.Index, act *activation.Fn, resetValue types.Value) *Node {
	return &Node{
		Id:         id,
		InnovId:    innovId,
		Layer:      -1,
		Role:       role,
		TIn:        tin,
		TOut:       tout,
		Activation: act,
		ResetValue: resetValue,
	}
}

// IsSensor reports whether this node is a bias or input node: neither
// has reset semantics nor accepts incoming edges (spec I4).
func (n *Node) IsSensor() bool {
	return n.Role == RoleBias || n.Role == RoleInput
}

// Reset writes the node's reset value to CurrentInput (spec §4.2). Bias
// and input nodes are never reset: they carry a constant or externally
// loaded value.
func (n *Node) Reset() {
	n.CurrentInput = n.ResetValue
}

// AddToInput accumulates value*scalar into CurrentInput in the node's
// input domain (spec §4.2). scalar is a connection weight; it is always
// a plain float64 regardless of the node's Kind, and is cast into the
// target domain as that domain requires.
func (n *Node) AddToInput(value types.Value, scalar float64) {
	if n.CurrentInput.Kind == types.KindInt64 {
		n.CurrentInput = types.FromInt64(n.CurrentInput.I + int64(value.Float64()*scalar))
	} else {
		n.CurrentInput = types.FromFloat64(n.CurrentInput.F + value.Float64()*scalar)
	}
}

// Process computes CurrentOutput from CurrentInput via the node's
// activation function.
func (n *Node) Process() {
	n.CurrentOutput = n.Activation.Process(n.CurrentInput)
}

// LoadInput directly sets CurrentInput and CurrentOutput to value,
// bypassing accumulation and activation. Used to drive bias/input nodes
// from the harness (spec §6 load_input).
func (n *Node) LoadInput(value types.Value) {
	n.CurrentInput = value
	n.CurrentOutput = value
}

// Clone deep-copies this node's parameters and scratch state. preserveActivationParams
// controls whether the clone's activation parameters are copied or reset
// to their spec defaults (spec §4.2 ActivationFn.clone).
func (n *Node) Clone(preserveActivationParams bool) *Node {
	cp := *n
	cp.Activation = n.Activation.Clone(preserveActivationParams)
	return &cp
}

func (n *Node) String() string {
	return fmt.Sprintf("Node{id=%d innov=%d role=%s layer=%d t=%d->%d act=%s}",
		n.Id, n.InnovId, n.Role, n.Layer, n.TIn, n.TOut, n.Activation)
}
