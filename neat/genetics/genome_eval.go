package genetics

import (
	"github.com/aprosim/polyneat/neat/network"
	"github.com/aprosim/polyneat/neat/types"
)

// LoadInput drives the i-th input node (0-indexed among input nodes,
// bias nodes excluded) from the harness (spec §4.5 precondition, §6).
func (g *Genome) LoadInput(value types.Value, i int) {
	g.Nodes[int(g.NbBias)+i].LoadInput(value)
}

// LoadInputs drives every input node in order.
func (g *Genome) LoadInputs(values []types.Value) {
	for i, v := range values {
		g.LoadInput(v, i)
	}
}

// GetOutput reads the i-th output node's last computed value.
func (g *Genome) GetOutput(i int) types.Value {
	return g.Nodes[int(g.NbBias+g.NbInput)+i].CurrentOutput
}

// GetOutputs reads every output node's last computed value in order.
func (g *Genome) GetOutputs() []types.Value {
	out := make([]types.Value, g.NbOutput)
	for i := range out {
		out[i] = g.GetOutput(i)
	}
	return out
}

// ResetMemory clears the recurrency history without touching node
// state, for use between unrelated rollouts of the same genome (spec
// §6 Population.resetMemory).
func (g *Genome) ResetMemory() {
	g.PrevOutputs.Reset()
}

// outputLayer returns the single layer every output node sits on (I3);
// 0 if the genome has no output nodes yet.
func (g *Genome) outputLayer() int32 {
	for _, n := range g.Nodes {
		if n.Role == network.RoleOutput {
			return n.Layer
		}
	}
	return 0
}

// Run performs one strictly layer-ordered forward pass (spec §4.5).
// Inputs must already be loaded via LoadInput/LoadInputs. This is the
// only legal evaluation order: any other traversal is not
// observationally equivalent.
func (g *Genome) Run() {
	for _, n := range g.Nodes {
		if !n.IsSensor() {
			n.Reset()
		}
	}
	for _, n := range g.Nodes {
		if n.IsSensor() {
			n.Process()
		}
	}

	lastLayer := g.outputLayer()
	for layer := int32(1); layer <= lastLayer; layer++ {
		for _, c := range g.Connections {
			if !c.Enabled {
				continue
			}
			sink := g.Nodes[c.OutNode]
			if sink.Layer != layer {
				continue
			}
			source := g.Nodes[c.InNode]
			if c.InNodeRecu == 0 {
				sink.AddToInput(source.CurrentOutput, float64(c.Weight))
				continue
			}
			// Recurrent edge: resolve from history, contributing nothing
			// while the history is still warming up (spec §4.5.c.i, §7).
			if snapshot, ok := g.PrevOutputs.At(int(c.InNodeRecu) - 1); ok {
				sink.AddToInput(snapshot[c.InNode], float64(c.Weight))
			}
		}
		for _, n := range g.Nodes {
			if n.Layer == layer {
				n.Process()
			}
		}
	}

	snapshot := make([]types.Value, len(g.Nodes))
	for i, n := range g.Nodes {
		snapshot[i] = n.CurrentOutput
	}
	g.PrevOutputs.Insert(snapshot)
}
