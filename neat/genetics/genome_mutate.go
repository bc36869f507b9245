package genetics

import (
	"math/rand"

	"github.com/aprosim/polyneat/neat/activation"
	"github.com/aprosim/polyneat/neat/network"
	"github.com/aprosim/polyneat/neat/types"
)

// MutationConfig gathers every probability/threshold driving Genome.Mutate
// (spec §4.6). It is carried separately from neat.Options so genetics
// stays independent of the config-loading package.
type MutationConfig struct {
	MutateWeightThresh           float64
	MutateWeightFullChangeThresh float64
	MutateWeightFactor           float32

	AddNodeThresh               float64
	AddTranstypeThresh          float64
	AddConnectionThresh         float64
	MaxIterationsFindNodeThresh int
	MaxIterationsFindConnThresh int
	ReactivateConnectionThresh  float64

	// ProbRecu and MaxRecurrency mirror the initial-construction
	// recurrency draw (spec §4.3) for freshly added connections.
	ProbRecu      float64
	MaxRecurrency uint32
}

// CheckNewConnectionValidity implements spec §4.4. reactivateIdx is the
// index into g.Connections of a matching disabled twin to reactivate, or
// -1 if none applies.
func (g *Genome) CheckNewConnectionValidity(in, out int, recu uint32) (valid bool, reactivateIdx int) {
	inNode, outNode := g.Nodes[in], g.Nodes[out]

	if inNode.TOut != outNode.TIn {
		return false, -1
	}
	if outNode.IsSensor() {
		return false, -1
	}
	for i, c := range g.Connections {
		if c.InNode == in && c.OutNode == out && c.InNodeRecu == recu {
			if c.Enabled {
				return false, -1
			}
			return true, i
		}
	}
	if recu > 0 {
		return true, -1
	}
	if inNode.Role == network.RoleOutput {
		return false, -1
	}
	if g.reachesNode(out, in) {
		return false, -1
	}
	return true, -1
}

// reachesNode reports whether dst is reachable from src via enabled
// non-recurrent edges, used by CheckNewConnectionValidity's cycle check
// (spec §4.4.6: "DFS from out looking for in").
func (g *Genome) reachesNode(src, dst int) bool {
	if src == dst {
		return true
	}
	adj := g.nonRecurrentAdjacency()
	visited := make([]bool, len(g.Nodes))
	var dfs func(n int) bool
	dfs = func(n int) bool {
		if n == dst {
			return true
		}
		visited[n] = true
		for _, e := range adj[n] {
			if !visited[e.to] && dfs(e.to) {
				return true
			}
		}
		return false
	}
	return dfs(src)
}

// UpdateLayers propagates a layer change from changed outward via DFS
// over enabled non-recurrent out-edges, then reconciles all output
// nodes onto one shared layer above every hidden node (spec §4.7, I3).
func (g *Genome) UpdateLayers(changed int) {
	adj := g.nonRecurrentAdjacency()
	visited := make([]bool, len(g.Nodes))
	var dfs func(n int)
	dfs = func(n int) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, e := range adj[n] {
			dst := g.Nodes[e.to]
			if g.Nodes[n].Layer+1 > dst.Layer {
				dst.Layer = g.Nodes[n].Layer + 1
			}
			dfs(e.to)
		}
	}
	dfs(changed)
	g.reconcileOutputLayers()
}

// reconcileOutputLayers implements spec §4.7's invariant-I3 fixup,
// capped at len(Nodes) iterations per design note #3 to guard against a
// pathological network where the reconciliation would otherwise loop.
func (g *Genome) reconcileOutputLayers() {
	for iter := 0; iter < len(g.Nodes); iter++ {
		maxLayer := int32(0)
		for _, n := range g.Nodes {
			if n.Role == network.RoleOutput && n.Layer > maxLayer {
				maxLayer = n.Layer
			}
		}
		settled := true
		for _, n := range g.Nodes {
			if n.Role == network.RoleHidden && n.Layer >= maxLayer {
				maxLayer = n.Layer + 1
				settled = false
			}
		}
		for _, n := range g.Nodes {
			if n.Role == network.RoleOutput {
				n.Layer = maxLayer
			}
		}
		if settled {
			return
		}
	}
}

// Mutate applies every structural and parametric mutator in the order
// specified by spec §4.6, each independently gated by its own
// probability. innov is the shared population registry.
func (g *Genome) Mutate(innov *InnovationRegistry, cfg MutationConfig) {
	if rand.Float64() < cfg.MutateWeightThresh {
		g.mutateWeights(cfg)
	}
	if rand.Float64() < cfg.AddNodeThresh {
		g.AddNode(innov, cfg)
	}
	if rand.Float64() < cfg.AddTranstypeThresh {
		g.AddTranstypeNode(innov, cfg)
	}
	if rand.Float64() < cfg.AddConnectionThresh {
		g.AddConnection(innov, cfg)
	}
	for _, n := range g.Nodes {
		if n.Role == network.RoleHidden {
			n.Activation.Mutate(g.Fitness)
		}
	}
}

func (g *Genome) mutateWeights(cfg MutationConfig) {
	for _, c := range g.Connections {
		if rand.Float64() < cfg.MutateWeightFullChangeThresh {
			c.Weight = randWeight(g.WeightExtremumInit)
		} else {
			factor := (rand.Float32()*2 - 1) * cfg.MutateWeightFactor
			c.Weight *= factor
		}
	}
}

// AddNode implements spec §4.6.2: split an enabled connection with a
// fresh node. Returns false without mutating the genome if no enabled
// connection could be found within MaxIterationsFindNodeThresh draws.
func (g *Genome) AddNode(innov *InnovationRegistry, cfg MutationConfig) bool {
	idx := g.pickEnabledConnection(cfg.MaxIterationsFindNodeThresh)
	if idx < 0 {
		return false
	}
	split := g.Connections[idx]
	split.Enabled = false

	source, sink := g.Nodes[split.InNode], g.Nodes[split.OutNode]
	// I1 already guarantees source.TOut == sink.TIn on the split edge, so
	// the new node sits at that single type: splitting a connection never
	// changes the data domain flowing through it (that is what the
	// separate transtype mutation is for).
	t := source.TOut

	spec, err := g.ActFns.Random(t, t)
	if err != nil {
		split.Enabled = true
		return false
	}
	choice := g.ActFns.ChoiceIndex(spec)
	rep := innov.NextNodeRepetition(int(t), int(t), choice)
	newId := len(g.Nodes)
	newInnov := innov.NodeInnovation(int(t), int(t), choice, rep)
	newNode := network.NewNode(newId, newInnov, network.RoleHidden, t, t, activation.New(spec), g.Types.Reset(t))

	if split.IsRecurrent() {
		newNode.Layer = 1
		if sink.Layer == 1 {
			sink.Layer = 2
		}
	} else {
		newNode.Layer = source.Layer + 1
		if sink.Layer <= newNode.Layer {
			sink.Layer = newNode.Layer + 1
		}
	}
	g.Nodes = append(g.Nodes, newNode)

	inInnov := innov.ConnectionInnovation(split.InNode, newId, split.InNodeRecu)
	inConn := network.NewConnection(inInnov, split.InNode, newId, split.InNodeRecu, split.Weight)
	outInnov := innov.ConnectionInnovation(newId, split.OutNode, 0)
	outConn := network.NewConnection(outInnov, newId, split.OutNode, 0, randWeight(g.WeightExtremumInit))
	g.Connections = append(g.Connections, inConn, outConn)

	g.UpdateLayers(newId)
	return true
}

func (g *Genome) pickEnabledConnection(maxTries int) int {
	if len(g.Connections) == 0 {
		return -1
	}
	for i := 0; i < maxTries; i++ {
		idx := rand.Intn(len(g.Connections))
		if g.Connections[idx].Enabled {
			return idx
		}
	}
	return -1
}

// AddTranstypeNode implements spec §4.6.3: insert a node whose TIn !=
// TOut, wired between an existing producer of TIn and an existing
// consumer of TOut. Per DESIGN.md's resolution of the source's known
// wart, both edge endpoints are found before the node is created, so a
// failed search leaves the genome and the registry untouched instead of
// leaving an unwired node.
func (g *Genome) AddTranstypeNode(innov *InnovationRegistry, cfg MutationConfig) bool {
	if g.Types.Len() < 2 {
		return false
	}
	tin := randomTypeIndex(g.Types)
	tout := randomTypeIndex(g.Types)
	for tout == tin {
		tout = randomTypeIndex(g.Types)
	}

	spec, err := g.ActFns.Random(tin, tout)
	if err != nil {
		return false
	}

	inIdx := g.findEdgeSource(tin, cfg.MaxIterationsFindNodeThresh)
	if inIdx < 0 {
		return false
	}
	outIdx := g.findEdgeSink(tout, inIdx, cfg.MaxIterationsFindNodeThresh)
	if outIdx < 0 {
		return false // rollback: no node was appended yet, nothing to undo
	}

	choice := g.ActFns.ChoiceIndex(spec)
	rep := innov.NextNodeRepetition(int(tin), int(tout), choice)
	newId := len(g.Nodes)
	newInnov := innov.NodeInnovation(int(tin), int(tout), choice, rep)
	newNode := network.NewNode(newId, newInnov, network.RoleHidden, tin, tout, activation.New(spec), g.Types.Reset(tin))
	newNode.Layer = g.Nodes[inIdx].Layer + 1
	g.Nodes = append(g.Nodes, newNode)

	inInnov := innov.ConnectionInnovation(inIdx, newId, 0)
	g.Connections = append(g.Connections, network.NewConnection(inInnov, inIdx, newId, 0, randWeight(g.WeightExtremumInit)))
	outInnov := innov.ConnectionInnovation(newId, outIdx, 0)
	g.Connections = append(g.Connections, network.NewConnection(outInnov, newId, outIdx, 0, randWeight(g.WeightExtremumInit)))

	g.UpdateLayers(newId)
	return true
}

func randomTypeIndex(reg *types.Registry) types.Index {
	return types.Index(rand.Intn(reg.Len()))
}

// findEdgeSource looks for a node whose output feeds the new transtype
// node's input domain wantTOut.
func (g *Genome) findEdgeSource(wantTOut types.Index, maxTries int) int {
	for i := 0; i < maxTries; i++ {
		idx := rand.Intn(len(g.Nodes))
		if g.Nodes[idx].TOut == wantTOut && g.Nodes[idx].Role != network.RoleOutput {
			return idx
		}
	}
	return -1
}

// findEdgeSink looks for a node whose input accepts the new transtype
// node's output domain wantTIn, rejecting any choice that would close a
// cycle back to source.
func (g *Genome) findEdgeSink(wantTIn types.Index, source int, maxTries int) int {
	for i := 0; i < maxTries; i++ {
		idx := rand.Intn(len(g.Nodes))
		n := g.Nodes[idx]
		if n.TIn != wantTIn || n.IsSensor() {
			continue
		}
		if g.reachesNode(idx, source) {
			continue // would create a cycle
		}
		return idx
	}
	return -1
}

// AddConnection implements spec §4.6.4.
func (g *Genome) AddConnection(innov *InnovationRegistry, cfg MutationConfig) bool {
	for i := 0; i < cfg.MaxIterationsFindConnThresh; i++ {
		in := rand.Intn(len(g.Nodes))
		out := rand.Intn(len(g.Nodes))
		recu := uint32(0)
		if cfg.MaxRecurrency > 0 && rand.Float64() < cfg.ProbRecu {
			recu = uint32(1 + rand.Intn(int(cfg.MaxRecurrency)))
		}
		valid, reactivateIdx := g.CheckNewConnectionValidity(in, out, recu)
		if !valid {
			continue
		}
		if reactivateIdx >= 0 {
			if rand.Float64() < cfg.ReactivateConnectionThresh {
				g.Connections[reactivateIdx].Enabled = true
			}
			// Process ended well either way: a disabled twin was found, so
			// the call is done whether or not the coin flip reactivated it.
			return true
		}
		innovId := innov.ConnectionInnovation(in, out, recu)
		conn := network.NewConnection(innovId, in, out, recu, randWeight(g.WeightExtremumInit))
		g.Connections = append(g.Connections, conn)
		if recu > g.RecMax {
			// Keep the history buffer deep enough for the new edge (I6).
			g.RecMax = recu
			g.PrevOutputs = network.NewBuffer(int(recu))
		}
		g.bumpLayerOnConnect(in, out, recu)
		return true
	}
	return false
}
