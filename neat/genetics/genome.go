package genetics

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/aprosim/polyneat/neat/activation"
	"github.com/aprosim/polyneat/neat/network"
	"github.com/aprosim/polyneat/neat/types"
)

// Configuration errors, raised at construction time (spec §7).
var (
	ErrEmptySchema         = errors.New("genetics: node schema declares zero nodes")
	ErrTypeIndexOutOfRange = errors.New("genetics: type index out of declared range")
	ErrNoActivationChoices = errors.New("genetics: no activation function registered for a declared (t_in,t_out) pair")
)

// noSpecies marks a Genome not yet assigned to any Species.
const noSpecies = -1

// Genome is the primary unit of the evolutionary search: a graph of
// typed Nodes connected by Connections, together with the recurrency
// history needed to evaluate it (spec §3).
type Genome struct {
	Id int

	NbBias, NbInput, NbOutput uint32
	WeightExtremumInit        float32

	Nodes       []*network.Node
	Connections []*network.Connection

	PrevOutputs *network.Buffer
	RecMax      uint32

	Fitness   float64
	SpeciesId int

	Types  *types.Registry
	ActFns *activation.Table
}

// GenomeSchema describes how many nodes of each declared type to place
// in each fixed role, and how the initial hidden population is
// distributed across (t_in,t_out) pairs (spec §4.3).
type GenomeSchema struct {
	// BiasCounts[t] / InputCounts[t] / OutputCounts[t] are per-type node
	// counts; bias, input and output nodes always have TIn == TOut == t.
	BiasCounts, InputCounts, OutputCounts []int
	// HiddenCounts[tin][tout] is the count of initial hidden nodes with
	// that (TIn, TOut) pair.
	HiddenCounts [][]int

	NConnInit          int
	ProbRecuInit       float64
	WeightExtremumInit float32
	MaxRecuInit        uint32
}

// NewGenomeRandom builds a fresh genome from schema, wiring NConnInit
// random connections into it (spec §4.3). reg and actFns must already
// have every type and activation choice the schema references declared.
func NewGenomeRandom(id int, reg *types.Registry, actFns *activation.Table, innov *InnovationRegistry, schema GenomeSchema) (*Genome, error) {
	if err := validateSchema(reg, schema); err != nil {
		return nil, err
	}

	g := &Genome{
		Id:                 id,
		WeightExtremumInit: schema.WeightExtremumInit,
		Types:              reg,
		ActFns:             actFns,
		SpeciesId:          noSpecies,
	}

	hasHidden := false
	for _, row := range schema.HiddenCounts {
		for _, n := range row {
			if n > 0 {
				hasHidden = true
			}
		}
	}
	outputLayer := int32(1)
	if hasHidden {
		outputLayer = 2
	}

	nextId := 0
	// bias nodes
	for t, count := range schema.BiasCounts {
		for i := 0; i < count; i++ {
			tIdx := types.Index(t)
			n := network.NewNode(nextId, innov.NodeInnovation(t, t, identityChoice, 0), network.RoleBias,
				tIdx, tIdx, activation.NewIdentity(tIdx), types.Value{})
			n.Layer = 0
			n.LoadInput(reg.Default(tIdx))
			g.Nodes = append(g.Nodes, n)
			g.NbBias++
			nextId++
		}
	}
	// input nodes
	for t, count := range schema.InputCounts {
		for i := 0; i < count; i++ {
			tIdx := types.Index(t)
			n := network.NewNode(nextId, innov.NodeInnovation(t, t, identityChoice, 0), network.RoleInput,
				tIdx, tIdx, activation.NewIdentity(tIdx), reg.Reset(tIdx))
			n.Layer = 0
			g.Nodes = append(g.Nodes, n)
			g.NbInput++
			nextId++
		}
	}
	// output nodes
	for t, count := range schema.OutputCounts {
		for i := 0; i < count; i++ {
			tIdx := types.Index(t)
			n := network.NewNode(nextId, innov.NodeInnovation(t, t, identityChoice, 0), network.RoleOutput,
				tIdx, tIdx, activation.NewIdentity(tIdx), reg.Reset(tIdx))
			n.Layer = outputLayer
			g.Nodes = append(g.Nodes, n)
			g.NbOutput++
			nextId++
		}
	}
	// hidden nodes
	for tin, row := range schema.HiddenCounts {
		for tout, count := range row {
			for i := 0; i < count; i++ {
				tinIdx, toutIdx := types.Index(tin), types.Index(tout)
				spec, err := actFns.Random(tinIdx, toutIdx)
				if err != nil {
					return nil, errors.Wrapf(ErrNoActivationChoices, "hidden node (%d -> %d)", tin, tout)
				}
				choice := actFns.ChoiceIndex(spec)
				rep := innov.NextNodeRepetition(tin, tout, choice)
				n := network.NewNode(nextId, innov.NodeInnovation(tin, tout, choice, rep), network.RoleHidden,
					tinIdx, toutIdx, activation.New(spec), reg.Reset(tinIdx))
				n.Layer = 1
				g.Nodes = append(g.Nodes, n)
				nextId++
			}
		}
	}

	g.RecMax = schema.MaxRecuInit
	g.PrevOutputs = network.NewBuffer(int(g.RecMax))

	for added := 0; added < schema.NConnInit; {
		in := rand.Intn(len(g.Nodes))
		out := rand.Intn(len(g.Nodes))
		recu := uint32(0)
		if schema.MaxRecuInit > 0 && rand.Float64() < schema.ProbRecuInit {
			recu = uint32(1 + rand.Intn(int(schema.MaxRecuInit)))
		}
		valid, reactivate := g.CheckNewConnectionValidity(in, out, recu)
		if !valid {
			continue // retry until a valid draw lands, per repeated random sampling
		}
		if reactivate >= 0 {
			g.Connections[reactivate].Enabled = true
		} else {
			weight := randWeight(schema.WeightExtremumInit)
			innovId := innov.ConnectionInnovation(in, out, recu)
			conn := network.NewConnection(innovId, in, out, recu, weight)
			g.Connections = append(g.Connections, conn)
			g.bumpLayerOnConnect(in, out, recu)
		}
		added++
	}

	return g, nil
}

func validateSchema(reg *types.Registry, schema GenomeSchema) error {
	total := 0
	for _, c := range schema.InputCounts {
		total += c
	}
	for _, c := range schema.OutputCounts {
		total += c
	}
	if total == 0 {
		return ErrEmptySchema
	}
	for _, counts := range [][]int{schema.BiasCounts, schema.InputCounts, schema.OutputCounts} {
		for t := range counts {
			if !reg.Valid(types.Index(t)) {
				return ErrTypeIndexOutOfRange
			}
		}
	}
	for tin, row := range schema.HiddenCounts {
		if !reg.Valid(types.Index(tin)) {
			return ErrTypeIndexOutOfRange
		}
		for tout := range row {
			if !reg.Valid(types.Index(tout)) {
				return ErrTypeIndexOutOfRange
			}
		}
	}
	return nil
}

// identityChoice is the reserved actChoice slot used for the fixed
// Identity activation of bias/input/output nodes, which is never
// registered in an activation.Table.
const identityChoice = -1

func randWeight(extremum float32) float32 {
	return (rand.Float32()*2 - 1) * extremum
}

// bumpLayerOnConnect increments out's layer (and propagates) when
// connecting in->out would otherwise equalize two layers (spec §4.3).
func (g *Genome) bumpLayerOnConnect(in, out int, recu uint32) {
	if recu != 0 {
		return
	}
	inNode, outNode := g.Nodes[in], g.Nodes[out]
	if inNode.Layer >= outNode.Layer {
		outNode.Layer = inNode.Layer + 1
		g.UpdateLayers(out)
	}
}

// Complexity returns the node and enabled-connection count together, a
// scalar proxy for how elaborate this genome's topology has grown.
func (g *Genome) Complexity() int {
	return len(g.Nodes) + g.Extrons()
}

// Extrons returns the number of enabled connections.
func (g *Genome) Extrons() int {
	total := 0
	for _, c := range g.Connections {
		if c.Enabled {
			total++
		}
	}
	return total
}

// Clone deep-copies this genome, assigning it newId.
func (g *Genome) Clone(newId int) *Genome {
	cp := &Genome{
		Id:                 newId,
		NbBias:             g.NbBias,
		NbInput:            g.NbInput,
		NbOutput:           g.NbOutput,
		WeightExtremumInit: g.WeightExtremumInit,
		RecMax:             g.RecMax,
		Fitness:            g.Fitness,
		SpeciesId:          g.SpeciesId,
		Types:              g.Types,
		ActFns:             g.ActFns,
	}
	cp.Nodes = make([]*network.Node, len(g.Nodes))
	for i, n := range g.Nodes {
		cp.Nodes[i] = n.Clone(true)
	}
	cp.Connections = make([]*network.Connection, len(g.Connections))
	for i, c := range g.Connections {
		cp.Connections[i] = c.Clone()
	}
	cp.PrevOutputs = network.NewBuffer(int(g.RecMax))
	return cp
}

// NodeByInnov returns the node with the given innovation id, or nil.
func (g *Genome) NodeByInnov(innovId int64) *network.Node {
	for _, n := range g.Nodes {
		if n.InnovId == innovId {
			return n
		}
	}
	return nil
}

// ConnectionByInnov returns the connection with the given innovation id, or nil.
func (g *Genome) ConnectionByInnov(innovId int64) *network.Connection {
	for _, c := range g.Connections {
		if c.InnovId == innovId {
			return c
		}
	}
	return nil
}

// MaxConnInnovation returns the highest connection innovation id present
// in this genome, or -1 if it has no connections.
func (g *Genome) MaxConnInnovation() int64 {
	max := int64(-1)
	for _, c := range g.Connections {
		if c.InnovId > max {
			max = c.InnovId
		}
	}
	return max
}

func (g *Genome) String() string {
	s := fmt.Sprintf("Genome{id=%d fitness=%g species=%d nodes=%d conns=%d(%d enabled)}\n",
		g.Id, g.Fitness, g.SpeciesId, len(g.Nodes), len(g.Connections), g.Extrons())
	for _, n := range g.Nodes {
		s += "\t" + n.String() + "\n"
	}
	for _, c := range g.Connections {
		s += "\t" + c.String() + "\n"
	}
	return s
}

// Verify walks invariants I1-I6 and returns the first violation found.
// It is a debug aid used by tests, never called from the hot path.
func (g *Genome) Verify() error {
	for _, c := range g.Connections {
		in, out := g.Nodes[c.InNode], g.Nodes[c.OutNode]
		if in.TOut != out.TIn {
			return errors.Errorf("I1 violated: connection %s has mismatched types", c)
		}
		if out.IsSensor() {
			return errors.Errorf("I4 violated: connection %s points into a bias/input node", c)
		}
	}
	if cyclic, edge := g.hasNonRecurrentCycle(); cyclic {
		return errors.Errorf("I2 violated: cycle through enabled non-recurrent edge %s", edge)
	}
	var outLayer int32 = -1
	for _, n := range g.Nodes {
		if n.Role != network.RoleOutput {
			continue
		}
		if outLayer == -1 {
			outLayer = n.Layer
		} else if n.Layer != outLayer {
			return errors.New("I3 violated: output nodes span multiple layers")
		}
	}
	for _, n := range g.Nodes {
		if n.Role == network.RoleHidden && n.Layer >= outLayer {
			return errors.New("I3 violated: hidden node at or above output layer")
		}
		if (n.Role == network.RoleBias || n.Role == network.RoleInput) && n.Layer != 0 {
			return errors.New("I4 violated: bias/input node not at layer 0")
		}
	}
	seen := make(map[connSignature]bool)
	for _, c := range g.Connections {
		sig := connSignature{c.InNode, c.OutNode, c.InNodeRecu}
		if seen[sig] {
			return errors.Errorf("I5 violated: duplicate connection %s", c)
		}
		seen[sig] = true
	}
	if int(g.RecMax) < g.maxUsedRecurrency() {
		return errors.New("I6 violated: buffer capacity below maximum used recurrency")
	}
	return nil
}

func (g *Genome) maxUsedRecurrency() int {
	max := 0
	for _, c := range g.Connections {
		if c.Enabled && int(c.InNodeRecu) > max {
			max = int(c.InNodeRecu)
		}
	}
	return max
}

func (g *Genome) hasNonRecurrentCycle() (bool, *network.Connection) {
	adjacency := g.nonRecurrentAdjacency()
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, len(g.Nodes))
	var offending *network.Connection
	var visit func(n int) bool
	visit = func(n int) bool {
		color[n] = gray
		for _, e := range adjacency[n] {
			if color[e.to] == gray {
				offending = e.conn
				return true
			}
			if color[e.to] == white && visit(e.to) {
				return true
			}
		}
		color[n] = black
		return false
	}
	for i := range g.Nodes {
		if color[i] == white && visit(i) {
			return true, offending
		}
	}
	return false, nil
}

type edgeRef struct {
	to   int
	conn *network.Connection
}

func (g *Genome) nonRecurrentAdjacency() [][]edgeRef {
	adj := make([][]edgeRef, len(g.Nodes))
	for _, c := range g.Connections {
		if !c.Enabled || c.IsRecurrent() {
			continue
		}
		adj[c.InNode] = append(adj[c.InNode], edgeRef{c.OutNode, c})
	}
	return adj
}
