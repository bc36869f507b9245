package genetics

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/aprosim/polyneat/neat/activation"
	"github.com/aprosim/polyneat/neat/network"
	"github.com/aprosim/polyneat/neat/types"
)

// FormatVersion is written at the head of every serialized population
// and checked on read (spec §6, §7).
const FormatVersion uint32 = 1

var (
	// ErrTruncatedStream is returned when a read hits EOF before a
	// length-prefixed field has been fully consumed.
	ErrTruncatedStream = errors.New("genetics: truncated stream")
	// ErrVersionMismatch is returned when a population stream's leading
	// version word does not match FormatVersion.
	ErrVersionMismatch = errors.New("genetics: population format version mismatch")
)

// identityChoiceOnDisk marks a bias/input/output node's fixed Identity
// activation, which has no entry in any activation.Table.
const identityChoiceOnDisk int32 = -1

func wrapShort(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrTruncatedStream
	}
	return err
}

// writeNodeFull writes one Node in full, including its resolved
// activation-table choice index so ReadGenome can reconstruct the same
// *activation.Spec from the caller's Table (spec §6's "opaque per-type
// hook").
func writeNodeFull(w io.Writer, n *network.Node, actFns *activation.Table) error {
	if err := binary.Write(w, binary.LittleEndian, int32(n.Id)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, n.InnovId); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, n.Layer); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, byte(n.Role)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(n.TIn)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(n.TOut)); err != nil {
		return err
	}

	choice := int32(identityChoiceOnDisk)
	if n.Role == network.RoleHidden {
		choice = int32(actFns.ChoiceIndex(n.Activation.Spec()))
	}
	if err := binary.Write(w, binary.LittleEndian, choice); err != nil {
		return err
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(n.Activation.Params))); err != nil {
		return err
	}
	for _, p := range n.Activation.Params {
		if err := binary.Write(w, binary.LittleEndian, p); err != nil {
			return err
		}
	}
	return nil
}

func readNodeFull(r io.Reader, reg *types.Registry, actFns *activation.Table) (*network.Node, error) {
	var id32 int32
	var innovId int64
	var layer int32
	var role byte
	var tin32, tout32 int32
	if err := binary.Read(r, binary.LittleEndian, &id32); err != nil {
		return nil, wrapShort(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &innovId); err != nil {
		return nil, wrapShort(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &layer); err != nil {
		return nil, wrapShort(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &role); err != nil {
		return nil, wrapShort(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &tin32); err != nil {
		return nil, wrapShort(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &tout32); err != nil {
		return nil, wrapShort(err)
	}
	var choice int32
	if err := binary.Read(r, binary.LittleEndian, &choice); err != nil {
		return nil, wrapShort(err)
	}
	var nParams uint32
	if err := binary.Read(r, binary.LittleEndian, &nParams); err != nil {
		return nil, wrapShort(err)
	}
	params := make([]float64, nParams)
	for i := range params {
		if err := binary.Read(r, binary.LittleEndian, &params[i]); err != nil {
			return nil, wrapShort(err)
		}
	}
	tin, tout := types.Index(tin32), types.Index(tout32)
	role2 := network.Role(role)

	var fn *activation.Fn
	var resetValue types.Value
	switch role2 {
	case network.RoleBias, network.RoleInput, network.RoleOutput:
		fn = activation.NewIdentity(tin)
		resetValue = reg.Reset(tin)
	default:
		choices := actFns.Choices(tin, tout)
		if int(choice) < 0 || int(choice) >= len(choices) {
			return nil, errors.Errorf("genetics: node %d references unknown activation choice %d for (%d->%d)", id32, choice, tin32, tout32)
		}
		fn = activation.New(choices[choice])
		fn.Params = params
		resetValue = reg.Reset(tin)
	}

	n := network.NewNode(int(id32), innovId, role2, tin, tout, fn, resetValue)
	n.Layer = layer
	return n, nil
}

func writeConnection(w io.Writer, c *network.Connection) error {
	if err := binary.Write(w, binary.LittleEndian, c.InnovId); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(c.InNode)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(c.OutNode)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, c.InNodeRecu); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, c.Weight); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, c.Enabled)
}

func readConnection(r io.Reader) (*network.Connection, error) {
	var innovId int64
	var in32, out32 int32
	var recu uint32
	var weight float32
	var enabled bool
	if err := binary.Read(r, binary.LittleEndian, &innovId); err != nil {
		return nil, wrapShort(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &in32); err != nil {
		return nil, wrapShort(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &out32); err != nil {
		return nil, wrapShort(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &recu); err != nil {
		return nil, wrapShort(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &weight); err != nil {
		return nil, wrapShort(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &enabled); err != nil {
		return nil, wrapShort(err)
	}
	c := network.NewConnection(innovId, int(in32), int(out32), recu, weight)
	c.Enabled = enabled
	return c, nil
}

// WriteGenome writes g in the exact layout from spec §6:
// {u32 nbBias, u32 nbInput, u32 nbOutput, f32 weightExtremumInit,
// Vec<Node>, Vec<Connection>, u32 recMax, f64 fitness, i32 speciesId}.
func WriteGenome(w io.Writer, g *Genome, actFns *activation.Table) error {
	if err := binary.Write(w, binary.LittleEndian, g.NbBias); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, g.NbInput); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, g.NbOutput); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, g.WeightExtremumInit); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(g.Nodes))); err != nil {
		return err
	}
	for _, n := range g.Nodes {
		if err := writeNodeFull(w, n, actFns); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(g.Connections))); err != nil {
		return err
	}
	for _, c := range g.Connections {
		if err := writeConnection(w, c); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, g.RecMax); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, g.Fitness); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, int32(g.SpeciesId))
}

// ReadGenome reads a Genome written by WriteGenome. reg and actFns must
// be populated identically to how the writer's were (spec §6's "opaque
// per-type hook" is, in this Go binding, simply the caller supplying
// the same Registry/Table).
func ReadGenome(r io.Reader, reg *types.Registry, actFns *activation.Table) (*Genome, error) {
	g := &Genome{Types: reg, ActFns: actFns}
	if err := binary.Read(r, binary.LittleEndian, &g.NbBias); err != nil {
		return nil, wrapShort(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &g.NbInput); err != nil {
		return nil, wrapShort(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &g.NbOutput); err != nil {
		return nil, wrapShort(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &g.WeightExtremumInit); err != nil {
		return nil, wrapShort(err)
	}

	var nNodes uint32
	if err := binary.Read(r, binary.LittleEndian, &nNodes); err != nil {
		return nil, wrapShort(err)
	}
	g.Nodes = make([]*network.Node, nNodes)
	for i := range g.Nodes {
		n, err := readNodeFull(r, reg, actFns)
		if err != nil {
			return nil, err
		}
		g.Nodes[i] = n
	}

	var nConns uint32
	if err := binary.Read(r, binary.LittleEndian, &nConns); err != nil {
		return nil, wrapShort(err)
	}
	g.Connections = make([]*network.Connection, nConns)
	for i := range g.Connections {
		c, err := readConnection(r)
		if err != nil {
			return nil, err
		}
		g.Connections[i] = c
	}

	if err := binary.Read(r, binary.LittleEndian, &g.RecMax); err != nil {
		return nil, wrapShort(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &g.Fitness); err != nil {
		return nil, wrapShort(err)
	}
	var speciesId int32
	if err := binary.Read(r, binary.LittleEndian, &speciesId); err != nil {
		return nil, wrapShort(err)
	}
	g.SpeciesId = int(speciesId)
	g.PrevOutputs = network.NewBuffer(int(g.RecMax))
	return g, nil
}

// WriteInnovationRegistry writes every counter and signature table r
// holds, so a reloaded population continues assigning innovation ids
// without ever colliding with ones already used (spec §6, §4.1).
func WriteInnovationRegistry(w io.Writer, r *InnovationRegistry) error {
	if err := binary.Write(w, binary.LittleEndian, r.nextConn); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, r.nextNode); err != nil {
		return err
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(r.conns))); err != nil {
		return err
	}
	for sig, id := range r.conns {
		if err := binary.Write(w, binary.LittleEndian, int32(sig.in)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, int32(sig.out)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, sig.recu); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, id); err != nil {
			return err
		}
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(r.connsByInnov))); err != nil {
		return err
	}
	for sig, id := range r.connsByInnov {
		if err := binary.Write(w, binary.LittleEndian, sig.inInnov); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, sig.outInnov); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, sig.recu); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, id); err != nil {
			return err
		}
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(r.nodes))); err != nil {
		return err
	}
	for sig, id := range r.nodes {
		if err := binary.Write(w, binary.LittleEndian, int32(sig.tin)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, int32(sig.tout)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, int32(sig.actChoice)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, int32(sig.rep)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, id); err != nil {
			return err
		}
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(r.repByBaseNode))); err != nil {
		return err
	}
	for key, rep := range r.repByBaseNode {
		for _, v := range key {
			if err := binary.Write(w, binary.LittleEndian, int32(v)); err != nil {
				return err
			}
		}
		if err := binary.Write(w, binary.LittleEndian, int32(rep)); err != nil {
			return err
		}
	}
	return nil
}

// WritePopulation writes p in the exact layout from spec §6:
// {u32 version, u32 popSize, Genome[popSize], InnovationRegistry}. Species
// partitioning, generation count, and the speciation threshold are
// derived state, not part of the wire format; ReadPopulation's caller
// re-establishes them by calling Speciate after loading.
func WritePopulation(w io.Writer, p *Population) error {
	if err := binary.Write(w, binary.LittleEndian, FormatVersion); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(p.Genomes))); err != nil {
		return err
	}
	for _, g := range p.Genomes {
		if err := WriteGenome(w, g, p.ActFns); err != nil {
			return err
		}
	}
	return WriteInnovationRegistry(w, p.Innovation)
}

// ReadPopulation reads a population written by WritePopulation. reg,
// actFns, schema, and cfg must describe the same domain the writer used;
// the returned Population has no species yet (call Speciate to found
// them) and Generation 0.
func ReadPopulation(r io.Reader, reg *types.Registry, actFns *activation.Table, schema GenomeSchema, cfg PopulationConfig) (*Population, error) {
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, wrapShort(err)
	}
	if version != FormatVersion {
		return nil, errors.Wrapf(ErrVersionMismatch, "got %d, want %d", version, FormatVersion)
	}

	var popSize uint32
	if err := binary.Read(r, binary.LittleEndian, &popSize); err != nil {
		return nil, wrapShort(err)
	}
	genomes := make([]*Genome, popSize)
	for i := range genomes {
		g, err := ReadGenome(r, reg, actFns)
		if err != nil {
			return nil, err
		}
		// WriteGenome's wire format carries no genome id (spec §6); ids
		// are a population-local concept, reassigned by slot position
		// exactly as NewPopulation assigns them on construction.
		g.Id = i
		genomes[i] = g
	}

	innov, err := ReadInnovationRegistry(r)
	if err != nil {
		return nil, err
	}

	p := &Population{
		Genomes:          genomes,
		Config:           cfg,
		Schema:           schema,
		SpeciationThresh: cfg.SpeciationThreshInit,
		nextGenomeId:     len(genomes),
		eliteId:          -1,
		Innovation:       innov,
		Types:            reg,
		ActFns:           actFns,
	}
	return p, nil
}

// ReadInnovationRegistry reads a registry written by WriteInnovationRegistry.
func ReadInnovationRegistry(r io.Reader) (*InnovationRegistry, error) {
	reg := NewInnovationRegistry()
	if err := binary.Read(r, binary.LittleEndian, &reg.nextConn); err != nil {
		return nil, wrapShort(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &reg.nextNode); err != nil {
		return nil, wrapShort(err)
	}

	var nConns uint32
	if err := binary.Read(r, binary.LittleEndian, &nConns); err != nil {
		return nil, wrapShort(err)
	}
	for i := uint32(0); i < nConns; i++ {
		var in, out int32
		var recu uint32
		var id int64
		if err := binary.Read(r, binary.LittleEndian, &in); err != nil {
			return nil, wrapShort(err)
		}
		if err := binary.Read(r, binary.LittleEndian, &out); err != nil {
			return nil, wrapShort(err)
		}
		if err := binary.Read(r, binary.LittleEndian, &recu); err != nil {
			return nil, wrapShort(err)
		}
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, wrapShort(err)
		}
		reg.conns[connSignature{int(in), int(out), recu}] = id
	}

	var nConnsInnov uint32
	if err := binary.Read(r, binary.LittleEndian, &nConnsInnov); err != nil {
		return nil, wrapShort(err)
	}
	for i := uint32(0); i < nConnsInnov; i++ {
		var inInnov, outInnov int64
		var recu uint32
		var id int64
		if err := binary.Read(r, binary.LittleEndian, &inInnov); err != nil {
			return nil, wrapShort(err)
		}
		if err := binary.Read(r, binary.LittleEndian, &outInnov); err != nil {
			return nil, wrapShort(err)
		}
		if err := binary.Read(r, binary.LittleEndian, &recu); err != nil {
			return nil, wrapShort(err)
		}
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, wrapShort(err)
		}
		reg.connsByInnov[connInnovSignature{inInnov, outInnov, recu}] = id
	}

	var nNodes uint32
	if err := binary.Read(r, binary.LittleEndian, &nNodes); err != nil {
		return nil, wrapShort(err)
	}
	for i := uint32(0); i < nNodes; i++ {
		var tin, tout, choice, rep int32
		var id int64
		if err := binary.Read(r, binary.LittleEndian, &tin); err != nil {
			return nil, wrapShort(err)
		}
		if err := binary.Read(r, binary.LittleEndian, &tout); err != nil {
			return nil, wrapShort(err)
		}
		if err := binary.Read(r, binary.LittleEndian, &choice); err != nil {
			return nil, wrapShort(err)
		}
		if err := binary.Read(r, binary.LittleEndian, &rep); err != nil {
			return nil, wrapShort(err)
		}
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, wrapShort(err)
		}
		reg.nodes[nodeSignature{int(tin), int(tout), int(choice), int(rep)}] = id
	}

	var nRep uint32
	if err := binary.Read(r, binary.LittleEndian, &nRep); err != nil {
		return nil, wrapShort(err)
	}
	for i := uint32(0); i < nRep; i++ {
		var key [3]int32
		var rep int32
		for k := range key {
			if err := binary.Read(r, binary.LittleEndian, &key[k]); err != nil {
				return nil, wrapShort(err)
			}
		}
		if err := binary.Read(r, binary.LittleEndian, &rep); err != nil {
			return nil, wrapShort(err)
		}
		reg.repByBaseNode[[3]int{int(key[0]), int(key[1]), int(key[2])}] = int(rep)
	}

	return reg, nil
}
