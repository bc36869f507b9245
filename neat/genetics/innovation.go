// Package genetics implements the evolutionary runtime: the
// InnovationRegistry, Genome, Species, and Population types and their
// operators (spec §4.1, §4.3-4.11).
package genetics

// connSignature identifies a structural edge by the local (genome-slot)
// ids of its endpoints, used during initial construction and structural
// mutation of a single genome.
type connSignature struct {
	in, out int
	recu    uint32
}

// connInnovSignature identifies a structural edge by the innovation ids
// of its endpoints, used for crossover-safe alignment between two
// genomes that may number their local node slots differently.
type connInnovSignature struct {
	inInnov, outInnov int64
	recu              uint32
}

// nodeSignature identifies a hidden-node innovation by the activation
// choice it was created with and a repetition counter, allowing the same
// (TIn, TOut, choice) combination to be re-split independently more than
// once without colliding on a single innovation id.
type nodeSignature struct {
	tin, tout int
	actChoice int
	rep       int
}

// InnovationRegistry is the population-wide, run-long-lived source of
// structural identity (spec §4.1). It is read and mutated only by the
// goroutine driving mutation/construction/speciation (spec §5); it must
// never be reached from a threadpool-dispatched evaluation closure, so
// it carries no internal locking of its own.
type InnovationRegistry struct {
	conns        map[connSignature]int64
	connsByInnov map[connInnovSignature]int64
	nodes        map[nodeSignature]int64

	nextConn int64
	nextNode int64

	repByBaseNode map[[3]int]int
}

// NewInnovationRegistry returns an empty registry with its two counters
// starting at 0: the two connection tables draw ids from the one shared
// nextConn counter, and the node table from nextNode.
func NewInnovationRegistry() *InnovationRegistry {
	return &InnovationRegistry{
		conns:         make(map[connSignature]int64),
		connsByInnov:  make(map[connInnovSignature]int64),
		nodes:         make(map[nodeSignature]int64),
		repByBaseNode: make(map[[3]int]int),
	}
}

// ConnectionInnovation returns the innovation id for the structural edge
// (in, out, recu) between local node slots, assigning a fresh one on
// first sighting (spec §4.1 get_or_assign). Once assigned the id is
// immutable for the life of the registry.
func (r *InnovationRegistry) ConnectionInnovation(in, out int, recu uint32) int64 {
	sig := connSignature{in, out, recu}
	if id, ok := r.conns[sig]; ok {
		return id
	}
	id := r.nextConn
	r.nextConn++
	r.conns[sig] = id
	return id
}

// ConnectionInnovationByEndpoints is the crossover-safe counterpart of
// ConnectionInnovation, keyed by the endpoints' own innovation ids
// rather than their positions within one particular genome.
func (r *InnovationRegistry) ConnectionInnovationByEndpoints(inInnov, outInnov int64, recu uint32) int64 {
	sig := connInnovSignature{inInnov, outInnov, recu}
	if id, ok := r.connsByInnov[sig]; ok {
		return id
	}
	id := r.nextConn
	r.nextConn++
	r.connsByInnov[sig] = id
	return id
}

// NextNodeRepetition returns the next unused repetition counter for the
// (tin, tout, actChoice) base signature, guaranteeing that a caller
// asking to split a new edge gets a fresh node innovation even if an
// earlier, genetically distinct split picked the same activation
// choice.
func (r *InnovationRegistry) NextNodeRepetition(tin, tout, actChoice int) int {
	key := [3]int{tin, tout, actChoice}
	rep := r.repByBaseNode[key]
	r.repByBaseNode[key] = rep + 1
	return rep
}

// NodeInnovation returns the innovation id for a hidden node created
// with the given (TIn, TOut, activation choice index, repetition),
// assigning a fresh one on first sighting.
func (r *InnovationRegistry) NodeInnovation(tin, tout, actChoice, rep int) int64 {
	sig := nodeSignature{tin, tout, actChoice, rep}
	if id, ok := r.nodes[sig]; ok {
		return id
	}
	id := r.nextNode
	r.nextNode++
	r.nodes[sig] = id
	return id
}
