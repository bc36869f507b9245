package types

import "github.com/pkg/errors"

// Index identifies one declared value domain within a Registry. Indexes
// are assigned in declaration order starting at 0 and never change.
type Index int

// Descriptor carries the per-type metadata a Registry keeps for one
// declared domain: its Kind, its reset value (written into a node's
// input before a forward pass, per spec §4.2 Node.reset), and its
// default value (used when a Value of this domain is needed before any
// data has flowed, e.g. a fresh bias node before first process()).
type Descriptor struct {
	Name    string
	Kind    Kind
	Reset   Value
	Default Value
}

// Registry is the indexed catalogue of value domains in use by a
// population. It is built once at population-construction time and
// shared read-only afterwards; nothing in neat/genetics mutates it past
// construction.
type Registry struct {
	descriptors []Descriptor
}

// NewRegistry returns an empty Registry. Callers populate it with
// Declare before building any Genome.
func NewRegistry() *Registry {
	return &Registry{}
}

// Declare registers a new value domain and returns its Index. The
// returned Index is stable for the lifetime of the Registry.
func (r *Registry) Declare(name string, kind Kind, reset, def Value) Index {
	reset.Kind = kind
	def.Kind = kind
	r.descriptors = append(r.descriptors, Descriptor{
		Name:    name,
		Kind:    kind,
		Reset:   reset,
		Default: def,
	})
	return Index(len(r.descriptors) - 1)
}

// Len returns the number of declared domains.
func (r *Registry) Len() int {
	return len(r.descriptors)
}

// Valid reports whether t names a declared domain.
func (r *Registry) Valid(t Index) bool {
	return t >= 0 && int(t) < len(r.descriptors)
}

// Describe returns the Descriptor for t, or an error if t is out of
// range (a configuration error per spec §7).
func (r *Registry) Describe(t Index) (Descriptor, error) {
	if !r.Valid(t) {
		return Descriptor{}, errors.Errorf("types: index %d out of range [0,%d)", t, len(r.descriptors))
	}
	return r.descriptors[t], nil
}

// Reset returns the reset value registered for t. Panics if t is
// out of range: this is only ever called with indexes already validated
// at genome-construction time, so an out-of-range index here indicates a
// bug in mutation, matching spec §7's forward-evaluator panic contract.
func (r *Registry) Reset(t Index) Value {
	return r.descriptors[t].Reset
}

// Default returns the default value registered for t.
func (r *Registry) Default(t Index) Value {
	return r.descriptors[t].Default
}

// Name returns the declared name of t, or "" if out of range.
func (r *Registry) Name(t Index) string {
	if !r.Valid(t) {
		return ""
	}
	return r.descriptors[t].Name
}

// Kind returns the Kind backing t.
func (r *Registry) Kind(t Index) Kind {
	return r.descriptors[t].Kind
}
