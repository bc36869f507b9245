package network

import "github.com/aprosim/polyneat/neat/types"

// Buffer is a fixed-capacity ring of past whole-genome node-output
// snapshots, used to resolve recurrent edges (spec §3, §4.5). Capacity
// is the maximum recurrency depth in use by any enabled edge (I6).
type Buffer struct {
	capacity int
	slots    [][]types.Value
	// head is the index of the most recently inserted snapshot.
	head int
	size int
}

// NewBuffer returns a Buffer able to hold capacity snapshots. A
// capacity of 0 is legal: every At lookup then reports underflow,
// matching spec's boundary property "recMax = 0 => all recurrent
// history lookups are vacuous".
func NewBuffer(capacity int) *Buffer {
	b := &Buffer{capacity: capacity}
	if capacity > 0 {
		b.slots = make([][]types.Value, capacity)
	}
	b.head = -1
	return b
}

// Capacity returns the number of snapshots this buffer can hold.
func (b *Buffer) Capacity() int {
	return b.capacity
}

// Insert records a new snapshot at the head of the ring, overwriting
// the oldest entry once the buffer is full.
func (b *Buffer) Insert(snapshot []types.Value) {
	if b.capacity == 0 {
		return
	}
	b.head = (b.head + 1) % b.capacity
	b.slots[b.head] = snapshot
	if b.size < b.capacity {
		b.size++
	}
}

// At returns the k-th most recent snapshot (k=0 is the latest). ok is
// false if fewer than k+1 snapshots have been inserted yet, meaning the
// recurrent history is still warming up (spec §4.5.c.i).
func (b *Buffer) At(k int) (snapshot []types.Value, ok bool) {
	if k < 0 || k >= b.size || b.capacity == 0 {
		return nil, false
	}
	idx := ((b.head-k)%b.capacity + b.capacity) % b.capacity
	return b.slots[idx], true
}

// Reset empties the buffer without changing its capacity, used by
// Population.ResetMemory between rollouts (spec §6).
func (b *Buffer) Reset() {
	for i := range b.slots {
		b.slots[i] = nil
	}
	b.head = -1
	b.size = 0
}

// Clone returns an independent Buffer with the same capacity and
// contents, used to give each parallel evaluation of a genome its own
// private history (spec §5).
func (b *Buffer) Clone() *Buffer {
	cp := &Buffer{capacity: b.capacity, head: b.head, size: b.size}
	if b.capacity > 0 {
		cp.slots = make([][]types.Value, b.capacity)
		for i, s := range b.slots {
			if s == nil {
				continue
			}
			cs := make([]types.Value, len(s))
			copy(cs, s)
			cp.slots[i] = cs
		}
	}
	return cp
}
