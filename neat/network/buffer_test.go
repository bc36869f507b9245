package network

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aprosim/polyneat/neat/types"
)

func snap(v float64) []types.Value {
	return []types.Value{types.FromFloat64(v)}
}

func TestBuffer_ZeroCapacity_alwaysVacuous(t *testing.T) {
	b := NewBuffer(0)
	assert.Equal(t, 0, b.Capacity())
	b.Insert(snap(1.0))
	_, ok := b.At(0)
	assert.False(t, ok)
}

func TestBuffer_AtReturnsMostRecentFirst(t *testing.T) {
	b := NewBuffer(3)
	b.Insert(snap(1.0))
	b.Insert(snap(2.0))
	b.Insert(snap(3.0))

	latest, ok := b.At(0)
	assert.True(t, ok)
	assert.Equal(t, 3.0, latest[0].Float64())

	older, ok := b.At(1)
	assert.True(t, ok)
	assert.Equal(t, 2.0, older[0].Float64())

	oldest, ok := b.At(2)
	assert.True(t, ok)
	assert.Equal(t, 1.0, oldest[0].Float64())

	_, ok = b.At(3)
	assert.False(t, ok)
}

func TestBuffer_InsertOverwritesOldestOnceFull(t *testing.T) {
	b := NewBuffer(2)
	b.Insert(snap(1.0))
	b.Insert(snap(2.0))
	b.Insert(snap(3.0))

	latest, ok := b.At(0)
	assert.True(t, ok)
	assert.Equal(t, 3.0, latest[0].Float64())

	older, ok := b.At(1)
	assert.True(t, ok)
	assert.Equal(t, 2.0, older[0].Float64())

	_, ok = b.At(2)
	assert.False(t, ok)
}

func TestBuffer_Reset(t *testing.T) {
	b := NewBuffer(2)
	b.Insert(snap(1.0))
	b.Reset()
	_, ok := b.At(0)
	assert.False(t, ok)
}

func TestBuffer_Clone_isIndependent(t *testing.T) {
	b := NewBuffer(2)
	b.Insert(snap(1.0))

	cp := b.Clone()
	cp.Insert(snap(2.0))

	origLatest, ok := b.At(0)
	assert.True(t, ok)
	assert.Equal(t, 1.0, origLatest[0].Float64())

	cloneLatest, ok := cp.At(0)
	assert.True(t, ok)
	assert.Equal(t, 2.0, cloneLatest[0].Float64())
}

func TestBuffer_Clone_mutatingSlotDoesNotAliasOriginal(t *testing.T) {
	b := NewBuffer(1)
	b.Insert(snap(1.0))
	cp := b.Clone()
	cp.slots[cp.head][0] = types.FromFloat64(99.0)

	orig, _ := b.At(0)
	assert.Equal(t, 1.0, orig[0].Float64())
}
