package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_DeclareAssignsStableIndexes(t *testing.T) {
	r := NewRegistry()
	f := r.Declare("float", KindFloat64, FromFloat64(0), FromFloat64(1))
	i := r.Declare("int", KindInt64, FromInt64(0), FromInt64(1))

	assert.Equal(t, Index(0), f)
	assert.Equal(t, Index(1), i)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_DeclareForcesKindOntoResetAndDefault(t *testing.T) {
	r := NewRegistry()
	// Passing mismatched Kind values in reset/def must not leak through:
	// Declare stamps both with the declared Kind.
	idx := r.Declare("float", KindFloat64, Value{Kind: KindInt64, I: 5}, Value{Kind: KindInt64, I: 9})
	assert.Equal(t, KindFloat64, r.Reset(idx).Kind)
	assert.Equal(t, KindFloat64, r.Default(idx).Kind)
}

func TestRegistry_Valid(t *testing.T) {
	r := NewRegistry()
	idx := r.Declare("float", KindFloat64, FromFloat64(0), FromFloat64(0))
	assert.True(t, r.Valid(idx))
	assert.False(t, r.Valid(Index(-1)))
	assert.False(t, r.Valid(Index(1)))
}

func TestRegistry_Describe(t *testing.T) {
	r := NewRegistry()
	idx := r.Declare("float", KindFloat64, FromFloat64(0), FromFloat64(2))
	d, err := r.Describe(idx)
	require.NoError(t, err)
	assert.Equal(t, "float", d.Name)
	assert.Equal(t, KindFloat64, d.Kind)
	assert.Equal(t, 2.0, d.Default.Float64())

	_, err = r.Describe(Index(5))
	assert.Error(t, err)
}

func TestRegistry_ResetAndDefault(t *testing.T) {
	r := NewRegistry()
	idx := r.Declare("int", KindInt64, FromInt64(3), FromInt64(4))
	assert.Equal(t, int64(3), r.Reset(idx).Int64())
	assert.Equal(t, int64(4), r.Default(idx).Int64())
}

func TestRegistry_NameAndKind(t *testing.T) {
	r := NewRegistry()
	idx := r.Declare("int", KindInt64, FromInt64(0), FromInt64(0))
	assert.Equal(t, "int", r.Name(idx))
	assert.Equal(t, "", r.Name(Index(9)))
	assert.Equal(t, KindInt64, r.Kind(idx))
}
