package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConnection_startsEnabled(t *testing.T) {
	c := NewConnection(3, 0, 1, 0, 1.5)
	assert.True(t, c.Enabled)
	assert.Equal(t, int64(3), c.InnovId)
	assert.Equal(t, 0, c.InNode)
	assert.Equal(t, 1, c.OutNode)
	assert.Equal(t, float32(1.5), c.Weight)
}

func TestConnection_IsRecurrent(t *testing.T) {
	assert.False(t, NewConnection(0, 0, 1, 0, 1.0).IsRecurrent())
	assert.True(t, NewConnection(0, 0, 1, 2, 1.0).IsRecurrent())
}

func TestConnection_Clone_independentCopy(t *testing.T) {
	c := NewConnection(0, 0, 1, 0, 1.0)
	cp := c.Clone()
	cp.Weight = 9.0
	cp.Enabled = false
	assert.Equal(t, float32(1.0), c.Weight)
	assert.True(t, c.Enabled)
}

func TestConnection_String(t *testing.T) {
	c := NewConnection(4, 0, 1, 2, 1.0)
	assert.Contains(t, c.String(), "innov=4")
	assert.Contains(t, c.String(), "enabled")
	c.Enabled = false
	assert.Contains(t, c.String(), "disabled")
}
