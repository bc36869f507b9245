package network

import "fmt"

// Connection is a directed, weighted edge between two nodes identified
// by their slot position in the owning genome's Nodes list (spec §3).
type Connection struct {
	// InnovId is the population-wide connection-innovation number.
	InnovId int64
	// InNode and OutNode are indexes into the owning genome's Nodes slice.
	InNode, OutNode int
	// InNodeRecu is the recurrency depth: 0 means same-step, k>0 means
	// "use InNode's output from k steps ago".
	InNodeRecu uint32
	Weight     float32
	Enabled    bool
}

// NewConnection builds an enabled Connection.
func NewConnection(innovId int64, in, out int, recu uint32, weight float32) *Connection {
	return &Connection{
		InnovId:    innovId,
		InNode:     in,
		OutNode:    out,
		InNodeRecu: recu,
		Weight:     weight,
		Enabled:    true,
	}
}

// IsRecurrent reports whether this connection reaches into history.
func (c *Connection) IsRecurrent() bool {
	return c.InNodeRecu > 0
}

// Clone returns an independent copy of this connection.
func (c *Connection) Clone() *Connection {
	cp := *c
	return &cp
}

func (c *Connection) String() string {
	state := "enabled"
	if !c.Enabled {
		state = "disabled"
	}
	return fmt.Sprintf("Connection{innov=%d %d->%d recu=%d w=%g %s}",
		c.InnovId, c.InNode, c.OutNode, c.InNodeRecu, c.Weight, state)
}
