package client

import (
	"github.com/m-lab/memcache/binprot"
	"github.com/m-lab/memcache/conn"
)

// quit sends a quiet quit frame (QUITQ), which the protocol defines to
// produce no response. It is used internally by Close and is not part of
// the public surface: a caller has no use for a one-way notification that
// nothing acknowledges.
func (c *Client) quit() error {
	if c.conn.State() != conn.Connected {
		return nil
	}
	req := binprot.BuildRequest(binprot.OpQuitQ, c.nextOpaque(), 0, nil, nil, nil)
	return c.conn.Send(req)
}
