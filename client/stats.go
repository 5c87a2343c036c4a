package client

import (
	"context"
	"fmt"

	"github.com/m-lab/memcache/binprot"
)

// Stats requests the server's statistics, or the statistics for one
// sub-group if key is non-empty. The server answers with one frame per
// stat, each carrying a non-empty name as its key and the value as a
// string; the stream ends at a frame with an empty key. A zero-key frame
// that still carries a value, or any non-SUCCESS status along the way, is
// a protocol error.
func (c *Client) Stats(ctx context.Context, key string) (map[string]string, error) {
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}
	var keyBytes []byte
	if key != "" {
		keyBytes = []byte(key)
	}
	req := binprot.BuildRequest(binprot.OpStat, c.nextOpaque(), 0, nil, keyBytes, nil)
	if err := c.conn.Send(req); err != nil {
		c.onIOError()
		return nil, err
	}

	out := make(map[string]string)
	for {
		frame, err := c.recvFrame()
		if err != nil {
			return nil, err
		}
		if frame.Header.Status != binprot.StatusOK {
			c.onProtocolError()
			return nil, fmt.Errorf("%w: %s", ErrProtocol, frame.Header.Status)
		}
		if len(frame.Key) == 0 {
			if len(frame.Value) != 0 {
				c.onProtocolError()
				return nil, ErrProtocol
			}
			return out, nil
		}
		out[string(frame.Key)] = string(frame.Value)
	}
}
