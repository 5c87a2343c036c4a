package client

import (
	"context"

	"github.com/m-lab/memcache/binprot"
)

// Flush invalidates all items, after delay seconds (0 means immediately).
func (c *Client) Flush(ctx context.Context, delay uint32) error {
	extras := binprot.FlushExtras(delay)
	frame, err := c.roundTrip(ctx, binprot.OpFlush, 0, extras, nil, nil)
	if err != nil {
		return err
	}
	if frame.Header.Status != binprot.StatusOK {
		return newStatusError(binprot.OpFlush, frame.Header.Status)
	}
	return nil
}
