package client

import (
	"context"

	"github.com/m-lab/memcache/binprot"
	"github.com/m-lab/memcache/codec"
	"github.com/m-lab/memcache/metrics"
)

// Get fetches key, along with the CAS token needed for a subsequent
// conditional Set. found is false on KEY_ENOENT (not an error); any other
// non-SUCCESS status fails with a domain error.
func (c *Client) Get(ctx context.Context, key string) (value codec.Value, cas uint64, found bool, err error) {
	if err := validateKey(key); err != nil {
		return nil, 0, false, err
	}
	frame, err := c.roundTrip(ctx, binprot.OpGet, 0, nil, []byte(key), nil)
	if err != nil {
		return nil, 0, false, err
	}
	switch frame.Header.Status {
	case binprot.StatusOK:
		v, err := c.decode(codec.WrapBytes(frame.Value))
		if err != nil {
			metrics.CodecErrorCount.WithLabelValues("decode").Inc()
			return nil, 0, false, err
		}
		return v, frame.Header.CAS, true, nil
	case binprot.StatusKeyNotFound:
		return nil, 0, false, nil
	default:
		return nil, 0, false, newStatusError(binprot.OpGet, frame.Header.Status)
	}
}
