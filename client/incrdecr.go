package client

import (
	"context"

	"github.com/m-lab/memcache/binprot"
)

// Inc increments key by delta, seeding it at initial if it doesn't yet
// exist. On DELTA_BADVAL (key exists but isn't numeric) found is false
// rather than an error.
func (c *Client) Inc(ctx context.Context, key string, delta, initial uint64, expiration uint32) (value uint64, found bool, err error) {
	return c.incrDecr(ctx, binprot.OpIncrement, key, delta, initial, expiration)
}

// Dec decrements key by delta, with the same seeding and DELTA_BADVAL
// behavior as Inc. A decrement that would go below zero saturates at zero,
// per the protocol.
func (c *Client) Dec(ctx context.Context, key string, delta, initial uint64, expiration uint32) (value uint64, found bool, err error) {
	return c.incrDecr(ctx, binprot.OpDecrement, key, delta, initial, expiration)
}

func (c *Client) incrDecr(ctx context.Context, op binprot.Opcode, key string, delta, initial uint64, expiration uint32) (uint64, bool, error) {
	if err := validateKey(key); err != nil {
		return 0, false, err
	}
	extras := binprot.IncrDecrExtras(delta, initial, expiration)
	frame, err := c.roundTrip(ctx, op, 0, extras, []byte(key), nil)
	if err != nil {
		return 0, false, err
	}
	switch frame.Header.Status {
	case binprot.StatusOK:
		v, err := binprot.DecodeIncrDecrValue(frame.Value)
		if err != nil {
			return 0, false, err
		}
		return v, true, nil
	case binprot.StatusNonNumericData:
		return 0, false, nil
	default:
		return 0, false, newStatusError(op, frame.Header.Status)
	}
}
