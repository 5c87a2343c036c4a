package client

import (
	"context"

	"github.com/m-lab/memcache/binprot"
	"github.com/m-lab/memcache/codec"
	"github.com/m-lab/memcache/metrics"
)

// Set stores key=value, creating or overwriting unconditionally (subject
// to cas). If value is nil the command is rewritten to Delete with the
// same cas semantics. On success ok is true and newCas is the server's
// fresh CAS; KEY_ENOENT and KEY_EEXISTS report ok=false rather than an
// error.
func (c *Client) Set(ctx context.Context, key string, value codec.Value, expiration uint32, cas uint64) (ok bool, newCas uint64, err error) {
	return c.store(ctx, binprot.OpSet, key, value, expiration, cas)
}

// Add stores key=value only if key does not already exist. A nil value is
// rejected with ErrValueRequired.
func (c *Client) Add(ctx context.Context, key string, value codec.Value, expiration uint32, cas uint64) (ok bool, newCas uint64, err error) {
	return c.store(ctx, binprot.OpAdd, key, value, expiration, cas)
}

// Replace stores key=value only if key already exists. A nil value is
// rejected with ErrValueRequired.
func (c *Client) Replace(ctx context.Context, key string, value codec.Value, expiration uint32, cas uint64) (ok bool, newCas uint64, err error) {
	return c.store(ctx, binprot.OpReplace, key, value, expiration, cas)
}

func (c *Client) store(ctx context.Context, op binprot.Opcode, key string, value codec.Value, expiration uint32, cas uint64) (bool, uint64, error) {
	if err := validateKey(key); err != nil {
		return false, 0, err
	}
	if value == nil {
		if op != binprot.OpSet {
			return false, 0, ErrValueRequired
		}
		return c.delete(ctx, key, cas)
	}

	buf, err := c.encode(value)
	if err != nil {
		metrics.CodecErrorCount.WithLabelValues("encode").Inc()
		return false, 0, err
	}
	metrics.EncodedValueSize.Observe(float64(buf.Len()))
	extras := binprot.SetExtras(0, expiration)
	frame, err := c.roundTrip(ctx, op, cas, extras, []byte(key), buf.Bytes())
	if err != nil {
		return false, 0, err
	}
	switch frame.Header.Status {
	case binprot.StatusOK:
		return true, frame.Header.CAS, nil
	case binprot.StatusKeyNotFound, binprot.StatusKeyExists:
		return false, 0, nil
	default:
		return false, 0, newStatusError(op, frame.Header.Status)
	}
}

func (c *Client) delete(ctx context.Context, key string, cas uint64) (bool, uint64, error) {
	frame, err := c.roundTrip(ctx, binprot.OpDelete, cas, nil, []byte(key), nil)
	if err != nil {
		return false, 0, err
	}
	switch frame.Header.Status {
	case binprot.StatusOK:
		return true, frame.Header.CAS, nil
	case binprot.StatusKeyNotFound, binprot.StatusKeyExists:
		return false, 0, nil
	default:
		return false, 0, newStatusError(binprot.OpDelete, frame.Header.Status)
	}
}
