package client

import (
	"context"
	"time"

	"github.com/m-lab/memcache/binprot"
	"github.com/m-lab/memcache/metrics"
)

// roundTrip sends one request frame and reads back its response frame. It
// is the skeleton every command builds on: ensure connected, send, receive,
// hand the caller a parsed Frame to interpret.
func (c *Client) roundTrip(ctx context.Context, op binprot.Opcode, cas uint64, extras, key, value []byte) (*binprot.Frame, error) {
	start := time.Now()
	frame, err := c.doRoundTrip(ctx, op, cas, extras, key, value)
	metrics.RequestDuration.WithLabelValues(op.String()).Observe(time.Since(start).Seconds())
	status := "error"
	if frame != nil {
		status = frame.Header.Status.String()
	}
	metrics.RequestCount.WithLabelValues(op.String(), status).Inc()
	return frame, err
}

func (c *Client) doRoundTrip(ctx context.Context, op binprot.Opcode, cas uint64, extras, key, value []byte) (*binprot.Frame, error) {
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}
	req := binprot.BuildRequest(op, c.nextOpaque(), cas, extras, key, value)
	if err := c.conn.Send(req); err != nil {
		c.onIOError()
		return nil, err
	}
	return c.recvFrame()
}

// recvFrame reads and parses one response frame. It is split out from
// roundTrip so that stats, whose single request provokes many response
// frames, can send once and call this in a loop.
func (c *Client) recvFrame() (*binprot.Frame, error) {
	hdr := make([]byte, binprot.HeaderLen)
	if err := c.conn.Recv(hdr); err != nil {
		c.onIOError()
		return nil, err
	}
	respHdr, err := binprot.RawResponseHeader(hdr).Parse()
	if err != nil {
		c.onProtocolError()
		return nil, ErrBadResponse
	}
	body := make([]byte, respHdr.TotalBody)
	if len(body) > 0 {
		if err := c.conn.Recv(body); err != nil {
			c.onIOError()
			return nil, err
		}
	}
	frame, err := binprot.ParseResponse(hdr, body)
	if err != nil {
		c.onProtocolError()
		return nil, err
	}
	return frame, nil
}
