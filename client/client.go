// Package client implements the memcached binary-protocol operations: get,
// set/add/replace, increment/decrement, flush, stats, and close, built on
// top of conn's connection lifecycle and codec's value serialization.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/m-lab/memcache/codec"
	"github.com/m-lab/memcache/conn"
)

// ErrBadConfig is returned by Open when a configuration option is invalid.
var ErrBadConfig = errors.New("client: bad configuration")

// Encoder turns a value into its wire buffer; Decoder is its inverse. The
// defaults are codec.Encode and codec.Decode, kept as fields so callers can
// supply an alternate, version-compatible codec.
type Encoder func(codec.Value) (*codec.Buffer, error)
type Decoder func(*codec.Buffer) (codec.Value, error)

// Client is a single, non-pipelined connection to one memcached server. It
// is not safe for concurrent use: a Client is a synchronous resource with
// no internal locking, matching the protocol's strict one-request-at-a-time
// ordering.
type Client struct {
	conn      *conn.Conn
	timeout   time.Duration
	reconnect bool
	encode    Encoder
	decode    Decoder
	logger    *log.Logger
	opaque    uint32
	closed    bool
}

// Option configures a Client at Open time.
type Option func(*config)

type config struct {
	host      string
	port      int
	timeout   time.Duration
	reconnect bool
	encode    Encoder
	decode    Decoder
	logger    *log.Logger
}

// WithHost sets the server's DNS name or literal IP. Default "localhost".
func WithHost(host string) Option {
	return func(c *config) { c.host = host }
}

// WithPort sets the server's TCP port. Default 11211.
func WithPort(port int) Option {
	return func(c *config) { c.port = port }
}

// WithTimeout sets the connect timeout. Default 1000ms.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithReconnect controls whether an I/O error returns the client to
// disconnected (true, eligible to redial on the next call) or closed
// (false, permanently unusable). Default true.
func WithReconnect(reconnect bool) Option {
	return func(c *config) { c.reconnect = reconnect }
}

// WithEncoder overrides the default value encoder.
func WithEncoder(enc Encoder) Option {
	return func(c *config) { c.encode = enc }
}

// WithDecoder overrides the default value decoder.
func WithDecoder(dec Decoder) Option {
	return func(c *config) { c.decode = dec }
}

// WithLogger directs low-volume diagnostic lines (reconnect transitions)
// to l instead of discarding them. The client never logs per-request
// traffic; logging is the embedding application's concern by default.
func WithLogger(l *log.Logger) Option {
	return func(c *config) { c.logger = l }
}

// Open constructs a Client. No network I/O happens until the first command
// is issued; the client starts in the disconnected state.
func Open(opts ...Option) (*Client, error) {
	cfg := &config{
		host:      "localhost",
		port:      11211,
		timeout:   1000 * time.Millisecond,
		reconnect: true,
		encode:    codec.Encode,
		decode:    codec.Decode,
		logger:    log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be positive", ErrBadConfig)
	}
	if cfg.port <= 0 || cfg.port > 65535 {
		return nil, fmt.Errorf("%w: port out of range", ErrBadConfig)
	}
	return &Client{
		conn:      conn.New(cfg.host, cfg.port, conn.WithLogger(cfg.logger)),
		timeout:   cfg.timeout,
		reconnect: cfg.reconnect,
		encode:    cfg.encode,
		decode:    cfg.decode,
		logger:    cfg.logger,
	}, nil
}

func (c *Client) String() string {
	if c.closed {
		return fmt.Sprintf("<Client> [closed]: %s", c.conn)
	}
	switch c.conn.State() {
	case conn.Connected:
		return fmt.Sprintf("<Client> [connected]: %s", c.conn)
	default:
		return fmt.Sprintf("<Client> [disconnected]: %s", c.conn)
	}
}

// ensureConnected dials if necessary, honoring the client's lazy-connect
// and reconnect-on-error contract.
func (c *Client) ensureConnected(ctx context.Context) error {
	if c.closed {
		return ErrClosed
	}
	return c.conn.EnsureConnected(ctx, c.timeout)
}

// onIOError applies the reconnect policy after a failed send/recv: either
// the connection is left disconnected (eligible to redial later) or the
// client is marked permanently closed, per WithReconnect. conn itself
// already transitioned to Disconnected as part of the failed Send/Recv.
func (c *Client) onIOError() {
	if !c.reconnect {
		c.logger.Printf("memcache: closing %s after I/O error (reconnect disabled)", c.conn)
		c.closed = true
		c.conn.Close()
		return
	}
	c.logger.Printf("memcache: %s disconnected after I/O error, will redial lazily", c.conn)
}

// onProtocolError applies the reconnect policy after a response that fails
// to parse. Unlike a failed Send/Recv, conn's Recv succeeded here, so conn
// is still Connected even though the byte stream is now desynced: the
// connection must be explicitly failed before the reconnect policy is
// applied, or a reconnect-enabled client would keep reading garbage off
// the stale stream offset on its next call.
func (c *Client) onProtocolError() {
	c.conn.Fail()
	c.onIOError()
}

// nextOpaque returns a monotonically increasing opaque value to stamp on
// outgoing requests. The protocol does not require callers to check it
// back (there is no pipelining here to disambiguate), but carrying a fresh
// value on every request matches the wire format's intent.
func (c *Client) nextOpaque() uint32 {
	c.opaque++
	return c.opaque
}
