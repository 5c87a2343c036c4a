package conn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"time"

	"golang.org/x/sys/unix"

	"github.com/m-lab/memcache/metrics"
)

// Errors returned while establishing a connection.
var (
	ErrNoAddresses = errors.New("conn: host resolved to no addresses")
	ErrTimeout     = errors.New("conn: connect timed out")
)

// Conn is a connected, non-blocking-dialed TCP socket. Once Connect
// succeeds, all further I/O on it is ordinary blocking Read/Write; the
// non-blocking dance only applies to establishing the connection within a
// bounded timeout.
type Conn struct {
	fd     int
	state  State
	host   string
	port   int
	logger *log.Logger
}

// Option configures a Conn at construction time.
type Option func(*Conn)

// WithLogger directs low-volume dial/disconnect diagnostics to l instead of
// discarding them. Typically a caller passes the same logger it gave to the
// client package, so conn's and client's diagnostics interleave coherently.
func WithLogger(l *log.Logger) Option {
	return func(c *Conn) { c.logger = l }
}

// New returns an unconnected Conn for host:port. Dialing is deferred to the
// first call to Connect, matching the client's lazy-connect contract.
func New(host string, port int, opts ...Option) *Conn {
	c := &Conn{fd: -1, state: Disconnected, host: host, port: port, logger: log.New(io.Discard, "", 0)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Conn) String() string {
	id := fmt.Sprintf("%s:%d", c.host, c.port)
	switch c.state {
	case Connected:
		return fmt.Sprintf("<Conn> [connected]: %s", id)
	case Closed:
		return fmt.Sprintf("<Conn> [closed]: %s", id)
	default:
		return fmt.Sprintf("<Conn> [disconnected]: %s", id)
	}
}

// State reports the connection's current lifecycle state.
func (c *Conn) State() State {
	return c.state
}

// EnsureConnected dials if the connection is Disconnected, and is a no-op
// if it is already Connected. It returns ErrClosed if the connection has
// been explicitly Closed; a closed connection never reconnects.
func (c *Conn) EnsureConnected(ctx context.Context, timeout time.Duration) error {
	switch c.state {
	case Connected:
		return nil
	case Closed:
		return ErrClosed
	default:
		return c.Connect(ctx, timeout)
	}
}

// Connect resolves c's host, then dials each candidate address in turn
// using a non-blocking connect bounded by timeout, until one succeeds or
// every candidate is exhausted.
func (c *Conn) Connect(ctx context.Context, timeout time.Duration) error {
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, c.host)
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		return ErrNoAddresses
	}

	deadline := time.Now().Add(timeout)
	var lastErr error
	for _, addr := range addrs {
		fd, err := dialOne(addr.IP, c.port, deadline)
		if err != nil {
			lastErr = err
			continue
		}
		c.fd = fd
		c.state = Connected
		metrics.DialCount.WithLabelValues("ok").Inc()
		return nil
	}
	metrics.DialCount.WithLabelValues("failed").Inc()
	c.logger.Printf("memcache: connect to %s:%d failed: %v", c.host, c.port, lastErr)
	return lastErr
}

// dialOne attempts a single non-blocking connect to ip:port, returning the
// connected, blocking-mode file descriptor on success.
func dialOne(ip net.IP, port int, deadline time.Time) (int, error) {
	domain := unix.AF_INET
	var sa unix.Sockaddr
	if ip4 := ip.To4(); ip4 != nil {
		var addr [4]byte
		copy(addr[:], ip4)
		sa = &unix.SockaddrInet4{Port: port, Addr: addr}
	} else {
		domain = unix.AF_INET6
		var addr [16]byte
		copy(addr[:], ip.To16())
		sa = &unix.SockaddrInet6{Port: port, Addr: addr}
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return -1, err
	}
	closeOnErr := func(err error) (int, error) {
		unix.Close(fd)
		return -1, err
	}

	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
		return closeOnErr(err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return closeOnErr(err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return closeOnErr(err)
	}

	err = unix.Connect(fd, sa)
	for err == unix.EINTR {
		err = unix.Connect(fd, sa)
	}
	if err != nil && err != unix.EINPROGRESS {
		return closeOnErr(err)
	}
	if err == unix.EINPROGRESS {
		if err := waitWritable(fd, deadline); err != nil {
			return closeOnErr(err)
		}
		serr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
		if err != nil {
			return closeOnErr(err)
		}
		if serr != 0 {
			return closeOnErr(unix.Errno(serr))
		}
	}

	if err := unix.SetNonblock(fd, false); err != nil {
		return closeOnErr(err)
	}
	return fd, nil
}

// waitWritable blocks, resuming across EINTR, until fd is writable (meaning
// the asynchronous connect has resolved, one way or the other) or deadline
// passes.
func waitWritable(fd int, deadline time.Time) error {
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ErrTimeout
		}
		tv := unix.NsecToTimeval(remaining.Nanoseconds())
		wfds := &unix.FdSet{}
		fdSet(wfds, fd)
		n, err := unix.Select(fd+1, nil, wfds, nil, &tv)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrTimeout
		}
		return nil
	}
}

func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}
