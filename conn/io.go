package conn

import (
	"errors"
	"io"

	"golang.org/x/sys/unix"

	"github.com/m-lab/memcache/metrics"
)

// ErrClosed is returned by Send/Recv when called on a Conn that isn't in
// the Connected state.
var ErrClosed = errors.New("conn: not connected")

// Send writes all of p to the connection, resuming across EINTR and
// short writes, with MSG_NOSIGNAL so a peer that has closed its end
// raises EPIPE instead of delivering SIGPIPE to the process.
func (c *Conn) Send(p []byte) error {
	if c.state != Connected {
		return ErrClosed
	}
	for len(p) > 0 {
		n, err := unix.Send(c.fd, p, unix.MSG_NOSIGNAL)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			c.fail()
			return err
		}
		p = p[n:]
	}
	return nil
}

// Recv reads exactly len(p) bytes into p, resuming across EINTR and short
// reads. An end-of-file before p is full is reported as io.ErrUnexpectedEOF.
func (c *Conn) Recv(p []byte) error {
	if c.state != Connected {
		return ErrClosed
	}
	total := 0
	for total < len(p) {
		n, err := unix.Read(c.fd, p[total:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			c.fail()
			return err
		}
		if n == 0 {
			c.fail()
			return io.ErrUnexpectedEOF
		}
		total += n
	}
	return nil
}

// fail transitions the connection to Disconnected after an I/O or protocol
// error, closing the underlying socket. A later operation will re-dial.
func (c *Conn) fail() {
	if c.state == Connected {
		unix.Close(c.fd)
		metrics.ReconnectCount.Inc()
		c.logger.Printf("memcache: %s:%d disconnected after I/O error", c.host, c.port)
	}
	c.fd = -1
	c.state = Disconnected
}

// Fail tears down the connection exactly as an I/O error would, even
// though the underlying Recv succeeded. Callers use this when a response
// fails to parse: the byte stream is desynced at that point, so the
// connection is no longer usable even though no syscall failed.
func (c *Conn) Fail() {
	c.fail()
}

// Close tears down the socket and marks the connection permanently Closed.
// Sending QUIT framing first, if desired, is the caller's job.
func (c *Conn) Close() error {
	if c.state == Connected {
		if err := unix.Close(c.fd); err != nil {
			return err
		}
	}
	c.fd = -1
	c.state = Closed
	return nil
}
