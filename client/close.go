package client

// Close is idempotent: it transitions the client to permanently closed,
// best-effort notifies the server with a quiet quit (errors from quit are
// swallowed, matching the fire-and-forget semantics of QUITQ), and closes
// the underlying socket. A closed client rejects every operation except
// String.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.quit()
	c.closed = true
	return c.conn.Close()
}
