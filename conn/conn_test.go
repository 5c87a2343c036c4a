package conn_test

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/m-lab/memcache/conn"
)

// listenLoopback starts a TCP listener on an OS-assigned loopback port and
// returns it alongside its host and port, split out for conn.New.
func listenLoopback(t *testing.T) (net.Listener, string, int) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().(*net.TCPAddr)
	return l, addr.IP.String(), addr.Port
}

func TestConnectAndEcho(t *testing.T) {
	l, host, port := listenLoopback(t)
	defer l.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		sc, err := l.Accept()
		if err != nil {
			return
		}
		defer sc.Close()
		buf := make([]byte, 5)
		if _, err := io.ReadFull(sc, buf); err != nil {
			return
		}
		sc.Write(buf)
	}()

	c := conn.New(host, port)
	if c.State() != conn.Disconnected {
		t.Fatalf("new Conn should start Disconnected, got %v", c.State())
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Connect(ctx, 2*time.Second); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()
	if c.State() != conn.Connected {
		t.Fatalf("expected Connected, got %v", c.State())
	}

	if err := c.Send([]byte("hello")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got := make([]byte, 5)
	if err := c.Recv(got); err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
	<-serverDone
}

func TestRecvUnexpectedEOFMarksDisconnected(t *testing.T) {
	l, host, port := listenLoopback(t)
	defer l.Close()

	go func() {
		sc, err := l.Accept()
		if err != nil {
			return
		}
		sc.Close() // close immediately, before sending anything
	}()

	c := conn.New(host, port)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Connect(ctx, 2*time.Second); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	got := make([]byte, 5)
	err := c.Recv(got)
	if err == nil {
		t.Fatal("expected an error reading from a closed peer")
	}
	if c.State() != conn.Disconnected {
		t.Fatalf("expected Disconnected after I/O failure, got %v", c.State())
	}
}

func TestEnsureConnectedAfterClose(t *testing.T) {
	l, host, port := listenLoopback(t)
	defer l.Close()
	go func() {
		sc, err := l.Accept()
		if err == nil {
			sc.Close()
		}
	}()

	c := conn.New(host, port)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.EnsureConnected(ctx, 2*time.Second); err != nil {
		t.Fatalf("EnsureConnected: %v", err)
	}
	c.Close()
	if err := c.EnsureConnected(ctx, 2*time.Second); err != conn.ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestConnectNoSuchHostFails(t *testing.T) {
	c := conn.New("memcache-test-invalid.invalid", 11211)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Connect(ctx, 2*time.Second); err == nil {
		t.Fatal("expected a resolution error for an invalid hostname")
	}
}
