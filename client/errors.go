package client

import (
	"errors"
	"fmt"

	"github.com/m-lab/memcache/binprot"
)

// Sentinel errors for the argument, I/O, and protocol error kinds. Server
// status errors are constructed by newStatusError, wrapping ErrServer.
var (
	ErrClosed        = errors.New("client: closed")
	ErrBadKeyLength  = errors.New("client: key length out of range")
	ErrBadArgument   = errors.New("client: argument out of range")
	ErrValueRequired = errors.New("client: value required")
	ErrBadResponse   = errors.New("client: bad response magic")
	ErrProtocol      = errors.New("client: unexpected frame shape")
	ErrServer        = errors.New("client: server error")
)

// statusError reports a non-SUCCESS response status that isn't a
// domain-valid outcome for the operation that produced it.
type statusError struct {
	op     binprot.Opcode
	status binprot.Status
}

func (e *statusError) Error() string {
	return fmt.Sprintf("client: %s: %s", e.op, e.status)
}

func (e *statusError) Unwrap() error {
	return ErrServer
}

func newStatusError(op binprot.Opcode, status binprot.Status) error {
	return &statusError{op: op, status: status}
}

func validateKey(key string) error {
	if len(key) < 1 || len(key) > 65535 {
		return ErrBadKeyLength
	}
	return nil
}
