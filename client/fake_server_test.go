package client_test

import (
	"encoding/binary"
	"net"
	"sync"
	"testing"

	"github.com/m-lab/memcache/binprot"
)

// fakeServer is a tiny in-process stand-in for memcached's binary protocol,
// enough to exercise client against a real TCP round-trip rather than a
// mock of the conn layer. It keeps one item store and a monotonically
// increasing CAS counter, matching just enough server behavior for the
// client package's tests.
type fakeServer struct {
	t    *testing.T
	l    net.Listener
	host string
	port int

	mu      sync.Mutex
	values  map[string][]byte
	cas     map[string]uint64
	nextCAS uint64
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().(*net.TCPAddr)
	s := &fakeServer{
		t:       t,
		l:       l,
		host:    addr.IP.String(),
		port:    addr.Port,
		values:  make(map[string][]byte),
		cas:     make(map[string]uint64),
		nextCAS: 1,
	}
	go s.serve()
	t.Cleanup(func() { l.Close() })
	return s
}

func (s *fakeServer) serve() {
	for {
		conn, err := s.l.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *fakeServer) handle(conn net.Conn) {
	defer conn.Close()
	for {
		hdr := make([]byte, binprot.HeaderLen)
		if _, err := readFull(conn, hdr); err != nil {
			return
		}
		reqHdr, err := parseRequestHeader(hdr)
		if err != nil {
			return
		}
		body := make([]byte, reqHdr.totalBody)
		if len(body) > 0 {
			if _, err := readFull(conn, body); err != nil {
				return
			}
		}
		extras := body[:reqHdr.extrasLen]
		key := body[reqHdr.extrasLen : uint32(reqHdr.extrasLen)+uint32(reqHdr.keyLen)]
		value := body[uint32(reqHdr.extrasLen)+uint32(reqHdr.keyLen):]

		if reqHdr.opcode == binprot.OpQuitQ {
			return
		}

		if reqHdr.opcode == binprot.OpStat {
			if err := s.sendStats(conn, reqHdr.opaque); err != nil {
				return
			}
			continue
		}

		resp := s.apply(reqHdr, extras, key, value)
		if resp == nil {
			continue // quiet opcode, no response
		}
		if _, err := conn.Write(resp); err != nil {
			return
		}
	}
}

type requestHeader struct {
	opcode    binprot.Opcode
	keyLen    uint16
	extrasLen uint8
	totalBody uint32
	opaque    uint32
	cas       uint64
}

func parseRequestHeader(b []byte) (*requestHeader, error) {
	return &requestHeader{
		opcode:    binprot.Opcode(b[1]),
		keyLen:    binary.BigEndian.Uint16(b[2:4]),
		extrasLen: b[4],
		totalBody: binary.BigEndian.Uint32(b[8:12]),
		opaque:    binary.BigEndian.Uint32(b[12:16]),
		cas:       binary.BigEndian.Uint64(b[16:24]),
	}, nil
}

func buildResponse(op binprot.Opcode, opaque uint32, status binprot.Status, cas uint64, extras, key, value []byte) []byte {
	b := make([]byte, binprot.HeaderLen)
	b[0] = 0x81
	b[1] = byte(op)
	binary.BigEndian.PutUint16(b[2:4], uint16(len(key)))
	b[4] = byte(len(extras))
	binary.BigEndian.PutUint16(b[6:8], uint16(status))
	binary.BigEndian.PutUint32(b[8:12], uint32(len(extras)+len(key)+len(value)))
	binary.BigEndian.PutUint32(b[12:16], opaque)
	binary.BigEndian.PutUint64(b[16:24], cas)
	b = append(b, extras...)
	b = append(b, key...)
	b = append(b, value...)
	return b
}

func (s *fakeServer) apply(h *requestHeader, extras, key, value []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch h.opcode {
	case binprot.OpGet:
		v, ok := s.values[string(key)]
		if !ok {
			return buildResponse(h.opcode, h.opaque, binprot.StatusKeyNotFound, 0, nil, nil, nil)
		}
		return buildResponse(h.opcode, h.opaque, binprot.StatusOK, s.cas[string(key)], nil, nil, v)

	case binprot.OpSet, binprot.OpAdd, binprot.OpReplace:
		_, exists := s.values[string(key)]
		if h.opcode == binprot.OpAdd && exists {
			return buildResponse(h.opcode, h.opaque, binprot.StatusKeyExists, 0, nil, nil, nil)
		}
		if h.opcode == binprot.OpReplace && !exists {
			return buildResponse(h.opcode, h.opaque, binprot.StatusKeyNotFound, 0, nil, nil, nil)
		}
		if h.cas != 0 && s.cas[string(key)] != h.cas {
			return buildResponse(h.opcode, h.opaque, binprot.StatusKeyExists, 0, nil, nil, nil)
		}
		s.values[string(key)] = append([]byte(nil), value...)
		s.nextCAS++
		s.cas[string(key)] = s.nextCAS
		return buildResponse(h.opcode, h.opaque, binprot.StatusOK, s.nextCAS, nil, nil, nil)

	case binprot.OpDelete:
		if _, ok := s.values[string(key)]; !ok {
			return buildResponse(h.opcode, h.opaque, binprot.StatusKeyNotFound, 0, nil, nil, nil)
		}
		delete(s.values, string(key))
		delete(s.cas, string(key))
		return buildResponse(h.opcode, h.opaque, binprot.StatusOK, 0, nil, nil, nil)

	case binprot.OpIncrement, binprot.OpDecrement:
		delta := binary.BigEndian.Uint64(extras[0:8])
		initial := binary.BigEndian.Uint64(extras[8:16])
		v, ok := s.values[string(key)]
		var cur uint64
		if !ok {
			cur = initial
		} else {
			if len(v) != 8 {
				return buildResponse(h.opcode, h.opaque, binprot.StatusNonNumericData, 0, nil, nil, nil)
			}
			cur = binary.BigEndian.Uint64(v)
			if h.opcode == binprot.OpIncrement {
				cur += delta
			} else if cur > delta {
				cur -= delta
			} else {
				cur = 0
			}
		}
		out := make([]byte, 8)
		binary.BigEndian.PutUint64(out, cur)
		s.values[string(key)] = out
		s.nextCAS++
		s.cas[string(key)] = s.nextCAS
		return buildResponse(h.opcode, h.opaque, binprot.StatusOK, s.nextCAS, nil, nil, out)

	case binprot.OpFlush:
		s.values = make(map[string][]byte)
		s.cas = make(map[string]uint64)
		return buildResponse(h.opcode, h.opaque, binprot.StatusOK, 0, nil, nil, nil)

	default:
		return buildResponse(h.opcode, h.opaque, binprot.StatusUnknownCommand, 0, nil, nil, nil)
	}
}

// sendStats writes a small, fixed set of stat name/value frames followed
// by the empty-key terminator frame, mirroring a real server's STAT reply.
func (s *fakeServer) sendStats(conn net.Conn, opaque uint32) error {
	rows := map[string]string{
		"pid":              "1",
		"curr_connections": "1",
	}
	for name, value := range rows {
		resp := buildResponse(binprot.OpStat, opaque, binprot.StatusOK, 0, nil, []byte(name), []byte(value))
		if _, err := conn.Write(resp); err != nil {
			return err
		}
	}
	terminator := buildResponse(binprot.OpStat, opaque, binprot.StatusOK, 0, nil, nil, nil)
	_, err := conn.Write(terminator)
	return err
}

func readFull(conn net.Conn, p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := conn.Read(p[total:])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
