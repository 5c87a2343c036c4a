package binprot

import (
	"encoding/binary"
	"errors"
)

// HeaderLen is the fixed size of a binary protocol header, request or
// response.
const HeaderLen = 24

const (
	magicRequest  byte = 0x80
	magicResponse byte = 0x81
)

// Errors returned while framing or parsing a header.
var (
	ErrShortHeader  = errors.New("binprot: frame shorter than a header")
	ErrBadMagic     = errors.New("binprot: bad magic byte")
	ErrShortBody    = errors.New("binprot: frame shorter than its declared body length")
	ErrInconsistent = errors.New("binprot: extras+key length exceeds total body length")
)

// RequestHeader is the 24-byte header that precedes every request's extras,
// key, and value.
type RequestHeader struct {
	Opcode      Opcode
	KeyLen      uint16
	ExtrasLen   uint8
	VBucket     uint16
	TotalBody   uint32
	Opaque      uint32
	CAS         uint64
}

// Marshal renders h as its 24-byte wire form.
func (h RequestHeader) Marshal() []byte {
	b := make([]byte, HeaderLen)
	b[0] = magicRequest
	b[1] = byte(h.Opcode)
	binary.BigEndian.PutUint16(b[2:4], h.KeyLen)
	b[4] = h.ExtrasLen
	b[5] = 0 // data type: always raw bytes, per protocol convention
	binary.BigEndian.PutUint16(b[6:8], h.VBucket)
	binary.BigEndian.PutUint32(b[8:12], h.TotalBody)
	binary.BigEndian.PutUint32(b[12:16], h.Opaque)
	binary.BigEndian.PutUint64(b[16:24], h.CAS)
	return b
}

// ResponseHeader is the 24-byte header that precedes every response's
// extras, key, and value.
type ResponseHeader struct {
	Opcode    Opcode
	KeyLen    uint16
	ExtrasLen uint8
	Status    Status
	TotalBody uint32
	Opaque    uint32
	CAS       uint64
}

// RawResponseHeader is an unparsed 24-byte response header, analogous to a
// freshly read netlink header before its fields have been picked apart.
type RawResponseHeader []byte

// Parse decodes raw into a ResponseHeader. raw must be exactly HeaderLen
// bytes and begin with the response magic byte.
func (raw RawResponseHeader) Parse() (*ResponseHeader, error) {
	if len(raw) != HeaderLen {
		return nil, ErrShortHeader
	}
	if raw[0] != magicResponse {
		return nil, ErrBadMagic
	}
	h := &ResponseHeader{
		Opcode:    Opcode(raw[1]),
		KeyLen:    binary.BigEndian.Uint16(raw[2:4]),
		ExtrasLen: raw[4],
		Status:    Status(binary.BigEndian.Uint16(raw[6:8])),
		TotalBody: binary.BigEndian.Uint32(raw[8:12]),
		Opaque:    binary.BigEndian.Uint32(raw[12:16]),
		CAS:       binary.BigEndian.Uint64(raw[16:24]),
	}
	if uint32(h.ExtrasLen)+uint32(h.KeyLen) > h.TotalBody {
		return nil, ErrInconsistent
	}
	return h, nil
}
