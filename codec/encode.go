package codec

import "math"

// Encode serializes v into a new, owned Buffer, prefixed with the format
// version tag. The returned Buffer satisfies the "MUST stringify to its
// raw contents" contract and can be passed directly as a store value.
func Encode(v Value) (*Buffer, error) {
	buf := NewBuffer()
	if err := buf.appendBytes(versionTag[:]); err != nil {
		return nil, err
	}
	enc := &encoder{buf: buf, refs: newEncodeRefs()}
	if err := enc.encodeValue(v); err != nil {
		return nil, err
	}
	return buf, nil
}

type encoder struct {
	buf  *Buffer
	refs *encodeRefs
}

// supported reports whether v is one of the values the codec knows how to
// encode. A nil Value (including a typed nil *Table) is the sentinel for
// "outside the abstract value universe" in this Go rendition: the
// interface is already closed to the five concrete types at compile time,
// so nil is the only runtime value that can model a host type the codec
// doesn't understand.
func supported(v Value) bool {
	if v == nil {
		return false
	}
	if t, ok := v.(*Table); ok && t == nil {
		return false
	}
	return true
}

func (e *encoder) encodeValue(v Value) error {
	if !supported(v) {
		return ErrUnsupportedType
	}
	switch val := v.(type) {
	case Bool:
		if val {
			return e.buf.appendByte(tagTrue)
		}
		return e.buf.appendByte(tagFalse)
	case Int:
		return e.encodeInt(val)
	case Float:
		return e.encodeFloat(val)
	case Str:
		return e.encodeStr(val)
	case *Table:
		return e.encodeTable(val)
	default:
		return ErrUnsupportedType
	}
}

func (e *encoder) encodeInt(v Int) error {
	if err := e.buf.appendByte(tagInt); err != nil {
		return err
	}
	var b [8]byte
	beOrder.PutUint64(b[:], uint64(int64(v)))
	return e.buf.appendBytes(b[:])
}

func (e *encoder) encodeFloat(v Float) error {
	if err := e.buf.appendByte(tagFloat); err != nil {
		return err
	}
	var b [8]byte
	beOrder.PutUint64(b[:], math.Float64bits(float64(v)))
	return e.buf.appendBytes(b[:])
}

func (e *encoder) encodeStr(v Str) error {
	s := []byte(v)
	if len(s) <= math.MaxUint8 {
		if err := e.buf.appendByte(tagStrShort); err != nil {
			return err
		}
		if err := e.buf.appendByte(byte(len(s))); err != nil {
			return err
		}
		return e.buf.appendBytes(s)
	}
	if uint64(len(s)) > math.MaxUint64 {
		return ErrEncodedValueTooLong
	}
	if err := e.buf.appendByte(tagStrLong); err != nil {
		return err
	}
	var b [8]byte
	beOrder.PutUint64(b[:], uint64(len(s)))
	if err := e.buf.appendBytes(b[:]); err != nil {
		return err
	}
	return e.buf.appendBytes(s)
}

// tableEntry is one key/value pair queued for emission while the
// array/record classification is computed.
type tableEntry struct {
	key, val Value
}

func (e *encoder) encodeTable(t *Table) error {
	if ord, ok := e.refs.lookup(t); ok {
		if err := e.buf.appendByte(tagTableBackref); err != nil {
			return err
		}
		var b [8]byte
		beOrder.PutUint64(b[:], uint64(ord))
		return e.buf.appendBytes(b[:])
	}
	if _, err := e.refs.assign(t); err != nil {
		return err
	}

	headerOffset := e.buf.pos
	// Reserve tag + 1-byte narr + 1-byte nrec; this is the common case
	// and is patched in place below if a wider size class is needed.
	if err := e.buf.appendByte(tagTable8); err != nil {
		return err
	}
	if err := e.buf.appendByte(0); err != nil {
		return err
	}
	if err := e.buf.appendByte(0); err != nil {
		return err
	}
	payloadOffset := e.buf.pos

	entries := collectEntries(t)

	var narr, nrec uint64
	for _, ent := range entries {
		if !supported(ent.key) || !supported(ent.val) {
			continue
		}
		if nrec == 0 {
			if idx, ok := ent.key.(Int); ok && int64(idx) == int64(narr)+1 {
				narr++
			} else {
				nrec++
			}
		} else {
			nrec++
		}
		if err := e.encodeValue(ent.key); err != nil {
			return err
		}
		if err := e.encodeValue(ent.val); err != nil {
			return err
		}
	}

	return e.buf.patchTableHeader(headerOffset, payloadOffset, narr, nrec)
}

// collectEntries builds the single ordered sequence of key/value pairs
// the classification algorithm runs over: array entries first (in index
// order), then record entries (in Go's unspecified map order). Iteration
// order only affects which entries land in the array vs. record part when
// a table has been built in an unusual shape; it never affects which
// entries are dropped.
func collectEntries(t *Table) []tableEntry {
	entries := make([]tableEntry, 0, len(t.Array)+len(t.Record))
	for i, v := range t.Array {
		entries = append(entries, tableEntry{key: Int(i + 1), val: v})
	}
	for k, v := range t.Record {
		entries = append(entries, tableEntry{key: k, val: v})
	}
	return entries
}

// patchTableHeader rewrites the reserved 3-byte table header in place once
// the true narr/nrec counts are known, widening the tag and header width
// (and shifting the already-written payload right) if either count
// doesn't fit in a uint8.
func (b *Buffer) patchTableHeader(headerOffset, payloadOffset int, narr, nrec uint64) error {
	switch {
	case narr <= math.MaxUint8 && nrec <= math.MaxUint8:
		b.putByteAt(headerOffset, tagTable8)
		b.putByteAt(headerOffset+1, byte(narr))
		b.putByteAt(headerOffset+2, byte(nrec))
		return nil
	case narr <= math.MaxUint16 && nrec <= math.MaxUint16:
		return b.widenTableHeader(headerOffset, payloadOffset, tagTable16, 4, func(off int) {
			b.putUint16At(off, uint16(narr))
			b.putUint16At(off+2, uint16(nrec))
		})
	case narr <= math.MaxUint32 && nrec <= math.MaxUint32:
		return b.widenTableHeader(headerOffset, payloadOffset, tagTable32, 8, func(off int) {
			b.putUint32At(off, uint32(narr))
			b.putUint32At(off+4, uint32(nrec))
		})
	default:
		return b.widenTableHeader(headerOffset, payloadOffset, tagTable64, 16, func(off int) {
			b.putUint64At(off, narr)
			b.putUint64At(off+8, nrec)
		})
	}
}

// widenTableHeader grows the reserved 2-byte size field to newHeaderSize
// bytes, shifting the payload already written after it, then writes the
// new tag and invokes write to fill in the widened size fields.
func (b *Buffer) widenTableHeader(headerOffset, payloadOffset int, tag byte, newHeaderSize int, write func(off int)) error {
	delta := newHeaderSize - 2
	if err := b.shiftRight(payloadOffset, delta); err != nil {
		return err
	}
	b.putByteAt(headerOffset, tag)
	write(headerOffset + 1)
	return nil
}
