package codec

import "bytes"

// Decode reads one version-tagged value from buf. The caller must have
// consumed no input from buf yet; on success, buf's cursor sits exactly
// at the end of the decoded value, and any remaining bytes are reported
// as ErrExtraData — per the specification, a decode call owns the whole
// buffer.
func Decode(buf *Buffer) (Value, error) {
	tag, err := buf.readBytes(len(versionTag))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(tag, versionTag[:]) {
		return nil, ErrBadVersion
	}
	refs := &decodeRefs{}
	v, err := decodeValue(buf, refs)
	if err != nil {
		return nil, err
	}
	if buf.remaining() != 0 {
		return nil, ErrExtraData
	}
	return v, nil
}

// DecodeBytes wraps data as a read-only Buffer and decodes it. It is the
// convenience entry point for callers holding a plain []byte rather than
// an owned Buffer (e.g. a value just received from the wire).
func DecodeBytes(data []byte) (Value, error) {
	return Decode(WrapBytes(data))
}

func decodeValue(buf *Buffer, refs *decodeRefs) (Value, error) {
	tag, err := buf.readByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagFalse:
		return Bool(false), nil
	case tagTrue:
		return Bool(true), nil
	case tagFloat:
		return decodeFloat(buf)
	case tagInt:
		return decodeInt(buf)
	case tagStrShort:
		return decodeStr(buf, 1)
	case tagStrLong:
		return decodeStr(buf, 8)
	case tagTable8:
		return decodeTable(buf, refs, 1)
	case tagTable16:
		return decodeTable(buf, refs, 2)
	case tagTable32:
		return decodeTable(buf, refs, 4)
	case tagTable64:
		return decodeTable(buf, refs, 8)
	case tagTableBackref:
		return decodeTableBackref(buf, refs)
	default:
		return nil, ErrUnsupportedType
	}
}

func decodeInt(buf *Buffer) (Value, error) {
	b, err := buf.readBytes(8)
	if err != nil {
		return nil, err
	}
	return Int(int64(beOrder.Uint64(b))), nil
}

func decodeFloat(buf *Buffer) (Value, error) {
	b, err := buf.readBytes(8)
	if err != nil {
		return nil, err
	}
	return Float(bitsToFloat(beOrder.Uint64(b))), nil
}

func decodeStr(buf *Buffer, lenWidth int) (Value, error) {
	n, err := readCount(buf, lenWidth)
	if err != nil {
		return nil, err
	}
	b, err := buf.readBytes(int(n))
	if err != nil {
		return nil, err
	}
	return Str(string(b)), nil
}

func decodeTableBackref(buf *Buffer, refs *decodeRefs) (Value, error) {
	b, err := buf.readBytes(8)
	if err != nil {
		return nil, err
	}
	ordinal := int64(beOrder.Uint64(b))
	return refs.resolve(ordinal)
}

func decodeTable(buf *Buffer, refs *decodeRefs, sizeWidth int) (Value, error) {
	narr, err := readCount(buf, sizeWidth)
	if err != nil {
		return nil, err
	}
	nrec, err := readCount(buf, sizeWidth)
	if err != nil {
		return nil, err
	}

	t := &Table{
		Array:  make([]Value, 0, capHint(narr)),
		Record: make(map[Value]Value, capHint(nrec)),
	}
	// Record before recursing, so a back-reference to this table from one
	// of its own entries (a cycle) resolves correctly.
	refs.record(t)

	for i := uint64(0); i < narr; i++ {
		// The array entry's key is always the implicit sequential index;
		// it is still present on the wire (per the format's uniform
		// key/value pair encoding) but is not needed to reconstruct the
		// array part.
		if _, err := decodeValue(buf, refs); err != nil {
			return nil, err
		}
		v, err := decodeValue(buf, refs)
		if err != nil {
			return nil, err
		}
		t.Array = append(t.Array, v)
	}
	for i := uint64(0); i < nrec; i++ {
		k, err := decodeValue(buf, refs)
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(buf, refs)
		if err != nil {
			return nil, err
		}
		t.Record[k] = v
	}
	return t, nil
}

// readCount reads a size field of the given byte width (1, 2, 4, or 8)
// and returns it as a uint64. An 8-byte field that would be negative when
// reinterpreted as int64 is rejected with ErrBadTableSize, matching the
// specification's treatment of the 64-bit size class.
func readCount(buf *Buffer, width int) (uint64, error) {
	b, err := buf.readBytes(width)
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(beOrder.Uint16(b)), nil
	case 4:
		return uint64(beOrder.Uint32(b)), nil
	case 8:
		v := beOrder.Uint64(b)
		if int64(v) < 0 {
			return 0, ErrBadTableSize
		}
		return v, nil
	default:
		return 0, ErrUnsupportedType
	}
}

// capHint bounds a preallocation hint derived from an attacker- or
// corruption-controlled wire count, so a bogus huge size class can't be
// used to force an enormous allocation before the underlying reads fail.
func capHint(n uint64) int {
	const max = 4096
	if n > max {
		return max
	}
	return int(n)
}
