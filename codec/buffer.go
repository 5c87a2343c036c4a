package codec

import "encoding/binary"

var beOrder = binary.BigEndian

// DefaultCeiling is the default upper bound on a Buffer's capacity, chosen
// to match the format specification's default memory ceiling.
const DefaultCeiling = 256 << 20 // 256 MiB

const initialCapacity = 1024
const doublingCeiling = 64 << 10 // 64 KiB

// Buffer is a growable byte region used both as the encode-time output
// sink and the decode-time input source. It owns its backing array; the
// invariant 0 <= pos <= len <= cap(bytes) <= ceiling holds at every public
// entry point.
//
// During encoding, len tracks pos (every appended byte is immediately
// valid). During decoding, len marks the end of valid input and pos is
// the read cursor; bytes beyond len are not guaranteed to be meaningful.
type Buffer struct {
	bytes   []byte
	pos     int
	len     int
	ceiling int
}

// NewBuffer returns an empty, writable Buffer with the default capacity
// ceiling.
func NewBuffer() *Buffer {
	return &Buffer{ceiling: DefaultCeiling}
}

// NewBufferCeiling returns an empty, writable Buffer with a custom
// capacity ceiling, in bytes.
func NewBufferCeiling(ceiling int) *Buffer {
	return &Buffer{ceiling: ceiling}
}

// WrapBytes returns a read-only Buffer view over an existing byte slice,
// suitable for passing to Decode without copying. The returned Buffer's
// pos starts at zero and len covers the whole slice.
func WrapBytes(b []byte) *Buffer {
	return &Buffer{bytes: b, len: len(b), ceiling: len(b)}
}

// Bytes returns the valid portion of the buffer, from offset zero to len.
// The caller must not retain the slice past the buffer's next mutation.
func (b *Buffer) Bytes() []byte {
	return b.bytes[:b.len]
}

// String renders the buffer's valid contents as a string, satisfying the
// "a Buffer value MUST stringify to its raw contents" contract.
func (b *Buffer) String() string {
	return string(b.Bytes())
}

// Len returns the number of valid bytes currently in the buffer.
func (b *Buffer) Len() int {
	return b.len
}

// Pos returns the current read/write cursor.
func (b *Buffer) Pos() int {
	return b.pos
}

// Reset rewinds the read cursor to the start without discarding the
// underlying storage or the valid-data length.
func (b *Buffer) Reset() {
	b.pos = 0
}

// require guarantees that at least n more bytes can be appended at pos,
// growing the backing array under the hybrid policy described in the
// format specification: double while below 64 KiB, grow by 1.5x at or
// above it, and never exceed the configured ceiling.
func (b *Buffer) require(n int) error {
	need := b.pos + n
	if need < 0 || need > b.ceiling {
		return ErrBufferOverflow
	}
	if need <= cap(b.bytes) {
		return nil
	}

	newCap := cap(b.bytes)
	if newCap == 0 {
		newCap = initialCapacity
	}
	for newCap < need {
		var grown int
		if newCap < doublingCeiling {
			grown = newCap * 2
		} else {
			grown = newCap + newCap/2
		}
		if grown <= newCap || grown > b.ceiling {
			// Overflowed the address space or the ceiling: clamp to
			// exactly what's needed, bounded by the ceiling.
			grown = need
		}
		newCap = grown
	}
	if newCap > b.ceiling {
		return ErrBufferOverflow
	}

	grown := make([]byte, b.len, newCap)
	copy(grown, b.bytes[:b.len])
	b.bytes = grown
	return nil
}

// avail guarantees that n more bytes can be read starting at pos without
// running past len.
func (b *Buffer) avail(n int) error {
	if b.pos+n > b.len {
		return ErrBufferUnderflow
	}
	return nil
}

// appendBytes writes p at the current position, growing as needed, and
// advances pos (and len, which tracks pos during encoding).
func (b *Buffer) appendBytes(p []byte) error {
	if err := b.require(len(p)); err != nil {
		return err
	}
	b.bytes = b.bytes[:b.pos+len(p)]
	copy(b.bytes[b.pos:], p)
	b.pos += len(p)
	b.len = b.pos
	return nil
}

// appendByte writes a single byte at the current position.
func (b *Buffer) appendByte(v byte) error {
	return b.appendBytes([]byte{v})
}

// readBytes returns a view of the next n bytes without copying, and
// advances pos.
func (b *Buffer) readBytes(n int) ([]byte, error) {
	if err := b.avail(n); err != nil {
		return nil, err
	}
	out := b.bytes[b.pos : b.pos+n]
	b.pos += n
	return out, nil
}

// readByte returns the next byte and advances pos.
func (b *Buffer) readByte() (byte, error) {
	buf, err := b.readBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// remaining reports how many unread bytes are left between pos and len.
func (b *Buffer) remaining() int {
	return b.len - b.pos
}

// putByteAt overwrites a single already-written byte in place, without
// moving pos. Used to patch a reserved header after the fact.
func (b *Buffer) putByteAt(off int, v byte) {
	b.bytes[off] = v
}

// putUint16At overwrites two already-written bytes in place, big-endian.
func (b *Buffer) putUint16At(off int, v uint16) {
	beOrder.PutUint16(b.bytes[off:], v)
}

// putUint32At overwrites four already-written bytes in place, big-endian.
func (b *Buffer) putUint32At(off int, v uint32) {
	beOrder.PutUint32(b.bytes[off:], v)
}

// putUint64At overwrites eight already-written bytes in place, big-endian.
func (b *Buffer) putUint64At(off int, v uint64) {
	beOrder.PutUint64(b.bytes[off:], v)
}

// shiftRight moves the bytes in [from:b.pos) right by delta positions,
// making room for a wider size header. It is used when a table's entry
// count grows past the current size class after the entries have already
// been written. The buffer is grown first if needed.
func (b *Buffer) shiftRight(from, delta int) error {
	if delta == 0 {
		return nil
	}
	if err := b.require(delta); err != nil {
		return err
	}
	b.bytes = b.bytes[:b.pos+delta]
	copy(b.bytes[from+delta:b.pos+delta], b.bytes[from:b.pos])
	b.pos += delta
	b.len = b.pos
	return nil
}
