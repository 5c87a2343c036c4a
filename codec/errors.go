package codec

import "errors"

// Package error values. Each corresponds to one of the codec error kinds
// named in the format specification; callers should compare with
// errors.Is rather than the underlying message text.
var (
	// ErrBadVersion is returned by Decode when the input does not begin
	// with the format version tag.
	ErrBadVersion = errors.New("codec: bad version tag")

	// ErrUnsupportedType is returned by Decode when a tag byte does not
	// correspond to any known value type, and by Encode when the top-level
	// value is outside the value universe (nil).
	ErrUnsupportedType = errors.New("codec: unsupported type tag")

	// ErrBufferOverflow is returned by Buffer.require when growing past
	// the configured capacity ceiling would be required.
	ErrBufferOverflow = errors.New("codec: buffer overflow")

	// ErrBufferUnderflow is returned by Buffer.avail when a read would
	// run past the end of valid input.
	ErrBufferUnderflow = errors.New("codec: buffer underflow")

	// ErrBadTableSize is returned when a decoded table array/record size
	// is negative when reinterpreted as signed.
	ErrBadTableSize = errors.New("codec: bad table size")

	// ErrBadBackref is returned when a back-reference ordinal does not
	// correspond to any table recorded so far in this decode call.
	ErrBadBackref = errors.New("codec: back-reference out of range")

	// ErrTooManyTables is returned by Encode when the back-reference
	// ordinal counter would overflow int64.
	ErrTooManyTables = errors.New("codec: too many tables")

	// ErrExtraData is returned by Decode when bytes remain in the buffer
	// after the top-level value has been fully consumed.
	ErrExtraData = errors.New("codec: extra data after decoded value")

	// ErrEncodedValueTooLong is returned when a string or table payload's
	// length does not fit any defined size class.
	ErrEncodedValueTooLong = errors.New("codec: encoded value too long")

	// ErrTooManyArrayElements and ErrTooManyRecordElements correspond to
	// the like-named error kinds in the format specification. Go slices
	// and maps are already bounded by available address space well below
	// the wire format's 2^64-1 ceiling on either count, so in this
	// implementation they are unreachable in practice; they are defined
	// for API completeness and so callers pattern-matching on the full
	// error kind set compile against a stable set of sentinels.
	ErrTooManyArrayElements  = errors.New("codec: too many array elements")
	ErrTooManyRecordElements = errors.New("codec: too many record elements")
)
