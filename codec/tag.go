package codec

// Wire tag bytes, as pinned down by the format specification. The value
// is a one-byte dispatch key prefixing every encoded value.
const (
	tagFalse        byte = 1
	tagTrue         byte = 65
	tagFloat        byte = 3
	tagInt          byte = 67
	tagStrLong      byte = 4
	tagStrShort     byte = 68
	tagTable8       byte = 5
	tagTable16      byte = 21
	tagTable32      byte = 37
	tagTable64      byte = 53
	tagTableBackref byte = 69
)

// versionTag is the 4-byte prefix identifying format version 2: ASCII
// "LM" followed by 0xF6 0x02.
var versionTag = [4]byte{'L', 'M', 0xF6, 0x02}
