package format

type (
	// StreamType identifies the logical type of one typed stream or frame output.
	StreamType uint8
	// CompressionType identifies a block codec.
	CompressionType uint8
	// CParam identifies a sticky compression context parameter.
	// Parameters set on a context persist across repeated uses of that context.
	CParam uint8
)

const (
	TypeSerial  StreamType = 0x1 // TypeSerial represents an opaque byte sequence.
	TypeStruct  StreamType = 0x2 // TypeStruct represents fixed-width records.
	TypeNumeric StreamType = 0x3 // TypeNumeric represents fixed-width integers (width 1, 2, 4 or 8).
	TypeString  StreamType = 0x4 // TypeString represents variable-length fields with per-field lengths.
	TypeUnknown StreamType = 0xF // TypeUnknown is the sentinel for an unreadable output type.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.

	CParamCompressionLevel CParam = 0x1 // CParamCompressionLevel selects the block codec compression level.
	CParamFormatVersion    CParam = 0x2 // CParamFormatVersion selects the frame encoding version.
	CParamStickyParameters CParam = 0x3 // CParamStickyParameters keeps parameters across calls when non-zero.
)

func (s StreamType) String() string {
	switch s {
	case TypeSerial:
		return "serial"
	case TypeStruct:
		return "struct"
	case TypeNumeric:
		return "numeric"
	case TypeString:
		return "string"
	default:
		return "unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ValidNumericWidth reports whether w is an allowed numeric element width.
func ValidNumericWidth(w int) bool {
	return w == 1 || w == 2 || w == 4 || w == 8
}
