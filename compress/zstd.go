package compress

// ZstdCompressor provides Zstandard compression for frame payloads.
//
// This codec is the builtin engine's default: it is chosen whenever a
// compressor graph does not override the codec for a stream. It favors
// compression ratio over speed, making it the right choice for archival
// frames and bandwidth-limited transport.
//
// The level follows the zstd convention (1 = fastest, higher = smaller).
// The zero value uses DefaultLevel.
type ZstdCompressor struct {
	level int
}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec at DefaultLevel.
//
// Returns:
//   - ZstdCompressor: New Zstd codec instance
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{level: DefaultLevel}
}

// NewZstdCompressorLevel creates a new Zstd codec at the given level.
// Levels below 1 are clamped to 1.
func NewZstdCompressorLevel(level int) ZstdCompressor {
	if level < 1 {
		level = 1
	}

	return ZstdCompressor{level: level}
}
