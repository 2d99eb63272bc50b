//go:build cgo

package compress

import (
	"fmt"

	"github.com/valyala/gozstd"
)

// Compress compresses the input data using the cgo Zstandard implementation.
// gozstd pools its native contexts internally, so repeated calls are cheap.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	level := c.level
	if level < 1 {
		level = DefaultLevel
	}

	return gozstd.CompressLevel(nil, data, level), nil
}

// Decompress decompresses Zstd-compressed data using the cgo implementation.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	decompressed, err := gozstd.Decompress(nil, data)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return decompressed, nil
}
