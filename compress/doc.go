// Package compress provides the block codecs the builtin engine applies to
// per-output frame payloads.
//
// Each output stream of a frame is compressed independently with one codec,
// selected by the compressor graph in effect and the context's sticky
// compression level. The package supports:
//   - None: No compression (fastest, largest)
//   - Zstd: Excellent compression ratio, moderate speed (default)
//   - S2: Balanced compression and speed
//   - LZ4: Fast decompression, moderate compression
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Algorithm Selection Guide
//
// | Workload Type       | Recommended | Reason                         |
// |---------------------|-------------|--------------------------------|
// | Storage-constrained | Zstd        | Best compression ratio         |
// | Real-time ingestion | S2          | Balanced speed and compression |
// | Query-heavy         | LZ4         | Fastest decompression          |
// | Incompressible data | None        | No compression overhead        |
//
// # Thread Safety
//
// All codec implementations are thread-safe and can be safely shared across
// goroutines. Internally they pool encoder and decoder state so repeated use
// is allocation-free after warmup.
//
// # Error Handling
//
// Compression errors are rare. Decompression errors indicate corrupted
// payload bytes or a codec mismatch; all errors are wrapped with context
// for debugging.
package compress
