// Package engine defines the boundary to the codec engine.
//
// Everything behind these interfaces is a black box to the rest of zlframe:
// the compression algorithms, the on-wire frame layout, graph-based transform
// selection and the description-language front-end all live inside an Engine
// implementation. The layers above only validate inputs, manage handle
// lifetimes and move bytes across this boundary.
//
// The builtin subpackage provides the default pure-Go implementation.
//
// # Resource lifetime
//
// CCtx, DCtx, Compressor, TypedRef, TypedBuffer and FrameInfo values hold
// engine-owned state and must be released exactly once with Free. The handle
// and frame packages wrap them in reference-counted owners; code below those
// layers never exposes an unreleased native value to callers.
package engine

import "github.com/arloliu/zlframe/format"

// GraphID identifies a starting graph registered on a Compressor.
type GraphID uint32

// GraphGeneric selects the engine's built-in generic compression graph.
// Every engine implementation must accept it in Compressor.SelectStartingGraph.
const GraphGeneric GraphID = 1

// Engine is the factory surface of one codec engine instance.
//
// Implementations must be safe for concurrent use; the contexts they hand
// out are not (callers serialize calls per context).
type Engine interface {
	// Version returns the engine's version string in major.minor.patch form.
	Version() string

	// DefaultFormatVersion returns the encoding version new contexts are
	// configured with.
	DefaultFormatVersion() int

	// CompressBound returns an upper bound on the compressed size of
	// srcSize input bytes. It is pure and monotonic in srcSize.
	CompressBound(srcSize int) int

	// NewCCtx creates a reusable compression context.
	NewCCtx() (CCtx, error)

	// NewDCtx creates a reusable decompression context.
	NewDCtx() (DCtx, error)

	// NewCompressor creates an empty compressor graph container.
	NewCompressor() (Compressor, error)

	// NewSerialRef wraps an opaque byte sequence as a typed reference.
	NewSerialRef(data []byte) (TypedRef, error)

	// NewNumericRef wraps fixed-width integer data as a typed reference.
	// len(data) must be a multiple of eltWidth; callers validate first.
	NewNumericRef(data []byte, eltWidth int) (TypedRef, error)

	// NewStructRef wraps fixed-width record data as a typed reference.
	NewStructRef(data []byte, structWidth int) (TypedRef, error)

	// NewStringRef wraps variable-length field data plus its per-field
	// lengths as a typed reference. The engine, not the caller, checks that
	// the lengths sum to len(data).
	NewStringRef(data []byte, lens []uint32) (TypedRef, error)

	// NewTypedBuffer creates an empty output buffer for typed decompression.
	NewTypedBuffer() (TypedBuffer, error)

	// DecompressedSize reads the declared decompressed size of a
	// single-output frame without decompressing it.
	DecompressedSize(frame []byte) (int, error)

	// NumOutputs reads the number of outputs stored in a frame.
	NumOutputs(frame []byte) (int, error)

	// OpenFrameInfo opens a frame for metadata queries.
	OpenFrameInfo(frame []byte) (FrameInfo, error)
}

// CCtx is a reusable compression context with sticky parameters.
//
// A CCtx is single-writer: callers must not run two calls on the same
// context concurrently, and must not Free it with a call in flight.
type CCtx interface {
	// SetParameter sets a sticky parameter. The value persists across
	// repeated compression calls on this context.
	SetParameter(param format.CParam, value int) error

	// RefCompressor points the context at a compressor graph. The context
	// reads through the reference on every subsequent compression call;
	// the caller keeps the compressor alive at least as long as the context.
	RefCompressor(comp Compressor) error

	// Compress compresses src into dst and returns the number of bytes
	// written. dst must be at least Engine.CompressBound(len(src)) long.
	Compress(dst, src []byte) (int, error)

	// CompressTypedRef compresses one typed reference into dst. dst must be
	// at least Engine.CompressBound(ref.ByteSize()) long.
	CompressTypedRef(dst []byte, ref TypedRef) (int, error)

	// CompressMultiTypedRef packs the referenced streams, in order, into a
	// single frame in dst. Output index i of the frame corresponds to
	// refs[i]. All refs must stay unreleased until this call returns.
	CompressMultiTypedRef(dst []byte, refs []TypedRef) (int, error)

	// Free releases the context. Calling any method after Free is an error.
	Free()
}

// DCtx is a reusable decompression context.
//
// The same single-writer discipline as CCtx applies.
type DCtx interface {
	// Decompress decompresses a single-output frame into dst, which must be
	// exactly the frame's declared decompressed size.
	Decompress(dst, src []byte) (int, error)

	// DecompressTypedBuffer decompresses a single-output frame into buf,
	// reconstructing its type and shape metadata.
	DecompressTypedBuffer(buf TypedBuffer, src []byte) error

	// DecompressMultiTypedBuffer decompresses a multi-output frame into
	// bufs, one buffer per output in frame order. len(bufs) must equal the
	// frame's output count.
	DecompressMultiTypedBuffer(bufs []TypedBuffer, src []byte) error

	Free()
}

// Compressor is a compressor graph container. A profile is installed with
// SetupProfile and one of its graphs selected as the starting graph; the
// compressor is then attached to compression contexts via CCtx.RefCompressor.
type Compressor interface {
	// SetupProfile installs a compiled profile and returns the identifier
	// of the graph it builds.
	SetupProfile(compiled []byte) (GraphID, error)

	// SelectStartingGraph selects the graph compression starts from.
	SelectStartingGraph(id GraphID) error

	Free()
}

// TypedRef is a borrowed, typed view over caller-owned bytes used as
// compression input. The underlying data must stay valid and unmodified
// until Free; the engine reads through the reference at compress time.
type TypedRef interface {
	// ByteSize returns the byte size the reference contributes to a frame
	// before compression: the referenced data plus, for string references,
	// the packed per-element lengths. A destination buffer of
	// Engine.CompressBound(ByteSize()) always fits the compressed stream.
	ByteSize() int

	Free()
}

// TypedBuffer is an engine-owned output buffer produced by typed
// decompression. Data and StringLens return views into engine memory that
// are only valid until Free; callers copy out first.
type TypedBuffer interface {
	Type() format.StreamType
	ByteSize() int
	NumElts() int
	EltWidth() int

	// Data returns the reconstructed bytes. Borrowed; valid until Free.
	Data() []byte

	// StringLens returns the per-element lengths for string outputs and nil
	// for every other type. Borrowed; valid until Free.
	StringLens() []uint32

	Free()
}

// FrameInfo exposes per-output frame metadata without decompression.
// Each query can fail independently; a failed field query does not
// invalidate the FrameInfo.
type FrameInfo interface {
	FormatVersion() (int, error)
	NumOutputs() (int, error)
	OutputType(idx int) (format.StreamType, error)
	DecompressedSize(idx int) (int, error)
	NumElts(idx int) (int, error)
	Free()
}

// Compiler translates description-language source text into a profile blob
// consumable by Compressor.SetupProfile.
//
// Implementations wrap foreign front-ends and may panic; callers go through
// sddl.Compile, which converts panics into errors at the boundary.
type Compiler interface {
	Compile(source, label string) ([]byte, error)
}
