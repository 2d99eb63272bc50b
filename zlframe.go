// Package zlframe provides typed, graph-driven compression with a
// self-describing multi-output frame format.
//
// Inputs are typed streams: opaque serial bytes, fixed-width numeric
// arrays, fixed-width struct records, or variable-length string fields with
// per-field lengths. One or more streams compress into a single frame that
// records each output's type and shape, so decompression reconstructs not
// just the bytes but the structure they carried.
//
// # Basic Usage
//
// One-shot compression of opaque bytes:
//
//	import "github.com/arloliu/zlframe"
//
//	frame, _ := zlframe.Compress(data)
//	restored, _ := zlframe.Decompress(frame)
//
// Reusable contexts amortize setup across calls and carry sticky
// parameters:
//
//	ctx, _ := zlframe.NewContext(zlframe.WithCompressionLevel(9))
//	defer ctx.Close()
//	frameA, _ := ctx.Compress(dataA)
//	frameB, _ := ctx.Compress(dataB)
//
// Typed multi-stream compression packs ordered streams into one frame:
//
//	ctx, _ := zlframe.NewContext()
//	defer ctx.Close()
//	frame, _ := ctx.CompressMulti([]typed.Stream{
//	    typed.NumericStream(timestamps, 8),
//	    typed.StringStream(labels, labelLens),
//	})
//
//	dctx, _ := zlframe.NewDContext()
//	defer dctx.Close()
//	outputs, _ := dctx.DecompressMulti(frame)
//
// Custom compressor graphs are built from description source and attached
// to contexts; an attached graph stays alive until the last context using
// it closes:
//
//	compiled, _ := zlframe.Compile("codec zstd\nlevel 19\n", "profile")
//	comp, _ := zlframe.NewCompressor(compiled)
//	defer comp.Close()
//	_ = comp.Attach(ctx)
//
// # Package Structure
//
// This package provides convenient top-level wrappers bound to the builtin
// engine. For fine-grained control, or to run against a different engine
// implementation, use the frame, typed, sddl and host packages directly.
package zlframe

import (
	"github.com/arloliu/zlframe/engine"
	"github.com/arloliu/zlframe/engine/builtin"
	"github.com/arloliu/zlframe/frame"
	"github.com/arloliu/zlframe/sddl"
)

// Option configures a compression context.
type Option = frame.Option

// WithCompressionLevel sets the context's sticky compression level (1..22).
func WithCompressionLevel(level int) Option {
	return frame.WithCompressionLevel(level)
}

// WithFormatVersion sets the encoding version the context writes.
func WithFormatVersion(version int) Option {
	return frame.WithFormatVersion(version)
}

var defaultEngine = builtin.New()

// DefaultEngine returns the builtin engine instance the top-level wrappers
// are bound to.
func DefaultEngine() engine.Engine {
	return defaultEngine
}

// Version returns the builtin engine's version string.
func Version() string {
	return defaultEngine.Version()
}

// Compress compresses src in one shot and returns the frame.
func Compress(src []byte, opts ...Option) ([]byte, error) {
	return frame.Compress(defaultEngine, src, opts...)
}

// Decompress decompresses a single-output frame in one shot.
func Decompress(frameData []byte) ([]byte, error) {
	return frame.Decompress(defaultEngine, frameData)
}

// NewContext creates a reusable compression context on the builtin engine.
func NewContext(opts ...Option) (*frame.Context, error) {
	return frame.NewContext(defaultEngine, opts...)
}

// NewDContext creates a reusable decompression context on the builtin engine.
func NewDContext() (*frame.DContext, error) {
	return frame.NewDContext(defaultEngine)
}

// Inspect reads a frame's metadata without decompressing it.
func Inspect(frameData []byte) (*frame.Info, error) {
	return frame.Inspect(defaultEngine, frameData)
}

// Compile translates description source into a compiled profile using the
// builtin compiler.
func Compile(source, label string) ([]byte, error) {
	return sddl.Compile(builtin.NewCompiler(), source, label)
}

// NewCompressor builds a compressor graph from a compiled profile.
func NewCompressor(compiled []byte) (*sddl.Compressor, error) {
	return sddl.NewCompressor(defaultEngine, compiled)
}
