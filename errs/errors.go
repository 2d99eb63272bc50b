// Package errs defines the sentinel error values shared across zlframe packages.
//
// Callers match errors with errors.Is; packages add context with
// fmt.Errorf("%w: ...", errs.ErrX) so the sentinel survives wrapping.
package errs

import "errors"

// Validation errors. These are always diagnosed locally, before any engine
// call, and never carry an engine diagnostic string.
var (
	ErrEmptyInput           = errors.New("input must not be empty")
	ErrInvalidElementWidth  = errors.New("element width must be 1, 2, 4, or 8")
	ErrInvalidStructWidth   = errors.New("struct width must be greater than zero")
	ErrSizeNotMultiple      = errors.New("data size must be a multiple of the width")
	ErrInvalidStringLengths = errors.New("string lengths must be a multiple of 4 bytes")
	ErrUnknownStreamType    = errors.New("unknown stream type")
)

// Engine and resource errors.
var (
	// ErrResourceCreate indicates the engine failed to construct a context or
	// compressor handle.
	ErrResourceCreate = errors.New("failed to create engine resource")

	// ErrRefCreate indicates the engine failed to construct a typed reference.
	// Input validation runs first, so this is defensive.
	ErrRefCreate = errors.New("failed to create typed reference")

	// ErrEngine indicates a compress, decompress or introspection call failed
	// inside the engine. The wrapped message carries the engine's own
	// diagnostic when it provides one.
	ErrEngine = errors.New("engine operation failed")

	// ErrMalformedFrame indicates frame metadata could not be read.
	ErrMalformedFrame = errors.New("frame metadata unreadable")

	// ErrAttach indicates the engine rejected a compressor attachment.
	ErrAttach = errors.New("failed to attach compressor")
)

// Description-language and lifecycle errors.
var (
	// ErrCompile wraps any failure (error or panic) raised by a
	// description-language compiler. No foreign panic escapes sddl.Compile.
	ErrCompile = errors.New("description compilation failed")

	ErrContextClosed    = errors.New("context already closed")
	ErrCompressorClosed = errors.New("compressor already released")
	ErrInvalidHandle    = errors.New("invalid handle")
)
