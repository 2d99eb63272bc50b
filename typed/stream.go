// Package typed converts between host-visible structured values and the
// engine's native typed buffer model.
//
// The input side is the closed Stream variant: serial, numeric, struct or
// string. A Stream exists only to build one native typed reference; it
// borrows the caller's bytes for the duration of one call and owns nothing.
// The output side is Output, a fully copied-out descriptor of one
// decompressed stream.
//
// Validation runs before any engine construction: width and length
// constraints are cheap, local checks whose errors name the exact
// constraint, so user mistakes are never masked by a generic engine
// diagnostic.
package typed

import (
	"fmt"

	"github.com/arloliu/zlframe/endian"
	"github.com/arloliu/zlframe/engine"
	"github.com/arloliu/zlframe/errs"
	"github.com/arloliu/zlframe/format"
)

// Stream is one logical typed input stream.
//
// The zero value is invalid; use the constructors. Width carries the
// element width for numeric streams and the record width for struct
// streams; Lens carries per-field lengths for string streams.
type Stream struct {
	Data  []byte
	Lens  []uint32
	Width int
	Type  format.StreamType
}

// SerialStream wraps an opaque byte sequence.
func SerialStream(data []byte) Stream {
	return Stream{Type: format.TypeSerial, Data: data}
}

// NumericStream wraps fixed-width integer data. width must be 1, 2, 4 or 8.
func NumericStream(data []byte, width int) Stream {
	return Stream{Type: format.TypeNumeric, Data: data, Width: width}
}

// StructStream wraps fixed-width record data. width must be positive.
func StructStream(data []byte, width int) Stream {
	return Stream{Type: format.TypeStruct, Data: data, Width: width}
}

// StringStream wraps variable-length field data with one length per field.
func StringStream(data []byte, lens []uint32) Stream {
	return Stream{Type: format.TypeString, Data: data, Lens: lens}
}

// StringStreamPacked wraps variable-length field data whose lengths arrive
// in wire form: packed little-endian uint32 values. This is the shape the
// host call surface receives.
//
// The packed buffer must be a multiple of 4 bytes; that is checked here,
// before any engine call. Whether the lengths sum to len(data) is checked
// by the engine at compress time, not here.
func StringStreamPacked(data, packedLens []byte) (Stream, error) {
	if len(packedLens)%4 != 0 {
		return Stream{}, fmt.Errorf("%w: got %d bytes", errs.ErrInvalidStringLengths, len(packedLens))
	}

	eng := endian.GetLittleEndianEngine()
	lens := make([]uint32, len(packedLens)/4)
	for i := range lens {
		lens[i] = eng.Uint32(packedLens[i*4:])
	}

	return Stream{Type: format.TypeString, Data: data, Lens: lens}, nil
}

// PackLens converts a lengths slice to its wire form: packed little-endian
// uint32 values. The inverse of StringStreamPacked's decode step.
func PackLens(lens []uint32) []byte {
	eng := endian.GetLittleEndianEngine()
	packed := make([]byte, 0, len(lens)*4)
	for _, l := range lens {
		packed = eng.AppendUint32(packed, l)
	}

	return packed
}

// Validate checks the stream's local shape constraints. It never calls the
// engine and its errors never carry engine text.
func (s Stream) Validate() error {
	switch s.Type {
	case format.TypeSerial:
		return nil
	case format.TypeNumeric:
		if !format.ValidNumericWidth(s.Width) {
			return fmt.Errorf("%w: got %d", errs.ErrInvalidElementWidth, s.Width)
		}
		if len(s.Data)%s.Width != 0 {
			return fmt.Errorf("%w: %d bytes with element width %d", errs.ErrSizeNotMultiple, len(s.Data), s.Width)
		}

		return nil
	case format.TypeStruct:
		if s.Width <= 0 {
			return fmt.Errorf("%w: got %d", errs.ErrInvalidStructWidth, s.Width)
		}
		if len(s.Data)%s.Width != 0 {
			return fmt.Errorf("%w: %d bytes with struct width %d", errs.ErrSizeNotMultiple, len(s.Data), s.Width)
		}

		return nil
	case format.TypeString:
		// Lens arrived either decoded (constructor) or via
		// StringStreamPacked, which already checked alignment.
		return nil
	default:
		return fmt.Errorf("%w: %d", errs.ErrUnknownStreamType, s.Type)
	}
}

// BuildRef validates the stream and constructs its native typed reference.
//
// Validation errors surface as-is. A nil reference or construction error
// from the engine maps to errs.ErrRefCreate; given prior validation this is
// defensive, but the engine boundary is still checked on every call.
//
// The caller owns the returned reference and must Free it after the
// compression call that consumes it returns.
func BuildRef(eng engine.Engine, s Stream) (engine.TypedRef, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var (
		ref engine.TypedRef
		err error
	)

	switch s.Type {
	case format.TypeSerial:
		ref, err = eng.NewSerialRef(s.Data)
	case format.TypeNumeric:
		ref, err = eng.NewNumericRef(s.Data, s.Width)
	case format.TypeStruct:
		ref, err = eng.NewStructRef(s.Data, s.Width)
	case format.TypeString:
		ref, err = eng.NewStringRef(s.Data, s.Lens)
	default:
		return nil, fmt.Errorf("%w: %d", errs.ErrUnknownStreamType, s.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrRefCreate, s.Type, err)
	}
	if ref == nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrRefCreate, s.Type)
	}

	return ref, nil
}
