// Package host is the call surface exposed to embedding hosts.
//
// Hosts do not hold Go pointers: every long-lived resource (compression
// context, decompression context, compressor graph) is addressed by an
// opaque uint64 handle issued by a Bridge. Typed data crosses the boundary
// as Items, a tagged wire representation with string lengths in packed
// little-endian form.
package host

import (
	"fmt"

	"github.com/arloliu/zlframe/errs"
	"github.com/arloliu/zlframe/format"
	"github.com/arloliu/zlframe/typed"
)

// Item tags for the typed stream variants.
const (
	TagSerial  = "serial"
	TagNumeric = "numeric"
	TagStruct  = "struct"
	TagString  = "string"
)

// Item is one typed stream in wire form.
//
// Param disambiguates per tag: the element width (int) for numeric, the
// record width (int) for struct, the packed little-endian uint32 lengths
// ([]byte) for string, and nil for serial. Unknown tags and mistyped
// params are rejected at the boundary, before any engine call.
type Item struct {
	Param any
	Tag   string
	Data  []byte
}

// stream decodes an Item into a typed stream. The tag switch is closed.
func (it Item) stream() (typed.Stream, error) {
	switch it.Tag {
	case TagSerial:
		return typed.SerialStream(it.Data), nil
	case TagNumeric:
		width, ok := it.Param.(int)
		if !ok {
			return typed.Stream{}, fmt.Errorf("%w: numeric item param must be an int width, got %T", errs.ErrUnknownStreamType, it.Param)
		}

		return typed.NumericStream(it.Data, width), nil
	case TagStruct:
		width, ok := it.Param.(int)
		if !ok {
			return typed.Stream{}, fmt.Errorf("%w: struct item param must be an int width, got %T", errs.ErrUnknownStreamType, it.Param)
		}

		return typed.StructStream(it.Data, width), nil
	case TagString:
		packed, ok := it.Param.([]byte)
		if !ok {
			return typed.Stream{}, fmt.Errorf("%w: string item param must be packed lengths, got %T", errs.ErrUnknownStreamType, it.Param)
		}

		return typed.StringStreamPacked(it.Data, packed)
	default:
		return typed.Stream{}, fmt.Errorf("%w: %q", errs.ErrUnknownStreamType, it.Tag)
	}
}

// itemFromOutput encodes a decompressed stream back into wire form.
func itemFromOutput(out typed.Output) Item {
	it := Item{Data: out.Data}

	switch out.Type {
	case format.TypeNumeric:
		it.Tag = TagNumeric
		it.Param = out.EltWidth
	case format.TypeStruct:
		it.Tag = TagStruct
		it.Param = out.EltWidth
	case format.TypeString:
		it.Tag = TagString
		it.Param = typed.PackLens(out.StringLens)
	default:
		it.Tag = TagSerial
	}

	return it
}
