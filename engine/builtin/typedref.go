package builtin

import (
	"github.com/arloliu/zlframe/engine"
	"github.com/arloliu/zlframe/format"
)

// typedRef is a borrowed view over caller-owned input bytes, tagged with the
// stream type and shape metadata the frame header needs.
type typedRef struct {
	data  []byte
	lens  []uint32
	width int
	typ   format.StreamType
	freed bool
}

var _ engine.TypedRef = (*typedRef)(nil)

// ByteSize returns the wire footprint of the reference: the referenced
// data plus, for string references, the packed per-element lengths the
// frame stores alongside it.
func (r *typedRef) ByteSize() int {
	if r.freed {
		return 0
	}

	return len(r.data) + 4*len(r.lens)
}

// numElts derives the element count from the referenced data.
func (r *typedRef) numElts() uint64 {
	switch r.typ {
	case format.TypeNumeric, format.TypeStruct:
		return uint64(len(r.data) / r.width) //nolint:gosec
	case format.TypeString:
		return uint64(len(r.lens))
	default:
		return uint64(len(r.data))
	}
}

func (r *typedRef) Free() {
	r.freed = true
	r.data = nil
	r.lens = nil
}
