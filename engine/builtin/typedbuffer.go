package builtin

import (
	"github.com/arloliu/zlframe/engine"
	"github.com/arloliu/zlframe/format"
	"github.com/arloliu/zlframe/internal/pool"
)

// typedBuffer holds one reconstructed output stream. The data bytes live in
// a pooled scratch buffer and the string lengths in a pooled slice; Free
// recycles both, which is why callers copy out before releasing.
type typedBuffer struct {
	data     *pool.ByteBuffer
	lens     []uint32
	lensFree func()
	eltWidth int
	numElts  int
	typ      format.StreamType
	freed    bool
}

var _ engine.TypedBuffer = (*typedBuffer)(nil)

func newTypedBuffer() *typedBuffer {
	return &typedBuffer{
		data: pool.GetScratchBuffer(),
		typ:  format.TypeUnknown,
	}
}

// fill loads one decoded output into the buffer, releasing any lengths from
// a previous fill.
func (b *typedBuffer) fill(e *outputEntry, payload []byte, lens []uint32, lensFree func()) {
	if b.lensFree != nil {
		b.lensFree()
	}

	b.typ = e.streamType
	b.eltWidth = int(e.eltWidth)
	b.numElts = int(e.numElts) //nolint:gosec
	b.data.Reset()
	b.data.MustWrite(payload)
	b.lens = lens
	b.lensFree = lensFree
}

func (b *typedBuffer) Type() format.StreamType {
	if b.freed {
		return format.TypeUnknown
	}

	return b.typ
}

func (b *typedBuffer) ByteSize() int {
	if b.freed {
		return 0
	}

	return b.data.Len()
}

func (b *typedBuffer) NumElts() int {
	if b.freed {
		return 0
	}

	return b.numElts
}

func (b *typedBuffer) EltWidth() int {
	if b.freed {
		return 0
	}

	return b.eltWidth
}

func (b *typedBuffer) Data() []byte {
	if b.freed {
		return nil
	}

	return b.data.Bytes()
}

func (b *typedBuffer) StringLens() []uint32 {
	if b.freed || b.typ != format.TypeString {
		return nil
	}

	return b.lens
}

func (b *typedBuffer) Free() {
	if b.freed {
		return
	}
	b.freed = true

	pool.PutScratchBuffer(b.data)
	b.data = nil
	if b.lensFree != nil {
		b.lensFree()
		b.lensFree = nil
	}
	b.lens = nil
}
