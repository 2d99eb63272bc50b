package typed

import (
	"github.com/arloliu/zlframe/engine"
	"github.com/arloliu/zlframe/format"
)

// Output describes one reconstructed stream from a decompressed frame.
//
// All fields are fresh copies owned by the caller: the native buffer the
// data came from may be released (and its memory recycled) immediately
// after DecodeBuffer returns. StringLens is non-nil only for string
// outputs.
type Output struct {
	Data       []byte
	StringLens []uint32
	EltWidth   int
	NumElts    int
	Type       format.StreamType
}

// DecodeBuffer reads type, shape and data out of a native typed buffer.
//
// The copy-out is unconditional: callers release buf right after this
// returns, and the engine does not guarantee the buffer's memory outlives
// that release.
func DecodeBuffer(buf engine.TypedBuffer) Output {
	out := Output{
		Type:     buf.Type(),
		EltWidth: buf.EltWidth(),
		NumElts:  buf.NumElts(),
	}

	data := buf.Data()
	out.Data = make([]byte, len(data))
	copy(out.Data, data)

	if out.Type == format.TypeString {
		if lens := buf.StringLens(); lens != nil {
			out.StringLens = make([]uint32, len(lens))
			copy(out.StringLens, lens)
		}
	}

	return out
}
