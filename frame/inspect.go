package frame

import (
	"fmt"

	"github.com/arloliu/zlframe/engine"
	"github.com/arloliu/zlframe/errs"
	"github.com/arloliu/zlframe/format"
)

// SizeUnknown marks a per-output size query the engine could not answer.
const SizeUnknown = -1

// OutputInfo is the metadata of one frame output. Fields the engine could
// not report degrade to format.TypeUnknown and SizeUnknown.
type OutputInfo struct {
	Type             format.StreamType
	DecompressedSize int
	NumElts          int
}

// Info is the metadata of a whole frame. FormatVersion is zero when the
// engine could not report it.
type Info struct {
	Outputs       []OutputInfo
	FormatVersion int
}

// NumOutputs returns the number of outputs in the frame.
func (fi *Info) NumOutputs() int {
	return len(fi.Outputs)
}

// Inspect reads a frame's metadata without decompressing it.
//
// Opening an unreadable frame fails with errs.ErrMalformedFrame. Once open,
// field queries are independent: a query the engine cannot answer leaves an
// unknown sentinel in the result instead of failing the inspection.
func Inspect(eng engine.Engine, frame []byte) (*Info, error) {
	if len(frame) == 0 {
		return nil, errs.ErrEmptyInput
	}

	fi, err := eng.OpenFrameInfo(frame)
	if err != nil || fi == nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMalformedFrame, err)
	}
	defer fi.Free()

	count, err := fi.NumOutputs()
	if err != nil {
		return nil, fmt.Errorf("%w: output count: %v", errs.ErrMalformedFrame, err)
	}

	info := &Info{Outputs: make([]OutputInfo, count)}
	if v, verr := fi.FormatVersion(); verr == nil {
		info.FormatVersion = v
	}

	for i := 0; i < count; i++ {
		out := OutputInfo{
			Type:             format.TypeUnknown,
			DecompressedSize: SizeUnknown,
			NumElts:          SizeUnknown,
		}
		if t, terr := fi.OutputType(i); terr == nil {
			out.Type = t
		}
		if s, serr := fi.DecompressedSize(i); serr == nil {
			out.DecompressedSize = s
		}
		if n, nerr := fi.NumElts(i); nerr == nil {
			out.NumElts = n
		}
		info.Outputs[i] = out
	}

	return info, nil
}
