package builtin

import (
	"fmt"

	"github.com/arloliu/zlframe/engine"
	"github.com/arloliu/zlframe/format"
)

// frameInfo answers metadata queries from a parsed frame header. Queries are
// independent; an out-of-range index fails that query only.
type frameInfo struct {
	h     *frameHeader
	freed bool
}

var _ engine.FrameInfo = (*frameInfo)(nil)

func (f *frameInfo) FormatVersion() (int, error) {
	if f.freed {
		return 0, fmt.Errorf("frame info used after free")
	}

	return f.h.formatVersion, nil
}

func (f *frameInfo) NumOutputs() (int, error) {
	if f.freed {
		return 0, fmt.Errorf("frame info used after free")
	}

	return len(f.h.entries), nil
}

func (f *frameInfo) OutputType(idx int) (format.StreamType, error) {
	e, err := f.entry(idx)
	if err != nil {
		return format.TypeUnknown, err
	}

	return e.streamType, nil
}

func (f *frameInfo) DecompressedSize(idx int) (int, error) {
	e, err := f.entry(idx)
	if err != nil {
		return 0, err
	}

	return int(e.rawSize), nil //nolint:gosec
}

func (f *frameInfo) NumElts(idx int) (int, error) {
	e, err := f.entry(idx)
	if err != nil {
		return 0, err
	}

	return int(e.numElts), nil //nolint:gosec
}

func (f *frameInfo) Free() {
	f.freed = true
	f.h = nil
}

func (f *frameInfo) entry(idx int) (*outputEntry, error) {
	if f.freed {
		return nil, fmt.Errorf("frame info used after free")
	}
	if idx < 0 || idx >= len(f.h.entries) {
		return nil, fmt.Errorf("output index %d out of range, frame has %d outputs", idx, len(f.h.entries))
	}

	return &f.h.entries[idx], nil
}
