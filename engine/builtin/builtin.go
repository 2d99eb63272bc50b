package builtin

import (
	"fmt"

	"github.com/arloliu/zlframe/engine"
	"github.com/arloliu/zlframe/format"
)

// versionNumber encodes the engine version as major*10000 + minor*100 + patch.
const versionNumber = 10300

// Engine is the default pure-Go codec engine. It is stateless and safe for
// concurrent use; the contexts it creates are not.
type Engine struct{}

var _ engine.Engine = (*Engine)(nil)

// New creates the builtin engine.
func New() *Engine {
	return &Engine{}
}

// Version returns the engine version in major.minor.patch form.
func (*Engine) Version() string {
	return fmt.Sprintf("%d.%d.%d", versionNumber/10000, (versionNumber/100)%100, versionNumber%100)
}

// DefaultFormatVersion returns the container version new contexts write.
func (*Engine) DefaultFormatVersion() int {
	return FormatVersion1
}

// CompressBound returns an upper bound on the compressed size of srcSize
// input bytes, including container overhead. The slack covers the frame
// header, the integrity trailer and incompressible-input expansion for every
// supported codec.
func (*Engine) CompressBound(srcSize int) int {
	return srcSize + srcSize/2 + 4096
}

func (*Engine) NewCCtx() (engine.CCtx, error) {
	return newCCtx(), nil
}

func (*Engine) NewDCtx() (engine.DCtx, error) {
	return newDCtx(), nil
}

func (*Engine) NewCompressor() (engine.Compressor, error) {
	return newCompressor(), nil
}

func (*Engine) NewSerialRef(data []byte) (engine.TypedRef, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	return &typedRef{typ: format.TypeSerial, data: data, width: 1}, nil
}

func (*Engine) NewNumericRef(data []byte, eltWidth int) (engine.TypedRef, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input")
	}
	if !format.ValidNumericWidth(eltWidth) {
		return nil, fmt.Errorf("invalid numeric element width %d", eltWidth)
	}
	if len(data)%eltWidth != 0 {
		return nil, fmt.Errorf("data size %d is not a multiple of element width %d", len(data), eltWidth)
	}

	return &typedRef{typ: format.TypeNumeric, data: data, width: eltWidth}, nil
}

func (*Engine) NewStructRef(data []byte, structWidth int) (engine.TypedRef, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input")
	}
	if structWidth <= 0 {
		return nil, fmt.Errorf("invalid struct width %d", structWidth)
	}
	if len(data)%structWidth != 0 {
		return nil, fmt.Errorf("data size %d is not a multiple of struct width %d", len(data), structWidth)
	}

	return &typedRef{typ: format.TypeStruct, data: data, width: structWidth}, nil
}

func (*Engine) NewStringRef(data []byte, lens []uint32) (engine.TypedRef, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	sum := uint64(0)
	for _, l := range lens {
		sum += uint64(l)
	}
	if sum != uint64(len(data)) {
		return nil, fmt.Errorf("string lengths sum %d does not match data size %d", sum, len(data))
	}

	return &typedRef{typ: format.TypeString, data: data, lens: lens, width: 1}, nil
}

func (*Engine) NewTypedBuffer() (engine.TypedBuffer, error) {
	return newTypedBuffer(), nil
}

// DecompressedSize returns the total declared decompressed size of every
// output in the frame, without decompressing.
func (*Engine) DecompressedSize(frame []byte) (int, error) {
	h, err := parseHeader(frame)
	if err != nil {
		return 0, err
	}

	total := uint64(0)
	for i := range h.entries {
		total += h.entries[i].rawSize
	}

	return int(total), nil //nolint:gosec
}

func (*Engine) NumOutputs(frame []byte) (int, error) {
	h, err := parseHeader(frame)
	if err != nil {
		return 0, err
	}

	return len(h.entries), nil
}

func (*Engine) OpenFrameInfo(frame []byte) (engine.FrameInfo, error) {
	h, err := parseHeader(frame)
	if err != nil {
		return nil, err
	}

	return &frameInfo{h: h}, nil
}
