package builtin

import (
	"fmt"

	"github.com/arloliu/zlframe/compress"
	"github.com/arloliu/zlframe/engine"
	"github.com/arloliu/zlframe/format"
	"github.com/arloliu/zlframe/internal/pool"
)

// dctx is the builtin decompression context.
type dctx struct {
	freed bool
}

var _ engine.DCtx = (*dctx)(nil)

func newDCtx() *dctx {
	return &dctx{}
}

func (d *dctx) Decompress(dst, src []byte) (int, error) {
	h, err := d.openFrame(src)
	if err != nil {
		return 0, err
	}
	if len(h.entries) != 1 {
		return 0, fmt.Errorf("frame has %d outputs; use multi-output decompression", len(h.entries))
	}

	payload, _, lensFree, err := decodeOutput(src, h, 0)
	if err != nil {
		return 0, err
	}
	if lensFree != nil {
		lensFree()
	}

	if len(dst) != len(payload) {
		return 0, fmt.Errorf("destination size %d does not match decompressed size %d", len(dst), len(payload))
	}

	return copy(dst, payload), nil
}

func (d *dctx) DecompressTypedBuffer(buf engine.TypedBuffer, src []byte) error {
	h, err := d.openFrame(src)
	if err != nil {
		return err
	}
	if len(h.entries) != 1 {
		return fmt.Errorf("frame has %d outputs; use multi-output decompression", len(h.entries))
	}

	tb, err := asBuiltinBuffer(buf)
	if err != nil {
		return err
	}

	return fillBuffer(tb, src, h, 0)
}

func (d *dctx) DecompressMultiTypedBuffer(bufs []engine.TypedBuffer, src []byte) error {
	h, err := d.openFrame(src)
	if err != nil {
		return err
	}
	if len(bufs) != len(h.entries) {
		return fmt.Errorf("frame has %d outputs, got %d buffers", len(h.entries), len(bufs))
	}

	tbs := make([]*typedBuffer, len(bufs))
	for i, buf := range bufs {
		tb, berr := asBuiltinBuffer(buf)
		if berr != nil {
			return fmt.Errorf("output %d: %w", i, berr)
		}
		tbs[i] = tb
	}

	for i, tb := range tbs {
		if err := fillBuffer(tb, src, h, i); err != nil {
			return err
		}
	}

	return nil
}

func (d *dctx) Free() {
	d.freed = true
}

// openFrame validates the integrity trailer and decodes the header.
func (d *dctx) openFrame(src []byte) (*frameHeader, error) {
	if d.freed {
		return nil, fmt.Errorf("decompression context used after free")
	}
	if len(src) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	h, err := parseHeader(src)
	if err != nil {
		return nil, err
	}
	if err := verifyChecksum(src); err != nil {
		return nil, err
	}

	return h, nil
}

func asBuiltinBuffer(buf engine.TypedBuffer) (*typedBuffer, error) {
	tb, ok := buf.(*typedBuffer)
	if !ok {
		return nil, fmt.Errorf("typed buffer was not created by this engine")
	}
	if tb.freed {
		return nil, fmt.Errorf("typed buffer used after free")
	}

	return tb, nil
}

func fillBuffer(tb *typedBuffer, frame []byte, h *frameHeader, i int) error {
	payload, lens, lensFree, err := decodeOutput(frame, h, i)
	if err != nil {
		return err
	}
	tb.fill(&h.entries[i], payload, lens, lensFree)

	return nil
}

// decodeOutput decompresses output i's sections and cross-checks the result
// against the header's declared shape. For string outputs it also unpacks
// the per-element lengths into a pooled slice; lensFree releases it.
func decodeOutput(frame []byte, h *frameHeader, i int) (payload []byte, lens []uint32, lensFree func(), err error) {
	e := &h.entries[i]
	codec, err := compress.GetCodec(e.codec)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("output %d: %w", i, err)
	}

	lensOff, payloadOff := h.sectionOffsets(i)

	payload, err = codec.Decompress(frame[payloadOff : payloadOff+int(e.payloadSize)]) //nolint:gosec
	if err != nil {
		return nil, nil, nil, fmt.Errorf("output %d: %w", i, err)
	}
	if uint64(len(payload)) != e.rawSize {
		return nil, nil, nil, fmt.Errorf("output %d: decompressed %d bytes, header declares %d", i, len(payload), e.rawSize)
	}

	if e.streamType != format.TypeString {
		if e.lensSize != 0 {
			return nil, nil, nil, fmt.Errorf("output %d: unexpected lengths section for %s stream", i, e.streamType)
		}

		return payload, nil, nil, nil
	}

	packed, err := codec.Decompress(frame[lensOff : lensOff+int(e.lensSize)]) //nolint:gosec
	if err != nil {
		return nil, nil, nil, fmt.Errorf("output %d: decompress lengths: %w", i, err)
	}
	// Derive the element count from the section itself; the header's
	// numElts is attacker-controlled and must not size an allocation.
	if len(packed)%4 != 0 || uint64(len(packed)/4) != e.numElts {
		return nil, nil, nil, fmt.Errorf("output %d: lengths section is %d bytes, header declares %d elements", i, len(packed), e.numElts)
	}

	lens, lensFree = pool.GetUint32Slice(len(packed) / 4)
	sum := uint64(0)
	for j := range lens {
		lens[j] = engineEndian.Uint32(packed[j*4 : j*4+4])
		sum += uint64(lens[j])
	}
	if sum != e.rawSize {
		lensFree()
		return nil, nil, nil, fmt.Errorf("output %d: string lengths sum %d does not match data size %d", i, sum, e.rawSize)
	}

	return payload, lens, lensFree, nil
}
