package frame

import (
	"fmt"

	"github.com/arloliu/zlframe/engine"
	"github.com/arloliu/zlframe/errs"
	"github.com/arloliu/zlframe/typed"
)

// CompressMulti packs the given streams, in order, into one multi-output
// frame. Output index i of the frame corresponds to streams[i].
//
// Reference construction is fail-fast: the first stream that fails
// validation or native construction aborts the call with its index in the
// error, and every reference built so far is released. On the success path
// all references stay alive until the engine call returns.
func (c *Context) CompressMulti(streams []typed.Stream) ([]byte, error) {
	if c.closed {
		return nil, errs.ErrContextClosed
	}
	if len(streams) == 0 {
		return nil, fmt.Errorf("%w: no streams", errs.ErrEmptyInput)
	}

	refs := make([]engine.TypedRef, 0, len(streams))
	freeAll := func() {
		for _, ref := range refs {
			ref.Free()
		}
	}

	bound := 0
	for i, s := range streams {
		if len(s.Data) == 0 {
			freeAll()
			return nil, fmt.Errorf("stream %d: %w", i, errs.ErrEmptyInput)
		}

		ref, err := typed.BuildRef(c.eng, s)
		if err != nil {
			freeAll()
			return nil, fmt.Errorf("stream %d: %w", i, err)
		}
		refs = append(refs, ref)
		bound += c.eng.CompressBound(ref.ByteSize())
	}

	dst := make([]byte, bound)
	n, err := c.cctx.CompressMultiTypedRef(dst, refs)
	freeAll()
	if err != nil {
		return nil, engineError("compress multi", err)
	}

	return dst[:n], nil
}

// DecompressMulti decompresses every output of a frame, in frame order.
// Each returned Output owns its memory; all native buffers are released
// before returning.
func (d *DContext) DecompressMulti(frame []byte) ([]typed.Output, error) {
	if d.closed {
		return nil, errs.ErrContextClosed
	}
	if len(frame) == 0 {
		return nil, errs.ErrEmptyInput
	}

	count, err := d.eng.NumOutputs(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMalformedFrame, err)
	}

	bufs := make([]engine.TypedBuffer, 0, count)
	freeAll := func() {
		for _, buf := range bufs {
			buf.Free()
		}
	}

	for i := 0; i < count; i++ {
		buf, berr := d.eng.NewTypedBuffer()
		if berr != nil || buf == nil {
			freeAll()
			return nil, fmt.Errorf("%w: typed buffer %d: %v", errs.ErrResourceCreate, i, berr)
		}
		bufs = append(bufs, buf)
	}

	if err := d.dctx.DecompressMultiTypedBuffer(bufs, frame); err != nil {
		freeAll()
		return nil, engineError("decompress multi", err)
	}

	outs := make([]typed.Output, count)
	for i, buf := range bufs {
		outs[i] = typed.DecodeBuffer(buf)
	}
	freeAll()

	return outs, nil
}
