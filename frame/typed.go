package frame

import (
	"fmt"

	"github.com/arloliu/zlframe/errs"
	"github.com/arloliu/zlframe/typed"
)

// CompressTyped compresses one typed stream into a single-output frame.
//
// The stream is validated locally before any native construction; the typed
// reference built from it is released only after the engine call returns.
func (c *Context) CompressTyped(s typed.Stream) ([]byte, error) {
	if c.closed {
		return nil, errs.ErrContextClosed
	}
	if len(s.Data) == 0 {
		return nil, errs.ErrEmptyInput
	}

	ref, err := typed.BuildRef(c.eng, s)
	if err != nil {
		return nil, err
	}

	dst := make([]byte, c.eng.CompressBound(ref.ByteSize()))
	n, err := c.cctx.CompressTypedRef(dst, ref)
	ref.Free()
	if err != nil {
		return nil, engineError("compress typed", err)
	}

	return dst[:n], nil
}

// DecompressTyped decompresses a single-output frame and returns the
// reconstructed stream with its type and shape metadata. The returned
// Output owns its memory; the native buffer is released before returning.
func (d *DContext) DecompressTyped(frame []byte) (typed.Output, error) {
	if d.closed {
		return typed.Output{}, errs.ErrContextClosed
	}
	if len(frame) == 0 {
		return typed.Output{}, errs.ErrEmptyInput
	}

	buf, err := d.eng.NewTypedBuffer()
	if err != nil || buf == nil {
		return typed.Output{}, fmt.Errorf("%w: typed buffer: %v", errs.ErrResourceCreate, err)
	}

	if err := d.dctx.DecompressTypedBuffer(buf, frame); err != nil {
		buf.Free()
		return typed.Output{}, engineError("decompress typed", err)
	}

	out := typed.DecodeBuffer(buf)
	buf.Free()

	return out, nil
}
