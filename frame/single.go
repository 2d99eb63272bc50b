package frame

import (
	"fmt"

	"github.com/arloliu/zlframe/engine"
	"github.com/arloliu/zlframe/errs"
)

// Compress compresses src on this context and returns the frame.
func (c *Context) Compress(src []byte) ([]byte, error) {
	if c.closed {
		return nil, errs.ErrContextClosed
	}
	if len(src) == 0 {
		return nil, errs.ErrEmptyInput
	}

	dst := make([]byte, c.eng.CompressBound(len(src)))
	n, err := c.cctx.Compress(dst, src)
	if err != nil {
		return nil, engineError("compress", err)
	}

	return dst[:n], nil
}

// Decompress decompresses a single-output frame on this context and returns
// the original bytes.
func (d *DContext) Decompress(frame []byte) ([]byte, error) {
	if d.closed {
		return nil, errs.ErrContextClosed
	}
	if len(frame) == 0 {
		return nil, errs.ErrEmptyInput
	}

	size, err := d.eng.DecompressedSize(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMalformedFrame, err)
	}

	dst := make([]byte, size)
	n, err := d.dctx.Decompress(dst, frame)
	if err != nil {
		return nil, engineError("decompress", err)
	}

	return dst[:n], nil
}

// Compress is the one-shot form: it compresses src on a fresh context
// configured by opts and releases the context before returning.
func Compress(eng engine.Engine, src []byte, opts ...Option) ([]byte, error) {
	ctx, err := NewContext(eng, opts...)
	if err != nil {
		return nil, err
	}
	defer ctx.Close()

	return ctx.Compress(src)
}

// Decompress is the one-shot form of DContext.Decompress.
func Decompress(eng engine.Engine, frame []byte) ([]byte, error) {
	ctx, err := NewDContext(eng)
	if err != nil {
		return nil, err
	}
	defer ctx.Close()

	return ctx.Decompress(frame)
}
