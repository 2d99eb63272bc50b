package builtin

import (
	"fmt"

	"github.com/arloliu/zlframe/compress"
	"github.com/arloliu/zlframe/engine"
	"github.com/arloliu/zlframe/format"
	"github.com/arloliu/zlframe/internal/hash"
	"github.com/arloliu/zlframe/internal/pool"
)

// cctx is the builtin compression context. Parameters set through
// SetParameter persist across compressions unless sticky parameters are
// switched off; codec selection reads through the referenced compressor, or
// falls back to the generic graph when none is attached.
type cctx struct {
	params map[format.CParam]int
	comp   *compressor
	freed  bool
}

var _ engine.CCtx = (*cctx)(nil)

func newCCtx() *cctx {
	return &cctx{params: make(map[format.CParam]int)}
}

func (c *cctx) SetParameter(param format.CParam, value int) error {
	if c.freed {
		return fmt.Errorf("compression context used after free")
	}

	switch param {
	case format.CParamCompressionLevel:
		if value < 1 || value > 22 {
			return fmt.Errorf("compression level %d out of range 1..22", value)
		}
	case format.CParamFormatVersion:
		if value != FormatVersion1 {
			return fmt.Errorf("unsupported format version %d", value)
		}
	case format.CParamStickyParameters:
		if value != 0 && value != 1 {
			return fmt.Errorf("sticky parameters must be 0 or 1, got %d", value)
		}
	default:
		return fmt.Errorf("unknown parameter 0x%x", int(param))
	}

	c.params[param] = value

	return nil
}

func (c *cctx) RefCompressor(comp engine.Compressor) error {
	if c.freed {
		return fmt.Errorf("compression context used after free")
	}
	if comp == nil {
		c.comp = nil
		return nil
	}

	bc, ok := comp.(*compressor)
	if !ok {
		return fmt.Errorf("compressor was not created by this engine")
	}
	if bc.freed {
		return fmt.Errorf("compressor used after free")
	}
	c.comp = bc

	return nil
}

func (c *cctx) Compress(dst, src []byte) (int, error) {
	if c.freed {
		return 0, fmt.Errorf("compression context used after free")
	}
	if len(src) == 0 {
		return 0, fmt.Errorf("empty input")
	}

	ref := &typedRef{typ: format.TypeSerial, data: src, width: 1}

	return c.compressStreams(dst, []*typedRef{ref})
}

func (c *cctx) CompressTypedRef(dst []byte, ref engine.TypedRef) (int, error) {
	if c.freed {
		return 0, fmt.Errorf("compression context used after free")
	}

	tr, err := asBuiltinRef(ref)
	if err != nil {
		return 0, err
	}

	return c.compressStreams(dst, []*typedRef{tr})
}

func (c *cctx) CompressMultiTypedRef(dst []byte, refs []engine.TypedRef) (int, error) {
	if c.freed {
		return 0, fmt.Errorf("compression context used after free")
	}
	if len(refs) == 0 {
		return 0, fmt.Errorf("no input streams")
	}

	trs := make([]*typedRef, len(refs))
	for i, ref := range refs {
		tr, err := asBuiltinRef(ref)
		if err != nil {
			return 0, fmt.Errorf("stream %d: %w", i, err)
		}
		trs[i] = tr
	}

	return c.compressStreams(dst, trs)
}

func (c *cctx) Free() {
	c.freed = true
	c.params = nil
	c.comp = nil
}

func asBuiltinRef(ref engine.TypedRef) (*typedRef, error) {
	tr, ok := ref.(*typedRef)
	if !ok {
		return nil, fmt.Errorf("typed reference was not created by this engine")
	}
	if tr.freed {
		return nil, fmt.Errorf("typed reference used after free")
	}

	return tr, nil
}

// compressStreams packs the referenced streams, in order, into one frame.
func (c *cctx) compressStreams(dst []byte, refs []*typedRef) (int, error) {
	prof := genericProfile()
	if c.comp != nil {
		var err error
		prof, err = c.comp.startingProfile()
		if err != nil {
			return 0, err
		}
	}

	ctxLevel := c.params[format.CParamCompressionLevel]
	version := c.params[format.CParamFormatVersion]
	if version == 0 {
		version = FormatVersion1
	}

	h := &frameHeader{
		formatVersion: version,
		entries:       make([]outputEntry, len(refs)),
	}
	payloads := make([][]byte, len(refs))
	lensBlobs := make([][]byte, len(refs))

	for i, r := range refs {
		codecType, level := prof.rule(i, ctxLevel)
		codec, err := compress.CreateCodec(codecType, level)
		if err != nil {
			return 0, fmt.Errorf("stream %d: %w", i, err)
		}

		var packedLens []byte
		if r.typ == format.TypeString {
			sum := uint64(0)
			for _, l := range r.lens {
				sum += uint64(l)
			}
			if sum != uint64(len(r.data)) {
				return 0, fmt.Errorf("stream %d: string lengths sum %d does not match data size %d", i, sum, len(r.data))
			}

			packedLens = packLens(r.lens)
			lensBlobs[i], err = codec.Compress(packedLens)
			if err != nil {
				return 0, fmt.Errorf("stream %d: compress lengths: %w", i, err)
			}
		}

		payloads[i], err = codec.Compress(r.data)
		if err != nil {
			return 0, fmt.Errorf("stream %d: %w", i, err)
		}

		// LZ4 block compression signals incompressible input with an empty
		// output; store such streams uncompressed instead.
		if (len(payloads[i]) == 0 && len(r.data) > 0) ||
			(len(lensBlobs[i]) == 0 && len(packedLens) > 0) {
			codecType = format.CompressionNone
			payloads[i] = r.data
			lensBlobs[i] = packedLens
		}

		h.entries[i] = outputEntry{
			streamType:  r.typ,
			codec:       codecType,
			eltWidth:    uint32(r.width), //nolint:gosec
			numElts:     r.numElts(),
			rawSize:     uint64(len(r.data)),
			payloadSize: uint64(len(payloads[i])),
			lensSize:    uint64(len(lensBlobs[i])),
		}
	}

	total := headerSize(len(refs)) + frameTrailerSize
	for i := range refs {
		total += len(lensBlobs[i]) + len(payloads[i])
	}
	if len(dst) < total {
		return 0, fmt.Errorf("destination buffer too small: %d < %d", len(dst), total)
	}

	fb := pool.GetFrameBuffer()
	defer pool.PutFrameBuffer(fb)

	digest := hash.NewDigest()
	fb.B = h.appendHeader(fb.B)
	digest.Write(fb.B)
	for i := range refs {
		fb.MustWrite(lensBlobs[i])
		digest.Write(lensBlobs[i])
		fb.MustWrite(payloads[i])
		digest.Write(payloads[i])
	}
	fb.B = engineEndian.AppendUint64(fb.B, digest.Sum64())

	n := copy(dst, fb.B)
	c.resetNonSticky()

	return n, nil
}

// resetNonSticky drops the level and format version after a compression when
// sticky parameters were explicitly disabled.
func (c *cctx) resetNonSticky() {
	if v, ok := c.params[format.CParamStickyParameters]; ok && v == 0 {
		delete(c.params, format.CParamCompressionLevel)
		delete(c.params, format.CParamFormatVersion)
	}
}

// packLens encodes per-element lengths as little-endian uint32 values.
func packLens(lens []uint32) []byte {
	packed := make([]byte, 0, len(lens)*4)
	for _, l := range lens {
		packed = engineEndian.AppendUint32(packed, l)
	}

	return packed
}
