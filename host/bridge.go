package host

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/zlframe/engine"
	"github.com/arloliu/zlframe/engine/builtin"
	"github.com/arloliu/zlframe/errs"
	"github.com/arloliu/zlframe/frame"
	"github.com/arloliu/zlframe/handle"
	"github.com/arloliu/zlframe/internal/options"
	"github.com/arloliu/zlframe/sddl"
	"github.com/arloliu/zlframe/typed"
)

// Option configures a Bridge at creation time.
type Option = options.Option[*Bridge]

// WithLogger sets the bridge's logger. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return options.New(func(b *Bridge) error {
		if log == nil {
			return fmt.Errorf("logger must not be nil")
		}
		b.log = log

		return nil
	})
}

// WithCompiler sets the description-language compiler the bridge uses.
// The default is the builtin engine's compiler.
func WithCompiler(compiler engine.Compiler) Option {
	return options.New(func(b *Bridge) error {
		if compiler == nil {
			return fmt.Errorf("compiler must not be nil")
		}
		b.compiler = compiler

		return nil
	})
}

// Bridge is one host-facing instance of the engine: handle tables for the
// three resource kinds plus the operation set hosts call through.
//
// Operations on distinct handles may run concurrently; operations on the
// same handle must be serialized by the host, matching the underlying
// context discipline.
type Bridge struct {
	eng      engine.Engine
	compiler engine.Compiler
	log      *zap.Logger

	cctxs *handle.Table[*frame.Context]
	dctxs *handle.Table[*frame.DContext]
	comps *handle.Table[*sddl.Compressor]
}

// New creates a bridge on eng.
func New(eng engine.Engine, opts ...Option) (*Bridge, error) {
	b := &Bridge{
		eng:      eng,
		compiler: builtin.NewCompiler(),
		log:      zap.NewNop(),
		cctxs:    handle.NewTable[*frame.Context](),
		dctxs:    handle.NewTable[*frame.DContext](),
		comps:    handle.NewTable[*sddl.Compressor](),
	}
	if err := options.Apply(b, opts...); err != nil {
		return nil, err
	}

	return b, nil
}

// Version returns the engine version string.
func (b *Bridge) Version() string {
	return b.eng.Version()
}

// CompressBound returns an upper bound on the compressed size of srcSize
// input bytes.
func (b *Bridge) CompressBound(srcSize int) int {
	return b.eng.CompressBound(srcSize)
}

// Compress compresses src in one shot, without a context handle.
func (b *Bridge) Compress(src []byte) ([]byte, error) {
	return frame.Compress(b.eng, src)
}

// Decompress decompresses a single-output frame in one shot.
func (b *Bridge) Decompress(frameData []byte) ([]byte, error) {
	return frame.Decompress(b.eng, frameData)
}

// NewCCtx creates a compression context and returns its handle.
func (b *Bridge) NewCCtx(opts ...frame.Option) (uint64, error) {
	ctx, err := frame.NewContext(b.eng, opts...)
	if err != nil {
		return 0, err
	}

	h := b.cctxs.Put(ctx)
	if h == 0 {
		ctx.Close()
		return 0, errs.ErrContextClosed
	}
	b.log.Debug("cctx created", zap.Uint64("handle", h))

	return h, nil
}

// FreeCCtx releases a compression context handle.
func (b *Bridge) FreeCCtx(h uint64) error {
	ctx, ok := b.cctxs.Remove(h)
	if !ok {
		return fmt.Errorf("%w: cctx %d", errs.ErrInvalidHandle, h)
	}
	b.log.Debug("cctx freed", zap.Uint64("handle", h))

	return ctx.Close()
}

// NewDCtx creates a decompression context and returns its handle.
func (b *Bridge) NewDCtx() (uint64, error) {
	ctx, err := frame.NewDContext(b.eng)
	if err != nil {
		return 0, err
	}

	h := b.dctxs.Put(ctx)
	if h == 0 {
		ctx.Close()
		return 0, errs.ErrContextClosed
	}
	b.log.Debug("dctx created", zap.Uint64("handle", h))

	return h, nil
}

// FreeDCtx releases a decompression context handle.
func (b *Bridge) FreeDCtx(h uint64) error {
	ctx, ok := b.dctxs.Remove(h)
	if !ok {
		return fmt.Errorf("%w: dctx %d", errs.ErrInvalidHandle, h)
	}
	b.log.Debug("dctx freed", zap.Uint64("handle", h))

	return ctx.Close()
}

// SetCompressionLevel sets the sticky compression level on a context handle.
func (b *Bridge) SetCompressionLevel(h uint64, level int) error {
	ctx, err := b.cctx(h)
	if err != nil {
		return err
	}

	return ctx.SetCompressionLevel(level)
}

// SetFormatVersion sets the encoding version on a context handle.
func (b *Bridge) SetFormatVersion(h uint64, version int) error {
	ctx, err := b.cctx(h)
	if err != nil {
		return err
	}

	return ctx.SetFormatVersion(version)
}

// CompressWith compresses src on a context handle.
func (b *Bridge) CompressWith(h uint64, src []byte) ([]byte, error) {
	ctx, err := b.cctx(h)
	if err != nil {
		return nil, err
	}

	out, err := ctx.Compress(src)
	if err != nil {
		b.log.Warn("compress failed", zap.Uint64("handle", h), zap.Error(err))
		return nil, err
	}
	b.log.Debug("compress",
		zap.Uint64("handle", h),
		zap.Int("src_size", len(src)),
		zap.Int("frame_size", len(out)))

	return out, nil
}

// DecompressWith decompresses a single-output frame on a context handle.
func (b *Bridge) DecompressWith(h uint64, frameData []byte) ([]byte, error) {
	ctx, err := b.dctx(h)
	if err != nil {
		return nil, err
	}

	out, err := ctx.Decompress(frameData)
	if err != nil {
		b.log.Warn("decompress failed", zap.Uint64("handle", h), zap.Error(err))
		return nil, err
	}

	return out, nil
}

// CompressTyped compresses one typed item on a context handle.
func (b *Bridge) CompressTyped(h uint64, item Item) ([]byte, error) {
	ctx, err := b.cctx(h)
	if err != nil {
		return nil, err
	}

	s, err := item.stream()
	if err != nil {
		return nil, err
	}

	return ctx.CompressTyped(s)
}

// CompressMulti packs the items, in order, into one multi-output frame.
func (b *Bridge) CompressMulti(h uint64, items []Item) ([]byte, error) {
	ctx, err := b.cctx(h)
	if err != nil {
		return nil, err
	}

	streams := make([]typed.Stream, len(items))
	for i, item := range items {
		s, serr := item.stream()
		if serr != nil {
			return nil, fmt.Errorf("stream %d: %w", i, serr)
		}
		streams[i] = s
	}

	return ctx.CompressMulti(streams)
}

// DecompressTyped decompresses a single-output frame into an item.
func (b *Bridge) DecompressTyped(h uint64, frameData []byte) (Item, error) {
	ctx, err := b.dctx(h)
	if err != nil {
		return Item{}, err
	}

	out, err := ctx.DecompressTyped(frameData)
	if err != nil {
		return Item{}, err
	}

	return itemFromOutput(out), nil
}

// DecompressMulti decompresses every output of a frame, in frame order.
func (b *Bridge) DecompressMulti(h uint64, frameData []byte) ([]Item, error) {
	ctx, err := b.dctx(h)
	if err != nil {
		return nil, err
	}

	outs, err := ctx.DecompressMulti(frameData)
	if err != nil {
		return nil, err
	}

	items := make([]Item, len(outs))
	for i, out := range outs {
		items[i] = itemFromOutput(out)
	}

	return items, nil
}

// FrameInfo reads a frame's metadata without decompressing it.
func (b *Bridge) FrameInfo(frameData []byte) (*frame.Info, error) {
	return frame.Inspect(b.eng, frameData)
}

// Compile translates description source into a compiled profile.
func (b *Bridge) Compile(source, label string) ([]byte, error) {
	compiled, err := sddl.Compile(b.compiler, source, label)
	if err != nil {
		b.log.Warn("compile failed", zap.String("label", label), zap.Error(err))
		return nil, err
	}

	return compiled, nil
}

// NewCompressor builds a compressor graph from a compiled profile and
// returns its handle.
func (b *Bridge) NewCompressor(compiled []byte) (uint64, error) {
	comp, err := sddl.NewCompressor(b.eng, compiled)
	if err != nil {
		return 0, err
	}

	h := b.comps.Put(comp)
	if h == 0 {
		comp.Close()
		return 0, errs.ErrCompressorClosed
	}
	b.log.Debug("compressor created", zap.Uint64("handle", h))

	return h, nil
}

// FreeCompressor releases a compressor handle. Contexts still referencing
// the graph keep it alive until they close.
func (b *Bridge) FreeCompressor(h uint64) error {
	comp, ok := b.comps.Remove(h)
	if !ok {
		return fmt.Errorf("%w: compressor %d", errs.ErrInvalidHandle, h)
	}
	b.log.Debug("compressor freed", zap.Uint64("handle", h))

	return comp.Close()
}

// AttachCompressor points a compression context at a compressor graph.
func (b *Bridge) AttachCompressor(ctxHandle, compHandle uint64) error {
	ctx, err := b.cctx(ctxHandle)
	if err != nil {
		return err
	}

	comp, ok := b.comps.Get(compHandle)
	if !ok {
		return fmt.Errorf("%w: compressor %d", errs.ErrInvalidHandle, compHandle)
	}

	if err := comp.Attach(ctx); err != nil {
		return err
	}
	b.log.Debug("compressor attached",
		zap.Uint64("cctx", ctxHandle),
		zap.Uint64("compressor", compHandle))

	return nil
}

// Close releases every live handle and marks the bridge closed. Resource
// creation fails afterwards.
func (b *Bridge) Close() {
	b.cctxs.Drain(func(ctx *frame.Context) { _ = ctx.Close() })
	b.dctxs.Drain(func(ctx *frame.DContext) { _ = ctx.Close() })
	b.comps.Drain(func(comp *sddl.Compressor) { _ = comp.Close() })
	b.log.Debug("bridge closed")
}

func (b *Bridge) cctx(h uint64) (*frame.Context, error) {
	ctx, ok := b.cctxs.Get(h)
	if !ok {
		return nil, fmt.Errorf("%w: cctx %d", errs.ErrInvalidHandle, h)
	}

	return ctx, nil
}

func (b *Bridge) dctx(h uint64) (*frame.DContext, error) {
	ctx, ok := b.dctxs.Get(h)
	if !ok {
		return nil, fmt.Errorf("%w: dctx %d", errs.ErrInvalidHandle, h)
	}

	return ctx, nil
}
