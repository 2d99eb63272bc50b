package frame

import (
	"fmt"

	"github.com/arloliu/zlframe/engine"
	"github.com/arloliu/zlframe/errs"
	"github.com/arloliu/zlframe/format"
	"github.com/arloliu/zlframe/handle"
	"github.com/arloliu/zlframe/internal/options"
)

// Option configures a Context at creation time.
type Option = options.Option[*Context]

// WithCompressionLevel sets the context's sticky compression level.
// Valid levels are 1 through 22.
func WithCompressionLevel(level int) Option {
	return options.New(func(c *Context) error {
		return c.SetCompressionLevel(level)
	})
}

// WithFormatVersion sets the encoding version the context writes.
func WithFormatVersion(version int) Option {
	return options.New(func(c *Context) error {
		return c.SetFormatVersion(version)
	})
}

// Context is a reusable compression context.
//
// It owns one engine CCtx plus a default generic compressor graph, and may
// additionally hold a shared reference to an attached custom graph. The
// attached graph stays alive at least as long as the context references it,
// even if its creator releases it first.
//
// A Context is single-writer: callers must not run two calls on it
// concurrently.
type Context struct {
	eng      engine.Engine
	cctx     engine.CCtx
	defGraph engine.Compressor
	attached *handle.Ref[engine.Compressor]
	closed   bool
}

// NewContext creates a compression context on eng.
//
// The context starts with the engine's generic compression graph selected;
// generic graph setup is best-effort and a failure there leaves the context
// usable with the engine's built-in defaults.
func NewContext(eng engine.Engine, opts ...Option) (*Context, error) {
	cctx, err := eng.NewCCtx()
	if err != nil {
		return nil, fmt.Errorf("%w: compression context: %v", errs.ErrResourceCreate, err)
	}
	if cctx == nil {
		return nil, fmt.Errorf("%w: compression context", errs.ErrResourceCreate)
	}

	c := &Context{eng: eng, cctx: cctx}
	c.setupDefaultGraph()

	// Pin the encoding version explicitly; best-effort, like the default
	// graph, since the engine already defaults to the same version.
	_ = cctx.SetParameter(format.CParamFormatVersion, eng.DefaultFormatVersion())

	if err := options.Apply(c, opts...); err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

// setupDefaultGraph attaches a generic compressor graph to the context.
// Failures are swallowed: the context still compresses with engine defaults.
func (c *Context) setupDefaultGraph() {
	def, err := c.eng.NewCompressor()
	if err != nil || def == nil {
		return
	}
	if err := def.SelectStartingGraph(engine.GraphGeneric); err != nil {
		def.Free()
		return
	}
	if err := c.cctx.RefCompressor(def); err != nil {
		def.Free()
		return
	}
	c.defGraph = def
}

// SetCompressionLevel sets the sticky compression level for subsequent
// compressions on this context.
func (c *Context) SetCompressionLevel(level int) error {
	if c.closed {
		return errs.ErrContextClosed
	}
	if err := c.cctx.SetParameter(format.CParamCompressionLevel, level); err != nil {
		return engineError("set compression level", err)
	}

	return nil
}

// SetFormatVersion sets the encoding version for subsequent compressions.
func (c *Context) SetFormatVersion(version int) error {
	if c.closed {
		return errs.ErrContextClosed
	}
	if err := c.cctx.SetParameter(format.CParamFormatVersion, version); err != nil {
		return engineError("set format version", err)
	}

	return nil
}

// AttachCompressor points the context at a custom compressor graph.
//
// The context retains a share of the graph before the engine starts reading
// through it, so the graph survives its creator's release for as long as
// the context is open. Attaching a new graph releases the share on the
// previously attached one; the engine reference is swapped first.
func (c *Context) AttachCompressor(ref *handle.Ref[engine.Compressor]) error {
	if c.closed {
		return errs.ErrContextClosed
	}
	if ref == nil || !ref.Retain() {
		return fmt.Errorf("%w: compressor already released", errs.ErrAttach)
	}

	if err := c.cctx.RefCompressor(ref.Value()); err != nil {
		ref.Release()
		return fmt.Errorf("%w: %v", errs.ErrAttach, err)
	}

	if c.attached != nil {
		c.attached.Release()
	}
	c.attached = ref

	return nil
}

// Close releases the context and its graph references. Close is idempotent;
// every other method fails with errs.ErrContextClosed afterwards.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	// The engine context goes first: it reads through the graph references,
	// so they must outlive it.
	c.cctx.Free()
	if c.attached != nil {
		c.attached.Release()
		c.attached = nil
	}
	if c.defGraph != nil {
		c.defGraph.Free()
		c.defGraph = nil
	}

	return nil
}

// DContext is a reusable decompression context. The same single-writer
// discipline as Context applies.
type DContext struct {
	eng    engine.Engine
	dctx   engine.DCtx
	closed bool
}

// NewDContext creates a decompression context on eng.
func NewDContext(eng engine.Engine) (*DContext, error) {
	dctx, err := eng.NewDCtx()
	if err != nil {
		return nil, fmt.Errorf("%w: decompression context: %v", errs.ErrResourceCreate, err)
	}
	if dctx == nil {
		return nil, fmt.Errorf("%w: decompression context", errs.ErrResourceCreate)
	}

	return &DContext{eng: eng, dctx: dctx}, nil
}

// Close releases the context. Idempotent.
func (d *DContext) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.dctx.Free()

	return nil
}

// engineError wraps an engine failure as errs.ErrEngine, preserving the
// engine's diagnostic verbatim when it provides one and falling back to the
// operation name when it does not.
func engineError(op string, err error) error {
	if err == nil || err.Error() == "" {
		return fmt.Errorf("%w: %s", errs.ErrEngine, op)
	}

	return fmt.Errorf("%w: %s: %v", errs.ErrEngine, op, err)
}
