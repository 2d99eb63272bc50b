package sddl

import (
	"fmt"

	"github.com/arloliu/zlframe/engine"
	"github.com/arloliu/zlframe/errs"
	"github.com/arloliu/zlframe/frame"
	"github.com/arloliu/zlframe/handle"
)

// Compressor is a custom compressor graph built from a compiled profile.
//
// Ownership is shared: the creator holds one reference, and every context
// the graph is attached to holds another. Close releases the creator's
// share only; the native graph is destroyed when the last referencing
// context closes.
type Compressor struct {
	ref    *handle.Ref[engine.Compressor]
	graph  engine.GraphID
	closed bool
}

// NewCompressor builds a compressor graph from compiled profile bytes and
// selects the graph the profile describes as the starting graph.
func NewCompressor(eng engine.Engine, compiled []byte) (*Compressor, error) {
	if len(compiled) == 0 {
		return nil, errs.ErrEmptyInput
	}

	comp, err := eng.NewCompressor()
	if err != nil || comp == nil {
		return nil, fmt.Errorf("%w: compressor: %v", errs.ErrResourceCreate, err)
	}

	graph, err := comp.SetupProfile(compiled)
	if err != nil {
		comp.Free()
		return nil, fmt.Errorf("%w: %v", errs.ErrEngine, err)
	}
	if err := comp.SelectStartingGraph(graph); err != nil {
		comp.Free()
		return nil, fmt.Errorf("%w: %v", errs.ErrEngine, err)
	}

	return &Compressor{
		ref:   handle.NewRef(comp, func(c engine.Compressor) { c.Free() }),
		graph: graph,
	}, nil
}

// CompileCompressor compiles description source and builds a compressor
// graph from the result in one step.
func CompileCompressor(eng engine.Engine, compiler engine.Compiler, source, label string) (*Compressor, error) {
	compiled, err := Compile(compiler, source, label)
	if err != nil {
		return nil, err
	}

	return NewCompressor(eng, compiled)
}

// GraphID returns the identifier of the compressor's starting graph.
func (c *Compressor) GraphID() engine.GraphID {
	return c.graph
}

// Ref returns the shared ownership handle contexts retain on attachment.
func (c *Compressor) Ref() *handle.Ref[engine.Compressor] {
	return c.ref
}

// Attach points ctx at this compressor graph. The context retains its own
// share, so the graph outlives a later Close here for as long as the
// context stays open.
func (c *Compressor) Attach(ctx *frame.Context) error {
	if c.closed {
		return errs.ErrCompressorClosed
	}

	return ctx.AttachCompressor(c.ref)
}

// Close releases the creator's share of the graph. Idempotent. Contexts
// already attached keep the graph alive until they close.
func (c *Compressor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.ref.Release()

	return nil
}
