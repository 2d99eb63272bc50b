// Package sddl compiles data-description source into compressor profiles
// and manages the lifecycle of the custom compressor graphs built from them.
//
// Compilers may wrap foreign front-ends that panic on malformed input;
// Compile is the boundary that converts any panic into errs.ErrCompile so
// no foreign failure escapes as a crash.
package sddl

import (
	"fmt"

	"github.com/arloliu/zlframe/engine"
	"github.com/arloliu/zlframe/errs"
)

// Compile translates description source into a profile blob for
// Compressor construction. label names the source in diagnostics.
//
// Compilation failures, including panics raised inside the compiler, are
// reported as errs.ErrCompile with the compiler's diagnostic preserved.
func Compile(compiler engine.Compiler, source, label string) (compiled []byte, err error) {
	if len(source) == 0 {
		return nil, errs.ErrEmptyInput
	}

	defer func() {
		if r := recover(); r != nil {
			compiled = nil
			err = fmt.Errorf("%w: %v", errs.ErrCompile, r)
		}
	}()

	compiled, err = compiler.Compile(source, label)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCompile, err)
	}
	if compiled == nil {
		return nil, fmt.Errorf("%w: compiler returned no output", errs.ErrCompile)
	}

	return compiled, nil
}
