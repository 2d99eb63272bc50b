// Package frame is the user-facing compression surface of zlframe.
//
// A Context wraps one engine compression context: sticky parameters, an
// optional attached compressor graph, and the single-stream, typed and
// multi-stream compression entry points. A DContext wraps one decompression
// context. Both are reusable across calls and single-writer: callers
// serialize calls per context. One-shot helpers construct and tear down a
// context per call for callers without reuse needs.
//
// Frame introspection (Inspect) reads per-output metadata without
// decompressing; queries that fail inside the engine degrade to unknown
// sentinels instead of failing the whole inspection.
//
// Engine failures surface as errs.ErrEngine with the engine's own
// diagnostic preserved verbatim in the wrapped message. Validation failures
// are diagnosed locally before any engine call and carry the errs
// validation sentinels.
package frame
