// Package builtin is the default, pure-Go codec engine.
//
// It implements the engine package interfaces with a self-describing
// multi-output frame container: a fixed little-endian header, one entry per
// output stream (type, codec, element width, element count, raw and
// compressed sizes), the per-output payloads, and an xxHash64 integrity
// trailer. Each payload (and, for string outputs, the packed length array)
// is compressed independently with a block codec from the compress package.
//
// Codec selection is graph-driven: a compression context without a
// referenced compressor uses Zstd at the context's sticky compression
// level; a referenced compressor applies its selected profile, which can
// override codec and level globally or per stream index. Profiles are built
// from layout-description source by the Compiler in this package.
//
// The container layout and the profile blob encoding are internal to this
// package; nothing above the engine boundary depends on them.
package builtin
