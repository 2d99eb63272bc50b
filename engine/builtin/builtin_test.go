package builtin

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/zlframe/engine"
	"github.com/arloliu/zlframe/format"
	"github.com/arloliu/zlframe/internal/hash"
)

func compressSerial(t *testing.T, eng *Engine, src []byte) []byte {
	t.Helper()

	cctx, err := eng.NewCCtx()
	require.NoError(t, err)
	defer cctx.Free()

	dst := make([]byte, eng.CompressBound(len(src)))
	n, err := cctx.Compress(dst, src)
	require.NoError(t, err)

	return dst[:n]
}

func TestEngine_Version(t *testing.T) {
	require.Regexp(t, `^\d+\.\d+\.\d+$`, New().Version())
}

func TestEngine_CompressBound(t *testing.T) {
	eng := New()

	// Monotone and always larger than any frame the context produces.
	prev := 0
	for _, size := range []int{0, 1, 100, 4096, 1 << 20} {
		bound := eng.CompressBound(size)
		require.Greater(t, bound, size)
		require.GreaterOrEqual(t, bound, prev)
		prev = bound
	}
}

func TestSerial_RoundTrip(t *testing.T) {
	eng := New()
	src := bytes.Repeat([]byte("serial payload with repetition "), 100)

	frame := compressSerial(t, eng, src)
	require.Less(t, len(frame), len(src))

	size, err := eng.DecompressedSize(frame)
	require.NoError(t, err)
	require.Equal(t, len(src), size)

	dctx, err := eng.NewDCtx()
	require.NoError(t, err)
	defer dctx.Free()

	dst := make([]byte, size)
	n, err := dctx.Decompress(dst, frame)
	require.NoError(t, err)
	require.Equal(t, src, dst[:n])
}

func TestCompress_EmptyInput(t *testing.T) {
	eng := New()
	cctx, err := eng.NewCCtx()
	require.NoError(t, err)
	defer cctx.Free()

	_, err = cctx.Compress(make([]byte, 128), nil)
	require.Error(t, err)
}

func TestCompress_DestinationTooSmall(t *testing.T) {
	eng := New()
	cctx, err := eng.NewCCtx()
	require.NoError(t, err)
	defer cctx.Free()

	_, err = cctx.Compress(make([]byte, 4), []byte("payload"))
	require.ErrorContains(t, err, "destination buffer too small")
}

func TestTyped_RoundTrip(t *testing.T) {
	eng := New()

	tests := []struct {
		name      string
		wantType  format.StreamType
		wantWidth int
		wantElts  int
		data      []byte
		lens      []uint32
	}{
		{
			name:      "numeric width 8",
			data:      bytes.Repeat([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 50),
			wantType:  format.TypeNumeric,
			wantWidth: 8,
			wantElts:  50,
		},
		{
			name:      "struct width 20",
			data:      bytes.Repeat([]byte("record-of-20-bytes!!"), 8),
			wantType:  format.TypeStruct,
			wantWidth: 20,
			wantElts:  8,
		},
		{
			name:      "string fields",
			data:      []byte("foobarbazit"),
			lens:      []uint32{3, 3, 3, 2},
			wantType:  format.TypeString,
			wantWidth: 1,
			wantElts:  4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				ref engine.TypedRef
				err error
			)
			switch tt.wantType {
			case format.TypeNumeric:
				ref, err = eng.NewNumericRef(tt.data, tt.wantWidth)
			case format.TypeStruct:
				ref, err = eng.NewStructRef(tt.data, tt.wantWidth)
			case format.TypeString:
				ref, err = eng.NewStringRef(tt.data, tt.lens)
			}
			require.NoError(t, err)
			defer ref.Free()

			cctx, err := eng.NewCCtx()
			require.NoError(t, err)
			defer cctx.Free()

			dst := make([]byte, eng.CompressBound(len(tt.data)))
			n, err := cctx.CompressTypedRef(dst, ref)
			require.NoError(t, err)
			frame := dst[:n]

			dctx, err := eng.NewDCtx()
			require.NoError(t, err)
			defer dctx.Free()

			buf, err := eng.NewTypedBuffer()
			require.NoError(t, err)
			defer buf.Free()

			require.NoError(t, dctx.DecompressTypedBuffer(buf, frame))
			require.Equal(t, tt.wantType, buf.Type())
			require.Equal(t, tt.wantWidth, buf.EltWidth())
			require.Equal(t, tt.wantElts, buf.NumElts())
			require.Equal(t, tt.data, buf.Data())
			if tt.wantType == format.TypeString {
				require.Equal(t, tt.lens, buf.StringLens())
			} else {
				require.Nil(t, buf.StringLens())
			}
		})
	}
}

func TestCompressBound_CoversStringLengths(t *testing.T) {
	eng := New()

	// 8192 one-byte fields make the packed lengths section four times the
	// payload; the bound has to fit it even when a graph stores both
	// sections uncompressed.
	lens := make([]uint32, 8192)
	for i := range lens {
		lens[i] = 1
	}

	stored := bytes.Repeat([]byte("x"), len(lens))

	// Pseudo-random bytes defeat LZ4 block compression, forcing the
	// stored-raw fallback for both sections.
	noisy := make([]byte, len(lens))
	seed := uint32(2463534242)
	for i := range noisy {
		seed = seed*1664525 + 1013904223
		noisy[i] = byte(seed >> 24)
	}

	tests := []struct {
		name   string
		layout string
		data   []byte
	}{
		{name: "stored", layout: "codec none\n", data: stored},
		{name: "lz4 incompressible", layout: "codec lz4\n", data: noisy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := eng.NewStringRef(tt.data, lens)
			require.NoError(t, err)
			defer ref.Free()

			compiled, err := NewCompiler().Compile(tt.layout, "layout")
			require.NoError(t, err)

			comp, err := eng.NewCompressor()
			require.NoError(t, err)
			defer comp.Free()
			id, err := comp.SetupProfile(compiled)
			require.NoError(t, err)
			require.NoError(t, comp.SelectStartingGraph(id))

			cctx, err := eng.NewCCtx()
			require.NoError(t, err)
			defer cctx.Free()
			require.NoError(t, cctx.RefCompressor(comp))

			dst := make([]byte, eng.CompressBound(ref.ByteSize()))
			n, err := cctx.CompressTypedRef(dst, ref)
			require.NoError(t, err)

			dctx, err := eng.NewDCtx()
			require.NoError(t, err)
			defer dctx.Free()

			buf, err := eng.NewTypedBuffer()
			require.NoError(t, err)
			defer buf.Free()

			require.NoError(t, dctx.DecompressTypedBuffer(buf, dst[:n]))
			require.Equal(t, tt.data, buf.Data())
			require.Equal(t, lens, buf.StringLens())
		})
	}
}

func TestMulti_RoundTripPreservesOrder(t *testing.T) {
	eng := New()

	numeric := bytes.Repeat([]byte{9, 8, 7, 6}, 25)
	serial := []byte("opaque section")
	strData := []byte("alphabetagamma")
	strLens := []uint32{5, 4, 5}

	r0, err := eng.NewNumericRef(numeric, 4)
	require.NoError(t, err)
	r1, err := eng.NewSerialRef(serial)
	require.NoError(t, err)
	r2, err := eng.NewStringRef(strData, strLens)
	require.NoError(t, err)

	cctx, err := eng.NewCCtx()
	require.NoError(t, err)
	defer cctx.Free()

	dst := make([]byte, eng.CompressBound(len(numeric)+len(serial)+len(strData))*3)
	n, err := cctx.CompressMultiTypedRef(dst, []engine.TypedRef{r0, r1, r2})
	require.NoError(t, err)
	frame := dst[:n]
	r0.Free()
	r1.Free()
	r2.Free()

	count, err := eng.NumOutputs(frame)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	dctx, err := eng.NewDCtx()
	require.NoError(t, err)
	defer dctx.Free()

	bufs := make([]engine.TypedBuffer, count)
	for i := range bufs {
		bufs[i], err = eng.NewTypedBuffer()
		require.NoError(t, err)
		defer bufs[i].Free()
	}
	require.NoError(t, dctx.DecompressMultiTypedBuffer(bufs, frame))

	require.Equal(t, format.TypeNumeric, bufs[0].Type())
	require.Equal(t, numeric, bufs[0].Data())
	require.Equal(t, format.TypeSerial, bufs[1].Type())
	require.Equal(t, serial, bufs[1].Data())
	require.Equal(t, format.TypeString, bufs[2].Type())
	require.Equal(t, strData, bufs[2].Data())
	require.Equal(t, strLens, bufs[2].StringLens())

	// A multi-output frame is not decodable through the single-output path.
	_, err = dctx.Decompress(make([]byte, len(numeric)), frame)
	require.ErrorContains(t, err, "outputs")
}

func TestMulti_BufferCountMismatch(t *testing.T) {
	eng := New()
	frame := compressSerial(t, eng, []byte("one output"))

	dctx, err := eng.NewDCtx()
	require.NoError(t, err)
	defer dctx.Free()

	buf1, err := eng.NewTypedBuffer()
	require.NoError(t, err)
	defer buf1.Free()
	buf2, err := eng.NewTypedBuffer()
	require.NoError(t, err)
	defer buf2.Free()

	err = dctx.DecompressMultiTypedBuffer([]engine.TypedBuffer{buf1, buf2}, frame)
	require.ErrorContains(t, err, "got 2 buffers")
}

func TestStringRef_LengthSumMismatch(t *testing.T) {
	eng := New()

	_, err := eng.NewStringRef([]byte("abcdef"), []uint32{3, 2})
	require.ErrorContains(t, err, "lengths sum")
}

func TestChecksum_CorruptionDetected(t *testing.T) {
	eng := New()
	frame := compressSerial(t, eng, bytes.Repeat([]byte("x"), 500))

	// Flip one payload byte; the header still parses but the trailer no
	// longer matches.
	corrupted := append([]byte(nil), frame...)
	corrupted[len(corrupted)-frameTrailerSize-1] ^= 0xFF

	dctx, err := eng.NewDCtx()
	require.NoError(t, err)
	defer dctx.Free()

	_, err = dctx.Decompress(make([]byte, 500), corrupted)
	require.ErrorContains(t, err, "checksum")
}

func TestDecompress_HugeElementCountRejected(t *testing.T) {
	eng := New()

	// A structurally valid, correctly checksummed frame whose header
	// declares an element count no real lengths section could back. The
	// count must surface as a malformed-frame error, not size an
	// allocation.
	payload := []byte("abcd")
	h := &frameHeader{
		formatVersion: FormatVersion1,
		entries: []outputEntry{{
			streamType:  format.TypeString,
			codec:       format.CompressionNone,
			eltWidth:    1,
			numElts:     1 << 62,
			rawSize:     uint64(len(payload)),
			payloadSize: uint64(len(payload)),
		}},
	}
	frame := h.appendHeader(nil)
	frame = append(frame, payload...)
	frame = engineEndian.AppendUint64(frame, hash.Checksum(frame))

	dctx, err := eng.NewDCtx()
	require.NoError(t, err)
	defer dctx.Free()

	buf, err := eng.NewTypedBuffer()
	require.NoError(t, err)
	defer buf.Free()

	require.NotPanics(t, func() {
		err = dctx.DecompressTypedBuffer(buf, frame)
	})
	require.ErrorContains(t, err, "lengths section")
}

func TestParseHeader_Malformed(t *testing.T) {
	eng := New()

	tests := []struct {
		name  string
		frame []byte
	}{
		{name: "empty", frame: nil},
		{name: "truncated", frame: []byte{0x5A, 0x4C}},
		{name: "bad magic", frame: make([]byte, 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.NumOutputs(tt.frame)
			require.Error(t, err)
			_, err = eng.OpenFrameInfo(tt.frame)
			require.Error(t, err)
		})
	}
}

func TestFrameInfo_Queries(t *testing.T) {
	eng := New()

	data := bytes.Repeat([]byte{1, 2, 3, 4}, 30)
	ref, err := eng.NewNumericRef(data, 4)
	require.NoError(t, err)
	defer ref.Free()

	cctx, err := eng.NewCCtx()
	require.NoError(t, err)
	defer cctx.Free()

	dst := make([]byte, eng.CompressBound(len(data)))
	n, err := cctx.CompressTypedRef(dst, ref)
	require.NoError(t, err)

	fi, err := eng.OpenFrameInfo(dst[:n])
	require.NoError(t, err)

	version, err := fi.FormatVersion()
	require.NoError(t, err)
	require.Equal(t, FormatVersion1, version)

	count, err := fi.NumOutputs()
	require.NoError(t, err)
	require.Equal(t, 1, count)

	sType, err := fi.OutputType(0)
	require.NoError(t, err)
	require.Equal(t, format.TypeNumeric, sType)

	size, err := fi.DecompressedSize(0)
	require.NoError(t, err)
	require.Equal(t, len(data), size)

	elts, err := fi.NumElts(0)
	require.NoError(t, err)
	require.Equal(t, 30, elts)

	// Out-of-range queries fail independently; the info stays usable.
	_, err = fi.OutputType(5)
	require.Error(t, err)
	_, err = fi.NumOutputs()
	require.NoError(t, err)

	fi.Free()
	_, err = fi.NumOutputs()
	require.Error(t, err)
}

func TestCCtx_UseAfterFree(t *testing.T) {
	eng := New()
	cctx, err := eng.NewCCtx()
	require.NoError(t, err)
	cctx.Free()

	_, err = cctx.Compress(make([]byte, 128), []byte("data"))
	require.ErrorContains(t, err, "after free")
	require.ErrorContains(t, cctx.SetParameter(format.CParamCompressionLevel, 3), "after free")
}

func TestCCtx_ParameterValidation(t *testing.T) {
	eng := New()
	cctx, err := eng.NewCCtx()
	require.NoError(t, err)
	defer cctx.Free()

	require.NoError(t, cctx.SetParameter(format.CParamCompressionLevel, 19))
	require.Error(t, cctx.SetParameter(format.CParamCompressionLevel, 0))
	require.Error(t, cctx.SetParameter(format.CParamCompressionLevel, 23))
	require.NoError(t, cctx.SetParameter(format.CParamFormatVersion, FormatVersion1))
	require.Error(t, cctx.SetParameter(format.CParamFormatVersion, 99))
	require.Error(t, cctx.SetParameter(format.CParam(0x99), 1))
}

func TestCCtx_StickyParameters(t *testing.T) {
	eng := New()
	src := bytes.Repeat([]byte("sticky parameter payload "), 200)

	cctx, err := eng.NewCCtx()
	require.NoError(t, err)
	defer cctx.Free()

	require.NoError(t, cctx.SetParameter(format.CParamCompressionLevel, 19))

	dst := make([]byte, eng.CompressBound(len(src)))
	n1, err := cctx.Compress(dst, src)
	require.NoError(t, err)
	n2, err := cctx.Compress(dst, src)
	require.NoError(t, err)

	// The level persists across calls by default.
	require.Equal(t, n1, n2)

	// With sticky parameters disabled the level resets after one call.
	require.NoError(t, cctx.SetParameter(format.CParamStickyParameters, 0))
	require.NoError(t, cctx.SetParameter(format.CParamCompressionLevel, 19))
	_, err = cctx.Compress(dst, src)
	require.NoError(t, err)

	_, err = cctx.Compress(dst, src)
	require.NoError(t, err)
}
