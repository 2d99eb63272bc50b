package zlframe

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/zlframe/format"
	"github.com/arloliu/zlframe/typed"
)

func TestVersion(t *testing.T) {
	require.Regexp(t, `^\d+\.\d+\.\d+$`, Version())
}

func TestCompressDecompress(t *testing.T) {
	src := bytes.Repeat([]byte("top-level round trip payload "), 100)

	frame, err := Compress(src)
	require.NoError(t, err)
	require.Less(t, len(frame), len(src))

	restored, err := Decompress(frame)
	require.NoError(t, err)
	require.Equal(t, src, restored)
}

func TestCompressWithLevel(t *testing.T) {
	src := bytes.Repeat([]byte("leveled top-level payload "), 200)

	fast, err := Compress(src, WithCompressionLevel(1))
	require.NoError(t, err)
	best, err := Compress(src, WithCompressionLevel(19))
	require.NoError(t, err)

	for _, frame := range [][]byte{fast, best} {
		restored, derr := Decompress(frame)
		require.NoError(t, derr)
		require.Equal(t, src, restored)
	}
}

func TestContextMultiAndInspect(t *testing.T) {
	ctx, err := NewContext()
	require.NoError(t, err)
	defer ctx.Close()

	dctx, err := NewDContext()
	require.NoError(t, err)
	defer dctx.Close()

	values := bytes.Repeat([]byte{0, 0, 0, 0, 0, 0, 0, 1}, 32)
	names := []byte("cpuiowait")

	frame, err := ctx.CompressMulti([]typed.Stream{
		typed.NumericStream(values, 8),
		typed.StringStream(names, []uint32{3, 2, 4}),
	})
	require.NoError(t, err)

	info, err := Inspect(frame)
	require.NoError(t, err)
	require.Equal(t, 2, info.NumOutputs())
	require.Equal(t, format.TypeNumeric, info.Outputs[0].Type)
	require.Equal(t, format.TypeString, info.Outputs[1].Type)

	outs, err := dctx.DecompressMulti(frame)
	require.NoError(t, err)
	require.Equal(t, values, outs[0].Data)
	require.Equal(t, names, outs[1].Data)
}

func TestCompileAndAttach(t *testing.T) {
	src := bytes.Repeat([]byte("custom graph payload "), 100)

	compiled, err := Compile("codec lz4\n", "layout")
	require.NoError(t, err)

	comp, err := NewCompressor(compiled)
	require.NoError(t, err)
	defer comp.Close()

	ctx, err := NewContext()
	require.NoError(t, err)
	defer ctx.Close()

	require.NoError(t, comp.Attach(ctx))

	frame, err := ctx.Compress(src)
	require.NoError(t, err)

	restored, err := Decompress(frame)
	require.NoError(t, err)
	require.Equal(t, src, restored)
}
