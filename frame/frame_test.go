package frame

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/zlframe/engine/builtin"
	"github.com/arloliu/zlframe/errs"
	"github.com/arloliu/zlframe/format"
	"github.com/arloliu/zlframe/typed"
)

func testEngine() *builtin.Engine {
	return builtin.New()
}

func TestOneShot_RoundTrip(t *testing.T) {
	eng := testEngine()
	src := bytes.Repeat([]byte("one-shot compression payload "), 100)

	frame, err := Compress(eng, src)
	require.NoError(t, err)
	require.Less(t, len(frame), len(src))

	restored, err := Decompress(eng, frame)
	require.NoError(t, err)
	require.Equal(t, src, restored)
}

func TestOneShot_WithOptions(t *testing.T) {
	eng := testEngine()
	src := bytes.Repeat([]byte("leveled payload "), 200)

	frame, err := Compress(eng, src,
		WithCompressionLevel(19),
		WithFormatVersion(eng.DefaultFormatVersion()))
	require.NoError(t, err)

	restored, err := Decompress(eng, frame)
	require.NoError(t, err)
	require.Equal(t, src, restored)
}

func TestCompress_EmptyInput(t *testing.T) {
	eng := testEngine()

	_, err := Compress(eng, nil)
	require.ErrorIs(t, err, errs.ErrEmptyInput)

	_, err = Decompress(eng, nil)
	require.ErrorIs(t, err, errs.ErrEmptyInput)
}

func TestContext_Reuse(t *testing.T) {
	eng := testEngine()

	ctx, err := NewContext(eng, WithCompressionLevel(9))
	require.NoError(t, err)
	defer ctx.Close()

	dctx, err := NewDContext(eng)
	require.NoError(t, err)
	defer dctx.Close()

	// The same context compresses many payloads; parameters stick.
	for i := 0; i < 5; i++ {
		src := bytes.Repeat([]byte{byte('a' + i)}, 1000+i*100)

		frame, cerr := ctx.Compress(src)
		require.NoError(t, cerr)

		restored, derr := dctx.Decompress(frame)
		require.NoError(t, derr)
		require.Equal(t, src, restored)
	}
}

func TestContext_ClosedErrors(t *testing.T) {
	eng := testEngine()

	ctx, err := NewContext(eng)
	require.NoError(t, err)
	require.NoError(t, ctx.Close())
	require.NoError(t, ctx.Close(), "Close is idempotent")

	_, err = ctx.Compress([]byte("data"))
	require.ErrorIs(t, err, errs.ErrContextClosed)
	require.ErrorIs(t, ctx.SetCompressionLevel(5), errs.ErrContextClosed)
	require.ErrorIs(t, ctx.AttachCompressor(nil), errs.ErrContextClosed)

	dctx, err := NewDContext(eng)
	require.NoError(t, err)
	require.NoError(t, dctx.Close())

	_, err = dctx.Decompress([]byte{1})
	require.ErrorIs(t, err, errs.ErrContextClosed)
}

func TestContext_InvalidOptionClosesContext(t *testing.T) {
	eng := testEngine()

	_, err := NewContext(eng, WithCompressionLevel(100))
	require.ErrorIs(t, err, errs.ErrEngine)
}

func TestTyped_RoundTrip(t *testing.T) {
	eng := testEngine()

	ctx, err := NewContext(eng)
	require.NoError(t, err)
	defer ctx.Close()

	dctx, err := NewDContext(eng)
	require.NoError(t, err)
	defer dctx.Close()

	data := bytes.Repeat([]byte{0, 1, 2, 3, 4, 5, 6, 7}, 64)
	frame, err := ctx.CompressTyped(typed.NumericStream(data, 8))
	require.NoError(t, err)

	out, err := dctx.DecompressTyped(frame)
	require.NoError(t, err)
	require.Equal(t, format.TypeNumeric, out.Type)
	require.Equal(t, 8, out.EltWidth)
	require.Equal(t, 64, out.NumElts)
	require.Equal(t, data, out.Data)
	require.Nil(t, out.StringLens)
}

func TestTyped_ValidationError(t *testing.T) {
	eng := testEngine()

	ctx, err := NewContext(eng)
	require.NoError(t, err)
	defer ctx.Close()

	_, err = ctx.CompressTyped(typed.NumericStream(make([]byte, 10), 3))
	require.ErrorIs(t, err, errs.ErrInvalidElementWidth)

	_, err = ctx.CompressTyped(typed.SerialStream(nil))
	require.ErrorIs(t, err, errs.ErrEmptyInput)
}

func TestMulti_RoundTripPreservesOrder(t *testing.T) {
	eng := testEngine()

	ctx, err := NewContext(eng)
	require.NoError(t, err)
	defer ctx.Close()

	dctx, err := NewDContext(eng)
	require.NoError(t, err)
	defer dctx.Close()

	timestamps := bytes.Repeat([]byte{1, 0, 0, 0, 0, 0, 0, 0}, 32)
	labels := []byte("cpumemdisknet")
	labelLens := []uint32{3, 3, 4, 3}
	blob := bytes.Repeat([]byte("opaque"), 20)

	frame, err := ctx.CompressMulti([]typed.Stream{
		typed.NumericStream(timestamps, 8),
		typed.StringStream(labels, labelLens),
		typed.SerialStream(blob),
	})
	require.NoError(t, err)

	outs, err := dctx.DecompressMulti(frame)
	require.NoError(t, err)
	require.Len(t, outs, 3)

	require.Equal(t, format.TypeNumeric, outs[0].Type)
	require.Equal(t, timestamps, outs[0].Data)
	require.Equal(t, format.TypeString, outs[1].Type)
	require.Equal(t, labels, outs[1].Data)
	require.Equal(t, labelLens, outs[1].StringLens)
	require.Equal(t, format.TypeSerial, outs[2].Type)
	require.Equal(t, blob, outs[2].Data)
}

func TestMulti_FailFastNamesStream(t *testing.T) {
	eng := testEngine()

	ctx, err := NewContext(eng)
	require.NoError(t, err)
	defer ctx.Close()

	_, err = ctx.CompressMulti([]typed.Stream{
		typed.SerialStream([]byte("fine")),
		typed.NumericStream(make([]byte, 10), 3),
		typed.SerialStream([]byte("never reached")),
	})
	require.ErrorIs(t, err, errs.ErrInvalidElementWidth)
	require.ErrorContains(t, err, "stream 1")

	_, err = ctx.CompressMulti(nil)
	require.ErrorIs(t, err, errs.ErrEmptyInput)
}

func TestInspect(t *testing.T) {
	eng := testEngine()

	ctx, err := NewContext(eng)
	require.NoError(t, err)
	defer ctx.Close()

	data := bytes.Repeat([]byte{1, 2, 3, 4}, 25)
	strData := []byte("redgreenblue")
	frame, err := ctx.CompressMulti([]typed.Stream{
		typed.NumericStream(data, 4),
		typed.StringStream(strData, []uint32{3, 5, 4}),
	})
	require.NoError(t, err)

	info, err := Inspect(eng, frame)
	require.NoError(t, err)
	require.Equal(t, eng.DefaultFormatVersion(), info.FormatVersion)
	require.Equal(t, 2, info.NumOutputs())

	require.Equal(t, format.TypeNumeric, info.Outputs[0].Type)
	require.Equal(t, len(data), info.Outputs[0].DecompressedSize)
	require.Equal(t, 25, info.Outputs[0].NumElts)

	require.Equal(t, format.TypeString, info.Outputs[1].Type)
	require.Equal(t, len(strData), info.Outputs[1].DecompressedSize)
	require.Equal(t, 3, info.Outputs[1].NumElts)
}

func TestInspect_MalformedFrame(t *testing.T) {
	eng := testEngine()

	_, err := Inspect(eng, []byte("not a frame at all"))
	require.ErrorIs(t, err, errs.ErrMalformedFrame)

	_, err = Inspect(eng, nil)
	require.ErrorIs(t, err, errs.ErrEmptyInput)
}

func TestDecompress_MalformedFrame(t *testing.T) {
	eng := testEngine()

	dctx, err := NewDContext(eng)
	require.NoError(t, err)
	defer dctx.Close()

	_, err = dctx.Decompress([]byte("garbage bytes, not a frame"))
	require.ErrorIs(t, err, errs.ErrMalformedFrame)
}
