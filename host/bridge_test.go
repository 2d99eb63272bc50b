package host

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arloliu/zlframe/engine/builtin"
	"github.com/arloliu/zlframe/errs"
	"github.com/arloliu/zlframe/typed"
)

func testBridge(t *testing.T) *Bridge {
	t.Helper()

	b, err := New(builtin.New(), WithLogger(zap.NewNop()))
	require.NoError(t, err)
	t.Cleanup(b.Close)

	return b
}

func TestBridge_Version(t *testing.T) {
	b := testBridge(t)
	require.Regexp(t, `^\d+\.\d+\.\d+$`, b.Version())
}

func TestBridge_OneShotRoundTrip(t *testing.T) {
	b := testBridge(t)
	src := bytes.Repeat([]byte("one-shot bridge payload "), 100)

	require.Greater(t, b.CompressBound(len(src)), len(src))

	frame, err := b.Compress(src)
	require.NoError(t, err)

	restored, err := b.Decompress(frame)
	require.NoError(t, err)
	require.Equal(t, src, restored)
}

func TestBridge_CompressRoundTrip(t *testing.T) {
	b := testBridge(t)
	src := bytes.Repeat([]byte("bridge payload "), 100)

	ch, err := b.NewCCtx()
	require.NoError(t, err)
	dh, err := b.NewDCtx()
	require.NoError(t, err)

	frame, err := b.CompressWith(ch, src)
	require.NoError(t, err)

	restored, err := b.DecompressWith(dh, frame)
	require.NoError(t, err)
	require.Equal(t, src, restored)

	require.NoError(t, b.FreeCCtx(ch))
	require.NoError(t, b.FreeDCtx(dh))
}

func TestBridge_InvalidHandles(t *testing.T) {
	b := testBridge(t)

	_, err := b.CompressWith(42, []byte("data"))
	require.ErrorIs(t, err, errs.ErrInvalidHandle)
	_, err = b.DecompressWith(42, []byte("data"))
	require.ErrorIs(t, err, errs.ErrInvalidHandle)
	require.ErrorIs(t, b.FreeCCtx(42), errs.ErrInvalidHandle)
	require.ErrorIs(t, b.FreeDCtx(42), errs.ErrInvalidHandle)
	require.ErrorIs(t, b.FreeCompressor(42), errs.ErrInvalidHandle)
	require.ErrorIs(t, b.SetCompressionLevel(42, 5), errs.ErrInvalidHandle)
	require.ErrorIs(t, b.AttachCompressor(42, 43), errs.ErrInvalidHandle)
}

func TestBridge_DoubleFree(t *testing.T) {
	b := testBridge(t)

	h, err := b.NewCCtx()
	require.NoError(t, err)
	require.NoError(t, b.FreeCCtx(h))
	require.ErrorIs(t, b.FreeCCtx(h), errs.ErrInvalidHandle)
}

func TestBridge_TypedItems(t *testing.T) {
	b := testBridge(t)

	ch, err := b.NewCCtx()
	require.NoError(t, err)
	dh, err := b.NewDCtx()
	require.NoError(t, err)

	tests := []struct {
		name string
		item Item
	}{
		{
			name: "serial",
			item: Item{Tag: TagSerial, Data: bytes.Repeat([]byte("raw"), 50)},
		},
		{
			name: "numeric",
			item: Item{Tag: TagNumeric, Data: bytes.Repeat([]byte{1, 2, 3, 4}, 25), Param: 4},
		},
		{
			name: "struct",
			item: Item{Tag: TagStruct, Data: bytes.Repeat([]byte("0123456789"), 10), Param: 10},
		},
		{
			name: "string",
			item: Item{
				Tag:   TagString,
				Data:  []byte("alphabetagamma"),
				Param: typed.PackLens([]uint32{5, 4, 5}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, cerr := b.CompressTyped(ch, tt.item)
			require.NoError(t, cerr)

			got, derr := b.DecompressTyped(dh, frame)
			require.NoError(t, derr)
			require.Equal(t, tt.item.Tag, got.Tag)
			require.Equal(t, tt.item.Data, got.Data)
			if tt.item.Param != nil {
				require.Equal(t, tt.item.Param, got.Param)
			}
		})
	}
}

func TestBridge_TypedItemRejections(t *testing.T) {
	b := testBridge(t)

	ch, err := b.NewCCtx()
	require.NoError(t, err)

	tests := []struct {
		name string
		item Item
	}{
		{name: "unknown tag", item: Item{Tag: "vector", Data: []byte{1}}},
		{name: "numeric without width", item: Item{Tag: TagNumeric, Data: []byte{1, 2}}},
		{name: "struct with string param", item: Item{Tag: TagStruct, Data: []byte{1}, Param: "4"}},
		{name: "string with int param", item: Item{Tag: TagString, Data: []byte{1}, Param: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.CompressTyped(ch, tt.item)
			require.ErrorIs(t, err, errs.ErrUnknownStreamType)
		})
	}
}

func TestBridge_MultiItems(t *testing.T) {
	b := testBridge(t)

	ch, err := b.NewCCtx()
	require.NoError(t, err)
	dh, err := b.NewDCtx()
	require.NoError(t, err)

	items := []Item{
		{Tag: TagNumeric, Data: bytes.Repeat([]byte{7, 7, 7, 7, 7, 7, 7, 7}, 16), Param: 8},
		{Tag: TagSerial, Data: []byte("opaque tail")},
	}

	frame, err := b.CompressMulti(ch, items)
	require.NoError(t, err)

	info, err := b.FrameInfo(frame)
	require.NoError(t, err)
	require.Equal(t, 2, info.NumOutputs())

	got, err := b.DecompressMulti(dh, frame)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, items[0].Data, got[0].Data)
	require.Equal(t, items[1].Data, got[1].Data)
}

func TestBridge_CompilerAndCompressor(t *testing.T) {
	b := testBridge(t)
	src := bytes.Repeat([]byte("graph driven bridge payload "), 80)

	compiled, err := b.Compile("codec s2\n", "layout")
	require.NoError(t, err)

	comph, err := b.NewCompressor(compiled)
	require.NoError(t, err)

	ch, err := b.NewCCtx()
	require.NoError(t, err)
	dh, err := b.NewDCtx()
	require.NoError(t, err)

	require.NoError(t, b.AttachCompressor(ch, comph))

	// Releasing the compressor handle must not break the attached context.
	require.NoError(t, b.FreeCompressor(comph))

	frame, err := b.CompressWith(ch, src)
	require.NoError(t, err)

	restored, err := b.DecompressWith(dh, frame)
	require.NoError(t, err)
	require.Equal(t, src, restored)
}

func TestBridge_CompileError(t *testing.T) {
	b := testBridge(t)

	_, err := b.Compile("codec brotli\n", "layout")
	require.ErrorIs(t, err, errs.ErrCompile)
}

func TestBridge_CloseReleasesHandles(t *testing.T) {
	b, err := New(builtin.New())
	require.NoError(t, err)

	ch, err := b.NewCCtx()
	require.NoError(t, err)

	b.Close()

	_, err = b.CompressWith(ch, []byte("data"))
	require.ErrorIs(t, err, errs.ErrInvalidHandle)

	// Resource creation fails once the tables are drained.
	_, err = b.NewCCtx()
	require.Error(t, err)
}
