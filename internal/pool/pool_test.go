package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBuffer_ExtendAndGrow(t *testing.T) {
	bb := NewByteBuffer(16)

	require.True(t, bb.Extend(8))
	require.Equal(t, 8, bb.Len())
	require.False(t, bb.Extend(1024))

	bb.ExtendOrGrow(1024)
	require.Equal(t, 8+1024, bb.Len())
}

func TestFrameBufferPool_ResetOnReuse(t *testing.T) {
	bb := GetFrameBuffer()
	bb.MustWrite([]byte("leftover"))
	PutFrameBuffer(bb)

	reused := GetFrameBuffer()
	require.Zero(t, reused.Len())
	PutFrameBuffer(reused)
}

func TestUint32Slice_Pooling(t *testing.T) {
	s, free := GetUint32Slice(8)
	require.Len(t, s, 8)
	for i := range s {
		s[i] = uint32(i)
	}
	free()

	s2, free2 := GetUint32Slice(4)
	require.Len(t, s2, 4)
	free2()
}
