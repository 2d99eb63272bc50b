package pool

import "sync"

// Slice pool for efficient reuse of string-length arrays.
// Decompressed string outputs carry one uint32 length per element; the
// arrays live only until the typed buffer is released, so pooling them
// avoids an allocation per decompression call.
var uint32SlicePool = sync.Pool{
	New: func() any { return &[]uint32{} },
}

// GetUint32Slice retrieves and resizes a uint32 slice from the pool.
//
// The returned slice will have the exact length specified by the size parameter.
// If the pooled slice has insufficient capacity, a new slice will be allocated.
// The caller must call the returned cleanup function to return the slice to the pool.
//
// Parameters:
//   - size: The desired length of the slice
//
// Returns:
//   - []uint32: A slice with length equal to size
//   - func(): Cleanup function that must be called to return the slice to the pool
func GetUint32Slice(size int) ([]uint32, func()) {
	ptr, _ := uint32SlicePool.Get().(*[]uint32)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]uint32, size)
	} else {
		slice = slice[:size]
	}

	return slice, func() {
		*ptr = slice[:0]
		uint32SlicePool.Put(ptr)
	}
}
