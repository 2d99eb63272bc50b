// Package hash provides the checksum primitives used by the frame container.
package hash

import "github.com/cespare/xxhash/v2"

// Checksum computes the 64-bit xxHash64 digest of data.
// Used as the frame integrity trailer.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Digest is a streaming xxHash64 accumulator for multi-section checksums.
// The frame writer feeds the header and each payload section in order and
// appends the final sum as the trailer.
type Digest struct {
	d *xxhash.Digest
}

// NewDigest creates a streaming checksum accumulator.
func NewDigest() *Digest {
	return &Digest{d: xxhash.New()}
}

// Write adds data to the running checksum. It never fails.
func (d *Digest) Write(data []byte) {
	_, _ = d.d.Write(data)
}

// Sum64 returns the checksum of everything written so far.
func (d *Digest) Sum64() uint64 {
	return d.d.Sum64()
}
