package builtin

import (
	"fmt"

	"github.com/arloliu/zlframe/endian"
	"github.com/arloliu/zlframe/format"
	"github.com/arloliu/zlframe/internal/hash"
)

// Frame container layout, format version 1. All integers little-endian.
//
//	offset 0   magic (4 bytes, "ZLF1")
//	offset 4   format version (1 byte)
//	offset 5   reserved (1 byte, zero)
//	offset 6   output count (2 bytes)
//	offset 8   output entries, outputEntrySize bytes each
//	...        per-output sections: [compressed lengths][compressed payload]
//	trailer    xxHash64 of everything before it (8 bytes)
const (
	frameMagic       uint32 = 0x31464C5A // "ZLF1"
	frameHeaderSize         = 8
	outputEntrySize         = 40
	frameTrailerSize        = 8

	// FormatVersion1 is the only container version this engine reads and
	// writes.
	FormatVersion1 = 1
)

var engineEndian = endian.GetLittleEndianEngine()

// outputEntry is the header record for one output stream.
type outputEntry struct {
	numElts     uint64
	rawSize     uint64
	payloadSize uint64
	lensSize    uint64
	eltWidth    uint32
	streamType  format.StreamType
	codec       format.CompressionType
}

type frameHeader struct {
	entries       []outputEntry
	formatVersion int
}

// headerSize returns the byte size of the encoded header for n outputs.
func headerSize(n int) int {
	return frameHeaderSize + n*outputEntrySize
}

// appendHeader encodes the header into dst.
func (h *frameHeader) appendHeader(dst []byte) []byte {
	dst = engineEndian.AppendUint32(dst, frameMagic)
	dst = append(dst, byte(h.formatVersion), 0)
	dst = engineEndian.AppendUint16(dst, uint16(len(h.entries))) //nolint:gosec

	for i := range h.entries {
		e := &h.entries[i]
		dst = append(dst, byte(e.streamType), byte(e.codec), 0, 0)
		dst = engineEndian.AppendUint32(dst, e.eltWidth)
		dst = engineEndian.AppendUint64(dst, e.numElts)
		dst = engineEndian.AppendUint64(dst, e.rawSize)
		dst = engineEndian.AppendUint64(dst, e.payloadSize)
		dst = engineEndian.AppendUint64(dst, e.lensSize)
	}

	return dst
}

// parseHeader decodes and structurally validates the frame header.
// It checks that the declared section sizes exactly account for the frame
// length, but does not verify the integrity trailer; decompression paths
// call verifyChecksum first.
func parseHeader(frame []byte) (*frameHeader, error) {
	if len(frame) < frameHeaderSize+frameTrailerSize {
		return nil, fmt.Errorf("frame too short: %d bytes", len(frame))
	}
	if engineEndian.Uint32(frame[0:4]) != frameMagic {
		return nil, fmt.Errorf("bad frame magic 0x%08x", engineEndian.Uint32(frame[0:4]))
	}

	version := int(frame[4])
	if version != FormatVersion1 {
		return nil, fmt.Errorf("unsupported format version %d", version)
	}

	count := int(engineEndian.Uint16(frame[6:8]))
	if count == 0 {
		return nil, fmt.Errorf("frame declares zero outputs")
	}
	if len(frame) < headerSize(count)+frameTrailerSize {
		return nil, fmt.Errorf("frame too short for %d outputs: %d bytes", count, len(frame))
	}

	h := &frameHeader{
		formatVersion: version,
		entries:       make([]outputEntry, count),
	}

	sections := uint64(0)
	for i := 0; i < count; i++ {
		off := frameHeaderSize + i*outputEntrySize
		e := &h.entries[i]
		e.streamType = format.StreamType(frame[off])
		e.codec = format.CompressionType(frame[off+1])
		e.eltWidth = engineEndian.Uint32(frame[off+4 : off+8])
		e.numElts = engineEndian.Uint64(frame[off+8 : off+16])
		e.rawSize = engineEndian.Uint64(frame[off+16 : off+24])
		e.payloadSize = engineEndian.Uint64(frame[off+24 : off+32])
		e.lensSize = engineEndian.Uint64(frame[off+32 : off+40])
		sections += e.payloadSize + e.lensSize
	}

	want := uint64(headerSize(count)) + sections + frameTrailerSize //nolint:gosec
	if uint64(len(frame)) != want {                                 //nolint:gosec
		return nil, fmt.Errorf("frame length %d does not match declared sections %d", len(frame), want)
	}

	return h, nil
}

// sectionOffsets returns the start of output i's lengths section and
// payload section.
func (h *frameHeader) sectionOffsets(i int) (lensOff, payloadOff int) {
	off := headerSize(len(h.entries))
	for j := 0; j < i; j++ {
		off += int(h.entries[j].lensSize + h.entries[j].payloadSize) //nolint:gosec
	}

	return off, off + int(h.entries[i].lensSize) //nolint:gosec
}

// verifyChecksum validates the xxHash64 integrity trailer.
func verifyChecksum(frame []byte) error {
	body := frame[:len(frame)-frameTrailerSize]
	want := engineEndian.Uint64(frame[len(frame)-frameTrailerSize:])
	if got := hash.Checksum(body); got != want {
		return fmt.Errorf("frame checksum mismatch: got 0x%016x, want 0x%016x", got, want)
	}

	return nil
}
