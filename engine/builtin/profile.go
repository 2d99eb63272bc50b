package builtin

import (
	"fmt"

	"github.com/arloliu/zlframe/compress"
	"github.com/arloliu/zlframe/format"
)

// Profile blob layout, version 1. All integers little-endian.
//
//	offset 0  magic (4 bytes, "ZLP1")
//	offset 4  version (1 byte)
//	offset 5  default codec (1 byte)
//	offset 6  default level (1 byte signed, 0 = inherit context level)
//	offset 7  reserved (1 byte, zero)
//	offset 8  per-stream rule count (2 bytes)
//	then per rule (8 bytes): stream index (4), flags (1), codec (1),
//	level (1 signed), reserved (1)
const (
	profileMagic      uint32 = 0x31504C5A // "ZLP1"
	profileHeaderSize        = 10
	profileRuleSize          = 8
	profileVersion           = 1

	ruleHasCodec = 0x1
	ruleHasLevel = 0x2
)

// streamRule overrides codec selection for one stream index.
type streamRule struct {
	codec    format.CompressionType
	level    int
	hasCodec bool
	hasLevel bool
}

// profile is a decoded compressor graph: codec and level selection rules
// applied per output stream at compress time.
type profile struct {
	perStream    map[int]streamRule
	defaultLevel int // 0 inherits the context's sticky level
	defaultCodec format.CompressionType
}

// genericProfile is the graph behind engine.GraphGeneric: Zstd for every
// stream at the context's sticky level.
func genericProfile() *profile {
	return &profile{defaultCodec: format.CompressionZstd}
}

// rule resolves the codec and level for stream index i. ctxLevel is the
// context's sticky compression level and acts as the fallback whenever the
// profile does not pin a level.
func (p *profile) rule(i, ctxLevel int) (format.CompressionType, int) {
	codec := p.defaultCodec
	level := p.defaultLevel
	if level == 0 {
		level = ctxLevel
	}
	if level == 0 {
		level = compress.DefaultLevel
	}

	if r, ok := p.perStream[i]; ok {
		if r.hasCodec {
			codec = r.codec
		}
		if r.hasLevel {
			level = r.level
		}
	}

	return codec, level
}

// encodeProfile serializes a profile into its blob form.
func encodeProfile(p *profile) []byte {
	blob := make([]byte, 0, profileHeaderSize+len(p.perStream)*profileRuleSize)
	blob = engineEndian.AppendUint32(blob, profileMagic)
	blob = append(blob, profileVersion, byte(p.defaultCodec), byte(int8(p.defaultLevel)), 0) //nolint:gosec
	blob = engineEndian.AppendUint16(blob, uint16(len(p.perStream)))                         //nolint:gosec

	// Deterministic order: ascending stream index.
	indexes := make([]int, 0, len(p.perStream))
	for i := range p.perStream {
		indexes = append(indexes, i)
	}
	for i := 0; i < len(indexes); i++ {
		for j := i + 1; j < len(indexes); j++ {
			if indexes[j] < indexes[i] {
				indexes[i], indexes[j] = indexes[j], indexes[i]
			}
		}
	}

	for _, idx := range indexes {
		r := p.perStream[idx]
		flags := byte(0)
		if r.hasCodec {
			flags |= ruleHasCodec
		}
		if r.hasLevel {
			flags |= ruleHasLevel
		}
		blob = engineEndian.AppendUint32(blob, uint32(idx)) //nolint:gosec
		blob = append(blob, flags, byte(r.codec), byte(int8(r.level)), 0) //nolint:gosec
	}

	return blob
}

// parseProfile decodes and validates a profile blob.
func parseProfile(blob []byte) (*profile, error) {
	if len(blob) < profileHeaderSize {
		return nil, fmt.Errorf("profile too short: %d bytes", len(blob))
	}
	if engineEndian.Uint32(blob[0:4]) != profileMagic {
		return nil, fmt.Errorf("bad profile magic 0x%08x", engineEndian.Uint32(blob[0:4]))
	}
	if blob[4] != profileVersion {
		return nil, fmt.Errorf("unsupported profile version %d", blob[4])
	}

	p := &profile{
		defaultCodec: format.CompressionType(blob[5]),
		defaultLevel: int(int8(blob[6])),
	}
	if err := validCodec(p.defaultCodec); err != nil {
		return nil, err
	}

	count := int(engineEndian.Uint16(blob[8:10]))
	if len(blob) != profileHeaderSize+count*profileRuleSize {
		return nil, fmt.Errorf("profile length %d does not match %d rules", len(blob), count)
	}

	if count > 0 {
		p.perStream = make(map[int]streamRule, count)
	}
	for i := 0; i < count; i++ {
		off := profileHeaderSize + i*profileRuleSize
		r := streamRule{
			hasCodec: blob[off+4]&ruleHasCodec != 0,
			hasLevel: blob[off+4]&ruleHasLevel != 0,
			codec:    format.CompressionType(blob[off+5]),
			level:    int(int8(blob[off+6])),
		}
		if r.hasCodec {
			if err := validCodec(r.codec); err != nil {
				return nil, err
			}
		}
		p.perStream[int(engineEndian.Uint32(blob[off:off+4]))] = r
	}

	return p, nil
}

func validCodec(c format.CompressionType) error {
	switch c {
	case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
		return nil
	default:
		return fmt.Errorf("unknown codec 0x%02x", uint8(c))
	}
}
