package builtin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/zlframe/format"
)

// Compiler translates layout-description source into a profile blob for
// Compressor.SetupProfile.
//
// The language is line-oriented. Blank lines and '#' comments are ignored;
// each remaining line is one directive:
//
//	codec <none|zstd|s2|lz4>          default codec for every stream
//	level <n>                         default compression level (1..22)
//	stream <idx> codec <name>         codec override for stream <idx>
//	stream <idx> level <n>            level override for stream <idx>
//
// Errors are positional: "<label>:<line>: message".
type Compiler struct{}

// NewCompiler creates a layout-description compiler.
func NewCompiler() Compiler {
	return Compiler{}
}

// Compile parses source and returns the encoded profile blob.
// label names the source in error messages.
func (Compiler) Compile(source, label string) ([]byte, error) {
	p := genericProfile()

	for lineNo, raw := range strings.Split(source, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		var err error
		switch fields[0] {
		case "codec":
			err = parseCodecDirective(fields, &p.defaultCodec)
		case "level":
			err = parseLevelDirective(fields, &p.defaultLevel)
		case "stream":
			err = parseStreamDirective(fields, p)
		default:
			err = fmt.Errorf("unknown directive %q", fields[0])
		}
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", label, lineNo+1, err)
		}
	}

	return encodeProfile(p), nil
}

func parseCodecDirective(fields []string, out *format.CompressionType) error {
	if len(fields) != 2 {
		return fmt.Errorf("codec directive takes one argument")
	}

	codec, err := codecByName(fields[1])
	if err != nil {
		return err
	}
	*out = codec

	return nil
}

func parseLevelDirective(fields []string, out *int) error {
	if len(fields) != 2 {
		return fmt.Errorf("level directive takes one argument")
	}

	level, err := strconv.Atoi(fields[1])
	if err != nil || level < 1 || level > 22 {
		return fmt.Errorf("level must be an integer in 1..22, got %q", fields[1])
	}
	*out = level

	return nil
}

func parseStreamDirective(fields []string, p *profile) error {
	if len(fields) != 4 {
		return fmt.Errorf("stream directive takes three arguments")
	}

	idx, err := strconv.Atoi(fields[1])
	if err != nil || idx < 0 {
		return fmt.Errorf("stream index must be a non-negative integer, got %q", fields[1])
	}

	if p.perStream == nil {
		p.perStream = make(map[int]streamRule)
	}
	rule := p.perStream[idx]

	switch fields[2] {
	case "codec":
		codec, cerr := codecByName(fields[3])
		if cerr != nil {
			return cerr
		}
		rule.codec = codec
		rule.hasCodec = true
	case "level":
		level, lerr := strconv.Atoi(fields[3])
		if lerr != nil || level < 1 || level > 22 {
			return fmt.Errorf("level must be an integer in 1..22, got %q", fields[3])
		}
		rule.level = level
		rule.hasLevel = true
	default:
		return fmt.Errorf("unknown stream property %q", fields[2])
	}

	p.perStream[idx] = rule

	return nil
}

func codecByName(name string) (format.CompressionType, error) {
	switch name {
	case "none":
		return format.CompressionNone, nil
	case "zstd":
		return format.CompressionZstd, nil
	case "s2":
		return format.CompressionS2, nil
	case "lz4":
		return format.CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown codec %q", name)
	}
}
