package avcodec

import "strings"

// Native entry points whose presence selects a call variant.
const (
	FuncOpen2        = "avcodec_open2"
	FuncDecodeAudio4 = "avcodec_decode_audio4"
	FuncEncodeAudio2 = "avcodec_encode_audio2"
)

// Capabilities records which variant function families the loaded library
// exports. It is computed once and never changes for a given library.
type Capabilities struct {
	Open2        bool `yaml:"open2"`         // avcodec_open2 instead of avcodec_open
	DecodeAudio4 bool `yaml:"decode_audio4"` // frame-based audio decode
	EncodeAudio2 bool `yaml:"encode_audio2"` // packet-based audio encode
}

// DetectCapabilities queries p for each variant family.
func DetectCapabilities(p Prober) Capabilities {
	return Capabilities{
		Open2:        p.FunctionExists(FuncOpen2),
		DecodeAudio4: p.FunctionExists(FuncDecodeAudio4),
		EncodeAudio2: p.FunctionExists(FuncEncodeAudio2),
	}
}

// Generation returns the library generation these capabilities match.
func (c Capabilities) Generation() Generation {
	switch {
	case c.EncodeAudio2:
		return GenerationModern
	case c.Open2 || c.DecodeAudio4:
		return GenerationTransitional
	default:
		return GenerationLegacy
	}
}

func (c Capabilities) String() string {
	var parts []string
	if c.Open2 {
		parts = append(parts, FuncOpen2)
	}
	if c.DecodeAudio4 {
		parts = append(parts, FuncDecodeAudio4)
	}
	if c.EncodeAudio2 {
		parts = append(parts, FuncEncodeAudio2)
	}
	if len(parts) == 0 {
		return "legacy"
	}
	return strings.Join(parts, ",")
}

// Variant identifies which call shape a strategy uses.
type Variant uint8

const (
	VariantLegacy Variant = iota
	VariantModern
)

func (v Variant) String() string {
	switch v {
	case VariantLegacy:
		return "legacy"
	case VariantModern:
		return "modern"
	default:
		return "unknown"
	}
}
