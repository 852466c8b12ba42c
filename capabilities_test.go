package avcodec

import (
	"reflect"
	"testing"
)

type exportSet map[string]bool

func (e exportSet) FunctionExists(name string) bool { return e[name] }

func TestDetectCapabilities(t *testing.T) {
	tests := []struct {
		name    string
		exports exportSet
		want    Capabilities
		gen     Generation
	}{
		{"legacy", exportSet{}, Capabilities{}, GenerationLegacy},
		{"open2 only", exportSet{FuncOpen2: true}, Capabilities{Open2: true}, GenerationTransitional},
		{
			"transitional",
			exportSet{FuncOpen2: true, FuncDecodeAudio4: true},
			Capabilities{Open2: true, DecodeAudio4: true},
			GenerationTransitional,
		},
		{
			"modern",
			exportSet{FuncOpen2: true, FuncDecodeAudio4: true, FuncEncodeAudio2: true},
			Capabilities{Open2: true, DecodeAudio4: true, EncodeAudio2: true},
			GenerationModern,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectCapabilities(tt.exports)
			if got != tt.want {
				t.Errorf("DetectCapabilities() = %+v, want %+v", got, tt.want)
			}
			if g := got.Generation(); g != tt.gen {
				t.Errorf("Generation() = %v, want %v", g, tt.gen)
			}
		})
	}
}

func TestCapabilities_StrategiesMatchFlags(t *testing.T) {
	for _, caps := range []Capabilities{
		{},
		{Open2: true},
		{DecodeAudio4: true},
		{EncodeAudio2: true},
		{Open2: true, DecodeAudio4: true, EncodeAudio2: true},
	} {
		if got, want := newOpener(caps).variant(), variantOf(caps.Open2); got != want {
			t.Errorf("%v: opener variant = %v, want %v", caps, got, want)
		}
		if got, want := newAudioDecoder(caps).variant(), variantOf(caps.DecodeAudio4); got != want {
			t.Errorf("%v: audio decoder variant = %v, want %v", caps, got, want)
		}
		if got, want := newAudioEncoder(caps).variant(), variantOf(caps.EncodeAudio2); got != want {
			t.Errorf("%v: audio encoder variant = %v, want %v", caps, got, want)
		}
	}
}

func TestCapabilities_String(t *testing.T) {
	if got := (Capabilities{}).String(); got != "legacy" {
		t.Errorf("String() = %q, want legacy", got)
	}
	got := Capabilities{Open2: true, EncodeAudio2: true}.String()
	if want := "avcodec_open2,avcodec_encode_audio2"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestGeneration_Features(t *testing.T) {
	tests := []struct {
		gen      Generation
		name     string
		major    int
		buffer   bool
		features []string
	}{
		{GenerationLegacy, "legacy", 52, true, nil},
		{GenerationTransitional, "transitional", 53, true, []string{"open-options", "frame-audio-decode"}},
		{GenerationModern, "modern", 54, false, []string{"open-options", "frame-audio-decode", "packet-audio-encode", "native-output-buffer"}},
		{Generation(9), "unknown", 0, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.gen.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.gen.MinMajor(); got != tt.major {
				t.Errorf("MinMajor() = %d, want %d", got, tt.major)
			}
			if got := tt.gen.ManagesAudioBuffer(); got != tt.buffer {
				t.Errorf("ManagesAudioBuffer() = %v, want %v", got, tt.buffer)
			}
			if got := tt.gen.Features().Names(); !reflect.DeepEqual(got, tt.features) {
				t.Errorf("Features().Names() = %v, want %v", got, tt.features)
			}
		})
	}
}

// A generation's features must select the same strategies as probing a
// library of that generation would.
func TestGeneration_AgreesWithCapabilities(t *testing.T) {
	for gen := GenerationLegacy; gen < generationCount; gen++ {
		f := gen.Features()
		caps := DetectCapabilities(exportSet{
			FuncOpen2:        f.Has(FeatureOpenOptions),
			FuncDecodeAudio4: f.Has(FeatureFrameAudioDecode),
			FuncEncodeAudio2: f.Has(FeaturePacketAudioEncode),
		})
		if got := caps.Generation(); got != gen {
			t.Errorf("%v: capabilities report %v", gen, got)
		}
		if caps.EncodeAudio2 == gen.ManagesAudioBuffer() {
			t.Errorf("%v: EncodeAudio2=%v but ManagesAudioBuffer=%v", gen, caps.EncodeAudio2, gen.ManagesAudioBuffer())
		}
	}
}

func TestVariant_String(t *testing.T) {
	if VariantLegacy.String() != "legacy" || VariantModern.String() != "modern" || Variant(7).String() != "unknown" {
		t.Error("unexpected Variant names")
	}
}

func variantOf(modern bool) Variant {
	if modern {
		return VariantModern
	}
	return VariantLegacy
}
