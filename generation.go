package avcodec

// Generation identifies a libavcodec calling-convention generation.
type Generation uint8

const (
	GenerationLegacy       Generation = iota // avcodec_open, decode_audio3, encode_audio
	GenerationTransitional                   // open2 and decode_audio4, raw-buffer audio encode
	GenerationModern                         // encode_audio2
	generationCount
)

// Features is a bitmask of what a generation's API offers.
type Features uint32

const (
	FeatureOpenOptions        Features = 1 << iota // open accepts an options dictionary
	FeatureFrameAudioDecode                        // audio decodes into an AVFrame
	FeaturePacketAudioEncode                       // audio encodes into an AVPacket
	FeatureNativeOutputBuffer                      // the library allocates encoder output
)

// Has returns true if all specified features are supported.
func (f Features) Has(feature Features) bool { return f&feature == feature }

// generationMeta contains static metadata about a generation.
type generationMeta struct {
	Name         string
	MinMajor     int // first libavcodec major version with this generation
	Features     Features
	OutputBuffer bool // the wrapper manages an audio encode output buffer
}

// Static metadata table - indexed by Generation, zero allocations.
var generationInfo = [generationCount]generationMeta{
	GenerationLegacy:       {"legacy", 52, 0, true},
	GenerationTransitional: {"transitional", 53, FeatureOpenOptions | FeatureFrameAudioDecode, true},
	GenerationModern:       {"modern", 54, FeatureOpenOptions | FeatureFrameAudioDecode | FeaturePacketAudioEncode | FeatureNativeOutputBuffer, false},
}

// String returns the generation name.
func (g Generation) String() string {
	if g >= generationCount {
		return "unknown"
	}
	return generationInfo[g].Name
}

// MinMajor returns the first libavcodec major version of the generation.
func (g Generation) MinMajor() int {
	if g >= generationCount {
		return 0
	}
	return generationInfo[g].MinMajor
}

// Features returns the generation's feature bitmask.
func (g Generation) Features() Features {
	if g >= generationCount {
		return 0
	}
	return generationInfo[g].Features
}

// ManagesAudioBuffer reports whether audio encoding in this generation goes
// through the context's own output buffer.
func (g Generation) ManagesAudioBuffer() bool {
	if g >= generationCount {
		return false
	}
	return generationInfo[g].OutputBuffer
}

var featureNames = []struct {
	f    Features
	name string
}{
	{FeatureOpenOptions, "open-options"},
	{FeatureFrameAudioDecode, "frame-audio-decode"},
	{FeaturePacketAudioEncode, "packet-audio-encode"},
	{FeatureNativeOutputBuffer, "native-output-buffer"},
}

// Names returns the names of the set features in bit order.
func (f Features) Names() []string {
	var names []string
	for _, fn := range featureNames {
		if f.Has(fn.f) {
			names = append(names, fn.name)
		}
	}
	return names
}
