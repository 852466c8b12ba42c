package avcodec

// CodecID identifies a codec. Values follow the libavcodec 53/54 enum, so a
// CodecID can be handed to the native library unchanged.
type CodecID int32

const (
	CodecIDNone       CodecID = 0
	CodecIDMPEG1Video CodecID = 1
	CodecIDMPEG2Video CodecID = 2
	CodecIDH263       CodecID = 5
	CodecIDMJPEG      CodecID = 8
	CodecIDMPEG4      CodecID = 13
	CodecIDH264       CodecID = 28
	CodecIDVP8        CodecID = 142

	CodecIDPCMS16LE CodecID = 0x10000
	CodecIDPCMS16BE CodecID = 0x10001
	CodecIDPCMMulaw CodecID = 0x10006 // G.711 μ-law (PCMU)
	CodecIDPCMAlaw  CodecID = 0x10007 // G.711 A-law (PCMA)
	CodecIDMP2      CodecID = 0x15000
	CodecIDMP3      CodecID = 0x15001
	CodecIDAAC      CodecID = 0x15002
	CodecIDAC3      CodecID = 0x15003
	CodecIDVorbis   CodecID = 0x15005
	CodecIDFLAC     CodecID = 0x1500C
)

// CodecIDs returns every CodecID this package names, video first.
func CodecIDs() []CodecID {
	return []CodecID{
		CodecIDMPEG1Video, CodecIDMPEG2Video, CodecIDH263, CodecIDMJPEG, CodecIDMPEG4, CodecIDH264, CodecIDVP8,
		CodecIDPCMS16LE, CodecIDPCMS16BE, CodecIDPCMMulaw, CodecIDPCMAlaw,
		CodecIDMP2, CodecIDMP3, CodecIDAAC, CodecIDAC3, CodecIDVorbis, CodecIDFLAC,
	}
}

func (c CodecID) String() string {
	switch c {
	case CodecIDNone:
		return "none"
	case CodecIDMPEG1Video:
		return "mpeg1video"
	case CodecIDMPEG2Video:
		return "mpeg2video"
	case CodecIDH263:
		return "h263"
	case CodecIDMJPEG:
		return "mjpeg"
	case CodecIDMPEG4:
		return "mpeg4"
	case CodecIDH264:
		return "h264"
	case CodecIDVP8:
		return "vp8"
	case CodecIDPCMS16LE:
		return "pcm_s16le"
	case CodecIDPCMS16BE:
		return "pcm_s16be"
	case CodecIDPCMMulaw:
		return "pcm_mulaw"
	case CodecIDPCMAlaw:
		return "pcm_alaw"
	case CodecIDMP2:
		return "mp2"
	case CodecIDMP3:
		return "mp3"
	case CodecIDAAC:
		return "aac"
	case CodecIDAC3:
		return "ac3"
	case CodecIDVorbis:
		return "vorbis"
	case CodecIDFLAC:
		return "flac"
	default:
		return "unknown"
	}
}

// MediaType returns the media type implied by the id range.
func (c CodecID) MediaType() MediaType {
	switch {
	case c == CodecIDNone:
		return MediaTypeUnknown
	case c < 0x10000:
		return MediaTypeVideo
	case c < 0x17000:
		return MediaTypeAudio
	default:
		return MediaTypeUnknown
	}
}

// IsPCM reports whether the codec carries raw PCM samples.
func (c CodecID) IsPCM() bool {
	return c >= 0x10000 && c < 0x11000
}

// MimeType returns the RTP MIME type for this codec, or "" when the codec has
// no common RTP mapping.
func (c CodecID) MimeType() string {
	switch c {
	case CodecIDH264:
		return "video/H264"
	case CodecIDVP8:
		return "video/VP8"
	case CodecIDH263:
		return "video/H263"
	case CodecIDMPEG4:
		return "video/MP4V-ES"
	case CodecIDPCMMulaw:
		return "audio/PCMU"
	case CodecIDPCMAlaw:
		return "audio/PCMA"
	case CodecIDMP3, CodecIDMP2:
		return "audio/MPA"
	case CodecIDAAC:
		return "audio/AAC"
	default:
		return ""
	}
}

// ClockRate returns the RTP clock rate for this codec.
func (c CodecID) ClockRate() uint32 {
	switch c.MediaType() {
	case MediaTypeVideo:
		// All video codecs use 90kHz clock
		return 90000
	case MediaTypeAudio:
		switch c {
		case CodecIDPCMMulaw, CodecIDPCMAlaw:
			return 8000
		case CodecIDMP3, CodecIDMP2:
			return 90000
		default:
			return 48000
		}
	default:
		return 90000
	}
}

// DefaultPayloadType returns a typical payload type for this codec.
// Note: Actual payload type is negotiated via SDP.
func (c CodecID) DefaultPayloadType() uint8 {
	switch c {
	case CodecIDPCMMulaw:
		return 0 // Static payload type
	case CodecIDPCMAlaw:
		return 8 // Static payload type
	case CodecIDMP3, CodecIDMP2:
		return 14 // Static payload type
	case CodecIDH263:
		return 34
	case CodecIDVP8:
		return 96
	case CodecIDH264:
		return 102
	case CodecIDAAC:
		return 97
	default:
		return 96
	}
}

// MediaType is the codec kind (AVMediaType).
type MediaType int32

const (
	MediaTypeUnknown    MediaType = -1
	MediaTypeVideo      MediaType = 0
	MediaTypeAudio      MediaType = 1
	MediaTypeData       MediaType = 2
	MediaTypeSubtitle   MediaType = 3
	MediaTypeAttachment MediaType = 4
)

func (m MediaType) String() string {
	switch m {
	case MediaTypeVideo:
		return "video"
	case MediaTypeAudio:
		return "audio"
	case MediaTypeData:
		return "data"
	case MediaTypeSubtitle:
		return "subtitle"
	case MediaTypeAttachment:
		return "attachment"
	default:
		return "unknown"
	}
}

// Codec capability bits (CODEC_CAP_*).
const (
	CodecCapDrawHorizBand     = 0x0001
	CodecCapDR1               = 0x0002
	CodecCapDelay             = 0x0020
	CodecCapSmallLastFrame    = 0x0040
	CodecCapVariableFrameSize = 0x10000
)

// Codec describes a native encoder or decoder (AVCodec). Field reads are
// cached; call ClearCache if the native record may have changed.
type Codec struct {
	rec CodecRecord

	id           cached[CodecID]
	typ          cached[MediaType]
	capabilities cached[int]
	name         cached[string]
	longName     cached[string]
}

// NewCodec wraps a native codec record.
func NewCodec(rec CodecRecord) *Codec {
	return &Codec{rec: rec}
}

// FindDecoder looks up a decoder by id.
func FindDecoder(lib Library, id CodecID) (*Codec, error) {
	return wrapCodec(lib.FindDecoder(id), "decoder", id.String())
}

// FindEncoder looks up an encoder by id.
func FindEncoder(lib Library, id CodecID) (*Codec, error) {
	return wrapCodec(lib.FindEncoder(id), "encoder", id.String())
}

// FindDecoderByName looks up a decoder by its short name, e.g. "h264".
func FindDecoderByName(lib Library, name string) (*Codec, error) {
	return wrapCodec(lib.FindDecoderByName(name), "decoder", name)
}

// FindEncoderByName looks up an encoder by its short name.
func FindEncoderByName(lib Library, name string) (*Codec, error) {
	return wrapCodec(lib.FindEncoderByName(name), "encoder", name)
}

func wrapCodec(rec CodecRecord, kind, what string) (*Codec, error) {
	if rec == nil {
		return nil, &codecLookupError{kind: kind, what: what}
	}
	return NewCodec(rec), nil
}

type codecLookupError struct {
	kind, what string
}

func (e *codecLookupError) Error() string {
	return "avcodec: unable to find " + e.kind + " " + e.what
}

func (e *codecLookupError) Is(target error) bool { return target == ErrCodecNotFound }

// Record returns the underlying native record.
func (c *Codec) Record() CodecRecord { return c.rec }

// ClearCache drops all cached field values.
func (c *Codec) ClearCache() {
	c.id.reset()
	c.typ.reset()
	c.capabilities.reset()
	c.name.reset()
	c.longName.reset()
}

func (c *Codec) ID() CodecID {
	return c.id.get(func() CodecID { return CodecID(c.rec.Int(CodecFieldID)) })
}

func (c *Codec) Type() MediaType {
	return c.typ.get(func() MediaType { return MediaType(c.rec.Int(CodecFieldType)) })
}

// Capabilities returns the CODEC_CAP_* bit set.
func (c *Codec) Capabilities() int {
	return c.capabilities.get(func() int { return int(c.rec.Int(CodecFieldCapabilities)) })
}

func (c *Codec) Name() string {
	return c.name.get(c.rec.Name)
}

func (c *Codec) LongName() string {
	return c.longName.get(c.rec.LongName)
}

func (c *Codec) String() string {
	return c.Name()
}
