package avcodec

// The interfaces in this file are the seam between the Go wrappers and the
// native library. NativeLibrary implements them over libavcodec with purego;
// package avtest implements them in memory for tests.

// NoPTS is AV_NOPTS_VALUE, the "no timestamp" marker.
const NoPTS int64 = -0x8000000000000000

// PacketFlagKey marks a packet that holds a key frame (AV_PKT_FLAG_KEY).
const PacketFlagKey = 0x0001

// Prober answers whether the loaded library exports a function.
type Prober interface {
	FunctionExists(name string) bool
}

// Allocator hands out native memory. Malloc returns nil when the allocation
// fails. Free accepts exactly the slices Malloc returned.
type Allocator interface {
	Malloc(size int) []byte
	Free(buf []byte)
}

// Caller exposes the raw codec entry points of every library generation.
// Methods return the native status unchanged; got* arguments are the native
// in/out flags. A nil FrameRecord requests a flush.
type Caller interface {
	AllocContext(codec CodecRecord) ContextRecord
	FreeContext(ctx ContextRecord)
	ContextDefaults(ctx ContextRecord, codec CodecRecord) int32

	// avcodec_open / avcodec_open2
	Open(ctx ContextRecord, codec CodecRecord) int32
	Open2(ctx ContextRecord, codec CodecRecord) int32
	Close(ctx ContextRecord) int32

	DecodeVideo2(ctx ContextRecord, frame FrameRecord, gotPicture *int32, pkt PacketRecord) int32
	DecodeAudio3(ctx ContextRecord, samples []byte, frameSize *int32, pkt PacketRecord) int32
	DecodeAudio4(ctx ContextRecord, frame FrameRecord, gotFrame *int32, pkt PacketRecord) int32

	EncodeVideo(ctx ContextRecord, buf []byte, bufSize int, frame FrameRecord) int32
	EncodeAudio(ctx ContextRecord, buf []byte, bufSize int, samples []byte) int32
	EncodeAudio2(ctx ContextRecord, pkt PacketRecord, frame FrameRecord, gotPacket *int32) int32

	FindDecoder(id CodecID) CodecRecord
	FindEncoder(id CodecID) CodecRecord
	FindDecoderByName(name string) CodecRecord
	FindEncoderByName(name string) CodecRecord

	AllocFrame() FrameRecord
	FreeFrame(frame FrameRecord)
	AllocPacket() PacketRecord
	FreePacket(pkt PacketRecord)
}

// Library is everything a CodecContext needs from the native side.
type Library interface {
	Prober
	Allocator
	Caller
}

// ContextField names an integer field of the native codec context.
type ContextField int

const (
	ContextCodecType ContextField = iota
	ContextCodecID
	ContextFlags
	ContextWidth
	ContextHeight
	ContextPixelFormat
	ContextBitRate
	ContextGopSize
	ContextMaxBFrames
	ContextMbDecision
	ContextChannels
	ContextChannelLayout
	ContextSampleFormat
	ContextSampleRate
	ContextFrameSize
	ContextChromaSampleLocation
	contextIntFieldCount
)

// Rational fields of the native codec context.
const (
	ContextTimeBase ContextField = iota + 64
	ContextSampleAspectRatio
)

// ContextRecord is the native AVCodecContext.
type ContextRecord interface {
	Int(f ContextField) int64
	SetInt(f ContextField, v int64)
	Rational(f ContextField) Rational
	SetRational(f ContextField, r Rational)
	// CodedFrame returns the context's coded_frame, or nil.
	CodedFrame() FrameRecord
}

// FrameField names a scalar field of the native frame.
type FrameField int

const (
	FrameKeyFrame FrameField = iota
	FramePts
	FramePacketPts
	FramePacketDts
	FrameNbSamples
	FrameRepeatPict
	FrameFormat
	FrameWidth
	FrameHeight
)

// FrameRecord is the native AVFrame.
type FrameRecord interface {
	Int(f FrameField) int64
	SetInt(f FrameField, v int64)
	// Planes returns the length of the data/linesize arrays.
	Planes() int
	// Plane returns a view of data[i], or nil when the pointer is null.
	Plane(i int) []byte
	SetPlane(i int, b []byte)
	LineSize(i int) int
	SetLineSize(i, n int)
	// Defaults resets every field (avcodec_get_frame_defaults).
	Defaults()
}

// PacketField names a scalar field of the native packet.
type PacketField int

const (
	PacketPts PacketField = iota
	PacketDts
	PacketFlags
	PacketStreamIndex
	PacketDuration
)

// PacketRecord is the native AVPacket.
type PacketRecord interface {
	// Data returns a view of Size() bytes at the data pointer, or nil when the
	// pointer is null.
	Data() []byte
	// SetData moves the data pointer to the start of b without touching size.
	SetData(b []byte)
	Size() int
	SetSize(n int)
	Int(f PacketField) int64
	SetInt(f PacketField, v int64)
	// Init resets the optional fields (av_init_packet); data and size are kept.
	Init()
}

// CodecField names an integer field of the native codec descriptor.
type CodecField int

const (
	CodecFieldID CodecField = iota
	CodecFieldType
	CodecFieldCapabilities
)

// CodecRecord is the native AVCodec.
type CodecRecord interface {
	Int(f CodecField) int64
	Name() string
	LongName() string
}
