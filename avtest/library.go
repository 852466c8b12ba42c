// Package avtest provides an in-memory stand-in for the native codec library.
//
// A Library answers every native call from Go hooks. Unset hooks succeed
// without producing output. Counters record how often each entry point and
// the allocator were used.
package avtest

import (
	"sync"

	"github.com/thesyncim/avcodec"
)

// Library is a scripted avcodec.Library.
type Library struct {
	mu sync.Mutex

	// Exported lists the symbol names FunctionExists reports.
	Exported map[string]bool

	// Codecs is searched by the Find* calls.
	Codecs []*Codec

	// FailMalloc makes Malloc return nil.
	FailMalloc bool

	OpenHook         func(ctx *Context, codec *Codec) int32
	Open2Hook        func(ctx *Context, codec *Codec) int32
	DefaultsHook     func(ctx *Context, codec *Codec) int32
	DecodeVideo2Hook func(ctx *Context, frame *Frame, gotPicture *int32, pkt *Packet) int32
	DecodeAudio3Hook func(ctx *Context, samples []byte, frameSize *int32, pkt *Packet) int32
	DecodeAudio4Hook func(ctx *Context, frame *Frame, gotFrame *int32, pkt *Packet) int32
	EncodeVideoHook  func(ctx *Context, buf []byte, bufSize int, frame *Frame) int32
	EncodeAudioHook  func(ctx *Context, buf []byte, bufSize int, samples []byte) int32
	EncodeAudio2Hook func(ctx *Context, pkt *Packet, frame *Frame, gotPacket *int32) int32

	calls  map[string]int
	live   map[*byte]int
	allocs int
	frees  int
}

var _ avcodec.Library = (*Library)(nil)

// NewLibrary returns a library exporting the variant functions of gen.
func NewLibrary(gen avcodec.Generation) *Library {
	l := &Library{Exported: make(map[string]bool)}
	features := gen.Features()
	l.Exported[avcodec.FuncOpen2] = features.Has(avcodec.FeatureOpenOptions)
	l.Exported[avcodec.FuncDecodeAudio4] = features.Has(avcodec.FeatureFrameAudioDecode)
	l.Exported[avcodec.FuncEncodeAudio2] = features.Has(avcodec.FeaturePacketAudioEncode)
	return l
}

// Calls returns how many times the named native function was called.
func (l *Library) Calls(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[name]
}

// Mallocs returns the number of successful Malloc calls.
func (l *Library) Mallocs() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allocs
}

// Frees returns the number of Free calls.
func (l *Library) Frees() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frees
}

// Outstanding returns the number of Malloc'd buffers not yet freed.
func (l *Library) Outstanding() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.live)
}

func (l *Library) record(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.calls == nil {
		l.calls = make(map[string]int)
	}
	l.calls[name]++
}

func (l *Library) FunctionExists(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Exported[name]
}

func (l *Library) Malloc(size int) []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.FailMalloc || size <= 0 {
		return nil
	}
	buf := make([]byte, size)
	if l.live == nil {
		l.live = make(map[*byte]int)
	}
	l.live[&buf[0]] = size
	l.allocs++
	return buf
}

func (l *Library) Free(buf []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frees++
	if len(buf) > 0 {
		delete(l.live, &buf[0])
	}
}

func (l *Library) AllocContext(codec avcodec.CodecRecord) avcodec.ContextRecord {
	l.record("avcodec_alloc_context3")
	return NewContext(asCodec(codec))
}

func (l *Library) FreeContext(ctx avcodec.ContextRecord) {
	l.record("av_free")
	if c := asContext(ctx); c != nil {
		c.Freed = true
	}
}

func (l *Library) ContextDefaults(ctx avcodec.ContextRecord, codec avcodec.CodecRecord) int32 {
	l.record("avcodec_get_context_defaults3")
	c := asContext(ctx)
	if l.DefaultsHook != nil {
		return l.DefaultsHook(c, asCodec(codec))
	}
	c.reset(asCodec(codec))
	return 0
}

func (l *Library) Open(ctx avcodec.ContextRecord, codec avcodec.CodecRecord) int32 {
	l.record("avcodec_open")
	return l.open(l.OpenHook, ctx, codec)
}

func (l *Library) Open2(ctx avcodec.ContextRecord, codec avcodec.CodecRecord) int32 {
	l.record(avcodec.FuncOpen2)
	return l.open(l.Open2Hook, ctx, codec)
}

func (l *Library) open(hook func(*Context, *Codec) int32, ctx avcodec.ContextRecord, codec avcodec.CodecRecord) int32 {
	c, cd := asContext(ctx), asCodec(codec)
	if hook != nil {
		return hook(c, cd)
	}
	if cd != nil {
		c.Codec = cd
		c.Ints[avcodec.ContextCodecID] = int64(cd.ID)
		c.Ints[avcodec.ContextCodecType] = int64(cd.Type)
	}
	return 0
}

func (l *Library) Close(ctx avcodec.ContextRecord) int32 {
	l.record("avcodec_close")
	return 0
}

func (l *Library) DecodeVideo2(ctx avcodec.ContextRecord, frame avcodec.FrameRecord, gotPicture *int32, pkt avcodec.PacketRecord) int32 {
	l.record("avcodec_decode_video2")
	if l.DecodeVideo2Hook == nil {
		return 0
	}
	return l.DecodeVideo2Hook(asContext(ctx), asFrame(frame), gotPicture, asPacket(pkt))
}

func (l *Library) DecodeAudio3(ctx avcodec.ContextRecord, samples []byte, frameSize *int32, pkt avcodec.PacketRecord) int32 {
	l.record("avcodec_decode_audio3")
	if l.DecodeAudio3Hook == nil {
		*frameSize = 0
		return 0
	}
	return l.DecodeAudio3Hook(asContext(ctx), samples, frameSize, asPacket(pkt))
}

func (l *Library) DecodeAudio4(ctx avcodec.ContextRecord, frame avcodec.FrameRecord, gotFrame *int32, pkt avcodec.PacketRecord) int32 {
	l.record(avcodec.FuncDecodeAudio4)
	if l.DecodeAudio4Hook == nil {
		return 0
	}
	return l.DecodeAudio4Hook(asContext(ctx), asFrame(frame), gotFrame, asPacket(pkt))
}

func (l *Library) EncodeVideo(ctx avcodec.ContextRecord, buf []byte, bufSize int, frame avcodec.FrameRecord) int32 {
	l.record("avcodec_encode_video")
	if l.EncodeVideoHook == nil {
		return 0
	}
	return l.EncodeVideoHook(asContext(ctx), buf, bufSize, asFrame(frame))
}

func (l *Library) EncodeAudio(ctx avcodec.ContextRecord, buf []byte, bufSize int, samples []byte) int32 {
	l.record("avcodec_encode_audio")
	if l.EncodeAudioHook == nil {
		return 0
	}
	return l.EncodeAudioHook(asContext(ctx), buf, bufSize, samples)
}

func (l *Library) EncodeAudio2(ctx avcodec.ContextRecord, pkt avcodec.PacketRecord, frame avcodec.FrameRecord, gotPacket *int32) int32 {
	l.record(avcodec.FuncEncodeAudio2)
	if l.EncodeAudio2Hook == nil {
		return 0
	}
	return l.EncodeAudio2Hook(asContext(ctx), asPacket(pkt), asFrame(frame), gotPacket)
}

func (l *Library) FindDecoder(id avcodec.CodecID) avcodec.CodecRecord {
	return l.find(func(c *Codec) bool { return c.Decoder && c.ID == id })
}

func (l *Library) FindEncoder(id avcodec.CodecID) avcodec.CodecRecord {
	return l.find(func(c *Codec) bool { return c.Encoder && c.ID == id })
}

func (l *Library) FindDecoderByName(name string) avcodec.CodecRecord {
	return l.find(func(c *Codec) bool { return c.Decoder && c.ShortName == name })
}

func (l *Library) FindEncoderByName(name string) avcodec.CodecRecord {
	return l.find(func(c *Codec) bool { return c.Encoder && c.ShortName == name })
}

func (l *Library) find(match func(*Codec) bool) avcodec.CodecRecord {
	for _, c := range l.Codecs {
		if match(c) {
			return c
		}
	}
	return nil
}

func (l *Library) AllocFrame() avcodec.FrameRecord {
	l.record("avcodec_alloc_frame")
	return NewFrame()
}

func (l *Library) FreeFrame(frame avcodec.FrameRecord) {
	l.record("avcodec_free_frame")
}

func (l *Library) AllocPacket() avcodec.PacketRecord {
	l.record("av_init_packet")
	return NewPacket()
}

func (l *Library) FreePacket(pkt avcodec.PacketRecord) {
	l.record("av_free_packet")
}

func asContext(r avcodec.ContextRecord) *Context {
	c, _ := r.(*Context)
	return c
}

func asFrame(r avcodec.FrameRecord) *Frame {
	f, _ := r.(*Frame)
	return f
}

func asPacket(r avcodec.PacketRecord) *Packet {
	p, _ := r.(*Packet)
	return p
}

func asCodec(r avcodec.CodecRecord) *Codec {
	c, _ := r.(*Codec)
	return c
}
