//go:build darwin || linux

// Native libavcodec binding via purego.
//
// Entry points are called in libavcodec and libavutil directly. Struct fields
// are read and written through libstream_avcodec, a thin shim with a
// primitive-only API, so the Go side never depends on AVCodecContext layout.

package avcodec

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	"github.com/ebitengine/purego"
)

var (
	nativeOnce    sync.Once
	nativeLib     *NativeLibrary
	nativeInitErr error
)

// errNoSys is returned for entry points the loaded library does not export.
var errNoSys = -int32(syscall.ENOSYS)

// libavcodec / libavutil function pointers. Variant entry points are optional
// and stay nil when the library does not export them.
var (
	avcodecRegisterAll         func()
	avcodecVersion             func() uint32
	avcodecAllocContext3       func(codec uintptr) uintptr
	avcodecGetContextDefaults3 func(ctx, codec uintptr) int32
	avcodecOpen                func(ctx, codec uintptr) int32
	avcodecOpen2               func(ctx, codec, options uintptr) int32
	avcodecClose               func(ctx uintptr) int32
	avcodecDecodeVideo2        func(ctx, frame uintptr, gotPicture *int32, pkt uintptr) int32
	avcodecDecodeAudio3        func(ctx, samples uintptr, frameSize *int32, pkt uintptr) int32
	avcodecDecodeAudio4        func(ctx, frame uintptr, gotFrame *int32, pkt uintptr) int32
	avcodecEncodeVideo         func(ctx, buf uintptr, bufSize int32, frame uintptr) int32
	avcodecEncodeAudio         func(ctx, buf uintptr, bufSize int32, samples uintptr) int32
	avcodecEncodeAudio2        func(ctx, pkt, frame uintptr, gotPacket *int32) int32
	avcodecFindDecoder         func(id int32) uintptr
	avcodecFindEncoder         func(id int32) uintptr
	avcodecFindDecoderByName   func(name string) uintptr
	avcodecFindEncoderByName   func(name string) uintptr
	avcodecAllocFrame          func() uintptr
	avcodecFreeFrame           func(frame *uintptr)
	avcodecGetFrameDefaults    func(frame uintptr)

	avMalloc     func(size uintptr) uintptr
	avFree       func(ptr uintptr)
	avFrameAlloc func() uintptr
	avFrameFree  func(frame *uintptr)
	avFrameUnref func(frame uintptr)
)

// libstream_avcodec field accessors. Field ids are the ContextField,
// FrameField, PacketField and CodecField values.
var (
	streamAVCtxGetInt        func(ctx uintptr, field int32) int64
	streamAVCtxSetInt        func(ctx uintptr, field int32, v int64)
	streamAVCtxGetRational   func(ctx uintptr, field int32, num, den *int32)
	streamAVCtxSetRational   func(ctx uintptr, field, num, den int32)
	streamAVCtxCodedFrame    func(ctx uintptr) uintptr
	streamAVFramePlanes      func() int32
	streamAVFrameGetInt      func(frame uintptr, field int32) int64
	streamAVFrameSetInt      func(frame uintptr, field int32, v int64)
	streamAVFrameData        func(frame uintptr, plane int32) uintptr
	streamAVFrameSetData     func(frame uintptr, plane int32, data uintptr)
	streamAVFrameLineSize    func(frame uintptr, plane int32) int32
	streamAVFrameSetLineSize func(frame uintptr, plane, size int32)
	streamAVPacketAlloc      func() uintptr
	streamAVPacketFree       func(pkt uintptr)
	streamAVPacketInit       func(pkt uintptr)
	streamAVPacketData       func(pkt uintptr) uintptr
	streamAVPacketSetData    func(pkt, data uintptr)
	streamAVPacketSize       func(pkt uintptr) int32
	streamAVPacketSetSize    func(pkt uintptr, size int32)
	streamAVPacketGetInt     func(pkt uintptr, field int32) int64
	streamAVPacketSetInt     func(pkt uintptr, field int32, v int64)
	streamAVCodecGetInt      func(codec uintptr, field int32) int64
	streamAVCodecName        func(codec uintptr) uintptr
	streamAVCodecLongName    func(codec uintptr) uintptr
)

// NativeLibrary is the Library backed by the system libavcodec.
type NativeLibrary struct {
	avcodec uintptr
	avutil  uintptr
	shim    uintptr

	avcodecPath string
	avutilPath  string
	shimPath    string

	framePlanes int
}

var _ Library = (*NativeLibrary)(nil)

// LoadLibrary loads libavcodec, libavutil and libstream_avcodec once per
// process. Later calls return the first result whatever cfg they pass.
func LoadLibrary(cfg LibraryConfig) (*NativeLibrary, error) {
	nativeOnce.Do(func() {
		nativeLib, nativeInitErr = loadNativeLibrary(cfg)
	})
	return nativeLib, nativeInitErr
}

func loadNativeLibrary(cfg LibraryConfig) (*NativeLibrary, error) {
	l := &NativeLibrary{}
	var err error

	if l.avutil, l.avutilPath, err = dlopenFirst(libraryPaths("avutil", cfg.AVUtilPath, cfg, 52, 51)); err != nil {
		return nil, fmt.Errorf("%w: libavutil: %w", ErrLibraryNotLoaded, err)
	}
	if l.avcodec, l.avcodecPath, err = dlopenFirst(libraryPaths("avcodec", cfg.AVCodecPath, cfg, 54, 53)); err != nil {
		purego.Dlclose(l.avutil)
		return nil, fmt.Errorf("%w: libavcodec: %w", ErrLibraryNotLoaded, err)
	}
	if l.shim, l.shimPath, err = dlopenFirst(libraryPaths("stream_avcodec", cfg.ShimPath, cfg)); err != nil {
		purego.Dlclose(l.avcodec)
		purego.Dlclose(l.avutil)
		return nil, fmt.Errorf("%w: libstream_avcodec: %w", ErrLibraryNotLoaded, err)
	}

	if err := l.loadSymbols(); err != nil {
		purego.Dlclose(l.shim)
		purego.Dlclose(l.avcodec)
		purego.Dlclose(l.avutil)
		return nil, fmt.Errorf("%w: %w", ErrLibraryNotLoaded, err)
	}

	if avcodecRegisterAll != nil {
		avcodecRegisterAll()
	}
	l.framePlanes = int(streamAVFramePlanes())
	return l, nil
}

func dlopenFirst(paths []string) (uintptr, string, error) {
	var lastErr error
	for _, path := range paths {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			return handle, path, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return 0, "", lastErr
	}
	return 0, "", errors.New("not found in any standard location")
}

func (l *NativeLibrary) loadSymbols() error {
	required := []struct {
		fptr   any
		handle uintptr
		name   string
	}{
		{&avcodecAllocContext3, l.avcodec, "avcodec_alloc_context3"},
		{&avcodecClose, l.avcodec, "avcodec_close"},
		{&avcodecDecodeVideo2, l.avcodec, "avcodec_decode_video2"},
		{&avcodecFindDecoder, l.avcodec, "avcodec_find_decoder"},
		{&avcodecFindEncoder, l.avcodec, "avcodec_find_encoder"},
		{&avcodecFindDecoderByName, l.avcodec, "avcodec_find_decoder_by_name"},
		{&avcodecFindEncoderByName, l.avcodec, "avcodec_find_encoder_by_name"},
		{&avMalloc, l.avutil, "av_malloc"},
		{&avFree, l.avutil, "av_free"},

		{&streamAVCtxGetInt, l.shim, "stream_avcodec_ctx_get_int"},
		{&streamAVCtxSetInt, l.shim, "stream_avcodec_ctx_set_int"},
		{&streamAVCtxGetRational, l.shim, "stream_avcodec_ctx_get_rational"},
		{&streamAVCtxSetRational, l.shim, "stream_avcodec_ctx_set_rational"},
		{&streamAVCtxCodedFrame, l.shim, "stream_avcodec_ctx_coded_frame"},
		{&streamAVFramePlanes, l.shim, "stream_avcodec_frame_planes"},
		{&streamAVFrameGetInt, l.shim, "stream_avcodec_frame_get_int"},
		{&streamAVFrameSetInt, l.shim, "stream_avcodec_frame_set_int"},
		{&streamAVFrameData, l.shim, "stream_avcodec_frame_data"},
		{&streamAVFrameSetData, l.shim, "stream_avcodec_frame_set_data"},
		{&streamAVFrameLineSize, l.shim, "stream_avcodec_frame_linesize"},
		{&streamAVFrameSetLineSize, l.shim, "stream_avcodec_frame_set_linesize"},
		{&streamAVPacketAlloc, l.shim, "stream_avcodec_packet_alloc"},
		{&streamAVPacketFree, l.shim, "stream_avcodec_packet_free"},
		{&streamAVPacketInit, l.shim, "stream_avcodec_packet_init"},
		{&streamAVPacketData, l.shim, "stream_avcodec_packet_data"},
		{&streamAVPacketSetData, l.shim, "stream_avcodec_packet_set_data"},
		{&streamAVPacketSize, l.shim, "stream_avcodec_packet_size"},
		{&streamAVPacketSetSize, l.shim, "stream_avcodec_packet_set_size"},
		{&streamAVPacketGetInt, l.shim, "stream_avcodec_packet_get_int"},
		{&streamAVPacketSetInt, l.shim, "stream_avcodec_packet_set_int"},
		{&streamAVCodecGetInt, l.shim, "stream_avcodec_codec_get_int"},
		{&streamAVCodecName, l.shim, "stream_avcodec_codec_name"},
		{&streamAVCodecLongName, l.shim, "stream_avcodec_codec_long_name"},
	}
	for _, s := range required {
		if err := registerLibFunc(s.fptr, s.handle, s.name); err != nil {
			return err
		}
	}

	registerOptionalLibFunc(&avcodecRegisterAll, l.avcodec, "avcodec_register_all")
	registerOptionalLibFunc(&avcodecVersion, l.avcodec, "avcodec_version")
	registerOptionalLibFunc(&avcodecGetContextDefaults3, l.avcodec, "avcodec_get_context_defaults3")
	registerOptionalLibFunc(&avcodecOpen, l.avcodec, "avcodec_open")
	registerOptionalLibFunc(&avcodecOpen2, l.avcodec, FuncOpen2)
	registerOptionalLibFunc(&avcodecDecodeAudio3, l.avcodec, "avcodec_decode_audio3")
	registerOptionalLibFunc(&avcodecDecodeAudio4, l.avcodec, FuncDecodeAudio4)
	registerOptionalLibFunc(&avcodecEncodeVideo, l.avcodec, "avcodec_encode_video")
	registerOptionalLibFunc(&avcodecEncodeAudio, l.avcodec, "avcodec_encode_audio")
	registerOptionalLibFunc(&avcodecEncodeAudio2, l.avcodec, FuncEncodeAudio2)
	registerOptionalLibFunc(&avcodecAllocFrame, l.avcodec, "avcodec_alloc_frame")
	registerOptionalLibFunc(&avcodecFreeFrame, l.avcodec, "avcodec_free_frame")
	registerOptionalLibFunc(&avcodecGetFrameDefaults, l.avcodec, "avcodec_get_frame_defaults")
	registerOptionalLibFunc(&avFrameAlloc, l.avutil, "av_frame_alloc")
	registerOptionalLibFunc(&avFrameFree, l.avutil, "av_frame_free")
	registerOptionalLibFunc(&avFrameUnref, l.avutil, "av_frame_unref")

	if avcodecAllocFrame == nil && avFrameAlloc == nil {
		return errors.New("no frame allocator exported")
	}
	return nil
}

// registerLibFunc turns purego's panic on a missing symbol into an error.
func registerLibFunc(fptr any, handle uintptr, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("symbol %s: %v", name, r)
		}
	}()
	purego.RegisterLibFunc(fptr, handle, name)
	return nil
}

func registerOptionalLibFunc(fptr any, handle uintptr, name string) {
	defer func() { _ = recover() }()
	purego.RegisterLibFunc(fptr, handle, name)
}

// Paths returns the files the library was loaded from.
func (l *NativeLibrary) Paths() (avcodec, avutil, shim string) {
	return l.avcodecPath, l.avutilPath, l.shimPath
}

// Version returns the libavcodec version, or zeros when unknown.
func (l *NativeLibrary) Version() (major, minor, micro int) {
	if avcodecVersion == nil {
		return 0, 0, 0
	}
	v := avcodecVersion()
	return int(v >> 16), int(v>>8) & 0xff, int(v) & 0xff
}

// FunctionExists looks name up in libavcodec.
func (l *NativeLibrary) FunctionExists(name string) bool {
	_, err := purego.Dlsym(l.avcodec, name)
	return err == nil
}

func (l *NativeLibrary) Malloc(size int) []byte {
	if size <= 0 {
		return nil
	}
	p := avMalloc(uintptr(size))
	if p == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), size)
}

func (l *NativeLibrary) Free(buf []byte) {
	if len(buf) == 0 {
		return
	}
	avFree(uintptr(unsafe.Pointer(&buf[0])))
}

func (l *NativeLibrary) AllocContext(codec CodecRecord) ContextRecord {
	p := avcodecAllocContext3(codecPtr(codec))
	if p == 0 {
		return nil
	}
	return &nativeContext{ptr: p, planes: l.framePlanes}
}

func (l *NativeLibrary) FreeContext(ctx ContextRecord) {
	if p := contextPtr(ctx); p != 0 {
		avFree(p)
	}
}

func (l *NativeLibrary) ContextDefaults(ctx ContextRecord, codec CodecRecord) int32 {
	if avcodecGetContextDefaults3 == nil {
		return errNoSys
	}
	return avcodecGetContextDefaults3(contextPtr(ctx), codecPtr(codec))
}

func (l *NativeLibrary) Open(ctx ContextRecord, codec CodecRecord) int32 {
	if avcodecOpen == nil {
		return errNoSys
	}
	return avcodecOpen(contextPtr(ctx), codecPtr(codec))
}

func (l *NativeLibrary) Open2(ctx ContextRecord, codec CodecRecord) int32 {
	if avcodecOpen2 == nil {
		return errNoSys
	}
	return avcodecOpen2(contextPtr(ctx), codecPtr(codec), 0)
}

func (l *NativeLibrary) Close(ctx ContextRecord) int32 {
	return avcodecClose(contextPtr(ctx))
}

func (l *NativeLibrary) DecodeVideo2(ctx ContextRecord, frame FrameRecord, gotPicture *int32, pkt PacketRecord) int32 {
	return avcodecDecodeVideo2(contextPtr(ctx), framePtr(frame), gotPicture, packetPtr(pkt))
}

func (l *NativeLibrary) DecodeAudio3(ctx ContextRecord, samples []byte, frameSize *int32, pkt PacketRecord) int32 {
	if avcodecDecodeAudio3 == nil {
		return errNoSys
	}
	ret := avcodecDecodeAudio3(contextPtr(ctx), bytesPtr(samples), frameSize, packetPtr(pkt))
	runtime.KeepAlive(samples)
	return ret
}

func (l *NativeLibrary) DecodeAudio4(ctx ContextRecord, frame FrameRecord, gotFrame *int32, pkt PacketRecord) int32 {
	if avcodecDecodeAudio4 == nil {
		return errNoSys
	}
	return avcodecDecodeAudio4(contextPtr(ctx), framePtr(frame), gotFrame, packetPtr(pkt))
}

func (l *NativeLibrary) EncodeVideo(ctx ContextRecord, buf []byte, bufSize int, frame FrameRecord) int32 {
	if avcodecEncodeVideo == nil {
		return errNoSys
	}
	ret := avcodecEncodeVideo(contextPtr(ctx), bytesPtr(buf), int32(bufSize), framePtr(frame))
	runtime.KeepAlive(buf)
	return ret
}

func (l *NativeLibrary) EncodeAudio(ctx ContextRecord, buf []byte, bufSize int, samples []byte) int32 {
	if avcodecEncodeAudio == nil {
		return errNoSys
	}
	ret := avcodecEncodeAudio(contextPtr(ctx), bytesPtr(buf), int32(bufSize), bytesPtr(samples))
	runtime.KeepAlive(buf)
	runtime.KeepAlive(samples)
	return ret
}

func (l *NativeLibrary) EncodeAudio2(ctx ContextRecord, pkt PacketRecord, frame FrameRecord, gotPacket *int32) int32 {
	if avcodecEncodeAudio2 == nil {
		return errNoSys
	}
	return avcodecEncodeAudio2(contextPtr(ctx), packetPtr(pkt), framePtr(frame), gotPacket)
}

func (l *NativeLibrary) FindDecoder(id CodecID) CodecRecord {
	return wrapCodecPtr(avcodecFindDecoder(int32(id)))
}

func (l *NativeLibrary) FindEncoder(id CodecID) CodecRecord {
	return wrapCodecPtr(avcodecFindEncoder(int32(id)))
}

func (l *NativeLibrary) FindDecoderByName(name string) CodecRecord {
	return wrapCodecPtr(avcodecFindDecoderByName(name))
}

func (l *NativeLibrary) FindEncoderByName(name string) CodecRecord {
	return wrapCodecPtr(avcodecFindEncoderByName(name))
}

func (l *NativeLibrary) AllocFrame() FrameRecord {
	var p uintptr
	if avcodecAllocFrame != nil {
		p = avcodecAllocFrame()
	} else {
		p = avFrameAlloc()
	}
	if p == 0 {
		return nil
	}
	return &nativeFrame{ptr: p, planes: l.framePlanes}
}

func (l *NativeLibrary) FreeFrame(frame FrameRecord) {
	p := framePtr(frame)
	switch {
	case p == 0:
	case avcodecFreeFrame != nil:
		avcodecFreeFrame(&p)
	case avFrameFree != nil:
		avFrameFree(&p)
	default:
		avFree(p)
	}
}

func (l *NativeLibrary) AllocPacket() PacketRecord {
	p := streamAVPacketAlloc()
	if p == 0 {
		return nil
	}
	return &nativePacket{ptr: p}
}

func (l *NativeLibrary) FreePacket(pkt PacketRecord) {
	if p := packetPtr(pkt); p != 0 {
		streamAVPacketFree(p)
	}
}

// --- Native records ---

type nativeContext struct {
	ptr    uintptr
	planes int
}

func (c *nativeContext) Int(f ContextField) int64 {
	return streamAVCtxGetInt(c.ptr, int32(f))
}

func (c *nativeContext) SetInt(f ContextField, v int64) {
	streamAVCtxSetInt(c.ptr, int32(f), v)
}

func (c *nativeContext) Rational(f ContextField) Rational {
	var r Rational
	streamAVCtxGetRational(c.ptr, int32(f), &r.Num, &r.Den)
	return r
}

func (c *nativeContext) SetRational(f ContextField, r Rational) {
	streamAVCtxSetRational(c.ptr, int32(f), r.Num, r.Den)
}

func (c *nativeContext) CodedFrame() FrameRecord {
	p := streamAVCtxCodedFrame(c.ptr)
	if p == 0 {
		return nil
	}
	return &nativeFrame{ptr: p, planes: c.planes}
}

// nativeFrame keeps the Go slices it points planes at reachable.
type nativeFrame struct {
	ptr    uintptr
	planes int
	keep   [8][]byte
}

func (f *nativeFrame) Int(field FrameField) int64 {
	return streamAVFrameGetInt(f.ptr, int32(field))
}

func (f *nativeFrame) SetInt(field FrameField, v int64) {
	streamAVFrameSetInt(f.ptr, int32(field), v)
}

func (f *nativeFrame) Planes() int { return f.planes }

// Plane returns linesize bytes for audio and linesize × plane rows for video.
func (f *nativeFrame) Plane(i int) []byte {
	p := streamAVFrameData(f.ptr, int32(i))
	if p == 0 {
		return nil
	}
	n := f.LineSize(i)
	if n <= 0 {
		return nil
	}
	if h := int(f.Int(FrameHeight)); h > 0 {
		n *= PixelFormat(f.Int(FrameFormat)).PlaneHeight(i, h)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), n)
}

func (f *nativeFrame) SetPlane(i int, b []byte) {
	if i < len(f.keep) {
		f.keep[i] = b
	}
	streamAVFrameSetData(f.ptr, int32(i), bytesPtr(b))
}

func (f *nativeFrame) LineSize(i int) int {
	return int(streamAVFrameLineSize(f.ptr, int32(i)))
}

func (f *nativeFrame) SetLineSize(i, n int) {
	streamAVFrameSetLineSize(f.ptr, int32(i), int32(n))
}

func (f *nativeFrame) Defaults() {
	if avcodecGetFrameDefaults != nil {
		avcodecGetFrameDefaults(f.ptr)
	} else if avFrameUnref != nil {
		avFrameUnref(f.ptr)
	}
	f.keep = [8][]byte{}
}

type nativePacket struct {
	ptr  uintptr
	keep []byte
}

func (p *nativePacket) Data() []byte {
	data := streamAVPacketData(p.ptr)
	if data == 0 {
		return nil
	}
	n := max(0, p.Size())
	return unsafe.Slice((*byte)(unsafe.Pointer(data)), n)
}

func (p *nativePacket) SetData(b []byte) {
	p.keep = b
	streamAVPacketSetData(p.ptr, bytesPtr(b))
}

func (p *nativePacket) Size() int { return int(streamAVPacketSize(p.ptr)) }

func (p *nativePacket) SetSize(n int) { streamAVPacketSetSize(p.ptr, int32(n)) }

func (p *nativePacket) Int(f PacketField) int64 {
	return streamAVPacketGetInt(p.ptr, int32(f))
}

func (p *nativePacket) SetInt(f PacketField, v int64) {
	streamAVPacketSetInt(p.ptr, int32(f), v)
}

func (p *nativePacket) Init() { streamAVPacketInit(p.ptr) }

type nativeCodec struct {
	ptr uintptr
}

func wrapCodecPtr(p uintptr) CodecRecord {
	if p == 0 {
		return nil
	}
	return &nativeCodec{ptr: p}
}

func (c *nativeCodec) Int(f CodecField) int64 { return streamAVCodecGetInt(c.ptr, int32(f)) }
func (c *nativeCodec) Name() string           { return goStringFromPtr(streamAVCodecName(c.ptr)) }
func (c *nativeCodec) LongName() string       { return goStringFromPtr(streamAVCodecLongName(c.ptr)) }

// --- Pointer helpers ---

func bytesPtr(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}

func contextPtr(r ContextRecord) uintptr {
	if c, ok := r.(*nativeContext); ok && c != nil {
		return c.ptr
	}
	return 0
}

func framePtr(r FrameRecord) uintptr {
	if f, ok := r.(*nativeFrame); ok && f != nil {
		return f.ptr
	}
	return 0
}

func packetPtr(r PacketRecord) uintptr {
	if p, ok := r.(*nativePacket); ok && p != nil {
		return p.ptr
	}
	return 0
}

func codecPtr(r CodecRecord) uintptr {
	if c, ok := r.(*nativeCodec); ok && c != nil {
		return c.ptr
	}
	return 0
}
