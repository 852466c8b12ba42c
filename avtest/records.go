package avtest

import "github.com/thesyncim/avcodec"

// MaxPlanes matches AV_NUM_DATA_POINTERS.
const MaxPlanes = 8

// Context is an in-memory AVCodecContext.
type Context struct {
	Ints      map[avcodec.ContextField]int64
	Rationals map[avcodec.ContextField]avcodec.Rational
	// Coded is returned by CodedFrame. Hooks may replace it to simulate the
	// library rebinding coded_frame.
	Coded *Frame
	Codec *Codec
	Freed bool
}

// NewContext returns a context with lavc-like defaults for codec, which may
// be nil.
func NewContext(codec *Codec) *Context {
	c := &Context{
		Ints:      make(map[avcodec.ContextField]int64),
		Rationals: make(map[avcodec.ContextField]avcodec.Rational),
	}
	c.reset(codec)
	return c
}

func (c *Context) reset(codec *Codec) {
	clear(c.Ints)
	clear(c.Rationals)
	c.Codec = codec
	c.Ints[avcodec.ContextCodecType] = int64(avcodec.MediaTypeUnknown)
	c.Ints[avcodec.ContextPixelFormat] = int64(avcodec.PixelFormatNone)
	c.Ints[avcodec.ContextSampleFormat] = int64(avcodec.SampleFormatNone)
	c.Ints[avcodec.ContextGopSize] = 12
	c.Ints[avcodec.ContextBitRate] = 800 * 1000
	c.Rationals[avcodec.ContextTimeBase] = avcodec.NewRational(0, 1)
	c.Rationals[avcodec.ContextSampleAspectRatio] = avcodec.NewRational(0, 1)
	if codec != nil {
		c.Ints[avcodec.ContextCodecType] = int64(codec.Type)
		c.Ints[avcodec.ContextCodecID] = int64(codec.ID)
	}
}

func (c *Context) Int(f avcodec.ContextField) int64       { return c.Ints[f] }
func (c *Context) SetInt(f avcodec.ContextField, v int64) { c.Ints[f] = v }

func (c *Context) Rational(f avcodec.ContextField) avcodec.Rational {
	return c.Rationals[f]
}

func (c *Context) SetRational(f avcodec.ContextField, r avcodec.Rational) {
	c.Rationals[f] = r
}

func (c *Context) CodedFrame() avcodec.FrameRecord {
	if c.Coded == nil {
		return nil
	}
	return c.Coded
}

// Frame is an in-memory AVFrame.
type Frame struct {
	Ints      map[avcodec.FrameField]int64
	Data      [MaxPlanes][]byte
	LineSizes [MaxPlanes]int
}

// NewFrame returns a frame with default field values.
func NewFrame() *Frame {
	f := &Frame{Ints: make(map[avcodec.FrameField]int64)}
	f.Defaults()
	return f
}

func (f *Frame) Int(field avcodec.FrameField) int64       { return f.Ints[field] }
func (f *Frame) SetInt(field avcodec.FrameField, v int64) { f.Ints[field] = v }
func (f *Frame) Planes() int                              { return MaxPlanes }
func (f *Frame) Plane(i int) []byte                       { return f.Data[i] }
func (f *Frame) SetPlane(i int, b []byte)                 { f.Data[i] = b }
func (f *Frame) LineSize(i int) int                       { return f.LineSizes[i] }
func (f *Frame) SetLineSize(i, n int)                     { f.LineSizes[i] = n }

// Defaults mirrors avcodec_get_frame_defaults.
func (f *Frame) Defaults() {
	clear(f.Ints)
	f.Data = [MaxPlanes][]byte{}
	f.LineSizes = [MaxPlanes]int{}
	f.Ints[avcodec.FramePts] = avcodec.NoPTS
	f.Ints[avcodec.FramePacketPts] = avcodec.NoPTS
	f.Ints[avcodec.FramePacketDts] = avcodec.NoPTS
	f.Ints[avcodec.FrameKeyFrame] = 1
	f.Ints[avcodec.FrameFormat] = -1
}

// Packet is an in-memory AVPacket. Buf is the region the data pointer points
// at; Data returns its first Len bytes.
type Packet struct {
	Buf  []byte
	Len  int
	Ints map[avcodec.PacketField]int64
}

// NewPacket returns an initialised, empty packet.
func NewPacket() *Packet {
	p := &Packet{Ints: make(map[avcodec.PacketField]int64)}
	p.Init()
	return p
}

func (p *Packet) Data() []byte {
	if p.Buf == nil {
		return nil
	}
	return p.Buf[:max(0, min(p.Len, len(p.Buf)))]
}

func (p *Packet) SetData(b []byte)                      { p.Buf = b }
func (p *Packet) Size() int                             { return p.Len }
func (p *Packet) SetSize(n int)                         { p.Len = n }
func (p *Packet) Int(f avcodec.PacketField) int64       { return p.Ints[f] }
func (p *Packet) SetInt(f avcodec.PacketField, v int64) { p.Ints[f] = v }

// Init mirrors av_init_packet.
func (p *Packet) Init() {
	clear(p.Ints)
	p.Ints[avcodec.PacketPts] = avcodec.NoPTS
	p.Ints[avcodec.PacketDts] = avcodec.NoPTS
}

// Codec is an in-memory AVCodec.
type Codec struct {
	ID           avcodec.CodecID
	Type         avcodec.MediaType
	Capabilities int
	ShortName    string
	Long         string
	Encoder      bool
	Decoder      bool
}

func (c *Codec) Int(f avcodec.CodecField) int64 {
	switch f {
	case avcodec.CodecFieldID:
		return int64(c.ID)
	case avcodec.CodecFieldType:
		return int64(c.Type)
	case avcodec.CodecFieldCapabilities:
		return int64(c.Capabilities)
	}
	return 0
}

func (c *Codec) Name() string     { return c.ShortName }
func (c *Codec) LongName() string { return c.Long }
