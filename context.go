package avcodec

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pion/logging"
)

// ContextStats provides per-context codec metrics.
type ContextStats struct {
	FramesDecoded     uint64 // Frames produced by decode calls
	PacketsEncoded    uint64 // Packets produced by encode calls
	BytesConsumed     uint64 // Packet bytes consumed by decode calls
	BytesProduced     uint64 // Packet bytes produced by encode calls
	BufferAllocations uint64 // Output buffer allocations
	NativeFailures    uint64 // Negative native statuses
}

// CodecContext wraps a native AVCodecContext: one encoder or decoder session.
//
// The call variants for open and audio decode/encode are chosen once from
// the library capabilities when the context is created. A CodecContext is not
// safe for concurrent use; independent contexts may be used from independent
// goroutines.
type CodecContext struct {
	lib  Library
	rec  ContextRecord
	id   uuid.UUID
	log  logging.LeveledLogger
	caps Capabilities

	open  bool
	freed bool

	opener       opener
	audioDecoder audioDecoder
	audioEncoder audioEncoder

	out        outputBuffer
	codedFrame *Frame

	ints        [contextIntFieldCount]cached[int64]
	timeBase    cached[Rational]
	aspectRatio cached[Rational]

	stats ContextStats
}

// NewCodecContext wraps an existing native context. The context starts
// closed.
func NewCodecContext(lib Library, rec ContextRecord, cfg ContextConfig) (*CodecContext, error) {
	if lib == nil {
		return nil, ErrLibraryNotLoaded
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: nil context record", ErrInvalidArgument)
	}

	caps := DetectCapabilities(lib)
	if cfg.Capabilities != nil {
		caps = *cfg.Capabilities
	}

	c := &CodecContext{
		lib:          lib,
		rec:          rec,
		id:           uuid.New(),
		log:          newLogger(cfg.LoggerFactory),
		caps:         caps,
		opener:       newOpener(caps),
		audioDecoder: newAudioDecoder(caps),
		audioEncoder: newAudioEncoder(caps),
		out:          newOutputBuffer(lib, cfg.OutputBufferSize),
	}
	c.rebindCodedFrame()

	c.log.Debugf("context %s: capabilities %s (%s generation)", c.id, caps, caps.Generation())
	return c, nil
}

// AllocCodecContext allocates a native context initialised with the defaults
// of codec and wraps it. codec may be nil.
func AllocCodecContext(lib Library, codec *Codec, cfg ContextConfig) (*CodecContext, error) {
	if lib == nil {
		return nil, ErrLibraryNotLoaded
	}
	rec := lib.AllocContext(codecRecord(codec))
	if rec == nil {
		return nil, &ResourceExhaustionError{Op: "avcodec_alloc_context3"}
	}
	return NewCodecContext(lib, rec, cfg)
}

func codecRecord(codec *Codec) CodecRecord {
	if codec == nil {
		return nil
	}
	return codec.rec
}

// ID returns the identifier used in logs and metrics.
func (c *CodecContext) ID() uuid.UUID { return c.id }

// Record returns the native record, nil after Free.
func (c *CodecContext) Record() ContextRecord { return c.rec }

// Capabilities returns the capabilities the call variants were chosen from.
func (c *CodecContext) Capabilities() Capabilities { return c.caps }

func (c *CodecContext) OpenVariant() Variant        { return c.opener.variant() }
func (c *CodecContext) AudioDecodeVariant() Variant { return c.audioDecoder.variant() }
func (c *CodecContext) AudioEncodeVariant() Variant { return c.audioEncoder.variant() }

// OutputBufferSize returns the capacity of the encoder output buffer.
func (c *CodecContext) OutputBufferSize() int { return c.out.size }

// Stats returns a snapshot of the context counters.
func (c *CodecContext) Stats() ContextStats {
	s := c.stats
	s.BufferAllocations = c.out.allocations
	return s
}

// IsOpen returns true between a successful Open and the next Close.
func (c *CodecContext) IsOpen() bool { return c.open }

// Open initialises the context to use codec. It does nothing if the context
// is already open. codec may be nil when the record already names one.
func (c *CodecContext) Open(codec *Codec) error {
	if c.freed {
		return ErrContextFreed
	}
	if c.open {
		return nil
	}

	if ret := c.opener.open(c.lib, c.rec, codecRecord(codec)); ret < 0 {
		return c.nativeFailure(c.opener.function(), ret)
	}
	c.open = true
	c.ClearCache()

	c.log.Debugf("context %s: opened %s via %s", c.id, c.CodecID(), c.opener.function())
	return nil
}

// Close closes the codec. It does nothing if the context is closed.
func (c *CodecContext) Close() {
	if !c.open {
		return
	}
	c.lib.Close(c.rec)
	c.open = false
	c.log.Debugf("context %s: closed", c.id)
}

// Free closes the context and releases the native record and the output
// buffer. The wrapper stays valid: accessors return zero values and codec
// calls return false.
func (c *CodecContext) Free() {
	if c.freed {
		return
	}
	c.Close()
	if c.rec != nil {
		c.lib.FreeContext(c.rec)
	}
	c.out.release()
	c.rec = nil
	c.freed = true
	c.ClearCache()
	c.log.Debugf("context %s: freed", c.id)
}

// GetDefaults resets the native record to the defaults of codec.
func (c *CodecContext) GetDefaults(codec *Codec) error {
	if c.freed {
		return ErrContextFreed
	}
	if ret := c.lib.ContextDefaults(c.rec, codecRecord(codec)); ret != 0 {
		return c.nativeFailure("avcodec_get_context_defaults3", ret)
	}
	c.ClearCache()
	return nil
}

// ClearCache drops every cached field value and rebinds the coded frame. Call
// it when the native record may have changed behind the wrapper's back.
func (c *CodecContext) ClearCache() {
	for i := range c.ints {
		c.ints[i].reset()
	}
	c.timeBase.reset()
	c.aspectRatio.reset()
	c.rebindCodedFrame()
}

// CodedFrame returns the encoder's coded frame, or nil when there is none.
// The returned wrapper is rebound in place by ClearCache. Once the library
// drops its coded frame, or the context is freed, a held wrapper reads zero
// values.
func (c *CodecContext) CodedFrame() *Frame {
	return c.codedFrame
}

func (c *CodecContext) rebindCodedFrame() {
	var rec FrameRecord
	if c.rec != nil {
		rec = c.rec.CodedFrame()
	}
	switch {
	case rec == nil:
		// Held wrappers must not keep reading a record the library dropped.
		if c.codedFrame != nil {
			c.codedFrame.Rebind(nil)
		}
		c.codedFrame = nil
	case c.codedFrame == nil:
		c.codedFrame = WrapFrame(rec)
	default:
		c.codedFrame.Rebind(rec)
	}
}

func (c *CodecContext) nativeFailure(op string, code int32) error {
	c.stats.NativeFailures++
	c.log.Warnf("context %s: %s returned %d", c.id, op, code)
	return newNativeCallError(op, code)
}

// consumed moves the packet cursor past n decoded bytes.
func (c *CodecContext) consumed(pkt *Packet, n int32) {
	c.stats.BytesConsumed += uint64(n)
	pkt.advance(int(n))
}

// --- Field accessors ---

func (c *CodecContext) intField(f ContextField) int64 {
	if c.rec == nil {
		return 0
	}
	return c.ints[f].get(func() int64 { return c.rec.Int(f) })
}

func (c *CodecContext) setIntField(f ContextField, v int64) {
	if c.rec == nil {
		return
	}
	c.rec.SetInt(f, v)
	c.ints[f].set(v)
}

func (c *CodecContext) CodecType() MediaType {
	if c.rec == nil {
		return MediaTypeUnknown
	}
	return MediaType(c.intField(ContextCodecType))
}

func (c *CodecContext) SetCodecType(t MediaType) { c.setIntField(ContextCodecType, int64(t)) }

func (c *CodecContext) CodecID() CodecID { return CodecID(c.intField(ContextCodecID)) }

func (c *CodecContext) SetCodecID(id CodecID) { c.setIntField(ContextCodecID, int64(id)) }

// Flags returns the CODEC_FLAG_* bit set.
func (c *CodecContext) Flags() int { return int(c.intField(ContextFlags)) }

func (c *CodecContext) SetFlags(flags int) { c.setIntField(ContextFlags, int64(flags)) }

func (c *CodecContext) Width() int { return int(c.intField(ContextWidth)) }

func (c *CodecContext) SetWidth(w int) { c.setIntField(ContextWidth, int64(w)) }

func (c *CodecContext) Height() int { return int(c.intField(ContextHeight)) }

func (c *CodecContext) SetHeight(h int) { c.setIntField(ContextHeight, int64(h)) }

func (c *CodecContext) PixelFormat() PixelFormat {
	if c.rec == nil {
		return PixelFormatNone
	}
	return PixelFormat(c.intField(ContextPixelFormat))
}

func (c *CodecContext) SetPixelFormat(f PixelFormat) { c.setIntField(ContextPixelFormat, int64(f)) }

// BitRate returns the target bit rate in bits per second.
func (c *CodecContext) BitRate() int64 { return c.intField(ContextBitRate) }

func (c *CodecContext) SetBitRate(bps int64) { c.setIntField(ContextBitRate, bps) }

// GopSize returns the number of pictures in a group of pictures.
func (c *CodecContext) GopSize() int { return int(c.intField(ContextGopSize)) }

func (c *CodecContext) SetGopSize(n int) { c.setIntField(ContextGopSize, int64(n)) }

func (c *CodecContext) MaxBFrames() int { return int(c.intField(ContextMaxBFrames)) }

func (c *CodecContext) SetMaxBFrames(n int) { c.setIntField(ContextMaxBFrames, int64(n)) }

// MbDecision returns the macroblock decision mode.
func (c *CodecContext) MbDecision() int { return int(c.intField(ContextMbDecision)) }

func (c *CodecContext) SetMbDecision(mode int) { c.setIntField(ContextMbDecision, int64(mode)) }

func (c *CodecContext) Channels() int { return int(c.intField(ContextChannels)) }

func (c *CodecContext) SetChannels(n int) { c.setIntField(ContextChannels, int64(n)) }

func (c *CodecContext) ChannelLayout() uint64 { return uint64(c.intField(ContextChannelLayout)) }

func (c *CodecContext) SetChannelLayout(layout uint64) {
	c.setIntField(ContextChannelLayout, int64(layout))
}

func (c *CodecContext) SampleFormat() SampleFormat {
	if c.rec == nil {
		return SampleFormatNone
	}
	return SampleFormat(c.intField(ContextSampleFormat))
}

func (c *CodecContext) SetSampleFormat(f SampleFormat) { c.setIntField(ContextSampleFormat, int64(f)) }

func (c *CodecContext) SampleRate() int { return int(c.intField(ContextSampleRate)) }

func (c *CodecContext) SetSampleRate(hz int) { c.setIntField(ContextSampleRate, int64(hz)) }

// FrameSize returns the number of samples per channel in an audio frame.
// Encoders set it on open; a value of 0 or 1 marks a PCM encoder.
func (c *CodecContext) FrameSize() int { return int(c.intField(ContextFrameSize)) }

func (c *CodecContext) SetFrameSize(n int) { c.setIntField(ContextFrameSize, int64(n)) }

func (c *CodecContext) ChromaSampleLocation() int {
	return int(c.intField(ContextChromaSampleLocation))
}

func (c *CodecContext) SetChromaSampleLocation(loc int) {
	c.setIntField(ContextChromaSampleLocation, int64(loc))
}

// TimeBase returns the unit, in seconds, of frame timestamps.
func (c *CodecContext) TimeBase() Rational {
	if c.rec == nil {
		return Rational{}
	}
	return c.timeBase.get(func() Rational { return c.rec.Rational(ContextTimeBase) })
}

func (c *CodecContext) SetTimeBase(r Rational) {
	if c.rec == nil {
		return
	}
	c.rec.SetRational(ContextTimeBase, r)
	c.timeBase.set(r)
}

func (c *CodecContext) SampleAspectRatio() Rational {
	if c.rec == nil {
		return Rational{}
	}
	return c.aspectRatio.get(func() Rational { return c.rec.Rational(ContextSampleAspectRatio) })
}

func (c *CodecContext) SetSampleAspectRatio(r Rational) {
	if c.rec == nil {
		return
	}
	c.rec.SetRational(ContextSampleAspectRatio, r)
	c.aspectRatio.set(r)
}
