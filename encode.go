package avcodec

import "fmt"

// EncodeVideoFrame encodes frame into pkt. It returns true when pkt holds an
// encoded picture and false when the encoder buffered the frame.
//
// pkt points into the context's output buffer afterwards and is valid until
// the next encode call on this context; use Packet.Bytes to keep it.
func (c *CodecContext) EncodeVideoFrame(frame *Frame, pkt *Packet) (bool, error) {
	if !c.open {
		return false, nil
	}
	if frame == nil {
		return false, fmt.Errorf("%w: nil frame, use FlushVideo", ErrInvalidArgument)
	}
	if frame.rec == nil {
		return false, fmt.Errorf("%w: encode video on a freed frame", ErrInvalidArgument)
	}
	return c.encodeVideo(frame.rec, pkt)
}

// FlushVideo asks the encoder for a picture it still buffers. It returns
// false once the encoder is drained.
func (c *CodecContext) FlushVideo(pkt *Packet) (bool, error) {
	if !c.open {
		return false, nil
	}
	return c.encodeVideo(nil, pkt)
}

func (c *CodecContext) encodeVideo(frame FrameRecord, pkt *Packet) (bool, error) {
	const op = "avcodec_encode_video"
	if pkt == nil || pkt.rec == nil {
		return false, fmt.Errorf("%w: encode video needs a live packet", ErrInvalidArgument)
	}

	buf, err := c.outputBuffer(op, c.out.size)
	if err != nil {
		return false, err
	}
	pkt.Init()
	pkt.SetData(buf)
	pkt.SetSize(c.out.size)

	n := c.lib.EncodeVideo(c.rec, buf, c.out.size, frame)
	if n < 0 {
		return false, c.nativeFailure(op, n)
	}
	if n == 0 {
		return false, nil
	}

	// The library may point coded_frame somewhere else after every call.
	c.rebindCodedFrame()
	if cf := c.codedFrame; cf != nil {
		cf.ClearCache()
		pkt.SetPts(cf.Pts())
		if cf.IsKeyFrame() {
			pkt.SetFlags(pkt.Flags() | PacketFlagKey)
		}
	}
	pkt.SetSize(int(n))
	c.produced(pkt)
	return true, nil
}

// EncodeAudioFrame encodes frame into pkt. It returns true when pkt holds an
// encoded packet. With the legacy encoder pkt borrows the context's output
// buffer until the next encode call; the modern encoder gives pkt its own
// payload.
func (c *CodecContext) EncodeAudioFrame(frame *Frame, pkt *Packet) (bool, error) {
	if !c.open {
		return false, nil
	}
	if frame == nil {
		return false, fmt.Errorf("%w: nil frame, use FlushAudio", ErrInvalidArgument)
	}
	if frame.rec == nil {
		return false, fmt.Errorf("%w: encode audio on a freed frame", ErrInvalidArgument)
	}
	if pkt == nil || pkt.rec == nil {
		return false, fmt.Errorf("%w: encode audio needs a live packet", ErrInvalidArgument)
	}
	return c.encodeAudio(frame, pkt)
}

// FlushAudio asks the encoder for a packet it still buffers. It returns false
// once the encoder is drained.
func (c *CodecContext) FlushAudio(pkt *Packet) (bool, error) {
	if !c.open {
		return false, nil
	}
	if pkt == nil || pkt.rec == nil {
		return false, fmt.Errorf("%w: encode audio needs a live packet", ErrInvalidArgument)
	}
	return c.encodeAudio(nil, pkt)
}

func (c *CodecContext) encodeAudio(frame *Frame, pkt *Packet) (bool, error) {
	ok, err := c.audioEncoder.encode(c, frame, pkt)
	if ok {
		c.produced(pkt)
	}
	return ok, err
}

func (c *CodecContext) outputBuffer(op string, required int) ([]byte, error) {
	allocated := c.out.allocated()
	buf, err := c.out.reserve(op, required)
	if err != nil {
		c.log.Errorf("context %s: %v", c.id, err)
		return nil, err
	}
	if !allocated {
		c.log.Tracef("context %s: allocated %d byte output buffer", c.id, c.out.size)
	}
	return buf, nil
}

func (c *CodecContext) produced(pkt *Packet) {
	c.stats.PacketsEncoded++
	c.stats.BytesProduced += uint64(pkt.Size())
}

type audioEncoder interface {
	encode(c *CodecContext, frame *Frame, pkt *Packet) (bool, error)
	variant() Variant
}

func newAudioEncoder(caps Capabilities) audioEncoder {
	if caps.EncodeAudio2 {
		return packetAudioEncoder{}
	}
	return bufferAudioEncoder{}
}

// bufferAudioEncoder uses avcodec_encode_audio, which writes into the
// context's output buffer.
type bufferAudioEncoder struct{}

func (bufferAudioEncoder) variant() Variant { return VariantLegacy }

func (bufferAudioEncoder) encode(c *CodecContext, frame *Frame, pkt *Packet) (bool, error) {
	const op = "avcodec_encode_audio"

	// PCM encoders (frame size 0 or 1) take the output size from the input.
	required := c.out.size
	if c.FrameSize() <= 1 {
		required = 0
		if sizes := frame.LineSize(); len(sizes) > 0 {
			required = sizes[0]
		}
	}

	// NOTE: a PCM frame larger than the buffer gets a fresh buffer of the
	// same capacity, not a larger one, and the native call is told the
	// capacity. Large PCM frames must be split by the caller.
	buf, err := c.outputBuffer(op, required)
	if err != nil {
		return false, err
	}
	if required > len(buf) {
		c.log.Warnf("context %s: %d byte PCM frame exceeds the %d byte output buffer, encoding the first %d bytes",
			c.id, required, len(buf), len(buf))
	}
	pkt.Init()
	pkt.SetData(buf)
	pkt.SetSize(c.out.size)

	n := c.lib.EncodeAudio(c.rec, buf, min(required, len(buf)), frame.Data(0))
	if n < 0 {
		return false, c.nativeFailure(op, n)
	}
	if n == 0 {
		return false, nil
	}
	pkt.SetSize(int(n))
	return true, nil
}

// packetAudioEncoder uses avcodec_encode_audio2, which allocates the packet
// payload itself.
type packetAudioEncoder struct{}

func (packetAudioEncoder) variant() Variant { return VariantModern }

func (packetAudioEncoder) encode(c *CodecContext, frame *Frame, pkt *Packet) (bool, error) {
	var got int32
	n := c.lib.EncodeAudio2(c.rec, pkt.rec, frame.record(), &got)
	if n < 0 {
		return false, c.nativeFailure(FuncEncodeAudio2, n)
	}
	if got == 0 {
		return false, nil
	}
	pkt.ClearCache()
	return true, nil
}
