package avcodec

import "fmt"

// DecodeVideoFrame decodes one picture from pkt into frame.
//
// The packet is a cursor: on return its size and data describe the bytes the
// decoder did not consume, and the caller resubmits the same packet until
// Size reports 0. Submitting an empty packet drains pictures buffered inside
// the decoder.
//
// It returns true when frame holds a complete picture, false when the
// decoder needs more input. A closed context returns false.
func (c *CodecContext) DecodeVideoFrame(pkt *Packet, frame *Frame) (bool, error) {
	if !c.open {
		return false, nil
	}
	if pkt == nil || frame == nil {
		return false, fmt.Errorf("%w: decode video needs a packet and a frame", ErrInvalidArgument)
	}
	if pkt.rec == nil || frame.rec == nil {
		return false, fmt.Errorf("%w: decode video on a freed packet or frame", ErrInvalidArgument)
	}

	var got int32
	n := c.lib.DecodeVideo2(c.rec, frame.rec, &got, pkt.rec)
	if n < 0 {
		return false, c.nativeFailure("avcodec_decode_video2", n)
	}
	c.consumed(pkt, n)

	if got == 0 {
		return false, nil
	}
	frame.ClearCache()
	c.stats.FramesDecoded++
	return true, nil
}

// DecodeAudioFrame decodes one buffer of samples from pkt into frame. The
// packet cursor behaves as in DecodeVideoFrame.
//
// With the legacy decoder the caller provides the sample buffer in plane 0
// and its capacity in LineSize()[0]. The modern decoder resets the frame and
// lets the library allocate the planes.
func (c *CodecContext) DecodeAudioFrame(pkt *Packet, frame *Frame) (bool, error) {
	if !c.open {
		return false, nil
	}
	if pkt == nil || frame == nil {
		return false, fmt.Errorf("%w: decode audio needs a packet and a frame", ErrInvalidArgument)
	}
	if pkt.rec == nil || frame.rec == nil {
		return false, fmt.Errorf("%w: decode audio on a freed packet or frame", ErrInvalidArgument)
	}

	ok, err := c.audioDecoder.decode(c, pkt, frame)
	if ok {
		c.stats.FramesDecoded++
	}
	return ok, err
}

type audioDecoder interface {
	decode(c *CodecContext, pkt *Packet, frame *Frame) (bool, error)
	variant() Variant
}

func newAudioDecoder(caps Capabilities) audioDecoder {
	if caps.DecodeAudio4 {
		return frameAudioDecoder{}
	}
	return bufferAudioDecoder{}
}

// bufferAudioDecoder uses avcodec_decode_audio3, which writes samples into a
// caller supplied buffer and reports the decoded byte count in place of the
// capacity.
type bufferAudioDecoder struct{}

func (bufferAudioDecoder) variant() Variant { return VariantLegacy }

func (bufferAudioDecoder) decode(c *CodecContext, pkt *Packet, frame *Frame) (bool, error) {
	var size int32
	if sizes := frame.LineSize(); len(sizes) > 0 {
		size = int32(sizes[0])
	}

	n := c.lib.DecodeAudio3(c.rec, frame.Data(0), &size, pkt.rec)
	if n < 0 {
		return false, c.nativeFailure("avcodec_decode_audio3", n)
	}
	c.consumed(pkt, n)

	if size <= 0 {
		return false, nil
	}
	frame.ClearCache()
	frame.SetLineSize(0, int(size))
	frame.SetPacketPts(pkt.Pts())
	frame.SetPacketDts(pkt.Dts())
	return true, nil
}

// frameAudioDecoder uses avcodec_decode_audio4, which fills an AVFrame but
// leaves line sizes to the caller.
type frameAudioDecoder struct{}

func (frameAudioDecoder) variant() Variant { return VariantModern }

func (frameAudioDecoder) decode(c *CodecContext, pkt *Packet, frame *Frame) (bool, error) {
	frame.GetDefaults()

	var got int32
	n := c.lib.DecodeAudio4(c.rec, frame.rec, &got, pkt.rec)
	if n < 0 {
		return false, c.nativeFailure(FuncDecodeAudio4, n)
	}
	c.consumed(pkt, n)

	if got == 0 {
		return false, nil
	}
	frame.ClearCache()

	format := c.SampleFormat()
	channels := c.Channels()
	lineSize := format.LineSize(frame.NbSamples(), channels)
	frame.SetLineSize(0, lineSize)
	if format.IsPlanar() {
		for i := 1; i < channels; i++ {
			frame.SetLineSize(i, lineSize)
		}
	}
	return true, nil
}
