package avcodec

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/pion/webrtc/v4/pkg/media/samplebuilder"
)

// DefaultMTU is the RTP packet size limit used when none is configured.
const DefaultMTU = 1200

// ErrNoRTPMapping is returned for codecs without an RTP payload format.
var ErrNoRTPMapping = errors.New("avcodec: codec has no RTP payload format")

// RTPConfig configures an RTP packetizer.
type RTPConfig struct {
	SSRC        uint32
	PayloadType uint8  // 0 keeps the codec default
	MTU         uint16 // 0 means DefaultMTU
}

// PayloadFormatSupported reports whether RTPPacketizer and RTPDepacketizer
// accept codec.
func PayloadFormatSupported(codec CodecID) bool {
	_, err := payloaderFor(codec)
	return err == nil
}

func payloaderFor(codec CodecID) (rtp.Payloader, error) {
	switch codec {
	case CodecIDH264:
		return &codecs.H264Payloader{}, nil
	case CodecIDVP8:
		return &codecs.VP8Payloader{}, nil
	case CodecIDPCMMulaw, CodecIDPCMAlaw:
		return &codecs.G711Payloader{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNoRTPMapping, codec)
	}
}

func depacketizerFor(codec CodecID) (rtp.Depacketizer, error) {
	switch codec {
	case CodecIDH264:
		return &codecs.H264Packet{}, nil
	case CodecIDVP8:
		return &codecs.VP8Packet{}, nil
	case CodecIDPCMMulaw, CodecIDPCMAlaw:
		return &g711Depacketizer{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNoRTPMapping, codec)
	}
}

// g711Depacketizer passes G.711 payloads through: every packet is a sample.
type g711Depacketizer struct{}

func (g711Depacketizer) Unmarshal(packet []byte) ([]byte, error) {
	out := make([]byte, len(packet))
	copy(out, packet)
	return out, nil
}

func (g711Depacketizer) IsPartitionHead(payload []byte) bool              { return true }
func (g711Depacketizer) IsPartitionTail(marker bool, payload []byte) bool { return true }

// RTPPacketizer splits encoded packets into RTP packets.
type RTPPacketizer struct {
	codec      CodecID
	clockRate  uint32
	ssrc       uint32
	pt         uint8
	packetizer rtp.Packetizer
	mu         sync.Mutex
}

// NewRTPPacketizer creates a packetizer for codec.
func NewRTPPacketizer(codec CodecID, cfg RTPConfig) (*RTPPacketizer, error) {
	payloader, err := payloaderFor(codec)
	if err != nil {
		return nil, err
	}
	if cfg.MTU == 0 {
		cfg.MTU = DefaultMTU
	}
	if cfg.PayloadType == 0 {
		cfg.PayloadType = codec.DefaultPayloadType()
	}
	clockRate := codec.ClockRate()
	return &RTPPacketizer{
		codec:      codec,
		clockRate:  clockRate,
		ssrc:       cfg.SSRC,
		pt:         cfg.PayloadType,
		packetizer: rtp.NewPacketizer(cfg.MTU, cfg.PayloadType, cfg.SSRC, payloader, rtp.NewRandomSequencer(), clockRate),
	}, nil
}

func (p *RTPPacketizer) Codec() CodecID     { return p.codec }
func (p *RTPPacketizer) ClockRate() uint32  { return p.clockRate }
func (p *RTPPacketizer) SSRC() uint32       { return p.ssrc }
func (p *RTPPacketizer) PayloadType() uint8 { return p.pt }

// Packetize payloads the bytes pkt points at. The RTP timestamp advances by
// the packet duration, rescaled from timeBase to the RTP clock.
//
// The payload is copied first, so pkt may be reused by the next encode call.
func (p *RTPPacketizer) Packetize(pkt *Packet, timeBase Rational) []*rtp.Packet {
	data := pkt.Bytes()
	if len(data) == 0 {
		return nil
	}
	var samples uint32
	if d := pkt.Duration(); d > 0 && timeBase.Valid() {
		samples = uint32(Rescale(d, timeBase, Rational{Num: 1, Den: int32(p.clockRate)}))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.packetizer.Packetize(data, samples)
}

// PacketizeToBytes is Packetize followed by Marshal.
func (p *RTPPacketizer) PacketizeToBytes(pkt *Packet, timeBase Rational) ([][]byte, error) {
	packets := p.Packetize(pkt, timeBase)
	out := make([][]byte, 0, len(packets))
	for _, rp := range packets {
		b, err := rp.Marshal()
		if err != nil {
			return nil, fmt.Errorf("marshal rtp packet: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}

// RTPDepacketizer reassembles RTP packets into decoder input.
type RTPDepacketizer struct {
	codec   CodecID
	builder *samplebuilder.SampleBuilder
}

// NewRTPDepacketizer creates a depacketizer for codec. maxLate is the number
// of packets kept for reordering.
func NewRTPDepacketizer(codec CodecID, maxLate uint16) (*RTPDepacketizer, error) {
	depacketizer, err := depacketizerFor(codec)
	if err != nil {
		return nil, err
	}
	if maxLate == 0 {
		maxLate = 64
	}
	return &RTPDepacketizer{
		codec:   codec,
		builder: samplebuilder.New(maxLate, depacketizer, codec.ClockRate()),
	}, nil
}

func (d *RTPDepacketizer) Codec() CodecID { return d.codec }

// Push adds one RTP packet.
func (d *RTPDepacketizer) Push(p *rtp.Packet) {
	d.builder.Push(p)
}

// PushBytes unmarshals and adds one RTP packet.
func (d *RTPDepacketizer) PushBytes(data []byte) error {
	p := &rtp.Packet{}
	if err := p.Unmarshal(data); err != nil {
		return fmt.Errorf("unmarshal rtp packet: %w", err)
	}
	d.Push(p)
	return nil
}

// Next points pkt at the next complete access unit and sets its pts to the
// RTP timestamp. It returns false when none is ready.
func (d *RTPDepacketizer) Next(pkt *Packet) bool {
	s := d.builder.Pop()
	if s == nil {
		return false
	}
	pkt.Init()
	pkt.SetPayload(s.Data)
	pkt.SetPts(int64(s.PacketTimestamp))
	pkt.SetDts(int64(s.PacketTimestamp))
	return true
}

// Sample copies the packet into a WebRTC media sample.
func (p *Packet) Sample(duration time.Duration) media.Sample {
	return media.Sample{
		Data:     p.Bytes(),
		Duration: duration,
	}
}
