package avcodec

// Packet wraps a native AVPacket. It is a cursor over a byte region: after a
// partial decode Size and Data describe the bytes the decoder has not
// consumed yet, and the caller resubmits the same Packet to drain them.
//
// The bytes are owned by whoever set them. Packets filled by an encode call
// point into the context's output buffer and are only valid until the next
// encode call on that context.
type Packet struct {
	rec  PacketRecord
	free func(PacketRecord)

	size        cached[int]
	pts         cached[int64]
	dts         cached[int64]
	flags       cached[int]
	streamIndex cached[int]
	duration    cached[int64]
}

// NewPacket allocates a native packet.
func NewPacket(lib Library) (*Packet, error) {
	rec := lib.AllocPacket()
	if rec == nil {
		return nil, &ResourceExhaustionError{Op: "av_init_packet", Size: 0}
	}
	p := WrapPacket(rec)
	p.free = lib.FreePacket
	return p, nil
}

// WrapPacket wraps an existing native packet without taking ownership.
func WrapPacket(rec PacketRecord) *Packet {
	return &Packet{rec: rec}
}

// Record returns the underlying native record, nil after Free.
func (p *Packet) Record() PacketRecord { return p.rec }

// Free releases a packet created by NewPacket. The data bytes are not freed.
func (p *Packet) Free() {
	if p.rec != nil && p.free != nil {
		p.free(p.rec)
	}
	p.rec = nil
	p.ClearCache()
}

// ClearCache drops all cached field values.
func (p *Packet) ClearCache() {
	p.size.reset()
	p.pts.reset()
	p.dts.reset()
	p.flags.reset()
	p.streamIndex.reset()
	p.duration.reset()
}

// Init resets the optional fields to their defaults; data and size are kept.
func (p *Packet) Init() {
	if p.rec == nil {
		return
	}
	p.rec.Init()
	p.ClearCache()
}

// Size returns the number of bytes left at Data.
func (p *Packet) Size() int {
	if p.rec == nil {
		return 0
	}
	return p.size.get(p.rec.Size)
}

func (p *Packet) SetSize(n int) {
	if p.rec == nil {
		return
	}
	p.rec.SetSize(n)
	p.size.set(n)
}

// Data returns the Size bytes the packet currently points at.
func (p *Packet) Data() []byte {
	if p.rec == nil {
		return nil
	}
	return p.rec.Data()
}

// SetData points the packet at b. Size is not changed.
func (p *Packet) SetData(b []byte) {
	if p.rec == nil {
		return
	}
	p.rec.SetData(b)
}

// SetPayload points the packet at b and sets the size to len(b).
func (p *Packet) SetPayload(b []byte) {
	p.SetData(b)
	p.SetSize(len(b))
}

// advance moves the cursor past n consumed bytes. A packet with nothing left
// has its data pointer cleared.
func (p *Packet) advance(n int) {
	data := p.Data()
	remaining := p.Size() - n
	p.SetSize(remaining)
	if remaining <= 0 {
		p.SetData(nil)
	} else {
		p.SetData(data[n:])
	}
}

func (p *Packet) Pts() int64 {
	if p.rec == nil {
		return 0
	}
	return p.pts.get(func() int64 { return p.rec.Int(PacketPts) })
}

func (p *Packet) SetPts(pts int64) {
	if p.rec == nil {
		return
	}
	p.rec.SetInt(PacketPts, pts)
	p.pts.set(pts)
}

func (p *Packet) Dts() int64 {
	if p.rec == nil {
		return 0
	}
	return p.dts.get(func() int64 { return p.rec.Int(PacketDts) })
}

func (p *Packet) SetDts(dts int64) {
	if p.rec == nil {
		return
	}
	p.rec.SetInt(PacketDts, dts)
	p.dts.set(dts)
}

func (p *Packet) Flags() int {
	if p.rec == nil {
		return 0
	}
	return p.flags.get(func() int { return int(p.rec.Int(PacketFlags)) })
}

func (p *Packet) SetFlags(flags int) {
	if p.rec == nil {
		return
	}
	p.rec.SetInt(PacketFlags, int64(flags))
	p.flags.set(flags)
}

// IsKeyframe returns true if the packet carries a key frame.
func (p *Packet) IsKeyframe() bool {
	return p.Flags()&PacketFlagKey != 0
}

func (p *Packet) StreamIndex() int {
	if p.rec == nil {
		return 0
	}
	return p.streamIndex.get(func() int { return int(p.rec.Int(PacketStreamIndex)) })
}

func (p *Packet) SetStreamIndex(idx int) {
	if p.rec == nil {
		return
	}
	p.rec.SetInt(PacketStreamIndex, int64(idx))
	p.streamIndex.set(idx)
}

func (p *Packet) Duration() int64 {
	if p.rec == nil {
		return 0
	}
	return p.duration.get(func() int64 { return p.rec.Int(PacketDuration) })
}

func (p *Packet) SetDuration(d int64) {
	if p.rec == nil {
		return
	}
	p.rec.SetInt(PacketDuration, d)
	p.duration.set(d)
}

// Bytes returns a copy of the packet data that outlives the next encode call.
func (p *Packet) Bytes() []byte {
	data := p.Data()
	if data == nil {
		return nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
