package avcodec

// Frame wraps a native AVFrame: one decoded picture or one buffer of audio
// samples. Plane memory belongs to whoever set it (the decoder, or the
// caller for encoder input); Frame only caches field reads.
type Frame struct {
	rec  FrameRecord
	free func(FrameRecord)

	lineSize  cached[[]int]
	keyFrame  cached[bool]
	pts       cached[int64]
	packetPts cached[int64]
	packetDts cached[int64]
	nbSamples cached[int]
	repeat    cached[int]
}

// NewFrame allocates a native frame with default field values.
func NewFrame(lib Library) (*Frame, error) {
	rec := lib.AllocFrame()
	if rec == nil {
		return nil, &ResourceExhaustionError{Op: "avcodec_alloc_frame", Size: 0}
	}
	f := WrapFrame(rec)
	f.free = lib.FreeFrame
	return f, nil
}

// WrapFrame wraps an existing native frame without taking ownership.
func WrapFrame(rec FrameRecord) *Frame {
	return &Frame{rec: rec}
}

// Record returns the underlying native record, nil after Free.
func (f *Frame) Record() FrameRecord { return f.rec }

// record is nil-safe for a nil *Frame, which is how flush requests reach the
// native call.
func (f *Frame) record() FrameRecord {
	if f == nil {
		return nil
	}
	return f.rec
}

// Free releases a frame created by NewFrame. Plane memory is not freed.
func (f *Frame) Free() {
	if f.rec != nil && f.free != nil {
		f.free(f.rec)
	}
	f.rec = nil
	f.ClearCache()
}

// Rebind points the wrapper at another native frame.
func (f *Frame) Rebind(rec FrameRecord) {
	f.rec = rec
	f.ClearCache()
}

// ClearCache drops all cached field values. Call it whenever the native frame
// may have been changed behind the wrapper's back.
func (f *Frame) ClearCache() {
	f.lineSize.reset()
	f.keyFrame.reset()
	f.pts.reset()
	f.packetPts.reset()
	f.packetDts.reset()
	f.nbSamples.reset()
	f.repeat.reset()
}

// GetDefaults resets the native frame to default values.
func (f *Frame) GetDefaults() {
	if f.rec == nil {
		return
	}
	f.rec.Defaults()
	f.ClearCache()
}

// PlaneCount returns the length of the data and line size arrays.
func (f *Frame) PlaneCount() int {
	if f.rec == nil {
		return 0
	}
	return f.rec.Planes()
}

// Data returns a view of plane i, or nil. It is safe on a nil *Frame.
func (f *Frame) Data(i int) []byte {
	if f == nil || f.rec == nil || i < 0 || i >= f.rec.Planes() {
		return nil
	}
	return f.rec.Plane(i)
}

// SetData points plane i at b.
func (f *Frame) SetData(i int, b []byte) {
	if f.rec == nil || i < 0 || i >= f.rec.Planes() {
		return
	}
	f.rec.SetPlane(i, b)
}

// LineSize returns the size in bytes of each plane line. The returned slice
// is shared with the cache; use SetLineSize to change it.
func (f *Frame) LineSize() []int {
	if f == nil || f.rec == nil {
		return nil
	}
	return f.lineSize.get(func() []int {
		sizes := make([]int, f.rec.Planes())
		for i := range sizes {
			sizes[i] = f.rec.LineSize(i)
		}
		return sizes
	})
}

// SetLineSize writes the line size of plane i through to the native frame.
func (f *Frame) SetLineSize(i, n int) {
	sizes := f.LineSize()
	if i < 0 || i >= len(sizes) {
		return
	}
	f.rec.SetLineSize(i, n)
	sizes[i] = n
}

func (f *Frame) IsKeyFrame() bool {
	if f.rec == nil {
		return false
	}
	return f.keyFrame.get(func() bool { return f.rec.Int(FrameKeyFrame) != 0 })
}

func (f *Frame) SetKeyFrame(key bool) {
	if f.rec == nil {
		return
	}
	var v int64
	if key {
		v = 1
	}
	f.rec.SetInt(FrameKeyFrame, v)
	f.keyFrame.set(key)
}

// Pts returns the presentation timestamp in the codec time base.
func (f *Frame) Pts() int64 {
	if f.rec == nil {
		return 0
	}
	return f.pts.get(func() int64 { return f.rec.Int(FramePts) })
}

func (f *Frame) SetPts(pts int64) {
	if f.rec == nil {
		return
	}
	f.rec.SetInt(FramePts, pts)
	f.pts.set(pts)
}

// PacketPts returns the pts of the last packet handed to the decoder.
func (f *Frame) PacketPts() int64 {
	if f.rec == nil {
		return 0
	}
	return f.packetPts.get(func() int64 { return f.rec.Int(FramePacketPts) })
}

func (f *Frame) SetPacketPts(pts int64) {
	if f.rec == nil {
		return
	}
	f.rec.SetInt(FramePacketPts, pts)
	f.packetPts.set(pts)
}

// PacketDts returns the dts of the last packet handed to the decoder.
func (f *Frame) PacketDts() int64 {
	if f.rec == nil {
		return 0
	}
	return f.packetDts.get(func() int64 { return f.rec.Int(FramePacketDts) })
}

func (f *Frame) SetPacketDts(dts int64) {
	if f.rec == nil {
		return
	}
	f.rec.SetInt(FramePacketDts, dts)
	f.packetDts.set(dts)
}

// NbSamples returns the number of audio samples per channel.
func (f *Frame) NbSamples() int {
	if f.rec == nil {
		return 0
	}
	return f.nbSamples.get(func() int { return int(f.rec.Int(FrameNbSamples)) })
}

func (f *Frame) SetNbSamples(n int) {
	if f.rec == nil {
		return
	}
	f.rec.SetInt(FrameNbSamples, int64(n))
	f.nbSamples.set(n)
}

// RepeatPicture returns how many extra field durations the picture is shown.
func (f *Frame) RepeatPicture() int {
	if f.rec == nil {
		return 0
	}
	return f.repeat.get(func() int { return int(f.rec.Int(FrameRepeatPict)) })
}

func (f *Frame) SetRepeatPicture(n int) {
	if f.rec == nil {
		return
	}
	f.rec.SetInt(FrameRepeatPict, int64(n))
	f.repeat.set(n)
}

// Clone copies plane i into Go memory so it outlives the native frame.
func (f *Frame) Clone(i int) []byte {
	data := f.Data(i)
	if data == nil {
		return nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
