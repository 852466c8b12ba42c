package avcodec

// PixelFormat represents video pixel formats (PixelFormat in libavutil 51/52).
type PixelFormat int32

const (
	PixelFormatNone     PixelFormat = -1
	PixelFormatYUV420P  PixelFormat = 0  // YUV 4:2:0 planar (Y + U + V)
	PixelFormatYUYV422  PixelFormat = 1  // Packed YUV 4:2:2
	PixelFormatRGB24    PixelFormat = 2  // Packed RGB, 3 bytes per pixel
	PixelFormatBGR24    PixelFormat = 3  // Packed BGR, 3 bytes per pixel
	PixelFormatYUV422P  PixelFormat = 4  // YUV 4:2:2 planar
	PixelFormatYUV444P  PixelFormat = 5  // YUV 4:4:4 planar
	PixelFormatGray8    PixelFormat = 8  // 8-bit grayscale
	PixelFormatYUVJ420P PixelFormat = 12 // Full-range YUV 4:2:0 (JPEG)
	PixelFormatNV12     PixelFormat = 25 // YUV 4:2:0 semi-planar (Y + interleaved UV)
	PixelFormatNV21     PixelFormat = 26 // YUV 4:2:0 semi-planar (Y + interleaved VU)
	PixelFormatARGB     PixelFormat = 27
	PixelFormatRGBA     PixelFormat = 28
	PixelFormatABGR     PixelFormat = 29
	PixelFormatBGRA     PixelFormat = 30
)

func (p PixelFormat) String() string {
	switch p {
	case PixelFormatNone:
		return "none"
	case PixelFormatYUV420P:
		return "yuv420p"
	case PixelFormatYUYV422:
		return "yuyv422"
	case PixelFormatRGB24:
		return "rgb24"
	case PixelFormatBGR24:
		return "bgr24"
	case PixelFormatYUV422P:
		return "yuv422p"
	case PixelFormatYUV444P:
		return "yuv444p"
	case PixelFormatGray8:
		return "gray"
	case PixelFormatYUVJ420P:
		return "yuvj420p"
	case PixelFormatNV12:
		return "nv12"
	case PixelFormatNV21:
		return "nv21"
	case PixelFormatARGB:
		return "argb"
	case PixelFormatRGBA:
		return "rgba"
	case PixelFormatABGR:
		return "abgr"
	case PixelFormatBGRA:
		return "bgra"
	default:
		return "unknown"
	}
}

// PlaneCount returns the number of planes for this pixel format.
func (p PixelFormat) PlaneCount() int {
	switch p {
	case PixelFormatYUV420P, PixelFormatYUVJ420P, PixelFormatYUV422P, PixelFormatYUV444P:
		return 3 // Y, U, V
	case PixelFormatNV12, PixelFormatNV21:
		return 2 // Y, UV
	case PixelFormatNone:
		return 0
	default:
		return 1 // Packed
	}
}

// PlaneHeight returns the number of rows in the given plane of a picture
// that is height rows tall.
func (p PixelFormat) PlaneHeight(plane, height int) int {
	if plane == 0 {
		return height
	}
	switch p {
	case PixelFormatYUV420P, PixelFormatYUVJ420P, PixelFormatNV12, PixelFormatNV21:
		return (height + 1) / 2
	default:
		return height
	}
}

// SampleFormat represents audio sample formats (AVSampleFormat).
type SampleFormat int32

const (
	SampleFormatNone SampleFormat = -1
	SampleFormatU8   SampleFormat = 0 // unsigned 8 bits
	SampleFormatS16  SampleFormat = 1 // signed 16 bits
	SampleFormatS32  SampleFormat = 2 // signed 32 bits
	SampleFormatFlt  SampleFormat = 3 // float
	SampleFormatDbl  SampleFormat = 4 // double
	SampleFormatU8P  SampleFormat = 5 // unsigned 8 bits, planar
	SampleFormatS16P SampleFormat = 6 // signed 16 bits, planar
	SampleFormatS32P SampleFormat = 7 // signed 32 bits, planar
	SampleFormatFltP SampleFormat = 8 // float, planar
	SampleFormatDblP SampleFormat = 9 // double, planar
)

func (s SampleFormat) String() string {
	switch s {
	case SampleFormatU8:
		return "u8"
	case SampleFormatS16:
		return "s16"
	case SampleFormatS32:
		return "s32"
	case SampleFormatFlt:
		return "flt"
	case SampleFormatDbl:
		return "dbl"
	case SampleFormatU8P:
		return "u8p"
	case SampleFormatS16P:
		return "s16p"
	case SampleFormatS32P:
		return "s32p"
	case SampleFormatFltP:
		return "fltp"
	case SampleFormatDblP:
		return "dblp"
	default:
		return "none"
	}
}

// BytesPerSample returns the number of bytes per sample for this format.
func (s SampleFormat) BytesPerSample() int {
	switch s {
	case SampleFormatU8, SampleFormatU8P:
		return 1
	case SampleFormatS16, SampleFormatS16P:
		return 2
	case SampleFormatS32, SampleFormatS32P, SampleFormatFlt, SampleFormatFltP:
		return 4
	case SampleFormatDbl, SampleFormatDblP:
		return 8
	default:
		return 0
	}
}

// IsPlanar reports whether each channel occupies its own plane.
func (s SampleFormat) IsPlanar() bool {
	return s >= SampleFormatU8P && s <= SampleFormatDblP
}

// LineSize returns the byte size of one plane holding nbSamples samples.
// Interleaved formats carry every channel in the single plane.
func (s SampleFormat) LineSize(nbSamples, channels int) int {
	size := nbSamples * s.BytesPerSample()
	if !s.IsPlanar() {
		size *= channels
	}
	return size
}
