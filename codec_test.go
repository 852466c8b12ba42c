package avcodec

import (
	"errors"
	"testing"
)

func TestCodecID_String(t *testing.T) {
	tests := []struct {
		codec CodecID
		want  string
	}{
		{CodecIDH264, "h264"},
		{CodecIDVP8, "vp8"},
		{CodecIDMPEG4, "mpeg4"},
		{CodecIDPCMMulaw, "pcm_mulaw"},
		{CodecIDMP2, "mp2"},
		{CodecIDAAC, "aac"},
		{CodecIDNone, "none"},
		{CodecID(99999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.codec.String(); got != tt.want {
				t.Errorf("CodecID.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodecIDs_Named(t *testing.T) {
	seen := make(map[string]bool)
	for _, id := range CodecIDs() {
		name := id.String()
		if name == "unknown" || name == "none" {
			t.Errorf("CodecIDs() contains unnamed id %d", id)
		}
		if seen[name] {
			t.Errorf("CodecIDs() lists %s twice", name)
		}
		seen[name] = true
	}
}

func TestCodecID_MediaType(t *testing.T) {
	tests := []struct {
		codec CodecID
		want  MediaType
		pcm   bool
	}{
		{CodecIDH264, MediaTypeVideo, false},
		{CodecIDMJPEG, MediaTypeVideo, false},
		{CodecIDPCMS16LE, MediaTypeAudio, true},
		{CodecIDPCMAlaw, MediaTypeAudio, true},
		{CodecIDMP3, MediaTypeAudio, false},
		{CodecIDFLAC, MediaTypeAudio, false},
		{CodecIDNone, MediaTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.codec.String(), func(t *testing.T) {
			if got := tt.codec.MediaType(); got != tt.want {
				t.Errorf("CodecID.MediaType() = %v, want %v", got, tt.want)
			}
			if got := tt.codec.IsPCM(); got != tt.pcm {
				t.Errorf("CodecID.IsPCM() = %v, want %v", got, tt.pcm)
			}
		})
	}
}

func TestCodecID_MimeType(t *testing.T) {
	tests := []struct {
		codec CodecID
		want  string
	}{
		{CodecIDH264, "video/H264"},
		{CodecIDVP8, "video/VP8"},
		{CodecIDPCMMulaw, "audio/PCMU"},
		{CodecIDPCMAlaw, "audio/PCMA"},
		{CodecIDMP2, "audio/MPA"},
		{CodecIDFLAC, ""},
	}

	for _, tt := range tests {
		t.Run(tt.codec.String(), func(t *testing.T) {
			if got := tt.codec.MimeType(); got != tt.want {
				t.Errorf("CodecID.MimeType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodecID_ClockRate(t *testing.T) {
	tests := []struct {
		codec CodecID
		want  uint32
	}{
		{CodecIDH264, 90000},
		{CodecIDVP8, 90000},
		{CodecIDPCMMulaw, 8000},
		{CodecIDPCMAlaw, 8000},
		{CodecIDMP3, 90000},
		{CodecIDAAC, 48000},
	}

	for _, tt := range tests {
		t.Run(tt.codec.String(), func(t *testing.T) {
			if got := tt.codec.ClockRate(); got != tt.want {
				t.Errorf("CodecID.ClockRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodecID_DefaultPayloadType(t *testing.T) {
	tests := []struct {
		codec CodecID
		want  uint8
	}{
		{CodecIDPCMMulaw, 0},
		{CodecIDPCMAlaw, 8},
		{CodecIDMP2, 14},
		{CodecIDVP8, 96},
		{CodecIDH264, 102},
	}

	for _, tt := range tests {
		t.Run(tt.codec.String(), func(t *testing.T) {
			if got := tt.codec.DefaultPayloadType(); got != tt.want {
				t.Errorf("CodecID.DefaultPayloadType() = %v, want %v", got, tt.want)
			}
		})
	}
}

// stubCodec is a CodecRecord with fixed fields.
type stubCodec struct {
	id        CodecID
	kind      MediaType
	name      string
	longName  string
	nameReads int
}

func (s *stubCodec) Int(f CodecField) int64 {
	switch f {
	case CodecFieldID:
		return int64(s.id)
	case CodecFieldType:
		return int64(s.kind)
	}
	return 0
}

func (s *stubCodec) Name() string {
	s.nameReads++
	return s.name
}

func (s *stubCodec) LongName() string { return s.longName }

func TestCodec_Fields(t *testing.T) {
	rec := &stubCodec{id: CodecIDH264, kind: MediaTypeVideo, name: "h264", longName: "H.264"}
	c := NewCodec(rec)

	if got := c.ID(); got != CodecIDH264 {
		t.Errorf("Codec.ID() = %v, want h264", got)
	}
	if got := c.Type(); got != MediaTypeVideo {
		t.Errorf("Codec.Type() = %v, want video", got)
	}
	if got := c.String(); got == "" {
		t.Error("Codec.String() is empty")
	}

	c.Name()
	c.Name()
	if rec.nameReads != 1 {
		t.Errorf("name read %d times, want 1", rec.nameReads)
	}
	c.ClearCache()
	c.Name()
	if rec.nameReads != 2 {
		t.Errorf("name read %d times after ClearCache, want 2", rec.nameReads)
	}
}

func TestCodecLookupError(t *testing.T) {
	_, err := wrapCodec(nil, "decoder", "h264")
	if !errors.Is(err, ErrCodecNotFound) {
		t.Fatalf("wrapCodec(nil) = %v, want ErrCodecNotFound", err)
	}
	if got, want := err.Error(), "avcodec: unable to find decoder h264"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
