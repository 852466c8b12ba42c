package avcodec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thesyncim/avcodec"
	"github.com/thesyncim/avcodec/avtest"
)

func h264Codec() *avtest.Codec {
	return &avtest.Codec{
		ID:        avcodec.CodecIDH264,
		Type:      avcodec.MediaTypeVideo,
		ShortName: "h264",
		Long:      "H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10",
		Encoder:   true,
		Decoder:   true,
	}
}

func mp2Codec() *avtest.Codec {
	return &avtest.Codec{
		ID:        avcodec.CodecIDMP2,
		Type:      avcodec.MediaTypeAudio,
		ShortName: "mp2",
		Long:      "MP2 (MPEG audio layer 2)",
		Encoder:   true,
		Decoder:   true,
	}
}

func pcmCodec() *avtest.Codec {
	return &avtest.Codec{
		ID:        avcodec.CodecIDPCMS16LE,
		Type:      avcodec.MediaTypeAudio,
		ShortName: "pcm_s16le",
		Long:      "PCM signed 16-bit little-endian",
		Encoder:   true,
		Decoder:   true,
	}
}

func quietConfig() avcodec.ContextConfig {
	cfg := avcodec.DefaultContextConfig()
	cfg.LoggerFactory = avcodec.NewLoggerFactory("disabled")
	return cfg
}

// newContext allocates a closed context for c and frees it at cleanup.
func newContext(t *testing.T, lib *avtest.Library, c *avtest.Codec, cfg avcodec.ContextConfig) (*avcodec.CodecContext, *avcodec.Codec) {
	t.Helper()
	lib.Codecs = append(lib.Codecs, c)
	codec := avcodec.NewCodec(c)
	cc, err := avcodec.AllocCodecContext(lib, codec, cfg)
	require.NoError(t, err)
	t.Cleanup(cc.Free)
	return cc, codec
}

// openContext is newContext followed by a successful Open.
func openContext(t *testing.T, lib *avtest.Library, c *avtest.Codec) *avcodec.CodecContext {
	t.Helper()
	cc, codec := newContext(t, lib, c, quietConfig())
	require.NoError(t, cc.Open(codec))
	return cc
}

func newPacket(t *testing.T, lib avcodec.Library, payload []byte) *avcodec.Packet {
	t.Helper()
	pkt, err := avcodec.NewPacket(lib)
	require.NoError(t, err)
	t.Cleanup(pkt.Free)
	if payload != nil {
		pkt.SetPayload(payload)
	}
	return pkt
}

func newFrame(t *testing.T, lib avcodec.Library) *avcodec.Frame {
	t.Helper()
	frame, err := avcodec.NewFrame(lib)
	require.NoError(t, err)
	t.Cleanup(frame.Free)
	return frame
}

func sequence(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}
