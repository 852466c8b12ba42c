package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/thesyncim/avcodec"
	"github.com/thesyncim/avcodec/avtest"
	"github.com/thesyncim/avcodec/metrics"
)

func testProber(lib *avtest.Library) *prober {
	cfg := avcodec.DefaultContextConfig()
	cfg.LoggerFactory = avcodec.NewLoggerFactory("disabled")
	return &prober{lib: lib, cfg: cfg, collector: metrics.NewCollector("avcaps")}
}

func TestParseCodecs(t *testing.T) {
	all, err := parseCodecs(nil)
	require.NoError(t, err)
	assert.Equal(t, avcodec.CodecIDs(), all)

	ids, err := parseCodecs([]string{"H264", "pcm_mulaw"})
	require.NoError(t, err)
	assert.Equal(t, []avcodec.CodecID{avcodec.CodecIDH264, avcodec.CodecIDPCMMulaw}, ids)

	_, err = parseCodecs([]string{"h265"})
	assert.ErrorIs(t, err, avcodec.ErrInvalidArgument)
}

func TestProberRun(t *testing.T) {
	lib := avtest.NewLibrary(avcodec.GenerationModern)
	lib.Codecs = []*avtest.Codec{
		{ID: avcodec.CodecIDH264, Type: avcodec.MediaTypeVideo, ShortName: "h264", Long: "H.264", Decoder: true, Encoder: true},
		{ID: avcodec.CodecIDAAC, Type: avcodec.MediaTypeAudio, ShortName: "aac", Long: "AAC", Encoder: true},
	}
	lib.Open2Hook = func(ctx *avtest.Context, codec *avtest.Codec) int32 {
		if codec.ID == avcodec.CodecIDAAC {
			return -22
		}
		ctx.Ints[avcodec.ContextCodecID] = int64(codec.ID)
		return 0
	}

	p := testProber(lib)
	rep, err := p.run(context.Background(), []avcodec.CodecID{avcodec.CodecIDH264, avcodec.CodecIDAAC}, true, true, 2)
	require.NoError(t, err)

	assert.Equal(t, "modern", rep.Generation)
	require.Len(t, rep.Results, 4)

	assert.Equal(t, probeResult{Codec: "h264", Kind: "decoder", Name: "h264", LongName: "H.264", Status: statusOK, OpenVariant: "modern"}, rep.Results[0])
	assert.Equal(t, probeResult{Codec: "h264", Kind: "encoder", Name: "h264", LongName: "H.264", Status: statusOK, OpenVariant: "modern"}, rep.Results[1])
	assert.Equal(t, probeResult{Codec: "aac", Kind: "decoder", Status: statusMissing}, rep.Results[2])
	assert.Equal(t, probeResult{Codec: "aac", Kind: "encoder", Name: "aac", LongName: "AAC", Status: statusFailed, Code: -22}, rep.Results[3])

	// Every context is closed and freed.
	assert.Equal(t, 3, lib.Calls("avcodec_alloc_context3"))
	assert.Equal(t, 3, lib.Calls("av_free"))
	assert.Equal(t, 2, lib.Calls("avcodec_close"))
}

func TestProberAudioVariants(t *testing.T) {
	lib := avtest.NewLibrary(avcodec.GenerationTransitional)
	lib.Codecs = []*avtest.Codec{
		{ID: avcodec.CodecIDMP2, Type: avcodec.MediaTypeAudio, ShortName: "mp2", Decoder: true, Encoder: true},
	}
	lib.Open2Hook = func(ctx *avtest.Context, _ *avtest.Codec) int32 {
		ctx.Ints[avcodec.ContextFrameSize] = 1152
		return 0
	}

	rep, err := testProber(lib).run(context.Background(), []avcodec.CodecID{avcodec.CodecIDMP2}, true, true, 1)
	require.NoError(t, err)
	require.Len(t, rep.Results, 2)

	assert.Equal(t, "modern", rep.Results[0].AudioPath, "decode_audio4 on a transitional library")
	assert.Equal(t, "legacy", rep.Results[1].AudioPath, "no encode_audio2 on a transitional library")
	assert.Equal(t, 1152, rep.Results[1].FrameSize)
}

func TestProberConfiguresEncoders(t *testing.T) {
	lib := avtest.NewLibrary(avcodec.GenerationModern)
	lib.Codecs = []*avtest.Codec{
		{ID: avcodec.CodecIDMPEG4, Type: avcodec.MediaTypeVideo, ShortName: "mpeg4", Encoder: true},
	}
	var width, pixfmt int64
	lib.Open2Hook = func(ctx *avtest.Context, _ *avtest.Codec) int32 {
		width = ctx.Ints[avcodec.ContextWidth]
		pixfmt = ctx.Ints[avcodec.ContextPixelFormat]
		return 0
	}

	_, err := testProber(lib).run(context.Background(), []avcodec.CodecID{avcodec.CodecIDMPEG4}, false, true, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(320), width)
	assert.Equal(t, int64(avcodec.PixelFormatYUV420P), pixfmt)
}

func TestProberCanceled(t *testing.T) {
	lib := avtest.NewLibrary(avcodec.GenerationModern)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testProber(lib).run(ctx, avcodec.CodecIDs(), true, true, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrinter(t *testing.T) {
	rep := &probeReport{
		Generation: "legacy",
		Results: []probeResult{
			{Codec: "h264", Kind: "decoder", Name: "h264", Status: statusOK, OpenVariant: "legacy"},
			{Codec: "aac", Kind: "encoder", Name: "aac", Status: statusFailed, Code: -22},
		},
	}

	var text bytes.Buffer
	require.NoError(t, newPrinter(&text, formatText).print(rep))
	assert.Contains(t, text.String(), "generation: legacy")
	assert.Contains(t, text.String(), "open failed (-22)")

	var out bytes.Buffer
	require.NoError(t, newPrinter(&out, formatYAML).print(rep))
	var decoded probeReport
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, *rep, decoded)

	assert.Error(t, newPrinter(&out, "json").print(rep))
	assert.Equal(t, "yaml", outputFormat("yaml"))
}
