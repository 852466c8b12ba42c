package metrics_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/avcodec"
	"github.com/thesyncim/avcodec/avtest"
	"github.com/thesyncim/avcodec/metrics"
)

type fakeSource struct {
	id    uuid.UUID
	codec avcodec.CodecID
	stats avcodec.ContextStats
}

func (f *fakeSource) ID() uuid.UUID               { return f.id }
func (f *fakeSource) CodecID() avcodec.CodecID    { return f.codec }
func (f *fakeSource) Stats() avcodec.ContextStats { return f.stats }

func TestCollector(t *testing.T) {
	c := metrics.NewCollector("test")
	src := &fakeSource{
		id:    uuid.MustParse("7f1d7a3e-2c5b-4d0e-9a63-3f1f0e6b2a11"),
		codec: avcodec.CodecIDH264,
		stats: avcodec.ContextStats{FramesDecoded: 3, BytesConsumed: 1500},
	}

	assert.Equal(t, 1, testutil.CollectAndCount(c))

	c.Observe(src)
	assert.Equal(t, 7, testutil.CollectAndCount(c))

	expected := fmt.Sprintf(`
# HELP test_frames_decoded_total Frames produced by decode calls.
# TYPE test_frames_decoded_total counter
test_frames_decoded_total{codec="h264",context="%[1]s"} 3
# HELP test_bytes_consumed_total Packet bytes consumed by decode calls.
# TYPE test_bytes_consumed_total counter
test_bytes_consumed_total{codec="h264",context="%[1]s"} 1500
# HELP test_contexts Codec contexts being tracked.
# TYPE test_contexts gauge
test_contexts 1
`, src.id)
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"test_frames_decoded_total", "test_bytes_consumed_total", "test_contexts"))

	// Observe replaces the previous snapshot.
	src.stats.FramesDecoded = 4
	c.Observe(src)
	assert.Equal(t, 7, testutil.CollectAndCount(c))

	c.Forget(src.id)
	assert.Equal(t, 1, testutil.CollectAndCount(c))
}

func TestCollectorRegisters(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(metrics.NewCollector("avcodec")))

	// A second collector with the same names must be rejected.
	assert.Error(t, reg.Register(metrics.NewCollector("avcodec")))
}

func TestCollectorObservesContext(t *testing.T) {
	lib := avtest.NewLibrary(avcodec.GenerationModern)
	lib.Codecs = []*avtest.Codec{{ID: avcodec.CodecIDMP2, Type: avcodec.MediaTypeAudio, ShortName: "mp2", Decoder: true}}
	lib.DecodeAudio4Hook = func(_ *avtest.Context, _ *avtest.Frame, got *int32, p *avtest.Packet) int32 {
		*got = 1
		return int32(p.Size())
	}

	codec, err := avcodec.FindDecoder(lib, avcodec.CodecIDMP2)
	require.NoError(t, err)
	cfg := avcodec.DefaultContextConfig()
	cfg.LoggerFactory = avcodec.NewLoggerFactory("disabled")
	cc, err := avcodec.AllocCodecContext(lib, codec, cfg)
	require.NoError(t, err)
	defer cc.Free()
	require.NoError(t, cc.Open(codec))

	pkt, err := avcodec.NewPacket(lib)
	require.NoError(t, err)
	frame, err := avcodec.NewFrame(lib)
	require.NoError(t, err)
	pkt.SetPayload(make([]byte, 417))
	_, err = cc.DecodeAudioFrame(pkt, frame)
	require.NoError(t, err)

	c := metrics.NewCollector("avcodec")
	c.Observe(cc)

	expected := fmt.Sprintf(`
# HELP avcodec_bytes_consumed_total Packet bytes consumed by decode calls.
# TYPE avcodec_bytes_consumed_total counter
avcodec_bytes_consumed_total{codec="mp2",context="%s"} 417
`, cc.ID())
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "avcodec_bytes_consumed_total"))
}
