package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/thesyncim/avcodec"
	"github.com/thesyncim/avcodec/metrics"
)

type probeResult struct {
	Codec       string `yaml:"codec"`
	Kind        string `yaml:"kind"`
	Name        string `yaml:"name,omitempty"`
	LongName    string `yaml:"long_name,omitempty"`
	Status      string `yaml:"status"`
	Code        int    `yaml:"code,omitempty"`
	OpenVariant string `yaml:"open_variant,omitempty"`
	AudioPath   string `yaml:"audio_variant,omitempty"`
	FrameSize   int    `yaml:"frame_size,omitempty"`
}

type probeReport struct {
	Generation string        `yaml:"generation"`
	Results    []probeResult `yaml:"results"`
}

const (
	statusOK      = "ok"
	statusMissing = "missing"
	statusFailed  = "open failed"
)

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:  "probe",
		Usage: "open every codec once through the detected call variants",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "codec", Usage: "codec name to probe (repeatable, default: all known)"},
			&cli.BoolFlag{Name: "decoders", Value: true, Usage: "probe decoders"},
			&cli.BoolFlag{Name: "encoders", Value: true, Usage: "probe encoders"},
			&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Value: 4, Usage: "concurrent probes"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "serve probe metrics on this address until interrupted"},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			ids, err := parseCodecs(c.StringSlice("codec"))
			if err != nil {
				return err
			}

			collector := metrics.NewCollector("avcaps")
			p := &prober{
				lib:       e.lib,
				cfg:       e.cfg.Context,
				collector: collector,
			}
			rep, err := p.run(c.Context, ids, c.Bool("decoders"), c.Bool("encoders"), c.Int("jobs"))
			if err != nil {
				return err
			}
			if err := e.out.print(rep); err != nil {
				return err
			}

			if addr := c.String("metrics-addr"); addr != "" {
				return serveMetrics(c.Context, addr, collector)
			}
			return nil
		},
	}
}

func parseCodecs(names []string) ([]avcodec.CodecID, error) {
	if len(names) == 0 {
		return avcodec.CodecIDs(), nil
	}
	byName := make(map[string]avcodec.CodecID)
	for _, id := range avcodec.CodecIDs() {
		byName[id.String()] = id
	}
	var ids []avcodec.CodecID
	for _, n := range names {
		id, ok := byName[strings.ToLower(n)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown codec %q", avcodec.ErrInvalidArgument, n)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// prober opens codecs concurrently, one context per goroutine. Open and
// close are serialised: old libavcodec releases are not safe to open from
// several threads without a lock manager.
type prober struct {
	lib       avcodec.Library
	cfg       avcodec.ContextConfig
	collector *metrics.Collector

	openMu sync.Mutex
}

func (p *prober) run(ctx context.Context, ids []avcodec.CodecID, decoders, encoders bool, jobs int) (*probeReport, error) {
	type job struct {
		id      avcodec.CodecID
		encoder bool
	}
	var queue []job
	for _, id := range ids {
		if decoders {
			queue = append(queue, job{id, false})
		}
		if encoders {
			queue = append(queue, job{id, true})
		}
	}

	results := make([]probeResult, len(queue))
	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, j := range queue {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.probe(j.id, j.encoder)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &probeReport{
		Generation: avcodec.DetectCapabilities(p.lib).Generation().String(),
		Results:    results,
	}, nil
}

func (p *prober) probe(id avcodec.CodecID, encoder bool) probeResult {
	res := probeResult{Codec: id.String(), Kind: "decoder"}
	find := avcodec.FindDecoder
	if encoder {
		res.Kind = "encoder"
		find = avcodec.FindEncoder
	}

	codec, err := find(p.lib, id)
	if err != nil {
		res.Status = statusMissing
		return res
	}
	res.Name = codec.Name()
	res.LongName = codec.LongName()

	cc, err := avcodec.AllocCodecContext(p.lib, codec, p.cfg)
	if err != nil {
		res.Status = err.Error()
		return res
	}
	defer cc.Free()
	if encoder {
		configureEncoder(cc, codec.Type())
	}

	p.openMu.Lock()
	err = cc.Open(codec)
	p.openMu.Unlock()
	if err != nil {
		res.Status = statusFailed
		if code, ok := avcodec.NativeCode(err); ok {
			res.Code = code
		}
		return res
	}

	res.Status = statusOK
	res.OpenVariant = cc.OpenVariant().String()
	if codec.Type() == avcodec.MediaTypeAudio {
		res.FrameSize = cc.FrameSize()
		if encoder {
			res.AudioPath = cc.AudioEncodeVariant().String()
		} else {
			res.AudioPath = cc.AudioDecodeVariant().String()
		}
	}
	p.collector.Observe(cc)

	p.openMu.Lock()
	cc.Close()
	p.openMu.Unlock()
	return res
}

// configureEncoder sets the fields encoders refuse to open without.
func configureEncoder(cc *avcodec.CodecContext, kind avcodec.MediaType) {
	switch kind {
	case avcodec.MediaTypeVideo:
		cc.SetWidth(320)
		cc.SetHeight(240)
		cc.SetPixelFormat(avcodec.PixelFormatYUV420P)
		cc.SetTimeBase(avcodec.NewRational(1, 25))
		cc.SetBitRate(400_000)
		cc.SetGopSize(12)
	case avcodec.MediaTypeAudio:
		cc.SetSampleFormat(avcodec.SampleFormatS16)
		cc.SetSampleRate(44100)
		cc.SetChannels(2)
		cc.SetChannelLayout(3) // AV_CH_LAYOUT_STEREO
		cc.SetBitRate(64_000)
	}
}

func (r *probeReport) writeText(w *tabwriter.Writer) {
	fmt.Fprintf(w, "generation: %s\n\n", r.Generation)
	fmt.Fprintln(w, "CODEC\tKIND\tNAME\tSTATUS\tOPEN\tAUDIO\tFRAME SIZE")
	for _, res := range r.Results {
		status := res.Status
		if res.Code != 0 {
			status = fmt.Sprintf("%s (%d)", status, res.Code)
		}
		frameSize := ""
		if res.FrameSize != 0 {
			frameSize = fmt.Sprint(res.FrameSize)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			res.Codec, res.Kind, res.Name, status, res.OpenVariant, res.AudioPath, frameSize)
	}
}

func serveMetrics(ctx context.Context, addr string, collector prometheus.Collector) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collector); err != nil {
		return fmt.Errorf("register collector: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
