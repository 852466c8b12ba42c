package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/thesyncim/avcodec"
)

type capsReport struct {
	Version      string               `yaml:"version"`
	Generation   string               `yaml:"generation"`
	MinMajor     int                  `yaml:"generation_min_major"`
	AudioBuffer  bool                 `yaml:"wrapper_audio_buffer"`
	Capabilities avcodec.Capabilities `yaml:"capabilities"`
	Features     []string             `yaml:"features"`
	Libraries    map[string]string    `yaml:"libraries"`
}

// capsSource is the part of *avcodec.NativeLibrary the caps report reads.
type capsSource interface {
	avcodec.Prober
	Version() (major, minor, micro int)
	Paths() (codec, util, shim string)
}

func capsCommand() *cli.Command {
	return &cli.Command{
		Name:  "caps",
		Usage: "print the detected calling convention generation",
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			return e.out.print(buildCapsReport(e.lib))
		},
	}
}

func buildCapsReport(lib capsSource) *capsReport {
	caps := avcodec.DetectCapabilities(lib)
	gen := caps.Generation()
	major, minor, micro := lib.Version()
	codecPath, utilPath, shimPath := lib.Paths()
	return &capsReport{
		Version:      fmt.Sprintf("%d.%d.%d", major, minor, micro),
		Generation:   gen.String(),
		MinMajor:     gen.MinMajor(),
		AudioBuffer:  gen.ManagesAudioBuffer(),
		Capabilities: caps,
		Features:     gen.Features().Names(),
		Libraries: map[string]string{
			"avcodec":        codecPath,
			"avutil":         utilPath,
			"stream_avcodec": shimPath,
		},
	}
}

func (r *capsReport) writeText(w *tabwriter.Writer) {
	fmt.Fprintf(w, "libavcodec\t%s\n", r.Version)
	fmt.Fprintf(w, "generation\t%s (libavcodec %d+)\n", r.Generation, r.MinMajor)
	fmt.Fprintf(w, "wrapper audio buffer\t%t\n", r.AudioBuffer)
	fmt.Fprintf(w, "%s\t%t\n", avcodec.FuncOpen2, r.Capabilities.Open2)
	fmt.Fprintf(w, "%s\t%t\n", avcodec.FuncDecodeAudio4, r.Capabilities.DecodeAudio4)
	fmt.Fprintf(w, "%s\t%t\n", avcodec.FuncEncodeAudio2, r.Capabilities.EncodeAudio2)
	fmt.Fprintf(w, "features\t%s\n", strings.Join(r.Features, ", "))
	for _, name := range []string{"avcodec", "avutil", "stream_avcodec"} {
		fmt.Fprintf(w, "lib%s\t%s\n", name, r.Libraries[name])
	}
}
